package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	respond "github.com/memoryfriend/memory-friend/server/internal/api/respond"
	"github.com/memoryfriend/memory-friend/server/internal/api/validate"
	"github.com/memoryfriend/memory-friend/server/internal/model"
	"github.com/memoryfriend/memory-friend/server/internal/services"
)

const defaultQuestionLimit = 20

type QuestionHandler struct {
	svc      *services.QuestionService
	profiles *services.ProfileService
}

func NewQuestionHandler(svc *services.QuestionService, profiles *services.ProfileService) *QuestionHandler {
	return &QuestionHandler{svc: svc, profiles: profiles}
}

// Ask POST /api/questions
func (h *QuestionHandler) Ask(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFrom(r.Context())
	if !ok {
		respond.WriteUnauthorized(w, "no session")
		return
	}
	var req struct {
		ElderID  string `json:"elderId"`
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := validate.QuestionText(req.Question); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	ec, err := h.profiles.ResolveElderContext(r.Context(), user.UserID, req.ElderID)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	if ec.ElderID == nil {
		respond.WriteNotFound(w, "no linked elder")
		return
	}

	out, err := h.svc.Ask(r.Context(), *ec.ElderID, req.Question)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// ListQuestions GET /api/questions
func (h *QuestionHandler) ListQuestions(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFrom(r.Context())
	if !ok {
		respond.WriteUnauthorized(w, "no session")
		return
	}
	q := r.URL.Query()
	ec, err := h.profiles.ResolveElderContext(r.Context(), user.UserID, q.Get("elderId"))
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	if ec.ElderID == nil {
		respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"questions": []*model.Question{}, "count": 0})
		return
	}

	limit := defaultQuestionLimit
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			respond.WriteBadRequest(w, "limit must be a positive integer")
			return
		}
		limit = n
	}

	out, err := h.svc.ListQuestions(r.Context(), *ec.ElderID, limit)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	if out == nil {
		out = []*model.Question{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"questions": out, "count": len(out)})
}
