package api

import (
	"net/http"
	"time"

	respond "github.com/memoryfriend/memory-friend/server/internal/api/respond"
	"github.com/memoryfriend/memory-friend/server/internal/api/validate"
	"github.com/memoryfriend/memory-friend/server/internal/services"
)

type SummaryHandler struct {
	svc      *services.SummaryService
	profiles *services.ProfileService
	loc      *time.Location
}

func NewSummaryHandler(svc *services.SummaryService, profiles *services.ProfileService, loc *time.Location) *SummaryHandler {
	if loc == nil {
		loc = time.Local
	}
	return &SummaryHandler{svc: svc, profiles: profiles, loc: loc}
}

// DailySummary GET /api/summaries/daily
func (h *SummaryHandler) DailySummary(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFrom(r.Context())
	if !ok {
		respond.WriteUnauthorized(w, "no session")
		return
	}
	q := r.URL.Query()

	date := q.Get("date")
	if date == "" {
		date = time.Now().In(h.loc).Format("2006-01-02")
	}
	if err := validate.Date(date); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	ec, err := h.profiles.ResolveElderContext(r.Context(), user.UserID, q.Get("elderId"))
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	if ec.ElderID == nil {
		respond.WriteNotFound(w, "no linked elder")
		return
	}

	out, err := h.svc.DailySummary(r.Context(), *ec.ElderID, date)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}
