package api

import (
	"encoding/json"
	"net/http"

	respond "github.com/memoryfriend/memory-friend/server/internal/api/respond"
	"github.com/memoryfriend/memory-friend/server/internal/api/validate"
	"github.com/memoryfriend/memory-friend/server/internal/model"
	"github.com/memoryfriend/memory-friend/server/internal/services"
)

type CaregiverHandler struct {
	profiles *services.ProfileService
}

func NewCaregiverHandler(profiles *services.ProfileService) *CaregiverHandler {
	return &CaregiverHandler{profiles: profiles}
}

// LinkElder POST /api/caregivers/link-elder
func (h *CaregiverHandler) LinkElder(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFrom(r.Context())
	if !ok {
		respond.WriteUnauthorized(w, "no session")
		return
	}
	var req struct {
		ElderEmail string `json:"elderEmail"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := validate.ElderEmail(req.ElderEmail); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}

	if err := h.profiles.LinkElderByEmail(r.Context(), user.UserID, req.ElderEmail); err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"success": true})
}

// CurrentElder GET /api/current-elder
func (h *CaregiverHandler) CurrentElder(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFrom(r.Context())
	if !ok {
		respond.WriteUnauthorized(w, "no session")
		return
	}
	ec, err := h.profiles.ResolveElderContext(r.Context(), user.UserID, r.URL.Query().Get("elderId"))
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, ec)
}

// CreateProfile POST /api/profiles
func (h *CaregiverHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFrom(r.Context())
	if !ok {
		respond.WriteUnauthorized(w, "no session")
		return
	}
	var req struct {
		Role     string `json:"role"`
		FullName string `json:"fullName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}

	out, err := h.profiles.CreateProfile(r.Context(), &model.Profile{
		UserID:   user.UserID,
		Email:    user.Email,
		Role:     model.Role(req.Role),
		FullName: req.FullName,
	})
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// GetProfile GET /api/profiles/me
func (h *CaregiverHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFrom(r.Context())
	if !ok {
		respond.WriteUnauthorized(w, "no session")
		return
	}
	out, err := h.profiles.GetProfile(r.Context(), user.UserID)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}
