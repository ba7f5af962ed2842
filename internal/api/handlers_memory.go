package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	respond "github.com/memoryfriend/memory-friend/server/internal/api/respond"
	"github.com/memoryfriend/memory-friend/server/internal/api/validate"
	"github.com/memoryfriend/memory-friend/server/internal/model"
	"github.com/memoryfriend/memory-friend/server/internal/services"
	"github.com/memoryfriend/memory-friend/server/internal/upload"
)

const (
	defaultListLimit = 50
	maxImageBytes    = 5 << 20
)

type MemoryHandler struct {
	svc      *services.MemoryService
	profiles *services.ProfileService
	uploader upload.Uploader
}

func NewMemoryHandler(svc *services.MemoryService, profiles *services.ProfileService, uploader upload.Uploader) *MemoryHandler {
	return &MemoryHandler{svc: svc, profiles: profiles, uploader: uploader}
}

// authorizeWrite checks that the caller may write to elderID's data.
func (h *MemoryHandler) authorizeWrite(r *http.Request, elderID string) error {
	user, ok := UserFrom(r.Context())
	if !ok {
		return model.ErrUnauthorized
	}
	ec, err := h.profiles.ResolveElderContext(r.Context(), user.UserID, elderID)
	if err != nil {
		return err
	}
	if ec.ElderID == nil || *ec.ElderID != elderID {
		return fmt.Errorf("%w: no access to elder", model.ErrUnauthorized)
	}
	return nil
}

// CreateMemory POST /api/memories
func (h *MemoryHandler) CreateMemory(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ElderID string   `json:"elderId"`
		RawText string   `json:"rawText"`
		Type    string   `json:"type"`
		Tags    []string `json:"tags"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.WriteBadRequest(w, "Invalid JSON")
		return
	}
	if err := validate.NonEmpty("elderId", req.ElderID); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if err := validate.RawText(req.RawText); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if err := validate.MemoryType(req.Type); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if err := h.authorizeWrite(r, req.ElderID); err != nil {
		respond.WriteDomainError(w, err)
		return
	}

	out, err := h.svc.CreateMemory(r.Context(), services.CreateMemoryRequest{
		ElderID: req.ElderID,
		RawText: req.RawText,
		Type:    req.Type,
		Tags:    req.Tags,
	})
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, out)
}

// ListMemories GET /api/memories
func (h *MemoryHandler) ListMemories(w http.ResponseWriter, r *http.Request) {
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
		respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"memories": []*model.Memory{}, "count": 0})
		return
	}

	limit := defaultListLimit
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			respond.WriteBadRequest(w, "limit must be a positive integer")
			return
		}
		limit = n
	}
	if t := q.Get("type"); t != "" {
		if err := validate.MemoryType(t); err != nil {
			respond.WriteBadRequest(w, err.Error())
			return
		}
	}

	out, err := h.svc.ListMemories(r.Context(), model.ListMemoriesRequest{
		ElderID: *ec.ElderID,
		Type:    q.Get("type"),
		Tag:     q.Get("tag"),
		Limit:   limit,
	})
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	if out == nil {
		out = []*model.Memory{}
	}
	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{"memories": out, "count": len(out)})
}

// GetMemory GET /api/memories/{memoryId}
func (h *MemoryHandler) GetMemory(w http.ResponseWriter, r *http.Request) {
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
	if ec.ElderID == nil {
		respond.WriteNotFound(w, "no linked elder")
		return
	}

	out, err := h.svc.GetMemory(r.Context(), *ec.ElderID, mux.Vars(r)["memoryId"])
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

// AttachImage POST /api/memories/{memoryId}/image
func (h *MemoryHandler) AttachImage(w http.ResponseWriter, r *http.Request) {
	if h.uploader == nil {
		respond.WriteError(w, http.StatusNotImplemented, "image storage is not configured")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes)
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		respond.WriteBadRequest(w, "image must be a multipart upload of at most 5MB")
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		respond.WriteBadRequest(w, "image field is required")
		return
	}
	defer func() { _ = file.Close() }()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		respond.WriteBadRequest(w, "only image uploads are accepted")
		return
	}

	elderID := r.URL.Query().Get("elderId")
	if r.FormValue("elderId") != "" {
		elderID = r.FormValue("elderId")
	}
	if err := validate.NonEmpty("elderId", elderID); err != nil {
		respond.WriteBadRequest(w, err.Error())
		return
	}
	if err := h.authorizeWrite(r, elderID); err != nil {
		respond.WriteDomainError(w, err)
		return
	}

	memoryID := mux.Vars(r)["memoryId"]
	if _, err := h.svc.GetMemory(r.Context(), elderID, memoryID); err != nil {
		respond.WriteDomainError(w, err)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		respond.WriteBadRequest(w, "failed to read upload")
		return
	}

	objectPath := fmt.Sprintf("%s/%s%s", elderID, memoryID, extensionFor(contentType))
	url, err := h.uploader.UploadImage(r.Context(), objectPath, contentType, data)
	if err != nil {
		respond.WriteInternalError(w, err.Error())
		return
	}

	out, err := h.svc.AttachImage(r.Context(), elderID, memoryID, url)
	if err != nil {
		respond.WriteDomainError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, out)
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	default:
		return ""
	}
}
