package api

import (
	"errors"
	"net/http"
	"sync"
	"time"

	respond "github.com/memoryfriend/memory-friend/server/internal/api/respond"
	"github.com/memoryfriend/memory-friend/server/internal/model"
	"github.com/memoryfriend/memory-friend/server/internal/services"
)

const dashboardListLimit = 10

// DashboardHandler aggregates the caregiver dashboard in one request.
type DashboardHandler struct {
	memories  *services.MemoryService
	questions *services.QuestionService
	summaries *services.SummaryService
	profiles  *services.ProfileService
	loc       *time.Location
}

func NewDashboardHandler(memories *services.MemoryService, questions *services.QuestionService, summaries *services.SummaryService, profiles *services.ProfileService, loc *time.Location) *DashboardHandler {
	if loc == nil {
		loc = time.Local
	}
	return &DashboardHandler{memories: memories, questions: questions, summaries: summaries, profiles: profiles, loc: loc}
}

// dashboardPart carries either a value or the error that prevented loading
// it. One failing part must not take the whole dashboard down.
type dashboardPart struct {
	Data  interface{} `json:"data"`
	Error string      `json:"error,omitempty"`
}

// Dashboard GET /api/dashboard
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
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
		respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"elder":     ec,
			"memories":  dashboardPart{Data: []*model.Memory{}},
			"questions": dashboardPart{Data: []*model.Question{}},
			"summary":   dashboardPart{},
		})
		return
	}
	elderID := *ec.ElderID

	date := r.URL.Query().Get("date")
	if date == "" {
		date = time.Now().In(h.loc).Format("2006-01-02")
	}

	var (
		wg           sync.WaitGroup
		memPart      dashboardPart
		questionPart dashboardPart
		summaryPart  dashboardPart
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		out, err := h.memories.ListMemories(r.Context(), model.ListMemoriesRequest{ElderID: elderID, Limit: dashboardListLimit})
		if err != nil {
			memPart = dashboardPart{Data: []*model.Memory{}, Error: err.Error()}
			return
		}
		if out == nil {
			out = []*model.Memory{}
		}
		memPart = dashboardPart{Data: out}
	}()
	go func() {
		defer wg.Done()
		out, err := h.questions.ListQuestions(r.Context(), elderID, dashboardListLimit)
		if err != nil {
			questionPart = dashboardPart{Data: []*model.Question{}, Error: err.Error()}
			return
		}
		if out == nil {
			out = []*model.Question{}
		}
		questionPart = dashboardPart{Data: out}
	}()
	go func() {
		defer wg.Done()
		out, err := h.summaries.GetDailySummary(r.Context(), elderID, date)
		if errors.Is(err, model.ErrNotFound) {
			// No summary generated yet for that day.
			summaryPart = dashboardPart{}
			return
		}
		if err != nil {
			summaryPart = dashboardPart{Error: err.Error()}
			return
		}
		summaryPart = dashboardPart{Data: out}
	}()
	wg.Wait()

	respond.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"elder":     ec,
		"memories":  memPart,
		"questions": questionPart,
		"summary":   summaryPart,
	})
}
