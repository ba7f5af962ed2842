package api

import (
	"time"

	"github.com/gorilla/mux"

	"github.com/memoryfriend/memory-friend/server/internal/api/recovery"
	"github.com/memoryfriend/memory-friend/server/internal/auth"
	"github.com/memoryfriend/memory-friend/server/internal/services"
	"github.com/memoryfriend/memory-friend/server/internal/upload"
)

// RouterDeps collects everything the HTTP surface needs. Uploader may be nil
// when no storage backend is configured.
type RouterDeps struct {
	Memories   *services.MemoryService
	Questions  *services.QuestionService
	Profiles   *services.ProfileService
	Summaries  *services.SummaryService
	Uploader   upload.Uploader
	Authorizer auth.Authorizer
	TimeZone   *time.Location
}

// NewRouter creates the HTTP router with all API routes. The health endpoint
// is the only route outside the session check.
func NewRouter(d RouterDeps) *mux.Router {
	router := mux.NewRouter()
	router.Use(recovery.Middleware)

	healthHandler := NewHealthHandler()
	router.HandleFunc("/api/health", healthHandler.CheckHealth).Methods("GET")

	memoryHandler := NewMemoryHandler(d.Memories, d.Profiles, d.Uploader)
	questionHandler := NewQuestionHandler(d.Questions, d.Profiles)
	caregiverHandler := NewCaregiverHandler(d.Profiles)
	summaryHandler := NewSummaryHandler(d.Summaries, d.Profiles, d.TimeZone)
	dashboardHandler := NewDashboardHandler(d.Memories, d.Questions, d.Summaries, d.Profiles, d.TimeZone)

	authed := router.PathPrefix("/api").Subrouter()
	authed.Use(SessionMiddleware(d.Authorizer))

	authed.HandleFunc("/profiles", caregiverHandler.CreateProfile).Methods("POST")
	authed.HandleFunc("/profiles/me", caregiverHandler.GetProfile).Methods("GET")
	authed.HandleFunc("/caregivers/link-elder", caregiverHandler.LinkElder).Methods("POST")
	authed.HandleFunc("/current-elder", caregiverHandler.CurrentElder).Methods("GET")

	authed.HandleFunc("/memories", memoryHandler.CreateMemory).Methods("POST")
	authed.HandleFunc("/memories", memoryHandler.ListMemories).Methods("GET")
	authed.HandleFunc("/memories/{memoryId}", memoryHandler.GetMemory).Methods("GET")
	authed.HandleFunc("/memories/{memoryId}/image", memoryHandler.AttachImage).Methods("POST")

	authed.HandleFunc("/questions", questionHandler.Ask).Methods("POST")
	authed.HandleFunc("/questions", questionHandler.ListQuestions).Methods("GET")

	authed.HandleFunc("/summaries/daily", summaryHandler.DailySummary).Methods("GET")
	authed.HandleFunc("/dashboard", dashboardHandler.Dashboard).Methods("GET")

	return router
}
