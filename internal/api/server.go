// Package api exposes the dashboard's JSON surface: visibility metrics,
// scan triggering, report moderation, recommendations and chat.
package api

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/virshi/ai-visibility/internal/chat"
	"github.com/virshi/ai-visibility/internal/config"
	"github.com/virshi/ai-visibility/internal/recommendations"
	"github.com/virshi/ai-visibility/internal/reports"
	"github.com/virshi/ai-visibility/internal/scans"
	"github.com/virshi/ai-visibility/internal/store"
	"github.com/virshi/ai-visibility/internal/webhooks"
)

// scanHistoryLimit caps how many scans the dashboard and history reads load.
const scanHistoryLimit = 1000

// Server wires the HTTP routes to the domain services.
type Server struct {
	config          *config.Config
	store           store.Interface
	tokens          TokenValidator
	scans           *scans.Service
	reports         *reports.Service
	recommendations *recommendations.Service
	chat            *chat.Service
	hooks           webhooks.Interface

	startedAt      time.Time
	requestsServed int64
}

// NewServer creates the API server.
func NewServer(cfg *config.Config, st store.Interface, tokens TokenValidator,
	scanService *scans.Service, reportService *reports.Service,
	recoService *recommendations.Service, chatService *chat.Service,
	hooks webhooks.Interface) *Server {
	return &Server{
		config:          cfg,
		store:           st,
		tokens:          tokens,
		scans:           scanService,
		reports:         reportService,
		recommendations: recoService,
		chat:            chatService,
		hooks:           hooks,
		startedAt:       time.Now().UTC(),
	}
}

// Router builds the route table. Everything under /api requires a valid
// session token; moderation and scan deletion additionally require an admin
// role.
func (s *Server) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(s.countRequests)

	router.HandleFunc("/health", s.handleHealth).Methods("GET")
	router.HandleFunc("/metrics", s.handleMetrics).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()
	api.Use(s.authenticate)

	api.HandleFunc("/projects/{id}/dashboard", s.handleDashboard).Methods("GET")
	api.HandleFunc("/projects/{id}/keywords", s.handleListKeywords).Methods("GET")
	api.HandleFunc("/projects/{id}/keywords", s.handleAddKeywords).Methods("POST")
	api.HandleFunc("/projects/{id}/prompts", s.handleGeneratePrompts).Methods("POST")
	api.HandleFunc("/projects/{id}/sources", s.handleSources).Methods("GET")
	api.HandleFunc("/projects/{id}/assets", s.handleListAssets).Methods("GET")
	api.HandleFunc("/projects/{id}/assets", s.handleAddAsset).Methods("POST")
	api.HandleFunc("/assets/{id}", s.handleDeleteAsset).Methods("DELETE")
	api.HandleFunc("/projects/{id}/competitors", s.handleCompetitors).Methods("GET")
	api.HandleFunc("/projects/{id}/history", s.handleHistory).Methods("GET")
	api.HandleFunc("/projects/{id}/scans", s.handleTriggerScans).Methods("POST")
	api.HandleFunc("/projects/{id}/reports", s.handleListReports).Methods("GET")
	api.HandleFunc("/projects/{id}/reports", s.handleGenerateReport).Methods("POST")
	api.HandleFunc("/projects/{id}/recommendations", s.handleRecommendationHistory).Methods("GET")
	api.HandleFunc("/projects/{id}/recommendations", s.handleOrderRecommendation).Methods("POST")
	api.HandleFunc("/projects/{id}/chat", s.handleChat).Methods("POST")
	api.HandleFunc("/keywords/{id}/detail", s.handleKeywordDetail).Methods("GET")
	api.HandleFunc("/keywords/{id}", s.handleDeleteKeyword).Methods("DELETE")
	api.HandleFunc("/recommendations/categories", s.handleCategories).Methods("GET")

	admin := api.NewRoute().Subrouter()
	admin.Use(s.requireAdmin)
	admin.HandleFunc("/projects/{id}/reports/{reportId}/publish", s.handlePublishReport).Methods("POST")
	admin.HandleFunc("/reports/{id}", s.handleUpdateReport).Methods("PUT")
	admin.HandleFunc("/reports/{id}", s.handleDeleteReport).Methods("DELETE")
	admin.HandleFunc("/scans/{id}", s.handleDeleteScan).Methods("DELETE")
	admin.HandleFunc("/projects/{id}/archive", s.handleArchivedReports).Methods("GET")
	admin.HandleFunc("/projects/{id}/archive/{name}", s.handleArchivedReport).Methods("GET")
	admin.HandleFunc("/projects/{id}/archive/{name}", s.handleDeleteArchivedReport).Methods("DELETE")

	return router
}

func (s *Server) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt64(&s.requestsServed, 1)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"uptime_seconds":  int(time.Since(s.startedAt).Seconds()),
		"requests_served": atomic.LoadInt64(&s.requestsServed),
	})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logrus.Errorf("Failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
