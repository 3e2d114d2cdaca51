package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/maisonlux/ateliergo/internal/assignments"
	"github.com/maisonlux/ateliergo/internal/buildinfo"
	"github.com/maisonlux/ateliergo/internal/catalog"
	"github.com/maisonlux/ateliergo/internal/config"
	"github.com/maisonlux/ateliergo/internal/middleware"
	"github.com/maisonlux/ateliergo/internal/notify"
	"github.com/maisonlux/ateliergo/internal/orders"
	"github.com/maisonlux/ateliergo/internal/stages"
	"github.com/maisonlux/ateliergo/internal/store"
)

// Router wraps the mux router and the application services
type Router struct {
	*mux.Router
	cfg         *config.Config
	store       *store.Store
	catalog     *catalog.Catalog
	orders      *orders.Service
	engine      *stages.Engine
	assignments *assignments.Cache
	hub         *notify.Hub
}

// Deps bundles everything the router serves
type Deps struct {
	Config      *config.Config
	Store       *store.Store
	Catalog     *catalog.Catalog
	Orders      *orders.Service
	Engine      *stages.Engine
	Assignments *assignments.Cache
	Hub         *notify.Hub
}

// NewRouter creates a new HTTP router with all routes
func NewRouter(deps Deps) *Router {
	r := &Router{
		Router:      mux.NewRouter(),
		cfg:         deps.Config,
		store:       deps.Store,
		catalog:     deps.Catalog,
		orders:      deps.Orders,
		engine:      deps.Engine,
		assignments: deps.Assignments,
		hub:         deps.Hub,
	}

	// Health check endpoint
	r.HandleFunc("/health", r.healthCheck).Methods("GET")

	// Auth routes
	auth := r.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/login", r.login).Methods("POST")

	// Protected API routes
	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.Auth(deps.Config.JWTSecret))

	api.HandleFunc("/orders", r.listOrders).Methods("GET")
	api.HandleFunc("/orders", r.createOrder).Methods("POST")
	api.HandleFunc("/orders/{id}", r.getOrder).Methods("GET")
	api.HandleFunc("/orders/{id}", r.updateOrder).Methods("PUT")
	api.HandleFunc("/orders/{id}", r.deleteOrder).Methods("DELETE")
	api.HandleFunc("/orders/{id}/items/{itemId}", r.deleteOrderItem).Methods("DELETE")
	api.HandleFunc("/orders/{id}/items/{itemId}/advance", r.advanceItem).Methods("POST")

	api.HandleFunc("/items/{id}/assignments", r.getAssignments).Methods("GET")
	api.HandleFunc("/items/{id}/assignments/{taskId}", r.setAssignment).Methods("PUT")
	api.HandleFunc("/items/{id}/notes", r.addTechnicalNote).Methods("POST")

	api.HandleFunc("/workflows", r.listWorkflows).Methods("GET")
	api.HandleFunc("/workflows", r.createWorkflow).Methods("POST")
	api.HandleFunc("/workflows/{id}", r.saveWorkflow).Methods("PUT")
	api.HandleFunc("/workflows/{id}", r.deleteWorkflow).Methods("DELETE")

	api.HandleFunc("/services", r.listServices).Methods("GET")
	api.HandleFunc("/inventory", r.listInventory).Methods("GET")
	api.HandleFunc("/members", r.listMembers).Methods("GET")

	// Realtime change notifications (best-effort)
	r.HandleFunc("/ws", r.hub.ServeWS)

	return r
}

// healthCheck returns the health status of the API
func (r *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	body := buildinfo.Summary()
	body["status"] = "ok"
	respondJSON(w, http.StatusOK, body)
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{
		"error": message,
	})
}
