package handlers

import (
	"net/http"

	"github.com/maisonlux/ateliergo/internal/catalog"
	"github.com/maisonlux/ateliergo/internal/models"
)

// listServices returns catalog services in their canonical resolved shape
func (r *Router) listServices(w http.ResponseWriter, req *http.Request) {
	services, err := r.store.ListServices(req.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch services")
		return
	}

	resolved := make([]models.ResolvedService, 0, len(services))
	for _, svc := range services {
		resolved = append(resolved, catalog.ResolveService(svc))
	}

	respondJSON(w, http.StatusOK, resolved)
}

// listInventory returns the current inventory snapshot
func (r *Router) listInventory(w http.ResponseWriter, req *http.Request) {
	items, err := r.store.ListInventory(req.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch inventory")
		return
	}

	respondJSON(w, http.StatusOK, items)
}

// listMembers returns the active staff directory
func (r *Router) listMembers(w http.ResponseWriter, req *http.Request) {
	members, err := r.store.ListMembers(req.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch members")
		return
	}

	respondJSON(w, http.StatusOK, members)
}
