package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/maisonlux/ateliergo/internal/models"
)

// listWorkflows returns the assembled workflow catalog. An empty list
// with status 503 means the catalog could not be loaded; clients must not
// read it as "no workflows configured".
func (r *Router) listWorkflows(w http.ResponseWriter, req *http.Request) {
	workflows, err := r.catalog.Workflows(req.Context())
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "Workflow catalog unavailable")
		return
	}

	respondJSON(w, http.StatusOK, workflows)
}

// createWorkflow persists a new workflow definition
func (r *Router) createWorkflow(w http.ResponseWriter, req *http.Request) {
	var wf models.Workflow
	if err := json.NewDecoder(req.Body).Decode(&wf); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := r.store.CreateWorkflow(req.Context(), &wf); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to create workflow")
		return
	}

	r.catalog.Invalidate()
	r.hub.RecordChanged(models.Workflow{}.TableName())
	respondJSON(w, http.StatusCreated, wf)
}

// saveWorkflow updates a workflow, replacing its stage list wholesale
func (r *Router) saveWorkflow(w http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]

	var wf models.Workflow
	if err := json.NewDecoder(req.Body).Decode(&wf); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	wf.ID = id

	if err := r.store.SaveWorkflow(req.Context(), &wf); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to save workflow")
		return
	}

	r.catalog.Invalidate()
	r.hub.RecordChanged(models.Workflow{}.TableName())
	respondJSON(w, http.StatusOK, wf)
}

// deleteWorkflow removes a workflow definition
func (r *Router) deleteWorkflow(w http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]

	if err := r.store.DeleteWorkflow(req.Context(), id); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete workflow")
		return
	}

	r.catalog.Invalidate()
	r.hub.RecordChanged(models.Workflow{}.TableName())
	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Workflow deleted successfully",
	})
}
