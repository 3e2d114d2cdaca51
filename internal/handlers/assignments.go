package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

// getAssignments returns the task→members assignment map of one item
func (r *Router) getAssignments(w http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]

	m, err := r.assignments.Get(req.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch assignments")
		return
	}

	respondJSON(w, http.StatusOK, m)
}

// assignmentRequest is the payload for a task assignment update
type assignmentRequest struct {
	MemberIDs []string `json:"memberIds"`
	Completed *bool    `json:"completed,omitempty"`
}

// setAssignment assigns staff to one task of one item
func (r *Router) setAssignment(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)

	var body assignmentRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if body.MemberIDs != nil {
		if err := r.assignments.Set(req.Context(), vars["id"], vars["taskId"], body.MemberIDs); err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to save assignment")
			return
		}
	}
	if body.Completed != nil {
		if err := r.assignments.SetCompleted(req.Context(), vars["id"], vars["taskId"], *body.Completed); err != nil {
			respondError(w, http.StatusInternalServerError, "Failed to save task completion")
			return
		}
	}

	m, err := r.assignments.Get(req.Context(), vars["id"])
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch assignments")
		return
	}
	respondJSON(w, http.StatusOK, m)
}
