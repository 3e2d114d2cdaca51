package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/maisonlux/ateliergo/internal/middleware"
	"github.com/maisonlux/ateliergo/internal/models"
)

// listOrders returns all orders with their items
func (r *Router) listOrders(w http.ResponseWriter, req *http.Request) {
	orders, err := r.orders.List(req.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch orders")
		return
	}

	respondJSON(w, http.StatusOK, orders)
}

// getOrder returns a single order by ID
func (r *Router) getOrder(w http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]

	order, err := r.orders.Get(req.Context(), id)
	if err != nil {
		respondError(w, http.StatusNotFound, "Order not found")
		return
	}

	respondJSON(w, http.StatusOK, order)
}

// createOrder creates a new order with its items
func (r *Router) createOrder(w http.ResponseWriter, req *http.Request) {
	var order models.Order
	if err := json.NewDecoder(req.Body).Decode(&order); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	actor := middleware.ActorFromContext(req.Context())
	if err := r.orders.Create(req.Context(), &order, actor.Name); err != nil {
		// The header may exist even when items failed; surface the
		// message so the operator can clean up by order id.
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, order)
}

// updateOrder updates an existing order, merging item progression state
func (r *Router) updateOrder(w http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]

	var order models.Order
	if err := json.NewDecoder(req.Body).Decode(&order); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}

	if err := r.orders.Update(req.Context(), id, &order); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to update order")
		return
	}

	respondJSON(w, http.StatusOK, order)
}

// deleteOrder deletes an order and its items
func (r *Router) deleteOrder(w http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]

	if err := r.orders.Delete(req.Context(), id); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete order")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Order deleted successfully",
	})
}

// deleteOrderItem removes one item and re-persists the order total
func (r *Router) deleteOrderItem(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)

	if err := r.orders.DeleteItem(req.Context(), vars["id"], vars["itemId"]); err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to delete order item")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": "Item deleted successfully",
	})
}

// advanceRequest is the payload for a stage transition
type advanceRequest struct {
	StageID string `json:"stageId"`
	Note    string `json:"note,omitempty"`
}

// advanceItem moves a service item to a new workflow stage
func (r *Router) advanceItem(w http.ResponseWriter, req *http.Request) {
	vars := mux.Vars(req)

	var body advanceRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if body.StageID == "" {
		respondError(w, http.StatusBadRequest, "stageId is required")
		return
	}

	actor := middleware.ActorFromContext(req.Context())
	item, err := r.engine.Advance(req.Context(), vars["id"], vars["itemId"], body.StageID, actor.Name, body.Note)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to advance item")
		return
	}
	if item == nil {
		// Stale reference: the engine treats a missing item as a no-op.
		respondJSON(w, http.StatusOK, map[string]string{
			"message": "Item no longer exists",
		})
		return
	}

	respondJSON(w, http.StatusOK, item)
}

// noteRequest is the payload for a technical note
type noteRequest struct {
	Note string `json:"note"`
}

// addTechnicalNote appends a technician note to an item's technical log
func (r *Router) addTechnicalNote(w http.ResponseWriter, req *http.Request) {
	id := mux.Vars(req)["id"]

	var body noteRequest
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil || body.Note == "" {
		respondError(w, http.StatusBadRequest, "note is required")
		return
	}

	actor := middleware.ActorFromContext(req.Context())
	item, err := r.engine.AddNote(req.Context(), id, actor.Name, body.Note)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to add note")
		return
	}
	if item == nil {
		respondError(w, http.StatusNotFound, "Item not found")
		return
	}

	respondJSON(w, http.StatusOK, item)
}
