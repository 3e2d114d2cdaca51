// Package inventory computes and applies the material deductions a new
// order causes, from the bills of materials of the workflows its items
// resolve to.
package inventory

import (
	"context"
	"log"

	"github.com/maisonlux/ateliergo/internal/models"
)

// Store is the slice of persistence the deductor needs.
type Store interface {
	ListInventory(ctx context.Context) ([]models.InventoryItem, error)
	SetInventoryQuantity(ctx context.Context, id string, quantity float64) error
}

// Deductor applies workflow material consumption to inventory rows.
type Deductor struct {
	store Store
}

// NewDeductor creates a deductor over the given store
func NewDeductor(store Store) *Deductor {
	return &Deductor{store: store}
}

// ComputeDeductions returns the new absolute quantity per affected
// inventory row. Deductions from multiple items against the same row
// accumulate. Product items and items without a resolved workflow (or
// whose workflow declares no materials) consume nothing. Quantities
// never go below zero.
func ComputeDeductions(items []models.ServiceItem, workflows map[string]models.Workflow, snapshot []models.InventoryItem) map[string]float64 {
	totals := make(map[string]float64)
	for _, item := range items {
		if item.IsProduct() || item.WorkflowID == "" {
			continue
		}
		wf, ok := workflows[item.WorkflowID]
		if !ok {
			continue
		}
		for _, line := range wf.Materials {
			totals[line.InventoryItemID] += line.QuantityPerUnit * float64(item.Quantity)
		}
	}

	if len(totals) == 0 {
		return nil
	}

	current := make(map[string]float64, len(snapshot))
	for _, inv := range snapshot {
		current[inv.ID] = inv.Quantity
	}

	result := make(map[string]float64, len(totals))
	for id, deducted := range totals {
		qty, ok := current[id]
		if !ok {
			// Unknown inventory row: nothing to decrement.
			continue
		}
		newQty := qty - deducted
		if newQty < 0 {
			newQty = 0
		}
		result[id] = newQty
	}
	return result
}

// DeductForOrder computes and applies the deductions for a freshly
// created order. Each row update is its own unit of work: a failure is
// logged and the remaining rows still go through. Callers treat the
// whole operation as best-effort; it never fails an order.
func (d *Deductor) DeductForOrder(ctx context.Context, items []models.ServiceItem, workflows map[string]models.Workflow) {
	snapshot, err := d.store.ListInventory(ctx)
	if err != nil {
		log.Printf("⚠️ Inventory deduction skipped: %v", err)
		return
	}

	updates := ComputeDeductions(items, workflows, snapshot)
	for id, qty := range updates {
		if err := d.store.SetInventoryQuantity(ctx, id, qty); err != nil {
			log.Printf("⚠️ Inventory deduction failed for item %s: %v", id, err)
		}
	}
}
