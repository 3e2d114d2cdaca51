// Package orders owns the order aggregate: creation, updates that must
// not erase stage-progression state, deletion, and the persisted total
// invariant.
package orders

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/maisonlux/ateliergo/internal/catalog"
	"github.com/maisonlux/ateliergo/internal/inventory"
	"github.com/maisonlux/ateliergo/internal/models"
	"github.com/maisonlux/ateliergo/internal/stages"
)

// Store is the slice of persistence the order service needs.
type Store interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	ListOrders(ctx context.Context) ([]models.Order, error)
	UpdateOrderFields(ctx context.Context, id string, fields map[string]interface{}) error
	DeleteOrder(ctx context.Context, id string) error

	CreateItem(ctx context.Context, item *models.ServiceItem) error
	ItemsByOrder(ctx context.Context, orderID string) ([]models.ServiceItem, error)
	UpsertItems(ctx context.Context, items []models.ServiceItem) error
	DeleteItem(ctx context.Context, id string) error
	DeleteItemsNotIn(ctx context.Context, orderID string, keep []string) error
}

// Notifier receives best-effort change events after successful writes.
type Notifier interface {
	RecordChanged(table string)
}

// Service is the order aggregate manager.
type Service struct {
	store    Store
	catalog  *catalog.Catalog
	engine   *stages.Engine
	deductor *inventory.Deductor
	notifier Notifier
	now      func() time.Time
}

// NewService creates an order service. deductor and notifier may be nil.
func NewService(store Store, cat *catalog.Catalog, engine *stages.Engine, deductor *inventory.Deductor, notifier Notifier) *Service {
	return &Service{
		store:    store,
		catalog:  cat,
		engine:   engine,
		deductor: deductor,
		notifier: notifier,
		now:      time.Now,
	}
}

// WithClock overrides the time source for tests
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// ComputeTotal applies the order total invariant:
//
//	total = max(0, sum(price*quantity) - discount + additionalFees)
//
// The persisted total is always recomputed through this and never taken
// from the client.
func ComputeTotal(items []models.ServiceItem, discount, additionalFees float64) float64 {
	var subtotal float64
	for _, it := range items {
		subtotal += it.Price * float64(it.Quantity)
	}
	total := subtotal - discount + additionalFees
	if total < 0 {
		return 0
	}
	return total
}

// Get loads one order with its items
func (s *Service) Get(ctx context.Context, id string) (*models.Order, error) {
	return s.store.GetOrder(ctx, id)
}

// List returns all orders, newest first
func (s *Service) List(ctx context.Context) ([]models.Order, error) {
	return s.store.ListOrders(ctx)
}

// Create persists a new order: header first (obtaining the generated id),
// then each item initialized to its starting stage, then a best-effort
// inventory deduction for items whose workflow declares materials.
//
// If an item write fails after the header succeeded, the error propagates
// with the order id included; the header is NOT rolled back. The caller
// owns that at-least-once risk. Inventory failures never fail the order.
func (s *Service) Create(ctx context.Context, order *models.Order, actor string) error {
	// Quantity defaults must land before the total so the persisted
	// amount always matches the persisted items.
	defaultQuantities(order.Items)
	order.TotalAmount = ComputeTotal(order.Items, order.Discount, order.AdditionalFees)
	if order.Status == "" {
		order.Status = models.OrderStatusPending
	}

	if err := s.store.CreateOrder(ctx, order); err != nil {
		return err
	}

	for i := range order.Items {
		item := &order.Items[i]
		item.OrderID = order.ID
		s.engine.Initialize(ctx, item, actor)
		if err := s.store.CreateItem(ctx, item); err != nil {
			return fmt.Errorf("order %s created but item %q failed: %w", order.ID, item.Name, err)
		}
	}

	if s.deductor != nil {
		s.deductor.DeductForOrder(ctx, order.Items, s.workflowsByID(ctx))
	}

	if s.notifier != nil {
		s.notifier.RecordChanged(models.Order{}.TableName())
	}
	return nil
}

// Update recomputes the total and writes the order back. Each incoming
// item is merged with its persisted counterpart first: history, technical
// log, last-updated, the assignment side-channel, notes and assigned
// members survive whenever the incoming item does not supply them. The
// edit screens only touch commercial fields, and a commercial edit must
// never erase stage progression. Previously persisted items absent from
// the incoming set are deleted.
func (s *Service) Update(ctx context.Context, orderID string, order *models.Order) error {
	existing, err := s.store.ItemsByOrder(ctx, orderID)
	if err != nil {
		return err
	}
	existingByID := make(map[string]models.ServiceItem, len(existing))
	for _, it := range existing {
		existingByID[it.ID] = it
	}

	defaultQuantities(order.Items)
	total := ComputeTotal(order.Items, order.Discount, order.AdditionalFees)
	now := s.now().UTC()

	merged := make([]models.ServiceItem, 0, len(order.Items))
	keep := make([]string, 0, len(order.Items))
	for i := range order.Items {
		item := order.Items[i]
		item.OrderID = orderID
		if prev, ok := existingByID[item.ID]; ok {
			mergeItem(&item, prev)
		} else {
			// Item added during the edit: give it an id up front so the
			// prune below cannot sweep it away, and a starting stage.
			if item.ID == "" {
				item.ID = uuid.NewString()
			}
			s.engine.Initialize(ctx, &item, "")
		}
		merged = append(merged, item)
		keep = append(keep, item.ID)
	}

	if err := s.store.UpsertItems(ctx, merged); err != nil {
		return err
	}
	if err := s.store.DeleteItemsNotIn(ctx, orderID, keep); err != nil {
		return err
	}

	fields := map[string]interface{}{
		"customer_id":       order.CustomerID,
		"customer_name":     order.CustomerName,
		"total_amount":      total,
		"deposit":           order.Deposit,
		"discount":          order.Discount,
		"additional_fees":   order.AdditionalFees,
		"status":            order.Status,
		"expected_delivery": order.ExpectedDelivery,
		"notes":             order.Notes,
		"updated_at":        now,
	}
	if err := s.store.UpdateOrderFields(ctx, orderID, fields); err != nil {
		return err
	}

	order.ID = orderID
	order.Items = merged
	order.TotalAmount = total

	if s.notifier != nil {
		s.notifier.RecordChanged(models.Order{}.TableName())
	}
	return nil
}

// Delete removes an order; its items go with it.
func (s *Service) Delete(ctx context.Context, orderID string) error {
	if err := s.store.DeleteOrder(ctx, orderID); err != nil {
		return err
	}
	if s.notifier != nil {
		s.notifier.RecordChanged(models.Order{}.TableName())
	}
	return nil
}

// DeleteItem removes one item and re-persists the order total from the
// remaining items. This narrow path does not reapply discount or fees;
// callers needing discount-aware recompute go through Update.
func (s *Service) DeleteItem(ctx context.Context, orderID, itemID string) error {
	if err := s.store.DeleteItem(ctx, itemID); err != nil {
		return err
	}

	remaining, err := s.store.ItemsByOrder(ctx, orderID)
	if err != nil {
		return err
	}

	total := ComputeTotal(remaining, 0, 0)
	if err := s.store.UpdateOrderFields(ctx, orderID, map[string]interface{}{
		"total_amount": total,
		"updated_at":   s.now().UTC(),
	}); err != nil {
		return err
	}

	if s.notifier != nil {
		s.notifier.RecordChanged(models.Order{}.TableName())
	}
	return nil
}

// defaultQuantities normalizes omitted or zero quantities to 1 so the
// total is computed over exactly what gets persisted.
func defaultQuantities(items []models.ServiceItem) {
	for i := range items {
		if items[i].Quantity <= 0 {
			items[i].Quantity = 1
		}
	}
}

// mergeItem copies the stage-progression and annotation state from the
// persisted item onto the incoming one for every field the incoming item
// left unset.
func mergeItem(incoming *models.ServiceItem, prev models.ServiceItem) {
	if incoming.History == nil {
		incoming.History = prev.History
	}
	if incoming.TechnicalLog == nil {
		incoming.TechnicalLog = prev.TechnicalLog
	}
	if incoming.TaskAssignments == nil {
		incoming.TaskAssignments = prev.TaskAssignments
	}
	if incoming.LastUpdated.IsZero() {
		incoming.LastUpdated = prev.LastUpdated
	}
	if incoming.Notes == "" {
		incoming.Notes = prev.Notes
	}
	if incoming.AssignedMembers == nil {
		incoming.AssignedMembers = prev.AssignedMembers
	}
	if incoming.Status == "" {
		incoming.Status = prev.Status
	}
	if incoming.WorkflowID == "" {
		incoming.WorkflowID = prev.WorkflowID
	}
	if incoming.Technician == "" {
		incoming.Technician = prev.Technician
	}
	if incoming.BeforeImages == nil {
		incoming.BeforeImages = prev.BeforeImages
	}
	if incoming.AfterImages == nil {
		incoming.AfterImages = prev.AfterImages
	}
	if incoming.CreatedAt.IsZero() {
		incoming.CreatedAt = prev.CreatedAt
	}
}

// workflowsByID returns the current catalog keyed by workflow id. An
// unavailable catalog yields an empty map, which simply deducts nothing.
func (s *Service) workflowsByID(ctx context.Context) map[string]models.Workflow {
	workflows, err := s.catalog.Workflows(ctx)
	if err != nil {
		log.Printf("⚠️ Catalog unavailable for inventory deduction: %v", err)
		return nil
	}
	byID := make(map[string]models.Workflow, len(workflows))
	for _, wf := range workflows {
		byID[wf.ID] = wf
	}
	return byID
}
