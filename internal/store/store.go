// Package store is the single GORM-backed data access layer. Domain
// packages declare the slice of it they need as a local interface, so
// their tests run against in-memory fakes instead of a live database.
package store

import (
	"context"
	"fmt"

	"github.com/maisonlux/ateliergo/internal/database"
	"github.com/maisonlux/ateliergo/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store implements all persistence operations over one database handle.
type Store struct {
	db *database.DB
}

// New creates a store over the given database
func New(db *database.DB) *Store {
	return &Store{db: db}
}

// --- Workflow catalog ---

// ListWorkflows returns workflow headers only; stages and tasks are
// fetched separately so the catalog can load all three levels in parallel.
func (s *Store) ListWorkflows(ctx context.Context) ([]models.Workflow, error) {
	var workflows []models.Workflow
	if err := s.db.WithContext(ctx).Find(&workflows).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch workflows: %w", err)
	}
	return workflows, nil
}

// ListStages returns all stages across all workflows
func (s *Store) ListStages(ctx context.Context) ([]models.WorkflowStage, error) {
	var stages []models.WorkflowStage
	if err := s.db.WithContext(ctx).Find(&stages).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch workflow stages: %w", err)
	}
	return stages, nil
}

// ListTasks returns all tasks across all stages
func (s *Store) ListTasks(ctx context.Context) ([]models.WorkflowTask, error) {
	var tasks []models.WorkflowTask
	if err := s.db.WithContext(ctx).Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch workflow tasks: %w", err)
	}
	return tasks, nil
}

// CreateWorkflow persists a workflow definition with its stages and tasks
func (s *Store) CreateWorkflow(ctx context.Context, wf *models.Workflow) error {
	if err := s.db.WithContext(ctx).Create(wf).Error; err != nil {
		return fmt.Errorf("failed to create workflow: %w", err)
	}
	return nil
}

// SaveWorkflow updates a workflow header and replaces its stage list
// wholesale: stages (and their tasks, via cascade) are deleted and
// reinserted rather than patched. This mirrors how the configuration
// screen saves edits.
func (s *Store) SaveWorkflow(ctx context.Context, wf *models.Workflow) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		header := *wf
		stages := header.Stages
		header.Stages = nil

		if err := tx.Model(&models.Workflow{}).Where("id = ?", wf.ID).Updates(map[string]interface{}{
			"name":          header.Name,
			"description":   header.Description,
			"department":    header.Department,
			"service_types": header.ServiceTypes,
			"materials":     header.Materials,
		}).Error; err != nil {
			return err
		}

		if err := tx.Where("workflow_id = ?", wf.ID).Delete(&models.WorkflowStage{}).Error; err != nil {
			return err
		}

		for i := range stages {
			stages[i].WorkflowID = wf.ID
			if err := tx.Create(&stages[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save workflow: %w", err)
	}
	return nil
}

// DeleteWorkflow removes a workflow; stages and tasks cascade
func (s *Store) DeleteWorkflow(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Delete(&models.Workflow{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete workflow: %w", err)
	}
	return nil
}

// --- Orders and items ---

// CreateOrder persists the order header only. Items are written
// separately once the generated id is known.
func (s *Store) CreateOrder(ctx context.Context, order *models.Order) error {
	header := *order
	header.Items = nil
	if err := s.db.WithContext(ctx).Create(&header).Error; err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}
	order.ID = header.ID
	order.OrderDate = header.OrderDate
	return nil
}

// GetOrder loads an order with its items
func (s *Store) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	if err := s.db.WithContext(ctx).Preload("Items").First(&order, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("order not found: %w", err)
	}
	return &order, nil
}

// ListOrders returns all orders with their items, newest first
func (s *Store) ListOrders(ctx context.Context) ([]models.Order, error) {
	var orders []models.Order
	if err := s.db.WithContext(ctx).Preload("Items").Order("order_date DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch orders: %w", err)
	}
	return orders, nil
}

// UpdateOrderFields applies a partial update to the order header
func (s *Store) UpdateOrderFields(ctx context.Context, id string, fields map[string]interface{}) error {
	if err := s.db.WithContext(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	return nil
}

// DeleteOrder removes an order; its items cascade
func (s *Store) DeleteOrder(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Delete(&models.Order{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	return nil
}

// CreateItem persists one service item
func (s *Store) CreateItem(ctx context.Context, item *models.ServiceItem) error {
	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("failed to create service item: %w", err)
	}
	return nil
}

// GetItem loads one service item by id
func (s *Store) GetItem(ctx context.Context, id string) (*models.ServiceItem, error) {
	var item models.ServiceItem
	if err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("service item not found: %w", err)
	}
	return &item, nil
}

// ItemsByOrder returns the persisted items of one order
func (s *Store) ItemsByOrder(ctx context.Context, orderID string) ([]models.ServiceItem, error) {
	var items []models.ServiceItem
	if err := s.db.WithContext(ctx).Where("order_id = ?", orderID).Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch order items: %w", err)
	}
	return items, nil
}

// UpsertItems inserts or replaces the given items by primary key
func (s *Store) UpsertItems(ctx context.Context, items []models.ServiceItem) error {
	if len(items) == 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&items).Error; err != nil {
		return fmt.Errorf("failed to upsert service items: %w", err)
	}
	return nil
}

// DeleteItem removes one service item
func (s *Store) DeleteItem(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Delete(&models.ServiceItem{}, "id = ?", id).Error; err != nil {
		return fmt.Errorf("failed to delete service item: %w", err)
	}
	return nil
}

// DeleteItemsNotIn removes items of an order whose ids are absent from
// keep. An empty keep list removes every item of the order.
func (s *Store) DeleteItemsNotIn(ctx context.Context, orderID string, keep []string) error {
	q := s.db.WithContext(ctx).Where("order_id = ?", orderID)
	if len(keep) > 0 {
		q = q.Where("id NOT IN ?", keep)
	}
	if err := q.Delete(&models.ServiceItem{}).Error; err != nil {
		return fmt.Errorf("failed to prune removed items: %w", err)
	}
	return nil
}

// UpdateItemFields applies a partial update to one service item as a
// single write.
func (s *Store) UpdateItemFields(ctx context.Context, id string, fields map[string]interface{}) error {
	if err := s.db.WithContext(ctx).Model(&models.ServiceItem{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return fmt.Errorf("failed to update service item: %w", err)
	}
	return nil
}

// --- Assignment side-channel ---

// LoadAssignments returns the persisted task-assignment list of one item
func (s *Store) LoadAssignments(ctx context.Context, itemID string) ([]models.TaskAssignment, error) {
	item, err := s.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return item.TaskAssignments, nil
}

// SaveAssignments writes the full task-assignment list of one item back
func (s *Store) SaveAssignments(ctx context.Context, itemID string, assignments []models.TaskAssignment) error {
	return s.UpdateItemFields(ctx, itemID, map[string]interface{}{
		"task_assignments": assignments,
	})
}

// --- Inventory ---

// ListInventory returns the current inventory snapshot
func (s *Store) ListInventory(ctx context.Context) ([]models.InventoryItem, error) {
	var items []models.InventoryItem
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch inventory: %w", err)
	}
	return items, nil
}

// SetInventoryQuantity sets the absolute quantity of one inventory row
func (s *Store) SetInventoryQuantity(ctx context.Context, id string, quantity float64) error {
	if err := s.db.WithContext(ctx).Model(&models.InventoryItem{}).Where("id = ?", id).
		Update("quantity", quantity).Error; err != nil {
		return fmt.Errorf("failed to update inventory quantity: %w", err)
	}
	return nil
}

// --- Members ---

// ListMembers returns active staff members
func (s *Store) ListMembers(ctx context.Context) ([]models.Member, error) {
	var members []models.Member
	if err := s.db.WithContext(ctx).Where("active = ?", true).Order("name ASC").Find(&members).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch members: %w", err)
	}
	return members, nil
}

// GetMember loads one member by id
func (s *Store) GetMember(ctx context.Context, id string) (*models.Member, error) {
	var member models.Member
	if err := s.db.WithContext(ctx).First(&member, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("member not found: %w", err)
	}
	return &member, nil
}

// --- Service catalog ---

// ListServices returns all catalog service records
func (s *Store) ListServices(ctx context.Context) ([]models.CatalogService, error) {
	var services []models.CatalogService
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&services).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch catalog services: %w", err)
	}
	return services, nil
}

// GetService loads one catalog service record
func (s *Store) GetService(ctx context.Context, id string) (*models.CatalogService, error) {
	var service models.CatalogService
	if err := s.db.WithContext(ctx).First(&service, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("catalog service not found: %w", err)
	}
	return &service, nil
}
