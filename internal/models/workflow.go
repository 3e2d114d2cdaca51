package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MaterialLine is one row of a workflow's bill of materials:
// how much of an inventory item one unit of the service consumes.
type MaterialLine struct {
	InventoryItemID string  `json:"inventoryItemId"`
	QuantityPerUnit float64 `json:"quantityPerUnit"`
}

// Workflow is a named, ordered sequence of stages applicable to one or
// more service types. Definitions are shared templates: per-order state
// (history, task assignments) never lives here.
type Workflow struct {
	ID           string         `gorm:"primaryKey;type:uuid" json:"id"`
	Name         string         `gorm:"not null" json:"name"`
	Description  string         `gorm:"type:text" json:"description"`
	Department   string         `gorm:"index" json:"department"`
	ServiceTypes []string       `gorm:"serializer:json" json:"service_types"`
	Materials    []MaterialLine `gorm:"serializer:json" json:"materials"`

	Stages []WorkflowStage `gorm:"foreignKey:WorkflowID;constraint:OnDelete:CASCADE" json:"stages"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Workflow) TableName() string {
	return "workflows"
}

func (w *Workflow) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return nil
}

// WorkflowStage is one step of a workflow. Its ID is stable and is what
// service items carry as their current status value.
type WorkflowStage struct {
	ID         string `gorm:"primaryKey;type:uuid" json:"id"`
	WorkflowID string `gorm:"index;not null" json:"workflow_id"`
	Name       string `gorm:"not null" json:"name"`
	// 1-based sequence position. Unique within a workflow but not
	// necessarily contiguous after reordering.
	Order           int      `gorm:"column:stage_order;not null" json:"order"`
	Details         string   `gorm:"type:text" json:"details"`
	AssignedMembers []string `gorm:"serializer:json" json:"assigned_members"`

	Tasks []WorkflowTask `gorm:"foreignKey:StageID;constraint:OnDelete:CASCADE" json:"tasks"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (WorkflowStage) TableName() string {
	return "workflow_stages"
}

func (s *WorkflowStage) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// WorkflowTask is a checklist entry belonging to a stage. The Completed
// flag on the template is informational only; per-item completion lives
// in the assignment side-channel on the service item.
type WorkflowTask struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	StageID     string `gorm:"index;not null" json:"stage_id"`
	Title       string `gorm:"not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Completed   bool   `gorm:"default:false" json:"completed"`
	Order       int    `gorm:"column:task_order;not null" json:"order"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (WorkflowTask) TableName() string {
	return "workflow_tasks"
}

func (t *WorkflowTask) BeforeCreate(tx *gorm.DB) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return nil
}
