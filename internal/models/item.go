package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ServiceType classifies a service item
type ServiceType string

const (
	ServiceTypeRepair   ServiceType = "repair"
	ServiceTypeCleaning ServiceType = "cleaning"
	ServiceTypePlating  ServiceType = "plating"
	ServiceTypeDyeing   ServiceType = "dyeing"
	ServiceTypeCustom   ServiceType = "custom"
	ServiceTypeProduct  ServiceType = "product"
)

// Sentinel statuses for items outside any workflow's stage set.
const (
	// StatusInQueue is the initial status of a service item with no
	// resolvable workflow.
	StatusInQueue = "In Queue"
	// StatusDone is the terminal status assigned to product items,
	// which never progress through stages.
	StatusDone = "Done"
)

// HistoryEntry records the time window an item spent in one stage.
// StageName holds the stage id as written at transition time; display
// layers resolve the human name against the current workflow definition,
// so renamed stages never invalidate old history.
type HistoryEntry struct {
	StageID   string     `json:"stageId"`
	StageName string     `json:"stageName"`
	EnteredAt time.Time  `json:"enteredAt"`
	LeftAt    *time.Time `json:"leftAt,omitempty"`
	// Milliseconds spent in the stage, set when the entry is closed.
	DurationMs  int64  `json:"duration,omitempty"`
	PerformedBy string `json:"performedBy,omitempty"`
}

// TechnicalLogEntry is one technician note, tagged with the stage it was
// written in.
type TechnicalLogEntry struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	Timestamp time.Time `json:"timestamp"`
	Stage     string    `json:"stage"`
}

// TaskAssignment maps one workflow task to the staff handling it for this
// particular item. Stored on the item, not the task template, because
// templates are shared across every order using the workflow.
type TaskAssignment struct {
	TaskID     string   `json:"taskId"`
	AssignedTo []string `json:"assignedTo"`
	Completed  bool     `json:"completed"`
}

// ServiceItem is one line of an order: a sold service or product with its
// own stage-progression state.
type ServiceItem struct {
	ID      string      `gorm:"primaryKey;type:uuid" json:"id"`
	OrderID string      `gorm:"index;not null" json:"order_id"`
	Name    string      `gorm:"not null" json:"name"`
	Type    ServiceType `gorm:"index" json:"type"`

	Price    float64 `json:"price"`
	Quantity int     `gorm:"default:1" json:"quantity"`

	// Current stage id, or one of the sentinel statuses.
	Status     string `gorm:"index" json:"status"`
	WorkflowID string `gorm:"index" json:"workflow_id"`
	// Origin service-catalog record, if the item was sold from the catalog.
	ServiceID  string `json:"service_id"`
	Technician string `json:"technician"`

	BeforeImages    []string `gorm:"serializer:json" json:"before_images"`
	AfterImages     []string `gorm:"serializer:json" json:"after_images"`
	Notes           string   `gorm:"type:text" json:"notes"`
	AssignedMembers []string `gorm:"serializer:json" json:"assigned_members"`

	// Append-only. At most one entry is open (LeftAt unset), it is always
	// the last one, and its StageID equals Status.
	History      []HistoryEntry      `gorm:"serializer:json" json:"history"`
	TechnicalLog []TechnicalLogEntry `gorm:"serializer:json" json:"technical_log"`
	// Per-item assignment side-channel, independent of the task templates.
	TaskAssignments []TaskAssignment `gorm:"serializer:json" json:"task_assignments"`

	LastUpdated time.Time `json:"last_updated"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (ServiceItem) TableName() string {
	return "service_items"
}

func (i *ServiceItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	return nil
}

// IsProduct returns true for retail product lines, which never enter a
// workflow.
func (i *ServiceItem) IsProduct() bool {
	return i.Type == ServiceTypeProduct
}

// OpenHistoryEntry returns a pointer to the trailing open history entry,
// or nil when every entry is closed.
func (i *ServiceItem) OpenHistoryEntry() *HistoryEntry {
	if len(i.History) == 0 {
		return nil
	}
	last := &i.History[len(i.History)-1]
	if last.LeftAt == nil {
		return last
	}
	return nil
}
