package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// WorkflowRef links a catalog service to a workflow with an explicit
// preference order. Lower order wins.
type WorkflowRef struct {
	ID    string `json:"id"`
	Order int    `json:"order"`
}

// CatalogService is a sellable service as stored in the catalog table.
// The table has been through several generations of the workflow linkage:
// the modern Workflows list, and a legacy workflow_id column that holds
// either a JSON array of ids or a bare string depending on when the row
// was written. The raw JSON is kept as-is; catalog.ResolveService
// normalizes it.
type CatalogService struct {
	ID          string  `gorm:"primaryKey;type:uuid" json:"id"`
	Name        string  `gorm:"not null;index" json:"name"`
	Category    string  `gorm:"index" json:"category"`
	Price       float64 `json:"price"`
	Description string  `gorm:"type:text" json:"description"`
	Image       string  `json:"image"`

	// Legacy column: JSON string, JSON array of strings, or null.
	LegacyWorkflowID datatypes.JSON `gorm:"column:workflow_id" json:"workflowId,omitempty"`
	Workflows        []WorkflowRef  `gorm:"serializer:json" json:"workflows"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (CatalogService) TableName() string {
	return "catalog_services"
}

func (s *CatalogService) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// ResolvedService is the canonical shape every catalog record normalizes
// to, regardless of which historical linkage shape the row carries.
type ResolvedService struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Category    string        `json:"category"`
	Price       float64       `json:"price"`
	Description string        `json:"description"`
	Image       string        `json:"image"`
	WorkflowID  string        `json:"workflowId,omitempty"`
	Workflows   []WorkflowRef `json:"workflows,omitempty"`
}
