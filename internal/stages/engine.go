// Package stages drives a service item through the stages of its
// workflow, maintaining the append-only stage history and the
// technical-notes log.
package stages

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/maisonlux/ateliergo/internal/catalog"
	"github.com/maisonlux/ateliergo/internal/models"
)

// Store is the slice of persistence the engine needs.
type Store interface {
	GetItem(ctx context.Context, id string) (*models.ServiceItem, error)
	UpdateItemFields(ctx context.Context, id string, fields map[string]interface{}) error
}

// Notifier receives best-effort change events after successful writes.
type Notifier interface {
	RecordChanged(table string)
}

// Engine is the state machine for service item stage progression.
type Engine struct {
	store    Store
	catalog  *catalog.Catalog
	notifier Notifier
	now      func() time.Time
}

// New creates an engine. notifier may be nil.
func New(store Store, cat *catalog.Catalog, notifier Notifier) *Engine {
	return &Engine{
		store:    store,
		catalog:  cat,
		notifier: notifier,
		now:      time.Now,
	}
}

// WithClock overrides the time source for tests
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// Initialize sets the item's starting status and opens its first history
// entry. Products are born terminal and carry no history; service items
// enter their workflow's lowest-order stage, or the queue when no
// workflow resolves.
func (e *Engine) Initialize(ctx context.Context, item *models.ServiceItem, actor string) {
	now := e.now().UTC()
	item.LastUpdated = now

	if item.IsProduct() {
		item.Status = models.StatusDone
		item.WorkflowID = ""
		return
	}

	stageID := models.StatusInQueue
	if first := e.catalog.InitialStage(ctx, item.WorkflowID); first != nil {
		stageID = first.ID
	}

	item.Status = stageID
	item.History = append(item.History, models.HistoryEntry{
		StageID:     stageID,
		StageName:   stageID,
		EnteredAt:   now,
		PerformedBy: actor,
	})
}

// Advance moves an item to newStageID: the open history entry is closed,
// a new one is opened, an optional technician note is appended to the
// technical log, and everything is persisted as one write. The updated
// item is returned immediately so callers never wait on push
// notifications for their own transition.
//
// A missing item, or an item that does not belong to orderID, is a
// logged no-op, so stale references in long-lived screens do not blow
// up. newStageID is not restricted to the item's workflow (sentinel
// statuses legitimately fall outside it); an id that is neither a
// sentinel nor a member stage is allowed through with a warning.
func (e *Engine) Advance(ctx context.Context, orderID, itemID, newStageID, actor, note string) (*models.ServiceItem, error) {
	item, err := e.store.GetItem(ctx, itemID)
	if err != nil {
		log.Printf("⚠️ Stage advance skipped: item %s of order %s not found: %v", itemID, orderID, err)
		return nil, nil
	}
	if item.OrderID != orderID {
		log.Printf("⚠️ Stage advance skipped: item %s belongs to order %s, not %s", itemID, item.OrderID, orderID)
		return nil, nil
	}

	if !e.isKnownStage(ctx, item.WorkflowID, newStageID) {
		log.Printf("⚠️ Stage advance: %q is not a stage of workflow %q (item %s)", newStageID, item.WorkflowID, itemID)
	}

	now := e.now().UTC()

	if open := item.OpenHistoryEntry(); open != nil {
		left := now
		open.LeftAt = &left
		open.DurationMs = now.Sub(open.EnteredAt).Milliseconds()
	}

	item.History = append(item.History, models.HistoryEntry{
		StageID:     newStageID,
		StageName:   newStageID,
		EnteredAt:   now,
		PerformedBy: actor,
	})

	if note != "" {
		item.TechnicalLog = append(item.TechnicalLog, models.TechnicalLogEntry{
			ID:        uuid.NewString(),
			Content:   note,
			Author:    actor,
			Timestamp: now,
			Stage:     newStageID,
		})
	}

	item.Status = newStageID
	item.LastUpdated = now

	err = e.store.UpdateItemFields(ctx, item.ID, map[string]interface{}{
		"status":        item.Status,
		"history":       item.History,
		"technical_log": item.TechnicalLog,
		"last_updated":  item.LastUpdated,
	})
	if err != nil {
		return nil, err
	}

	if e.notifier != nil {
		e.notifier.RecordChanged(models.ServiceItem{}.TableName())
	}
	return item, nil
}

// AddNote appends a technical-log entry without a stage transition
func (e *Engine) AddNote(ctx context.Context, itemID, actor, note string) (*models.ServiceItem, error) {
	item, err := e.store.GetItem(ctx, itemID)
	if err != nil {
		log.Printf("⚠️ Technical note skipped: item %s not found: %v", itemID, err)
		return nil, nil
	}

	now := e.now().UTC()
	item.TechnicalLog = append(item.TechnicalLog, models.TechnicalLogEntry{
		ID:        uuid.NewString(),
		Content:   note,
		Author:    actor,
		Timestamp: now,
		Stage:     item.Status,
	})
	item.LastUpdated = now

	err = e.store.UpdateItemFields(ctx, item.ID, map[string]interface{}{
		"technical_log": item.TechnicalLog,
		"last_updated":  item.LastUpdated,
	})
	if err != nil {
		return nil, err
	}

	if e.notifier != nil {
		e.notifier.RecordChanged(models.ServiceItem{}.TableName())
	}
	return item, nil
}

// isKnownStage reports whether stageID is a sentinel or belongs to the
// given workflow.
func (e *Engine) isKnownStage(ctx context.Context, workflowID, stageID string) bool {
	if stageID == models.StatusInQueue || stageID == models.StatusDone {
		return true
	}
	wf := e.catalog.Find(ctx, workflowID)
	if wf == nil {
		// Catalog unknown or unavailable: nothing to check against.
		return true
	}
	for _, s := range wf.Stages {
		if s.ID == stageID {
			return true
		}
	}
	return false
}
