package stages

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/maisonlux/ateliergo/internal/catalog"
	"github.com/maisonlux/ateliergo/internal/models"
)

type fakeCatalogStore struct{}

func (fakeCatalogStore) ListWorkflows(ctx context.Context) ([]models.Workflow, error) {
	return []models.Workflow{{ID: "W1", Name: "Bag Spa"}}, nil
}

func (fakeCatalogStore) ListStages(ctx context.Context) ([]models.WorkflowStage, error) {
	return []models.WorkflowStage{
		{ID: "S1", WorkflowID: "W1", Name: "Clean", Order: 0},
		{ID: "S2", WorkflowID: "W1", Name: "Polish", Order: 1},
	}, nil
}

func (fakeCatalogStore) ListTasks(ctx context.Context) ([]models.WorkflowTask, error) {
	return nil, nil
}

type fakeItemStore struct {
	items   map[string]*models.ServiceItem
	updates int
	fail    error
}

func newFakeItemStore(items ...*models.ServiceItem) *fakeItemStore {
	f := &fakeItemStore{items: make(map[string]*models.ServiceItem)}
	for _, it := range items {
		f.items[it.ID] = it
	}
	return f
}

func (f *fakeItemStore) GetItem(ctx context.Context, id string) (*models.ServiceItem, error) {
	it, ok := f.items[id]
	if !ok {
		return nil, errors.New("service item not found")
	}
	copied := *it
	return &copied, nil
}

func (f *fakeItemStore) UpdateItemFields(ctx context.Context, id string, fields map[string]interface{}) error {
	if f.fail != nil {
		return f.fail
	}
	it, ok := f.items[id]
	if !ok {
		return errors.New("service item not found")
	}
	f.updates++
	if v, ok := fields["status"]; ok {
		it.Status = v.(string)
	}
	if v, ok := fields["history"]; ok {
		it.History = v.([]models.HistoryEntry)
	}
	if v, ok := fields["technical_log"]; ok {
		it.TechnicalLog = v.([]models.TechnicalLogEntry)
	}
	if v, ok := fields["last_updated"]; ok {
		it.LastUpdated = v.(time.Time)
	}
	return nil
}

func testEngine(store Store) *Engine {
	cat := catalog.New(fakeCatalogStore{}, time.Hour)
	return New(store, cat, nil)
}

func TestEngine_InitializeWithWorkflow(t *testing.T) {
	item := &models.ServiceItem{Name: "Spa Bag", Type: models.ServiceTypeRepair, WorkflowID: "W1"}

	testEngine(newFakeItemStore()).Initialize(context.Background(), item, "reception")

	if item.Status != "S1" {
		t.Errorf("Expected initial status S1, got %q", item.Status)
	}
	if len(item.History) != 1 {
		t.Fatalf("Expected 1 history entry, got %d", len(item.History))
	}
	entry := item.History[0]
	if entry.StageID != "S1" || entry.LeftAt != nil || entry.PerformedBy != "reception" {
		t.Errorf("Unexpected initial history entry: %+v", entry)
	}
}

func TestEngine_InitializeWithoutWorkflow(t *testing.T) {
	item := &models.ServiceItem{Name: "Zipper Fix", Type: models.ServiceTypeRepair}

	testEngine(newFakeItemStore()).Initialize(context.Background(), item, "")

	if item.Status != models.StatusInQueue {
		t.Errorf("Expected %q status, got %q", models.StatusInQueue, item.Status)
	}
	if len(item.History) != 1 || item.History[0].StageID != models.StatusInQueue {
		t.Errorf("Expected a queue history entry, got %+v", item.History)
	}
}

func TestEngine_InitializeProduct(t *testing.T) {
	item := &models.ServiceItem{Name: "Leather Cream", Type: models.ServiceTypeProduct, WorkflowID: "W1"}

	testEngine(newFakeItemStore()).Initialize(context.Background(), item, "")

	if item.Status != models.StatusDone {
		t.Errorf("Expected product to be born %q, got %q", models.StatusDone, item.Status)
	}
	if item.WorkflowID != "" {
		t.Errorf("Products never carry a workflow, got %q", item.WorkflowID)
	}
	if len(item.History) != 0 {
		t.Errorf("Products carry no history, got %d entries", len(item.History))
	}
}

func TestEngine_AdvanceClosesAndOpens(t *testing.T) {
	t0 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	item := &models.ServiceItem{
		ID:         "I1",
		OrderID:    "O1",
		Type:       models.ServiceTypeRepair,
		WorkflowID: "W1",
		Status:     "S1",
		History: []models.HistoryEntry{
			{StageID: "S1", StageName: "S1", EnteredAt: t0},
		},
	}
	store := newFakeItemStore(item)

	current := t0.Add(90 * time.Minute)
	engine := testEngine(store).WithClock(func() time.Time { return current })

	updated, err := engine.Advance(context.Background(), "O1", "I1", "S2", "tech1", "")
	if err != nil {
		t.Fatalf("Advance failed: %v", err)
	}
	if updated == nil {
		t.Fatal("Expected updated item, got nil")
	}

	if updated.Status != "S2" {
		t.Errorf("Expected status S2, got %q", updated.Status)
	}
	if len(updated.History) != 2 {
		t.Fatalf("Expected 2 history entries, got %d", len(updated.History))
	}

	first := updated.History[0]
	if first.LeftAt == nil {
		t.Fatal("Expected first entry to be closed")
	}
	if !first.LeftAt.Equal(current) {
		t.Errorf("Expected leftAt %v, got %v", current, *first.LeftAt)
	}
	if first.DurationMs != (90 * time.Minute).Milliseconds() {
		t.Errorf("Expected 90min duration, got %dms", first.DurationMs)
	}

	second := updated.History[1]
	if second.StageID != "S2" || second.LeftAt != nil || second.PerformedBy != "tech1" {
		t.Errorf("Unexpected open entry: %+v", second)
	}

	// The write went through as a single update and the store reflects
	// the same state the caller got back.
	if store.updates != 1 {
		t.Errorf("Expected exactly one write, got %d", store.updates)
	}
	if store.items["I1"].Status != "S2" {
		t.Errorf("Store status not persisted: %q", store.items["I1"].Status)
	}
}

func TestEngine_HistoryClosureInvariant(t *testing.T) {
	item := &models.ServiceItem{
		ID:         "I1",
		OrderID:    "O1",
		Type:       models.ServiceTypeRepair,
		WorkflowID: "W1",
	}
	store := newFakeItemStore(item)

	current := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	engine := testEngine(store).WithClock(func() time.Time { return current })

	engine.Initialize(context.Background(), item, "reception")
	store.items["I1"] = item

	for _, stage := range []string{"S2", "S1", "S2", models.StatusDone} {
		current = current.Add(30 * time.Minute)
		if _, err := engine.Advance(context.Background(), "O1", "I1", stage, "tech1", ""); err != nil {
			t.Fatalf("Advance to %s failed: %v", stage, err)
		}
	}

	final := store.items["I1"]
	open := 0
	for i, entry := range final.History {
		if entry.LeftAt == nil {
			open++
			if i != len(final.History)-1 {
				t.Errorf("Open entry at position %d, expected only the last", i)
			}
			if entry.StageID != final.Status {
				t.Errorf("Open entry stage %q != status %q", entry.StageID, final.Status)
			}
		} else if entry.DurationMs <= 0 {
			t.Errorf("Closed entry %d has no duration", i)
		}
	}
	if open != 1 {
		t.Errorf("Expected exactly one open entry, got %d", open)
	}
	if final.Status != models.StatusDone {
		t.Errorf("Expected final status Done, got %q", final.Status)
	}
}

func TestEngine_AdvanceWithNote(t *testing.T) {
	item := &models.ServiceItem{
		ID:         "I1",
		OrderID:    "O1",
		Type:       models.ServiceTypeRepair,
		WorkflowID: "W1",
		Status:     "S1",
		History:    []models.HistoryEntry{{StageID: "S1", EnteredAt: time.Now().UTC()}},
	}
	store := newFakeItemStore(item)

	updated, err := testEngine(store).Advance(context.Background(), "O1", "I1", "S2", "tech1", "replaced clasp")
	if err != nil {
		t.Fatalf("Advance failed: %v", err)
	}

	if len(updated.TechnicalLog) != 1 {
		t.Fatalf("Expected 1 technical log entry, got %d", len(updated.TechnicalLog))
	}
	entry := updated.TechnicalLog[0]
	if entry.Content != "replaced clasp" || entry.Author != "tech1" || entry.Stage != "S2" {
		t.Errorf("Unexpected log entry: %+v", entry)
	}
	if entry.ID == "" {
		t.Error("Expected generated log entry id")
	}
}

func TestEngine_AdvanceMissingItemIsNoOp(t *testing.T) {
	store := newFakeItemStore()

	updated, err := testEngine(store).Advance(context.Background(), "O1", "ghost", "S2", "tech1", "")
	if err != nil {
		t.Fatalf("Expected lenient no-op, got error: %v", err)
	}
	if updated != nil {
		t.Errorf("Expected nil item for missing reference, got %+v", updated)
	}
	if store.updates != 0 {
		t.Errorf("Expected no writes, got %d", store.updates)
	}
}

func TestEngine_AdvanceWrongOrderIsNoOp(t *testing.T) {
	item := &models.ServiceItem{ID: "I1", OrderID: "O1", Type: models.ServiceTypeRepair, Status: "S1"}
	store := newFakeItemStore(item)

	updated, err := testEngine(store).Advance(context.Background(), "O2", "I1", "S2", "tech1", "")
	if err != nil {
		t.Fatalf("Expected lenient no-op for wrong order, got error: %v", err)
	}
	if updated != nil {
		t.Errorf("Expected nil item for an order mismatch, got %+v", updated)
	}
	if store.updates != 0 {
		t.Errorf("Expected no writes, got %d", store.updates)
	}
	if store.items["I1"].Status != "S1" {
		t.Errorf("Item advanced through the wrong order: %q", store.items["I1"].Status)
	}
}

func TestEngine_AdvancePersistFailure(t *testing.T) {
	item := &models.ServiceItem{ID: "I1", OrderID: "O1", Type: models.ServiceTypeRepair, Status: "S1"}
	store := newFakeItemStore(item)
	store.fail = errors.New("connection reset")

	if _, err := testEngine(store).Advance(context.Background(), "O1", "I1", "S2", "tech1", ""); err == nil {
		t.Fatal("Expected persistence failure to propagate")
	}
}

func TestEngine_AddNote(t *testing.T) {
	item := &models.ServiceItem{ID: "I1", Type: models.ServiceTypeRepair, Status: "S1"}
	store := newFakeItemStore(item)

	updated, err := testEngine(store).AddNote(context.Background(), "I1", "tech2", "hardware ordered")
	if err != nil {
		t.Fatalf("AddNote failed: %v", err)
	}
	if len(updated.TechnicalLog) != 1 {
		t.Fatalf("Expected 1 log entry, got %d", len(updated.TechnicalLog))
	}
	if updated.TechnicalLog[0].Stage != "S1" {
		t.Errorf("Expected note tagged with current stage S1, got %q", updated.TechnicalLog[0].Stage)
	}
	if updated.Status != "S1" {
		t.Errorf("AddNote must not transition, status became %q", updated.Status)
	}
}
