package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/maisonlux/ateliergo/internal/models"
)

type fakeStore struct {
	mu        sync.Mutex
	workflows []models.Workflow
	stages    []models.WorkflowStage
	tasks     []models.WorkflowTask

	workflowErr error
	stageErr    error
	taskErr     error

	fetches int
}

func (f *fakeStore) ListWorkflows(ctx context.Context) ([]models.Workflow, error) {
	f.mu.Lock()
	f.fetches++
	f.mu.Unlock()
	if f.workflowErr != nil {
		return nil, f.workflowErr
	}
	return f.workflows, nil
}

func (f *fakeStore) ListStages(ctx context.Context) ([]models.WorkflowStage, error) {
	if f.stageErr != nil {
		return nil, f.stageErr
	}
	return f.stages, nil
}

func (f *fakeStore) ListTasks(ctx context.Context) ([]models.WorkflowTask, error) {
	if f.taskErr != nil {
		return nil, f.taskErr
	}
	return f.tasks, nil
}

func (f *fakeStore) fetchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches
}

func testStore() *fakeStore {
	return &fakeStore{
		workflows: []models.Workflow{
			{ID: "W1", Name: "Bag Spa"},
			{ID: "W2", Name: "Plating"},
			{ID: "W3", Name: "Empty"},
		},
		stages: []models.WorkflowStage{
			{ID: "S2", WorkflowID: "W1", Name: "Polish", Order: 2},
			{ID: "S1", WorkflowID: "W1", Name: "Clean", Order: 1},
			{ID: "S3", WorkflowID: "W2", Name: "Strip", Order: 1},
		},
		tasks: []models.WorkflowTask{
			{ID: "T2", StageID: "S1", Title: "Rinse", Order: 2},
			{ID: "T1", StageID: "S1", Title: "Soak", Order: 1},
		},
	}
}

func TestCatalog_AssemblesAndSorts(t *testing.T) {
	store := testStore()
	cat := New(store, 5*time.Minute)

	workflows, err := cat.Workflows(context.Background())
	if err != nil {
		t.Fatalf("Failed to load catalog: %v", err)
	}
	if len(workflows) != 3 {
		t.Fatalf("Expected 3 workflows, got %d", len(workflows))
	}

	w1 := workflows[0]
	if len(w1.Stages) != 2 {
		t.Fatalf("Expected 2 stages on W1, got %d", len(w1.Stages))
	}
	if w1.Stages[0].ID != "S1" || w1.Stages[1].ID != "S2" {
		t.Errorf("Stages not sorted by order: got %s, %s", w1.Stages[0].ID, w1.Stages[1].ID)
	}

	tasks := w1.Stages[0].Tasks
	if len(tasks) != 2 {
		t.Fatalf("Expected 2 tasks on S1, got %d", len(tasks))
	}
	if tasks[0].ID != "T1" || tasks[1].ID != "T2" {
		t.Errorf("Tasks not sorted by order: got %s, %s", tasks[0].ID, tasks[1].ID)
	}

	// A workflow with no stages is represented with an empty list, not
	// an error.
	if len(workflows[2].Stages) != 0 {
		t.Errorf("Expected W3 to have no stages, got %d", len(workflows[2].Stages))
	}
	// A stage with no tasks likewise.
	if len(w1.Stages[1].Tasks) != 0 {
		t.Errorf("Expected S2 to have no tasks, got %d", len(w1.Stages[1].Tasks))
	}
}

func TestCatalog_CachesWithinTTL(t *testing.T) {
	store := testStore()

	current := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	cat := New(store, 5*time.Minute).WithClock(func() time.Time { return current })

	ctx := context.Background()
	if _, err := cat.Workflows(ctx); err != nil {
		t.Fatalf("First load failed: %v", err)
	}

	// Still inside the window: no new fetch.
	current = current.Add(4 * time.Minute)
	if _, err := cat.Workflows(ctx); err != nil {
		t.Fatalf("Cached load failed: %v", err)
	}
	if store.fetchCount() != 1 {
		t.Errorf("Expected 1 fetch within TTL, got %d", store.fetchCount())
	}

	// Past the window: refetch.
	current = current.Add(2 * time.Minute)
	if _, err := cat.Workflows(ctx); err != nil {
		t.Fatalf("Reload failed: %v", err)
	}
	if store.fetchCount() != 2 {
		t.Errorf("Expected refetch after TTL, got %d fetches", store.fetchCount())
	}
}

func TestCatalog_Invalidate(t *testing.T) {
	store := testStore()
	cat := New(store, time.Hour)

	ctx := context.Background()
	cat.Workflows(ctx)
	cat.Invalidate()
	cat.Workflows(ctx)

	if store.fetchCount() != 2 {
		t.Errorf("Expected invalidation to force a refetch, got %d fetches", store.fetchCount())
	}
}

func TestCatalog_CallerMutationDoesNotCorruptCache(t *testing.T) {
	store := testStore()
	cat := New(store, time.Hour)
	ctx := context.Background()

	first, err := cat.Workflows(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	// A careless caller reorders and overwrites its slice.
	first[0], first[2] = first[2], first[0]
	first[1] = models.Workflow{ID: "clobbered"}

	second, err := cat.Workflows(ctx)
	if err != nil {
		t.Fatalf("Cached load failed: %v", err)
	}
	if store.fetchCount() != 1 {
		t.Fatalf("Expected the cached snapshot, got %d fetches", store.fetchCount())
	}
	if second[0].ID != "W1" || second[1].ID != "W2" || second[2].ID != "W3" {
		t.Errorf("Cache corrupted by caller mutation: %s, %s, %s",
			second[0].ID, second[1].ID, second[2].ID)
	}
}

func TestCatalog_EmptyOnError(t *testing.T) {
	store := testStore()
	store.stageErr = errors.New("connection reset")
	cat := New(store, 5*time.Minute)

	workflows, err := cat.Workflows(context.Background())
	if err == nil {
		t.Fatal("Expected error when stage fetch fails")
	}
	if len(workflows) != 0 {
		t.Errorf("Expected empty catalog on partial failure, got %d workflows", len(workflows))
	}

	// A failed load is not cached; the next call must retry.
	store.stageErr = nil
	workflows, err = cat.Workflows(context.Background())
	if err != nil {
		t.Fatalf("Retry after failure should succeed: %v", err)
	}
	if len(workflows) != 3 {
		t.Errorf("Expected full catalog after retry, got %d workflows", len(workflows))
	}
}

func TestCatalog_InitialStage(t *testing.T) {
	cat := New(testStore(), 5*time.Minute)
	ctx := context.Background()

	first := cat.InitialStage(ctx, "W1")
	if first == nil || first.ID != "S1" {
		t.Fatalf("Expected S1 as initial stage of W1, got %+v", first)
	}

	if cat.InitialStage(ctx, "W3") != nil {
		t.Error("Expected no initial stage for a workflow without stages")
	}
	if cat.InitialStage(ctx, "missing") != nil {
		t.Error("Expected no initial stage for an unknown workflow")
	}
}

func TestCatalog_StageName(t *testing.T) {
	cat := New(testStore(), 5*time.Minute)
	ctx := context.Background()

	if name := cat.StageName(ctx, "W1", "S2"); name != "Polish" {
		t.Errorf("Expected stage name Polish, got %q", name)
	}
	// Sentinels and unknown ids resolve to themselves.
	if name := cat.StageName(ctx, "W1", models.StatusInQueue); name != models.StatusInQueue {
		t.Errorf("Expected sentinel to resolve to itself, got %q", name)
	}
	if name := cat.StageName(ctx, "", "S9"); name != "S9" {
		t.Errorf("Expected unknown id to resolve to itself, got %q", name)
	}
}
