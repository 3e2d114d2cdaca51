// Package catalog holds the read-mostly configuration side of the system:
// workflow definitions (cached with a TTL) and the sellable-service
// catalog with its workflow resolution rules.
package catalog

import (
	"context"
	"log"
	"sort"
	"sync"
	"time"

	"github.com/maisonlux/ateliergo/internal/models"
	"golang.org/x/sync/errgroup"
)

// Store is the slice of persistence the catalog needs.
type Store interface {
	ListWorkflows(ctx context.Context) ([]models.Workflow, error)
	ListStages(ctx context.Context) ([]models.WorkflowStage, error)
	ListTasks(ctx context.Context) ([]models.WorkflowTask, error)
}

// Catalog serves assembled workflow definitions from a time-bounded
// cache. Within the TTL window every caller gets the cached snapshot;
// after it, the next caller triggers a fresh three-level load.
type Catalog struct {
	store Store
	ttl   time.Duration
	now   func() time.Time

	mu       sync.Mutex
	cached   []models.Workflow
	loadedAt time.Time
}

// New creates a catalog over the given store with the given cache TTL
func New(store Store, ttl time.Duration) *Catalog {
	return &Catalog{
		store: store,
		ttl:   ttl,
		now:   time.Now,
	}
}

// WithClock overrides the time source. Used by tests to step through the
// TTL window deterministically.
func (c *Catalog) WithClock(now func() time.Time) *Catalog {
	c.now = now
	return c
}

// Workflows returns all workflow definitions with stages and tasks
// assembled and ordered. On any fetch error it returns an empty catalog,
// never a partial one: callers must treat empty as "unknown", not as
// "no workflows exist". Failed loads are not cached, so the next call
// retries.
//
// The returned slice is the caller's to reorder or append to, but the
// workflow structs inside are shared cache state and must be treated as
// read-only.
func (c *Catalog) Workflows(ctx context.Context) ([]models.Workflow, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cached != nil && c.now().Sub(c.loadedAt) < c.ttl {
		return c.snapshot(), nil
	}

	workflows, err := c.load(ctx)
	if err != nil {
		log.Printf("⚠️ Workflow catalog load failed: %v", err)
		return []models.Workflow{}, err
	}

	c.cached = workflows
	c.loadedAt = c.now()
	return c.snapshot(), nil
}

// snapshot returns a fresh slice over the cached workflows. Callers may
// shuffle their copy without corrupting the cache. Must be called with
// c.mu held.
func (c *Catalog) snapshot() []models.Workflow {
	out := make([]models.Workflow, len(c.cached))
	copy(out, c.cached)
	return out
}

// Invalidate drops the cached snapshot. Called after configuration saves.
func (c *Catalog) Invalidate() {
	c.mu.Lock()
	c.cached = nil
	c.loadedAt = time.Time{}
	c.mu.Unlock()
}

// load fetches headers, stages and tasks in parallel and assembles the
// nested structure. Any level failing aborts the whole load.
func (c *Catalog) load(ctx context.Context) ([]models.Workflow, error) {
	var (
		workflows []models.Workflow
		stages    []models.WorkflowStage
		tasks     []models.WorkflowTask
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		workflows, err = c.store.ListWorkflows(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		stages, err = c.store.ListStages(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		tasks, err = c.store.ListTasks(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if workflows == nil {
		// A successful load of an empty table is a valid snapshot and
		// must be cacheable.
		workflows = []models.Workflow{}
	}

	tasksByStage := make(map[string][]models.WorkflowTask)
	for _, t := range tasks {
		tasksByStage[t.StageID] = append(tasksByStage[t.StageID], t)
	}
	for id := range tasksByStage {
		ts := tasksByStage[id]
		sort.SliceStable(ts, func(a, b int) bool { return ts[a].Order < ts[b].Order })
	}

	stagesByWorkflow := make(map[string][]models.WorkflowStage)
	for _, s := range stages {
		s.Tasks = tasksByStage[s.ID]
		stagesByWorkflow[s.WorkflowID] = append(stagesByWorkflow[s.WorkflowID], s)
	}

	for i := range workflows {
		ws := stagesByWorkflow[workflows[i].ID]
		// Stable sort: equal order values keep insertion sequence.
		sort.SliceStable(ws, func(a, b int) bool { return ws[a].Order < ws[b].Order })
		workflows[i].Stages = ws
	}

	return workflows, nil
}

// Find returns the workflow with the given id, or nil if the catalog does
// not know it. The result points into the cached snapshot and must be
// treated as read-only.
func (c *Catalog) Find(ctx context.Context, workflowID string) *models.Workflow {
	if workflowID == "" {
		return nil
	}
	workflows, err := c.Workflows(ctx)
	if err != nil {
		return nil
	}
	for i := range workflows {
		if workflows[i].ID == workflowID {
			return &workflows[i]
		}
	}
	return nil
}

// InitialStage returns the stage with the lowest order value of the given
// workflow, or nil when the workflow is unknown or has no stages.
func (c *Catalog) InitialStage(ctx context.Context, workflowID string) *models.WorkflowStage {
	wf := c.Find(ctx, workflowID)
	if wf == nil || len(wf.Stages) == 0 {
		return nil
	}
	return &wf.Stages[0]
}

// StageName resolves a stage id against the current definitions. History
// entries store ids, not names, so renames stay effective retroactively.
// Sentinel and unknown ids resolve to themselves.
func (c *Catalog) StageName(ctx context.Context, workflowID, stageID string) string {
	wf := c.Find(ctx, workflowID)
	if wf == nil {
		return stageID
	}
	for _, s := range wf.Stages {
		if s.ID == stageID {
			return s.Name
		}
	}
	return stageID
}
