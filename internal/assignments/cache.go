// Package assignments manages the per-item task-assignment side-channel:
// which staff members handle which workflow task for one order item,
// stored apart from the shared task templates.
package assignments

import (
	"context"
	"sync"

	"github.com/maisonlux/ateliergo/internal/models"
)

// Store is the slice of persistence the cache needs.
type Store interface {
	LoadAssignments(ctx context.Context, itemID string) ([]models.TaskAssignment, error)
	SaveAssignments(ctx context.Context, itemID string, assignments []models.TaskAssignment) error
}

// Cache memoizes assignment maps per item for the lifetime of the
// process. There is no TTL and no eviction: assignment lists are small
// and writes go through the cache, so entries only go stale when another
// process writes the same item. That race is last-write-wins, same as
// the store underneath.
type Cache struct {
	store Store

	mu     sync.RWMutex
	byItem map[string]map[string][]string
}

// NewCache creates an empty cache over the given store
func NewCache(store Store) *Cache {
	return &Cache{
		store:  store,
		byItem: make(map[string]map[string][]string),
	}
}

// Get returns the task→members map for one item. The first call per item
// fetches from the store; later calls are served from memory.
func (c *Cache) Get(ctx context.Context, itemID string) (map[string][]string, error) {
	c.mu.RLock()
	cached, ok := c.byItem[itemID]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	list, err := c.store.LoadAssignments(ctx, itemID)
	if err != nil {
		return nil, err
	}

	m := toMap(list)

	c.mu.Lock()
	// Another goroutine may have loaded meanwhile; keep whichever is
	// present so callers holding the earlier map stay coherent.
	if existing, ok := c.byItem[itemID]; ok {
		m = existing
	} else {
		c.byItem[itemID] = m
	}
	c.mu.Unlock()

	return m, nil
}

// Set assigns memberIDs to one task of one item: the persisted list is
// re-read, the matching entry updated (or appended), written back whole,
// and the cache entry refreshed in place.
func (c *Cache) Set(ctx context.Context, itemID, taskID string, memberIDs []string) error {
	list, err := c.store.LoadAssignments(ctx, itemID)
	if err != nil {
		return err
	}

	found := false
	for i := range list {
		if list[i].TaskID == taskID {
			list[i].AssignedTo = memberIDs
			found = true
			break
		}
	}
	if !found {
		list = append(list, models.TaskAssignment{
			TaskID:     taskID,
			AssignedTo: memberIDs,
			Completed:  false,
		})
	}

	if err := c.store.SaveAssignments(ctx, itemID, list); err != nil {
		return err
	}

	c.mu.Lock()
	c.byItem[itemID] = toMap(list)
	c.mu.Unlock()
	return nil
}

// SetCompleted flips the completion flag of one task of one item
func (c *Cache) SetCompleted(ctx context.Context, itemID, taskID string, completed bool) error {
	list, err := c.store.LoadAssignments(ctx, itemID)
	if err != nil {
		return err
	}

	found := false
	for i := range list {
		if list[i].TaskID == taskID {
			list[i].Completed = completed
			found = true
			break
		}
	}
	if !found {
		list = append(list, models.TaskAssignment{
			TaskID:    taskID,
			Completed: completed,
		})
	}

	if err := c.store.SaveAssignments(ctx, itemID, list); err != nil {
		return err
	}

	c.mu.Lock()
	c.byItem[itemID] = toMap(list)
	c.mu.Unlock()
	return nil
}

// Invalidate drops the cached map of one item
func (c *Cache) Invalidate(itemID string) {
	c.mu.Lock()
	delete(c.byItem, itemID)
	c.mu.Unlock()
}

func toMap(list []models.TaskAssignment) map[string][]string {
	m := make(map[string][]string, len(list))
	for _, a := range list {
		m[a.TaskID] = a.AssignedTo
	}
	return m
}
