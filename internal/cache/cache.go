// Package cache holds the client-side copy of every known project.
//
// The cache never derives status or progress itself. Writers run the
// derivation first, and Upsert refuses a project whose derived fields
// disagree with its tasks.
package cache

import (
	"errors"
	"fmt"
	"iter"
	"sort"
	"sync"

	"projtrack/internal/models"
)

// ErrUnderived is returned by Upsert when Status or Progress do not match Tasks.
var ErrUnderived = errors.New("project status/progress not derived from tasks")

// Cache is an in-memory project collection. Stored projects are private
// copies; callers only ever see clones.
type Cache struct {
	mu       sync.RWMutex
	projects map[string]*models.Project
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{projects: make(map[string]*models.Project)}
}

// Get returns a copy of the project with the given id.
func (c *Cache) Get(id string) (*models.Project, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	p, ok := c.projects[id]
	if !ok {
		return nil, fmt.Errorf("project %s: %w", id, models.ErrNotFound)
	}
	return p.Clone(), nil
}

// Snapshot returns a deep copy of the project, used to restore it later.
func (c *Cache) Snapshot(id string) (*models.Project, error) {
	return c.Get(id)
}

// List returns the projects committed at the time of the call, ordered by
// creation time. The sequence can be ranged over any number of times and is
// not affected by later writes.
func (c *Cache) List() iter.Seq[models.Project] {
	c.mu.RLock()
	items := make([]*models.Project, 0, len(c.projects))
	for _, p := range c.projects {
		items = append(items, p)
	}
	c.mu.RUnlock()

	sort.Slice(items, func(i, j int) bool {
		if !items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CreatedAt.Before(items[j].CreatedAt)
		}
		return items[i].ID < items[j].ID
	})

	return func(yield func(models.Project) bool) {
		for _, p := range items {
			if !yield(*p.Clone()) {
				return
			}
		}
	}
}

// Filter lists the projects with the given status.
func (c *Cache) Filter(status models.Status) iter.Seq[models.Project] {
	all := c.List()
	return func(yield func(models.Project) bool) {
		for p := range all {
			if p.Status != status {
				continue
			}
			if !yield(p) {
				return
			}
		}
	}
}

// Len returns the number of cached projects.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.projects)
}

// Upsert inserts or replaces the project by id.
func (c *Cache) Upsert(p *models.Project) error {
	if err := check(p); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.projects[p.ID] = p.Clone()
	return nil
}

// Rekey replaces the entry stored under oldID with p in one step. It is how
// a provisional project takes on its server-assigned id.
func (c *Cache) Rekey(oldID string, p *models.Project) error {
	if err := check(p); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.projects, oldID)
	c.projects[p.ID] = p.Clone()
	return nil
}

// Remove deletes the project and its tasks. Removing an unknown id is a no-op.
func (c *Cache) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.projects, id)
}

func check(p *models.Project) error {
	if p == nil || p.ID == "" {
		return errors.New("project id is required")
	}
	if !p.IsDerived() {
		return fmt.Errorf("project %s: %w", p.ID, ErrUnderived)
	}
	return nil
}
