// Package optimistic applies project mutations to the local cache right away
// and reconciles them with the remote store afterwards.
//
// Every mutation goes through the same steps: snapshot the project, apply
// the change locally (derived fields included), call the remote store, then
// either adopt the server's canonical project or restore the snapshot.
// Mutations on one project id run one at a time; different ids don't wait
// on each other.
package optimistic

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"projtrack/internal/cache"
	"projtrack/internal/models"
	"projtrack/internal/remote"
)

// Kind names a mutation type.
type Kind string

const (
	KindCreate     Kind = "create"
	KindUpdate     Kind = "update"
	KindAddTask    Kind = "add-task"
	KindToggleTask Kind = "toggle-task"
	KindRemoveTask Kind = "remove-task"
	KindDelete     Kind = "delete"
)

// DefaultTimeout bounds a single remote call.
const DefaultTimeout = 15 * time.Second

// Engine runs optimistic mutations against a cache and a remote store.
type Engine struct {
	cache   *cache.Cache
	remote  remote.Client
	logger  *zap.Logger
	timeout time.Duration
	now     func() time.Time

	mu      sync.Mutex
	locks   map[string]*semaphore.Weighted
	gens    map[string]uint64
	aliases map[string]string

	// unsettled counts abandoned mutations per id whose response has not
	// been reconciled yet. Read-side refreshes leave those ids alone.
	unsettled map[string]int

	settling sync.WaitGroup
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithTimeout bounds each remote call.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// WithClock overrides time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an Engine over the given cache and remote client.
func New(c *cache.Cache, r remote.Client, opts ...Option) *Engine {
	e := &Engine{
		cache:   c,
		remote:  r,
		logger:  zap.NewNop(),
		timeout: DefaultTimeout,
		now:     time.Now,
		locks:   make(map[string]*semaphore.Weighted),
		gens:    make(map[string]uint64),
		aliases: make(map[string]string),

		unsettled: make(map[string]int),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Wait blocks until every abandoned mutation has been reconciled or rolled back.
func (e *Engine) Wait() {
	e.settling.Wait()
}

// ListProjects returns the cached projects as of now.
func (e *Engine) ListProjects() iter.Seq[models.Project] {
	return e.cache.List()
}

// ProjectsByStatus returns the cached projects with the given status.
func (e *Engine) ProjectsByStatus(status models.Status) iter.Seq[models.Project] {
	return e.cache.Filter(status)
}

// Dashboard summarizes the cached projects, keeping the recent most recently updated.
func (e *Engine) Dashboard(recent int) models.Summary {
	return models.Summarize(e.cache.List(), recent)
}

// GetProject returns the cached project, fetching it from the remote store
// when the cache doesn't have it.
func (e *Engine) GetProject(ctx context.Context, id string) (*models.Project, error) {
	id = e.resolve(id)
	if p, err := e.cache.Get(id); err == nil {
		return p, nil
	}

	p, err := e.remote.Get(ctx, id)
	if err != nil {
		if remote.IsNotFound(err) {
			return nil, fmt.Errorf("project %s: %w", id, models.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch project %s: %w", id, err)
	}
	p.Derive()

	if release, ok := e.tryRead(p.ID); ok {
		err = e.write(p.ID, p)
		release()
		if err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Refresh loads the remote project collection into the cache. Projects with
// a mutation in flight keep their local state; their own reconcile brings
// them up to date.
func (e *Engine) Refresh(ctx context.Context) error {
	projects, err := e.remote.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list projects: %w", err)
	}

	seen := make(map[string]struct{}, len(projects))
	for i := range projects {
		p := &projects[i]
		p.Derive()
		seen[p.ID] = struct{}{}

		release, ok := e.tryRead(p.ID)
		if !ok {
			e.logger.Debug("skipping refresh of busy project", zap.String("project_id", p.ID))
			continue
		}
		err := e.write(p.ID, p)
		release()
		if err != nil {
			return err
		}
	}

	for p := range e.cache.List() {
		if _, ok := seen[p.ID]; ok || p.IsTemporary() {
			continue
		}
		release, ok := e.tryRead(p.ID)
		if !ok {
			continue
		}
		err := e.write(p.ID, nil)
		release()
		if err != nil {
			return err
		}
	}

	e.logger.Debug("refreshed projects", zap.Int("count", len(projects)))
	return nil
}

// mutation describes one optimistic change.
type mutation struct {
	kind Kind
	id   string

	// local computes the optimistic state from the snapshot, which is nil for
	// create. A nil result removes the project. Errors abort before any write.
	local func(prev *models.Project) (*models.Project, error)

	// call sends the optimistic state to the remote store.
	call func(ctx context.Context, id string, next *models.Project) (*models.Project, error)
}

type pending struct {
	mutation
	gen  uint64
	prev *models.Project
}

type result struct {
	project *models.Project
	err     error
}

func (e *Engine) run(ctx context.Context, m mutation) (*models.Project, error) {
	id, release, err := e.acquire(ctx, m.id)
	if err != nil {
		return nil, err
	}
	m.id = id

	var prev *models.Project
	if m.kind != KindCreate {
		prev, err = e.cache.Snapshot(id)
		if err != nil {
			release()
			return nil, err
		}
	}

	next, err := m.local(prev)
	if err != nil {
		release()
		return nil, err
	}
	if err := e.write(id, next); err != nil {
		release()
		return nil, err
	}
	p := pending{mutation: m, gen: e.generation(id), prev: prev}

	log := e.logger.With(zap.String("kind", string(m.kind)), zap.String("project_id", id))
	log.Debug("applied local mutation", zap.Uint64("generation", p.gen))

	done := make(chan result, 1)
	go func() {
		rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.timeout)
		defer cancel()
		project, err := m.call(rctx, m.id, next)
		done <- result{project: project, err: err}
	}()

	select {
	case res := <-done:
		defer release()
		return e.reconcile(p, res)
	case <-ctx.Done():
		e.mu.Lock()
		e.unsettled[id]++
		e.mu.Unlock()

		// A create keeps its lock: nothing can address the project until the
		// server has named it.
		if m.kind != KindCreate {
			release()
			release = nil
		}
		e.settling.Add(1)
		go func() {
			defer e.settling.Done()
			e.settle(p, done, release)
		}()
		log.Info("caller abandoned mutation; settling in background")
		return nil, fmt.Errorf("%s on project %s abandoned before confirmation: %w", m.kind, id, ctx.Err())
	}
}

// settle reconciles an abandoned mutation once its response arrives.
func (e *Engine) settle(p pending, done <-chan result, release func()) {
	res := <-done
	if release == nil {
		sem := e.lockFor(p.id)
		_ = sem.Acquire(context.Background(), 1)
		release = func() { sem.Release(1) }
	}
	defer release()
	defer e.markSettled(p.id)

	if _, err := e.reconcile(p, res); err != nil && !errors.Is(err, ErrConflictStale) {
		e.logger.Warn("abandoned mutation failed",
			zap.String("kind", string(p.kind)), zap.String("project_id", p.id), zap.Error(err))
	}
}

// reconcile adopts the remote outcome. The caller holds the project lock.
func (e *Engine) reconcile(p pending, res result) (*models.Project, error) {
	log := e.logger.With(zap.String("kind", string(p.kind)), zap.String("project_id", p.id))

	if res.err == nil && res.project == nil && p.kind != KindDelete {
		res.err = errors.New("empty response from remote store")
	}

	if e.generation(p.id) != p.gen {
		log.Debug("discarding response", zap.Error(ErrConflictStale), zap.NamedError("remote_error", res.err))
		if res.err != nil {
			return nil, &RemoteFailure{Kind: p.kind, ProjectID: p.id, Err: res.err}
		}
		if p.kind == KindDelete {
			return nil, nil
		}
		return e.cache.Get(p.id)
	}

	if res.err != nil {
		if err := e.rollback(p); err != nil {
			log.Error("rollback failed", zap.Error(err))
		}
		log.Warn("mutation rolled back", zap.Error(res.err))
		return nil, &RemoteFailure{Kind: p.kind, ProjectID: p.id, Err: res.err}
	}

	switch p.kind {
	case KindDelete:
		e.write(p.id, nil)
		log.Debug("delete confirmed")
		return nil, nil

	case KindCreate:
		canonical := res.project
		canonical.Derive()
		if err := e.cache.Rekey(p.id, canonical); err != nil {
			return nil, err
		}
		e.mu.Lock()
		e.aliases[p.id] = canonical.ID
		e.gens[p.id]++
		e.gens[canonical.ID]++
		e.mu.Unlock()
		log.Debug("create confirmed", zap.String("server_id", canonical.ID))
		return canonical.Clone(), nil

	default:
		canonical := res.project
		canonical.Derive()
		if err := e.write(p.id, canonical); err != nil {
			return nil, err
		}
		log.Debug("mutation confirmed")
		return canonical.Clone(), nil
	}
}

func (e *Engine) rollback(p pending) error {
	if p.kind == KindCreate {
		return e.write(p.id, nil)
	}
	return e.write(p.id, p.prev)
}

// write stores p under id (nil removes it) and advances the id's generation.
func (e *Engine) write(id string, p *models.Project) error {
	if p == nil {
		e.cache.Remove(id)
	} else if err := e.cache.Upsert(p); err != nil {
		return err
	}

	e.mu.Lock()
	e.gens[id]++
	e.mu.Unlock()
	return nil
}

func (e *Engine) generation(id string) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gens[id]
}

// markSettled drops one abandoned mutation from id's unsettled count.
func (e *Engine) markSettled(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.unsettled[id] <= 1 {
		delete(e.unsettled, id)
		return
	}
	e.unsettled[id]--
}

// tryRead takes id's lock for a read-side cache write without waiting. It
// fails while a mutation holds the lock or an abandoned one is unsettled,
// so a fetched copy never overwrites state a pending response will settle.
func (e *Engine) tryRead(id string) (func(), bool) {
	sem := e.lockFor(id)
	if !sem.TryAcquire(1) {
		return nil, false
	}

	e.mu.Lock()
	busy := e.unsettled[id] > 0
	e.mu.Unlock()
	if busy {
		sem.Release(1)
		return nil, false
	}
	return func() { sem.Release(1) }, true
}

func (e *Engine) lockFor(id string) *semaphore.Weighted {
	e.mu.Lock()
	defer e.mu.Unlock()

	sem, ok := e.locks[id]
	if !ok {
		sem = semaphore.NewWeighted(1)
		e.locks[id] = sem
	}
	return sem
}

// resolve maps a temporary id to the server id it was confirmed as.
func (e *Engine) resolve(id string) string {
	e.mu.Lock()
	defer e.mu.Unlock()

	if target, ok := e.aliases[id]; ok {
		return target
	}
	return id
}

// acquire takes the per-project lock, following the project if its
// temporary id was replaced while waiting.
func (e *Engine) acquire(ctx context.Context, id string) (string, func(), error) {
	for {
		id = e.resolve(id)
		sem := e.lockFor(id)
		if err := sem.Acquire(ctx, 1); err != nil {
			return "", nil, fmt.Errorf("waiting for project %s: %w", id, err)
		}
		if target := e.resolve(id); target != id {
			sem.Release(1)
			id = target
			continue
		}
		return id, func() { sem.Release(1) }, nil
	}
}
