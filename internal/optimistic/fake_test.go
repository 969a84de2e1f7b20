package optimistic

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"projtrack/internal/models"
)

// fakeRemote is an in-memory remote store. When gated, every call is
// announced on started and blocks until the test sends its outcome on the
// call's release channel; a non-nil value fails the call.
type fakeRemote struct {
	mu       sync.Mutex
	projects map[string]*models.Project
	seq      int
	patches  []models.ProjectPatch

	started chan *pendingCall
}

type pendingCall struct {
	op      string
	id      string
	release chan error
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{projects: make(map[string]*models.Project)}
}

func newGatedRemote() *fakeRemote {
	f := newFakeRemote()
	f.started = make(chan *pendingCall, 16)
	return f
}

// seed stores a project as if the server had created it.
func (f *fakeRemote) seed(p *models.Project) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.projects[p.ID] = p.Clone()
}

func (f *fakeRemote) wait(ctx context.Context, op, id string) error {
	if f.started == nil {
		return nil
	}
	c := &pendingCall{op: op, id: id, release: make(chan error, 1)}
	f.started <- c
	select {
	case err := <-c.release:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (f *fakeRemote) Create(ctx context.Context, p *models.Project) (*models.Project, error) {
	if err := f.wait(ctx, "create", ""); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	f.seq++
	stored := p.Clone()
	stored.ID = strconv.Itoa(100 + f.seq)
	stored.UpdatedAt = stored.UpdatedAt.Add(time.Second)
	f.projects[stored.ID] = stored
	return stored.Clone(), nil
}

func (f *fakeRemote) List(ctx context.Context) ([]models.Project, error) {
	if err := f.wait(ctx, "list", ""); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]models.Project, 0, len(f.projects))
	for _, p := range f.projects {
		out = append(out, *p.Clone())
	}
	return out, nil
}

func (f *fakeRemote) Get(ctx context.Context, id string) (*models.Project, error) {
	if err := f.wait(ctx, "get", id); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.projects[id]
	if !ok {
		return nil, fmt.Errorf("project %s: %w", id, models.ErrNotFound)
	}
	return p.Clone(), nil
}

func (f *fakeRemote) Replace(ctx context.Context, p *models.Project) (*models.Project, error) {
	if err := f.wait(ctx, "replace", p.ID); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.projects[p.ID]; !ok {
		return nil, fmt.Errorf("project %s: %w", p.ID, models.ErrNotFound)
	}
	stored := p.Clone()
	f.projects[p.ID] = stored
	return stored.Clone(), nil
}

func (f *fakeRemote) Patch(ctx context.Context, id string, patch models.ProjectPatch) (*models.Project, error) {
	if err := f.wait(ctx, "patch", id); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	f.patches = append(f.patches, patch)
	p, ok := f.projects[id]
	if !ok {
		return nil, fmt.Errorf("project %s: %w", id, models.ErrNotFound)
	}
	p.Apply(patch)
	return p.Clone(), nil
}

func (f *fakeRemote) Delete(ctx context.Context, id string) error {
	if err := f.wait(ctx, "delete", id); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.projects[id]; !ok {
		return fmt.Errorf("project %s: %w", id, models.ErrNotFound)
	}
	delete(f.projects, id)
	return nil
}

func (f *fakeRemote) patchLog() []models.ProjectPatch {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.ProjectPatch(nil), f.patches...)
}

// remoteMock is a testify mock of remote.Client.
type remoteMock struct {
	mock.Mock
}

func (m *remoteMock) project(args mock.Arguments) (*models.Project, error) {
	var p *models.Project
	if v := args.Get(0); v != nil {
		p = v.(*models.Project)
	}
	return p, args.Error(1)
}

func (m *remoteMock) Create(ctx context.Context, p *models.Project) (*models.Project, error) {
	return m.project(m.Called(ctx, p))
}

func (m *remoteMock) List(ctx context.Context) ([]models.Project, error) {
	args := m.Called(ctx)
	var out []models.Project
	if v := args.Get(0); v != nil {
		out = v.([]models.Project)
	}
	return out, args.Error(1)
}

func (m *remoteMock) Get(ctx context.Context, id string) (*models.Project, error) {
	return m.project(m.Called(ctx, id))
}

func (m *remoteMock) Replace(ctx context.Context, p *models.Project) (*models.Project, error) {
	return m.project(m.Called(ctx, p))
}

func (m *remoteMock) Patch(ctx context.Context, id string, patch models.ProjectPatch) (*models.Project, error) {
	return m.project(m.Called(ctx, id, patch))
}

func (m *remoteMock) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
