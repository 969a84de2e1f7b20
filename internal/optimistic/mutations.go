package optimistic

import (
	"context"

	"projtrack/internal/models"
)

// CreateProject adds a provisional project under a temporary id, then
// replaces it with the server's project once the create is confirmed.
func (e *Engine) CreateProject(ctx context.Context, fields models.ProjectFields, tasks ...models.Task) (*models.Project, error) {
	tmpID := models.NewTemporaryID()
	return e.run(ctx, mutation{
		kind: KindCreate,
		id:   tmpID,
		local: func(_ *models.Project) (*models.Project, error) {
			now := e.now()
			p := &models.Project{ID: tmpID, CreatedAt: now, UpdatedAt: now}
			p.ApplyFields(fields)

			seeded := make([]models.Task, len(tasks))
			for i, t := range tasks {
				if t.ID == "" {
					t.ID = models.NewTaskID()
				}
				if t.CreatedAt.IsZero() {
					t.CreatedAt = now
				}
				seeded[i] = t
			}
			p.SetTasks(seeded)

			if err := p.Validate(); err != nil {
				return nil, err
			}
			return p, nil
		},
		call: func(ctx context.Context, _ string, next *models.Project) (*models.Project, error) {
			return e.remote.Create(ctx, next)
		},
	})
}

// UpdateProjectFields edits name, description or GitHub URL. Tasks, and so
// the derived fields, are left alone.
func (e *Engine) UpdateProjectFields(ctx context.Context, id string, fields models.ProjectFields) (*models.Project, error) {
	return e.run(ctx, mutation{
		kind: KindUpdate,
		id:   id,
		local: func(prev *models.Project) (*models.Project, error) {
			next := prev.Clone()
			next.ApplyFields(fields)
			next.UpdatedAt = e.now()
			if err := next.Validate(); err != nil {
				return nil, err
			}
			return next, nil
		},
		call: func(ctx context.Context, _ string, next *models.Project) (*models.Project, error) {
			return e.remote.Replace(ctx, next)
		},
	})
}

// AddTask appends a new incomplete task to the project.
func (e *Engine) AddTask(ctx context.Context, id, title, description string) (*models.Project, error) {
	return e.taskMutation(ctx, KindAddTask, id, func(next *models.Project) error {
		return next.AddTask(models.NewTask(title, description, e.now()))
	})
}

// ToggleTask flips the completion flag of one task.
func (e *Engine) ToggleTask(ctx context.Context, id, taskID string) (*models.Project, error) {
	return e.taskMutation(ctx, KindToggleTask, id, func(next *models.Project) error {
		return next.ToggleTask(taskID)
	})
}

// RemoveTask deletes one task from the project.
func (e *Engine) RemoveTask(ctx context.Context, id, taskID string) (*models.Project, error) {
	return e.taskMutation(ctx, KindRemoveTask, id, func(next *models.Project) error {
		return next.RemoveTask(taskID)
	})
}

// DeleteProject removes the project and all its tasks.
func (e *Engine) DeleteProject(ctx context.Context, id string) error {
	_, err := e.run(ctx, mutation{
		kind: KindDelete,
		id:   id,
		local: func(_ *models.Project) (*models.Project, error) {
			return nil, nil
		},
		call: func(ctx context.Context, id string, _ *models.Project) (*models.Project, error) {
			return nil, e.remote.Delete(ctx, id)
		},
	})
	return err
}

// taskMutation changes the task list locally and sends it with PATCH.
func (e *Engine) taskMutation(ctx context.Context, kind Kind, id string, change func(*models.Project) error) (*models.Project, error) {
	return e.run(ctx, mutation{
		kind: kind,
		id:   id,
		local: func(prev *models.Project) (*models.Project, error) {
			next := prev.Clone()
			if err := change(next); err != nil {
				return nil, err
			}
			next.UpdatedAt = e.now()
			return next, nil
		},
		call: func(ctx context.Context, id string, next *models.Project) (*models.Project, error) {
			return e.remote.Patch(ctx, id, next.Patch())
		},
	})
}
