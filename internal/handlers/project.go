package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"projtrack/internal/models"
)

// ListProjects returns every project, optionally filtered by ?status=.
func (h *Handlers) ListProjects(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var filter models.Status
	if raw := r.URL.Query().Get("status"); raw != "" && raw != "all" {
		filter = models.Status(raw)
		if !filter.Valid() {
			h.respondError(w, http.StatusBadRequest, "unknown status "+raw)
			return
		}
	}

	projects, err := h.store.ListProjects(ctx)
	if err != nil {
		h.respondStoreError(w, err)
		return
	}

	if filter != "" {
		kept := projects[:0]
		for _, p := range projects {
			if p.Status == filter {
				kept = append(kept, p)
			}
		}
		projects = kept
	}

	h.respondJSON(w, http.StatusOK, projects)
}

// GetProject returns a single project with its tasks.
func (h *Handlers) GetProject(w http.ResponseWriter, r *http.Request) {
	project, err := h.store.GetProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondStoreError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, project)
}

// CreateProject creates a new project. The id, timestamps, and derived
// fields sent by the client are ignored.
func (h *Handlers) CreateProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var project models.Project
	if err := decodeJSON(w, r, &project); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	project.ID = ""
	h.normalize(&project)

	if err := project.Validate(); err != nil {
		h.respondStoreError(w, err)
		return
	}

	if err := h.store.CreateProject(ctx, &project); err != nil {
		h.respondStoreError(w, err)
		return
	}

	h.logger.Info("project created", zap.String("project_id", project.ID), zap.Int("tasks", len(project.Tasks)))
	h.respondJSON(w, http.StatusCreated, project)
}

// ReplaceProject overwrites a project's fields and tasks with the request body.
func (h *Handlers) ReplaceProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := chi.URLParam(r, "id")

	existing, err := h.store.GetProject(ctx, id)
	if err != nil {
		h.respondStoreError(w, err)
		return
	}

	var project models.Project
	if err := decodeJSON(w, r, &project); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	project.ID = existing.ID
	project.CreatedAt = existing.CreatedAt
	h.normalize(&project)

	if err := project.Validate(); err != nil {
		h.respondStoreError(w, err)
		return
	}

	if err := h.store.UpdateProject(ctx, &project); err != nil {
		h.respondStoreError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, project)
}

// PatchProject merges a partial update, typically a new task list, into a project.
func (h *Handlers) PatchProject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	project, err := h.store.GetProject(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.respondStoreError(w, err)
		return
	}

	var patch models.ProjectPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	project.Apply(patch)
	h.normalize(project)

	if err := project.Validate(); err != nil {
		h.respondStoreError(w, err)
		return
	}

	if err := h.store.UpdateProject(ctx, project); err != nil {
		h.respondStoreError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, project)
}

// DeleteProject deletes a project.
func (h *Handlers) DeleteProject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.store.DeleteProject(r.Context(), id); err != nil {
		h.respondStoreError(w, err)
		return
	}

	h.logger.Info("project deleted", zap.String("project_id", id))
	w.WriteHeader(http.StatusNoContent)
}

// normalize trims user input, fills missing task ids and timestamps, and
// re-derives status and progress.
func (h *Handlers) normalize(p *models.Project) {
	p.Name = strings.TrimSpace(p.Name)
	p.Description = strings.TrimSpace(p.Description)
	p.ApplyFields(models.ProjectFields{GithubURL: urlOrEmpty(p.GithubURL)})

	now := h.now()
	tasks := make([]models.Task, len(p.Tasks))
	for i, t := range p.Tasks {
		t.Title = strings.TrimSpace(t.Title)
		t.Description = strings.TrimSpace(t.Description)
		if t.ID == "" {
			t.ID = models.NewTaskID()
		}
		if t.CreatedAt.IsZero() {
			t.CreatedAt = now.Add(time.Duration(i))
		}
		tasks[i] = t
	}
	p.SetTasks(tasks)
}

func urlOrEmpty(u *string) *string {
	if u == nil {
		empty := ""
		return &empty
	}
	return u
}
