package models

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TempIDPrefix marks project ids minted locally before the remote store
// assigns the real one. Server ids are numeric and never carry it.
const TempIDPrefix = "tmp-"

// Project represents a project and the ordered tasks it owns.
// Status and Progress are derived from Tasks and are only written by Derive.
type Project struct {
	ID          string    `json:"id,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	GithubURL   *string   `json:"githubUrl"`
	Tasks       []Task    `json:"tasks"`
	Status      Status    `json:"status"`
	Progress    int       `json:"progress"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// ProjectFields carries the user-editable fields of a project.
// Nil pointers leave the current value untouched; an empty GithubURL clears it.
type ProjectFields struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	GithubURL   *string `json:"githubUrl,omitempty"`
}

// ProjectPatch is the partial update accepted by PATCH /projects/{id}.
// Status and Progress are informational; receivers re-derive them from Tasks.
type ProjectPatch struct {
	ProjectFields
	Tasks    *[]Task `json:"tasks,omitempty"`
	Status   *Status `json:"status,omitempty"`
	Progress *int    `json:"progress,omitempty"`
}

// NewTemporaryID returns a client-side placeholder project id.
func NewTemporaryID() string {
	return TempIDPrefix + uuid.NewString()
}

// IsTemporary reports whether the project has not been confirmed by the remote store yet.
func (p *Project) IsTemporary() bool {
	return strings.HasPrefix(p.ID, TempIDPrefix)
}

// Validate checks that the project has valid field values.
func (p *Project) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return invalid("name", "name is required")
	}

	if p.GithubURL != nil {
		if err := validateURL(*p.GithubURL); err != nil {
			return err
		}
	}

	seen := make(map[string]struct{}, len(p.Tasks))
	for i := range p.Tasks {
		if err := p.Tasks[i].Validate(); err != nil {
			return err
		}
		if _, dup := seen[p.Tasks[i].ID]; dup {
			return invalid("tasks", fmt.Sprintf("duplicate task id %q", p.Tasks[i].ID))
		}
		seen[p.Tasks[i].ID] = struct{}{}
	}

	return nil
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return invalid("githubUrl", "githubUrl must be an http(s) URL")
	}
	return nil
}

// Derive recomputes Status and Progress from Tasks.
func (p *Project) Derive() {
	p.Progress = ComputeProgress(p.Tasks)
	p.Status = ComputeStatus(p.Tasks)
}

// IsDerived reports whether Status and Progress agree with Tasks.
func (p *Project) IsDerived() bool {
	return p.Progress == ComputeProgress(p.Tasks) && p.Status == ComputeStatus(p.Tasks)
}

// Clone returns a deep copy of the project.
func (p *Project) Clone() *Project {
	c := *p
	if p.Tasks != nil {
		c.Tasks = make([]Task, len(p.Tasks))
		copy(c.Tasks, p.Tasks)
	}
	if p.GithubURL != nil {
		u := *p.GithubURL
		c.GithubURL = &u
	}
	return &c
}

// ApplyFields copies the set fields onto the project, normalizing an empty
// GithubURL to nil.
func (p *Project) ApplyFields(f ProjectFields) {
	if f.Name != nil {
		p.Name = strings.TrimSpace(*f.Name)
	}
	if f.Description != nil {
		p.Description = strings.TrimSpace(*f.Description)
	}
	if f.GithubURL != nil {
		p.GithubURL = normalizeURL(*f.GithubURL)
	}
}

// Apply merges a patch into the project and re-derives.
func (p *Project) Apply(patch ProjectPatch) {
	p.ApplyFields(patch.ProjectFields)
	if patch.Tasks != nil {
		p.SetTasks(*patch.Tasks)
		return
	}
	p.Derive()
}

// Patch returns the PATCH body carrying the project's task list.
func (p *Project) Patch() ProjectPatch {
	tasks := make([]Task, len(p.Tasks))
	copy(tasks, p.Tasks)
	status, progress := p.Status, p.Progress
	return ProjectPatch{Tasks: &tasks, Status: &status, Progress: &progress}
}

// SetTasks replaces the task list and re-derives.
func (p *Project) SetTasks(tasks []Task) {
	p.Tasks = tasks
	if p.Tasks == nil {
		p.Tasks = []Task{}
	}
	p.Derive()
}

// TaskIndex returns the position of the task with the given id, or -1.
func (p *Project) TaskIndex(taskID string) int {
	for i := range p.Tasks {
		if p.Tasks[i].ID == taskID {
			return i
		}
	}
	return -1
}

// AddTask appends a task and re-derives.
func (p *Project) AddTask(t Task) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if p.TaskIndex(t.ID) >= 0 {
		return invalid("tasks", fmt.Sprintf("duplicate task id %q", t.ID))
	}

	tasks := make([]Task, 0, len(p.Tasks)+1)
	tasks = append(tasks, p.Tasks...)
	p.SetTasks(append(tasks, t))
	return nil
}

// ToggleTask flips the completion flag of one task and re-derives.
func (p *Project) ToggleTask(taskID string) error {
	i := p.TaskIndex(taskID)
	if i < 0 {
		return fmt.Errorf("task %s: %w", taskID, ErrNotFound)
	}

	tasks := make([]Task, len(p.Tasks))
	copy(tasks, p.Tasks)
	tasks[i] = tasks[i].Toggled()
	p.SetTasks(tasks)
	return nil
}

// RemoveTask drops one task and re-derives.
func (p *Project) RemoveTask(taskID string) error {
	i := p.TaskIndex(taskID)
	if i < 0 {
		return fmt.Errorf("task %s: %w", taskID, ErrNotFound)
	}

	tasks := make([]Task, 0, len(p.Tasks)-1)
	tasks = append(tasks, p.Tasks[:i]...)
	tasks = append(tasks, p.Tasks[i+1:]...)
	p.SetTasks(tasks)
	return nil
}

func normalizeURL(raw string) *string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	return &raw
}
