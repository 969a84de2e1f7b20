package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Task represents a single task within a project.
type Task struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Completed   bool      `json:"completed"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewTask builds an incomplete task with a fresh identifier.
func NewTask(title, description string, now time.Time) Task {
	return Task{
		ID:          NewTaskID(),
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		CreatedAt:   now,
	}
}

// NewTaskID returns a task identifier that cannot collide with any other,
// regardless of how quickly tasks are added.
func NewTaskID() string {
	return uuid.NewString()
}

// Validate checks that the task has valid field values.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.ID) == "" {
		return invalid("id", "task id is required")
	}

	if strings.TrimSpace(t.Title) == "" {
		return invalid("title", "title is required")
	}

	return nil
}

// Toggled returns a copy of the task with its completion flag flipped.
func (t Task) Toggled() Task {
	t.Completed = !t.Completed
	return t
}
