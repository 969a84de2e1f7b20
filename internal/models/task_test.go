package models

import (
	"errors"
	"testing"
	"time"
)

func TestTaskValidation_RequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		task    Task
		wantErr bool
		errMsg  string
	}{
		{
			name:    "empty title should fail",
			task:    Task{ID: "t1", Title: ""},
			wantErr: true,
			errMsg:  "title is required",
		},
		{
			name:    "whitespace title should fail",
			task:    Task{ID: "t1", Title: "   "},
			wantErr: true,
			errMsg:  "title is required",
		},
		{
			name:    "missing id should fail",
			task:    Task{Title: "Write docs"},
			wantErr: true,
			errMsg:  "task id is required",
		},
		{
			name:    "valid task should pass",
			task:    Task{ID: "t1", Title: "Write docs"},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.task.Validate()
			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got none")
				} else if err.Error() != tt.errMsg {
					t.Errorf("expected error %q, got %q", tt.errMsg, err.Error())
				}
				var verr *ValidationError
				if !errors.As(err, &verr) {
					t.Errorf("expected ValidationError, got %T", err)
				}
			} else {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			}
		})
	}
}

func TestNewTask(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	task := NewTask("  Ship it ", " soon ", now)

	if task.ID == "" {
		t.Error("expected id to be set")
	}
	if task.Title != "Ship it" {
		t.Errorf("expected trimmed title, got %q", task.Title)
	}
	if task.Description != "soon" {
		t.Errorf("expected trimmed description, got %q", task.Description)
	}
	if task.Completed {
		t.Error("expected new task to be incomplete")
	}
	if !task.CreatedAt.Equal(now) {
		t.Errorf("expected created_at %v, got %v", now, task.CreatedAt)
	}
}

func TestNewTaskID_NoCollisions(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 10000; i++ {
		id := NewTaskID()
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate task id after %d ids: %s", i, id)
		}
		seen[id] = struct{}{}
	}
}

func TestTask_Toggled(t *testing.T) {
	task := Task{ID: "t1", Title: "Task"}

	once := task.Toggled()
	if !once.Completed {
		t.Error("expected toggled task to be completed")
	}
	if task.Completed {
		t.Error("expected original task to be unchanged")
	}
	if once.Toggled().Completed {
		t.Error("expected double toggle to restore completion flag")
	}
}
