package models

import (
	"errors"
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func TestProjectValidation_RequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		project Project
		wantErr bool
		errMsg  string
	}{
		{
			name:    "empty name should fail",
			project: Project{Name: ""},
			wantErr: true,
			errMsg:  "name is required",
		},
		{
			name:    "whitespace name should fail",
			project: Project{Name: "   "},
			wantErr: true,
			errMsg:  "name is required",
		},
		{
			name:    "valid name should pass",
			project: Project{Name: "Test Project"},
			wantErr: false,
		},
		{
			name:    "task without title should fail",
			project: Project{Name: "Test", Tasks: []Task{{ID: "1"}}},
			wantErr: true,
			errMsg:  "title is required",
		},
		{
			name:    "duplicate task ids should fail",
			project: Project{Name: "Test", Tasks: []Task{{ID: "1", Title: "A"}, {ID: "1", Title: "B"}}},
			wantErr: true,
			errMsg:  `duplicate task id "1"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.project.Validate()
			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got none")
				} else if err.Error() != tt.errMsg {
					t.Errorf("expected error %q, got %q", tt.errMsg, err.Error())
				}
			} else {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			}
		})
	}
}

func TestProjectValidation_GithubURL(t *testing.T) {
	tests := []struct {
		name    string
		url     *string
		wantErr bool
	}{
		{name: "absent url is valid", url: nil, wantErr: false},
		{name: "https url is valid", url: strPtr("https://github.com/acme/widgets"), wantErr: false},
		{name: "relative url should fail", url: strPtr("acme/widgets"), wantErr: true},
		{name: "ftp url should fail", url: strPtr("ftp://github.com/acme"), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Project{Name: "Test", GithubURL: tt.url}
			err := p.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("expected error %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestProject_ApplyFieldsNormalizesEmptyURL(t *testing.T) {
	p := Project{Name: "Test", GithubURL: strPtr("https://github.com/acme/widgets")}

	p.ApplyFields(ProjectFields{GithubURL: strPtr("  ")})
	if p.GithubURL != nil {
		t.Errorf("expected empty github url to be stored as nil, got %q", *p.GithubURL)
	}

	p.ApplyFields(ProjectFields{Name: strPtr(" Renamed ")})
	if p.Name != "Renamed" {
		t.Errorf("expected trimmed name, got %q", p.Name)
	}
}

func TestProject_TaskMutationsRederive(t *testing.T) {
	p := Project{Name: "Test"}
	p.SetTasks(nil)
	if p.Status != StatusNotStarted || p.Progress != 0 {
		t.Fatalf("expected empty project to be not-started/0, got %s/%d", p.Status, p.Progress)
	}

	now := time.Now()
	first := NewTask("First", "", now)
	second := NewTask("Second", "", now)
	if err := p.AddTask(first); err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}
	if err := p.AddTask(second); err != nil {
		t.Fatalf("AddTask failed: %v", err)
	}

	if err := p.ToggleTask(first.ID); err != nil {
		t.Fatalf("ToggleTask failed: %v", err)
	}
	if p.Status != StatusInProgress || p.Progress != 50 {
		t.Errorf("expected in-progress/50, got %s/%d", p.Status, p.Progress)
	}

	if err := p.RemoveTask(second.ID); err != nil {
		t.Fatalf("RemoveTask failed: %v", err)
	}
	if p.Status != StatusCompleted || p.Progress != 100 {
		t.Errorf("expected completed/100, got %s/%d", p.Status, p.Progress)
	}
	if !p.IsDerived() {
		t.Error("expected derived fields to match tasks")
	}
}

func TestProject_ToggleTwiceRestores(t *testing.T) {
	p := Project{Name: "Test"}
	p.SetTasks(tasksWith(true, false, false))
	before := p.Clone()

	for i := 0; i < 2; i++ {
		if err := p.ToggleTask("b"); err != nil {
			t.Fatalf("ToggleTask failed: %v", err)
		}
	}

	if p.Tasks[1].Completed != before.Tasks[1].Completed || p.Status != before.Status || p.Progress != before.Progress {
		t.Errorf("expected %s/%d after double toggle, got %s/%d", before.Status, before.Progress, p.Status, p.Progress)
	}
}

func TestProject_UnknownTask(t *testing.T) {
	p := Project{Name: "Test"}
	p.SetTasks(tasksWith(false))

	if err := p.ToggleTask("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound from ToggleTask, got %v", err)
	}
	if err := p.RemoveTask("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound from RemoveTask, got %v", err)
	}
}

func TestProject_AddTaskRejectsDuplicate(t *testing.T) {
	p := Project{Name: "Test"}
	p.SetTasks(tasksWith(false))

	err := p.AddTask(Task{ID: "a", Title: "Again"})
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(p.Tasks) != 1 {
		t.Errorf("expected task list unchanged, got %d tasks", len(p.Tasks))
	}
}

func TestProject_CloneIsDeep(t *testing.T) {
	p := Project{Name: "Test", GithubURL: strPtr("https://github.com/acme/widgets")}
	p.SetTasks(tasksWith(false))

	c := p.Clone()
	c.Tasks[0].Completed = true
	*c.GithubURL = "https://github.com/other"

	if p.Tasks[0].Completed {
		t.Error("expected clone tasks to be independent")
	}
	if *p.GithubURL != "https://github.com/acme/widgets" {
		t.Error("expected clone github url to be independent")
	}
}

func TestProject_IsTemporary(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		expected bool
	}{
		{name: "temporary id", id: NewTemporaryID(), expected: true},
		{name: "server id", id: "7", expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Project{ID: tt.id}
			if p.IsTemporary() != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, p.IsTemporary())
			}
		})
	}
}

func TestProject_ApplyPatch(t *testing.T) {
	p := Project{Name: "Test"}
	p.SetTasks(tasksWith(false, false))

	tasks := tasksWith(true, true)
	wrong := StatusNotStarted
	p.Apply(ProjectPatch{Tasks: &tasks, Status: &wrong})

	if p.Status != StatusCompleted || p.Progress != 100 {
		t.Errorf("expected patch to be re-derived, got %s/%d", p.Status, p.Progress)
	}
}
