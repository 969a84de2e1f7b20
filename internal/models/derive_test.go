package models

import (
	"testing"
)

func tasksWith(done ...bool) []Task {
	tasks := make([]Task, len(done))
	for i, d := range done {
		tasks[i] = Task{ID: string(rune('a' + i)), Title: "Task", Completed: d}
	}
	return tasks
}

func TestComputeProgress(t *testing.T) {
	tests := []struct {
		name     string
		tasks    []Task
		expected int
	}{
		{name: "no tasks", tasks: nil, expected: 0},
		{name: "empty slice", tasks: []Task{}, expected: 0},
		{name: "none completed", tasks: tasksWith(false, false), expected: 0},
		{name: "two of four", tasks: tasksWith(true, false, true, false), expected: 50},
		{name: "one of three rounds down", tasks: tasksWith(true, false, false), expected: 33},
		{name: "two of three rounds up", tasks: tasksWith(true, true, false), expected: 67},
		{name: "one of eight rounds half up", tasks: tasksWith(true, false, false, false, false, false, false, false), expected: 13},
		{name: "all completed", tasks: tasksWith(true, true, true), expected: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ComputeProgress(tt.tasks)
			if result != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, result)
			}
		})
	}
}

func TestComputeStatus(t *testing.T) {
	tests := []struct {
		name     string
		tasks    []Task
		expected Status
	}{
		{name: "no tasks", tasks: []Task{}, expected: StatusNotStarted},
		{name: "none completed", tasks: tasksWith(false, false), expected: StatusNotStarted},
		{name: "some completed", tasks: tasksWith(true, false), expected: StatusInProgress},
		{name: "all completed", tasks: tasksWith(true, true), expected: StatusCompleted},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ComputeStatus(tt.tasks)
			if result != tt.expected {
				t.Errorf("expected %q, got %q", tt.expected, result)
			}
		})
	}
}

func TestDerivation_OrderIndependent(t *testing.T) {
	forward := tasksWith(true, false, false, true, true)
	reversed := make([]Task, len(forward))
	for i := range forward {
		reversed[len(forward)-1-i] = forward[i]
	}

	if ComputeProgress(forward) != ComputeProgress(reversed) {
		t.Errorf("progress depends on order: %d vs %d", ComputeProgress(forward), ComputeProgress(reversed))
	}
	if ComputeStatus(forward) != ComputeStatus(reversed) {
		t.Errorf("status depends on order: %q vs %q", ComputeStatus(forward), ComputeStatus(reversed))
	}
}

func TestProgressBounds(t *testing.T) {
	for total := 1; total <= 40; total++ {
		for completed := 0; completed <= total; completed++ {
			flags := make([]bool, total)
			for i := 0; i < completed; i++ {
				flags[i] = true
			}
			got := ComputeProgress(tasksWith(flags...))
			if got < 0 || got > 100 {
				t.Fatalf("%d/%d: progress %d out of range", completed, total, got)
			}
			if completed == 0 && got != 0 {
				t.Fatalf("%d/%d: expected 0, got %d", completed, total, got)
			}
			if completed == total && got != 100 {
				t.Fatalf("%d/%d: expected 100, got %d", completed, total, got)
			}
		}
	}
}

func TestStatus_Valid(t *testing.T) {
	for _, s := range []Status{StatusNotStarted, StatusInProgress, StatusCompleted} {
		if !s.Valid() {
			t.Errorf("expected %q to be valid", s)
		}
	}
	if Status("archived").Valid() {
		t.Error("expected unknown status to be invalid")
	}
}
