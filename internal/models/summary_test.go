package models

import (
	"slices"
	"testing"
	"time"
)

func TestSummarize(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mk := func(id string, updated int, done ...bool) Project {
		p := Project{ID: id, Name: id, CreatedAt: base, UpdatedAt: base.Add(time.Duration(updated) * time.Hour)}
		p.SetTasks(tasksWith(done...))
		return p
	}

	projects := []Project{
		mk("empty", 1),
		mk("started", 4, true, false),
		mk("done", 3, true, true),
		mk("idle", 2, false, false, false),
	}

	s := Summarize(slices.Values(projects), 2)

	if s.Total != 4 {
		t.Errorf("expected 4 projects, got %d", s.Total)
	}
	if s.NotStarted != 2 || s.InProgress != 1 || s.Completed != 1 {
		t.Errorf("unexpected status counts: %+v", s)
	}
	if s.TotalTasks != 7 || s.CompletedTasks != 3 {
		t.Errorf("expected 3/7 tasks, got %d/%d", s.CompletedTasks, s.TotalTasks)
	}
	if s.Progress != 43 {
		t.Errorf("expected overall progress 43, got %d", s.Progress)
	}
	if len(s.Recent) != 2 || s.Recent[0].ID != "started" || s.Recent[1].ID != "done" {
		t.Errorf("unexpected recent projects: %+v", s.Recent)
	}
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(slices.Values([]Project(nil)), 5)
	if s.Total != 0 || s.Progress != 0 || len(s.Recent) != 0 {
		t.Errorf("expected zero summary, got %+v", s)
	}
}
