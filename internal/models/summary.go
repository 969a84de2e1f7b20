package models

import (
	"iter"
	"sort"
	"time"
)

// Summary aggregates projects for the dashboard view.
type Summary struct {
	Total          int       `json:"total"`
	NotStarted     int       `json:"notStarted"`
	InProgress     int       `json:"inProgress"`
	Completed      int       `json:"completed"`
	TotalTasks     int       `json:"totalTasks"`
	CompletedTasks int       `json:"completedTasks"`
	Progress       int       `json:"progress"`
	Recent         []Project `json:"recent"`
}

// Summarize counts projects per status and tasks overall, and keeps the
// recent most recently updated projects.
func Summarize(projects iter.Seq[Project], recent int) Summary {
	var (
		s   Summary
		all []Project
	)

	for p := range projects {
		s.Total++
		switch p.Status {
		case StatusCompleted:
			s.Completed++
		case StatusInProgress:
			s.InProgress++
		default:
			s.NotStarted++
		}
		s.TotalTasks += len(p.Tasks)
		s.CompletedTasks += CountCompleted(p.Tasks)
		all = append(all, p)
	}
	s.Progress = percent(s.CompletedTasks, s.TotalTasks)

	sort.SliceStable(all, func(i, j int) bool {
		return lastTouched(&all[i]).After(lastTouched(&all[j]))
	})
	if recent > len(all) {
		recent = len(all)
	}
	if recent > 0 {
		s.Recent = all[:recent]
	}

	return s
}

func lastTouched(p *Project) time.Time {
	if !p.UpdatedAt.IsZero() {
		return p.UpdatedAt
	}
	return p.CreatedAt
}
