package models

// Status is the lifecycle stage of a project, derived from its tasks.
type Status string

const (
	StatusNotStarted Status = "not-started"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
		return true
	default:
		return false
	}
}

// CountCompleted returns how many tasks are marked completed.
func CountCompleted(tasks []Task) int {
	n := 0
	for i := range tasks {
		if tasks[i].Completed {
			n++
		}
	}
	return n
}

// ComputeProgress returns the share of completed tasks as a percentage,
// rounded half up. An empty task list has no progress.
func ComputeProgress(tasks []Task) int {
	return percent(CountCompleted(tasks), len(tasks))
}

// ComputeStatus derives the project status from its tasks.
func ComputeStatus(tasks []Task) Status {
	done := CountCompleted(tasks)
	switch {
	case len(tasks) == 0 || done == 0:
		return StatusNotStarted
	case done == len(tasks):
		return StatusCompleted
	default:
		return StatusInProgress
	}
}

// percent computes round(100*part/total) with half-up rounding on integers.
func percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return (200*part + total) / (2 * total)
}
