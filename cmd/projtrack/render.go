package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"projtrack/internal/models"
)

var (
	cyan   = color.New(color.FgCyan, color.Bold).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	gray   = color.New(color.FgHiBlack).SprintFunc()
)

func statusColor(s models.Status) func(a ...interface{}) string {
	switch s {
	case models.StatusCompleted:
		return green
	case models.StatusInProgress:
		return yellow
	default:
		return gray
	}
}

func progressBar(progress int) string {
	const width = 20
	filled := progress * width / 100
	return "[" + strings.Repeat("#", filled) + strings.Repeat("-", width-filled) + "]"
}

func printProjectLine(w io.Writer, p *models.Project) {
	sc := statusColor(p.Status)
	fmt.Fprintf(w, "  %-6s %-32s %s %s %3d%%\n",
		p.ID, p.Name, sc(fmt.Sprintf("%-11s", p.Status)), progressBar(p.Progress), p.Progress)
}

func printProject(w io.Writer, p *models.Project) {
	fmt.Fprintf(w, "\n%s\n", cyan(p.Name))
	fmt.Fprintf(w, "  ID:       %s\n", p.ID)
	if p.Description != "" {
		fmt.Fprintf(w, "  About:    %s\n", p.Description)
	}
	if p.GithubURL != nil {
		fmt.Fprintf(w, "  GitHub:   %s\n", *p.GithubURL)
	}
	fmt.Fprintf(w, "  Status:   %s\n", statusColor(p.Status)(p.Status))
	fmt.Fprintf(w, "  Progress: %s %d%% (%d/%d tasks)\n",
		progressBar(p.Progress), p.Progress, models.CountCompleted(p.Tasks), len(p.Tasks))
	if !p.UpdatedAt.IsZero() {
		fmt.Fprintf(w, "  Updated:  %s\n", p.UpdatedAt.Local().Format("2006-01-02 15:04"))
	}

	fmt.Fprintln(w)
	if len(p.Tasks) == 0 {
		fmt.Fprintf(w, "  %s\n", gray("No tasks"))
		return
	}
	for _, t := range p.Tasks {
		mark := gray("○")
		if t.Completed {
			mark = green("✓")
		}
		fmt.Fprintf(w, "  %s %s  %s\n", mark, gray(shortID(t.ID)), t.Title)
		if t.Description != "" {
			fmt.Fprintf(w, "      %s\n", gray(t.Description))
		}
	}
}

func printSummary(w io.Writer, s models.Summary) {
	fmt.Fprintf(w, "\n%s\n\n", cyan("=== Dashboard ==="))
	fmt.Fprintf(w, "  Projects:    %d\n", s.Total)
	fmt.Fprintf(w, "    %s %d\n", gray("not-started"), s.NotStarted)
	fmt.Fprintf(w, "    %s %d\n", yellow("in-progress"), s.InProgress)
	fmt.Fprintf(w, "    %s   %d\n", green("completed"), s.Completed)
	fmt.Fprintf(w, "  Tasks:       %d/%d done\n", s.CompletedTasks, s.TotalTasks)
	fmt.Fprintf(w, "  Overall:     %s %d%%\n", progressBar(s.Progress), s.Progress)

	if len(s.Recent) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s\n", yellow("Recently updated:"))
	for i := range s.Recent {
		printProjectLine(w, &s.Recent[i])
	}
}

// shortID abbreviates generated task ids for display; any unique prefix
// is accepted back on the command line.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
