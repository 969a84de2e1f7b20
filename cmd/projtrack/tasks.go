package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"projtrack/internal/models"
	"projtrack/internal/optimistic"
)

var addTaskCmd = &cobra.Command{
	Use:   "add-task <project-id> <title>",
	Short: "Add a task to a project",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		description, _ := cmd.Flags().GetString("description")
		return runAddTask(cmd.Context(), engine, cmd.OutOrStdout(), args[0], args[1], description)
	},
}

var toggleCmd = &cobra.Command{
	Use:   "toggle <project-id> <task-id>",
	Short: "Mark a task done, or not done again",
	Long: `Flip a task's completion flag. The task id may be abbreviated to any
unique prefix, as printed by "projtrack show".`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runToggle(cmd.Context(), engine, cmd.OutOrStdout(), args[0], args[1])
	},
}

var rmTaskCmd = &cobra.Command{
	Use:   "rm-task <project-id> <task-id>",
	Short: "Remove a task from a project",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRemoveTask(cmd.Context(), engine, cmd.OutOrStdout(), args[0], args[1])
	},
}

func init() {
	addTaskCmd.Flags().String("description", "", "Task description")

	rootCmd.AddCommand(addTaskCmd, toggleCmd, rmTaskCmd)
}

func runAddTask(ctx context.Context, e *optimistic.Engine, w io.Writer, id, title, description string) error {
	if err := e.Refresh(ctx); err != nil {
		return err
	}

	p, err := e.AddTask(ctx, id, title, description)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s Added task to %s\n", green("✓"), p.Name)
	printProject(w, p)
	return nil
}

func runToggle(ctx context.Context, e *optimistic.Engine, w io.Writer, id, ref string) error {
	taskID, err := lookupTask(ctx, e, id, ref)
	if err != nil {
		return err
	}

	p, err := e.ToggleTask(ctx, id, taskID)
	if err != nil {
		return err
	}
	printProject(w, p)
	return nil
}

func runRemoveTask(ctx context.Context, e *optimistic.Engine, w io.Writer, id, ref string) error {
	taskID, err := lookupTask(ctx, e, id, ref)
	if err != nil {
		return err
	}

	p, err := e.RemoveTask(ctx, id, taskID)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s Removed task from %s\n", green("✓"), p.Name)
	printProject(w, p)
	return nil
}

// lookupTask loads the project and resolves ref to a full task id.
func lookupTask(ctx context.Context, e *optimistic.Engine, id, ref string) (string, error) {
	if err := e.Refresh(ctx); err != nil {
		return "", err
	}
	p, err := e.GetProject(ctx, id)
	if err != nil {
		return "", err
	}
	return matchTask(p, ref)
}

// matchTask accepts an exact task id or a unique prefix of one.
func matchTask(p *models.Project, ref string) (string, error) {
	if p.TaskIndex(ref) >= 0 {
		return ref, nil
	}

	var found []string
	for _, t := range p.Tasks {
		if ref != "" && strings.HasPrefix(t.ID, ref) {
			found = append(found, t.ID)
		}
	}

	switch len(found) {
	case 0:
		return "", fmt.Errorf("task %s: %w", ref, models.ErrNotFound)
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("task id %q is ambiguous: matches %d tasks", ref, len(found))
	}
}
