package main

import (
	"context"
	"fmt"
	"io"
	"iter"
	"time"

	"github.com/spf13/cobra"

	"projtrack/internal/models"
	"projtrack/internal/optimistic"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	Long: `List every project with its status and progress.

Use --status to show only not-started, in-progress or completed projects.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")
		return runList(cmd.Context(), engine, cmd.OutOrStdout(), status)
	},
}

var showCmd = &cobra.Command{
	Use:   "show <project-id>",
	Short: "Show a project and its tasks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runShow(cmd.Context(), engine, cmd.OutOrStdout(), args[0])
	},
}

var createCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a project",
	Example: `  projtrack create "Website" --github https://github.com/acme/site \
    --task "Pick a theme" --task "Write copy"`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		description, _ := cmd.Flags().GetString("description")
		github, _ := cmd.Flags().GetString("github")
		tasks, _ := cmd.Flags().GetStringArray("task")
		return runCreate(cmd.Context(), engine, cmd.OutOrStdout(), args[0], description, github, tasks)
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <project-id>",
	Short: "Edit a project's name, description or GitHub URL",
	Long: `Edit a project's fields. Only the flags given are changed; pass
--github "" to clear the URL.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var fields models.ProjectFields
		if cmd.Flags().Changed("name") {
			v, _ := cmd.Flags().GetString("name")
			fields.Name = &v
		}
		if cmd.Flags().Changed("description") {
			v, _ := cmd.Flags().GetString("description")
			fields.Description = &v
		}
		if cmd.Flags().Changed("github") {
			v, _ := cmd.Flags().GetString("github")
			fields.GithubURL = &v
		}
		return runEdit(cmd.Context(), engine, cmd.OutOrStdout(), args[0], fields)
	},
}

var deleteCmd = &cobra.Command{
	Use:     "delete <project-id>",
	Aliases: []string{"rm"},
	Short:   "Delete a project and all its tasks",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDelete(cmd.Context(), engine, cmd.OutOrStdout(), args[0])
	},
}

func init() {
	listCmd.Flags().String("status", "", "Filter by status (not-started, in-progress, completed)")

	createCmd.Flags().String("description", "", "Project description")
	createCmd.Flags().String("github", "", "GitHub repository URL")
	createCmd.Flags().StringArray("task", nil, "Initial task title (repeatable)")

	editCmd.Flags().String("name", "", "New project name")
	editCmd.Flags().String("description", "", "New description")
	editCmd.Flags().String("github", "", "New GitHub URL")

	rootCmd.AddCommand(listCmd, showCmd, createCmd, editCmd, deleteCmd)
}

func runList(ctx context.Context, e *optimistic.Engine, w io.Writer, status string) error {
	if err := e.Refresh(ctx); err != nil {
		return err
	}

	var projects iter.Seq[models.Project]
	switch s := models.Status(status); {
	case status == "" || status == "all":
		projects = e.ListProjects()
	case s.Valid():
		projects = e.ProjectsByStatus(s)
	default:
		return fmt.Errorf("unknown status %q", status)
	}

	n := 0
	for p := range projects {
		printProjectLine(w, &p)
		n++
	}
	if n == 0 {
		fmt.Fprintf(w, "  %s\n", gray("No projects"))
	}
	return nil
}

func runShow(ctx context.Context, e *optimistic.Engine, w io.Writer, id string) error {
	p, err := e.GetProject(ctx, id)
	if err != nil {
		return err
	}
	printProject(w, p)
	return nil
}

func runCreate(ctx context.Context, e *optimistic.Engine, w io.Writer, name, description, github string, titles []string) error {
	fields := models.ProjectFields{Name: &name, Description: &description}
	if github != "" {
		fields.GithubURL = &github
	}

	now := time.Now()
	tasks := make([]models.Task, len(titles))
	for i, title := range titles {
		tasks[i] = models.NewTask(title, "", now)
	}

	p, err := e.CreateProject(ctx, fields, tasks...)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s Created project %s\n", green("✓"), p.ID)
	printProject(w, p)
	return nil
}

func runEdit(ctx context.Context, e *optimistic.Engine, w io.Writer, id string, fields models.ProjectFields) error {
	if fields == (models.ProjectFields{}) {
		return fmt.Errorf("nothing to change: pass --name, --description or --github")
	}
	if err := e.Refresh(ctx); err != nil {
		return err
	}

	p, err := e.UpdateProjectFields(ctx, id, fields)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s Updated project %s\n", green("✓"), p.ID)
	printProject(w, p)
	return nil
}

func runDelete(ctx context.Context, e *optimistic.Engine, w io.Writer, id string) error {
	if err := e.Refresh(ctx); err != nil {
		return err
	}

	if err := e.DeleteProject(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(w, "%s Deleted project %s\n", green("✓"), id)
	return nil
}
