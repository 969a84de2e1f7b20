package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"projtrack/internal/optimistic"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Show project and task totals",
	Long:  `Display project counts per status, overall task progress and the most recently updated projects.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		recent, _ := cmd.Flags().GetInt("recent")
		return runDashboard(cmd.Context(), engine, cmd.OutOrStdout(), recent)
	},
}

func init() {
	dashboardCmd.Flags().Int("recent", 5, "Number of recently updated projects to show")
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(ctx context.Context, e *optimistic.Engine, w io.Writer, recent int) error {
	if recent < 0 {
		return fmt.Errorf("--recent must not be negative")
	}
	if err := e.Refresh(ctx); err != nil {
		return err
	}

	printSummary(w, e.Dashboard(recent))
	return nil
}
