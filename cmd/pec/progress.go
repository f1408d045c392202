package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var progressProjectID string

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "show the rolled-up progress snapshot for a project",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, db, err := openCoordinator()
		if err != nil {
			return err
		}
		defer db.Close()

		handle, err := c.Rehydrate(progressProjectID, logger)
		if err != nil {
			return err
		}
		snap := handle.GetProjectProgress()

		fmt.Printf("project %s: %s (%.1f%% complete, critical path %.1f%%, %s)\n",
			handle.ID, snap.OverallStatus, snap.CompletionPercentage, snap.CriticalPathCompletion, snap.CriticalPathTrend)
		for _, m := range snap.Milestones {
			fmt.Printf("  milestone %-20s %-12s %.1f%%\n", m.MilestoneID, m.Status, m.Completion)
		}
		for _, p := range snap.Phases {
			fmt.Printf("  phase %d %-12s %.1f%%\n", p.PhaseIndex, p.Status, p.Completion)
		}
		return nil
	},
}

func init() {
	progressCmd.Flags().StringVar(&progressProjectID, "project", "", "project id")
	progressCmd.MarkFlagRequired("project")
}
