package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var atRiskProjectID string

var atRiskCmd = &cobra.Command{
	Use:   "at-risk",
	Short: "list non-terminal tasks classified at risk of slipping",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, db, err := openCoordinator()
		if err != nil {
			return err
		}
		defer db.Close()

		handle, err := c.Rehydrate(atRiskProjectID, logger)
		if err != nil {
			return err
		}

		now := time.Now()
		adherence := handle.Tracker.AnalyzeTimelineAdherence(handle.CreatedAt, now)
		tasks := handle.GetAtRiskTasks(now, handle.CreatedAt, adherence.Status == "behind")
		if len(tasks) == 0 {
			fmt.Println("no at-risk tasks")
			return nil
		}
		for _, t := range tasks {
			critical := ""
			if t.IsCritical {
				critical = " (critical path)"
			}
			fmt.Printf("%-8s %-8s%s\n", t.TaskID, t.RiskLevel, critical)
			for _, r := range t.Reasons {
				fmt.Println("   -", r)
			}
		}
		return nil
	},
}

func init() {
	atRiskCmd.Flags().StringVar(&atRiskProjectID, "project", "", "project id")
	atRiskCmd.MarkFlagRequired("project")
}
