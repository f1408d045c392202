package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusProjectID string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "show the schedule summary for a project",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, db, err := openCoordinator()
		if err != nil {
			return err
		}
		defer db.Close()

		handle, err := c.Rehydrate(statusProjectID, logger)
		if err != nil {
			return err
		}
		sched, err := handle.GetSchedule()
		if err != nil {
			return err
		}

		fmt.Printf("project %s: %d tasks, %d phases, %d day(s) total\n",
			handle.ID, len(sched.Nodes), len(sched.Phases), sched.Timeline.TotalDurationDays)
		fmt.Printf("critical path (%d tasks): %v\n", len(sched.CriticalPath), sched.CriticalPath)
		for i, phase := range sched.Phases {
			days := sched.Timeline.PhaseDays[i]
			fmt.Printf("  phase %d (day %d-%d): %v\n", i, days.StartDay, days.EndDay, phase)
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().StringVar(&statusProjectID, "project", "", "project id")
	statusCmd.MarkFlagRequired("project")
}
