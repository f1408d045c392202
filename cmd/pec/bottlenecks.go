package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var bottlenecksProjectID string

var bottlenecksCmd = &cobra.Command{
	Use:   "bottlenecks",
	Short: "list tasks currently blocking or impeding downstream work",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, db, err := openCoordinator()
		if err != nil {
			return err
		}
		defer db.Close()

		handle, err := c.Rehydrate(bottlenecksProjectID, logger)
		if err != nil {
			return err
		}
		bottlenecks := handle.GetBottlenecks(time.Now())
		if len(bottlenecks) == 0 {
			fmt.Println("no bottlenecks")
			return nil
		}
		for _, b := range bottlenecks {
			fmt.Printf("%-8s [%s] %s\n", b.TaskID, b.Impact, b.Reason)
		}
		return nil
	},
}

func init() {
	bottlenecksCmd.Flags().StringVar(&bottlenecksProjectID, "project", "", "project id")
	bottlenecksCmd.MarkFlagRequired("project")
}
