package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	materializeProjectID string
	materializeOutputDir string
)

var materializeCmd = &cobra.Command{
	Use:   "materialize",
	Short: "resolve artifact conflicts and write the compiled project to disk",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, db, err := openCoordinator()
		if err != nil {
			return err
		}
		defer db.Close()

		handle, err := c.Rehydrate(materializeProjectID, logger)
		if err != nil {
			return err
		}

		resolutions := handle.ResolveConflicts()
		for _, res := range resolutions {
			fmt.Printf("resolved conflict on %s: %s -> %s (%s)\n", res.ArtifactID, res.OldPath, res.NewPath, res.Reason)
		}

		result, err := handle.Materialize(context.Background(), materializeOutputDir, time.Now())
		if err != nil {
			return err
		}

		fmt.Println(result.Summary())
		for _, msg := range result.ValidationMessages {
			fmt.Printf("  [%s] %s\n", msg.Level, msg.Message)
		}
		return nil
	},
}

func init() {
	materializeCmd.Flags().StringVar(&materializeProjectID, "project", "", "project id")
	materializeCmd.Flags().StringVar(&materializeOutputDir, "output", "", "output directory to materialize into")
	materializeCmd.MarkFlagRequired("project")
	materializeCmd.MarkFlagRequired("output")
}
