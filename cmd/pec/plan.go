package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/antigravity-dev/pec/internal/plan"
)

var planFile string

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "ingest and submit plan documents",
}

func loadPlanFile(path string) (*plan.Plan, error) {
	if strings.HasSuffix(path, ".json") {
		return plan.LoadJSON(path)
	}
	return plan.LoadYAML(path)
}

var planValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "validate a plan document without submitting it",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadPlanFile(planFile)
		if err != nil {
			return err
		}
		c, db, err := openCoordinator()
		if err != nil {
			return err
		}
		defer db.Close()

		warnings, err := c.ValidatePlan(p)
		if err != nil {
			return err
		}
		fmt.Printf("plan %q is valid (%d warnings)\n", p.Name, len(warnings))
		for _, w := range warnings {
			fmt.Println(" -", w)
		}
		return nil
	},
}

var submitProjectID string

var planSubmitCmd = &cobra.Command{
	Use:   "submit",
	Short: "ingest, schedule, and assign a plan against an existing project",
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadPlanFile(planFile)
		if err != nil {
			return err
		}
		c, db, err := openCoordinator()
		if err != nil {
			return err
		}
		defer db.Close()

		handle, err := c.Rehydrate(submitProjectID, logger)
		if err != nil {
			return err
		}

		res, err := c.SubmitPlan(handle, p, time.Now(), logger)
		if err != nil {
			return err
		}

		fmt.Printf("submitted plan for project %s: %d tasks on critical path, %d agent assignments\n",
			res.ProjectID, len(res.Schedule.CriticalPath), len(res.Result.AgentOfTask))
		for _, w := range res.Warnings {
			fmt.Println("warning:", w)
		}
		return nil
	},
}

func init() {
	planValidateCmd.Flags().StringVar(&planFile, "file", "", "path to a plan document (.yaml or .json)")
	planValidateCmd.MarkFlagRequired("file")

	planSubmitCmd.Flags().StringVar(&planFile, "file", "", "path to a plan document (.yaml or .json)")
	planSubmitCmd.Flags().StringVar(&submitProjectID, "project", "", "project id to submit the plan against")
	planSubmitCmd.MarkFlagRequired("file")
	planSubmitCmd.MarkFlagRequired("project")

	planCmd.AddCommand(planValidateCmd, planSubmitCmd)
}
