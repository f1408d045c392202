package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/antigravity-dev/pec/internal/compiler"
)

var projectType string

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "manage projects",
}

var projectCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "create a new project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, db, err := openCoordinator()
		if err != nil {
			return err
		}
		defer db.Close()

		pt := compiler.ProjectType(projectType)
		handle, err := c.CreateProject(context.Background(), args[0], pt, time.Now())
		if err != nil {
			return err
		}
		fmt.Printf("created project %s (%s, %s)\n", handle.ID, handle.Name, handle.ProjectType)
		return nil
	},
}

func init() {
	projectCreateCmd.Flags().StringVar(&projectType, "type", string(compiler.ProjectTypeGeneric), "project type: go_service, cli_tool, or generic")
	projectCmd.AddCommand(projectCreateCmd)
}
