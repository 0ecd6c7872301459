package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"sherlock/internal/config"
	"sherlock/internal/project"

	"sherlock/cmd/sherlock/ui"
)

var groupFlag string

var heuristicsCmd = &cobra.Command{
	Use:   "heuristics",
	Short: "List a project's heuristics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(config.DefaultPath())
		if err != nil {
			return err
		}

		proj, err := project.Resolve(cfg.Projects.Dir, projectFlag)
		if err != nil {
			return err
		}

		heuristics, err := proj.Heuristics()
		if err != nil {
			return err
		}

		if groupFlag != "" {
			num, err := strconv.Atoi(groupFlag)
			if err != nil {
				return fmt.Errorf("invalid group number: %s", groupFlag)
			}
			var filtered []project.Heuristic
			for _, h := range heuristics {
				if h.Group.GroupNumber == num {
					filtered = append(filtered, h)
				}
			}
			heuristics = filtered
		}

		fmt.Println(ui.TitleStyle.Render(fmt.Sprintf("\nHeuristics for project %s:", proj.Name)) + "\n")
		for _, group := range project.GroupHeuristics(heuristics) {
			fmt.Println(ui.WarnStyle.Render(fmt.Sprintf("  Group %d: %s", group[0].Group.GroupNumber, group[0].Group.Name)))
			for _, h := range group {
				fmt.Println(ui.DimStyle.Render(fmt.Sprintf("    %s - %s", h.Number, h.Name)))
			}
			fmt.Println()
		}
		return nil
	},
}

func init() {
	heuristicsCmd.Flags().StringVarP(&groupFlag, "group", "g", "", "Filter by group number")
}
