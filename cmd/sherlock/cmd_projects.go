package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sherlock/internal/config"
	"sherlock/internal/project"

	"sherlock/cmd/sherlock/ui"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "List available projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(config.DefaultPath())
		if err != nil {
			return err
		}

		infos, err := project.List(cfg.Projects.Dir)
		if err != nil {
			return err
		}
		if len(infos) == 0 {
			fmt.Println(ui.DimStyle.Render("No projects found in " + cfg.Projects.Dir))
			return nil
		}

		fmt.Println(ui.TitleStyle.Render("\nAvailable projects:") + "\n")
		for _, p := range infos {
			fmt.Printf("  %s - %s\n", ui.InfoStyle.Render(p.Name), p.Description)
			fmt.Println(ui.DimStyle.Render(fmt.Sprintf("    %d heuristics (v%s)", p.HeuristicsCount, p.Version)))
			fmt.Println()
		}
		return nil
	},
}

var initCmd = &cobra.Command{
	Use:   "init <project>",
	Short: "Bind the current directory to a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(config.DefaultPath())
		if err != nil {
			return err
		}

		if err := project.Bind(cfg.Projects.Dir, args[0]); err != nil {
			return err
		}
		fmt.Println(ui.Successf("Created .sherlock.json with project %q", args[0]))
		fmt.Println(ui.DimStyle.Render("You can now run 'sherlock video.mp4 3.16' without the -p flag"))
		return nil
	},
}
