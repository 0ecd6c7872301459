package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sherlock/internal/config"
	"sherlock/internal/history"

	"sherlock/cmd/sherlock/ui"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent analyses",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(config.DefaultPath())
		if err != nil {
			return err
		}

		store, err := history.NewStore(cfg.History.DatabasePath)
		if err != nil {
			return err
		}
		defer store.Close()

		var entries []history.Entry
		if projectFlag != "" {
			entries, err = store.ByProject(projectFlag, historyLimit)
		} else {
			entries, err = store.Recent(historyLimit)
		}
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println(ui.DimStyle.Render("No analyses recorded yet."))
			return nil
		}

		fmt.Println(ui.TitleStyle.Render("\nRecent analyses:") + "\n")
		for _, e := range entries {
			fmt.Printf("  %s  %s  %s (%s)\n",
				ui.DimStyle.Render(e.CreatedAt.Local().Format("2006-01-02 15:04")),
				ui.InfoStyle.Render(e.Project),
				e.Evidence,
				e.Heuristics)
			for _, r := range e.Results {
				switch {
				case r.IsRaw():
					fmt.Println(ui.DimStyle.Render("      raw response"))
				case r.Rejected:
					fmt.Println(ui.ErrorStyle.Render(fmt.Sprintf("      %s rejected: %s", r.HeuristicNumber, r.RejectionReason)))
				default:
					fmt.Println(ui.ScoreStyle(r.Score).Render(fmt.Sprintf("      %s score %d/5", r.HeuristicNumber, r.Score)))
				}
			}
			fmt.Println(ui.DimStyle.Render(fmt.Sprintf("      %d tokens", e.Tokens)))
			fmt.Println()
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Number of entries to show")
}
