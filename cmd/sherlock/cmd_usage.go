package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"sherlock/internal/usage"

	"sherlock/cmd/sherlock/ui"
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show aggregated token usage",
	RunE: func(cmd *cobra.Command, args []string) error {
		tracker, err := usage.NewTracker(".")
		if err != nil {
			return err
		}

		stats := tracker.Stats()
		if stats.Total.Total == 0 {
			fmt.Println(ui.DimStyle.Render("No usage recorded yet."))
			return nil
		}

		fmt.Println(ui.TitleStyle.Render("\nToken usage:") + "\n")
		fmt.Printf("  Total: %s\n", ui.InfoStyle.Render(fmt.Sprintf("%d", stats.Total.Total)))
		fmt.Println(ui.DimStyle.Render(fmt.Sprintf("    prompt %d / response %d", stats.Total.Prompt, stats.Total.Response)))

		printBreakdown("By project", stats.ByProject)
		printBreakdown("By model", stats.ByModel)
		printBreakdown("By operation", stats.ByOperation)
		return nil
	},
}

func printBreakdown(title string, counts map[string]usage.TokenCounts) {
	if len(counts) == 0 {
		return
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Println("\n  " + ui.TitleStyle.Render(title+":"))
	for _, k := range keys {
		c := counts[k]
		fmt.Println(ui.DimStyle.Render(fmt.Sprintf("    %-20s %d", k, c.Total)))
	}
}
