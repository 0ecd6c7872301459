package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"sherlock/internal/analysis"
	"sherlock/internal/history"

	"sherlock/cmd/sherlock/ui"
)

func runAnalyze(cmd *cobra.Command, args []string) error {
	evidenceArg, heuristicsArg := args[0], args[1]

	tk, err := buildToolkit(projectFlag)
	if err != nil {
		return err
	}
	fmt.Println(ui.DimStyle.Render("Using project: ") + ui.InfoStyle.Render(tk.project.Name))

	evidence, err := loadEvidence(evidenceArg)
	if err != nil {
		return err
	}

	criteria, all, err := selectHeuristics(tk.project, heuristicsArg)
	if err != nil {
		if len(all) > 0 {
			fmt.Println(ui.DimStyle.Render("Available heuristics:"))
			numbers := make([]string, len(all))
			for i, h := range all {
				numbers[i] = h.Number
			}
			sort.Strings(numbers)
			fmt.Println(ui.DimStyle.Render(strings.Join(numbers, ", ")))
		}
		return err
	}
	fmt.Println(ui.Successf("%d heuristic(s) selected", len(criteria)))

	tk.analyzer.Progress = func(stage, message string) {
		switch stage {
		case "upload":
			fmt.Println(ui.DimStyle.Render(fmt.Sprintf("Uploading %s...", message)))
		case "generate":
			fmt.Println(ui.DimStyle.Render(fmt.Sprintf("Analyzing %s with %s...", evidence.DisplayName, tk.client.Model())))
		}
	}

	report, err := tk.analyzer.Analyze(cmd.Context(), criteria, []analysis.Evidence{evidence}, contextFlag)
	if err != nil {
		return err
	}

	tk.tracker.Track(tk.project.Name, tk.client.Model(), "analyze", report.Usage)
	if err := tk.tracker.Save(); err != nil {
		fmt.Println(ui.WarnStyle.Render("Could not save usage data: " + err.Error()))
	}
	recordHistory(tk, evidence.DisplayName, heuristicsArg, report)

	if jsonFlag {
		return printJSON(os.Stdout, report)
	}

	fmt.Println("\n" + ui.TitleStyle.Render("Results:") + "\n")
	for _, r := range report.Results {
		printResult(r)
	}
	if report.Usage != nil {
		fmt.Println(ui.Separator())
		fmt.Println(ui.DimStyle.Render(fmt.Sprintf(
			"Tokens: %d (prompt: %d, response: %d)",
			report.Usage.TotalTokenCount, report.Usage.PromptTokenCount, report.Usage.CandidatesTokenCount)))
	}

	if outputFlag != "" {
		if err := writeJSONFile(outputFlag, report); err != nil {
			return err
		}
		fmt.Println(ui.Successf("Result saved to %s", outputFlag))
	}
	return nil
}

// recordHistory persists the run, best effort.
func recordHistory(tk *toolkit, evidence, heuristics string, report *analysis.Report) {
	store, err := history.NewStore(tk.cfg.History.DatabasePath)
	if err != nil {
		fmt.Println(ui.WarnStyle.Render("Could not open history: " + err.Error()))
		return
	}
	defer store.Close()
	if _, err := store.Record(tk.project.Name, evidence, heuristics, contextFlag, report); err != nil {
		fmt.Println(ui.WarnStyle.Render("Could not record history: " + err.Error()))
	}
}

func printResult(r analysis.Result) {
	if r.IsRaw() {
		fmt.Println(ui.DimStyle.Render("Raw response:"))
		fmt.Println(r.Raw)
		return
	}

	if r.Rejected {
		fmt.Println(ui.Errorf("Heuristic %s: %s", r.HeuristicNumber, r.Name))
		fmt.Println(ui.ErrorStyle.Render(fmt.Sprintf("   REJECTED: %s", r.RejectionReason)))
		fmt.Println()
		return
	}

	style := ui.ScoreStyle(r.Score)
	fmt.Println(ui.TitleStyle.Render(fmt.Sprintf("Heuristic %s: %s", r.HeuristicNumber, r.Name)))
	fmt.Println(style.Render(fmt.Sprintf("   Score: %d/5", r.Score)))
	fmt.Println("   " + r.Justification)
	fmt.Println()
}

type reportJSON struct {
	Results []analysis.Result      `json:"results"`
	Usage   map[string]interface{} `json:"usage"`
}

func reportToJSON(report *analysis.Report) reportJSON {
	out := reportJSON{Results: report.Results}
	if report.Usage != nil {
		out.Usage = map[string]interface{}{
			"promptTokenCount":     report.Usage.PromptTokenCount,
			"candidatesTokenCount": report.Usage.CandidatesTokenCount,
			"totalTokenCount":      report.Usage.TotalTokenCount,
		}
	}
	return out
}

func printJSON(w *os.File, report *analysis.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(reportToJSON(report))
}

func writeJSONFile(path string, report *analysis.Report) error {
	data, err := json.MarshalIndent(reportToJSON(report), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
