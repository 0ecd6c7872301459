package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"sherlock/internal/analysis"
	"sherlock/internal/batch"
	"sherlock/internal/project"

	"sherlock/cmd/sherlock/ui"
)

var (
	batchContext     string
	batchOutput      string
	batchConcurrency int
	continueOnError  bool
)

var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Run multiple analyses from a manifest (TXT, JSON, or YAML)",
	Long: `Runs one analysis per manifest item. The plain-text format is one
"heuristic evidence" pair per line; JSON and YAML manifests hold an array of
{heuristic, evidence, context} items.

Example:
  sherlock batch checks.txt -p retail6 --continue-on-error`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVarP(&batchContext, "context", "c", "", "Global context applied to every item")
	batchCmd.Flags().StringVarP(&batchOutput, "output", "o", "", "Save all results to a JSON file")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 2, "Analyses to run in parallel")
	batchCmd.Flags().BoolVar(&continueOnError, "continue-on-error", false, "Keep going when an analysis fails")
}

func runBatch(cmd *cobra.Command, args []string) error {
	manifestPath := args[0]

	tk, err := buildToolkit(projectFlag)
	if err != nil {
		return err
	}
	fmt.Println(ui.DimStyle.Render("Using project: ") + ui.InfoStyle.Render(tk.project.Name))

	all, err := tk.project.Heuristics()
	if err != nil {
		return err
	}
	byNumber := make(map[string]project.Heuristic, len(all))
	for _, h := range all {
		byNumber[h.Number] = h
	}

	items, err := batch.ParseFile(manifestPath)
	if err != nil {
		return err
	}
	if len(items) == 0 {
		return fmt.Errorf("no valid items found in %s", manifestPath)
	}
	fmt.Println(ui.TitleStyle.Render(fmt.Sprintf("Batch analysis: %s (%d items)", filepath.Base(manifestPath), len(items))))

	runner := &batch.Runner{
		Concurrency:     batchConcurrency,
		ContinueOnError: continueOnError,
		Progress: func(done, total int, outcome batch.Outcome) {
			prefix := fmt.Sprintf("[%d/%d] %s → %s", done, total, outcome.Item.Heuristic, outcome.FileName)
			switch {
			case outcome.Err != nil:
				fmt.Println(ui.Errorf("%s: %v", prefix, outcome.Err))
			case len(outcome.Report.Results) > 0 && outcome.Report.Results[0].Rejected:
				fmt.Println(ui.ErrorStyle.Render(fmt.Sprintf("%s REJECTED: %s", prefix, outcome.Report.Results[0].RejectionReason)))
			case len(outcome.Report.Results) > 0:
				r := outcome.Report.Results[0]
				fmt.Println(ui.ScoreStyle(r.Score).Render(fmt.Sprintf("%s Score: %d/5", prefix, r.Score)))
			default:
				fmt.Println(ui.DimStyle.Render(prefix + " no results"))
			}
		},
	}

	outcomes, summary, runErr := runner.Run(cmd.Context(), items, func(ctx context.Context, item batch.Item) (*analysis.Report, error) {
		heuristic, ok := byNumber[item.Heuristic]
		if !ok {
			return nil, fmt.Errorf("heuristic not found: %s", item.Heuristic)
		}

		evidence, err := loadEvidence(item.Evidence)
		if err != nil {
			return nil, err
		}

		itemContext := item.Context
		if itemContext == "" {
			itemContext = batchContext
		}

		report, err := tk.analyzer.Analyze(ctx, []analysis.Heuristic{heuristic.Criterion()}, []analysis.Evidence{evidence}, itemContext)
		if err != nil {
			return nil, err
		}
		tk.tracker.Track(tk.project.Name, tk.client.Model(), "batch", report.Usage)
		return report, nil
	})

	if err := tk.tracker.Save(); err != nil {
		fmt.Println(ui.WarnStyle.Render("Could not save usage data: " + err.Error()))
	}

	fmt.Println(ui.Separator())
	line := fmt.Sprintf("Summary: %d analyses | %d pass | %d fail", summary.Total, summary.Pass, summary.Fail)
	if summary.Rejected > 0 {
		line += fmt.Sprintf(" | %d rejected", summary.Rejected)
	}
	if summary.Errors > 0 {
		line += fmt.Sprintf(" | %d errors", summary.Errors)
	}
	fmt.Println(ui.TitleStyle.Render(line))
	fmt.Println(ui.DimStyle.Render(fmt.Sprintf("   Total tokens: %d", summary.TotalTokens)))

	if batchOutput != "" {
		if err := writeBatchOutput(batchOutput, manifestPath, tk.project.Name, summary, outcomes); err != nil {
			return err
		}
		fmt.Println(ui.Successf("Results saved to %s", batchOutput))
	}
	return runErr
}

type batchOutputJSON struct {
	BatchFile string            `json:"batchFile"`
	Project   string            `json:"project"`
	Timestamp string            `json:"timestamp"`
	Summary   batch.Summary     `json:"summary"`
	Results   []batchResultJSON `json:"results"`
}

type batchResultJSON struct {
	HeuristicNumber string            `json:"heuristicNumber"`
	FileName        string            `json:"fileName"`
	Results         []analysis.Result `json:"results,omitempty"`
	Error           string            `json:"error,omitempty"`
}

func writeBatchOutput(path, manifestPath, projectName string, summary batch.Summary, outcomes []batch.Outcome) error {
	out := batchOutputJSON{
		BatchFile: manifestPath,
		Project:   projectName,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Summary:   summary,
	}
	for _, o := range outcomes {
		r := batchResultJSON{HeuristicNumber: o.Item.Heuristic, FileName: o.FileName}
		if o.Err != nil {
			r.Error = o.Err.Error()
		} else if o.Report != nil {
			r.Results = o.Report.Results
		}
		out.Results = append(out.Results, r)
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
