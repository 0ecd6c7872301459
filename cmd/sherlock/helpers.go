package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"sherlock/internal/analysis"
	"sherlock/internal/config"
	"sherlock/internal/gemini"
	"sherlock/internal/media"
	"sherlock/internal/project"
	"sherlock/internal/usage"
)

// toolkit bundles the wired components one command invocation needs.
type toolkit struct {
	cfg      *config.Config
	project  *project.Project
	client   *gemini.Client
	analyzer *analysis.Analyzer
	tracker  *usage.Tracker
}

// buildToolkit loads config, resolves the project, and wires the client,
// resolver, and analyzer together.
func buildToolkit(projectFlag string) (*toolkit, error) {
	cfg, err := config.Load(config.DefaultPath())
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	proj, err := project.Resolve(cfg.Projects.Dir, projectFlag)
	if err != nil {
		return nil, err
	}

	systemPrompt, err := proj.SystemPrompt()
	if err != nil {
		return nil, err
	}

	client := gemini.NewClientWithConfig(cfg.GeminiClientConfig())
	waiter := gemini.NewWaiter(client)
	waiter.SetInterval(cfg.PollInterval())
	resolver := gemini.NewResolver(client, waiter, cfg.ActivationBudget())

	tracker, err := usage.NewTracker(".")
	if err != nil {
		return nil, err
	}

	return &toolkit{
		cfg:      cfg,
		project:  proj,
		client:   client,
		analyzer: analysis.NewAnalyzer(client, resolver, systemPrompt),
		tracker:  tracker,
	}, nil
}

// loadEvidence resolves a user-supplied file reference (exact or partial)
// into an Evidence value with lazy byte loading.
func loadEvidence(input string) (analysis.Evidence, error) {
	path, err := media.ResolveFile(input)
	if err != nil {
		return analysis.Evidence{}, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return analysis.Evidence{}, err
	}

	return analysis.Evidence{
		SourceID:    fmt.Sprintf("local:%s:%d", path, info.Size()),
		DisplayName: filepath.Base(path),
		MimeType:    media.MimeType(path),
		Size:        info.Size(),
		Bytes:       func() ([]byte, error) { return os.ReadFile(path) },
	}, nil
}

// selectHeuristics loads the project rubric and filters it down to the
// requested comma-separated number labels.
func selectHeuristics(proj *project.Project, numbersArg string) ([]analysis.Heuristic, []project.Heuristic, error) {
	all, err := proj.Heuristics()
	if err != nil {
		return nil, nil, err
	}

	numbers := splitNumbers(numbersArg)
	selected := project.FilterByNumber(all, numbers)
	if len(selected) == 0 {
		return nil, all, fmt.Errorf("no heuristics found matching %q", numbersArg)
	}

	criteria := make([]analysis.Heuristic, len(selected))
	for i, h := range selected {
		criteria[i] = h.Criterion()
	}
	return criteria, all, nil
}

func splitNumbers(arg string) []string {
	var numbers []string
	for _, n := range strings.Split(arg, ",") {
		if trimmed := strings.TrimSpace(n); trimmed != "" {
			numbers = append(numbers, trimmed)
		}
	}
	return numbers
}
