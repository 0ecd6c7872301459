package analysis

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"sherlock/internal/gemini"
	"sherlock/internal/logging"
)

// generator is the slice of the inference client the analyzer calls.
type generator interface {
	Generate(ctx context.Context, systemPrompt string, parts []gemini.Part) (*gemini.GenerateResult, error)
}

// assetResolver turns source evidence into a usable remote file reference.
type assetResolver interface {
	Resolve(ctx context.Context, sourceID, mimeType, displayName string, bytesFn gemini.BytesFunc) (*gemini.File, error)
}

// Analyzer drives one evidence-plus-heuristics evaluation end to end: remote
// media resolution, the generation call, and response normalization.
type Analyzer struct {
	client       generator
	resolver     assetResolver
	systemPrompt string

	// Progress, when set, receives coarse stage updates.
	Progress ProgressFunc
}

// NewAnalyzer creates an analyzer. resolver may be nil when every evidence
// asset is inline-eligible (images only).
func NewAnalyzer(client generator, resolver assetResolver, systemPrompt string) *Analyzer {
	return &Analyzer{client: client, resolver: resolver, systemPrompt: systemPrompt}
}

// Analyze evaluates the evidence against the criteria and returns one result
// per heuristic the model produced. A successful network round trip always
// yields results: unparseable model output degrades to a single raw entry,
// never an error. Any asset failing to resolve aborts the whole request.
func (a *Analyzer) Analyze(ctx context.Context, criteria []Heuristic, evidence []Evidence, contextText string) (*Report, error) {
	if len(criteria) == 0 {
		return nil, &InvalidRequestError{Reason: "no heuristics selected"}
	}
	if len(evidence) == 0 {
		return nil, &InvalidRequestError{Reason: "no evidence provided"}
	}
	if c, ok := a.client.(interface{ Configured() bool }); ok && !c.Configured() {
		return nil, &InvalidRequestError{Reason: "API key not configured"}
	}
	logging.Analysis("Analyze: criteria=%d evidence=%d context_len=%d", len(criteria), len(evidence), len(contextText))

	parts := make([]gemini.Part, 0, len(evidence)+1)
	parts = append(parts, gemini.Part{Text: buildPrompt(criteria, contextText)})

	for _, ev := range evidence {
		part, err := a.PrepareAsset(ctx, ev, a.Progress)
		if err != nil {
			return nil, fmt.Errorf("preparing evidence %q: %w", ev.DisplayName, err)
		}
		parts = append(parts, part)
	}

	a.progress("generate", "running analysis")
	result, err := a.client.Generate(ctx, a.systemPrompt, parts)
	if err != nil {
		return nil, err
	}

	report := &Report{Usage: result.Usage}
	if parsed := Extract(result.Text); parsed != nil {
		report.Results = parsed.Results
		logging.Analysis("Analyze: parsed %d results", len(report.Results))
	} else {
		report.Results = []Result{{Raw: result.Text}}
		logging.AnalysisDebug("Analyze: structured parse failed, returning raw output (%d chars)", len(result.Text))
	}
	return report, nil
}

// PrepareAsset produces the generation-request part for one piece of
// evidence. Video goes through the remote upload-and-activate path; images
// travel inline and never touch the files service. progress, when non-nil,
// receives advisory stage updates for the caller's UI; cancellation flows
// through ctx.
func (a *Analyzer) PrepareAsset(ctx context.Context, ev Evidence, progress ProgressFunc) (gemini.Part, error) {
	if ev.IsVideo() {
		if a.resolver == nil {
			return gemini.Part{}, fmt.Errorf("video evidence requires a configured resolver")
		}
		if progress != nil {
			progress("upload", ev.DisplayName)
		}
		file, err := a.resolver.Resolve(ctx, ev.SourceID, ev.MimeType, ev.DisplayName, ev.Bytes)
		if err != nil {
			return gemini.Part{}, err
		}
		return gemini.Part{FileData: &gemini.FileData{FileURI: file.URI, MimeType: file.MimeType}}, nil
	}

	data, err := ev.Bytes()
	if err != nil {
		return gemini.Part{}, err
	}
	return gemini.Part{InlineData: &gemini.Blob{
		MimeType: ev.MimeType,
		Data:     base64.StdEncoding.EncodeToString(data),
	}}, nil
}

func (a *Analyzer) progress(stage, message string) {
	if a.Progress != nil {
		a.Progress(stage, message)
	}
}

// buildPrompt assembles the user-turn text: the optional session context
// followed by the serialized heuristics.
func buildPrompt(criteria []Heuristic, contextText string) string {
	if contextText == "" {
		contextText = "Not provided."
	}
	heuristicsJSON, err := json.MarshalIndent(criteria, "", "  ")
	if err != nil {
		// Heuristic is a plain struct; this cannot fail in practice.
		heuristicsJSON = []byte("[]")
	}
	return fmt.Sprintf("Additional context:\n%s\n\nHeuristics JSON:\n%s", contextText, heuristicsJSON)
}
