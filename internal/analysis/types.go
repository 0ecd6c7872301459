package analysis

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"sherlock/internal/gemini"
	"sherlock/internal/media"
)

// Heuristic is one evaluation rubric item supplied with a request.
type Heuristic struct {
	ID          string `json:"id"`
	Number      string `json:"heuristicNumber"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Group       string `json:"group,omitempty"`
}

// Evidence is a piece of source media selected for analysis. Bytes is invoked
// lazily, only when the payload actually has to leave the machine.
type Evidence struct {
	SourceID    string
	DisplayName string
	MimeType    string
	Size        int64
	Bytes       gemini.BytesFunc
}

// IsVideo reports whether the evidence needs the remote upload-and-activate
// path. Images travel inline with the generation request instead.
func (e Evidence) IsVideo() bool {
	return media.IsVideo(e.MimeType)
}

// Result is one per-heuristic verdict from the model. Exactly one of the
// three shapes is populated: a scored verdict, a rejection, or the raw
// fallback when the model's output could not be parsed at all.
type Result struct {
	HeuristicNumber string `json:"heuristicNumber,omitempty"`
	Name            string `json:"name,omitempty"`
	Score           int    `json:"score,omitempty"`
	Justification   string `json:"justification,omitempty"`
	Rejected        bool   `json:"rejected,omitempty"`
	RejectionReason string `json:"rejectionReason,omitempty"`
	Raw             string `json:"raw,omitempty"`
}

// IsRaw reports whether this entry is the unparsed-output fallback.
func (r Result) IsRaw() bool { return r.Raw != "" }

// resultShadow mirrors Result with loose field types. Models emit heuristic
// numbers as both "3.16" and 3.16, and scores as both 4 and "4".
type resultShadow struct {
	HeuristicNumber json.RawMessage `json:"heuristicNumber"`
	Name            string          `json:"name"`
	Score           json.RawMessage `json:"score"`
	Justification   string          `json:"justification"`
	Rejected        bool            `json:"rejected"`
	RejectionReason string          `json:"rejectionReason"`
	Raw             string          `json:"raw"`
}

// UnmarshalJSON decodes one result entry leniently. Entries that are not
// objects at all are preserved verbatim in the Raw field rather than failing
// the whole response.
func (r *Result) UnmarshalJSON(data []byte) error {
	var shadow resultShadow
	if err := json.Unmarshal(data, &shadow); err != nil {
		r.Raw = strings.TrimSpace(string(data))
		return nil
	}

	r.HeuristicNumber = flexString(shadow.HeuristicNumber)
	r.Name = shadow.Name
	r.Score = flexInt(shadow.Score)
	r.Justification = shadow.Justification
	r.Rejected = shadow.Rejected
	r.RejectionReason = shadow.RejectionReason
	r.Raw = shadow.Raw
	return nil
}

// flexString renders a JSON scalar as its string form, unquoting strings and
// keeping numeric tokens verbatim.
func flexString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(raw))
}

// flexInt reads a JSON scalar as an integer, accepting quoted numbers and
// truncating floats.
func flexInt(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return int(n)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if v, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return int(v)
		}
	}
	return 0
}

// ParsedResponse is the structured envelope the extractor recovers from
// model output.
type ParsedResponse struct {
	Results []Result `json:"results"`
}

// Report is the normalized outcome of one analysis call.
type Report struct {
	Results []Result
	Usage   *gemini.UsageMetadata
}

// TotalTokens returns the total token count, 0 when the service reported no
// usage metadata.
func (r *Report) TotalTokens() int {
	if r.Usage == nil {
		return 0
	}
	return r.Usage.TotalTokenCount
}

// InvalidRequestError reports a request rejected before any network call.
type InvalidRequestError struct {
	Reason string
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid analysis request: %s", e.Reason)
}

// ProgressFunc receives coarse stage updates during a long-running analysis.
type ProgressFunc func(stage, message string)
