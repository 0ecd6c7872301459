package usage

// UsageData represents the root structure stored in persistence.
type UsageData struct {
	Version   string          `json:"version"`
	Aggregate AggregatedStats `json:"aggregate"`
}

// AggregatedStats holds counters broken down by various dimensions.
type AggregatedStats struct {
	Total       TokenCounts            `json:"total"`
	ByProject   map[string]TokenCounts `json:"by_project"`
	ByModel     map[string]TokenCounts `json:"by_model"`
	ByOperation map[string]TokenCounts `json:"by_operation"` // analyze, batch
	BySession   map[string]TokenCounts `json:"by_session"`
}

// TokenCounts holds prompt/response sums.
type TokenCounts struct {
	Prompt   int64 `json:"prompt"`
	Response int64 `json:"response"`
	Total    int64 `json:"total"`
}

func (tc *TokenCounts) Add(prompt, response int) {
	tc.Prompt += int64(prompt)
	tc.Response += int64(response)
	tc.Total += int64(prompt + response)
}
