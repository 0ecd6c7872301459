package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"sherlock/internal/logging"
)

// Generate sends one generation request carrying a system instruction and a
// list of content parts (text, remote file references, inline media) and
// returns the model's text plus token usage when the service reports it.
func (c *Client) Generate(ctx context.Context, systemPrompt string, parts []Part) (*GenerateResult, error) {
	// Auto-apply timeout if context has no deadline
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}

	startTime := time.Now()
	logging.APIDebug("Generate: model=%s parts=%d system_len=%d", c.model, len(parts), len(systemPrompt))

	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf("no content parts")
	}

	reqBody := generateRequest{
		Contents: []Content{
			{Role: "user", Parts: parts},
		},
		GenerationConfig: GenerationConfig{
			MaxOutputTokens: c.maxOutputTokens,
		},
	}
	if strings.TrimSpace(systemPrompt) != "" {
		reqBody.SystemInstruction = &Content{
			Parts: []Part{{Text: systemPrompt}},
		}
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	c.throttle()

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("generation request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		logging.APIError("Generate: status=%d body_len=%d", resp.StatusCode, len(body))
		return nil, &GenerationError{Status: resp.StatusCode, Body: string(body)}
	}

	var genResp generateResponse
	if err := json.Unmarshal(body, &genResp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if genResp.Error != nil {
		return nil, &GenerationError{Status: genResp.Error.Code, Body: genResp.Error.Message}
	}

	if len(genResp.Candidates) == 0 || len(genResp.Candidates[0].Content.Parts) == 0 {
		return nil, &GenerationError{Status: resp.StatusCode, Body: "no completion returned"}
	}

	var text strings.Builder
	for _, part := range genResp.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}

	result := &GenerateResult{
		Text:  strings.TrimSpace(text.String()),
		Usage: genResp.UsageMetadata,
	}

	if result.Usage != nil {
		logging.API("Generate: completed in %v response_len=%d tokens=%d", time.Since(startTime), len(result.Text), result.Usage.TotalTokenCount)
	} else {
		logging.API("Generate: completed in %v response_len=%d", time.Since(startTime), len(result.Text))
	}
	return result, nil
}
