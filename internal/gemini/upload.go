package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"sherlock/internal/logging"
)

// Upload pushes a byte payload to the remote service using the resumable
// upload protocol and returns the resulting file descriptor.
//
// resourceName, when non-empty, requests an explicit deterministic resource
// name (content-addressed deduplication). A name collision at initiate time is
// reported as *ConflictError so the resolver can fall back to lookup-and-reuse.
func (c *Client) Upload(ctx context.Context, data []byte, mimeType, displayName, resourceName string) (*File, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	logging.Upload("Upload: display_name=%q size=%d mime=%s name=%q", displayName, len(data), mimeType, resourceName)

	sessionURL, err := c.initiateUpload(ctx, int64(len(data)), mimeType, displayName, resourceName)
	if err != nil {
		return nil, err
	}

	file, err := c.transferChunk(ctx, sessionURL, 0, true, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}

	logging.Upload("Upload complete: name=%s uri=%s state=%s", file.Name, file.URI, file.State)
	return file, nil
}

// initiateUpload performs the metadata-only start request and returns the
// session URL for the transfer phase.
func (c *Client) initiateUpload(ctx context.Context, size int64, mimeType, displayName, resourceName string) (string, error) {
	url := fmt.Sprintf("%s/files?key=%s", c.uploadBaseURL(), c.apiKey)

	meta := uploadMetadata{
		File: uploadFileMetadata{
			DisplayName: displayName,
			Name:        resourceName,
		},
	}
	jsonMeta, err := json.Marshal(meta)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewReader(jsonMeta))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Upload-Protocol", "resumable")
	req.Header.Set("X-Goog-Upload-Command", "start")
	req.Header.Set("X-Goog-Upload-Header-Content-Length", fmt.Sprintf("%d", size))
	req.Header.Set("X-Goog-Upload-Header-Content-Type", mimeType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload start request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode == http.StatusConflict {
			logging.UploadDebug("initiate conflict for %q", resourceName)
			return "", &ConflictError{ResourceName: resourceName, Body: string(body)}
		}
		return "", &UploadError{Phase: PhaseInitiate, Status: resp.StatusCode, Body: string(body)}
	}

	sessionURL := resp.Header.Get("X-Goog-Upload-URL")
	if sessionURL == "" {
		return "", fmt.Errorf("no upload URL returned in headers")
	}
	return sessionURL, nil
}

// transferChunk streams one chunk of payload to the session URL. The current
// upload path sends the whole payload as a single finalizing chunk; offset and
// final exist so multi-chunk resumption can be added without touching Upload's
// contract.
func (c *Client) transferChunk(ctx context.Context, sessionURL string, offset int64, final bool, r io.Reader, size int64) (*File, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", sessionURL, r)
	if err != nil {
		return nil, err
	}
	req.ContentLength = size
	req.Header.Set("Content-Length", fmt.Sprintf("%d", size))
	req.Header.Set("X-Goog-Upload-Offset", fmt.Sprintf("%d", offset))
	command := "upload"
	if final {
		command = "upload, finalize"
	}
	req.Header.Set("X-Goog-Upload-Command", command)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload data failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, &UploadError{Phase: PhaseTransfer, Status: resp.StatusCode, Body: string(body)}
	}

	if !final {
		return nil, nil
	}

	var envelope fileEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("failed to parse upload response: %w", err)
	}
	if envelope.File.Name == "" {
		return nil, fmt.Errorf("no file descriptor in upload response")
	}
	return &envelope.File, nil
}
