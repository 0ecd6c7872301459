package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"sherlock/internal/logging"
)

// normalizeFileName accepts either a bare id or a "files/..." resource name.
func normalizeFileName(name string) string {
	if !strings.HasPrefix(name, "files/") {
		return "files/" + name
	}
	return name
}

// GetFile retrieves current metadata for a remote file. A 404 is reported as
// an error wrapping ErrFileNotFound.
func (c *Client) GetFile(ctx context.Context, name string) (*File, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("API key required")
	}

	name = normalizeFileName(name)
	url := fmt.Sprintf("%s/%s?key=%s", c.baseURL, name, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("get %s: %w", name, ErrFileNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("get file failed (status %d): %s", resp.StatusCode, body)
	}

	var file File
	if err := json.NewDecoder(resp.Body).Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to parse file metadata: %w", err)
	}

	logging.FilesDebug("GetFile: name=%s state=%s", file.Name, file.State)
	return &file, nil
}

// DeleteFile removes a remote file.
func (c *Client) DeleteFile(ctx context.Context, name string) error {
	if c.apiKey == "" {
		return fmt.Errorf("API key required")
	}

	name = normalizeFileName(name)
	url := fmt.Sprintf("%s/%s?key=%s", c.baseURL, name, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, "DELETE", url, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("delete file failed with status %d", resp.StatusCode)
	}

	logging.Files("DeleteFile: name=%s", name)
	return nil
}

// ListFiles returns metadata for all uploaded files, following pagination.
func (c *Client) ListFiles(ctx context.Context) ([]File, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("API key required")
	}

	var files []File
	pageToken := ""
	for {
		url := fmt.Sprintf("%s/files?key=%s", c.baseURL, c.apiKey)
		if pageToken != "" {
			url += "&pageToken=" + pageToken
		}
		req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
		if err != nil {
			return nil, err
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, err
		}

		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("list files failed with status %d", resp.StatusCode)
		}

		var page listFilesResponse
		err = json.NewDecoder(resp.Body).Decode(&page)
		resp.Body.Close()
		if err != nil {
			return nil, err
		}

		files = append(files, page.Files...)
		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	logging.FilesDebug("ListFiles: count=%d", len(files))
	return files, nil
}
