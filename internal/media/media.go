// Package media maps local evidence files to MIME types and resolves
// user-supplied partial filenames against the working directory.
package media

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// mimeTypes covers the media formats the analysis pipeline accepts.
var mimeTypes = map[string]string{
	".mp4":  "video/mp4",
	".webm": "video/webm",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
	".mkv":  "video/x-matroska",
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".webp": "image/webp",
}

// MimeType returns the MIME type for a file path based on its extension,
// falling back to application/octet-stream for unknown formats.
func MimeType(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if mt, ok := mimeTypes[ext]; ok {
		return mt
	}
	return "application/octet-stream"
}

// IsVideo reports whether the MIME type needs the remote upload path.
func IsVideo(mimeType string) bool {
	return strings.HasPrefix(mimeType, "video/")
}

// IsImage reports whether the MIME type is inline-eligible.
func IsImage(mimeType string) bool {
	return strings.HasPrefix(mimeType, "image/")
}

// IsSupported reports whether the file extension is a known media format.
func IsSupported(path string) bool {
	_, ok := mimeTypes[strings.ToLower(filepath.Ext(path))]
	return ok
}

// AmbiguousMatchError reports a partial filename that matched more than one
// media file.
type AmbiguousMatchError struct {
	Input   string
	Matches []string
}

func (e *AmbiguousMatchError) Error() string {
	return fmt.Sprintf("%q matches %d files: %s", e.Input, len(e.Matches), strings.Join(e.Matches, ", "))
}

// ResolveFile locates an evidence file by exact path or by partial name.
// A partial name matches media files in the target directory whose name
// starts with it, case-insensitively. Exactly one match resolves; zero or
// several fail.
func ResolveFile(input string) (string, error) {
	abs, err := filepath.Abs(input)
	if err != nil {
		return "", err
	}
	if _, err := os.Stat(abs); err == nil {
		return abs, nil
	}

	dir := filepath.Dir(abs)
	partial := strings.ToLower(filepath.Base(input))

	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("directory not found: %s", dir)
	}

	var matches []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if IsSupported(name) && strings.HasPrefix(strings.ToLower(name), partial) {
			matches = append(matches, name)
		}
	}

	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no media file found matching %q", input)
	case 1:
		return filepath.Join(dir, matches[0]), nil
	default:
		return "", &AmbiguousMatchError{Input: input, Matches: matches}
	}
}
