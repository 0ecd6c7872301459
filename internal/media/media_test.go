package media

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestMimeType(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"session.mp4", "video/mp4"},
		{"clip.MOV", "video/quicktime"},
		{"screen.webm", "video/webm"},
		{"shot.png", "image/png"},
		{"photo.JPEG", "image/jpeg"},
		{"anim.gif", "image/gif"},
		{"notes.txt", "application/octet-stream"},
		{"noext", "application/octet-stream"},
	}
	for _, tt := range tests {
		if got := MimeType(tt.path); got != tt.want {
			t.Errorf("MimeType(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestIsVideoIsImage(t *testing.T) {
	if !IsVideo("video/mp4") || IsVideo("image/png") {
		t.Error("IsVideo misclassified")
	}
	if !IsImage("image/webp") || IsImage("video/webm") {
		t.Error("IsImage misclassified")
	}
}

func TestResolveFile_ExactPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "checkout.mp4")
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := ResolveFile(path)
	if err != nil {
		t.Fatalf("ResolveFile failed: %v", err)
	}
	if got != path {
		t.Errorf("Expected %s, got %s", path, got)
	}
}

func TestResolveFile_PartialName(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"checkout-flow.mp4", "login.png", "readme.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	got, err := ResolveFile(filepath.Join(dir, "check"))
	if err != nil {
		t.Fatalf("ResolveFile failed: %v", err)
	}
	if filepath.Base(got) != "checkout-flow.mp4" {
		t.Errorf("Expected checkout-flow.mp4, got %s", got)
	}
}

func TestResolveFile_IgnoresNonMedia(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "check.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := ResolveFile(filepath.Join(dir, "check")); err == nil {
		t.Error("Expected miss for non-media match")
	}
}

func TestResolveFile_Ambiguous(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"clip-a.mp4", "clip-b.mp4"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
	}

	_, err := ResolveFile(filepath.Join(dir, "clip"))
	var ambiguous *AmbiguousMatchError
	if !errors.As(err, &ambiguous) {
		t.Fatalf("Expected AmbiguousMatchError, got %v", err)
	}
	if len(ambiguous.Matches) != 2 {
		t.Errorf("Expected 2 matches, got %v", ambiguous.Matches)
	}
}

func TestResolveFile_NoMatch(t *testing.T) {
	dir := t.TempDir()
	if _, err := ResolveFile(filepath.Join(dir, "missing")); err == nil {
		t.Error("Expected error for missing file")
	}
}
