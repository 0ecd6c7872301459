package gemini

import (
	"errors"
	"fmt"
	"time"
)

// Upload phases, reported by UploadError.
const (
	PhaseInitiate = "initiate"
	PhaseTransfer = "transfer"
)

// ErrFileNotFound is wrapped by GetFile when the remote service reports 404.
var ErrFileNotFound = errors.New("file not found")

// ErrMissingAPIKey is returned by any remote call attempted on a client
// constructed without credentials.
var ErrMissingAPIKey = errors.New("API key not configured")

// UploadError reports a non-success HTTP status during either upload phase.
type UploadError struct {
	Phase  string
	Status int
	Body   string
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("upload %s failed (status %d): %s", e.Phase, e.Status, e.Body)
}

// ConflictError reports a resource name collision (409) at initiate time.
// The resolver handles it once via lookup-and-reuse before it surfaces.
type ConflictError struct {
	ResourceName string
	Body         string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("resource name conflict for %s: %s", e.ResourceName, e.Body)
}

// ProcessingFailedError reports that the remote service declared the asset
// unusable. Terminal; not retried.
type ProcessingFailedError struct {
	ResourceName string
}

func (e *ProcessingFailedError) Error() string {
	return fmt.Sprintf("remote processing failed for %s", e.ResourceName)
}

// TimeoutError reports that activation did not complete within the budget.
type TimeoutError struct {
	ResourceName string
	Budget       time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timed out waiting for %s to become active (budget %v)", e.ResourceName, e.Budget)
}

// GenerationError reports a transport/service level failure of the model call.
type GenerationError struct {
	Status int
	Body   string
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation request failed (status %d): %s", e.Status, e.Body)
}
