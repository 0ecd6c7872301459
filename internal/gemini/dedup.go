package gemini

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"sherlock/internal/logging"
)

// maxSweepDeletions bounds the best-effort cleanup pass per resolution.
const maxSweepDeletions = 25

// ResourceNameFor derives the deterministic remote resource name for a piece
// of source evidence. The same sourceID always maps to the same name, so
// repeated uploads of the same evidence resolve to the same remote file. The
// id segment stays within the service's 40-character naming limit.
func ResourceNameFor(sourceID string) string {
	sum := sha256.Sum256([]byte(sourceID))
	return "files/ev-" + hex.EncodeToString(sum[:])[:32]
}

// fileAPI is the slice of Client the resolver depends on.
type fileAPI interface {
	Upload(ctx context.Context, data []byte, mimeType, displayName, resourceName string) (*File, error)
	GetFile(ctx context.Context, name string) (*File, error)
	DeleteFile(ctx context.Context, name string) error
	ListFiles(ctx context.Context) ([]File, error)
}

// Resolver reuses or creates remote files keyed by content identity, avoiding
// duplicate storage and re-transfers of large media.
type Resolver struct {
	client     fileAPI
	waiter     *Waiter
	waitBudget time.Duration
}

// NewResolver creates a resolver around the given client.
func NewResolver(client *Client, waiter *Waiter, waitBudget time.Duration) *Resolver {
	if waiter == nil {
		waiter = NewWaiter(client)
	}
	if waitBudget <= 0 {
		waitBudget = DefaultActivationBudget
	}
	return &Resolver{client: client, waiter: waiter, waitBudget: waitBudget}
}

// BytesFunc supplies the payload lazily; it is only invoked when an upload is
// actually needed.
type BytesFunc func() ([]byte, error)

// Resolve returns an ACTIVE remote file for the given source evidence,
// reusing an existing remote copy when one exists.
func (r *Resolver) Resolve(ctx context.Context, sourceID, mimeType, displayName string, bytesFn BytesFunc) (*File, error) {
	name := ResourceNameFor(sourceID)
	logging.Dedup("Resolve: source_id=%q -> %s", sourceID, name)

	// Opportunistic cleanup of unusable remote entries. Never blocks the
	// primary request.
	r.sweep(ctx)

	file, err := r.client.GetFile(ctx, name)
	switch {
	case err == nil:
		if resolved, ok, rerr := r.reuse(ctx, name, file); ok || rerr != nil {
			return resolved, rerr
		}
		// Terminal FAILED copy found on lookup: clear it and re-upload.
		if derr := r.client.DeleteFile(ctx, name); derr != nil {
			logging.DedupWarn("failed to delete stale %s: %v", name, derr)
		}
	case !errors.Is(err, ErrFileNotFound):
		return nil, err
	}

	data, err := bytesFn()
	if err != nil {
		return nil, err
	}

	file, err = r.client.Upload(ctx, data, mimeType, displayName, name)
	var conflict *ConflictError
	if errors.As(err, &conflict) {
		return r.resolveConflict(ctx, name, mimeType, displayName, data)
	}
	if err != nil {
		return nil, err
	}
	return r.awaitUsable(ctx, name, file)
}

// reuse maps an existing remote file to a resolution outcome. ok is false when
// the file is in a terminal failed state and the caller should re-upload.
func (r *Resolver) reuse(ctx context.Context, name string, file *File) (*File, bool, error) {
	switch file.State {
	case FileStateActive:
		logging.Dedup("Resolve: reusing active %s", name)
		return file, true, nil
	case FileStateProcessing:
		logging.Dedup("Resolve: %s still processing, waiting", name)
		resolved, err := r.waiter.WaitActive(ctx, name, r.waitBudget)
		return resolved, true, err
	default:
		return nil, false, nil
	}
}

// resolveConflict handles the create race: another resolution of the same
// sourceID won the upload. Look the winner up once; if the name is still
// unusable, delete it and retry the upload exactly once.
func (r *Resolver) resolveConflict(ctx context.Context, name, mimeType, displayName string, data []byte) (*File, error) {
	logging.Dedup("Resolve: conflict on %s, re-checking", name)

	file, err := r.client.GetFile(ctx, name)
	if err == nil {
		if resolved, ok, rerr := r.reuse(ctx, name, file); ok || rerr != nil {
			return resolved, rerr
		}
	} else if !errors.Is(err, ErrFileNotFound) {
		return nil, err
	}

	if derr := r.client.DeleteFile(ctx, name); derr != nil {
		logging.DedupWarn("failed to delete conflicting %s: %v", name, derr)
	}

	file, err = r.client.Upload(ctx, data, mimeType, displayName, name)
	if err != nil {
		return nil, err
	}
	return r.awaitUsable(ctx, name, file)
}

// awaitUsable waits out server-side processing of a freshly uploaded file.
func (r *Resolver) awaitUsable(ctx context.Context, name string, file *File) (*File, error) {
	if file.State == FileStateActive {
		return file, nil
	}
	return r.waiter.WaitActive(ctx, name, r.waitBudget)
}

// sweep deletes remote files stuck in an unrecoverable state: FAILED
// processing, or ghost entries with a placeholder display name left behind by
// interrupted uploads. Best effort; every failure is swallowed and logged.
func (r *Resolver) sweep(ctx context.Context) {
	files, err := r.client.ListFiles(ctx)
	if err != nil {
		logging.DedupWarn("cleanup sweep list failed: %v", err)
		return
	}

	deleted := 0
	for _, f := range files {
		if deleted >= maxSweepDeletions {
			logging.DedupWarn("cleanup sweep hit deletion cap (%d)", maxSweepDeletions)
			return
		}
		if !isGhost(f) {
			continue
		}
		if err := r.client.DeleteFile(ctx, f.Name); err != nil {
			logging.DedupWarn("cleanup sweep delete %s failed: %v", f.Name, err)
			continue
		}
		logging.Dedup("cleanup sweep deleted %s (state=%s display_name=%q)", f.Name, f.State, f.DisplayName)
		deleted++
	}
}

// isGhost reports whether a remote file is unusable and safe to delete.
func isGhost(f File) bool {
	if f.State == FileStateFailed {
		return true
	}
	return f.DisplayName == "" || f.DisplayName == "undefined"
}
