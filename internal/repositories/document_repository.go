package repositories

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrSnapshotNotFound = errors.New("snapshot not found")
)

// DocumentRepository stores the single wine-list document. Writes replace the whole
// document; concurrent writers are last-writer-wins.
type DocumentRepository interface {
	EnsureInitialized(ctx context.Context, initial []byte) error
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, body []byte) error
	// Snapshot copies the current document aside and returns where it went.
	Snapshot(ctx context.Context, reason string) (string, error)
	// LoadSnapshot returns the body saved by Snapshot under locator.
	LoadSnapshot(ctx context.Context, locator string) ([]byte, error)
	Close() error
}

// FileTimestamp formats t like an ISO string with ':' and '.' made filename-safe.
func FileTimestamp(t time.Time) string {
	ts := t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
	return strings.NewReplacer(":", "-", ".", "-").Replace(ts)
}
