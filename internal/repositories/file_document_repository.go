package repositories

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/renameio/v2"
)

// FileDocumentRepository keeps the document in one JSON file on disk (db.json).
type FileDocumentRepository struct {
	mu       sync.RWMutex
	path     string
	lastHash [sha256.Size]byte
	now      func() time.Time
}

func NewFileDocumentRepository(path string) *FileDocumentRepository {
	return &FileDocumentRepository{path: path, now: time.Now}
}

func (r *FileDocumentRepository) Path() string {
	return r.path
}

func (r *FileDocumentRepository) EnsureInitialized(ctx context.Context, initial []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}

	_, err := os.Stat(r.path)
	if err == nil {
		return nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to stat database file: %w", err)
	}
	return r.writeLocked(initial)
}

func (r *FileDocumentRepository) Load(ctx context.Context) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrDocumentNotFound
		}
		return nil, fmt.Errorf("failed to read database file: %w", err)
	}
	return data, nil
}

func (r *FileDocumentRepository) Save(ctx context.Context, body []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.writeLocked(body)
}

// Snapshot copies db.json to db.safety-backup-<timestamp>.json in the same directory.
func (r *FileDocumentRepository) Snapshot(ctx context.Context, reason string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrDocumentNotFound
		}
		return "", fmt.Errorf("failed to read database file: %w", err)
	}

	dir, base := filepath.Split(r.path)
	ext := filepath.Ext(base)
	name := fmt.Sprintf("%s.safety-backup-%s%s", strings.TrimSuffix(base, ext), FileTimestamp(r.now()), ext)
	target := filepath.Join(dir, name)

	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write safety backup: %w", err)
	}
	return target, nil
}

// LoadSnapshot reads a safety backup of this document. locator is the path
// Snapshot returned, or just its file name; it always resolves next to db.json.
func (r *FileDocumentRepository) LoadSnapshot(ctx context.Context, locator string) ([]byte, error) {
	dir, base := filepath.Split(r.path)
	ext := filepath.Ext(base)
	name := filepath.Base(locator)
	if !strings.HasPrefix(name, strings.TrimSuffix(base, ext)+".safety-backup-") || filepath.Ext(name) != ext {
		return nil, ErrSnapshotNotFound
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	data, err := os.ReadFile(filepath.Join(dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrSnapshotNotFound
		}
		return nil, fmt.Errorf("failed to read safety backup: %w", err)
	}
	return data, nil
}

// IsOwnWrite reports whether body is exactly what this repository last wrote.
func (r *FileDocumentRepository) IsOwnWrite(body []byte) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return sha256.Sum256(body) == r.lastHash
}

func (r *FileDocumentRepository) Close() error {
	return nil
}

// writeLocked replaces the file atomically, so readers never see a half-written
// document. Caller holds mu.
func (r *FileDocumentRepository) writeLocked(body []byte) error {
	if err := renameio.WriteFile(r.path, body, 0o644); err != nil {
		return fmt.Errorf("failed to replace database file: %w", err)
	}
	r.lastHash = sha256.Sum256(body)
	return nil
}
