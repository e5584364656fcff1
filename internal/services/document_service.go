package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"winelist/internal/models"
	"winelist/internal/repositories"
)

// Keys an imported backup must carry. glossary and ai_instructions are optional.
var requiredBackupKeys = []string{models.KeyWines, models.KeyWineries, models.KeyMenu}

// Broadcaster pushes the stored document to connected clients.
type Broadcaster interface {
	BroadcastDocument(ctx context.Context, doc []byte) error
}

type Backup struct {
	Filename string
	Body     []byte
}

type DocumentService struct {
	repo        repositories.DocumentRepository
	broadcaster Broadcaster
	log         *zap.Logger
	now         func() time.Time
}

func NewDocumentService(repo repositories.DocumentRepository, broadcaster Broadcaster, log *zap.Logger) *DocumentService {
	return &DocumentService{
		repo:        repo,
		broadcaster: broadcaster,
		log:         log,
		now:         time.Now,
	}
}

// Init writes the empty document when the store holds none.
func (s *DocumentService) Init(ctx context.Context) error {
	if err := s.repo.EnsureInitialized(ctx, models.EmptyDocument); err != nil {
		return fmt.Errorf("initialize document: %w", err)
	}
	return nil
}

// Get returns the stored document text. A store holding invalid JSON, e.g. a
// half-finished manual edit of db.json, yields ErrCorruptDocument.
func (s *DocumentService) Get(ctx context.Context) ([]byte, error) {
	body, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load document: %w", err)
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("load document: %w", ErrCorruptDocument)
	}
	return body, nil
}

// Catalog returns the typed view of the current document.
func (s *DocumentService) Catalog(ctx context.Context) (*models.Catalog, error) {
	body, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	cat, err := models.ParseCatalog(body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return cat, nil
}

// Save overwrites the whole document. wines and wineries must be present and non-empty values.
func (s *DocumentService) Save(ctx context.Context, data json.RawMessage) error {
	top, err := decodeObject(data)
	if err != nil {
		return invalid("Invalid data structure")
	}
	if !truthy(top[models.KeyWines]) || !truthy(top[models.KeyWineries]) {
		return invalid("Invalid data structure")
	}

	return s.write(ctx, data, "save")
}

// Export returns the stored document with a timestamped download name.
func (s *DocumentService) Export(ctx context.Context) (*Backup, error) {
	body, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	return &Backup{
		Filename: fmt.Sprintf("db-backup-%s.json", repositories.FileTimestamp(s.now())),
		Body:     body,
	}, nil
}

// Import validates a backup, snapshots the current document and replaces it.
// It returns the snapshot locator, empty when there was nothing to snapshot.
func (s *DocumentService) Import(ctx context.Context, data json.RawMessage) (string, error) {
	top, err := decodeObject(data)
	if err != nil {
		found, ok := arrayKeys(data)
		if !ok {
			return "", invalid("Invalid JSON data")
		}
		return "", s.rejectBackup(requiredBackupKeys, found)
	}

	var missing []string
	for _, key := range requiredBackupKeys {
		if _, ok := top[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		found := make([]string, 0, len(top))
		for key := range top {
			found = append(found, key)
		}
		sort.Strings(found)
		return "", s.rejectBackup(missing, found)
	}

	if err := checkSampleWine(top[models.KeyWines]); err != nil {
		return "", err
	}

	snapshot, err := s.repo.Snapshot(ctx, "import")
	switch {
	case errors.Is(err, repositories.ErrDocumentNotFound):
		snapshot = ""
	case err != nil:
		return "", fmt.Errorf("snapshot before import: %w", err)
	default:
		s.log.Info("safety backup created", zap.String("snapshot", snapshot))
	}

	if err := s.write(ctx, data, "import"); err != nil {
		return snapshot, err
	}
	return snapshot, nil
}

// Restore re-imports a safety backup. The document it replaces is snapshotted first,
// so a restore can itself be undone.
func (s *DocumentService) Restore(ctx context.Context, locator string) (string, error) {
	body, err := s.repo.LoadSnapshot(ctx, locator)
	if err != nil {
		return "", fmt.Errorf("load snapshot %s: %w", locator, err)
	}
	return s.Import(ctx, body)
}

func (s *DocumentService) rejectBackup(missing, found []string) error {
	s.log.Warn("backup import rejected", zap.Strings("missing", missing), zap.Strings("found", found))
	return invalid(fmt.Sprintf("Invalid backup structure. Missing keys: %s. Found: %s",
		strings.Join(missing, ", "), strings.Join(found, ", ")))
}

// PublishExternalChange broadcasts a document written by something other than this service.
func (s *DocumentService) PublishExternalChange(ctx context.Context, body []byte) {
	s.log.Info("document changed on disk", zap.Int("bytes", len(body)))
	s.broadcast(ctx, body)
}

func (s *DocumentService) write(ctx context.Context, data json.RawMessage, op string) error {
	body, err := Indent(data)
	if err != nil {
		return invalid("Invalid JSON data")
	}
	if err := s.repo.Save(ctx, body); err != nil {
		return fmt.Errorf("%s document: %w", op, err)
	}
	s.log.Info("document written", zap.String("op", op), zap.Int("bytes", len(body)))
	s.broadcast(ctx, body)
	return nil
}

func (s *DocumentService) broadcast(ctx context.Context, body []byte) {
	if s.broadcaster == nil {
		return
	}
	if err := s.broadcaster.BroadcastDocument(ctx, body); err != nil {
		s.log.Warn("broadcast failed", zap.Error(err))
	}
}

// Indent re-encodes a JSON value with two-space indentation.
func Indent(data []byte) ([]byte, error) {
	var compact bytes.Buffer
	if err := json.Compact(&compact, data); err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func decodeObject(data []byte) (map[string]json.RawMessage, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return nil, err
	}
	if top == nil {
		return nil, errors.New("document is null")
	}
	return top, nil
}

// arrayKeys lists the indices of a JSON array, which is how an array backup
// reports its keys.
func arrayKeys(data []byte) ([]string, bool) {
	var elems []json.RawMessage
	if err := json.Unmarshal(data, &elems); err != nil || elems == nil {
		return nil, false
	}
	keys := make([]string, len(elems))
	for i := range elems {
		keys[i] = strconv.Itoa(i)
	}
	return keys, true
}

func checkSampleWine(raw json.RawMessage) error {
	var wines []json.RawMessage
	if err := json.Unmarshal(raw, &wines); err != nil || len(wines) == 0 {
		return nil
	}
	var sample map[string]json.RawMessage
	if err := json.Unmarshal(wines[0], &sample); err != nil || sample == nil {
		return invalid("Invalid wine structure in backup.")
	}
	_, hasID := sample["id"]
	_, hasName := sample["name"]
	if !hasID || !hasName {
		return invalid("Invalid wine structure in backup.")
	}
	return nil
}

// truthy reports whether a JSON value is present and not null, false, zero or an empty string.
func truthy(raw json.RawMessage) bool {
	v := strings.TrimSpace(string(raw))
	switch v {
	case "", "null", "false", `""`:
		return false
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return n != 0
	}
	return true
}
