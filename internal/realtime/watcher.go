package realtime

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const DefaultDebounce = 500 * time.Millisecond

// OwnWriteChecker tells the watcher which file contents the server wrote itself.
type OwnWriteChecker interface {
	IsOwnWrite(body []byte) bool
}

// FileWatcher notices edits made to db.json outside the server (by hand or by a
// maintenance script) and hands the new contents to onChange.
type FileWatcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	path     string
	own      OwnWriteChecker
	onChange func(ctx context.Context, body []byte)
	debounce time.Duration
	log      *zap.Logger
	stopCh   chan struct{}
	doneCh   chan struct{}
	running  bool
}

func NewFileWatcher(path string, own OwnWriteChecker, onChange func(ctx context.Context, body []byte), log *zap.Logger) (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		_ = w.Close()
		return nil, err
	}
	return &FileWatcher{
		watcher:  w,
		path:     abs,
		own:      own,
		onChange: onChange,
		debounce: DefaultDebounce,
		log:      log,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start watches the file's directory; renames over the file are how both this server
// and most editors replace it. Non-blocking.
func (fw *FileWatcher) Start(ctx context.Context) error {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.running {
		return nil
	}

	if err := fw.watcher.Add(filepath.Dir(fw.path)); err != nil {
		return err
	}
	fw.running = true
	fw.log.Info("watching database file for external edits", zap.String("path", fw.path))

	go fw.run(ctx)
	return nil
}

func (fw *FileWatcher) Stop() {
	fw.mu.Lock()
	if !fw.running {
		fw.mu.Unlock()
		_ = fw.watcher.Close()
		return
	}
	fw.running = false
	fw.mu.Unlock()

	close(fw.stopCh)
	<-fw.doneCh
	_ = fw.watcher.Close()
}

func (fw *FileWatcher) run(ctx context.Context) {
	defer close(fw.doneCh)

	timer := time.NewTimer(fw.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-fw.stopCh:
			return
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != fw.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			timer.Reset(fw.debounce)
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.log.Warn("file watcher error", zap.Error(err))
		case <-timer.C:
			fw.handleChange(ctx)
		}
	}
}

func (fw *FileWatcher) handleChange(ctx context.Context) {
	body, err := os.ReadFile(fw.path)
	if err != nil {
		fw.log.Warn("failed to read changed database file", zap.Error(err))
		return
	}
	if fw.own.IsOwnWrite(body) {
		return
	}
	if !json.Valid(body) {
		fw.log.Warn("ignoring external edit: database file is not valid JSON", zap.String("path", fw.path))
		return
	}

	fw.log.Info("database file changed on disk", zap.Int("bytes", len(body)))
	fw.onChange(ctx, body)
}
