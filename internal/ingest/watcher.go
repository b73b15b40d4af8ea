package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"chessgif/internal/logging"
)

// DefaultDebounce groups bursts of writes into one re-read.
const DefaultDebounce = 200 * time.Millisecond

// Watcher re-selects a file each time it changes on disk.
type Watcher struct {
	ingestor *Ingestor
	logger   *slog.Logger
	debounce time.Duration
}

// NewWatcher returns a watcher feeding ingestor. A non-positive debounce uses
// DefaultDebounce.
func NewWatcher(ingestor *Ingestor, logger *slog.Logger, debounce time.Duration) *Watcher {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		ingestor: ingestor,
		logger:   logging.NewComponentLogger(logger, "watcher"),
		debounce: debounce,
	}
}

// Watch selects path once, then again after every write or replacement, until
// ctx is done. onOutcome receives each selection that was not superseded; it
// is called from background goroutines, one at a time.
func (w *Watcher) Watch(ctx context.Context, path string, onOutcome func(Outcome)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer fsw.Close()

	// Watch the directory: editors often save by renaming a temp file over
	// the original, which drops a watch on the file itself.
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	var (
		deliverMu sync.Mutex
		wg        sync.WaitGroup
	)
	defer wg.Wait()

	selectFile := func() {
		out := w.ingestor.Select(ctx, PathFile(abs))
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcome := <-out
			if outcome.Superseded || onOutcome == nil {
				return
			}
			deliverMu.Lock()
			defer deliverMu.Unlock()
			onOutcome(outcome)
		}()
	}

	trigger := make(chan struct{}, 1)
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	w.logger.Info("watching file", logging.String("path", abs), logging.Duration("debounce", w.debounce))
	selectFile()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.logger.Debug("file event", logging.String("op", event.Op.String()))
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(w.debounce, func() {
				select {
				case trigger <- struct{}{}:
				default:
				}
			})
		case <-trigger:
			selectFile()
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logging.WarnWithContext(w.logger, "file watcher error", "watch_error",
				logging.Error(err),
				logging.String(logging.FieldImpact, "a change to the watched file may be missed"),
			)
		}
	}
}
