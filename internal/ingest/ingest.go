package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"chessgif/internal/logging"
	"chessgif/internal/services"
	"chessgif/internal/uistate"
)

// DefaultMaxBytes caps a single file read.
const DefaultMaxBytes int64 = 1 << 20

var (
	// ErrNoFile is published when a selection carried no file.
	ErrNoFile = errors.New("Failed to upload PGN file. Please try again.")
	// ErrTooLarge is returned for files over the size cap.
	ErrTooLarge = errors.New("PGN file is too large")
)

// ReadError is a failure to open or read the selected file.
type ReadError struct {
	Name string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("Failed to read PGN file %s: %v", e.Name, e.Err)
}

func (e *ReadError) Unwrap() []error {
	return []error{services.ErrTransient, e.Err}
}

// Outcome reports how one selection ended.
type Outcome struct {
	Notation   string
	Err        error
	Superseded bool
}

// Option configures an Ingestor.
type Option func(*Ingestor)

// WithMaxBytes sets the size cap. Non-positive values keep the default.
func WithMaxBytes(n int64) Option {
	return func(i *Ingestor) {
		if n > 0 {
			i.maxBytes = n
		}
	}
}

// Ingestor feeds file contents into one Mirror.
type Ingestor struct {
	mirror   *uistate.Mirror
	logger   *slog.Logger
	maxBytes int64

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	wg     sync.WaitGroup

	// publishMu orders mirror writes; subscribers run without mu held.
	publishMu sync.Mutex
}

// New builds an Ingestor publishing into mirror.
func New(mirror *uistate.Mirror, logger *slog.Logger, opts ...Option) *Ingestor {
	i := &Ingestor{
		mirror:   mirror,
		logger:   logging.NewComponentLogger(logger, "ingest"),
		maxBytes: DefaultMaxBytes,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Read returns the decoded contents of file.
func (i *Ingestor) Read(ctx context.Context, file File) (string, error) {
	if file == nil {
		return "", ErrNoFile
	}
	rc, err := file.Open()
	if err != nil {
		return "", &ReadError{Name: file.Name(), Err: err}
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(ctxReader{ctx: ctx, r: rc}, i.maxBytes+1))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", &ReadError{Name: file.Name(), Err: err}
	}
	if int64(len(data)) > i.maxBytes {
		return "", fmt.Errorf("%w (limit %d bytes)", ErrTooLarge, i.maxBytes)
	}
	return Decode(data)
}

// Select reads file in the background and publishes the result unless a
// later Select supersedes it. The channel yields exactly one Outcome.
func (i *Ingestor) Select(ctx context.Context, file File) <-chan Outcome {
	readCtx, cancel := context.WithCancel(ctx)

	i.mu.Lock()
	if i.cancel != nil {
		i.cancel()
	}
	i.gen++
	gen := i.gen
	i.cancel = cancel
	i.mu.Unlock()

	name := ""
	if file != nil {
		name = file.Name()
	}
	logger := i.logger.With(logging.String("file", name), logging.Int64("selection", int64(gen)))

	out := make(chan Outcome, 1)
	i.wg.Add(1)
	go func() {
		defer i.wg.Done()
		defer close(out)
		defer cancel()

		text, err := i.Read(readCtx, file)

		i.publishMu.Lock()
		defer i.publishMu.Unlock()
		if !i.claim(gen) {
			logger.Debug("selection superseded")
			out <- Outcome{Superseded: true}
			return
		}
		if err != nil {
			i.mirror.Error.Set(err.Error())
			logger.Info("file ingestion failed",
				logging.String(logging.FieldEventType, "ingest_failed"),
				logging.Error(err),
			)
			out <- Outcome{Err: err}
			return
		}
		i.mirror.ReplaceNotation(text)
		logger.Info("file ingested",
			logging.String(logging.FieldEventType, "ingest_complete"),
			logging.Int("chars", len(text)),
		)
		out <- Outcome{Notation: text}
	}()
	return out
}

// claim reports whether gen is still the latest selection and clears its
// cancel func if so.
func (i *Ingestor) claim(gen uint64) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	if gen != i.gen {
		return false
	}
	i.cancel = nil
	return true
}

// Wait blocks until every background read has finished.
func (i *Ingestor) Wait() {
	i.wg.Wait()
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
