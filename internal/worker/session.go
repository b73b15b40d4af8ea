package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"chessgif/internal/engine"
	"chessgif/internal/history"
	"chessgif/internal/logging"
	"chessgif/internal/protocol"
)

var (
	// ErrInternal is reported when the engine produced neither bytes nor an error.
	ErrInternal = errors.New("internal error")
	// ErrStopped is reported for requests the session could not run before shutdown.
	ErrStopped = errors.New("worker stopped")
	// ErrUnknownHandler is returned when submitting for a handler that was never registered.
	ErrUnknownHandler = errors.New("unknown response handler")
)

// HandlerID identifies one registered caller.
type HandlerID string

// Reply is what a handler receives for each request it submitted.
type Reply struct {
	RequestID string
	Response  protocol.Response
}

// ResponseFunc receives replies on the worker goroutine.
type ResponseFunc func(Reply)

// Recorder persists finished conversions. *history.Store satisfies it.
type Recorder interface {
	Record(ctx context.Context, entry history.Entry) (int64, error)
}

var _ Recorder = (*history.Store)(nil)

// Option configures a Session.
type Option func(*Session)

// WithDefaults sets the fixed rendering defaults merged into every request.
func WithDefaults(defaults engine.Defaults) Option {
	return func(s *Session) {
		s.defaults = defaults
	}
}

// WithTimeout bounds each conversion. Zero, the default, waits for the engine
// indefinitely.
func WithTimeout(timeout time.Duration) Option {
	return func(s *Session) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// WithRecorder records every finished conversion.
func WithRecorder(recorder Recorder) Option {
	return func(s *Session) {
		s.recorder = recorder
	}
}

type envelope struct {
	requestID string
	handler   HandlerID
	request   protocol.Request
	submitted time.Time
}

// Session serializes access to the conversion engine.
type Session struct {
	converter engine.Converter
	defaults  engine.Defaults
	timeout   time.Duration
	recorder  Recorder
	logger    *slog.Logger

	mu        sync.Mutex
	handlers  map[HandlerID]ResponseFunc
	queue     []envelope
	wake      chan struct{}
	state     State
	running   bool
	stopped   bool
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	processed int64
	failed    int64
}

// NewSession constructs a session around converter.
func NewSession(converter engine.Converter, logger *slog.Logger, opts ...Option) *Session {
	s := &Session{
		converter: converter,
		logger:    logging.NewComponentLogger(logger, "worker"),
		handlers:  make(map[HandlerID]ResponseFunc),
		wake:      make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the worker goroutine.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return ErrStopped
	}
	if s.running {
		return errors.New("worker already running")
	}
	if s.converter == nil {
		return errors.New("worker requires a converter")
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true
	s.wg.Add(1)
	go s.run(runCtx)

	s.logger.Debug("worker started",
		logging.String(logging.FieldEventType, "worker_start"),
		logging.Duration("timeout", s.timeout),
	)
	return nil
}

// Stop terminates the worker and waits for it. Requests still queued receive
// a "worker stopped" failure.
func (s *Session) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	cancel := s.cancel
	wasRunning := s.running
	s.mu.Unlock()

	if wasRunning {
		cancel()
		s.wg.Wait()
	} else {
		s.drain()
	}
	s.logger.Debug("worker stopped", logging.String(logging.FieldEventType, "worker_stop"))
}

// Register adds a response handler and returns its identifier.
func (s *Session) Register(fn ResponseFunc) HandlerID {
	id := HandlerID(uuid.NewString())
	s.mu.Lock()
	s.handlers[id] = fn
	s.mu.Unlock()
	return id
}

// Unregister removes a handler. Replies for its pending requests are discarded.
func (s *Session) Unregister(id HandlerID) {
	s.mu.Lock()
	delete(s.handlers, id)
	s.mu.Unlock()
}

// Submit queues a request for handler id and returns the request identifier.
// It never waits for the conversion.
func (s *Session) Submit(id HandlerID, req protocol.Request) (string, error) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return "", ErrStopped
	}
	if _, ok := s.handlers[id]; !ok {
		s.mu.Unlock()
		return "", ErrUnknownHandler
	}
	env := envelope{
		requestID: uuid.NewString(),
		handler:   id,
		request:   req,
		submitted: time.Now(),
	}
	s.queue = append(s.queue, env)
	depth := len(s.queue)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}

	s.logger.Debug("request queued",
		logging.String(logging.FieldRequestID, env.requestID),
		logging.String(logging.FieldHandlerID, string(id)),
		logging.Int("queue_depth", depth),
	)
	return env.requestID, nil
}

// State returns the current state machine position.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// QueueDepth returns the number of requests waiting to start.
func (s *Session) QueueDepth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Status returns a snapshot for status views.
func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{
		Running:    s.running && !s.stopped,
		State:      s.state,
		QueueDepth: len(s.queue),
		Handlers:   len(s.handlers),
		Processed:  s.processed,
		Failed:     s.failed,
	}
}

func (s *Session) run(ctx context.Context) {
	defer s.wg.Done()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	for {
		if ctx.Err() != nil {
			s.drain()
			return
		}
		env, ok := s.next()
		if !ok {
			select {
			case <-ctx.Done():
			case <-s.wake:
			}
			continue
		}
		s.process(ctx, env)
	}
}

func (s *Session) next() (envelope, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return envelope{}, false
	}
	env := s.queue[0]
	s.queue[0] = envelope{}
	s.queue = s.queue[1:]
	return env, true
}

func (s *Session) drain() {
	s.mu.Lock()
	pending := s.queue
	s.queue = nil
	s.mu.Unlock()

	for _, env := range pending {
		logger := s.logger.With(
			logging.String(logging.FieldRequestID, env.requestID),
			logging.String(logging.FieldHandlerID, string(env.handler)),
		)
		s.deliver(logger, env, protocol.Failure(ErrStopped.Error()))
	}
	if len(pending) > 0 {
		logging.WarnWithContext(s.logger, "worker stopped with queued requests", "worker_drain",
			logging.Int("failed_requests", len(pending)),
			logging.String(logging.FieldImpact, "queued conversions were answered with a failure"),
			logging.String(logging.FieldErrorHint, "resubmit after the worker restarts"),
		)
	}
}

func (s *Session) setState(state State) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

func (s *Session) deliver(logger *slog.Logger, env envelope, resp protocol.Response) {
	s.mu.Lock()
	fn, ok := s.handlers[env.handler]
	s.processed++
	if !resp.IsSuccess() {
		s.failed++
	}
	s.mu.Unlock()

	if !ok || fn == nil {
		logging.WarnWithContext(logger, "response handler gone; reply discarded", "reply_discarded",
			logging.String(logging.FieldImpact, "the caller unregistered before its reply arrived"),
		)
		return
	}

	defer func() {
		if r := recover(); r != nil {
			logging.ErrorWithContext(logger, "response handler panicked", "handler_panic",
				logging.Any("panic", r),
				logging.String(logging.FieldErrorHint, "fix the response handler; the worker keeps running"),
			)
		}
	}()
	fn(Reply{RequestID: env.requestID, Response: resp})
}
