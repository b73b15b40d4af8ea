// Package bridge connects one interactive surface to the worker session.
//
// A Bridge sends requests built from its Mirror and publishes each reply
// back into the Mirror: the rendered image on success, the message in the
// error cell on failure. A failed attempt never clears an earlier image.
package bridge

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"chessgif/internal/logging"
	"chessgif/internal/protocol"
	"chessgif/internal/uistate"
	"chessgif/internal/worker"
)

// DataURLPrefix starts every published image reference.
const DataURLPrefix = "data:image/gif;base64,"

// ImageAlt is the alt text published with every image.
const ImageAlt = "Rendered GIF"

var (
	// ErrBusy is returned under PolicyReject while a request is outstanding.
	ErrBusy = errors.New("a conversion is already in progress")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("bridge closed")
)

// Policy decides what happens to a send while another is outstanding.
type Policy string

const (
	PolicyReject Policy = "reject"
	PolicyQueue  Policy = "queue"
)

// ParsePolicy maps a config value to a Policy.
func ParsePolicy(value string) (Policy, error) {
	switch Policy(strings.ToLower(strings.TrimSpace(value))) {
	case "", PolicyReject:
		return PolicyReject, nil
	case PolicyQueue:
		return PolicyQueue, nil
	default:
		return "", fmt.Errorf("unknown overlap policy %q", value)
	}
}

// Dispatcher is the worker surface the bridge needs. *worker.Session satisfies it.
type Dispatcher interface {
	Register(fn worker.ResponseFunc) worker.HandlerID
	Unregister(id worker.HandlerID)
	Submit(id worker.HandlerID, req protocol.Request) (string, error)
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithPolicy sets the overlap policy.
func WithPolicy(policy Policy) Option {
	return func(b *Bridge) {
		if policy != "" {
			b.policy = policy
		}
	}
}

// WithObserver is called after each reply has been published to the mirror.
func WithObserver(fn func(worker.Reply)) Option {
	return func(b *Bridge) {
		b.observer = fn
	}
}

// Bridge owns one response handler registration.
type Bridge struct {
	dispatcher Dispatcher
	mirror     *uistate.Mirror
	logger     *slog.Logger
	policy     Policy
	observer   func(worker.Reply)
	id         worker.HandlerID

	mu          sync.Mutex
	outstanding int
	generation  uint64
	closed      bool
}

// New registers a response handler with dispatcher.
func New(dispatcher Dispatcher, mirror *uistate.Mirror, logger *slog.Logger, opts ...Option) *Bridge {
	b := &Bridge{
		dispatcher: dispatcher,
		mirror:     mirror,
		policy:     PolicyReject,
	}
	for _, opt := range opts {
		opt(b)
	}
	b.id = dispatcher.Register(b.handle)
	b.logger = logging.NewComponentLogger(logger, "bridge").With(
		logging.String(logging.FieldHandlerID, string(b.id)),
	)
	return b
}

// ID returns the handler identifier registered with the worker.
func (b *Bridge) ID() worker.HandlerID {
	return b.id
}

// Mirror returns the state this bridge publishes into.
func (b *Bridge) Mirror() *uistate.Mirror {
	return b.mirror
}

// Send submits req without waiting for the reply.
func (b *Bridge) Send(req protocol.Request) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	if b.policy == PolicyReject && b.outstanding > 0 {
		b.mu.Unlock()
		b.logger.Debug("send rejected while busy")
		return ErrBusy
	}
	b.outstanding++
	b.generation++
	b.mu.Unlock()

	b.publishPending()
	requestID, err := b.dispatcher.Submit(b.id, req)
	if err != nil {
		b.settle()
		return fmt.Errorf("submit conversion: %w", err)
	}
	b.logger.Debug("request sent", logging.String(logging.FieldRequestID, requestID))
	return nil
}

// SendCurrent sends a request built from the mirror's current state.
func (b *Bridge) SendCurrent() error {
	return b.Send(b.mirror.Snapshot().Request())
}

// Pending reports whether a reply is outstanding.
func (b *Bridge) Pending() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.outstanding > 0
}

// Ready reports whether the convert trigger should be enabled.
func (b *Bridge) Ready() bool {
	if strings.TrimSpace(b.mirror.Notation.Get()) == "" {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.closed && (b.outstanding == 0 || b.policy == PolicyQueue)
}

// Close unregisters the handler. Replies still in flight are discarded.
func (b *Bridge) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	b.outstanding = 0
	b.generation++
	b.mu.Unlock()

	b.dispatcher.Unregister(b.id)
	b.publishPending()
}

func (b *Bridge) handle(reply worker.Reply) {
	resp := reply.Response
	if resp.IsSuccess() {
		b.mirror.Image.Set(uistate.Image{
			Data:    resp.Data,
			DataURL: DataURL(resp.Data),
			Alt:     ImageAlt,
		})
		b.mirror.Error.Set("")
	} else {
		b.mirror.Error.Set(resp.Message)
	}
	b.settle()

	b.logger.Debug("reply published",
		logging.String(logging.FieldRequestID, reply.RequestID),
		logging.Bool("success", resp.IsSuccess()),
	)
	if b.observer != nil {
		b.observer(reply)
	}
}

func (b *Bridge) settle() {
	b.mu.Lock()
	if b.outstanding > 0 {
		b.outstanding--
	}
	b.generation++
	b.mu.Unlock()
	b.publishPending()
}

// publishPending copies the outstanding state into the mirror. Subscribers run
// without b.mu held, so the value is re-published until no counter change
// raced the write.
func (b *Bridge) publishPending() {
	for {
		b.mu.Lock()
		pending, generation := b.outstanding > 0, b.generation
		b.mu.Unlock()

		b.mirror.Pending.Set(pending)

		b.mu.Lock()
		stable := b.generation == generation
		b.mu.Unlock()
		if stable {
			return
		}
	}
}

// DataURL encodes GIF bytes as an embeddable reference.
func DataURL(data []byte) string {
	return DataURLPrefix + base64.RawStdEncoding.EncodeToString(data)
}
