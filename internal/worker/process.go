package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"chessgif/internal/colors"
	"chessgif/internal/engine"
	"chessgif/internal/history"
	"chessgif/internal/logging"
	"chessgif/internal/protocol"
	"chessgif/internal/services"
)

const recordTimeout = 5 * time.Second

// errNoOutput marks an engine call that returned neither bytes nor an error.
var errNoOutput = services.Wrap(services.ErrInternal, "engine", "convert", "no output", nil)

type timeoutError struct {
	after time.Duration
}

func (e *timeoutError) Error() string {
	return fmt.Sprintf("conversion timed out after %s", e.after)
}

func (e *timeoutError) Unwrap() error {
	return services.ErrTimeout
}

type panicError struct {
	value any
}

func (e *panicError) Error() string {
	return fmt.Sprintf("engine panic: %v", e.value)
}

func (e *panicError) Unwrap() error {
	return services.ErrInternal
}

func (s *Session) process(ctx context.Context, env envelope) {
	start := time.Now()
	reqCtx := services.WithHandlerID(ctx, string(env.handler))
	reqCtx = services.WithRequestID(reqCtx, env.requestID)
	logger := logging.WithContext(reqCtx, s.logger)

	logger.Debug("request started",
		logging.String(logging.FieldEventType, "request_start"),
		logging.Duration("queued_for", start.Sub(env.submitted)),
		logging.Int("notation_bytes", len(env.request.Notation)),
	)

	resp := s.respond(reqCtx, env.request)

	respCtx := s.enter(reqCtx, StateResponding)
	s.deliver(logging.WithContext(respCtx, s.logger), env, resp)
	elapsed := time.Since(start)
	s.setState(StateIdle)

	if resp.IsSuccess() {
		logger.Info("conversion finished",
			logging.String(logging.FieldEventType, "conversion_complete"),
			logging.Int("bytes", len(resp.Data)),
			logging.Duration("duration", elapsed),
		)
	} else {
		logger.Info("conversion failed",
			logging.String(logging.FieldEventType, "conversion_failed"),
			logging.String("reason", resp.Message),
			logging.Duration("duration", elapsed),
		)
	}
	s.record(ctx, logger, env, resp, elapsed)
}

// enter moves the session to state and tags ctx with it for logging.
func (s *Session) enter(ctx context.Context, state State) context.Context {
	s.setState(state)
	return services.WithState(ctx, state.String())
}

// respond walks Validating and Converting and always returns a valid response.
func (s *Session) respond(ctx context.Context, req protocol.Request) protocol.Response {
	valCtx := s.enter(ctx, StateValidating)
	pair, err := colors.Validate(req.DarkColor, req.LightColor)
	if err != nil {
		logging.WithContext(valCtx, s.logger).Debug("request rejected by color validation",
			logging.String("error_kind", services.Kind(err)),
			logging.Error(err),
		)
		return protocol.Failure(err.Error())
	}

	convCtx := s.enter(ctx, StateConverting)
	logger := logging.WithContext(convCtx, s.logger)
	data, err := s.convert(convCtx, req.Notation, engine.NewConfig(pair, s.defaults))
	if err == nil && len(data) == 0 {
		err = errNoOutput
	}
	if err == nil {
		return protocol.Success(data)
	}
	kind := logging.String("error_kind", services.Kind(err))

	var (
		panicked *panicError
		timedOut *timeoutError
	)
	switch {
	case errors.Is(err, errNoOutput):
		logging.ErrorWithContext(logger, "engine returned neither bytes nor an error", "engine_protocol_violation",
			kind,
			logging.Alert("engine_contract"),
			logging.String(logging.FieldErrorHint, "check the renderer build; it exited cleanly without output"),
		)
		return protocol.Failure(ErrInternal.Error())
	case errors.As(err, &panicked):
		logging.ErrorWithContext(logger, "engine panicked", "engine_panic",
			kind,
			logging.Alert("engine_contract"),
			logging.Any("panic", panicked.value),
			logging.String(logging.FieldErrorHint, "report the input that triggered the panic"),
		)
		return protocol.Failure(ErrInternal.Error())
	case errors.As(err, &timedOut):
		logging.WarnWithContext(logger, "conversion timed out", "engine_timeout",
			kind,
			logging.Duration("timeout", timedOut.after),
			logging.String(logging.FieldErrorHint, "raise engine.timeout_seconds or shorten the game"),
		)
		return protocol.Failure(timedOut.Error())
	case errors.Is(err, context.Canceled) && ctx.Err() != nil:
		return protocol.Failure(ErrStopped.Error())
	}

	message := strings.TrimSpace(err.Error())
	if message == "" {
		return protocol.Failure(ErrInternal.Error())
	}
	logger.Debug("engine reported failure", kind, logging.Error(err))
	return protocol.Failure(message)
}

func (s *Session) convert(ctx context.Context, notation string, cfg engine.Config) (data []byte, err error) {
	defer func() {
		if r := recover(); r != nil {
			data = nil
			err = &panicError{value: r}
		}
	}()

	convCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		convCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	data, err = s.converter.Convert(convCtx, notation, cfg)
	if err != nil && s.timeout > 0 && ctx.Err() == nil && errors.Is(convCtx.Err(), context.DeadlineExceeded) {
		return nil, &timeoutError{after: s.timeout}
	}
	return data, err
}

func (s *Session) record(ctx context.Context, logger *slog.Logger, env envelope, resp protocol.Response, elapsed time.Duration) {
	if s.recorder == nil {
		return
	}
	entry := history.Entry{
		RequestID:  env.requestID,
		HandlerID:  string(env.handler),
		DarkColor:  env.request.DarkColor,
		LightColor: env.request.LightColor,
		Duration:   elapsed,
		CreatedAt:  time.Now(),
	}
	entry.DescribeNotation(env.request.Notation)
	if resp.IsSuccess() {
		entry.Outcome = history.OutcomeSuccess
		entry.Bytes = len(resp.Data)
	} else {
		entry.Outcome = history.OutcomeFailure
		entry.Message = resp.Message
	}

	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()
	if _, err := s.recorder.Record(recordCtx, entry); err != nil {
		logging.WarnWithContext(logger, "failed to record conversion history", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "conversion result was delivered but is missing from history"),
			logging.String(logging.FieldErrorHint, "check the history database in data_dir"),
		)
	}
}
