package testsupport

import (
	"context"
	"testing"

	"chessgif/internal/engine"
	"chessgif/internal/logging"
	"chessgif/internal/worker"
)

// EchoConverter returns "GIF89a" followed by the notation, and the engine's
// "empty game" error for empty notation.
func EchoConverter() engine.Converter {
	return engine.Func(func(_ context.Context, notation string, _ engine.Config) ([]byte, error) {
		if notation == "" {
			return nil, engine.NewError("empty game")
		}
		return []byte("GIF89a" + notation), nil
	})
}

// StartSession starts a worker session and stops it on cleanup.
func StartSession(t testing.TB, conv engine.Converter, opts ...worker.Option) *worker.Session {
	t.Helper()

	session := worker.NewSession(conv, logging.NewNop(), opts...)
	if err := session.Start(context.Background()); err != nil {
		t.Fatalf("start worker: %v", err)
	}
	t.Cleanup(session.Stop)
	return session
}
