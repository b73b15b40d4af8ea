package bridge

import (
	"context"
	"encoding/base64"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chessgif/internal/colors"
	"chessgif/internal/engine"
	"chessgif/internal/logging"
	"chessgif/internal/protocol"
	"chessgif/internal/uistate"
	"chessgif/internal/worker"
)

type fakeDispatcher struct {
	mu        sync.Mutex
	handler   worker.ResponseFunc
	requests  []protocol.Request
	submitErr error
	removed   bool
}

func (d *fakeDispatcher) Register(fn worker.ResponseFunc) worker.HandlerID {
	d.handler = fn
	return "handler-1"
}

func (d *fakeDispatcher) Unregister(worker.HandlerID) {
	d.removed = true
}

func (d *fakeDispatcher) Submit(_ worker.HandlerID, req protocol.Request) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.submitErr != nil {
		return "", d.submitErr
	}
	d.requests = append(d.requests, req)
	return "req", nil
}

func (d *fakeDispatcher) reply(resp protocol.Response) {
	d.handler(worker.Reply{RequestID: "req", Response: resp})
}

func newMirror(t *testing.T) *uistate.Mirror {
	t.Helper()
	pair, err := colors.Validate("#000000", "#ffffff")
	require.NoError(t, err)
	return uistate.NewMirror(pair)
}

func TestSuccessPublishesImageAndClearsError(t *testing.T) {
	d := &fakeDispatcher{}
	m := newMirror(t)
	b := New(d, m, logging.NewNop())
	m.Error.Set("empty game")

	require.NoError(t, b.Send(protocol.Request{Notation: "1. e4 e5", DarkColor: "#000000", LightColor: "#ffffff"}))
	assert.True(t, m.Pending.Get())
	assert.True(t, b.Pending())

	data := []byte{0x47, 0x49, 0x46, 0x38}
	d.reply(protocol.Success(data))

	img := m.Image.Get()
	assert.Equal(t, data, img.Data)
	assert.Equal(t, "data:image/gif;base64,"+base64.RawStdEncoding.EncodeToString(data), img.DataURL)
	assert.Equal(t, "data:image/gif;base64,R0lGOA", img.DataURL)
	assert.Equal(t, ImageAlt, img.Alt)
	assert.Empty(t, m.Error.Get())
	assert.False(t, m.Pending.Get())
	assert.False(t, b.Pending())
}

func TestFailureLeavesPriorImageUntouched(t *testing.T) {
	d := &fakeDispatcher{}
	m := newMirror(t)
	b := New(d, m, logging.NewNop())

	require.NoError(t, b.Send(protocol.Request{Notation: "1. e4"}))
	d.reply(protocol.Success([]byte("GIF89a")))
	before := m.Image.Get()

	require.NoError(t, b.Send(protocol.Request{Notation: ""}))
	d.reply(protocol.Failure("empty game"))

	assert.Equal(t, "empty game", m.Error.Get())
	assert.Equal(t, before, m.Image.Get())
}

func TestRejectPolicyReturnsBusy(t *testing.T) {
	d := &fakeDispatcher{}
	m := newMirror(t)
	m.EditNotation("1. e4")
	b := New(d, m, logging.NewNop())

	assert.True(t, b.Ready())
	require.NoError(t, b.SendCurrent())
	assert.False(t, b.Ready())
	assert.ErrorIs(t, b.SendCurrent(), ErrBusy)
	assert.Len(t, d.requests, 1)

	d.reply(protocol.Failure("empty game"))
	assert.True(t, b.Ready())
	require.NoError(t, b.SendCurrent())
}

func TestQueuePolicyForwardsOverlappingSends(t *testing.T) {
	d := &fakeDispatcher{}
	m := newMirror(t)
	m.EditNotation("1. e4")
	b := New(d, m, logging.NewNop(), WithPolicy(PolicyQueue))

	require.NoError(t, b.SendCurrent())
	require.NoError(t, b.SendCurrent())
	assert.Len(t, d.requests, 2)
	assert.True(t, b.Ready())

	d.reply(protocol.Success([]byte("a")))
	assert.True(t, m.Pending.Get())
	d.reply(protocol.Success([]byte("b")))
	assert.False(t, m.Pending.Get())
}

func TestPendingCellTracksOverlappingSettle(t *testing.T) {
	req := protocol.Request{Notation: "1. e4", DarkColor: "#000000", LightColor: "#ffffff"}
	for range 200 {
		d := &fakeDispatcher{}
		m := newMirror(t)
		b := New(d, m, logging.NewNop(), WithPolicy(PolicyQueue))
		require.NoError(t, b.Send(req))

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			d.reply(protocol.Failure("empty game"))
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, b.Send(req))
		}()
		wg.Wait()

		require.True(t, b.Pending())
		require.True(t, m.Pending.Get(), "pending cell cleared while a reply is outstanding")

		d.reply(protocol.Failure("empty game"))
		require.False(t, m.Pending.Get())
	}
}

func TestReadyRequiresNotation(t *testing.T) {
	b := New(&fakeDispatcher{}, newMirror(t), logging.NewNop())
	assert.False(t, b.Ready())
	b.Mirror().EditNotation("   ")
	assert.False(t, b.Ready())
}

func TestSubmitErrorClearsPending(t *testing.T) {
	d := &fakeDispatcher{submitErr: worker.ErrStopped}
	m := newMirror(t)
	b := New(d, m, logging.NewNop())

	err := b.Send(protocol.Request{Notation: "1. e4"})
	assert.ErrorIs(t, err, worker.ErrStopped)
	assert.False(t, m.Pending.Get())
	assert.False(t, b.Pending())
}

func TestCloseUnregisters(t *testing.T) {
	d := &fakeDispatcher{}
	b := New(d, newMirror(t), logging.NewNop())
	b.Close()
	b.Close()
	assert.True(t, d.removed)
	assert.ErrorIs(t, b.Send(protocol.Request{}), ErrClosed)
}

func TestParsePolicy(t *testing.T) {
	for input, want := range map[string]Policy{"": PolicyReject, "reject": PolicyReject, "Queue": PolicyQueue} {
		got, err := ParsePolicy(input)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParsePolicy("race")
	assert.Error(t, err)
}

func TestBridgeWithWorkerSession(t *testing.T) {
	conv := engine.Func(func(_ context.Context, notation string, _ engine.Config) ([]byte, error) {
		if notation == "" {
			return nil, engine.NewError("empty game")
		}
		return []byte("GIF89a" + notation), nil
	})
	session := worker.NewSession(conv, logging.NewNop())
	require.NoError(t, session.Start(context.Background()))
	t.Cleanup(session.Stop)

	replies := make(chan worker.Reply, 4)
	m := newMirror(t)
	b := New(session, m, logging.NewNop(), WithPolicy(PolicyQueue), WithObserver(func(r worker.Reply) {
		replies <- r
	}))
	t.Cleanup(b.Close)

	require.NoError(t, b.Send(protocol.Request{Notation: "1. e4 e5", DarkColor: "#000000", LightColor: "#ffffff"}))
	require.NoError(t, b.Send(protocol.Request{Notation: "", DarkColor: "#000000", LightColor: "#ffffff"}))
	require.NoError(t, b.Send(protocol.Request{Notation: "1. d4", DarkColor: "bogus", LightColor: "#ffffff"}))

	var got []protocol.Response
	for range 3 {
		select {
		case r := <-replies:
			got = append(got, r.Response)
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for replies")
		}
	}
	require.Len(t, got, 3)
	assert.Equal(t, "GIF89a1. e4 e5", string(got[0].Data))
	assert.Equal(t, "empty game", got[1].Message)
	assert.Equal(t, "invalid color: bogus", got[2].Message)

	assert.Equal(t, []byte("GIF89a1. e4 e5"), m.Image.Get().Data)
	assert.Equal(t, "invalid color: bogus", m.Error.Get())
	assert.False(t, m.Pending.Get())
}

func TestDataURLUnpadded(t *testing.T) {
	assert.Equal(t, "data:image/gif;base64,R0lGODlh", DataURL([]byte("GIF89a")))
	assert.Equal(t, "data:image/gif;base64,R0k", DataURL([]byte("GI")))
}
