package comm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/go-playground/assert/v2"
)

// peer captures the requests a client sends and lets a test answer them by
// hand.
type peer struct {
	end *PipeEnd

	mu       sync.Mutex
	requests []*Envelope
}

func newPeer(t *testing.T, opts ...Option) (*Client, *peer) {
	t.Helper()
	a, b := NewPipe()
	p := &peer{end: b}
	b.OnMessage(func(env *Envelope) {
		p.mu.Lock()
		p.requests = append(p.requests, env)
		p.mu.Unlock()
	})
	c := NewClient(a, opts...)
	t.Cleanup(func() { c.Close() })
	return c, p
}

func (p *peer) request(i int) *Envelope {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.requests[i]
}

func (p *peer) reply(t *testing.T, id string, result any) {
	t.Helper()
	env, err := NewResult(id, result)
	assert.Equal(t, err, nil)
	assert.Equal(t, p.end.Send(context.Background(), env), nil)
}

func (p *peer) fail(t *testing.T, id string, rerr *RemoteError) {
	t.Helper()
	assert.Equal(t, p.end.Send(context.Background(), NewErrorResponse(id, rerr)), nil)
}

func (p *peer) emit(t *testing.T, name string, params any) {
	t.Helper()
	env, err := NewEvent(name, params)
	assert.Equal(t, err, nil)
	assert.Equal(t, p.end.Send(context.Background(), env), nil)
}

func sequentialIDs() Option {
	n := 0
	return WithIDGenerator(func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	})
}

func TestPerformCallParamMismatch(t *testing.T) {
	c, p := newPeer(t)

	_, err := c.PerformCall(context.Background(), "list_objects", []string{"path", "extra"}, []any{1})
	assert.Equal(t, errors.Is(err, ErrParamMismatch), true)
	assert.Equal(t, len(p.requests), 0)
	assert.Equal(t, c.Pending(), 0)
}

func TestPerformCallWireFormat(t *testing.T) {
	c, p := newPeer(t, sequentialIDs())

	call, err := c.PerformCall(context.Background(), "list_objects", []string{"path"}, []any{[]string{"db"}})
	assert.Equal(t, err, nil)
	assert.Equal(t, call.ID(), "id-1")
	assert.Equal(t, c.Pending(), 1)

	req := p.request(0)
	assert.Equal(t, req.Kind(), KindRequest)
	assert.Equal(t, req.Version, "2.0")
	assert.Equal(t, req.ID, "id-1")
	assert.Equal(t, req.Method, "list_objects")
	assert.Equal(t, string(req.Params), `{"path":["db"]}`)
}

func TestDefaultIDsAreUnique(t *testing.T) {
	c, p := newPeer(t)

	for i := 0; i < 3; i++ {
		_, err := c.PerformCall(context.Background(), "ping", nil, nil)
		assert.Equal(t, err, nil)
	}
	seen := map[string]bool{}
	for i := 0; i < 3; i++ {
		id := p.request(i).ID
		assert.Equal(t, seen[id], false)
		assert.Equal(t, len(id), 26)
		seen[id] = true
	}
}

func TestCallResolvesWithResult(t *testing.T) {
	c, p := newPeer(t)
	ctx := context.Background()

	call, err := c.PerformCall(ctx, "get_icon", []string{"path"}, []any{"x"})
	assert.Equal(t, err, nil)

	p.reply(t, call.ID(), "icon.png")

	select {
	case <-call.Done():
	default:
		t.Fatal("call should be resolved")
	}
	raw, err := call.Wait(ctx)
	assert.Equal(t, err, nil)
	assert.Equal(t, string(raw), `"icon.png"`)
	assert.Equal(t, c.Pending(), 0)
}

func TestOutOfOrderResponses(t *testing.T) {
	c, p := newPeer(t)
	ctx := context.Background()

	first, _ := c.PerformCall(ctx, "a", nil, nil)
	second, _ := c.PerformCall(ctx, "b", nil, nil)

	p.reply(t, second.ID(), 2)
	p.reply(t, first.ID(), 1)

	r1, err := first.Wait(ctx)
	assert.Equal(t, err, nil)
	assert.Equal(t, string(r1), "1")
	r2, err := second.Wait(ctx)
	assert.Equal(t, err, nil)
	assert.Equal(t, string(r2), "2")
}

func TestRemoteErrorIsReturnedVerbatim(t *testing.T) {
	c, p := newPeer(t)
	ctx := context.Background()

	call, _ := c.PerformCall(ctx, "list_fields", []string{"path"}, []any{nil})
	p.fail(t, call.ID(), &RemoteError{Code: -32602, Message: "bad path", Data: json.RawMessage(`{"path":[]}`)})

	_, err := call.Wait(ctx)
	var rerr *RemoteError
	assert.Equal(t, errors.As(err, &rerr), true)
	assert.Equal(t, rerr.Code, -32602)
	assert.Equal(t, rerr.Message, "bad path")
	assert.Equal(t, string(rerr.Data), `{"path":[]}`)
}

func TestNullResult(t *testing.T) {
	c, p := newPeer(t)
	ctx := context.Background()

	call, _ := c.PerformCall(ctx, "preview_object", nil, nil)
	p.reply(t, call.ID(), nil)

	raw, err := call.Wait(ctx)
	assert.Equal(t, err, nil)
	assert.Equal(t, string(raw), "null")
}

func TestUnmatchedResponseIsDropped(t *testing.T) {
	c, p := newPeer(t)
	ctx := context.Background()

	call, _ := c.PerformCall(ctx, "a", nil, nil)
	p.reply(t, "no-such-id", "stray")

	assert.Equal(t, c.Pending(), 1)
	select {
	case <-call.Done():
		t.Fatal("stray response must not resolve another call")
	default:
	}
}

func TestWaitCancellation(t *testing.T) {
	c, p := newPeer(t)

	call, err := c.PerformCall(context.Background(), "slow", nil, nil)
	assert.Equal(t, err, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = call.Wait(ctx)
	assert.Equal(t, errors.Is(err, context.DeadlineExceeded), true)
	assert.Equal(t, c.Pending(), 0)

	// A late response is dropped and does not change the outcome.
	p.reply(t, call.ID(), "late")
	_, err = call.Wait(context.Background())
	assert.Equal(t, errors.Is(err, context.DeadlineExceeded), true)
}

func TestSendFailureRemovesPendingEntry(t *testing.T) {
	c, p := newPeer(t)
	p.end.Close()

	_, err := c.PerformCall(context.Background(), "a", nil, nil)
	assert.Equal(t, errors.Is(err, ErrChannelClosed), true)
	assert.Equal(t, c.Pending(), 0)
}

func TestCloseRejectsPendingCalls(t *testing.T) {
	c, p := newPeer(t)
	ctx := context.Background()

	call, _ := c.PerformCall(ctx, "a", nil, nil)
	assert.Equal(t, c.Close(), nil)

	_, err := call.Wait(ctx)
	assert.Equal(t, errors.Is(err, ErrClosed), true)

	_, err = c.PerformCall(ctx, "b", nil, nil)
	assert.Equal(t, errors.Is(err, ErrClosed), true)

	// Detached: a response no longer reaches the client.
	p.reply(t, call.ID(), "late")
	assert.Equal(t, c.Close(), nil)
}

func TestTypedCall(t *testing.T) {
	c, p := newPeer(t)
	p.end.OnMessage(func(env *Envelope) {
		if env.Kind() == KindRequest {
			p.reply(t, env.ID, []map[string]string{{"name": "db", "kind": "database"}})
		}
	})

	type object struct {
		Name string `json:"name"`
		Kind string `json:"kind"`
	}
	got, err := Call[[]object](context.Background(), c, "list_objects", []string{"path"}, []any{[]any{}})
	assert.Equal(t, err, nil)
	assert.Equal(t, got, []object{{Name: "db", Kind: "database"}})
}

func TestTypedCallDecodeError(t *testing.T) {
	c, p := newPeer(t)
	p.end.OnMessage(func(env *Envelope) {
		if env.Kind() == KindRequest {
			p.reply(t, env.ID, "not a bool")
		}
	})

	_, err := Call[bool](context.Background(), c, "contains_data", nil, nil)
	assert.NotEqual(t, err, nil)
}

func TestCreateEventEmitterReturnsSameEmitter(t *testing.T) {
	c, _ := newPeer(t)

	a := c.CreateEventEmitter("focus", nil)
	b := c.CreateEventEmitter("focus", []string{"ignored"})
	assert.Equal(t, a == b, true)
	assert.Equal(t, a.Name(), "focus")
}

func TestEventDispatchOrder(t *testing.T) {
	c, p := newPeer(t)
	em := c.CreateEventEmitter("update", nil)

	var order []int
	em.Subscribe(func(Event) { order = append(order, 1) })
	em.Subscribe(func(Event) { order = append(order, 2) })
	em.Subscribe(func(Event) { order = append(order, 3) })

	p.emit(t, "update", nil)
	assert.Equal(t, order, []int{1, 2, 3})
}

func TestSubscribeDuringDispatch(t *testing.T) {
	c, p := newPeer(t)
	em := c.CreateEventEmitter("update", nil)

	calls := 0
	var unsubscribeSelf func()
	unsubscribeSelf = em.Subscribe(func(Event) {
		calls++
		unsubscribeSelf()
		em.Subscribe(func(Event) { calls += 10 })
	})

	p.emit(t, "update", nil)
	assert.Equal(t, calls, 1)

	p.emit(t, "update", nil)
	assert.Equal(t, calls, 11)
}

func TestUnsubscribe(t *testing.T) {
	c, p := newPeer(t)
	em := c.CreateEventEmitter("focus", nil)

	calls := 0
	unsubscribe := em.Subscribe(func(Event) { calls++ })
	p.emit(t, "focus", nil)
	unsubscribe()
	unsubscribe()
	p.emit(t, "focus", nil)

	assert.Equal(t, calls, 1)
	assert.Equal(t, em.Listeners(), 0)
}

func TestEventMissingFieldsStillDelivered(t *testing.T) {
	c, p := newPeer(t)
	em := c.CreateEventEmitter("focus", []string{"path"})

	var got []Event
	em.Subscribe(func(ev Event) { got = append(got, ev) })

	p.emit(t, "focus", map[string]any{"other": 1})
	assert.Equal(t, len(got), 1)
	assert.Equal(t, string(got[0].Params["other"]), "1")
}

func TestEventDecode(t *testing.T) {
	c, p := newPeer(t)
	em := c.CreateEventEmitter("focus", []string{"path"})

	type focus struct {
		Path []string `json:"path"`
	}
	var got focus
	em.Subscribe(func(ev Event) {
		assert.Equal(t, ev.Decode(&got), nil)
	})

	p.emit(t, "focus", map[string]any{"path": []string{"db", "t"}})
	assert.Equal(t, got.Path, []string{"db", "t"})
}

func TestEventWithoutEmitterIsIgnored(t *testing.T) {
	c, p := newPeer(t)
	p.emit(t, "nobody-listens", nil)
	assert.Equal(t, c.Pending(), 0)
}
