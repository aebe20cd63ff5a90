package comm

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/golang/glog"
	"github.com/oklog/ulid/v2"
)

// Client issues correlated calls and receives named events over a shared
// Channel. The client does not own the channel; Close only detaches from it.
type Client struct {
	ch          Channel
	unsubscribe func()
	newID       func() string

	mu       sync.Mutex
	pending  map[string]*PendingCall
	emitters map[string]*Emitter
	closed   bool
}

// Option configures a Client.
type Option func(*Client)

// WithIDGenerator replaces the ULID correlation id generator.
func WithIDGenerator(gen func() string) Option {
	return func(c *Client) {
		c.newID = gen
	}
}

// NewClient attaches a client to ch.
func NewClient(ch Channel, opts ...Option) *Client {
	c := &Client{
		ch:       ch,
		newID:    func() string { return ulid.Make().String() },
		pending:  make(map[string]*PendingCall),
		emitters: make(map[string]*Emitter),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.unsubscribe = ch.OnMessage(c.handleMessage)
	return c
}

// PendingCall is the handle of a sent request. It resolves exactly once.
type PendingCall struct {
	id     string
	client *Client

	once   sync.Once
	done   chan struct{}
	result json.RawMessage
	err    error
}

// ID returns the correlation id of the call.
func (p *PendingCall) ID() string {
	return p.id
}

// Done is closed when the call resolves.
func (p *PendingCall) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the call resolves or ctx is done. On cancellation the
// call is forgotten locally and ctx.Err() is returned; a response that
// arrives afterwards is dropped.
func (p *PendingCall) Wait(ctx context.Context) (json.RawMessage, error) {
	select {
	case <-p.done:
		return p.result, p.err
	case <-ctx.Done():
	}

	if p.client.take(p.id) != nil {
		p.resolve(nil, ctx.Err())
	}
	// Either we resolved it above or the resolver already removed it and is
	// about to close done.
	<-p.done
	return p.result, p.err
}

func (p *PendingCall) resolve(result json.RawMessage, err error) {
	p.once.Do(func() {
		p.result = result
		p.err = err
		close(p.done)
	})
}

// PerformCall sends method with params built from names and values, which
// must be the same length. The pending entry is registered before the
// request is sent.
func (c *Client) PerformCall(ctx context.Context, method string, names []string, values []any) (*PendingCall, error) {
	if len(names) != len(values) {
		return nil, fmt.Errorf("%s: %w (%d names, %d values)", method, ErrParamMismatch, len(names), len(values))
	}

	params := make(map[string]any, len(names))
	for i, name := range names {
		params[name] = values[i]
	}

	id := c.newID()
	env, err := NewRequest(id, method, params)
	if err != nil {
		return nil, err
	}

	call := &PendingCall{id: id, client: c, done: make(chan struct{})}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	c.pending[id] = call
	c.mu.Unlock()

	if err := c.ch.Send(ctx, env); err != nil {
		c.take(id)
		return nil, fmt.Errorf("failed to send %s: %w", method, err)
	}
	return call, nil
}

// Call performs a request and decodes its result into T.
func Call[T any](ctx context.Context, c *Client, method string, names []string, values []any) (T, error) {
	var out T

	call, err := c.PerformCall(ctx, method, names, values)
	if err != nil {
		return out, err
	}
	raw, err := call.Wait(ctx)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("failed to decode %s result: %w", method, err)
	}
	return out, nil
}

// CreateEventEmitter returns the emitter for the named event, creating it
// on first use. expectedFields only applies when the emitter is created.
func (c *Client) CreateEventEmitter(name string, expectedFields []string) *Emitter {
	c.mu.Lock()
	defer c.mu.Unlock()

	if em, ok := c.emitters[name]; ok {
		return em
	}
	em := &Emitter{name: name, expected: append([]string(nil), expectedFields...)}
	c.emitters[name] = em
	return em
}

// Pending returns the number of calls awaiting a response.
func (c *Client) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// Close detaches from the channel and rejects every pending call with
// ErrClosed. Later calls fail with ErrClosed.
func (c *Client) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	pending := c.pending
	c.pending = make(map[string]*PendingCall)
	c.mu.Unlock()

	c.unsubscribe()
	for _, call := range pending {
		call.resolve(nil, ErrClosed)
	}
	return nil
}

func (c *Client) take(id string) *PendingCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	call, ok := c.pending[id]
	if !ok {
		return nil
	}
	delete(c.pending, id)
	return call
}

func (c *Client) handleMessage(env *Envelope) {
	switch env.Kind() {
	case KindResponse:
		call := c.take(env.ID)
		if call == nil {
			glog.V(1).Infof("[comm]%s id=%s\n", ErrUnmatchedResponse, env.ID)
			return
		}
		if env.Error != nil {
			call.resolve(nil, env.Error)
			return
		}
		result := env.Result
		if len(result) == 0 {
			result = json.RawMessage("null")
		}
		call.resolve(result, nil)
	case KindEvent:
		c.mu.Lock()
		em := c.emitters[env.Method]
		c.mu.Unlock()
		if em != nil {
			em.emit(env)
		}
	default:
		glog.V(2).Infof("[comm]ignore %s %s\n", env.Kind(), env.Method)
	}
}
