package comm

import (
	"context"
	"errors"
	"sync"
)

// Channel is a bidirectional message channel. Messages sent on one end are
// delivered to the handlers registered on the other.
type Channel interface {
	Send(ctx context.Context, env *Envelope) error
	// OnMessage registers a handler for incoming messages and returns a
	// function that removes it.
	OnMessage(handler func(*Envelope)) (unsubscribe func())
}

// ErrChannelClosed is returned by Send on a closed channel.
var ErrChannelClosed = errors.New("comm: channel closed")

// listenerSet is an ordered list of callbacks. Dispatch iterates a snapshot,
// so callbacks may subscribe or unsubscribe while being called without
// affecting the current pass.
type listenerSet[T any] struct {
	mu        sync.Mutex
	nextID    int
	listeners []listener[T]
}

type listener[T any] struct {
	id int
	fn func(T)
}

func (s *listenerSet[T]) add(fn func(T)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners = append(s.listeners, listener[T]{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, l := range s.listeners {
				if l.id == id {
					s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

func (s *listenerSet[T]) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.listeners)
}

func (s *listenerSet[T]) dispatch(v T) {
	s.mu.Lock()
	fns := make([]func(T), len(s.listeners))
	for i, l := range s.listeners {
		fns[i] = l.fn
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}

// PipeEnd is one end of an in-memory channel created by NewPipe.
type PipeEnd struct {
	handlers listenerSet[*Envelope]
	peer     *PipeEnd

	mu     sync.Mutex
	closed bool
}

// NewPipe returns two connected channel ends. Send on one end calls the
// other end's handlers synchronously on the sending goroutine.
func NewPipe() (*PipeEnd, *PipeEnd) {
	a, b := &PipeEnd{}, &PipeEnd{}
	a.peer, b.peer = b, a
	return a, b
}

// Send delivers env to the peer's handlers.
func (p *PipeEnd) Send(ctx context.Context, env *Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.isClosed() || p.peer.isClosed() {
		return ErrChannelClosed
	}
	p.peer.handlers.dispatch(env)
	return nil
}

// OnMessage registers a handler for messages sent by the peer.
func (p *PipeEnd) OnMessage(handler func(*Envelope)) func() {
	return p.handlers.add(handler)
}

// Close shuts this end. Sends in either direction fail afterwards.
func (p *PipeEnd) Close() error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	return nil
}

func (p *PipeEnd) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}
