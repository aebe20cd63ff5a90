package comm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/golang/glog"
	"github.com/gorilla/websocket"
)

// HandlerFunc answers one request method.
type HandlerFunc func(ctx context.Context, params json.RawMessage) (any, error)

// Server answers requests arriving on any number of attached channels and
// broadcasts events to them.
type Server struct {
	upgrader websocket.Upgrader

	mu       sync.RWMutex
	handlers map[string]HandlerFunc
	channels map[*attachment]struct{}
}

type attachment struct {
	ch Channel
}

func NewServer() *Server {
	return &Server{
		handlers: make(map[string]HandlerFunc),
		channels: make(map[*attachment]struct{}),
	}
}

// Handle registers fn for method, replacing any earlier handler.
func (s *Server) Handle(method string, fn HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[method] = fn
}

// Attach starts answering requests on ch until the returned function is
// called.
func (s *Server) Attach(ctx context.Context, ch Channel) (detach func()) {
	a := &attachment{ch: ch}

	s.mu.Lock()
	s.channels[a] = struct{}{}
	s.mu.Unlock()

	unsubscribe := ch.OnMessage(func(env *Envelope) {
		s.serveRequest(ctx, ch, env)
	})

	var once sync.Once
	return func() {
		once.Do(func() {
			unsubscribe()
			s.mu.Lock()
			delete(s.channels, a)
			s.mu.Unlock()
		})
	}
}

// Serve attaches ch and blocks until ctx is done or, for channels that
// expose Done, the channel closes.
func (s *Server) Serve(ctx context.Context, ch Channel) error {
	detach := s.Attach(ctx, ch)
	defer detach()

	var closed <-chan struct{}
	if d, ok := ch.(interface{ Done() <-chan struct{} }); ok {
		closed = d.Done()
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-closed:
		return nil
	}
}

// Notify sends an event to every attached channel.
func (s *Server) Notify(ctx context.Context, event string, params any) error {
	env, err := NewEvent(event, params)
	if err != nil {
		return err
	}

	s.mu.RLock()
	targets := make([]Channel, 0, len(s.channels))
	for a := range s.channels {
		targets = append(targets, a.ch)
	}
	s.mu.RUnlock()

	var errs []error
	for _, ch := range targets {
		if err := ch.Send(ctx, env); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ServeHTTP upgrades the request to a websocket and serves it until the
// connection closes.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		glog.Warningf("[server]upgrade %s error = %s\n", r.RemoteAddr, err)
		return
	}
	glog.Infof("[server]connected %s\n", r.RemoteAddr)

	ch := NewWebSocketChannel(conn)
	defer ch.Close()
	s.Serve(r.Context(), ch)
	glog.Infof("[server]disconnected %s\n", r.RemoteAddr)
}

func (s *Server) serveRequest(ctx context.Context, ch Channel, env *Envelope) {
	if env.Kind() != KindRequest {
		glog.V(2).Infof("[server]ignore %s %s\n", env.Kind(), env.Method)
		return
	}
	glog.V(2).Infof("[server]%s id=%s\n", env.Method, env.ID)

	s.mu.RLock()
	fn, ok := s.handlers[env.Method]
	s.mu.RUnlock()

	var reply *Envelope
	if !ok {
		reply = NewErrorResponse(env.ID, Errorf(CodeMethodNotFound, "method not found: %s", env.Method))
	} else {
		result, err := fn(ctx, env.Params)
		if err != nil {
			reply = NewErrorResponse(env.ID, toRemoteError(err))
		} else if reply, err = NewResult(env.ID, result); err != nil {
			reply = NewErrorResponse(env.ID, Errorf(CodeInternalError, "%s", err))
		}
	}

	if err := ch.Send(ctx, reply); err != nil {
		glog.Infof("[server]reply %s id=%s error = %s\n", env.Method, env.ID, err)
	}
}

func toRemoteError(err error) *RemoteError {
	var rerr *RemoteError
	if errors.As(err, &rerr) {
		return rerr
	}
	return Errorf(CodeInternalError, "%s", err)
}
