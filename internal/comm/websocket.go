package comm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/gorilla/websocket"
)

const closeTimeout = time.Second

// WebSocketChannel is a Channel over a websocket connection carrying one
// JSON envelope per text frame.
type WebSocketChannel struct {
	conn     *websocket.Conn
	handlers listenerSet[*Envelope]

	writeMu sync.Mutex

	closeOnce sync.Once
	done      chan struct{}
	mu        sync.Mutex
	err       error
}

// DialWebSocket connects to url and starts reading.
func DialWebSocket(ctx context.Context, url string, header http.Header) (*WebSocketChannel, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, header)
	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", url, err)
	}
	return NewWebSocketChannel(conn), nil
}

// NewWebSocketChannel wraps an established connection and starts its read
// loop. Handlers are called on the read goroutine.
func NewWebSocketChannel(conn *websocket.Conn) *WebSocketChannel {
	w := &WebSocketChannel{
		conn: conn,
		done: make(chan struct{}),
	}
	go w.readLoop()
	return w
}

func (w *WebSocketChannel) readLoop() {
	defer close(w.done)

	for {
		messageType, message, err := w.conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				glog.Infof("[ws]%s<- error = %s\n", w.conn.RemoteAddr(), err)
			}
			w.setErr(err)
			return
		}
		if messageType != websocket.TextMessage {
			glog.V(2).Infof("[ws]other=%d %s<-\n", messageType, w.conn.RemoteAddr())
			continue
		}

		var env Envelope
		if err := json.Unmarshal(message, &env); err != nil {
			glog.V(1).Infof("[ws]drop malformed frame %s<- = %s\n", w.conn.RemoteAddr(), err)
			continue
		}
		glog.V(2).Infof("[ws]%s %s<-\n", env.Kind(), w.conn.RemoteAddr())
		w.handlers.dispatch(&env)
	}
}

// Send writes env as one text frame. The ctx deadline, if any, bounds the
// write.
func (w *WebSocketChannel) Send(ctx context.Context, env *Envelope) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-w.done:
		return ErrChannelClosed
	default:
	}

	message, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to encode envelope: %w", err)
	}

	w.writeMu.Lock()
	defer w.writeMu.Unlock()

	deadline, _ := ctx.Deadline()
	w.conn.SetWriteDeadline(deadline)
	if err := w.conn.WriteMessage(websocket.TextMessage, message); err != nil {
		glog.Infof("[ws]%s-> error = %s\n", w.conn.RemoteAddr(), err)
		return err
	}
	glog.V(2).Infof("[ws]%s %s->\n", env.Kind(), w.conn.RemoteAddr())
	return nil
}

// OnMessage registers a handler for incoming envelopes.
func (w *WebSocketChannel) OnMessage(handler func(*Envelope)) func() {
	return w.handlers.add(handler)
}

// Done is closed when the read loop exits.
func (w *WebSocketChannel) Done() <-chan struct{} {
	return w.done
}

// Err returns the error that ended the read loop, if any.
func (w *WebSocketChannel) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

func (w *WebSocketChannel) setErr(err error) {
	w.mu.Lock()
	w.err = err
	w.mu.Unlock()
}

// Close sends a close frame and closes the connection.
func (w *WebSocketChannel) Close() error {
	var err error
	w.closeOnce.Do(func() {
		w.writeMu.Lock()
		w.conn.WriteControl(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(closeTimeout),
		)
		w.writeMu.Unlock()
		err = w.conn.Close()
	})
	return err
}
