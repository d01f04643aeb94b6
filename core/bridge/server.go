// Package bridge exposes a session to a renderer process over websockets.
//
// Every connected client receives every event of every call, in order. A
// client may start calls, cancel the call in flight, clear the history and
// request a history snapshot.
package bridge

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	orchestration "github.com/jimli1231/eletron-vrm/core"
	"github.com/jimli1231/eletron-vrm/core/events"
	"github.com/jimli1231/eletron-vrm/core/llms"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	defaultSendBuffer   = 256
	defaultWriteTimeout = 5 * time.Second
)

// Controller is the session control surface the renderer can drive.
type Controller interface {
	StartCall(ctx context.Context, text string) error
	Cancel()
	ClearHistory()
	History() []llms.Turn
}

type Server struct {
	upgrader     websocket.Upgrader
	baseContext  context.Context
	sendBuffer   int
	writeTimeout time.Duration

	mu         sync.Mutex
	controller Controller
	clients    map[*client]struct{}
}

type ServerOption func(*Server)

// WithContext sets the context calls started by the renderer derive from.
func WithContext(ctx context.Context) ServerOption {
	return func(s *Server) { s.baseContext = ctx }
}

// WithSendBuffer sets how many messages may queue for a client before it is
// considered too slow and disconnected.
func WithSendBuffer(size int) ServerOption {
	return func(s *Server) {
		if size > 0 {
			s.sendBuffer = size
		}
	}
}

// WithCheckOrigin restricts which origins may connect. All origins are
// accepted by default since the renderer loads from a local file.
func WithCheckOrigin(check func(r *http.Request) bool) ServerOption {
	return func(s *Server) { s.upgrader.CheckOrigin = check }
}

func NewServer(opts ...ServerOption) *Server {
	s := &Server{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		baseContext:  context.Background(),
		sendBuffer:   defaultSendBuffer,
		writeTimeout: defaultWriteTimeout,
		clients:      map[*client]struct{}{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Bind attaches the session driven by inbound messages. Until a controller
// is bound, inbound requests are answered with an error.
func (s *Server) Bind(controller Controller) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.controller = controller
}

// Publish forwards an event to every connected client. It never blocks on a
// client, clients whose queue is full are disconnected.
func (s *Server) Publish(event events.Event) {
	message, ok, err := toMessage(event)
	if err != nil {
		logger.Warn("failed to encode event for the renderer", "kind", event.Kind(), "error", err)
		return
	}
	if !ok {
		return
	}
	s.broadcast(message)
}

func (s *Server) broadcast(message Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for c := range s.clients {
		if !c.enqueue(message) {
			logger.Warn("renderer client too slow, disconnecting", "remote", c.remote)
			s.removeLocked(c)
		}
	}
}

// Clients returns the number of connected clients.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	c := &client{
		conn:   conn,
		remote: r.RemoteAddr,
		send:   make(chan Message, s.sendBuffer),
		done:   make(chan struct{}),
	}
	s.mu.Lock()
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	logger.Info("renderer connected", "remote", c.remote)

	go c.writeLoop(s.writeTimeout)
	s.readLoop(c)

	s.mu.Lock()
	s.removeLocked(c)
	s.mu.Unlock()
	logger.Info("renderer disconnected", "remote", c.remote)
}

func (s *Server) removeLocked(c *client) {
	if _, ok := s.clients[c]; !ok {
		return
	}
	delete(s.clients, c)
	c.close()
}

func (s *Server) readLoop(c *client) {
	for {
		var message Message
		if err := c.conn.ReadJSON(&message); err != nil {
			var (
				syntaxErr *json.SyntaxError
				typeErr   *json.UnmarshalTypeError
			)
			if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
				logger.Warn("ignoring malformed renderer message", "remote", c.remote, "error", err)
				continue
			}
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Debug("renderer connection closed", "remote", c.remote, "error", err)
			}
			return
		}
		s.handle(c, message)
	}
}

func (s *Server) handle(c *client, message Message) {
	_, span := tracer.Start(s.baseContext, "handle renderer message")
	defer span.End()
	span.SetAttributes(attribute.String("message.channel", message.Channel))

	s.mu.Lock()
	controller := s.controller
	s.mu.Unlock()
	if controller == nil {
		span.SetStatus(codes.Error, "no session bound")
		s.reply(c, ChannelError, "no session bound")
		return
	}

	switch message.Channel {
	case ChannelSend:
		var text string
		if err := json.Unmarshal(message.Payload, &text); err != nil || text == "" {
			span.SetStatus(codes.Error, "invalid chat:send payload")
			s.reply(c, ChannelError, "chat:send expects a non-empty string payload")
			return
		}
		go s.startCall(c, controller, text)
	case ChannelClear:
		controller.ClearHistory()
	case ChannelCancel:
		controller.Cancel()
	case ChannelHistory:
		response, err := historyMessage(controller.History())
		if err != nil {
			span.RecordError(err)
			return
		}
		c.enqueue(response)
	default:
		logger.Debug("ignoring message on unknown channel", "channel", message.Channel)
	}
}

// startCall runs the call on its own goroutine since StartCall blocks until
// the reply is complete. Events reach the renderer through Publish; only a
// rejected call is answered here, to the client that asked.
func (s *Server) startCall(c *client, controller Controller, text string) {
	err := controller.StartCall(s.baseContext, text)
	if err == nil {
		return
	}
	if !c.isClosed() && errors.Is(err, orchestration.ErrCallInFlight) {
		s.reply(c, ChannelError, err.Error())
	}
}

func (s *Server) reply(c *client, channel, text string) {
	message, err := newMessage(channel, "", text)
	if err != nil {
		return
	}
	c.enqueue(message)
}
