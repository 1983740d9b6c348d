package wire

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"

	"github.com/pawdiary/pawdiary/internal/domain/editor"
	"github.com/pawdiary/pawdiary/internal/transport"
)

const writeTimeout = 5 * time.Second

// sessionResult is implemented by handler results that carry an editor session.
type sessionResult interface {
	SessionID() string
}

// Handler serves editor sessions over WebSocket. Requests are dispatched to
// the method handler; session events are pushed as they happen.
type Handler struct {
	rpc     transport.RPCHandler
	editors *editor.Manager
	origins []string
	logger  *slog.Logger
}

// NewHandler creates a WebSocket handler. allowedOrigins are CORS-style
// origins; an empty list accepts same-origin requests only.
func NewHandler(rpc transport.RPCHandler, editors *editor.Manager, allowedOrigins []string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Handler{
		rpc:     rpc,
		editors: editors,
		origins: originPatterns(allowedOrigins),
		logger:  logger,
	}
}

// originPatterns turns origins such as http://localhost:1420 into the host
// patterns websocket.Accept matches against.
func originPatterns(origins []string) []string {
	var out []string
	for _, o := range origins {
		if o == "*" {
			out = append(out, "*")
			continue
		}
		u, err := url.Parse(o)
		if err != nil || u.Host == "" {
			continue
		}
		out = append(out, u.Host)
	}
	return out
}

// conn is one WebSocket connection and the sessions it opened.
type conn struct {
	id       string
	tenantID string
	ws       *websocket.Conn
	logger   *slog.Logger

	mu       sync.Mutex
	current  string
	sessions map[string]bool
}

// ServeHTTP upgrades to WebSocket and runs the message loop.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	tenantID, ok := transport.TenantFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.origins,
	})
	if err != nil {
		h.logger.Warn("websocket accept failed", "error", err)
		return
	}
	defer ws.CloseNow()

	id := uuid.NewString()
	c := &conn{
		id:       id,
		tenantID: tenantID,
		ws:       ws,
		logger:   h.logger.With("conn", id, "tenant_id", tenantID),
		sessions: make(map[string]bool),
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	defer h.closeSessions(c)

	c.logger.Debug("editor connection opened")
	c.send(ctx, ServerMessage{Type: TypeConnected, Data: ConnectedData{ConnectionID: c.id}})

	for {
		var msg ClientMessage
		if err := wsjson.Read(ctx, ws, &msg); err != nil {
			if status := websocket.CloseStatus(err); status != -1 {
				c.logger.Debug("editor connection closed", "status", status)
			} else if !errors.Is(err, context.Canceled) {
				c.logger.Debug("editor connection read failed", "error", err)
			}
			return
		}

		if msg.Type == TypePing {
			c.send(ctx, ServerMessage{Type: TypePong, RequestID: msg.ID})
			continue
		}
		method, ok := methods[msg.Type]
		if !ok {
			c.sendError(ctx, msg.ID, "UNKNOWN_TYPE", fmt.Sprintf("unknown message type: %s", msg.Type), nil)
			continue
		}
		h.dispatch(ctx, c, msg, method)
	}
}

func (h *Handler) dispatch(ctx context.Context, c *conn, msg ClientMessage, method string) {
	result, err := h.rpc.Handle(ctx, c.tenantID, c.currentSession(), method, msg.Data)
	if err != nil {
		var coded transport.CodedError
		if errors.As(err, &coded) {
			c.sendError(ctx, msg.ID, coded.CodeValue(), coded.MessageValue(), coded.DetailsValue())
			return
		}
		c.logger.Error("editor request failed", "method", method, "error", err)
		c.sendError(ctx, msg.ID, "INTERNAL", "internal error", nil)
		return
	}

	switch msg.Type {
	case TypeOpen:
		if sr, ok := result.(sessionResult); ok {
			h.attach(ctx, c, sr.SessionID())
		}
	case TypeClose:
		c.forget(sessionParam(msg.Data, c.currentSession()))
	}
	c.send(ctx, ServerMessage{Type: TypeResult, RequestID: msg.ID, Data: result})
}

// attach makes id the connection's current session and forwards its events.
func (h *Handler) attach(ctx context.Context, c *conn, id string) {
	s, err := h.editors.GetOwned(id, c.tenantID)
	if err != nil {
		c.logger.Warn("opened session not found", "session", id, "error", err)
		return
	}
	c.mu.Lock()
	c.current = id
	c.sessions[id] = true
	c.mu.Unlock()

	s.SetListener(func(ev editor.Event) {
		if ctx.Err() != nil {
			return
		}
		c.send(ctx, ServerMessage{Type: TypeEvent, Data: ev})
	})
}

// closeSessions flushes drafts and closes every session the connection opened.
func (h *Handler) closeSessions(c *conn) {
	c.mu.Lock()
	ids := make([]string, 0, len(c.sessions))
	for id := range c.sessions {
		ids = append(ids, id)
	}
	c.sessions = map[string]bool{}
	c.mu.Unlock()

	for _, id := range ids {
		params, _ := json.Marshal(map[string]string{"session_id": id})
		if _, err := h.rpc.Handle(context.Background(), c.tenantID, "", methods[TypeClose], params); err != nil {
			if !isSessionGone(err) {
				c.logger.Warn("failed to close editor session", "session", id, "error", err)
			}
		}
	}
	c.logger.Debug("editor connection released", "sessions", len(ids))
}

func isSessionGone(err error) bool {
	if errors.Is(err, editor.ErrSessionNotFound) {
		return true
	}
	var coded transport.CodedError
	return errors.As(err, &coded) && coded.CodeValue() == "EDITOR_SESSION_NOT_FOUND"
}

func sessionParam(data json.RawMessage, fallback string) string {
	var p struct {
		SessionID string `json:"session_id"`
	}
	if len(data) > 0 && json.Unmarshal(data, &p) == nil && p.SessionID != "" {
		return p.SessionID
	}
	return fallback
}

func (c *conn) currentSession() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *conn) forget(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.sessions, id)
	if c.current == id {
		c.current = ""
	}
}

func (c *conn) send(ctx context.Context, msg ServerMessage) {
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	if err := wsjson.Write(ctx, c.ws, msg); err != nil {
		c.logger.Debug("editor write failed", "type", msg.Type, "error", err)
	}
}

func (c *conn) sendError(ctx context.Context, requestID, code, message string, details any) {
	c.send(ctx, ServerMessage{
		Type:      TypeError,
		RequestID: requestID,
		Data: ErrorData{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}
