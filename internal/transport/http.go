package transport

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
)

// RPCHandler dispatches JSON-RPC methods.
type RPCHandler interface {
	Handle(ctx context.Context, tenantID, sessionID, method string, params json.RawMessage) (any, error)
}

// CodedError is an application error with a stable code, as returned by the
// method handler.
type CodedError interface {
	error
	CodeValue() string
	MessageValue() string
	DetailsValue() any
	RecoveryHintValue() string
}

// ErrorData is the data member of an application JSON-RPC error.
type ErrorData struct {
	Code         string `json:"code"`
	Details      any    `json:"details,omitempty"`
	RecoveryHint string `json:"recovery_hint,omitempty"`
}

// Options configures the router.
type Options struct {
	// Auth authenticates every route except /health. Nil means StaticTenant(DefaultTenant).
	Auth           func(http.Handler) http.Handler
	AllowedOrigins []string
	// Editor serves the websocket editor protocol at /ws/editor when set.
	Editor http.Handler
	// MCP serves the MCP streamable HTTP endpoint at /mcp when set.
	MCP    http.Handler
	Logger *slog.Logger
}

// Server wires HTTP handlers.
type Server struct {
	handler RPCHandler
	logger  *slog.Logger
}

// NewServer creates an HTTP server router with middleware.
func NewServer(handler RPCHandler, opts Options) *chi.Mux {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	auth := opts.Auth
	if auth == nil {
		auth = StaticTenant(DefaultTenant)
	}

	r := chi.NewRouter()
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", SessionHeader, "Mcp-Session-Id"},
		ExposedHeaders:   []string{"Mcp-Session-Id"},
		AllowCredentials: true,
	}).Handler)

	srv := &Server{handler: handler, logger: logger}
	r.Get("/health", srv.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(auth)
		r.Use(SessionMiddleware)
		r.Post("/rpc", srv.handleRPC)
		if opts.Editor != nil {
			r.Get("/ws/editor", opts.Editor.ServeHTTP)
		}
		if opts.MCP != nil {
			r.Handle("/mcp", opts.MCP)
		}
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleRPC(w http.ResponseWriter, r *http.Request) {
	req, err := ParseRequest(r.Body)
	if err != nil {
		code := ErrInvalidReq
		if errors.Is(err, ErrParse) {
			code = ErrParseCode
		}
		WriteError(w, nil, code, err.Error(), nil)
		return
	}

	tenantID, ok := TenantFromContext(r.Context())
	if !ok || tenantID == "" {
		http.Error(w, "missing tenant", http.StatusUnauthorized)
		return
	}

	sessionID, _ := SessionIDFromContext(r.Context())

	result, err := s.handler.Handle(r.Context(), tenantID, sessionID, req.Method, req.Params)
	if err != nil {
		s.writeHandlerError(w, req, err)
		return
	}

	WriteResult(w, req.ID, result)
}

func (s *Server) writeHandlerError(w http.ResponseWriter, req Request, err error) {
	if errors.Is(err, ErrUnauthorized) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	var coded CodedError
	if errors.As(err, &coded) {
		data := ErrorData{
			Code:         coded.CodeValue(),
			Details:      coded.DetailsValue(),
			RecoveryHint: coded.RecoveryHintValue(),
		}
		WriteError(w, req.ID, rpcCode(coded.CodeValue()), coded.MessageValue(), data)
		return
	}
	s.logger.Error("rpc method failed", "method", req.Method, "error", err)
	WriteError(w, req.ID, ErrInternal, "internal error", nil)
}

func rpcCode(code string) int {
	switch code {
	case "METHOD_NOT_FOUND":
		return ErrMethodNotFound
	case "INVALID_PARAMS":
		return ErrInvalidParams
	default:
		return ErrApplication
	}
}
