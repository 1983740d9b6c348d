// Package wire defines the WebSocket protocol for live editor sessions.
package wire

import "encoding/json"

// Client message types.
const (
	TypeOpen           = "open"
	TypeSelectTemplate = "select_template"
	TypeSetField       = "set_field"
	TypeSetBlock       = "set_block"
	TypeNext           = "next"
	TypePrev           = "prev"
	TypeInteract       = "interact"
	TypeSubmit         = "submit"
	TypeDiscard        = "discard"
	TypeView           = "view"
	TypeClose          = "close"
	TypePing           = "ping"
)

// Server message types.
const (
	TypeConnected = "connected"
	TypeResult    = "result"
	TypeEvent     = "event"
	TypeError     = "error"
	TypePong      = "pong"
)

// ClientMessage is the envelope for all client-to-server messages.
type ClientMessage struct {
	Type string          `json:"type"`
	ID   string          `json:"id"` // Client-assigned request ID
	Data json.RawMessage `json:"data,omitempty"`
}

// ServerMessage is the envelope for all server-to-client messages.
type ServerMessage struct {
	Type      string `json:"type"`
	RequestID string `json:"request_id,omitempty"` // Echoes client ID
	Data      any    `json:"data,omitempty"`
}

// ConnectedData is sent once after the upgrade.
type ConnectedData struct {
	ConnectionID string `json:"connection_id"`
}

// ErrorData carries an error code and message.
type ErrorData struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// methods maps editor message types to handler methods. Message data is
// passed through as the method params.
var methods = map[string]string{
	TypeOpen:           "open_editor",
	TypeSelectTemplate: "editor_select_template",
	TypeSetField:       "editor_set_field",
	TypeSetBlock:       "editor_set_block",
	TypeNext:           "editor_next_step",
	TypePrev:           "editor_prev_step",
	TypeInteract:       "editor_interact",
	TypeSubmit:         "editor_submit",
	TypeDiscard:        "editor_discard",
	TypeView:           "editor_view",
	TypeClose:          "editor_close",
}
