package wire_test

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/require"

	"github.com/pawdiary/pawdiary/internal/domain/block"
	"github.com/pawdiary/pawdiary/internal/domain/draft"
	"github.com/pawdiary/pawdiary/internal/domain/editor"
	"github.com/pawdiary/pawdiary/internal/domain/form"
	"github.com/pawdiary/pawdiary/internal/domain/memory"
	"github.com/pawdiary/pawdiary/internal/domain/pet"
	"github.com/pawdiary/pawdiary/internal/domain/render"
	"github.com/pawdiary/pawdiary/internal/domain/template"
	"github.com/pawdiary/pawdiary/internal/mcp"
	"github.com/pawdiary/pawdiary/internal/storage"
	"github.com/pawdiary/pawdiary/internal/transport"
	"github.com/pawdiary/pawdiary/internal/wire"
)

type petStub struct{}

func (petStub) Create(context.Context, string, pet.CreateRequest) (*pet.Pet, error) {
	return nil, pet.ErrInvalidInput
}
func (petStub) Get(_ context.Context, tenantID string, id int64) (*pet.Pet, error) {
	if id != 1 || tenantID != "tenant1" {
		return nil, pet.ErrPetNotFound
	}
	return &pet.Pet{ID: 1, TenantID: tenantID, Name: "Miso"}, nil
}
func (petStub) List(context.Context, string, pet.ListOptions) ([]pet.Pet, error) { return nil, nil }
func (petStub) Update(context.Context, string, int64, pet.UpdateRequest) (*pet.Pet, error) {
	return nil, pet.ErrPetNotFound
}
func (petStub) Archive(context.Context, string, int64) (*pet.Pet, error) {
	return nil, pet.ErrPetNotFound
}
func (petStub) Delete(context.Context, string, int64) error    { return pet.ErrPetNotFound }
func (petStub) Reorder(context.Context, string, []int64) error { return nil }

type env struct {
	url     string
	editors *editor.Manager

	mu    sync.Mutex
	saved []form.ActivityFormData
}

func (e *env) savedCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.saved)
}

func newEnv(t *testing.T) *env {
	t.Helper()
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	v, err := block.NewValidator(block.WithClock(func() time.Time { return now }), block.WithLocation(time.UTC))
	require.NoError(t, err)

	clock := func() time.Time { return now }
	store := storage.NewMemoryStore()
	brands := memory.NewBrandMemory(store, memory.Options{Now: clock}, nil)
	recent := memory.NewRecentTemplates(store, memory.Options{Now: clock}, nil)
	drafts := draft.NewService(store, clock, nil)
	templates := template.Default()

	e := &env{}
	e.editors = editor.NewManager(editor.Deps{
		Templates: templates,
		Renderer:  render.NewRegistry(v, brands, nil),
		Drafts:    drafts,
		Brands:    brands,
		Recent:    recent,
		Saver: editor.SaverFunc(func(_ context.Context, _ *int64, data form.ActivityFormData) error {
			e.mu.Lock()
			e.saved = append(e.saved, data)
			e.mu.Unlock()
			return nil
		}),
		AutosaveDelay: 20 * time.Millisecond,
		BrandDelay:    time.Hour,
	}, time.Hour)
	t.Cleanup(e.editors.CloseAll)

	h := mcp.NewHandler(mcp.Services{
		Templates: templates,
		Validator: v,
		Editors:   e.editors,
		Brands:    brands,
		Recent:    recent,
		Drafts:    drafts,
		Pets:      petStub{},
	})

	ws := wire.NewHandler(h, e.editors, nil, nil)
	srv := httptest.NewServer(transport.StaticTenant("tenant1")(ws))
	t.Cleanup(srv.Close)
	e.url = "ws" + strings.TrimPrefix(srv.URL, "http")
	return e
}

type client struct {
	t    *testing.T
	conn *websocket.Conn
}

func dial(t *testing.T, e *env) *client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	conn, _, err := websocket.Dial(ctx, e.url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.CloseNow() })

	c := &client{t: t, conn: conn}
	msg := c.read()
	require.Equal(t, wire.TypeConnected, msg.Type)
	return c
}

type serverMessage struct {
	Type      string          `json:"type"`
	RequestID string          `json:"request_id"`
	Data      json.RawMessage `json:"data"`
}

func (c *client) send(id, typ string, data any) {
	c.t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(c.t, err)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(c.t, wsjson.Write(ctx, c.conn, wire.ClientMessage{Type: typ, ID: id, Data: raw}))
}

func (c *client) read() serverMessage {
	c.t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	var msg serverMessage
	require.NoError(c.t, wsjson.Read(ctx, c.conn, &msg))
	return msg
}

// reply reads until the response to request id, skipping pushed events.
func (c *client) reply(id string) serverMessage {
	c.t.Helper()
	for {
		msg := c.read()
		if msg.Type != wire.TypeEvent && msg.RequestID == id {
			return msg
		}
	}
}

type sessionData struct {
	Session struct {
		ID    string `json:"id"`
		State string `json:"state"`
	} `json:"session"`
}

func decodeSession(t *testing.T, msg serverMessage) sessionData {
	t.Helper()
	require.Equal(t, wire.TypeResult, msg.Type, string(msg.Data))
	var out sessionData
	require.NoError(t, json.Unmarshal(msg.Data, &out))
	return out
}

func TestHandler_Ping(t *testing.T) {
	c := dial(t, newEnv(t))
	c.send("1", wire.TypePing, nil)
	msg := c.read()
	require.Equal(t, wire.TypePong, msg.Type)
	require.Equal(t, "1", msg.RequestID)
}

func TestHandler_UnknownType(t *testing.T) {
	c := dial(t, newEnv(t))
	c.send("1", "execute", nil)
	msg := c.reply("1")
	require.Equal(t, wire.TypeError, msg.Type)

	var data wire.ErrorData
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	require.Equal(t, "UNKNOWN_TYPE", data.Code)
}

func TestHandler_EditorFlow(t *testing.T) {
	e := newEnv(t)
	c := dial(t, e)

	c.send("open", wire.TypeOpen, map[string]any{"pet_id": 1, "template_id": "diet.treat"})
	opened := decodeSession(t, c.reply("open"))
	require.Equal(t, "editing", opened.Session.State)

	// Later requests default to the connection's current session.
	c.send("time", wire.TypeSetBlock, map[string]any{"block_id": "time", "value": "2024-06-15T09:00"})
	decodeSession(t, c.reply("time"))

	// Autosave runs once the form is valid and is pushed as an event.
	for {
		msg := c.read()
		if msg.Type != wire.TypeEvent {
			continue
		}
		var ev editor.Event
		require.NoError(t, json.Unmarshal(msg.Data, &ev))
		require.Equal(t, editor.EventDraftSaved, ev.Kind)
		require.Equal(t, opened.Session.ID, ev.SessionID)
		break
	}

	c.send("bad", wire.TypeSetBlock, map[string]any{"block_id": "weight", "value": 3})
	msg := c.reply("bad")
	require.Equal(t, wire.TypeError, msg.Type)
	var errData wire.ErrorData
	require.NoError(t, json.Unmarshal(msg.Data, &errData))
	require.Equal(t, "UNKNOWN_BLOCK", errData.Code)

	c.send("submit", wire.TypeSubmit, nil)
	done := decodeSession(t, c.reply("submit"))
	require.Equal(t, "done", done.Session.State)
	require.Equal(t, 1, e.savedCount())
}

func TestHandler_OtherTenantSession(t *testing.T) {
	e := newEnv(t)
	s, err := e.editors.Open(context.Background(), editor.OpenOptions{PetID: 1, TemplateID: "diet.treat", Owner: "tenant2"})
	require.NoError(t, err)

	c := dial(t, e)
	c.send("1", wire.TypeView, map[string]any{"session_id": s.ID()})
	msg := c.reply("1")
	require.Equal(t, wire.TypeError, msg.Type)
	var data wire.ErrorData
	require.NoError(t, json.Unmarshal(msg.Data, &data))
	require.Equal(t, "EDITOR_SESSION_NOT_FOUND", data.Code)
}

func TestHandler_DisconnectClosesSessions(t *testing.T) {
	e := newEnv(t)
	c := dial(t, e)

	c.send("open", wire.TypeOpen, map[string]any{"pet_id": 1})
	decodeSession(t, c.reply("open"))
	require.Equal(t, 1, e.editors.Len())

	require.NoError(t, c.conn.Close(websocket.StatusNormalClosure, ""))
	require.Eventually(t, func() bool { return e.editors.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}
