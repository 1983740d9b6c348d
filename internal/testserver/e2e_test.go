package testserver

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/require"

	"github.com/pawdiary/pawdiary/internal/domain/activity"
	"github.com/pawdiary/pawdiary/internal/domain/attachment"
	"github.com/pawdiary/pawdiary/internal/domain/pet"
	"github.com/pawdiary/pawdiary/internal/domain/weight"
	"github.com/pawdiary/pawdiary/internal/wire"
)

func createPet(t *testing.T, ts *TestServer, name string) pet.Pet {
	t.Helper()
	var p pet.Pet
	rpcErr := ts.Call(t, "create_pet", map[string]any{
		"name":       name,
		"birth_date": "2020-03-01T00:00:00Z",
		"species":    "cat",
		"gender":     "female",
	}, &p)
	require.Nil(t, rpcErr)
	require.NotZero(t, p.ID)
	return p
}

func TestE2E_Unauthorized(t *testing.T) {
	ts := New(t, "token-1", "tenant-1")

	resp, err := http.Get(ts.Server.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	req, err := http.NewRequest(http.MethodPost, ts.Server.URL+"/rpc", strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"list_pets"}`))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer wrong")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestE2E_QuickLogWeight(t *testing.T) {
	ts := New(t, "token-1", "tenant-1")
	miso := createPet(t, ts, "Miso")

	rpcErr := ts.Call(t, "quick_log", map[string]any{
		"pet_id":      miso.ID,
		"template_id": "growth.weight",
		"blocks":      map[string]any{"weight": map[string]any{"value": 4.2, "unit": "kg"}},
	}, nil)
	require.Nil(t, rpcErr)

	var page activity.Page
	require.Nil(t, ts.Call(t, "list_activities", map[string]any{"pet_id": miso.ID}, &page))
	require.Len(t, page.Activities, 1)
	require.Equal(t, "growth.weight", page.Activities[0].TemplateID)

	var got pet.Pet
	require.Nil(t, ts.Call(t, "get_pet", map[string]any{"id": miso.ID}, &got))
	require.NotNil(t, got.WeightKg)
	require.InDelta(t, 4.2, *got.WeightKg, 0.001)

	var trend weight.Trend
	require.Nil(t, ts.Call(t, "weight_trend", map[string]any{"pet_id": miso.ID, "unit": "g"}, &trend))
	require.Len(t, trend.Points, 1)
	require.InDelta(t, 4200, trend.Points[0].Value, 0.01)

	var found activity.Page
	require.Nil(t, ts.Call(t, "search_activities", map[string]any{"query": "weigh"}, &found))
	require.Len(t, found.Activities, 1)

	var recent []map[string]any
	require.Nil(t, ts.Call(t, "get_recent_templates", map[string]any{"pet_id": miso.ID}, &recent))
	require.Len(t, recent, 1)
}

func TestE2E_EditorOverRPC(t *testing.T) {
	ts := New(t, "token-1", "tenant-1")
	miso := createPet(t, ts, "Miso")

	var opened struct {
		Session struct {
			ID    string `json:"id"`
			State string `json:"state"`
		} `json:"session"`
	}
	require.Nil(t, ts.Call(t, "open_editor", map[string]any{"pet_id": miso.ID, "query": "template=diet.feeding&mode=quick"}, &opened))
	require.Equal(t, "editing", opened.Session.State)
	sid := opened.Session.ID

	// The session header stands in for session_id.
	rpcErr := ts.CallAs(t, ts.Token, sid, "editor_submit", nil, nil)
	require.NotNil(t, rpcErr)
	require.Equal(t, "FORM_INVALID", rpcErr.Data.Code)

	require.Nil(t, ts.CallAs(t, ts.Token, sid, "editor_set_block", map[string]any{
		"block_id": "portion",
		"value":    map[string]any{"amount": 90, "unit": "g", "brand": "Acme", "product": "Salmon"},
	}, nil))
	require.Nil(t, ts.CallAs(t, ts.Token, sid, "editor_set_block", map[string]any{
		"block_id": "time",
		"value":    time.Now().Add(-time.Hour).Format("2006-01-02T15:04"),
	}, nil))
	require.Nil(t, ts.CallAs(t, ts.Token, sid, "editor_submit", nil, &opened))
	require.Equal(t, "done", opened.Session.State)

	var brands []struct {
		Brand string `json:"brand"`
	}
	require.Nil(t, ts.Call(t, "get_brand_suggestions", map[string]any{"pet_id": miso.ID, "category": "food"}, &brands))
	require.Len(t, brands, 1)
	require.Equal(t, "Acme", brands[0].Brand)
}

func TestE2E_TenantIsolation(t *testing.T) {
	ts := New(t, "token-1", "tenant-1")
	require.NoError(t, ts.AddAPIKey("token-2", "tenant-2"))
	miso := createPet(t, ts, "Miso")

	var pets []pet.Pet
	require.Nil(t, ts.CallAs(t, "token-2", "", "list_pets", nil, &pets))
	require.Empty(t, pets)

	rpcErr := ts.CallAs(t, "token-2", "", "open_editor", map[string]any{"pet_id": miso.ID}, nil)
	require.NotNil(t, rpcErr)
	require.Equal(t, "PET_NOT_FOUND", rpcErr.Data.Code)

	rpcErr = ts.CallAs(t, "token-2", "", "list_drafts", map[string]any{"pet_id": miso.ID}, nil)
	require.NotNil(t, rpcErr)
	require.Equal(t, "PET_NOT_FOUND", rpcErr.Data.Code)
}

func TestE2E_EditorWebSocket(t *testing.T) {
	ts := New(t, "token-1", "tenant-1")
	miso := createPet(t, ts, "Miso")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(ts.Server.URL, "http") + "/ws/editor?access_token=" + ts.Token
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer conn.CloseNow()

	var msg struct {
		Type      string          `json:"type"`
		RequestID string          `json:"request_id"`
		Data      json.RawMessage `json:"data"`
	}
	require.NoError(t, wsjson.Read(ctx, conn, &msg))
	require.Equal(t, wire.TypeConnected, msg.Type)

	data, err := json.Marshal(map[string]any{"pet_id": miso.ID, "template_id": "lifestyle.walk"})
	require.NoError(t, err)
	require.NoError(t, wsjson.Write(ctx, conn, wire.ClientMessage{Type: wire.TypeOpen, ID: "1", Data: data}))
	for {
		require.NoError(t, wsjson.Read(ctx, conn, &msg))
		if msg.RequestID == "1" {
			break
		}
	}
	require.Equal(t, wire.TypeResult, msg.Type, string(msg.Data))
	require.Equal(t, 1, ts.App.Editors.Len())

	require.NoError(t, conn.Close(websocket.StatusNormalClosure, ""))
	require.Eventually(t, func() bool { return ts.App.Editors.Len() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestE2E_UnknownMethod(t *testing.T) {
	ts := New(t, "token-1", "tenant-1")
	rpcErr := ts.Call(t, "create_project", nil, nil)
	require.NotNil(t, rpcErr)
	require.Equal(t, -32601, rpcErr.Code)
}

func TestE2E_AttachmentsAndStatistics(t *testing.T) {
	ts := New(t, "token-1", "tenant-1")
	require.NoError(t, ts.AddAPIKey("token-2", "tenant-2"))
	miso := createPet(t, ts, "Miso")

	require.Nil(t, ts.Call(t, "quick_log", map[string]any{
		"pet_id":      miso.ID,
		"template_id": "growth.weight",
		"blocks":      map[string]any{"weight": map[string]any{"value": 4.2, "unit": "kg"}},
	}, nil))
	var page activity.Page
	require.Nil(t, ts.Call(t, "list_activities", map[string]any{"pet_id": miso.ID}, &page))
	require.Len(t, page.Activities, 1)
	activityID := page.Activities[0].ID

	var a attachment.Attachment
	require.Nil(t, ts.Call(t, "upload_activity_attachment", map[string]any{
		"activity_id": activityID,
		"filename":    "vet-invoice.pdf",
		"file_bytes":  []byte("%PDF-1.4\n1 0 obj\n"),
		"metadata":    map[string]any{"clinic": "Riverside"},
	}, &a))
	require.NotZero(t, a.ID)
	require.Equal(t, "application/pdf", a.MimeType)

	var list []attachment.Attachment
	require.Nil(t, ts.Call(t, "get_activity_attachments", map[string]any{"activity_id": activityID}, &list))
	require.Len(t, list, 1)
	require.JSONEq(t, `{"clinic":"Riverside"}`, string(list[0].Metadata))

	rpcErr := ts.CallAs(t, "token-2", "", "get_activity_attachment", map[string]any{"id": a.ID}, nil)
	require.NotNil(t, rpcErr)
	require.Equal(t, "ATTACHMENT_NOT_FOUND", rpcErr.Data.Code)

	var stats map[string]any
	require.Nil(t, ts.Call(t, "get_app_statistics", nil, &stats))
	require.EqualValues(t, 1, stats["total_pets"])
	require.EqualValues(t, 1, stats["total_activities"])
	require.EqualValues(t, 1, stats["total_attachments"])

	require.Nil(t, ts.Call(t, "delete_activity", map[string]any{"id": activityID}, nil))
	require.Nil(t, ts.Call(t, "get_app_statistics", nil, &stats))
	require.EqualValues(t, 0, stats["total_attachments"])

	n, err := ts.App.Attachments.Count(context.Background(), "tenant-1")
	require.NoError(t, err)
	require.Zero(t, n)
}
