package mcp

import (
	"context"
	"encoding/json"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

func connectClient(t *testing.T, f *fixture) *sdkmcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	server := NewServer(Config{Handler: f.h, TransportMode: "stdio"})
	serverTransport, clientTransport := sdkmcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Close() })

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func callTool(t *testing.T, session *sdkmcp.ClientSession, name string, args map[string]any) (*sdkmcp.CallToolResult, string) {
	t.Helper()
	res, err := session.CallTool(context.Background(), &sdkmcp.CallToolParams{Name: name, Arguments: args})
	require.NoError(t, err)
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(*sdkmcp.TextContent)
	require.True(t, ok)
	return res, text.Text
}

func TestTools_List(t *testing.T) {
	session := connectClient(t, newFixture(t))

	tools, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)
	names := make(map[string]bool)
	for _, tool := range tools.Tools {
		names[tool.Name] = true
	}
	for _, want := range []string{"list_templates", "quick_log", "create_pet", "list_pets", "weight_trend", "search_activities", "get_app_statistics"} {
		require.True(t, names[want], want)
	}
}

func TestTools_QuickLog(t *testing.T) {
	f := newFixture(t)
	session := connectClient(t, f)

	res, text := callTool(t, session, "quick_log", map[string]any{
		"pet_id":      3,
		"template_id": "diet.treat",
		"title":       "Good boy",
	})
	require.False(t, res.IsError, text)

	var out struct {
		Session struct {
			State string `json:"state"`
		} `json:"session"`
	}
	require.NoError(t, json.Unmarshal([]byte(text), &out))
	require.Equal(t, "done", out.Session.State)

	saved := f.activities.savedCalls()
	require.Len(t, saved, 1)
	require.Equal(t, "local", saved[0].tenantID)
	require.Equal(t, "Good boy", saved[0].data.Title)
}

func TestTools_ErrorResult(t *testing.T) {
	session := connectClient(t, newFixture(t))

	// Pet 1 belongs to another tenant.
	res, text := callTool(t, session, "list_drafts", map[string]any{"pet_id": 1})
	require.True(t, res.IsError)

	var apiErr APIError
	require.NoError(t, json.Unmarshal([]byte(text), &apiErr))
	require.Equal(t, "PET_NOT_FOUND", apiErr.Code)
}

func TestTools_ListPets(t *testing.T) {
	session := connectClient(t, newFixture(t))

	res, text := callTool(t, session, "list_pets", map[string]any{})
	require.False(t, res.IsError, text)
	require.Contains(t, text, "Miso")
}

func TestTools_DocsResource(t *testing.T) {
	session := connectClient(t, newFixture(t))

	res, err := session.ReadResource(context.Background(), &sdkmcp.ReadResourceParams{URI: "pawdiary://docs/index"})
	require.NoError(t, err)
	require.NotEmpty(t, res.Contents)
	require.Contains(t, res.Contents[0].Text, "pawdiary")
}
