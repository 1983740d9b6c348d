package functional_test

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/require"
)

// stdioSession wraps an MCP client session for stdio transport testing
type stdioSession struct {
	session *sdkmcp.ClientSession
	cancel  context.CancelFunc
}

func newStdioSession(t *testing.T) *stdioSession {
	t.Helper()
	return newStdioSessionWithEnv(t, nil)
}

func newStdioSessionWithEnv(t *testing.T, extraEnv []string) *stdioSession {
	t.Helper()

	binaryPath := "./bin/pawdiary"
	if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
		binaryPath = "../../bin/pawdiary"
		if _, err := os.Stat(binaryPath); os.IsNotExist(err) {
			t.Skip("Server binary not found. Run 'go build -o bin/pawdiary ./cmd/server' first.")
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)

	cmd := exec.CommandContext(ctx, binaryPath, "serve", "--transport", "stdio")
	cmd.Env = append(os.Environ(),
		"PAWDIARY_DB_PATH=:memory:",
		"PAWDIARY_AUTH_ENABLED=false",
	)
	cmd.Env = append(cmd.Env, extraEnv...)

	client := sdkmcp.NewClient(&sdkmcp.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)

	session, err := client.Connect(ctx, &sdkmcp.CommandTransport{Command: cmd}, nil)
	if err != nil {
		cancel()
		t.Fatalf("Failed to connect: %v", err)
	}

	t.Cleanup(func() {
		session.Close()
		cancel()
	})

	return &stdioSession{session: session, cancel: cancel}
}

func (s *stdioSession) callTool(t *testing.T, name string, args map[string]any) json.RawMessage {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := s.session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err, "CallTool %s failed", name)
	require.NotEmpty(t, result.Content, "Tool %s returned no content", name)
	text, ok := result.Content[0].(*sdkmcp.TextContent)
	require.True(t, ok, "Tool %s returned no text content", name)
	require.False(t, result.IsError, "Tool %s returned error: %s", name, text.Text)
	return json.RawMessage(text.Text)
}

func TestStdioFunctional_QuickLogWorkflow(t *testing.T) {
	s := newStdioSession(t)

	petResp := s.callTool(t, "create_pet", map[string]any{
		"name":       "Biscuit",
		"birth_date": "2021-07-04T00:00:00Z",
		"species":    "dog",
		"gender":     "male",
	})
	var pet struct {
		ID int64 `json:"id"`
	}
	require.NoError(t, json.Unmarshal(petResp, &pet))
	require.NotZero(t, pet.ID)

	_ = s.callTool(t, "quick_log", map[string]any{
		"pet_id":      pet.ID,
		"template_id": "growth.weight",
		"blocks":      map[string]any{"weight": map[string]any{"value": 12.5, "unit": "kg"}},
	})
	_ = s.callTool(t, "quick_log", map[string]any{
		"pet_id":      pet.ID,
		"template_id": "diet.feeding",
		"title":       "Dinner",
		"blocks":      map[string]any{"portion": map[string]any{"amount": 250, "unit": "g", "brand": "Orijen"}},
	})

	listResp := s.callTool(t, "list_activities", map[string]any{"pet_id": pet.ID})
	var page struct {
		Activities []struct {
			Title string `json:"title"`
		} `json:"activities"`
	}
	require.NoError(t, json.Unmarshal(listResp, &page))
	require.Len(t, page.Activities, 2)

	searchResp := s.callTool(t, "search_activities", map[string]any{"query": "dinner"})
	require.Contains(t, string(searchResp), "Dinner")

	brandsResp := s.callTool(t, "get_brand_suggestions", map[string]any{"pet_id": pet.ID, "category": "food"})
	require.Contains(t, string(brandsResp), "Orijen")

	trendResp := s.callTool(t, "weight_trend", map[string]any{"pet_id": pet.ID})
	var trend struct {
		Points []struct {
			Value float64 `json:"value"`
		} `json:"points"`
	}
	require.NoError(t, json.Unmarshal(trendResp, &trend))
	require.Len(t, trend.Points, 1)
	require.InDelta(t, 12.5, trend.Points[0].Value, 0.001)
}

func TestStdioFunctional_MCPProtocolCompliance(t *testing.T) {
	s := newStdioSession(t)

	initResult := s.session.InitializeResult()
	require.NotNil(t, initResult)
	require.NotNil(t, initResult.ServerInfo)
	require.Equal(t, "pawdiary", initResult.ServerInfo.Name)
	require.Equal(t, "0.1.0", initResult.ServerInfo.Version)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tools, err := s.session.ListTools(ctx, nil)
	require.NoError(t, err)

	toolMap := make(map[string]*sdkmcp.Tool)
	for _, tool := range tools.Tools {
		toolMap[tool.Name] = tool
	}
	require.Contains(t, toolMap, "quick_log")
	require.Contains(t, toolMap, "list_templates")
	require.NotEmpty(t, toolMap["quick_log"].Description)
	require.NotNil(t, toolMap["quick_log"].InputSchema)
}

func TestStdioFunctional_LogFile(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "pawdiary.log")
	s := newStdioSessionWithEnv(t, []string{
		"PAWDIARY_LOG_PATH=" + logPath,
		"PAWDIARY_LOG_LEVEL=debug",
	})

	_ = s.callTool(t, "list_templates", map[string]any{"quick_log": true})

	require.Eventually(t, func() bool {
		data, err := os.ReadFile(logPath)
		return err == nil && len(data) > 0
	}, 5*time.Second, 50*time.Millisecond)
}

func TestStdioFunctional_DocumentationResources(t *testing.T) {
	s := newStdioSession(t)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	resources, err := s.session.ListResources(ctx, nil)
	require.NoError(t, err)

	uris := make(map[string]*sdkmcp.Resource, len(resources.Resources))
	for _, r := range resources.Resources {
		uris[r.URI] = r
	}
	for _, uri := range []string{"pawdiary://docs/index", "pawdiary://docs/blocks"} {
		r, ok := uris[uri]
		require.True(t, ok, "missing expected doc resource: %s", uri)
		require.Equal(t, "text/markdown", r.MIMEType)
	}

	read, err := s.session.ReadResource(ctx, &sdkmcp.ReadResourceParams{URI: "pawdiary://docs/index"})
	require.NoError(t, err)
	require.NotEmpty(t, read.Contents)
	require.Contains(t, read.Contents[0].Text, "Agent Docs Index")
}
