// Package testserver runs a complete server over an in-memory database for
// end-to-end tests.
package testserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pawdiary/pawdiary/internal/app"
	"github.com/pawdiary/pawdiary/internal/config"
	"github.com/pawdiary/pawdiary/internal/sqlite"
	"github.com/pawdiary/pawdiary/internal/transport"
)

type TestServer struct {
	Server   *httptest.Server
	App      *app.App
	DB       *sqlite.DB
	Token    string
	TenantID string
}

// New starts a server with authentication enabled and one API key.
func New(t *testing.T, token, tenantID string) *TestServer {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := sqlite.New(dsn)
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())

	cfg := config.Default()
	cfg.Auth.Enabled = true
	cfg.DB.Path = dsn
	cfg.Files.Dir = t.TempDir()
	a, err := app.New(db, cfg, nil)
	require.NoError(t, err)

	server := httptest.NewServer(a.Router())

	ts := &TestServer{
		Server:   server,
		App:      a,
		DB:       db,
		Token:    token,
		TenantID: tenantID,
	}

	require.NoError(t, ts.AddAPIKey(token, tenantID))

	t.Cleanup(func() {
		server.Close()
		a.Editors.CloseAll()
		_ = db.Close()
	})

	return ts
}

func (ts *TestServer) AddAPIKey(token, tenantID string) error {
	return ts.App.APIKeys.Add(context.Background(), token, tenantID, "test")
}

// RPCError is a JSON-RPC error response.
type RPCError struct {
	Code    int                  `json:"code"`
	Message string               `json:"message"`
	Data    *transport.ErrorData `json:"data,omitempty"`
}

// Call invokes a JSON-RPC method with the server token and decodes the
// result into out. A JSON-RPC error is returned as *RPCError.
func (ts *TestServer) Call(t *testing.T, method string, params, out any) *RPCError {
	t.Helper()
	return ts.CallAs(t, ts.Token, "", method, params, out)
}

// CallAs is Call with an explicit token and editor session header.
func (ts *TestServer) CallAs(t *testing.T, token, sessionID, method string, params, out any) *RPCError {
	t.Helper()

	body, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  method,
		"params":  params,
	})
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, ts.Server.URL+"/rpc", bytes.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	if sessionID != "" {
		req.Header.Set(transport.SessionHeader, sessionID)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rpcResp struct {
		Result json.RawMessage `json:"result"`
		Error  *RPCError       `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rpcResp))
	if rpcResp.Error != nil {
		return rpcResp.Error
	}
	if out != nil {
		require.NoError(t, json.Unmarshal(rpcResp.Result, out))
	}
	return nil
}
