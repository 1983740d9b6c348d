package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type testHandler struct {
	method string
	err    error
}

func (h *testHandler) Handle(_ context.Context, tenantID, sessionID, method string, params json.RawMessage) (any, error) {
	h.method = method
	if h.err != nil {
		return nil, h.err
	}
	return map[string]string{"tenant": tenantID, "session": sessionID}, nil
}

type staticResolver struct {
	tenant string
}

func (r *staticResolver) ResolveTenant(_ context.Context, token string) (string, error) {
	if token == "" {
		return "", ErrUnauthorized
	}
	return r.tenant, nil
}

type codedErr struct {
	code string
}

func (e *codedErr) Error() string             { return e.code }
func (e *codedErr) CodeValue() string         { return e.code }
func (e *codedErr) MessageValue() string      { return "pet not found" }
func (e *codedErr) DetailsValue() any         { return nil }
func (e *codedErr) RecoveryHintValue() string { return "List pets first" }

func postRPC(t *testing.T, url, body string, headers map[string]string) Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url+"/rpc", bytes.NewBufferString(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHTTPServer_RPC(t *testing.T) {
	handler := &testHandler{}
	resolver := &staticResolver{tenant: "tenant1"}
	server := httptest.NewServer(NewServer(handler, Options{Auth: AuthMiddleware(resolver)}))
	t.Cleanup(server.Close)

	resp := postRPC(t, server.URL, `{"jsonrpc":"2.0","method":"list_pets","id":1}`, map[string]string{
		"Authorization": "Bearer token",
		SessionHeader:   "sess1",
	})
	require.Nil(t, resp.Error)
	require.Equal(t, "list_pets", handler.method)
	require.Equal(t, map[string]any{"tenant": "tenant1", "session": "sess1"}, resp.Result)
}

func TestHTTPServer_DefaultTenant(t *testing.T) {
	handler := &testHandler{}
	server := httptest.NewServer(NewServer(handler, Options{}))
	t.Cleanup(server.Close)

	resp := postRPC(t, server.URL, `{"jsonrpc":"2.0","method":"list_pets","id":1}`, nil)
	require.Nil(t, resp.Error)
	require.Equal(t, DefaultTenant, resp.Result.(map[string]any)["tenant"])
}

func TestHTTPServer_RPCErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantData string
	}{
		{"coded", fmt.Errorf("wrapped: %w", &codedErr{code: "PET_NOT_FOUND"}), ErrApplication, "PET_NOT_FOUND"},
		{"unknown method", &codedErr{code: "METHOD_NOT_FOUND"}, ErrMethodNotFound, "METHOD_NOT_FOUND"},
		{"bad params", &codedErr{code: "INVALID_PARAMS"}, ErrInvalidParams, "INVALID_PARAMS"},
		{"internal", errors.New("disk on fire"), ErrInternal, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(NewServer(&testHandler{err: tt.err}, Options{}))
			t.Cleanup(server.Close)

			resp := postRPC(t, server.URL, `{"jsonrpc":"2.0","method":"get_pet","id":7}`, nil)
			require.NotNil(t, resp.Error)
			require.Equal(t, tt.wantCode, resp.Error.Code)
			require.NotContains(t, resp.Error.Message, "disk on fire")
			if tt.wantData != "" {
				data := resp.Error.Data.(map[string]any)
				require.Equal(t, tt.wantData, data["code"])
			}
		})
	}
}

func TestHTTPServer_ParseError(t *testing.T) {
	server := httptest.NewServer(NewServer(&testHandler{}, Options{}))
	t.Cleanup(server.Close)

	resp := postRPC(t, server.URL, `{not json`, nil)
	require.NotNil(t, resp.Error)
	require.Equal(t, ErrParseCode, resp.Error.Code)

	resp = postRPC(t, server.URL, `{"jsonrpc":"1.0","method":"x"}`, nil)
	require.Equal(t, ErrInvalidReq, resp.Error.Code)
}

func TestHTTPServer_Health(t *testing.T) {
	resolver := &staticResolver{tenant: "tenant1"}
	server := httptest.NewServer(NewServer(&testHandler{}, Options{Auth: AuthMiddleware(resolver)}))
	t.Cleanup(server.Close)

	resp, err := http.Get(server.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHTTPServer_CORS(t *testing.T) {
	server := httptest.NewServer(NewServer(&testHandler{}, Options{
		AllowedOrigins: []string{"http://localhost:1420"},
	}))
	t.Cleanup(server.Close)

	preflight := func(origin string) *http.Response {
		req, err := http.NewRequest(http.MethodOptions, server.URL+"/rpc", nil)
		require.NoError(t, err)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "Content-Type")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp
	}

	resp := preflight("http://localhost:1420")
	require.Equal(t, "http://localhost:1420", resp.Header.Get("Access-Control-Allow-Origin"))

	resp = preflight("http://evil.example")
	require.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestHTTPServer_Mounts(t *testing.T) {
	editor := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tenantID, _ := TenantFromContext(r.Context())
		_, _ = w.Write([]byte("editor:" + tenantID))
	})
	server := httptest.NewServer(NewServer(&testHandler{}, Options{Editor: editor}))
	t.Cleanup(server.Close)

	resp, err := http.Get(server.URL + "/ws/editor")
	require.NoError(t, err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	require.Equal(t, "editor:"+DefaultTenant, buf.String())

	resp2, err := http.Get(server.URL + "/mcp")
	require.NoError(t, err)
	resp2.Body.Close()
	require.Equal(t, http.StatusNotFound, resp2.StatusCode)
}
