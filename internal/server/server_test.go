package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"devhub/internal/config"
	"devhub/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testPassword = "Corr3ct-Horse-Battery"

type testServer struct {
	*Server
	app *fiber.App
	db  *gorm.DB
	mr  *miniredis.Miniredis
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	mr, rdb := testutil.UseMiniredis(t)

	cfg := &config.Config{
		JWTSecret:      "server-test-secret-that-is-long-enough",
		JWTTTLHours:    1,
		Port:           "0",
		AllowedOrigins: "http://localhost:3000",
	}
	s, err := NewServerWithDeps(cfg, db, rdb)
	require.NoError(t, err)

	return &testServer{Server: s, app: s.newApp(), db: db, mr: mr}
}

// call performs a request and decodes a JSON response into out when non-nil.
func (ts *testServer) call(t *testing.T, method, path, token string, body any, out any) int {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	if out != nil {
		raw, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, out), string(raw))
	}
	return resp.StatusCode
}

type sessionResponse struct {
	Session struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		User        struct {
			ID    uint   `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	} `json:"session"`
}

// signUp registers an account through the API and logs it in.
func (ts *testServer) signUp(t *testing.T, email, name, role string) (string, uint) {
	t.Helper()
	status := ts.call(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email": email, "password": testPassword, "name": name, "role": role,
	}, nil)
	require.Equal(t, http.StatusOK, status)

	var login sessionResponse
	status = ts.call(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": email, "password": testPassword,
	}, &login)
	require.Equal(t, http.StatusOK, status)
	return login.Session.AccessToken, login.Session.User.ID
}
