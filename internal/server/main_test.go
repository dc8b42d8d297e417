package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"pingme/internal/config"
	"pingme/internal/database"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T) (*Server, *gorm.DB) {
	t.Helper()
	return newTestServerWith(t, nil)
}

func newTestServerWith(t *testing.T, configure func(*config.Config)) (*Server, *gorm.DB) {
	t.Helper()
	cfg := &config.Config{
		Env:       "test",
		DBDriver:  "sqlite",
		DBDSN:     ":memory:",
		JWTSecret: testSecret,
		Port:      "0",
	}
	if configure != nil {
		configure(cfg)
	}
	db, err := database.Connect(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return NewServer(cfg, db), db
}

type apiResponse struct {
	Status int
	Body   []byte
}

func (r apiResponse) decode(t *testing.T, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.Body, out), string(r.Body))
}

func call(t *testing.T, s *Server, method, path string, body any, token string) apiResponse {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.App().Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return apiResponse{Status: resp.StatusCode, Body: raw}
}

// register signs up and logs in, returning the user id and token.
func register(t *testing.T, s *Server, name, email string) (int64, string) {
	t.Helper()
	resp := call(t, s, http.MethodPost, "/users", map[string]string{
		"name": name, "email": email, "password": "secret1",
	}, "")
	require.Equal(t, http.StatusCreated, resp.Status, string(resp.Body))

	resp = call(t, s, http.MethodPost, "/auth/login", map[string]string{
		"email": email, "password": "secret1",
	}, "")
	require.Equal(t, http.StatusOK, resp.Status, string(resp.Body))
	var out struct {
		AccessToken string `json:"access_token"`
		UserID      int64  `json:"user_id"`
	}
	resp.decode(t, &out)
	require.NotEmpty(t, out.AccessToken)
	return out.UserID, out.AccessToken
}
