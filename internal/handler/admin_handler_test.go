package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"eventvote/internal/auth"
	"eventvote/internal/config"
	"eventvote/internal/service"
	"eventvote/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdminHandler(t *testing.T) (*AdminHandler, *stubStore) {
	t.Helper()
	store := &stubStore{}
	cfg := &config.Config{
		Environment:   "development",
		PublicBaseURL: "https://vote.example.com",
		AdminEmail:    "admin@example.com",
		AdminPassword: "hunter2",
		AdminPasskey:  "0000",
		JWTSecret:     "test-secret",
		CodeTTL:       45 * time.Minute,
	}
	adminSvc := service.NewAdminService(store, store, store, store, nil, logger.NewNop(),
		cfg.Origin(), cfg.PublicBaseURL, cfg.CodeTTL, cfg.AdminPasskey)
	deviceSvc := service.NewDeviceService(adminSvc, logger.NewNop(), time.Second)
	return NewAdminHandler(adminSvc, deviceSvc, cfg, logger.NewNop()), store
}

func postJSON(t *testing.T, fn http.HandlerFunc, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	fn(rec, req)
	return rec
}

func TestLogin_IssuesToken(t *testing.T) {
	h, _ := newTestAdminHandler(t)

	rec := postJSON(t, h.Login, "/api/v1/admin/login", map[string]string{
		"email":    "admin@example.com",
		"password": "hunter2",
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotEmpty(t, body.Token)

	claims, err := auth.Parse(body.Token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", claims.Email)
	assert.Equal(t, "admin", claims.Role)
}

func TestLogin_RejectsBadCredentials(t *testing.T) {
	h, _ := newTestAdminHandler(t)

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{"wrong password", "admin@example.com", "nope"},
		{"wrong email", "other@example.com", "hunter2"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postJSON(t, h.Login, "/api/v1/admin/login", map[string]string{
				"email":    tt.email,
				"password": tt.password,
			})
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestWipeData_PasskeyGuard(t *testing.T) {
	h, _ := newTestAdminHandler(t)

	rec := httptest.NewRecorder()
	payload := bytes.NewReader([]byte(`{"passkey":"9999"}`))
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/data", payload)
	h.WipeData(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "authorization", body["type"])
}

func TestDeviceCode_NotConnected(t *testing.T) {
	h, _ := newTestAdminHandler(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/device/code", nil)
	h.DeviceCode(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, false, body["connected"])
	assert.Nil(t, body["latest"])
}

func TestRegisterTeam_ReturnsVotingURL(t *testing.T) {
	h, _ := newTestAdminHandler(t)

	rec := postJSON(t, h.RegisterTeam, "/api/v1/admin/teams", map[string]string{
		"team_id":   "team-a",
		"team_name": "Alpha",
	})

	require.Equal(t, http.StatusCreated, rec.Code)

	var body struct {
		VotingURL string `json:"voting_url"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "https://vote.example.com/vote?team=team-a&name=Alpha", body.VotingURL)
}
