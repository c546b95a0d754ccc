package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	charmlog "github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rawinput/inputhub/eventhub"
	"github.com/rawinput/inputhub/internal/envconfig"
	"github.com/rawinput/inputhub/internal/settings"
	"github.com/rawinput/inputhub/policy"
	"github.com/rawinput/inputhub/reader"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := envconfig.Load("")
	require.NoError(t, err)
	cfg.DeviceDir = t.TempDir()

	hub, err := eventhub.New(cfg, charmlog.New(os.Stderr))
	require.NoError(t, err)
	t.Cleanup(func() { hub.Close() })

	pol := policy.NewStatic(1080, 1920, 0)
	registry := reader.NewRegistry(hub, pol)

	sett := settings.Default()

	return New(registry, hub, pol, sett, "test-version", charmlog.New(os.Stderr))
}

func TestHandleStatusReportsVersionAndDisplay(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	s.handleStatus(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp statusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "test-version", resp.Version)
	assert.Equal(t, 0, resp.DeviceCount)
	assert.Equal(t, int32(1080), resp.DisplayWidth)
}

func TestHandleStatusRejectsNonGet(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/status", nil)
	rec := httptest.NewRecorder()
	s.handleStatus(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleDevicesEmptyRegistry(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/devices", nil)
	rec := httptest.NewRecorder()
	s.handleDevices(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp []deviceResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp)
}

func TestHandleDumpReturnsPlainText(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/dump", nil)
	rec := httptest.NewRecorder()
	s.handleDump(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
}

func TestHandleDisplayRejectsNonPositiveGeometry(t *testing.T) {
	s := newTestServer(t)

	body, _ := json.Marshal(displayRequest{Width: 0, Height: 100})
	req := httptest.NewRequest(http.MethodPost, "/display", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.handleDisplay(rec, req)

	var resp displayResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Error)
}

func TestHandleDisplayAppliesAndPersists(t *testing.T) {
	s := newTestServer(t)

	body, _ := json.Marshal(displayRequest{Width: 640, Height: 480, Rotation: 1})
	req := httptest.NewRequest(http.MethodPost, "/display", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	s.handleDisplay(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp displayResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Error)
	assert.Equal(t, int32(640), resp.Width)

	info, _ := s.pol.GetDisplayInfo(-1)
	assert.Equal(t, int32(640), info.Width)
}

func TestHandleDisplayRejectsNonPost(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/display", nil)
	rec := httptest.NewRecorder()
	s.handleDisplay(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleReopenAccepted(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/reopen", nil)
	rec := httptest.NewRecorder()
	s.handleReopen(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
}
