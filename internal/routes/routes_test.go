package routes

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zaqqye/app_catalog/internal/catalog"
	"github.com/zaqqye/app_catalog/internal/config"
	"github.com/zaqqye/app_catalog/internal/images"
	"github.com/zaqqye/app_catalog/internal/utils"
	"github.com/zaqqye/app_catalog/internal/ws"
)

type testServer struct {
	*httptest.Server
	client  *http.Client
	dataDir string
}

func newTestServer(t *testing.T, readOnly, production bool) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dataDir := t.TempDir()
	var backend catalog.Backend = catalog.NewLocalBackend(dataDir)
	if readOnly {
		backend = catalog.NewReadOnlyBackend(dataDir)
	}
	hub := ws.NewCatalogHub()
	go hub.Run()

	creds, err := utils.NewCredentials("admin", "secret")
	require.NoError(t, err)

	cfg := &config.Config{SessionSecret: "test-secret", SessionTTLHours: "1", Production: production}
	r := gin.New()
	Register(r, Deps{
		Catalog:     catalog.NewService(backend, catalog.WithNotifier(hub)),
		Images:      images.NewService(images.NewBackendStore(catalog.NewLocalBackend(t.TempDir())), nil),
		Hub:         hub,
		Credentials: creds,
	}, cfg)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &testServer{Server: srv, client: &http.Client{Jar: jar}, dataDir: dataDir}
}

func (s *testServer) do(t *testing.T, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, s.URL+path, rdr)
	require.NoError(t, err)
	if rdr != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func (s *testServer) login(t *testing.T) {
	t.Helper()
	resp, _ := s.do(t, http.MethodPost, "/api/auth", map[string]string{
		"action": "login", "username": "admin", "password": "secret",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}

func TestMutationsRequireSession(t *testing.T) {
	s := newTestServer(t, false, false)

	for _, tc := range []struct{ method, path string }{
		{http.MethodPost, "/api/apps"},
		{http.MethodDelete, "/api/apps"},
		{http.MethodPost, "/api/orders"},
		{http.MethodPost, "/api/images"},
	} {
		resp, _ := s.do(t, tc.method, tc.path, map[string]string{})
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, tc.method+" "+tc.path)
	}
}

func TestLoginLogout(t *testing.T) {
	s := newTestServer(t, false, false)

	resp, _ := s.do(t, http.MethodPost, "/api/auth", map[string]string{
		"action": "login", "username": "admin", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = s.do(t, http.MethodPost, "/api/auth", map[string]string{"action": "dance"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	s.login(t)
	_, body := s.do(t, http.MethodGet, "/api/auth", nil)
	assert.True(t, decode[map[string]bool](t, body)["authenticated"])

	_, body = s.do(t, http.MethodPost, "/api/auth", map[string]string{"action": "check"})
	assert.True(t, decode[map[string]bool](t, body)["authenticated"])

	resp, _ = s.do(t, http.MethodPost, "/api/auth", map[string]string{"action": "logout"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_, body = s.do(t, http.MethodGet, "/api/auth", nil)
	assert.False(t, decode[map[string]bool](t, body)["authenticated"])
}

func TestAppLifecycle(t *testing.T) {
	s := newTestServer(t, false, false)
	s.login(t)

	resp, body := s.do(t, http.MethodPost, "/api/apps", map[string]any{
		"title": "Hello World", "url": "https://hello.example", "tags": []string{" a ", ""},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	created := decode[map[string]any](t, body)
	id, _ := created["id"].(string)
	require.NotEmpty(t, id)
	assert.FileExists(t, filepath.Join(s.dataDir, "apps", "hello-world.json"))

	_, body = s.do(t, http.MethodGet, "/api/orders", nil)
	assert.Equal(t, []string{id}, decode[[]string](t, body))

	resp, body = s.do(t, http.MethodPost, "/api/apps", map[string]any{"id": id, "title": "Hello Again"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	assert.Equal(t, false, decode[map[string]any](t, body)["created"])
	assert.NoFileExists(t, filepath.Join(s.dataDir, "apps", "hello-world.json"))
	assert.FileExists(t, filepath.Join(s.dataDir, "apps", "hello-again.json"))

	_, body = s.do(t, http.MethodGet, "/api/apps", nil)
	apps := decode[[]map[string]any](t, body)
	require.Len(t, apps, 1)
	assert.Equal(t, "Hello Again", apps[0]["title"])
	assert.Equal(t, "internal", apps[0]["category"])

	resp, _ = s.do(t, http.MethodDelete, "/api/apps", map[string]string{"id": id})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_, body = s.do(t, http.MethodGet, "/api/orders", nil)
	assert.Empty(t, decode[[]string](t, body))

	resp, body = s.do(t, http.MethodDelete, "/api/apps", map[string]string{"id": id})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "App not found", decode[map[string]string](t, body)["error"])
}

func TestSaveRequiresTitle(t *testing.T) {
	s := newTestServer(t, false, false)
	s.login(t)

	resp, body := s.do(t, http.MethodPost, "/api/apps", map[string]string{"url": "https://x"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Title is required", decode[map[string]string](t, body)["error"])
}

func TestNumericIDsOnSaveAndDelete(t *testing.T) {
	s := newTestServer(t, false, false)
	s.login(t)

	resp, _ := s.do(t, http.MethodPost, "/api/apps", `{"id": 1700000000000, "title": "Numeric"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body := s.do(t, http.MethodPost, "/api/apps", `{"id": 1700000000000, "title": "Numeric Renamed"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	saved := decode[map[string]any](t, body)
	assert.Equal(t, "1700000000000", saved["id"])
	assert.Equal(t, false, saved["created"])

	resp, _ = s.do(t, http.MethodDelete, "/api/apps", `{"id": 1700000000000}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestOrdersUpdate(t *testing.T) {
	s := newTestServer(t, false, false)
	s.login(t)

	resp, _ := s.do(t, http.MethodPost, "/api/orders", `["x", 5]`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp, _ = s.do(t, http.MethodPost, "/api/orders", `{"ids": ["x"]}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = s.do(t, http.MethodPost, "/api/orders", []string{"b", "a", "ghost"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_, body := s.do(t, http.MethodGet, "/api/orders", nil)
	assert.Equal(t, []string{"b", "a", "ghost"}, decode[[]string](t, body))
}

func TestReadOnlyBackendRejectsWrites(t *testing.T) {
	s := newTestServer(t, true, false)
	require.NoError(t, os.MkdirAll(filepath.Join(s.dataDir, "apps"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(s.dataDir, "apps", "kept.json"),
		[]byte(`{"id":"1","title":"Kept","category":"internal"}`), 0o644))
	s.login(t)

	resp, body := s.do(t, http.MethodPost, "/api/apps", map[string]string{"title": "New"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Contains(t, decode[map[string]string](t, body)["error"], "catalogctl")

	_, body = s.do(t, http.MethodGet, "/api/apps", nil)
	assert.Len(t, decode[[]map[string]any](t, body), 1)
}

func TestAppsListETag(t *testing.T) {
	s := newTestServer(t, false, false)

	resp, _ := s.do(t, http.MethodGet, "/api/apps", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	etag := resp.Header.Get("ETag")
	require.NotEmpty(t, etag)

	req, err := http.NewRequest(http.MethodGet, s.URL+"/api/apps", nil)
	require.NoError(t, err)
	req.Header.Set("If-None-Match", etag)
	resp, err = s.client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotModified, resp.StatusCode)
}

func TestImageUploadAndServe(t *testing.T) {
	s := newTestServer(t, false, false)
	s.login(t)

	png := append([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}, make([]byte, 16)...)
	resp, body := s.do(t, http.MethodPost, "/api/images", map[string]any{
		"title": "Pic App",
		"image": "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	path := decode[map[string]string](t, body)["path"]
	assert.Equal(t, "/images/apps/pic-app-a.png", path)

	resp, body = s.do(t, http.MethodGet, path, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Equal(t, png, body)

	resp, _ = s.do(t, http.MethodGet, "/images/apps/missing-a.png", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = s.do(t, http.MethodPost, "/api/images", map[string]string{"title": "x", "image": "data:image/gif;base64,AAAA"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAdminPageHiddenInProduction(t *testing.T) {
	dev := newTestServer(t, false, false)
	resp, body := dev.do(t, http.MethodGet, "/admin", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "local")

	prod := newTestServer(t, false, true)
	resp, _ = prod.do(t, http.MethodGet, "/admin", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAuditWithoutDatabase(t *testing.T) {
	s := newTestServer(t, false, false)
	s.login(t)
	resp, _ := s.do(t, http.MethodGet, "/api/audit", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCorruptOrderFileStillListsApps(t *testing.T) {
	s := newTestServer(t, false, false)
	require.NoError(t, os.MkdirAll(filepath.Join(s.dataDir, "apps"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(s.dataDir, "apps", "one.json"),
		[]byte(`{"id":"1","title":"One","category":"internal"}`), 0o644))

	for _, raw := range []string{`{}`, `null`, `[1,"a"]`} {
		require.NoError(t, os.WriteFile(filepath.Join(s.dataDir, "orders.json"), []byte(raw), 0o644))

		resp, body := s.do(t, http.MethodGet, "/api/apps", nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, raw)
		apps := decode[[]map[string]any](t, body)
		require.Len(t, apps, 1)
		assert.Equal(t, "1", apps[0]["id"])

		resp, _ = s.do(t, http.MethodGet, "/api/orders", nil)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode, raw)
	}
}
