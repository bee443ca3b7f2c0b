package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/arvision/internal/adapters/driven/engine/relay"
	"github.com/custodia-labs/arvision/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/arvision/internal/core/domain"
	"github.com/custodia-labs/arvision/internal/core/services"
)

const iPhoneUA = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15"

type testEnv struct {
	server  *httptest.Server
	store   *memory.DescriptorStore
	manager *services.SessionManager
	install *services.InstallService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	store := memory.NewDescriptorStore()
	ctx := context.Background()
	require.NoError(t, store.Put(ctx, domain.DescriptorBasePath+"/th.fset", make([]byte, 120)))
	require.NoError(t, store.Put(ctx, "/uploads/candidate.jpg", make([]byte, 100)))

	recognition := services.NewRecognitionService(nil, store)
	hub := relay.NewHub(true)
	manager := services.NewSessionManager(hub, nil, recognition, nil)
	t.Cleanup(func() { _ = manager.CloseAll() })
	install := services.NewInstallService(services.NewSettingsService(memory.NewConfigStore()))

	srv, err := NewServer(&Ports{
		Recognition: recognition,
		Sessions:    manager,
		Events:      hub,
		Install:     install,
		Descriptors: store,
	})
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return &testEnv{server: ts, store: store, manager: manager, install: install}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, ua string) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, e.server.URL+path, r)
	require.NoError(t, err)
	if ua != "" {
		req.Header.Set("User-Agent", ua)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestNewServer_RequiresRecognition(t *testing.T) {
	srv, err := NewServer(&Ports{})
	assert.ErrorIs(t, err, ErrMissingRecognitionService)
	assert.Nil(t, srv)

	_, err = NewServer(nil)
	assert.ErrorIs(t, err, ErrMissingRecognitionService)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrInvalidInput, http.StatusBadRequest},
		{domain.ErrUnsupportedType, http.StatusBadRequest},
		{domain.ErrSessionClosed, http.StatusConflict},
		{domain.ErrNotImplemented, http.StatusNotImplemented},
		{domain.ErrFetchFailed, http.StatusBadGateway},
		{fmt.Errorf("%w: %w", domain.ErrFetchFailed, domain.ErrDescriptorMissing), http.StatusBadGateway},
		{io.EOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/health", nil, "")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "OK\n", string(body))
}

func TestRoutes(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/routes", nil, "")
	routes := decode[[]map[string]any](t, resp)

	require.Len(t, routes, 7)
	assert.Equal(t, "/", routes[0]["path"])
	assert.Equal(t, "mindar-image", routes[1]["variant"])
}

func TestListImages(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/images", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	images := decode[[]imageResponse](t, resp)

	require.Len(t, images, 3)
	assert.Equal(t, "logoGifty144x144", images[0].Name)
	assert.Equal(t, "th", images[1].Name)
	assert.Equal(t, "personne", images[2].Name)
}

func TestImageInfo(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/images/personne", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	info := decode[imageResponse](t, resp)
	assert.Equal(t, "Image Personne", info.DisplayName)
	assert.Contains(t, info.Formats, domain.FormatMind)

	resp = env.do(t, http.MethodGet, "/api/images/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestLoadDescriptors(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/images/th/descriptors?format=fset", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	loaded := decode[[]descriptorResponse](t, resp)
	assert.Equal(t, []descriptorResponse{{Format: domain.FormatFSet, Size: 120}}, loaded)

	resp = env.do(t, http.MethodPost, "/api/images/th/descriptors?format=png", nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/images/th/descriptors?format=iset", nil, "")
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/images/nope/descriptors?format=iset", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/images/th/descriptors", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[[]descriptorResponse](t, resp), 1)
}

func TestRecognize(t *testing.T) {
	env := newTestEnv(t)

	t.Run("locator candidate", func(t *testing.T) {
		threshold := 0.5
		resp := env.do(t, http.MethodPost, "/api/recognize", recognizeRequest{
			Image: "th", Format: "fset", Candidate: "/uploads/candidate.jpg", Threshold: &threshold,
		}, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		result := decode[domain.RecognitionResult](t, resp)
		assert.True(t, result.Success)
		assert.True(t, result.Match)
		assert.InDelta(t, 0.8333, result.Similarity, 1e-4)
	})

	t.Run("inline candidate bytes", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/api/recognize", recognizeRequest{
			Image: "th", Format: "fset", CandidateData: make([]byte, 60),
		}, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		result := decode[domain.RecognitionResult](t, resp)
		assert.True(t, result.Success)
		assert.False(t, result.Match)
		assert.InDelta(t, 0.5, result.Similarity, 1e-9)
		assert.InDelta(t, domain.DefaultSimilarityThreshold, result.Threshold, 1e-9)
	})

	t.Run("failure is reported in the result", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/api/recognize", recognizeRequest{
			Image: "nope", Format: "fset", Candidate: "/uploads/candidate.jpg",
		}, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		result := decode[domain.RecognitionResult](t, resp)
		assert.False(t, result.Success)
		assert.NotEmpty(t, result.Error)
	})

	t.Run("missing candidate", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/api/recognize", recognizeRequest{Image: "th", Format: "fset"}, "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("unknown fields", func(t *testing.T) {
		resp := env.do(t, http.MethodPost, "/api/recognize", map[string]string{"bogus": "x"}, "")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}

func TestDescriptorFile(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, domain.DescriptorBasePath+"/th.fset", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/octet-stream", resp.Header.Get("Content-Type"))
	body, _ := io.ReadAll(resp.Body)
	assert.Len(t, body, 120)

	resp = env.do(t, http.MethodGet, domain.DescriptorBasePath+"/th.iset", nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSessionLifecycle(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/sessions", createSessionRequest{Variant: "mindar-image"}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[sessionResponse](t, resp)
	assert.Equal(t, "mindar-image", created.Variant)
	assert.Equal(t, "initializing", created.Phase)
	path := "/api/sessions/" + created.ID

	resp = env.do(t, http.MethodGet, "/api/sessions", nil, "")
	assert.Len(t, decode[[]sessionResponse](t, resp), 1)

	resp = env.do(t, http.MethodPost, path+"/start", nil, "")
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	state := func() sessionResponse {
		return decode[sessionResponse](t, env.do(t, http.MethodGet, path, nil, ""))
	}
	require.Eventually(t, func() bool { return state().Phase != "initializing" }, 2*time.Second, 10*time.Millisecond)

	resp = env.do(t, http.MethodPost, path+"/events", domain.EngineEvent{Type: domain.EventReady}, "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Eventually(t, func() bool { return state().Phase == "ready" }, 2*time.Second, 10*time.Millisecond)

	resp = env.do(t, http.MethodPost, path+"/events", domain.EngineEvent{Type: domain.EventTargetFound}, "")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	require.Eventually(t, func() bool { return state().State.Tracking }, 2*time.Second, 10*time.Millisecond)

	resp = env.do(t, http.MethodPost, path+"/events", map[string]string{"type": "bogus"}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = env.do(t, http.MethodDelete, path, nil, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Empty(t, env.manager.List())

	resp = env.do(t, http.MethodGet, path, nil, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.do(t, http.MethodPost, path+"/events", domain.EngineEvent{Type: domain.EventReady}, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateSession_Errors(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodPost, "/api/sessions", createSessionRequest{Variant: "nope"}, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = env.do(t, http.MethodPost, "/api/sessions",
		createSessionRequest{Variant: "mindar-image", Targets: []string{"th"}}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSessions_NotEnabled(t *testing.T) {
	srv, err := NewServer(&Ports{Recognition: services.NewRecognitionService(nil, memory.NewDescriptorStore())})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions", nil))
	assert.Equal(t, http.StatusNotImplemented, rec.Code)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, domain.DescriptorBasePath+"/th.fset", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInstall(t *testing.T) {
	env := newTestEnv(t)

	resp := env.do(t, http.MethodGet, "/api/install", nil, iPhoneUA)
	state := decode[installResponse](t, resp)
	assert.True(t, state.IOS)
	assert.False(t, state.Installed)
	assert.NotEmpty(t, state.Instructions)

	resp = env.do(t, http.MethodPost, "/api/install", nil, "Mozilla/5.0 (X11; Linux x86_64)")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	env.install.CapturePrompt(func(context.Context) (domain.InstallOutcome, error) {
		return domain.InstallAccepted, nil
	})
	resp = env.do(t, http.MethodGet, "/api/install", nil, "")
	assert.True(t, decode[installResponse](t, resp).Installable)

	resp = env.do(t, http.MethodPost, "/api/install", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, decode[installResponse](t, resp).Installed)

	resp = env.do(t, http.MethodGet, "/api/install?standalone=false", nil, "")
	state = decode[installResponse](t, resp)
	assert.True(t, state.Installed)
	assert.False(t, state.Installable)
}

func TestMCPMount(t *testing.T) {
	recognition := services.NewRecognitionService(nil, memory.NewDescriptorStore())
	mcpHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
	srv, err := NewServer(&Ports{Recognition: recognition, MCP: mcpHandler})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)

	srv, err = NewServer(&Ports{Recognition: recognition})
	require.NoError(t, err)
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
