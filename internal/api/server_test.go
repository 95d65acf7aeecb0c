package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bodypress/bodypress/internal/backend"
	"github.com/bodypress/bodypress/internal/db"
	"github.com/bodypress/bodypress/internal/generate"
	"github.com/bodypress/bodypress/internal/journal"
	"github.com/bodypress/bodypress/internal/window"
)

// stubRemote answers every ask with a canned response.
type stubRemote struct {
	response string
	err      error
	asks     int
}

func (s *stubRemote) Ask(ctx context.Context, req backend.AskRequest) (string, error) {
	s.asks++
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubRemote) CheckHealth(ctx context.Context) bool { return true }

// noopBridge is a local runtime that supports nothing.
type noopBridge struct{}

func (noopBridge) Resolve(ctx context.Context, model string) (backend.ResolvedModel, error) {
	return backend.ResolvedModel{Name: model}, nil
}
func (noopBridge) Download(ctx context.Context, model string, onProgress func(float64)) error {
	return backend.ErrUnsupported
}
func (noopBridge) Activate(ctx context.Context, model string) error   { return backend.ErrUnsupported }
func (noopBridge) Deactivate(ctx context.Context, model string) error { return backend.ErrUnsupported }
func (noopBridge) Delete(ctx context.Context, model string) error     { return backend.ErrUnsupported }
func (noopBridge) Ask(ctx context.Context, model string, req backend.AskRequest) (string, error) {
	return "", backend.ErrUnsupported
}

func entryJSON() string {
	return `{"headline":"Sunny miles","summary":"A long walk.","full_body":"You walked far today.","mood":"energised","mood_emoji":"⚡","tags":["walking"]}`
}

type testEnv struct {
	server *httptest.Server
	store  *journal.Store
	remote *stubRemote
	router *backend.Router
}

func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	store := journal.NewStore(database)
	remote := &stubRemote{response: entryJSON()}
	local := backend.NewLocalModel(noopBridge{}, "ollama", "llama3.2", zerolog.Nop())
	router := backend.NewRouter(remote, local, backend.ModeRemote, zerolog.Nop())
	windows := window.NewBuilder(store, nil)
	gen := generate.New(router, windows, zerolog.Nop(), generate.Options{})

	srv := NewServer(ServerConfig{}, store, router, windows, gen, zerolog.Nop())
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	return &testEnv{server: ts, store: store, remote: remote, router: router}
}

func (e *testEnv) do(t *testing.T, method, path string, body any) *http.Response {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestHealth(t *testing.T) {
	env := setupTestServer(t)

	resp := env.do(t, "GET", "/health", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	body := decodeBody[healthResponse](t, resp)
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "remote", body.Backend.Mode)
}

func TestCreateAndGetCapture(t *testing.T) {
	env := setupTestServer(t)

	resp := env.do(t, "POST", "/v1/captures", captureRequest{
		Note:   "coffee on the balcony",
		Mood:   "calm",
		Health: &journal.Health{Steps: 2500, SleepHours: 8},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decodeBody[journal.Capture](t, resp)
	require.NotEmpty(t, created.ID)
	assert.Equal(t, journal.SourceManual, created.Source)

	resp = env.do(t, "GET", "/v1/captures/"+created.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	got := decodeBody[journal.Capture](t, resp)
	assert.Equal(t, "coffee on the balcony", got.Note)
	require.NotNil(t, got.Health)
	assert.Equal(t, 2500, got.Health.Steps)
}

func TestCreateCapture_InvalidSource(t *testing.T) {
	env := setupTestServer(t)

	resp := env.do(t, "POST", "/v1/captures", captureRequest{Source: "martian"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetCapture_NotFound(t *testing.T) {
	env := setupTestServer(t)

	resp := env.do(t, "GET", "/v1/captures/does-not-exist", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListCapturesByDay(t *testing.T) {
	env := setupTestServer(t)

	for i := 0; i < 3; i++ {
		resp := env.do(t, "POST", "/v1/captures", captureRequest{Note: fmt.Sprintf("c%d", i)})
		resp.Body.Close()
	}

	day := todayDate()
	resp := env.do(t, "GET", "/v1/captures?day="+day, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody[struct {
		Captures []journal.Capture `json:"captures"`
		Count    int               `json:"count"`
	}](t, resp)
	assert.Equal(t, 3, body.Count)
}

func TestGenerateEntry(t *testing.T) {
	env := setupTestServer(t)

	day := todayDate()
	resp := env.do(t, "POST", "/v1/captures", captureRequest{
		Health: &journal.Health{Steps: 12000, SleepHours: 7.5},
	})
	resp.Body.Close()

	resp = env.do(t, "POST", "/v1/entries/"+day+"/generate", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody[generateResponse](t, resp)
	require.True(t, body.Generated)
	require.NotNil(t, body.Entry)
	assert.Equal(t, "Sunny miles", body.Entry.Headline)
	assert.Equal(t, journal.MoodEnergised, body.Entry.Mood)
	assert.Equal(t, 12000, body.Entry.Snapshot.Steps)

	// The day's captures are now folded into the entry.
	captures, err := env.store.ListCapturesByDay(day)
	require.NoError(t, err)
	for _, c := range captures {
		assert.True(t, c.Processed)
	}
}

func TestGenerateEntry_NoData(t *testing.T) {
	env := setupTestServer(t)

	resp := env.do(t, "POST", "/v1/entries/2025-06-15/generate", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody[generateResponse](t, resp)
	assert.False(t, body.Generated)
	assert.Equal(t, "no-data", body.Reason)
	assert.Zero(t, env.remote.asks, "empty days must not reach the backend")
}

func TestGenerateEntry_BackendFailure(t *testing.T) {
	env := setupTestServer(t)
	env.remote.err = backend.NewServiceError("service melted")

	resp := env.do(t, "POST", "/v1/captures", captureRequest{
		Health: &journal.Health{Steps: 100},
	})
	resp.Body.Close()

	resp = env.do(t, "POST", "/v1/entries/"+todayDate()+"/generate", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, "backend failures are outcomes, not HTTP errors")
	body := decodeBody[generateResponse](t, resp)
	assert.False(t, body.Generated)
	assert.Equal(t, "backend-error", body.Reason)
}

func TestAnnotateEntry(t *testing.T) {
	env := setupTestServer(t)

	require.NoError(t, env.store.UpsertEntry(journal.Entry{
		Date: "2025-06-15", Headline: "Quiet", Mood: journal.MoodQuiet,
	}))

	resp := env.do(t, "PUT", "/v1/entries/2025-06-15/annotations", annotateRequest{
		UserNote: "met Ana for lunch",
		UserMood: "happy",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	e := decodeBody[journal.Entry](t, resp)
	assert.Equal(t, "met Ana for lunch", e.UserNote)
	assert.Equal(t, "happy", e.UserMood)

	// "-" clears, empty leaves untouched.
	resp = env.do(t, "PUT", "/v1/entries/2025-06-15/annotations", annotateRequest{UserMood: "-"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	e = decodeBody[journal.Entry](t, resp)
	assert.Equal(t, "met Ana for lunch", e.UserNote)
	assert.Empty(t, e.UserMood)
}

func TestAnnotateEntry_NotFound(t *testing.T) {
	env := setupTestServer(t)

	resp := env.do(t, "PUT", "/v1/entries/2025-01-01/annotations", annotateRequest{UserNote: "x"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestContextWindowExport(t *testing.T) {
	env := setupTestServer(t)

	require.NoError(t, env.store.UpsertEntry(journal.Entry{
		Date:     "2025-06-15",
		Headline: "Sunshine",
		Mood:     journal.MoodEnergised,
		Snapshot: journal.DailySnapshot{Steps: 12000, SleepHours: 7.5},
	}))

	resp := env.do(t, "GET", "/v1/context?days=7", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")

	defer resp.Body.Close()
	buf := new(bytes.Buffer)
	_, err := buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	text := buf.String()

	assert.Contains(t, text, "7-DAY CONTEXT WINDOW")
	assert.Contains(t, text, "2025-06-15")
	assert.Contains(t, text, "END CONTEXT WINDOW")
}

func TestModeRoundTrip(t *testing.T) {
	env := setupTestServer(t)

	resp := env.do(t, "GET", "/v1/mode", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody[map[string]string](t, resp)
	assert.Equal(t, "remote", body["mode"])

	resp = env.do(t, "PUT", "/v1/mode", modeRequest{Mode: "local"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	assert.Equal(t, backend.ModeLocal, env.router.Mode())
	mode, err := env.store.Setting(journal.SettingMode)
	require.NoError(t, err)
	assert.Equal(t, "local", mode)
}

func TestSetMode_Invalid(t *testing.T) {
	env := setupTestServer(t)

	resp := env.do(t, "PUT", "/v1/mode", modeRequest{Mode: "hybrid"})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLocalModeNeverFallsBackOverHTTP(t *testing.T) {
	env := setupTestServer(t)

	resp := env.do(t, "PUT", "/v1/mode", modeRequest{Mode: "local"})
	resp.Body.Close()

	resp = env.do(t, "POST", "/v1/captures", captureRequest{
		Health: &journal.Health{Steps: 500},
	})
	resp.Body.Close()

	resp = env.do(t, "POST", "/v1/entries/"+todayDate()+"/generate", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	body := decodeBody[generateResponse](t, resp)
	assert.False(t, body.Generated)
	assert.Equal(t, "backend-error", body.Reason)
	assert.Zero(t, env.remote.asks, "local-mode failure must never reach the remote backend")
}

func TestModelStatus(t *testing.T) {
	env := setupTestServer(t)

	resp := env.do(t, "GET", "/v1/model", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cfg := decodeBody[backend.Config](t, resp)
	assert.Equal(t, backend.StatusNotDownloaded, cfg.Status)
	assert.Equal(t, "llama3.2", cfg.ModelName)
}

func TestModelActivate_FromNotDownloaded(t *testing.T) {
	env := setupTestServer(t)

	resp := env.do(t, "POST", "/v1/model/activate", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cfg := decodeBody[backend.Config](t, resp)
	assert.Equal(t, backend.StatusNotDownloaded, cfg.Status, "refused activation leaves state unchanged")
	assert.NotEmpty(t, cfg.LastError)
}

func TestStats(t *testing.T) {
	env := setupTestServer(t)

	resp := env.do(t, "POST", "/v1/captures", captureRequest{Note: "one"})
	resp.Body.Close()

	resp = env.do(t, "GET", "/v1/stats", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	stats := decodeBody[statsResponse](t, resp)
	assert.Equal(t, 1, stats.Captures)
	assert.Equal(t, 1, stats.Unprocessed)
	assert.Equal(t, 0, stats.Entries)
}

func todayDate() string {
	return time.Now().UTC().Format(journal.DateLayout)
}
