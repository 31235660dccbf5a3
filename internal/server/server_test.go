package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insighthub/internal/auth"
	"insighthub/internal/models"
	"insighthub/internal/storage/memory"
	"insighthub/internal/storage/storagetest"
)

type projectEnvelope struct {
	Project models.Project `json:"project"`
}

type goalEnvelope struct {
	Goal models.Goal `json:"goal"`
}

func newTestServer(t *testing.T, opts Options) (*Server, *memory.Store) {
	t.Helper()
	store := memory.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(store, logger, opts), store
}

func do(t *testing.T, srv *Server, method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		switch b := body.(type) {
		case string:
			r = bytes.NewBufferString(b)
		default:
			raw, err := json.Marshal(b)
			require.NoError(t, err)
			r = bytes.NewReader(raw)
		}
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, Options{})
	w := do(t, srv, http.MethodGet, "/api/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestProjectEndpoints(t *testing.T) {
	srv, store := newTestServer(t, Options{})

	w := do(t, srv, http.MethodPost, "/api/projects", storagetest.SampleProject(store))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	created := decode[projectEnvelope](t, w).Project
	require.NotEmpty(t, created.ID)

	w = do(t, srv, http.MethodGet, "/api/projects", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct {
		Projects []models.Project `json:"projects"`
	}](t, w)
	require.Len(t, list.Projects, 1)

	w = do(t, srv, http.MethodGet, "/api/projects/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, srv, http.MethodPut, "/api/projects/"+created.ID, `{"title":"Site v2","status":"completed"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[projectEnvelope](t, w).Project
	assert.Equal(t, "Site v2", updated.Title)
	assert.Equal(t, models.ProjectCompleted, updated.Status)
	assert.Len(t, updated.TaskDetails.Todo, 1)

	w = do(t, srv, http.MethodPut, "/api/projects/"+created.ID, `{"status":"archived"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, srv, http.MethodPut, "/api/projects/"+created.ID, `{"taskDetails":{"todo":[],"inProgress":[],"done":[{"title":"Ship","status":"done"}]}}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	replaced := decode[projectEnvelope](t, w).Project
	assert.Empty(t, replaced.TaskDetails.Todo)
	require.Len(t, replaced.TaskDetails.Done, 1)

	w = do(t, srv, http.MethodDelete, "/api/projects/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = do(t, srv, http.MethodGet, "/api/projects/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, srv, http.MethodDelete, "/api/projects/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateProjectRejectsBadInput(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"title":`},
		{"missing title", `{"description":"no title"}`},
		{"bad percentage", `{"title":"x","completedPercentage":150}`},
		{"task in wrong bucket", `{"title":"x","taskDetails":{"todo":[{"title":"t","status":"done"}]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, srv, http.MethodPost, "/api/projects", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
			assert.Contains(t, w.Body.String(), `"error"`)
		})
	}
}

func TestTaskEndpoints(t *testing.T) {
	srv, store := newTestServer(t, Options{})
	p, err := store.CreateProject(context.Background(), storagetest.SampleProject(store))
	require.NoError(t, err)
	base := "/api/projects/" + p.ID + "/tasks"

	w := do(t, srv, http.MethodPost, base, `{"title":"Write copy","status":"in-progress","priority":"low"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	got := decode[projectEnvelope](t, w).Project
	require.Len(t, got.TaskDetails.InProgress, 2)
	taskID := got.TaskDetails.InProgress[1].ID

	w = do(t, srv, http.MethodPut, base+"/"+taskID, `{"status":"done"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	got = decode[projectEnvelope](t, w).Project
	require.Len(t, got.TaskDetails.Done, 1)
	assert.Equal(t, "Write copy", got.TaskDetails.Done[0].Title)
	assert.Equal(t, models.PriorityLow, got.TaskDetails.Done[0].Priority)

	w = do(t, srv, http.MethodPut, base+"/"+taskID, `{"status":"blocked"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, srv, http.MethodPost, base, `{"title":"  "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, srv, http.MethodPut, base+"/nope", `{"title":"x"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, srv, http.MethodDelete, base+"/"+taskID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[projectEnvelope](t, w).Project.TaskDetails.Done)

	w = do(t, srv, http.MethodPost, "/api/projects/missing/tasks", `{"title":"x"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGoalEndpoints(t *testing.T) {
	srv, _ := newTestServer(t, Options{})

	w := do(t, srv, http.MethodPost, "/api/goals", `{"title":"  Read  "}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	g := decode[goalEnvelope](t, w).Goal
	assert.Equal(t, "Read", g.Title)
	assert.Equal(t, models.PriorityMedium, g.Priority)

	w = do(t, srv, http.MethodPost, "/api/goals", `{"title":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, srv, http.MethodPatch, "/api/goals/"+g.ID+"/toggle", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, decode[goalEnvelope](t, w).Goal.Completed)

	w = do(t, srv, http.MethodPut, "/api/goals/"+g.ID, `{"priority":"high"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, models.PriorityHigh, decode[goalEnvelope](t, w).Goal.Priority)

	w = do(t, srv, http.MethodPost, "/api/goals", `{"title":"Keep","priority":"low"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = do(t, srv, http.MethodGet, "/api/goals", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[struct {
		Goals []models.Goal `json:"goals"`
	}](t, w)
	assert.Len(t, list.Goals, 2)

	w = do(t, srv, http.MethodDelete, "/api/goals/completed/all", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"deletedCount":1}`, w.Body.String())

	w = do(t, srv, http.MethodGet, "/api/goals/"+g.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = do(t, srv, http.MethodDelete, "/api/goals/"+g.ID, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBearerAuth(t *testing.T) {
	srv, _ := newTestServer(t, Options{JWTSecret: "s3cret"})

	w := do(t, srv, http.MethodGet, "/api/goals", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(t, srv, http.MethodGet, "/api/goals", nil, "Authorization", "Bearer nope")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := auth.Issue("s3cret", "user-1", "Alice", time.Hour)
	require.NoError(t, err)
	w = do(t, srv, http.MethodGet, "/api/goals", nil, "Authorization", "Bearer "+token)
	assert.Equal(t, http.StatusOK, w.Code)

	w = do(t, srv, http.MethodGet, "/api/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code, "health stays public")
}

func TestCORS(t *testing.T) {
	srv, _ := newTestServer(t, Options{AllowedOrigins: []string{"http://localhost:5173"}})

	w := do(t, srv, http.MethodOptions, "/api/projects", nil, "Origin", "http://localhost:5173")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	w = do(t, srv, http.MethodGet, "/api/goals", nil, "Origin", "http://evil.example")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestStaticFallback(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>hub</html>"), 0o644))

	srv, _ := newTestServer(t, Options{StaticDir: dir})

	w := do(t, srv, http.MethodGet, "/dashboard/projects", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "hub")

	w = do(t, srv, http.MethodGet, "/api/unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(models.Invalid("title", "required")))
	assert.Equal(t, http.StatusNotFound, statusFor(models.NotFound("project", "x")))
	assert.Equal(t, http.StatusInternalServerError, statusFor(io.ErrUnexpectedEOF))
}
