package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"

	"insighthub/internal/models"
)

const defaultTimeout = 10 * time.Second

// Config configures an HTTPClient.
type Config struct {
	BaseURL string
	Token   string
	// Timeout bounds every call. Zero means 10s.
	Timeout time.Duration
	// FailureThreshold is the number of consecutive failures that opens the
	// breaker. Zero means 3.
	FailureThreshold uint32
	// OpenTimeout is how long the breaker stays open. Zero means 5s.
	OpenTimeout time.Duration
}

// HTTPClient talks to the InsightHub API through a circuit breaker.
type HTTPClient struct {
	base    *url.URL
	token   string
	timeout time.Duration
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	log     logrus.FieldLogger
}

var _ Gateway = (*HTTPClient)(nil)

// NewHTTPClient validates cfg and builds a client. A nil logger discards output.
func NewHTTPClient(cfg Config, log logrus.FieldLogger) (*HTTPClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("gateway base url is required")
	}
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse gateway url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("gateway url must be http or https, got %q", cfg.BaseURL)
	}
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 3
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 5 * time.Second
	}

	threshold := cfg.FailureThreshold
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "InsightHubAPI",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.WithFields(logrus.Fields{"breaker": name, "from": from.String(), "to": to.String()}).
				Warn("circuit breaker state changed")
		},
	})

	return &HTTPClient{
		base:    base,
		token:   cfg.Token,
		timeout: cfg.Timeout,
		client:  &http.Client{Timeout: cfg.Timeout},
		breaker: breaker,
		log:     log,
	}, nil
}

// BreakerState reports the breaker's current state.
func (c *HTTPClient) BreakerState() gobreaker.State {
	return c.breaker.State()
}

type response struct {
	status int
	body   []byte
}

type errorBody struct {
	Error string `json:"error"`
}

// target names the resource a call addresses; it fills NotFoundError.
// project is set for task calls, whose 404 may be about the parent.
type target struct {
	kind    string
	id      string
	project string
}

func (t target) notFound(msg string) error {
	if t.project != "" && strings.HasPrefix(msg, "project ") {
		return models.NotFound("project", t.project)
	}
	return models.NotFound(t.kind, t.id)
}

// do sends one request. Only transport failures and 5xx answers count
// against the breaker; 4xx answers come back as typed errors.
func (c *HTTPClient) do(ctx context.Context, op, method, path string, in, out any, tgt target) error {
	var payload []byte
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		payload = raw
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	result, err := c.breaker.Execute(func() (interface{}, error) {
		var body io.Reader
		if payload != nil {
			body = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, fmt.Errorf("server answered %d: %s", resp.StatusCode, serverMessage(raw))
		}
		return response{status: resp.StatusCode, body: raw}, nil
	})
	if err != nil {
		c.log.WithFields(logrus.Fields{"op": op, "method": method, "path": path}).WithError(err).Debug("gateway call failed")
		return &models.PersistenceError{Op: op, Err: err}
	}

	resp := result.(response)
	switch {
	case resp.status == http.StatusNotFound:
		return tgt.notFound(serverMessage(resp.body))
	case resp.status == http.StatusBadRequest:
		return &models.ValidationError{Reason: serverMessage(resp.body)}
	case resp.status == http.StatusUnauthorized || resp.status == http.StatusForbidden:
		return &models.PersistenceError{Op: op, Err: fmt.Errorf("unauthorized: %s", serverMessage(resp.body))}
	case resp.status >= 300:
		return &models.PersistenceError{Op: op, Err: fmt.Errorf("unexpected status %d", resp.status)}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return &models.PersistenceError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func serverMessage(raw []byte) string {
	var body errorBody
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		return body.Error
	}
	msg := strings.TrimSpace(string(raw))
	if len(msg) > 200 {
		msg = msg[:200]
	}
	return msg
}

func projectPath(id string) string { return "/api/projects/" + url.PathEscape(id) }

func taskPath(projectID, taskID string) string {
	return projectPath(projectID) + "/tasks/" + url.PathEscape(taskID)
}

func goalPath(id string) string { return "/api/goals/" + url.PathEscape(id) }

type projectsEnvelope struct {
	Projects []models.Project `json:"projects"`
}

type projectEnvelope struct {
	Project models.Project `json:"project"`
}

type goalsEnvelope struct {
	Goals []models.Goal `json:"goals"`
}

type goalEnvelope struct {
	Goal models.Goal `json:"goal"`
}

func (c *HTTPClient) ListProjects(ctx context.Context) ([]models.Project, error) {
	var out projectsEnvelope
	if err := c.do(ctx, "list projects", http.MethodGet, "/api/projects", nil, &out, target{}); err != nil {
		return nil, err
	}
	if out.Projects == nil {
		out.Projects = []models.Project{}
	}
	return out.Projects, nil
}

func (c *HTTPClient) CreateProject(ctx context.Context, p models.Project) (models.Project, error) {
	var out projectEnvelope
	err := c.do(ctx, "create project", http.MethodPost, "/api/projects", p, &out, target{})
	return out.Project, err
}

func (c *HTTPClient) UpdateProject(ctx context.Context, id string, u models.ProjectUpdate) (models.Project, error) {
	var out projectEnvelope
	err := c.do(ctx, "update project", http.MethodPut, projectPath(id), u, &out, target{kind: "project", id: id})
	return out.Project, err
}

func (c *HTTPClient) DeleteProject(ctx context.Context, id string) (bool, error) {
	err := c.do(ctx, "delete project", http.MethodDelete, projectPath(id), nil, nil, target{kind: "project", id: id})
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *HTTPClient) CreateTask(ctx context.Context, projectID string, in models.TaskInput) (models.Project, error) {
	var out projectEnvelope
	err := c.do(ctx, "create task", http.MethodPost, projectPath(projectID)+"/tasks", in, &out, target{kind: "project", id: projectID})
	return out.Project, err
}

func (c *HTTPClient) UpdateTask(ctx context.Context, projectID, taskID string, u models.TaskUpdates) (models.Project, error) {
	var out projectEnvelope
	err := c.do(ctx, "update task", http.MethodPut, taskPath(projectID, taskID), u, &out, target{kind: "task", id: taskID, project: projectID})
	return out.Project, err
}

func (c *HTTPClient) DeleteTask(ctx context.Context, projectID, taskID string) (models.Project, error) {
	var out projectEnvelope
	err := c.do(ctx, "delete task", http.MethodDelete, taskPath(projectID, taskID), nil, &out, target{kind: "task", id: taskID, project: projectID})
	return out.Project, err
}

func (c *HTTPClient) ListGoals(ctx context.Context) ([]models.Goal, error) {
	var out goalsEnvelope
	if err := c.do(ctx, "list goals", http.MethodGet, "/api/goals", nil, &out, target{}); err != nil {
		return nil, err
	}
	if out.Goals == nil {
		out.Goals = []models.Goal{}
	}
	return out.Goals, nil
}

func (c *HTTPClient) CreateGoal(ctx context.Context, title string, priority models.Priority) (models.Goal, error) {
	var out goalEnvelope
	in := map[string]any{"title": title, "priority": priority}
	err := c.do(ctx, "create goal", http.MethodPost, "/api/goals", in, &out, target{})
	return out.Goal, err
}

func (c *HTTPClient) UpdateGoal(ctx context.Context, id string, u models.GoalUpdate) (models.Goal, error) {
	var out goalEnvelope
	err := c.do(ctx, "update goal", http.MethodPut, goalPath(id), u, &out, target{kind: "goal", id: id})
	return out.Goal, err
}

func (c *HTTPClient) ToggleGoal(ctx context.Context, id string) (models.Goal, error) {
	var out goalEnvelope
	err := c.do(ctx, "toggle goal", http.MethodPatch, goalPath(id)+"/toggle", nil, &out, target{kind: "goal", id: id})
	return out.Goal, err
}

func (c *HTTPClient) DeleteGoal(ctx context.Context, id string) (models.Goal, error) {
	var out goalEnvelope
	err := c.do(ctx, "delete goal", http.MethodDelete, goalPath(id), nil, &out, target{kind: "goal", id: id})
	return out.Goal, err
}

func (c *HTTPClient) DeleteCompletedGoals(ctx context.Context) (int64, error) {
	var out struct {
		DeletedCount int64 `json:"deletedCount"`
	}
	err := c.do(ctx, "delete completed goals", http.MethodDelete, "/api/goals/completed/all", nil, &out, target{})
	return out.DeletedCount, err
}
