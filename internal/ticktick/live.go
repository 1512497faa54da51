package ticktick

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	qerrors "github.com/ticktui/ticktui/internal/errors"
	"github.com/ticktui/ticktui/internal/models"
	"github.com/ticktui/ticktui/internal/transport"
)

const maxErrorBody = 512

var (
	okRead   = []int{http.StatusOK}
	okWrite  = []int{http.StatusOK, http.StatusCreated}
	okDelete = []int{http.StatusOK, http.StatusNoContent}
)

// LiveSource talks to the provider's REST API.
type LiveSource struct {
	baseURL string
	client  transport.Doer
	now     func() time.Time
}

// NewLiveSource creates a LiveSource rooted at baseURL (e.g.
// https://api.ticktick.com/open/v1).
func NewLiveSource(baseURL string, client transport.Doer) *LiveSource {
	return &LiveSource{
		baseURL: baseURL,
		client:  client,
		now:     time.Now,
	}
}

func (s *LiveSource) Name() string { return SourceLive }

type call struct {
	method  string
	path    string
	entity  string
	payload interface{}
	out     interface{}
	accept  []int
}

func (s *LiveSource) do(ctx context.Context, token string, c call) error {
	var body io.Reader
	if c.payload != nil {
		data, err := json.Marshal(c.payload)
		if err != nil {
			return &qerrors.ErrValidation{Entity: c.entity, Err: fmt.Errorf("encode payload: %w", err)}
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, c.method, s.baseURL+c.path, body)
	if err != nil {
		return &qerrors.ErrTransport{Operation: c.method + " " + c.path, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if c.payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return transport.RateLimitFromHeaders(resp.Header, fmt.Sprintf("rate limited on %s %s", c.method, c.path), s.now())
	}
	if !accepted(resp.StatusCode, c.accept) {
		return &qerrors.ErrNotFoundOrDenied{
			Method:     c.method,
			Path:       c.path,
			StatusCode: resp.StatusCode,
			Body:       transport.ReadSnippet(resp.Body, maxErrorBody),
		}
	}

	if c.out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(c.out); err != nil {
		return &qerrors.ErrValidation{Entity: c.entity, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func accepted(status int, codes []int) bool {
	if len(codes) == 0 {
		return status >= 200 && status < 300
	}
	for _, c := range codes {
		if status == c {
			return true
		}
	}
	return false
}

func validated[T any](entity string, v *T) (*T, error) {
	if err := models.Validate(v); err != nil {
		return nil, &qerrors.ErrValidation{Entity: entity, Err: err}
	}
	return v, nil
}

func esc(s string) string { return url.PathEscape(s) }

// GetAllProjects lists GET /project.
func (s *LiveSource) GetAllProjects(ctx context.Context, token string) ([]models.Project, error) {
	var projects []models.Project
	err := s.do(ctx, token, call{method: http.MethodGet, path: "/project", entity: "project list", out: &projects, accept: okRead})
	if err != nil {
		return nil, err
	}
	if err := models.ValidateSlice(projects); err != nil {
		return nil, &qerrors.ErrValidation{Entity: "project list", Err: err}
	}
	return projects, nil
}

func (s *LiveSource) GetProjectByID(ctx context.Context, token, projectID string) (*models.Project, error) {
	var project models.Project
	path := "/project/" + esc(projectID)
	if err := s.do(ctx, token, call{method: http.MethodGet, path: path, entity: "project", out: &project, accept: okRead}); err != nil {
		return nil, err
	}
	return validated("project", &project)
}

func (s *LiveSource) GetProjectData(ctx context.Context, token, projectID string) (*models.ProjectData, error) {
	var data models.ProjectData
	path := fmt.Sprintf("/project/%s/data", esc(projectID))
	if err := s.do(ctx, token, call{method: http.MethodGet, path: path, entity: "project data", out: &data, accept: okRead}); err != nil {
		return nil, err
	}
	return validated("project data", &data)
}

func (s *LiveSource) GetTask(ctx context.Context, token, projectID, taskID string) (*models.Task, error) {
	var task models.Task
	path := fmt.Sprintf("/project/%s/task/%s", esc(projectID), esc(taskID))
	if err := s.do(ctx, token, call{method: http.MethodGet, path: path, entity: "task", out: &task, accept: okRead}); err != nil {
		return nil, err
	}
	return validated("task", &task)
}

func (s *LiveSource) CreateTask(ctx context.Context, token string, payload models.TaskCreate) (*models.Task, error) {
	var task models.Task
	if err := s.do(ctx, token, call{method: http.MethodPost, path: "/task", entity: "task", payload: payload, out: &task, accept: okWrite}); err != nil {
		return nil, err
	}
	return validated("task", &task)
}

func (s *LiveSource) UpdateTask(ctx context.Context, token string, payload models.TaskUpdate) (*models.Task, error) {
	var task models.Task
	path := "/task/" + esc(payload.ID)
	if err := s.do(ctx, token, call{method: http.MethodPost, path: path, entity: "task", payload: payload, out: &task, accept: okWrite}); err != nil {
		return nil, err
	}
	return validated("task", &task)
}

// CompleteTask posts an empty body; any 2xx counts, the body is ignored.
func (s *LiveSource) CompleteTask(ctx context.Context, token, projectID, taskID string) error {
	path := fmt.Sprintf("/project/%s/task/%s/complete", esc(projectID), esc(taskID))
	return s.do(ctx, token, call{method: http.MethodPost, path: path, entity: "task"})
}

func (s *LiveSource) DeleteTask(ctx context.Context, token, projectID, taskID string) error {
	path := fmt.Sprintf("/project/%s/task/%s", esc(projectID), esc(taskID))
	return s.do(ctx, token, call{method: http.MethodDelete, path: path, entity: "task", accept: okDelete})
}

func (s *LiveSource) CreateProject(ctx context.Context, token string, payload models.ProjectCreate) (*models.Project, error) {
	var project models.Project
	if err := s.do(ctx, token, call{method: http.MethodPost, path: "/project", entity: "project", payload: payload, out: &project, accept: okWrite}); err != nil {
		return nil, err
	}
	return validated("project", &project)
}

func (s *LiveSource) UpdateProject(ctx context.Context, token string, payload models.ProjectUpdate) (*models.Project, error) {
	var project models.Project
	path := "/project/" + esc(payload.ID)
	if err := s.do(ctx, token, call{method: http.MethodPost, path: path, entity: "project", payload: payload, out: &project, accept: okWrite}); err != nil {
		return nil, err
	}
	return validated("project", &project)
}

func (s *LiveSource) DeleteProject(ctx context.Context, token, projectID string) error {
	path := "/project/" + esc(projectID)
	return s.do(ctx, token, call{method: http.MethodDelete, path: path, entity: "project", accept: okDelete})
}
