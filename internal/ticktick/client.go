package ticktick

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/ticktui/ticktui/internal/config"
	qerrors "github.com/ticktui/ticktui/internal/errors"
	"github.com/ticktui/ticktui/internal/logging"
	"github.com/ticktui/ticktui/internal/metrics"
	"github.com/ticktui/ticktui/internal/models"
	"github.com/ticktui/ticktui/internal/transport"
)

// InboxProjectID addresses the user's inbox, which GET /project does not list.
const InboxProjectID = "inbox"

// Client is the typed API client. Operations never return errors: a failed
// read yields nil/empty, a failed write yields nil or false, and the reason
// is logged at warn under the call's correlation id.
type Client struct {
	source  DataSource
	logger  *logging.Logger
	metrics *metrics.Metrics
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	httpClient transport.Doer
	source     DataSource
	logger     *logging.Logger
	metrics    *metrics.Metrics
}

// WithHTTPClient sets the client used by the live source.
func WithHTTPClient(c transport.Doer) Option {
	return func(o *clientOptions) { o.httpClient = c }
}

// WithSource bypasses the dev-flag selection.
func WithSource(s DataSource) Option {
	return func(o *clientOptions) { o.source = s }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(o *clientOptions) { o.logger = l }
}

// WithMetrics sets the metrics sink.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *clientOptions) { o.metrics = m }
}

// New builds a Client. The data source is chosen here, once: synthetic when
// cfg.Dev is set, live otherwise.
func New(cfg *config.Config, opts ...Option) *Client {
	o := clientOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = logging.Discard()
	}

	source := o.source
	if source == nil {
		if cfg.Dev {
			source = NewSyntheticSource()
		} else {
			httpClient := o.httpClient
			if httpClient == nil {
				httpClient = transport.NewClient(transport.Options{
					Timeout:   cfg.API.Timeout,
					UserAgent: cfg.API.UserAgent,
					UTLS:      cfg.API.UTLS,
				})
			}
			source = NewLiveSource(cfg.API.BaseURL, httpClient)
		}
	}

	return &Client{
		source:  source,
		logger:  o.logger.With("component", "ticktick", "source", source.Name()),
		metrics: o.metrics,
	}
}

// Source reports which data source the client was built with.
func (c *Client) Source() string {
	return c.source.Name()
}

// run executes fn under a correlation id, records the outcome and logs
// failures. It reports whether fn succeeded.
func (c *Client) run(ctx context.Context, operation string, fn func(ctx context.Context) error, fields ...interface{}) bool {
	ctx = logging.EnsureCorrelationID(ctx)
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)

	outcome := outcomeOf(err)
	c.metrics.RecordAPIRequest(operation, c.source.Name(), outcome, elapsed)

	fields = append([]interface{}{"operation", operation, "duration_ms", elapsed.Milliseconds()}, fields...)
	if err != nil {
		fields = append(fields, "outcome", outcome, "error", err)
		var rl *transport.RateLimitError
		if stderrors.As(err, &rl) {
			fields = append(fields, "retry_after_s", int64(rl.RetryAfter.Seconds()))
		}
		c.logger.WarnWithContext(ctx, "api operation failed", fields...)
		return false
	}
	c.logger.DebugWithContext(ctx, "api operation succeeded", fields...)
	return true
}

func outcomeOf(err error) string {
	var rl *transport.RateLimitError
	if stderrors.As(err, &rl) {
		return "rate_limited"
	}
	return qerrors.Kind(err)
}

func checkPayload(entity string, payload interface{}) error {
	if err := models.Validate(payload); err != nil {
		return &qerrors.ErrValidation{Entity: entity, Err: err}
	}
	return nil
}

// GetAllProjects returns every project, or an empty list on failure.
func (c *Client) GetAllProjects(ctx context.Context, token string) []models.Project {
	var projects []models.Project
	ok := c.run(ctx, "get_all_projects", func(ctx context.Context) (err error) {
		projects, err = c.source.GetAllProjects(ctx, token)
		return err
	})
	if !ok || projects == nil {
		return []models.Project{}
	}
	return projects
}

// GetProjectByID returns the project or nil.
func (c *Client) GetProjectByID(ctx context.Context, token, projectID string) *models.Project {
	var project *models.Project
	c.run(ctx, "get_project_by_id", func(ctx context.Context) (err error) {
		project, err = c.source.GetProjectByID(ctx, token, projectID)
		return err
	}, "project_id", projectID)
	return project
}

// GetProjectData returns the project with its tasks and columns, or nil.
func (c *Client) GetProjectData(ctx context.Context, token, projectID string) *models.ProjectData {
	var data *models.ProjectData
	c.run(ctx, "get_project_data", func(ctx context.Context) (err error) {
		data, err = c.source.GetProjectData(ctx, token, projectID)
		return err
	}, "project_id", projectID)
	return data
}

// GetTask returns the task or nil.
func (c *Client) GetTask(ctx context.Context, token, projectID, taskID string) *models.Task {
	var task *models.Task
	c.run(ctx, "get_task", func(ctx context.Context) (err error) {
		task, err = c.source.GetTask(ctx, token, projectID, taskID)
		return err
	}, "project_id", projectID, "task_id", taskID)
	return task
}

// CreateTask returns the created task, or nil when the mutation did not take effect.
func (c *Client) CreateTask(ctx context.Context, token string, payload models.TaskCreate) *models.Task {
	var task *models.Task
	c.run(ctx, "create_task", func(ctx context.Context) (err error) {
		if err := checkPayload("task create", &payload); err != nil {
			return err
		}
		task, err = c.source.CreateTask(ctx, token, payload)
		return err
	}, "project_id", payload.ProjectID)
	return task
}

// UpdateTask returns the updated task or nil.
func (c *Client) UpdateTask(ctx context.Context, token string, payload models.TaskUpdate) *models.Task {
	var task *models.Task
	c.run(ctx, "update_task", func(ctx context.Context) (err error) {
		if err := checkPayload("task update", &payload); err != nil {
			return err
		}
		task, err = c.source.UpdateTask(ctx, token, payload)
		return err
	}, "project_id", payload.ProjectID, "task_id", payload.ID)
	return task
}

// CompleteTask marks a task completed.
func (c *Client) CompleteTask(ctx context.Context, token, projectID, taskID string) bool {
	return c.run(ctx, "complete_task", func(ctx context.Context) error {
		return c.source.CompleteTask(ctx, token, projectID, taskID)
	}, "project_id", projectID, "task_id", taskID)
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, token, projectID, taskID string) bool {
	return c.run(ctx, "delete_task", func(ctx context.Context) error {
		return c.source.DeleteTask(ctx, token, projectID, taskID)
	}, "project_id", projectID, "task_id", taskID)
}

// CreateProject returns the created project or nil.
func (c *Client) CreateProject(ctx context.Context, token string, payload models.ProjectCreate) *models.Project {
	var project *models.Project
	c.run(ctx, "create_project", func(ctx context.Context) (err error) {
		if err := checkPayload("project create", &payload); err != nil {
			return err
		}
		project, err = c.source.CreateProject(ctx, token, payload)
		return err
	})
	return project
}

// UpdateProject returns the updated project or nil.
func (c *Client) UpdateProject(ctx context.Context, token string, payload models.ProjectUpdate) *models.Project {
	var project *models.Project
	c.run(ctx, "update_project", func(ctx context.Context) (err error) {
		if err := checkPayload("project update", &payload); err != nil {
			return err
		}
		project, err = c.source.UpdateProject(ctx, token, payload)
		return err
	}, "project_id", payload.ID)
	return project
}

// DeleteProject deletes a project.
func (c *Client) DeleteProject(ctx context.Context, token, projectID string) bool {
	return c.run(ctx, "delete_project", func(ctx context.Context) error {
		return c.source.DeleteProject(ctx, token, projectID)
	}, "project_id", projectID)
}

// GetAllTasks walks the inbox and every project in order and returns their
// tasks concatenated. Subtasks listed in childIds but missing from the
// project snapshots are fetched one by one. Projects that fail are skipped.
func (c *Client) GetAllTasks(ctx context.Context, token string) []models.Task {
	ctx = logging.EnsureCorrelationID(ctx)

	projectIDs := []string{InboxProjectID}
	for _, p := range c.GetAllProjects(ctx, token) {
		projectIDs = append(projectIDs, p.ID)
	}

	tasks := []models.Task{}
	seen := make(map[string]bool)
	for _, pid := range projectIDs {
		data := c.GetProjectData(ctx, token, pid)
		if data == nil {
			continue
		}
		for _, t := range data.Tasks {
			seen[t.ID] = true
			tasks = append(tasks, t)
		}
	}

	return c.fillMissingSubtasks(ctx, token, tasks, seen)
}

func (c *Client) fillMissingSubtasks(ctx context.Context, token string, tasks []models.Task, seen map[string]bool) []models.Task {
	type missing struct{ projectID, taskID string }
	var pending []missing
	for _, t := range tasks {
		for _, child := range t.ChildIDs {
			if !seen[child] {
				seen[child] = true
				pending = append(pending, missing{projectID: t.ProjectID, taskID: child})
			}
		}
	}
	if len(pending) == 0 {
		return tasks
	}

	c.logger.InfoWithContext(ctx, "fetching subtasks missing from project snapshots", "count", len(pending))
	for _, m := range pending {
		if t := c.GetTask(ctx, token, m.projectID, m.taskID); t != nil {
			tasks = append(tasks, *t)
		}
	}
	return tasks
}
