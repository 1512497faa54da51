// Package ticktick is the typed client for the TickTick/Dida365 open API.
package ticktick

import (
	"context"

	"github.com/ticktui/ticktui/internal/models"
)

// Source names, used as a metric label.
const (
	SourceLive      = "live"
	SourceSynthetic = "synthetic"
)

// DataSource performs the provider operations. Implementations return typed
// errors; the Client decides what the caller sees.
type DataSource interface {
	Name() string

	GetAllProjects(ctx context.Context, token string) ([]models.Project, error)
	GetProjectByID(ctx context.Context, token, projectID string) (*models.Project, error)
	GetProjectData(ctx context.Context, token, projectID string) (*models.ProjectData, error)
	GetTask(ctx context.Context, token, projectID, taskID string) (*models.Task, error)

	CreateTask(ctx context.Context, token string, payload models.TaskCreate) (*models.Task, error)
	UpdateTask(ctx context.Context, token string, payload models.TaskUpdate) (*models.Task, error)
	CompleteTask(ctx context.Context, token, projectID, taskID string) error
	DeleteTask(ctx context.Context, token, projectID, taskID string) error

	CreateProject(ctx context.Context, token string, payload models.ProjectCreate) (*models.Project, error)
	UpdateProject(ctx context.Context, token string, payload models.ProjectUpdate) (*models.Project, error)
	DeleteProject(ctx context.Context, token, projectID string) error
}
