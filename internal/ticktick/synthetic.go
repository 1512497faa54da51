package ticktick

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	qerrors "github.com/ticktui/ticktui/internal/errors"
	"github.com/ticktui/ticktui/internal/models"
)

// syntheticNamespace seeds the deterministic ids handed out for created entities.
var syntheticNamespace = uuid.MustParse("5b1f6c3e-2d7a-4f0e-9c8b-7a6d5e4f3c2b")

// SyntheticSource serves fixed fixtures and never touches the network.
// The token is ignored.
type SyntheticSource struct {
	now func() time.Time
}

// NewSyntheticSource creates a SyntheticSource.
func NewSyntheticSource() *SyntheticSource {
	return &SyntheticSource{now: time.Now}
}

func (s *SyntheticSource) Name() string { return SourceSynthetic }

func (s *SyntheticSource) GetAllProjects(context.Context, string) ([]models.Project, error) {
	return []models.Project{
		{ID: "dummy1", Name: "Dummy Project 1", Color: models.Ptr("#FF0000"), SortOrder: models.Ptr(int64(1))},
		{ID: "dummy2", Name: "Dummy Project 2", Color: models.Ptr("#00FF00"), SortOrder: models.Ptr(int64(2))},
	}, nil
}

func (s *SyntheticSource) GetProjectByID(ctx context.Context, token, projectID string) (*models.Project, error) {
	projects, _ := s.GetAllProjects(ctx, token)
	for i := range projects {
		if projects[i].ID == projectID {
			return &projects[i], nil
		}
	}
	p := syntheticProject(projectID)
	return &p, nil
}

func (s *SyntheticSource) GetProjectData(_ context.Context, _ string, projectID string) (*models.ProjectData, error) {
	return &models.ProjectData{
		Project: syntheticProject(projectID),
		Tasks:   s.syntheticTasks(projectID),
		Columns: []map[string]interface{}{},
	}, nil
}

func (s *SyntheticSource) GetTask(_ context.Context, _ string, projectID, taskID string) (*models.Task, error) {
	for _, t := range s.syntheticTasks(projectID) {
		if t.ID == taskID {
			task := t
			return &task, nil
		}
	}
	return nil, &qerrors.ErrNotFoundOrDenied{
		Method:     http.MethodGet,
		Path:       fmt.Sprintf("/project/%s/task/%s", projectID, taskID),
		StatusCode: http.StatusNotFound,
	}
}

// CreateTask echoes the payload back with an id derived from project and title.
func (s *SyntheticSource) CreateTask(_ context.Context, _ string, p models.TaskCreate) (*models.Task, error) {
	return &models.Task{
		ID:         syntheticID("task", p.ProjectID, p.Title),
		ProjectID:  p.ProjectID,
		Title:      p.Title,
		Status:     models.Ptr(models.TaskStatusNormal),
		Content:    p.Content,
		Desc:       p.Desc,
		IsAllDay:   p.IsAllDay,
		StartDate:  p.StartDate,
		DueDate:    p.DueDate,
		TimeZone:   p.TimeZone,
		Reminders:  p.Reminders,
		RepeatFlag: p.RepeatFlag,
		Priority:   p.Priority,
		SortOrder:  p.SortOrder,
		Items:      p.Items,
	}, nil
}

// UpdateTask applies the set fields on top of the fixture task with that id,
// or on a blank task when there is none.
func (s *SyntheticSource) UpdateTask(ctx context.Context, token string, p models.TaskUpdate) (*models.Task, error) {
	task, err := s.GetTask(ctx, token, p.ProjectID, p.ID)
	if err != nil {
		task = &models.Task{ID: p.ID, ProjectID: p.ProjectID}
	}
	if p.Title != nil {
		task.Title = *p.Title
	}
	setIf(&task.Content, p.Content)
	setIf(&task.Desc, p.Desc)
	setIf(&task.IsAllDay, p.IsAllDay)
	setIf(&task.StartDate, p.StartDate)
	setIf(&task.DueDate, p.DueDate)
	setIf(&task.TimeZone, p.TimeZone)
	setIf(&task.RepeatFlag, p.RepeatFlag)
	setIf(&task.Priority, p.Priority)
	setIf(&task.SortOrder, p.SortOrder)
	if p.Reminders != nil {
		task.Reminders = p.Reminders
	}
	if p.Items != nil {
		task.Items = p.Items
	}
	return task, nil
}

func (s *SyntheticSource) CompleteTask(context.Context, string, string, string) error { return nil }

func (s *SyntheticSource) DeleteTask(context.Context, string, string, string) error { return nil }

func (s *SyntheticSource) CreateProject(_ context.Context, _ string, p models.ProjectCreate) (*models.Project, error) {
	return &models.Project{
		ID:        syntheticID("project", p.Name),
		Name:      p.Name,
		Color:     p.Color,
		SortOrder: p.SortOrder,
		ViewMode:  p.ViewMode,
		Kind:      p.Kind,
	}, nil
}

func (s *SyntheticSource) UpdateProject(ctx context.Context, token string, p models.ProjectUpdate) (*models.Project, error) {
	project, _ := s.GetProjectByID(ctx, token, p.ID)
	if p.Name != nil {
		project.Name = *p.Name
	}
	setIf(&project.Color, p.Color)
	setIf(&project.SortOrder, p.SortOrder)
	setIf(&project.ViewMode, p.ViewMode)
	setIf(&project.Kind, p.Kind)
	return project, nil
}

func (s *SyntheticSource) DeleteProject(context.Context, string, string) error { return nil }

func syntheticProject(projectID string) models.Project {
	return models.Project{
		ID:        projectID,
		Name:      "Dummy Project " + projectID,
		Color:     models.Ptr("#123456"),
		SortOrder: models.Ptr(int64(1)),
	}
}

// syntheticTasks builds fresh fixtures on every call; no two fields share a
// pointer.
func (s *SyntheticSource) syntheticTasks(projectID string) []models.Task {
	now := s.now()
	at := func() *models.Time {
		t := models.NewTime(now)
		return &t
	}
	return []models.Task{
		{
			ID:        "task1",
			ProjectID: projectID,
			Title:     "Dummy Task 1",
			Status:    models.Ptr(models.TaskStatusNormal),
			Content:   models.Ptr("Memo for Dummy Task 1"),
			StartDate: at(),
			DueDate:   at(),
		},
		{
			ID:        "task2",
			ProjectID: projectID,
			Title:     "Dummy Task 2",
			Status:    models.Ptr(models.TaskStatusCompleted),
			Content:   models.Ptr("Memo for Dummy Task 2"),
			StartDate: at(),
			DueDate:   at(),
		},
	}
}

func syntheticID(parts ...string) string {
	name := ""
	for _, p := range parts {
		name += p + "/"
	}
	return uuid.NewSHA1(syntheticNamespace, []byte(name)).String()
}

func setIf[T any](dst **T, src *T) {
	if src != nil {
		*dst = src
	}
}
