package models

import "encoding/json"

// Project is a task list in the provider's domain.
type Project struct {
	ID         string  `json:"id" validate:"required"`
	Name       string  `json:"name"`
	Color      *string `json:"color,omitempty"`
	SortOrder  *int64  `json:"sortOrder,omitempty"`
	Closed     *bool   `json:"closed,omitempty"`
	GroupID    *string `json:"groupId,omitempty"`
	ViewMode   *string `json:"viewMode,omitempty"`
	Permission *string `json:"permission,omitempty"`
	Kind       *string `json:"kind,omitempty"`

	// nameMissing is set when a decoded payload had no name key.
	nameMissing bool
}

// UnmarshalJSON records whether the name key was present. An empty name is
// accepted; a missing or null one fails validation.
func (p *Project) UnmarshalJSON(data []byte) error {
	type plain Project
	var raw struct {
		plain
		Name *string `json:"name"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Project(raw.plain)
	if raw.Name == nil {
		p.nameMissing = true
	} else {
		p.Name = *raw.Name
	}
	return nil
}

// IsClosed reports whether the project is archived.
func (p Project) IsClosed() bool {
	return p.Closed != nil && *p.Closed
}

// ProjectData is the full snapshot returned for one project.
type ProjectData struct {
	Project Project                  `json:"project"`
	Tasks   []Task                   `json:"tasks" validate:"dive"`
	Columns []map[string]interface{} `json:"columns,omitempty"`
}

// CompletedTasks returns the tasks whose status is completed.
func (d ProjectData) CompletedTasks() []Task {
	var out []Task
	for _, t := range d.Tasks {
		if t.IsCompleted() {
			out = append(out, t)
		}
	}
	return out
}

// ProjectCreate is the payload for POST /project.
type ProjectCreate struct {
	Name      string  `json:"name" validate:"required"`
	Color     *string `json:"color,omitempty"`
	SortOrder *int64  `json:"sortOrder,omitempty"`
	ViewMode  *string `json:"viewMode,omitempty" validate:"omitempty,oneof=list kanban timeline"`
	Kind      *string `json:"kind,omitempty" validate:"omitempty,oneof=TASK NOTE"`
}

// ProjectUpdate is the payload for POST /project/{id}.
type ProjectUpdate struct {
	ID        string  `json:"id" validate:"required"`
	Name      *string `json:"name,omitempty"`
	Color     *string `json:"color,omitempty"`
	SortOrder *int64  `json:"sortOrder,omitempty"`
	ViewMode  *string `json:"viewMode,omitempty" validate:"omitempty,oneof=list kanban timeline"`
	Kind      *string `json:"kind,omitempty" validate:"omitempty,oneof=TASK NOTE"`
}
