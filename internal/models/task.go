package models

import "encoding/json"

// Task status values. Only these two are interpreted.
const (
	TaskStatusNormal    = 0
	TaskStatusCompleted = 2
)

// Task is a single to-do item belonging to exactly one project.
type Task struct {
	ID            string          `json:"id" validate:"required"`
	ProjectID     string          `json:"projectId" validate:"required"`
	Title         string          `json:"title"`
	Status        *int            `json:"status,omitempty"`
	Content       *string         `json:"content,omitempty"`
	Desc          *string         `json:"desc,omitempty"`
	StartDate     *Time           `json:"startDate,omitempty"`
	DueDate       *Time           `json:"dueDate,omitempty"`
	IsAllDay      *bool           `json:"isAllDay,omitempty"`
	CompletedTime *Time           `json:"completedTime,omitempty"`
	Reminders     []string        `json:"reminders,omitempty"`
	Priority      *int            `json:"priority,omitempty"`
	RepeatFlag    *string         `json:"repeatFlag,omitempty"`
	SortOrder     *int64          `json:"sortOrder,omitempty"`
	TimeZone      *string         `json:"timeZone,omitempty"`
	Tags          []string        `json:"tags,omitempty"`
	ParentID      *string         `json:"parentId,omitempty"`
	ChildIDs      []string        `json:"childIds,omitempty"`
	Items         []ChecklistItem `json:"items,omitempty" validate:"dive"`

	// titleMissing is set when a decoded payload had no title key.
	titleMissing bool
}

// UnmarshalJSON records whether the title key was present.
func (t *Task) UnmarshalJSON(data []byte) error {
	type plain Task
	var raw struct {
		plain
		Title *string `json:"title"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*t = Task(raw.plain)
	if raw.Title == nil {
		t.titleMissing = true
	} else {
		t.Title = *raw.Title
	}
	return nil
}

// IsCompleted reports whether status is 2.
func (t Task) IsCompleted() bool {
	return t.Status != nil && *t.Status == TaskStatusCompleted
}

// StatusLabel renders the interpreted status.
func (t Task) StatusLabel() string {
	if t.IsCompleted() {
		return "Completed"
	}
	return "Normal"
}

// ChecklistItem is a sub-item inside a checklist task.
type ChecklistItem struct {
	ID            string  `json:"id,omitempty"`
	Title         string  `json:"title"`
	Status        *int    `json:"status,omitempty"` // 0 normal, 1 completed
	SortOrder     *int64  `json:"sortOrder,omitempty"`
	StartDate     *Time   `json:"startDate,omitempty"`
	IsAllDay      *bool   `json:"isAllDay,omitempty"`
	CompletedTime *Time   `json:"completedTime,omitempty"`
	TimeZone      *string `json:"timeZone,omitempty"`
}

// TaskCreate is the payload for POST /task. Only set fields are serialized.
type TaskCreate struct {
	Title      string          `json:"title" validate:"required"`
	ProjectID  string          `json:"projectId" validate:"required"`
	Content    *string         `json:"content,omitempty"`
	Desc       *string         `json:"desc,omitempty"`
	IsAllDay   *bool           `json:"isAllDay,omitempty"`
	StartDate  *Time           `json:"startDate,omitempty"`
	DueDate    *Time           `json:"dueDate,omitempty"`
	TimeZone   *string         `json:"timeZone,omitempty"`
	Reminders  []string        `json:"reminders,omitempty"`
	RepeatFlag *string         `json:"repeatFlag,omitempty"`
	Priority   *int            `json:"priority,omitempty" validate:"omitempty,oneof=0 1 3 5"`
	SortOrder  *int64          `json:"sortOrder,omitempty"`
	Items      []ChecklistItem `json:"items,omitempty" validate:"dive"`
}

// TaskUpdate is the payload for POST /task/{id}. Only set fields are serialized.
type TaskUpdate struct {
	ID         string          `json:"id" validate:"required"`
	ProjectID  string          `json:"projectId" validate:"required"`
	Title      *string         `json:"title,omitempty"`
	Content    *string         `json:"content,omitempty"`
	Desc       *string         `json:"desc,omitempty"`
	IsAllDay   *bool           `json:"isAllDay,omitempty"`
	StartDate  *Time           `json:"startDate,omitempty"`
	DueDate    *Time           `json:"dueDate,omitempty"`
	TimeZone   *string         `json:"timeZone,omitempty"`
	Reminders  []string        `json:"reminders,omitempty"`
	RepeatFlag *string         `json:"repeatFlag,omitempty"`
	Priority   *int            `json:"priority,omitempty" validate:"omitempty,oneof=0 1 3 5"`
	SortOrder  *int64          `json:"sortOrder,omitempty"`
	Items      []ChecklistItem `json:"items,omitempty" validate:"dive"`
}
