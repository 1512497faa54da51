package models

import (
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		validate.RegisterStructValidation(projectPresence, Project{})
		validate.RegisterStructValidation(taskPresence, Task{})
	})
	return validate
}

// Decoded payloads must carry name/title even when the value is empty.
func projectPresence(sl validator.StructLevel) {
	p := sl.Current().Interface().(Project)
	if p.nameMissing {
		sl.ReportError(p.Name, "name", "Name", "required", "")
	}
}

func taskPresence(sl validator.StructLevel) {
	t := sl.Current().Interface().(Task)
	if t.titleMissing {
		sl.ReportError(t.Title, "title", "Title", "required", "")
	}
}

// Validate checks v against its `validate` struct tags.
func Validate(v interface{}) error {
	return validatorInstance().Struct(v)
}

// ValidateSlice validates every element; the first failure fails the whole slice.
func ValidateSlice[T any](items []T) error {
	for i := range items {
		if err := Validate(&items[i]); err != nil {
			return err
		}
	}
	return nil
}

// Ptr returns a pointer to v. Used to mark optional payload fields as set.
func Ptr[T any](v T) *T {
	return &v
}
