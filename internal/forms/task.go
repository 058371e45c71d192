package forms

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"taskly/internal/models"

	"github.com/go-playground/validator/v10"
)

// DueDateInput is the layout of an <input type="datetime-local"> value.
const DueDateInput = "2006-01-02T15:04"

var dueDateLayouts = []string{
	DueDateInput,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// TaskForm carries only the editable fields. The owner is never bound from the request.
type TaskForm struct {
	Title   string `form:"title" json:"title" validate:"required,max=200"`
	Content string `form:"content" json:"content"`
	DueDate string `form:"due_date" json:"due_date" validate:"omitempty,due_date"`
}

func (f *TaskForm) Validate(v *validator.Validate) Errors {
	f.Title = strings.TrimSpace(f.Title)
	f.DueDate = strings.TrimSpace(f.DueDate)
	return collect(v, f)
}

// Apply copies the validated fields onto task.
func (f *TaskForm) Apply(task *models.Task) error {
	due, err := ParseDueDate(f.DueDate)
	if err != nil {
		return err
	}
	task.Title = f.Title
	task.Content = f.Content
	task.DueDate = due
	return nil
}

// TaskFormFrom pre-populates the edit form from a stored task.
func TaskFormFrom(task *models.Task) TaskForm {
	form := TaskForm{Title: task.Title, Content: task.Content}
	if task.DueDate.Valid {
		form.DueDate = task.DueDate.Time.UTC().Format(DueDateInput)
	}
	return form
}

// ParseDueDate accepts the empty string as "no due date". Times are read as UTC.
func ParseDueDate(s string) (sql.NullTime, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return sql.NullTime{}, nil
	}
	for _, layout := range dueDateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return sql.NullTime{Time: t, Valid: true}, nil
		}
	}
	return sql.NullTime{}, fmt.Errorf("invalid due date %q", s)
}
