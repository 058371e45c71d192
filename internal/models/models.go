package models

import (
	"database/sql"
	"time"
)

const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

type User struct {
	ID        int64        `db:"id" json:"id"`
	Username  string       `db:"username" json:"username"`
	Email     string       `db:"email" json:"email"`
	Password  string       `db:"password" json:"-"`
	Role      string       `db:"role" json:"role"`
	LastLogin sql.NullTime `db:"last_login" json:"-"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt time.Time    `db:"updated_at" json:"updated_at"`
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Task is a to-do record. UserID is set from the session at creation and never changes.
type Task struct {
	ID        int64        `db:"id" json:"id"`
	UserID    int64        `db:"user_id" json:"user_id"`
	Title     string       `db:"title" json:"title"`
	Content   string       `db:"content" json:"content"`
	DueDate   sql.NullTime `db:"due_date" json:"-"`
	CreatedAt time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt time.Time    `db:"updated_at" json:"updated_at"`
}

// Due returns the due date or nil, for JSON and templates.
func (t Task) Due() *time.Time {
	if !t.DueDate.Valid {
		return nil
	}
	d := t.DueDate.Time
	return &d
}

// TaskView is the JSON shape of a task.
type TaskView struct {
	Task
	DueDate *time.Time `json:"due_date"`
}

func (t Task) View() TaskView {
	return TaskView{Task: t, DueDate: t.Due()}
}
