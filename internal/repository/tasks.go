package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"taskly/internal/models"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

var taskColumns = []string{"id", "user_id", "title", "content", "due_date", "created_at", "updated_at"}

type TaskStore struct {
	db *sqlx.DB
}

func NewTaskStore(db *sqlx.DB) *TaskStore {
	return &TaskStore{db: db}
}

func (s *TaskStore) Create(ctx context.Context, task *models.Task) error {
	query, args, err := psql.Insert("tasks").
		Columns("user_id", "title", "content", "due_date").
		Values(task.UserID, task.Title, task.Content, task.DueDate).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert task: %w", err)
	}
	err = s.db.QueryRowxContext(ctx, query, args...).Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (s *TaskStore) Get(ctx context.Context, id int64) (*models.Task, error) {
	query, args, err := psql.Select(taskColumns...).From("tasks").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select task: %w", err)
	}
	var task models.Task
	if err := s.db.GetContext(ctx, &task, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select task: %w", err)
	}
	return &task, nil
}

// ListByUser returns the user's tasks in id order.
func (s *TaskStore) ListByUser(ctx context.Context, userID int64) ([]models.Task, error) {
	return s.list(ctx, psql.Select(taskColumns...).From("tasks").Where(sq.Eq{"user_id": userID}))
}

func (s *TaskStore) ListAll(ctx context.Context) ([]models.Task, error) {
	return s.list(ctx, psql.Select(taskColumns...).From("tasks"))
}

func (s *TaskStore) list(ctx context.Context, builder sq.SelectBuilder) ([]models.Task, error) {
	query, args, err := builder.OrderBy("id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list tasks: %w", err)
	}
	tasks := []models.Task{}
	if err := s.db.SelectContext(ctx, &tasks, query, args...); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// Update replaces title, content and due date. Owner and id are left untouched.
func (s *TaskStore) Update(ctx context.Context, task *models.Task) error {
	query, args, err := psql.Update("tasks").
		Set("title", task.Title).
		Set("content", task.Content).
		Set("due_date", task.DueDate).
		Set("updated_at", sq.Expr("CURRENT_TIMESTAMP")).
		Where(sq.Eq{"id": task.ID}).
		Suffix("RETURNING updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build update task: %w", err)
	}
	if err := s.db.QueryRowxContext(ctx, query, args...).Scan(&task.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("update task: %w", err)
	}
	return nil
}

func (s *TaskStore) Delete(ctx context.Context, id int64) error {
	query, args, err := psql.Delete("tasks").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("build delete task: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
