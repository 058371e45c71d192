package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"taskly/internal/models"

	sq "github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

var userColumns = []string{"id", "username", "email", "password", "role", "last_login", "created_at", "updated_at"}

type UserStore struct {
	db *sqlx.DB
}

func NewUserStore(db *sqlx.DB) *UserStore {
	return &UserStore{db: db}
}

// Create inserts the user and fills in ID and timestamps. An empty role becomes member.
func (s *UserStore) Create(ctx context.Context, user *models.User) error {
	if user.Role == "" {
		user.Role = models.RoleMember
	}
	query, args, err := psql.Insert("users").
		Columns("username", "email", "password", "role").
		Values(user.Username, user.Email, user.Password, user.Role).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert user: %w", err)
	}
	err = s.db.QueryRowxContext(ctx, query, args...).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *UserStore) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return s.getOne(ctx, sq.Eq{"id": id})
}

func (s *UserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getOne(ctx, sq.Eq{"username": username})
}

func (s *UserStore) getOne(ctx context.Context, where sq.Eq) (*models.User, error) {
	query, args, err := psql.Select(userColumns...).From("users").Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user: %w", err)
	}
	var user models.User
	if err := s.db.GetContext(ctx, &user, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &user, nil
}

func (s *UserStore) UpdateLastLogin(ctx context.Context, id int64, at time.Time) error {
	query, args, err := psql.Update("users").
		Set("last_login", at).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update last_login: %w", err)
	}
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update last_login: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}
