package repository

import (
	"context"
	"testing"
	"time"

	"taskly/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userRowColumns = []string{"id", "username", "email", "password", "role", "last_login", "created_at", "updated_at"}

func TestUserStoreCreate(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewUserStore(db)
	now := time.Now()

	t.Run("DefaultsRole", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO users \(username,email,password,role\) VALUES \(\$1,\$2,\$3,\$4\) RETURNING id, created_at, updated_at`).
			WithArgs("alice", "alice@x.com", "hash", models.RoleMember).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(1, now, now))

		user := &models.User{Username: "alice", Email: "alice@x.com", Password: "hash"}
		require.NoError(t, store.Create(context.Background(), user))
		assert.Equal(t, int64(1), user.ID)
		assert.Equal(t, models.RoleMember, user.Role)
	})

	t.Run("DuplicateUsername", func(t *testing.T) {
		mock.ExpectQuery(`INSERT INTO users`).
			WithArgs("alice", "other@x.com", "hash", models.RoleMember).
			WillReturnError(&pq.Error{Code: "23505", Constraint: "users_username_key"})

		err := store.Create(context.Background(), &models.User{Username: "alice", Email: "other@x.com", Password: "hash"})
		assert.ErrorIs(t, err, ErrDuplicate)
	})
}

func TestUserStoreLookups(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewUserStore(db)
	now := time.Now()

	mock.ExpectQuery(`SELECT .* FROM users WHERE username = \$1`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(userRowColumns).AddRow(1, "alice", "alice@x.com", "hash", "member", nil, now, now))

	user, err := store.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.False(t, user.IsAdmin())

	mock.ExpectQuery(`SELECT .* FROM users WHERE id = \$1`).
		WithArgs(int64(2)).
		WillReturnRows(sqlmock.NewRows(userRowColumns))

	_, err = store.GetByID(context.Background(), 2)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserStoreUpdateLastLogin(t *testing.T) {
	db, mock := newMockDB(t)
	store := NewUserStore(db)
	at := time.Now()

	mock.ExpectExec(`UPDATE users SET last_login = \$1 WHERE id = \$2`).
		WithArgs(at, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, store.UpdateLastLogin(context.Background(), 1, at))

	mock.ExpectExec(`UPDATE users SET last_login = \$1 WHERE id = \$2`).
		WithArgs(at, int64(9)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	assert.ErrorIs(t, store.UpdateLastLogin(context.Background(), 9, at), ErrNotFound)
}

func TestSchemaSetup(t *testing.T) {
	db, mock := newMockDB(t)

	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS users`).WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, CreateTableIfNotExists(context.Background(), db))

	mock.ExpectExec(`DROP TABLE IF EXISTS tasks`).WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, DeleteAllTable(context.Background(), db))
}
