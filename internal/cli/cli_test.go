package cli

import (
	"context"
	"testing"
	"time"

	"taskly/internal/auth"
	"taskly/internal/models"
	"taskly/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	auth.Cost = bcrypt.MinCost
}

type stubUsers struct {
	created []*models.User
}

func (s *stubUsers) Create(_ context.Context, u *models.User) error {
	for _, existing := range s.created {
		if existing.Username == u.Username {
			return repository.ErrDuplicate
		}
	}
	u.ID = int64(len(s.created) + 1)
	s.created = append(s.created, u)
	return nil
}

func (s *stubUsers) GetByID(context.Context, int64) (*models.User, error) {
	return nil, repository.ErrNotFound
}

func (s *stubUsers) GetByUsername(context.Context, string) (*models.User, error) {
	return nil, repository.ErrNotFound
}

func (s *stubUsers) UpdateLastLogin(context.Context, int64, time.Time) error { return nil }

func TestNewRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "taskly", cmd.Use)
	assert.NotNil(t, cmd.PersistentFlags().Lookup("config"))

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"serve", "migrate", "dropdb", "createsuperuser"}, names)
}

func TestDropDBNeedsConfirmation(t *testing.T) {
	cmd := newDropDBCommand()
	cmd.SetArgs([]string{})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")
}

func TestCreateSuperuser(t *testing.T) {
	users := &stubUsers{}
	user, err := createSuperuser(context.Background(), users, superuserInput{
		Username: " root ",
		Email:    "root@x.com",
		Password: "Adm1n-passphrase",
	})
	require.NoError(t, err)
	assert.Equal(t, "root", user.Username)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("Adm1n-passphrase")))

	_, err = createSuperuser(context.Background(), users, superuserInput{
		Username: "root", Email: "root@x.com", Password: "Adm1n-passphrase",
	})
	assert.ErrorContains(t, err, "already taken")
}

func TestCreateSuperuserValidates(t *testing.T) {
	tests := []struct {
		name string
		in   superuserInput
		want string
	}{
		{"missing username", superuserInput{Email: "a@x.com", Password: "Adm1n-passphrase"}, "invalid superuser"},
		{"bad email", superuserInput{Username: "root", Email: "nope", Password: "Adm1n-passphrase"}, "invalid superuser"},
		{"missing password", superuserInput{Username: "root", Email: "a@x.com"}, "invalid superuser"},
		{"weak password", superuserInput{Username: "root", Email: "a@x.com", Password: "12345678"}, "weak password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := &stubUsers{}
			_, err := createSuperuser(context.Background(), users, tt.in)
			assert.ErrorContains(t, err, tt.want)
			assert.Empty(t, users.created)
		})
	}
}
