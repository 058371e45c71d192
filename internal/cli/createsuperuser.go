package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"taskly/internal/auth"
	"taskly/internal/config"
	"taskly/internal/forms"
	"taskly/internal/models"
	"taskly/internal/repository"
	"taskly/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// PasswordEnv is read when --password is not given.
const PasswordEnv = "TASKLY_SUPERUSER_PASSWORD"

type superuserInput struct {
	Username string `form:"username" validate:"required,max=150,username"`
	Email    string `form:"email" validate:"required,max=254,email"`
	Password string `form:"password" validate:"required"`
}

func newCreateSuperuserCommand() *cobra.Command {
	var in superuserInput
	cmd := &cobra.Command{
		Use:   "createsuperuser",
		Short: "Create a user with the admin role",
		RunE: func(cmd *cobra.Command, args []string) error {
			if in.Password == "" {
				in.Password = os.Getenv(PasswordEnv)
			}
			if err := openDB(); err != nil {
				return err
			}
			defer config.DB.Close()

			user, err := createSuperuser(cmd.Context(), config.Users, in)
			if err != nil {
				return err
			}
			cmd.Printf("Superuser %q created with id %d.\n", user.Username, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Username, "username", "", "login name")
	cmd.Flags().StringVar(&in.Email, "email", "", "email address")
	cmd.Flags().StringVar(&in.Password, "password", "", "password (default: $"+PasswordEnv+")")
	return cmd
}

// createSuperuser validates in like the registration form does and stores an admin.
func createSuperuser(ctx context.Context, users repository.UserRepository, in superuserInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := config.Validate.Struct(in); err != nil {
		return nil, fmt.Errorf("invalid superuser: %w", err)
	}
	if problems := forms.CheckPassword(in.Password, in.Username, in.Email); len(problems) > 0 {
		return nil, fmt.Errorf("weak password: %s", strings.Join(problems, " "))
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: hash,
		Role:     models.RoleAdmin,
	}
	if err := users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, fmt.Errorf("username %q is already taken", in.Username)
		}
		return nil, err
	}
	logger.AuditLogger.Info("Superuser created", zap.Int64("user_id", user.ID))
	return user, nil
}
