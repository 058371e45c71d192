package handlers

import (
	"errors"
	"time"

	"taskly/internal/auth"
	"taskly/internal/config"
	"taskly/internal/forms"
	"taskly/internal/middleware"
	"taskly/internal/models"
	"taskly/internal/repository"
	"taskly/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	msgRegistered     = "Registration successful."
	msgRegisterFailed = "Unsuccessful registration. Invalid information."
	msgDuplicateUser  = "A user with that username already exists."
)

// Register shows the sign-up form and creates an account from it.
func Register(c *fiber.Ctx) error {
	var form forms.RegisterForm
	if c.Method() != fiber.MethodPost {
		return render(c, "register", fiber.Map{"Title": "Register", "Form": form})
	}

	if err := c.BodyParser(&form); err != nil {
		logger.ErrorLogger.Error("Bad request in register", zap.Error(err))
		return fiber.ErrBadRequest
	}

	errs := form.Validate(config.Validate)
	if !errs.Any() {
		user, err := createMember(c, &form)
		switch {
		case errors.Is(err, repository.ErrDuplicate):
			logger.SecurityLogger.Warn("Duplicate username", zap.String("username", form.Username))
			errs.Add("username", msgDuplicateUser)
		case err != nil:
			return err
		default:
			// user baru langsung login
			if err := auth.Login(c, user.ID); err != nil {
				return err
			}
			logger.AuditLogger.Info("User registered successfully", zap.Int64("user_id", user.ID))
			flash(c, auth.LevelSuccess, msgRegistered)
			return c.Redirect(middleware.LoginURL)
		}
	}

	form.Clear()
	return render(c, "register", fiber.Map{
		"Title":    "Register",
		"Form":     form,
		"Errors":   errs,
		"Messages": []auth.Message{{Level: auth.LevelError, Text: msgRegisterFailed}},
	})
}

func createMember(c *fiber.Ctx, form *forms.RegisterForm) (*models.User, error) {
	hash, err := auth.HashPassword(form.Password1)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username: form.Username,
		Email:    form.Email,
		Password: hash,
		Role:     models.RoleMember,
	}
	if err := config.Users.Create(c.UserContext(), user); err != nil {
		return nil, err
	}
	return user, nil
}

// Login shows the login form and starts a session for valid credentials.
func Login(c *fiber.Ctx) error {
	var form forms.LoginForm
	next := c.Query("next")
	if c.Method() != fiber.MethodPost {
		return render(c, "login", fiber.Map{"Title": "Log in", "Form": form, "Next": next})
	}

	if err := c.BodyParser(&form); err != nil {
		logger.ErrorLogger.Error("Bad request in login", zap.Error(err))
		return fiber.ErrBadRequest
	}
	if v := c.FormValue("next"); v != "" {
		next = v
	}

	errs := form.Validate(config.Validate)
	if !errs.Any() {
		user, err := auth.Authenticate(c.UserContext(), config.Users, form.Username, form.Password)
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			logger.SecurityLogger.Warn("Failed login attempt",
				zap.String("username", form.Username), zap.String("ip", c.IP()))
			errs.Add(forms.NonField, forms.InvalidLogin)
		case err != nil:
			return err
		default:
			if err := auth.Login(c, user.ID); err != nil {
				return err
			}
			if err := config.Users.UpdateLastLogin(c.UserContext(), user.ID, time.Now().UTC()); err != nil {
				logger.ErrorLogger.Error("Error updating last login", zap.Int64("user_id", user.ID), zap.Error(err))
			}
			logger.AuditLogger.Info("User logged in", zap.Int64("user_id", user.ID))
			return c.Redirect(safeNext(next))
		}
	}

	form.Password = ""
	return render(c, "login", fiber.Map{"Title": "Log in", "Form": form, "Errors": errs, "Next": next})
}

// Logout ends the session whether or not one was logged in.
func Logout(c *fiber.Ctx) error {
	userID, loggedIn := auth.UserID(c)
	if err := auth.Logout(c); err != nil {
		return err
	}
	if loggedIn {
		logger.AuditLogger.Info("User logged out", zap.Int64("user_id", userID))
	}
	return c.Redirect(middleware.LoginURL)
}
