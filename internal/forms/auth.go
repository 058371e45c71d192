package forms

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

const InvalidLogin = "Please enter a correct username and password. Note that both fields may be case-sensitive."

type RegisterForm struct {
	Username  string `form:"username" validate:"required,max=150,username"`
	Email     string `form:"email" validate:"required,max=254,email"`
	Password1 string `form:"password1" validate:"required"`
	Password2 string `form:"password2" validate:"required,eqfield=Password1"`
}

// Validate trims the text fields, applies the field rules and then the password rules.
func (f *RegisterForm) Validate(v *validator.Validate) Errors {
	f.Username = strings.TrimSpace(f.Username)
	f.Email = strings.TrimSpace(f.Email)

	errs := collect(v, f)
	if errs.Has("password1") || errs.Has("password2") {
		return errs
	}
	for _, msg := range CheckPassword(f.Password1, f.Username, f.Email) {
		errs.Add("password2", msg)
	}
	return errs
}

// Clear drops the passwords so they are never echoed back into a page.
func (f *RegisterForm) Clear() {
	f.Password1 = ""
	f.Password2 = ""
}

type LoginForm struct {
	Username string `form:"username" json:"username" validate:"required,max=150"`
	Password string `form:"password" json:"password" validate:"required"`
}

func (f *LoginForm) Validate(v *validator.Validate) Errors {
	f.Username = strings.TrimSpace(f.Username)
	return collect(v, f)
}
