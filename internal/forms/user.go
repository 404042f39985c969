package forms

import (
	"net/mail"
	"net/url"
	"strings"

	"github.com/google/uuid"

	"winsales/internal/access"
)

const MinPasswordLength = 8

const (
	msgPasswordShort    = "La contraseña debe tener al menos 8 caracteres"
	msgPasswordMismatch = "Las contraseñas no coinciden"
	msgEmail            = "Correo electrónico inválido"
)

type UserInput struct {
	Name     string
	Email    string
	Password string
	Role     access.Role
}

type UserUpdate struct {
	Name     string
	Email    string
	AgencyID uuid.NullUUID
}

type PasswordChange struct {
	Current string
	New     string
}

func (r *reader) email(key string) string {
	v := strings.ToLower(r.required(key))
	if v == "" {
		return v
	}
	if _, err := mail.ParseAddress(v); err != nil {
		r.errs.Add(key, msgEmail)
	}
	return v
}

func (r *reader) password(key string) string {
	v := r.values.Get(key)
	if v == "" {
		r.errs.Add(key, msgRequired)
	} else if len([]rune(v)) < MinPasswordLength {
		r.errs.Add(key, msgPasswordShort)
	}
	return v
}

// ParseCreateUser reads the admin "new user" form.
func ParseCreateUser(values url.Values) (UserInput, error) {
	r := newReader(values, nil)
	in := UserInput{
		Name:     r.required("name"),
		Email:    r.email("email"),
		Password: r.password("password"),
		Role:     access.Role(r.choice("role", string(access.RoleAdvisor), access.ValidRole)),
	}
	return in, r.result()
}

// ParseUserUpdate reads name, email and agency. Used by admins and by the profile page.
func ParseUserUpdate(values url.Values) (UserUpdate, error) {
	r := newReader(values, nil)
	in := UserUpdate{
		Name:     r.required("name"),
		Email:    r.email("email"),
		AgencyID: r.nullUUID("agency_id"),
	}
	return in, r.result()
}

func ParsePasswordChange(values url.Values) (PasswordChange, error) {
	r := newReader(values, nil)
	in := PasswordChange{
		Current: values.Get("current_password"),
		New:     r.password("new_password"),
	}
	if in.Current == "" {
		r.errs.Add("current_password", msgRequired)
	}
	if values.Get("confirm_password") != in.New {
		r.errs.Add("confirm_password", msgPasswordMismatch)
	}
	return in, r.result()
}

// ParseRole reads a role selector.
func ParseRole(values url.Values) (access.Role, error) {
	r := newReader(values, nil)
	role := r.choice("role", "", access.ValidRole)
	if role == "" && !r.errs.Has("role") {
		r.errs.Add("role", msgRequired)
	}
	return access.Role(role), r.result()
}
