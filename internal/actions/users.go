package actions

import (
	"context"
	"errors"
	"net/url"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"winsales/internal/access"
	"winsales/internal/forms"
	"winsales/internal/models"
)

const (
	MsgUserNotFound       = "Usuario no encontrado"
	MsgUserCreateError    = "Error al crear el usuario"
	MsgUserUpdateError    = "Error al actualizar el usuario"
	MsgPasswordError      = "Error al actualizar la contraseña"
	MsgEmailTaken         = "Ya existe un usuario con ese correo"
	MsgWrongPassword      = "La contraseña actual es incorrecta"
	MsgSelfRoleChange     = "No puedes cambiar tu propio rol"
	MsgSelfBan            = "No puedes bloquear tu propia cuenta"
	MsgInvalidCredentials = "Correo o contraseña incorrectos"
	MsgBanned             = "Tu cuenta está suspendida"
	MsgUnknownRole        = "Tu cuenta no tiene un rol asignado. Contacta a un administrador"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrBanned             = errors.New("user is banned")
	ErrUnknownRole        = errors.New("user has no known role")
)

var userPaths = []string{"/admin/users", "/dashboard/supervisor/team"}

// Authenticate checks an email/password pair against the stored bcrypt hash.
func (a *Actions) Authenticate(ctx context.Context, email, password string) (*access.Session, error) {
	u, err := a.users.GetByEmail(ctx, strings.TrimSpace(email))
	if errors.Is(err, models.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	hash, err := a.users.PasswordHash(ctx, u.ID)
	if errors.Is(err, models.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if u.Banned {
		return nil, ErrBanned
	}
	if !access.ValidRole(u.Role) {
		return nil, ErrUnknownRole
	}

	return &access.Session{UserID: u.ID, Name: u.Name, Email: u.Email, Role: access.Role(u.Role)}, nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func emailTaken() Result {
	return Result{Error: MsgEmailTaken, Fields: forms.Errors{{Field: "email", Message: MsgEmailTaken}}}
}

func (a *Actions) CreateUser(ctx context.Context, s *access.Session, values url.Values) Result {
	if !s.IsAdmin() {
		return fail(MsgUnauthorized)
	}

	in, err := forms.ParseCreateUser(values)
	if err != nil {
		return invalid(err)
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return a.internal("create_user", err, MsgUserCreateError)
	}

	id, err := a.users.Create(ctx, in.Name, in.Email, string(in.Role), hash)
	if _, dup := models.IsUniqueViolation(err); dup {
		return emailTaken()
	}
	if err != nil {
		return a.internal("create_user", err, MsgUserCreateError, zap.String("email", in.Email))
	}

	a.log.Info("user created", zap.String("user_id", id), zap.String("role", string(in.Role)), zap.String("by", s.UserID))
	a.reval.Revalidate(ctx, userPaths...)
	return ok(id)
}

func (a *Actions) SetRole(ctx context.Context, s *access.Session, userID string, values url.Values) Result {
	if !s.IsAdmin() {
		return fail(MsgUnauthorized)
	}
	if userID == s.UserID {
		return fail(MsgSelfRoleChange)
	}

	role, err := forms.ParseRole(values)
	if err != nil {
		return invalid(err)
	}

	err = a.users.SetRole(ctx, userID, string(role))
	switch {
	case errors.Is(err, models.ErrNotFound):
		return fail(MsgUserNotFound)
	case err != nil:
		return a.internal("set_role", err, MsgUserUpdateError, zap.String("user_id", userID))
	}

	a.reval.Revalidate(ctx, userPaths...)
	return ok(userID)
}

// SetBanned blocks or unblocks a login. Existing session cookies stay valid until they expire.
func (a *Actions) SetBanned(ctx context.Context, s *access.Session, userID string, banned bool, reason string) Result {
	if !s.IsAdmin() {
		return fail(MsgUnauthorized)
	}
	if userID == s.UserID {
		return fail(MsgSelfBan)
	}

	err := a.users.SetBanned(ctx, userID, banned, strings.TrimSpace(reason))
	switch {
	case errors.Is(err, models.ErrNotFound):
		return fail(MsgUserNotFound)
	case err != nil:
		return a.internal("set_banned", err, MsgUserUpdateError, zap.String("user_id", userID))
	}

	a.reval.Revalidate(ctx, userPaths...)
	return ok(userID)
}

func (a *Actions) UpdateUser(ctx context.Context, s *access.Session, userID string, values url.Values) Result {
	if !s.IsAdmin() {
		return fail(MsgUnauthorized)
	}

	in, err := forms.ParseUserUpdate(values)
	if err != nil {
		return invalid(err)
	}
	return a.updateUser(ctx, userID, in, "update_user")
}

func (a *Actions) updateUser(ctx context.Context, userID string, in forms.UserUpdate, action string) Result {
	err := a.users.Update(ctx, userID, in.Name, in.Email, in.AgencyID)
	if _, dup := models.IsUniqueViolation(err); dup {
		return emailTaken()
	}
	switch {
	case errors.Is(err, models.ErrNotFound):
		return fail(MsgUserNotFound)
	case err != nil:
		return a.internal(action, err, MsgUserUpdateError, zap.String("user_id", userID))
	}

	a.reval.Revalidate(ctx, userPaths...)
	return ok(userID)
}

// UpdateProfile changes the acting user's own name and email. The agency is kept.
func (a *Actions) UpdateProfile(ctx context.Context, s *access.Session, values url.Values) Result {
	if s == nil {
		return fail(MsgUnauthorized)
	}

	in, err := forms.ParseUserUpdate(values)
	if err != nil {
		return invalid(err)
	}

	u, err := a.users.GetByID(ctx, s.UserID)
	if errors.Is(err, models.ErrNotFound) {
		return fail(MsgUserNotFound)
	}
	if err != nil {
		return a.internal("update_profile", err, MsgUserUpdateError, zap.String("user_id", s.UserID))
	}
	in.AgencyID = u.AgencyID

	return a.updateUser(ctx, s.UserID, in, "update_profile")
}

func (a *Actions) ChangePassword(ctx context.Context, s *access.Session, values url.Values) Result {
	if s == nil {
		return fail(MsgUnauthorized)
	}

	in, err := forms.ParsePasswordChange(values)
	if err != nil {
		return invalid(err)
	}

	current, err := a.users.PasswordHash(ctx, s.UserID)
	if err != nil && !errors.Is(err, models.ErrNotFound) {
		return a.internal("change_password", err, MsgPasswordError, zap.String("user_id", s.UserID))
	}
	if err != nil || bcrypt.CompareHashAndPassword([]byte(current), []byte(in.Current)) != nil {
		return Result{Error: MsgWrongPassword, Fields: forms.Errors{{Field: "current_password", Message: MsgWrongPassword}}}
	}

	hash, err := HashPassword(in.New)
	if err != nil {
		return a.internal("change_password", err, MsgPasswordError)
	}
	if err := a.users.UpdatePassword(ctx, s.UserID, hash); err != nil {
		return a.internal("change_password", err, MsgPasswordError, zap.String("user_id", s.UserID))
	}
	return ok(s.UserID)
}
