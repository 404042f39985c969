package actions

import (
	"context"
	"errors"
	"net/url"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"winsales/internal/access"
	"winsales/internal/forms"
	"winsales/internal/models"
)

const (
	MsgOperatorDuplicate   = "Ya existe un operador con ese código"
	MsgOperatorDuplicateOn = "Ya existe otro operador con ese código"
	MsgOperatorNotFound    = "Operador no encontrado"
	MsgOperatorCreateError = "Error al crear el operador"
	MsgOperatorUpdateError = "Error al actualizar el operador"
	MsgAgencyNotFound      = "Agencia no encontrada"
	MsgAgencyCreateError   = "Error al crear la agencia"
	MsgAgencyUpdateError   = "Error al actualizar la agencia"
)

var settingsPaths = []string{"/admin/settings", "/admin/users", "/dashboard/sales/new", "/dashboard/leads/new"}

func duplicateCode(msg string) Result {
	return Result{Error: msg, Fields: forms.Errors{{Field: "code", Message: msg}}}
}

func (a *Actions) CreateOperator(ctx context.Context, s *access.Session, values url.Values) Result {
	if !s.IsAdmin() {
		return fail(MsgUnauthorized)
	}
	in, err := forms.ParseOperator(values)
	if err != nil {
		return invalid(err)
	}

	id, err := a.catalog.CreateOperator(ctx, in.Name, in.Code, in.LogoURL)
	if _, dup := models.IsUniqueViolation(err); dup {
		return duplicateCode(MsgOperatorDuplicate)
	}
	if err != nil {
		return a.internal("create_operator", err, MsgOperatorCreateError, zap.String("code", in.Code))
	}

	a.reval.Revalidate(ctx, settingsPaths...)
	return ok(id.String())
}

func (a *Actions) UpdateOperator(ctx context.Context, s *access.Session, id uuid.UUID, values url.Values) Result {
	if !s.IsAdmin() {
		return fail(MsgUnauthorized)
	}
	in, err := forms.ParseOperator(values)
	if err != nil {
		return invalid(err)
	}

	err = a.catalog.UpdateOperator(ctx, id, in.Name, in.Code, in.LogoURL)
	if _, dup := models.IsUniqueViolation(err); dup {
		return duplicateCode(MsgOperatorDuplicateOn)
	}
	switch {
	case errors.Is(err, models.ErrNotFound):
		return fail(MsgOperatorNotFound)
	case err != nil:
		return a.internal("update_operator", err, MsgOperatorUpdateError, zap.Stringer("operator_id", id))
	}

	a.reval.Revalidate(ctx, settingsPaths...)
	return ok(id.String())
}

func (a *Actions) SetOperatorActive(ctx context.Context, s *access.Session, id uuid.UUID, active bool) Result {
	if !s.IsAdmin() {
		return fail(MsgUnauthorized)
	}
	err := a.catalog.SetOperatorActive(ctx, id, active)
	switch {
	case errors.Is(err, models.ErrNotFound):
		return fail(MsgOperatorNotFound)
	case err != nil:
		return a.internal("toggle_operator", err, MsgOperatorUpdateError, zap.Stringer("operator_id", id))
	}
	a.reval.Revalidate(ctx, settingsPaths...)
	return ok(id.String())
}

func (a *Actions) CreateAgency(ctx context.Context, s *access.Session, values url.Values) Result {
	if !s.IsAdmin() {
		return fail(MsgUnauthorized)
	}
	in, err := forms.ParseAgency(values)
	if err != nil {
		return invalid(err)
	}

	id, err := a.catalog.CreateAgency(ctx, in.Name, in.City, in.Address)
	if err != nil {
		return a.internal("create_agency", err, MsgAgencyCreateError, zap.String("name", in.Name))
	}
	a.reval.Revalidate(ctx, settingsPaths...)
	return ok(id.String())
}

func (a *Actions) UpdateAgency(ctx context.Context, s *access.Session, id uuid.UUID, values url.Values) Result {
	if !s.IsAdmin() {
		return fail(MsgUnauthorized)
	}
	in, err := forms.ParseAgency(values)
	if err != nil {
		return invalid(err)
	}

	err = a.catalog.UpdateAgency(ctx, id, in.Name, in.City, in.Address)
	switch {
	case errors.Is(err, models.ErrNotFound):
		return fail(MsgAgencyNotFound)
	case err != nil:
		return a.internal("update_agency", err, MsgAgencyUpdateError, zap.Stringer("agency_id", id))
	}
	a.reval.Revalidate(ctx, settingsPaths...)
	return ok(id.String())
}

func (a *Actions) SetAgencyActive(ctx context.Context, s *access.Session, id uuid.UUID, active bool) Result {
	if !s.IsAdmin() {
		return fail(MsgUnauthorized)
	}
	err := a.catalog.SetAgencyActive(ctx, id, active)
	switch {
	case errors.Is(err, models.ErrNotFound):
		return fail(MsgAgencyNotFound)
	case err != nil:
		return a.internal("toggle_agency", err, MsgAgencyUpdateError, zap.Stringer("agency_id", id))
	}
	a.reval.Revalidate(ctx, settingsPaths...)
	return ok(id.String())
}
