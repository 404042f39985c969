package actions

import (
	"context"
	"errors"
	"net/url"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"winsales/internal/access"
	"winsales/internal/forms"
	"winsales/internal/metrics"
	"winsales/internal/models"
)

const (
	MsgLeadNotFound     = "Lead no encontrado"
	MsgLeadEditDenied   = "No tienes permiso para editar este lead"
	MsgLeadDeleteDenied = "No tienes permiso para eliminar este lead"
	MsgLeadCreateError  = "Error al crear el lead"
	MsgLeadUpdateError  = "Error al actualizar el lead"
	MsgLeadDeleteError  = "Error al eliminar el lead"
)

var leadPaths = []string{"/dashboard", "/dashboard/leads", "/dashboard/agenda", "/admin/leads", "/admin/agenda"}

// CreateLead registers a lead owned by the acting user. A missing contact date means today.
func (a *Actions) CreateLead(ctx context.Context, s *access.Session, values url.Values) Result {
	if s == nil {
		return fail(MsgUnauthorized)
	}

	in, err := forms.ParseLeadForm(values, a.loc)
	if err != nil {
		return invalid(err)
	}
	in.UserID = s.UserID
	if in.ContactDate.IsZero() {
		in.ContactDate = a.today()
	}

	id, err := a.leads.Create(ctx, in)
	if err != nil {
		return a.internal("create_lead", err, MsgLeadCreateError, zap.String("user_id", s.UserID))
	}

	metrics.RecordLead("create")
	a.reval.Revalidate(ctx, leadPaths...)
	return ok(id.String())
}

func (a *Actions) UpdateLead(ctx context.Context, s *access.Session, id uuid.UUID, values url.Values) Result {
	if s == nil {
		return fail(MsgUnauthorized)
	}

	owner, err := a.leads.OwnerOf(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return fail(MsgLeadNotFound)
	}
	if err != nil {
		return a.internal("update_lead", err, MsgLeadUpdateError, zap.Stringer("lead_id", id))
	}
	if !access.CanMutate(owner, s) {
		return fail(MsgLeadEditDenied)
	}

	return a.applyLeadPatch(ctx, id, values, "update_lead")
}

// AdminUpdateLead edits any lead regardless of owner.
func (a *Actions) AdminUpdateLead(ctx context.Context, s *access.Session, id uuid.UUID, values url.Values) Result {
	if !s.IsAdmin() {
		return fail(MsgUnauthorized)
	}
	return a.applyLeadPatch(ctx, id, values, "admin_update_lead")
}

func (a *Actions) applyLeadPatch(ctx context.Context, id uuid.UUID, values url.Values, action string) Result {
	patch, err := forms.ParseLeadPatch(values, a.loc)
	if err != nil {
		return invalid(err)
	}
	if patch.IsEmpty() {
		return fail(MsgEmptyPatch)
	}

	err = a.leads.Update(ctx, id, patch)
	switch {
	case errors.Is(err, models.ErrNotFound):
		return fail(MsgLeadNotFound)
	case err != nil:
		return a.internal(action, err, MsgLeadUpdateError, zap.Stringer("lead_id", id))
	}

	metrics.RecordLead("update")
	a.reval.Revalidate(ctx, leadPaths...)
	return ok(id.String())
}

func (a *Actions) DeleteLead(ctx context.Context, s *access.Session, id uuid.UUID) Result {
	if s == nil {
		return fail(MsgUnauthorized)
	}

	owner, err := a.leads.OwnerOf(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return fail(MsgLeadNotFound)
	}
	if err != nil {
		return a.internal("delete_lead", err, MsgLeadDeleteError, zap.Stringer("lead_id", id))
	}
	if !access.CanMutate(owner, s) {
		return fail(MsgLeadDeleteDenied)
	}

	err = a.leads.Delete(ctx, id)
	switch {
	case errors.Is(err, models.ErrNotFound):
		return fail(MsgLeadNotFound)
	case err != nil:
		return a.internal("delete_lead", err, MsgLeadDeleteError, zap.Stringer("lead_id", id))
	}

	metrics.RecordLead("delete")
	a.reval.Revalidate(ctx, leadPaths...)
	return ok(id.String())
}
