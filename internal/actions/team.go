package actions

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"winsales/internal/access"
	"winsales/internal/models"
)

const (
	MsgAssignError        = "Error al asignar asesor"
	MsgRemoveError        = "Error al remover asesor"
	MsgAdvisorNotFound    = "Asesor no encontrado"
	MsgSupervisorNotFound = "Supervisor no encontrado"
)

var teamPaths = []string{"/dashboard/supervisor", "/dashboard/supervisor/team", "/admin/users"}

// checkRole verifies that userID exists and holds role.
func (a *Actions) checkRole(ctx context.Context, userID string, role access.Role) (bool, error) {
	u, err := a.users.GetByID(ctx, userID)
	if errors.Is(err, models.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return access.Role(u.Role) == role, nil
}

func (a *Actions) assign(ctx context.Context, supervisorID, advisorID string) Result {
	isAdvisor, err := a.checkRole(ctx, advisorID, access.RoleAdvisor)
	if err != nil {
		return a.internal("assign_advisor", err, MsgAssignError, zap.String("advisor_id", advisorID))
	}
	if !isAdvisor {
		return fail(MsgAdvisorNotFound)
	}

	if err := a.team.Assign(ctx, supervisorID, advisorID); err != nil {
		return a.internal("assign_advisor", err, MsgAssignError,
			zap.String("supervisor_id", supervisorID), zap.String("advisor_id", advisorID))
	}
	a.reval.Revalidate(ctx, teamPaths...)
	return ok(advisorID)
}

func (a *Actions) remove(ctx context.Context, supervisorID, advisorID string) Result {
	err := a.team.Remove(ctx, supervisorID, advisorID)
	switch {
	case errors.Is(err, models.ErrNotFound):
		return fail(MsgAdvisorNotFound)
	case err != nil:
		return a.internal("remove_advisor", err, MsgRemoveError,
			zap.String("supervisor_id", supervisorID), zap.String("advisor_id", advisorID))
	}
	a.reval.Revalidate(ctx, teamPaths...)
	return ok(advisorID)
}

// AssignAdvisor adds an advisor to the acting supervisor's team.
func (a *Actions) AssignAdvisor(ctx context.Context, s *access.Session, advisorID string) Result {
	if !s.HasRole(access.RoleSupervisor) {
		return fail(MsgUnauthorized)
	}
	return a.assign(ctx, s.UserID, advisorID)
}

func (a *Actions) RemoveAdvisor(ctx context.Context, s *access.Session, advisorID string) Result {
	if !s.HasRole(access.RoleSupervisor) {
		return fail(MsgUnauthorized)
	}
	return a.remove(ctx, s.UserID, advisorID)
}

func (a *Actions) AdminAssignAdvisor(ctx context.Context, s *access.Session, supervisorID, advisorID string) Result {
	if !s.IsAdmin() {
		return fail(MsgUnauthorized)
	}
	isSupervisor, err := a.checkRole(ctx, supervisorID, access.RoleSupervisor)
	if err != nil {
		return a.internal("assign_advisor", err, MsgAssignError, zap.String("supervisor_id", supervisorID))
	}
	if !isSupervisor {
		return fail(MsgSupervisorNotFound)
	}
	return a.assign(ctx, supervisorID, advisorID)
}

func (a *Actions) AdminRemoveAdvisor(ctx context.Context, s *access.Session, supervisorID, advisorID string) Result {
	if !s.IsAdmin() {
		return fail(MsgUnauthorized)
	}
	return a.remove(ctx, supervisorID, advisorID)
}
