package agenda

import (
	"context"
	"fmt"
	"time"

	"winsales/internal/models"
	"winsales/internal/util"
)

type PendingLeadLister interface {
	ListPending(ctx context.Context, scope models.LeadScope, date time.Time) ([]models.Lead, error)
}

// Service loads pending leads and builds the agenda for "today" in the business time zone.
type Service struct {
	leads PendingLeadLister
	loc   *time.Location
	now   func() time.Time
}

func NewService(leads PendingLeadLister, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{leads: leads, loc: loc, now: time.Now}
}

func (s *Service) Today() time.Time {
	return util.StartOfDay(s.now(), s.loc)
}

func (s *Service) ForUser(ctx context.Context, userID string) (Agenda, error) {
	return s.build(ctx, models.ScopeUser(userID))
}

func (s *Service) ForSupervisor(ctx context.Context, supervisorID string) (Agenda, error) {
	return s.build(ctx, models.ScopeTeam(supervisorID))
}

func (s *Service) ForAll(ctx context.Context) (Agenda, error) {
	return s.build(ctx, models.ScopeAll)
}

// CurrentSlot reads the clock on every call.
func (s *Service) CurrentSlot() SlotState {
	return CurrentSlot(s.now().In(s.loc))
}

func (s *Service) build(ctx context.Context, scope models.LeadScope) (Agenda, error) {
	today := s.Today()
	leads, err := s.leads.ListPending(ctx, scope, today)
	if err != nil {
		return Agenda{}, fmt.Errorf("load pending leads: %w", err)
	}
	return Build(today, leads), nil
}
