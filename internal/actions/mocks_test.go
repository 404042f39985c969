package actions

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"winsales/internal/access"
	"winsales/internal/models"
	"winsales/internal/notify"
)

type mockLeads struct{ mock.Mock }

func (m *mockLeads) GetByID(ctx context.Context, id uuid.UUID) (*models.Lead, error) {
	args := m.Called(ctx, id)
	l, _ := args.Get(0).(*models.Lead)
	return l, args.Error(1)
}

func (m *mockLeads) OwnerOf(ctx context.Context, id uuid.UUID) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *mockLeads) Create(ctx context.Context, in models.LeadInput) (uuid.UUID, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *mockLeads) Update(ctx context.Context, id uuid.UUID, patch models.LeadPatch) error {
	return m.Called(ctx, id, patch).Error(0)
}

func (m *mockLeads) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type mockSales struct{ mock.Mock }

func (m *mockSales) GetByID(ctx context.Context, id uuid.UUID) (*models.Sale, error) {
	args := m.Called(ctx, id)
	s, _ := args.Get(0).(*models.Sale)
	return s, args.Error(1)
}

func (m *mockSales) OwnerOf(ctx context.Context, id uuid.UUID) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *mockSales) CreateFromLead(ctx context.Context, in models.SaleInput) (uuid.UUID, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *mockSales) Update(ctx context.Context, id uuid.UUID, patch models.SalePatch) error {
	return m.Called(ctx, id, patch).Error(0)
}

func (m *mockSales) Review(ctx context.Context, id uuid.UUID, patch models.BackofficePatch, reviewerID string) error {
	return m.Called(ctx, id, patch, reviewerID).Error(0)
}

type mockTeam struct{ mock.Mock }

func (m *mockTeam) Assign(ctx context.Context, supervisorID, advisorID string) error {
	return m.Called(ctx, supervisorID, advisorID).Error(0)
}

func (m *mockTeam) Remove(ctx context.Context, supervisorID, advisorID string) error {
	return m.Called(ctx, supervisorID, advisorID).Error(0)
}

type mockUsers struct{ mock.Mock }

func (m *mockUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockUsers) PasswordHash(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *mockUsers) Create(ctx context.Context, name, email, role, passwordHash string) (string, error) {
	args := m.Called(ctx, name, email, role, passwordHash)
	return args.String(0), args.Error(1)
}

func (m *mockUsers) SetRole(ctx context.Context, id, role string) error {
	return m.Called(ctx, id, role).Error(0)
}

func (m *mockUsers) SetBanned(ctx context.Context, id string, banned bool, reason string) error {
	return m.Called(ctx, id, banned, reason).Error(0)
}

func (m *mockUsers) Update(ctx context.Context, id, name, email string, agencyID uuid.NullUUID) error {
	return m.Called(ctx, id, name, email, agencyID).Error(0)
}

func (m *mockUsers) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return m.Called(ctx, id, passwordHash).Error(0)
}

type mockCatalog struct{ mock.Mock }

func (m *mockCatalog) CreateOperator(ctx context.Context, name, code, logoURL string) (uuid.UUID, error) {
	args := m.Called(ctx, name, code, logoURL)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *mockCatalog) UpdateOperator(ctx context.Context, id uuid.UUID, name, code, logoURL string) error {
	return m.Called(ctx, id, name, code, logoURL).Error(0)
}

func (m *mockCatalog) SetOperatorActive(ctx context.Context, id uuid.UUID, active bool) error {
	return m.Called(ctx, id, active).Error(0)
}

func (m *mockCatalog) CreateAgency(ctx context.Context, name, city, address string) (uuid.UUID, error) {
	args := m.Called(ctx, name, city, address)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *mockCatalog) UpdateAgency(ctx context.Context, id uuid.UUID, name, city, address string) error {
	return m.Called(ctx, id, name, city, address).Error(0)
}

func (m *mockCatalog) SetAgencyActive(ctx context.Context, id uuid.UUID, active bool) error {
	return m.Called(ctx, id, active).Error(0)
}

type recordingRevalidator struct {
	mu    sync.Mutex
	paths []string
}

func (r *recordingRevalidator) Revalidate(_ context.Context, paths ...string) {
	r.mu.Lock()
	r.paths = append(r.paths, paths...)
	r.mu.Unlock()
}

type recordingNotifier struct {
	events []notify.Event
}

func (r *recordingNotifier) Notify(_ context.Context, e notify.Event) error {
	r.events = append(r.events, e)
	return nil
}

func (r *recordingNotifier) Close() error { return nil }

type fixture struct {
	leads    *mockLeads
	sales    *mockSales
	team     *mockTeam
	users    *mockUsers
	catalog  *mockCatalog
	reval    *recordingRevalidator
	notifier *recordingNotifier
	actions  *Actions
}

var fixedNow = time.Date(2026, 3, 10, 15, 4, 0, 0, time.UTC)

func newFixture() *fixture {
	f := &fixture{
		leads:    new(mockLeads),
		sales:    new(mockSales),
		team:     new(mockTeam),
		users:    new(mockUsers),
		catalog:  new(mockCatalog),
		reval:    &recordingRevalidator{},
		notifier: &recordingNotifier{},
	}
	f.actions = New(Deps{
		Leads:       f.leads,
		Sales:       f.sales,
		Team:        f.team,
		Users:       f.users,
		Catalog:     f.catalog,
		Revalidator: f.reval,
		Notifier:    f.notifier,
		Logger:      zap.NewNop(),
		Location:    time.UTC,
	})
	f.actions.now = func() time.Time { return fixedNow }
	return f
}

var (
	advisor    = &access.Session{UserID: "adv-1", Name: "Rosa", Role: access.RoleAdvisor}
	otherAdv   = &access.Session{UserID: "adv-2", Name: "Luis", Role: access.RoleAdvisor}
	admin      = &access.Session{UserID: "adm-1", Name: "Admin", Role: access.RoleAdmin}
	backoffice = &access.Session{UserID: "bo-1", Name: "Back", Role: access.RoleBackoffice}
	supervisor = &access.Session{UserID: "sup-1", Name: "Sup", Role: access.RoleSupervisor}
)
