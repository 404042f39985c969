package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"winsales/internal/access"
	"winsales/internal/actions"
	"winsales/internal/agenda"
	"winsales/internal/config"
	"winsales/internal/middleware"
	"winsales/internal/models"
)

var testToday = time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)

type fakeLeads struct {
	leads []models.Lead
}

func (f *fakeLeads) filter(scope models.LeadScope) []models.Lead {
	var out []models.Lead
	for _, l := range f.leads {
		if scope == models.ScopeAll || scope == models.ScopeUser(l.UserID) {
			out = append(out, l)
		}
	}
	return out
}

func (f *fakeLeads) List(ctx context.Context, scope models.LeadScope) ([]models.Lead, error) {
	return f.filter(scope), nil
}

func (f *fakeLeads) GetByID(ctx context.Context, id uuid.UUID) (*models.Lead, error) {
	for i := range f.leads {
		if f.leads[i].ID == id {
			l := f.leads[i]
			return &l, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeLeads) GetByIDForUser(ctx context.Context, id uuid.UUID, userID string) (*models.Lead, error) {
	l, err := f.GetByID(ctx, id)
	if err != nil || l.UserID != userID {
		return nil, models.ErrNotFound
	}
	return l, nil
}

func (f *fakeLeads) CountsByUser(ctx context.Context, userID string) (models.LeadCounts, error) {
	var c models.LeadCounts
	for _, l := range f.filter(models.ScopeUser(userID)) {
		c.Total++
		if l.Status == models.LeadStatusConverted {
			c.Converted++
		} else {
			c.New++
		}
	}
	return c, nil
}

type fakeSales struct {
	sales    []models.Sale
	statsDay time.Time
}

func (f *fakeSales) List(ctx context.Context, scope models.LeadScope, filter models.SaleFilter) ([]models.Sale, error) {
	var out []models.Sale
	for _, s := range f.sales {
		if scope != models.ScopeAll && scope != models.ScopeUser(s.UserID) {
			continue
		}
		if filter.RequestStatus != "" && s.RequestStatus != filter.RequestStatus {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeSales) GetByID(ctx context.Context, id uuid.UUID) (*models.Sale, error) {
	for i := range f.sales {
		if f.sales[i].ID == id {
			s := f.sales[i]
			return &s, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeSales) GetByIDForUser(ctx context.Context, id uuid.UUID, userID string) (*models.Sale, error) {
	s, err := f.GetByID(ctx, id)
	if err != nil || s.UserID != userID {
		return nil, models.ErrNotFound
	}
	return s, nil
}

func (f *fakeSales) Stats(ctx context.Context, today time.Time) (models.SaleStats, error) {
	f.statsDay = today
	var st models.SaleStats
	for _, s := range f.sales {
		switch s.RequestStatus {
		case models.RequestPending:
			st.Pending++
		case models.RequestValidated:
			st.Validated++
		case models.RequestRejected:
			st.Rejected++
		}
	}
	return st, nil
}

// fakeUsers serves both the page reader and the action store.
type fakeUsers struct {
	users  []models.User
	hashes map[string]string
}

func (f *fakeUsers) GetByID(ctx context.Context, id string) (*models.User, error) {
	for i := range f.users {
		if f.users[i].ID == id {
			u := f.users[i]
			return &u, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	for i := range f.users {
		if strings.EqualFold(f.users[i].Email, email) {
			u := f.users[i]
			return &u, nil
		}
	}
	return nil, models.ErrNotFound
}

func (f *fakeUsers) List(ctx context.Context) ([]models.User, error) {
	return f.users, nil
}

func (f *fakeUsers) PasswordHash(ctx context.Context, userID string) (string, error) {
	h, ok := f.hashes[userID]
	if !ok {
		return "", models.ErrNotFound
	}
	return h, nil
}

func (f *fakeUsers) Create(ctx context.Context, name, email, role, passwordHash string) (string, error) {
	id := "u-" + email
	f.users = append(f.users, models.User{ID: id, Name: name, Email: email, Role: role})
	f.hashes[id] = passwordHash
	return id, nil
}

func (f *fakeUsers) SetRole(ctx context.Context, id, role string) error { return nil }

func (f *fakeUsers) SetBanned(ctx context.Context, id string, banned bool, reason string) error {
	return nil
}

func (f *fakeUsers) Update(ctx context.Context, id, name, email string, agencyID uuid.NullUUID) error {
	return nil
}

func (f *fakeUsers) UpdatePassword(ctx context.Context, id, passwordHash string) error { return nil }

type fakeTeam struct{}

func (fakeTeam) Members(ctx context.Context, supervisorID string) ([]models.TeamMember, error) {
	return []models.TeamMember{{ID: "adv-1", Name: "Ana Torres", Email: "ana@win.pe"}}, nil
}

func (fakeTeam) Unassigned(ctx context.Context, supervisorID string) ([]models.TeamMember, error) {
	return nil, nil
}

func (fakeTeam) Stats(ctx context.Context, supervisorID string, today time.Time) (models.TeamStats, error) {
	return models.TeamStats{TotalMembers: 1, TotalLeads: 2}, nil
}

type fakeCatalog struct {
	states    []models.State
	cities    map[uuid.UUID][]models.City
	districts map[uuid.UUID][]models.District
}

func (f *fakeCatalog) Operators(ctx context.Context, activeOnly bool) ([]models.Operator, error) {
	return []models.Operator{{ID: uuid.New(), Name: "WIN", Code: "WIN", IsActive: true}}, nil
}

func (f *fakeCatalog) Plans(ctx context.Context) ([]models.Plan, error) { return nil, nil }

func (f *fakeCatalog) Agencies(ctx context.Context, activeOnly bool) ([]models.Agency, error) {
	return nil, nil
}

func (f *fakeCatalog) ReferralSources(ctx context.Context) ([]models.ReferralSource, error) {
	return nil, nil
}

func (f *fakeCatalog) States(ctx context.Context) ([]models.State, error) { return f.states, nil }

func (f *fakeCatalog) Cities(ctx context.Context, stateID uuid.UUID) ([]models.City, error) {
	return f.cities[stateID], nil
}

func (f *fakeCatalog) Districts(ctx context.Context, cityID uuid.UUID) ([]models.District, error) {
	return f.districts[cityID], nil
}

type fakeAgenda struct {
	leads *fakeLeads
	now   time.Time
}

func (f fakeAgenda) ForUser(ctx context.Context, userID string) (agenda.Agenda, error) {
	return agenda.Build(testToday, f.leads.filter(models.ScopeUser(userID))), nil
}

func (f fakeAgenda) ForSupervisor(ctx context.Context, supervisorID string) (agenda.Agenda, error) {
	return agenda.Build(testToday, nil), nil
}

func (f fakeAgenda) ForAll(ctx context.Context) (agenda.Agenda, error) {
	return agenda.Build(testToday, f.leads.leads), nil
}

func (f fakeAgenda) CurrentSlot() agenda.SlotState {
	return agenda.CurrentSlot(f.now)
}

var (
	advisorSession    = access.Session{UserID: "adv-1", Name: "Ana Torres", Email: "ana@win.pe", Role: access.RoleAdvisor}
	backofficeSession = access.Session{UserID: "bo-1", Name: "Beto", Email: "bo@win.pe", Role: access.RoleBackoffice}
	adminSession      = access.Session{UserID: "adm-1", Name: "Admin", Email: "admin@win.pe", Role: access.RoleAdmin}
)

type testApp struct {
	deps    Deps
	router  http.Handler
	leads   *fakeLeads
	sales   *fakeSales
	users   *fakeUsers
	catalog *fakeCatalog
}

func newTestApp(t interface{ Fatalf(string, ...interface{}) }) *testApp {
	log := zap.NewNop()
	cfg := &config.Config{Timezone: "UTC", SessionSecret: "test-secret", SessionTTL: time.Hour}

	leads := &fakeLeads{leads: []models.Lead{{
		ID:          uuid.MustParse("11111111-1111-1111-1111-111111111111"),
		FullName:    "Rosa Quispe",
		DNI:         "44556677",
		Phone:       "987654321",
		ContactDate: testToday.AddDate(0, 0, -4),
		Status:      models.LeadStatusNew,
		UserID:      "adv-1",
		CreatedAt:   testToday.AddDate(0, 0, -5),
	}}}
	sales := &fakeSales{}
	hash, err := bcrypt.GenerateFromPassword([]byte("secreto123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	users := &fakeUsers{
		users: []models.User{
			{ID: "adv-1", Name: "Ana Torres", Email: "ana@win.pe", Role: string(access.RoleAdvisor)},
			{ID: "ban-1", Name: "Bruno", Email: "bruno@win.pe", Role: string(access.RoleAdvisor), Banned: true},
			{ID: "usr-1", Name: "Carla", Email: "carla@win.pe", Role: "user"},
		},
		hashes: map[string]string{"adv-1": string(hash), "ban-1": string(hash), "usr-1": string(hash)},
	}
	catalog := &fakeCatalog{}

	renderer, err := NewRenderer(time.UTC, log)
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}

	d := Deps{
		Config:   cfg,
		Logger:   log,
		Gate:     middleware.NewGate(cfg.SessionSecret, cfg.SessionTTL),
		Actions:  actions.New(actions.Deps{Users: users, Logger: log, Location: time.UTC}),
		Agenda:   fakeAgenda{leads: leads, now: time.Date(2026, 3, 10, 10, 30, 0, 0, time.UTC)},
		Leads:    leads,
		Sales:    sales,
		Users:    users,
		Team:     fakeTeam{},
		Catalog:  catalog,
		Health:   map[string]Pinger{},
		Renderer: renderer,
	}
	return &testApp{deps: d, router: NewRouter(d), leads: leads, sales: sales, users: users, catalog: catalog}
}

func (a *testApp) do(method, target string, s *access.Session, form url.Values) *httptest.ResponseRecorder {
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if s != nil {
		req.AddCookie(a.deps.Gate.Issue(*s, false))
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func httpGet(h http.HandlerFunc, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}
