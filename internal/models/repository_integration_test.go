//go:build integration

package models_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"

	"winsales/internal/db"
	"winsales/internal/models"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("winsales"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		tcpostgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	url, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	conn, err := db.Connect(ctx, url, db.Options{MaxOpenConns: 4})
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.NoError(t, db.RunMigrations(ctx, conn))
	return conn
}

type fixture struct {
	conn    *sql.DB
	users   *models.UserRepository
	leads   *models.LeadRepository
	sales   *models.SaleRepository
	team    *models.TeamRepository
	catalog *models.CatalogRepository
	planID  uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	conn := setupDB(t)
	f := &fixture{
		conn:    conn,
		users:   models.NewUserRepository(conn),
		leads:   models.NewLeadRepository(conn),
		sales:   models.NewSaleRepository(conn),
		team:    models.NewTeamRepository(conn),
		catalog: models.NewCatalogRepository(conn),
	}

	ctx := context.Background()
	opID, err := f.catalog.CreateOperator(ctx, "WIN", "win", "")
	require.NoError(t, err)
	err = conn.QueryRowContext(ctx, `
		INSERT INTO plans (operator_id, name, speed_mbps, price) VALUES ($1, 'Fibra 300', 300, 79.90)
		RETURNING id
	`, opID).Scan(&f.planID)
	require.NoError(t, err)
	return f
}

func (f *fixture) user(t *testing.T, email, role string) string {
	id, err := f.users.Create(context.Background(), email, email, role, "hash")
	require.NoError(t, err)
	return id
}

func (f *fixture) sale(leadID uuid.UUID, userID string) models.SaleInput {
	return models.SaleInput{
		LeadID:       uuid.NullUUID{UUID: leadID, Valid: true},
		FullName:     "Rosa Quispe",
		DNI:          "70123456",
		Phone:        "987654321",
		IsPhoneOwner: true,
		Address:      "Av. Larco 123",
		AddressType:  models.AddressHome,
		District:     "Miraflores",
		Province:     "Lima",
		Department:   "Lima",
		PlanID:       f.planID,
		Price:        decimal.RequireFromString("79.90"),
		UserID:       userID,
	}
}

func TestSaleConvertsLeadOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	advisor := f.user(t, "ana@win.pe", "asesor")
	today := time.Now().UTC().Truncate(24 * time.Hour)

	leadID, err := f.leads.Create(ctx, models.LeadInput{
		FullName:    "Rosa Quispe",
		Phone:       "987654321",
		ContactDate: today.AddDate(0, 0, -1),
		UserID:      advisor,
	})
	require.NoError(t, err)

	pending, err := f.leads.ListPending(ctx, models.ScopeUser(advisor), today)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, leadID, pending[0].ID)

	saleID, err := f.sales.CreateFromLead(ctx, f.sale(leadID, advisor))
	require.NoError(t, err)

	lead, err := f.leads.GetByID(ctx, leadID)
	require.NoError(t, err)
	assert.Equal(t, models.LeadStatusConverted, lead.Status)

	_, err = f.sales.CreateFromLead(ctx, f.sale(leadID, advisor))
	assert.ErrorIs(t, err, models.ErrLeadConverted)

	pending, err = f.leads.ListPending(ctx, models.ScopeUser(advisor), today)
	require.NoError(t, err)
	assert.Empty(t, pending)

	sale, err := f.sales.GetByID(ctx, saleID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestPending, sale.RequestStatus)
	assert.True(t, sale.Price.Equal(decimal.RequireFromString("79.90")))

	counts, err := f.leads.CountsByUser(ctx, advisor)
	require.NoError(t, err)
	assert.Equal(t, models.LeadCounts{Total: 1, New: 0, Converted: 1}, counts)
}

func TestReviewStampsValidator(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	advisor := f.user(t, "ana@win.pe", "asesor")
	reviewer := f.user(t, "bo@win.pe", "backoffice")

	leadID, err := f.leads.Create(ctx, models.LeadInput{FullName: "Rosa", Phone: "987654321", UserID: advisor})
	require.NoError(t, err)
	saleID, err := f.sales.CreateFromLead(ctx, f.sale(leadID, advisor))
	require.NoError(t, err)

	err = f.sales.Review(ctx, saleID, models.BackofficePatch{
		RequestStatus:  models.Some(models.RequestValidated),
		ContractNumber: models.Some(sql.NullString{String: "C-001", Valid: true}),
	}, reviewer)
	require.NoError(t, err)

	sale, err := f.sales.GetByID(ctx, saleID)
	require.NoError(t, err)
	assert.Equal(t, models.RequestValidated, sale.RequestStatus)
	assert.Equal(t, reviewer, sale.ValidatedBy.String)
	assert.True(t, sale.ValidatedAt.Valid)
	assert.Equal(t, "C-001", sale.ContractNumber.String)

	err = f.sales.Review(ctx, uuid.New(), models.BackofficePatch{RequestStatus: models.Some(models.RequestRejected)}, reviewer)
	assert.ErrorIs(t, err, models.ErrNotFound)

	stats, err := f.sales.Stats(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Validated)
	assert.Equal(t, 0, stats.Pending)
	assert.Equal(t, 1, stats.Today)

	stats, err = f.sales.Stats(ctx, time.Now().AddDate(0, 0, -2))
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Today, "a sale made now does not count for another day")
}

func TestTeamScopeLimitsLeads(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	supervisor := f.user(t, "sup@win.pe", "supervisor")
	mine := f.user(t, "ana@win.pe", "asesor")
	other := f.user(t, "luis@win.pe", "asesor")

	require.NoError(t, f.team.Assign(ctx, supervisor, mine))
	require.NoError(t, f.team.Assign(ctx, supervisor, mine), "assign is idempotent")

	member, err := f.team.IsMember(ctx, supervisor, mine)
	require.NoError(t, err)
	assert.True(t, member)

	for _, owner := range []string{mine, other} {
		_, err := f.leads.Create(ctx, models.LeadInput{FullName: "Lead " + owner, Phone: "987654321", UserID: owner})
		require.NoError(t, err)
	}

	leads, err := f.leads.List(ctx, models.ScopeTeam(supervisor))
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, mine, leads[0].UserID)

	all, err := f.leads.List(ctx, models.ScopeAll)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	stats, err := f.team.Stats(ctx, supervisor, time.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalMembers)
	assert.Equal(t, 1, stats.TotalLeads)
	assert.Equal(t, 1, stats.NewLeadsToday)

	stats, err = f.team.Stats(ctx, supervisor, time.Now().AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Equal(t, 0, stats.NewLeadsToday)

	require.NoError(t, f.team.Remove(ctx, supervisor, mine))
	leads, err = f.leads.List(ctx, models.ScopeTeam(supervisor))
	require.NoError(t, err)
	assert.Empty(t, leads)
}

func TestDuplicateEmailIsUniqueViolation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.user(t, "ana@win.pe", "asesor")

	_, err := f.users.Create(ctx, "Ana", "ANA@win.pe", "asesor", "hash")
	require.Error(t, err)
	_, ok := models.IsUniqueViolation(err)
	assert.True(t, ok)
}
