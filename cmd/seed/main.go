// Seeder for populating a development database with demo users, catalog data,
// leads spread around today's agenda and a handful of sales waiting for review.
//
// SAFETY: This command ONLY runs when:
//   - APP_ENV=development
//   - --confirm flag is provided
//
// Usage:
//
//	APP_ENV=development go run ./cmd/seed --count 25 --confirm
//
// Default count is 25 if --count is not provided. Running it twice is safe:
// users and catalog rows are reused, only new leads are added.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"winsales/internal/access"
	"winsales/internal/actions"
	"winsales/internal/agenda"
	"winsales/internal/config"
	"winsales/internal/db"
	"winsales/internal/models"
	"winsales/internal/util"
)

const demoPassword = "demo12345"

type demoUser struct {
	name  string
	email string
	role  access.Role
}

var demoUsers = []demoUser{
	{"Sofía Supervisora", "supervisor@winsales.test", access.RoleSupervisor},
	{"Ana Asesora", "ana@winsales.test", access.RoleAdvisor},
	{"Luis Asesor", "luis@winsales.test", access.RoleAdvisor},
	{"Carla Backoffice", "backoffice@winsales.test", access.RoleBackoffice},
}

var demoOperators = []struct {
	name, code string
	plans      []demoPlan
}{
	{"WIN", "WIN", []demoPlan{{"Fibra 300", 300, "79.90"}, {"Fibra 600", 600, "99.90"}, {"Fibra 1000", 1000, "139.90"}}},
	{"Movistar", "MOVISTAR", []demoPlan{{"Hogar 200", 200, "89.00"}}},
}

type demoPlan struct {
	name  string
	speed int32
	price string
}

var referralSources = []string{"Facebook", "Referido", "Volanteo", "Llamada entrante"}

var limaDistricts = []string{"Miraflores", "San Isidro", "Surco", "La Molina", "San Borja"}

func main() {
	count := flag.Int("count", 25, "Number of leads to seed")
	confirm := flag.Bool("confirm", false, "Confirm seeding (required)")
	flag.Parse()

	if os.Getenv("APP_ENV") != "development" {
		fmt.Fprintln(os.Stderr, "ERROR: Seeder can only run in development environment.")
		fmt.Fprintln(os.Stderr, "       Set APP_ENV=development and try again.")
		os.Exit(1)
	}
	if !*confirm {
		fmt.Fprintln(os.Stderr, "ERROR: --confirm flag is required to run seeder.")
		fmt.Fprintf(os.Stderr, "       Usage: APP_ENV=development go run ./cmd/seed --count %d --confirm\n", *count)
		os.Exit(1)
	}

	cfg := config.Load()
	logger, err := cfg.NewLogger()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Sugar()

	ctx := context.Background()
	conn, err := db.Connect(ctx, cfg.DatabaseURL, db.Options{MaxOpenConns: 2})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer conn.Close()

	// Do NOT run migrations - assume DB is already set up

	s := &seeder{
		conn:    conn,
		users:   models.NewUserRepository(conn),
		team:    models.NewTeamRepository(conn),
		leads:   models.NewLeadRepository(conn),
		sales:   models.NewSaleRepository(conn),
		catalog: models.NewCatalogRepository(conn),
		log:     log,
		loc:     cfg.Location(),
	}
	if err := s.run(ctx, *count); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

type seeder struct {
	conn    *sql.DB
	users   *models.UserRepository
	team    *models.TeamRepository
	leads   *models.LeadRepository
	sales   *models.SaleRepository
	catalog *models.CatalogRepository
	log     *zap.SugaredLogger
	loc     *time.Location
}

func (s *seeder) run(ctx context.Context, count int) error {
	s.log.Infof("SEEDER: preparing %d leads", count)

	ids := make(map[string]string, len(demoUsers))
	for _, u := range demoUsers {
		id, err := s.ensureUser(ctx, u)
		if err != nil {
			return fmt.Errorf("user %s: %w", u.email, err)
		}
		ids[u.email] = id
	}

	supervisor := ids["supervisor@winsales.test"]
	advisors := []string{ids["ana@winsales.test"], ids["luis@winsales.test"]}
	for _, advisor := range advisors {
		if err := s.team.Assign(ctx, supervisor, advisor); err != nil {
			return fmt.Errorf("assign advisor: %w", err)
		}
	}

	plans, err := s.ensureCatalog(ctx)
	if err != nil {
		return err
	}
	sources, err := s.ensureReferralSources(ctx)
	if err != nil {
		return err
	}
	districts, err := s.ensureGeography(ctx)
	if err != nil {
		return err
	}

	today := util.StartOfDay(time.Now(), s.loc)
	prefs := []string{string(agenda.SlotMorning), string(agenda.SlotAfternoon), string(agenda.SlotEvening), string(agenda.SlotAny), ""}

	var leadsCreated, salesCreated int
	for i := 1; i <= count; i++ {
		// Contact dates run from five days ago to two days ahead so every agenda bucket has entries.
		contact := today.AddDate(0, 0, (i%8)-5)
		in := models.LeadInput{
			FullName:              fmt.Sprintf("Cliente Demo %02d", i),
			DNI:                   fmt.Sprintf("7%07d", i),
			Phone:                 fmt.Sprintf("9%08d", i),
			ContactDate:           contact,
			ContactTimePreference: prefs[i%len(prefs)],
			CurrentOperator:       "Claro",
			UserID:                advisors[i%len(advisors)],
			Address:               fmt.Sprintf("Av. Demo %d", 100+i),
		}
		if len(sources) > 0 {
			in.ReferralSourceID = uuid.NullUUID{UUID: sources[i%len(sources)], Valid: true}
		}
		if len(districts) > 0 {
			in.DistrictID = uuid.NullUUID{UUID: districts[i%len(districts)].ID, Valid: true}
		}
		if len(plans) > 0 {
			in.OperatorID = plans[i%len(plans)].OperatorID
		}

		leadID, err := s.leads.Create(ctx, in)
		if err != nil {
			return fmt.Errorf("create lead %d: %w", i, err)
		}
		leadsCreated++

		if i%4 != 0 || len(plans) == 0 {
			continue
		}
		plan := plans[i%len(plans)]
		sale := models.SaleInput{
			LeadID:       uuid.NullUUID{UUID: leadID, Valid: true},
			FullName:     in.FullName,
			DNI:          in.DNI,
			Phone:        in.Phone,
			IsPhoneOwner: true,
			Address:      in.Address,
			AddressType:  models.AddressHome,
			District:     limaDistricts[i%len(limaDistricts)],
			Province:     "Lima",
			Department:   "Lima",
			PlanID:       plan.ID,
			Price:        plan.Price,
			UserID:       in.UserID,
			OperatorID:   plan.OperatorID,
		}
		if _, err := s.sales.CreateFromLead(ctx, sale); err != nil {
			return fmt.Errorf("create sale for lead %d: %w", i, err)
		}
		salesCreated++
	}

	s.log.Infof("SEEDER: created %d leads and %d sales", leadsCreated, salesCreated)
	s.log.Infof("SEEDER: demo users share the password %q", demoPassword)
	return nil
}

func (s *seeder) ensureUser(ctx context.Context, u demoUser) (string, error) {
	existing, err := s.users.GetByEmail(ctx, u.email)
	if err == nil {
		return existing.ID, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return "", err
	}
	hash, err := actions.HashPassword(demoPassword)
	if err != nil {
		return "", err
	}
	id, err := s.users.Create(ctx, u.name, u.email, string(u.role), hash)
	if err != nil {
		return "", err
	}
	s.log.Infof("created %s %s", u.role, u.email)
	return id, nil
}

// ensureCatalog creates the demo operators and their plans, returning every active plan.
func (s *seeder) ensureCatalog(ctx context.Context) ([]models.Plan, error) {
	for _, op := range demoOperators {
		var opID uuid.UUID
		existing, err := s.catalog.OperatorByCode(ctx, op.code)
		switch {
		case err == nil:
			opID = existing.ID
		case errors.Is(err, models.ErrNotFound):
			opID, err = s.catalog.CreateOperator(ctx, op.name, op.code, "")
			if err != nil {
				return nil, fmt.Errorf("create operator %s: %w", op.code, err)
			}
		default:
			return nil, err
		}

		current, err := s.catalog.PlansByOperator(ctx, opID)
		if err != nil {
			return nil, err
		}
		if len(current) > 0 {
			continue
		}
		for i, p := range op.plans {
			_, err := s.conn.ExecContext(ctx, `
				INSERT INTO plans (operator_id, name, speed_mbps, price, sort_order)
				VALUES ($1, $2, $3, $4, $5)
			`, opID, p.name, p.speed, decimal.RequireFromString(p.price), i)
			if err != nil {
				return nil, fmt.Errorf("create plan %s: %w", p.name, err)
			}
		}
	}
	return s.catalog.Plans(ctx)
}

func (s *seeder) ensureReferralSources(ctx context.Context) ([]uuid.UUID, error) {
	current, err := s.catalog.ReferralSources(ctx)
	if err != nil {
		return nil, err
	}
	if len(current) == 0 {
		for _, name := range referralSources {
			if _, err := s.conn.ExecContext(ctx, `INSERT INTO referral_sources (name) VALUES ($1)`, name); err != nil {
				return nil, fmt.Errorf("create referral source: %w", err)
			}
		}
		if current, err = s.catalog.ReferralSources(ctx); err != nil {
			return nil, err
		}
	}
	ids := make([]uuid.UUID, 0, len(current))
	for _, src := range current {
		ids = append(ids, src.ID)
	}
	return ids, nil
}

// ensureGeography loads Lima with a few districts so the lead form cascade has options.
func (s *seeder) ensureGeography(ctx context.Context) ([]models.District, error) {
	states, err := s.catalog.States(ctx)
	if err != nil {
		return nil, err
	}
	if len(states) > 0 {
		cities, err := s.catalog.Cities(ctx, states[0].ID)
		if err != nil || len(cities) == 0 {
			return nil, err
		}
		return s.catalog.Districts(ctx, cities[0].ID)
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var stateID, cityID uuid.UUID
	err = tx.QueryRowContext(ctx, `
		INSERT INTO states (country_id, name)
		VALUES ((SELECT id FROM countries WHERE code = 'PE'), 'Lima')
		RETURNING id
	`).Scan(&stateID)
	if err != nil {
		return nil, fmt.Errorf("create state: %w", err)
	}
	if err := tx.QueryRowContext(ctx, `INSERT INTO cities (state_id, name) VALUES ($1, 'Lima') RETURNING id`, stateID).Scan(&cityID); err != nil {
		return nil, fmt.Errorf("create city: %w", err)
	}
	for _, name := range limaDistricts {
		if _, err := tx.ExecContext(ctx, `INSERT INTO districts (city_id, name) VALUES ($1, $2)`, cityID, name); err != nil {
			return nil, fmt.Errorf("create district %s: %w", name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return s.catalog.Districts(ctx, cityID)
}
