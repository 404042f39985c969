package models

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// CatalogRepository serves the reference tables: operators, plans, agencies,
// referral sources, document types and the state/city/district hierarchy.
type CatalogRepository struct {
	db *sql.DB
}

func NewCatalogRepository(db *sql.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// NormalizeOperatorCode is how operator codes are stored and compared.
func NormalizeOperatorCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func scanOperator(row rowScanner) (Operator, error) {
	var o Operator
	err := row.Scan(&o.ID, &o.Name, &o.Code, &o.LogoURL, &o.IsActive, &o.CreatedAt, &o.UpdatedAt)
	return o, err
}

const operatorSelect = `SELECT id, name, code, logo_url, is_active, created_at, updated_at FROM operators`

func (r *CatalogRepository) Operators(ctx context.Context, activeOnly bool) ([]Operator, error) {
	query := operatorSelect
	if activeOnly {
		query += ` WHERE is_active = true`
	}
	rows, err := r.db.QueryContext(ctx, query+` ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ops []Operator
	for rows.Next() {
		o, err := scanOperator(rows)
		if err != nil {
			return nil, fmt.Errorf("scan operator: %w", err)
		}
		ops = append(ops, o)
	}
	return ops, rows.Err()
}

func (r *CatalogRepository) OperatorByID(ctx context.Context, id uuid.UUID) (*Operator, error) {
	o, err := scanOperator(r.db.QueryRowContext(ctx, operatorSelect+` WHERE id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

func (r *CatalogRepository) OperatorByCode(ctx context.Context, code string) (*Operator, error) {
	o, err := scanOperator(r.db.QueryRowContext(ctx, operatorSelect+` WHERE code = $1`, NormalizeOperatorCode(code)))
	if err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

func (r *CatalogRepository) CreateOperator(ctx context.Context, name, code, logoURL string) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO operators (name, code, logo_url) VALUES ($1, $2, $3) RETURNING id
	`, strings.TrimSpace(name), NormalizeOperatorCode(code), nullString(logoURL)).Scan(&id)
	return id, err
}

func (r *CatalogRepository) UpdateOperator(ctx context.Context, id uuid.UUID, name, code, logoURL string) error {
	return r.exec(ctx, `
		UPDATE operators SET name = $1, code = $2, logo_url = $3, updated_at = NOW() WHERE id = $4
	`, strings.TrimSpace(name), NormalizeOperatorCode(code), nullString(logoURL), id)
}

func (r *CatalogRepository) SetOperatorActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.exec(ctx, `UPDATE operators SET is_active = $1, updated_at = NOW() WHERE id = $2`, active, id)
}

const planSelect = `
	SELECT p.id, p.operator_id, o.name, p.name, p.speed_mbps, p.price, p.commission, p.is_active
	FROM plans p
	LEFT JOIN operators o ON p.operator_id = o.id
	WHERE p.is_active = true`

func (r *CatalogRepository) plans(ctx context.Context, query string, args ...interface{}) ([]Plan, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var plans []Plan
	for rows.Next() {
		var p Plan
		if err := rows.Scan(&p.ID, &p.OperatorID, &p.OperatorName, &p.Name, &p.SpeedMbps, &p.Price, &p.Commission, &p.IsActive); err != nil {
			return nil, fmt.Errorf("scan plan: %w", err)
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

func (r *CatalogRepository) Plans(ctx context.Context) ([]Plan, error) {
	return r.plans(ctx, planSelect+` ORDER BY p.sort_order, p.price`)
}

func (r *CatalogRepository) PlansByOperator(ctx context.Context, operatorID uuid.UUID) ([]Plan, error) {
	return r.plans(ctx, planSelect+` AND p.operator_id = $1 ORDER BY p.sort_order, p.price`, operatorID)
}

func (r *CatalogRepository) PlanByID(ctx context.Context, id uuid.UUID) (*Plan, error) {
	plans, err := r.plans(ctx, planSelect+` AND p.id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(plans) == 0 {
		return nil, ErrNotFound
	}
	return &plans[0], nil
}

const agencySelect = `SELECT id, name, city, address, is_active, created_at FROM agencies`

func (r *CatalogRepository) Agencies(ctx context.Context, activeOnly bool) ([]Agency, error) {
	query := agencySelect
	if activeOnly {
		query += ` WHERE is_active = true`
	}
	rows, err := r.db.QueryContext(ctx, query+` ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var agencies []Agency
	for rows.Next() {
		var a Agency
		if err := rows.Scan(&a.ID, &a.Name, &a.City, &a.Address, &a.IsActive, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan agency: %w", err)
		}
		agencies = append(agencies, a)
	}
	return agencies, rows.Err()
}

func (r *CatalogRepository) CreateAgency(ctx context.Context, name, city, address string) (uuid.UUID, error) {
	var id uuid.UUID
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO agencies (name, city, address) VALUES ($1, $2, $3) RETURNING id
	`, strings.TrimSpace(name), nullString(city), nullString(address)).Scan(&id)
	return id, err
}

func (r *CatalogRepository) UpdateAgency(ctx context.Context, id uuid.UUID, name, city, address string) error {
	return r.exec(ctx, `
		UPDATE agencies SET name = $1, city = $2, address = $3, updated_at = NOW() WHERE id = $4
	`, strings.TrimSpace(name), nullString(city), nullString(address), id)
}

func (r *CatalogRepository) SetAgencyActive(ctx context.Context, id uuid.UUID, active bool) error {
	return r.exec(ctx, `UPDATE agencies SET is_active = $1, updated_at = NOW() WHERE id = $2`, active, id)
}

func (r *CatalogRepository) ReferralSources(ctx context.Context) ([]ReferralSource, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, is_active FROM referral_sources WHERE is_active = true ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sources []ReferralSource
	for rows.Next() {
		var s ReferralSource
		if err := rows.Scan(&s.ID, &s.Name, &s.IsActive); err != nil {
			return nil, fmt.Errorf("scan referral source: %w", err)
		}
		sources = append(sources, s)
	}
	return sources, rows.Err()
}

func (r *CatalogRepository) DocumentTypes(ctx context.Context) ([]DocumentType, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, code FROM document_types WHERE is_active = true ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var types []DocumentType
	for rows.Next() {
		var d DocumentType
		if err := rows.Scan(&d.ID, &d.Name, &d.Code); err != nil {
			return nil, fmt.Errorf("scan document type: %w", err)
		}
		types = append(types, d)
	}
	return types, rows.Err()
}

func (r *CatalogRepository) States(ctx context.Context) ([]State, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name FROM states ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var states []State
	for rows.Next() {
		var s State
		if err := rows.Scan(&s.ID, &s.Name); err != nil {
			return nil, fmt.Errorf("scan state: %w", err)
		}
		states = append(states, s)
	}
	return states, rows.Err()
}

func (r *CatalogRepository) Cities(ctx context.Context, stateID uuid.UUID) ([]City, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, state_id, name FROM cities WHERE state_id = $1 ORDER BY name`, stateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cities []City
	for rows.Next() {
		var c City
		if err := rows.Scan(&c.ID, &c.StateID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan city: %w", err)
		}
		cities = append(cities, c)
	}
	return cities, rows.Err()
}

func (r *CatalogRepository) Districts(ctx context.Context, cityID uuid.UUID) ([]District, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, city_id, name FROM districts WHERE city_id = $1 ORDER BY name`, cityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var districts []District
	for rows.Next() {
		var d District
		if err := rows.Scan(&d.ID, &d.CityID, &d.Name); err != nil {
			return nil, fmt.Errorf("scan district: %w", err)
		}
		districts = append(districts, d)
	}
	return districts, rows.Err()
}

func (r *CatalogRepository) exec(ctx context.Context, query string, args ...interface{}) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
