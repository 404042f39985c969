package models

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// LeadScope narrows lead reads to one advisor, one supervisor's team, or (zero value) everyone.
type LeadScope struct {
	UserID       string
	SupervisorID string
}

func ScopeUser(userID string) LeadScope {
	return LeadScope{UserID: userID}
}

func ScopeTeam(supervisorID string) LeadScope {
	return LeadScope{SupervisorID: supervisorID}
}

var ScopeAll = LeadScope{}

var nowFunc = time.Now

// where appends the scope predicate for a table alias, numbering from next.
func (s LeadScope) where(alias string, next int) (string, []interface{}) {
	switch {
	case s.UserID != "":
		return fmt.Sprintf(" AND %s.user_id = $%d", alias, next), []interface{}{s.UserID}
	case s.SupervisorID != "":
		return fmt.Sprintf(" AND %s.user_id IN (SELECT advisor_id FROM supervisor_advisors WHERE supervisor_id = $%d)", alias, next),
			[]interface{}{s.SupervisorID}
	default:
		return "", nil
	}
}

const leadSelect = `
	SELECT
		l.id, l.full_name, l.dni, l.phone, l.contact_date, l.contact_time_preference,
		l.referral_source_id, rs.name, l.current_operator, l.notes, l.status,
		l.user_id, u.name, l.operator_id, o.name,
		l.address, l.district_id, d.name, c.name, st.name,
		l.latitude, l.longitude, l.reference, l.created_at, l.updated_at
	FROM leads l
	LEFT JOIN referral_sources rs ON l.referral_source_id = rs.id
	LEFT JOIN "user" u ON l.user_id = u.id
	LEFT JOIN operators o ON l.operator_id = o.id
	LEFT JOIN districts d ON l.district_id = d.id
	LEFT JOIN cities c ON d.city_id = c.id
	LEFT JOIN states st ON c.state_id = st.id
	WHERE 1=1`

func scanLead(row rowScanner) (Lead, error) {
	var l Lead
	err := row.Scan(
		&l.ID, &l.FullName, &l.DNI, &l.Phone, &l.ContactDate, &l.ContactTimePreference,
		&l.ReferralSourceID, &l.ReferralSourceName, &l.CurrentOperator, &l.Notes, &l.Status,
		&l.UserID, &l.UserName, &l.OperatorID, &l.OperatorName,
		&l.Address, &l.DistrictID, &l.DistrictName, &l.CityName, &l.StateName,
		&l.Latitude, &l.Longitude, &l.Reference, &l.CreatedAt, &l.UpdatedAt,
	)
	return l, err
}

type LeadRepository struct {
	db DBTX
}

func NewLeadRepository(db DBTX) *LeadRepository {
	return &LeadRepository{db: db}
}

func (r *LeadRepository) query(ctx context.Context, query string, args ...interface{}) ([]Lead, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

// List returns the leads visible in scope, newest first.
func (r *LeadRepository) List(ctx context.Context, scope LeadScope) ([]Lead, error) {
	clause, args := scope.where("l", 1)
	return r.query(ctx, leadSelect+clause+" ORDER BY l.created_at DESC", args...)
}

// ListPending returns unconverted leads due on or before date, oldest contact first.
func (r *LeadRepository) ListPending(ctx context.Context, scope LeadScope, date time.Time) ([]Lead, error) {
	clause, args := scope.where("l", 2)
	query := leadSelect + " AND l.status = 'new' AND l.contact_date <= $1" + clause +
		" ORDER BY l.contact_date ASC, l.created_at ASC"
	return r.query(ctx, query, append([]interface{}{date.Format("2006-01-02")}, args...)...)
}

func (r *LeadRepository) GetByID(ctx context.Context, id uuid.UUID) (*Lead, error) {
	l, err := scanLead(r.db.QueryRowContext(ctx, leadSelect+" AND l.id = $1", id))
	if err != nil {
		return nil, notFound(err)
	}
	return &l, nil
}

func (r *LeadRepository) GetByIDForUser(ctx context.Context, id uuid.UUID, userID string) (*Lead, error) {
	l, err := scanLead(r.db.QueryRowContext(ctx, leadSelect+" AND l.id = $1 AND l.user_id = $2", id, userID))
	if err != nil {
		return nil, notFound(err)
	}
	return &l, nil
}

// OwnerOf returns the advisor that owns the lead.
func (r *LeadRepository) OwnerOf(ctx context.Context, id uuid.UUID) (string, error) {
	var userID string
	err := r.db.QueryRowContext(ctx, `SELECT user_id FROM leads WHERE id = $1`, id).Scan(&userID)
	if err != nil {
		return "", notFound(err)
	}
	return userID, nil
}

func (r *LeadRepository) CountsByUser(ctx context.Context, userID string) (LeadCounts, error) {
	var c LeadCounts
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'new'),
			COUNT(*) FILTER (WHERE status = 'converted')
		FROM leads
		WHERE user_id = $1
	`, userID).Scan(&c.Total, &c.New, &c.Converted)
	return c, err
}

func (r *LeadRepository) Create(ctx context.Context, in LeadInput) (uuid.UUID, error) {
	contactDate := in.ContactDate
	if contactDate.IsZero() {
		contactDate = nowFunc()
	}

	var id uuid.UUID
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO leads (
			full_name, dni, phone, contact_date, contact_time_preference,
			referral_source_id, current_operator, notes, user_id, operator_id,
			address, district_id, latitude, longitude, reference
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id
	`,
		in.FullName, in.DNI, in.Phone, contactDate.Format("2006-01-02"), nullString(in.ContactTimePreference),
		in.ReferralSourceID, nullString(in.CurrentOperator), nullString(in.Notes), in.UserID, in.OperatorID,
		nullString(in.Address), in.DistrictID, in.Latitude, in.Longitude, nullString(in.Reference),
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert lead: %w", err)
	}
	return id, nil
}

// Update applies a sparse patch. Last write wins; there is no version check.
func (r *LeadRepository) Update(ctx context.Context, id uuid.UUID, patch LeadPatch) error {
	query, args, err := patch.Builder().Build(id)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update lead: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *LeadRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkConverted flips a new lead to converted inside the caller's transaction. A lead that
// is missing or already converted yields ErrLeadConverted, so two concurrent sales for the
// same lead cannot both commit.
func MarkConverted(ctx context.Context, tx DBTX, id uuid.UUID) error {
	res, err := tx.ExecContext(ctx, `
		UPDATE leads SET status = 'converted', updated_at = NOW()
		WHERE id = $1 AND status = 'new'
	`, id)
	if err != nil {
		return fmt.Errorf("mark lead converted: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrLeadConverted
	}
	return nil
}
