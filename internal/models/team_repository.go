package models

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// TeamRepository manages the supervisor_advisors join table.
type TeamRepository struct {
	db *sql.DB
}

func NewTeamRepository(db *sql.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) members(ctx context.Context, query string, args ...interface{}) ([]TeamMember, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []TeamMember
	for rows.Next() {
		var m TeamMember
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.AgencyID, &m.AgencyName); err != nil {
			return nil, fmt.Errorf("scan team member: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

func (r *TeamRepository) Members(ctx context.Context, supervisorID string) ([]TeamMember, error) {
	return r.members(ctx, `
		SELECT u.id, u.name, u.email, u.agency_id, a.name
		FROM "user" u
		LEFT JOIN agencies a ON u.agency_id = a.id
		JOIN supervisor_advisors sa ON sa.advisor_id = u.id
		WHERE sa.supervisor_id = $1
		ORDER BY a.name NULLS LAST, u.name
	`, supervisorID)
}

// Unassigned lists advisors not yet on the supervisor's team.
func (r *TeamRepository) Unassigned(ctx context.Context, supervisorID string) ([]TeamMember, error) {
	return r.members(ctx, `
		SELECT u.id, u.name, u.email, u.agency_id, a.name
		FROM "user" u
		LEFT JOIN agencies a ON u.agency_id = a.id
		WHERE u.role = 'asesor'
		AND u.id NOT IN (
			SELECT advisor_id FROM supervisor_advisors WHERE supervisor_id = $1
		)
		ORDER BY a.name NULLS LAST, u.name
	`, supervisorID)
}

// Assign is idempotent.
func (r *TeamRepository) Assign(ctx context.Context, supervisorID, advisorID string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO supervisor_advisors (supervisor_id, advisor_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, supervisorID, advisorID)
	return err
}

func (r *TeamRepository) Remove(ctx context.Context, supervisorID, advisorID string) error {
	_, err := r.db.ExecContext(ctx, `
		DELETE FROM supervisor_advisors WHERE supervisor_id = $1 AND advisor_id = $2
	`, supervisorID, advisorID)
	return err
}

func (r *TeamRepository) IsMember(ctx context.Context, supervisorID, advisorID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM supervisor_advisors WHERE supervisor_id = $1 AND advisor_id = $2)
	`, supervisorID, advisorID).Scan(&exists)
	return exists, err
}

// Stats summarizes a supervisor's team. The day and month windows follow today's location.
func (r *TeamRepository) Stats(ctx context.Context, supervisorID string, today time.Time) (TeamStats, error) {
	from, to := dayBounds(today)
	month := time.Date(from.Year(), from.Month(), 1, 0, 0, 0, 0, from.Location())
	var st TeamStats
	err := r.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM supervisor_advisors WHERE supervisor_id = $1),
			(SELECT COUNT(*) FROM leads l
				JOIN supervisor_advisors sa ON l.user_id = sa.advisor_id
				WHERE sa.supervisor_id = $1),
			(SELECT COUNT(*) FROM sales s
				JOIN supervisor_advisors sa ON s.user_id = sa.advisor_id
				WHERE sa.supervisor_id = $1),
			(SELECT COUNT(*) FROM leads l
				JOIN supervisor_advisors sa ON l.user_id = sa.advisor_id
				WHERE sa.supervisor_id = $1 AND l.created_at >= $2 AND l.created_at < $3),
			(SELECT COUNT(*) FROM sales s
				JOIN supervisor_advisors sa ON s.user_id = sa.advisor_id
				WHERE sa.supervisor_id = $1 AND s.created_at >= $4 AND s.created_at < $3)
	`, supervisorID, from, to, month).Scan(&st.TotalMembers, &st.TotalLeads, &st.TotalSales, &st.NewLeadsToday, &st.SalesThisMonth)
	return st, err
}
