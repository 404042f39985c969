package models

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const saleSelect = `
	SELECT
		s.id, s.lead_id, s.full_name, s.dni, s.dni_expiry_date, s.birth_place, s.birth_date,
		s.email, s.phone, s.phone_owner_name, s.phone_owner_dni,
		s.address, s.address_type, s.reference, s.district, s.province, s.department,
		s.latitude, s.longitude, s.plan_id, p.name, s.price, s.score, s.installation_date,
		s.external_id, s.contract_number, s.operator_metadata, s.request_status, s.order_status,
		s.rejection_reason, s.user_id, u.name, u.email, s.validated_by, s.validated_at,
		s.operator_id, o.name, s.created_at, s.updated_at
	FROM sales s
	LEFT JOIN plans p ON s.plan_id = p.id
	LEFT JOIN operators o ON s.operator_id = o.id
	LEFT JOIN "user" u ON s.user_id = u.id
	WHERE 1=1`

func scanSale(row rowScanner) (Sale, error) {
	var s Sale
	var metadata []byte
	err := row.Scan(
		&s.ID, &s.LeadID, &s.FullName, &s.DNI, &s.DNIExpiryDate, &s.BirthPlace, &s.BirthDate,
		&s.Email, &s.Phone, &s.PhoneOwnerName, &s.PhoneOwnerDNI,
		&s.Address, &s.AddressType, &s.Reference, &s.District, &s.Province, &s.Department,
		&s.Latitude, &s.Longitude, &s.PlanID, &s.PlanName, &s.Price, &s.Score, &s.InstallationDate,
		&s.ExternalID, &s.ContractNumber, &metadata, &s.RequestStatus, &s.OrderStatus,
		&s.RejectionReason, &s.UserID, &s.UserName, &s.UserEmail, &s.ValidatedBy, &s.ValidatedAt,
		&s.OperatorID, &s.OperatorName, &s.CreatedAt, &s.UpdatedAt,
	)
	s.OperatorMetadata = metadata
	return s, err
}

type SaleRepository struct {
	db *sql.DB
}

func NewSaleRepository(db *sql.DB) *SaleRepository {
	return &SaleRepository{db: db}
}

func (r *SaleRepository) query(ctx context.Context, query string, args ...interface{}) ([]Sale, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sales []Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		sales = append(sales, s)
	}
	return sales, rows.Err()
}

// List returns sales in scope, optionally filtered by request status, newest first.
func (r *SaleRepository) List(ctx context.Context, scope LeadScope, filter SaleFilter) ([]Sale, error) {
	clause, args := scope.where("s", 1)
	query := saleSelect + clause
	if filter.RequestStatus != "" {
		args = append(args, string(filter.RequestStatus))
		query += fmt.Sprintf(" AND s.request_status = $%d", len(args))
	}
	return r.query(ctx, query+" ORDER BY s.created_at DESC", args...)
}

func (r *SaleRepository) GetByID(ctx context.Context, id uuid.UUID) (*Sale, error) {
	s, err := scanSale(r.db.QueryRowContext(ctx, saleSelect+" AND s.id = $1", id))
	if err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

func (r *SaleRepository) GetByIDForUser(ctx context.Context, id uuid.UUID, userID string) (*Sale, error) {
	s, err := scanSale(r.db.QueryRowContext(ctx, saleSelect+" AND s.id = $1 AND s.user_id = $2", id, userID))
	if err != nil {
		return nil, notFound(err)
	}
	return &s, nil
}

func (r *SaleRepository) OwnerOf(ctx context.Context, id uuid.UUID) (string, error) {
	var userID string
	err := r.db.QueryRowContext(ctx, `SELECT user_id FROM sales WHERE id = $1`, id).Scan(&userID)
	if err != nil {
		return "", notFound(err)
	}
	return userID, nil
}

// Stats counts sales per request status. Today covers the calendar day of today in
// today's own location, not the database session's.
func (r *SaleRepository) Stats(ctx context.Context, today time.Time) (SaleStats, error) {
	from, to := dayBounds(today)
	var st SaleStats
	err := r.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE request_status = 'pending'),
			COUNT(*) FILTER (WHERE request_status = 'validated'),
			COUNT(*) FILTER (WHERE request_status = 'rejected'),
			COUNT(*) FILTER (WHERE created_at >= $1 AND created_at < $2)
		FROM sales
	`, from, to).Scan(&st.Pending, &st.Validated, &st.Rejected, &st.Today)
	return st, err
}

// CreateFromLead inserts the sale and, when it comes from a lead, marks that lead converted
// in the same transaction.
func (r *SaleRepository) CreateFromLead(ctx context.Context, in SaleInput) (uuid.UUID, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return uuid.Nil, fmt.Errorf("begin sale tx: %w", err)
	}
	defer tx.Rollback()

	ownerName, ownerDNI := nullString(in.PhoneOwnerName), nullString(in.PhoneOwnerDNI)
	if in.IsPhoneOwner {
		ownerName, ownerDNI = sql.NullString{}, sql.NullString{}
	}

	var id uuid.UUID
	err = tx.QueryRowContext(ctx, `
		INSERT INTO sales (
			lead_id, full_name, dni, dni_expiry_date, birth_place, birth_date,
			email, phone, phone_owner_name, phone_owner_dni,
			address, address_type, reference, district, province, department,
			latitude, longitude, plan_id, price, score, installation_date, user_id, operator_id
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16,
			$17, $18, $19, $20, $21, $22, $23, $24
		)
		RETURNING id
	`,
		in.LeadID, in.FullName, in.DNI, in.DNIExpiryDate, nullString(in.BirthPlace), in.BirthDate,
		nullString(in.Email), in.Phone, ownerName, ownerDNI,
		in.Address, string(in.AddressType), nullString(in.Reference), in.District, in.Province, in.Department,
		in.Latitude, in.Longitude, in.PlanID, in.Price, in.Score, in.InstallationDate, in.UserID, in.OperatorID,
	).Scan(&id)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert sale: %w", err)
	}

	if in.LeadID.Valid {
		if err := MarkConverted(ctx, tx, in.LeadID.UUID); err != nil {
			return uuid.Nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, fmt.Errorf("commit sale: %w", err)
	}
	return id, nil
}

func (r *SaleRepository) Update(ctx context.Context, id uuid.UUID, patch SalePatch) error {
	return r.exec(ctx, patch.Builder(), id)
}

// Review applies backoffice fields. Moving the request to validated stamps the reviewer.
func (r *SaleRepository) Review(ctx context.Context, id uuid.UUID, patch BackofficePatch, reviewerID string) error {
	b := patch.Builder()
	if b.Len() > 0 && patch.RequestStatus.Set && patch.RequestStatus.Value == RequestValidated {
		b.Set("validated_by", reviewerID)
		b.Set("validated_at", sql.NullTime{Time: nowFunc(), Valid: true})
	}
	return r.exec(ctx, b, id)
}

func (r *SaleRepository) exec(ctx context.Context, b *UpdateBuilder, id uuid.UUID) error {
	query, args, err := b.Build(id)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update sale: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
