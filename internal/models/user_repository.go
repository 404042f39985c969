package models

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const credentialProvider = "credential"

const userSelect = `
	SELECT u.id, u.name, u.email, u.role, u.banned, u.agency_id, a.name, u."createdAt"
	FROM "user" u
	LEFT JOIN agencies a ON u.agency_id = a.id`

func scanUser(row rowScanner) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.Banned, &u.AgencyID, &u.AgencyName, &u.CreatedAt)
	return u, err
}

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) query(ctx context.Context, query string, args ...interface{}) ([]User, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, userSelect+` WHERE u.id = $1`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// GetByEmail matches case-insensitively; emails are stored lower-case.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	u, err := scanUser(r.db.QueryRowContext(ctx, userSelect+` WHERE u.email = $1`, strings.ToLower(strings.TrimSpace(email))))
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

// PasswordHash returns the bcrypt hash stored on the user's credential account.
func (r *UserRepository) PasswordHash(ctx context.Context, userID string) (string, error) {
	var hash sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT password FROM account WHERE "userId" = $1 AND "providerId" = $2
	`, userID, credentialProvider).Scan(&hash)
	if err != nil {
		return "", notFound(err)
	}
	if !hash.Valid {
		return "", ErrNotFound
	}
	return hash.String, nil
}

func (r *UserRepository) List(ctx context.Context) ([]User, error) {
	return r.query(ctx, userSelect+` ORDER BY u."createdAt" DESC`)
}

func (r *UserRepository) ListByAgency(ctx context.Context, agencyID uuid.UUID) ([]User, error) {
	return r.query(ctx, userSelect+` WHERE u.agency_id = $1 ORDER BY u.name`, agencyID)
}

// ListAdvisors returns active (not banned) advisors.
func (r *UserRepository) ListAdvisors(ctx context.Context) ([]User, error) {
	return r.query(ctx, userSelect+` WHERE u.role = 'asesor' AND u.banned = false ORDER BY u.name`)
}

// Create inserts the user and its credential account in one transaction.
func (r *UserRepository) Create(ctx context.Context, name, email, role, passwordHash string) (string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin user tx: %w", err)
	}
	defer tx.Rollback()

	id := uuid.NewString()
	_, err = tx.ExecContext(ctx, `
		INSERT INTO "user" (id, name, email, "emailVerified", role)
		VALUES ($1, $2, $3, true, $4)
	`, id, name, strings.ToLower(strings.TrimSpace(email)), role)
	if err != nil {
		return "", fmt.Errorf("insert user: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO account (id, "accountId", "providerId", "userId", password)
		VALUES ($1, $2, $3, $2, $4)
	`, uuid.NewString(), id, credentialProvider, passwordHash)
	if err != nil {
		return "", fmt.Errorf("insert account: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit user: %w", err)
	}
	return id, nil
}

func (r *UserRepository) SetRole(ctx context.Context, id, role string) error {
	return r.exec(ctx, `UPDATE "user" SET role = $1, "updatedAt" = NOW() WHERE id = $2`, role, id)
}

func (r *UserRepository) SetBanned(ctx context.Context, id string, banned bool, reason string) error {
	return r.exec(ctx, `
		UPDATE "user" SET banned = $1, "banReason" = $2, "updatedAt" = NOW() WHERE id = $3
	`, banned, nullString(reason), id)
}

func (r *UserRepository) Update(ctx context.Context, id, name, email string, agencyID uuid.NullUUID) error {
	return r.exec(ctx, `
		UPDATE "user" SET name = $1, email = $2, agency_id = $3, "updatedAt" = NOW() WHERE id = $4
	`, name, strings.ToLower(strings.TrimSpace(email)), agencyID, id)
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	return r.exec(ctx, `
		UPDATE account SET password = $1, "updatedAt" = NOW() WHERE "userId" = $2 AND "providerId" = $3
	`, passwordHash, id, credentialProvider)
}

func (r *UserRepository) exec(ctx context.Context, query string, args ...interface{}) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
