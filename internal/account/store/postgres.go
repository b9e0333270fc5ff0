package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"lawclinic/internal/account/models"
	"lawclinic/pkg/pagination"
	"lawclinic/pkg/platform/sentinel"
)

const uniqueViolation = "23505"

// PostgresUserStore is the production account store. UpdateAtomic takes a
// row-level lock (SELECT ... FOR UPDATE) so concurrent code issuance and
// verification serialize per account.
type PostgresUserStore struct {
	pool *pgxpool.Pool
}

func NewPostgresUserStore(pool *pgxpool.Pool) *PostgresUserStore {
	return &PostgresUserStore{pool: pool}
}

const userColumns = `id, email, username, password_hash, first_name, last_name, phone_number,
	is_verified, is_staff, is_superuser, is_active, otp_code, otp_issued_at, date_joined, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(
		&u.ID, &u.Email, &u.Username, &u.PasswordHash, &u.FirstName, &u.LastName, &u.PhoneNumber,
		&u.IsVerified, &u.IsStaff, &u.IsSuperuser, &u.IsActive, &u.OTPCode, &u.OTPIssuedAt,
		&u.DateJoined, &u.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}

func (s *PostgresUserStore) Create(ctx context.Context, user *models.User) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (`+userColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		user.ID, user.Email, user.Username, user.PasswordHash, user.FirstName, user.LastName,
		user.PhoneNumber, user.IsVerified, user.IsStaff, user.IsSuperuser, user.IsActive,
		user.OTPCode, user.OTPIssuedAt, user.DateJoined, user.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresUserStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (s *PostgresUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (s *PostgresUserStore) Update(ctx context.Context, user *models.User) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE users SET email = $2, username = $3, password_hash = $4, first_name = $5,
			last_name = $6, phone_number = $7, is_verified = $8, is_staff = $9,
			is_superuser = $10, is_active = $11, otp_code = $12, otp_issued_at = $13,
			updated_at = $14
		WHERE id = $1`,
		user.ID, user.Email, user.Username, user.PasswordHash, user.FirstName, user.LastName,
		user.PhoneNumber, user.IsVerified, user.IsStaff, user.IsSuperuser, user.IsActive,
		user.OTPCode, user.OTPIssuedAt, user.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return sentinel.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresUserStore) UpdateAtomic(ctx context.Context, email string, fn func(*models.User) error) (*models.User, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1 FOR UPDATE`, email)
	user, err := scanUser(row)
	if err != nil {
		return nil, err
	}

	if err := fn(user); err != nil {
		return nil, err
	}

	_, err = tx.Exec(ctx, `
		UPDATE users SET is_verified = $2, otp_code = $3, otp_issued_at = $4, updated_at = $5
		WHERE id = $1`,
		user.ID, user.IsVerified, user.OTPCode, user.OTPIssuedAt, user.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("update user (atomic): %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}
	return user, nil
}

func (s *PostgresUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresUserStore) List(ctx context.Context, p pagination.Params) ([]*models.User, int, error) {
	var total int
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT `+userColumns+` FROM users
		ORDER BY date_joined DESC
		LIMIT $1 OFFSET $2`, p.Limit(), p.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

func (s *PostgresUserStore) Overview(ctx context.Context) (*models.Overview, error) {
	var ov models.Overview
	err := s.pool.QueryRow(ctx, `
		SELECT count(*),
			count(*) FILTER (WHERE is_verified),
			count(*) FILTER (WHERE is_staff),
			count(*) FILTER (WHERE is_active)
		FROM users`).Scan(&ov.Total, &ov.Verified, &ov.Staff, &ov.Active)
	if err != nil {
		return nil, fmt.Errorf("user overview: %w", err)
	}
	return &ov, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
