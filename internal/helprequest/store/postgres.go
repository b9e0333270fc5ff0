package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"lawclinic/internal/helprequest/models"
	"lawclinic/pkg/pagination"
	"lawclinic/pkg/platform/sentinel"
)

// PostgresStore persists help requests in Postgres.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const helpRequestColumns = `id, full_name, email, phone_number, legal_issue_type, had_previous_help, description, created_at, updated_at`

func scanHelpRequest(row pgx.Row) (*models.HelpRequest, error) {
	var hr models.HelpRequest
	err := row.Scan(&hr.ID, &hr.FullName, &hr.Email, &hr.PhoneNumber, &hr.LegalIssueType,
		&hr.HadPreviousHelp, &hr.Description, &hr.CreatedAt, &hr.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning help request: %w", err)
	}
	return &hr, nil
}

func (s *PostgresStore) Create(ctx context.Context, hr *models.HelpRequest) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO help_requests (`+helpRequestColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		hr.ID, hr.FullName, hr.Email, hr.PhoneNumber, hr.LegalIssueType,
		hr.HadPreviousHelp, hr.Description, hr.CreatedAt, hr.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting help request: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, id uuid.UUID) (*models.HelpRequest, error) {
	return scanHelpRequest(s.pool.QueryRow(ctx,
		`SELECT `+helpRequestColumns+` FROM help_requests WHERE id = $1`, id))
}

func (s *PostgresStore) Update(ctx context.Context, hr *models.HelpRequest) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE help_requests SET
			full_name = $2, email = $3, phone_number = $4, legal_issue_type = $5,
			had_previous_help = $6, description = $7, updated_at = $8
		WHERE id = $1`,
		hr.ID, hr.FullName, hr.Email, hr.PhoneNumber, hr.LegalIssueType,
		hr.HadPreviousHelp, hr.Description, hr.UpdatedAt)
	if err != nil {
		return fmt.Errorf("updating help request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM help_requests WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting help request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func buildFilter(f Filter) (string, []any) {
	var clauses []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.LegalIssueType != "" {
		clauses = append(clauses, "LOWER(legal_issue_type) = LOWER("+arg(f.LegalIssueType)+")")
	}
	if f.HadPreviousHelp != "" {
		clauses = append(clauses, "had_previous_help = "+arg(f.HadPreviousHelp))
	}
	if f.Search != "" {
		pattern := arg("%" + f.Search + "%")
		clauses = append(clauses, fmt.Sprintf(
			"(full_name ILIKE %[1]s OR email ILIKE %[1]s OR description ILIKE %[1]s)", pattern))
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (s *PostgresStore) List(ctx context.Context, f Filter, page pagination.Params) ([]*models.HelpRequest, int, error) {
	where, args := buildFilter(f)

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM help_requests`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting help requests: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM help_requests%s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		helpRequestColumns, where, len(args)+1, len(args)+2)
	rows, err := s.pool.Query(ctx, query, append(args, page.Limit(), page.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing help requests: %w", err)
	}
	defer rows.Close()

	var out []*models.HelpRequest
	for rows.Next() {
		hr, err := scanHelpRequest(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, hr)
	}
	return out, total, rows.Err()
}

func (s *PostgresStore) Stats(ctx context.Context, recentSince time.Time) (*models.Stats, error) {
	stats := &models.Stats{}
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE created_at > $1),
			COUNT(*) FILTER (WHERE had_previous_help = 'yes'),
			COUNT(*) FILTER (WHERE had_previous_help = 'no')
		FROM help_requests`, recentSince).
		Scan(&stats.TotalCount, &stats.RecentCount, &stats.PreviousHelpYes, &stats.PreviousHelpNo)
	if err != nil {
		return nil, fmt.Errorf("counting help requests: %w", err)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT legal_issue_type, COUNT(*)
		FROM help_requests
		GROUP BY legal_issue_type
		ORDER BY COUNT(*) DESC, legal_issue_type ASC`)
	if err != nil {
		return nil, fmt.Errorf("grouping help requests: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c models.IssueTypeCount
		if err := rows.Scan(&c.LegalIssueType, &c.Count); err != nil {
			return nil, fmt.Errorf("scanning issue type count: %w", err)
		}
		stats.ByIssueType = append(stats.ByIssueType, c)
	}
	return stats, rows.Err()
}
