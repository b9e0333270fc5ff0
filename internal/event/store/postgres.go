package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"lawclinic/internal/event/models"
	"lawclinic/pkg/pagination"
	"lawclinic/pkg/platform/sentinel"
)

// PostgresStore persists events, categories, and registrations in Postgres.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const eventColumns = `id, title, slug, description, short_description, start_date, end_date,
	location, virtual_link, category_id, image, organizer_id,
	max_participants, registration_required, registration_deadline,
	status, featured, created_at, updated_at`

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func scanEvent(row pgx.Row) (*models.Event, error) {
	var e models.Event
	err := row.Scan(
		&e.ID, &e.Title, &e.Slug, &e.Description, &e.ShortDescription, &e.StartDate, &e.EndDate,
		&e.Location, &e.VirtualLink, &e.CategoryID, &e.Image, &e.OrganizerID,
		&e.MaxParticipants, &e.RegistrationRequired, &e.RegistrationDeadline,
		&e.Status, &e.Featured, &e.CreatedAt, &e.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning event: %w", err)
	}
	return &e, nil
}

func (s *PostgresStore) Create(ctx context.Context, e *models.Event) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO events (`+eventColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`,
		e.ID, e.Title, e.Slug, e.Description, e.ShortDescription, e.StartDate, e.EndDate,
		e.Location, e.VirtualLink, e.CategoryID, e.Image, e.OrganizerID,
		e.MaxParticipants, e.RegistrationRequired, e.RegistrationDeadline,
		e.Status, e.Featured, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("inserting event: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindBySlug(ctx context.Context, slug string) (*models.Event, error) {
	return scanEvent(s.pool.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE slug = $1`, slug))
}

func (s *PostgresStore) SlugExists(ctx context.Context, slug string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM events WHERE slug = $1)`, slug).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("checking slug: %w", err)
	}
	return exists, nil
}

func (s *PostgresStore) Update(ctx context.Context, e *models.Event) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE events SET
			title = $2, slug = $3, description = $4, short_description = $5,
			start_date = $6, end_date = $7, location = $8, virtual_link = $9,
			category_id = $10, image = $11, max_participants = $12,
			registration_required = $13, registration_deadline = $14,
			status = $15, featured = $16, updated_at = $17
		WHERE id = $1`,
		e.ID, e.Title, e.Slug, e.Description, e.ShortDescription,
		e.StartDate, e.EndDate, e.Location, e.VirtualLink,
		e.CategoryID, e.Image, e.MaxParticipants,
		e.RegistrationRequired, e.RegistrationDeadline,
		e.Status, e.Featured, e.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("updating event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func orderClause(orderBy string) string {
	desc := strings.HasPrefix(orderBy, "-")
	field := strings.TrimPrefix(orderBy, "-")
	switch field {
	case "title", "created_at", "start_date":
	default:
		return "start_date DESC"
	}
	if desc {
		return field + " DESC"
	}
	return field + " ASC"
}

func buildFilter(f Filter) (string, []any) {
	var clauses []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	now := f.Now
	if now.IsZero() {
		now = time.Now()
	}
	switch f.Period {
	case PeriodUpcoming:
		clauses = append(clauses, "start_date > "+arg(now))
	case PeriodPast:
		clauses = append(clauses, "end_date < "+arg(now))
	case PeriodToday:
		dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		dayEnd := dayStart.Add(24 * time.Hour)
		clauses = append(clauses, fmt.Sprintf(
			"((start_date >= %[1]s AND start_date < %[2]s) OR (start_date < %[1]s AND end_date >= %[1]s))",
			arg(dayStart), arg(dayEnd)))
	}

	if f.CategoryID != nil {
		clauses = append(clauses, "category_id = "+arg(*f.CategoryID))
	}
	if f.Status != "" {
		clauses = append(clauses, "status = "+arg(f.Status))
	}
	if f.Featured != nil {
		clauses = append(clauses, "featured = "+arg(*f.Featured))
	}
	if f.Search != "" {
		pattern := arg("%" + f.Search + "%")
		clauses = append(clauses, fmt.Sprintf(
			"(title ILIKE %[1]s OR description ILIKE %[1]s OR location ILIKE %[1]s)", pattern))
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (s *PostgresStore) List(ctx context.Context, f Filter, page pagination.Params) ([]*models.Event, int, error) {
	where, args := buildFilter(f)

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM events`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting events: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM events%s ORDER BY %s LIMIT $%d OFFSET $%d`,
		eventColumns, where, orderClause(f.OrderBy), len(args)+1, len(args)+2)
	rows, err := s.pool.Query(ctx, query, append(args, page.Limit(), page.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing events: %w", err)
	}
	defer rows.Close()

	var events []*models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		events = append(events, e)
	}
	return events, total, rows.Err()
}

// Category operations.

func (s *PostgresStore) CreateCategory(ctx context.Context, c *models.Category) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO event_categories (id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)`,
		c.ID, c.Name, c.Description, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting event category: %w", err)
	}
	return nil
}

func scanCategory(row pgx.Row) (*models.Category, error) {
	var c models.Category
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning event category: %w", err)
	}
	return &c, nil
}

func (s *PostgresStore) FindCategoryByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return scanCategory(s.pool.QueryRow(ctx, `
		SELECT id, name, description, created_at, updated_at
		FROM event_categories WHERE id = $1`, id))
}

func (s *PostgresStore) UpdateCategory(ctx context.Context, c *models.Category) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE event_categories SET name = $2, description = $3, updated_at = $4
		WHERE id = $1`,
		c.ID, c.Name, c.Description, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("updating event category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM event_categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting event category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListCategories(ctx context.Context) ([]*models.Category, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, description, created_at, updated_at
		FROM event_categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing event categories: %w", err)
	}
	defer rows.Close()

	var out []*models.Category
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Registration operations.

// CreateRegistration locks the event row so the capacity check and the
// insert see a consistent registration count under concurrent signups.
func (s *PostgresStore) CreateRegistration(ctx context.Context, r *models.Registration, maxParticipants int) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var eventID uuid.UUID
	err = tx.QueryRow(ctx,
		`SELECT id FROM events WHERE id = $1 FOR UPDATE`, r.EventID).Scan(&eventID)
	if errors.Is(err, pgx.ErrNoRows) {
		return sentinel.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("locking event: %w", err)
	}

	if maxParticipants > 0 {
		var count int
		if err := tx.QueryRow(ctx,
			`SELECT COUNT(*) FROM event_registrations WHERE event_id = $1`, r.EventID).Scan(&count); err != nil {
			return fmt.Errorf("counting registrations: %w", err)
		}
		if count >= maxParticipants {
			return sentinel.ErrInvalidState
		}
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO event_registrations (id, event_id, user_id, attended, notes, registered_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		r.ID, r.EventID, r.UserID, r.Attended, r.Notes, r.RegisteredAt)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("inserting registration: %w", err)
	}
	return tx.Commit(ctx)
}

func scanRegistration(row pgx.Row) (*models.Registration, error) {
	var r models.Registration
	err := row.Scan(&r.ID, &r.EventID, &r.UserID, &r.Attended, &r.Notes, &r.RegisteredAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning registration: %w", err)
	}
	return &r, nil
}

const registrationColumns = `id, event_id, user_id, attended, notes, registered_at`

func (s *PostgresStore) FindRegistration(ctx context.Context, eventID, userID uuid.UUID) (*models.Registration, error) {
	return scanRegistration(s.pool.QueryRow(ctx, `
		SELECT `+registrationColumns+` FROM event_registrations
		WHERE event_id = $1 AND user_id = $2`, eventID, userID))
}

func (s *PostgresStore) FindRegistrationByID(ctx context.Context, id uuid.UUID) (*models.Registration, error) {
	return scanRegistration(s.pool.QueryRow(ctx, `
		SELECT `+registrationColumns+` FROM event_registrations WHERE id = $1`, id))
}

func (s *PostgresStore) DeleteRegistration(ctx context.Context, eventID, userID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM event_registrations WHERE event_id = $1 AND user_id = $2`, eventID, userID)
	if err != nil {
		return fmt.Errorf("deleting registration: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) UpdateRegistration(ctx context.Context, r *models.Registration) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE event_registrations SET attended = $2, notes = $3 WHERE id = $1`,
		r.ID, r.Attended, r.Notes)
	if err != nil {
		return fmt.Errorf("updating registration: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) CountRegistrations(ctx context.Context, eventID uuid.UUID) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM event_registrations WHERE event_id = $1`, eventID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting registrations: %w", err)
	}
	return count, nil
}

func (s *PostgresStore) ListRegistrationsByUser(ctx context.Context, userID uuid.UUID) ([]*models.Registration, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+registrationColumns+` FROM event_registrations
		WHERE user_id = $1 ORDER BY registered_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing registrations: %w", err)
	}
	defer rows.Close()

	var out []*models.Registration
	for rows.Next() {
		r, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
