package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"lawclinic/internal/sitesettings/models"
	"lawclinic/pkg/pagination"
	"lawclinic/pkg/platform/sentinel"
)

// PostgresStore persists site content in Postgres.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func notFoundOnZero(tag pgconn.CommandTag, err error, op string) error {
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// App data.

const appDataColumns = `id, name, logo_url, mission_statement, vision_statement, objectives, history, created_at, updated_at`

func scanAppData(row pgx.Row) (*models.AppData, error) {
	var d models.AppData
	err := row.Scan(&d.ID, &d.Name, &d.LogoURL, &d.MissionStatement, &d.VisionStatement,
		&d.Objectives, &d.History, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning app data: %w", err)
	}
	return &d, nil
}

func (s *PostgresStore) CreateAppData(ctx context.Context, d *models.AppData) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO app_data (`+appDataColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		d.ID, d.Name, d.LogoURL, d.MissionStatement, d.VisionStatement,
		d.Objectives, d.History, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("inserting app data: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindAppDataByID(ctx context.Context, id uuid.UUID) (*models.AppData, error) {
	return scanAppData(s.pool.QueryRow(ctx,
		`SELECT `+appDataColumns+` FROM app_data WHERE id = $1`, id))
}

func (s *PostgresStore) UpdateAppData(ctx context.Context, d *models.AppData) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE app_data SET
			name = $2, logo_url = $3, mission_statement = $4, vision_statement = $5,
			objectives = $6, history = $7, updated_at = $8
		WHERE id = $1`,
		d.ID, d.Name, d.LogoURL, d.MissionStatement, d.VisionStatement,
		d.Objectives, d.History, d.UpdatedAt)
	if isUniqueViolation(err) {
		return sentinel.ErrConflict
	}
	return notFoundOnZero(tag, err, "updating app data")
}

func (s *PostgresStore) DeleteAppData(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM app_data WHERE id = $1`, id)
	return notFoundOnZero(tag, err, "deleting app data")
}

func (s *PostgresStore) ListAppData(ctx context.Context) ([]*models.AppData, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+appDataColumns+` FROM app_data ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing app data: %w", err)
	}
	defer rows.Close()

	var out []*models.AppData
	for rows.Next() {
		d, err := scanAppData(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Galleries.

const galleryColumns = `id, title, description, department, is_previous, year, ordering, created_at, updated_at`

func scanGallery(row pgx.Row) (*models.Gallery, error) {
	var g models.Gallery
	err := row.Scan(&g.ID, &g.Title, &g.Description, &g.Department, &g.IsPrevious,
		&g.Year, &g.Ordering, &g.CreatedAt, &g.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning gallery: %w", err)
	}
	return &g, nil
}

func (s *PostgresStore) CreateGallery(ctx context.Context, g *models.Gallery) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO galleries (`+galleryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		g.ID, g.Title, g.Description, g.Department, g.IsPrevious,
		g.Year, g.Ordering, g.CreatedAt, g.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting gallery: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindGalleryByID(ctx context.Context, id uuid.UUID) (*models.Gallery, error) {
	return scanGallery(s.pool.QueryRow(ctx,
		`SELECT `+galleryColumns+` FROM galleries WHERE id = $1`, id))
}

func (s *PostgresStore) UpdateGallery(ctx context.Context, g *models.Gallery) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE galleries SET
			title = $2, description = $3, department = $4, is_previous = $5,
			year = $6, ordering = $7, updated_at = $8
		WHERE id = $1`,
		g.ID, g.Title, g.Description, g.Department, g.IsPrevious,
		g.Year, g.Ordering, g.UpdatedAt)
	return notFoundOnZero(tag, err, "updating gallery")
}

func (s *PostgresStore) DeleteGallery(ctx context.Context, id uuid.UUID) error {
	// gallery_images cascades on delete.
	tag, err := s.pool.Exec(ctx, `DELETE FROM galleries WHERE id = $1`, id)
	return notFoundOnZero(tag, err, "deleting gallery")
}

func galleryOrderClause(orderBy string) string {
	desc := strings.HasPrefix(orderBy, "-")
	field := strings.TrimPrefix(orderBy, "-")
	switch field {
	case "title", "created_at", "year", "ordering":
	default:
		return "ordering ASC NULLS LAST, title ASC"
	}
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	return fmt.Sprintf("%s %s NULLS LAST, title ASC", field, dir)
}

func buildGalleryFilter(f GalleryFilter) (string, []any) {
	var clauses []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Department != "" {
		clauses = append(clauses, "department = "+arg(f.Department))
	}
	if f.IsPrevious != nil {
		clauses = append(clauses, "is_previous = "+arg(*f.IsPrevious))
	}
	if f.Year != nil {
		clauses = append(clauses, "year = "+arg(*f.Year))
	}
	if f.Search != "" {
		pattern := arg("%" + f.Search + "%")
		clauses = append(clauses, fmt.Sprintf("(title ILIKE %[1]s OR description ILIKE %[1]s)", pattern))
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (s *PostgresStore) ListGalleries(ctx context.Context, f GalleryFilter, page pagination.Params) ([]*models.Gallery, int, error) {
	where, args := buildGalleryFilter(f)

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM galleries`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting galleries: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM galleries%s ORDER BY %s LIMIT $%d OFFSET $%d`,
		galleryColumns, where, galleryOrderClause(f.OrderBy), len(args)+1, len(args)+2)
	rows, err := s.pool.Query(ctx, query, append(args, page.Limit(), page.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing galleries: %w", err)
	}
	defer rows.Close()

	var out []*models.Gallery
	for rows.Next() {
		g, err := scanGallery(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, g)
	}
	return out, total, rows.Err()
}

// Gallery images.

const galleryImageColumns = `id, gallery_id, title, description, image, instagram, x_handle, facebook, ordering, created_at, updated_at`

func scanGalleryImage(row pgx.Row) (*models.GalleryImage, error) {
	var img models.GalleryImage
	err := row.Scan(&img.ID, &img.GalleryID, &img.Title, &img.Description, &img.Image,
		&img.Instagram, &img.XHandle, &img.Facebook, &img.Ordering, &img.CreatedAt, &img.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning gallery image: %w", err)
	}
	return &img, nil
}

func (s *PostgresStore) CreateGalleryImage(ctx context.Context, img *models.GalleryImage) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO gallery_images (`+galleryImageColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		img.ID, img.GalleryID, img.Title, img.Description, img.Image,
		img.Instagram, img.XHandle, img.Facebook, img.Ordering, img.CreatedAt, img.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return sentinel.ErrNotFound
		}
		return fmt.Errorf("inserting gallery image: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindGalleryImageByID(ctx context.Context, id uuid.UUID) (*models.GalleryImage, error) {
	return scanGalleryImage(s.pool.QueryRow(ctx,
		`SELECT `+galleryImageColumns+` FROM gallery_images WHERE id = $1`, id))
}

func (s *PostgresStore) UpdateGalleryImage(ctx context.Context, img *models.GalleryImage) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE gallery_images SET
			title = $2, description = $3, image = $4, instagram = $5,
			x_handle = $6, facebook = $7, ordering = $8, updated_at = $9
		WHERE id = $1`,
		img.ID, img.Title, img.Description, img.Image, img.Instagram,
		img.XHandle, img.Facebook, img.Ordering, img.UpdatedAt)
	return notFoundOnZero(tag, err, "updating gallery image")
}

func (s *PostgresStore) DeleteGalleryImage(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM gallery_images WHERE id = $1`, id)
	return notFoundOnZero(tag, err, "deleting gallery image")
}

func (s *PostgresStore) ListGalleryImages(ctx context.Context, galleryID *uuid.UUID, page pagination.Params) ([]*models.GalleryImage, int, error) {
	where := ""
	var args []any
	if galleryID != nil {
		where = " WHERE gallery_id = $1"
		args = append(args, *galleryID)
	}

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM gallery_images`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting gallery images: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM gallery_images%s
		ORDER BY ordering ASC NULLS LAST, created_at ASC LIMIT $%d OFFSET $%d`,
		galleryImageColumns, where, len(args)+1, len(args)+2)
	rows, err := s.pool.Query(ctx, query, append(args, page.Limit(), page.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing gallery images: %w", err)
	}
	defer rows.Close()

	var out []*models.GalleryImage
	for rows.Next() {
		img, err := scanGalleryImage(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, img)
	}
	return out, total, rows.Err()
}

// Sponsors.

const sponsorColumns = `id, name, description, image, url, type, ordering, created_at, updated_at`

func scanSponsor(row pgx.Row) (*models.Sponsor, error) {
	var sp models.Sponsor
	err := row.Scan(&sp.ID, &sp.Name, &sp.Description, &sp.Image, &sp.URL,
		&sp.Type, &sp.Ordering, &sp.CreatedAt, &sp.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning sponsor: %w", err)
	}
	return &sp, nil
}

func (s *PostgresStore) CreateSponsor(ctx context.Context, sp *models.Sponsor) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO sponsors (`+sponsorColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		sp.ID, sp.Name, sp.Description, sp.Image, sp.URL,
		sp.Type, sp.Ordering, sp.CreatedAt, sp.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting sponsor: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindSponsorByID(ctx context.Context, id uuid.UUID) (*models.Sponsor, error) {
	return scanSponsor(s.pool.QueryRow(ctx,
		`SELECT `+sponsorColumns+` FROM sponsors WHERE id = $1`, id))
}

func (s *PostgresStore) UpdateSponsor(ctx context.Context, sp *models.Sponsor) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE sponsors SET
			name = $2, description = $3, image = $4, url = $5,
			type = $6, ordering = $7, updated_at = $8
		WHERE id = $1`,
		sp.ID, sp.Name, sp.Description, sp.Image, sp.URL,
		sp.Type, sp.Ordering, sp.UpdatedAt)
	return notFoundOnZero(tag, err, "updating sponsor")
}

func (s *PostgresStore) DeleteSponsor(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM sponsors WHERE id = $1`, id)
	return notFoundOnZero(tag, err, "deleting sponsor")
}

func (s *PostgresStore) ListSponsors(ctx context.Context, f SponsorFilter, page pagination.Params) ([]*models.Sponsor, int, error) {
	var clauses []string
	var args []any
	if f.Type != "" {
		args = append(args, f.Type)
		clauses = append(clauses, fmt.Sprintf("type = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		clauses = append(clauses, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	where := ""
	if len(clauses) > 0 {
		where = " WHERE " + strings.Join(clauses, " AND ")
	}

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM sponsors`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting sponsors: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM sponsors%s
		ORDER BY ordering ASC NULLS LAST, name ASC LIMIT $%d OFFSET $%d`,
		sponsorColumns, where, len(args)+1, len(args)+2)
	rows, err := s.pool.Query(ctx, query, append(args, page.Limit(), page.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing sponsors: %w", err)
	}
	defer rows.Close()

	var out []*models.Sponsor
	for rows.Next() {
		sp, err := scanSponsor(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, sp)
	}
	return out, total, rows.Err()
}

// Testimonials.

const testimonialColumns = `id, name, occupation, quote, image, category, created_at, updated_at`

func scanTestimonial(row pgx.Row) (*models.Testimonial, error) {
	var tm models.Testimonial
	err := row.Scan(&tm.ID, &tm.Name, &tm.Occupation, &tm.Quote, &tm.Image,
		&tm.Category, &tm.CreatedAt, &tm.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning testimonial: %w", err)
	}
	return &tm, nil
}

func (s *PostgresStore) CreateTestimonial(ctx context.Context, tm *models.Testimonial) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO testimonials (`+testimonialColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		tm.ID, tm.Name, tm.Occupation, tm.Quote, tm.Image,
		tm.Category, tm.CreatedAt, tm.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting testimonial: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindTestimonialByID(ctx context.Context, id uuid.UUID) (*models.Testimonial, error) {
	return scanTestimonial(s.pool.QueryRow(ctx,
		`SELECT `+testimonialColumns+` FROM testimonials WHERE id = $1`, id))
}

func (s *PostgresStore) UpdateTestimonial(ctx context.Context, tm *models.Testimonial) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE testimonials SET
			name = $2, occupation = $3, quote = $4, image = $5, category = $6, updated_at = $7
		WHERE id = $1`,
		tm.ID, tm.Name, tm.Occupation, tm.Quote, tm.Image, tm.Category, tm.UpdatedAt)
	return notFoundOnZero(tag, err, "updating testimonial")
}

func (s *PostgresStore) DeleteTestimonial(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM testimonials WHERE id = $1`, id)
	return notFoundOnZero(tag, err, "deleting testimonial")
}

func (s *PostgresStore) ListTestimonials(ctx context.Context, search string, page pagination.Params) ([]*models.Testimonial, int, error) {
	where := ""
	var args []any
	if search != "" {
		args = append(args, "%"+search+"%")
		where = " WHERE (name ILIKE $1 OR occupation ILIKE $1 OR quote ILIKE $1)"
	}

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM testimonials`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting testimonials: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM testimonials%s ORDER BY name LIMIT $%d OFFSET $%d`,
		testimonialColumns, where, len(args)+1, len(args)+2)
	rows, err := s.pool.Query(ctx, query, append(args, page.Limit(), page.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing testimonials: %w", err)
	}
	defer rows.Close()

	var out []*models.Testimonial
	for rows.Next() {
		tm, err := scanTestimonial(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, tm)
	}
	return out, total, rows.Err()
}
