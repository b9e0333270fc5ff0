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

	"lawclinic/internal/publication/models"
	"lawclinic/pkg/pagination"
	"lawclinic/pkg/platform/sentinel"
)

// PostgresStore persists publications, categories, and comments in Postgres.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const publicationColumns = `id, title, slug, author_id, content, excerpt, featured_image,
	status, mins_read, meta_title, meta_description, keywords,
	views_count, is_featured, allow_comments, published_at, created_at, updated_at`

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func scanPublication(row pgx.Row) (*models.Publication, error) {
	var p models.Publication
	err := row.Scan(
		&p.ID, &p.Title, &p.Slug, &p.AuthorID, &p.Content, &p.Excerpt, &p.FeaturedImage,
		&p.Status, &p.MinsRead, &p.MetaTitle, &p.MetaDescription, &p.Keywords,
		&p.ViewsCount, &p.IsFeatured, &p.AllowComments, &p.PublishedAt, &p.CreatedAt, &p.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning publication: %w", err)
	}
	return &p, nil
}

func (s *PostgresStore) Create(ctx context.Context, p *models.Publication) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO publications (`+publicationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		p.ID, p.Title, p.Slug, p.AuthorID, p.Content, p.Excerpt, p.FeaturedImage,
		p.Status, p.MinsRead, p.MetaTitle, p.MetaDescription, p.Keywords,
		p.ViewsCount, p.IsFeatured, p.AllowComments, p.PublishedAt, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("inserting publication: %w", err)
	}

	if err := replaceCategories(ctx, tx, p.ID, p.Categories); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func replaceCategories(ctx context.Context, tx pgx.Tx, publicationID uuid.UUID, categories []models.Category) error {
	if _, err := tx.Exec(ctx,
		`DELETE FROM publication_categories WHERE publication_id = $1`, publicationID); err != nil {
		return fmt.Errorf("clearing publication categories: %w", err)
	}
	for _, c := range categories {
		if _, err := tx.Exec(ctx,
			`INSERT INTO publication_categories (publication_id, category_id) VALUES ($1, $2)`,
			publicationID, c.ID); err != nil {
			return fmt.Errorf("linking category: %w", err)
		}
	}
	return nil
}

func (s *PostgresStore) FindBySlug(ctx context.Context, slug string) (*models.Publication, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+publicationColumns+` FROM publications WHERE slug = $1`, slug)
	p, err := scanPublication(row)
	if err != nil {
		return nil, err
	}
	if err := s.loadCategories(ctx, []*models.Publication{p}); err != nil {
		return nil, err
	}
	return p, nil
}

// loadCategories fills Categories for a batch of publications in one query.
func (s *PostgresStore) loadCategories(ctx context.Context, pubs []*models.Publication) error {
	if len(pubs) == 0 {
		return nil
	}
	byID := make(map[uuid.UUID]*models.Publication, len(pubs))
	ids := make([]uuid.UUID, 0, len(pubs))
	for _, p := range pubs {
		p.Categories = []models.Category{}
		byID[p.ID] = p
		ids = append(ids, p.ID)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT pc.publication_id, c.id, c.name, c.slug, c.description, c.created_at, c.updated_at
		FROM publication_categories pc
		JOIN categories c ON c.id = pc.category_id
		WHERE pc.publication_id = ANY($1)
		ORDER BY c.name`, ids)
	if err != nil {
		return fmt.Errorf("loading categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var pubID uuid.UUID
		var c models.Category
		if err := rows.Scan(&pubID, &c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return fmt.Errorf("scanning category: %w", err)
		}
		if p, ok := byID[pubID]; ok {
			p.Categories = append(p.Categories, c)
		}
	}
	return rows.Err()
}

func (s *PostgresStore) Update(ctx context.Context, p *models.Publication) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE publications SET
			title = $2, slug = $3, content = $4, excerpt = $5, featured_image = $6,
			status = $7, mins_read = $8, meta_title = $9, meta_description = $10,
			keywords = $11, is_featured = $12, allow_comments = $13,
			published_at = $14, updated_at = $15
		WHERE id = $1`,
		p.ID, p.Title, p.Slug, p.Content, p.Excerpt, p.FeaturedImage,
		p.Status, p.MinsRead, p.MetaTitle, p.MetaDescription,
		p.Keywords, p.IsFeatured, p.AllowComments, p.PublishedAt, p.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("updating publication: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}

	if err := replaceCategories(ctx, tx, p.ID, p.Categories); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM publications WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting publication: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

// orderClause maps an OrderBy value to a safe ORDER BY expression. The
// field list is a fixed allowlist; anything else falls back to the default.
func orderClause(orderBy string) string {
	desc := strings.HasPrefix(orderBy, "-")
	field := strings.TrimPrefix(orderBy, "-")
	switch field {
	case "title", "views_count", "created_at", "published_at":
	default:
		return "published_at DESC NULLS LAST"
	}
	if desc {
		return field + " DESC NULLS LAST"
	}
	return field + " ASC NULLS LAST"
}

func buildFilter(f Filter) (string, []any) {
	var clauses []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if !f.AllStatuses {
		if f.ViewerID != nil {
			clauses = append(clauses, fmt.Sprintf("(status = 'published' OR author_id = %s)", arg(*f.ViewerID)))
		} else {
			clauses = append(clauses, "status = 'published'")
		}
	}
	if f.Status != "" {
		clauses = append(clauses, "status = "+arg(f.Status))
	}
	if f.AuthorID != nil {
		clauses = append(clauses, "author_id = "+arg(*f.AuthorID))
	}
	if f.Featured != nil {
		clauses = append(clauses, "is_featured = "+arg(*f.Featured))
	}
	if f.CategorySlug != "" {
		clauses = append(clauses, fmt.Sprintf(`id IN (
			SELECT pc.publication_id FROM publication_categories pc
			JOIN categories c ON c.id = pc.category_id WHERE c.slug = %s)`, arg(f.CategorySlug)))
	}
	if f.Search != "" {
		pattern := arg("%" + f.Search + "%")
		clauses = append(clauses, fmt.Sprintf(
			`(title ILIKE %[1]s OR content ILIKE %[1]s OR excerpt ILIKE %[1]s
			OR meta_title ILIKE %[1]s OR meta_description ILIKE %[1]s OR keywords ILIKE %[1]s)`, pattern))
	}

	if len(clauses) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func (s *PostgresStore) List(ctx context.Context, f Filter, page pagination.Params) ([]*models.Publication, int, error) {
	where, args := buildFilter(f)

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM publications`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting publications: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM publications%s ORDER BY %s LIMIT $%d OFFSET $%d`,
		publicationColumns, where, orderClause(f.OrderBy), len(args)+1, len(args)+2)
	rows, err := s.pool.Query(ctx, query, append(args, page.Limit(), page.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing publications: %w", err)
	}
	defer rows.Close()

	pubs, err := collectPublications(rows)
	if err != nil {
		return nil, 0, err
	}
	if err := s.loadCategories(ctx, pubs); err != nil {
		return nil, 0, err
	}
	return pubs, total, nil
}

func collectPublications(rows pgx.Rows) ([]*models.Publication, error) {
	var pubs []*models.Publication
	for rows.Next() {
		p, err := scanPublication(rows)
		if err != nil {
			return nil, err
		}
		pubs = append(pubs, p)
	}
	return pubs, rows.Err()
}

func (s *PostgresStore) ListFeatured(ctx context.Context, limit int) ([]*models.Publication, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+publicationColumns+` FROM publications
		WHERE is_featured AND status = 'published'
		ORDER BY published_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing featured publications: %w", err)
	}
	defer rows.Close()

	pubs, err := collectPublications(rows)
	if err != nil {
		return nil, err
	}
	return pubs, s.loadCategories(ctx, pubs)
}

func (s *PostgresStore) ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]*models.Publication, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+publicationColumns+` FROM publications
		WHERE author_id = $1 ORDER BY created_at DESC`, authorID)
	if err != nil {
		return nil, fmt.Errorf("listing publications by author: %w", err)
	}
	defer rows.Close()

	pubs, err := collectPublications(rows)
	if err != nil {
		return nil, err
	}
	return pubs, s.loadCategories(ctx, pubs)
}

func (s *PostgresStore) IncrementViews(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE publications SET views_count = views_count + 1 WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("incrementing views: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Stats(ctx context.Context) (*models.Stats, error) {
	stats := &models.Stats{}
	err := s.pool.QueryRow(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'published'),
		       COUNT(*) FILTER (WHERE status = 'draft'),
		       COUNT(*) FILTER (WHERE is_featured)
		FROM publications`).Scan(
		&stats.TotalCount, &stats.PublishedCount, &stats.DraftCount, &stats.FeaturedCount)
	if err != nil {
		return nil, fmt.Errorf("counting publications: %w", err)
	}

	if stats.MostViewed, err = s.topPublications(ctx, "views_count DESC"); err != nil {
		return nil, err
	}
	if stats.Recent, err = s.topPublications(ctx, "created_at DESC"); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx, `
		SELECT c.name, c.slug, COUNT(pc.publication_id)
		FROM categories c
		LEFT JOIN publication_categories pc ON pc.category_id = c.id
		GROUP BY c.id ORDER BY c.name`)
	if err != nil {
		return nil, fmt.Errorf("counting by category: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var cc models.CategoryCount
		if err := rows.Scan(&cc.Name, &cc.Slug, &cc.Count); err != nil {
			return nil, fmt.Errorf("scanning category count: %w", err)
		}
		stats.ByCategory = append(stats.ByCategory, cc)
	}
	return stats, rows.Err()
}

func (s *PostgresStore) topPublications(ctx context.Context, order string) ([]*models.Publication, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+publicationColumns+` FROM publications ORDER BY `+order+` LIMIT 5`)
	if err != nil {
		return nil, fmt.Errorf("listing top publications: %w", err)
	}
	defer rows.Close()
	return collectPublications(rows)
}

// Category operations.

func (s *PostgresStore) CreateCategory(ctx context.Context, c *models.Category) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO categories (id, name, slug, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.Name, c.Slug, c.Description, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("inserting category: %w", err)
	}
	return nil
}

func scanCategory(row pgx.Row) (*models.Category, error) {
	var c models.Category
	err := row.Scan(&c.ID, &c.Name, &c.Slug, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning category: %w", err)
	}
	return &c, nil
}

func (s *PostgresStore) FindCategoryBySlug(ctx context.Context, slug string) (*models.Category, error) {
	return scanCategory(s.pool.QueryRow(ctx, `
		SELECT id, name, slug, description, created_at, updated_at
		FROM categories WHERE slug = $1`, slug))
}

func (s *PostgresStore) FindCategoriesBySlugs(ctx context.Context, slugs []string) ([]models.Category, error) {
	out := make([]models.Category, 0, len(slugs))
	for _, slug := range slugs {
		c, err := s.FindCategoryBySlug(ctx, slug)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	return out, nil
}

func (s *PostgresStore) UpdateCategory(ctx context.Context, c *models.Category) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE categories SET name = $2, slug = $3, description = $4, updated_at = $5
		WHERE id = $1`,
		c.ID, c.Name, c.Slug, c.Description, c.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("updating category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) ListCategories(ctx context.Context) ([]*models.Category, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, name, slug, description, created_at, updated_at
		FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
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

// Comment operations.

func (s *PostgresStore) CreateComment(ctx context.Context, c *models.Comment) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO comments (id, publication_id, author_id, parent_id, content, is_approved, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		c.ID, c.PublicationID, c.AuthorID, c.ParentID, c.Content, c.IsApproved, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return fmt.Errorf("inserting comment: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindCommentByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	var c models.Comment
	err := s.pool.QueryRow(ctx, `
		SELECT id, publication_id, author_id, parent_id, content, is_approved, created_at, updated_at
		FROM comments WHERE id = $1`, id).Scan(
		&c.ID, &c.PublicationID, &c.AuthorID, &c.ParentID, &c.Content, &c.IsApproved, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning comment: %w", err)
	}
	return &c, nil
}

func (s *PostgresStore) ListCommentsByPublication(ctx context.Context, publicationID uuid.UUID, includeUnapproved bool) ([]*models.Comment, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, publication_id, author_id, parent_id, content, is_approved, created_at, updated_at
		FROM comments
		WHERE publication_id = $1 AND (is_approved OR $2)
		ORDER BY created_at`, publicationID, includeUnapproved)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	defer rows.Close()

	var out []*models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.PublicationID, &c.AuthorID, &c.ParentID, &c.Content,
			&c.IsApproved, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning comment: %w", err)
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}
