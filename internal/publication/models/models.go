// Package models holds the publication, category, and comment entities and
// their wire shapes. State transitions that Django-style ORMs hide in save()
// hooks are explicit pure functions here, applied before the store write.
package models

import (
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/google/uuid"

	dErrors "lawclinic/pkg/domain-errors"
	strutil "lawclinic/pkg/platform/strings"
)

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

func validStatus(s string) bool {
	return s == StatusDraft || s == StatusPublished || s == StatusArchived
}

// Category groups publications. Slug derives from the name when absent.
type Category struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Publication is an article written by a clinic member.
type Publication struct {
	ID            uuid.UUID  `json:"id"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	AuthorID      uuid.UUID  `json:"author_id"`
	Categories    []Category `json:"categories"`
	Content       string     `json:"content"`
	Excerpt       string     `json:"excerpt,omitempty"`
	FeaturedImage string     `json:"featured_image,omitempty"`
	Status        string     `json:"status"`
	PublishedAt   *time.Time `json:"published_at"`
	MinsRead      int        `json:"mins_read"`

	MetaTitle       string `json:"meta_title,omitempty"`
	MetaDescription string `json:"meta_description,omitempty"`
	Keywords        string `json:"keywords,omitempty"`

	ViewsCount    int  `json:"views_count"`
	IsFeatured    bool `json:"is_featured"`
	AllowComments bool `json:"allow_comments"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Comment is a reader response, optionally threaded under a parent comment
// on the same publication. Comments await approval unless written by the
// publication's author.
type Comment struct {
	ID            uuid.UUID  `json:"id"`
	PublicationID uuid.UUID  `json:"publication_id"`
	AuthorID      uuid.UUID  `json:"author_id"`
	ParentID      *uuid.UUID `json:"parent_id"`
	Content       string     `json:"content"`
	IsApproved    bool       `json:"is_approved"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// EnsureSlug fills an empty slug from the title. Explicit slugs pass
// through untouched.
func (p *Publication) EnsureSlug() {
	if p.Slug == "" {
		p.Slug = strutil.Slugify(p.Title)
	}
}

// StampPublishedAt records the first transition into the published state.
// Republishing keeps the original timestamp.
func (p *Publication) StampPublishedAt(now time.Time) {
	if p.Status == StatusPublished && p.PublishedAt == nil {
		p.PublishedAt = &now
	}
}

// EstimateMinsRead derives a reading time from the content length when the
// author did not set one. 200 words per minute, minimum one minute.
func (p *Publication) EstimateMinsRead() {
	if p.MinsRead > 0 || p.Content == "" {
		return
	}
	words := len(strings.Fields(p.Content))
	mins := (words + 199) / 200
	if mins < 1 {
		mins = 1
	}
	p.MinsRead = mins
}

// EnsureSlug fills an empty category slug from the name.
func (c *Category) EnsureSlug() {
	if c.Slug == "" {
		c.Slug = strutil.Slugify(c.Name)
	}
}

// CreateRequest is the payload for creating or replacing a publication.
type CreateRequest struct {
	Title           string   `json:"title"`
	Slug            string   `json:"slug"`
	Content         string   `json:"content"`
	Excerpt         string   `json:"excerpt"`
	FeaturedImage   string   `json:"featured_image"`
	Status          string   `json:"status"`
	MinsRead        int      `json:"mins_read"`
	MetaTitle       string   `json:"meta_title"`
	MetaDescription string   `json:"meta_description"`
	Keywords        string   `json:"keywords"`
	IsFeatured      bool     `json:"is_featured"`
	AllowComments   *bool    `json:"allow_comments"`
	CategorySlugs   []string `json:"categories"`
}

func (r *CreateRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Slug = strings.TrimSpace(r.Slug)
	if r.Status == "" {
		r.Status = StatusDraft
	}
	r.CategorySlugs = strutil.DedupeAndTrimLower(r.CategorySlugs)
}

func (r *CreateRequest) Validate() error {
	if !govalidator.StringLength(r.Title, "1", "255") {
		return dErrors.New(dErrors.CodeValidation, "title is required and must be at most 255 characters")
	}
	if strings.TrimSpace(r.Content) == "" {
		return dErrors.New(dErrors.CodeValidation, "content is required")
	}
	if !validStatus(r.Status) {
		return dErrors.New(dErrors.CodeValidation, "status must be draft, published, or archived")
	}
	if r.FeaturedImage != "" && !govalidator.IsURL(r.FeaturedImage) {
		return dErrors.New(dErrors.CodeValidation, "featured_image must be a URL")
	}
	if r.MinsRead < 0 {
		return dErrors.New(dErrors.CodeValidation, "mins_read cannot be negative")
	}
	return nil
}

// UpdateRequest is a partial update; nil fields are left untouched.
type UpdateRequest struct {
	Title           *string   `json:"title"`
	Content         *string   `json:"content"`
	Excerpt         *string   `json:"excerpt"`
	FeaturedImage   *string   `json:"featured_image"`
	Status          *string   `json:"status"`
	MinsRead        *int      `json:"mins_read"`
	MetaTitle       *string   `json:"meta_title"`
	MetaDescription *string   `json:"meta_description"`
	Keywords        *string   `json:"keywords"`
	IsFeatured      *bool     `json:"is_featured"`
	AllowComments   *bool     `json:"allow_comments"`
	CategorySlugs   *[]string `json:"categories"`
}

func (r *UpdateRequest) Validate() error {
	if r.Title != nil && !govalidator.StringLength(*r.Title, "1", "255") {
		return dErrors.New(dErrors.CodeValidation, "title must be at most 255 characters")
	}
	if r.Status != nil && !validStatus(*r.Status) {
		return dErrors.New(dErrors.CodeValidation, "status must be draft, published, or archived")
	}
	if r.FeaturedImage != nil && *r.FeaturedImage != "" && !govalidator.IsURL(*r.FeaturedImage) {
		return dErrors.New(dErrors.CodeValidation, "featured_image must be a URL")
	}
	return nil
}

// CategoryRequest creates or updates a category.
type CategoryRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
}

func (r *CategoryRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Slug = strings.TrimSpace(strings.ToLower(r.Slug))
}

func (r *CategoryRequest) Validate() error {
	if !govalidator.StringLength(r.Name, "1", "100") {
		return dErrors.New(dErrors.CodeValidation, "name is required and must be at most 100 characters")
	}
	return nil
}

// CommentRequest adds a comment to a publication.
type CommentRequest struct {
	Content  string     `json:"content"`
	ParentID *uuid.UUID `json:"parent_id"`
}

func (r *CommentRequest) Validate() error {
	if strings.TrimSpace(r.Content) == "" {
		return dErrors.New(dErrors.CodeValidation, "comment content is required")
	}
	return nil
}

// CategoryCount pairs a category with how many publications carry it.
type CategoryCount struct {
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int    `json:"count"`
}

// Stats is the staff dashboard summary.
type Stats struct {
	TotalCount     int             `json:"total_count"`
	PublishedCount int             `json:"published_count"`
	DraftCount     int             `json:"draft_count"`
	FeaturedCount  int             `json:"featured_count"`
	MostViewed     []*Publication  `json:"most_viewed"`
	Recent         []*Publication  `json:"recent"`
	ByCategory     []CategoryCount `json:"by_category"`
}
