// Package models holds the public site content entities: app data,
// galleries, sponsors, and testimonials.
package models

import (
	"strings"
	"time"

	"github.com/asaskevich/govalidator"
	"github.com/google/uuid"

	dErrors "lawclinic/pkg/domain-errors"
)

// Departments a gallery can belong to.
const (
	DepartmentClinical   = "clinical"
	DepartmentResearch   = "research"
	DepartmentLitigation = "litigation"
	DepartmentOther      = "other"
)

func validDepartment(d string) bool {
	switch d {
	case DepartmentClinical, DepartmentResearch, DepartmentLitigation, DepartmentOther:
		return true
	}
	return false
}

// Sponsor types.
const (
	SponsorPerson       = "person"
	SponsorOrganization = "organization"
)

// AppData is the clinic's self-description shown on the public site.
// Objectives is a comma-separated list.
type AppData struct {
	ID               uuid.UUID `json:"id"`
	Name             string    `json:"name"`
	LogoURL          string    `json:"logo_url,omitempty"`
	MissionStatement string    `json:"mission_statement"`
	VisionStatement  string    `json:"vision_statement"`
	Objectives       string    `json:"objectives,omitempty"`
	History          string    `json:"history,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Gallery groups images by department and year. Ordering sorts galleries
// on the site; nil means unordered.
type Gallery struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Department  string    `json:"department"`
	IsPrevious  bool      `json:"is_previous"`
	Year        *int      `json:"year"`
	Ordering    *int      `json:"ordering"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// GalleryImage belongs to a gallery and carries optional social links.
type GalleryImage struct {
	ID          uuid.UUID `json:"id"`
	GalleryID   uuid.UUID `json:"gallery_id"`
	Title       string    `json:"title,omitempty"`
	Description string    `json:"description,omitempty"`
	Image       string    `json:"image"`
	Instagram   string    `json:"instagram,omitempty"`
	XHandle     string    `json:"x_handle,omitempty"`
	Facebook    string    `json:"facebook,omitempty"`
	Ordering    *int      `json:"ordering"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Sponsor is a person or organization backing the clinic.
type Sponsor struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Image       string    `json:"image,omitempty"`
	URL         string    `json:"url,omitempty"`
	Type        string    `json:"type"`
	Ordering    *int      `json:"ordering"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Testimonial is a quote from a past client or partner.
type Testimonial struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Occupation string    `json:"occupation,omitempty"`
	Quote      string    `json:"quote,omitempty"`
	Image      string    `json:"image,omitempty"`
	Category   string    `json:"category,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func requireURL(field, value string) error {
	if value != "" && !govalidator.IsURL(value) {
		return dErrors.Newf(dErrors.CodeValidation, "%s must be a URL", field)
	}
	return nil
}

// AppDataRequest creates or updates the clinic's app data.
type AppDataRequest struct {
	Name             string `json:"name"`
	LogoURL          string `json:"logo_url"`
	MissionStatement string `json:"mission_statement"`
	VisionStatement  string `json:"vision_statement"`
	Objectives       string `json:"objectives"`
	History          string `json:"history"`
}

func (r *AppDataRequest) Normalize() { r.Name = strings.TrimSpace(r.Name) }

func (r *AppDataRequest) Validate() error {
	if !govalidator.StringLength(r.Name, "1", "255") {
		return dErrors.New(dErrors.CodeValidation, "name is required and must be at most 255 characters")
	}
	return requireURL("logo_url", r.LogoURL)
}

// GalleryRequest creates or updates a gallery.
type GalleryRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Department  string `json:"department"`
	IsPrevious  bool   `json:"is_previous"`
	Year        *int   `json:"year"`
	Ordering    *int   `json:"ordering"`
}

func (r *GalleryRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	if r.Department == "" {
		r.Department = DepartmentOther
	}
}

func (r *GalleryRequest) Validate() error {
	if !govalidator.StringLength(r.Title, "1", "500") {
		return dErrors.New(dErrors.CodeValidation, "title is required and must be at most 500 characters")
	}
	if !validDepartment(r.Department) {
		return dErrors.New(dErrors.CodeValidation, "invalid department")
	}
	if r.Year != nil && *r.Year < 0 {
		return dErrors.New(dErrors.CodeValidation, "year cannot be negative")
	}
	return nil
}

// GalleryImageRequest creates or updates a gallery image.
type GalleryImageRequest struct {
	GalleryID   uuid.UUID `json:"gallery_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Image       string    `json:"image"`
	Instagram   string    `json:"instagram"`
	XHandle     string    `json:"x_handle"`
	Facebook    string    `json:"facebook"`
	Ordering    *int      `json:"ordering"`
}

func (r *GalleryImageRequest) Validate() error {
	if r.GalleryID == uuid.Nil {
		return dErrors.New(dErrors.CodeValidation, "gallery_id is required")
	}
	if strings.TrimSpace(r.Image) == "" {
		return dErrors.New(dErrors.CodeValidation, "image is required")
	}
	for field, value := range map[string]string{
		"image":     r.Image,
		"instagram": r.Instagram,
		"x_handle":  r.XHandle,
		"facebook":  r.Facebook,
	} {
		if err := requireURL(field, value); err != nil {
			return err
		}
	}
	return nil
}

// SponsorRequest creates or updates a sponsor.
type SponsorRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
	URL         string `json:"url"`
	Type        string `json:"type"`
	Ordering    *int   `json:"ordering"`
}

func (r *SponsorRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
	if r.Type == "" {
		r.Type = SponsorPerson
	}
}

func (r *SponsorRequest) Validate() error {
	if !govalidator.StringLength(r.Name, "1", "500") {
		return dErrors.New(dErrors.CodeValidation, "name is required and must be at most 500 characters")
	}
	if r.Type != SponsorPerson && r.Type != SponsorOrganization {
		return dErrors.New(dErrors.CodeValidation, "type must be person or organization")
	}
	if err := requireURL("image", r.Image); err != nil {
		return err
	}
	return requireURL("url", r.URL)
}

// TestimonialRequest creates or updates a testimonial.
type TestimonialRequest struct {
	Name       string `json:"name"`
	Occupation string `json:"occupation"`
	Quote      string `json:"quote"`
	Image      string `json:"image"`
	Category   string `json:"category"`
}

func (r *TestimonialRequest) Normalize() { r.Name = strings.TrimSpace(r.Name) }

func (r *TestimonialRequest) Validate() error {
	if !govalidator.StringLength(r.Name, "1", "500") {
		return dErrors.New(dErrors.CodeValidation, "name is required and must be at most 500 characters")
	}
	return requireURL("image", r.Image)
}
