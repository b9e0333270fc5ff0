// Package pagination computes 1-indexed page windows and the next/previous
// navigation links every list endpoint exposes through the response envelope.
package pagination

import (
	"net/http"
	"net/url"
	"strconv"

	dErrors "lawclinic/pkg/domain-errors"
)

const (
	// DefaultPageSize applies when the client does not ask for one.
	DefaultPageSize = 10
	// MaxPageSize caps what a client may request in a single page.
	MaxPageSize = 100
)

// Params is a validated page window. Zero value is not valid; build through
// New or FromRequest.
type Params struct {
	Page     int
	PageSize int
}

// New validates raw page values. Pages are 1-indexed; page zero, negative
// pages, and page sizes below 1 are validation errors.
func New(page, pageSize int) (Params, error) {
	if page < 1 {
		return Params{}, dErrors.New(dErrors.CodeValidation, "page must be 1 or greater")
	}
	if pageSize < 1 {
		return Params{}, dErrors.New(dErrors.CodeValidation, "page_size must be 1 or greater")
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return Params{Page: page, PageSize: pageSize}, nil
}

// FromRequest reads page and page_size query parameters, applying defaults
// when absent. Non-numeric values are validation errors.
func FromRequest(r *http.Request) (Params, error) {
	page := 1
	size := DefaultPageSize

	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Params{}, dErrors.New(dErrors.CodeValidation, "page must be an integer")
		}
		page = n
	}
	if raw := r.URL.Query().Get("page_size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return Params{}, dErrors.New(dErrors.CodeValidation, "page_size must be an integer")
		}
		size = n
	}

	return New(page, size)
}

// Offset is the number of records to skip for this window.
func (p Params) Offset() int { return (p.Page - 1) * p.PageSize }

// Limit is the maximum number of records in this window.
func (p Params) Limit() int { return p.PageSize }

// Meta is the pagination block carried by the response envelope.
type Meta struct {
	Count    int
	Next     *string
	Previous *string
}

// BuildMeta constructs count plus next/previous links for a list response.
// Links preserve the request's other query parameters and are nil at the
// edges of the sequence.
func BuildMeta(r *http.Request, p Params, total int) Meta {
	meta := Meta{Count: total}

	lastPage := (total + p.PageSize - 1) / p.PageSize
	if p.Page < lastPage {
		meta.Next = pageLink(r, p.Page+1)
	}
	if p.Page > 1 {
		// A previous link past the end of the sequence still points one
		// page back so clients can walk into range.
		meta.Previous = pageLink(r, p.Page-1)
	}
	return meta
}

func pageLink(r *http.Request, page int) *string {
	u := *r.URL
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()

	link := u.String()
	if r.Host != "" && u.Host == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		abs := url.URL{Scheme: scheme, Host: r.Host, Path: u.Path, RawQuery: u.RawQuery}
		link = abs.String()
	}
	return &link
}

// Slice applies the page window to an in-memory ordered sequence. Pages past
// the end yield an empty slice, never an error.
func Slice[T any](items []T, p Params) []T {
	start := p.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + p.PageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
