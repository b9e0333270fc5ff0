// Package handler exposes the publication, category, and comment endpoints.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"lawclinic/internal/platform/middleware"
	"lawclinic/internal/publication/models"
	"lawclinic/internal/publication/service"
	"lawclinic/internal/transport/http/shared"
	dErrors "lawclinic/pkg/domain-errors"
	"lawclinic/pkg/pagination"
)

// Handler wires the publication service to the HTTP surface.
type Handler struct {
	svc    *service.Service
	logger *slog.Logger
	tokens middleware.TokenValidator
}

func New(svc *service.Service, tokens middleware.TokenValidator, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger, tokens: tokens}
}

// Register mounts the publication routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/publications", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.OptionalAuth(h.tokens))
			r.Get("/", h.handleList)
			r.Get("/featured/", h.handleFeatured)
			r.Get("/{slug}/", h.handleGet)
			r.Get("/{slug}/comments/", h.handleListComments)
		})

		r.Get("/categories/", h.handleListCategories)
		r.Get("/categories/{slug}/", h.handleGetCategory)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(h.tokens, h.logger))
			r.Post("/", h.handleCreate)
			r.Get("/mine/", h.handleMine)
			r.Put("/{slug}/", h.handleUpdate)
			r.Delete("/{slug}/", h.handleDelete)
			r.Post("/{slug}/comments/", h.handleAddComment)

			r.Post("/categories/", h.handleCreateCategory)
			r.Put("/categories/{slug}/", h.handleUpdateCategory)
			r.Delete("/categories/{slug}/", h.handleDeleteCategory)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireStaff(h.logger))
				r.Get("/stats/", h.handleStats)
			})
		})
	})
}

func viewerFrom(r *http.Request) service.Viewer {
	v := service.Viewer{IsStaff: middleware.IsStaff(r.Context())}
	if id, err := uuid.Parse(middleware.GetUserID(r.Context())); err == nil {
		v.ID = id
	}
	return v
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	page, err := pagination.FromRequest(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	pubs, total, err := h.svc.List(r.Context(), viewerFrom(r), service.ListParamsFromQuery(r), page)
	if err != nil {
		h.logError(r, "failed to list publications", err)
		shared.WriteError(w, err)
		return
	}
	shared.List(w, "publications retrieved successfully", pubs, pagination.BuildMeta(r, page, total))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	pub, err := h.svc.Get(r.Context(), viewerFrom(r), chi.URLParam(r, "slug"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.OK(w, "publication retrieved successfully", pub)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req models.CreateRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	pub, err := h.svc.Create(r.Context(), viewerFrom(r), &req)
	if err != nil {
		h.logError(r, "failed to create publication", err)
		shared.WriteError(w, err)
		return
	}
	shared.Created(w, "publication created successfully", pub)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	pub, err := h.svc.Update(r.Context(), viewerFrom(r), chi.URLParam(r, "slug"), &req)
	if err != nil {
		h.logError(r, "failed to update publication", err)
		shared.WriteError(w, err)
		return
	}
	shared.OK(w, "publication updated successfully", pub)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), viewerFrom(r), chi.URLParam(r, "slug")); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.OK(w, "publication deleted successfully", nil)
}

func (h *Handler) handleFeatured(w http.ResponseWriter, r *http.Request) {
	pubs, err := h.svc.Featured(r.Context())
	if err != nil {
		h.logError(r, "failed to list featured publications", err)
		shared.WriteError(w, err)
		return
	}
	shared.OK(w, "featured publications retrieved successfully", pubs)
}

func (h *Handler) handleMine(w http.ResponseWriter, r *http.Request) {
	pubs, err := h.svc.Mine(r.Context(), viewerFrom(r))
	if err != nil {
		h.logError(r, "failed to list publications", err)
		shared.WriteError(w, err)
		return
	}
	shared.OK(w, "your publications retrieved successfully", pubs)
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		h.logError(r, "failed to build statistics", err)
		shared.WriteError(w, err)
		return
	}
	shared.OK(w, "publication statistics retrieved successfully", stats)
}

func (h *Handler) handleAddComment(w http.ResponseWriter, r *http.Request) {
	var req models.CommentRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	comment, err := h.svc.AddComment(r.Context(), viewerFrom(r), chi.URLParam(r, "slug"), &req)
	if err != nil {
		h.logError(r, "failed to add comment", err)
		shared.WriteError(w, err)
		return
	}

	msg := "comment added and awaiting approval"
	if comment.IsApproved {
		msg = "comment added successfully"
	}
	shared.Created(w, msg, comment)
}

func (h *Handler) handleListComments(w http.ResponseWriter, r *http.Request) {
	comments, err := h.svc.ListComments(r.Context(), viewerFrom(r), chi.URLParam(r, "slug"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.OK(w, "comments retrieved successfully", comments)
}

func (h *Handler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.ListCategories(r.Context())
	if err != nil {
		h.logError(r, "failed to list categories", err)
		shared.WriteError(w, err)
		return
	}
	shared.OK(w, "categories retrieved successfully", categories)
}

func (h *Handler) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.GetCategory(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.OK(w, "category retrieved successfully", c)
}

func (h *Handler) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req models.CategoryRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	c, err := h.svc.CreateCategory(r.Context(), &req)
	if err != nil {
		h.logError(r, "failed to create category", err)
		shared.WriteError(w, err)
		return
	}
	shared.Created(w, "category created successfully", c)
}

func (h *Handler) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	var req models.CategoryRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	c, err := h.svc.UpdateCategory(r.Context(), chi.URLParam(r, "slug"), &req)
	if err != nil {
		h.logError(r, "failed to update category", err)
		shared.WriteError(w, err)
		return
	}
	shared.OK(w, "category updated successfully", c)
}

func (h *Handler) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteCategory(r.Context(), chi.URLParam(r, "slug")); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.OK(w, "category deleted successfully", nil)
}

func (h *Handler) logError(r *http.Request, msg string, err error) {
	ctx := r.Context()
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg, "error", err, "request_id", middleware.GetRequestID(ctx))
		return
	}
	h.logger.WarnContext(ctx, msg, "error", err, "request_id", middleware.GetRequestID(ctx))
}
