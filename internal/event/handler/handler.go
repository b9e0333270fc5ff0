// Package handler exposes the event, event category, and registration
// endpoints.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"lawclinic/internal/event/models"
	"lawclinic/internal/event/service"
	"lawclinic/internal/platform/middleware"
	"lawclinic/internal/transport/http/shared"
	dErrors "lawclinic/pkg/domain-errors"
	"lawclinic/pkg/pagination"
)

// Handler wires the event service to the HTTP surface.
type Handler struct {
	svc    *service.Service
	logger *slog.Logger
	tokens middleware.TokenValidator
}

func New(svc *service.Service, tokens middleware.TokenValidator, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger, tokens: tokens}
}

// Register mounts the event routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/events", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Get("/categories/", h.handleListCategories)
		r.Get("/categories/{id}/", h.handleGetCategory)
		r.Get("/{slug}/", h.handleGet)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(h.tokens, h.logger))
			r.Post("/", h.handleCreate)
			r.Put("/{slug}/", h.handleUpdate)
			r.Delete("/{slug}/", h.handleDelete)

			r.Post("/{slug}/register/", h.handleRegister)
			r.Post("/{slug}/unregister/", h.handleUnregister)
			r.Get("/{slug}/check-registration/", h.handleCheckRegistration)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireStaff(h.logger))
				r.Post("/categories/", h.handleCreateCategory)
				r.Put("/categories/{id}/", h.handleUpdateCategory)
				r.Delete("/categories/{id}/", h.handleDeleteCategory)
			})
		})
	})

	r.Route("/event-registrations", func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.tokens, h.logger))
		r.Get("/mine/", h.handleMyRegistrations)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireStaff(h.logger))
			r.Patch("/{id}/attended/", h.handleMarkAttended)
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

func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeValidation, "invalid id")
	}
	return id, nil
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	page, err := pagination.FromRequest(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	events, total, err := h.svc.List(r.Context(), service.ListParamsFromQuery(r), page)
	if err != nil {
		h.logError(r, "failed to list events", err)
		shared.WriteError(w, err)
		return
	}
	shared.List(w, "events retrieved successfully", events, pagination.BuildMeta(r, page, total))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	event, err := h.svc.Get(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.OK(w, "event retrieved successfully", event)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req models.CreateRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	event, err := h.svc.Create(r.Context(), viewerFrom(r), &req)
	if err != nil {
		h.logError(r, "failed to create event", err)
		shared.WriteError(w, err)
		return
	}
	shared.Created(w, "event created successfully", event)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	event, err := h.svc.Update(r.Context(), viewerFrom(r), chi.URLParam(r, "slug"), &req)
	if err != nil {
		h.logError(r, "failed to update event", err)
		shared.WriteError(w, err)
		return
	}
	shared.OK(w, "event updated successfully", event)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), viewerFrom(r), chi.URLParam(r, "slug")); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.OK(w, "event deleted successfully", nil)
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	// The body is optional; an empty one means no notes.
	var req models.RegisterRequest
	if r.ContentLength > 0 {
		if err := shared.Decode(r, &req); err != nil {
			shared.WriteError(w, err)
			return
		}
	}

	reg, err := h.svc.Register(r.Context(), viewerFrom(r), chi.URLParam(r, "slug"), &req)
	if err != nil {
		h.logError(r, "failed to register for event", err)
		shared.WriteError(w, err)
		return
	}
	shared.Created(w, "Successfully registered for the event.", reg)
}

func (h *Handler) handleUnregister(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Unregister(r.Context(), viewerFrom(r), chi.URLParam(r, "slug")); err != nil {
		h.logError(r, "failed to unregister from event", err)
		shared.WriteError(w, err)
		return
	}
	shared.OK(w, "Successfully unregistered from the event.", nil)
}

func (h *Handler) handleCheckRegistration(w http.ResponseWriter, r *http.Request) {
	status, err := h.svc.CheckRegistration(r.Context(), viewerFrom(r), chi.URLParam(r, "slug"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.OK(w, "registration status retrieved successfully", status)
}

func (h *Handler) handleMyRegistrations(w http.ResponseWriter, r *http.Request) {
	regs, err := h.svc.MyRegistrations(r.Context(), viewerFrom(r))
	if err != nil {
		h.logError(r, "failed to list registrations", err)
		shared.WriteError(w, err)
		return
	}
	shared.OK(w, "event registrations retrieved successfully", regs)
}

type attendedRequest struct {
	Attended bool `json:"attended"`
}

func (h *Handler) handleMarkAttended(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req attendedRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	reg, err := h.svc.MarkAttended(r.Context(), id, req.Attended)
	if err != nil {
		h.logError(r, "failed to update registration", err)
		shared.WriteError(w, err)
		return
	}
	shared.OK(w, "event registration updated successfully", reg)
}

func (h *Handler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.svc.ListCategories(r.Context())
	if err != nil {
		h.logError(r, "failed to list event categories", err)
		shared.WriteError(w, err)
		return
	}
	shared.OK(w, "event categories retrieved successfully", categories)
}

func (h *Handler) handleGetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	c, err := h.svc.GetCategory(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.OK(w, "event category retrieved successfully", c)
}

func (h *Handler) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req models.CategoryRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	c, err := h.svc.CreateCategory(r.Context(), &req)
	if err != nil {
		h.logError(r, "failed to create event category", err)
		shared.WriteError(w, err)
		return
	}
	shared.Created(w, "event category created successfully", c)
}

func (h *Handler) handleUpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req models.CategoryRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	c, err := h.svc.UpdateCategory(r.Context(), id, &req)
	if err != nil {
		h.logError(r, "failed to update event category", err)
		shared.WriteError(w, err)
		return
	}
	shared.OK(w, "event category updated successfully", c)
}

func (h *Handler) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.svc.DeleteCategory(r.Context(), id); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.OK(w, "event category deleted successfully", nil)
}

func (h *Handler) logError(r *http.Request, msg string, err error) {
	ctx := r.Context()
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg, "error", err, "request_id", middleware.GetRequestID(ctx))
		return
	}
	h.logger.WarnContext(ctx, msg, "error", err, "request_id", middleware.GetRequestID(ctx))
}
