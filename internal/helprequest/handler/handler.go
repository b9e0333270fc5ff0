// Package handler exposes the help request endpoints. Submission is public;
// reading and managing requests requires authentication, statistics staff.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"lawclinic/internal/helprequest/models"
	"lawclinic/internal/helprequest/service"
	"lawclinic/internal/platform/middleware"
	"lawclinic/internal/transport/http/shared"
	dErrors "lawclinic/pkg/domain-errors"
	"lawclinic/pkg/pagination"
)

// Handler wires the help request service to the HTTP surface.
type Handler struct {
	svc    *service.Service
	logger *slog.Logger
	tokens middleware.TokenValidator
}

func New(svc *service.Service, tokens middleware.TokenValidator, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger, tokens: tokens}
}

// Register mounts the help request routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/help-requests", func(r chi.Router) {
		r.Post("/", h.handleSubmit)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(h.tokens, h.logger))
			r.Get("/", h.handleList)
			r.Get("/{id}/", h.handleGet)
			r.Put("/{id}/", h.handleUpdate)
			r.Delete("/{id}/", h.handleDelete)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireStaff(h.logger))
				r.Get("/statistics/", h.handleStatistics)
			})
		})
	})
}

func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeValidation, "invalid id")
	}
	return id, nil
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var req models.CreateRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	hr, err := h.svc.Submit(r.Context(), &req)
	if err != nil {
		h.logError(r, "failed to submit help request", err)
		shared.WriteError(w, err)
		return
	}
	shared.Created(w, "help request submitted successfully", hr)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	page, err := pagination.FromRequest(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	out, total, err := h.svc.List(r.Context(), service.ListParamsFromQuery(r), page)
	if err != nil {
		h.logError(r, "failed to list help requests", err)
		shared.WriteError(w, err)
		return
	}
	shared.List(w, "help requests retrieved successfully", out, pagination.BuildMeta(r, page, total))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	hr, err := h.svc.Get(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.OK(w, "help request retrieved successfully", hr)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	var req models.UpdateRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	hr, err := h.svc.Update(r.Context(), id, &req)
	if err != nil {
		h.logError(r, "failed to update help request", err)
		shared.WriteError(w, err)
		return
	}
	shared.OK(w, "help request updated successfully", hr)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.OK(w, "help request deleted successfully", nil)
}

func (h *Handler) handleStatistics(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Statistics(r.Context())
	if err != nil {
		h.logError(r, "failed to build help request statistics", err)
		shared.WriteError(w, err)
		return
	}
	shared.OK(w, "help request statistics retrieved successfully", stats)
}

func (h *Handler) logError(r *http.Request, msg string, err error) {
	ctx := r.Context()
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg, "error", err, "request_id", middleware.GetRequestID(ctx))
		return
	}
	h.logger.WarnContext(ctx, msg, "error", err, "request_id", middleware.GetRequestID(ctx))
}
