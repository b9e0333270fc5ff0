// Package handler exposes the public site content endpoints: app data,
// galleries, gallery images, sponsors, and testimonials. Reads are public;
// writes require staff.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"lawclinic/internal/platform/middleware"
	"lawclinic/internal/sitesettings/models"
	"lawclinic/internal/sitesettings/service"
	"lawclinic/internal/transport/http/shared"
	dErrors "lawclinic/pkg/domain-errors"
	"lawclinic/pkg/pagination"
)

// Handler wires the site content service to the HTTP surface.
type Handler struct {
	svc    *service.Service
	logger *slog.Logger
	tokens middleware.TokenValidator
}

func New(svc *service.Service, tokens middleware.TokenValidator, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger, tokens: tokens}
}

// Register mounts the site content routes.
func (h *Handler) Register(r chi.Router) {
	staff := func(r chi.Router, register func(chi.Router)) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(h.tokens, h.logger))
			r.Use(middleware.RequireStaff(h.logger))
			register(r)
		})
	}

	r.Route("/app-data", func(r chi.Router) {
		r.Get("/", h.handleListAppData)
		r.Get("/{id}/", h.handleGetAppData)
		staff(r, func(r chi.Router) {
			r.Post("/", h.handleCreateAppData)
			r.Put("/{id}/", h.handleUpdateAppData)
			r.Delete("/{id}/", h.handleDeleteAppData)
		})
	})

	r.Route("/galleries", func(r chi.Router) {
		r.Get("/", h.handleListGalleries)
		r.Get("/by-department/", h.handleGalleriesByDepartment)
		r.Get("/{id}/", h.handleGetGallery)
		staff(r, func(r chi.Router) {
			r.Post("/", h.handleCreateGallery)
			r.Put("/{id}/", h.handleUpdateGallery)
			r.Delete("/{id}/", h.handleDeleteGallery)
		})
	})

	r.Route("/gallery-images", func(r chi.Router) {
		r.Get("/", h.handleListGalleryImages)
		r.Get("/{id}/", h.handleGetGalleryImage)
		staff(r, func(r chi.Router) {
			r.Post("/", h.handleCreateGalleryImage)
			r.Put("/{id}/", h.handleUpdateGalleryImage)
			r.Delete("/{id}/", h.handleDeleteGalleryImage)
		})
	})

	r.Route("/sponsors", func(r chi.Router) {
		r.Get("/", h.handleListSponsors)
		r.Get("/by-type/", h.handleSponsorsByType)
		r.Get("/{id}/", h.handleGetSponsor)
		staff(r, func(r chi.Router) {
			r.Post("/", h.handleCreateSponsor)
			r.Put("/{id}/", h.handleUpdateSponsor)
			r.Delete("/{id}/", h.handleDeleteSponsor)
		})
	})

	r.Route("/testimonials", func(r chi.Router) {
		r.Get("/", h.handleListTestimonials)
		r.Get("/{id}/", h.handleGetTestimonial)
		staff(r, func(r chi.Router) {
			r.Post("/", h.handleCreateTestimonial)
			r.Put("/{id}/", h.handleUpdateTestimonial)
			r.Delete("/{id}/", h.handleDeleteTestimonial)
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

func (h *Handler) logError(r *http.Request, msg string, err error) {
	ctx := r.Context()
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg, "error", err, "request_id", middleware.GetRequestID(ctx))
		return
	}
	h.logger.WarnContext(ctx, msg, "error", err, "request_id", middleware.GetRequestID(ctx))
}

// App data.

func (h *Handler) handleListAppData(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.ListAppData(r.Context())
	if err != nil {
		h.logError(r, "failed to list app data", err)
		shared.WriteError(w, err)
		return
	}
	shared.OK(w, "App data retrieved successfully", out)
}

func (h *Handler) handleGetAppData(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	d, err := h.svc.GetAppData(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.OK(w, "App data retrieved successfully", d)
}

func (h *Handler) handleCreateAppData(w http.ResponseWriter, r *http.Request) {
	var req models.AppDataRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	d, err := h.svc.CreateAppData(r.Context(), &req)
	if err != nil {
		h.logError(r, "failed to create app data", err)
		shared.WriteError(w, err)
		return
	}
	shared.Created(w, "App data created successfully", d)
}

func (h *Handler) handleUpdateAppData(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req models.AppDataRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	d, err := h.svc.UpdateAppData(r.Context(), id, &req)
	if err != nil {
		h.logError(r, "failed to update app data", err)
		shared.WriteError(w, err)
		return
	}
	shared.OK(w, "App data updated successfully", d)
}

func (h *Handler) handleDeleteAppData(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.svc.DeleteAppData(r.Context(), id); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.OK(w, "App data deleted successfully", nil)
}

// Galleries.

func (h *Handler) handleListGalleries(w http.ResponseWriter, r *http.Request) {
	page, err := pagination.FromRequest(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	out, total, err := h.svc.ListGalleries(r.Context(), service.GalleryParamsFromQuery(r), page)
	if err != nil {
		h.logError(r, "failed to list galleries", err)
		shared.WriteError(w, err)
		return
	}
	shared.List(w, "Galleries retrieved successfully", out, pagination.BuildMeta(r, page, total))
}

func (h *Handler) handleGalleriesByDepartment(w http.ResponseWriter, r *http.Request) {
	page, err := pagination.FromRequest(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	department := r.URL.Query().Get("department")
	out, total, err := h.svc.GalleriesByDepartment(r.Context(), department, page)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.List(w, "Galleries for "+department+" department retrieved", out, pagination.BuildMeta(r, page, total))
}

func (h *Handler) handleGetGallery(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	g, err := h.svc.GetGallery(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.OK(w, "Gallery retrieved successfully", g)
}

func (h *Handler) handleCreateGallery(w http.ResponseWriter, r *http.Request) {
	var req models.GalleryRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	g, err := h.svc.CreateGallery(r.Context(), &req)
	if err != nil {
		h.logError(r, "failed to create gallery", err)
		shared.WriteError(w, err)
		return
	}
	shared.Created(w, "Gallery created successfully", g)
}

func (h *Handler) handleUpdateGallery(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req models.GalleryRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	g, err := h.svc.UpdateGallery(r.Context(), id, &req)
	if err != nil {
		h.logError(r, "failed to update gallery", err)
		shared.WriteError(w, err)
		return
	}
	shared.OK(w, "Gallery updated successfully", g)
}

func (h *Handler) handleDeleteGallery(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.svc.DeleteGallery(r.Context(), id); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.OK(w, "Gallery deleted successfully", nil)
}

// Gallery images.

func (h *Handler) handleListGalleryImages(w http.ResponseWriter, r *http.Request) {
	page, err := pagination.FromRequest(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var galleryID *uuid.UUID
	if v := r.URL.Query().Get("gallery"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "gallery must be a valid id"))
			return
		}
		galleryID = &id
	}

	out, total, err := h.svc.ListGalleryImages(r.Context(), galleryID, page)
	if err != nil {
		h.logError(r, "failed to list gallery images", err)
		shared.WriteError(w, err)
		return
	}
	shared.List(w, "Gallery images retrieved successfully", out, pagination.BuildMeta(r, page, total))
}

func (h *Handler) handleGetGalleryImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	img, err := h.svc.GetGalleryImage(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.OK(w, "Gallery image retrieved successfully", img)
}

func (h *Handler) handleCreateGalleryImage(w http.ResponseWriter, r *http.Request) {
	var req models.GalleryImageRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	img, err := h.svc.CreateGalleryImage(r.Context(), &req)
	if err != nil {
		h.logError(r, "failed to create gallery image", err)
		shared.WriteError(w, err)
		return
	}
	shared.Created(w, "Gallery image created successfully", img)
}

func (h *Handler) handleUpdateGalleryImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req models.GalleryImageRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	img, err := h.svc.UpdateGalleryImage(r.Context(), id, &req)
	if err != nil {
		h.logError(r, "failed to update gallery image", err)
		shared.WriteError(w, err)
		return
	}
	shared.OK(w, "Gallery image updated successfully", img)
}

func (h *Handler) handleDeleteGalleryImage(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.svc.DeleteGalleryImage(r.Context(), id); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.OK(w, "Gallery image deleted successfully", nil)
}

// Sponsors.

func (h *Handler) handleListSponsors(w http.ResponseWriter, r *http.Request) {
	page, err := pagination.FromRequest(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	q := r.URL.Query()
	out, total, err := h.svc.ListSponsors(r.Context(), q.Get("type"), q.Get("search"), page)
	if err != nil {
		h.logError(r, "failed to list sponsors", err)
		shared.WriteError(w, err)
		return
	}
	shared.List(w, "Sponsors retrieved successfully", out, pagination.BuildMeta(r, page, total))
}

func (h *Handler) handleSponsorsByType(w http.ResponseWriter, r *http.Request) {
	page, err := pagination.FromRequest(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	sponsorType := r.URL.Query().Get("type")
	out, total, err := h.svc.SponsorsByType(r.Context(), sponsorType, page)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.List(w, sponsorType+" sponsors retrieved", out, pagination.BuildMeta(r, page, total))
}

func (h *Handler) handleGetSponsor(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	sp, err := h.svc.GetSponsor(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.OK(w, "Sponsor retrieved successfully", sp)
}

func (h *Handler) handleCreateSponsor(w http.ResponseWriter, r *http.Request) {
	var req models.SponsorRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	sp, err := h.svc.CreateSponsor(r.Context(), &req)
	if err != nil {
		h.logError(r, "failed to create sponsor", err)
		shared.WriteError(w, err)
		return
	}
	shared.Created(w, "Sponsor created successfully", sp)
}

func (h *Handler) handleUpdateSponsor(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req models.SponsorRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	sp, err := h.svc.UpdateSponsor(r.Context(), id, &req)
	if err != nil {
		h.logError(r, "failed to update sponsor", err)
		shared.WriteError(w, err)
		return
	}
	shared.OK(w, "Sponsor updated successfully", sp)
}

func (h *Handler) handleDeleteSponsor(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.svc.DeleteSponsor(r.Context(), id); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.OK(w, "Sponsor deleted successfully", nil)
}

// Testimonials.

func (h *Handler) handleListTestimonials(w http.ResponseWriter, r *http.Request) {
	page, err := pagination.FromRequest(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	out, total, err := h.svc.ListTestimonials(r.Context(), r.URL.Query().Get("search"), page)
	if err != nil {
		h.logError(r, "failed to list testimonials", err)
		shared.WriteError(w, err)
		return
	}
	shared.List(w, "Testimonials retrieved successfully", out, pagination.BuildMeta(r, page, total))
}

func (h *Handler) handleGetTestimonial(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	tm, err := h.svc.GetTestimonial(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.OK(w, "Testimonial retrieved successfully", tm)
}

func (h *Handler) handleCreateTestimonial(w http.ResponseWriter, r *http.Request) {
	var req models.TestimonialRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	tm, err := h.svc.CreateTestimonial(r.Context(), &req)
	if err != nil {
		h.logError(r, "failed to create testimonial", err)
		shared.WriteError(w, err)
		return
	}
	shared.Created(w, "Testimonial created successfully", tm)
}

func (h *Handler) handleUpdateTestimonial(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req models.TestimonialRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}
	tm, err := h.svc.UpdateTestimonial(r.Context(), id, &req)
	if err != nil {
		h.logError(r, "failed to update testimonial", err)
		shared.WriteError(w, err)
		return
	}
	shared.OK(w, "Testimonial updated successfully", tm)
}

func (h *Handler) handleDeleteTestimonial(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.svc.DeleteTestimonial(r.Context(), id); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.OK(w, "Testimonial deleted successfully", nil)
}
