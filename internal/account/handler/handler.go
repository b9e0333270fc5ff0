// Package handler exposes the auth and user-management endpoints.
package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"lawclinic/internal/account/models"
	"lawclinic/internal/account/service"
	"lawclinic/internal/platform/middleware"
	"lawclinic/internal/transport/http/shared"
	dErrors "lawclinic/pkg/domain-errors"
	"lawclinic/pkg/pagination"
)

// Handler wires the account service to the HTTP surface.
type Handler struct {
	svc    *service.Service
	logger *slog.Logger
	tokens middleware.TokenValidator
}

func New(svc *service.Service, tokens middleware.TokenValidator, logger *slog.Logger) *Handler {
	return &Handler{svc: svc, logger: logger, tokens: tokens}
}

// Register mounts the auth routes and the staff user-management routes.
func (h *Handler) Register(r chi.Router) {
	r.Route("/auth", func(r chi.Router) {
		r.Post("/register/", h.handleRegister)
		r.Post("/verify-otp/", h.handleVerifyOTP)
		r.Post("/resend-otp/", h.handleResendOTP)
		r.Post("/login/", h.handleLogin)
		r.Post("/refresh/", h.handleRefresh)
		r.Post("/logout/", h.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth(h.tokens, h.logger))
			r.Get("/user/", h.handleCurrentUser)
			r.Put("/update-user/", h.handleUpdateProfile)
		})
	})

	r.Route("/users", func(r chi.Router) {
		r.Use(middleware.RequireAuth(h.tokens, h.logger))
		r.Use(middleware.RequireStaff(h.logger))
		r.Get("/", h.handleListUsers)
		r.Post("/", h.handleCreateUser)
		r.Get("/overview/", h.handleOverview)
		r.Get("/{id}/", h.handleGetUser)
		r.Put("/{id}/", h.handleAdminUpdate)
		r.Delete("/{id}/", h.handleDeleteUser)
	})
}

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	user, err := h.svc.Register(r.Context(), &req)
	if err != nil {
		h.logError(r, "registration failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.Created(w, "account created, verification code sent", user)
}

func (h *Handler) handleVerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyOTPRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	user, err := h.svc.VerifyOTP(r.Context(), &req)
	if err != nil {
		h.logError(r, "verification failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.OK(w, "account verified", user)
}

func (h *Handler) handleResendOTP(w http.ResponseWriter, r *http.Request) {
	var req models.ResendOTPRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.svc.ResendOTP(r.Context(), &req); err != nil {
		h.logError(r, "resend failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.OK(w, "verification code sent", nil)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	result, err := h.svc.Login(r.Context(), &req)
	if err != nil {
		h.logError(r, "login failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.OK(w, "login successful", result)
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	pair, err := h.svc.Refresh(r.Context(), &req)
	if err != nil {
		h.logError(r, "refresh failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.OK(w, "token refreshed", pair)
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	if err := h.svc.Logout(r.Context(), &req); err != nil {
		h.logError(r, "logout failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.OK(w, "logged out", nil)
}

func (h *Handler) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedID(w, r)
	if !ok {
		return
	}

	user, err := h.svc.CurrentUser(r.Context(), userID)
	if err != nil {
		h.logError(r, "failed to load profile", err)
		shared.WriteError(w, err)
		return
	}
	shared.OK(w, "profile", user)
}

func (h *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := authenticatedID(w, r)
	if !ok {
		return
	}

	var req models.UpdateProfileRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	user, err := h.svc.UpdateProfile(r.Context(), userID, &req)
	if err != nil {
		h.logError(r, "profile update failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.OK(w, "profile updated", user)
}

func (h *Handler) handleListUsers(w http.ResponseWriter, r *http.Request) {
	p, err := pagination.FromRequest(r)
	if err != nil {
		shared.WriteError(w, err)
		return
	}

	users, total, err := h.svc.ListUsers(r.Context(), p)
	if err != nil {
		h.logError(r, "failed to list accounts", err)
		shared.WriteError(w, err)
		return
	}
	shared.List(w, "accounts", users, pagination.BuildMeta(r, p, total))
}

func (h *Handler) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var req models.AdminCreateRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	user, err := h.svc.AdminCreateUser(r.Context(), &req)
	if err != nil {
		h.logError(r, "account creation failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.Created(w, "account created", user)
}

func (h *Handler) handleOverview(w http.ResponseWriter, r *http.Request) {
	ov, err := h.svc.UsersOverview(r.Context())
	if err != nil {
		h.logError(r, "failed to build overview", err)
		shared.WriteError(w, err)
		return
	}
	shared.OK(w, "accounts overview", ov)
}

func (h *Handler) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	user, err := h.svc.GetUser(r.Context(), id)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.OK(w, "account", user)
}

func (h *Handler) handleAdminUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req models.AdminUpdateRequest
	if err := shared.Decode(r, &req); err != nil {
		shared.WriteError(w, err)
		return
	}

	user, err := h.svc.AdminUpdateUser(r.Context(), id, &req)
	if err != nil {
		h.logError(r, "account update failed", err)
		shared.WriteError(w, err)
		return
	}
	shared.OK(w, "account updated", user)
}

func (h *Handler) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.svc.DeleteUser(r.Context(), id); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.OK(w, "account deleted", nil)
}

// authenticatedID reads the caller's ID set by RequireAuth. A missing or
// malformed value means the middleware chain is misconfigured.
func authenticatedID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := middleware.GetUserID(r.Context())
	id, err := uuid.Parse(raw)
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeInternal, "authentication context error"))
		return uuid.Nil, false
	}
	return id, true
}

func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "invalid account id"))
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) logError(r *http.Request, msg string, err error) {
	ctx := r.Context()
	if dErrors.CodeOf(err) == dErrors.CodeInternal {
		h.logger.ErrorContext(ctx, msg, "error", err, "request_id", middleware.GetRequestID(ctx))
		return
	}
	h.logger.WarnContext(ctx, msg, "error", err, "request_id", middleware.GetRequestID(ctx))
}
