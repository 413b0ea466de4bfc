package users

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/polizei-portal/intranet/internal/platform/httpx"
	"github.com/polizei-portal/intranet/internal/rbac"
	"github.com/polizei-portal/intranet/internal/shared"
)

// Handler manages user management endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers user routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.PermManageUsers))
		r.Get("/", h.listUsers)
		r.Post("/", h.createUser)
		r.Get("/{id}", h.getUser)
		r.Patch("/{id}", h.updateUser)
		r.Delete("/{id}", h.deleteUser)
		r.Post("/{id}/lock", h.setLocked(true))
		r.Post("/{id}/unlock", h.setLocked(false))
		r.Post("/{id}/reset-credential", h.resetCredential)
	})
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	views := make([]View, 0, len(users))
	for i := range users {
		views = append(views, users[i].View())
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"users": views})
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.GetUser(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user.View())
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var input CreateInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	user, err := h.service.CreateUser(r.Context(), input)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.logger.Info("user created", slog.String("user_id", user.ID), slog.String("badge", user.BadgeNumber))
	httpx.JSON(w, http.StatusCreated, user.View())
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	var input UpdateInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	user, err := h.service.UpdateUser(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, user.View())
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.DeleteUser(r.Context(), id); err != nil {
		h.fail(w, err)
		return
	}
	h.logger.Info("user deleted", slog.String("user_id", id))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setLocked(locked bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := h.service.SetLocked(r.Context(), id, locked); err != nil {
			h.fail(w, err)
			return
		}
		h.logger.Info("user lock changed", slog.String("user_id", id), slog.Bool("locked", locked))
		w.WriteHeader(http.StatusNoContent)
	}
}

func (h *Handler) resetCredential(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.service.ResetCredential(r.Context(), id); err != nil {
		h.fail(w, err)
		return
	}
	h.logger.Info("user credential reset", slog.String("user_id", id))
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	if fields, ok := shared.ValidationFields(err); ok {
		httpx.ValidationProblem(w, fields)
		return
	}
	switch {
	case errors.Is(err, shared.ErrNotFound):
		httpx.Error(w, http.StatusNotFound, "")
	case errors.Is(err, ErrBadgeTaken), errors.Is(err, ErrProtectedAccount):
		httpx.Error(w, http.StatusConflict, err.Error())
	case errors.Is(err, ErrUnknownRole), errors.Is(err, ErrUnknownPermission), errors.Is(err, shared.ErrInvalidInput):
		httpx.Error(w, http.StatusUnprocessableEntity, err.Error())
	default:
		h.logger.Error("user request failed", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "")
	}
}
