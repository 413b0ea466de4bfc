package laws

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/polizei-portal/intranet/internal/platform/httpx"
	"github.com/polizei-portal/intranet/internal/rbac"
	"github.com/polizei-portal/intranet/internal/shared"
)

// Handler serves the statute reference.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac}
}

// MountRoutes registers statute routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAuthenticated())
		r.Get("/", h.listLaws)
		r.Get("/{id}", h.getLaw)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(rbac.PermManageLaws))
		r.Post("/", h.createLaw)
		r.Put("/{id}", h.updateLaw)
		r.Delete("/{id}", h.deleteLaw)
	})
}

func (h *Handler) listLaws(w http.ResponseWriter, r *http.Request) {
	list, err := h.service.ListLaws(r.Context())
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"laws": list})
}

func (h *Handler) getLaw(w http.ResponseWriter, r *http.Request) {
	law, err := h.service.GetLaw(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, law)
}

func (h *Handler) createLaw(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	law, err := h.service.CreateLaw(r.Context(), input)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, law)
}

func (h *Handler) updateLaw(w http.ResponseWriter, r *http.Request) {
	var input Input
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	law, err := h.service.UpdateLaw(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		h.fail(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, law)
}

func (h *Handler) deleteLaw(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteLaw(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	if fields, ok := shared.ValidationFields(err); ok {
		httpx.ValidationProblem(w, fields)
		return
	}
	if errors.Is(err, shared.ErrNotFound) {
		httpx.Error(w, http.StatusNotFound, "")
		return
	}
	h.logger.Error("law request failed", slog.Any("error", err))
	httpx.Error(w, http.StatusInternalServerError, "")
}
