package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"

	"github.com/polizei-portal/intranet/internal/platform/httpx"
	"github.com/polizei-portal/intranet/internal/rbac"
	"github.com/polizei-portal/intranet/internal/shared"
	"github.com/polizei-portal/intranet/internal/users"
)

// LoginRecorder observes login outcomes.
type LoginRecorder interface {
	ObserveLogin(outcome string)
}

// Login outcomes reported to the LoginRecorder.
const (
	OutcomeSuccess = "success"
	OutcomeClaimed = "claimed"
	OutcomeDenied  = "denied"
	OutcomeLocked  = "locked"
	OutcomeError   = "error"
)

// Handler wires HTTP endpoints for authentication flows.
type Handler struct {
	logger         *slog.Logger
	service        *Service
	sessionManager *shared.SessionManager
	csrfManager    *shared.CSRFManager
	roles          rbac.RoleSource
	recorder       LoginRecorder
	validator      *validator.Validate
	loginLimit     int
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionManager, csrf *shared.CSRFManager, roles rbac.RoleSource, recorder LoginRecorder) *Handler {
	return &Handler{
		logger:         logger,
		service:        service,
		sessionManager: sessions,
		csrfManager:    csrf,
		roles:          roles,
		recorder:       recorder,
		validator:      validator.New(),
		loginLimit:     10,
	}
}

// MountRoutes registers auth routes on provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.With(httprate.Limit(h.loginLimit, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP))).Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.Get("/csrf", h.handleCSRF)
	r.Get("/me", h.handleMe)
}

type loginRequest struct {
	BadgeNumber string `json:"badgeNumber" validate:"required,max=32"`
	Password    string `json:"password" validate:"required,max=72"`
}

type meResponse struct {
	User        users.View        `json:"user"`
	Permissions []rbac.Permission `json:"permissions"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		fields, _ := shared.ValidationFields(err)
		httpx.ValidationProblem(w, fields)
		return
	}
	result, err := h.service.Login(r.Context(), req.BadgeNumber, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, shared.ErrAccountLocked):
			h.observe(OutcomeLocked)
			httpx.Error(w, http.StatusForbidden, "account locked")
		case errors.Is(err, shared.ErrInvalidCredentials):
			h.observe(OutcomeDenied)
			httpx.Error(w, http.StatusUnauthorized, "invalid credentials")
		default:
			h.observe(OutcomeError)
			h.logger.Error("login failed", slog.Any("error", err))
			httpx.Error(w, http.StatusInternalServerError, "")
		}
		return
	}
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.logger.Error("session missing during login")
		httpx.Error(w, http.StatusInternalServerError, "")
		return
	}
	sess.SetUser(result.User.ID)
	sess.Delete(shared.CSRFSessionKey)
	token, err := h.csrfManager.EnsureToken(sess)
	if err != nil {
		h.logger.Error("csrf token", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "")
		return
	}
	w.Header().Set(shared.CSRFHeader, token)
	if result.Claimed {
		h.observe(OutcomeClaimed)
		h.logger.Info("account claimed", slog.String("user_id", result.User.ID))
	} else {
		h.observe(OutcomeSuccess)
	}
	httpx.JSON(w, http.StatusOK, h.me(result.User))
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		h.sessionManager.Destroy(sess)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleCSRF(w http.ResponseWriter, r *http.Request) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		httpx.Error(w, http.StatusInternalServerError, "")
		return
	}
	token, err := h.csrfManager.EnsureToken(sess)
	if err != nil {
		h.logger.Error("csrf token", slog.Any("error", err))
		httpx.Error(w, http.StatusInternalServerError, "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"token": token})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	if user == nil {
		httpx.Error(w, http.StatusUnauthorized, "")
		return
	}
	httpx.JSON(w, http.StatusOK, h.me(user))
}

func (h *Handler) me(user *users.User) meResponse {
	var roles []rbac.Role
	if h.roles != nil {
		roles = h.roles.Roles()
	}
	perms := rbac.EffectivePermissions(user.Subject(), roles)
	if perms == nil {
		perms = []rbac.Permission{}
	}
	return meResponse{User: user.View(), Permissions: perms}
}

func (h *Handler) observe(outcome string) {
	if h.recorder != nil {
		h.recorder.ObserveLogin(outcome)
	}
}
