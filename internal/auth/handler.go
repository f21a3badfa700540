// Package auth exposes login and logout endpoints on top of the accounts
// service and the Redis-backed session store.
package auth

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridian-crm/meridian/internal/accounts"
	"github.com/meridian-crm/meridian/internal/platform/httpx"
	"github.com/meridian-crm/meridian/internal/shared"
)

// Handler manages authentication endpoints.
type Handler struct {
	logger   *slog.Logger
	accounts *accounts.Service
	sessions *shared.SessionManager
	validate *validator.Validate
}

// NewHandler builds a Handler.
func NewHandler(logger *slog.Logger, accounts *accounts.Service, sessions *shared.SessionManager) *Handler {
	return &Handler{
		logger:   logger,
		accounts: accounts,
		sessions: sessions,
		validate: validator.New(),
	}
}

// MountRoutes registers auth routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.login)
	r.Post("/logout", h.logout)
	r.Get("/me", h.me)
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	account, err := h.accounts.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}

	sess, err := h.sessions.Load(r.Context(), r)
	if err != nil {
		h.logger.Error("load session", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Server Error", "session failure")
		return
	}
	sess.SetIdentity(shared.Identity{ActorID: account.ID, OwnerID: account.OwnerID, Role: account.Role})
	if err := h.sessions.Commit(r.Context(), w, sess); err != nil {
		h.logger.Error("commit session", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Server Error", "session failure")
		return
	}

	httpx.JSON(w, http.StatusOK, account)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Load(r.Context(), r)
	if err != nil {
		httpx.Problem(w, http.StatusInternalServerError, "Internal Server Error", "session failure")
		return
	}
	h.sessions.Destroy(sess)
	if err := h.sessions.Commit(r.Context(), w, sess); err != nil {
		httpx.Problem(w, http.StatusInternalServerError, "Internal Server Error", "session failure")
		return
	}
	httpx.NoContent(w)
}

// LoginForTest exposes the login handler to tests outside the package.
func (h *Handler) LoginForTest(w http.ResponseWriter, r *http.Request) { h.login(w, r) }

// LogoutForTest exposes the logout handler to tests outside the package.
func (h *Handler) LogoutForTest(w http.ResponseWriter, r *http.Request) { h.logout(w, r) }

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	id, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "no active session")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"actor_id": id.ActorID,
		"owner_id": id.OwnerID,
		"role":     id.Role,
	})
}
