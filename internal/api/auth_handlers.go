package api

import (
	"net/http"
	"strings"

	"github.com/rachitshah07/drone-survey-management-system/internal/auth"
	"github.com/rachitshah07/drone-survey-management-system/models"
)

type registerRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string       `json:"access_token"`
	User        *models.User `json:"user"`
}

func (h *Handlers) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Username == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "username, email, and password are required")
		return
	}

	ctx := r.Context()
	if existing, err := h.Users.GetByEmail(ctx, req.Email); err != nil {
		h.internalError(w, "get user by email", err)
		return
	} else if existing != nil {
		writeError(w, http.StatusBadRequest, "email already exists")
		return
	}
	if existing, err := h.Users.GetByUsername(ctx, req.Username); err != nil {
		h.internalError(w, "get user by username", err)
		return
	} else if existing != nil {
		writeError(w, http.StatusBadRequest, "username already exists")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		h.internalError(w, "hash password", err)
		return
	}
	u, err := h.Users.Create(ctx, &models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
	})
	if err != nil {
		h.internalError(w, "create user", err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (h *Handlers) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	u, err := h.Users.GetByEmail(r.Context(), strings.TrimSpace(strings.ToLower(req.Email)))
	if err != nil {
		h.internalError(w, "get user", err)
		return
	}
	if u == nil || !auth.CheckPassword(u.PasswordHash, req.Password) {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}
	token, err := auth.IssueToken(h.JWTSecret, u.ID, u.Username, u.IsAdmin, h.TokenTTL)
	if err != nil {
		h.internalError(w, "issue token", err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{AccessToken: token, User: u})
}

func (h *Handlers) profile(w http.ResponseWriter, r *http.Request) {
	p, ok := auth.RequirePrincipal(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing principal")
		return
	}
	u, err := h.Users.GetByID(r.Context(), p.UserID)
	if err != nil {
		h.internalError(w, "get user", err)
		return
	}
	if u == nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// requireAdmin resolves the principal and re-checks the admin flag against the
// user row, so a stale token cannot retain admin access.
func (h *Handlers) requireAdmin(w http.ResponseWriter, r *http.Request) *models.User {
	p, ok := auth.RequirePrincipal(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing principal")
		return nil
	}
	u, err := h.Users.GetByID(r.Context(), p.UserID)
	if err != nil {
		h.internalError(w, "get user", err)
		return nil
	}
	if u == nil || !u.IsAdmin {
		writeError(w, http.StatusForbidden, "admin access required")
		return nil
	}
	return u
}

func (h *Handlers) internalError(w http.ResponseWriter, msg string, err error) {
	h.Logger.Error(msg, "error", err)
	writeError(w, http.StatusInternalServerError, "internal server error")
}
