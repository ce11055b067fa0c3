// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"net/mail"
	"strings"

	"github.com/danielhkuo/codevote/auth"
	"github.com/danielhkuo/codevote/cliparse"
	"github.com/danielhkuo/codevote/middleware"
	"github.com/danielhkuo/codevote/models"
	"github.com/danielhkuo/codevote/store"
)

type AuthHandler struct {
	st  *store.Store
	cfg cliparse.Config
}

func NewAuthHandler(st *store.Store, cfg cliparse.Config) *AuthHandler {
	return &AuthHandler{st: st, cfg: cfg}
}

// Signup handles POST /auth/signup
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req models.SignupRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}
	addr, err := mail.ParseAddress(req.Email)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "a valid email is required")
		return
	}
	// "Name <addr>" forms keep only the mailbox
	req.Email = addr.Address
	if !auth.ValidRole(req.Role) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "role must be 'admin' or 'voter'")
		return
	}
	if req.NationalID != nil && req.Role != models.RoleVoter {
		middleware.ErrorResponse(w, http.StatusBadRequest, "national_id is only accepted for voters")
		return
	}

	hash, err := auth.HashPassword(req.Password, h.cfg.BcryptCost)
	if errors.Is(err, auth.ErrPasswordTooShort) {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		slog.Error("failed to hash password", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	profile, err := h.st.CreateProfile(r.Context(), models.Profile{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Contact:      req.Contact,
		Role:         req.Role,
		NationalID:   req.NationalID,
	})
	if errors.Is(err, store.ErrDuplicateEmail) {
		middleware.ErrorResponse(w, http.StatusConflict, "Email is already registered")
		return
	}
	if err != nil {
		slog.Error("failed to create profile", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create account")
		return
	}

	sess, err := h.st.CreateSession(r.Context(), profile.ID, profile.Role, h.cfg.SessionTTL)
	if err != nil {
		slog.Error("failed to create session", "error", err, "user_id", profile.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to start session")
		return
	}

	slog.Info("profile created", "user_id", profile.ID, "role", profile.Role)

	middleware.JSONResponse(w, http.StatusCreated, models.SessionResponse{
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt,
		Profile:   profile,
	})
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	if req.Email == "" || req.Password == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "email and password are required")
		return
	}
	if !auth.ValidRole(req.Role) {
		middleware.ErrorResponse(w, http.StatusBadRequest, "role must be 'admin' or 'voter'")
		return
	}

	profile, err := h.st.GetProfileByEmail(r.Context(), req.Email)
	if errors.Is(err, store.ErrProfileNotFound) {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}
	if err != nil {
		slog.Error("failed to query profile", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	if err := auth.CheckPassword(profile.PasswordHash, req.Password); err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	// A user signs in under the single role they registered with
	if profile.Role != req.Role {
		middleware.ErrorResponse(w, http.StatusForbidden, "You are not registered as a "+req.Role)
		return
	}

	sess, err := h.st.CreateSession(r.Context(), profile.ID, profile.Role, h.cfg.SessionTTL)
	if err != nil {
		slog.Error("failed to create session", "error", err, "user_id", profile.ID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to start session")
		return
	}

	slog.Info("user logged in", "user_id", profile.ID, "role", profile.Role)

	middleware.JSONResponse(w, http.StatusOK, models.SessionResponse{
		Token:     sess.Token,
		ExpiresAt: sess.ExpiresAt,
		Profile:   profile,
	})
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.FromContext(r.Context())

	err := h.st.DeleteSession(r.Context(), sess.Token)
	if err != nil && !errors.Is(err, store.ErrSessionNotFound) {
		slog.Error("failed to delete session", "error", err, "user_id", sess.UserID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to log out")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetMe handles GET /me
func (h *AuthHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.FromContext(r.Context())

	profile, err := h.st.GetProfile(r.Context(), sess.UserID)
	if errors.Is(err, store.ErrProfileNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Profile not found")
		return
	}
	if err != nil {
		slog.Error("failed to query profile", "error", err, "user_id", sess.UserID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, profile)
}

// UpdateMe handles PATCH /me
func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	sess, _ := auth.FromContext(r.Context())

	var req models.UpdateProfileRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			middleware.ErrorResponse(w, http.StatusBadRequest, "name cannot be empty")
			return
		}
		req.Name = &name
	}
	if req.NationalID != nil && sess.Role != models.RoleVoter {
		middleware.ErrorResponse(w, http.StatusBadRequest, "national_id is only accepted for voters")
		return
	}

	profile, err := h.st.UpdateProfile(r.Context(), sess.UserID, req)
	if errors.Is(err, store.ErrProfileNotFound) {
		middleware.ErrorResponse(w, http.StatusNotFound, "Profile not found")
		return
	}
	if err != nil {
		slog.Error("failed to update profile", "error", err, "user_id", sess.UserID)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, profile)
}
