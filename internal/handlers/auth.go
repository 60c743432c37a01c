package handlers

import (
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/nadiaharb/apply-wise/internal/auth"
	"github.com/nadiaharb/apply-wise/internal/middleware"
	"github.com/nadiaharb/apply-wise/internal/models"
)

// ProfileStore persists profile edits. Implemented by store.UserStore.
type ProfileStore interface {
	UpdateName(userID uuid.UUID, name string) (*models.User, error)
}

// Auth groups the authentication and 2FA endpoints.
type Auth struct {
	svc      *auth.Service
	profiles ProfileStore
}

// NewAuth creates a new Auth handler group.
func NewAuth(svc *auth.Service, profiles ProfileStore) *Auth {
	return &Auth{svc: svc, profiles: profiles}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /api/auth/register.
func (a *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, user, err := a.svc.Register(req.Email, req.Password, req.Name)
	switch {
	case errors.Is(err, auth.ErrMissingFields):
		respondError(w, http.StatusBadRequest, "Email and password are required")
		return
	case errors.Is(err, auth.ErrWeakPassword):
		respondError(w, http.StatusBadRequest, "Password must be at least 6 characters")
		return
	case errors.Is(err, auth.ErrEmailTaken):
		respondError(w, http.StatusConflict, "Email already in use")
		return
	case err != nil:
		slog.Error("register failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	respondJSON(w, http.StatusCreated, map[string]any{
		"token": token,
		"user":  user,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login handles POST /api/auth/login. Accounts with 2FA enabled receive a
// short-lived step-up token instead of a session token; the client must
// follow up on the verify endpoint with a code.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	result, err := a.svc.Login(req.Email, req.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		respondError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	case err != nil:
		slog.Error("login failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	if result.RequiresStepUp {
		respondJSON(w, http.StatusOK, map[string]any{
			"requiresStepUp": true,
			"stepUpToken":    result.StepUpToken,
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"token": result.SessionToken,
		"user":  result.User,
	})
}

type verifyStepUpRequest struct {
	StepUpToken string `json:"stepUpToken"`
	Code        string `json:"code"`
}

// VerifyStepUp handles POST /api/auth/2fa/verify, exchanging a step-up
// token plus a TOTP code for a full session.
func (a *Auth) VerifyStepUp(w http.ResponseWriter, r *http.Request) {
	var req verifyStepUpRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, user, err := a.svc.VerifyStepUp(r.Context(), req.StepUpToken, req.Code)
	switch {
	case errors.Is(err, auth.ErrInvalidSession):
		respondError(w, http.StatusUnauthorized, "Invalid session")
		return
	case errors.Is(err, auth.ErrNotEnrolled):
		respondError(w, http.StatusBadRequest, "Two-factor authentication is not set up")
		return
	case errors.Is(err, auth.ErrInvalidCode):
		respondError(w, http.StatusUnauthorized, "Invalid code")
		return
	case err != nil:
		slog.Error("step-up verify failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  user,
	})
}

// Me handles GET /api/auth/me.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromCtx(r.Context())

	user, err := a.svc.Me(userID)
	switch {
	case errors.Is(err, auth.ErrUserNotFound):
		respondError(w, http.StatusNotFound, "User not found")
		return
	case err != nil:
		slog.Error("me lookup failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"user": user})
}

// Setup2FA handles POST /api/auth/2fa/setup. It generates a pending TOTP
// secret and returns the provisioning material; nothing is enforced until
// the code is confirmed on the enable endpoint.
func (a *Auth) Setup2FA(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromCtx(r.Context())

	enrollment, err := a.svc.StartEnrollment(userID)
	switch {
	case errors.Is(err, auth.ErrUserNotFound):
		respondError(w, http.StatusNotFound, "User not found")
		return
	case err != nil:
		slog.Error("2fa setup failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"qrCode":     "data:image/png;base64," + base64.StdEncoding.EncodeToString(enrollment.QRPNG),
		"secret":     enrollment.Secret,
		"otpauthUrl": enrollment.URL,
	})
}

type codeRequest struct {
	Code string `json:"code"`
}

// Enable2FA handles POST /api/auth/2fa/enable, confirming the pending
// secret with a current code.
func (a *Auth) Enable2FA(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromCtx(r.Context())

	var req codeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	err := a.svc.ConfirmEnrollment(userID, req.Code)
	switch {
	case errors.Is(err, auth.ErrNotPending):
		respondError(w, http.StatusBadRequest, "Run 2FA setup first")
		return
	case errors.Is(err, auth.ErrInvalidCode):
		respondError(w, http.StatusUnauthorized, "Invalid code")
		return
	case errors.Is(err, auth.ErrUserNotFound):
		respondError(w, http.StatusNotFound, "User not found")
		return
	case err != nil:
		slog.Error("2fa enable failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "2FA enabled"})
}

// Disable2FA handles POST /api/auth/2fa/disable. A current code is required
// so a hijacked session cannot silently weaken the account.
func (a *Auth) Disable2FA(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromCtx(r.Context())

	var req codeRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	err := a.svc.DisableSecondFactor(userID, req.Code)
	switch {
	case errors.Is(err, auth.ErrNotEnrolled):
		respondError(w, http.StatusBadRequest, "Two-factor authentication is not enabled")
		return
	case errors.Is(err, auth.ErrInvalidCode):
		respondError(w, http.StatusUnauthorized, "Invalid code")
		return
	case errors.Is(err, auth.ErrUserNotFound):
		respondError(w, http.StatusNotFound, "User not found")
		return
	case err != nil:
		slog.Error("2fa disable failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "2FA disabled"})
}

type profileRequest struct {
	Name string `json:"name"`
}

// UpdateProfile handles PATCH /api/auth/profile.
func (a *Auth) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromCtx(r.Context())

	var req profileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "Name is required")
		return
	}
	if msg := validateName(req.Name); msg != "" {
		respondError(w, http.StatusBadRequest, msg)
		return
	}

	user, err := a.profiles.UpdateName(userID, req.Name)
	if err != nil {
		slog.Error("profile update failed", "error", err)
		respondError(w, http.StatusInternalServerError, "Something went wrong")
		return
	}
	if user == nil {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"user": user})
}
