package handler

import (
	"errors"
	"net/http"

	"github.com/lionwox/blogging-platform-api/internal/config"
	"github.com/lionwox/blogging-platform-api/internal/http/response"
	"github.com/lionwox/blogging-platform-api/internal/observability"
	"github.com/lionwox/blogging-platform-api/internal/security"
	"github.com/lionwox/blogging-platform-api/internal/service"
)

type AuthHandler struct {
	auth *service.AuthService
}

func NewAuthHandler(auth *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Message     string `json:"message,omitempty"`
}

// Login accepts form credentials (username carries the email). Bad
// credentials are a 403 with no hint whether the email or the password
// was wrong.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "malformed form body", nil)
		return
	}
	email := r.PostFormValue("username")
	password := r.PostFormValue("password")
	if email == "" || password == "" {
		response.Error(w, r, http.StatusBadRequest, "BAD_REQUEST", "username and password are required", nil)
		return
	}

	pair, err := h.auth.Login(r.Context(), email, password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			observability.RecordAuthLogin("denied")
			response.Error(w, r, http.StatusForbidden, "INVALID_CREDENTIALS", "invalid credentials", nil)
			return
		}
		observability.RecordAuthLogin("error")
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
		return
	}

	observability.RecordAuthLogin("success")
	observability.Audit(r, "auth.login")
	security.SetRefreshCookie(w, pair.RefreshToken, config.RefreshTokenTTL)
	response.JSON(w, r, http.StatusOK, tokenResponse{AccessToken: pair.AccessToken, TokenType: "bearer"})
}

// Refresh rotates the refresh token from the cookie. Missing cookie and
// invalid/expired/reused token are both a 401.
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	presented := security.GetCookie(r, security.RefreshCookieName)
	if presented == "" {
		observability.RecordAuthRefresh("missing_cookie")
		response.Error(w, r, http.StatusUnauthorized, "INVALID_TOKEN", "no refresh token provided", nil)
		return
	}

	pair, err := h.auth.Refresh(r.Context(), presented)
	if err != nil {
		if errors.Is(err, service.ErrInvalidRefreshToken) {
			observability.RecordAuthRefresh("denied")
			response.Error(w, r, http.StatusUnauthorized, "INVALID_TOKEN", "invalid or expired refresh token", nil)
			return
		}
		observability.RecordAuthRefresh("error")
		response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
		return
	}

	observability.RecordAuthRefresh("success")
	observability.Audit(r, "auth.refresh")
	security.SetRefreshCookie(w, pair.RefreshToken, config.RefreshTokenTTL)
	response.JSON(w, r, http.StatusOK, tokenResponse{
		AccessToken: pair.AccessToken,
		TokenType:   "bearer",
		Message:     "tokens refreshed successfully",
	})
}

// Logout revokes the cookie token if one is present and always clears the
// cookie. It never fails: an expired or already-used token logs out fine.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	presented := security.GetCookie(r, security.RefreshCookieName)
	if presented != "" {
		if err := h.auth.Logout(r.Context(), presented); err != nil {
			observability.RecordAuthLogout("error")
			response.Error(w, r, http.StatusInternalServerError, "INTERNAL", "internal server error", nil)
			return
		}
	}
	observability.RecordAuthLogout("success")
	observability.Audit(r, "auth.logout")
	security.ClearRefreshCookie(w)
	response.JSON(w, r, http.StatusOK, map[string]string{"message": "logged out successfully"})
}
