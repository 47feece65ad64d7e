package handlers

import (
	"log"
	"net/http"
	"time"

	"aquagem-backend/internal/middleware"
	"aquagem-backend/internal/models"
	"aquagem-backend/internal/services"
	"aquagem-backend/pkg/utils"
)

// RefreshTokenCookie holds the refresh token for browser clients.
const RefreshTokenCookie = "refreshToken"

type AuthHandler struct {
	Users         *services.UserService
	OTPs          *services.OTPService
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	SecureCookies bool
}

func NewAuthHandler(users *services.UserService, otps *services.OTPService, accessTTL, refreshTTL time.Duration, secureCookies bool) *AuthHandler {
	return &AuthHandler{
		Users:         users,
		OTPs:          otps,
		AccessTTL:     accessTTL,
		RefreshTTL:    refreshTTL,
		SecureCookies: secureCookies,
	}
}

func (h *AuthHandler) setCookies(w http.ResponseWriter, resp *models.AuthResponse) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    resp.Token,
		Path:     "/",
		MaxAge:   int(h.AccessTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteStrictMode,
	})
	http.SetCookie(w, &http.Cookie{
		Name:     RefreshTokenCookie,
		Value:    resp.RefreshToken,
		Path:     "/api/auth",
		MaxAge:   int(h.RefreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteStrictMode,
	})
}

// AdminLogin handles POST /api/auth/admin/login
func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req models.AdminLoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.Users.AdminLogin(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	log.Printf("[Auth] admin %d logged in from %s", resp.User.ID, getIPAddress(r))

	h.setCookies(w, resp)
	utils.JSON(w, http.StatusOK, resp)
}

// RequestOTP handles POST /api/auth/delivery/otp/request
func (h *AuthHandler) RequestOTP(w http.ResponseWriter, r *http.Request) {
	var req models.SendOTPRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.OTPs.RequestOTP(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, resp)
}

// VerifyOTP handles POST /api/auth/delivery/otp/verify
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req models.VerifyOTPRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	resp, err := h.OTPs.VerifyOTP(r.Context(), &req)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	log.Printf("[Auth] delivery boy %d logged in from %s", resp.User.ID, getIPAddress(r))

	h.setCookies(w, resp)
	utils.JSON(w, http.StatusOK, resp)
}

// Refresh returns a handler exchanging a refresh token for users of role.
// The token comes from the body or, failing that, the refresh cookie.
func (h *AuthHandler) Refresh(role string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.RefreshRequest
		if r.ContentLength > 0 && !decodeJSON(w, r, &req) {
			return
		}
		if req.RefreshToken == "" {
			if c, err := r.Cookie(RefreshTokenCookie); err == nil {
				req.RefreshToken = c.Value
			}
		}

		resp, err := h.Users.Refresh(r.Context(), req.RefreshToken, role)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		h.setCookies(w, resp)
		utils.JSON(w, http.StatusOK, resp)
	}
}

// Logout clears the auth cookies.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	for _, c := range []struct{ name, path string }{
		{middleware.AccessTokenCookie, "/"},
		{RefreshTokenCookie, "/api/auth"},
	} {
		http.SetCookie(w, &http.Cookie{Name: c.name, Value: "", Path: c.path, MaxAge: -1, HttpOnly: true, Secure: h.SecureCookies})
	}
	utils.Message(w, http.StatusOK, "Logged out")
}

// Me returns the authenticated user.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.Users.GetUser(r.Context(), currentUserID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, user)
}
