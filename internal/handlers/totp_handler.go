package handlers

import (
	"net/http"

	"aquagem-backend/internal/models"
	"aquagem-backend/internal/services"
	"aquagem-backend/pkg/utils"
)

type TOTPHandler struct {
	Service *services.TOTPService
}

func NewTOTPHandler(s *services.TOTPService) *TOTPHandler {
	return &TOTPHandler{Service: s}
}

// SetupTOTP starts 2FA enrolment and returns the secret and QR code
func (h *TOTPHandler) SetupTOTP(w http.ResponseWriter, r *http.Request) {
	resp, err := h.Service.GenerateSetup(r.Context(), currentUserID(r))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.JSON(w, http.StatusOK, resp)
}

// EnableTOTP confirms a code from the authenticator app and turns 2FA on
func (h *TOTPHandler) EnableTOTP(w http.ResponseWriter, r *http.Request) {
	var req models.TOTPEnableRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Code == "" {
		utils.Error(w, http.StatusBadRequest, "Verification code is required")
		return
	}

	if err := h.Service.VerifyAndEnable(r.Context(), currentUserID(r), req.Code); err != nil {
		writeServiceError(w, r, err)
		return
	}
	utils.Message(w, http.StatusOK, "2FA enabled")
}
