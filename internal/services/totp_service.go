package services

import (
	"context"
	"fmt"
	"log"

	"aquagem-backend/internal/auth"
	"aquagem-backend/internal/models"
)

const totpIssuer = "AquaGem"

type TOTPService struct {
	Users UserStore
}

func NewTOTPService(users UserStore) *TOTPService {
	return &TOTPService{Users: users}
}

// GenerateSetup creates a new TOTP secret and QR code for an admin. The
// secret is stored but not enabled until a code is confirmed.
func (s *TOTPService) GenerateSetup(ctx context.Context, userID int) (*models.TOTPSetupResponse, error) {
	user, err := s.Users.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("user %d: %w", userID, notFound(err))
	}
	if user.Role != models.RoleAdmin {
		return nil, ErrForbidden
	}

	secret, url, err := auth.GenerateTOTPSecret(totpIssuer, user.Mobile)
	if err != nil {
		return nil, err
	}
	if err := s.Users.SetTOTPSecret(ctx, user.ID, secret); err != nil {
		return nil, err
	}

	qr, err := auth.TOTPQRCode(url, 200)
	if err != nil {
		return nil, err
	}

	return &models.TOTPSetupResponse{
		Secret:      secret,
		QRCode:      qr,
		URL:         url,
		Issuer:      totpIssuer,
		AccountName: user.Mobile,
	}, nil
}

// VerifyAndEnable checks a code against the pending secret and turns 2FA on
func (s *TOTPService) VerifyAndEnable(ctx context.Context, userID int, code string) error {
	user, err := s.Users.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("user %d: %w", userID, notFound(err))
	}
	if user.TOTPSecret == "" {
		return ErrNoTOTPSecret
	}
	if !auth.VerifyTOTP(user.TOTPSecret, code) {
		return ErrInvalidTOTPCode
	}
	if err := s.Users.EnableTOTP(ctx, userID); err != nil {
		return err
	}
	log.Printf("[TOTP] two-factor enabled for user %d", userID)
	return nil
}
