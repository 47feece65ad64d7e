package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"log"
	"math/big"
	"time"

	"aquagem-backend/internal/cache"
	"aquagem-backend/internal/metrics"
	"aquagem-backend/internal/models"
	"aquagem-backend/internal/notify"
	"aquagem-backend/internal/timeutil"
)

// OTPSettings are the delivery boy login limits, taken from config.
type OTPSettings struct {
	Length         int
	Expiry         time.Duration
	MaxAttempts    int
	MaxPerHour     int
	EchoInResponse bool
}

// Defaults when config leaves a field unset
const (
	DefaultOTPLength      = 6
	DefaultOTPExpiry      = 10 * time.Minute
	DefaultMaxOTPAttempts = 3
	DefaultMaxOTPPerHour  = 5
)

// OTPService issues and verifies one-time login codes for delivery boys.
type OTPService struct {
	OTPs     OTPStore
	Users    *UserService
	Sender   notify.Sender
	Retry    notify.Retry
	Settings OTPSettings
	Now      func() time.Time
	Rand     io.Reader
}

func NewOTPService(otps OTPStore, users *UserService, sender notify.Sender, retry notify.Retry, settings OTPSettings) *OTPService {
	if settings.Length <= 0 {
		settings.Length = DefaultOTPLength
	}
	if settings.Expiry <= 0 {
		settings.Expiry = DefaultOTPExpiry
	}
	if settings.MaxAttempts <= 0 {
		settings.MaxAttempts = DefaultMaxOTPAttempts
	}
	if settings.MaxPerHour <= 0 {
		settings.MaxPerHour = DefaultMaxOTPPerHour
	}
	return &OTPService{
		OTPs:     otps,
		Users:    users,
		Sender:   sender,
		Retry:    retry,
		Settings: settings,
		Now:      timeutil.Now,
		Rand:     rand.Reader,
	}
}

// GenerateOTP returns a random numeric code of the configured length
func (s *OTPService) GenerateOTP() (string, error) {
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(s.Settings.Length)), nil)
	n, err := rand.Int(s.Rand, max)
	if err != nil {
		return "", fmt.Errorf("generate OTP: %w", err)
	}
	return fmt.Sprintf("%0*d", s.Settings.Length, n.Int64()), nil
}

// deliveryBoy resolves an active delivery boy by mobile
func (s *OTPService) deliveryBoy(ctx context.Context, mobile string) (*models.User, error) {
	user, err := s.Users.Users.GetByMobile(ctx, mobile)
	if err != nil {
		return nil, fmt.Errorf("no delivery boy with this mobile: %w", notFound(err))
	}
	if user.Role != models.RoleDeliveryBoy {
		return nil, fmt.Errorf("no delivery boy with this mobile: %w", ErrNotFound)
	}
	if !user.IsActive {
		return nil, fmt.Errorf("account disabled: %w", ErrForbidden)
	}
	return user, nil
}

// RequestOTP issues a code to an active delivery boy's mobile. Requests are
// throttled per mobile through Redis. The code is echoed back only when
// EchoInResponse is set.
func (s *OTPService) RequestOTP(ctx context.Context, req *models.SendOTPRequest) (*models.SendOTPResponse, error) {
	mobile, err := NormalizeMobile(req.Mobile)
	if err != nil {
		return nil, err
	}
	user, err := s.deliveryBoy(ctx, mobile)
	if err != nil {
		return nil, err
	}

	allowed, _, err := cache.AllowOTPRequest(ctx, mobile, s.Settings.MaxPerHour, time.Hour)
	if err != nil {
		log.Printf("[OTP] throttle check failed, allowing request: %v", err)
	} else if !allowed {
		return nil, fmt.Errorf("%w: maximum OTP requests exceeded, try again later", ErrTooManyRequests)
	}

	if err := s.OTPs.InvalidatePrevious(ctx, mobile); err != nil {
		return nil, fmt.Errorf("failed to invalidate previous OTPs: %w", err)
	}

	code, err := s.GenerateOTP()
	if err != nil {
		return nil, err
	}
	otp := &models.OTPRequest{
		Mobile:    mobile,
		Code:      code,
		ExpiresAt: s.Now().Add(s.Settings.Expiry),
	}
	if err := s.OTPs.Create(ctx, otp); err != nil {
		return nil, fmt.Errorf("failed to create OTP record: %w", err)
	}

	payload := notify.Payload{
		Template: "delivery_login_otp",
		Title:    "Login code",
		Message:  fmt.Sprintf("%s is your AquaGem login code. It expires in %d minutes.", code, int(s.Settings.Expiry.Minutes())),
		Params:   []string{user.Name, code},
	}
	out, err := s.Retry.Deliver(ctx, s.Sender, mobile, payload)
	if err != nil {
		metrics.NotificationsSent.WithLabelValues(s.Sender.Channel(), "failed").Inc()
		return nil, fmt.Errorf("failed to send OTP: %w", err)
	}
	metrics.NotificationsSent.WithLabelValues(out.Channel, "sent").Inc()

	resp := &models.SendOTPResponse{
		Message:  "OTP sent",
		Channel:  out.Channel,
		Attempts: out.Attempts,
	}
	if s.Settings.EchoInResponse {
		resp.OTP = code
	}
	return resp, nil
}

// VerifyOTP checks the latest unused code for the mobile and logs the
// delivery boy in.
func (s *OTPService) VerifyOTP(ctx context.Context, req *models.VerifyOTPRequest) (*models.AuthResponse, error) {
	mobile, err := NormalizeMobile(req.Mobile)
	if err != nil {
		return nil, err
	}
	if req.OTP == "" {
		return nil, fmt.Errorf("%w: otp is required", ErrInvalidInput)
	}

	otp, err := s.OTPs.GetLatestUnused(ctx, mobile)
	if err != nil {
		if errors.Is(notFound(err), ErrNotFound) {
			return nil, ErrOTPInvalid
		}
		return nil, err
	}

	if s.Now().After(otp.ExpiresAt) {
		return nil, ErrOTPExpired
	}
	if otp.Attempts >= s.Settings.MaxAttempts {
		return nil, ErrTooManyAttempts
	}

	if err := s.OTPs.IncrementAttempts(ctx, otp.ID); err != nil {
		log.Printf("[OTP] failed to increment attempts for #%d: %v", otp.ID, err)
	}
	if subtle.ConstantTimeCompare([]byte(otp.Code), []byte(req.OTP)) != 1 {
		return nil, ErrOTPInvalid
	}
	if err := s.OTPs.MarkUsed(ctx, otp.ID); err != nil {
		return nil, fmt.Errorf("failed to mark OTP used: %w", err)
	}

	user, err := s.deliveryBoy(ctx, mobile)
	if err != nil {
		return nil, err
	}
	return s.Users.issueTokens(user)
}
