package services

import (
	"context"
	"fmt"
	"strings"

	"aquagem-backend/internal/auth"
	"aquagem-backend/internal/models"
)

type UserService struct {
	Users      UserStore
	JWTManager *auth.JWTManager
}

func NewUserService(users UserStore, jwtManager *auth.JWTManager) *UserService {
	return &UserService{
		Users:      users,
		JWTManager: jwtManager,
	}
}

// NormalizeMobile strips formatting and a leading 91 country code and
// requires exactly ten digits.
func NormalizeMobile(mobile string) (string, error) {
	var b strings.Builder
	for _, c := range mobile {
		if c >= '0' && c <= '9' {
			b.WriteRune(c)
		}
	}
	digits := b.String()
	if len(digits) == 12 && strings.HasPrefix(digits, "91") {
		digits = digits[2:]
	}
	if len(digits) != 10 {
		return "", fmt.Errorf("%w: mobile must be a 10 digit number", ErrInvalidInput)
	}
	return digits, nil
}

// CreateUser hashes the password (when given) and stores the user
func (s *UserService) CreateUser(ctx context.Context, u *models.User, password string) error {
	mobile, err := NormalizeMobile(u.Mobile)
	if err != nil {
		return err
	}
	u.Mobile = mobile
	if strings.TrimSpace(u.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if u.Role == models.RoleAdmin && password == "" {
		return fmt.Errorf("%w: admins need a password", ErrInvalidInput)
	}

	if password != "" {
		hashedPassword, err := auth.HashPassword(password)
		if err != nil {
			return err
		}
		u.PasswordHash = hashedPassword
	}
	return s.Users.Create(ctx, u)
}

func (s *UserService) GetUser(ctx context.Context, id int) (*models.User, error) {
	u, err := s.Users.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("user %d: %w", id, notFound(err))
	}
	return u, nil
}

// ListDeliveryBoys returns delivery boys, active ones only unless all is set
func (s *UserService) ListDeliveryBoys(ctx context.Context, all bool) ([]*models.User, error) {
	users, err := s.Users.ListByRole(ctx, models.RoleDeliveryBoy, !all)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []*models.User{}
	}
	return users, nil
}

// issueTokens signs a fresh access/refresh pair for the user
func (s *UserService) issueTokens(user *models.User) (*models.AuthResponse, error) {
	token, err := s.JWTManager.GenerateToken(user)
	if err != nil {
		return nil, err
	}
	refresh, err := s.JWTManager.GenerateRefreshToken(user)
	if err != nil {
		return nil, err
	}
	return &models.AuthResponse{Token: token, RefreshToken: refresh, User: user}, nil
}

// AdminLogin authenticates an admin by mobile and password, plus a TOTP
// code when two-factor is enabled for the account.
func (s *UserService) AdminLogin(ctx context.Context, req *models.AdminLoginRequest) (*models.AuthResponse, error) {
	if req.Mobile == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: mobile and password are required", ErrInvalidInput)
	}
	mobile, err := NormalizeMobile(req.Mobile)
	if err != nil {
		return nil, err
	}

	user, err := s.Users.GetByMobile(ctx, mobile)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.Role != models.RoleAdmin || !auth.VerifyPassword(user.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, fmt.Errorf("account disabled: %w", ErrForbidden)
	}

	if user.TOTPEnabled {
		if req.TOTPCode == "" {
			return nil, ErrTOTPRequired
		}
		if !auth.VerifyTOTP(user.TOTPSecret, req.TOTPCode) {
			return nil, ErrInvalidTOTPCode
		}
	}

	return s.issueTokens(user)
}

// Refresh exchanges a refresh token for a new token pair. The user must
// still exist, be active and hold the expected role.
func (s *UserService) Refresh(ctx context.Context, refreshToken, role string) (*models.AuthResponse, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("%w: refresh_token is required", ErrInvalidInput)
	}
	claims, err := s.JWTManager.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.Users.Get(ctx, claims.UserID)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.Role != role {
		return nil, ErrForbidden
	}
	if !user.IsActive {
		return nil, fmt.Errorf("account disabled: %w", ErrForbidden)
	}
	return s.issueTokens(user)
}
