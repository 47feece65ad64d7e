package auth

import (
	"errors"
	"time"

	"aquagem-backend/internal/config"
	"aquagem-backend/internal/models"
	"aquagem-backend/internal/timeutil"

	"github.com/golang-jwt/jwt/v5"
)

// Token types carried in the "typ" claim
const (
	TokenAccess  = "access"
	TokenRefresh = "refresh"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrInvalidTokenType = errors.New("invalid token type")
)

type Claims struct {
	UserID int    `json:"user_id"`
	Mobile string `json:"mobile"`
	Role   string `json:"role"`
	Type   string `json:"typ"`
	jwt.RegisteredClaims
}

type JWTManager struct {
	secret        []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	issuer        string
}

func NewJWTManager(cfg *config.Config) *JWTManager {
	return &JWTManager{
		secret:        []byte(cfg.JWT.Secret),
		refreshSecret: []byte(cfg.JWT.RefreshSecret),
		accessTTL:     time.Duration(cfg.JWT.AccessTTLMinutes) * time.Minute,
		refreshTTL:    time.Duration(cfg.JWT.RefreshTTLHours) * time.Hour,
		issuer:        cfg.JWT.Issuer,
	}
}

// AccessTTL is the lifetime of access tokens.
func (j *JWTManager) AccessTTL() time.Duration { return j.accessTTL }

// RefreshTTL is the lifetime of refresh tokens.
func (j *JWTManager) RefreshTTL() time.Duration { return j.refreshTTL }

// GenerateToken creates a short-lived access token for a user
func (j *JWTManager) GenerateToken(user *models.User) (string, error) {
	return j.sign(user, TokenAccess, j.accessTTL, j.secret)
}

// GenerateRefreshToken creates a long-lived refresh token for a user
func (j *JWTManager) GenerateRefreshToken(user *models.User) (string, error) {
	return j.sign(user, TokenRefresh, j.refreshTTL, j.refreshSecret)
}

func (j *JWTManager) sign(user *models.User, typ string, ttl time.Duration, secret []byte) (string, error) {
	now := timeutil.Now()

	claims := &Claims{
		UserID: user.ID,
		Mobile: user.Mobile,
		Role:   user.Role,
		Type:   typ,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    j.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ValidateToken verifies an access token and returns the claims
func (j *JWTManager) ValidateToken(tokenString string) (*Claims, error) {
	return j.parse(tokenString, TokenAccess, j.secret)
}

// ValidateRefreshToken verifies a refresh token and returns the claims
func (j *JWTManager) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return j.parse(tokenString, TokenRefresh, j.refreshSecret)
}

func (j *JWTManager) parse(tokenString, typ string, secret []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		// Verify signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return secret, nil
	}, jwt.WithIssuer(j.issuer))

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Type != typ {
		return nil, ErrInvalidTokenType
	}

	return claims, nil
}
