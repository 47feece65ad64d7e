package models

import "time"

// User roles
const (
	RoleAdmin       = "admin"
	RoleDeliveryBoy = "delivery_boy"
	RoleCustomer    = "customer"
)

type User struct {
	ID           int       `json:"id"`
	Role         string    `json:"role"` // admin, delivery_boy or customer
	Name         string    `json:"name"`
	Mobile       string    `json:"mobile"`
	WhatsApp     string    `json:"whatsapp,omitempty"`
	PasswordHash string    `json:"-"` // Never expose in JSON
	TOTPSecret   string    `json:"-"`
	TOTPEnabled  bool      `json:"totp_enabled"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AdminLoginRequest represents the request body for admin login
type AdminLoginRequest struct {
	Mobile   string `json:"mobile"`
	Password string `json:"password"`
	TOTPCode string `json:"totp_code,omitempty"`
}

// RefreshRequest carries a refresh token when the cookie is not used
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse represents the response after successful authentication
type AuthResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refresh_token,omitempty"`
	User         *User  `json:"user"`
}

// CreateUserRequest is used by an admin to add a delivery boy or another admin
type CreateUserRequest struct {
	Name     string `json:"name"`
	Mobile   string `json:"mobile"`
	WhatsApp string `json:"whatsapp,omitempty"`
	Role     string `json:"role"`
	Password string `json:"password,omitempty"`
}
