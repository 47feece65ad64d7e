package models

import "time"

// OTPRequest is a one-time login code issued to a delivery boy's mobile
type OTPRequest struct {
	ID        int       `json:"id"`
	Mobile    string    `json:"mobile"`
	Code      string    `json:"-"` // Never expose OTP in JSON responses
	ExpiresAt time.Time `json:"expires_at"`
	IsUsed    bool      `json:"is_used"`
	Attempts  int       `json:"attempts"`
	CreatedAt time.Time `json:"created_at"`
}

// SendOTPRequest represents a request to send OTP
type SendOTPRequest struct {
	Mobile string `json:"mobile"`
}

// VerifyOTPRequest represents a request to verify OTP
type VerifyOTPRequest struct {
	Mobile string `json:"mobile"`
	OTP    string `json:"otp"`
}

// SendOTPResponse is returned after an OTP was dispatched. OTP is only
// populated when echoing is enabled in configuration.
type SendOTPResponse struct {
	Message  string `json:"message"`
	Channel  string `json:"channel"`
	Attempts int    `json:"attempts"`
	OTP      string `json:"otp,omitempty"`
}
