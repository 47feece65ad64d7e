package models

// TOTPSetupResponse is returned when an admin starts 2FA enrolment. The
// secret stays inactive until TOTPEnableRequest confirms a code.
type TOTPSetupResponse struct {
	Secret      string `json:"secret"`
	QRCode      string `json:"qr_code"` // data:image/png;base64 URI
	URL         string `json:"otpauth_url"`
	Issuer      string `json:"issuer"`
	AccountName string `json:"account_name"`
}

type TOTPEnableRequest struct {
	Code string `json:"code"`
}
