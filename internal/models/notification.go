package models

import "time"

// Notification channels
const (
	ChannelWhatsApp = "whatsapp"
	ChannelSMS      = "sms"
	ChannelPush     = "push"
)

// Notification status values
const (
	NotificationQueued = "queued"
	NotificationSent   = "sent"
	NotificationFailed = "failed"
)

type Notification struct {
	ID        int       `json:"id"`
	UserID    int       `json:"user_id"`
	Type      string    `json:"type"`
	Template  string    `json:"template"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	MessageID string    `json:"message_id,omitempty"`
	Retries   int       `json:"retries"`
	Priority  string    `json:"priority"`
	AdminID   int       `json:"admin_id"`
	SentAt    time.Time `json:"sent_at"`
}

// NotifyRequest represents the request body for notifying a delivery boy
type NotifyRequest struct {
	DeliveryBoyID int    `json:"delivery_boy_id"`
	Message       string `json:"message"`
	Type          string `json:"type"`
	Title         string `json:"title"`
}
