package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"aquagem-backend/internal/metrics"
	"aquagem-backend/internal/models"
	"aquagem-backend/internal/notify"
)

// NotificationService sends operator messages to delivery boys and keeps a
// record of each one.
type NotificationService struct {
	Notifications NotificationStore
	Users         UserStore
	Senders       map[string]notify.Sender // keyed by channel
	Retry         notify.Retry
}

func NewNotificationService(notifications NotificationStore, users UserStore, retry notify.Retry, senders ...notify.Sender) *NotificationService {
	byChannel := make(map[string]notify.Sender, len(senders))
	for _, s := range senders {
		byChannel[s.Channel()] = s
	}
	return &NotificationService{
		Notifications: notifications,
		Users:         users,
		Senders:       byChannel,
		Retry:         retry,
	}
}

// Notify persists the notification, then delivers it on the requested
// channel. A delivery failure is recorded on the notification and is not
// returned as an error.
func (s *NotificationService) Notify(ctx context.Context, adminID int, req *models.NotifyRequest) (*models.Notification, error) {
	message := strings.TrimSpace(req.Message)
	if req.DeliveryBoyID <= 0 || message == "" {
		return nil, fmt.Errorf("%w: delivery_boy_id and message are required", ErrInvalidInput)
	}
	channel := strings.ToLower(strings.TrimSpace(req.Type))
	if channel == "" {
		channel = models.ChannelWhatsApp
	}
	sender, ok := s.Senders[channel]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported notification type %q", ErrInvalidInput, req.Type)
	}

	agent, err := s.Users.Get(ctx, req.DeliveryBoyID)
	if err != nil {
		return nil, fmt.Errorf("delivery boy %d: %w", req.DeliveryBoyID, notFound(err))
	}
	if agent.Role != models.RoleDeliveryBoy {
		return nil, fmt.Errorf("%w: user %d is not a delivery boy", ErrInvalidInput, agent.ID)
	}

	title := req.Title
	if title == "" {
		title = "Message from admin"
	}
	n := &models.Notification{
		UserID:   agent.ID,
		Type:     channel,
		Template: "custom",
		Title:    title,
		Message:  message,
		Status:   models.NotificationQueued,
		Priority: "normal",
		AdminID:  adminID,
	}
	if err := s.Notifications.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to store notification: %w", err)
	}

	target := agent.WhatsApp
	if channel != models.ChannelWhatsApp || target == "" {
		target = agent.Mobile
	}
	out, err := s.Retry.Deliver(ctx, sender, target, notify.Payload{
		Template: "admin_message",
		Title:    title,
		Message:  message,
		Params:   []string{agent.Name, message},
	})
	n.Retries = out.Attempts
	if err != nil {
		log.Printf("[Notify] notification #%d to %s failed: %v", n.ID, agent.Name, err)
		n.Status = models.NotificationFailed
		metrics.NotificationsSent.WithLabelValues(channel, "failed").Inc()
	} else {
		n.Status = models.NotificationSent
		n.MessageID = out.MessageID
		metrics.NotificationsSent.WithLabelValues(channel, "sent").Inc()
	}

	if err := s.Notifications.UpdateStatus(ctx, n.ID, n.Status, n.MessageID, n.Retries); err != nil {
		log.Printf("[Notify] failed to update notification #%d: %v", n.ID, err)
	}
	return n, nil
}

// DefaultInboxLimit caps Inbox when no limit is given
const DefaultInboxLimit = 50

// Inbox returns the most recent notifications sent to a user, newest first.
func (s *NotificationService) Inbox(ctx context.Context, userID, limit int) ([]*models.Notification, error) {
	if limit <= 0 || limit > DefaultInboxLimit {
		limit = DefaultInboxLimit
	}
	items, err := s.Notifications.ListForUser(ctx, userID, limit)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*models.Notification{}
	}
	return items, nil
}
