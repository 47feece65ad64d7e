package repositories

import (
	"context"

	"aquagem-backend/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationRepository struct {
	DB *pgxpool.Pool
}

func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{DB: db}
}

func (r *NotificationRepository) Create(ctx context.Context, n *models.Notification) error {
	return r.DB.QueryRow(ctx,
		`INSERT INTO notifications(user_id, type, template, title, message, status, priority, admin_id)
         VALUES($1, $2, $3, NULLIF($4, ''), $5, $6, $7, NULLIF($8, 0))
         RETURNING id, sent_at`,
		n.UserID, n.Type, n.Template, n.Title, n.Message, n.Status, n.Priority, n.AdminID,
	).Scan(&n.ID, &n.SentAt)
}

// UpdateStatus records the dispatch result
func (r *NotificationRepository) UpdateStatus(ctx context.Context, id int, status, messageID string, retries int) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE notifications SET status=$1, message_id=NULLIF($2, ''), retries=$3 WHERE id=$4`,
		status, messageID, retries, id)
	return err
}

// ListForUser returns the most recent notifications for a user
func (r *NotificationRepository) ListForUser(ctx context.Context, userID, limit int) ([]*models.Notification, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT id, user_id, type, template, COALESCE(title, ''), message, status,
		        COALESCE(message_id, ''), retries, priority, COALESCE(admin_id, 0), sent_at
         FROM notifications WHERE user_id=$1
         ORDER BY sent_at DESC, id DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Template, &n.Title, &n.Message, &n.Status,
			&n.MessageID, &n.Retries, &n.Priority, &n.AdminID, &n.SentAt); err != nil {
			return nil, err
		}
		out = append(out, &n)
	}
	return out, rows.Err()
}
