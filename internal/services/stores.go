package services

import (
	"context"

	"aquagem-backend/internal/models"
	"aquagem-backend/internal/scheduling"
)

// The services depend on these narrow views of the repositories so tests
// can run them against in-memory fakes.

type UserStore interface {
	Get(ctx context.Context, id int) (*models.User, error)
	GetByMobile(ctx context.Context, mobile string) (*models.User, error)
	Create(ctx context.Context, u *models.User) error
	ListByRole(ctx context.Context, role string, activeOnly bool) ([]*models.User, error)
	SetTOTPSecret(ctx context.Context, userID int, secret string) error
	EnableTOTP(ctx context.Context, userID int) error
}

type CustomerStore interface {
	Get(ctx context.Context, id int) (*models.Customer, error)
	RouteAssignments(ctx context.Context) (map[int]*int, error)
	UpdateSchedule(ctx context.Context, id int, policy *models.SchedulePolicy) error
	UpdateStatus(ctx context.Context, id int, isActive bool) error
	UpdateRoute(ctx context.Context, id int, routeID *int) error
	SetJarBalance(ctx context.Context, id, balance int) error
}

type RouteStore interface {
	Get(ctx context.Context, id int) (*models.Route, error)
	ListWithCounts(ctx context.Context) ([]*models.RouteListItem, error)
	GetByDeliveryBoy(ctx context.Context, deliveryBoyID int) (*models.Route, error)
	AssignDeliveryBoy(ctx context.Context, routeID, deliveryBoyID int) (*models.Route, error)
}

type DeliveryStore interface {
	scheduling.Ledger
	Create(ctx context.Context, d *models.Delivery) error
	Get(ctx context.Context, id int) (*models.Delivery, error)
	AttachProof(ctx context.Context, id int, proof models.AttachProofRequest) (*models.Delivery, error)
}

type OTPStore interface {
	Create(ctx context.Context, otp *models.OTPRequest) error
	GetLatestUnused(ctx context.Context, mobile string) (*models.OTPRequest, error)
	IncrementAttempts(ctx context.Context, id int) error
	MarkUsed(ctx context.Context, id int) error
	InvalidatePrevious(ctx context.Context, mobile string) error
}

type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
	UpdateStatus(ctx context.Context, id int, status, messageID string, retries int) error
	ListForUser(ctx context.Context, userID, limit int) ([]*models.Notification, error)
}
