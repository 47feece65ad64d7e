package scheduling

import (
	"context"

	"aquagem-backend/internal/models"
)

// Directory is the read-only source of customers, routes and agents.
type Directory interface {
	FetchActiveCustomers(ctx context.Context, filter models.RouteFilter) ([]*models.Customer, error)
	FetchRoutes(ctx context.Context) ([]*models.Route, error)
	FetchDeliveryBoys(ctx context.Context) ([]*models.User, error)
}

// Ledger is the read-only source of recorded delivery attempts.
type Ledger interface {
	FetchDeliveries(ctx context.Context, dateRange models.DateRange, filter models.DeliveryFilter) ([]*models.Delivery, error)
}

// CompletionListener is notified after the completion workflow has
// persisted a delivery. Listeners must not fail the write.
type CompletionListener interface {
	OnDeliveryCompleted(ctx context.Context, delivery *models.Delivery)
}

// CompletionFunc adapts a function to CompletionListener.
type CompletionFunc func(ctx context.Context, delivery *models.Delivery)

func (f CompletionFunc) OnDeliveryCompleted(ctx context.Context, delivery *models.Delivery) {
	f(ctx, delivery)
}
