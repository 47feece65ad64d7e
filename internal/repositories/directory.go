package repositories

import (
	"context"

	"aquagem-backend/internal/models"
	"aquagem-backend/internal/scheduling"
)

// Directory serves the scheduling core's read side from the customer, route
// and user tables.
type Directory struct {
	Customers *CustomerRepository
	Routes    *RouteRepository
	Users     *UserRepository
}

var (
	_ scheduling.Directory = (*Directory)(nil)
	_ scheduling.Ledger    = (*DeliveryRepository)(nil)
)

func NewDirectory(customers *CustomerRepository, routes *RouteRepository, users *UserRepository) *Directory {
	return &Directory{Customers: customers, Routes: routes, Users: users}
}

func (d *Directory) FetchActiveCustomers(ctx context.Context, filter models.RouteFilter) ([]*models.Customer, error) {
	return d.Customers.ListActive(ctx, filter)
}

func (d *Directory) FetchRoutes(ctx context.Context) ([]*models.Route, error) {
	return d.Routes.List(ctx)
}

// FetchDeliveryBoys includes inactive agents so historical records still resolve to a name
func (d *Directory) FetchDeliveryBoys(ctx context.Context) ([]*models.User, error) {
	return d.Users.ListByRole(ctx, models.RoleDeliveryBoy, false)
}
