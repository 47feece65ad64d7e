package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"aquagem-backend/internal/cache"
	"aquagem-backend/internal/models"
	"aquagem-backend/internal/scheduling"
)

// CustomerService owns the admin write path for schedule, status and route
type CustomerService struct {
	Customers CustomerStore
	Routes    RouteStore
}

func NewCustomerService(customers CustomerStore, routes RouteStore) *CustomerService {
	return &CustomerService{Customers: customers, Routes: routes}
}

func (s *CustomerService) GetCustomer(ctx context.Context, id int) (*models.Customer, error) {
	c, err := s.Customers.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("customer %d: %w", id, notFound(err))
	}
	return c, nil
}

// UpdateSchedule validates and stores a new delivery schedule
func (s *CustomerService) UpdateSchedule(ctx context.Context, id int, req *models.UpdateScheduleRequest) (*models.Customer, error) {
	policy, err := scheduling.NormalizePolicy(req.Type, req.CustomDays, req.AnchorDate)
	if err != nil {
		if errors.Is(err, scheduling.ErrInvalidPolicy) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return nil, err
	}

	if err := s.Customers.UpdateSchedule(ctx, id, policy); err != nil {
		return nil, fmt.Errorf("customer %d: %w", id, notFound(err))
	}
	cache.InvalidateDirectoryCaches(ctx)
	return s.GetCustomer(ctx, id)
}

// UpdateStatus activates or deactivates a customer
func (s *CustomerService) UpdateStatus(ctx context.Context, id int, req *models.UpdateStatusRequest) (*models.Customer, error) {
	if req.IsActive == nil {
		return nil, fmt.Errorf("%w: is_active is required", ErrInvalidInput)
	}
	if err := s.Customers.UpdateStatus(ctx, id, *req.IsActive); err != nil {
		return nil, fmt.Errorf("customer %d: %w", id, notFound(err))
	}
	cache.InvalidateDirectoryCaches(ctx)
	return s.GetCustomer(ctx, id)
}

// AssignRoute moves a customer onto a route, or off every route when RouteID is nil
func (s *CustomerService) AssignRoute(ctx context.Context, id int, req *models.AssignRouteRequest) (*models.Customer, error) {
	if req.RouteID != nil {
		if _, err := s.Routes.Get(ctx, *req.RouteID); err != nil {
			if errors.Is(notFound(err), ErrNotFound) {
				return nil, fmt.Errorf("%w: route %d does not exist", ErrInvalidInput, *req.RouteID)
			}
			return nil, err
		}
	}
	if err := s.Customers.UpdateRoute(ctx, id, req.RouteID); err != nil {
		return nil, fmt.Errorf("customer %d: %w", id, notFound(err))
	}
	cache.InvalidateDirectoryCaches(ctx)
	return s.GetCustomer(ctx, id)
}

// UpdateJarBalance replaces a customer's jar balance after a physical count
func (s *CustomerService) UpdateJarBalance(ctx context.Context, id int, req *models.UpdateJarBalanceRequest) (*models.Customer, error) {
	if req.JarBalance == nil {
		return nil, fmt.Errorf("%w: jar_balance is required", ErrInvalidInput)
	}
	before, err := s.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := before.JarBalance

	if err := s.Customers.SetJarBalance(ctx, id, *req.JarBalance); err != nil {
		return nil, fmt.Errorf("customer %d: %w", id, notFound(err))
	}
	log.Printf("[Customer] jar balance for %d corrected %d -> %d", id, previous, *req.JarBalance)
	return s.GetCustomer(ctx, id)
}
