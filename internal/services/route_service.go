package services

import (
	"context"
	"fmt"
	"log"

	"aquagem-backend/internal/cache"
	"aquagem-backend/internal/models"
)

type RouteService struct {
	Routes RouteStore
	Users  UserStore
}

func NewRouteService(routes RouteStore, users UserStore) *RouteService {
	return &RouteService{Routes: routes, Users: users}
}

// ListRoutes returns every route with its agent name and active customer count
func (s *RouteService) ListRoutes(ctx context.Context) ([]*models.RouteListItem, error) {
	items, err := s.Routes.ListWithCounts(ctx)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*models.RouteListItem{}
	}
	return items, nil
}

// RouteForAgent returns the route currently assigned to a delivery boy
func (s *RouteService) RouteForAgent(ctx context.Context, agentID int) (*models.Route, error) {
	route, err := s.Routes.GetByDeliveryBoy(ctx, agentID)
	if err != nil {
		return nil, fmt.Errorf("no route assigned: %w", notFound(err))
	}
	return route, nil
}

// AssignDeliveryBoy makes the agent the sole assignee of the route. Any
// route the agent held before is released.
func (s *RouteService) AssignDeliveryBoy(ctx context.Context, routeID int, req *models.AssignDeliveryBoyRequest) (*models.Route, error) {
	if req.DeliveryBoyID <= 0 {
		return nil, fmt.Errorf("%w: delivery_boy_id is required", ErrInvalidInput)
	}
	if _, err := s.Routes.Get(ctx, routeID); err != nil {
		return nil, fmt.Errorf("route %d: %w", routeID, notFound(err))
	}

	agent, err := s.Users.Get(ctx, req.DeliveryBoyID)
	if err != nil {
		return nil, fmt.Errorf("delivery boy %d: %w", req.DeliveryBoyID, notFound(err))
	}
	if agent.Role != models.RoleDeliveryBoy {
		return nil, fmt.Errorf("%w: user %d is not a delivery boy", ErrInvalidInput, agent.ID)
	}
	if !agent.IsActive {
		return nil, fmt.Errorf("%w: delivery boy %d is inactive", ErrInvalidInput, agent.ID)
	}

	route, err := s.Routes.AssignDeliveryBoy(ctx, routeID, agent.ID)
	if err != nil {
		return nil, fmt.Errorf("assign route %d: %w", routeID, notFound(err))
	}
	log.Printf("[Routes] %s assigned to %s (#%d)", route.Name, agent.Name, agent.ID)
	cache.InvalidateDirectoryCaches(ctx)
	return route, nil
}
