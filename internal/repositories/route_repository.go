package repositories

import (
	"context"

	"aquagem-backend/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RouteRepository struct {
	DB *pgxpool.Pool
}

func NewRouteRepository(db *pgxpool.Pool) *RouteRepository {
	return &RouteRepository{DB: db}
}

const routeColumns = `r.id, r.route_name, r.assigned_delivery_boy, r.areas, r.created_at, r.updated_at`

func scanRoute(row pgx.Row, extra ...interface{}) (*models.Route, error) {
	var rt models.Route
	dest := append([]interface{}{&rt.ID, &rt.Name, &rt.AssignedDeliveryBoy, &rt.Areas, &rt.CreatedAt, &rt.UpdatedAt}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &rt, nil
}

func (r *RouteRepository) Get(ctx context.Context, id int) (*models.Route, error) {
	return scanRoute(r.DB.QueryRow(ctx, `SELECT `+routeColumns+` FROM routes r WHERE r.id=$1`, id))
}

// List returns all routes ordered by name
func (r *RouteRepository) List(ctx context.Context) ([]*models.Route, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+routeColumns+` FROM routes r ORDER BY r.route_name, r.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var routes []*models.Route
	for rows.Next() {
		rt, err := scanRoute(rows)
		if err != nil {
			return nil, err
		}
		routes = append(routes, rt)
	}
	return routes, rows.Err()
}

// ListWithCounts returns routes with their agent name and active customer count
func (r *RouteRepository) ListWithCounts(ctx context.Context) ([]*models.RouteListItem, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+routeColumns+`, COALESCE(u.name, ''),
		        (SELECT COUNT(*) FROM customers c WHERE c.route_id = r.id AND c.is_active)
         FROM routes r
         LEFT JOIN users u ON u.id = r.assigned_delivery_boy
         ORDER BY r.route_name, r.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.RouteListItem
	for rows.Next() {
		var item models.RouteListItem
		rt, err := scanRoute(rows, &item.DeliveryBoyName, &item.CustomerCount)
		if err != nil {
			return nil, err
		}
		item.Route = *rt
		items = append(items, &item)
	}
	return items, rows.Err()
}

// GetByDeliveryBoy returns the route assigned to an agent, pgx.ErrNoRows if none
func (r *RouteRepository) GetByDeliveryBoy(ctx context.Context, deliveryBoyID int) (*models.Route, error) {
	return scanRoute(r.DB.QueryRow(ctx,
		`SELECT `+routeColumns+` FROM routes r WHERE r.assigned_delivery_boy=$1`, deliveryBoyID))
}

// AssignDeliveryBoy makes the agent the sole assignee of the route, clearing
// the agent from any route they held before, in one transaction
func (r *RouteRepository) AssignDeliveryBoy(ctx context.Context, routeID, deliveryBoyID int) (*models.Route, error) {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`UPDATE routes SET assigned_delivery_boy=NULL, updated_at=CURRENT_TIMESTAMP
         WHERE assigned_delivery_boy=$1 AND id<>$2`, deliveryBoyID, routeID); err != nil {
		return nil, err
	}

	rt, err := scanRoute(tx.QueryRow(ctx,
		`UPDATE routes r SET assigned_delivery_boy=$1, updated_at=CURRENT_TIMESTAMP
         WHERE r.id=$2
         RETURNING `+routeColumns, deliveryBoyID, routeID))
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return rt, nil
}
