package repositories

import (
	"context"
	"time"

	"aquagem-backend/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type CustomerRepository struct {
	DB *pgxpool.Pool
}

func NewCustomerRepository(db *pgxpool.Pool) *CustomerRepository {
	return &CustomerRepository{DB: db}
}

const customerColumns = `id, name, mobile, COALESCE(whatsapp, ''), address, route_id,
	schedule_type, custom_days, schedule_anchor, security_deposit::float8, jar_balance,
	COALESCE(delivery_instructions, ''), is_active, created_at, updated_at`

func scanCustomer(row pgx.Row) (*models.Customer, error) {
	var (
		c          models.Customer
		kind       string
		customDays []string
		anchor     *time.Time
	)
	err := row.Scan(&c.ID, &c.Name, &c.Mobile, &c.WhatsApp, &c.Address, &c.RouteID,
		&kind, &customDays, &anchor, &c.SecurityDeposit, &c.JarBalance,
		&c.DeliveryInstructions, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	c.Schedule = &models.SchedulePolicy{Kind: models.ScheduleKind(kind), AnchorDate: anchor}
	if c.Schedule.Kind == models.ScheduleCustom {
		c.Schedule.CustomDays = customDays
	}
	return &c, nil
}

func collectCustomers(rows pgx.Rows) ([]*models.Customer, error) {
	defer rows.Close()

	var customers []*models.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

func (r *CustomerRepository) Get(ctx context.Context, id int) (*models.Customer, error) {
	return scanCustomer(r.DB.QueryRow(ctx, `SELECT `+customerColumns+` FROM customers WHERE id=$1`, id))
}

// ListActive returns active customers matching the route filter, in id order
func (r *CustomerRepository) ListActive(ctx context.Context, filter models.RouteFilter) ([]*models.Customer, error) {
	if filter.IsEmpty() {
		rows, err := r.DB.Query(ctx,
			`SELECT `+customerColumns+` FROM customers WHERE is_active ORDER BY id`)
		if err != nil {
			return nil, err
		}
		return collectCustomers(rows)
	}

	rows, err := r.DB.Query(ctx,
		`SELECT `+customerColumns+` FROM customers
         WHERE is_active AND (route_id = ANY($1) OR ($2 AND route_id IS NULL))
         ORDER BY id`, filter.RouteIDs, filter.Unassigned)
	if err != nil {
		return nil, err
	}
	return collectCustomers(rows)
}

// RouteAssignments maps every customer (active or not) to its route
func (r *CustomerRepository) RouteAssignments(ctx context.Context) (map[int]*int, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, route_id FROM customers`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int]*int)
	for rows.Next() {
		var id int
		var routeID *int
		if err := rows.Scan(&id, &routeID); err != nil {
			return nil, err
		}
		out[id] = routeID
	}
	return out, rows.Err()
}

// UpdateSchedule replaces the schedule policy; returns pgx.ErrNoRows for unknown ids
func (r *CustomerRepository) UpdateSchedule(ctx context.Context, id int, policy *models.SchedulePolicy) error {
	days := policy.CustomDays
	if days == nil {
		days = []string{}
	}
	tag, err := r.DB.Exec(ctx,
		`UPDATE customers SET schedule_type=$1, custom_days=$2, schedule_anchor=$3, updated_at=CURRENT_TIMESTAMP
         WHERE id=$4`,
		string(policy.Kind), days, policy.AnchorDate, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *CustomerRepository) UpdateStatus(ctx context.Context, id int, isActive bool) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE customers SET is_active=$1, updated_at=CURRENT_TIMESTAMP WHERE id=$2`, isActive, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// SetJarBalance overwrites the balance. Deliveries adjust it incrementally
// in DeliveryRepository.Create; this is the admin correction path.
func (r *CustomerRepository) SetJarBalance(ctx context.Context, id, balance int) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE customers SET jar_balance=$1, updated_at=CURRENT_TIMESTAMP WHERE id=$2`, balance, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *CustomerRepository) UpdateRoute(ctx context.Context, id int, routeID *int) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE customers SET route_id=$1, updated_at=CURRENT_TIMESTAMP WHERE id=$2`, routeID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
