package repositories

import (
	"context"

	"aquagem-backend/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DeliveryRepository struct {
	DB *pgxpool.Pool
}

func NewDeliveryRepository(db *pgxpool.Pool) *DeliveryRepository {
	return &DeliveryRepository{DB: db}
}

const deliveryColumns = `id, customer_id, delivery_boy_id, delivery_date, delivered_qty, returned_qty,
	status, COALESCE(notes, ''), COALESCE(photo_url, ''), COALESCE(signature_url, ''),
	gps_lat, gps_lng, created_at`

func scanDelivery(row pgx.Row) (*models.Delivery, error) {
	var (
		d        models.Delivery
		status   string
		lat, lng *float64
	)
	err := row.Scan(&d.ID, &d.CustomerID, &d.DeliveryBoyID, &d.Date, &d.DeliveredQty, &d.ReturnedQty,
		&status, &d.Notes, &d.PhotoURL, &d.SignatureURL, &lat, &lng, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	d.Status = models.DeliveryStatus(status)
	if lat != nil && lng != nil {
		d.GPS = &models.GPSLocation{Lat: *lat, Lng: *lng}
	}
	return &d, nil
}

// Create writes the delivery record and moves the customer's jar balance by
// delivered minus returned in the same transaction
func (r *DeliveryRepository) Create(ctx context.Context, d *models.Delivery) error {
	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	err = tx.QueryRow(ctx,
		`INSERT INTO deliveries(customer_id, delivery_boy_id, delivery_date, delivered_qty, returned_qty, status, notes)
         VALUES($1, $2, $3, $4, $5, $6, NULLIF($7, ''))
         RETURNING id, created_at`,
		d.CustomerID, d.DeliveryBoyID, d.Date, d.DeliveredQty, d.ReturnedQty, string(d.Status), d.Notes,
	).Scan(&d.ID, &d.CreatedAt)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx,
		`UPDATE customers SET jar_balance = jar_balance + $1, updated_at=CURRENT_TIMESTAMP WHERE id=$2`,
		d.NetJars(), d.CustomerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	return tx.Commit(ctx)
}

func (r *DeliveryRepository) Get(ctx context.Context, id int) (*models.Delivery, error) {
	return scanDelivery(r.DB.QueryRow(ctx, `SELECT `+deliveryColumns+` FROM deliveries WHERE id=$1`, id))
}

// FetchDeliveries returns ledger records inside the range, oldest first.
// Empty filter fields match everything.
func (r *DeliveryRepository) FetchDeliveries(ctx context.Context, rng models.DateRange, filter models.DeliveryFilter) ([]*models.Delivery, error) {
	var from, to interface{}
	if !rng.From.IsZero() {
		from = rng.From
	}
	if !rng.To.IsZero() {
		to = rng.To
	}
	statuses := make([]string, 0, len(filter.Statuses))
	for _, s := range filter.Statuses {
		statuses = append(statuses, string(s))
	}
	customerIDs := filter.CustomerIDs
	if customerIDs == nil {
		customerIDs = []int{}
	}

	rows, err := r.DB.Query(ctx,
		`SELECT `+deliveryColumns+` FROM deliveries
         WHERE ($1::timestamptz IS NULL OR delivery_date >= $1)
           AND ($2::timestamptz IS NULL OR delivery_date <= $2)
           AND ($3 = 0 OR delivery_boy_id = $3)
           AND (cardinality($4::int[]) = 0 OR customer_id = ANY($4))
           AND (cardinality($5::text[]) = 0 OR status = ANY($5))
         ORDER BY delivery_date, id`,
		from, to, filter.DeliveryBoyID, customerIDs, statuses)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deliveries []*models.Delivery
	for rows.Next() {
		d, err := scanDelivery(rows)
		if err != nil {
			return nil, err
		}
		deliveries = append(deliveries, d)
	}
	return deliveries, rows.Err()
}

// AttachProof sets the proof fields; empty values leave the stored ones untouched
func (r *DeliveryRepository) AttachProof(ctx context.Context, id int, proof models.AttachProofRequest) (*models.Delivery, error) {
	var lat, lng *float64
	if proof.GPS != nil {
		lat, lng = &proof.GPS.Lat, &proof.GPS.Lng
	}
	return scanDelivery(r.DB.QueryRow(ctx,
		`UPDATE deliveries SET
             photo_url = COALESCE(NULLIF($1, ''), photo_url),
             signature_url = COALESCE(NULLIF($2, ''), signature_url),
             gps_lat = COALESCE($3, gps_lat),
             gps_lng = COALESCE($4, gps_lng)
         WHERE id=$5
         RETURNING `+deliveryColumns,
		proof.PhotoURL, proof.SignatureURL, lat, lng, id))
}
