package repositories

import (
	"context"

	"aquagem-backend/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OTPRepository struct {
	DB *pgxpool.Pool
}

func NewOTPRepository(db *pgxpool.Pool) *OTPRepository {
	return &OTPRepository{DB: db}
}

// Create inserts a new OTP record
func (r *OTPRepository) Create(ctx context.Context, otp *models.OTPRequest) error {
	query := `
		INSERT INTO delivery_otps(mobile, otp_code, expires_at)
		VALUES($1, $2, $3)
		RETURNING id, created_at
	`

	return r.DB.QueryRow(ctx, query,
		otp.Mobile,
		otp.Code,
		otp.ExpiresAt,
	).Scan(&otp.ID, &otp.CreatedAt)
}

// GetLatestUnused retrieves the most recent unused OTP for a mobile number
func (r *OTPRepository) GetLatestUnused(ctx context.Context, mobile string) (*models.OTPRequest, error) {
	query := `
		SELECT id, mobile, otp_code, expires_at, is_used, attempts, created_at
		FROM delivery_otps
		WHERE mobile = $1 AND NOT is_used
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`

	var otp models.OTPRequest
	err := r.DB.QueryRow(ctx, query, mobile).Scan(
		&otp.ID,
		&otp.Mobile,
		&otp.Code,
		&otp.ExpiresAt,
		&otp.IsUsed,
		&otp.Attempts,
		&otp.CreatedAt,
	)

	if err != nil {
		return nil, err
	}

	return &otp, nil
}

// IncrementAttempts increments the verification attempt counter
func (r *OTPRepository) IncrementAttempts(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx, `UPDATE delivery_otps SET attempts = attempts + 1 WHERE id = $1`, id)
	return err
}

// MarkUsed consumes an OTP
func (r *OTPRepository) MarkUsed(ctx context.Context, id int) error {
	_, err := r.DB.Exec(ctx, `UPDATE delivery_otps SET is_used = TRUE WHERE id = $1`, id)
	return err
}

// InvalidatePrevious marks all outstanding OTPs for a mobile as used
func (r *OTPRepository) InvalidatePrevious(ctx context.Context, mobile string) error {
	_, err := r.DB.Exec(ctx, `UPDATE delivery_otps SET is_used = TRUE WHERE mobile = $1 AND NOT is_used`, mobile)
	return err
}

// CleanupExpired removes OTPs that expired more than a day ago
func (r *OTPRepository) CleanupExpired(ctx context.Context) (int64, error) {
	tag, err := r.DB.Exec(ctx, `DELETE FROM delivery_otps WHERE expires_at < NOW() - INTERVAL '1 day'`)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
