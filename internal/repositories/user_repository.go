package repositories

import (
	"context"

	"aquagem-backend/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	DB *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{DB: db}
}

const userColumns = `id, role, name, mobile, COALESCE(whatsapp, ''), COALESCE(password_hash, ''),
	COALESCE(totp_secret, ''), totp_enabled, is_active, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Role, &u.Name, &u.Mobile, &u.WhatsApp, &u.PasswordHash,
		&u.TOTPSecret, &u.TOTPEnabled, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	if u.Role == "" {
		u.Role = models.RoleDeliveryBoy // Default role
	}
	return r.DB.QueryRow(ctx,
		`INSERT INTO users(role, name, mobile, whatsapp, password_hash, is_active)
         VALUES($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6)
         RETURNING id, created_at, updated_at`,
		u.Role, u.Name, u.Mobile, u.WhatsApp, u.PasswordHash, u.IsActive,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
}

func (r *UserRepository) Get(ctx context.Context, id int) (*models.User, error) {
	return scanUser(r.DB.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id))
}

func (r *UserRepository) GetByMobile(ctx context.Context, mobile string) (*models.User, error) {
	return scanUser(r.DB.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE mobile=$1`, mobile))
}

// ListByRole returns users of a role, active ones only when activeOnly is set
func (r *UserRepository) ListByRole(ctx context.Context, role string, activeOnly bool) ([]*models.User, error) {
	rows, err := r.DB.Query(ctx,
		`SELECT `+userColumns+` FROM users
         WHERE role=$1 AND (is_active OR NOT $2)
         ORDER BY name, id`, role, activeOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// CountActiveByRole counts active users of a role
func (r *UserRepository) CountActiveByRole(ctx context.Context, role string) (int, error) {
	var n int
	err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE role=$1 AND is_active`, role).Scan(&n)
	return n, err
}

func (r *UserRepository) SetTOTPSecret(ctx context.Context, userID int, secret string) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE users SET totp_secret=$1, totp_enabled=FALSE, updated_at=CURRENT_TIMESTAMP WHERE id=$2`,
		secret, userID)
	return err
}

func (r *UserRepository) EnableTOTP(ctx context.Context, userID int) error {
	_, err := r.DB.Exec(ctx,
		`UPDATE users SET totp_enabled=TRUE, updated_at=CURRENT_TIMESTAMP WHERE id=$1 AND totp_secret IS NOT NULL`,
		userID)
	return err
}
