package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/techaway/backend/internal/domain"
	"github.com/techaway/backend/internal/persistence"
)

// UserRepository defines persistence access for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Update(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	MarkEmailVerified(ctx context.Context, id string) error
	UpdatePasswordHash(ctx context.Context, id, hash string) error
	SetStripeCustomerID(ctx context.Context, id, stripeCustomerID string) error
	Search(ctx context.Context, query string, limit, offset int) ([]domain.User, error)
}

type userRepository struct {
	pool persistence.Querier
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(pool persistence.Querier) UserRepository {
	return &userRepository{pool: pool}
}

func (r *userRepository) db(ctx context.Context) persistence.Querier {
	return persistence.QuerierFrom(ctx, r.pool)
}

const userColumns = `id, username, email, password_hash, roles, name, address, phone,
               email_verified, stripe_customer_id, created_at, updated_at`

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (username, email, password_hash, roles, name, address, phone, email_verified)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
        RETURNING id, created_at, updated_at`

	roles := rolesToStrings(user.Roles)
	return r.db(ctx).QueryRow(ctx, query,
		user.Username,
		user.Email,
		user.PasswordHash,
		roles,
		user.Name,
		user.Address,
		user.Phone,
		user.EmailVerified,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *userRepository) Update(ctx context.Context, user *domain.User) error {
	const query = `
        UPDATE users SET username=$1, email=$2, roles=$3, name=$4, address=$5, phone=$6, updated_at=NOW()
        WHERE id=$7`

	cmd, err := r.db(ctx).Exec(ctx, query,
		user.Username,
		user.Email,
		rolesToStrings(user.Roles),
		user.Name,
		user.Address,
		user.Phone,
		user.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE id=$1`, id)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE username=$1`, username)
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.fetchSingle(ctx, `SELECT `+userColumns+` FROM users WHERE email=$1`, email)
}

func (r *userRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.User, error) {
	var (
		user  domain.User
		roles []string
	)
	if err := r.db(ctx).QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&roles,
		&user.Name,
		&user.Address,
		&user.Phone,
		&user.EmailVerified,
		&user.StripeCustomerID,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	user.Roles = rolesFromStrings(roles)
	return &user, nil
}

func (r *userRepository) MarkEmailVerified(ctx context.Context, id string) error {
	const query = `UPDATE users SET email_verified=TRUE, updated_at=NOW() WHERE id=$1`
	cmd, err := r.db(ctx).Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) UpdatePasswordHash(ctx context.Context, id, hash string) error {
	const query = `UPDATE users SET password_hash=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.db(ctx).Exec(ctx, query, hash, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) SetStripeCustomerID(ctx context.Context, id, stripeCustomerID string) error {
	const query = `UPDATE users SET stripe_customer_id=$1, updated_at=NOW() WHERE id=$2`
	cmd, err := r.db(ctx).Exec(ctx, query, stripeCustomerID, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *userRepository) Search(ctx context.Context, search string, limit, offset int) ([]domain.User, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT ` + userColumns + `
        FROM users
        WHERE $1 = '' OR to_tsvector('simple', name || ' ' || email) @@ plainto_tsquery('simple', $1)
        ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db(ctx).Query(ctx, query, search, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.User
	for rows.Next() {
		var (
			user  domain.User
			roles []string
		)
		if err := rows.Scan(
			&user.ID,
			&user.Username,
			&user.Email,
			&user.PasswordHash,
			&roles,
			&user.Name,
			&user.Address,
			&user.Phone,
			&user.EmailVerified,
			&user.StripeCustomerID,
			&user.CreatedAt,
			&user.UpdatedAt,
		); err != nil {
			return nil, err
		}
		user.Roles = rolesFromStrings(roles)
		result = append(result, user)
	}
	return result, rows.Err()
}

func rolesToStrings(roles []domain.Role) []string {
	out := make([]string, 0, len(roles))
	for _, role := range roles {
		out = append(out, string(role))
	}
	return out
}

func rolesFromStrings(roles []string) []domain.Role {
	out := make([]domain.Role, 0, len(roles))
	for _, role := range roles {
		out = append(out, domain.Role(role))
	}
	return out
}
