package repository

import (
	"context"

	"github.com/techaway/backend/internal/domain"
	"github.com/techaway/backend/internal/persistence"
)

// RefreshTokenRepository persists single-use refresh token records. Only the
// sha256 hash of the token value ever reaches the database.
type RefreshTokenRepository interface {
	Create(ctx context.Context, token *domain.RefreshToken) error
	GetByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error)
	// Consume marks the record invalid if and only if it is still valid.
	// Returns false when the record was already invalid; two concurrent
	// redemptions race on this single conditional update and exactly one wins.
	Consume(ctx context.Context, id string) (bool, error)
	InvalidateAllForUser(ctx context.Context, userID string) error
	PurgeExpired(ctx context.Context) (int64, error)
}

type refreshTokenRepository struct {
	pool persistence.Querier
}

// NewRefreshTokenRepository constructs repository.
func NewRefreshTokenRepository(pool persistence.Querier) RefreshTokenRepository {
	return &refreshTokenRepository{pool: pool}
}

func (r *refreshTokenRepository) db(ctx context.Context) persistence.Querier {
	return persistence.QuerierFrom(ctx, r.pool)
}

func (r *refreshTokenRepository) Create(ctx context.Context, token *domain.RefreshToken) error {
	const query = `
        INSERT INTO refresh_tokens (token_hash, user_id)
        VALUES ($1,$2)
        RETURNING id, invalid, delete_at, created_at, updated_at`
	return r.db(ctx).QueryRow(ctx, query,
		token.TokenHash,
		token.UserID,
	).Scan(&token.ID, &token.Invalid, &token.DeleteAt, &token.CreatedAt, &token.UpdatedAt)
}

func (r *refreshTokenRepository) GetByHash(ctx context.Context, tokenHash string) (*domain.RefreshToken, error) {
	const query = `
        SELECT id, token_hash, user_id, invalid, delete_at, created_at, updated_at
        FROM refresh_tokens WHERE token_hash=$1`
	var token domain.RefreshToken
	if err := r.db(ctx).QueryRow(ctx, query, tokenHash).Scan(
		&token.ID,
		&token.TokenHash,
		&token.UserID,
		&token.Invalid,
		&token.DeleteAt,
		&token.CreatedAt,
		&token.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &token, nil
}

func (r *refreshTokenRepository) Consume(ctx context.Context, id string) (bool, error) {
	const query = `UPDATE refresh_tokens SET invalid=TRUE, updated_at=NOW() WHERE id=$1 AND invalid=FALSE`
	cmd, err := r.db(ctx).Exec(ctx, query, id)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *refreshTokenRepository) InvalidateAllForUser(ctx context.Context, userID string) error {
	const query = `UPDATE refresh_tokens SET invalid=TRUE, updated_at=NOW() WHERE user_id=$1 AND invalid=FALSE`
	_, err := r.db(ctx).Exec(ctx, query, userID)
	return err
}

// PurgeExpired removes rows past their retention horizon, independent of the
// token's own expiry claim.
func (r *refreshTokenRepository) PurgeExpired(ctx context.Context) (int64, error) {
	cmd, err := r.db(ctx).Exec(ctx, `DELETE FROM refresh_tokens WHERE delete_at <= NOW()`)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
