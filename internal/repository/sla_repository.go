package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/techaway/backend/internal/domain"
	"github.com/techaway/backend/internal/persistence"
)

// SLARepository encapsulates service-level-agreement persistence.
type SLARepository interface {
	Create(ctx context.Context, sla *domain.ServiceLevelAgreement) error
	Update(ctx context.Context, sla *domain.ServiceLevelAgreement) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.ServiceLevelAgreement, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]domain.ServiceLevelAgreement, error)
	List(ctx context.Context, limit, offset int) ([]domain.ServiceLevelAgreement, error)
}

type slaRepository struct {
	pool persistence.Querier
}

// NewSLARepository instantiates repository.
func NewSLARepository(pool persistence.Querier) SLARepository {
	return &slaRepository{pool: pool}
}

func (r *slaRepository) db(ctx context.Context) persistence.Querier {
	return persistence.QuerierFrom(ctx, r.pool)
}

const slaColumns = `id, type, price_modifier, fixed_price, due_within_days, description, created_at, updated_at`

func (r *slaRepository) Create(ctx context.Context, sla *domain.ServiceLevelAgreement) error {
	const query = `
        INSERT INTO service_level_agreements (type, price_modifier, fixed_price, due_within_days, description)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.db(ctx).QueryRow(ctx, query,
		sla.Type,
		sla.PriceModifier,
		sla.FixedPrice,
		sla.DueWithinDays,
		sla.Description,
	).Scan(&sla.ID, &sla.CreatedAt, &sla.UpdatedAt)
}

func (r *slaRepository) Update(ctx context.Context, sla *domain.ServiceLevelAgreement) error {
	const query = `
        UPDATE service_level_agreements SET type=$1, price_modifier=$2, fixed_price=$3,
            due_within_days=$4, description=$5, updated_at=NOW()
        WHERE id=$6`
	cmd, err := r.db(ctx).Exec(ctx, query,
		sla.Type,
		sla.PriceModifier,
		sla.FixedPrice,
		sla.DueWithinDays,
		sla.Description,
		sla.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *slaRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db(ctx).Exec(ctx, `DELETE FROM service_level_agreements WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *slaRepository) GetByID(ctx context.Context, id string) (*domain.ServiceLevelAgreement, error) {
	var sla domain.ServiceLevelAgreement
	if err := r.db(ctx).QueryRow(ctx, `SELECT `+slaColumns+` FROM service_level_agreements WHERE id=$1`, id).Scan(
		&sla.ID,
		&sla.Type,
		&sla.PriceModifier,
		&sla.FixedPrice,
		&sla.DueWithinDays,
		&sla.Description,
		&sla.CreatedAt,
		&sla.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &sla, nil
}

func (r *slaRepository) GetByIDs(ctx context.Context, ids []string) (map[string]domain.ServiceLevelAgreement, error) {
	result := make(map[string]domain.ServiceLevelAgreement, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	rows, err := r.db(ctx).Query(ctx, `SELECT `+slaColumns+` FROM service_level_agreements WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var sla domain.ServiceLevelAgreement
		if err := rows.Scan(
			&sla.ID,
			&sla.Type,
			&sla.PriceModifier,
			&sla.FixedPrice,
			&sla.DueWithinDays,
			&sla.Description,
			&sla.CreatedAt,
			&sla.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result[sla.ID] = sla
	}
	return result, rows.Err()
}

func (r *slaRepository) List(ctx context.Context, limit, offset int) ([]domain.ServiceLevelAgreement, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT ` + slaColumns + `
        FROM service_level_agreements
        ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	rows, err := r.db(ctx).Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ServiceLevelAgreement
	for rows.Next() {
		var sla domain.ServiceLevelAgreement
		if err := rows.Scan(
			&sla.ID,
			&sla.Type,
			&sla.PriceModifier,
			&sla.FixedPrice,
			&sla.DueWithinDays,
			&sla.Description,
			&sla.CreatedAt,
			&sla.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, sla)
	}
	return result, rows.Err()
}
