package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/techaway/backend/internal/domain"
	"github.com/techaway/backend/internal/persistence"
)

// ServiceRepository encapsulates catalog service persistence.
type ServiceRepository interface {
	Create(ctx context.Context, svc *domain.Service) error
	Update(ctx context.Context, svc *domain.Service) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Service, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]domain.Service, error)
	Search(ctx context.Context, search string, limit, offset int) ([]domain.Service, error)
}

type serviceRepository struct {
	pool persistence.Querier
}

// NewServiceRepository instantiates repository.
func NewServiceRepository(pool persistence.Querier) ServiceRepository {
	return &serviceRepository{pool: pool}
}

func (r *serviceRepository) db(ctx context.Context) persistence.Querier {
	return persistence.QuerierFrom(ctx, r.pool)
}

const serviceColumns = `id, title, label, price, category, service_type, description, created_at, updated_at`

func (r *serviceRepository) Create(ctx context.Context, svc *domain.Service) error {
	const query = `
        INSERT INTO services (title, label, price, category, service_type, description)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.db(ctx).QueryRow(ctx, query,
		svc.Title,
		svc.Label,
		svc.Price,
		svc.Category,
		svc.ServiceType,
		svc.Description,
	).Scan(&svc.ID, &svc.CreatedAt, &svc.UpdatedAt)
}

func (r *serviceRepository) Update(ctx context.Context, svc *domain.Service) error {
	const query = `
        UPDATE services SET title=$1, label=$2, price=$3, category=$4, service_type=$5,
            description=$6, updated_at=NOW()
        WHERE id=$7`
	cmd, err := r.db(ctx).Exec(ctx, query,
		svc.Title,
		svc.Label,
		svc.Price,
		svc.Category,
		svc.ServiceType,
		svc.Description,
		svc.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *serviceRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db(ctx).Exec(ctx, `DELETE FROM services WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *serviceRepository) GetByID(ctx context.Context, id string) (*domain.Service, error) {
	var svc domain.Service
	if err := r.db(ctx).QueryRow(ctx, `SELECT `+serviceColumns+` FROM services WHERE id=$1`, id).Scan(
		&svc.ID,
		&svc.Title,
		&svc.Label,
		&svc.Price,
		&svc.Category,
		&svc.ServiceType,
		&svc.Description,
		&svc.CreatedAt,
		&svc.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &svc, nil
}

// GetByIDs fetches a snapshot keyed by id. Missing ids are simply absent from
// the map; callers decide whether that is an error.
func (r *serviceRepository) GetByIDs(ctx context.Context, ids []string) (map[string]domain.Service, error) {
	result := make(map[string]domain.Service, len(ids))
	if len(ids) == 0 {
		return result, nil
	}
	rows, err := r.db(ctx).Query(ctx, `SELECT `+serviceColumns+` FROM services WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var svc domain.Service
		if err := rows.Scan(
			&svc.ID,
			&svc.Title,
			&svc.Label,
			&svc.Price,
			&svc.Category,
			&svc.ServiceType,
			&svc.Description,
			&svc.CreatedAt,
			&svc.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result[svc.ID] = svc
	}
	return result, rows.Err()
}

func (r *serviceRepository) Search(ctx context.Context, search string, limit, offset int) ([]domain.Service, error) {
	if limit <= 0 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
        SELECT ` + serviceColumns + `
        FROM services
        WHERE $1 = '' OR to_tsvector('simple', title || ' ' || label || ' ' || description) @@ plainto_tsquery('simple', $1)
        ORDER BY title ASC LIMIT $2 OFFSET $3`
	rows, err := r.db(ctx).Query(ctx, query, search, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Service
	for rows.Next() {
		var svc domain.Service
		if err := rows.Scan(
			&svc.ID,
			&svc.Title,
			&svc.Label,
			&svc.Price,
			&svc.Category,
			&svc.ServiceType,
			&svc.Description,
			&svc.CreatedAt,
			&svc.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, svc)
	}
	return result, rows.Err()
}
