package repository

import (
	"context"
	"fmt"

	"github.com/senyabanana/geega-crm/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ReferenceRepository - чтение связанных записей для формы создания тендера.
type ReferenceRepository interface {
	ListPartners(ctx context.Context, limit int) ([]models.Reference, error)
	ListLeads(ctx context.Context, limit int) ([]models.Reference, error)
	ListUsers(ctx context.Context, limit int) ([]models.Reference, error)
}

// PostgresReferenceRepository - реализация ReferenceRepository для базы данных.
type PostgresReferenceRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresReferenceRepository создаёт новый экземпляр PostgresReferenceRepository.
func NewPostgresReferenceRepository(db *pgxpool.Pool) *PostgresReferenceRepository {
	return &PostgresReferenceRepository{DB: db}
}

func (r *PostgresReferenceRepository) ListPartners(ctx context.Context, limit int) ([]models.Reference, error) {
	return r.list(ctx, "partner", limit)
}

func (r *PostgresReferenceRepository) ListLeads(ctx context.Context, limit int) ([]models.Reference, error) {
	return r.list(ctx, "crm_lead", limit)
}

func (r *PostgresReferenceRepository) ListUsers(ctx context.Context, limit int) ([]models.Reference, error) {
	return r.list(ctx, "app_user", limit)
}

// list читает id и name из таблицы; имя таблицы задаётся только константами выше.
func (r *PostgresReferenceRepository) list(ctx context.Context, table string, limit int) ([]models.Reference, error) {
	query := fmt.Sprintf(`SELECT id, name FROM %s ORDER BY name, id LIMIT $1`, table)

	rows, err := r.DB.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	refs := []models.Reference{}
	for rows.Next() {
		var ref models.Reference
		if err := rows.Scan(&ref.ID, &ref.Name); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}
