package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/tu-usuario/stockmaster-api/internal/domain"
	"github.com/tu-usuario/stockmaster-api/internal/domain/entity"
	"github.com/tu-usuario/stockmaster-api/internal/domain/repository"
)

var _ repository.OperationRepository = (*OperationRepo)(nil)

// OperationRepo implementación del puerto OperationRepository sobre PostgreSQL.
type OperationRepo struct {
	q Querier
}

// NewOperationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOperationRepository(q Querier) *OperationRepo {
	return &OperationRepo{q: q}
}

// Save inserta o actualiza la operación (upsert por ID: el Executor guarda
// el estado terminal una sola vez, pero el reintento es inofensivo).
func (r *OperationRepo) Save(ctx context.Context, op *entity.Operation) error {
	query := `
		INSERT INTO operations (id, type, product_id, warehouse_id, to_warehouse_id, quantity, counterparty, notes, state, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id)
		DO UPDATE SET state = EXCLUDED.state, status = EXCLUDED.status, updated_at = EXCLUDED.updated_at`
	toWarehouse := (*string)(nil)
	if op.ToWarehouseID != "" {
		toWarehouse = &op.ToWarehouseID
	}
	_, err := r.q.Exec(ctx, query,
		op.ID, op.Type, op.ProductID, op.WarehouseID, toWarehouse,
		op.Quantity, op.Counterparty, op.Notes, op.State, op.Status,
		op.CreatedAt, op.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("save operation: %w", err)
	}
	return nil
}

// GetByID obtiene una operación por ID.
func (r *OperationRepo) GetByID(ctx context.Context, id string) (*entity.Operation, error) {
	query := `
		SELECT id, type, product_id, warehouse_id, to_warehouse_id, quantity, counterparty, notes, state, status, created_at, updated_at
		FROM operations WHERE id = $1`
	var op entity.Operation
	var toWarehouse *string
	err := r.q.QueryRow(ctx, query, id).Scan(
		&op.ID, &op.Type, &op.ProductID, &op.WarehouseID, &toWarehouse,
		&op.Quantity, &op.Counterparty, &op.Notes, &op.State, &op.Status,
		&op.CreatedAt, &op.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get operation: %w", err)
	}
	if toWarehouse != nil {
		op.ToWarehouseID = *toWarehouse
	}
	return &op, nil
}

// UpdateStatus actualiza solo el estado del workflow logístico.
func (r *OperationRepo) UpdateStatus(ctx context.Context, id, status string) error {
	query := `
		UPDATE operations SET status = $2, updated_at = now()
		WHERE id = $1`
	cmd, err := r.q.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("update operation status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
