package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/tu-usuario/stockmaster-api/internal/application/ledger"
	"github.com/tu-usuario/stockmaster-api/internal/domain"
	"github.com/tu-usuario/stockmaster-api/internal/domain/entity"
)

var _ ledger.Store = (*LedgerStore)(nil)

// LedgerStore implementación del almacén del ledger sobre PostgreSQL.
// stock_levels guarda la cantidad actual por (producto, bodega) y
// transaction_records es el log append-only (ID BIGSERIAL monótono).
// La unidad atómica es una transacción SQL; la guarda optimista es un
// UPDATE condicionado a la cantidad leída en el snapshot.
type LedgerStore struct {
	pool *pgxpool.Pool
}

// NewLedgerStore construye el almacén con el pool.
func NewLedgerStore(pool *pgxpool.Pool) *LedgerStore {
	return &LedgerStore{pool: pool}
}

// GetQuantity devuelve la cantidad actual; 0 si el par nunca fue tocado.
func (s *LedgerStore) GetQuantity(ctx context.Context, productID, warehouseID string) (int64, error) {
	query := `
		SELECT quantity FROM stock_levels
		WHERE product_id = $1 AND warehouse_id = $2`
	var quantity int64
	err := s.pool.QueryRow(ctx, query, productID, warehouseID).Scan(&quantity)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("get quantity: %w", err)
	}
	return quantity, nil
}

// AppendAndAdjust aplica los deltas guardados y agrega las entradas dentro
// de una sola transacción: o todos los efectos quedan visibles o ninguno.
// Una guarda que no coincide con la cantidad vigente aborta todo con
// ErrConcurrencyConflict para que el Executor re-valide con snapshot fresco.
func (s *LedgerStore) AppendAndAdjust(ctx context.Context, entries []*entity.TransactionRecord, guards []ledger.StockGuard) ([]*entity.TransactionRecord, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, g := range guards {
		if err := s.adjustOne(ctx, tx, g); err != nil {
			return nil, err
		}
	}

	insert := `
		INSERT INTO transaction_records (product_id, warehouse_id, type, quantity_delta, reference, notes, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at`
	committed := make([]*entity.TransactionRecord, 0, len(entries))
	for _, e := range entries {
		rec := *e
		err := tx.QueryRow(ctx, insert,
			rec.ProductID, rec.WarehouseID, rec.Type, rec.QuantityDelta,
			rec.Reference, rec.Notes, rec.Status,
		).Scan(&rec.ID, &rec.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("append transaction record: %w", err)
		}
		committed = append(committed, &rec)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	return committed, nil
}

// adjustOne aplica un delta condicionado al snapshot. Si la fila no existe y
// el snapshot era 0, la crea perezosamente; cualquier otra discrepancia es
// un conflicto optimista. El CHECK (quantity >= 0) de la tabla funciona de
// backstop frente a lo que la validación ya impide.
func (s *LedgerStore) adjustOne(ctx context.Context, tx pgx.Tx, g ledger.StockGuard) error {
	update := `
		UPDATE stock_levels
		SET quantity = quantity + $3, updated_at = now()
		WHERE product_id = $1 AND warehouse_id = $2 AND quantity = $4`
	cmd, err := tx.Exec(ctx, update, g.ProductID, g.WarehouseID, g.Delta, g.Expected)
	if err != nil {
		if isCheckViolation(err) {
			return domain.ErrInsufficientStock
		}
		return fmt.Errorf("adjust stock level: %w", err)
	}
	if cmd.RowsAffected() == 1 {
		return nil
	}
	if g.Expected == 0 {
		// Par nunca tocado: creación perezosa. Si otra transacción ganó la
		// carrera de inserción, es un conflicto como cualquier otro.
		insert := `
			INSERT INTO stock_levels (product_id, warehouse_id, quantity, updated_at)
			VALUES ($1, $2, $3, now())
			ON CONFLICT (product_id, warehouse_id) DO NOTHING`
		cmd, err := tx.Exec(ctx, insert, g.ProductID, g.WarehouseID, g.Delta)
		if err != nil {
			if isCheckViolation(err) {
				return domain.ErrInsufficientStock
			}
			return fmt.Errorf("create stock level: %w", err)
		}
		if cmd.RowsAffected() == 1 {
			return nil
		}
	}
	return domain.ErrConcurrencyConflict
}

// History lista movimientos con filtros opcionales, ordenados por fecha
// descendente con ID descendente como desempate (orden total por par).
func (s *LedgerStore) History(ctx context.Context, filter ledger.HistoryFilter) ([]*entity.TransactionRecord, error) {
	query := `
		SELECT id, product_id, warehouse_id, type, quantity_delta, reference, notes, status, created_at
		FROM transaction_records WHERE 1=1`
	args := []any{}
	pos := 1
	if filter.ProductID != "" {
		query += fmt.Sprintf(" AND product_id = $%d", pos)
		args = append(args, filter.ProductID)
		pos++
	}
	if filter.WarehouseID != "" {
		query += fmt.Sprintf(" AND warehouse_id = $%d", pos)
		args = append(args, filter.WarehouseID)
		pos++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d", pos, pos+1)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()
	var list []*entity.TransactionRecord
	for rows.Next() {
		var rec entity.TransactionRecord
		if err := rows.Scan(&rec.ID, &rec.ProductID, &rec.WarehouseID, &rec.Type,
			&rec.QuantityDelta, &rec.Reference, &rec.Notes, &rec.Status, &rec.Timestamp); err != nil {
			return nil, fmt.Errorf("scan transaction record: %w", err)
		}
		list = append(list, &rec)
	}
	return list, rows.Err()
}
