package ledger

import (
	"context"

	"github.com/tu-usuario/stockmaster-api/internal/domain/entity"
)

// StockGuard es la guarda optimista para un par (producto, bodega):
// Expected es la cantidad leída en el snapshot de validación y Delta el
// cambio a aplicar. Si al momento del commit la cantidad ya no es Expected,
// el Store rechaza TODO el lote con domain.ErrConcurrencyConflict.
type StockGuard struct {
	ProductID   string
	WarehouseID string
	Expected    int64
	Delta       int64
}

// HistoryFilter filtros de consulta del ledger. ProductID y WarehouseID
// vacíos significan "sin filtro".
type HistoryFilter struct {
	ProductID   string
	WarehouseID string
	Limit       int
	Offset      int
}

// Store define el puerto del almacén del ledger: cantidades actuales por
// par (producto, bodega) más el log append-only de movimientos.
// AppendAndAdjust es la unidad atómica del motor: aplica todos los deltas
// y agrega todas las entradas, o no hace nada (soporta la atomicidad de
// traslados sin two-phase commit a nivel de aplicación).
type Store interface {
	// GetQuantity devuelve la cantidad actual; 0 si el par nunca fue tocado.
	GetQuantity(ctx context.Context, productID, warehouseID string) (int64, error)

	// AppendAndAdjust aplica los deltas guardados por snapshot y persiste
	// las entradas como una unidad. Devuelve las entradas con ID y
	// Timestamp asignados. Falla con domain.ErrConcurrencyConflict si
	// alguna guarda no coincide con la cantidad actual.
	AppendAndAdjust(ctx context.Context, entries []*entity.TransactionRecord, guards []StockGuard) ([]*entity.TransactionRecord, error)

	// History devuelve movimientos ordenados por timestamp descendente
	// (ID descendente como desempate), con paginación reiniciable.
	History(ctx context.Context, filter HistoryFilter) ([]*entity.TransactionRecord, error)
}
