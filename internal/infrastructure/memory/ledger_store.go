// Package memory contiene adaptadores en memoria: los usan los tests del
// motor y el modo desarrollo sin base de datos. Semántica de guardas
// idéntica a la implementación PostgreSQL.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/tu-usuario/stockmaster-api/internal/application/ledger"
	"github.com/tu-usuario/stockmaster-api/internal/domain"
	"github.com/tu-usuario/stockmaster-api/internal/domain/entity"
)

var _ ledger.Store = (*LedgerStore)(nil)

type levelKey struct {
	productID   string
	warehouseID string
}

// LedgerStore implementación en memoria del almacén del ledger.
// Un solo mutex cubre niveles y registros: la unidad atómica es trivial.
type LedgerStore struct {
	mu      sync.Mutex
	levels  map[levelKey]int64
	records []*entity.TransactionRecord
	nextID  int64
}

// NewLedgerStore construye el almacén vacío.
func NewLedgerStore() *LedgerStore {
	return &LedgerStore{
		levels: make(map[levelKey]int64),
		nextID: 1,
	}
}

// GetQuantity devuelve la cantidad actual; 0 si el par nunca fue tocado.
func (s *LedgerStore) GetQuantity(_ context.Context, productID, warehouseID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.levels[levelKey{productID, warehouseID}], nil
}

// AppendAndAdjust aplica deltas y agrega entradas como unidad atómica.
// Primero verifica TODAS las guardas contra la cantidad actual; una sola
// discrepancia aborta con ErrConcurrencyConflict sin efecto alguno.
func (s *LedgerStore) AppendAndAdjust(_ context.Context, entries []*entity.TransactionRecord, guards []ledger.StockGuard) ([]*entity.TransactionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, g := range guards {
		if s.levels[levelKey{g.ProductID, g.WarehouseID}] != g.Expected {
			return nil, domain.ErrConcurrencyConflict
		}
		if g.Expected+g.Delta < 0 {
			// Backstop: la validación ya lo impide, el almacén lo garantiza.
			return nil, domain.ErrInsufficientStock
		}
	}

	for _, g := range guards {
		s.levels[levelKey{g.ProductID, g.WarehouseID}] += g.Delta
	}

	now := time.Now()
	committed := make([]*entity.TransactionRecord, 0, len(entries))
	for _, e := range entries {
		rec := *e
		rec.ID = s.nextID
		rec.Timestamp = now
		s.nextID++
		s.records = append(s.records, &rec)
		committed = append(committed, &rec)
	}
	return committed, nil
}

// History devuelve movimientos en orden timestamp/ID descendente con
// paginación por offset. Los IDs son monótonos, basta recorrer al revés.
func (s *LedgerStore) History(_ context.Context, filter ledger.HistoryFilter) ([]*entity.TransactionRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*entity.TransactionRecord
	skipped := 0
	for i := len(s.records) - 1; i >= 0; i-- {
		rec := s.records[i]
		if filter.ProductID != "" && rec.ProductID != filter.ProductID {
			continue
		}
		if filter.WarehouseID != "" && rec.WarehouseID != filter.WarehouseID {
			continue
		}
		if skipped < filter.Offset {
			skipped++
			continue
		}
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
		cp := *rec
		out = append(out, &cp)
	}
	return out, nil
}
