package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/tu-usuario/stockmaster-api/internal/domain"
	"github.com/tu-usuario/stockmaster-api/internal/domain/entity"
	ledgerdomain "github.com/tu-usuario/stockmaster-api/internal/domain/ledger"
	"github.com/tu-usuario/stockmaster-api/internal/domain/repository"
	"github.com/tu-usuario/stockmaster-api/pkg/logger"
)

// DefaultMaxRetries reintentos ante conflicto optimista antes de rendirse.
const DefaultMaxRetries = 3

// Executor orquesta validar -> mutar stock -> agregar entrada al ledger como
// una unidad atómica por operación. Es el único punto de control de
// concurrencia: cada intento lee un snapshot, valida contra él y compromete
// condicionado a que el snapshot siga vigente; ante conflicto re-lee y
// re-valida hasta maxRetries antes de rendir ErrOperationConflict.
type Executor struct {
	store         Store
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	opRepo        repository.OperationRepository
	maxRetries    int
	log           *logger.Logger
}

// NewExecutor construye el ejecutor. maxRetries <= 0 usa DefaultMaxRetries.
func NewExecutor(
	store Store,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
	opRepo repository.OperationRepository,
	maxRetries int,
	log *logger.Logger,
) *Executor {
	if maxRetries <= 0 {
		maxRetries = DefaultMaxRetries
	}
	return &Executor{
		store:         store,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
		opRepo:        opRepo,
		maxRetries:    maxRetries,
		log:           log,
	}
}

// ReceiptInput entrada de una recepción de mercancía.
type ReceiptInput struct {
	ProductID    string
	WarehouseID  string
	Quantity     int64
	SupplierName string
	Notes        string
}

// DeliveryInput entrada de una entrega a cliente.
type DeliveryInput struct {
	ProductID    string
	WarehouseID  string
	Quantity     int64
	CustomerName string
	Notes        string
}

// TransferInput entrada de un traslado entre bodegas.
type TransferInput struct {
	ProductID       string
	FromWarehouseID string
	ToWarehouseID   string
	Quantity        int64
	Notes           string
}

// AdjustmentInput entrada de un ajuste por conteo físico.
type AdjustmentInput struct {
	ProductID       string
	WarehouseID     string
	CountedQuantity int64
	Reason          string
	Notes           string
}

// Result resultado de una operación comprometida.
type Result struct {
	OperationID    string
	TransactionIDs []int64
	NewQuantity    int64 // cantidad resultante en el par principal de la operación
}

// plan es el producto de un ciclo snapshot+validación: guardas optimistas,
// entradas a agregar y el índice de la guarda cuyo nuevo valor se reporta.
type plan struct {
	guards  []StockGuard
	entries []*entity.TransactionRecord
	primary int
}

// SubmitReceipt registra una recepción: +quantity en (producto, bodega).
func (e *Executor) SubmitReceipt(ctx context.Context, in ReceiptInput) (*Result, error) {
	op := e.newOperation(entity.OpTypeReceipt, in.ProductID, in.WarehouseID, "", in.Quantity, in.SupplierName, in.Notes)
	if err := e.checkPair(ctx, in.ProductID, in.WarehouseID); err != nil {
		return e.reject(ctx, op, err)
	}
	return e.execute(ctx, op, func(ctx context.Context) (*plan, error) {
		current, err := e.store.GetQuantity(ctx, in.ProductID, in.WarehouseID)
		if err != nil {
			return nil, err
		}
		deltas, err := ledgerdomain.ValidateReceipt(in.ProductID, in.WarehouseID, in.Quantity)
		if err != nil {
			return nil, err
		}
		return e.buildPlan(op, deltas, map[pair]int64{{in.ProductID, in.WarehouseID}: current}, entity.TxTypeReceipt), nil
	})
}

// SubmitDelivery registra una entrega: -quantity, nunca por debajo de cero.
func (e *Executor) SubmitDelivery(ctx context.Context, in DeliveryInput) (*Result, error) {
	op := e.newOperation(entity.OpTypeDelivery, in.ProductID, in.WarehouseID, "", in.Quantity, in.CustomerName, in.Notes)
	if err := e.checkPair(ctx, in.ProductID, in.WarehouseID); err != nil {
		return e.reject(ctx, op, err)
	}
	return e.execute(ctx, op, func(ctx context.Context) (*plan, error) {
		current, err := e.store.GetQuantity(ctx, in.ProductID, in.WarehouseID)
		if err != nil {
			return nil, err
		}
		deltas, err := ledgerdomain.ValidateDelivery(in.ProductID, in.WarehouseID, in.Quantity, current)
		if err != nil {
			return nil, err
		}
		return e.buildPlan(op, deltas, map[pair]int64{{in.ProductID, in.WarehouseID}: current}, entity.TxTypeDelivery), nil
	})
}

// SubmitTransfer registra un traslado: dos entradas (TRANSFER_OUT en origen,
// TRANSFER_IN en destino) comparten la referencia y se comprometen juntas o
// ninguna queda visible.
func (e *Executor) SubmitTransfer(ctx context.Context, in TransferInput) (*Result, error) {
	op := e.newOperation(entity.OpTypeTransfer, in.ProductID, in.FromWarehouseID, in.ToWarehouseID, in.Quantity, "", in.Notes)
	if err := e.checkPair(ctx, in.ProductID, in.FromWarehouseID); err != nil {
		return e.reject(ctx, op, err)
	}
	if err := e.checkWarehouse(ctx, in.ToWarehouseID); err != nil {
		return e.reject(ctx, op, err)
	}
	return e.execute(ctx, op, func(ctx context.Context) (*plan, error) {
		sourceQty, err := e.store.GetQuantity(ctx, in.ProductID, in.FromWarehouseID)
		if err != nil {
			return nil, err
		}
		destQty, err := e.store.GetQuantity(ctx, in.ProductID, in.ToWarehouseID)
		if err != nil {
			return nil, err
		}
		deltas, err := ledgerdomain.ValidateTransfer(in.ProductID, in.FromWarehouseID, in.ToWarehouseID, in.Quantity, sourceQty)
		if err != nil {
			return nil, err
		}
		snap := map[pair]int64{
			{in.ProductID, in.FromWarehouseID}: sourceQty,
			{in.ProductID, in.ToWarehouseID}:   destQty,
		}
		p := e.buildPlan(op, deltas, snap, "")
		p.entries[0].Type = entity.TxTypeTransferOut
		p.entries[1].Type = entity.TxTypeTransferIn
		return p, nil
	})
}

// SubmitAdjustment registra un ajuste por conteo: delta = contado - actual.
// Un conteo igual al stock actual igual queda en el ledger (delta cero).
func (e *Executor) SubmitAdjustment(ctx context.Context, in AdjustmentInput) (*Result, error) {
	op := e.newOperation(entity.OpTypeAdjustment, in.ProductID, in.WarehouseID, "", in.CountedQuantity, in.Reason, in.Notes)
	if err := e.checkPair(ctx, in.ProductID, in.WarehouseID); err != nil {
		return e.reject(ctx, op, err)
	}
	return e.execute(ctx, op, func(ctx context.Context) (*plan, error) {
		current, err := e.store.GetQuantity(ctx, in.ProductID, in.WarehouseID)
		if err != nil {
			return nil, err
		}
		deltas, err := ledgerdomain.ValidateAdjustment(in.ProductID, in.WarehouseID, in.CountedQuantity, current)
		if err != nil {
			return nil, err
		}
		return e.buildPlan(op, deltas, map[pair]int64{{in.ProductID, in.WarehouseID}: current}, entity.TxTypeAdjustment), nil
	})
}

// History consulta el ledger con filtros opcionales y paginación.
func (e *Executor) History(ctx context.Context, filter HistoryFilter) ([]*entity.TransactionRecord, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 100 {
		filter.Limit = 100
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return e.store.History(ctx, filter)
}

// ──────────────────────────────────────────────────────────────────────────────
// Internos
// ──────────────────────────────────────────────────────────────────────────────

type pair struct {
	productID   string
	warehouseID string
}

func (e *Executor) newOperation(opType, productID, warehouseID, toWarehouseID string, quantity int64, counterparty, notes string) *entity.Operation {
	now := time.Now()
	return &entity.Operation{
		ID:            uuid.New().String(),
		Type:          opType,
		ProductID:     productID,
		WarehouseID:   warehouseID,
		ToWarehouseID: toWarehouseID,
		Quantity:      quantity,
		Counterparty:  counterparty,
		Notes:         notes,
		State:         entity.OpStateReceived,
		Status:        ledgerdomain.InitialStatus(opType),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// checkPair verifica que producto y bodega existan antes de intentar nada.
func (e *Executor) checkPair(ctx context.Context, productID, warehouseID string) error {
	product, err := e.productRepo.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.ErrNotFound
	}
	return e.checkWarehouse(ctx, warehouseID)
}

func (e *Executor) checkWarehouse(ctx context.Context, warehouseID string) error {
	warehouse, err := e.warehouseRepo.GetByID(ctx, warehouseID)
	if err != nil {
		return err
	}
	if warehouse == nil {
		return domain.ErrNotFound
	}
	return nil
}

// buildPlan convierte deltas aprobados en guardas optimistas y entradas del
// ledger. Todas las entradas de la operación comparten op.ID como referencia.
func (e *Executor) buildPlan(op *entity.Operation, deltas []ledgerdomain.Delta, snapshot map[pair]int64, txType string) *plan {
	p := &plan{primary: 0}
	for _, d := range deltas {
		p.guards = append(p.guards, StockGuard{
			ProductID:   d.ProductID,
			WarehouseID: d.WarehouseID,
			Expected:    snapshot[pair{d.ProductID, d.WarehouseID}],
			Delta:       d.Quantity,
		})
		p.entries = append(p.entries, &entity.TransactionRecord{
			ProductID:     d.ProductID,
			WarehouseID:   d.WarehouseID,
			Type:          txType,
			QuantityDelta: d.Quantity,
			Reference:     op.ID,
			Notes:         op.Notes,
			Status:        op.Status,
		})
	}
	return p
}

// execute corre el ciclo snapshot -> validar -> commit condicionado.
// Un conflicto optimista re-lee y re-valida; cualquier otro fallo rechaza la
// operación sin dejar mutación parcial observable.
func (e *Executor) execute(ctx context.Context, op *entity.Operation, buildPlan func(context.Context) (*plan, error)) (*Result, error) {
	for attempt := 0; attempt <= e.maxRetries; attempt++ {
		// Cancelación antes del commit equivale a un rechazo de validación.
		if err := ctx.Err(); err != nil {
			return e.reject(ctx, op, err)
		}

		p, err := buildPlan(ctx)
		if err != nil {
			return e.reject(ctx, op, err)
		}
		op.State = entity.OpStateValidated

		committed, err := e.store.AppendAndAdjust(ctx, p.entries, p.guards)
		if errors.Is(err, domain.ErrConcurrencyConflict) {
			e.log.Debug().
				Str("operation_id", op.ID).
				Str("type", op.Type).
				Int("attempt", attempt+1).
				Msg("conflicto optimista, reintentando validación con snapshot fresco")
			continue
		}
		if err != nil {
			return e.reject(ctx, op, err)
		}

		op.State = entity.OpStateCommitted
		op.UpdatedAt = time.Now()
		if err := e.opRepo.Save(ctx, op); err != nil {
			// El ledger ya comprometió; el registro de operación es metadato.
			e.log.Error().Err(err).Str("operation_id", op.ID).Msg("guardar operación comprometida")
		}

		ids := make([]int64, 0, len(committed))
		for _, rec := range committed {
			ids = append(ids, rec.ID)
		}
		primary := p.guards[p.primary]
		e.log.Info().
			Str("operation_id", op.ID).
			Str("type", op.Type).
			Int64("new_quantity", primary.Expected+primary.Delta).
			Msg("operación comprometida")
		return &Result{
			OperationID:    op.ID,
			TransactionIDs: ids,
			NewQuantity:    primary.Expected + primary.Delta,
		}, nil
	}

	// Reintentos agotados: rendimos el conflicto al caller.
	return e.reject(ctx, op, domain.ErrOperationConflict)
}

// reject marca la operación como rechazada (terminal) y propaga la causa.
// Usa un contexto sin cancelación: el rechazo debe quedar registrado aunque
// el caller ya haya cancelado.
func (e *Executor) reject(ctx context.Context, op *entity.Operation, cause error) (*Result, error) {
	op.State = entity.OpStateRejected
	op.UpdatedAt = time.Now()
	if err := e.opRepo.Save(context.WithoutCancel(ctx), op); err != nil {
		e.log.Error().Err(err).Str("operation_id", op.ID).Msg("guardar operación rechazada")
	}
	return nil, cause
}
