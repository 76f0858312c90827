package ledger_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	appledger "github.com/tu-usuario/stockmaster-api/internal/application/ledger"
	"github.com/tu-usuario/stockmaster-api/internal/domain"
	"github.com/tu-usuario/stockmaster-api/internal/domain/entity"
	"github.com/tu-usuario/stockmaster-api/internal/infrastructure/memory"
	"github.com/tu-usuario/stockmaster-api/pkg/logger"
)

const (
	productID  = "11111111-1111-1111-1111-111111111111"
	warehouseA = "22222222-2222-2222-2222-222222222222"
	warehouseB = "33333333-3333-3333-3333-333333333333"
)

type fixture struct {
	store    *memory.LedgerStore
	opRepo   *memory.OperationRepo
	executor *appledger.Executor
	workflow *appledger.Workflow
}

// newFixture arma un ejecutor sobre adaptadores en memoria con un producto
// y dos bodegas pre-sembrados.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	now := time.Now()

	productRepo := memory.NewProductRepository()
	require.NoError(t, productRepo.Create(ctx, &entity.Product{
		ID: productID, SKU: "SKU-001", Name: "Tornillo M8", CreatedAt: now, UpdatedAt: now,
	}))

	warehouseRepo := memory.NewWarehouseRepository()
	require.NoError(t, warehouseRepo.Create(ctx, &entity.Warehouse{
		ID: warehouseA, Name: "Bodega Norte", CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, warehouseRepo.Create(ctx, &entity.Warehouse{
		ID: warehouseB, Name: "Bodega Sur", CreatedAt: now, UpdatedAt: now,
	}))

	store := memory.NewLedgerStore()
	opRepo := memory.NewOperationRepository()
	return &fixture{
		store:    store,
		opRepo:   opRepo,
		executor: appledger.NewExecutor(store, productRepo, warehouseRepo, opRepo, 3, logger.Nop()),
		workflow: appledger.NewWorkflow(opRepo),
	}
}

func (f *fixture) quantity(t *testing.T, warehouseID string) int64 {
	t.Helper()
	q, err := f.store.GetQuantity(context.Background(), productID, warehouseID)
	require.NoError(t, err)
	return q
}

func (f *fixture) receive(t *testing.T, warehouseID string, qty int64) *appledger.Result {
	t.Helper()
	result, err := f.executor.SubmitReceipt(context.Background(), appledger.ReceiptInput{
		ProductID: productID, WarehouseID: warehouseID, Quantity: qty,
	})
	require.NoError(t, err)
	return result
}

func TestSubmitReceipt_Compromete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	result, err := f.executor.SubmitReceipt(ctx, appledger.ReceiptInput{
		ProductID:    productID,
		WarehouseID:  warehouseA,
		Quantity:     100,
		SupplierName: "Proveedor SA",
	})
	require.NoError(t, err)
	require.Len(t, result.TransactionIDs, 1)
	assert.Equal(t, int64(100), result.NewQuantity)
	assert.Equal(t, int64(100), f.quantity(t, warehouseA))

	op, err := f.opRepo.GetByID(ctx, result.OperationID)
	require.NoError(t, err)
	require.NotNil(t, op)
	assert.Equal(t, entity.OpStateCommitted, op.State)
	assert.Equal(t, entity.StatusOrderPlaced, op.Status)

	// La entrada del ledger congela el workflow status vigente al commit.
	records, err := f.executor.History(ctx, appledger.HistoryFilter{ProductID: productID})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, entity.TxTypeReceipt, records[0].Type)
	assert.Equal(t, int64(100), records[0].QuantityDelta)
	assert.Equal(t, result.OperationID, records[0].Reference)
	assert.Equal(t, entity.StatusOrderPlaced, records[0].Status)
}

func TestSubmitReceipt_CantidadInvalida(t *testing.T) {
	f := newFixture(t)

	_, err := f.executor.SubmitReceipt(context.Background(), appledger.ReceiptInput{
		ProductID: productID, WarehouseID: warehouseA, Quantity: 0,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "quantity", verr.Field)
	assert.Equal(t, int64(0), f.quantity(t, warehouseA))
}

func TestSubmitReceipt_ProductoInexistente(t *testing.T) {
	f := newFixture(t)

	_, err := f.executor.SubmitReceipt(context.Background(), appledger.ReceiptInput{
		ProductID: "99999999-9999-9999-9999-999999999999", WarehouseID: warehouseA, Quantity: 10,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSubmitDelivery_StockInsuficiente(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.receive(t, warehouseA, 50)

	_, err := f.executor.SubmitDelivery(ctx, appledger.DeliveryInput{
		ProductID: productID, WarehouseID: warehouseA, Quantity: 60,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	var ierr *domain.InsufficientStockError
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, int64(60), ierr.Requested)
	assert.Equal(t, int64(50), ierr.Available)

	// El rechazo no deja mutación parcial ni entrada en el ledger.
	assert.Equal(t, int64(50), f.quantity(t, warehouseA))
	records, err := f.executor.History(ctx, appledger.HistoryFilter{ProductID: productID})
	require.NoError(t, err)
	assert.Len(t, records, 1) // solo la recepción
}

func TestSubmitDelivery_StockExacto(t *testing.T) {
	f := newFixture(t)
	f.receive(t, warehouseA, 30)

	result, err := f.executor.SubmitDelivery(context.Background(), appledger.DeliveryInput{
		ProductID: productID, WarehouseID: warehouseA, Quantity: 30, CustomerName: "Cliente SA",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), result.NewQuantity)
	assert.Equal(t, int64(0), f.quantity(t, warehouseA))
}

func TestSubmitTransfer_DosEntradasAtomicas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.receive(t, warehouseA, 100)

	result, err := f.executor.SubmitTransfer(ctx, appledger.TransferInput{
		ProductID:       productID,
		FromWarehouseID: warehouseA,
		ToWarehouseID:   warehouseB,
		Quantity:        40,
	})
	require.NoError(t, err)
	require.Len(t, result.TransactionIDs, 2)
	assert.Equal(t, int64(60), result.NewQuantity) // el par principal es el origen
	assert.Equal(t, int64(60), f.quantity(t, warehouseA))
	assert.Equal(t, int64(40), f.quantity(t, warehouseB))

	// Ambas entradas comparten la operación como referencia y se anulan entre sí.
	records, err := f.executor.History(ctx, appledger.HistoryFilter{ProductID: productID})
	require.NoError(t, err)
	var out, in *entity.TransactionRecord
	for _, rec := range records {
		switch rec.Type {
		case entity.TxTypeTransferOut:
			out = rec
		case entity.TxTypeTransferIn:
			in = rec
		}
	}
	require.NotNil(t, out)
	require.NotNil(t, in)
	assert.Equal(t, result.OperationID, out.Reference)
	assert.Equal(t, result.OperationID, in.Reference)
	assert.Equal(t, int64(-40), out.QuantityDelta)
	assert.Equal(t, int64(40), in.QuantityDelta)
	assert.Equal(t, warehouseA, out.WarehouseID)
	assert.Equal(t, warehouseB, in.WarehouseID)
}

func TestSubmitTransfer_MismaBodega(t *testing.T) {
	f := newFixture(t)
	f.receive(t, warehouseA, 10)

	_, err := f.executor.SubmitTransfer(context.Background(), appledger.TransferInput{
		ProductID:       productID,
		FromWarehouseID: warehouseA,
		ToWarehouseID:   warehouseA,
		Quantity:        5,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Equal(t, int64(10), f.quantity(t, warehouseA))
}

func TestSubmitAdjustment_DeltaCero(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.receive(t, warehouseA, 25)

	result, err := f.executor.SubmitAdjustment(ctx, appledger.AdjustmentInput{
		ProductID: productID, WarehouseID: warehouseA, CountedQuantity: 25, Reason: "conteo cíclico",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(25), result.NewQuantity)

	// El conteo sin diferencia igual queda auditado en el ledger.
	records, err := f.executor.History(ctx, appledger.HistoryFilter{ProductID: productID})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, entity.TxTypeAdjustment, records[0].Type)
	assert.Equal(t, int64(0), records[0].QuantityDelta)
}

// Escenario completo: recepción, traslado parcial, entrega que excede el
// stock restante y ajuste por conteo. El balance por par siempre es la suma
// de sus deltas comprometidos.
func TestEscenarioCompleto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.receive(t, warehouseA, 100)

	_, err := f.executor.SubmitTransfer(ctx, appledger.TransferInput{
		ProductID: productID, FromWarehouseID: warehouseA, ToWarehouseID: warehouseB, Quantity: 50,
	})
	require.NoError(t, err)

	_, err = f.executor.SubmitDelivery(ctx, appledger.DeliveryInput{
		ProductID: productID, WarehouseID: warehouseA, Quantity: 60,
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	// Conteo físico encuentra 48 (merma de 2).
	result, err := f.executor.SubmitAdjustment(ctx, appledger.AdjustmentInput{
		ProductID: productID, WarehouseID: warehouseA, CountedQuantity: 48, Reason: "merma",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(48), result.NewQuantity)

	assert.Equal(t, int64(48), f.quantity(t, warehouseA))
	assert.Equal(t, int64(50), f.quantity(t, warehouseB))

	// Invariante: cantidad actual == suma de deltas del ledger por par.
	var sumA, sumB int64
	records, err := f.executor.History(ctx, appledger.HistoryFilter{ProductID: productID, Limit: 100})
	require.NoError(t, err)
	for _, rec := range records {
		switch rec.WarehouseID {
		case warehouseA:
			sumA += rec.QuantityDelta
		case warehouseB:
			sumB += rec.QuantityDelta
		}
	}
	assert.Equal(t, int64(48), sumA)
	assert.Equal(t, int64(50), sumB)
}

// Dos entregas concurrentes por el stock total: exactamente una compromete.
// La perdedora reintenta con snapshot fresco (0) y la validación la rechaza
// por stock insuficiente; el nivel nunca queda negativo.
func TestEntregasConcurrentes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.receive(t, warehouseA, 5)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.executor.SubmitDelivery(ctx, appledger.DeliveryInput{
				ProductID: productID, WarehouseID: warehouseA, Quantity: 5,
			})
		}(i)
	}
	wg.Wait()

	var committed, insufficient int
	for _, err := range errs {
		switch {
		case err == nil:
			committed++
		case errors.Is(err, domain.ErrInsufficientStock):
			insufficient++
		default:
			t.Fatalf("error inesperado: %v", err)
		}
	}
	assert.Equal(t, 1, committed)
	assert.Equal(t, 1, insufficient)
	assert.Equal(t, int64(0), f.quantity(t, warehouseA))
}

// conflictStore siempre reporta conflicto optimista: fuerza el agotamiento
// de reintentos del ejecutor.
type conflictStore struct {
	*memory.LedgerStore
}

func (s *conflictStore) AppendAndAdjust(context.Context, []*entity.TransactionRecord, []appledger.StockGuard) ([]*entity.TransactionRecord, error) {
	return nil, domain.ErrConcurrencyConflict
}

func TestReintentosAgotados(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	productRepo := memory.NewProductRepository()
	require.NoError(t, productRepo.Create(ctx, &entity.Product{ID: productID, SKU: "SKU-001", CreatedAt: now, UpdatedAt: now}))
	warehouseRepo := memory.NewWarehouseRepository()
	require.NoError(t, warehouseRepo.Create(ctx, &entity.Warehouse{ID: warehouseA, Name: "Bodega Norte", CreatedAt: now, UpdatedAt: now}))
	opRepo := memory.NewOperationRepository()

	executor := appledger.NewExecutor(
		&conflictStore{memory.NewLedgerStore()},
		productRepo, warehouseRepo, opRepo, 2, logger.Nop(),
	)

	result, err := executor.SubmitReceipt(ctx, appledger.ReceiptInput{
		ProductID: productID, WarehouseID: warehouseA, Quantity: 10,
	})
	assert.Nil(t, result)
	assert.ErrorIs(t, err, domain.ErrOperationConflict)
}

func TestWorkflow_AvanceDeEstado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	result := f.receive(t, warehouseA, 10)

	op, err := f.workflow.UpdateStatus(ctx, result.OperationID, entity.StatusInTransit)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusInTransit, op.Status)

	op, err = f.workflow.UpdateStatus(ctx, result.OperationID, entity.StatusCompleted)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusCompleted, op.Status)

	// El workflow solo mueve metadatos: el stock no cambia.
	assert.Equal(t, int64(10), f.quantity(t, warehouseA))
}

func TestWorkflow_TransicionInvalida(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	result := f.receive(t, warehouseA, 10)

	// Saltarse IN_TRANSIT no está permitido.
	_, err := f.workflow.UpdateStatus(ctx, result.OperationID, entity.StatusCompleted)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)

	var terr *domain.StatusTransitionError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, entity.StatusOrderPlaced, terr.From)
	assert.Equal(t, entity.StatusCompleted, terr.To)
}

func TestWorkflow_OperacionInexistente(t *testing.T) {
	f := newFixture(t)

	_, err := f.workflow.UpdateStatus(context.Background(), "no-existe", entity.StatusInTransit)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestHistory_LimiteAcotado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		f.receive(t, warehouseA, 1)
	}

	// Limit fuera de rango se normaliza al default.
	records, err := f.executor.History(ctx, appledger.HistoryFilter{Limit: -1})
	require.NoError(t, err)
	assert.Len(t, records, 5)

	records, err = f.executor.History(ctx, appledger.HistoryFilter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, records, 2)
	// Orden descendente por ID.
	assert.Greater(t, records[0].ID, records[1].ID)
}
