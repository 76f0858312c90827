package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tu-usuario/stockmaster-api/internal/application/auth"
	appledger "github.com/tu-usuario/stockmaster-api/internal/application/ledger"
	"github.com/tu-usuario/stockmaster-api/internal/application/usecase"
	"github.com/tu-usuario/stockmaster-api/internal/domain/entity"
	"github.com/tu-usuario/stockmaster-api/internal/infrastructure/memory"
	apphttp "github.com/tu-usuario/stockmaster-api/internal/interfaces/http"
	"github.com/tu-usuario/stockmaster-api/pkg/logger"
)

const (
	opProductID  = "11111111-1111-1111-1111-111111111111"
	opWarehouseA = "22222222-2222-2222-2222-222222222222"
	opWarehouseB = "33333333-3333-3333-3333-333333333333"
)

type nopSender struct{}

func (nopSender) Send(context.Context, string, string) error { return nil }

// newAPIApp levanta la API completa sobre adaptadores en memoria, con un
// producto y dos bodegas pre-sembrados.
func newAPIApp(t *testing.T) *fiber.App {
	t.Helper()
	ctx := context.Background()
	now := time.Now()

	productRepo := memory.NewProductRepository()
	require.NoError(t, productRepo.Create(ctx, &entity.Product{
		ID: opProductID, SKU: "SKU-001", Name: "Tornillo M8", CreatedAt: now, UpdatedAt: now,
	}))
	warehouseRepo := memory.NewWarehouseRepository()
	require.NoError(t, warehouseRepo.Create(ctx, &entity.Warehouse{
		ID: opWarehouseA, Name: "Bodega Norte", CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, warehouseRepo.Create(ctx, &entity.Warehouse{
		ID: opWarehouseB, Name: "Bodega Sur", CreatedAt: now, UpdatedAt: now,
	}))

	opRepo := memory.NewOperationRepository()
	store := memory.NewLedgerStore()
	executor := appledger.NewExecutor(store, productRepo, warehouseRepo, opRepo, 3, logger.Nop())
	workflow := appledger.NewWorkflow(opRepo)

	authUC := auth.NewAuthUseCase(memory.NewUserRepository(), memory.NewOTPStore(), nopSender{}, time.Minute, auth.JWTConfig{
		Secret: testJWTSecret, ExpMinutes: testExpMin, Issuer: testIssuer,
	})

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		ProductUC:   usecase.NewProductUseCase(productRepo),
		WarehouseUC: usecase.NewWarehouseUseCase(warehouseRepo),
		Executor:    executor,
		Workflow:    workflow,
		AuthUC:      authUC,
		JWTSecret:   testJWTSecret,
	})
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", validToken(t))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestAPI_RecepcionYEstado(t *testing.T) {
	app := newAPIApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/operations/receipts", fiber.Map{
		"product_id":    opProductID,
		"warehouse_id":  opWarehouseA,
		"quantity":      100,
		"supplier_name": "Proveedor SA",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result struct {
		Success     bool   `json:"success"`
		OperationID string `json:"operation_id"`
		NewQuantity int64  `json:"new_quantity"`
	}
	decode(t, resp, &result)
	assert.True(t, result.Success)
	assert.Equal(t, int64(100), result.NewQuantity)
	require.NotEmpty(t, result.OperationID)

	// Avance del workflow logístico.
	resp = doJSON(t, app, http.MethodPatch,
		fmt.Sprintf("/api/operations/%s/status", result.OperationID),
		fiber.Map{"status": entity.StatusInTransit})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var op struct {
		Status string `json:"status"`
		State  string `json:"state"`
	}
	decode(t, resp, &op)
	assert.Equal(t, entity.StatusInTransit, op.Status)
	assert.Equal(t, entity.OpStateCommitted, op.State)

	// Saltarse un paso del workflow: 422.
	resp = doJSON(t, app, http.MethodPatch,
		fmt.Sprintf("/api/operations/%s/status", result.OperationID),
		fiber.Map{"status": entity.StatusInTransit})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	resp.Body.Close()
}

func TestAPI_EntregaSinStock_Retorna409(t *testing.T) {
	app := newAPIApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/operations/deliveries", fiber.Map{
		"product_id":   opProductID,
		"warehouse_id": opWarehouseA,
		"quantity":     5,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var body struct {
		Code string `json:"code"`
	}
	decode(t, resp, &body)
	assert.Equal(t, "INSUFFICIENT_STOCK", body.Code)
}

func TestAPI_ProductoInexistente_Retorna404(t *testing.T) {
	app := newAPIApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/operations/receipts", fiber.Map{
		"product_id":   "99999999-9999-9999-9999-999999999999",
		"warehouse_id": opWarehouseA,
		"quantity":     5,
	})
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestAPI_TrasladoEHistorial(t *testing.T) {
	app := newAPIApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/operations/receipts", fiber.Map{
		"product_id": opProductID, "warehouse_id": opWarehouseA, "quantity": 80,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = doJSON(t, app, http.MethodPost, "/api/operations/transfers", fiber.Map{
		"product_id":        opProductID,
		"from_warehouse_id": opWarehouseA,
		"to_warehouse_id":   opWarehouseB,
		"quantity":          30,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var result struct {
		TransactionIDs []int64 `json:"transaction_ids"`
		NewQuantity    int64   `json:"new_quantity"`
	}
	decode(t, resp, &result)
	assert.Len(t, result.TransactionIDs, 2)
	assert.Equal(t, int64(50), result.NewQuantity)

	resp = doJSON(t, app, http.MethodGet, "/api/operations/history?warehouse_id="+opWarehouseB, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var history struct {
		Items []struct {
			Type          string `json:"type"`
			QuantityDelta int64  `json:"quantity_delta"`
		} `json:"items"`
	}
	decode(t, resp, &history)
	require.Len(t, history.Items, 1)
	assert.Equal(t, entity.TxTypeTransferIn, history.Items[0].Type)
	assert.Equal(t, int64(30), history.Items[0].QuantityDelta)
}

func TestAPI_OperacionesRequierenToken(t *testing.T) {
	app := newAPIApp(t)

	req := httptest.NewRequest(http.MethodGet, "/api/operations/history", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}
