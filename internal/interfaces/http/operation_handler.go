package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/tu-usuario/stockmaster-api/internal/application/dto"
	"github.com/tu-usuario/stockmaster-api/internal/application/ledger"
	"github.com/tu-usuario/stockmaster-api/internal/domain"
)

// OperationHandler maneja las peticiones HTTP del motor de inventario
// (recepciones, entregas, traslados, ajustes, estados e historial).
type OperationHandler struct {
	executor *ledger.Executor
	workflow *ledger.Workflow
}

// NewOperationHandler construye el handler.
func NewOperationHandler(executor *ledger.Executor, workflow *ledger.Workflow) *OperationHandler {
	return &OperationHandler{executor: executor, workflow: workflow}
}

// SubmitReceipt godoc
// @Summary      Registrar recepción de mercancía
// @Tags         operations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SubmitReceiptRequest  true  "product_id, warehouse_id, quantity, supplier_name, notes"
// @Success      201   {object}  dto.OperationResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/operations/receipts [post]
func (h *OperationHandler) SubmitReceipt(c *fiber.Ctx) error {
	var in dto.SubmitReceiptRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.executor.SubmitReceipt(c.Context(), ledger.ReceiptInput{
		ProductID:    in.ProductID,
		WarehouseID:  in.WarehouseID,
		Quantity:     in.Quantity,
		SupplierName: in.SupplierName,
		Notes:        in.Notes,
	})
	if err != nil {
		return mapOperationError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toResultResponse(result, "recepción registrada"))
}

// SubmitDelivery godoc
// @Summary      Registrar entrega a cliente
// @Tags         operations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SubmitDeliveryRequest  true  "product_id, warehouse_id, quantity, customer_name, notes"
// @Success      201   {object}  dto.OperationResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/operations/deliveries [post]
func (h *OperationHandler) SubmitDelivery(c *fiber.Ctx) error {
	var in dto.SubmitDeliveryRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.executor.SubmitDelivery(c.Context(), ledger.DeliveryInput{
		ProductID:    in.ProductID,
		WarehouseID:  in.WarehouseID,
		Quantity:     in.Quantity,
		CustomerName: in.CustomerName,
		Notes:        in.Notes,
	})
	if err != nil {
		return mapOperationError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toResultResponse(result, "entrega registrada"))
}

// SubmitTransfer godoc
// @Summary      Registrar traslado entre bodegas
// @Tags         operations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SubmitTransferRequest  true  "product_id, from_warehouse_id, to_warehouse_id, quantity, notes"
// @Success      201   {object}  dto.OperationResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/operations/transfers [post]
func (h *OperationHandler) SubmitTransfer(c *fiber.Ctx) error {
	var in dto.SubmitTransferRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.executor.SubmitTransfer(c.Context(), ledger.TransferInput{
		ProductID:       in.ProductID,
		FromWarehouseID: in.FromWarehouseID,
		ToWarehouseID:   in.ToWarehouseID,
		Quantity:        in.Quantity,
		Notes:           in.Notes,
	})
	if err != nil {
		return mapOperationError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toResultResponse(result, "traslado registrado"))
}

// SubmitAdjustment godoc
// @Summary      Registrar ajuste por conteo físico
// @Tags         operations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SubmitAdjustmentRequest  true  "product_id, warehouse_id, counted_quantity, reason, notes"
// @Success      201   {object}  dto.OperationResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/operations/adjustments [post]
func (h *OperationHandler) SubmitAdjustment(c *fiber.Ctx) error {
	var in dto.SubmitAdjustmentRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	result, err := h.executor.SubmitAdjustment(c.Context(), ledger.AdjustmentInput{
		ProductID:       in.ProductID,
		WarehouseID:     in.WarehouseID,
		CountedQuantity: in.CountedQuantity,
		Reason:          in.Reason,
		Notes:           in.Notes,
	})
	if err != nil {
		return mapOperationError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toResultResponse(result, "ajuste registrado"))
}

// UpdateStatus godoc
// @Summary      Avanzar el estado logístico de una operación
// @Description  Solo metadatos: el estado nunca re-dispara mutación de stock.
// @Tags         operations
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID de la operación"
// @Param        body  body  dto.UpdateStatusRequest  true  "Nuevo estado"
// @Success      200   {object}  dto.OperationResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/operations/{id}/status [patch]
func (h *OperationHandler) UpdateStatus(c *fiber.Ctx) error {
	id := c.Params("id")
	var in dto.UpdateStatusRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	op, err := h.workflow.UpdateStatus(c.Context(), id, in.Status)
	if err != nil {
		return mapOperationError(c, err)
	}
	return c.JSON(dto.OperationResponse{
		ID:            op.ID,
		Type:          op.Type,
		ProductID:     op.ProductID,
		WarehouseID:   op.WarehouseID,
		ToWarehouseID: op.ToWarehouseID,
		Quantity:      op.Quantity,
		Counterparty:  op.Counterparty,
		Notes:         op.Notes,
		State:         op.State,
		Status:        op.Status,
		CreatedAt:     op.CreatedAt,
		UpdatedAt:     op.UpdatedAt,
	})
}

// GetHistory godoc
// @Summary      Historial del ledger
// @Tags         operations
// @Security     Bearer
// @Produce      json
// @Param        product_id    query  string  false  "Filtrar por producto"
// @Param        warehouse_id  query  string  false  "Filtrar por bodega"
// @Param        limit         query  int     false  "Límite"   default(20)
// @Param        offset        query  int     false  "Offset"   default(0)
// @Success      200  {object}  dto.HistoryResponse
// @Router       /api/operations/history [get]
func (h *OperationHandler) GetHistory(c *fiber.Ctx) error {
	filter := ledger.HistoryFilter{
		ProductID:   c.Query("product_id"),
		WarehouseID: c.Query("warehouse_id"),
		Limit:       c.QueryInt("limit", 20),
		Offset:      c.QueryInt("offset", 0),
	}
	records, err := h.executor.History(c.Context(), filter)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
	items := make([]dto.TransactionRecordResponse, 0, len(records))
	for _, rec := range records {
		items = append(items, dto.TransactionRecordResponse{
			ID:            rec.ID,
			ProductID:     rec.ProductID,
			WarehouseID:   rec.WarehouseID,
			Type:          rec.Type,
			QuantityDelta: rec.QuantityDelta,
			Reference:     rec.Reference,
			Notes:         rec.Notes,
			Status:        rec.Status,
			Timestamp:     rec.Timestamp,
		})
	}
	return c.JSON(dto.HistoryResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset},
	})
}

func toResultResponse(result *ledger.Result, message string) dto.OperationResultResponse {
	qty := result.NewQuantity
	return dto.OperationResultResponse{
		Success:        true,
		Message:        message,
		OperationID:    result.OperationID,
		TransactionIDs: result.TransactionIDs,
		NewQuantity:    &qty,
	}
}

// mapOperationError traduce la taxonomía de errores del motor a HTTP.
func mapOperationError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: "producto o bodega no encontrado"})
	case errors.Is(err, domain.ErrInsufficientStock):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidStatusTransition):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "INVALID_STATUS_TRANSITION", Message: err.Error()})
	case errors.Is(err, domain.ErrOperationConflict):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "OPERATION_CONFLICT", Message: "demasiados conflictos concurrentes, reintente la operación"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
	}
}
