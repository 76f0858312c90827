package dto

import "time"

// SubmitReceiptRequest body para POST /api/operations/receipts.
type SubmitReceiptRequest struct {
	ProductID    string `json:"product_id"`
	WarehouseID  string `json:"warehouse_id"`
	Quantity     int64  `json:"quantity"`
	SupplierName string `json:"supplier_name"`
	Notes        string `json:"notes"`
}

// SubmitDeliveryRequest body para POST /api/operations/deliveries.
type SubmitDeliveryRequest struct {
	ProductID    string `json:"product_id"`
	WarehouseID  string `json:"warehouse_id"`
	Quantity     int64  `json:"quantity"`
	CustomerName string `json:"customer_name"`
	Notes        string `json:"notes"`
}

// SubmitTransferRequest body para POST /api/operations/transfers.
type SubmitTransferRequest struct {
	ProductID       string `json:"product_id"`
	FromWarehouseID string `json:"from_warehouse_id"`
	ToWarehouseID   string `json:"to_warehouse_id"`
	Quantity        int64  `json:"quantity"`
	Notes           string `json:"notes"`
}

// SubmitAdjustmentRequest body para POST /api/operations/adjustments.
type SubmitAdjustmentRequest struct {
	ProductID       string `json:"product_id"`
	WarehouseID     string `json:"warehouse_id"`
	CountedQuantity int64  `json:"counted_quantity"`
	Reason          string `json:"reason"`
	Notes           string `json:"notes"`
}

// UpdateStatusRequest body para PATCH /api/operations/:id/status.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// OperationResultResponse respuesta de cualquier operación del motor.
type OperationResultResponse struct {
	Success        bool    `json:"success"`
	Message        string  `json:"message"`
	OperationID    string  `json:"operation_id,omitempty"`
	TransactionIDs []int64 `json:"transaction_ids,omitempty"`
	NewQuantity    *int64  `json:"new_quantity,omitempty"`
}

// OperationResponse salida de una operación (estado + workflow).
type OperationResponse struct {
	ID            string    `json:"id"`
	Type          string    `json:"type"`
	ProductID     string    `json:"product_id"`
	WarehouseID   string    `json:"warehouse_id"`
	ToWarehouseID string    `json:"to_warehouse_id,omitempty"`
	Quantity      int64     `json:"quantity"`
	Counterparty  string    `json:"counterparty,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	State         string    `json:"state"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TransactionRecordResponse una entrada del ledger.
type TransactionRecordResponse struct {
	ID            int64     `json:"id"`
	ProductID     string    `json:"product_id"`
	WarehouseID   string    `json:"warehouse_id"`
	Type          string    `json:"type"`
	QuantityDelta int64     `json:"quantity_delta"`
	Reference     string    `json:"reference"`
	Notes         string    `json:"notes,omitempty"`
	Status        string    `json:"status"`
	Timestamp     time.Time `json:"timestamp"`
}

// HistoryResponse listado paginado del ledger.
type HistoryResponse struct {
	Items []TransactionRecordResponse `json:"items"`
	Page  PageResponse                `json:"page"`
}
