package entity

import "time"

// Tipos de operación del motor.
const (
	OpTypeReceipt    = "RECEIPT"
	OpTypeDelivery   = "DELIVERY"
	OpTypeTransfer   = "TRANSFER"
	OpTypeAdjustment = "ADJUSTMENT"
)

// Estados de ejecución de una operación (máquina del Executor).
// COMMITTED y REJECTED son terminales; una operación rechazada no se
// reintenta en sitio, requiere un nuevo envío.
const (
	OpStateReceived  = "RECEIVED"
	OpStateValidated = "VALIDATED"
	OpStateCommitted = "COMMITTED"
	OpStateRejected  = "REJECTED"
)

// Estados del workflow logístico, independientes del commit del ledger.
// Recepción: ORDER_PLACED -> IN_TRANSIT -> COMPLETED.
// Entrega:   ORDER_RECEIVED -> SHIPPING -> SHIPPED.
const (
	StatusOrderPlaced   = "ORDER_PLACED"
	StatusInTransit     = "IN_TRANSIT"
	StatusCompleted     = "COMPLETED"
	StatusOrderReceived = "ORDER_RECEIVED"
	StatusShipping      = "SHIPPING"
	StatusShipped       = "SHIPPED"
)

// Operation es la solicitud lógica (recepción, entrega, traslado o ajuste)
// que produce uno o dos TransactionRecord. Lleva dos máquinas de estado
// deliberadamente separadas: State (ejecución del ledger) y Status
// (workflow logístico); "mercancía en tránsito" no es lo mismo que
// "las cantidades ya cambiaron".
type Operation struct {
	ID            string
	Type          string
	ProductID     string
	WarehouseID   string // bodega origen en traslados
	ToWarehouseID string // solo traslados
	Quantity      int64  // cantidad solicitada; en ajustes, cantidad contada
	Counterparty  string // proveedor (recepción), cliente (entrega) o motivo (ajuste)
	Notes         string
	State         string // RECEIVED | VALIDATED | COMMITTED | REJECTED
	Status        string // workflow logístico; solo metadatos, nunca re-muta stock
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
