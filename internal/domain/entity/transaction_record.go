package entity

import "time"

// Tipos de movimiento del ledger.
const (
	TxTypeReceipt     = "RECEIPT"      // entrada por recepción
	TxTypeDelivery    = "DELIVERY"     // salida por entrega
	TxTypeTransferOut = "TRANSFER_OUT" // salida en bodega origen
	TxTypeTransferIn  = "TRANSFER_IN"  // entrada en bodega destino
	TxTypeAdjustment  = "ADJUSTMENT"   // ajuste por conteo físico
)

// TransactionRecord es una entrada inmutable del ledger: un cambio de
// cantidad para un par (producto, bodega). ID es BIGSERIAL monótono
// creciente (append-only). Las correcciones se hacen agregando un
// registro compensatorio, nunca editando la historia.
type TransactionRecord struct {
	ID            int64
	ProductID     string
	WarehouseID   string
	Type          string
	QuantityDelta int64  // con signo: positivo entrada, negativo salida
	Reference     string // ID de la operación o referencia externa
	Notes         string
	Status        string // estado del workflow al momento del commit (congelado)
	Timestamp     time.Time
}
