package entity

import "time"

// StockLevel representa el stock actual de un producto en una bodega.
// Clave (ProductID, WarehouseID); se crea perezosamente con la primera
// operación que toca el par y nunca baja de cero.
// Solo el motor del ledger lo muta, siempre junto con sus movimientos.
type StockLevel struct {
	ProductID   string
	WarehouseID string
	Quantity    int64
	UpdatedAt   time.Time
}
