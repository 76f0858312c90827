package entity

import "time"

// Product representa un producto o SKU del catálogo (multi-bodega).
// Inmutable en identidad una vez referenciado por el ledger; solo los
// campos descriptivos pueden cambiar.
type Product struct {
	ID            string
	SKU           string // código único
	Name          string
	Category      string
	UnitOfMeasure string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
