// Package ledger contiene la lógica pura del motor de inventario:
// validadores por tipo de operación y el workflow de estados logísticos.
// Sin dependencias de infraestructura; el Executor (application) orquesta.
package ledger

import (
	"github.com/tu-usuario/stockmaster-api/internal/domain"
)

// Delta es un cambio de cantidad aprobado para un par (producto, bodega).
type Delta struct {
	ProductID   string
	WarehouseID string
	Quantity    int64 // con signo
}

// ValidateReceipt aprueba una recepción: cantidad > 0, +quantity en el par.
func ValidateReceipt(productID, warehouseID string, quantity int64) ([]Delta, error) {
	if quantity <= 0 {
		return nil, &domain.ValidationError{Field: "quantity", Reason: "debe ser mayor que cero"}
	}
	return []Delta{{ProductID: productID, WarehouseID: warehouseID, Quantity: quantity}}, nil
}

// ValidateDelivery aprueba una entrega contra el snapshot de stock actual:
// cantidad > 0 y stock suficiente, -quantity en el par.
func ValidateDelivery(productID, warehouseID string, quantity, current int64) ([]Delta, error) {
	if quantity <= 0 {
		return nil, &domain.ValidationError{Field: "quantity", Reason: "debe ser mayor que cero"}
	}
	if current < quantity {
		return nil, &domain.InsufficientStockError{
			ProductID:   productID,
			WarehouseID: warehouseID,
			Requested:   quantity,
			Available:   current,
		}
	}
	return []Delta{{ProductID: productID, WarehouseID: warehouseID, Quantity: -quantity}}, nil
}

// ValidateTransfer aprueba un traslado: bodegas distintas, cantidad > 0 y
// stock suficiente en origen. Produce exactamente dos deltas (origen y
// destino) que deben comprometerse juntos o no comprometerse.
func ValidateTransfer(productID, fromWarehouseID, toWarehouseID string, quantity, sourceCurrent int64) ([]Delta, error) {
	if fromWarehouseID == toWarehouseID {
		return nil, &domain.ValidationError{Field: "to_warehouse_id", Reason: "debe ser distinta de la bodega origen"}
	}
	if quantity <= 0 {
		return nil, &domain.ValidationError{Field: "quantity", Reason: "debe ser mayor que cero"}
	}
	if sourceCurrent < quantity {
		return nil, &domain.InsufficientStockError{
			ProductID:   productID,
			WarehouseID: fromWarehouseID,
			Requested:   quantity,
			Available:   sourceCurrent,
		}
	}
	return []Delta{
		{ProductID: productID, WarehouseID: fromWarehouseID, Quantity: -quantity},
		{ProductID: productID, WarehouseID: toWarehouseID, Quantity: quantity},
	}, nil
}

// ValidateAdjustment aprueba un ajuste por conteo físico: contado >= 0.
// El delta es contado - actual (negativo, cero o positivo). Un delta cero
// igual produce registro: el conteo queda auditado, no se omite en silencio.
func ValidateAdjustment(productID, warehouseID string, counted, current int64) ([]Delta, error) {
	if counted < 0 {
		return nil, &domain.ValidationError{Field: "counted_quantity", Reason: "no puede ser negativa"}
	}
	return []Delta{{ProductID: productID, WarehouseID: warehouseID, Quantity: counted - current}}, nil
}
