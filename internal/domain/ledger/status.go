package ledger

import (
	"github.com/tu-usuario/stockmaster-api/internal/domain"
	"github.com/tu-usuario/stockmaster-api/internal/domain/entity"
)

// Secuencias de workflow declaradas por tipo de operación. Solo se admite
// avanzar al estado inmediatamente siguiente; los traslados y ajustes nacen
// COMPLETED y no tienen transiciones.
var workflows = map[string][]string{
	entity.OpTypeReceipt:  {entity.StatusOrderPlaced, entity.StatusInTransit, entity.StatusCompleted},
	entity.OpTypeDelivery: {entity.StatusOrderReceived, entity.StatusShipping, entity.StatusShipped},
}

// InitialStatus devuelve el estado de workflow con el que nace una operación.
func InitialStatus(opType string) string {
	if flow, ok := workflows[opType]; ok {
		return flow[0]
	}
	return entity.StatusCompleted
}

// ValidateTransition verifica que from -> to sea el paso siguiente del
// workflow declarado para el tipo de operación. Las actualizaciones de
// estado son solo metadatos: jamás re-disparan mutación de stock.
func ValidateTransition(opType, from, to string) error {
	flow, ok := workflows[opType]
	if !ok {
		return &domain.StatusTransitionError{OperationType: opType, From: from, To: to}
	}
	for i, s := range flow {
		if s == from {
			if i+1 < len(flow) && flow[i+1] == to {
				return nil
			}
			return &domain.StatusTransitionError{OperationType: opType, From: from, To: to}
		}
	}
	return &domain.StatusTransitionError{OperationType: opType, From: from, To: to}
}
