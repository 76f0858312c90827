package repository

import (
	"context"

	"github.com/tu-usuario/stockmaster-api/internal/domain/entity"
)

// OperationRepository define el puerto de persistencia para Operation.
// Save persiste el estado terminal de ejecución; UpdateStatus solo toca el
// workflow logístico (metadatos), nunca cantidades.
type OperationRepository interface {
	Save(ctx context.Context, op *entity.Operation) error
	GetByID(ctx context.Context, id string) (*entity.Operation, error)
	UpdateStatus(ctx context.Context, id, status string) error
}
