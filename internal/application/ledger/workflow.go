package ledger

import (
	"context"
	"time"

	"github.com/tu-usuario/stockmaster-api/internal/domain"
	"github.com/tu-usuario/stockmaster-api/internal/domain/entity"
	ledgerdomain "github.com/tu-usuario/stockmaster-api/internal/domain/ledger"
	"github.com/tu-usuario/stockmaster-api/internal/domain/repository"
)

// Workflow avanza el estado logístico de una operación, desacoplado del
// commit del ledger: una recepción puede registrarse antes de que la
// mercancía llegue físicamente. La mutación de stock ocurrió una sola vez
// en el commit inicial; aquí solo se mueven metadatos.
type Workflow struct {
	opRepo repository.OperationRepository
}

// NewWorkflow construye el caso de uso de estados.
func NewWorkflow(opRepo repository.OperationRepository) *Workflow {
	return &Workflow{opRepo: opRepo}
}

// UpdateStatus valida la transición contra el orden declarado para el tipo
// de operación y la persiste. Devuelve la operación actualizada.
func (w *Workflow) UpdateStatus(ctx context.Context, operationID, newStatus string) (*entity.Operation, error) {
	op, err := w.opRepo.GetByID(ctx, operationID)
	if err != nil {
		return nil, err
	}
	if op == nil {
		return nil, domain.ErrNotFound
	}
	if err := ledgerdomain.ValidateTransition(op.Type, op.Status, newStatus); err != nil {
		return nil, err
	}
	if err := w.opRepo.UpdateStatus(ctx, operationID, newStatus); err != nil {
		return nil, err
	}
	op.Status = newStatus
	op.UpdatedAt = time.Now()
	return op, nil
}
