package ledger_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tu-usuario/stockmaster-api/internal/domain"
	"github.com/tu-usuario/stockmaster-api/internal/domain/entity"
	"github.com/tu-usuario/stockmaster-api/internal/domain/ledger"
)

func TestInitialStatus_PorTipo(t *testing.T) {
	assert.Equal(t, entity.StatusOrderPlaced, ledger.InitialStatus(entity.OpTypeReceipt))
	assert.Equal(t, entity.StatusOrderReceived, ledger.InitialStatus(entity.OpTypeDelivery))
	// Traslados y ajustes nacen terminados: no hay logística que seguir.
	assert.Equal(t, entity.StatusCompleted, ledger.InitialStatus(entity.OpTypeTransfer))
	assert.Equal(t, entity.StatusCompleted, ledger.InitialStatus(entity.OpTypeAdjustment))
}

func TestValidateTransition_RecepcionOrdenDeclarado(t *testing.T) {
	assert.NoError(t, ledger.ValidateTransition(entity.OpTypeReceipt, entity.StatusOrderPlaced, entity.StatusInTransit))
	assert.NoError(t, ledger.ValidateTransition(entity.OpTypeReceipt, entity.StatusInTransit, entity.StatusCompleted))
}

func TestValidateTransition_EntregaOrdenDeclarado(t *testing.T) {
	assert.NoError(t, ledger.ValidateTransition(entity.OpTypeDelivery, entity.StatusOrderReceived, entity.StatusShipping))
	assert.NoError(t, ledger.ValidateTransition(entity.OpTypeDelivery, entity.StatusShipping, entity.StatusShipped))
}

// Saltarse un paso, retroceder o avanzar desde un estado terminal debe
// fallar con ErrInvalidStatusTransition y dejar el estado intacto.
func TestValidateTransition_FueraDeOrden(t *testing.T) {
	cases := []struct {
		name     string
		opType   string
		from, to string
	}{
		{"saltar paso", entity.OpTypeReceipt, entity.StatusOrderPlaced, entity.StatusCompleted},
		{"retroceder", entity.OpTypeReceipt, entity.StatusInTransit, entity.StatusOrderPlaced},
		{"desde terminal", entity.OpTypeReceipt, entity.StatusCompleted, entity.StatusInTransit},
		{"workflow ajeno", entity.OpTypeDelivery, entity.StatusOrderPlaced, entity.StatusInTransit},
		{"estado desconocido", entity.OpTypeDelivery, "UNKNOWN", entity.StatusShipping},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ledger.ValidateTransition(tc.opType, tc.from, tc.to)
			assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)
		})
	}
}

// Los tipos sin workflow (traslado, ajuste) no admiten transición alguna.
func TestValidateTransition_TiposSinWorkflow(t *testing.T) {
	err := ledger.ValidateTransition(entity.OpTypeTransfer, entity.StatusCompleted, entity.StatusShipped)
	assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)

	err = ledger.ValidateTransition(entity.OpTypeAdjustment, entity.StatusCompleted, entity.StatusInTransit)
	assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)
}
