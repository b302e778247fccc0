package operations

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpedienteTransitions(t *testing.T) {
	e, err := NewExpediente(uuid.New(), "C-2026-0001", ExpedienteInhumacion)
	require.NoError(t, err)
	assert.Equal(t, ExpedienteAbierto, e.Estado)

	require.NoError(t, e.TransitionTo(ExpedienteEnCurso))
	require.NoError(t, e.TransitionTo(ExpedienteCerrado))
	assert.True(t, e.IsTerminal())

	assert.Error(t, e.TransitionTo(ExpedienteAbierto))
	assert.Error(t, e.TransitionTo(ExpedienteAnulado))
}

func TestExpedienteDirectClose(t *testing.T) {
	e, err := NewExpediente(uuid.New(), "C-2026-0002", ExpedienteOtro)
	require.NoError(t, err)
	require.NoError(t, e.TransitionTo(ExpedienteCerrado))
}

func TestOrdenTrabajoCompleteIsIdempotent(t *testing.T) {
	ot, err := NewOrdenTrabajo(uuid.New(), uuid.New(), "Abrir nicho")
	require.NoError(t, err)
	assert.Equal(t, OrdenPendiente, ot.Estado)

	ot.Complete()
	require.NotNil(t, ot.CompletedAt)
	first := *ot.CompletedAt

	ot.Complete()
	assert.Equal(t, first, *ot.CompletedAt)
}

func TestLapidaStock(t *testing.T) {
	s, err := NewLapidaStock(uuid.New(), " lap-01 ", "Modelo resina")
	require.NoError(t, err)
	assert.Equal(t, "LAP-01", s.Codigo)

	require.NoError(t, s.Enter(5))
	assert.Equal(t, 5, s.AvailableQty)

	require.NoError(t, s.Exit(3))
	assert.Equal(t, 2, s.AvailableQty)

	err = s.Exit(3)
	assert.Error(t, err)
	assert.Equal(t, 2, s.AvailableQty)

	assert.Error(t, s.Enter(0))
	assert.Error(t, s.Exit(-1))
}

func TestInscripcionLinearChain(t *testing.T) {
	i, err := NewInscripcion(uuid.New(), uuid.New(), "Familia Bosch")
	require.NoError(t, err)
	assert.Equal(t, InscripcionPendienteGrabar, i.Estado)

	// skipping a step is rejected
	assert.Error(t, i.TransitionTo(InscripcionPendienteNotificar))

	require.NoError(t, i.TransitionTo(InscripcionPendienteColocar))
	require.NoError(t, i.TransitionTo(InscripcionPendienteNotificar))
	require.NoError(t, i.TransitionTo(InscripcionNotificada))

	// terminal
	assert.Error(t, i.TransitionTo(InscripcionPendienteGrabar))
}
