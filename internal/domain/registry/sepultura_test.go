package registry

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSepultura(t *testing.T, estado SepulturaEstado) *Sepultura {
	t.Helper()
	s, err := NewSepultura(uuid.New(), uuid.New(), "B-12", 3, 4, 127, estado)
	require.NoError(t, err)
	return s
}

func TestNewSepultura(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		s := newTestSepultura(t, EstadoLliure)
		assert.Equal(t, EstadoLliure, s.Estado)
		assert.Equal(t, "B-12", s.Bloque)
	})

	t.Run("requires bloque", func(t *testing.T) {
		_, err := NewSepultura(uuid.New(), uuid.New(), "", 1, 1, 1, EstadoLliure)
		assert.Error(t, err)
	})

	t.Run("rejects non positive coordinates", func(t *testing.T) {
		_, err := NewSepultura(uuid.New(), uuid.New(), "B-1", 0, 1, 1, EstadoLliure)
		assert.Error(t, err)
	})
}

func TestSepulturaLocationLabel(t *testing.T) {
	s := newTestSepultura(t, EstadoDisponible)
	assert.Equal(t, "B-12 / F3 C4 / N127", s.LocationLabel())
}

func TestSepulturaChangeEstado(t *testing.T) {
	t.Run("manual ocupada is blocked", func(t *testing.T) {
		s := newTestSepultura(t, EstadoDisponible)
		err := s.ChangeEstado(EstadoOcupada)
		assert.Error(t, err)
		assert.Equal(t, EstadoDisponible, s.Estado)
	})

	t.Run("ocupada cannot go lliure", func(t *testing.T) {
		s := newTestSepultura(t, EstadoDisponible)
		require.NoError(t, s.Occupy())
		err := s.ChangeEstado(EstadoLliure)
		assert.Error(t, err)
	})

	t.Run("ocupada can be released to disponible", func(t *testing.T) {
		s := newTestSepultura(t, EstadoDisponible)
		require.NoError(t, s.Occupy())
		require.NoError(t, s.ChangeEstado(EstadoDisponible))
		assert.Equal(t, EstadoDisponible, s.Estado)
	})

	t.Run("ocupada can be blocked", func(t *testing.T) {
		s := newTestSepultura(t, EstadoDisponible)
		require.NoError(t, s.Occupy())
		require.NoError(t, s.ChangeEstado(EstadoBloqueada))
	})

	t.Run("same state is a no-op", func(t *testing.T) {
		s := newTestSepultura(t, EstadoReservada)
		require.NoError(t, s.ChangeEstado(EstadoReservada))
		assert.Empty(t, s.GetDomainEvents())
	})

	t.Run("emits estado changed event", func(t *testing.T) {
		s := newTestSepultura(t, EstadoLliure)
		require.NoError(t, s.ChangeEstado(EstadoDisponible))
		events := s.GetDomainEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventSepulturaEstadoChanged, events[0].EventType())
	})
}

func TestSepulturaOccupy(t *testing.T) {
	s := newTestSepultura(t, EstadoDisponible)
	require.NoError(t, s.Occupy())
	assert.Equal(t, EstadoOcupada, s.Estado)

	err := s.Occupy()
	assert.Error(t, err)
}

func TestFoldName(t *testing.T) {
	assert.Equal(t, "jose martinez", FoldName("José Martínez"))
	assert.Equal(t, "nuria bosch", FoldName("  Núria BOSCH "))
}

func TestNormalizeDniNif(t *testing.T) {
	assert.Equal(t, "12345678Z", NormalizeDniNif(" 12345678 z "))
}
