package registry

import (
	"fmt"

	"github.com/cementiri/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// SepulturaEstado represents the occupancy state of a grave
type SepulturaEstado string

const (
	// EstadoLliure is a raw, never-offered cell (mass-created inventory)
	EstadoLliure SepulturaEstado = "LLIURE"
	// EstadoDisponible is offered for concession
	EstadoDisponible SepulturaEstado = "DISPONIBLE"
	// EstadoOcupada has an active funeral-right contract
	EstadoOcupada SepulturaEstado = "OCUPADA"
	// EstadoReservada is held for a pending procedure
	EstadoReservada SepulturaEstado = "RESERVADA"
	// EstadoBloqueada is administratively blocked
	EstadoBloqueada SepulturaEstado = "BLOQUEADA"
	// EstadoPropia is privately owned; it never accrues maintenance fees
	EstadoPropia SepulturaEstado = "PROPIA"
)

// IsValid checks if the state is a known value
func (e SepulturaEstado) IsValid() bool {
	switch e {
	case EstadoLliure, EstadoDisponible, EstadoOcupada, EstadoReservada, EstadoBloqueada, EstadoPropia:
		return true
	}
	return false
}

// String returns the string representation
func (e SepulturaEstado) String() string {
	return string(e)
}

// Sepultura is a grave, niche or plot unit in cemetery inventory
type Sepultura struct {
	shared.TenantAggregateRoot
	CemeteryID uuid.UUID
	Bloque     string
	Fila       int
	Columna    int
	Via        string
	Numero     int
	Modalidad  string
	Estado     SepulturaEstado
	TipoBloque string
	TipoLapida string
	Orientacion string
}

// NewSepultura creates a grave unit in the given initial state
func NewSepultura(tenantID, cemeteryID uuid.UUID, bloque string, fila, columna, numero int, estado SepulturaEstado) (*Sepultura, error) {
	if bloque == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "bloque is required")
	}
	if fila < 1 || columna < 1 {
		return nil, shared.NewDomainError("INVALID_INPUT", "fila and columna must be positive")
	}
	if !estado.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "invalid sepultura state")
	}
	return &Sepultura{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		CemeteryID:          cemeteryID,
		Bloque:              bloque,
		Fila:                fila,
		Columna:             columna,
		Numero:              numero,
		Estado:              estado,
	}, nil
}

// LocationLabel renders the human-readable grave location
func (s *Sepultura) LocationLabel() string {
	return fmt.Sprintf("%s / F%d C%d / N%d", s.Bloque, s.Fila, s.Columna, s.Numero)
}

// ChangeEstado applies a manual state change. OCUPADA can never be set by
// hand: only contract activation occupies a grave. An occupied grave can only
// be released to DISPONIBLE or BLOQUEADA.
func (s *Sepultura) ChangeEstado(newEstado SepulturaEstado) error {
	if !newEstado.IsValid() {
		return shared.NewDomainError("INVALID_INPUT", "invalid sepultura state")
	}
	if newEstado == s.Estado {
		return nil
	}
	if newEstado == EstadoOcupada {
		return shared.NewDomainError("INVALID_TRANSITION", "OCUPADA is only set by contract activation")
	}
	if s.Estado == EstadoOcupada && newEstado != EstadoDisponible && newEstado != EstadoBloqueada {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("cannot change OCUPADA to %s", newEstado))
	}
	old := s.Estado
	s.Estado = newEstado
	s.AddDomainEvent(NewSepulturaEstadoChangedEvent(s, old, newEstado))
	return nil
}

// Occupy marks the grave occupied on contract activation
func (s *Sepultura) Occupy() error {
	if s.Estado == EstadoOcupada {
		return shared.NewDomainError("INVALID_STATE", "sepultura is already occupied")
	}
	old := s.Estado
	s.Estado = EstadoOcupada
	s.AddDomainEvent(NewSepulturaEstadoChangedEvent(s, old, EstadoOcupada))
	return nil
}
