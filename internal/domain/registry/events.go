package registry

import (
	"github.com/cementiri/backend/internal/domain/shared"
)

// Event types for the grave registry
const (
	EventSepulturaEstadoChanged = "registry.sepultura.estado_changed"
)

// SepulturaEstadoChangedEvent is emitted on every grave state change
type SepulturaEstadoChangedEvent struct {
	shared.BaseDomainEvent
	OldEstado SepulturaEstado `json:"old_estado"`
	NewEstado SepulturaEstado `json:"new_estado"`
	Location  string          `json:"location"`
}

// NewSepulturaEstadoChangedEvent creates the state-change event
func NewSepulturaEstadoChangedEvent(s *Sepultura, old, updated SepulturaEstado) *SepulturaEstadoChangedEvent {
	return &SepulturaEstadoChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventSepulturaEstadoChanged, "Sepultura", s.ID, s.TenantID),
		OldEstado:       old,
		NewEstado:       updated,
		Location:        s.LocationLabel(),
	}
}
