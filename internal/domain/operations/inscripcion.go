package operations

import (
	"fmt"
	"strings"

	"github.com/cementiri/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// InscripcionEstado is the state of a lateral inscription. The chain is
// strictly linear: engrave, place, notify.
type InscripcionEstado string

const (
	InscripcionPendienteGrabar    InscripcionEstado = "PENDIENTE_GRABAR"
	InscripcionPendienteColocar   InscripcionEstado = "PENDIENTE_COLOCAR"
	InscripcionPendienteNotificar InscripcionEstado = "PENDIENTE_NOTIFICAR"
	InscripcionNotificada         InscripcionEstado = "NOTIFICADA"
)

// ParseInscripcionEstado parses a raw state string
func ParseInscripcionEstado(raw string) (InscripcionEstado, error) {
	e := InscripcionEstado(strings.ToUpper(strings.TrimSpace(raw)))
	switch e {
	case InscripcionPendienteGrabar, InscripcionPendienteColocar, InscripcionPendienteNotificar, InscripcionNotificada:
		return e, nil
	}
	return "", shared.NewDomainError("INVALID_INPUT", "invalid inscription state")
}

// nextInscripcionEstado maps each state to the single allowed successor
var nextInscripcionEstado = map[InscripcionEstado]InscripcionEstado{
	InscripcionPendienteGrabar:    InscripcionPendienteColocar,
	InscripcionPendienteColocar:   InscripcionPendienteNotificar,
	InscripcionPendienteNotificar: InscripcionNotificada,
}

// InscripcionLateral is a lateral engraving on a grave
type InscripcionLateral struct {
	shared.TenantAggregateRoot
	SepulturaID  uuid.UUID
	ExpedienteID *uuid.UUID
	Texto        string
	Estado       InscripcionEstado
}

// NewInscripcion creates an inscription pending engraving
func NewInscripcion(tenantID, sepulturaID uuid.UUID, texto string) (*InscripcionLateral, error) {
	texto = strings.TrimSpace(texto)
	if texto == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "inscription text is required")
	}
	return &InscripcionLateral{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		SepulturaID:         sepulturaID,
		Texto:               texto,
		Estado:              InscripcionPendienteGrabar,
	}, nil
}

// TransitionTo advances the inscription. The requested target must be
// exactly the next state in the chain.
func (i *InscripcionLateral) TransitionTo(target InscripcionEstado) error {
	next, ok := nextInscripcionEstado[i.Estado]
	if !ok || next != target {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("transition %s -> %s is not allowed", i.Estado, target))
	}
	i.Estado = target
	return nil
}
