package operations

import (
	"fmt"
	"strings"
	"time"

	"github.com/cementiri/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ExpedienteTipo classifies an operational dossier
type ExpedienteTipo string

const (
	ExpedienteInhumacion ExpedienteTipo = "INHUMACION"
	ExpedienteExhumacion ExpedienteTipo = "EXHUMACION"
	ExpedienteTraslado   ExpedienteTipo = "TRASLADO"
	ExpedienteReduccion  ExpedienteTipo = "REDUCCION"
	ExpedienteOtro       ExpedienteTipo = "OTRO"
)

// IsValid checks if the tipo is a known value
func (t ExpedienteTipo) IsValid() bool {
	switch t {
	case ExpedienteInhumacion, ExpedienteExhumacion, ExpedienteTraslado, ExpedienteReduccion, ExpedienteOtro:
		return true
	}
	return false
}

// ExpedienteEstado is the dossier lifecycle state
type ExpedienteEstado string

const (
	ExpedienteAbierto ExpedienteEstado = "ABIERTO"
	ExpedienteEnCurso ExpedienteEstado = "EN_CURSO"
	ExpedienteCerrado ExpedienteEstado = "CERRADO"
	ExpedienteAnulado ExpedienteEstado = "ANULADO"
)

// ParseExpedienteEstado parses a raw state string
func ParseExpedienteEstado(raw string) (ExpedienteEstado, error) {
	e := ExpedienteEstado(strings.ToUpper(strings.TrimSpace(raw)))
	switch e {
	case ExpedienteAbierto, ExpedienteEnCurso, ExpedienteCerrado, ExpedienteAnulado:
		return e, nil
	}
	return "", shared.NewDomainError("INVALID_INPUT", "invalid expediente state")
}

var expedienteTransitions = map[ExpedienteEstado][]ExpedienteEstado{
	ExpedienteAbierto: {ExpedienteEnCurso, ExpedienteCerrado, ExpedienteAnulado},
	ExpedienteEnCurso: {ExpedienteCerrado, ExpedienteAnulado},
	ExpedienteCerrado: {},
	ExpedienteAnulado: {},
}

// CanTransitionTo reports whether the state graph allows the move
func (e ExpedienteEstado) CanTransitionTo(target ExpedienteEstado) bool {
	for _, allowed := range expedienteTransitions[e] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Expediente is an operational dossier: burial, exhumation, transfer or
// reduction work on a grave.
type Expediente struct {
	shared.TenantAggregateRoot
	Numero             string
	Tipo               ExpedienteTipo
	Estado             ExpedienteEstado
	SepulturaID        *uuid.UUID
	DeclarantePersonID *uuid.UUID
	FechaServicio      *time.Time
	Notes              string
}

// NewExpediente opens a dossier in ABIERTO
func NewExpediente(tenantID uuid.UUID, numero string, tipo ExpedienteTipo) (*Expediente, error) {
	if numero == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "expediente number is required")
	}
	if !tipo.IsValid() {
		return nil, shared.NewDomainError("INVALID_INPUT", "invalid expediente type")
	}
	return &Expediente{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Numero:              numero,
		Tipo:                tipo,
		Estado:              ExpedienteAbierto,
	}, nil
}

// TransitionTo moves the dossier along the state graph
func (e *Expediente) TransitionTo(target ExpedienteEstado) error {
	if !e.Estado.CanTransitionTo(target) {
		return shared.NewDomainError("INVALID_TRANSITION",
			fmt.Sprintf("transition %s -> %s is not allowed", e.Estado, target))
	}
	e.Estado = target
	return nil
}

// IsTerminal reports whether the dossier is finished
func (e *Expediente) IsTerminal() bool {
	return e.Estado == ExpedienteCerrado || e.Estado == ExpedienteAnulado
}
