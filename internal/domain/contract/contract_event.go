package contract

import (
	"time"

	"github.com/cementiri/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ContractEvent is an append-only audit entry on a contract
type ContractEvent struct {
	shared.TenantAggregateRoot
	ContractID uuid.UUID
	CaseID     *uuid.UUID
	EventType  string
	EventAt    time.Time
	Details    string
	UserID     *uuid.UUID
}

// Contract audit event types
const (
	ContractEventInicioTransmision  = "INICIO_TRANSMISION"
	ContractEventAprobacion         = "APROBACION"
	ContractEventRechazo            = "RECHAZO"
	ContractEventCambioTitularidad  = "CAMBIO_TITULARIDAD"
	ContractEventDocumentoSubido    = "DOCUMENTO_SUBIDO"
	ContractEventTituloEmitido      = "TITULO_EMITIDO"
	ContractEventTituloDuplicado    = "TITULO_DUPLICADO"
	ContractEventBeneficiarioCambio = "BENEFICIARIO"
	ContractEventPensionista        = "PENSIONISTA"
)

// NewContractEvent creates an audit entry dated now
func NewContractEvent(tenantID, contractID uuid.UUID, caseID *uuid.UUID, eventType, details string, userID *uuid.UUID) *ContractEvent {
	return &ContractEvent{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ContractID:          contractID,
		CaseID:              caseID,
		EventType:           eventType,
		EventAt:             time.Now().UTC(),
		Details:             details,
		UserID:              userID,
	}
}
