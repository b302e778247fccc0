package registry

import (
	"time"

	"github.com/cementiri/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// MovimientoTipo classifies entries in the per-grave audit ledger
type MovimientoTipo string

const (
	MovimientoContrato               MovimientoTipo = "CONTRATO"
	MovimientoCambioEstado           MovimientoTipo = "CAMBIO_ESTADO"
	MovimientoTasas                  MovimientoTipo = "TASAS"
	MovimientoInicioTransmision      MovimientoTipo = "INICIO_TRANSMISION"
	MovimientoCambioTitularidad      MovimientoTipo = "CAMBIO_TITULARIDAD"
	MovimientoAprobacion             MovimientoTipo = "APROBACION"
	MovimientoRechazo                MovimientoTipo = "RECHAZO"
	MovimientoDocumentoSubido        MovimientoTipo = "DOCUMENTO_SUBIDO"
	MovimientoBeneficiario           MovimientoTipo = "BENEFICIARIO"
	MovimientoPensionista            MovimientoTipo = "PENSIONISTA"
	MovimientoAltaExpediente         MovimientoTipo = "ALTA_EXPEDIENTE"
	MovimientoCambioEstadoExpediente MovimientoTipo = "CAMBIO_ESTADO_EXPEDIENTE"
	MovimientoOTExpediente           MovimientoTipo = "OT_EXPEDIENTE"
	MovimientoLapida                 MovimientoTipo = "LAPIDA"
)

// MovimientoSepultura is an append-only audit entry on a grave.
// Entries are never updated or deleted.
type MovimientoSepultura struct {
	shared.TenantAggregateRoot
	SepulturaID uuid.UUID
	Tipo        MovimientoTipo
	Fecha       time.Time
	Detalle     string
	UserID      *uuid.UUID
}

// NewMovimiento creates an audit entry dated now
func NewMovimiento(tenantID, sepulturaID uuid.UUID, tipo MovimientoTipo, detalle string, userID *uuid.UUID) *MovimientoSepultura {
	return &MovimientoSepultura{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		SepulturaID:         sepulturaID,
		Tipo:                tipo,
		Fecha:               time.Now().UTC(),
		Detalle:             detalle,
		UserID:              userID,
	}
}
