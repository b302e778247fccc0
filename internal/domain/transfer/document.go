package transfer

import (
	"time"

	"github.com/cementiri/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DocumentStatus tracks a checklist entry from missing to verified
type DocumentStatus string

const (
	DocumentMissing  DocumentStatus = "MISSING"
	DocumentProvided DocumentStatus = "PROVIDED"
	DocumentVerified DocumentStatus = "VERIFIED"
	DocumentRejected DocumentStatus = "REJECTED"
)

// Document type codes used by the checklists
const (
	DocCertDefuncion             = "CERT_DEFUNCION"
	DocTituloSepultura           = "TITULO_SEPULTURA"
	DocSolicitudCambio           = "SOLICITUD_CAMBIO_TITULARIDAD"
	DocCertUltimasVoluntades     = "CERT_ULTIMAS_VOLUNTADES"
	DocTestamentoOAceptacion     = "TESTAMENTO_O_ACEPTACION_HERENCIA"
	DocLibroFamiliaOTestigos     = "LIBRO_FAMILIA_O_TESTIGOS"
	DocCesionDerechos            = "CESION_DERECHOS"
	DocSolicitudBeneficiario     = "SOLICITUD_BENEFICIARIO"
	DocDniNuevoBeneficiario      = "DNI_NUEVO_BENEFICIARIO"
	DocDniTitularActual          = "DNI_TITULAR_ACTUAL"
	DocDniNuevoTitular           = "DNI_NUEVO_TITULAR"
	DocAceptacionServicio        = "ACEPTACION_SMSFT"
	DocPublicacionBOP            = "PUBLICACION_BOP"
	DocPublicacionDiario         = "PUBLICACION_DIARIO"
	DocAcreditacionParentesco    = "ACREDITACION_PARENTESCO_2_GRADO"
)

// ChecklistItem is one entry of a case-type checklist
type ChecklistItem struct {
	DocType  string
	Required bool
}

// caseChecklists maps each case type to its document checklist
var caseChecklists = map[CaseType][]ChecklistItem{
	MortisCausaTestamento: {
		{DocCertDefuncion, true},
		{DocTituloSepultura, true},
		{DocSolicitudCambio, true},
		{DocCertUltimasVoluntades, true},
		{DocTestamentoOAceptacion, true},
		{DocCesionDerechos, false},
		{DocSolicitudBeneficiario, false},
		{DocDniNuevoBeneficiario, false},
	},
	MortisCausaSinTestamento: {
		{DocCertDefuncion, true},
		{DocTituloSepultura, true},
		{DocSolicitudCambio, true},
		{DocCertUltimasVoluntades, true},
		{DocLibroFamiliaOTestigos, true},
		{DocCesionDerechos, false},
		{DocSolicitudBeneficiario, false},
		{DocDniNuevoBeneficiario, false},
	},
	MortisCausaConBeneficiario: {
		{DocCertDefuncion, true},
		{DocTituloSepultura, true},
		{DocSolicitudCambio, true},
		{DocDniNuevoTitular, true},
		{DocCesionDerechos, false},
		{DocSolicitudBeneficiario, false},
		{DocDniNuevoBeneficiario, false},
	},
	InterVivos: {
		{DocSolicitudCambio, true},
		{DocTituloSepultura, true},
		{DocDniTitularActual, true},
		{DocDniNuevoTitular, true},
		{DocAcreditacionParentesco, false},
		{DocCesionDerechos, false},
		{DocSolicitudBeneficiario, false},
		{DocDniNuevoBeneficiario, false},
	},
	Provisional: {
		{DocSolicitudCambio, true},
		{DocAceptacionServicio, true},
		{DocPublicacionBOP, true},
		{DocPublicacionDiario, true},
		{DocCesionDerechos, false},
		{DocSolicitudBeneficiario, false},
		{DocDniNuevoBeneficiario, false},
	},
}

// BeneficiaryReplaceRequiredDocs must be verified before a close with a
// REPLACE beneficiary decision.
var BeneficiaryReplaceRequiredDocs = []string{
	DocCesionDerechos,
	DocSolicitudBeneficiario,
	DocDniNuevoBeneficiario,
}

// ChecklistFor returns the checklist for a case type
func ChecklistFor(t CaseType) []ChecklistItem {
	return caseChecklists[t]
}

// CaseDocument is one checklist entry of a transfer case
type CaseDocument struct {
	shared.TenantAggregateRoot
	CaseID           uuid.UUID
	DocType          string
	Required         bool
	Status           DocumentStatus
	FilePath         string
	UploadedAt       *time.Time
	VerifiedAt       *time.Time
	VerifiedByUserID *uuid.UUID
	Notes            string
}

// NewCaseDocument creates a MISSING checklist entry
func NewCaseDocument(tenantID, caseID uuid.UUID, docType string, required bool) *CaseDocument {
	return &CaseDocument{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		CaseID:              caseID,
		DocType:             docType,
		Required:            required,
		Status:              DocumentMissing,
	}
}

// AttachFile records an uploaded file and moves the entry to PROVIDED
func (d *CaseDocument) AttachFile(path string) {
	now := time.Now().UTC()
	d.FilePath = path
	d.UploadedAt = &now
	d.Status = DocumentProvided
}

// Verify marks the document verified by a user
func (d *CaseDocument) Verify(userID uuid.UUID) {
	now := time.Now().UTC()
	d.Status = DocumentVerified
	d.VerifiedAt = &now
	d.VerifiedByUserID = &userID
}

// RejectDocument marks the document rejected, clearing any verification
func (d *CaseDocument) RejectDocument() {
	d.Status = DocumentRejected
	d.VerifiedAt = nil
	d.VerifiedByUserID = nil
}
