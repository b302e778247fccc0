package persistence

import (
	"gorm.io/gorm"

	"github.com/cementiri/backend/internal/domain/billing"
	"github.com/cementiri/backend/internal/domain/contract"
	"github.com/cementiri/backend/internal/domain/identity"
	"github.com/cementiri/backend/internal/domain/operations"
	"github.com/cementiri/backend/internal/domain/registry"
	"github.com/cementiri/backend/internal/domain/transfer"
)

// Repositories bundles every repository over one connection. Build a second
// bundle over a transaction with ForTransaction to run multi-aggregate writes
// atomically.
type Repositories struct {
	Organizations identity.OrganizationRepository
	Users         identity.UserRepository
	Memberships   identity.MembershipRepository

	Cemeteries  registry.CemeteryRepository
	Sepulturas  registry.SepulturaRepository
	Persons     registry.PersonRepository
	Movimientos registry.MovimientoRepository

	Contratos      contract.ContratoRepository
	Ownership      contract.OwnershipRepository
	Beneficiarios  contract.BeneficiarioRepository
	ContractEvents contract.ContractEventRepository

	Cases transfer.CaseRepository

	Tickets  billing.TicketRepository
	Invoices billing.InvoiceRepository
	Payments billing.PaymentRepository

	Expedientes    operations.ExpedienteRepository
	OrdenesTrabajo operations.OrdenTrabajoRepository
	LapidaStock    operations.LapidaStockRepository
	Inscripciones  operations.InscripcionRepository
}

// NewRepositories wires the gorm implementations
func NewRepositories(db *Database) *Repositories {
	return &Repositories{
		Organizations: NewGormOrganizationRepository(db),
		Users:         NewGormUserRepository(db),
		Memberships:   NewGormMembershipRepository(db),

		Cemeteries:  NewGormCemeteryRepository(db),
		Sepulturas:  NewGormSepulturaRepository(db),
		Persons:     NewGormPersonRepository(db),
		Movimientos: NewGormMovimientoRepository(db),

		Contratos:      NewGormContratoRepository(db),
		Ownership:      NewGormOwnershipRepository(db),
		Beneficiarios:  NewGormBeneficiarioRepository(db),
		ContractEvents: NewGormContractEventRepository(db),

		Cases: NewGormCaseRepository(db),

		Tickets:  NewGormTicketRepository(db),
		Invoices: NewGormInvoiceRepository(db),
		Payments: NewGormPaymentRepository(db),

		Expedientes:    NewGormExpedienteRepository(db),
		OrdenesTrabajo: NewGormOrdenTrabajoRepository(db),
		LapidaStock:    NewGormLapidaStockRepository(db),
		Inscripciones:  NewGormInscripcionRepository(db),
	}
}

// ForTransaction rebuilds the bundle over an open transaction
func ForTransaction(tx *gorm.DB) *Repositories {
	return NewRepositories(&Database{DB: tx})
}
