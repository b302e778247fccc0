package contract

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// ContratoRepository persists funeral-right contracts
type ContratoRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*DerechoFunerarioContrato, error)
	FindActiveBySepultura(ctx context.Context, tenantID, sepulturaID uuid.UUID) (*DerechoFunerarioContrato, error)
	// FindActiveConcessionsCovering returns ACTIVO concession contracts whose
	// term includes the given date. Used by yearly ticket generation.
	FindActiveConcessionsCovering(ctx context.Context, tenantID uuid.UUID, date time.Time) ([]DerechoFunerarioContrato, error)
	FindExpiringBefore(ctx context.Context, tenantID uuid.UUID, before time.Time) ([]DerechoFunerarioContrato, error)
	Save(ctx context.Context, contrato *DerechoFunerarioContrato) error
}

// OwnershipRepository persists the titular ledger
type OwnershipRepository interface {
	FindActiveByContract(ctx context.Context, tenantID, contractID uuid.UUID) (*OwnershipRecord, error)
	FindByContractOn(ctx context.Context, tenantID, contractID uuid.UUID, on time.Time) (*OwnershipRecord, error)
	FindHistoryByContract(ctx context.Context, tenantID, contractID uuid.UUID) ([]OwnershipRecord, error)
	FindProvisionalExpiringBefore(ctx context.Context, tenantID uuid.UUID, before time.Time) ([]OwnershipRecord, error)
	Save(ctx context.Context, record *OwnershipRecord) error
}

// BeneficiarioRepository persists the beneficiary ledger
type BeneficiarioRepository interface {
	FindActiveByContract(ctx context.Context, tenantID, contractID uuid.UUID) (*Beneficiario, error)
	FindHistoryByContract(ctx context.Context, tenantID, contractID uuid.UUID) ([]Beneficiario, error)
	Save(ctx context.Context, beneficiario *Beneficiario) error
}

// ContractEventRepository persists the append-only contract audit trail
type ContractEventRepository interface {
	Append(ctx context.Context, event *ContractEvent) error
	FindByContract(ctx context.Context, tenantID, contractID uuid.UUID) ([]ContractEvent, error)
}
