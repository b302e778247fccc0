package contract

import (
	"time"

	"github.com/cementiri/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// OwnershipRecord is one slice of the titular ledger: who held the contract
// and during which period. A NULL EndDate marks the single active row per
// contract.
type OwnershipRecord struct {
	shared.TenantAggregateRoot
	ContractID         uuid.UUID
	PersonID           uuid.UUID
	StartDate          time.Time
	EndDate            *time.Time
	IsPensioner        bool
	PensionerSinceDate *time.Time
	IsProvisional      bool
	ProvisionalUntil   *time.Time
}

// NewOwnershipRecord opens an ownership slice starting today
func NewOwnershipRecord(tenantID, contractID, personID uuid.UUID, startDate time.Time) *OwnershipRecord {
	return &OwnershipRecord{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ContractID:          contractID,
		PersonID:            personID,
		StartDate:           shared.DateOnly(startDate),
	}
}

// IsActive reports whether this is the open slice
func (r *OwnershipRecord) IsActive() bool {
	return r.EndDate == nil
}

// Close ends the slice on the given date
func (r *OwnershipRecord) Close(endDate time.Time) error {
	if r.EndDate != nil {
		return shared.NewDomainError("INVALID_STATE", "ownership record is already closed")
	}
	d := shared.DateOnly(endDate)
	r.EndDate = &d
	return nil
}

// SetPensioner flags the holder as pensioner. The discount is not
// retroactive: when no since date is given, it starts today.
func (r *OwnershipRecord) SetPensioner(since *time.Time) {
	r.IsPensioner = true
	if since == nil {
		today := shared.DateOnly(time.Now())
		r.PensionerSinceDate = &today
		return
	}
	d := shared.DateOnly(*since)
	r.PensionerSinceDate = &d
}

// ClearPensioner removes the pensioner flag
func (r *OwnershipRecord) ClearPensioner() {
	r.IsPensioner = false
	r.PensionerSinceDate = nil
}

// MarkProvisional sets the provisional ownership window
func (r *OwnershipRecord) MarkProvisional(until time.Time) {
	r.IsProvisional = true
	d := shared.DateOnly(until)
	r.ProvisionalUntil = &d
}

// DiscountAppliesForYear reports whether the pensioner discount covers a
// given fee year.
func (r *OwnershipRecord) DiscountAppliesForYear(year int) bool {
	return r.IsPensioner && r.PensionerSinceDate != nil && year >= r.PensionerSinceDate.Year()
}

// Beneficiario is one slice of the beneficiary ledger. A NULL ActivoHasta
// marks the single active row per contract.
type Beneficiario struct {
	shared.TenantAggregateRoot
	ContractID  uuid.UUID
	PersonID    uuid.UUID
	ActivoDesde time.Time
	ActivoHasta *time.Time
}

// NewBeneficiario opens a beneficiary slice
func NewBeneficiario(tenantID, contractID, personID uuid.UUID, desde time.Time) *Beneficiario {
	return &Beneficiario{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		ContractID:          contractID,
		PersonID:            personID,
		ActivoDesde:         shared.DateOnly(desde),
	}
}

// IsActive reports whether this is the open slice
func (b *Beneficiario) IsActive() bool {
	return b.ActivoHasta == nil
}

// Close ends the slice on the given date
func (b *Beneficiario) Close(hasta time.Time) error {
	if b.ActivoHasta != nil {
		return shared.NewDomainError("INVALID_STATE", "beneficiary record is already closed")
	}
	d := shared.DateOnly(hasta)
	b.ActivoHasta = &d
	return nil
}
