package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/cementiri/backend/internal/domain/contract"
	"github.com/cementiri/backend/internal/domain/shared"
	"github.com/cementiri/backend/internal/infrastructure/persistence/models"
)

// GormContratoRepository implements contract.ContratoRepository
type GormContratoRepository struct {
	db *Database
}

// NewGormContratoRepository creates the repository
func NewGormContratoRepository(db *Database) *GormContratoRepository {
	return &GormContratoRepository{db: db}
}

// FindByID loads a contract
func (r *GormContratoRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*contract.DerechoFunerarioContrato, error) {
	var m models.ContratoModel
	if err := r.db.WithTenant(ctx, tenantID).First(&m, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

// FindActiveBySepultura loads the single ACTIVO contract of a grave
func (r *GormContratoRepository) FindActiveBySepultura(ctx context.Context, tenantID, sepulturaID uuid.UUID) (*contract.DerechoFunerarioContrato, error) {
	var m models.ContratoModel
	err := r.db.WithTenant(ctx, tenantID).
		First(&m, "sepultura_id = ? AND estado = ?", sepulturaID, string(contract.ContratoActivo)).Error
	if err != nil {
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

// FindActiveConcessionsCovering returns ACTIVO concession contracts whose term
// includes the given date
func (r *GormContratoRepository) FindActiveConcessionsCovering(ctx context.Context, tenantID uuid.UUID, date time.Time) ([]contract.DerechoFunerarioContrato, error) {
	d := shared.DateOnly(date)
	var ms []models.ContratoModel
	err := r.db.WithTenant(ctx, tenantID).
		Where("tipo = ? AND estado = ? AND fecha_inicio <= ? AND fecha_fin >= ?",
			string(contract.DerechoConcesion), string(contract.ContratoActivo), d, d).
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	out := make([]contract.DerechoFunerarioContrato, len(ms))
	for i := range ms {
		out[i] = *ms[i].ToDomain()
	}
	return out, nil
}

// FindExpiringBefore returns active contracts ending before the given date
func (r *GormContratoRepository) FindExpiringBefore(ctx context.Context, tenantID uuid.UUID, before time.Time) ([]contract.DerechoFunerarioContrato, error) {
	var ms []models.ContratoModel
	err := r.db.WithTenant(ctx, tenantID).
		Where("estado = ? AND fecha_fin < ?", string(contract.ContratoActivo), shared.DateOnly(before)).
		Order("fecha_fin").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	out := make([]contract.DerechoFunerarioContrato, len(ms))
	for i := range ms {
		out[i] = *ms[i].ToDomain()
	}
	return out, nil
}

// Save upserts a contract
func (r *GormContratoRepository) Save(ctx context.Context, contrato *contract.DerechoFunerarioContrato) error {
	var m models.ContratoModel
	m.FromDomain(contrato)
	return r.db.WithContext(ctx).Save(&m).Error
}

// GormOwnershipRepository implements contract.OwnershipRepository
type GormOwnershipRepository struct {
	db *Database
}

// NewGormOwnershipRepository creates the repository
func NewGormOwnershipRepository(db *Database) *GormOwnershipRepository {
	return &GormOwnershipRepository{db: db}
}

// FindActiveByContract loads the open titular slice (end_date IS NULL)
func (r *GormOwnershipRepository) FindActiveByContract(ctx context.Context, tenantID, contractID uuid.UUID) (*contract.OwnershipRecord, error) {
	var m models.OwnershipRecordModel
	err := r.db.WithTenant(ctx, tenantID).
		First(&m, "contract_id = ? AND end_date IS NULL", contractID).Error
	if err != nil {
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

// FindByContractOn loads the titular slice covering a date
func (r *GormOwnershipRepository) FindByContractOn(ctx context.Context, tenantID, contractID uuid.UUID, on time.Time) (*contract.OwnershipRecord, error) {
	var m models.OwnershipRecordModel
	err := r.db.WithTenant(ctx, tenantID).
		Where("contract_id = ? AND start_date <= ?", contractID, on).
		Where("end_date IS NULL OR end_date >= ?", on).
		Order("start_date DESC").
		First(&m).Error
	if err != nil {
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

// FindHistoryByContract lists all titular slices oldest first
func (r *GormOwnershipRepository) FindHistoryByContract(ctx context.Context, tenantID, contractID uuid.UUID) ([]contract.OwnershipRecord, error) {
	var ms []models.OwnershipRecordModel
	err := r.db.WithTenant(ctx, tenantID).
		Where("contract_id = ?", contractID).
		Order("start_date").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	out := make([]contract.OwnershipRecord, len(ms))
	for i := range ms {
		out[i] = *ms[i].ToDomain()
	}
	return out, nil
}

// FindProvisionalExpiringBefore returns open provisional slices whose window
// ends before the given date
func (r *GormOwnershipRepository) FindProvisionalExpiringBefore(ctx context.Context, tenantID uuid.UUID, before time.Time) ([]contract.OwnershipRecord, error) {
	var ms []models.OwnershipRecordModel
	err := r.db.WithTenant(ctx, tenantID).
		Where("end_date IS NULL AND is_provisional = true AND provisional_until < ?", shared.DateOnly(before)).
		Order("provisional_until").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	out := make([]contract.OwnershipRecord, len(ms))
	for i := range ms {
		out[i] = *ms[i].ToDomain()
	}
	return out, nil
}

// Save upserts a titular slice
func (r *GormOwnershipRepository) Save(ctx context.Context, record *contract.OwnershipRecord) error {
	var m models.OwnershipRecordModel
	m.FromDomain(record)
	return r.db.WithContext(ctx).Save(&m).Error
}

// GormBeneficiarioRepository implements contract.BeneficiarioRepository
type GormBeneficiarioRepository struct {
	db *Database
}

// NewGormBeneficiarioRepository creates the repository
func NewGormBeneficiarioRepository(db *Database) *GormBeneficiarioRepository {
	return &GormBeneficiarioRepository{db: db}
}

// FindActiveByContract loads the open beneficiary slice (activo_hasta IS NULL)
func (r *GormBeneficiarioRepository) FindActiveByContract(ctx context.Context, tenantID, contractID uuid.UUID) (*contract.Beneficiario, error) {
	var m models.BeneficiarioModel
	err := r.db.WithTenant(ctx, tenantID).
		First(&m, "contract_id = ? AND activo_hasta IS NULL", contractID).Error
	if err != nil {
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

// FindHistoryByContract lists all beneficiary slices oldest first
func (r *GormBeneficiarioRepository) FindHistoryByContract(ctx context.Context, tenantID, contractID uuid.UUID) ([]contract.Beneficiario, error) {
	var ms []models.BeneficiarioModel
	err := r.db.WithTenant(ctx, tenantID).
		Where("contract_id = ?", contractID).
		Order("activo_desde").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	out := make([]contract.Beneficiario, len(ms))
	for i := range ms {
		out[i] = *ms[i].ToDomain()
	}
	return out, nil
}

// Save upserts a beneficiary slice
func (r *GormBeneficiarioRepository) Save(ctx context.Context, beneficiario *contract.Beneficiario) error {
	var m models.BeneficiarioModel
	m.FromDomain(beneficiario)
	return r.db.WithContext(ctx).Save(&m).Error
}

// GormContractEventRepository implements contract.ContractEventRepository
type GormContractEventRepository struct {
	db *Database
}

// NewGormContractEventRepository creates the repository
func NewGormContractEventRepository(db *Database) *GormContractEventRepository {
	return &GormContractEventRepository{db: db}
}

// Append inserts an audit entry. Entries are never updated.
func (r *GormContractEventRepository) Append(ctx context.Context, event *contract.ContractEvent) error {
	var m models.ContractEventModel
	m.FromDomain(event)
	return r.db.WithContext(ctx).Create(&m).Error
}

// FindByContract lists audit entries newest first
func (r *GormContractEventRepository) FindByContract(ctx context.Context, tenantID, contractID uuid.UUID) ([]contract.ContractEvent, error) {
	var ms []models.ContractEventModel
	err := r.db.WithTenant(ctx, tenantID).
		Where("contract_id = ?", contractID).
		Order("event_at DESC").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	out := make([]contract.ContractEvent, len(ms))
	for i := range ms {
		out[i] = *ms[i].ToDomain()
	}
	return out, nil
}
