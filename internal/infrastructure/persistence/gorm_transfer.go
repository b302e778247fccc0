package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/cementiri/backend/internal/domain/registry"
	"github.com/cementiri/backend/internal/domain/shared"
	"github.com/cementiri/backend/internal/domain/transfer"
	"github.com/cementiri/backend/internal/infrastructure/persistence/models"
)

// GormCaseRepository implements transfer.CaseRepository
type GormCaseRepository struct {
	db *Database
}

// NewGormCaseRepository creates the repository
func NewGormCaseRepository(db *Database) *GormCaseRepository {
	return &GormCaseRepository{db: db}
}

// FindByID loads a case with parties, documents and publications
func (r *GormCaseRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*transfer.OwnershipTransferCase, error) {
	var m models.TransferCaseModel
	err := r.db.WithTenant(ctx, tenantID).
		Preload("Parties").
		Preload("Documents").
		Preload("Publications").
		First(&m, "id = ?", id).Error
	if err != nil {
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

// Search lists cases matching the filter, children preloaded
func (r *GormCaseRepository) Search(ctx context.Context, tenantID uuid.UUID, filter transfer.CaseSearchFilter) (shared.Paginated[transfer.OwnershipTransferCase], error) {
	q := r.db.WithContext(ctx).
		Model(&models.TransferCaseModel{}).
		Where("transfer_cases.tenant_id = ?", tenantID)

	if filter.Type != "" {
		q = q.Where("transfer_cases.type = ?", string(filter.Type))
	}
	if filter.Status != "" {
		q = q.Where("transfer_cases.status = ?", string(filter.Status))
	}
	if filter.ContractID != nil {
		q = q.Where("transfer_cases.contract_id = ?", *filter.ContractID)
	}
	if filter.SepulturaID != nil {
		q = q.Where("transfer_cases.contract_id IN (SELECT id FROM contratos WHERE sepultura_id = ?)", *filter.SepulturaID)
	}
	if filter.OpenedFrom != nil {
		q = q.Where("transfer_cases.opened_at >= ?", *filter.OpenedFrom)
	}
	if filter.OpenedTo != nil {
		q = q.Where("transfer_cases.opened_at <= ?", *filter.OpenedTo)
	}
	if filter.PartyName != "" {
		folded := "%" + registry.FoldName(filter.PartyName) + "%"
		q = q.Where(`transfer_cases.id IN (
			SELECT pt.case_id FROM transfer_case_parties pt
			JOIN persons p ON p.id = pt.person_id
			WHERE p.name_folded LIKE ?)`, folded)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return shared.Paginated[transfer.OwnershipTransferCase]{}, err
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	var ms []models.TransferCaseModel
	err := q.Preload("Parties").
		Preload("Documents").
		Preload("Publications").
		Order("transfer_cases.opened_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&ms).Error
	if err != nil {
		return shared.Paginated[transfer.OwnershipTransferCase]{}, err
	}

	items := make([]transfer.OwnershipTransferCase, len(ms))
	for i := range ms {
		items[i] = *ms[i].ToDomain()
	}
	return shared.NewPaginated(items, total, page, pageSize), nil
}

// CountByStatus returns case counts grouped by workflow status
func (r *GormCaseRepository) CountByStatus(ctx context.Context, tenantID uuid.UUID) (map[transfer.CaseStatus]int64, error) {
	type row struct {
		Status string
		N      int64
	}
	var rows []row
	err := r.db.WithTenant(ctx, tenantID).
		Model(&models.TransferCaseModel{}).
		Select("status, COUNT(*) AS n").
		Group("status").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[transfer.CaseStatus]int64, len(rows))
	for _, r := range rows {
		out[transfer.CaseStatus(r.Status)] = r.N
	}
	return out, nil
}

// CountCaseNumbersLike counts case numbers with a prefix, for sequence generation
func (r *GormCaseRepository) CountCaseNumbersLike(ctx context.Context, tenantID uuid.UUID, prefix string) (int64, error) {
	var n int64
	err := r.db.WithTenant(ctx, tenantID).
		Model(&models.TransferCaseModel{}).
		Where("case_number LIKE ?", prefix+"%").
		Count(&n).Error
	return n, err
}

// CountResolutionNumbersLike counts resolution numbers with a prefix
func (r *GormCaseRepository) CountResolutionNumbersLike(ctx context.Context, tenantID uuid.UUID, prefix string) (int64, error) {
	var n int64
	err := r.db.WithTenant(ctx, tenantID).
		Model(&models.TransferCaseModel{}).
		Where("resolution_number LIKE ?", prefix+"%").
		Count(&n).Error
	return n, err
}

// FindStalledDocsPending returns DOCS_PENDING cases not updated since olderThan
func (r *GormCaseRepository) FindStalledDocsPending(ctx context.Context, tenantID uuid.UUID, olderThan time.Time) ([]transfer.OwnershipTransferCase, error) {
	var ms []models.TransferCaseModel
	err := r.db.WithTenant(ctx, tenantID).
		Where("status = ? AND updated_at < ?", string(transfer.StatusDocsPending), olderThan).
		Order("updated_at").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	out := make([]transfer.OwnershipTransferCase, len(ms))
	for i := range ms {
		out[i] = *ms[i].ToDomain()
	}
	return out, nil
}

// Save upserts the case row and its children
func (r *GormCaseRepository) Save(ctx context.Context, c *transfer.OwnershipTransferCase) error {
	var m models.TransferCaseModel
	m.FromDomain(c)
	return r.db.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Save(&m).Error
}

// SaveParty upserts a single case party
func (r *GormCaseRepository) SaveParty(ctx context.Context, party *transfer.OwnershipTransferParty) error {
	var m models.TransferPartyModel
	m.FromDomain(party)
	return r.db.WithContext(ctx).Save(&m).Error
}

// DeletePartiesByRole removes parties of a role from a case
func (r *GormCaseRepository) DeletePartiesByRole(ctx context.Context, tenantID, caseID uuid.UUID, role transfer.PartyRole) error {
	return r.db.WithTenant(ctx, tenantID).
		Where("case_id = ? AND role = ?", caseID, string(role)).
		Delete(&models.TransferPartyModel{}).Error
}

// SaveDocument upserts a single checklist document
func (r *GormCaseRepository) SaveDocument(ctx context.Context, doc *transfer.CaseDocument) error {
	var m models.TransferDocumentModel
	m.FromDomain(doc)
	return r.db.WithContext(ctx).Save(&m).Error
}

// SavePublication upserts a publication record
func (r *GormCaseRepository) SavePublication(ctx context.Context, pub *transfer.Publication) error {
	var m models.TransferPublicationModel
	m.FromDomain(pub)
	return r.db.WithContext(ctx).Save(&m).Error
}
