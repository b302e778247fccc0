package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cementiri/backend/internal/domain/registry"
	"github.com/cementiri/backend/internal/domain/shared"
	"github.com/cementiri/backend/internal/infrastructure/persistence/models"
)

// GormCemeteryRepository implements registry.CemeteryRepository
type GormCemeteryRepository struct {
	db *Database
}

// NewGormCemeteryRepository creates the repository
func NewGormCemeteryRepository(db *Database) *GormCemeteryRepository {
	return &GormCemeteryRepository{db: db}
}

// FindByID loads a cemetery
func (r *GormCemeteryRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*registry.Cemetery, error) {
	var m models.CemeteryModel
	if err := r.db.WithTenant(ctx, tenantID).First(&m, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

// FindAll lists the tenant's cemeteries
func (r *GormCemeteryRepository) FindAll(ctx context.Context, tenantID uuid.UUID) ([]registry.Cemetery, error) {
	var ms []models.CemeteryModel
	if err := r.db.WithTenant(ctx, tenantID).Order("name").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]registry.Cemetery, len(ms))
	for i := range ms {
		out[i] = *ms[i].ToDomain()
	}
	return out, nil
}

// Save upserts a cemetery
func (r *GormCemeteryRepository) Save(ctx context.Context, cemetery *registry.Cemetery) error {
	var m models.CemeteryModel
	m.FromDomain(cemetery)
	return r.db.WithContext(ctx).Save(&m).Error
}

// GormSepulturaRepository implements registry.SepulturaRepository
type GormSepulturaRepository struct {
	db *Database
}

// NewGormSepulturaRepository creates the repository
func NewGormSepulturaRepository(db *Database) *GormSepulturaRepository {
	return &GormSepulturaRepository{db: db}
}

// FindByID loads a grave
func (r *GormSepulturaRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*registry.Sepultura, error) {
	var m models.SepulturaModel
	if err := r.db.WithTenant(ctx, tenantID).First(&m, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

// FindByLocation loads a grave by its physical coordinates
func (r *GormSepulturaRepository) FindByLocation(ctx context.Context, tenantID, cemeteryID uuid.UUID, bloque string, fila, columna, numero int) (*registry.Sepultura, error) {
	var m models.SepulturaModel
	err := r.db.WithTenant(ctx, tenantID).
		Where("cemetery_id = ? AND bloque = ? AND fila = ? AND columna = ? AND numero = ?",
			cemeteryID, bloque, fila, columna, numero).
		First(&m).Error
	if err != nil {
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

// debtSubquery sums outstanding maintenance tickets of the grave's contracts
const debtSubquery = `(SELECT COALESCE(SUM(t.importe), 0) FROM tasa_tickets t
	JOIN contratos c ON c.id = t.contrato_id
	WHERE c.sepultura_id = sepulturas.id AND t.estado IN ('PENDIENTE', 'FACTURADO'))`

type sepulturaDebtRow struct {
	models.SepulturaModel
	Debt decimal.Decimal
}

// Search lists graves with their outstanding debt, filtered and paginated.
// HolderName matches the accent-folded name of the active holder.
func (r *GormSepulturaRepository) Search(ctx context.Context, tenantID uuid.UUID, filter registry.SepulturaSearchFilter) (shared.Paginated[registry.SepulturaWithDebt], error) {
	q := r.db.WithContext(ctx).
		Model(&models.SepulturaModel{}).
		Where("sepulturas.tenant_id = ?", tenantID)

	if filter.CemeteryID != nil {
		q = q.Where("sepulturas.cemetery_id = ?", *filter.CemeteryID)
	}
	if filter.Bloque != "" {
		q = q.Where("sepulturas.bloque = ?", filter.Bloque)
	}
	if filter.Estado != "" {
		q = q.Where("sepulturas.estado = ?", string(filter.Estado))
	}
	if filter.Numero != nil {
		q = q.Where("sepulturas.numero = ?", *filter.Numero)
	}
	if filter.HolderName != "" {
		folded := "%" + registry.FoldName(filter.HolderName) + "%"
		q = q.Where(`sepulturas.id IN (
			SELECT c.sepultura_id FROM contratos c
			JOIN ownership_records o ON o.contract_id = c.id AND o.end_date IS NULL
			JOIN persons p ON p.id = o.person_id
			WHERE c.estado = 'ACTIVO' AND p.name_folded LIKE ?)`, folded)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return shared.Paginated[registry.SepulturaWithDebt]{}, err
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	var rows []sepulturaDebtRow
	err := q.Select("sepulturas.*, " + debtSubquery + " AS debt").
		Order("sepulturas.bloque, sepulturas.fila, sepulturas.columna, sepulturas.numero").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&rows).Error
	if err != nil {
		return shared.Paginated[registry.SepulturaWithDebt]{}, err
	}

	items := make([]registry.SepulturaWithDebt, len(rows))
	for i := range rows {
		items[i] = registry.SepulturaWithDebt{
			Sepultura: *rows[i].SepulturaModel.ToDomain(),
			Debt:      rows[i].Debt,
		}
	}
	return shared.NewPaginated(items, total, page, pageSize), nil
}

// ExistingLocations returns a "fila:columna" set of occupied grid positions
// in a block, used by mass-create to skip collisions.
func (r *GormSepulturaRepository) ExistingLocations(ctx context.Context, tenantID, cemeteryID uuid.UUID, bloque string) (map[string]bool, error) {
	type loc struct {
		Fila    int
		Columna int
	}
	var locs []loc
	err := r.db.WithTenant(ctx, tenantID).
		Model(&models.SepulturaModel{}).
		Where("cemetery_id = ? AND bloque = ?", cemeteryID, bloque).
		Select("fila, columna").
		Find(&locs).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]bool, len(locs))
	for _, l := range locs {
		out[fmt.Sprintf("%d:%d", l.Fila, l.Columna)] = true
	}
	return out, nil
}

// Save upserts a grave
func (r *GormSepulturaRepository) Save(ctx context.Context, sepultura *registry.Sepultura) error {
	var m models.SepulturaModel
	m.FromDomain(sepultura)
	return r.db.WithContext(ctx).Save(&m).Error
}

// SaveBatch inserts graves in chunks
func (r *GormSepulturaRepository) SaveBatch(ctx context.Context, sepulturas []*registry.Sepultura) error {
	if len(sepulturas) == 0 {
		return nil
	}
	ms := make([]models.SepulturaModel, len(sepulturas))
	for i, s := range sepulturas {
		ms[i].FromDomain(s)
	}
	return r.db.WithContext(ctx).CreateInBatches(ms, 200).Error
}

// CountByEstado returns grave counts grouped by state
func (r *GormSepulturaRepository) CountByEstado(ctx context.Context, tenantID uuid.UUID) (map[registry.SepulturaEstado]int64, error) {
	type row struct {
		Estado string
		N      int64
	}
	var rows []row
	err := r.db.WithTenant(ctx, tenantID).
		Model(&models.SepulturaModel{}).
		Select("estado, COUNT(*) AS n").
		Group("estado").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[registry.SepulturaEstado]int64, len(rows))
	for _, r := range rows {
		out[registry.SepulturaEstado(r.Estado)] = r.N
	}
	return out, nil
}

// GormPersonRepository implements registry.PersonRepository
type GormPersonRepository struct {
	db *Database
}

// NewGormPersonRepository creates the repository
func NewGormPersonRepository(db *Database) *GormPersonRepository {
	return &GormPersonRepository{db: db}
}

// FindByID loads a person
func (r *GormPersonRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*registry.Person, error) {
	var m models.PersonModel
	if err := r.db.WithTenant(ctx, tenantID).First(&m, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

// FindByDniNif loads a person by normalized document number
func (r *GormPersonRepository) FindByDniNif(ctx context.Context, tenantID uuid.UUID, dniNif string) (*registry.Person, error) {
	var m models.PersonModel
	err := r.db.WithTenant(ctx, tenantID).
		First(&m, "dni_nif = ?", registry.NormalizeDniNif(dniNif)).Error
	if err != nil {
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

// SearchByName finds persons by accent-insensitive name match
func (r *GormPersonRepository) SearchByName(ctx context.Context, tenantID uuid.UUID, name string, filter shared.Filter) (shared.Paginated[registry.Person], error) {
	q := r.db.WithTenant(ctx, tenantID).Model(&models.PersonModel{})
	if name != "" {
		q = q.Where("name_folded LIKE ?", "%"+registry.FoldName(name)+"%")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return shared.Paginated[registry.Person]{}, err
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	var ms []models.PersonModel
	err := q.Order("last_name, first_name").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&ms).Error
	if err != nil {
		return shared.Paginated[registry.Person]{}, err
	}

	items := make([]registry.Person, len(ms))
	for i := range ms {
		items[i] = *ms[i].ToDomain()
	}
	return shared.NewPaginated(items, total, page, pageSize), nil
}

// Save upserts a person
func (r *GormPersonRepository) Save(ctx context.Context, person *registry.Person) error {
	var m models.PersonModel
	m.FromDomain(person)
	return r.db.WithContext(ctx).Save(&m).Error
}

// GormMovimientoRepository implements registry.MovimientoRepository
type GormMovimientoRepository struct {
	db *Database
}

// NewGormMovimientoRepository creates the repository
func NewGormMovimientoRepository(db *Database) *GormMovimientoRepository {
	return &GormMovimientoRepository{db: db}
}

// Append inserts a ledger entry. Entries are never updated.
func (r *GormMovimientoRepository) Append(ctx context.Context, movimiento *registry.MovimientoSepultura) error {
	var m models.MovimientoSepulturaModel
	m.FromDomain(movimiento)
	return r.db.WithContext(ctx).Create(&m).Error
}

// FindBySepultura lists ledger entries newest first
func (r *GormMovimientoRepository) FindBySepultura(ctx context.Context, tenantID, sepulturaID uuid.UUID) ([]registry.MovimientoSepultura, error) {
	var ms []models.MovimientoSepulturaModel
	err := r.db.WithTenant(ctx, tenantID).
		Where("sepultura_id = ?", sepulturaID).
		Order("fecha DESC").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	out := make([]registry.MovimientoSepultura, len(ms))
	for i := range ms {
		out[i] = *ms[i].ToDomain()
	}
	return out, nil
}

// normalizePage clamps paging parameters to sane values
func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
