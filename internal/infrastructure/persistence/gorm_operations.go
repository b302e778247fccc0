package persistence

import (
	"context"

	"github.com/google/uuid"

	"github.com/cementiri/backend/internal/domain/operations"
	"github.com/cementiri/backend/internal/domain/shared"
	"github.com/cementiri/backend/internal/infrastructure/persistence/models"
)

// GormExpedienteRepository implements operations.ExpedienteRepository
type GormExpedienteRepository struct {
	db *Database
}

// NewGormExpedienteRepository creates the repository
func NewGormExpedienteRepository(db *Database) *GormExpedienteRepository {
	return &GormExpedienteRepository{db: db}
}

// FindByID loads a dossier
func (r *GormExpedienteRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*operations.Expediente, error) {
	var m models.ExpedienteModel
	if err := r.db.WithTenant(ctx, tenantID).First(&m, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

// FindAll lists dossiers with optional estado/tipo filters
func (r *GormExpedienteRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[operations.Expediente], error) {
	q := r.db.WithTenant(ctx, tenantID).Model(&models.ExpedienteModel{})
	if estado, ok := filter.Filters["estado"].(string); ok && estado != "" {
		q = q.Where("estado = ?", estado)
	}
	if tipo, ok := filter.Filters["tipo"].(string); ok && tipo != "" {
		q = q.Where("tipo = ?", tipo)
	}
	if sepulturaID, ok := filter.Filters["sepultura_id"].(uuid.UUID); ok {
		q = q.Where("sepultura_id = ?", sepulturaID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return shared.Paginated[operations.Expediente]{}, err
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	var ms []models.ExpedienteModel
	err := q.Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&ms).Error
	if err != nil {
		return shared.Paginated[operations.Expediente]{}, err
	}

	items := make([]operations.Expediente, len(ms))
	for i := range ms {
		items[i] = *ms[i].ToDomain()
	}
	return shared.NewPaginated(items, total, page, pageSize), nil
}

// CountNumbersLike counts dossier numbers with a prefix
func (r *GormExpedienteRepository) CountNumbersLike(ctx context.Context, tenantID uuid.UUID, prefix string) (int64, error) {
	var n int64
	err := r.db.WithTenant(ctx, tenantID).
		Model(&models.ExpedienteModel{}).
		Where("numero LIKE ?", prefix+"%").
		Count(&n).Error
	return n, err
}

// Save upserts a dossier
func (r *GormExpedienteRepository) Save(ctx context.Context, expediente *operations.Expediente) error {
	var m models.ExpedienteModel
	m.FromDomain(expediente)
	return r.db.WithContext(ctx).Save(&m).Error
}

// GormOrdenTrabajoRepository implements operations.OrdenTrabajoRepository
type GormOrdenTrabajoRepository struct {
	db *Database
}

// NewGormOrdenTrabajoRepository creates the repository
func NewGormOrdenTrabajoRepository(db *Database) *GormOrdenTrabajoRepository {
	return &GormOrdenTrabajoRepository{db: db}
}

// FindByID loads a work order
func (r *GormOrdenTrabajoRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*operations.OrdenTrabajo, error) {
	var m models.OrdenTrabajoModel
	if err := r.db.WithTenant(ctx, tenantID).First(&m, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

// FindByExpediente lists the work orders of a dossier
func (r *GormOrdenTrabajoRepository) FindByExpediente(ctx context.Context, tenantID, expedienteID uuid.UUID) ([]operations.OrdenTrabajo, error) {
	var ms []models.OrdenTrabajoModel
	err := r.db.WithTenant(ctx, tenantID).
		Where("expediente_id = ?", expedienteID).
		Order("created_at").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	out := make([]operations.OrdenTrabajo, len(ms))
	for i := range ms {
		out[i] = *ms[i].ToDomain()
	}
	return out, nil
}

// Save upserts a work order
func (r *GormOrdenTrabajoRepository) Save(ctx context.Context, orden *operations.OrdenTrabajo) error {
	var m models.OrdenTrabajoModel
	m.FromDomain(orden)
	return r.db.WithContext(ctx).Save(&m).Error
}

// GormLapidaStockRepository implements operations.LapidaStockRepository
type GormLapidaStockRepository struct {
	db *Database
}

// NewGormLapidaStockRepository creates the repository
func NewGormLapidaStockRepository(db *Database) *GormLapidaStockRepository {
	return &GormLapidaStockRepository{db: db}
}

// FindByID loads a stock row
func (r *GormLapidaStockRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*operations.LapidaStock, error) {
	var m models.LapidaStockModel
	if err := r.db.WithTenant(ctx, tenantID).First(&m, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

// FindByCodigo loads a stock row by its code
func (r *GormLapidaStockRepository) FindByCodigo(ctx context.Context, tenantID uuid.UUID, codigo string) (*operations.LapidaStock, error) {
	var m models.LapidaStockModel
	if err := r.db.WithTenant(ctx, tenantID).First(&m, "codigo = ?", codigo).Error; err != nil {
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

// FindAll lists all stock rows
func (r *GormLapidaStockRepository) FindAll(ctx context.Context, tenantID uuid.UUID) ([]operations.LapidaStock, error) {
	var ms []models.LapidaStockModel
	if err := r.db.WithTenant(ctx, tenantID).Order("codigo").Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]operations.LapidaStock, len(ms))
	for i := range ms {
		out[i] = *ms[i].ToDomain()
	}
	return out, nil
}

// Save upserts a stock row
func (r *GormLapidaStockRepository) Save(ctx context.Context, stock *operations.LapidaStock) error {
	var m models.LapidaStockModel
	m.FromDomain(stock)
	return r.db.WithContext(ctx).Save(&m).Error
}

// AppendMovimiento inserts a stock ledger entry
func (r *GormLapidaStockRepository) AppendMovimiento(ctx context.Context, mov *operations.LapidaStockMovimiento) error {
	var m models.LapidaStockMovimientoModel
	m.FromDomain(mov)
	return r.db.WithContext(ctx).Create(&m).Error
}

// FindMovimientos lists ledger entries of a stock row newest first
func (r *GormLapidaStockRepository) FindMovimientos(ctx context.Context, tenantID, stockID uuid.UUID) ([]operations.LapidaStockMovimiento, error) {
	var ms []models.LapidaStockMovimientoModel
	err := r.db.WithTenant(ctx, tenantID).
		Where("lapida_stock_id = ?", stockID).
		Order("created_at DESC").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	out := make([]operations.LapidaStockMovimiento, len(ms))
	for i := range ms {
		out[i] = *ms[i].ToDomain()
	}
	return out, nil
}

// GormInscripcionRepository implements operations.InscripcionRepository
type GormInscripcionRepository struct {
	db *Database
}

// NewGormInscripcionRepository creates the repository
func NewGormInscripcionRepository(db *Database) *GormInscripcionRepository {
	return &GormInscripcionRepository{db: db}
}

// FindByID loads an inscription
func (r *GormInscripcionRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*operations.InscripcionLateral, error) {
	var m models.InscripcionModel
	if err := r.db.WithTenant(ctx, tenantID).First(&m, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return m.ToDomain(), nil
}

// FindAll lists inscriptions with an optional estado filter
func (r *GormInscripcionRepository) FindAll(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (shared.Paginated[operations.InscripcionLateral], error) {
	q := r.db.WithTenant(ctx, tenantID).Model(&models.InscripcionModel{})
	if estado, ok := filter.Filters["estado"].(string); ok && estado != "" {
		q = q.Where("estado = ?", estado)
	}
	if sepulturaID, ok := filter.Filters["sepultura_id"].(uuid.UUID); ok {
		q = q.Where("sepultura_id = ?", sepulturaID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return shared.Paginated[operations.InscripcionLateral]{}, err
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	var ms []models.InscripcionModel
	err := q.Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&ms).Error
	if err != nil {
		return shared.Paginated[operations.InscripcionLateral]{}, err
	}

	items := make([]operations.InscripcionLateral, len(ms))
	for i := range ms {
		items[i] = *ms[i].ToDomain()
	}
	return shared.NewPaginated(items, total, page, pageSize), nil
}

// Save upserts an inscription
func (r *GormInscripcionRepository) Save(ctx context.Context, inscripcion *operations.InscripcionLateral) error {
	var m models.InscripcionModel
	m.FromDomain(inscripcion)
	return r.db.WithContext(ctx).Save(&m).Error
}
