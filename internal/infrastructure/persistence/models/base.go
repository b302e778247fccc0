package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/cementiri/backend/internal/domain/shared"
)

// BaseModel holds the columns shared by every table
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
	Version   int       `gorm:"not null;default:1"`
}

// TenantModel adds the organization scope columns
type TenantModel struct {
	BaseModel
	TenantID  uuid.UUID  `gorm:"type:uuid;not null;index"`
	CreatedBy *uuid.UUID `gorm:"type:uuid"`
}

func baseModelFrom(a shared.BaseAggregateRoot) BaseModel {
	return BaseModel{
		ID:        a.ID,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
		Version:   a.Version,
	}
}

func (m BaseModel) toAggregate() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{
		BaseEntity: shared.BaseEntity{
			ID:        m.ID,
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		Version: m.Version,
	}
}

func tenantModelFrom(a shared.TenantAggregateRoot) TenantModel {
	return TenantModel{
		BaseModel: baseModelFrom(a.BaseAggregateRoot),
		TenantID:  a.TenantID,
		CreatedBy: a.CreatedBy,
	}
}

func (m TenantModel) toAggregate() shared.TenantAggregateRoot {
	return shared.TenantAggregateRoot{
		BaseAggregateRoot: m.BaseModel.toAggregate(),
		TenantID:          m.TenantID,
		CreatedBy:         m.CreatedBy,
	}
}
