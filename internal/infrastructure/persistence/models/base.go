package models

import (
	"time"

	"github.com/angofact/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BaseModel carries the columns every row shares. The ID comes from the
// domain at construction; the store never generates identities.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (m *BaseModel) baseEntity() shared.BaseEntity {
	return shared.BaseEntity{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func (m *BaseModel) setBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// AggregateModel adds the version column backing optimistic locking on
// fiscal documents, series and cash registers.
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

func (m *AggregateModel) setAggregate(a shared.BaseAggregateRoot) {
	m.setBaseEntity(a.BaseEntity)
	m.Version = a.Version
}

func (m *AggregateModel) fillAggregate(a *shared.BaseAggregateRoot) {
	a.BaseEntity = m.baseEntity()
	a.Version = m.Version
}
