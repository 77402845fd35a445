package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Equipo is a catalog entry (read-only reference data for this core).
// PrecioReferencia is the catalog fallback price used by the coherence
// validator when an item has neither resolved cost nor selected quote.
type Equipo struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Codigo           string          `gorm:"uniqueIndex;not null"`
	Descripcion      string          `gorm:"not null"`
	Unidad           string          `gorm:"not null;default:'unidad'"`
	PrecioReferencia decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Activo           bool            `gorm:"not null;default:true"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (Equipo) TableName() string { return "equipos" }
