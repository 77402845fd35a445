package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cotizacion is a supplier quote line selected for a ListaItem. It supplies
// the unit price, supplier name and lead time used when the item is
// converted into a PedidoItem.
type Cotizacion struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProveedorNombre   string          `gorm:"not null"`
	PrecioUnitario    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TiempoEntregaDias *int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (Cotizacion) TableName() string { return "cotizaciones" }
