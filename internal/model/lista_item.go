package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ListaItem is one line of a Lista. CantidadPedida accumulates the quantity
// already converted into pedidos and must never exceed CantidadRequerida;
// the conversion engine clamps every increment to the remaining balance.
type ListaItem struct {
	ID                uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ListaID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	EquipoID          *uuid.UUID      `gorm:"type:uuid;index"`
	Descripcion       string          `gorm:"not null"`
	Unidad            string          `gorm:"not null;default:'unidad'"`
	CantidadRequerida decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CantidadPedida    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	// CostoElegido is the unit cost resolved at selection time; when nil the
	// engine falls back to the selected quote's unit price, then to zero.
	CostoElegido             *decimal.Decimal `gorm:"type:decimal(12,2)"`
	CotizacionSeleccionadaID *uuid.UUID       `gorm:"type:uuid"`
	CreatedAt                time.Time
	UpdatedAt                time.Time

	Equipo                 *Equipo      `gorm:"foreignKey:EquipoID"`
	CotizacionSeleccionada *Cotizacion  `gorm:"foreignKey:CotizacionSeleccionadaID"`
	PedidoItems            []PedidoItem `gorm:"foreignKey:ListaItemID"`
}

func (ListaItem) TableName() string { return "lista_items" }

// CantidadDisponible is the still-unconverted balance. It can go negative on
// over-committed data; callers report that, they do not clamp it here.
func (i *ListaItem) CantidadDisponible() decimal.Decimal {
	return i.CantidadRequerida.Sub(i.CantidadPedida)
}
