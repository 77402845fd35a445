package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EstadoPedidoItem is the per-line fulfillment state of a PedidoItem.
type EstadoPedidoItem string

const (
	EstadoItemPendiente EstadoPedidoItem = "pendiente"
	EstadoItemEnviado   EstadoPedidoItem = "enviado"
	EstadoItemParcial   EstadoPedidoItem = "parcial"
	EstadoItemAtendido  EstadoPedidoItem = "atendido"
	EstadoItemEntregado EstadoPedidoItem = "entregado"
	EstadoItemCancelado EstadoPedidoItem = "cancelado"
)

// PedidoItem is one line of a Pedido, sourced from exactly one ListaItem.
// Cantidad is a slice of that item's remaining balance at conversion time.
// The back-reference to ListaItem is lookup-only: deleting a pedido never
// cascades into the lista.
type PedidoItem struct {
	ID                uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PedidoID          uuid.UUID        `gorm:"type:uuid;not null;index"`
	ListaItemID       uuid.UUID        `gorm:"type:uuid;not null;index"`
	Cantidad          decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	CantidadAtendida  decimal.Decimal  `gorm:"type:decimal(12,2);not null;default:0"`
	CostoUnitario     decimal.Decimal  `gorm:"type:decimal(12,2);not null"`
	CostoTotal        decimal.Decimal  `gorm:"type:decimal(14,2);not null"`
	ProveedorNombre   string           `gorm:"not null"`
	TiempoEntregaDias *int
	Estado            EstadoPedidoItem `gorm:"not null;default:'pendiente'"`
	CreatedAt         time.Time
	UpdatedAt         time.Time

	ListaItem *ListaItem `gorm:"foreignKey:ListaItemID"`
}

func (PedidoItem) TableName() string { return "pedido_items" }
