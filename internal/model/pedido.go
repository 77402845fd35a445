package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EstadoPedido is the lifecycle of a Pedido. The conversion engine only
// creates pedidos in EstadoPedidoBorrador; later transitions (envío,
// recepción, cancelación) belong to other flows.
type EstadoPedido string

const (
	EstadoPedidoBorrador  EstadoPedido = "borrador"
	EstadoPedidoEnviado   EstadoPedido = "enviado"
	EstadoPedidoAtendido  EstadoPedido = "atendido"
	EstadoPedidoEntregado EstadoPedido = "entregado"
	EstadoPedidoCancelado EstadoPedido = "cancelado"
)

// Pedido is a purchase order generated from one Lista. Codigo follows the
// project-scoped sequence "ORDER-{proyecto.codigo}-NNN".
type Pedido struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Codigo         string          `gorm:"uniqueIndex;not null"`
	ListaID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProyectoID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	SolicitanteID  uuid.UUID       `gorm:"type:uuid;not null"`
	Estado         EstadoPedido    `gorm:"not null;default:'borrador'"`
	FechaNecesaria time.Time       `gorm:"not null"`
	Prioridad      *string
	Urgente        bool            `gorm:"not null;default:false"`
	Observacion    *string
	CostoTotal     decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	CreatedAt      time.Time
	UpdatedAt      time.Time

	Lista    *Lista       `gorm:"foreignKey:ListaID"`
	Proyecto *Proyecto    `gorm:"foreignKey:ProyectoID"`
	Items    []PedidoItem `gorm:"foreignKey:PedidoID"`
}

func (Pedido) TableName() string { return "pedidos" }
