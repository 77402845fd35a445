package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EstadoLista is the closed set of lifecycle states for a Lista.
// The conversion engine only ever writes EstadoListaAprobada and
// EstadoListaPorRevisar; the rest are set by upstream flows.
type EstadoLista string

const (
	EstadoListaBorrador   EstadoLista = "borrador"
	EstadoListaPorRevisar EstadoLista = "por_revisar"
	EstadoListaAprobada   EstadoLista = "aprobada"
	EstadoListaParcial    EstadoLista = "parcialmente_pedida"
)

// Lista is a project-scoped requirement list: equipment/material needs
// awaiting procurement. Its items are converted into Pedidos by the
// conversion engine; the list itself is never deleted by this core.
type Lista struct {
	ID                  uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ProyectoID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	Codigo              string          `gorm:"not null;index"`
	Nombre              string          `gorm:"not null"`
	Estado              EstadoLista     `gorm:"not null;default:'borrador'"`
	PresupuestoPlaneado decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0"`
	Prioridad           *string
	CreatedAt           time.Time
	UpdatedAt           time.Time

	Proyecto *Proyecto   `gorm:"foreignKey:ProyectoID"`
	Items    []ListaItem `gorm:"foreignKey:ListaID"`
}

func (Lista) TableName() string { return "listas" }
