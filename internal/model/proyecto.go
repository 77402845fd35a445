package model

import (
	"time"

	"github.com/google/uuid"
)

// Proyecto agrupa listas de equipos y pedidos bajo un código corto (ej. "P001")
// que prefija la numeración de pedidos del proyecto.
type Proyecto struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Codigo    string    `gorm:"uniqueIndex;not null"`
	Nombre    string    `gorm:"not null"`
	Activo    bool      `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Listas []Lista `gorm:"foreignKey:ProyectoID"`
}

func (Proyecto) TableName() string { return "proyectos" }
