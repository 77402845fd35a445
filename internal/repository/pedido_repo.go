package repository

import (
	"context"
	"fmt"

	"github.com/jesusartemio-dev/gyscontrol-app-sub009/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PedidoRepository interface {
	CreateTx(ctx context.Context, tx *gorm.DB, p *model.Pedido) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Pedido, error)
	// NextCodigo mints the next project-scoped order code
	// ("ORDER-{proyecto}-NNN"). Must be called inside the conversion
	// transaction: it takes an advisory lock keyed on the project so two
	// in-flight conversions cannot mint the same code.
	NextCodigo(ctx context.Context, tx *gorm.DB, proyectoCodigo string) (string, error)
}

type pedidoRepo struct{ db *gorm.DB }

func NewPedidoRepository(db *gorm.DB) PedidoRepository { return &pedidoRepo{db: db} }

func (r *pedidoRepo) CreateTx(ctx context.Context, tx *gorm.DB, p *model.Pedido) error {
	return tx.WithContext(ctx).Create(p).Error
}

func (r *pedidoRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Pedido, error) {
	var p model.Pedido
	err := r.db.WithContext(ctx).
		Preload("Items.ListaItem").
		First(&p, "id = ?", id).Error
	return &p, err
}

func (r *pedidoRepo) NextCodigo(ctx context.Context, tx *gorm.DB, proyectoCodigo string) (string, error) {
	// Advisory xact lock: released automatically on commit/rollback.
	if err := tx.WithContext(ctx).
		Exec("SELECT pg_advisory_xact_lock(hashtext(?))", "pedido_codigo_"+proyectoCodigo).Error; err != nil {
		return "", err
	}

	// The LIKE also matches codes of longer project codes sharing this prefix
	// (P001 vs P0011, suffix "1-002"); only purely numeric suffixes count.
	prefix := fmt.Sprintf("ORDER-%s-", proyectoCodigo)
	var max int
	err := tx.WithContext(ctx).Raw(
		`SELECT COALESCE(MAX(CAST(SUBSTRING(codigo FROM ?) AS INTEGER)), 0)
		   FROM pedidos
		  WHERE codigo LIKE ? AND SUBSTRING(codigo FROM ?) ~ '^[0-9]+$'`,
		len(prefix)+1, prefix+"%", len(prefix)+1).Scan(&max).Error
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%03d", prefix, max+1), nil
}
