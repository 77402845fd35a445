package repository

import (
	"context"

	"github.com/jesusartemio-dev/gyscontrol-app-sub009/internal/dto"
	"github.com/jesusartemio-dev/gyscontrol-app-sub009/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ListaRepository interface {
	FindByIDConItems(ctx context.Context, id uuid.UUID) (*model.Lista, error)
	// FindByIDForUpdateTx loads the list and its items inside a transaction,
	// taking row locks on the items so concurrent conversions serialize.
	FindByIDForUpdateTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Lista, error)
	List(ctx context.Context, filter dto.ConversionFilter) ([]model.Lista, error)
	UpdateEstadoTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, estado model.EstadoLista) error
	// IncrementarCantidadPedidaTx applies a guarded increment: the UPDATE only
	// fires while cantidad_pedida + delta <= cantidad_requerida. Returns the
	// number of rows affected (0 = the guard rejected the increment).
	IncrementarCantidadPedidaTx(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, delta decimal.Decimal) (int64, error)
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type listaRepo struct{ db *gorm.DB }

func NewListaRepository(db *gorm.DB) ListaRepository { return &listaRepo{db: db} }

func (r *listaRepo) DB() *gorm.DB { return r.db }

func (r *listaRepo) FindByIDConItems(ctx context.Context, id uuid.UUID) (*model.Lista, error) {
	var l model.Lista
	err := r.db.WithContext(ctx).
		Preload("Proyecto").
		Preload("Items.Equipo").
		Preload("Items.CotizacionSeleccionada").
		Preload("Items.PedidoItems").
		First(&l, "id = ?", id).Error
	return &l, err
}

func (r *listaRepo) FindByIDForUpdateTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Lista, error) {
	// Lock the item rows first; the Preload reads below then observe a stable
	// snapshot and no concurrent conversion can increment cantidad_pedida
	// until this transaction commits.
	if err := tx.WithContext(ctx).
		Exec("SELECT id FROM lista_items WHERE lista_id = ? FOR UPDATE", id).Error; err != nil {
		return nil, err
	}
	var l model.Lista
	err := tx.WithContext(ctx).
		Preload("Proyecto").
		Preload("Items.Equipo").
		Preload("Items.CotizacionSeleccionada").
		First(&l, "id = ?", id).Error
	return &l, err
}

func (r *listaRepo) List(ctx context.Context, filter dto.ConversionFilter) ([]model.Lista, error) {
	var listas []model.Lista

	q := r.db.WithContext(ctx).Model(&model.Lista{}).
		Joins("JOIN proyectos ON proyectos.id = listas.proyecto_id")

	if filter.Proyecto != "" {
		q = q.Where("proyectos.codigo = ?", filter.Proyecto)
	}
	if filter.Estado != "" && filter.Estado != "all" {
		q = q.Where("listas.estado = ?", filter.Estado)
	}
	if filter.Prioridad != "" {
		q = q.Where("listas.prioridad = ?", filter.Prioridad)
	}

	err := q.Preload("Proyecto").
		Preload("Items.Equipo").
		Preload("Items.CotizacionSeleccionada").
		Order("listas.created_at DESC").
		Find(&listas).Error
	return listas, err
}

func (r *listaRepo) UpdateEstadoTx(ctx context.Context, tx *gorm.DB, id uuid.UUID, estado model.EstadoLista) error {
	return tx.WithContext(ctx).Model(&model.Lista{}).Where("id = ?", id).Update("estado", estado).Error
}

func (r *listaRepo) IncrementarCantidadPedidaTx(ctx context.Context, tx *gorm.DB, itemID uuid.UUID, delta decimal.Decimal) (int64, error) {
	res := tx.WithContext(ctx).Exec(
		`UPDATE lista_items
		    SET cantidad_pedida = cantidad_pedida + ?, updated_at = NOW()
		  WHERE id = ? AND cantidad_pedida + ? <= cantidad_requerida`,
		delta, itemID, delta)
	return res.RowsAffected, res.Error
}
