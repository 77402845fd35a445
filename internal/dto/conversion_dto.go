package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ─── Filter / List ──────────────────────────────────────────────────────────

// ConversionFilter is bound from the query string of GET /v1/conversiones.
type ConversionFilter struct {
	Proyecto  string `form:"proyecto"`  // código de proyecto; empty = all
	Estado    string `form:"estado"`    // estado de lista; empty = all
	Prioridad string `form:"prioridad"` // empty = all
}

// ConversionListItem is the per-list read model for the conversion screen:
// only the fields the query actually fetches, no synthesized placeholders.
type ConversionListItem struct {
	ListaID             string          `json:"lista_id"`
	Codigo              string          `json:"codigo"`
	Nombre              string          `json:"nombre"`
	Proyecto            string          `json:"proyecto"`
	Estado              string          `json:"estado"`
	PresupuestoPlaneado decimal.Decimal `json:"presupuesto_planeado"`
	CostoReal           decimal.Decimal `json:"costo_real"`
	DesviacionPct       decimal.Decimal `json:"desviacion_pct"`
	Convertible         bool            `json:"convertible"`
	MotivoBloqueo       string          `json:"motivo_bloqueo,omitempty"`
	TotalItems          int             `json:"total_items"`
	ItemsAbiertos       int             `json:"items_abiertos"`
}

type ConversionListResponse struct {
	Data  []ConversionListItem `json:"data"`
	Total int                  `json:"total"`
}

// ConversionItemDetalle is one line of the single-list detail mode.
// Seleccionado defaults to true when the item still has open balance.
type ConversionItemDetalle struct {
	ListaItemID          string          `json:"lista_item_id"`
	Descripcion          string          `json:"descripcion"`
	Unidad               string          `json:"unidad"`
	CantidadRequerida    decimal.Decimal `json:"cantidad_requerida"`
	CantidadPedida       decimal.Decimal `json:"cantidad_pedida"`
	CantidadDisponible   decimal.Decimal `json:"cantidad_disponible"`
	CostoUnitario        decimal.Decimal `json:"costo_unitario"`
	Proveedor            string          `json:"proveedor,omitempty"`
	EstadoAbastecimiento string          `json:"estado_abastecimiento"`
	PedidosVinculados    int             `json:"pedidos_vinculados"`
	Seleccionado         bool            `json:"seleccionado"`
}

type ConversionDetalleResponse struct {
	Lista ConversionListItem      `json:"lista"`
	Items []ConversionItemDetalle `json:"items"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ConvertirItemRequest struct {
	ListaItemID string          `json:"lista_item_id" validate:"required,uuid"`
	Cantidad    decimal.Decimal `json:"cantidad"      validate:"required"`
}

type ConvertirRequest struct {
	ListaID        string                 `json:"lista_id"        validate:"required,uuid"`
	Items          []ConvertirItemRequest `json:"items"           validate:"required,min=1,dive"`
	FechaNecesaria time.Time              `json:"fecha_necesaria" validate:"required"`
	Prioridad      *string                `json:"prioridad"       validate:"omitempty,oneof=baja media alta"`
	Urgente        bool                   `json:"urgente"`
	Observacion    *string                `json:"observacion"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type PedidoItemResponse struct {
	ID                string          `json:"id"`
	ListaItemID       string          `json:"lista_item_id"`
	Descripcion       string          `json:"descripcion"`
	Cantidad          decimal.Decimal `json:"cantidad"`
	CostoUnitario     decimal.Decimal `json:"costo_unitario"`
	CostoTotal        decimal.Decimal `json:"costo_total"`
	Proveedor         string          `json:"proveedor"`
	TiempoEntregaDias *int            `json:"tiempo_entrega_dias,omitempty"`
	Estado            string          `json:"estado"`
}

type PedidoResponse struct {
	ID             string               `json:"id"`
	Codigo         string               `json:"codigo"`
	ListaID        string               `json:"lista_id"`
	ProyectoID     string               `json:"proyecto_id"`
	SolicitanteID  string               `json:"solicitante_id"`
	Estado         string               `json:"estado"`
	FechaNecesaria string               `json:"fecha_necesaria"`
	Prioridad      *string              `json:"prioridad,omitempty"`
	Urgente        bool                 `json:"urgente"`
	Observacion    *string              `json:"observacion,omitempty"`
	CostoTotal     decimal.Decimal      `json:"costo_total"`
	Items          []PedidoItemResponse `json:"items"`
	CreatedAt      string               `json:"created_at"`
}
