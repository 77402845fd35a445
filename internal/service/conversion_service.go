package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jesusartemio-dev/gyscontrol-app-sub009/internal/dto"
	"github.com/jesusartemio-dev/gyscontrol-app-sub009/internal/model"
	"github.com/jesusartemio-dev/gyscontrol-app-sub009/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrListaNoEncontrada = errors.New("lista no encontrada")
	ErrSinItemsValidos   = errors.New("no hay ítems válidos para convertir")
	// ErrSolicitudInvalida marks request-shape problems detected before the
	// transaction; handlers map it to 400, anything unexpected stays generic.
	ErrSolicitudInvalida = errors.New("solicitud de conversión inválida")
	// ErrConflictoConcurrencia signals lock/guard contention; the engine
	// retries the whole transaction against a fresh snapshot.
	ErrConflictoConcurrencia = errors.New("conflicto de concurrencia al convertir la lista")
)

const (
	maxReintentosConversion = 3
	proveedorPorDefinir     = "Por definir"
)

type ConversionService interface {
	Listar(ctx context.Context, filter dto.ConversionFilter) (*dto.ConversionListResponse, error)
	Detalle(ctx context.Context, listaID uuid.UUID) (*dto.ConversionDetalleResponse, error)
	Convertir(ctx context.Context, solicitanteID uuid.UUID, req dto.ConvertirRequest) (*dto.PedidoResponse, error)
}

type conversionService struct {
	listaRepo  repository.ListaRepository
	pedidoRepo repository.PedidoRepository
	rdb        *redis.Client // nil = cache disabled (unit tests)
	cacheTTL   time.Duration
}

func NewConversionService(listaRepo repository.ListaRepository, pedidoRepo repository.PedidoRepository, rdb *redis.Client, cacheTTL time.Duration) ConversionService {
	return &conversionService{
		listaRepo:  listaRepo,
		pedidoRepo: pedidoRepo,
		rdb:        rdb,
		cacheTTL:   cacheTTL,
	}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

// ── Listar ───────────────────────────────────────────────────────────────────

const cachePrefijoConversiones = "conversiones:"

func (s *conversionService) Listar(ctx context.Context, filter dto.ConversionFilter) (*dto.ConversionListResponse, error) {
	cacheKey := cachePrefijoConversiones + filter.Proyecto + ":" + filter.Estado + ":" + filter.Prioridad

	if s.rdb != nil {
		if raw, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var cached dto.ConversionListResponse
			if json.Unmarshal([]byte(raw), &cached) == nil {
				return &cached, nil
			}
		}
	}

	listas, err := s.listaRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	items := make([]dto.ConversionListItem, 0, len(listas))
	for i := range listas {
		items = append(items, listaToListItem(&listas[i]))
	}
	resp := &dto.ConversionListResponse{Data: items, Total: len(items)}

	if s.rdb != nil {
		if b, err := json.Marshal(resp); err == nil {
			if err := s.rdb.Set(ctx, cacheKey, b, s.cacheTTL).Err(); err != nil {
				log.Warn().Err(err).Msg("no se pudo cachear la lista de conversiones")
			}
		}
	}
	return resp, nil
}

// invalidarCache drops every cached conversion view; best-effort.
func (s *conversionService) invalidarCache(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	keys, err := s.rdb.Keys(ctx, cachePrefijoConversiones+"*").Result()
	if err != nil || len(keys) == 0 {
		return
	}
	if err := s.rdb.Del(ctx, keys...).Err(); err != nil {
		log.Warn().Err(err).Msg("no se pudo invalidar el cache de conversiones")
	}
}

// ── Detalle ──────────────────────────────────────────────────────────────────

func (s *conversionService) Detalle(ctx context.Context, listaID uuid.UUID) (*dto.ConversionDetalleResponse, error) {
	lista, err := s.listaRepo.FindByIDConItems(ctx, listaID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrListaNoEncontrada
		}
		return nil, err
	}

	resp := &dto.ConversionDetalleResponse{Lista: listaToListItem(lista)}
	for i := range lista.Items {
		item := &lista.Items[i]
		resumen := ResumirAbastecimiento(item.CantidadRequerida, item.PedidoItems)
		disponible := item.CantidadDisponible()

		proveedor := ""
		if item.CotizacionSeleccionada != nil {
			proveedor = item.CotizacionSeleccionada.ProveedorNombre
		}
		resp.Items = append(resp.Items, dto.ConversionItemDetalle{
			ListaItemID:          item.ID.String(),
			Descripcion:          item.Descripcion,
			Unidad:               item.Unidad,
			CantidadRequerida:    item.CantidadRequerida,
			CantidadPedida:       item.CantidadPedida,
			CantidadDisponible:   disponible,
			CostoUnitario:        resolverCostoConversion(item),
			Proveedor:            proveedor,
			EstadoAbastecimiento: string(resumen.Estado),
			PedidosVinculados:    resumen.TotalPedidos,
			Seleccionado:         disponible.GreaterThan(decimal.Zero),
		})
	}
	return resp, nil
}

// ── Convertir ────────────────────────────────────────────────────────────────
// One ACID transaction: lock lista items, re-validate, mint the order code,
// filter/clamp the selection, create pedido + items in one write, apply the
// guarded cantidad_pedida increments and recompute the list state. Anything
// fatal rolls the whole thing back; serialization conflicts retry against a
// fresh snapshot.

func (s *conversionService) Convertir(ctx context.Context, solicitanteID uuid.UUID, req dto.ConvertirRequest) (*dto.PedidoResponse, error) {
	listaID, err := uuid.Parse(req.ListaID)
	if err != nil {
		return nil, fmt.Errorf("%w: lista_id inválido", ErrSolicitudInvalida)
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: la selección de ítems está vacía", ErrSolicitudInvalida)
	}

	var pedido *model.Pedido
	for intento := 1; ; intento++ {
		pedido = &model.Pedido{}
		err = runTx(ctx, s.listaRepo.DB(), func(tx *gorm.DB) error {
			return s.convertirTx(ctx, tx, listaID, solicitanteID, req, pedido)
		})
		if err == nil || !esConflictoConcurrencia(err) || intento >= maxReintentosConversion {
			break
		}
		log.Warn().
			Str("lista_id", listaID.String()).
			Int("intento", intento).
			Msg("conflicto de concurrencia en conversión, reintentando")
		time.Sleep(time.Duration(intento) * 50 * time.Millisecond)
	}
	if err != nil {
		return nil, err
	}

	s.invalidarCache(ctx)

	log.Info().
		Str("pedido", pedido.Codigo).
		Str("lista_id", listaID.String()).
		Int("items", len(pedido.Items)).
		Str("costo_total", pedido.CostoTotal.String()).
		Msg("lista convertida en pedido")
	return pedidoToResponse(pedido), nil
}

// itemConvertido is one selection that survived the filter, with its
// effective (clamped) quantity and resolved cost.
type itemConvertido struct {
	item     *model.ListaItem
	cantidad decimal.Decimal
	costo    decimal.Decimal
}

func (s *conversionService) convertirTx(ctx context.Context, tx *gorm.DB, listaID, solicitanteID uuid.UUID, req dto.ConvertirRequest, pedido *model.Pedido) error {
	lista, err := s.listaRepo.FindByIDForUpdateTx(ctx, tx, listaID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrListaNoEncontrada
		}
		return err
	}

	proyectoCodigo := ""
	if lista.Proyecto != nil {
		proyectoCodigo = lista.Proyecto.Codigo
	}
	codigo, err := s.pedidoRepo.NextCodigo(ctx, tx, proyectoCodigo)
	if err != nil {
		return err
	}

	porID := make(map[uuid.UUID]*model.ListaItem, len(lista.Items))
	for i := range lista.Items {
		porID[lista.Items[i].ID] = &lista.Items[i]
	}

	// Filter the selection. Skips are silent and per-item: an unknown item, a
	// missing catalog reference, or a clamped quantity of 0 drop that line
	// without failing the conversion.
	var validos []itemConvertido
	total := decimal.Zero
	for _, sel := range req.Items {
		itemID, err := uuid.Parse(sel.ListaItemID)
		if err != nil {
			continue
		}
		item, ok := porID[itemID]
		if !ok || item.EquipoID == nil {
			continue
		}
		efectiva := decimal.Min(sel.Cantidad, item.CantidadDisponible())
		if efectiva.LessThanOrEqual(decimal.Zero) {
			continue
		}

		costo := resolverCostoConversion(item)
		total = total.Add(costo.Mul(efectiva))
		validos = append(validos, itemConvertido{item: item, cantidad: efectiva, costo: costo})

		// Advance the in-memory balance so a duplicated selection of the same
		// item clamps against what this conversion already took, and so the
		// state recompute below sees the post-conversion quantities.
		item.CantidadPedida = item.CantidadPedida.Add(efectiva)
	}
	if len(validos) == 0 {
		return ErrSinItemsValidos
	}

	*pedido = model.Pedido{
		Codigo:         codigo,
		ListaID:        lista.ID,
		ProyectoID:     lista.ProyectoID,
		SolicitanteID:  solicitanteID,
		Estado:         model.EstadoPedidoBorrador,
		FechaNecesaria: req.FechaNecesaria,
		Prioridad:      req.Prioridad,
		Urgente:        req.Urgente,
		Observacion:    req.Observacion,
		CostoTotal:     total,
	}
	for _, v := range validos {
		proveedor := proveedorPorDefinir
		var plazo *int
		if v.item.CotizacionSeleccionada != nil {
			proveedor = v.item.CotizacionSeleccionada.ProveedorNombre
			plazo = v.item.CotizacionSeleccionada.TiempoEntregaDias
		}
		pedido.Items = append(pedido.Items, model.PedidoItem{
			ListaItemID:       v.item.ID,
			Cantidad:          v.cantidad,
			CostoUnitario:     v.costo,
			CostoTotal:        v.costo.Mul(v.cantidad),
			ProveedorNombre:   proveedor,
			TiempoEntregaDias: plazo,
			Estado:            model.EstadoItemPendiente,
		})
	}

	if err := s.pedidoRepo.CreateTx(ctx, tx, pedido); err != nil {
		return err
	}

	// Link descriptions for the response mapping.
	for i := range pedido.Items {
		pedido.Items[i].ListaItem = validos[i].item
	}

	for _, v := range validos {
		n, err := s.listaRepo.IncrementarCantidadPedidaTx(ctx, tx, v.item.ID, v.cantidad)
		if err != nil {
			return err
		}
		if n == 0 {
			// The guard refused the increment: another transaction consumed
			// the balance between our read and this write.
			return ErrConflictoConcurrencia
		}
	}

	estado := model.EstadoListaPorRevisar
	completa := true
	for i := range lista.Items {
		if lista.Items[i].CantidadPedida.LessThan(lista.Items[i].CantidadRequerida) {
			completa = false
			break
		}
	}
	if completa {
		estado = model.EstadoListaAprobada
	}
	return s.listaRepo.UpdateEstadoTx(ctx, tx, lista.ID, estado)
}

// resolverCostoConversion is the conversion-time cost chain: the item's own
// resolved cost when set, else the selected quote's unit price, else zero.
// (The coherence validator uses a different chain that includes the catalog
// reference price; see coherencia.go.)
func resolverCostoConversion(item *model.ListaItem) decimal.Decimal {
	if item.CostoElegido != nil {
		return *item.CostoElegido
	}
	if item.CotizacionSeleccionada != nil {
		return item.CotizacionSeleccionada.PrecioUnitario
	}
	return decimal.Zero
}

// esConflictoConcurrencia reports whether err is worth retrying: either our
// own guard sentinel or a Postgres serialization/deadlock failure.
func esConflictoConcurrencia(err error) bool {
	if errors.Is(err, ErrConflictoConcurrencia) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "40001") ||
		strings.Contains(msg, "40P01") ||
		strings.Contains(msg, "could not serialize") ||
		strings.Contains(msg, "deadlock detected")
}

// ── Mapping ──────────────────────────────────────────────────────────────────

func listaToListItem(l *model.Lista) dto.ConversionListItem {
	v := EvaluarCoherencia(l)

	abiertos := 0
	for i := range l.Items {
		if l.Items[i].CantidadDisponible().GreaterThan(decimal.Zero) {
			abiertos++
		}
	}

	proyecto := ""
	if l.Proyecto != nil {
		proyecto = l.Proyecto.Codigo
	}
	return dto.ConversionListItem{
		ListaID:             l.ID.String(),
		Codigo:              l.Codigo,
		Nombre:              l.Nombre,
		Proyecto:            proyecto,
		Estado:              string(l.Estado),
		PresupuestoPlaneado: l.PresupuestoPlaneado,
		CostoReal:           v.CostoReal,
		DesviacionPct:       v.DesviacionPct,
		Convertible:         v.Convertible,
		MotivoBloqueo:       v.MotivoBloqueo,
		TotalItems:          len(l.Items),
		ItemsAbiertos:       abiertos,
	}
}

func pedidoToResponse(p *model.Pedido) *dto.PedidoResponse {
	items := make([]dto.PedidoItemResponse, 0, len(p.Items))
	for _, item := range p.Items {
		descripcion := ""
		if item.ListaItem != nil {
			descripcion = item.ListaItem.Descripcion
		}
		items = append(items, dto.PedidoItemResponse{
			ID:                item.ID.String(),
			ListaItemID:       item.ListaItemID.String(),
			Descripcion:       descripcion,
			Cantidad:          item.Cantidad,
			CostoUnitario:     item.CostoUnitario,
			CostoTotal:        item.CostoTotal,
			Proveedor:         item.ProveedorNombre,
			TiempoEntregaDias: item.TiempoEntregaDias,
			Estado:            string(item.Estado),
		})
	}
	return &dto.PedidoResponse{
		ID:             p.ID.String(),
		Codigo:         p.Codigo,
		ListaID:        p.ListaID.String(),
		ProyectoID:     p.ProyectoID.String(),
		SolicitanteID:  p.SolicitanteID.String(),
		Estado:         string(p.Estado),
		FechaNecesaria: p.FechaNecesaria.Format("2006-01-02"),
		Prioridad:      p.Prioridad,
		Urgente:        p.Urgente,
		Observacion:    p.Observacion,
		CostoTotal:     p.CostoTotal,
		Items:          items,
		CreatedAt:      p.CreatedAt.UTC().Format(time.RFC3339),
	}
}
