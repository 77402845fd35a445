package service

import (
	"testing"
	"time"

	"github.com/jesusartemio-dev/gyscontrol-app-sub009/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func pedidoItem(cantidad, atendida float64, estado model.EstadoPedidoItem, createdAt time.Time) model.PedidoItem {
	return model.PedidoItem{
		ID:               uuid.New(),
		Cantidad:         d(cantidad),
		CantidadAtendida: d(atendida),
		Estado:           estado,
		CreatedAt:        createdAt,
	}
}

func TestResumirAbastecimiento_SinPedidos(t *testing.T) {
	res := ResumirAbastecimiento(d(10), nil)
	assert.Equal(t, AbastecimientoSinPedidos, res.Estado)
	assert.Equal(t, 0, res.TotalPedidos)
	assert.True(t, res.CantidadDisponible.Equal(d(10)))
	assert.Nil(t, res.UltimoPedidoItem)
}

func TestResumirAbastecimiento_SoloCancelados(t *testing.T) {
	// Un ítem cuyo único pedido fue cancelado vuelve a estar disponible.
	items := []model.PedidoItem{
		pedidoItem(10, 0, model.EstadoItemCancelado, time.Now()),
	}
	res := ResumirAbastecimiento(d(10), items)
	assert.Equal(t, AbastecimientoSinPedidos, res.Estado)
	assert.Equal(t, 0, res.TotalPedidos)
	assert.True(t, res.CantidadDisponible.Equal(d(10)))
	assert.Nil(t, res.UltimoPedidoItem)
}

func TestResumirAbastecimiento_TodosEntregados(t *testing.T) {
	now := time.Now()
	items := []model.PedidoItem{
		pedidoItem(6, 6, model.EstadoItemEntregado, now),
		pedidoItem(4, 4, model.EstadoItemEntregado, now.Add(time.Hour)),
		pedidoItem(99, 0, model.EstadoItemCancelado, now.Add(2*time.Hour)),
	}
	res := ResumirAbastecimiento(d(10), items)
	assert.Equal(t, AbastecimientoEntregado, res.Estado)
	assert.Equal(t, 2, res.TotalPedidos)
	assert.Empty(t, res.Activos)
}

func TestResumirAbastecimiento_Atendido(t *testing.T) {
	// Todo lo pedido fue recibido y cubre lo requerido, pero los ítems aún
	// no están en estado entregado.
	now := time.Now()
	items := []model.PedidoItem{
		pedidoItem(6, 6, model.EstadoItemAtendido, now),
		pedidoItem(4, 4, model.EstadoItemAtendido, now),
	}
	res := ResumirAbastecimiento(d(10), items)
	assert.Equal(t, AbastecimientoAtendido, res.Estado)
	assert.True(t, res.CantidadPedida.Equal(d(10)))
	assert.True(t, res.CantidadAtendida.Equal(d(10)))
}

func TestResumirAbastecimiento_AtendidoRequiereCubrirRequerido(t *testing.T) {
	// Recibido == pedido pero por debajo de lo requerido: no es "atendido".
	items := []model.PedidoItem{
		pedidoItem(4, 4, model.EstadoItemAtendido, time.Now()),
	}
	res := ResumirAbastecimiento(d(10), items)
	assert.Equal(t, AbastecimientoParcial, res.Estado)
}

func TestResumirAbastecimiento_Parcial(t *testing.T) {
	items := []model.PedidoItem{
		pedidoItem(6, 2, model.EstadoItemParcial, time.Now()),
		pedidoItem(4, 0, model.EstadoItemPendiente, time.Now()),
	}
	res := ResumirAbastecimiento(d(10), items)
	assert.Equal(t, AbastecimientoParcial, res.Estado)
	assert.Len(t, res.Activos, 2)
}

func TestResumirAbastecimiento_Pedido(t *testing.T) {
	items := []model.PedidoItem{
		pedidoItem(6, 0, model.EstadoItemPendiente, time.Now()),
		pedidoItem(4, 0, model.EstadoItemEnviado, time.Now()),
	}
	res := ResumirAbastecimiento(d(10), items)
	assert.Equal(t, AbastecimientoPedido, res.Estado)
	assert.True(t, res.CantidadDisponible.Equal(d(0)))
}

func TestResumirAbastecimiento_SobreComprometido(t *testing.T) {
	// Disponible negativo se reporta tal cual, nunca se recorta a cero.
	items := []model.PedidoItem{
		pedidoItem(8, 0, model.EstadoItemPendiente, time.Now()),
		pedidoItem(5, 0, model.EstadoItemPendiente, time.Now()),
	}
	res := ResumirAbastecimiento(d(10), items)
	assert.True(t, res.CantidadDisponible.Equal(d(-3)))
	assert.Equal(t, AbastecimientoPedido, res.Estado)
}

func TestResumirAbastecimiento_UltimoPedidoItem(t *testing.T) {
	now := time.Now()
	viejo := pedidoItem(2, 0, model.EstadoItemPendiente, now.Add(-time.Hour))
	nuevo := pedidoItem(3, 0, model.EstadoItemPendiente, now)
	res := ResumirAbastecimiento(d(10), []model.PedidoItem{viejo, nuevo})
	require.NotNil(t, res.UltimoPedidoItem)
	assert.Equal(t, nuevo.ID, res.UltimoPedidoItem.ID)

	// Empate de timestamps: gana la posición más tardía del input.
	a := pedidoItem(1, 0, model.EstadoItemPendiente, now)
	b := pedidoItem(1, 0, model.EstadoItemPendiente, now)
	res = ResumirAbastecimiento(d(10), []model.PedidoItem{a, b})
	require.NotNil(t, res.UltimoPedidoItem)
	assert.Equal(t, b.ID, res.UltimoPedidoItem.ID)

	// Cancelados no participan.
	cancelado := pedidoItem(1, 0, model.EstadoItemCancelado, now.Add(time.Hour))
	res = ResumirAbastecimiento(d(10), []model.PedidoItem{viejo, cancelado})
	require.NotNil(t, res.UltimoPedidoItem)
	assert.Equal(t, viejo.ID, res.UltimoPedidoItem.ID)
}

func TestResumirAbastecimiento_EsPuraEIdempotente(t *testing.T) {
	items := []model.PedidoItem{
		pedidoItem(6, 2, model.EstadoItemParcial, time.Now()),
		pedidoItem(4, 0, model.EstadoItemPendiente, time.Now()),
	}
	antes := make([]model.PedidoItem, len(items))
	copy(antes, items)

	r1 := ResumirAbastecimiento(d(10), items)
	r2 := ResumirAbastecimiento(d(10), items)

	assert.Equal(t, r1.Estado, r2.Estado)
	assert.True(t, r1.CantidadPedida.Equal(r2.CantidadPedida))
	assert.True(t, r1.CantidadAtendida.Equal(r2.CantidadAtendida))
	assert.Equal(t, antes, items)
}
