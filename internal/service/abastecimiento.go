package service

import (
	"github.com/jesusartemio-dev/gyscontrol-app-sub009/internal/model"

	"github.com/shopspring/decimal"
)

// EstadoAbastecimiento is the derived procurement state of one ListaItem,
// aggregated over every PedidoItem that references it.
type EstadoAbastecimiento string

const (
	AbastecimientoSinPedidos EstadoAbastecimiento = "sin_pedidos"
	AbastecimientoPedido     EstadoAbastecimiento = "pedido"
	AbastecimientoParcial    EstadoAbastecimiento = "parcial"
	AbastecimientoAtendido   EstadoAbastecimiento = "atendido"
	AbastecimientoEntregado  EstadoAbastecimiento = "entregado"
)

// ResumenAbastecimiento summarizes the procurement progress of one ListaItem.
type ResumenAbastecimiento struct {
	Estado           EstadoAbastecimiento
	TotalPedidos     int
	CantidadPedida   decimal.Decimal
	CantidadAtendida decimal.Decimal
	// CantidadDisponible = requerida − pedida. Negative means over-committed;
	// that is reported as-is, never clamped.
	CantidadDisponible decimal.Decimal
	// Activos are the pedido items still in flight (ni cancelados ni entregados).
	Activos []model.PedidoItem
	// UltimoPedidoItem is the most recently created non-cancelled item,
	// CreatedAt descending; ties resolve to the later input position.
	UltimoPedidoItem *model.PedidoItem
}

// ResumirAbastecimiento computes the fulfillment summary for a requirement
// item. Pure: it never mutates its inputs and tolerates empty slices.
//
// Cancelled pedido items are excluded from every count and sum, so an item
// whose only pedidos were cancelled degrades to "sin_pedidos" and becomes
// available for conversion again.
//
// State precedence over the non-cancelled items, first match wins:
//  1. none                                        → sin_pedidos
//  2. all entregado                               → entregado
//  3. atendida == pedida && pedida ≥ requerida    → atendido
//  4. anything received, not everything           → parcial
//  5. otherwise (nothing received yet)            → pedido
func ResumirAbastecimiento(cantidadRequerida decimal.Decimal, items []model.PedidoItem) ResumenAbastecimiento {
	res := ResumenAbastecimiento{
		Estado:             AbastecimientoSinPedidos,
		CantidadPedida:     decimal.Zero,
		CantidadAtendida:   decimal.Zero,
		CantidadDisponible: cantidadRequerida,
	}

	todosEntregados := true
	for i := range items {
		it := items[i]
		if it.Estado == model.EstadoItemCancelado {
			continue
		}

		res.TotalPedidos++
		res.CantidadPedida = res.CantidadPedida.Add(it.Cantidad)
		res.CantidadAtendida = res.CantidadAtendida.Add(it.CantidadAtendida)

		if it.Estado != model.EstadoItemEntregado {
			todosEntregados = false
			res.Activos = append(res.Activos, it)
		}

		// CreatedAt descending; >= keeps the later input position on ties.
		if res.UltimoPedidoItem == nil || !it.CreatedAt.Before(res.UltimoPedidoItem.CreatedAt) {
			copia := it
			res.UltimoPedidoItem = &copia
		}
	}

	if res.TotalPedidos == 0 {
		return res
	}

	res.CantidadDisponible = cantidadRequerida.Sub(res.CantidadPedida)

	switch {
	case todosEntregados:
		res.Estado = AbastecimientoEntregado
	case res.CantidadAtendida.Equal(res.CantidadPedida) && res.CantidadPedida.GreaterThanOrEqual(cantidadRequerida):
		res.Estado = AbastecimientoAtendido
	case res.CantidadAtendida.GreaterThan(decimal.Zero):
		res.Estado = AbastecimientoParcial
	default:
		res.Estado = AbastecimientoPedido
	}
	return res
}
