package service

import (
	"github.com/jesusartemio-dev/gyscontrol-app-sub009/internal/model"

	"github.com/shopspring/decimal"
)

// umbralDesviacionPct blocks conversion when |desviación| exceeds this value.
// The boundary is exclusive: exactly 25% still converts.
const umbralDesviacionPct = 25

var cien = decimal.NewFromInt(100)

// VeredictoConversion is advisory metadata for the UI: the conversion engine
// re-validates at execution time because the list may have changed since.
type VeredictoConversion struct {
	CostoReal     decimal.Decimal
	DesviacionPct decimal.Decimal
	Convertible   bool
	MotivoBloqueo string
}

// costoUnitarioResuelto resolves an item's unit cost for budget comparison:
// selected quote price, then catalog reference price, then zero.
func costoUnitarioResuelto(item *model.ListaItem) decimal.Decimal {
	if item.CotizacionSeleccionada != nil {
		return item.CotizacionSeleccionada.PrecioUnitario
	}
	if item.Equipo != nil {
		return item.Equipo.PrecioReferencia
	}
	return decimal.Zero
}

// CostoRealLista is the resolved cost of the whole list:
// Σ costo unitario resuelto × cantidad requerida.
func CostoRealLista(lista *model.Lista) decimal.Decimal {
	total := decimal.Zero
	for i := range lista.Items {
		item := &lista.Items[i]
		total = total.Add(costoUnitarioResuelto(item).Mul(item.CantidadRequerida))
	}
	return total
}

// DesviacionPct = (costoReal − presupuesto) / presupuesto × 100.
// With presupuesto 0 the result is defined as 0: the upstream system treats
// "no budget" as "no deviation" and callers depend on that, so the behavior
// is preserved even though it conflates the two cases.
func DesviacionPct(costoReal, presupuesto decimal.Decimal) decimal.Decimal {
	if presupuesto.IsZero() {
		return decimal.Zero
	}
	return costoReal.Sub(presupuesto).Div(presupuesto).Mul(cien)
}

// EvaluarCoherencia computes the deviation and convertibility verdict for a
// list. Verdict precedence, first match wins:
//  1. no item has remaining balance    → "Todos los ítems ya fueron convertidos"
//  2. estado ∉ {aprobada, por_revisar} → "La lista debe estar aprobada"
//  3. |desviación| > 25%               → budget block
//  4. convertible
func EvaluarCoherencia(lista *model.Lista) VeredictoConversion {
	costoReal := CostoRealLista(lista)
	v := VeredictoConversion{
		CostoReal:     costoReal,
		DesviacionPct: DesviacionPct(costoReal, lista.PresupuestoPlaneado),
	}

	conSaldo := false
	for i := range lista.Items {
		if lista.Items[i].CantidadDisponible().GreaterThan(decimal.Zero) {
			conSaldo = true
			break
		}
	}

	switch {
	case !conSaldo:
		v.MotivoBloqueo = "Todos los ítems ya fueron convertidos"
	case lista.Estado != model.EstadoListaAprobada && lista.Estado != model.EstadoListaPorRevisar:
		v.MotivoBloqueo = "La lista debe estar aprobada"
	case v.DesviacionPct.Abs().GreaterThan(decimal.NewFromInt(umbralDesviacionPct)):
		v.MotivoBloqueo = "La desviación presupuestaria supera el umbral (25%)"
	default:
		v.Convertible = true
	}
	return v
}
