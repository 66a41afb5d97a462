package cpe

import (
	"github.com/shopspring/decimal"

	"github.com/ventasoft/facturacion-cpe/internal/domain/entity"
	pkgcpe "github.com/ventasoft/facturacion-cpe/pkg/cpe"
)

// CalcularTotales deriva los totales del comprobante a partir de sus ítems.
// Solo las líneas gravadas generan IGV; cada línea se redondea a 2 decimales
// antes de acumular, igual que en el XML.
func CalcularTotales(items []entity.ItemComprobante) entity.Totales {
	tasaIGV, _ := decimal.NewFromString(pkgcpe.TasaIGV)

	var t entity.Totales
	for _, it := range items {
		base := it.Cantidad.Mul(it.PrecioUnitario).Round(2)
		t.SubTotal = t.SubTotal.Add(base)
		if pkgcpe.TributoPorAfectacion(it.Afectacion) == pkgcpe.TributoIGV {
			t.IGV = t.IGV.Add(base.Mul(tasaIGV).Round(2))
		}
	}
	t.Total = t.SubTotal.Add(t.IGV)
	return t
}
