package service

import (
	"crypto/rand"
	"fmt"
	"time"

	"kashflow/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineaVenta is one resolved sale line fed to the builder: the product
// snapshot taken at sale time plus the requested quantity.
type LineaVenta struct {
	ProductoID     uuid.UUID
	Nombre         string
	Cantidad       int
	PrecioUnitario decimal.Decimal
	PrecioCosto    decimal.Decimal
	EsConsignacion bool
}

// VentaDraft holds the computed totals of a sale before persistence.
type VentaDraft struct {
	Items     []model.VentaItem
	Subtotal  decimal.Decimal
	Descuento decimal.Decimal
	Total     decimal.Decimal
	Ganancia  decimal.Decimal
}

// ConstruirVenta is a pure computation: per line, subtotal = cantidad × precio
// and ganancia = (precio − costo) × cantidad; aggregates are the line sums and
// total = subtotal − descuento. No I/O, no side effects.
func ConstruirVenta(lineas []LineaVenta, descuento decimal.Decimal) (*VentaDraft, error) {
	if len(lineas) == 0 {
		return nil, ErrVentaSinItems
	}
	if descuento.IsNegative() {
		return nil, ErrDescuentoInvalido
	}

	draft := &VentaDraft{
		Items:     make([]model.VentaItem, 0, len(lineas)),
		Subtotal:  decimal.Zero,
		Descuento: descuento,
		Ganancia:  decimal.Zero,
	}

	for _, l := range lineas {
		cantidad := decimal.NewFromInt(int64(l.Cantidad))
		lineSubtotal := l.PrecioUnitario.Mul(cantidad)
		lineGanancia := l.PrecioUnitario.Sub(l.PrecioCosto).Mul(cantidad)

		draft.Items = append(draft.Items, model.VentaItem{
			ProductoID:     l.ProductoID,
			ProductoNombre: l.Nombre,
			Cantidad:       l.Cantidad,
			PrecioUnitario: l.PrecioUnitario,
			PrecioCosto:    l.PrecioCosto,
			Subtotal:       lineSubtotal,
			Ganancia:       lineGanancia,
			EsConsignacion: l.EsConsignacion,
		})
		draft.Subtotal = draft.Subtotal.Add(lineSubtotal)
		draft.Ganancia = draft.Ganancia.Add(lineGanancia)
	}

	if descuento.GreaterThan(draft.Subtotal) {
		return nil, ErrDescuentoInvalido
	}
	draft.Total = draft.Subtotal.Sub(descuento)
	return draft, nil
}

const sufijoCharset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerarNumeroVenta produces a human-readable sale number of the shape
// VTA-<YYYY-MM-DD>-<8 uppercase alphanum>. Uniqueness is NOT guaranteed here:
// the unique index on ventas.numero_venta is authoritative, and a collision
// aborts the transaction as a retryable conflict so the coordinator re-runs
// the unit with a fresh suffix.
func GenerarNumeroVenta(fecha time.Time) string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the platform is broken; fall back to a
		// timestamp-derived suffix rather than panicking mid-sale.
		return fmt.Sprintf("VTA-%s-%08X", fecha.Format("2006-01-02"), fecha.UnixNano()&0xFFFFFFFF)
	}
	for i := range buf {
		buf[i] = sufijoCharset[int(buf[i])%len(sufijoCharset)]
	}
	return fmt.Sprintf("VTA-%s-%s", fecha.Format("2006-01-02"), string(buf))
}
