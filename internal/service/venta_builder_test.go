package service

import (
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestConstruirVenta_Totales(t *testing.T) {
	lineas := []LineaVenta{
		{ProductoID: uuid.New(), Nombre: "Coca 1.5L", Cantidad: 3, PrecioUnitario: dec("1500.00"), PrecioCosto: dec("1000.00")},
		{ProductoID: uuid.New(), Nombre: "Pan lactal", Cantidad: 2, PrecioUnitario: dec("2200.50"), PrecioCosto: dec("1800.00")},
	}

	draft, err := ConstruirVenta(lineas, dec("500.00"))
	require.NoError(t, err)

	// 3×1500 + 2×2200.50 = 8901.00
	assert.True(t, draft.Subtotal.Equal(dec("8901.00")), "subtotal = %s", draft.Subtotal)
	assert.True(t, draft.Total.Equal(dec("8401.00")), "total = %s", draft.Total)
	// 3×500 + 2×400.50 = 2301.00
	assert.True(t, draft.Ganancia.Equal(dec("2301.00")), "ganancia = %s", draft.Ganancia)

	require.Len(t, draft.Items, 2)
	assert.True(t, draft.Items[0].Subtotal.Equal(dec("4500.00")))
	assert.True(t, draft.Items[1].Subtotal.Equal(dec("4401.00")))
	assert.True(t, draft.Items[1].Ganancia.Equal(dec("801.00")))
}

func TestConstruirVenta_SinItems(t *testing.T) {
	_, err := ConstruirVenta(nil, decimal.Zero)
	assert.ErrorIs(t, err, ErrVentaSinItems)
}

func TestConstruirVenta_DescuentoNegativo(t *testing.T) {
	lineas := []LineaVenta{{ProductoID: uuid.New(), Cantidad: 1, PrecioUnitario: dec("100")}}
	_, err := ConstruirVenta(lineas, dec("-1"))
	assert.ErrorIs(t, err, ErrDescuentoInvalido)
}

func TestConstruirVenta_DescuentoMayorQueSubtotal(t *testing.T) {
	lineas := []LineaVenta{{ProductoID: uuid.New(), Cantidad: 2, PrecioUnitario: dec("100")}}
	_, err := ConstruirVenta(lineas, dec("200.01"))
	assert.ErrorIs(t, err, ErrDescuentoInvalido)
}

func TestConstruirVenta_DescuentoIgualSubtotal(t *testing.T) {
	// Total cero es una venta valida (regalo / promo).
	lineas := []LineaVenta{{ProductoID: uuid.New(), Cantidad: 1, PrecioUnitario: dec("100")}}
	draft, err := ConstruirVenta(lineas, dec("100"))
	require.NoError(t, err)
	assert.True(t, draft.Total.IsZero())
}

var numeroVentaRe = regexp.MustCompile(`^VTA-\d{4}-\d{2}-\d{2}-[A-Z0-9]{8}$`)

func TestGenerarNumeroVenta_Formato(t *testing.T) {
	fecha := time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)
	numero := GenerarNumeroVenta(fecha)
	assert.Regexp(t, numeroVentaRe, numero)
	assert.Contains(t, numero, "VTA-2026-03-15-")
}

func TestGenerarNumeroVenta_SufijosVarian(t *testing.T) {
	fecha := time.Now()
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		seen[GenerarNumeroVenta(fecha)] = true
	}
	// 50 draws over a 36^8 space colliding would point at a broken generator.
	assert.Greater(t, len(seen), 45)
}
