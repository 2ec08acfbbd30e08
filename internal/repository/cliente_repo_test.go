package repository

import (
	"context"
	"testing"
	"time"

	"kashflow/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCliente(t *testing.T, repo ClienteRepository, saldo string, moroso bool) *model.Cliente {
	t.Helper()
	s, err := decimal.NewFromString(saldo)
	require.NoError(t, err)
	c := &model.Cliente{
		Nombre:         "Doña Rosa",
		SaldoActual:    s,
		SaldoHistorico: s,
		Moroso:         moroso,
		Activo:         true,
	}
	require.NoError(t, repo.Create(context.Background(), c))
	return c
}

func TestClienteRepo_DebitarAcumulaSaldos(t *testing.T) {
	db := setupTestDB(t)
	repo := NewClienteRepository(db)
	c := seedCliente(t, repo, "1000", false)
	ahora := time.Now()

	require.NoError(t, repo.DebitarTx(db, c.ID, decimal.NewFromInt(2500), ahora))

	reloaded, err := repo.FindByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.SaldoActual.Equal(decimal.NewFromInt(3500)))
	assert.True(t, reloaded.SaldoHistorico.Equal(decimal.NewFromInt(3500)))
	require.NotNil(t, reloaded.UltimaCompra)
}

func TestClienteRepo_AbonarCondicional(t *testing.T) {
	db := setupTestDB(t)
	repo := NewClienteRepository(db)
	c := seedCliente(t, repo, "1000", true)

	// Over the balance: rejected, nothing moves.
	ok, err := repo.AbonarTx(db, c.ID, decimal.NewFromInt(1001))
	require.NoError(t, err)
	assert.False(t, ok)

	// Partial: balance drops, moroso stays.
	ok, err = repo.AbonarTx(db, c.ID, decimal.NewFromInt(400))
	require.NoError(t, err)
	assert.True(t, ok)

	reloaded, err := repo.FindByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.SaldoActual.Equal(decimal.NewFromInt(600)))
	assert.True(t, reloaded.Moroso)

	// Paying off the rest clears the flag in the same UPDATE.
	ok, err = repo.AbonarTx(db, c.ID, decimal.NewFromInt(600))
	require.NoError(t, err)
	assert.True(t, ok)

	reloaded, err = repo.FindByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.SaldoActual.IsZero())
	assert.False(t, reloaded.Moroso)
	// SaldoHistorico is append-only: payments never reduce it.
	assert.True(t, reloaded.SaldoHistorico.Equal(decimal.NewFromInt(1000)))
}

func TestClienteRepo_AplicarCorteCreaHistorial(t *testing.T) {
	db := setupTestDB(t)
	repo := NewClienteRepository(db)
	c := seedCliente(t, repo, "1000", false)
	ahora := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	c.SaldoActual = decimal.NewFromInt(1200)
	c.UltimoCorteIntereses = &ahora
	c.Moroso = true
	corte := &model.CorteInteres{
		ClienteID:     c.ID,
		Fecha:         ahora,
		MontoAplicado: decimal.NewFromInt(200),
		NuevoSaldo:    decimal.NewFromInt(1200),
		Descripcion:   "Interés mensual 2026-06 (20%)",
	}
	require.NoError(t, repo.AplicarCorteTx(db, c, corte))

	reloaded, err := repo.FindByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.SaldoActual.Equal(decimal.NewFromInt(1200)))
	assert.True(t, reloaded.Moroso)
	require.NotNil(t, reloaded.UltimoCorteIntereses)

	historial, err := repo.HistorialCortes(context.Background(), c.ID)
	require.NoError(t, err)
	require.Len(t, historial, 1)
	assert.True(t, historial[0].MontoAplicado.Equal(decimal.NewFromInt(200)))
	assert.Equal(t, "Interés mensual 2026-06 (20%)", historial[0].Descripcion)
}

func TestClienteRepo_ListConSaldo(t *testing.T) {
	db := setupTestDB(t)
	repo := NewClienteRepository(db)
	ctx := context.Background()

	conDeuda := seedCliente(t, repo, "500", false)
	require.NoError(t, repo.Create(ctx, &model.Cliente{Nombre: "Sin deuda", Activo: true}))
	inactivo := &model.Cliente{Nombre: "Inactivo", SaldoActual: decimal.NewFromInt(900), Activo: false}
	require.NoError(t, repo.Create(ctx, inactivo))

	clientes, err := repo.ListConSaldo(ctx)
	require.NoError(t, err)
	require.Len(t, clientes, 1)
	assert.Equal(t, conDeuda.ID, clientes[0].ID)
}
