package repository

import (
	"context"
	"testing"
	"time"

	"kashflow/internal/dto"
	"kashflow/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildVenta(usuarioID uuid.UUID, numero string, fecha time.Time) *model.Venta {
	return &model.Venta{
		NumeroVenta:   numero,
		UsuarioID:     usuarioID,
		UsuarioNombre: "Vendedor Uno",
		Subtotal:      decimal.NewFromInt(3000),
		Descuento:     decimal.Zero,
		Total:         decimal.NewFromInt(3000),
		Ganancia:      decimal.NewFromInt(900),
		MetodoPago:    model.MetodoEfectivo,
		Estado:        model.EstadoCompletada,
		FechaVenta:    fecha,
		Items: []model.VentaItem{
			{
				ProductoID:     uuid.New(),
				ProductoNombre: "Yerba 1kg",
				Cantidad:       2,
				PrecioUnitario: decimal.NewFromInt(1500),
				PrecioCosto:    decimal.NewFromInt(1050),
				Subtotal:       decimal.NewFromInt(3000),
				Ganancia:       decimal.NewFromInt(900),
			},
		},
	}
}

func TestVentaRepo_CreatePersisteItems(t *testing.T) {
	db := setupTestDB(t)
	repo := NewVentaRepository(db)
	ctx := context.Background()

	v := buildVenta(uuid.New(), "VTA-2026-06-10-AAAA1111", time.Now())
	require.NoError(t, repo.Create(ctx, db, v))
	require.NotEqual(t, uuid.Nil, v.ID)

	reloaded, err := repo.FindByID(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, "VTA-2026-06-10-AAAA1111", reloaded.NumeroVenta)
	require.Len(t, reloaded.Items, 1)
	assert.Equal(t, v.ID, reloaded.Items[0].VentaID)
	assert.True(t, reloaded.Total.Equal(decimal.NewFromInt(3000)))
}

func TestVentaRepo_NumeroVentaUnico(t *testing.T) {
	db := setupTestDB(t)
	repo := NewVentaRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, db, buildVenta(uuid.New(), "VTA-2026-06-10-DUP00000", time.Now())))
	err := repo.Create(ctx, db, buildVenta(uuid.New(), "VTA-2026-06-10-DUP00000", time.Now()))
	assert.Error(t, err, "duplicate numero_venta must violate the unique index")
}

func TestVentaRepo_UpdateEstado(t *testing.T) {
	db := setupTestDB(t)
	repo := NewVentaRepository(db)
	ctx := context.Background()

	v := buildVenta(uuid.New(), "VTA-2026-06-10-BBBB2222", time.Now())
	require.NoError(t, repo.Create(ctx, db, v))

	ok, err := repo.UpdateEstadoTx(db, v.ID, model.EstadoAnulada)
	require.NoError(t, err)
	assert.True(t, ok)

	reloaded, err := repo.FindByID(ctx, v.ID)
	require.NoError(t, err)
	assert.Equal(t, model.EstadoAnulada, reloaded.Estado)

	// Already in the target state: zero rows affected, only one void wins.
	ok, err = repo.UpdateEstadoTx(db, v.ID, model.EstadoAnulada)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVentaRepo_ListFiltraPorEstadoYFecha(t *testing.T) {
	db := setupTestDB(t)
	repo := NewVentaRepository(db)
	ctx := context.Background()

	hoy := time.Date(2026, 6, 10, 14, 0, 0, 0, time.UTC)
	ayer := hoy.AddDate(0, 0, -1)

	v1 := buildVenta(uuid.New(), "VTA-2026-06-10-CCCC3333", hoy)
	v2 := buildVenta(uuid.New(), "VTA-2026-06-09-DDDD4444", ayer)
	anulada := buildVenta(uuid.New(), "VTA-2026-06-10-EEEE5555", hoy)
	anulada.Estado = model.EstadoAnulada
	for _, v := range []*model.Venta{v1, v2, anulada} {
		require.NoError(t, repo.Create(ctx, db, v))
	}

	ventas, total, err := repo.List(ctx, dto.VentaFilter{
		Fecha: "2026-06-10", Estado: model.EstadoCompletada, Page: 1, Limit: 50,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, ventas, 1)
	assert.Equal(t, "VTA-2026-06-10-CCCC3333", ventas[0].NumeroVenta)

	ventas, total, err = repo.List(ctx, dto.VentaFilter{Estado: "all", Page: 1, Limit: 50})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, ventas, 3)
}
