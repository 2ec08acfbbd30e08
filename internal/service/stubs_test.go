package service

// stubs_test.go
// In-memory repository stubs shared by the service tests. They reproduce the
// conditional-write semantics of the real repositories (decrement only when
// stock covers it, abono only when the balance covers it) so the services can
// be exercised without a database. The coordinator runs with a nil db, which
// passes a nil tx straight through to these stubs.

import (
	"context"
	"errors"
	"time"

	"kashflow/internal/dto"
	"kashflow/internal/model"
	"kashflow/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── ProductoRepository ───────────────────────────────────────────────────────

type stubProductoRepo struct {
	productos map[uuid.UUID]*model.Producto
}

func newStubProductoRepo() *stubProductoRepo {
	return &stubProductoRepo{productos: make(map[uuid.UUID]*model.Producto)}
}

func (r *stubProductoRepo) add(p *model.Producto) *model.Producto {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.productos[p.ID] = p
	return p
}

func (r *stubProductoRepo) Create(_ context.Context, p *model.Producto) error {
	r.add(p)
	return nil
}

func (r *stubProductoRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Producto, error) {
	p, ok := r.productos[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cloned := *p
	return &cloned, nil
}

func (r *stubProductoRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Producto, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubProductoRepo) List(_ context.Context, _ dto.ProductoFilter) ([]model.Producto, int64, error) {
	out := make([]model.Producto, 0, len(r.productos))
	for _, p := range r.productos {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *stubProductoRepo) ListBajoStock(_ context.Context) ([]model.Producto, error) {
	var out []model.Producto
	for _, p := range r.productos {
		if p.Activo && p.StockActual <= p.StockMinimo {
			out = append(out, *p)
		}
	}
	return out, nil
}

// Update mirrors the column-selective write of the real repository:
// stock_actual and activo never come from the caller's snapshot.
func (r *stubProductoRepo) Update(_ context.Context, p *model.Producto) error {
	stored, ok := r.productos[p.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Nombre = p.Nombre
	stored.Descripcion = p.Descripcion
	stored.PrecioVenta = p.PrecioVenta
	stored.PrecioCosto = p.PrecioCosto
	stored.StockMinimo = p.StockMinimo
	return nil
}

func (r *stubProductoRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	if p, ok := r.productos[id]; ok {
		p.Activo = false
	}
	return nil
}

func (r *stubProductoRepo) DescontarStockTx(_ *gorm.DB, id uuid.UUID, cantidad int) (bool, error) {
	p, ok := r.productos[id]
	if !ok || p.StockActual < cantidad {
		return false, nil
	}
	p.StockActual -= cantidad
	return true, nil
}

func (r *stubProductoRepo) AjustarStock(_ context.Context, id uuid.UUID, delta int) error {
	if p, ok := r.productos[id]; ok {
		p.StockActual += delta
	}
	return nil
}

func (r *stubProductoRepo) DB() *gorm.DB { return nil }

var _ repository.ProductoRepository = (*stubProductoRepo)(nil)

// ── ClienteRepository ────────────────────────────────────────────────────────

type stubClienteRepo struct {
	clientes map[uuid.UUID]*model.Cliente
	cortes   []model.CorteInteres
	// findTxErr injects a per-customer failure into FindByIDTx.
	findTxErr map[uuid.UUID]error
}

func newStubClienteRepo() *stubClienteRepo {
	return &stubClienteRepo{
		clientes:  make(map[uuid.UUID]*model.Cliente),
		findTxErr: make(map[uuid.UUID]error),
	}
}

func (r *stubClienteRepo) add(c *model.Cliente) *model.Cliente {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	r.clientes[c.ID] = c
	return c
}

func (r *stubClienteRepo) Create(_ context.Context, c *model.Cliente) error {
	r.add(c)
	return nil
}

func (r *stubClienteRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Cliente, error) {
	c, ok := r.clientes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cloned := *c
	return &cloned, nil
}

func (r *stubClienteRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Cliente, error) {
	if err, ok := r.findTxErr[id]; ok {
		return nil, err
	}
	return r.FindByID(context.Background(), id)
}

func (r *stubClienteRepo) List(_ context.Context, _ dto.ClienteFilter) ([]model.Cliente, int64, error) {
	out := make([]model.Cliente, 0, len(r.clientes))
	for _, c := range r.clientes {
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

func (r *stubClienteRepo) ListConSaldo(_ context.Context) ([]model.Cliente, error) {
	var out []model.Cliente
	for _, c := range r.clientes {
		if c.Activo && c.SaldoActual.IsPositive() {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (r *stubClienteRepo) Update(_ context.Context, c *model.Cliente) error {
	r.clientes[c.ID] = c
	return nil
}

func (r *stubClienteRepo) DebitarTx(_ *gorm.DB, id uuid.UUID, monto decimal.Decimal, ahora time.Time) error {
	c, ok := r.clientes[id]
	if !ok {
		return errors.New("cliente no existe")
	}
	c.SaldoActual = c.SaldoActual.Add(monto)
	c.SaldoHistorico = c.SaldoHistorico.Add(monto)
	c.UltimaCompra = &ahora
	return nil
}

func (r *stubClienteRepo) AbonarTx(_ *gorm.DB, id uuid.UUID, monto decimal.Decimal) (bool, error) {
	c, ok := r.clientes[id]
	if !ok || monto.GreaterThan(c.SaldoActual) {
		return false, nil
	}
	c.SaldoActual = c.SaldoActual.Sub(monto)
	if c.SaldoActual.IsZero() {
		c.Moroso = false
	}
	return true, nil
}

func (r *stubClienteRepo) AplicarCorteTx(_ *gorm.DB, cliente *model.Cliente, corte *model.CorteInteres) error {
	c, ok := r.clientes[cliente.ID]
	if !ok {
		return errors.New("cliente no existe")
	}
	c.SaldoActual = cliente.SaldoActual
	c.UltimoCorteIntereses = cliente.UltimoCorteIntereses
	c.Moroso = cliente.Moroso
	if corte.ID == uuid.Nil {
		corte.ID = uuid.New()
	}
	r.cortes = append(r.cortes, *corte)
	return nil
}

func (r *stubClienteRepo) HistorialCortes(_ context.Context, clienteID uuid.UUID) ([]model.CorteInteres, error) {
	var out []model.CorteInteres
	for _, c := range r.cortes {
		if c.ClienteID == clienteID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *stubClienteRepo) DB() *gorm.DB { return nil }

var _ repository.ClienteRepository = (*stubClienteRepo)(nil)

// ── UsuarioRepository ────────────────────────────────────────────────────────

type stubUsuarioRepo struct {
	usuarios map[uuid.UUID]*model.Usuario
}

func newStubUsuarioRepo() *stubUsuarioRepo {
	return &stubUsuarioRepo{usuarios: make(map[uuid.UUID]*model.Usuario)}
}

func (r *stubUsuarioRepo) add(u *model.Usuario) *model.Usuario {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	r.usuarios[u.ID] = u
	return u
}

func (r *stubUsuarioRepo) Create(_ context.Context, u *model.Usuario) error {
	r.add(u)
	return nil
}

func (r *stubUsuarioRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Usuario, error) {
	u, ok := r.usuarios[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *stubUsuarioRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Usuario, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubUsuarioRepo) FindByUsername(_ context.Context, username string) (*model.Usuario, error) {
	for _, u := range r.usuarios {
		if u.Username == username && u.Activo {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

var _ repository.UsuarioRepository = (*stubUsuarioRepo)(nil)

// ── VentaRepository ──────────────────────────────────────────────────────────

type stubVentaRepo struct {
	ventas map[uuid.UUID]*model.Venta
	// createErrs is consumed front-to-back: each Create pops one injected
	// error before succeeding, emulating transient storage conflicts.
	createErrs []error
	creates    int
	// beforeUpdateEstado runs just before the conditional estado write,
	// letting tests interleave a concurrent void.
	beforeUpdateEstado func()
}

func newStubVentaRepo() *stubVentaRepo {
	return &stubVentaRepo{ventas: make(map[uuid.UUID]*model.Venta)}
}

func (r *stubVentaRepo) Create(_ context.Context, _ *gorm.DB, v *model.Venta) error {
	r.creates++
	if len(r.createErrs) > 0 {
		err := r.createErrs[0]
		r.createErrs = r.createErrs[1:]
		return err
	}
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	for i := range v.Items {
		if v.Items[i].ID == uuid.Nil {
			v.Items[i].ID = uuid.New()
		}
		v.Items[i].VentaID = v.ID
	}
	cloned := *v
	r.ventas[v.ID] = &cloned
	return nil
}

func (r *stubVentaRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Venta, error) {
	v, ok := r.ventas[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cloned := *v
	return &cloned, nil
}

func (r *stubVentaRepo) FindByIDTx(_ *gorm.DB, id uuid.UUID) (*model.Venta, error) {
	return r.FindByID(context.Background(), id)
}

func (r *stubVentaRepo) UpdateEstadoTx(_ *gorm.DB, id uuid.UUID, estado string) (bool, error) {
	if r.beforeUpdateEstado != nil {
		r.beforeUpdateEstado()
	}
	v, ok := r.ventas[id]
	if !ok || v.Estado == estado {
		return false, nil
	}
	v.Estado = estado
	return true, nil
}

func (r *stubVentaRepo) List(_ context.Context, _ dto.VentaFilter) ([]model.Venta, int64, error) {
	out := make([]model.Venta, 0, len(r.ventas))
	for _, v := range r.ventas {
		out = append(out, *v)
	}
	return out, int64(len(out)), nil
}

func (r *stubVentaRepo) DB() *gorm.DB { return nil }

var _ repository.VentaRepository = (*stubVentaRepo)(nil)

// ── MovimientoStockRepository ────────────────────────────────────────────────

type stubMovimientoRepo struct {
	movimientos []model.MovimientoStock
}

func newStubMovimientoRepo() *stubMovimientoRepo { return &stubMovimientoRepo{} }

func (r *stubMovimientoRepo) CreateTx(_ *gorm.DB, m *model.MovimientoStock) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	r.movimientos = append(r.movimientos, *m)
	return nil
}

func (r *stubMovimientoRepo) Create(_ context.Context, m *model.MovimientoStock) error {
	return r.CreateTx(nil, m)
}

func (r *stubMovimientoRepo) ListByProducto(_ context.Context, productoID uuid.UUID, _ int) ([]model.MovimientoStock, error) {
	var out []model.MovimientoStock
	for _, m := range r.movimientos {
		if m.ProductoID == productoID {
			out = append(out, m)
		}
	}
	return out, nil
}

var _ repository.MovimientoStockRepository = (*stubMovimientoRepo)(nil)
