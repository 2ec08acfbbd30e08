package service

import (
	"context"
	"errors"
	"fmt"

	"kashflow/internal/model"
	"kashflow/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InventarioService is the stock ledger: the only code path that moves
// stock_actual. The pre-check is a fast-fail optimization; the conditional
// decrement re-validates availability at write time and is authoritative.
type InventarioService interface {
	// VerificarDisponibilidad is a pure read: stock >= cantidad.
	VerificarDisponibilidad(ctx context.Context, productoID uuid.UUID, cantidad int) (bool, error)

	// DescontarStockTx atomically decrements stock for one sale line and
	// records the audit movement. Returns ErrStockInsuficiente when the
	// conditional write finds less stock than requested — even if an earlier
	// VerificarDisponibilidad passed.
	DescontarStockTx(ctx context.Context, tx *gorm.DB, producto *model.Producto, cantidad int, ventaID uuid.UUID, numeroVenta string) error

	// AjustarStock applies a manual delta (restock, audit correction).
	AjustarStock(ctx context.Context, productoID uuid.UUID, delta int, motivo string) error

	// AlertasStock lists active products at or below their reorder threshold.
	AlertasStock(ctx context.Context) ([]model.Producto, error)
}

type inventarioService struct {
	repo           repository.ProductoRepository
	movimientoRepo repository.MovimientoStockRepository
}

func NewInventarioService(repo repository.ProductoRepository, movimientoRepo repository.MovimientoStockRepository) InventarioService {
	return &inventarioService{repo: repo, movimientoRepo: movimientoRepo}
}

func (s *inventarioService) VerificarDisponibilidad(ctx context.Context, productoID uuid.UUID, cantidad int) (bool, error) {
	p, err := s.repo.FindByID(ctx, productoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrProductoNoEncontrado
		}
		return false, err
	}
	return p.StockActual >= cantidad, nil
}

func (s *inventarioService) DescontarStockTx(ctx context.Context, tx *gorm.DB, producto *model.Producto, cantidad int, ventaID uuid.UUID, numeroVenta string) error {
	ok, err := s.repo.DescontarStockTx(tx, producto.ID, cantidad)
	if err != nil {
		return err
	}
	if !ok {
		// Re-read inside the transaction for the authoritative shortfall.
		disponible := 0
		if actual, rerr := s.repo.FindByIDTx(tx, producto.ID); rerr == nil {
			disponible = actual.StockActual
		}
		return &ErrStockInsuficiente{
			ProductoID: producto.ID,
			Nombre:     producto.Nombre,
			Solicitado: cantidad,
			Disponible: disponible,
		}
	}

	ventaRef := ventaID
	return s.movimientoRepo.CreateTx(tx, &model.MovimientoStock{
		ProductoID:    producto.ID,
		Tipo:          "venta",
		Cantidad:      -cantidad,
		StockAnterior: producto.StockActual,
		StockNuevo:    producto.StockActual - cantidad,
		Motivo:        fmt.Sprintf("Venta %s", numeroVenta),
		ReferenciaID:  &ventaRef,
	})
}

func (s *inventarioService) AjustarStock(ctx context.Context, productoID uuid.UUID, delta int, motivo string) error {
	p, err := s.repo.FindByID(ctx, productoID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductoNoEncontrado
		}
		return err
	}
	if p.StockActual+delta < 0 {
		return &ErrStockInsuficiente{
			ProductoID: p.ID,
			Nombre:     p.Nombre,
			Solicitado: -delta,
			Disponible: p.StockActual,
		}
	}
	if err := s.repo.AjustarStock(ctx, productoID, delta); err != nil {
		return err
	}
	return s.movimientoRepo.Create(ctx, &model.MovimientoStock{
		ProductoID:    p.ID,
		Tipo:          "ajuste_manual",
		Cantidad:      delta,
		StockAnterior: p.StockActual,
		StockNuevo:    p.StockActual + delta,
		Motivo:        motivo,
	})
}

func (s *inventarioService) AlertasStock(ctx context.Context) ([]model.Producto, error) {
	return s.repo.ListBajoStock(ctx)
}
