package service

import (
	"context"
	"errors"
	"time"

	"kashflow/internal/dto"
	"kashflow/internal/model"
	"kashflow/internal/repository"
	"kashflow/internal/txn"
	"kashflow/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type VentaService interface {
	RegistrarVenta(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error)
	AnularVenta(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error)
	ObtenerVenta(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error)
	ListVentas(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error)
}

type ventaService struct {
	repo        repository.VentaRepository
	productoRepo repository.ProductoRepository
	clienteRepo repository.ClienteRepository
	usuarioRepo repository.UsuarioRepository
	inventario  InventarioService
	credito     CreditoService
	coord       *txn.Coordinator
	dispatcher  *worker.Dispatcher
}

func NewVentaService(
	repo repository.VentaRepository,
	productoRepo repository.ProductoRepository,
	clienteRepo repository.ClienteRepository,
	usuarioRepo repository.UsuarioRepository,
	inventario InventarioService,
	credito CreditoService,
	coord *txn.Coordinator,
	dispatcher *worker.Dispatcher,
) VentaService {
	return &ventaService{
		repo:         repo,
		productoRepo: productoRepo,
		clienteRepo:  clienteRepo,
		usuarioRepo:  usuarioRepo,
		inventario:   inventario,
		credito:      credito,
		coord:        coord,
		dispatcher:   dispatcher,
	}
}

// ── RegistrarVenta ────────────────────────────────────────────────────────────
// One atomic unit per attempt, re-runnable by the coordinator:
//   1. availability pre-check for every line (fast fail, no writes)
//   2. resolve producto/cliente/usuario snapshots, build the draft
//   3. persist the venta (estado completada) with a fresh numero
//   4. conditional stock decrement per line — any shortfall aborts the unit,
//      rolling back the venta persisted in step 3
//   5. fiado only: debit the customer's credit ledger by the sale total
// An aborted attempt leaves no partial writes, so retrying on transient
// conflicts can never duplicate a venta or double-decrement stock.

func (s *ventaService) RegistrarVenta(ctx context.Context, usuarioID uuid.UUID, req dto.RegistrarVentaRequest) (*dto.VentaResponse, error) {
	metodo := model.MetodoPago(req.MetodoPago)
	if !metodo.Valid() {
		return nil, ErrMetodoPagoInvalido
	}

	var clienteID *uuid.UUID
	if req.ClienteID != nil && *req.ClienteID != "" {
		cid, err := uuid.Parse(*req.ClienteID)
		if err != nil {
			return nil, ErrClienteNoEncontrado
		}
		clienteID = &cid
	}
	if metodo == model.MetodoFiado && clienteID == nil {
		return nil, ErrFiadoSinCliente
	}

	var venta *model.Venta
	txErr := s.coord.RunWithRetry(ctx, func(tx *gorm.DB) error {
		venta = nil
		ahora := time.Now()

		// 1-2. Resolve lines with the availability pre-check. The check here
		// is a fast fail; the decrement below re-validates at write time.
		lineas := make([]LineaVenta, 0, len(req.Items))
		productos := make([]*model.Producto, 0, len(req.Items))
		for _, item := range req.Items {
			pid, err := uuid.Parse(item.ProductoID)
			if err != nil {
				return ErrProductoNoEncontrado
			}
			p, err := s.productoRepo.FindByIDTx(tx, pid)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrProductoNoEncontrado
				}
				return err
			}
			if !p.Activo {
				return ErrProductoInactivo
			}
			if p.StockActual < item.Cantidad {
				return &ErrStockInsuficiente{
					ProductoID: p.ID,
					Nombre:     p.Nombre,
					Solicitado: item.Cantidad,
					Disponible: p.StockActual,
				}
			}
			productos = append(productos, p)
			lineas = append(lineas, LineaVenta{
				ProductoID:     p.ID,
				Nombre:         p.Nombre,
				Cantidad:       item.Cantidad,
				PrecioUnitario: p.PrecioVenta,
				PrecioCosto:    p.PrecioCosto,
				EsConsignacion: item.EsConsignacion,
			})
		}

		draft, err := ConstruirVenta(lineas, req.Descuento)
		if err != nil {
			return err
		}

		usuario, err := s.usuarioRepo.FindByIDTx(tx, usuarioID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUsuarioNoEncontrado
			}
			return err
		}

		clienteNombre := ""
		if clienteID != nil {
			cliente, err := s.clienteRepo.FindByIDTx(tx, *clienteID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrClienteNoEncontrado
				}
				return err
			}
			clienteNombre = cliente.Nombre
		}

		// 3. Persist the venta. The numero is regenerated on every attempt so
		// a unique-index collision resolves itself on retry.
		venta = &model.Venta{
			NumeroVenta:    GenerarNumeroVenta(ahora),
			ClienteID:      clienteID,
			ClienteNombre:  clienteNombre,
			UsuarioID:      usuario.ID,
			UsuarioNombre:  usuario.Nombre,
			Subtotal:       draft.Subtotal,
			Descuento:      draft.Descuento,
			Total:          draft.Total,
			Ganancia:       draft.Ganancia,
			MetodoPago:     metodo,
			ReferenciaPago: req.ReferenciaPago,
			Notas:          req.Notas,
			Estado:         model.EstadoCompletada,
			FechaVenta:     ahora,
			Items:          draft.Items,
		}
		if err := s.repo.Create(ctx, tx, venta); err != nil {
			return err
		}

		// 4. Authoritative conditional decrement per line.
		for i, l := range lineas {
			if err := s.inventario.DescontarStockTx(ctx, tx, productos[i], l.Cantidad, venta.ID, venta.NumeroVenta); err != nil {
				return err
			}
		}

		// 5. A fiado sale increases the customer's balance by exactly the total.
		if metodo == model.MetodoFiado {
			if err := s.credito.DebitarTx(ctx, tx, *clienteID, draft.Total, ahora); err != nil {
				return err
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Info().
		Str("numero_venta", venta.NumeroVenta).
		Str("metodo_pago", string(metodo)).
		Str("total", venta.Total.String()).
		Msg("venta registrada")

	// Async receipt — best effort, never blocks the sale.
	if s.dispatcher != nil {
		payload := worker.ReciboJobPayload{VentaID: venta.ID.String()}
		if req.ClienteEmail != nil {
			payload.ClienteEmail = *req.ClienteEmail
		}
		if err := s.dispatcher.EnqueueRecibo(ctx, payload); err != nil {
			log.Warn().Err(err).Str("venta_id", venta.ID.String()).Msg("no se pudo encolar el recibo")
		}
	}

	return ventaToResponse(venta), nil
}

// AnularVenta flips estado to anulada. It deliberately does NOT restore stock
// nor reverse the customer's saldo: anulación is a terminal audit marker, and
// any compensation is handled manually.
func (s *ventaService) AnularVenta(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error) {
	venta, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVentaNoEncontrada
		}
		return nil, err
	}
	if venta.Estado == model.EstadoAnulada {
		return nil, ErrVentaYaAnulada
	}

	// The UPDATE itself is conditional: if a concurrent void lands between
	// the read above and this write, only one of them flips the row.
	var anulada bool
	txErr := s.coord.Run(ctx, func(tx *gorm.DB) error {
		ok, err := s.repo.UpdateEstadoTx(tx, id, model.EstadoAnulada)
		if err != nil {
			return err
		}
		anulada = ok
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	if !anulada {
		return nil, ErrVentaYaAnulada
	}

	venta.Estado = model.EstadoAnulada
	log.Info().Str("numero_venta", venta.NumeroVenta).Msg("venta anulada")
	return ventaToResponse(venta), nil
}

func (s *ventaService) ObtenerVenta(ctx context.Context, id uuid.UUID) (*dto.VentaResponse, error) {
	venta, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrVentaNoEncontrada
		}
		return nil, err
	}
	return ventaToResponse(venta), nil
}

func (s *ventaService) ListVentas(ctx context.Context, filter dto.VentaFilter) (*dto.VentaListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	ventas, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.VentaResponse, 0, len(ventas))
	for i := range ventas {
		items = append(items, *ventaToResponse(&ventas[i]))
	}
	return &dto.VentaListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func ventaToResponse(v *model.Venta) *dto.VentaResponse {
	items := make([]dto.ItemVentaResponse, 0, len(v.Items))
	for _, item := range v.Items {
		items = append(items, dto.ItemVentaResponse{
			ProductoID:     item.ProductoID.String(),
			Producto:       item.ProductoNombre,
			Cantidad:       item.Cantidad,
			PrecioUnitario: item.PrecioUnitario,
			Subtotal:       item.Subtotal,
			Ganancia:       item.Ganancia,
			EsConsignacion: item.EsConsignacion,
		})
	}
	var clienteID *string
	if v.ClienteID != nil {
		id := v.ClienteID.String()
		clienteID = &id
	}
	return &dto.VentaResponse{
		ID:             v.ID.String(),
		NumeroVenta:    v.NumeroVenta,
		ClienteID:      clienteID,
		ClienteNombre:  v.ClienteNombre,
		UsuarioNombre:  v.UsuarioNombre,
		Items:          items,
		Subtotal:       v.Subtotal,
		Descuento:      v.Descuento,
		Total:          v.Total,
		Ganancia:       v.Ganancia,
		MetodoPago:     string(v.MetodoPago),
		ReferenciaPago: v.ReferenciaPago,
		Notas:          v.Notas,
		Estado:         v.Estado,
		FechaVenta:     v.FechaVenta.Format(time.RFC3339),
	}
}
