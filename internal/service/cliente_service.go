package service

import (
	"context"
	"errors"
	"time"

	"kashflow/internal/dto"
	"kashflow/internal/model"
	"kashflow/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ClienteService covers the single-entity customer lifecycle and read views.
// Balance mutations live in CreditoService only.
type ClienteService interface {
	Crear(ctx context.Context, req dto.CrearClienteRequest) (*dto.ClienteResponse, error)
	ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error)
	Listar(ctx context.Context, filter dto.ClienteFilter) (*dto.ClienteListResponse, error)
	HistorialCortes(ctx context.Context, id uuid.UUID) ([]dto.CorteInteresResponse, error)
}

type clienteService struct {
	repo repository.ClienteRepository
}

func NewClienteService(repo repository.ClienteRepository) ClienteService {
	return &clienteService{repo: repo}
}

func (s *clienteService) Crear(ctx context.Context, req dto.CrearClienteRequest) (*dto.ClienteResponse, error) {
	c := &model.Cliente{
		Nombre:   req.Nombre,
		Telefono: req.Telefono,
		Activo:   true,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return clienteToResponse(c), nil
}

func (s *clienteService) ObtenerPorID(ctx context.Context, id uuid.UUID) (*dto.ClienteResponse, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClienteNoEncontrado
		}
		return nil, err
	}
	return clienteToResponse(c), nil
}

func (s *clienteService) Listar(ctx context.Context, filter dto.ClienteFilter) (*dto.ClienteListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	clientes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ClienteResponse, 0, len(clientes))
	for i := range clientes {
		items = append(items, *clienteToResponse(&clientes[i]))
	}
	return &dto.ClienteListResponse{Data: items, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *clienteService) HistorialCortes(ctx context.Context, id uuid.UUID) ([]dto.CorteInteresResponse, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrClienteNoEncontrado
		}
		return nil, err
	}
	cortes, err := s.repo.HistorialCortes(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CorteInteresResponse, 0, len(cortes))
	for _, c := range cortes {
		out = append(out, dto.CorteInteresResponse{
			Fecha:         c.Fecha.Format(time.RFC3339),
			MontoAplicado: c.MontoAplicado,
			NuevoSaldo:    c.NuevoSaldo,
			Descripcion:   c.Descripcion,
		})
	}
	return out, nil
}

func clienteToResponse(c *model.Cliente) *dto.ClienteResponse {
	resp := &dto.ClienteResponse{
		ID:             c.ID.String(),
		Nombre:         c.Nombre,
		Telefono:       c.Telefono,
		SaldoActual:    c.SaldoActual,
		SaldoHistorico: c.SaldoHistorico,
		Moroso:         c.Moroso,
	}
	if c.UltimaCompra != nil {
		s := c.UltimaCompra.Format(time.RFC3339)
		resp.UltimaCompra = &s
	}
	if c.UltimoCorteIntereses != nil {
		s := c.UltimoCorteIntereses.Format(time.RFC3339)
		resp.UltimoCorteIntereses = &s
	}
	return resp
}
