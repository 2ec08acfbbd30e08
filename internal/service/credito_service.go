package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"kashflow/internal/dto"
	"kashflow/internal/model"
	"kashflow/internal/repository"
	"kashflow/internal/txn"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// CreditoService is the customer credit ledger: the only code path that moves
// saldo_actual. Debits ride inside the sale transaction; abonos and monthly
// interest each run in their own coordinator-managed transaction.
type CreditoService interface {
	// DebitarTx increases the customer's balance by monto (a fiado sale).
	// Runs inside an already-open sale transaction.
	DebitarTx(ctx context.Context, tx *gorm.DB, clienteID uuid.UUID, monto decimal.Decimal, ahora time.Time) error

	// Abonar pays monto against the outstanding balance. Fails with
	// ErrSinDeuda when nothing is owed and ErrAbonoExcedeSaldo when monto
	// is larger than the balance.
	Abonar(ctx context.Context, clienteID uuid.UUID, monto decimal.Decimal) error

	// AplicarCorteMensual applies at most one interest accrual per customer
	// per calendar month. The month guard and the balance mutation commit as
	// one transaction, so two concurrent runs can never double-apply.
	AplicarCorteMensual(ctx context.Context, clienteID uuid.UUID, tasa decimal.Decimal, ahora time.Time) (*model.CorteInteres, error)

	// EjecutarCorteIntereses runs AplicarCorteMensual over every active
	// customer with saldo > 0. Each customer is an independent transaction:
	// one failure never aborts the others, and re-running is idempotent.
	EjecutarCorteIntereses(ctx context.Context, ahora time.Time, tasa decimal.Decimal) (*dto.CorteInteresesReport, error)
}

type creditoService struct {
	repo  repository.ClienteRepository
	coord *txn.Coordinator
}

func NewCreditoService(repo repository.ClienteRepository, coord *txn.Coordinator) CreditoService {
	return &creditoService{repo: repo, coord: coord}
}

func (s *creditoService) DebitarTx(ctx context.Context, tx *gorm.DB, clienteID uuid.UUID, monto decimal.Decimal, ahora time.Time) error {
	if !monto.IsPositive() {
		return ErrMontoInvalido
	}
	return s.repo.DebitarTx(tx, clienteID, monto, ahora)
}

func (s *creditoService) Abonar(ctx context.Context, clienteID uuid.UUID, monto decimal.Decimal) error {
	if !monto.IsPositive() {
		return ErrMontoInvalido
	}
	return s.coord.RunWithRetry(ctx, func(tx *gorm.DB) error {
		cliente, err := s.repo.FindByIDTx(tx, clienteID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrClienteNoEncontrado
			}
			return err
		}
		if cliente.SaldoActual.IsZero() {
			return ErrSinDeuda
		}
		if monto.GreaterThan(cliente.SaldoActual) {
			return ErrAbonoExcedeSaldo
		}
		// The conditional write re-validates the balance at write time; a
		// concurrent abono may have consumed it since the read above.
		ok, err := s.repo.AbonarTx(tx, clienteID, monto)
		if err != nil {
			return err
		}
		if !ok {
			return ErrAbonoExcedeSaldo
		}
		return nil
	})
}

func (s *creditoService) AplicarCorteMensual(ctx context.Context, clienteID uuid.UUID, tasa decimal.Decimal, ahora time.Time) (*model.CorteInteres, error) {
	var corte *model.CorteInteres
	err := s.coord.Run(ctx, func(tx *gorm.DB) error {
		corte = nil
		cliente, err := s.repo.FindByIDTx(tx, clienteID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrClienteNoEncontrado
			}
			return err
		}

		// Idempotency guard: one corte per (month, year).
		if cliente.UltimoCorteIntereses != nil {
			ultimo := *cliente.UltimoCorteIntereses
			if ultimo.Month() == ahora.Month() && ultimo.Year() == ahora.Year() {
				return ErrCorteYaAplicado
			}
		}
		if !cliente.SaldoActual.IsPositive() {
			return ErrSinDeuda
		}

		interes := cliente.SaldoActual.Mul(tasa).Round(2)
		cliente.SaldoActual = cliente.SaldoActual.Add(interes)
		cliente.UltimoCorteIntereses = &ahora
		// Carrying debt across a full month marks the customer as moroso.
		cliente.Moroso = true

		corte = &model.CorteInteres{
			ClienteID:     cliente.ID,
			Fecha:         ahora,
			MontoAplicado: interes,
			NuevoSaldo:    cliente.SaldoActual,
			Descripcion:   fmt.Sprintf("Interés mensual %s (%s%%)", ahora.Format("2006-01"), tasa.Mul(decimal.NewFromInt(100)).String()),
		}
		return s.repo.AplicarCorteTx(tx, cliente, corte)
	})
	if err != nil {
		return nil, err
	}
	return corte, nil
}

func (s *creditoService) EjecutarCorteIntereses(ctx context.Context, ahora time.Time, tasa decimal.Decimal) (*dto.CorteInteresesReport, error) {
	clientes, err := s.repo.ListConSaldo(ctx)
	if err != nil {
		return nil, err
	}

	report := &dto.CorteInteresesReport{Detalles: make([]dto.CorteDetalle, 0, len(clientes))}
	for _, cliente := range clientes {
		detalle := dto.CorteDetalle{ClienteID: cliente.ID.String(), Nombre: cliente.Nombre}

		corte, err := s.AplicarCorteMensual(ctx, cliente.ID, tasa, ahora)
		switch {
		case err == nil:
			report.Aplicados++
			detalle.Resultado = "aplicado"
			detalle.MontoAplicado = corte.MontoAplicado
			detalle.NuevoSaldo = corte.NuevoSaldo
		case errors.Is(err, ErrCorteYaAplicado):
			report.YaAplicados++
			detalle.Resultado = "ya_aplicado"
		default:
			// One customer failing must not abort the rest of the run.
			report.Errores++
			detalle.Resultado = "error"
			detalle.Error = err.Error()
			log.Error().Err(err).
				Str("cliente_id", cliente.ID.String()).
				Msg("corte_intereses: fallo al aplicar corte")
		}
		report.Detalles = append(report.Detalles, detalle)
	}

	log.Info().
		Int("aplicados", report.Aplicados).
		Int("ya_aplicados", report.YaAplicados).
		Int("errores", report.Errores).
		Time("fecha", ahora).
		Msg("corte_intereses: corrida finalizada")
	return report, nil
}
