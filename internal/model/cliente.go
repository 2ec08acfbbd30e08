package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Cliente carries the credit ledger for fiado sales. SaldoActual is the
// outstanding balance (never negative); SaldoHistorico accumulates every
// debit ever made and is never decreased.
type Cliente struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey"`
	Nombre   string    `gorm:"index;not null"`
	Telefono *string
	// SaldoActual is mutated only through CreditoService (debitar/abonar/corte).
	SaldoActual    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	SaldoHistorico decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Moroso         bool            `gorm:"not null;default:false"`
	UltimaCompra   *time.Time
	// UltimoCorteIntereses keys the one-corte-per-calendar-month guard.
	UltimoCorteIntereses *time.Time
	Activo               bool `gorm:"not null;default:true"`
	CreatedAt            time.Time
	UpdatedAt            time.Time

	// HistoricoIntereses is append-only: one row per applied monthly corte.
	HistoricoIntereses []CorteInteres `gorm:"foreignKey:ClienteID"`
}

// CorteInteres is one applied monthly interest accrual.
type CorteInteres struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	ClienteID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	Fecha         time.Time       `gorm:"not null"`
	MontoAplicado decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	NuevoSaldo    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Descripcion   string
	CreatedAt     time.Time
}

// TableName overrides GORM's pluralization (corte_interes → cortes_intereses).
func (CorteInteres) TableName() string { return "cortes_intereses" }
