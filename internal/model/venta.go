package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MetodoPago is the closed set of accepted payment methods. Fiado is the only
// method that touches the customer's credit ledger.
type MetodoPago string

const (
	MetodoEfectivo      MetodoPago = "efectivo"
	MetodoTransferencia MetodoPago = "transferencia"
	MetodoFiado         MetodoPago = "fiado"
	MetodoCheque        MetodoPago = "cheque"
	MetodoTarjeta       MetodoPago = "tarjeta"
)

// Valid reports whether m is one of the accepted methods.
func (m MetodoPago) Valid() bool {
	switch m {
	case MetodoEfectivo, MetodoTransferencia, MetodoFiado, MetodoCheque, MetodoTarjeta:
		return true
	}
	return false
}

// Estados de venta. A venta is immutable once created except for the single
// completada → anulada transition.
const (
	EstadoCompletada = "completada"
	EstadoAnulada    = "anulada"
	EstadoPendiente  = "pendiente"
)

// Venta is the immutable sale record. Cliente/Usuario names are snapshotted at
// sale time so later renames don't rewrite history.
type Venta struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey"`
	// NumeroVenta has the shape VTA-<YYYY-MM-DD>-<8 uppercase alphanum>.
	// The unique index is the uniqueness guarantee; a collision aborts the
	// transaction and the coordinator retries with a fresh suffix.
	NumeroVenta    string          `gorm:"uniqueIndex;not null"`
	ClienteID      *uuid.UUID      `gorm:"type:uuid;index"`
	ClienteNombre  string
	UsuarioID      uuid.UUID       `gorm:"type:uuid;not null"`
	UsuarioNombre  string          `gorm:"not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Descuento      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Total          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Ganancia       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MetodoPago     MetodoPago      `gorm:"type:varchar(20);not null"`
	ReferenciaPago *string
	Notas          string
	Estado         string          `gorm:"type:varchar(20);not null;default:'completada';index"`
	FechaVenta     time.Time       `gorm:"not null;index"`
	CreatedAt      time.Time

	Items   []VentaItem `gorm:"foreignKey:VentaID"`
	Cliente *Cliente    `gorm:"foreignKey:ClienteID"`
	Usuario *Usuario    `gorm:"foreignKey:UsuarioID"`
}

// VentaItem is one sale line with price/cost snapshots and the derived
// subtotal and ganancia. Invariant: Subtotal = Cantidad × PrecioUnitario.
type VentaItem struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	VentaID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductoID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductoNombre string          `gorm:"not null"`
	Cantidad       int             `gorm:"not null"`
	PrecioUnitario decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	PrecioCosto    decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Ganancia       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	EsConsignacion bool            `gorm:"not null;default:false"`

	Producto *Producto `gorm:"foreignKey:ProductoID"`
}
