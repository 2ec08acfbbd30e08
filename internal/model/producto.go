package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Producto is the inventory aggregate. StockActual is mutated exclusively by
// the conditional decrement in ProductoRepository — never by direct Save —
// so the stock >= 0 invariant holds under concurrent sales.
type Producto struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Nombre      string    `gorm:"index;not null"`
	Descripcion *string
	PrecioVenta decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	PrecioCosto decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	StockActual int             `gorm:"not null;default:0"`
	// StockMinimo is the reorder threshold used by the low-stock listing.
	StockMinimo int  `gorm:"not null;default:5"`
	Activo      bool `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
