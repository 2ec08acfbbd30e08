package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Typed domain errors. Handlers map these onto HTTP statuses; none of them is
// ever retried by the transaction coordinator.

// Validation errors — caller mistakes, surfaced as 4xx.
var (
	ErrVentaSinItems        = errors.New("la venta no tiene items")
	ErrDescuentoInvalido    = errors.New("descuento invalido: debe ser >= 0 y <= subtotal")
	ErrMetodoPagoInvalido   = errors.New("metodo de pago invalido")
	ErrFiadoSinCliente      = errors.New("una venta fiada requiere cliente")
	ErrClienteNoEncontrado  = errors.New("cliente no encontrado")
	ErrUsuarioNoEncontrado  = errors.New("usuario no encontrado")
	ErrProductoNoEncontrado = errors.New("producto no encontrado")
	ErrVentaNoEncontrada    = errors.New("venta no encontrada")
	ErrMontoInvalido        = errors.New("el monto debe ser mayor a cero")
)

// Business-rule conflicts — expected outcomes, not failures of the caller.
var (
	ErrVentaYaAnulada   = errors.New("la venta ya está anulada")
	ErrCorteYaAplicado  = errors.New("el corte de intereses ya fue aplicado este mes")
	ErrSinDeuda         = errors.New("el cliente no tiene deuda pendiente")
	ErrAbonoExcedeSaldo = errors.New("el abono excede el saldo pendiente")
	ErrProductoInactivo = errors.New("el producto está inactivo y no puede venderse")
)

// ErrStockInsuficiente reports the authoritative availability at write time.
// It is returned both by the pre-check fast path and by the conditional
// decrement when concurrent sales consumed the stock in between.
type ErrStockInsuficiente struct {
	ProductoID uuid.UUID
	Nombre     string
	Solicitado int
	Disponible int
}

func (e *ErrStockInsuficiente) Error() string {
	return fmt.Sprintf("stock insuficiente para %s: solicitado %d, disponible %d",
		e.Nombre, e.Solicitado, e.Disponible)
}
