package dto

import "github.com/shopspring/decimal"

type ClienteFilter struct {
	Nombre   string `form:"nombre"`
	ConDeuda bool   `form:"con_deuda"`
	Page     int    `form:"page,default=1"   validate:"min=1"`
	Limit    int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type CrearClienteRequest struct {
	Nombre   string  `json:"nombre" validate:"required,min=2"`
	Telefono *string `json:"telefono"`
}

// AbonoRequest pays down part (or all) of a customer's outstanding balance.
type AbonoRequest struct {
	Monto decimal.Decimal `json:"monto" validate:"required"`
}

type ClienteResponse struct {
	ID                   string          `json:"id"`
	Nombre               string          `json:"nombre"`
	Telefono             *string         `json:"telefono,omitempty"`
	SaldoActual          decimal.Decimal `json:"saldo_actual"`
	SaldoHistorico       decimal.Decimal `json:"saldo_historico"`
	Moroso               bool            `json:"moroso"`
	UltimaCompra         *string         `json:"ultima_compra,omitempty"`
	UltimoCorteIntereses *string         `json:"ultimo_corte_intereses,omitempty"`
}

type ClienteListResponse struct {
	Data  []ClienteResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

type CorteInteresResponse struct {
	Fecha         string          `json:"fecha"`
	MontoAplicado decimal.Decimal `json:"monto_aplicado"`
	NuevoSaldo    decimal.Decimal `json:"nuevo_saldo"`
	Descripcion   string          `json:"descripcion"`
}

// ─── Interest accrual job report ────────────────────────────────────────────

// CorteDetalle is the per-customer outcome of one interest run.
type CorteDetalle struct {
	ClienteID     string          `json:"cliente_id"`
	Nombre        string          `json:"nombre"`
	Resultado     string          `json:"resultado"` // aplicado | ya_aplicado | error
	MontoAplicado decimal.Decimal `json:"monto_aplicado,omitempty"`
	NuevoSaldo    decimal.Decimal `json:"nuevo_saldo,omitempty"`
	Error         string          `json:"error,omitempty"`
}

// CorteInteresesReport summarizes an interest accrual run over all eligible
// customers. Partial completion is expected: one customer's failure never
// aborts the others.
type CorteInteresesReport struct {
	Aplicados   int            `json:"aplicados"`
	YaAplicados int            `json:"ya_aplicados"`
	Errores     int            `json:"errores"`
	Detalles    []CorteDetalle `json:"detalles"`
}
