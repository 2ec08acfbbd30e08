package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// VentaFilter is bound from the query string of GET /v1/ventas.
type VentaFilter struct {
	Fecha     string `form:"fecha"`                     // YYYY-MM-DD; empty = all
	Estado    string `form:"estado,default=completada"` // completada | anulada | pendiente | all
	ClienteID string `form:"cliente_id"`
	Page      int    `form:"page,default=1"   validate:"min=1"`
	Limit     int    `form:"limit,default=50" validate:"min=1,max=200"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type ItemVentaRequest struct {
	ProductoID     string `json:"producto_id" validate:"required,uuid"`
	Cantidad       int    `json:"cantidad"    validate:"required,min=1"`
	EsConsignacion bool   `json:"es_consignacion"`
}

type RegistrarVentaRequest struct {
	// ClienteID is optional for contado sales and mandatory for fiado.
	ClienteID      *string            `json:"cliente_id" validate:"omitempty,uuid"`
	Items          []ItemVentaRequest `json:"items"      validate:"required,min=1,dive"`
	Descuento      decimal.Decimal    `json:"descuento"  validate:"min=0"`
	MetodoPago     string             `json:"metodo_pago" validate:"required,oneof=efectivo transferencia fiado cheque tarjeta"`
	ReferenciaPago *string            `json:"referencia_pago"`
	Notas          string             `json:"notas"`
	// ClienteEmail: optional — when present, the recibo worker mails the PDF.
	ClienteEmail *string `json:"cliente_email" validate:"omitempty,email"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type ItemVentaResponse struct {
	ProductoID     string          `json:"producto_id"`
	Producto       string          `json:"producto"`
	Cantidad       int             `json:"cantidad"`
	PrecioUnitario decimal.Decimal `json:"precio_unitario"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Ganancia       decimal.Decimal `json:"ganancia"`
	EsConsignacion bool            `json:"es_consignacion"`
}

type VentaResponse struct {
	ID             string              `json:"id"`
	NumeroVenta    string              `json:"numero_venta"`
	ClienteID      *string             `json:"cliente_id,omitempty"`
	ClienteNombre  string              `json:"cliente_nombre,omitempty"`
	UsuarioNombre  string              `json:"usuario_nombre"`
	Items          []ItemVentaResponse `json:"items"`
	Subtotal       decimal.Decimal     `json:"subtotal"`
	Descuento      decimal.Decimal     `json:"descuento"`
	Total          decimal.Decimal     `json:"total"`
	Ganancia       decimal.Decimal     `json:"ganancia"`
	MetodoPago     string              `json:"metodo_pago"`
	ReferenciaPago *string             `json:"referencia_pago,omitempty"`
	Notas          string              `json:"notas,omitempty"`
	Estado         string              `json:"estado"`
	FechaVenta     string              `json:"fecha_venta"`
}

type VentaListResponse struct {
	Data  []VentaResponse `json:"data"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}
