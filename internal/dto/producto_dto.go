package dto

import "github.com/shopspring/decimal"

type ProductoFilter struct {
	Nombre string `form:"nombre"`
	Activo string `form:"activo"` // "false" | "all" | default activos
	Page   int    `form:"page,default=1"   validate:"min=1"`
	Limit  int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type CrearProductoRequest struct {
	Nombre      string          `json:"nombre"       validate:"required,min=2"`
	Descripcion *string         `json:"descripcion"`
	PrecioVenta decimal.Decimal `json:"precio_venta" validate:"required,gt=0"`
	PrecioCosto decimal.Decimal `json:"precio_costo" validate:"min=0"`
	StockActual int             `json:"stock_actual" validate:"min=0"`
	StockMinimo int             `json:"stock_minimo" validate:"min=0"`
}

type ActualizarProductoRequest struct {
	Nombre      string          `json:"nombre"       validate:"required,min=2"`
	Descripcion *string         `json:"descripcion"`
	PrecioVenta decimal.Decimal `json:"precio_venta" validate:"required,gt=0"`
	PrecioCosto decimal.Decimal `json:"precio_costo" validate:"min=0"`
	StockMinimo int             `json:"stock_minimo" validate:"min=0"`
}

type AjustarStockRequest struct {
	Delta  int    `json:"delta"  validate:"required"`
	Motivo string `json:"motivo" validate:"required,min=3"`
}

type ProductoResponse struct {
	ID          string          `json:"id"`
	Nombre      string          `json:"nombre"`
	Descripcion *string         `json:"descripcion,omitempty"`
	PrecioVenta decimal.Decimal `json:"precio_venta"`
	PrecioCosto decimal.Decimal `json:"precio_costo"`
	StockActual int             `json:"stock_actual"`
	StockMinimo int             `json:"stock_minimo"`
	Activo      bool            `json:"activo"`
}

type ProductoListResponse struct {
	Data  []ProductoResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}
