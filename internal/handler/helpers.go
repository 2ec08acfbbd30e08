package handler

import (
	"errors"
	"net/http"
	"reflect"

	"kashflow/internal/apierror"
	"kashflow/internal/service"
	"kashflow/internal/txn"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("JSON invalido: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// writeServiceError maps typed domain errors onto HTTP statuses. Anything
// unrecognized becomes a logged 500 with a generic body.
func writeServiceError(c *gin.Context, err error) {
	var stockErr *service.ErrStockInsuficiente
	var agotados *txn.ErrReintentosAgotados

	switch {
	case errors.As(err, &stockErr):
		c.JSON(http.StatusConflict, apierror.New(stockErr.Error()))

	case errors.As(err, &agotados):
		// Transient conflicts exhausted the retry budget; the client may retry.
		c.Header("Retry-After", "1")
		c.JSON(http.StatusServiceUnavailable, apierror.New("El sistema está ocupado, intente nuevamente"))

	case errors.Is(err, service.ErrVentaSinItems),
		errors.Is(err, service.ErrDescuentoInvalido),
		errors.Is(err, service.ErrMetodoPagoInvalido),
		errors.Is(err, service.ErrFiadoSinCliente),
		errors.Is(err, service.ErrMontoInvalido):
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))

	case errors.Is(err, service.ErrClienteNoEncontrado),
		errors.Is(err, service.ErrUsuarioNoEncontrado),
		errors.Is(err, service.ErrProductoNoEncontrado),
		errors.Is(err, service.ErrVentaNoEncontrada):
		c.JSON(http.StatusNotFound, apierror.New(err.Error()))

	case errors.Is(err, service.ErrVentaYaAnulada),
		errors.Is(err, service.ErrCorteYaAplicado),
		errors.Is(err, service.ErrSinDeuda),
		errors.Is(err, service.ErrAbonoExcedeSaldo),
		errors.Is(err, service.ErrProductoInactivo):
		c.JSON(http.StatusConflict, apierror.New(err.Error()))

	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("Error interno del servidor"))
	}
}
