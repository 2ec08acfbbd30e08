package handler

import (
	"net/http"
	"time"

	"kashflow/internal/apierror"
	"kashflow/internal/dto"
	"kashflow/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ClientesHandler struct {
	svc     service.ClienteService
	credito service.CreditoService
}

func NewClientesHandler(svc service.ClienteService, credito service.CreditoService) *ClientesHandler {
	return &ClientesHandler{svc: svc, credito: credito}
}

func (h *ClientesHandler) Crear(c *gin.Context) {
	var req dto.CrearClienteRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Crear(c.Request.Context(), req)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ClientesHandler) Obtener(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.ObtenerPorID(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ClientesHandler) Listar(c *gin.Context) {
	var filter dto.ClienteFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar clientes"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// RegistrarAbono pays down a customer's outstanding fiado balance and returns
// the refreshed customer record.
func (h *ClientesHandler) RegistrarAbono(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	var req dto.AbonoRequest
	if !bindAndValidate(c, &req) {
		return
	}
	if err := h.credito.Abonar(c.Request.Context(), id, req.Monto); err != nil {
		writeServiceError(c, err)
		return
	}
	resp, err := h.svc.ObtenerPorID(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// HistorialCortes lists the applied monthly interest accruals for a customer.
func (h *ClientesHandler) HistorialCortes(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("ID invalido"))
		return
	}
	resp, err := h.svc.HistorialCortes(c.Request.Context(), id)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// InteresesHandler exposes the manual trigger for the monthly accrual run.
// The cron path calls the same service method; this endpoint exists for
// operators who need to re-run a failed month.
type InteresesHandler struct {
	credito service.CreditoService
	tasa    decimal.Decimal
}

func NewInteresesHandler(credito service.CreditoService, tasa decimal.Decimal) *InteresesHandler {
	return &InteresesHandler{credito: credito, tasa: tasa}
}

func (h *InteresesHandler) EjecutarCorte(c *gin.Context) {
	report, err := h.credito.EjecutarCorteIntereses(c.Request.Context(), time.Now(), h.tasa)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
