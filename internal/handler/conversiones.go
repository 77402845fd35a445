package handler

import (
	"errors"
	"net/http"

	"github.com/jesusartemio-dev/gyscontrol-app-sub009/internal/apierror"
	"github.com/jesusartemio-dev/gyscontrol-app-sub009/internal/dto"
	"github.com/jesusartemio-dev/gyscontrol-app-sub009/internal/middleware"
	"github.com/jesusartemio-dev/gyscontrol-app-sub009/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type ConversionesHandler struct{ svc service.ConversionService }

func NewConversionesHandler(svc service.ConversionService) *ConversionesHandler {
	return &ConversionesHandler{svc: svc}
}

// Listar godoc
// @Summary      Listar listas convertibles
// @Description  Retorna las listas de equipos con costo real, desviación presupuestaria y veredicto de convertibilidad, filtrables por proyecto/estado/prioridad.
// @Tags         conversiones
// @Produce      json
// @Security     BearerAuth
// @Param        proyecto  query string false "Código de proyecto"
// @Param        estado    query string false "Estado de lista | all"
// @Param        prioridad query string false "baja | media | alta"
// @Success      200 {object} dto.ConversionListResponse
// @Failure      500 {object} apierror.APIError
// @Router       /v1/conversiones [get]
func (h *ConversionesHandler) Listar(c *gin.Context) {
	var filter dto.ConversionFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return
	}
	resp, err := h.svc.Listar(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, apierror.New("Error al listar conversiones"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Detalle godoc
// @Summary      Detalle de conversión de una lista
// @Description  Desglose por ítem (requerido, pedido, disponible, costo, abastecimiento) con selección por defecto para los ítems con saldo.
// @Tags         conversiones
// @Produce      json
// @Security     BearerAuth
// @Param        lista_id path string true "UUID de la lista"
// @Success      200 {object} dto.ConversionDetalleResponse
// @Failure      404 {object} apierror.APIError
// @Router       /v1/conversiones/{lista_id} [get]
func (h *ConversionesHandler) Detalle(c *gin.Context) {
	listaID, err := uuid.Parse(c.Param("lista_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("lista_id invalido"))
		return
	}
	resp, err := h.svc.Detalle(c.Request.Context(), listaID)
	if err != nil {
		if errors.Is(err, service.ErrListaNoEncontrada) {
			c.JSON(http.StatusNotFound, apierror.New(err.Error()))
			return
		}
		c.JSON(http.StatusInternalServerError, apierror.New("Error al obtener el detalle"))
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Convertir godoc
// @Summary      Convertir ítems de una lista en un pedido
// @Description  Crea un pedido en una única transacción: clampa cada cantidad al saldo del ítem, genera el código del proyecto y actualiza el estado de la lista. Ítems sin referencia de catálogo o sin saldo se omiten silenciosamente.
// @Tags         conversiones
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body body dto.ConvertirRequest true "Selección de ítems"
// @Success      201 {object} dto.PedidoResponse
// @Failure      400 {object} apierror.APIError
// @Failure      404 {object} apierror.APIError
// @Failure      409 {object} apierror.APIError
// @Failure      422 {object} apierror.APIError
// @Failure      500 {object} apierror.APIError
// @Router       /v1/conversiones [post]
func (h *ConversionesHandler) Convertir(c *gin.Context) {
	var req dto.ConvertirRequest
	if !bindAndValidate(c, &req) {
		return
	}
	claims := middleware.GetClaims(c)
	solicitanteID, _ := uuid.Parse(claims.UserID)

	resp, err := h.svc.Convertir(c.Request.Context(), solicitanteID, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrListaNoEncontrada):
			c.JSON(http.StatusNotFound, apierror.New(err.Error()))
		case errors.Is(err, service.ErrSinItemsValidos):
			c.JSON(http.StatusUnprocessableEntity, apierror.New(err.Error()))
		case errors.Is(err, service.ErrConflictoConcurrencia):
			c.JSON(http.StatusConflict, apierror.New(err.Error()))
		case errors.Is(err, service.ErrSolicitudInvalida):
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		default:
			c.JSON(http.StatusInternalServerError, apierror.New("Error al convertir la lista"))
		}
		return
	}
	c.JSON(http.StatusCreated, resp)
}
