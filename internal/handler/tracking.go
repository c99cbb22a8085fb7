package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chocomania/backend/internal/auth"
	"github.com/chocomania/backend/internal/domain/tracking"
)

type trackingResponse struct {
	PedidoID            string   `json:"pedido_id"`
	Estado              string   `json:"estado"`
	HoraEstimadaLlegada string   `json:"hora_estimada_llegada,omitempty"`
	RepartidorAsignado  string   `json:"repartidor_asignado,omitempty"`
	Lat                 *float64 `json:"lat"`
	Lng                 *float64 `json:"lng"`
}

func toTrackingResponse(t *tracking.Tracking) trackingResponse {
	return trackingResponse{
		PedidoID:            t.PedidoID,
		Estado:              string(t.Estado),
		HoraEstimadaLlegada: t.HoraEstimadaLlegada,
		RepartidorAsignado:  t.RepartidorAsignado,
		Lat:                 t.Lat,
		Lng:                 t.Lng,
	}
}

func (h *Handler) getTracking(c *gin.Context) {
	claims := auth.FromContext(c)
	trk, err := h.engine.Track(c.Request.Context(), c.Param("pedido_id"), claims.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTrackingResponse(trk))
}

func (h *Handler) markDelivered(c *gin.Context) {
	trk, err := h.engine.MarkDelivered(c.Request.Context(), c.Param("pedido_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toTrackingResponse(trk))
}
