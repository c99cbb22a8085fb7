package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/chocomania/backend/internal/domain/document"
	"github.com/chocomania/backend/internal/domain/notification"
)

type documentResponse struct {
	ID          string          `json:"id"`
	PedidoID    string          `json:"pedido_id"`
	Fecha       time.Time       `json:"fecha"`
	Tipo        string          `json:"tipo"`
	Total       decimal.Decimal `json:"total"`
	Rut         string          `json:"rut,omitempty"`
	RazonSocial string          `json:"razon_social,omitempty"`
}

func toDocumentResponse(d *document.Document) documentResponse {
	return documentResponse{
		ID:          d.ID,
		PedidoID:    d.PedidoID,
		Fecha:       d.Fecha,
		Tipo:        string(d.Tipo),
		Total:       d.Total,
		Rut:         d.Rut,
		RazonSocial: d.RazonSocial,
	}
}

type notificationResponse struct {
	ID           string    `json:"id"`
	PedidoID     string    `json:"pedido_id"`
	Tipo         string    `json:"tipo"`
	Mensaje      string    `json:"mensaje"`
	HoraEstimada string    `json:"hora_estimada,omitempty"`
	FechaEnvio   time.Time `json:"fecha_envio"`
}

func toNotificationResponse(n *notification.Notification) notificationResponse {
	return notificationResponse{
		ID:           n.ID,
		PedidoID:     n.PedidoID,
		Tipo:         string(n.Tipo),
		Mensaje:      n.Mensaje,
		HoraEstimada: n.HoraEstimada,
		FechaEnvio:   n.FechaEnvio,
	}
}

type sendNotificationRequest struct {
	PedidoID string `json:"pedido_id" binding:"required"`
	Tipo     string `json:"tipo" binding:"required"`
	Mensaje  string `json:"mensaje"`
}

func (h *Handler) sendNotification(c *gin.Context) {
	var req sendNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	kind := notification.Kind(req.Tipo)
	switch kind {
	case notification.KindOrderReceived, notification.KindOrderDispatched, notification.KindDeliveryDelay:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"detail": "tipo de notificación desconocido"})
		return
	}

	n, err := h.engine.Notify(c.Request.Context(), req.PedidoID, kind, req.Mensaje)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toNotificationResponse(n))
}

type updateNotificationRequest struct {
	Mensaje      string `json:"mensaje" binding:"required"`
	HoraEstimada string `json:"hora_estimada"`
}

func (h *Handler) updateNotification(c *gin.Context) {
	var req updateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	n, err := h.engine.UpdateNotification(c.Request.Context(), c.Param("id"), req.Mensaje, req.HoraEstimada)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toNotificationResponse(n))
}
