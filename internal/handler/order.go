package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/chocomania/backend/internal/auth"
	"github.com/chocomania/backend/internal/domain/order"
)

type orderLineResponse struct {
	ProductoID        string          `json:"producto_id"`
	Cantidad          int             `json:"cantidad"`
	PrecioEnElMomento decimal.Decimal `json:"precio_en_el_momento"`
}

type orderResponse struct {
	ID            string              `json:"id"`
	Total         decimal.Decimal     `json:"total"`
	Estado        string              `json:"estado"`
	FechaCreacion time.Time           `json:"fecha_creacion"`
	Items         []orderLineResponse `json:"items,omitempty"`
}

func toOrderResponse(o *order.Order) orderResponse {
	resp := orderResponse{
		ID:            o.ID,
		Total:         o.Total,
		Estado:        string(o.Estado),
		FechaCreacion: o.FechaCreacion,
	}
	for _, l := range o.Lines {
		resp.Items = append(resp.Items, orderLineResponse{
			ProductoID:        l.ProductoID,
			Cantidad:          l.Cantidad,
			PrecioEnElMomento: l.PrecioEnElMomento,
		})
	}
	return resp
}

func (h *Handler) checkout(c *gin.Context) {
	claims := auth.FromContext(c)
	res, err := h.engine.Checkout(c.Request.Context(), claims.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":           true,
		"pedido_id":    res.Order.ID,
		"redirect_url": res.RedirectURL,
	})
}

func (h *Handler) listOrders(c *gin.Context) {
	claims := auth.FromContext(c)
	orders, err := h.engine.ListByUser(c.Request.Context(), claims.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]orderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, toOrderResponse(&orders[i]))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) getOrder(c *gin.Context) {
	claims := auth.FromContext(c)
	o, err := h.engine.GetOwned(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(o))
}

func (h *Handler) cancelOrder(c *gin.Context) {
	claims := auth.FromContext(c)
	o, err := h.engine.Cancel(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(o))
}

func (h *Handler) markPreparing(c *gin.Context) {
	o, err := h.engine.MarkPreparing(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(o))
}

type assignCourierRequest struct {
	RepartidorID string `json:"repartidor_id" binding:"required"`
}

func (h *Handler) assignCourier(c *gin.Context) {
	var req assignCourierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	o, err := h.engine.AssignCourier(c.Request.Context(), c.Param("id"), req.RepartidorID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(o))
}

func (h *Handler) markDispatched(c *gin.Context) {
	o, err := h.engine.MarkDispatched(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(o))
}

type invoiceRequest struct {
	Rut         string `json:"rut" binding:"required"`
	RazonSocial string `json:"razon_social" binding:"required"`
}

func (h *Handler) requestInvoice(c *gin.Context) {
	var req invoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	claims := auth.FromContext(c)
	doc, err := h.engine.RequestInvoice(c.Request.Context(), c.Param("id"), claims.UserID, req.Rut, req.RazonSocial)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDocumentResponse(doc))
}

func (h *Handler) sendDocumentEmail(c *gin.Context) {
	claims := auth.FromContext(c)
	doc, err := h.engine.SendDocumentEmail(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "tipo": string(doc.Tipo)})
}
