package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"

	"github.com/chocomania/backend/internal/domain/order"
)

// confirmPayment is the simulated gateway callback. The gateway retries, so
// a duplicate callback is answered 200 with an informative body rather than
// an error.
func (h *Handler) confirmPayment(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "token requerido"})
		return
	}
	outcome := order.PaymentOutcome(c.DefaultQuery("simul_status", string(order.OutcomeApproved)))

	o, err := h.engine.ConfirmPayment(c.Request.Context(), token, outcome)
	if err != nil {
		if errors.Is(err, order.ErrAlreadyProcessed) {
			c.JSON(http.StatusOK, gin.H{"ok": true, "detail": err.Error()})
			return
		}
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ok":        true,
		"pedido_id": o.ID,
		"estado":    string(o.Estado),
	})
}
