package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/chocomania/backend/internal/auth"
	"github.com/chocomania/backend/internal/domain/cart"
)

type cartItemResponse struct {
	ID         string `json:"id"`
	ProductoID string `json:"producto_id"`
	Cantidad   int    `json:"cantidad"`
}

type cartResponse struct {
	ID    string             `json:"id"`
	Items []cartItemResponse `json:"items"`
	Total decimal.Decimal    `json:"total"`
}

func (h *Handler) cartResponse(c *gin.Context, ct *cart.Cart) (cartResponse, error) {
	total, err := h.carts.ComputeTotal(c.Request.Context(), ct)
	if err != nil {
		return cartResponse{}, err
	}
	items := make([]cartItemResponse, 0, len(ct.Items))
	for _, it := range ct.Items {
		items = append(items, cartItemResponse{ID: it.ID, ProductoID: it.ProductoID, Cantidad: it.Cantidad})
	}
	return cartResponse{ID: ct.ID, Items: items, Total: total}, nil
}

func (h *Handler) getCart(c *gin.Context) {
	claims := auth.FromContext(c)
	ct, err := h.carts.GetOrCreate(c.Request.Context(), claims.UserID)
	if err != nil {
		writeError(c, err)
		return
	}
	resp, err := h.cartResponse(c, ct)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

type addItemRequest struct {
	ProductoID string `json:"producto_id" binding:"required"`
	Cantidad   int    `json:"cantidad" binding:"required,min=1"`
}

func (h *Handler) addCartItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	claims := auth.FromContext(c)
	ct, err := h.carts.AddItem(c.Request.Context(), claims.UserID, req.ProductoID, req.Cantidad)
	if err != nil {
		writeError(c, err)
		return
	}
	resp, err := h.cartResponse(c, ct)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) removeCartItem(c *gin.Context) {
	claims := auth.FromContext(c)
	ct, err := h.carts.RemoveItem(c.Request.Context(), claims.UserID, c.Param("item_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	resp, err := h.cartResponse(c, ct)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) clearCart(c *gin.Context) {
	claims := auth.FromContext(c)
	if err := h.carts.Clear(c.Request.Context(), claims.UserID); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
