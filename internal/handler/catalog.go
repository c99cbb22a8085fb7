package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/chocomania/backend/internal/domain/catalog"
)

type productResponse struct {
	ID          string          `json:"id"`
	Nombre      string          `json:"nombre"`
	Descripcion string          `json:"descripcion"`
	Precio      decimal.Decimal `json:"precio"`
	Tipo        string          `json:"tipo"`
	Stock       int             `json:"stock"`
	Activo      bool            `json:"activo"`
}

func toProductResponse(p catalog.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Nombre:      p.Nombre,
		Descripcion: p.Descripcion,
		Precio:      p.Precio,
		Tipo:        p.Tipo,
		Stock:       p.Stock,
		Activo:      p.Activo,
	}
}

func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.products.List(c.Request.Context(), c.Query("tipo"))
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, toProductResponse(p))
	}
	c.JSON(http.StatusOK, out)
}

type productRequest struct {
	Nombre      string          `json:"nombre" binding:"required"`
	Descripcion string          `json:"descripcion"`
	Precio      decimal.Decimal `json:"precio" binding:"required"`
	Tipo        string          `json:"tipo"`
	Stock       int             `json:"stock"`
	Activo      *bool           `json:"activo"`
}

func (h *Handler) createProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	p := &catalog.Product{
		ID:          uuid.New().String(),
		Nombre:      req.Nombre,
		Descripcion: req.Descripcion,
		Precio:      req.Precio,
		Tipo:        req.Tipo,
		Stock:       req.Stock,
		Activo:      req.Activo == nil || *req.Activo,
	}
	if err := h.products.Create(c.Request.Context(), p); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toProductResponse(*p))
}

func (h *Handler) updateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	p := &catalog.Product{
		ID:          c.Param("id"),
		Nombre:      req.Nombre,
		Descripcion: req.Descripcion,
		Precio:      req.Precio,
		Tipo:        req.Tipo,
		Stock:       req.Stock,
		Activo:      req.Activo == nil || *req.Activo,
	}
	if err := h.products.Update(c.Request.Context(), p); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toProductResponse(*p))
}

type promotionRequest struct {
	ProductoID   string          `json:"producto_id" binding:"required"`
	PrecioOferta decimal.Decimal `json:"precio_oferta" binding:"required"`
	FechaInicio  time.Time       `json:"fecha_inicio"`
	FechaTermino time.Time       `json:"fecha_termino" binding:"required"`
}

type promotionResponse struct {
	ID           string          `json:"id"`
	ProductoID   string          `json:"producto_id"`
	PrecioOferta decimal.Decimal `json:"precio_oferta"`
	FechaInicio  time.Time       `json:"fecha_inicio"`
	FechaTermino time.Time       `json:"fecha_termino"`
	Activo       bool            `json:"activo"`
}

func toPromotionResponse(p catalog.Promotion) promotionResponse {
	return promotionResponse{
		ID:           p.ID,
		ProductoID:   p.ProductoID,
		PrecioOferta: p.PrecioOferta,
		FechaInicio:  p.FechaInicio,
		FechaTermino: p.FechaTermino,
		Activo:       p.Activo,
	}
}

func (h *Handler) createPromotion(c *gin.Context) {
	var req promotionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}

	// The product must exist; a promotion for a ghost product is a client
	// error, not a broken FK at insert time.
	if _, err := h.products.GetByID(c.Request.Context(), req.ProductoID); err != nil {
		writeError(c, err)
		return
	}

	inicio := req.FechaInicio
	if inicio.IsZero() {
		inicio = time.Now()
	}
	p := &catalog.Promotion{
		ID:           uuid.New().String(),
		ProductoID:   req.ProductoID,
		PrecioOferta: req.PrecioOferta,
		FechaInicio:  inicio,
		FechaTermino: req.FechaTermino,
		Activo:       true,
	}
	if err := h.promotions.Create(c.Request.Context(), p); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toPromotionResponse(*p))
}

func (h *Handler) listActivePromotions(c *gin.Context) {
	promos, err := h.promotions.ListActive(c.Request.Context(), time.Now())
	if err != nil {
		writeError(c, err)
		return
	}
	out := make([]promotionResponse, 0, len(promos))
	for _, p := range promos {
		out = append(out, toPromotionResponse(p))
	}
	c.JSON(http.StatusOK, out)
}
