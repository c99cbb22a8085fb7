// Package handler exposes the HTTP API. Routing and binding use gin; the
// public paths keep the Spanish wire contract the clients already speak.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"

	"github.com/chocomania/backend/internal/auth"
	"github.com/chocomania/backend/internal/domain/cart"
	"github.com/chocomania/backend/internal/domain/catalog"
	"github.com/chocomania/backend/internal/domain/document"
	"github.com/chocomania/backend/internal/domain/notification"
	"github.com/chocomania/backend/internal/domain/order"
	"github.com/chocomania/backend/internal/domain/tracking"
	"github.com/chocomania/backend/internal/domain/user"
)

// Handler carries the services behind the HTTP API.
type Handler struct {
	engine        *order.Engine
	carts         *cart.Manager
	products      catalog.ProductRepository
	promotions    catalog.PromotionRepository
	notifications notification.Repository
	auth          *auth.Service
}

// New creates a Handler.
func New(
	engine *order.Engine,
	carts *cart.Manager,
	products catalog.ProductRepository,
	promotions catalog.PromotionRepository,
	notifications notification.Repository,
	authSvc *auth.Service,
) *Handler {
	return &Handler{
		engine:        engine,
		carts:         carts,
		products:      products,
		promotions:    promotions,
		notifications: notifications,
		auth:          authSvc,
	}
}

// Router builds the gin engine with all routes mounted.
func (h *Handler) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.POST("/usuarios/registrar", h.registerUser)
	r.POST("/token", h.issueToken)

	r.GET("/productos", h.listProducts)
	r.GET("/promociones/activas", h.listActivePromotions)

	// The gateway callback carries the order token, not a bearer token.
	r.GET("/pagos/confirmacion", h.confirmPayment)

	authed := r.Group("", h.auth.RequireAuth())
	{
		authed.GET("/carrito/me", h.getCart)
		authed.POST("/carrito/items", h.addCartItem)
		authed.DELETE("/carrito/items/:item_id", h.removeCartItem)
		authed.DELETE("/carrito", h.clearCart)

		authed.POST("/pedidos/crear-pago-desde-carrito", h.checkout)
		authed.GET("/pedidos", h.listOrders)
		authed.GET("/pedidos/:id", h.getOrder)
		authed.PUT("/pedidos/:id/cancelar", h.cancelOrder)
		authed.POST("/pedidos/:id/solicitar-factura", h.requestInvoice)
		authed.POST("/pedidos/:id/enviar-documento-email", h.sendDocumentEmail)

		authed.GET("/seguimiento/:pedido_id", h.getTracking)

		authed.PUT("/pedidos/:id/en-camino",
			auth.RequireRole(user.RoleAdministrador, user.RoleRepartidor), h.markDispatched)
		authed.PUT("/seguimiento/:pedido_id/entregar",
			auth.RequireRole(user.RoleRepartidor), h.markDelivered)

		admin := authed.Group("/admin")
		{
			admin.POST("/promociones",
				auth.RequireRole(user.RoleAdministrador), h.createPromotion)
			admin.PUT("/pedidos/:id/preparar",
				auth.RequireRole(user.RoleAdministrador, user.RoleCocinero), h.markPreparing)
			admin.PUT("/pedidos/:id/asignar-repartidor",
				auth.RequireRole(user.RoleAdministrador), h.assignCourier)
		}

		authed.POST("/productos",
			auth.RequireRole(user.RoleAdministrador), h.createProduct)
		authed.PUT("/productos/:id",
			auth.RequireRole(user.RoleAdministrador), h.updateProduct)

		authed.POST("/notificaciones/enviar",
			auth.RequireRole(user.RoleAdministrador), h.sendNotification)
		authed.PUT("/notificaciones/pedido/:id/actualizar",
			auth.RequireRole(user.RoleAdministrador), h.updateNotification)
	}

	return r
}

// writeError maps domain errors onto the HTTP taxonomy. Unmapped errors are
// 500 with a generic body.
func writeError(c *gin.Context, err error) {
	var (
		unavailErr *catalog.ProductUnavailableError
		stockErr   *catalog.InsufficientStockError
		transErr   *order.IllegalTransitionError
	)
	switch {
	case errors.Is(err, order.ErrNotFound),
		errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, cart.ErrItemNotFound),
		errors.Is(err, tracking.ErrNotFound),
		errors.Is(err, document.ErrNotFound),
		errors.Is(err, notification.ErrNoneForOrder),
		errors.Is(err, user.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"detail": err.Error()})
	case errors.Is(err, order.ErrEmptyCart),
		errors.Is(err, order.ErrCourierNotFound),
		errors.Is(err, tracking.ErrAlreadyDelivered),
		errors.Is(err, user.ErrEmailExists),
		errors.As(err, &stockErr),
		errors.As(err, &unavailErr),
		errors.As(err, &transErr):
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"detail": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "error interno"})
	}
}
