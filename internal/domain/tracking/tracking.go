// Package tracking carries delivery progress for paid orders: courier
// assignment, coarse position while en route, and delivery confirmation.
package tracking

import (
	"context"
	"math/rand/v2"

	"github.com/go-faster/errors"
)

// Status is the delivery state of a tracking record.
type Status string

// Delivery states. Wire values match the original storefront contract.
const (
	StatusEnRoute   Status = "en_camino"
	StatusDelivered Status = "entregado"
	StatusIssue     Status = "problema_reportado"
)

// Sentinel errors.
var (
	ErrNotFound         = errors.New("seguimiento no encontrado")
	ErrAlreadyDelivered = errors.New("el pedido ya fue marcado como entregado")
)

// Simulated delivery box around Santiago. A stand-in for a real GPS feed:
// every read while en route produces a fresh coordinate inside this box.
const (
	latMin, latMax = -33.5, -33.4
	lngMin, lngMax = -70.7, -70.6
)

// Tracking is the 1:1 delivery-progress record of an order. It exists only
// once the order has been paid.
type Tracking struct {
	ID                  string
	PedidoID            string
	Estado              Status
	HoraEstimadaLlegada string
	RepartidorAsignado  string
	// Lat/Lng are present only while en route; cleared on delivery.
	Lat *float64
	Lng *float64
}

// RandomPosition returns simulated coarse coordinates inside the delivery box.
func RandomPosition() (lat, lng float64) {
	lat = latMin + rand.Float64()*(latMax-latMin)
	lng = lngMin + rand.Float64()*(lngMax-lngMin)
	return lat, lng
}

// Repository defines persistence operations for tracking records.
type Repository interface {
	// GetByOrderID returns the order's tracking record, or ErrNotFound.
	GetByOrderID(ctx context.Context, orderID string) (*Tracking, error)
	Create(ctx context.Context, t *Tracking) error
	// UpdatePosition persists a fresh simulated position.
	UpdatePosition(ctx context.Context, id string, lat, lng float64) error
	// AssignCourier records the courier on the tracking row.
	AssignCourier(ctx context.Context, id, courier string) error
}
