// Package document models the tax document (boleta or factura) attached to
// an order.
package document

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Kind distinguishes the two Chilean tax document types.
type Kind string

const (
	// KindBoleta is the consumer receipt issued by default at payment.
	KindBoleta Kind = "boleta"
	// KindFactura is the company invoice, upgraded from a boleta on request.
	KindFactura Kind = "factura"
)

// ErrNotFound is returned when an order has no document yet.
var ErrNotFound = errors.New("documento no encontrado")

// Document is the 1:1 tax document of an order. RUT and RazonSocial are set
// only for facturas.
type Document struct {
	ID          string
	PedidoID    string
	Fecha       time.Time
	Tipo        Kind
	Total       decimal.Decimal
	Rut         string
	RazonSocial string
}

// Repository defines persistence operations for documents.
type Repository interface {
	// GetByOrderID returns the order's document, or ErrNotFound.
	GetByOrderID(ctx context.Context, orderID string) (*Document, error)
	Create(ctx context.Context, d *Document) error
	// UpgradeToInvoice converts the document to a factura in place, setting
	// the tax identity fields.
	UpgradeToInvoice(ctx context.Context, id, rut, razonSocial string) error
}
