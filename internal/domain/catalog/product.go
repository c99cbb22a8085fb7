// Package catalog holds the product and promotion records every pricing
// decision is derived from.
package catalog

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrProductNotFound is returned when a requested product does not exist.
var ErrProductNotFound = errors.New("producto no encontrado")

// Product represents a catalog item available for purchase. Products are
// never deleted; retiring one means flipping Activo to false.
type Product struct {
	ID          string
	Nombre      string
	Descripcion string
	Precio      decimal.Decimal
	Tipo        string
	Stock       int
	Activo      bool
}

// Available reports whether the product can be added to a cart or ordered.
func (p Product) Available() bool {
	return p.Activo
}

// ProductRepository defines persistence operations for the product catalog.
type ProductRepository interface {
	List(ctx context.Context, tipo string) ([]Product, error)
	GetByID(ctx context.Context, id string) (*Product, error)
	Create(ctx context.Context, p *Product) error
	Update(ctx context.Context, p *Product) error
}
