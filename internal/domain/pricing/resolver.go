// Package pricing determines the effective unit price of a product,
// honoring any active promotion.
package pricing

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/chocomania/backend/internal/domain/catalog"
)

// Resolver computes effective unit prices. It is a pure read over catalog
// state: the same product can resolve to different prices at cart-preview
// time and checkout time when a promotion expires in between. Callers that
// need a stable price must capture the resolved value themselves.
type Resolver struct {
	promotions catalog.PromotionRepository
	now        func() time.Time
}

// NewResolver creates a Resolver backed by the given promotion repository.
func NewResolver(promotions catalog.PromotionRepository) *Resolver {
	return &Resolver{
		promotions: promotions,
		now:        time.Now,
	}
}

// NewResolverAt is like NewResolver but with an injectable clock, for tests.
func NewResolverAt(promotions catalog.PromotionRepository, now func() time.Time) *Resolver {
	return &Resolver{promotions: promotions, now: now}
}

// Resolve returns the price to charge for one unit of the product: the
// offer price of the best active promotion when one exists, otherwise the
// list price.
func (r *Resolver) Resolve(ctx context.Context, p catalog.Product) (decimal.Decimal, error) {
	promo, err := r.promotions.FindBestActive(ctx, p.ID, r.now())
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "lookup promotion for product %s", p.ID)
	}
	if promo == nil {
		return p.Precio, nil
	}
	return promo.PrecioOferta, nil
}
