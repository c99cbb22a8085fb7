package catalog

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Promotion is a time-bounded discounted price override for one product.
// It expires implicitly once FechaTermino passes; rows are never deleted.
type Promotion struct {
	ID           string
	ProductoID   string
	PrecioOferta decimal.Decimal
	FechaInicio  time.Time
	FechaTermino time.Time
	Activo       bool
}

// CurrentAt reports whether the promotion applies at the given instant.
func (p Promotion) CurrentAt(now time.Time) bool {
	return p.Activo && p.FechaTermino.After(now)
}

// PromotionRepository defines persistence operations for promotions.
//
// FindBestActive returns the applicable promotion for a product at the given
// instant, or nil when none applies. With overlapping promotions the lowest
// offer price wins.
type PromotionRepository interface {
	Create(ctx context.Context, p *Promotion) error
	ListActive(ctx context.Context, now time.Time) ([]Promotion, error)
	FindBestActive(ctx context.Context, productID string, now time.Time) (*Promotion, error)
}
