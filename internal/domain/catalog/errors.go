package catalog

import "fmt"

// ProductUnavailableError indicates a product referenced by a cart or order
// line is missing or has been deactivated.
type ProductUnavailableError struct {
	ProductID string
}

func (e *ProductUnavailableError) Error() string {
	return fmt.Sprintf("producto %s ya no está disponible", e.ProductID)
}

// InsufficientStockError indicates a requested quantity exceeds the
// product's available stock.
type InsufficientStockError struct {
	ProductID string
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("no hay stock suficiente de %s (solicitado %d)", e.ProductID, e.Requested)
}
