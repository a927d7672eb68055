// Package catalog provides the read-only product catalog and its loader.
package catalog

import (
	storeerrors "github.com/abgdnv/storefront/internal/errors"
	"github.com/shopspring/decimal"
)

// Image holds the responsive image URIs of a product.
type Image struct {
	Thumbnail string `json:"thumbnail" validate:"required"`
	Mobile    string `json:"mobile" validate:"required"`
	Tablet    string `json:"tablet" validate:"required"`
	Desktop   string `json:"desktop" validate:"required"`
}

// Product is a catalog entry. ID is the position of the product in the source list.
type Product struct {
	ID       int             `json:"id"`
	Name     string          `json:"name"`
	Category string          `json:"category"`
	Price    decimal.Decimal `json:"price"`
	Image    Image           `json:"image"`
}

// Store is the read side of the catalog.
// It is immutable after creation, so implementations are safe for concurrent use.
type Store interface {
	// FindByID returns the product with the given id.
	// Returns ErrProductNotFound if the id is outside the catalog.
	FindByID(id int) (*Product, error)

	// FindAll returns every product in catalog order.
	// Returns an empty slice if the catalog is empty.
	FindAll() []Product

	// Price returns the unit price of a product.
	Price(id int) (decimal.Decimal, bool)

	// Len returns the number of products.
	Len() int
}

// inMemory implements Store over a slice indexed by product id.
type inMemory struct {
	products []Product
}

// NewInMemoryStore creates a Store holding a copy of products.
// Product ids are reassigned to match their index.
func NewInMemoryStore(products []Product) Store {
	list := make([]Product, len(products))
	copy(list, products)
	for i := range list {
		list[i].ID = i
	}
	return &inMemory{products: list}
}

// FindByID retrieves a product by its id.
func (s *inMemory) FindByID(id int) (*Product, error) {
	if id < 0 || id >= len(s.products) {
		return nil, storeerrors.ErrProductNotFound
	}
	p := s.products[id]
	return &p, nil
}

// FindAll retrieves all products.
func (s *inMemory) FindAll() []Product {
	list := make([]Product, len(s.products))
	copy(list, s.products)
	return list
}

func (s *inMemory) Price(id int) (decimal.Decimal, bool) {
	if id < 0 || id >= len(s.products) {
		return decimal.Zero, false
	}
	return s.products[id].Price, true
}

func (s *inMemory) Len() int {
	return len(s.products)
}
