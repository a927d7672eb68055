// Package errors provides sentinel errors for storefront operations.
package errors

import "errors"

var ErrProductNotFound = errors.New("product not found")
var ErrCatalogUnavailable = errors.New("catalog unavailable")
var ErrInvalidCatalog = errors.New("invalid catalog data")
