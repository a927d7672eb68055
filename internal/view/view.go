// Package view projects catalog and cart state into renderable regions.
//
// Rendering is a pure function of state: every Render call recomputes a region from
// scratch and replaces what the Surface held before, so calling it twice with the same
// state yields the same Surface.
package view

import (
	"github.com/abgdnv/storefront/internal/catalog"
	"github.com/shopspring/decimal"
)

// CardState is the control state of a product card.
type CardState int

const (
	// Idle shows the "Add to Cart" control.
	Idle CardState = iota
	// Active shows the quantity stepper.
	Active
)

func (s CardState) String() string {
	if s == Active {
		return "active"
	}
	return "idle"
}

// PanelState is the state of the cart panel.
type PanelState int

const (
	Empty PanelState = iota
	Populated
)

func (s PanelState) String() string {
	if s == Populated {
		return "populated"
	}
	return "empty"
}

// ModalState is the visibility of the order confirmation modal.
type ModalState int

const (
	Hidden ModalState = iota
	Shown
)

func (s ModalState) String() string {
	if s == Shown {
		return "shown"
	}
	return "hidden"
}

// Card is the rendered form of one product.
type Card struct {
	ProductID int
	Name      string
	Category  string
	Price     string
	Image     catalog.Image
	State     CardState
	Quantity  int
}

// Line is one order line in the cart panel or the modal.
type Line struct {
	ProductID int    `json:"productId"`
	Name      string `json:"name"`
	Thumbnail string `json:"thumbnail"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unitPrice"`
	LineTotal string `json:"lineTotal"`
}

// Panel is the rendered cart panel.
type Panel struct {
	State PanelState
	Count int
	Lines []Line
	Total string
}

// Modal is the rendered order confirmation.
type Modal struct {
	State ModalState
	Lines []Line
	Total string
}

// Snapshot is a copy of the order taken when the modal opens.
// Later cart mutations do not affect it.
type Snapshot struct {
	Lines []Line
	Total decimal.Decimal
}

// Surface is the whole rendered page. Cards are addressed by product id.
type Surface struct {
	Cards  map[int]Card
	Order  []int
	Panel  Panel
	Modal  Modal
	Notice string
}

// Card returns the rendered card for a product.
func (s *Surface) Card(productID int) (Card, bool) {
	c, ok := s.Cards[productID]
	return c, ok
}

// FormatMoney renders an amount with a dollar sign and two decimals.
func FormatMoney(d decimal.Decimal) string {
	return "$" + d.StringFixed(2)
}
