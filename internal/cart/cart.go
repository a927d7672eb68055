// Package cart holds the shopping cart state machine.
//
// A Cart is an ordered list of entries, unique by product id. Every stored entry has a
// quantity of at least one: an entry whose quantity drops to zero is removed, never kept.
// Totals are derived on every read and never stored.
package cart

import (
	"github.com/shopspring/decimal"
)

// Entry is one line of the cart.
type Entry struct {
	ProductID int `json:"productId"`
	Quantity  int `json:"quantity"`
}

// PriceLookup resolves the unit price of a product.
type PriceLookup interface {
	Price(productID int) (decimal.Decimal, bool)
}

// Cart is not safe for concurrent use; callers serialize access.
type Cart struct {
	entries []Entry
}

// New creates an empty cart.
func New() *Cart {
	return &Cart{}
}

// Add puts one more unit of the product into the cart, appending a new entry if needed.
func (c *Cart) Add(productID int) {
	if i := c.indexOf(productID); i >= 0 {
		c.entries[i].Quantity++
		return
	}
	c.entries = append(c.entries, Entry{ProductID: productID, Quantity: 1})
}

// Increment raises the quantity of an existing entry.
// It reports false and leaves the cart untouched when the product is not in the cart.
func (c *Cart) Increment(productID int) bool {
	i := c.indexOf(productID)
	if i < 0 {
		return false
	}
	c.entries[i].Quantity++
	return true
}

// Decrement lowers the quantity of an existing entry and drops the entry once it reaches zero.
// It reports false when the product is not in the cart.
func (c *Cart) Decrement(productID int) bool {
	i := c.indexOf(productID)
	if i < 0 {
		return false
	}
	c.entries[i].Quantity--
	if c.entries[i].Quantity <= 0 {
		c.removeAt(i)
	}
	return true
}

// Remove deletes the entry for the product. It reports whether an entry was removed.
func (c *Cart) Remove(productID int) bool {
	i := c.indexOf(productID)
	if i < 0 {
		return false
	}
	c.removeAt(i)
	return true
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.entries = nil
}

// QuantityOf returns the quantity of the product, or 0 if it is not in the cart.
func (c *Cart) QuantityOf(productID int) int {
	if i := c.indexOf(productID); i >= 0 {
		return c.entries[i].Quantity
	}
	return 0
}

// Entries returns a copy of the entries in insertion order.
func (c *Cart) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of distinct products in the cart.
func (c *Cart) Len() int {
	return len(c.entries)
}

// IsEmpty reports whether the cart has no entries.
func (c *Cart) IsEmpty() bool {
	return len(c.entries) == 0
}

// TotalItems returns the sum of all quantities.
func (c *Cart) TotalItems() int {
	total := 0
	for _, e := range c.entries {
		total += e.Quantity
	}
	return total
}

// TotalPrice returns the sum of quantity × unit price over all entries.
// Entries without a known price contribute nothing.
func (c *Cart) TotalPrice(prices PriceLookup) decimal.Decimal {
	total := decimal.Zero
	for _, e := range c.entries {
		price, ok := prices.Price(e.ProductID)
		if !ok {
			continue
		}
		total = total.Add(LineTotal(price, e.Quantity))
	}
	return total
}

// LineTotal returns price × quantity.
func LineTotal(price decimal.Decimal, quantity int) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
}

func (c *Cart) indexOf(productID int) int {
	for i, e := range c.entries {
		if e.ProductID == productID {
			return i
		}
	}
	return -1
}

func (c *Cart) removeAt(i int) {
	c.entries = append(c.entries[:i], c.entries[i+1:]...)
}
