// Package cart holds the in-progress composition of one sale: an
// ordered list of (product, quantity) lines reconciled against the
// last known stock figures.
package cart

import (
	"errors"
	"fmt"
	"slices"

	"github.com/FabricioIaronka/store-manager/domain"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrLineOutOfRange  = errors.New("cart line index out of range")
)

// InsufficientStockError is returned when the cumulative quantity for a
// product would exceed its known stock. The cart is left unmodified.
type InsufficientStockError struct {
	Product   domain.Product
	InCart    int64
	Requested int64
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: %d available, %d already in cart, %d requested",
		e.Product.Name, e.Product.Qnt, e.InCart, e.Requested)
}

type Line struct {
	Product  domain.Product
	Quantity int64
}

func (l Line) Subtotal() float64 {
	return l.Product.Price * float64(l.Quantity)
}

// Cart is scoped to one sale-composition session and discarded after
// submission or abandonment. It is not safe for concurrent use; the
// composing flow is single-threaded.
type Cart struct {
	lines []Line
}

func New() *Cart {
	return &Cart{}
}

// Add merges quantity into an existing line for the same product or
// appends a new one. The stock check runs against the product record as
// it was last fetched; the server remains the final arbiter at
// submission time.
func (c *Cart) Add(p domain.Product, quantity int64) error {
	if quantity < 1 {
		return ErrInvalidQuantity
	}

	idx := slices.IndexFunc(c.lines, func(l Line) bool { return l.Product.ID == p.ID })
	var inCart int64
	if idx >= 0 {
		inCart = c.lines[idx].Quantity
	}
	if inCart+quantity > p.Qnt {
		return &InsufficientStockError{Product: p, InCart: inCart, Requested: quantity}
	}

	if idx >= 0 {
		c.lines[idx].Quantity += quantity
		return nil
	}
	c.lines = append(c.lines, Line{Product: p, Quantity: quantity})
	return nil
}

// Remove deletes the line at the given position. Removing never needs
// stock validation.
func (c *Cart) Remove(index int) error {
	if index < 0 || index >= len(c.lines) {
		return ErrLineOutOfRange
	}
	c.lines = slices.Delete(c.lines, index, index+1)
	return nil
}

// Total is recomputed on every read; there is no cached running total
// to drift.
func (c *Cart) Total() float64 {
	var total float64
	for _, l := range c.lines {
		total += l.Subtotal()
	}
	return total
}

func (c *Cart) Clear() {
	c.lines = nil
}

// Lines returns a copy of the current lines in insertion order.
func (c *Cart) Lines() []Line {
	return slices.Clone(c.lines)
}

func (c *Cart) Len() int {
	return len(c.lines)
}

func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}
