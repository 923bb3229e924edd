// Package cart holds the in-memory selection of menu items pending order
// submission.
package cart

import (
	"fmt"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/tavola-client/internal/menu"
)

// ErrNotInCart is returned when a quantity update targets an item that was
// never added. Setting a missing item's quantity to zero is a no-op instead:
// removal is idempotent.
var ErrNotInCart = errors.New("item not in cart")

// InvalidQuantityError indicates a quantity update with a negative value.
type InvalidQuantityError struct {
	ItemID   int64
	Quantity int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity %d is invalid for item %d", e.Quantity, e.ItemID)
}

// Line is a cart entry: a menu item snapshot captured at add time plus the
// selected quantity. Quantity is always >= 1; zero-quantity lines are removed,
// never stored.
type Line struct {
	Item     menu.Item
	Quantity int
}

// Subtotal returns price multiplied by quantity for this line.
func (l Line) Subtotal() decimal.Decimal {
	return l.Item.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart maps item IDs to lines. All operations are synchronous, single-writer
// transformations; the zero value is not usable, construct with New.
type Cart struct {
	lines map[int64]*Line
	order []int64 // insertion order, for stable display
}

// New creates an empty cart.
func New() *Cart {
	return &Cart{lines: make(map[int64]*Line)}
}

// Add puts an item into the cart with quantity 1, or increments the quantity
// when the item is already present. Availability policy is the caller's
// concern; the cart stores whatever it is given.
func (c *Cart) Add(item menu.Item) {
	if line, ok := c.lines[item.ID]; ok {
		line.Quantity++
		return
	}
	c.lines[item.ID] = &Line{Item: item, Quantity: 1}
	c.order = append(c.order, item.ID)
}

// UpdateQuantity sets the quantity for an item. A quantity of zero removes
// the line (idempotently: removing an absent item succeeds). Negative
// quantities are rejected with *InvalidQuantityError.
func (c *Cart) UpdateQuantity(itemID int64, quantity int) error {
	if quantity < 0 {
		return &InvalidQuantityError{ItemID: itemID, Quantity: quantity}
	}

	if quantity == 0 {
		c.remove(itemID)
		return nil
	}

	line, ok := c.lines[itemID]
	if !ok {
		return ErrNotInCart
	}
	line.Quantity = quantity
	return nil
}

func (c *Cart) remove(itemID int64) {
	if _, ok := c.lines[itemID]; !ok {
		return
	}
	delete(c.lines, itemID)
	for i, id := range c.order {
		if id == itemID {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.lines = make(map[int64]*Line)
	c.order = c.order[:0]
}

// Lines returns the cart contents in insertion order.
func (c *Cart) Lines() []Line {
	lines := make([]Line, 0, len(c.order))
	for _, id := range c.order {
		lines = append(lines, *c.lines[id])
	}
	return lines
}

// Total returns the sum of price times quantity across all lines.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, line := range c.lines {
		total = total.Add(line.Subtotal())
	}
	return total
}

// ItemCount returns the sum of quantities across all lines.
func (c *Cart) ItemCount() int {
	count := 0
	for _, line := range c.lines {
		count += line.Quantity
	}
	return count
}

// Empty reports whether the cart has no lines.
func (c *Cart) Empty() bool {
	return len(c.lines) == 0
}
