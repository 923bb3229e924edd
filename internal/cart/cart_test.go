package cart

import (
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/tavola-client/internal/menu"
)

func newTestItem(id int64, name, price string) menu.Item {
	return menu.Item{
		ID:        id,
		Name:      name,
		Price:     decimal.RequireFromString(price),
		Category:  "test",
		Available: true,
	}
}

func TestAdd_NewAndIncrement(t *testing.T) {
	c := New()
	pizza := newTestItem(1, "Pizza", "9.50")

	c.Add(pizza)
	c.Add(pizza)

	lines := c.Lines()
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, 2, c.ItemCount())
	assert.True(t, decimal.RequireFromString("19.00").Equal(c.Total()))
}

func TestAdd_PreservesInsertionOrder(t *testing.T) {
	c := New()
	c.Add(newTestItem(3, "Tiramisu", "6.00"))
	c.Add(newTestItem(1, "Pizza", "9.50"))
	c.Add(newTestItem(2, "Cola", "3.00"))
	c.Add(newTestItem(1, "Pizza", "9.50"))

	lines := c.Lines()
	require.Len(t, lines, 3)
	assert.Equal(t, int64(3), lines[0].Item.ID)
	assert.Equal(t, int64(1), lines[1].Item.ID)
	assert.Equal(t, int64(2), lines[2].Item.ID)
}

func TestUpdateQuantity_Set(t *testing.T) {
	c := New()
	c.Add(newTestItem(1, "Pizza", "9.50"))

	require.NoError(t, c.UpdateQuantity(1, 5))
	assert.Equal(t, 5, c.ItemCount())
	assert.True(t, decimal.RequireFromString("47.50").Equal(c.Total()))
}

func TestUpdateQuantity_ZeroRemoves(t *testing.T) {
	c := New()
	c.Add(newTestItem(1, "Pizza", "9.50"))

	require.NoError(t, c.UpdateQuantity(1, 0))
	assert.True(t, c.Empty())

	// Removal is idempotent: removing again (or an item never added) is fine.
	require.NoError(t, c.UpdateQuantity(1, 0))
	require.NoError(t, c.UpdateQuantity(99, 0))
}

func TestUpdateQuantity_NegativeRejected(t *testing.T) {
	c := New()
	c.Add(newTestItem(1, "Pizza", "9.50"))

	err := c.UpdateQuantity(1, -1)
	var iqErr *InvalidQuantityError
	require.ErrorAs(t, err, &iqErr)
	assert.Equal(t, int64(1), iqErr.ItemID)
	assert.Equal(t, -1, iqErr.Quantity)

	// Cart is unchanged after the rejected update.
	assert.Equal(t, 1, c.ItemCount())
}

func TestUpdateQuantity_MissingItem(t *testing.T) {
	c := New()

	require.ErrorIs(t, c.UpdateQuantity(42, 3), ErrNotInCart)
}

func TestClear(t *testing.T) {
	c := New()
	c.Add(newTestItem(1, "Pizza", "9.50"))
	c.Add(newTestItem(2, "Cola", "3.00"))

	c.Clear()

	assert.True(t, c.Empty())
	assert.Zero(t, c.ItemCount())
	assert.True(t, decimal.Zero.Equal(c.Total()))
	assert.Empty(t, c.Lines())
}

// TestRandomOperations drives the cart through random add/update/clear
// sequences and checks the invariants after every step: no line with
// quantity < 1, and Total always equals the sum of price*quantity recomputed
// from scratch.
func TestRandomOperations(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	items := make([]menu.Item, 8)
	for i := range items {
		price := decimal.NewFromInt(int64(rng.Intn(2000))).Div(decimal.NewFromInt(100))
		items[i] = menu.Item{ID: int64(i + 1), Name: "item", Price: price, Available: true}
	}

	c := New()
	for step := range 2000 {
		switch rng.Intn(10) {
		case 0:
			c.Clear()
		case 1, 2:
			// May hit absent items; both outcomes are acceptable.
			_ = c.UpdateQuantity(items[rng.Intn(len(items))].ID, rng.Intn(6))
		case 3:
			err := c.UpdateQuantity(items[rng.Intn(len(items))].ID, -rng.Intn(5)-1)
			var iqErr *InvalidQuantityError
			require.ErrorAs(t, err, &iqErr, "step %d", step)
		default:
			c.Add(items[rng.Intn(len(items))])
		}

		expected := decimal.Zero
		count := 0
		for _, line := range c.Lines() {
			require.GreaterOrEqual(t, line.Quantity, 1, "step %d: stored line with quantity < 1", step)
			expected = expected.Add(line.Item.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
			count += line.Quantity
		}
		require.True(t, expected.Equal(c.Total()), "step %d: total mismatch", step)
		require.Equal(t, count, c.ItemCount(), "step %d", step)
	}
}
