// Package menu fetches and models the restaurant's menu catalog.
package menu

import (
	"context"
	"net/http"
	"sort"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Item represents a menu entry available for ordering.
type Item struct {
	ID          int64
	Name        string
	Description string
	Price       decimal.Decimal
	Category    string
	ImageURL    string
	// Available defaults to true when the backend omits the flag; only an
	// explicit false marks an item unorderable.
	Available bool
}

// Doer executes an API call and returns the raw response body.
type Doer interface {
	Do(ctx context.Context, method, endpoint string, body []byte) ([]byte, error)
}

// Fetch retrieves the full menu from the backend.
func Fetch(ctx context.Context, gateway Doer) ([]Item, error) {
	data, err := gateway.Do(ctx, http.MethodGet, "/menu", nil)
	if err != nil {
		return nil, err
	}

	items, err := decodeItems(data)
	if err != nil {
		return nil, errors.Wrap(err, "decode menu")
	}
	return items, nil
}

// Categories returns the distinct item categories in sorted order.
func Categories(items []Item) []string {
	seen := make(map[string]struct{}, len(items))
	var categories []string
	for _, item := range items {
		if _, ok := seen[item.Category]; ok {
			continue
		}
		seen[item.Category] = struct{}{}
		categories = append(categories, item.Category)
	}
	sort.Strings(categories)
	return categories
}

// FilterByCategory returns the items belonging to the given category.
// An empty category returns all items.
func FilterByCategory(items []Item, category string) []Item {
	if category == "" {
		return items
	}
	var filtered []Item
	for _, item := range items {
		if item.Category == category {
			filtered = append(filtered, item)
		}
	}
	return filtered
}
