// Package history retrieves and formats the caller's past orders.
//
// The backend's order list had grown several competing renderings that
// differed mainly in how defensively they parsed timestamps; this package is
// the single formatting policy. Dates go through the strict pkg/dateparse
// parser, and an explicit parse failure renders as a placeholder instead of
// the parser guessing.
package history

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/tavola-client/pkg/dateparse"
)

// DatePlaceholder is rendered when an order's timestamp is missing or does
// not parse.
const DatePlaceholder = "date unavailable"

// dateLayout is how order timestamps are presented to the user.
const dateLayout = "Jan 2, 2006 3:04 PM"

// Record is one past order as returned by the backend.
type Record struct {
	ID                  int64
	Status              string
	CreatedAt           string // raw backend value; format with FormatDate
	TotalAmount         decimal.Decimal
	Items               []Item
	CustomerName        string
	CustomerPhone       string
	DeliveryAddress     string
	SpecialInstructions string
}

// Item is a line item within a past order.
type Item struct {
	MenuItemID   int64
	MenuItemName string
	Quantity     int
	Price        decimal.Decimal
}

// LineTotal returns price times quantity for this item.
func (i Item) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Doer executes an API call and returns the raw response body.
type Doer interface {
	Do(ctx context.Context, method, endpoint string, body []byte) ([]byte, error)
}

// FetchMine retrieves the authenticated user's orders.
func FetchMine(ctx context.Context, gateway Doer) ([]Record, error) {
	data, err := gateway.Do(ctx, http.MethodGet, "/orders/my-orders", nil)
	if err != nil {
		return nil, err
	}

	records, err := decodeRecords(data)
	if err != nil {
		return nil, errors.Wrap(err, "decode orders")
	}
	return records, nil
}

// FormatDate renders the order's timestamp, or DatePlaceholder when the
// value is absent or unparseable.
func (r Record) FormatDate() string {
	t, err := dateparse.Parse(r.CreatedAt)
	if err != nil {
		return DatePlaceholder
	}
	return t.Format(dateLayout)
}

// FormatStatus normalizes the backend status for display: underscores become
// spaces, the result is uppercased, and a missing status reads as PENDING.
func (r Record) FormatStatus() string {
	if r.Status == "" {
		return "PENDING"
	}
	return strings.ToUpper(strings.ReplaceAll(r.Status, "_", " "))
}
