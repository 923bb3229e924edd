package order

import (
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/tavola-client/internal/cart"
	"github.com/xenking/tavola-client/internal/session"
)

// encodePayload builds the POST /orders request body. Monetary fields are
// written as raw decimal literals so amounts survive the wire exactly.
// The delivery address is sent even when empty: an empty address means a
// pickup order, not a missing field.
func encodePayload(draft Draft, lines []cart.Line, total decimal.Decimal, id *session.Identity) []byte {
	var e jx.Encoder

	e.ObjStart()
	e.FieldStart("customerName")
	e.Str(draft.CustomerName)
	e.FieldStart("customerPhone")
	e.Str(draft.CustomerPhone)
	e.FieldStart("deliveryAddress")
	e.Str(draft.DeliveryAddress)
	e.FieldStart("specialInstructions")
	e.Str(draft.SpecialInstructions)

	e.FieldStart("totalAmount")
	e.Num(jx.Num(total.String()))

	e.FieldStart("items")
	e.ArrStart()
	for _, line := range lines {
		e.ObjStart()
		e.FieldStart("menuItemId")
		e.Int64(line.Item.ID)
		e.FieldStart("menuItemName")
		e.Str(line.Item.Name)
		e.FieldStart("quantity")
		e.Int(line.Quantity)
		e.FieldStart("price")
		e.Num(jx.Num(line.Item.Price.String()))
		e.ObjEnd()
	}
	e.ArrEnd()

	e.FieldStart("status")
	e.Str("PENDING")

	e.FieldStart("user")
	if id != nil {
		e.ObjStart()
		e.FieldStart("id")
		e.Int64(id.ID)
		e.ObjEnd()
	} else {
		e.Null()
	}

	e.ObjEnd()
	return e.Bytes()
}
