package history

import (
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

// DecodeOne parses a single order record, the shape POST /orders returns.
func DecodeOne(data []byte) (Record, error) {
	return decodeRecord(jx.DecodeBytes(data))
}

func decodeRecords(data []byte) ([]Record, error) {
	d := jx.DecodeBytes(data)

	var records []Record
	err := d.Arr(func(d *jx.Decoder) error {
		rec, err := decodeRecord(d)
		if err != nil {
			return err
		}
		records = append(records, rec)
		return nil
	})
	return records, err
}

func decodeRecord(d *jx.Decoder) (Record, error) {
	var rec Record

	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "id":
			v, err := d.Int64()
			if err != nil {
				return err
			}
			rec.ID = v
		case "status":
			return decodeOptString(d, &rec.Status)
		case "createdAt":
			return decodeOptString(d, &rec.CreatedAt)
		case "totalAmount":
			return decodeDecimal(d, &rec.TotalAmount)
		case "items":
			if d.Next() == jx.Null {
				return d.Null()
			}
			return d.Arr(func(d *jx.Decoder) error {
				item, err := decodeItem(d)
				if err != nil {
					return err
				}
				rec.Items = append(rec.Items, item)
				return nil
			})
		case "customerName":
			return decodeOptString(d, &rec.CustomerName)
		case "customerPhone":
			return decodeOptString(d, &rec.CustomerPhone)
		case "deliveryAddress":
			return decodeOptString(d, &rec.DeliveryAddress)
		case "specialInstructions":
			return decodeOptString(d, &rec.SpecialInstructions)
		default:
			return d.Skip()
		}
		return nil
	})
	return rec, err
}

func decodeItem(d *jx.Decoder) (Item, error) {
	var item Item

	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "menuItemId":
			v, err := d.Int64()
			if err != nil {
				return err
			}
			item.MenuItemID = v
		case "menuItemName":
			return decodeOptString(d, &item.MenuItemName)
		case "quantity":
			v, err := d.Int()
			if err != nil {
				return err
			}
			item.Quantity = v
		case "price":
			return decodeDecimal(d, &item.Price)
		default:
			return d.Skip()
		}
		return nil
	})
	return item, err
}

// decodeOptString reads a string field that the backend may serialize as null.
func decodeOptString(d *jx.Decoder, dst *string) error {
	if d.Next() == jx.Null {
		return d.Null()
	}
	v, err := d.Str()
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

func decodeDecimal(d *jx.Decoder, dst *decimal.Decimal) error {
	if d.Next() == jx.Null {
		return d.Null()
	}
	n, err := d.Num()
	if err != nil {
		return err
	}
	v, err := decimal.NewFromString(n.String())
	if err != nil {
		return err
	}
	*dst = v
	return nil
}
