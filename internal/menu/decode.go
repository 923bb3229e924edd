package menu

import (
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

// decodeItems parses the /menu response array.
func decodeItems(data []byte) ([]Item, error) {
	d := jx.DecodeBytes(data)

	var items []Item
	err := d.Arr(func(d *jx.Decoder) error {
		item, err := decodeItem(d)
		if err != nil {
			return err
		}
		items = append(items, item)
		return nil
	})
	return items, err
}

func decodeItem(d *jx.Decoder) (Item, error) {
	item := Item{Available: true}

	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "id":
			v, err := d.Int64()
			if err != nil {
				return err
			}
			item.ID = v
		case "name":
			v, err := d.Str()
			if err != nil {
				return err
			}
			item.Name = v
		case "description":
			v, err := d.Str()
			if err != nil {
				return err
			}
			item.Description = v
		case "price":
			n, err := d.Num()
			if err != nil {
				return err
			}
			price, err := decimal.NewFromString(n.String())
			if err != nil {
				return err
			}
			item.Price = price
		case "category":
			v, err := d.Str()
			if err != nil {
				return err
			}
			item.Category = v
		case "imageUrl":
			if d.Next() == jx.Null {
				return d.Null()
			}
			v, err := d.Str()
			if err != nil {
				return err
			}
			item.ImageURL = v
		case "available":
			if d.Next() == jx.Null {
				return d.Null()
			}
			v, err := d.Bool()
			if err != nil {
				return err
			}
			item.Available = v
		default:
			return d.Skip()
		}
		return nil
	})
	return item, err
}
