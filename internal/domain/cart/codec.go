package cart

import (
	"io"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/storefront-cart/internal/domain/product"
)

// Encode serializes lines as a JSON array. An empty cart encodes as "[]".
func Encode(lines []Line) []byte {
	var e jx.Encoder
	e.ArrStart()
	for _, l := range lines {
		e.ObjStart()
		e.FieldStart("id")
		e.Int64(l.ProductID)
		e.FieldStart("title")
		e.Str(l.Title)
		e.FieldStart("price")
		product.EncodePrice(&e, l.Price)
		e.FieldStart("quantity")
		e.Int(l.Quantity)
		e.ObjEnd()
	}
	e.ArrEnd()
	return e.Bytes()
}

// Decode parses a cart written by Encode. Carts saved with Spanish field
// names (titulo, precio, cantidad) are accepted too.
func Decode(data []byte) ([]Line, error) {
	d := jx.DecodeBytes(data)
	lines := make([]Line, 0)
	if err := d.Arr(func(d *jx.Decoder) error {
		l, err := decodeLine(d)
		if err != nil {
			return err
		}
		if findLine(lines, l.ProductID) >= 0 {
			return errors.Errorf("duplicate line for product %d", l.ProductID)
		}
		lines = append(lines, l)
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "decode cart")
	}
	if err := d.Skip(); !errors.Is(err, io.EOF) {
		return nil, errors.New("decode cart: unexpected trailing data")
	}
	return lines, nil
}

func decodeLine(d *jx.Decoder) (Line, error) {
	var (
		l     Line
		hasID bool
	)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			l.ProductID, err = product.DecodeID(d)
			hasID = true
		case "title", "titulo":
			l.Title, err = d.Str()
		case "price", "precio":
			l.Price, err = product.DecodePrice(d)
		case "quantity", "cantidad":
			l.Quantity, err = d.Int()
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrapf(err, "field %q", key)
		}
		return nil
	})
	if err != nil {
		return Line{}, err
	}
	if !hasID {
		return Line{}, errors.New("line without id")
	}
	if l.Quantity <= 0 {
		return Line{}, errors.Errorf("line %d: non-positive quantity %d", l.ProductID, l.Quantity)
	}
	return l, nil
}
