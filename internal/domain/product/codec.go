package product

import (
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

// DecodeCatalog parses a JSON array of products. Both the English field names
// (title, description, price) and the Spanish ones (titulo, descripcion,
// precio) are accepted; image is read from img or image.
func DecodeCatalog(data []byte) ([]Product, error) {
	d := jx.DecodeBytes(data)
	products := make([]Product, 0)
	if err := d.Arr(func(d *jx.Decoder) error {
		p, err := decodeProduct(d)
		if err != nil {
			return err
		}
		products = append(products, p)
		return nil
	}); err != nil {
		return nil, errors.Wrap(err, "decode catalog")
	}
	return products, nil
}

func decodeProduct(d *jx.Decoder) (Product, error) {
	var (
		p     Product
		hasID bool
	)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "id":
			p.ID, err = DecodeID(d)
			hasID = true
		case "title", "titulo":
			p.Title, err = d.Str()
		case "description", "descripcion":
			p.Description, err = d.Str()
		case "price", "precio":
			p.Price, err = DecodePrice(d)
		case "stock":
			p.Stock, err = d.Int()
		case "img", "image", "imagen":
			p.Image, err = d.Str()
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrapf(err, "field %q", key)
		}
		return nil
	})
	if err != nil {
		return Product{}, err
	}
	if !hasID {
		return Product{}, errors.New("product without id")
	}
	if p.Price.IsNegative() {
		return Product{}, errors.Errorf("product %d: negative price", p.ID)
	}
	if p.Stock < 0 {
		return Product{}, errors.Errorf("product %d: negative stock", p.ID)
	}
	return p, nil
}

// DecodeID reads a product id written either as a JSON number or as a string
// holding an integer.
func DecodeID(d *jx.Decoder) (int64, error) {
	switch d.Next() {
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return 0, err
		}
		return strconv.ParseInt(s, 10, 64)
	default:
		return d.Int64()
	}
}

// DecodePrice reads a decimal written either as a JSON number or a string.
func DecodePrice(d *jx.Decoder) (decimal.Decimal, error) {
	switch d.Next() {
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromString(s)
	default:
		n, err := d.Num()
		if err != nil {
			return decimal.Zero, err
		}
		return decimal.NewFromString(n.String())
	}
}

// EncodePrice writes a decimal as a JSON number.
func EncodePrice(e *jx.Encoder, v decimal.Decimal) {
	e.Num(jx.Num(v.String()))
}

// EncodeCatalog writes products as a JSON array using the English field
// names.
func EncodeCatalog(e *jx.Encoder, products []Product) {
	e.ArrStart()
	for _, p := range products {
		e.ObjStart()
		e.FieldStart("id")
		e.Int64(p.ID)
		e.FieldStart("title")
		e.Str(p.Title)
		e.FieldStart("description")
		e.Str(p.Description)
		e.FieldStart("price")
		EncodePrice(e, p.Price)
		e.FieldStart("stock")
		e.Int(p.Stock)
		e.FieldStart("img")
		e.Str(p.Image)
		e.ObjEnd()
	}
	e.ArrEnd()
}
