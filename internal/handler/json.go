package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/storefront-cart/internal/domain/product"
	"github.com/xenking/storefront-cart/internal/storefront"
	"github.com/xenking/storefront-cart/internal/view"
)

const maxBodySize = 1 << 20

// writeJSON writes an object built by fields.
func writeJSON(w http.ResponseWriter, status int, fields func(e *jx.Encoder)) {
	var e jx.Encoder
	e.ObjStart()
	fields(&e)
	e.ObjEnd()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

func writeError(w http.ResponseWriter, status int, msg string, notices []storefront.Notice) {
	writeJSON(w, status, func(e *jx.Encoder) {
		e.FieldStart("code")
		e.Int(status)
		e.FieldStart("message")
		e.Str(msg)
		if len(notices) > 0 {
			encodeNotices(e, notices)
		}
	})
}

// readBody returns the request body, or nil when it is empty.
func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		return nil, errors.Wrap(err, "read body")
	}
	return data, nil
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, errors.Wrap(err, "parse product id")
	}
	return id, nil
}

func encodeNotices(e *jx.Encoder, notices []storefront.Notice) {
	e.FieldStart("notices")
	e.ArrStart()
	for _, n := range notices {
		e.ObjStart()
		e.FieldStart("level")
		e.Str(string(n.Level))
		e.FieldStart("title")
		e.Str(n.Title)
		if n.Text != "" {
			e.FieldStart("text")
			e.Str(n.Text)
		}
		e.FieldStart("toast")
		e.Bool(n.Toast)
		e.ObjEnd()
	}
	e.ArrEnd()
}

func encodeCart(e *jx.Encoder, panel view.CartPanel) {
	e.FieldStart("cart")
	e.ObjStart()
	e.FieldStart("items")
	e.ArrStart()
	for _, row := range panel.Rows {
		e.ObjStart()
		e.FieldStart("productId")
		e.Int64(row.ProductID)
		e.FieldStart("title")
		e.Str(row.Title)
		e.FieldStart("price")
		product.EncodePrice(e, row.Price)
		e.FieldStart("priceText")
		e.Str(row.PriceText)
		e.FieldStart("quantity")
		e.Int(row.Quantity)
		e.FieldStart("subtotal")
		product.EncodePrice(e, row.Subtotal)
		e.FieldStart("subtotalText")
		e.Str(row.SubtotalText)
		e.ObjEnd()
	}
	e.ArrEnd()
	e.FieldStart("count")
	e.Int(panel.Count)
	e.FieldStart("total")
	product.EncodePrice(e, panel.Total)
	e.FieldStart("totalText")
	e.Str(panel.TotalText)
	if panel.Message != "" {
		e.FieldStart("message")
		e.Str(panel.Message)
	}
	e.FieldStart("version")
	e.UInt64(panel.Version)
	e.ObjEnd()
}

func (h *Handler) encodeProduct(e *jx.Encoder, c view.ProductCard) {
	e.ObjStart()
	e.FieldStart("id")
	e.Int64(c.ID)
	e.FieldStart("title")
	e.Str(c.Title)
	e.FieldStart("description")
	e.Str(c.Description)
	e.FieldStart("price")
	product.EncodePrice(e, c.Price)
	e.FieldStart("priceText")
	e.Str(c.PriceText)
	e.FieldStart("stock")
	e.Int(c.Stock)
	e.FieldStart("image")
	e.Str(h.imageBaseURL + c.Image)
	e.FieldStart("soldOut")
	e.Bool(c.SoldOut)
	e.ObjEnd()
}
