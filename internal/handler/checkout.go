package handler

import (
	"net/http"
	"time"

	"github.com/go-faster/jx"

	"github.com/xenking/storefront-cart/internal/domain/product"
	"github.com/xenking/storefront-cart/internal/storefront"
)

// decodeCheckout builds the UI answers from a checkout request body. An empty
// body submits the prefilled form without confirming the purchase.
func decodeCheckout(data []byte) (*storefront.ScriptedUI, error) {
	ui := &storefront.ScriptedUI{Customer: &storefront.Customer{}}
	if len(data) == 0 {
		return ui, nil
	}
	err := jx.DecodeBytes(data).Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "name":
			ui.Customer.Name, err = d.Str()
		case "email":
			ui.Customer.Email, err = d.Str()
		case "address":
			ui.Customer.Address, err = d.Str()
		case "confirm":
			ui.Confirmed, err = d.Bool()
		case "dismiss":
			ui.DismissForm, err = d.Bool()
		default:
			err = d.Skip()
		}
		return err
	})
	return ui, err
}

// Checkout runs the simulated purchase.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	ui, err := decodeCheckout(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error(), nil)
		return
	}

	receipt, err := h.actions.Checkout(r.Context(), ui)
	if err != nil && receipt == nil {
		writeCommandError(w, r, err, ui)
		return
	}

	h.writeCommand(w, http.StatusOK, ui, func(e *jx.Encoder) {
		e.FieldStart("confirmed")
		e.Bool(receipt != nil)
		if receipt == nil {
			return
		}
		e.FieldStart("receipt")
		e.ObjStart()
		e.FieldStart("id")
		e.Str(receipt.ID)
		e.FieldStart("customer")
		e.ObjStart()
		e.FieldStart("name")
		e.Str(receipt.Customer.Name)
		e.FieldStart("email")
		e.Str(receipt.Customer.Email)
		e.FieldStart("address")
		e.Str(receipt.Customer.Address)
		e.ObjEnd()
		e.FieldStart("items")
		e.ArrStart()
		for _, l := range receipt.Lines {
			e.ObjStart()
			e.FieldStart("productId")
			e.Int64(l.ProductID)
			e.FieldStart("title")
			e.Str(l.Title)
			e.FieldStart("price")
			product.EncodePrice(e, l.Price)
			e.FieldStart("quantity")
			e.Int(l.Quantity)
			e.ObjEnd()
		}
		e.ArrEnd()
		e.FieldStart("count")
		e.Int(receipt.Count)
		e.FieldStart("total")
		product.EncodePrice(e, receipt.Total)
		e.FieldStart("totalText")
		e.Str(receipt.TotalText)
		e.FieldStart("placedAt")
		e.Str(receipt.PlacedAt.UTC().Format(time.RFC3339))
		e.ObjEnd()
	})
}
