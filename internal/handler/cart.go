package handler

import (
	"net/http"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/storefront-cart/internal/domain/product"
	"github.com/xenking/storefront-cart/internal/storefront"
)

type addItemRequest struct {
	ProductID int64
	Quantity  int
}

func decodeAddItem(data []byte) (addItemRequest, error) {
	req := addItemRequest{Quantity: 1}
	hasID := false
	err := jx.DecodeBytes(data).Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "productId", "id":
			req.ProductID, err = product.DecodeID(d)
			hasID = true
		case "quantity", "cantidad":
			req.Quantity, err = d.Int()
		default:
			err = d.Skip()
		}
		return err
	})
	if err != nil {
		return req, err
	}
	if !hasID {
		return req, errors.New("productId is required")
	}
	return req, nil
}

func decodeQuantity(data []byte) (int, error) {
	var (
		qty    int
		hasQty bool
	)
	err := jx.DecodeBytes(data).Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "quantity", "cantidad":
			hasQty = true
			v, err := d.Int()
			qty = v
			return err
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return 0, err
	}
	if !hasQty {
		return 0, errors.New("quantity is required")
	}
	return qty, nil
}

func confirmParam(r *http.Request) bool {
	ok, _ := strconv.ParseBool(r.URL.Query().Get("confirm"))
	return ok
}

// writeCommand writes the notices and the refreshed cart panel.
func (h *Handler) writeCommand(w http.ResponseWriter, status int, ui *storefront.ScriptedUI, extra func(e *jx.Encoder)) {
	writeJSON(w, status, func(e *jx.Encoder) {
		if extra != nil {
			extra(e)
		}
		encodeNotices(e, ui.Notices())
		encodeCart(e, h.board.Cart())
	})
}

func confirmedField(confirmed bool) func(e *jx.Encoder) {
	return func(e *jx.Encoder) {
		e.FieldStart("confirmed")
		e.Bool(confirmed)
	}
}

// GetCart returns the rendered cart panel.
func (h *Handler) GetCart(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeCart(e, h.board.Cart())
	})
}

// AddItem adds a product to the cart. Quantity defaults to 1.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	data, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	req, err := decodeAddItem(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error(), nil)
		return
	}

	ui := &storefront.ScriptedUI{}
	if err := h.actions.AddToCart(r.Context(), ui, req.ProductID, req.Quantity); err != nil {
		writeCommandError(w, r, err, ui)
		return
	}
	h.writeCommand(w, http.StatusCreated, ui, nil)
}

// UpdateItem sets the quantity of a cart line.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id", nil)
		return
	}
	data, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	qty, err := decodeQuantity(data)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request: "+err.Error(), nil)
		return
	}

	ui := &storefront.ScriptedUI{}
	if err := h.actions.SetQuantity(r.Context(), ui, id, qty); err != nil {
		writeCommandError(w, r, err, ui)
		return
	}
	h.writeCommand(w, http.StatusOK, ui, nil)
}

// RemoveItem removes a cart line. The confirm query parameter answers the
// confirmation prompt.
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id", nil)
		return
	}

	ui := &storefront.ScriptedUI{Confirmed: confirmParam(r)}
	confirmed, err := h.actions.RemoveLine(r.Context(), ui, id)
	if err != nil {
		writeCommandError(w, r, err, ui)
		return
	}
	h.writeCommand(w, http.StatusOK, ui, confirmedField(confirmed))
}

// ClearCart empties the cart. The confirm query parameter answers the
// confirmation prompt.
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ui := &storefront.ScriptedUI{Confirmed: confirmParam(r)}
	confirmed, err := h.actions.Clear(r.Context(), ui)
	if err != nil {
		writeCommandError(w, r, err, ui)
		return
	}
	h.writeCommand(w, http.StatusOK, ui, confirmedField(confirmed))
}
