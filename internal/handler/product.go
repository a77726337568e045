package handler

import (
	"net/http"

	"github.com/go-faster/jx"
)

// ListProducts returns the rendered product grid.
func (h *Handler) ListProducts(w http.ResponseWriter, _ *http.Request) {
	cards := h.board.Products()
	if len(cards) == 0 && len(h.catalogNotices) > 0 {
		writeError(w, http.StatusServiceUnavailable, "catalog unavailable", h.catalogNotices)
		return
	}

	var e jx.Encoder
	e.ArrStart()
	for _, c := range cards {
		h.encodeProduct(&e, c)
	}
	e.ArrEnd()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(e.Bytes())
}

// GetProduct returns a single product by ID.
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id", nil)
		return
	}

	for _, c := range h.board.Products() {
		if c.ID != id {
			continue
		}
		var e jx.Encoder
		h.encodeProduct(&e, c)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(e.Bytes())
		return
	}
	writeError(w, http.StatusNotFound, "product not found", nil)
}
