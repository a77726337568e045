package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/storefront-cart/internal/domain/cart"
	"github.com/xenking/storefront-cart/internal/storefront"
)

// writeCommandError converts a command error into an error response that
// still carries the notices shown during the command.
func writeCommandError(w http.ResponseWriter, r *http.Request, err error, ui *storefront.ScriptedUI) {
	status, msg := mapCommandError(err)
	if status == http.StatusInternalServerError {
		zctx.From(r.Context()).Error("Command failed", zap.Error(err))
	}
	writeError(w, status, msg, ui.Notices())
}

func mapCommandError(err error) (int, string) {
	var (
		notFound *cart.ProductNotFoundError
		noStock  *cart.InsufficientStockError
		badQty   *cart.InvalidQuantityError
	)
	switch {
	case errors.As(err, &notFound):
		return http.StatusNotFound, notFound.Error()
	case errors.As(err, &noStock):
		return http.StatusConflict, noStock.Error()
	case errors.As(err, &badQty):
		return http.StatusUnprocessableEntity, badQty.Error()
	case errors.Is(err, cart.ErrEmptyCart):
		return http.StatusConflict, err.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
