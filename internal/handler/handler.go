package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/xenking/storefront-cart/internal/storefront"
	"github.com/xenking/storefront-cart/internal/view"
)

// HandlerConfig holds non-dependency configuration for the Handler.
type HandlerConfig struct {
	// ImageBaseURL is prepended to relative image paths in product responses.
	// When empty, image paths are returned as they appear in the catalog.
	ImageBaseURL string
	// CatalogNotices are the notices raised while loading the catalog at
	// startup. When set and the catalog is empty, product listings fail with
	// 503 and carry them.
	CatalogNotices []storefront.Notice
}

// Handler binds the storefront commands to HTTP. Reads are served from the
// rendered view; writes go through storefront.Actions with a ScriptedUI built
// from the request.
type Handler struct {
	actions        *storefront.Actions
	board          *view.Board
	imageBaseURL   string
	catalogNotices []storefront.Notice
}

// NewHandler constructs a Handler with the required dependencies.
func NewHandler(cfg HandlerConfig, actions *storefront.Actions, board *view.Board) *Handler {
	return &Handler{
		actions:        actions,
		board:          board,
		imageBaseURL:   cfg.ImageBaseURL,
		catalogNotices: cfg.CatalogNotices,
	}
}

// Routes returns the API router. It is meant to be mounted under /api.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/products", h.ListProducts)
	r.Get("/products/{id}", h.GetProduct)

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", h.GetCart)
		r.Delete("/", h.ClearCart)
		r.Post("/items", h.AddItem)
		r.Put("/items/{id}", h.UpdateItem)
		r.Delete("/items/{id}", h.RemoveItem)
	})

	r.Post("/checkout", h.Checkout)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed", nil)
	})
	return r
}
