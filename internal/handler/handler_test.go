package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/storefront-cart/internal/domain/cart"
	"github.com/xenking/storefront-cart/internal/domain/product"
	"github.com/xenking/storefront-cart/internal/storage/memory"
	"github.com/xenking/storefront-cart/internal/storefront"
	"github.com/xenking/storefront-cart/internal/view"
)

// --- Helpers ---

type cartBody struct {
	Items []struct {
		ProductID int64  `json:"productId"`
		Title     string `json:"title"`
		Quantity  int    `json:"quantity"`
	} `json:"items"`
	Count     int    `json:"count"`
	TotalText string `json:"totalText"`
	Message   string `json:"message"`
}

type noticeBody struct {
	Level string `json:"level"`
	Title string `json:"title"`
	Text  string `json:"text"`
	Toast bool   `json:"toast"`
}

type responseBody struct {
	Code      int          `json:"code"`
	Message   string       `json:"message"`
	Confirmed *bool        `json:"confirmed"`
	Notices   []noticeBody `json:"notices"`
	Cart      cartBody     `json:"cart"`
	Receipt   *struct {
		ID       string `json:"id"`
		Customer struct {
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"customer"`
		Count     int    `json:"count"`
		TotalText string `json:"totalText"`
	} `json:"receipt"`
}

type testServer struct {
	router http.Handler
	store  *cart.Store
}

func newTestServer(t *testing.T, cfg HandlerConfig) *testServer {
	t.Helper()
	board := view.NewBoard(view.NewFormatter("en-US"))
	store := cart.NewStore(memory.New(), cart.WithView(board))
	store.SetCatalog([]product.Product{
		{ID: 1, Title: "Mate", Description: "Calabaza", Price: decimal.NewFromInt(100), Stock: 5, Image: "img/mate.jpg"},
		{ID: 2, Title: "Yerba", Price: decimal.RequireFromString("40.5"), Stock: 2},
	})
	actions, err := storefront.New(store, board.Formatter(), storefront.Config{
		DefaultCustomer: storefront.Customer{Name: "Daiana Majul", Email: "dayito@example.com", Address: "Calle Falsa 123"},
	})
	require.NoError(t, err)
	return &testServer{
		router: NewHandler(cfg, actions, board).Routes(),
		store:  store,
	}
}

func (s *testServer) do(t *testing.T, method, target, body string) (int, responseBody) {
	t.Helper()
	var r io.Reader = http.NoBody
	if body != "" {
		r = strings.NewReader(body)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(method, target, r))
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var resp responseBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w.Code, resp
}

func (s *testServer) add(t *testing.T, id int64, qty int) {
	t.Helper()
	_, err := s.store.Add(context.Background(), id, qty)
	require.NoError(t, err)
}

// --- Tests ---

func TestListProducts(t *testing.T) {
	s := newTestServer(t, HandlerConfig{ImageBaseURL: "https://cdn.example/"})

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var products []struct {
		ID        int64   `json:"id"`
		Price     float64 `json:"price"`
		PriceText string  `json:"priceText"`
		Image     string  `json:"image"`
		SoldOut   bool    `json:"soldOut"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &products))
	require.Len(t, products, 2)
	assert.Equal(t, "https://cdn.example/img/mate.jpg", products[0].Image)
	assert.Equal(t, 40.5, products[1].Price)
	assert.Equal(t, "$40.5", products[1].PriceText)
}

func TestListProducts_CatalogUnavailable(t *testing.T) {
	board := view.NewBoard(view.NewFormatter("en-US"))
	store := cart.NewStore(memory.New(), cart.WithView(board))
	actions, err := storefront.New(store, board.Formatter(), storefront.Config{})
	require.NoError(t, err)
	s := &testServer{
		router: NewHandler(HandlerConfig{
			CatalogNotices: []storefront.Notice{{Level: storefront.LevelError, Title: "Error"}},
		}, actions, board).Routes(),
		store: store,
	}

	code, resp := s.do(t, http.MethodGet, "/products", "")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	require.Len(t, resp.Notices, 1)
	assert.Equal(t, "error", resp.Notices[0].Level)
}

func TestGetProduct(t *testing.T) {
	s := newTestServer(t, HandlerConfig{})

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products/1", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"title":"Mate"`)

	code, _ := s.do(t, http.MethodGet, "/products/99", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = s.do(t, http.MethodGet, "/products/abc", "")
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestAddItem(t *testing.T) {
	s := newTestServer(t, HandlerConfig{})

	code, resp := s.do(t, http.MethodPost, "/cart/items", `{"productId":1,"quantity":3}`)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, 3, resp.Cart.Count)
	assert.Equal(t, "$300", resp.Cart.TotalText)
	require.Len(t, resp.Notices, 1)
	assert.Equal(t, "Mate agregado al carrito", resp.Notices[0].Title)
	assert.True(t, resp.Notices[0].Toast)

	code, resp = s.do(t, http.MethodPost, "/cart/items", `{"id":"2"}`)
	require.Equal(t, http.StatusCreated, code)
	assert.Equal(t, 4, resp.Cart.Count)
	assert.Len(t, resp.Cart.Items, 2)
}

func TestAddItem_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantNotice string
	}{
		{name: "unknown product", body: `{"productId":99}`, wantStatus: http.StatusNotFound, wantNotice: "error"},
		{name: "insufficient stock", body: `{"productId":1,"quantity":6}`, wantStatus: http.StatusConflict, wantNotice: "warning"},
		{name: "invalid quantity", body: `{"productId":1,"quantity":0}`, wantStatus: http.StatusUnprocessableEntity, wantNotice: "warning"},
		{name: "missing id", body: `{"quantity":1}`, wantStatus: http.StatusBadRequest},
		{name: "malformed", body: `{"productId":`, wantStatus: http.StatusBadRequest},
		{name: "empty body", body: "", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, HandlerConfig{})

			code, resp := s.do(t, http.MethodPost, "/cart/items", tt.body)
			assert.Equal(t, tt.wantStatus, code)
			assert.Equal(t, tt.wantStatus, resp.Code)
			if tt.wantNotice != "" {
				require.Len(t, resp.Notices, 1)
				assert.Equal(t, tt.wantNotice, resp.Notices[0].Level)
			}
			assert.Zero(t, s.store.Count())
		})
	}
}

func TestAddItem_HugeQuantity(t *testing.T) {
	s := newTestServer(t, HandlerConfig{})
	s.add(t, 1, 1)

	code, resp := s.do(t, http.MethodPost, "/cart/items", `{"productId":1,"quantity":9223372036854775807}`)
	assert.Equal(t, http.StatusConflict, code)
	require.Len(t, resp.Notices, 1)
	assert.Equal(t, "warning", resp.Notices[0].Level)
	assert.Equal(t, 1, s.store.Count())

	code, _ = s.do(t, http.MethodGet, "/cart", "")
	require.Equal(t, http.StatusOK, code)
	assert.True(t, decimal.NewFromInt(100).Equal(s.store.Total()))
}

func TestUpdateItem(t *testing.T) {
	s := newTestServer(t, HandlerConfig{})
	s.add(t, 1, 1)

	code, resp := s.do(t, http.MethodPut, "/cart/items/1", `{"quantity":5}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, 5, resp.Cart.Count)

	code, _ = s.do(t, http.MethodPut, "/cart/items/1", `{"quantity":6}`)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, 5, s.store.Count())

	code, resp = s.do(t, http.MethodPut, "/cart/items/1", `{"cantidad":0}`)
	require.Equal(t, http.StatusOK, code)
	assert.Zero(t, resp.Cart.Count)
	assert.Equal(t, view.EmptyCartMessage, resp.Cart.Message)

	code, _ = s.do(t, http.MethodPut, "/cart/items/1", `{}`)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestRemoveItem(t *testing.T) {
	s := newTestServer(t, HandlerConfig{})
	s.add(t, 1, 2)

	code, resp := s.do(t, http.MethodDelete, "/cart/items/1", "")
	require.Equal(t, http.StatusOK, code)
	require.NotNil(t, resp.Confirmed)
	assert.False(t, *resp.Confirmed)
	assert.Equal(t, 2, resp.Cart.Count)

	code, resp = s.do(t, http.MethodDelete, "/cart/items/1?confirm=true", "")
	require.Equal(t, http.StatusOK, code)
	assert.True(t, *resp.Confirmed)
	assert.Zero(t, resp.Cart.Count)

	// Removing an absent line is a no-op.
	code, _ = s.do(t, http.MethodDelete, "/cart/items/1?confirm=true", "")
	assert.Equal(t, http.StatusOK, code)
}

func TestClearCart(t *testing.T) {
	s := newTestServer(t, HandlerConfig{})

	code, resp := s.do(t, http.MethodDelete, "/cart?confirm=true", "")
	assert.Equal(t, http.StatusConflict, code)
	require.Len(t, resp.Notices, 1)
	assert.Equal(t, "Carrito vacío", resp.Notices[0].Title)

	s.add(t, 1, 1)
	s.add(t, 2, 2)

	code, resp = s.do(t, http.MethodDelete, "/cart?confirm=true", "")
	require.Equal(t, http.StatusOK, code)
	assert.True(t, *resp.Confirmed)
	assert.Zero(t, resp.Cart.Count)
	assert.Equal(t, "Carrito vaciado", resp.Notices[len(resp.Notices)-1].Title)
}

func TestCheckout(t *testing.T) {
	s := newTestServer(t, HandlerConfig{})
	s.add(t, 1, 5)

	code, resp := s.do(t, http.MethodPost, "/checkout", `{"name":"Ana","confirm":true}`)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, *resp.Confirmed)
	require.NotNil(t, resp.Receipt)
	assert.NotEmpty(t, resp.Receipt.ID)
	assert.Equal(t, "Ana", resp.Receipt.Customer.Name)
	assert.Equal(t, "dayito@example.com", resp.Receipt.Customer.Email)
	assert.Equal(t, 5, resp.Receipt.Count)
	assert.Equal(t, "$500", resp.Receipt.TotalText)
	assert.Zero(t, resp.Cart.Count)

	p, ok := s.store.Product(1)
	require.True(t, ok)
	assert.Zero(t, p.Stock)

	code, resp = s.do(t, http.MethodPost, "/checkout", `{"confirm":true}`)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "No hay items en el carrito", resp.Notices[0].Title)
}

func TestCheckout_NotConfirmed(t *testing.T) {
	s := newTestServer(t, HandlerConfig{})
	s.add(t, 1, 1)

	for _, body := range []string{"", `{"dismiss":true}`, `{"confirm":false}`} {
		code, resp := s.do(t, http.MethodPost, "/checkout", body)
		require.Equal(t, http.StatusOK, code, body)
		assert.False(t, *resp.Confirmed)
		assert.Nil(t, resp.Receipt)
		assert.Equal(t, 1, resp.Cart.Count)
	}
}

func TestRoutes_Fallbacks(t *testing.T) {
	s := newTestServer(t, HandlerConfig{})

	code, _ := s.do(t, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, _ = s.do(t, http.MethodPatch, "/cart", "")
	assert.Equal(t, http.StatusMethodNotAllowed, code)
}
