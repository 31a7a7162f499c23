package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"ucp-merchant-demo/internal/checkout"
	"ucp-merchant-demo/internal/client"
	"ucp-merchant-demo/internal/model"
	"ucp-merchant-demo/internal/publisher"
	"ucp-merchant-demo/internal/repository"
	"ucp-merchant-demo/internal/service"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, client.Migrate(db))

	products := repository.NewProductRepository(db)
	require.NoError(t, products.Seed(context.Background()))

	svc := service.NewMerchantService(
		repository.NewMemorySessionStore(),
		products,
		repository.NewOrderRepository(db),
		repository.NewIdempotencyRepository(db),
		publisher.NopOrderPublisher{},
		checkout.NewTablePolicy(checkout.DefaultShippingOptions(), ""),
		zap.NewNop(),
		service.Options{
			Name:       "Test Store",
			BaseURL:    "http://127.0.0.1:8080",
			Currency:   "USD",
			UCP:        service.UCPContext("2026-01-11"),
			MaxRetries: 3,
		},
	)
	return NewServer(svc, zap.NewNop()).Handler()
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestCheckoutFlow(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/checkout-sessions", `{"line_items":[{"item":{"id":"sku_pixel"},"quantity":1}]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[model.Checkout](t, rec)
	assert.Equal(t, []model.Total{
		{Type: model.TotalTypeSubtotal, Amount: 99900},
		{Type: model.TotalTypeTotal, Amount: 99900},
	}, created.Totals)

	rec = do(t, h, http.MethodPut, "/checkout-sessions/"+created.ID, `{"buyer":{"first_name":"Agent"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	noEmail := decode[model.Checkout](t, rec)
	require.Len(t, noEmail.Messages, 1)
	assert.Equal(t, "$.buyer.email", noEmail.Messages[0].Path)

	rec = do(t, h, http.MethodPut, "/checkout-sessions/"+created.ID, `{"buyer":{"email":"agent@example.com"}}`)
	require.Equal(t, http.StatusOK, rec.Code)
	updated := decode[model.Checkout](t, rec)
	assert.Equal(t, []model.Total{
		{Type: model.TotalTypeSubtotal, Amount: 99900},
		{Type: model.TotalTypeShipping, Amount: 500},
		{Type: model.TotalTypeTotal, Amount: 100400},
	}, updated.Totals)
	assert.Equal(t, model.CheckoutStatusReadyForComplete, updated.Status)

	rec = do(t, h, http.MethodPut, "/checkout-sessions/"+created.ID, `{"fulfillment":{"selected_option_id":"ship_drone"}}`)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	rec = do(t, h, http.MethodPost, "/checkout-sessions/"+created.ID+"/complete", `{"payment_data":{"token":""}}`)
	assert.Equal(t, http.StatusPaymentRequired, rec.Code)

	rec = do(t, h, http.MethodPost, "/checkout-sessions/"+created.ID+"/complete", `{"payment_data":{"token":"tok_visa","type":"tokenized_card"}}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	order := decode[model.Order](t, rec)
	assert.Equal(t, created.ID, order.CheckoutID)
	assert.Equal(t, "http://127.0.0.1:8080/orders/"+order.ID, order.PermalinkURL)
	assert.Equal(t, updated.Totals, order.Totals)
	assert.NotNil(t, order.Fulfillment.Events)

	rec = do(t, h, http.MethodPost, "/checkout-sessions/"+created.ID+"/complete", `{"token":"tok_visa"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodGet, "/orders/"+order.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, order.ID, decode[model.Order](t, rec).ID)

	rec = do(t, h, http.MethodGet, "/checkout-sessions/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, model.CheckoutStatusCompleted, decode[model.Checkout](t, rec).Status)
}

func TestNotFound(t *testing.T) {
	h := newTestServer(t)

	for _, tc := range []struct{ method, path, body string }{
		{http.MethodGet, "/checkout-sessions/cs_missing", ""},
		{http.MethodPut, "/checkout-sessions/cs_missing", `{}`},
		{http.MethodPost, "/checkout-sessions/cs_missing/complete", `{"token":"tok"}`},
		{http.MethodGet, "/orders/ord_missing", ""},
	} {
		rec := do(t, h, tc.method, tc.path, tc.body)
		assert.Equal(t, http.StatusNotFound, rec.Code, tc.path)
		assert.Contains(t, rec.Body.String(), `"code":"not_found"`)
	}
}

func TestBadRequests(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodPost, "/checkout-sessions", `{"line_items":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPut, "/checkout-sessions/cs_1", `{"id":"cs_2"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDiscoveryRoutes(t *testing.T) {
	h := newTestServer(t)

	rec := do(t, h, http.MethodGet, "/api/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/products/search?query=case", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":"sku_case"`)
	assert.Contains(t, rec.Body.String(), `"display_price":"29.00"`)

	rec = do(t, h, http.MethodGet, "/products/sku_pixel", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"weight_grams":500`)

	rec = do(t, h, http.MethodGet, "/products/sku_missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/.well-known/ucp", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "dev.ucp.shopping.checkout")

	rec = do(t, h, http.MethodPost, "/mcp", `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "complete_checkout")
}
