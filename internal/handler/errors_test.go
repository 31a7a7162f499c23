package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"ucp-merchant-demo/internal/checkout"
	"ucp-merchant-demo/internal/repository"
)

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("get session x: %w", checkout.ErrSessionNotFound), http.StatusNotFound, "not_found"},
		{fmt.Errorf("find order x: %w", repository.ErrOrderNotFound), http.StatusNotFound, "not_found"},
		{fmt.Errorf("find product x: %w", repository.ErrProductNotFound), http.StatusNotFound, "not_found"},
		{fmt.Errorf("complete x: %w", checkout.ErrPaymentRejected), http.StatusPaymentRequired, "payment_rejected"},
		{fmt.Errorf("complete x: %w", checkout.ErrSessionAlreadyCompleted), http.StatusConflict, "already_completed"},
		{fmt.Errorf("update x: %w", repository.ErrVersionConflict), http.StatusConflict, "conflict"},
		{fmt.Errorf("select %q: %w", "x", checkout.ErrInvalidSelection), http.StatusUnprocessableEntity, "invalid_selection"},
		{fmt.Errorf("complete x: %w", repository.ErrIdempotencyKeyReused), http.StatusUnprocessableEntity, "idempotency_key_reused"},
		{echo.NewHTTPError(http.StatusBadRequest, "invalid req body"), http.StatusBadRequest, "bad_request"},
		{echo.ErrNotFound, http.StatusNotFound, "not_found"},
		{errors.New("disk on fire"), http.StatusInternalServerError, "internal"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			status, code := errorStatus(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, code)
		})
	}
}

func TestHTTPErrorHandler_HidesInternalErrors(t *testing.T) {
	e := echo.New()
	e.HTTPErrorHandler = NewHTTPErrorHandler(zap.NewNop())
	e.GET("/boom", func(c echo.Context) error { return errors.New("dsn=secret") })

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/boom", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret")
	assert.JSONEq(t, `{"code":"internal","message":"Internal Server Error"}`, rec.Body.String())
}
