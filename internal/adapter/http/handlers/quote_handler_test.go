package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cotizapay/internal/adapter/http/handlers/mocks"
	"cotizapay/internal/domain/entities"
	"cotizapay/internal/usecase"

	"github.com/gin-gonic/gin"
	"go.uber.org/mock/gomock"
)

func TestQuoteHandler_CreateQuote(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("invalid json", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIQuoteUseCase(ctrl)
		h := NewQuoteHandler(uc)

		r := gin.New()
		r.POST("/v1/quotes", h.CreateQuote)

		req := httptest.NewRequest(http.MethodPost, "/v1/quotes", bytes.NewBufferString("{"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("validation error from usecase", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIQuoteUseCase(ctrl)
		uc.EXPECT().CreateQuote(gomock.Any(), gomock.Any()).
			Return(entities.Quote{}, &entities.ValidationError{Field: "items[0].quantity", Reason: "must be positive"})
		h := NewQuoteHandler(uc)

		r := gin.New()
		r.POST("/v1/quotes", h.CreateQuote)

		body := `{"customer":{"name":"Ana"},"items":[{"product_name":"Widget","unit_price":1000,"quantity":-1}]}`
		req := httptest.NewRequest(http.MethodPost, "/v1/quotes", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", w.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		now := time.Now().UTC()
		uc := mocks.NewMockIQuoteUseCase(ctrl)
		uc.EXPECT().CreateQuote(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ any, in usecase.CreateQuoteInput) (entities.Quote, error) {
				if in.Customer.Name != "Ana" || len(in.Items) != 2 {
					t.Fatalf("unexpected input: %+v", in)
				}
				return entities.Quote{
					ID:        "q-1",
					Customer:  in.Customer,
					Status:    entities.QuoteStatusPending,
					Subtotal:  2500,
					Total:     2723,
					ExpiresAt: now.Add(7 * 24 * time.Hour),
				}, nil
			})
		h := NewQuoteHandler(uc)

		r := gin.New()
		r.POST("/v1/quotes", h.CreateQuote)

		body := `{"customer":{"name":"Ana"},"items":[{"product_name":"Widget","unit_price":1000,"quantity":2},{"product_name":"Gadget","unit_price":500,"quantity":1}],"discount_pct":10,"tax_pct":21}`
		req := httptest.NewRequest(http.MethodPost, "/v1/quotes", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d body=%s", w.Code, w.Body.String())
		}
		var got map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
			t.Fatalf("invalid response body: %v", err)
		}
		if got["id"] != "q-1" || got["total"] != float64(2723) {
			t.Fatalf("unexpected body: %v", got)
		}
	})
}

func TestQuoteHandler_GetQuote(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("not found", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIQuoteUseCase(ctrl)
		uc.EXPECT().GetByID(gomock.Any(), "missing").Return(entities.Quote{}, usecase.ErrQuoteNotFound)
		h := NewQuoteHandler(uc)

		r := gin.New()
		r.GET("/v1/quotes/:id", h.GetQuote)

		req := httptest.NewRequest(http.MethodGet, "/v1/quotes/missing", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	})

	t.Run("expired quote reads expired", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIQuoteUseCase(ctrl)
		uc.EXPECT().GetByID(gomock.Any(), "q-1").Return(entities.Quote{
			ID:        "q-1",
			Status:    entities.QuoteStatusPending,
			ExpiresAt: time.Now().UTC().Add(-time.Hour),
		}, nil)
		h := NewQuoteHandler(uc)

		r := gin.New()
		r.GET("/v1/quotes/:id", h.GetQuote)

		req := httptest.NewRequest(http.MethodGet, "/v1/quotes/q-1", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var got map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
			t.Fatalf("invalid response body: %v", err)
		}
		if got["status"] != "expired" || got["expired"] != true {
			t.Fatalf("expected derived expired view, got %v", got)
		}
	})
}

func TestQuoteHandler_RepriceQuote(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("precondition maps to conflict", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		defer ctrl.Finish()
		uc := mocks.NewMockIQuoteUseCase(ctrl)
		uc.EXPECT().Reprice(gomock.Any(), "q-1", gomock.Any(), 0.0, 10.0).
			Return(entities.Quote{}, &entities.PreconditionError{Reason: "quote is not pending"})
		h := NewQuoteHandler(uc)

		r := gin.New()
		r.PATCH("/v1/quotes/:id", h.RepriceQuote)

		body := `{"items":[{"product_name":"Widget","unit_price":2000,"quantity":1}],"tax_pct":10}`
		req := httptest.NewRequest(http.MethodPatch, "/v1/quotes/q-1", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusConflict {
			t.Fatalf("expected 409, got %d", w.Code)
		}
	})
}

func TestQuoteHandler_CancelQuote(t *testing.T) {
	gin.SetMode(gin.TestMode)

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	uc := mocks.NewMockIQuoteUseCase(ctrl)
	uc.EXPECT().CancelQuote(gomock.Any(), "q-1").Return(entities.Quote{
		ID:        "q-1",
		Status:    entities.QuoteStatusCancelled,
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}, nil)
	h := NewQuoteHandler(uc)

	r := gin.New()
	r.POST("/v1/quotes/:id/cancel", h.CancelQuote)

	req := httptest.NewRequest(http.MethodPost, "/v1/quotes/q-1/cancel", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestMapQuoteError(t *testing.T) {
	if got := mapQuoteError(usecase.ErrInvalidQuoteID); got.HTTPStatus != http.StatusBadRequest {
		t.Fatalf("invalid id expected 400 got %d", got.HTTPStatus)
	}
	if got := mapQuoteError(usecase.ErrQuoteNotFound); got.HTTPStatus != http.StatusNotFound {
		t.Fatalf("not found expected 404 got %d", got.HTTPStatus)
	}
	if got := mapQuoteError(&entities.ValidationError{Field: "tax_pct", Reason: "must be between 0 and 100"}); got.HTTPStatus != http.StatusBadRequest {
		t.Fatalf("validation expected 400 got %d", got.HTTPStatus)
	}
	if got := mapQuoteError(&entities.PreconditionError{Reason: "quote is not pending"}); got.HTTPStatus != http.StatusConflict {
		t.Fatalf("precondition expected 409 got %d", got.HTTPStatus)
	}
	if got := mapQuoteError(errors.New("x")); got.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("unknown expected 500 got %d", got.HTTPStatus)
	}
}
