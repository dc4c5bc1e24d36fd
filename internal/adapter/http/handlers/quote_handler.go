package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	request "cotizapay/internal/adapter/http/dto/request"
	response "cotizapay/internal/adapter/http/dto/response"
	"cotizapay/internal/domain/entities"
	"cotizapay/internal/usecase"
	"cotizapay/pkg"

	"github.com/gin-gonic/gin"
)

var errInvalidQuotePayload = pkg.NewDomainErrorSimple("INVALID_QUOTE_INPUT", "Invalid quote payload", http.StatusBadRequest)

// QuoteHandler handles HTTP requests for quotes.

type QuoteHandler struct {
	usecase usecase.IQuoteUseCase
}

func NewQuoteHandler(uc usecase.IQuoteUseCase) *QuoteHandler {
	return &QuoteHandler{usecase: uc}
}

func (h *QuoteHandler) CreateQuote(c *gin.Context) {
	var payload request.CreateQuoteRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidQuotePayload.HTTPStatus, errInvalidQuotePayload.ToHTTPError())
		return
	}

	quote, err := h.usecase.CreateQuote(c.Request.Context(), payload.ToInput())
	if err != nil {
		appErr := mapQuoteError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	log.Printf("[quote][handler] create success quote_id=%s total=%d", quote.ID, quote.Total)

	c.JSON(http.StatusCreated, response.FromQuote(quote, time.Now().UTC()))
}

func (h *QuoteHandler) GetQuote(c *gin.Context) {
	id := c.Param("id")

	quote, err := h.usecase.GetByID(c.Request.Context(), id)
	if err != nil {
		appErr := mapQuoteError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.FromQuote(quote, time.Now().UTC()))
}

func (h *QuoteHandler) RepriceQuote(c *gin.Context) {
	id := c.Param("id")

	var payload request.RepriceQuoteRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidQuotePayload.HTTPStatus, errInvalidQuotePayload.ToHTTPError())
		return
	}

	quote, err := h.usecase.Reprice(c.Request.Context(), id, payload.ToItemInputs(), payload.DiscountPct, payload.TaxPct)
	if err != nil {
		appErr := mapQuoteError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	log.Printf("[quote][handler] reprice success quote_id=%s total=%d", quote.ID, quote.Total)

	c.JSON(http.StatusOK, response.FromQuote(quote, time.Now().UTC()))
}

func (h *QuoteHandler) CancelQuote(c *gin.Context) {
	id := c.Param("id")

	quote, err := h.usecase.CancelQuote(c.Request.Context(), id)
	if err != nil {
		appErr := mapQuoteError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}
	log.Printf("[quote][handler] cancel success quote_id=%s", quote.ID)

	c.JSON(http.StatusOK, response.FromQuote(quote, time.Now().UTC()))
}

func mapQuoteError(err error) *pkg.AppError {
	var validation *entities.ValidationError
	var precondition *entities.PreconditionError
	switch {
	case errors.As(err, &validation):
		return pkg.NewDomainErrorSimple("INVALID_REQUEST", fmt.Sprintf("%s %s", validation.Field, validation.Reason), http.StatusBadRequest)
	case errors.As(err, &precondition):
		return pkg.NewDomainErrorSimple("QUOTE_NOT_PAYABLE", precondition.Reason, http.StatusConflict)
	case errors.Is(err, usecase.ErrInvalidQuoteID):
		return pkg.NewDomainErrorSimple("INVALID_REQUEST", "Invalid request", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrQuoteNotFound):
		return pkg.NewDomainErrorSimple("QUOTE_NOT_FOUND", "Quote not found", http.StatusNotFound)
	default:
		return pkg.NewDomainError("INTERNAL_ERROR", "An internal error occurred", err, http.StatusInternalServerError)
	}
}
