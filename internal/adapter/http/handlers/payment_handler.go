package handlers

import (
	"errors"
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

var errInvalidPaymentPayload = pkg.NewDomainErrorSimple("INVALID_PAYMENT_INPUT", "Invalid payment payload", http.StatusBadRequest)

// PaymentHandler handles HTTP requests for payments.
//
// Creating a payment also starts a background reconciliation poller for it;
// the status route reuses that poller so concurrent reads coalesce into one
// provider call.

type PaymentHandler struct {
	usecase usecase.IPaymentUseCase
	quotes  usecase.IQuoteUseCase
	poller  *usecase.ReconciliationPoller
}

func NewPaymentHandler(uc usecase.IPaymentUseCase, quotes usecase.IQuoteUseCase, poller *usecase.ReconciliationPoller) *PaymentHandler {
	return &PaymentHandler{usecase: uc, quotes: quotes, poller: poller}
}

func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var payload request.CreatePaymentRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(errInvalidPaymentPayload.HTTPStatus, errInvalidPaymentPayload.ToHTTPError())
		return
	}
	log.Printf("[payment][handler] create start quote_id=%s", payload.QuoteID)

	created, err := h.usecase.CreateForQuote(c.Request.Context(), payload.QuoteID)
	if err != nil {
		log.Printf("[payment][handler] create failed quote_id=%s err=%v", payload.QuoteID, err)
		appErr := mapPaymentError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	h.poller.Start(created.ID,
		func(p entities.Payment) {
			log.Printf("[payment][poller] update payment_id=%s status=%s", p.ID, p.Status)
		},
		func(p entities.Payment) {
			log.Printf("[payment][poller] terminal payment_id=%s status=%s", p.ID, p.Status)
		},
	)
	log.Printf("[payment][handler] create success payment_id=%s quote_id=%s", created.ID, created.QuoteID)

	c.JSON(http.StatusCreated, response.FromPayment(created, time.Now().UTC()))
}

// GetPaymentStatus refreshes against the provider and returns the combined
// payment and quote view. A provider outage degrades to the last persisted
// state with stale=true instead of failing the read.
func (h *PaymentHandler) GetPaymentStatus(c *gin.Context) {
	id := c.Param("id")

	payment, stale, err := h.resolvePayment(c, id)
	if err != nil {
		appErr := mapPaymentError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	quote, err := h.quotes.GetByID(c.Request.Context(), payment.QuoteID)
	if err != nil {
		log.Printf("[payment][handler] status quote lookup failed payment_id=%s quote_id=%s err=%v", id, payment.QuoteID, err)
		appErr := mapPaymentError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	c.JSON(http.StatusOK, response.NewPaymentStatusResponse(payment, quote, stale, time.Now().UTC()))
}

// resolvePayment prefers the live poller so a burst of status reads produces
// a single provider call. Without a live poller (after restart or terminal
// teardown) it refreshes directly.
func (h *PaymentHandler) resolvePayment(c *gin.Context, id string) (entities.Payment, bool, error) {
	payment, refreshed, err := h.poller.RefreshNow(id)
	if errors.Is(err, usecase.ErrNoLivePoller) {
		payment, err = h.usecase.Refresh(c.Request.Context(), id)
	} else if err == nil && !refreshed {
		payment, err = h.usecase.GetByID(c.Request.Context(), id)
	}

	var transient *entities.TransientError
	if errors.As(err, &transient) {
		log.Printf("[payment][handler] status degraded to last known payment_id=%s err=%v", id, err)
		return payment, true, nil
	}
	if err != nil {
		return entities.Payment{}, false, err
	}
	return payment, false, nil
}

func (h *PaymentHandler) CancelPayment(c *gin.Context) {
	id := c.Param("id")
	log.Printf("[payment][handler] cancel start payment_id=%s", id)

	cancelled, err := h.usecase.Cancel(c.Request.Context(), id)
	if err != nil {
		log.Printf("[payment][handler] cancel failed payment_id=%s err=%v", id, err)
		appErr := mapPaymentError(err)
		c.JSON(appErr.HTTPStatus, appErr.ToHTTPError())
		return
	}

	h.poller.Stop(id)
	log.Printf("[payment][handler] cancel success payment_id=%s", id)

	c.JSON(http.StatusOK, response.FromPayment(cancelled, time.Now().UTC()))
}

func mapPaymentError(err error) *pkg.AppError {
	var validation *entities.ValidationError
	var precondition *entities.PreconditionError
	switch {
	case errors.As(err, &validation):
		return pkg.NewDomainErrorSimple("INVALID_REQUEST", "Invalid request", http.StatusBadRequest)
	case errors.As(err, &precondition):
		return pkg.NewDomainErrorSimple("PAYMENT_PRECONDITION_FAILED", precondition.Reason, http.StatusConflict)
	case errors.Is(err, usecase.ErrInvalidPaymentID):
		return pkg.NewDomainErrorSimple("INVALID_REQUEST", "Invalid request", http.StatusBadRequest)
	case errors.Is(err, usecase.ErrPaymentNotFound):
		return pkg.NewDomainErrorSimple("PAYMENT_NOT_FOUND", "Payment not found", http.StatusNotFound)
	case errors.Is(err, usecase.ErrQuoteNotFound):
		return pkg.NewDomainErrorSimple("QUOTE_NOT_FOUND", "Quote not found", http.StatusNotFound)
	default:
		return pkg.NewDomainError("INTERNAL_ERROR", "An internal error occurred", err, http.StatusInternalServerError)
	}
}
