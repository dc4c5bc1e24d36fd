package routes

import (
	"cotizapay/internal/adapter/http/handlers"

	"github.com/gin-gonic/gin"
)

const (
	PathQuotes   = "/quotes"
	PathPayments = "/payments"
)

func addQuoteRoutes(rg *gin.RouterGroup, quoteHandler *handlers.QuoteHandler) {
	quotes := rg.Group(PathQuotes)
	{
		quotes.POST("", quoteHandler.CreateQuote)
		quotes.GET("/:id", quoteHandler.GetQuote)
		quotes.PATCH("/:id", quoteHandler.RepriceQuote)
		quotes.POST("/:id/cancel", quoteHandler.CancelQuote)
	}
}

func addPaymentRoutes(rg *gin.RouterGroup, paymentHandler *handlers.PaymentHandler) {
	payments := rg.Group(PathPayments)
	{
		payments.POST("/create", paymentHandler.CreatePayment)
		payments.GET("/:id/status", paymentHandler.GetPaymentStatus)
		payments.POST("/:id/cancel", paymentHandler.CancelPayment)
	}
}
