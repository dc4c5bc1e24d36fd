package routes

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	_ "cotizapay/docs" // This will be auto-generated
	"cotizapay/internal/adapter/http/handlers"
	"cotizapay/internal/adapter/persistence/repository"
	"cotizapay/internal/infrastructure/config"
	"cotizapay/internal/infrastructure/database"
	"cotizapay/internal/infrastructure/payments"
	"cotizapay/internal/usecase"

	"github.com/facebookgo/clock"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

var router = gin.Default()

// Run wires the application together and serves HTTP until SIGINT/SIGTERM.
func Run() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setMiddlewares()

	// Swagger documentation endpoint
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	poller := getRoutes(cfg)

	srv := &http.Server{
		Addr:    ":" + cfg.HTTP.Port,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to startup the application: %v", err)
		}
	}()
	log.Printf("[http] listening on :%s", cfg.HTTP.Port)

	<-ctx.Done()
	log.Printf("[http] shutdown started")

	poller.StopAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[http] shutdown error: %v", err)
	}
	log.Printf("[http] shutdown complete")
}

func getRoutes(cfg config.Config) *usecase.ReconciliationPoller {
	ddb := database.ConnectDynamoDB(cfg.AWS)
	clk := clock.New()

	quoteRepo := repository.NewQuoteDynamoRepository(ddb)
	paymentRepo := repository.NewPaymentDynamoRepository(ddb)

	quoteUseCase := usecase.NewQuoteUseCase(quoteRepo, cfg.Settlement.QuoteValidity)

	gateway, err := payments.NewMercadoPagoGateway(cfg.MercadoPago, cfg.Settlement, clk)
	if err != nil {
		log.Fatalf("Mercado Pago gateway not configured: %v", err)
	}

	paymentUseCase := usecase.NewPaymentUseCase(paymentRepo, quoteRepo, gateway)
	poller := usecase.NewReconciliationPoller(paymentUseCase, clk, cfg.Settlement.PollInterval)

	quoteHandler := handlers.NewQuoteHandler(quoteUseCase)
	paymentHandler := handlers.NewPaymentHandler(paymentUseCase, quoteUseCase, poller)

	v1 := router.Group("/v1")
	addPingRoutes(v1)
	addQuoteRoutes(v1, quoteHandler)
	addPaymentRoutes(v1, paymentHandler)

	return poller
}

func setMiddlewares() {
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(gin.CustomRecovery(func(c *gin.Context, recovered interface{}) {
		log.Printf("Recovered from panic: %v", recovered)
		c.AbortWithStatus(500)
	}))
}
