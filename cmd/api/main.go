package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/bazarly/bazarly-backend/internal/api"
	"github.com/bazarly/bazarly-backend/internal/catalog"
	"github.com/bazarly/bazarly-backend/internal/domain"
	"github.com/bazarly/bazarly-backend/internal/inventory"
	"github.com/bazarly/bazarly-backend/internal/messaging"
	"github.com/bazarly/bazarly-backend/internal/orders"
	"github.com/bazarly/bazarly-backend/internal/payment"
	"github.com/bazarly/bazarly-backend/internal/telemetry"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	postgresURL := os.Getenv("POSTGRES_URL")
	if postgresURL == "" {
		logger.Error("POSTGRES_URL environment variable is required")
		os.Exit(1)
	}

	tel, err := telemetry.Init(ctx, "bazarly-api", "0.1.0")
	if err != nil {
		logger.Error("failed to initialize telemetry", "error", err)
		os.Exit(1)
	}
	defer func() { _ = tel.Shutdown(ctx) }()

	db, err := telemetry.Connect(ctx, postgresURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	var placedProducer, settledProducer *messaging.Producer
	if kafkaBrokers := os.Getenv("KAFKA_BROKERS"); kafkaBrokers != "" {
		brokers := strings.Split(kafkaBrokers, ",")
		placedProducer = messaging.NewProducer(brokers, messaging.TopicOrderPlaced)
		defer func() { _ = placedProducer.Close() }()
		settledProducer = messaging.NewProducer(brokers, messaging.TopicPaymentSettled)
		defer func() { _ = settledProducer.Close() }()
	}

	gatewayClient := &http.Client{
		Timeout:   15 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}

	callbackBase := envOr("CALLBACK_BASE_URL", "http://localhost:8080")
	registry := payment.NewRegistry()
	registry.Register(domain.PaymentMethodSSLCommerz, payment.NewSSLCommerz(payment.SSLCommerzConfig{
		BaseURL:       envOr("SSLCOMMERZ_BASE_URL", "https://sandbox.sslcommerz.com/gwprocess/v4/api.php"),
		StoreID:       envOr("SSLCOMMERZ_STORE_ID", "testbox"),
		StorePassword: envOr("SSLCOMMERZ_STORE_PASSWORD", "qwerty"),
		SuccessURL:    callbackBase + "/api/payment/payment-success",
		FailURL:       callbackBase + "/api/payment/payment-fail",
		CancelURL:     callbackBase + "/api/payment/payment-cancel",
		IPNURL:        callbackBase + "/api/payment/payment-success",
	}, gatewayClient))
	registry.Register(domain.PaymentMethodAmarPay, payment.NewAmarPay(payment.AmarPayConfig{
		BaseURL:      envOr("AMARPAY_BASE_URL", "https://sandbox.aamarpay.com/jsonpost.php"),
		StoreID:      envOr("AMARPAY_STORE_ID", "aamarpaytest"),
		SignatureKey: envOr("AMARPAY_SIGNATURE_KEY", "dbb74894e82415a2f7ff0ec3a97e4183"),
		SuccessURL:   callbackBase + "/api/payment/payment-success",
		FailURL:      callbackBase + "/api/payment/payment-fail",
		CancelURL:    callbackBase + "/api/payment/payment-cancel",
	}, gatewayClient))

	metrics, err := telemetry.NewPaymentMetrics()
	if err != nil {
		logger.Error("failed to create payment metrics", "error", err)
		os.Exit(1)
	}

	ledger := inventory.NewLedger(db)
	orderRepo := orders.NewRepository(db, ledger)
	productRepo := catalog.NewRepository(db)

	paymentService := payment.NewService(registry, orderRepo, ledger, eventPublisher(placedProducer), eventPublisher(settledProducer), metrics, logger)
	paymentHandler := payment.NewHandler(paymentService, logger)
	orderHandler := orders.NewHandler(orderRepo, logger)
	stockHandler := inventory.NewHandler(ledger, logger)
	productHandler := catalog.NewHandler(productRepo, logger)

	mux := http.NewServeMux()
	route := func(pattern string, h http.HandlerFunc) {
		mux.HandleFunc(pattern, telemetry.WithHTTPRoute(h))
	}

	route("POST /api/payment/create-payment", paymentHandler.HandleCreatePayment)
	route("POST /api/payment/payment-success", paymentHandler.HandlePaymentSuccess)
	route("POST /api/payment/payment-fail", paymentHandler.HandlePaymentFail)
	route("POST /api/payment/payment-cancel", paymentHandler.HandlePaymentCancel)

	route("GET /api/order", orderHandler.HandleList)
	route("GET /api/order/{id}", orderHandler.HandleGet)
	route("PATCH /api/order/{id}", orderHandler.HandleUpdate)
	route("DELETE /api/order/{id}", orderHandler.HandleDelete)

	route("GET /api/stock", stockHandler.HandleListStock)
	route("GET /api/stock/{productId}", stockHandler.HandleGetStock)

	route("GET /api/product", productHandler.HandleList)
	route("POST /api/product", productHandler.HandleCreate)
	route("GET /api/product/{id}", productHandler.HandleGet)
	route("PATCH /api/product/{id}", productHandler.HandleUpdate)
	route("DELETE /api/product/{id}", productHandler.HandleDelete)

	mux.Handle("GET /metrics", tel.MetricsHandler)
	mux.Handle("/", api.NotFoundHandler())

	port := envOr("PORT", "8080")

	server := &http.Server{
		Addr: ":" + port,
		Handler: otelhttp.NewHandler(mux, "bazarly-api",
			otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
				if r.Pattern != "" {
					return r.Pattern
				}
				return r.Method + " " + r.URL.Path
			}),
		),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		logger.Info("starting api service", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// eventPublisher keeps a nil *Producer from becoming a non-nil interface.
func eventPublisher(p *messaging.Producer) payment.EventPublisher {
	if p == nil {
		return nil
	}
	return p
}
