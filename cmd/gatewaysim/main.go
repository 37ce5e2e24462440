package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bazarly/bazarly-backend/internal/gatewaysim"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8085"
	}

	pageURL := os.Getenv("PAGE_URL")
	if pageURL == "" {
		pageURL = "http://localhost:" + port
	}

	handler := gatewaysim.NewHandler(pageURL, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /gwprocess/v4/api.php", handler.HandleSSLCommerzInit)
	mux.HandleFunc("POST /jsonpost.php", handler.HandleAmarPayInit)

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("starting gateway simulator", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
