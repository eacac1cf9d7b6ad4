package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/lojasmm/wabuttons/internal/buttons"
	"github.com/lojasmm/wabuttons/internal/config"
	"github.com/lojasmm/wabuttons/internal/logger"
	"github.com/lojasmm/wabuttons/internal/server"
	"github.com/lojasmm/wabuttons/internal/store"
	"github.com/lojasmm/wabuttons/internal/whatsapp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("info", false).Fatalf("config: %v", err)
	}
	log := logger.New(cfg.LogLevel, cfg.LogJSON)

	db, err := store.NewBoltStore(filepath.Join(cfg.DataDir, "wabuttons.db"))
	if err != nil {
		log.Fatalf("store: %v", err)
	}
	defer db.Close()

	creds := buttons.Credentials{APIKey: cfg.WAAPIKey, PhoneNumberID: cfg.WAPhoneNumberID}
	waClient := buttons.NewClient(cfg.WAGraphBaseURL, creds,
		whatsapp.WithHTTPClient(&http.Client{Timeout: cfg.WAHTTPTimeout}),
		whatsapp.WithLogger(log),
	)
	executor := buttons.NewExecutor(waClient, log)

	handler := server.NewHandler(executor, db, log)
	webhookHandler := whatsapp.NewWebhookHandler(cfg.WAVerifyToken, handler.RecordReply, log)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      server.NewRouter(handler, webhookHandler, log),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infof("wabuttons: listening on :%s", cfg.Port)
		log.Infof("wabuttons: webhook verify token = %s", cfg.WAVerifyToken)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("wabuttons: shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("shutdown: %v", err)
	}
	log.Info("wabuttons: stopped")
}
