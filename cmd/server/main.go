package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"wellbeing/internal/app"
	"wellbeing/internal/config"
	"wellbeing/internal/logger"
	"wellbeing/internal/transport/rest"
	"wellbeing/internal/transport/ws"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg.LogMode)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx := context.Background()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal("Failed to open history store", "driver", cfg.Store.Driver, "error", err)
	}
	defer a.Close()

	// Initialize WebSocket hub
	wsHub := ws.NewHub(log)
	defer wsHub.Close()

	// Inject broadcaster (wsHub implements service.Broadcaster)
	a.History.SetBroadcaster(wsHub)

	router := rest.NewRouter(&rest.Container{
		AuthService:      a.Auth,
		HistoryService:   a.History,
		DashboardService: a.Dashboard,
		WSHub:            wsHub,
		Server:           cfg.Server,
		Analytics:        cfg.Analytics,
		Logger:           log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Server.Port, "store", cfg.Store.Driver, "admin", cfg.Auth.Username)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("ListenAndServe failed", "error", err)
		}
	}()

	// Wait for interrupt
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", "error", err)
	}

	log.Info("Server exited")
}
