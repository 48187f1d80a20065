package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/billyapp/billy/internal/config"
	"github.com/billyapp/billy/internal/metrics"
	"github.com/billyapp/billy/internal/router"
	"github.com/billyapp/billy/internal/service"
	"github.com/billyapp/billy/internal/session"
	"github.com/billyapp/billy/internal/storage/sqlite"
	"github.com/billyapp/billy/pkg/logging"
)

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func main() {
	cfg, err := config.Load(getEnv("BILLY_CONFIG", ""))
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Log.Level)

	store, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		slog.Error("failed to initialize storage", "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("storage initialized", "database", cfg.Database.Path)

	bills := session.NewManager()
	bills.OnCountChange(func(n int) { metrics.ActiveBills.Set(float64(n)) })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	bills.StartJanitor(ctx, time.Duration(cfg.Session.TTLMinutes)*time.Minute)

	ledgerSvc := service.NewLedgerService(store, bills)
	billSvc := service.NewBillService(bills)

	engine := router.Setup(cfg, ledgerSvc, billSvc)

	// Wrap with h2c so HTTP/2 works without TLS behind a terminating proxy.
	h2cHandler := h2c.NewHandler(engine, &http2.Server{})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	slog.Info("server starting", "address", addr)
	if err := http.ListenAndServe(addr, h2cHandler); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
