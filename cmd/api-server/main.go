package main

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pmstandards/internal/auth"
	"pmstandards/internal/catalog"
	"pmstandards/internal/metrics"
	"pmstandards/internal/standards"
	"pmstandards/internal/store"
	"pmstandards/internal/store/memory"
	sqlitestore "pmstandards/internal/store/sqlite"
	synchub "pmstandards/internal/sync"
	"pmstandards/pkg/database"
	"pmstandards/pkg/logger"
	"pmstandards/pkg/utils"
)

func main() {
	cfg, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger.Init(os.Stdout, logger.ParseLevel(cfg.LogLevel))
	gin.SetMode(cfg.GinMode)

	var (
		st     store.Store
		db     *sql.DB
		dbPath string
	)
	switch cfg.Store {
	case utils.StoreMemory:
		st = memory.New()
	default:
		dbCfg := database.DefaultConfig()
		dbPath = dbCfg.Path
		db = database.MustOpen(dbCfg)
		defer db.Close()
		if err := database.Migrate(db); err != nil {
			log.Fatalf("db migrate failed: %v", err)
		}
		st = sqlitestore.New(db)
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	hub := synchub.NewHub()
	cat := catalog.New(st, catalog.Sources{
		StandardsPath:   cfg.StandardsCSV,
		ComparisonsPath: cfg.ComparisonsCSV,
	}, catalog.WithNotifier(hub), catalog.WithMetrics(m))

	// a missing or broken CSV is not fatal: the sqlite store may still hold
	// the previous load, and POST /api/reload can retry
	if _, err := cat.Reload(context.Background()); err != nil {
		slog.Warn("initial load incomplete", "error", err)
	}

	router := standards.NewEngine(gin.Recovery(), m.Middleware())

	// Optional: avoid “trusted all proxies” warning
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	router.GET("/ws", synchub.WSHandler(hub))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "store": cfg.Store})
	})

	router.GET("/ready", func(c *gin.Context) {
		stats := hub.Stats()
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		if db != nil {
			if err := db.PingContext(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":      "not_ready",
					"db_error":    err.Error(),
					"tcp_clients": stats.TCPClients,
					"ws_clients":  stats.WSClients,
				})
				return
			}
		}

		loaded, err := cat.Store().Status(ctx)
		if err != nil || len(loaded) == 0 {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":      "not_ready",
				"data":        "not loaded",
				"tcp_clients": stats.TCPClients,
				"ws_clients":  stats.WSClients,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":      "ready",
			"data":        loaded,
			"tcp_clients": stats.TCPClients,
			"ws_clients":  stats.WSClients,
		})
	})

	router.GET("/debug", func(c *gin.Context) {
		stats := hub.Stats()
		report, _ := cat.LastReport()
		last, _ := hub.Last()
		c.JSON(http.StatusOK, gin.H{
			"store":        cfg.Store,
			"db":           dbPath,
			"sources":      cat.Sources(),
			"index_tokens": cat.Index().Len(),
			"last_reload":  report,
			"last_event":   last,
			"tcp_clients":  stats.TCPClients,
			"ws_clients":   stats.WSClients,
		})
	})

	tokenSvc := auth.TokenService{
		Secret:   []byte(cfg.Auth.JWTSecret),
		Issuer:   cfg.Auth.JWTIssuer,
		Duration: cfg.Auth.JWTDuration,
	}

	api := router.Group("/api")
	h := standards.NewHandler(cat, m)
	h.RegisterRoutes(api)
	h.RegisterAdminRoutes(api.Group("", auth.AdminMiddleware(tokenSvc)))

	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	errCh := make(chan error, 2)
	var wg sync.WaitGroup

	var tcpSrv *synchub.Server
	if cfg.SyncAddr != "" {
		tcpSrv = synchub.NewServer(cfg.SyncAddr, hub)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := tcpSrv.Run(); err != nil {
				errCh <- err
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		slog.Info("HTTP API server listening", "addr", cfg.HTTPAddr, "store", cfg.Store)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		slog.Info("shutdown signal received", "signal", sig.String())
	case err := <-errCh:
		slog.Error("server error", "error", err)
	}

	slog.Info("shutting down servers")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http shutdown error", "error", err)
	}
	if tcpSrv != nil {
		if err := tcpSrv.Close(); err != nil {
			slog.Error("tcp shutdown error", "error", err)
		}
	}

	wg.Wait()
	slog.Info("servers stopped")
}
