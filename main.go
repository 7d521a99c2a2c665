package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	config "github.com/Keoroanthony/farmmarket/configs"
	"github.com/Keoroanthony/farmmarket/internal/auth"
	"github.com/Keoroanthony/farmmarket/internal/cart"
	"github.com/Keoroanthony/farmmarket/internal/catalog"
	"github.com/Keoroanthony/farmmarket/internal/db"
	"github.com/Keoroanthony/farmmarket/internal/handlers"
	"github.com/Keoroanthony/farmmarket/internal/logger"
	"github.com/Keoroanthony/farmmarket/internal/metrics"
	"github.com/Keoroanthony/farmmarket/internal/middleware"
	"github.com/Keoroanthony/farmmarket/internal/notifier"
	"github.com/Keoroanthony/farmmarket/internal/orders"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	zlog, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	conn, err := db.Open(cfg.Database, zlog)
	if err != nil {
		zlog.Fatal("database", zap.Error(err))
	}
	if err := db.Migrate(conn); err != nil {
		zlog.Fatal("database", zap.Error(err))
	}

	authenticator, err := auth.New(ctx, cfg.OIDC, conn, zlog)
	if err != nil {
		zlog.Fatal("auth", zap.Error(err))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	dispatcher, closeNotifiers := buildNotifiers(ctx, cfg, zlog)

	pricing := orders.Pricing{Shipping: cfg.Pricing.Shipping, TaxRate: cfg.Pricing.TaxRate}
	policy := orders.TrustCaller
	if cfg.Pricing.VerifyTotals {
		policy = orders.VerifyTotal
	}

	cartSvc := cart.NewService(conn)
	engine := orders.NewEngine(conn, catalog.Lookup{}, cartSvc, zlog).
		WithTotalPolicy(policy, pricing).
		WithMetrics(m).
		WithListener(dispatcher)
	h := handlers.New(conn, engine, orders.NewQueryService(conn, zlog), cartSvc, pricing, zlog)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), logger.RequestLogger(zlog), m.Middleware())

	// ── session store ──
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	r.Use(sessions.Sessions(auth.SessionName, store))

	// ── public endpoints ──
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(metrics.Handler(reg)))
	r.GET("/auth/login", authenticator.Login)
	r.GET("/auth/callback", authenticator.Callback)
	r.POST("/auth/logout", auth.Logout)

	// ── protected API ──
	limiter := middleware.PerMinute(cfg.CheckoutRate.PerMinute, cfg.CheckoutRate.Burst)
	h.Routes(r, limiter.Middleware(middleware.UserKey(auth.ContextUserID)))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		zlog.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zlog.Fatal("server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	zlog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zlog.Error("server shutdown", zap.Error(err))
	}

	dispatcher.Wait()
	closeNotifiers()

	if sqlDB, err := conn.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// buildNotifiers enables each channel whose settings are present.
func buildNotifiers(ctx context.Context, cfg *config.Config, zlog *zap.Logger) (*notifier.Dispatcher, func()) {
	var (
		channels []notifier.Notifier
		closers  []func() error
	)

	if cfg.AfricaTalking.APIKey != "" {
		channels = append(channels, notifier.NewSMSNotifier(cfg.AfricaTalking, &http.Client{Timeout: 10 * time.Second}))
	}

	if cfg.Email.SenderEmail != "" {
		email, err := notifier.NewEmailNotifier(ctx, cfg.Email)
		if err != nil {
			zlog.Warn("email notifications disabled", zap.Error(err))
		} else {
			channels = append(channels, email)
		}
	}

	if len(cfg.Kafka.Brokers) > 0 {
		publisher := notifier.NewEventPublisher(notifier.NewKafkaWriter(cfg.Kafka))
		channels = append(channels, publisher)
		closers = append(closers, publisher.Close)
	}

	names := make([]string, 0, len(channels))
	for _, n := range channels {
		names = append(names, n.Name())
	}
	zlog.Info("order notifications", zap.Strings("channels", names))

	return notifier.NewDispatcher(zlog, channels...), func() {
		for _, closeFn := range closers {
			if err := closeFn(); err != nil {
				zlog.Warn("close notifier", zap.Error(err))
			}
		}
	}
}
