package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"nextgen-training/internal/core/auth"
	"nextgen-training/internal/core/config"
	"nextgen-training/internal/core/database"
	"nextgen-training/internal/core/logger"
	"nextgen-training/internal/core/server"
	"nextgen-training/internal/gateway"
	"nextgen-training/internal/payment"
	"nextgen-training/internal/repo"
	"nextgen-training/internal/service"
	"nextgen-training/internal/transport/http/handler"
	mdw "nextgen-training/internal/transport/http/middleware"
	"nextgen-training/internal/transport/http/router"
	"nextgen-training/internal/transport/ws"
	"nextgen-training/pkg/utils"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		boot, _ := logger.New("info", false)
		boot.Fatal("load config", zap.Error(err))
	}
	log, cleanup := logger.FromConfig(cfg.Log, cfg.App)
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()

	// 数据库（失败直接 Fatal）
	db, err := database.NewGorm(database.FromConfig(cfg.DB), log)
	if err != nil {
		log.Fatal("db open", zap.Error(err))
	}
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))
	if cfg.DB.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}

	// 依赖
	jwter := &auth.JWTer{Secret: []byte(cfg.JWT.Secret), Issuer: cfg.JWT.Issuer, TTL: cfg.JWT.TTL()}
	userSvc := service.NewUserService(
		repo.NewUserRepo(db),
		utils.NewBcryptHasher(cfg.Bcrypt.Cost),
		jwter,
		log.Named("user"),
	)

	payments := payment.NewRegistry(payment.NewStripe(), payment.NewPaypal())
	if err := payments.SetDefault(cfg.Payment.Provider); err != nil {
		log.Fatal("payment provider", zap.Error(err))
	}

	events := ws.NewGateway(gateway.NewDefaultRouter(), ws.Options{
		QueueSize: cfg.WS.QueueSize,
		MaxConns:  cfg.WS.MaxConns,
	}, log.Named("ws"))

	// 指标
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	mods := router.NewModules(
		handler.NewUserHandler(userSvc),
		handler.NewPaymentHandler(payments, log.Named("payment")),
		events,
	)
	r := router.NewAPIEngine(log, router.Options{
		Mode:         cfg.App.Mode,
		RPS:          cfg.Limits.RPS,
		Burst:        cfg.Limits.Burst,
		Concurrency:  cfg.Limits.Concurrency,
		MaxBodyBytes: cfg.Limits.MaxBodyBytes,
		Timeout:      time.Duration(cfg.Limits.TimeoutSec) * time.Second,
		Metrics:      mdw.NewMetrics(reg, "user_api"),
		Gatherer:     reg,
	}, mods)

	// HTTP Server
	h := cfg.App.HTTP
	addr := server.Addr(h.Host, h.Port)
	srv := server.BuildServer(addr, r,
		time.Duration(h.ReadTimeoutSec)*time.Second,
		time.Duration(h.WriteTimeoutSec)*time.Second,
		time.Duration(h.IdleTimeoutSec)*time.Second,
	)

	baseURL := server.HumanURL(h.Host, h.Port)
	log.Info("user api starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("api_v1", baseURL+"/api/v1"),
		zap.Strings("payment_providers", payments.Names()),
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("user api start FAILED", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn("shutdown", zap.Error(err))
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("user api stopped gracefully")
}
