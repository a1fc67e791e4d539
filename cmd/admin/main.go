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
	"go.uber.org/zap"

	"nextgen-training/internal/core/auth"
	"nextgen-training/internal/core/config"
	"nextgen-training/internal/core/database"
	"nextgen-training/internal/core/logger"
	"nextgen-training/internal/core/server"
	"nextgen-training/internal/repo"
	"nextgen-training/internal/service"
	"nextgen-training/internal/transport/http/handler"
	mdw "nextgen-training/internal/transport/http/middleware"
	"nextgen-training/internal/transport/http/router"
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
	log = log.With(zap.String("surface", "admin"))
	defer cleanup()

	db, err := database.NewGorm(database.FromConfig(cfg.DB), log)
	if err != nil {
		log.Fatal("db open", zap.Error(err))
	}
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	jwter := &auth.JWTer{Secret: []byte(cfg.JWT.Secret), Issuer: cfg.JWT.Issuer, TTL: cfg.JWT.TTL()}
	userSvc := service.NewUserService(
		repo.NewUserRepo(db),
		utils.NewBcryptHasher(cfg.Bcrypt.Cost),
		jwter,
		log.Named("user"),
	)

	// 后台端用默认 registry（带 go/process 采集器）
	r := router.NewAdminEngine(log, router.Options{
		Mode:        cfg.App.Mode,
		RPS:         cfg.Limits.RPS,
		Burst:       cfg.Limits.Burst,
		Concurrency: cfg.Limits.Concurrency,
		Timeout:     time.Duration(cfg.Limits.TimeoutSec) * time.Second,
		Metrics:     mdw.NewMetrics(prometheus.DefaultRegisterer, "user_admin"),
		Gatherer:    prometheus.DefaultGatherer,
	}, jwter, router.NewModules(handler.NewUserHandler(userSvc)))

	a := cfg.App.Admin
	addr := server.Addr(a.Host, a.Port)
	srv := server.BuildServer(addr, r, 5*time.Second, 10*time.Second, 60*time.Second)

	baseURL := server.HumanURL(a.Host, a.Port)
	log.Info("admin api starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("metrics", baseURL+"/metrics"),
		zap.String("admin_v1", baseURL+"/admin/v1"),
	)

	// 失败立即退出
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("admin api start FAILED", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info("admin api stopped gracefully")
}
