package main

import (
	"Warbler/internal/api/config"
	"Warbler/internal/pkg/database"
	"Warbler/internal/pkg/kafka"
	"Warbler/internal/pkg/logger"
	"Warbler/internal/pkg/redis"
	"Warbler/internal/pkg/security"
	"Warbler/internal/pkg/session"
	"Warbler/internal/wire"
	"context"
	"errors"
	"fmt"
	log "log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		log.Error("App exited with error", "err", err)
		os.Exit(1)
	}
	log.Info("App exited successfully.")
}

// run 完成初始化并阻塞到服务退出，defer 的资源在返回前释放
func run() error {
	// 加载配置
	if err := config.LoadConfig(); err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	cfg := config.Cfg

	// 初始化日志
	logger.InitLogger(cfg.Log)

	// 数据库连接
	dbCfg := cfg.DB
	db, err := database.NewGormDB(&dbCfg)
	if err != nil {
		return fmt.Errorf("create database connection: %w", err)
	}
	if dbCfg.AutoMigrate {
		if err = database.Migrate(db); err != nil {
			return fmt.Errorf("migrate database: %w", err)
		}
	}

	// Redis 连接，仅在会话存储于 redis 时需要
	if cfg.Session.Store == "redis" {
		if err = redis.InitRedis(cfg.Redis); err != nil {
			return fmt.Errorf("create redis connection: %w", err)
		}
		defer func() {
			if err := redis.Close(); err != nil {
				log.Error("Redis close failed", "err", err)
			}
		}()
	}

	// 会话存储
	store, err := session.NewStore(cfg.Session)
	if err != nil {
		return fmt.Errorf("create session store: %w", err)
	}

	security.InitJWT(cfg.JWT)

	// Kafka 事件发布
	publisher, err := kafka.NewPublisher(cfg.Kafka)
	if err != nil {
		return fmt.Errorf("create kafka publisher: %w", err)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Error("Kafka publisher close failed", "err", err)
		}
	}()

	// 依赖注入
	app, err := wire.BuildApplication(db, cfg, store, publisher)
	if err != nil {
		return fmt.Errorf("create application: %w", err)
	}

	timeout := time.Duration(cfg.Server.ShutdownTimeout) * time.Second
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: app.Router,
	}
	return serve(context.Background(), srv, timeout)
}

// serve 运行 HTTP 服务直到收到退出信号或 ctx 结束，监听失败时返回错误
func serve(ctx context.Context, srv *http.Server, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("HTTP Server starting...", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	// 优雅退出
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case <-ctx.Done():
		case sig := <-quit:
			log.Info("Received signal, shutting down...", "signal", sig)
			cancel()
		}

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP Server shutdown failed", "err", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
