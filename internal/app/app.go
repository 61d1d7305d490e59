package app

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/syncstream/server/internal/controller"
	connInmemory "github.com/syncstream/server/internal/repository/connection/inmemory"
	"github.com/syncstream/server/internal/repository/mirror"
	mirrorGorm "github.com/syncstream/server/internal/repository/mirror/gorm"
	roomInmemory "github.com/syncstream/server/internal/repository/room/inmemory"
	snapshotRedis "github.com/syncstream/server/internal/repository/snapshot/redis"
	"github.com/syncstream/server/internal/service/room"
	"github.com/syncstream/server/pkg/ctxlogger"
	"github.com/syncstream/server/pkg/database"
	"github.com/syncstream/server/pkg/randstr"
	"github.com/syncstream/server/pkg/redisclient"
)

const roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

type AppConfig struct {
	Host          string        `json:"host"`
	Port          int           `json:"port"`
	LogLevel      string        `json:"log_level"`
	DBDriver      string        `json:"db_driver"`
	DBHost        string        `json:"db_host"`
	DBPort        int           `json:"db_port"`
	DBUser        string        `json:"db_user"`
	DBPassword    string        `json:"-"`
	DBName        string        `json:"db_name"`
	DBSSLMode     string        `json:"db_ssl_mode"`
	DBFilePath    string        `json:"db_file_path"`
	RedisHost     string        `json:"redis_host"`
	RedisPort     int           `json:"redis_port"`
	RedisPassword string        `json:"-"`
	SnapshotTTL   time.Duration `json:"snapshot_ttl"`
}

func (cfg *AppConfig) Validate() error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535")
	}
	if cfg.DBDriver != "postgres" && cfg.DBDriver != "sqlite" {
		return fmt.Errorf("db driver must be postgres or sqlite")
	}
	if cfg.SnapshotTTL <= 0 {
		return fmt.Errorf("snapshot ttl must be positive")
	}
	return nil
}

func Run(ctx context.Context, cfg *AppConfig) error {
	logLevel := slog.LevelInfo
	if err := logLevel.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		log.Fatal(err)
	}

	h := ctxlogger.ContextHandler{
		Handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:     logLevel,
			AddSource: true,
		}),
	}

	logger := slog.New(&h)

	rc, err := redisclient.NewRedisClient(ctx, &redisclient.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		return fmt.Errorf("failed to create redis client: %w", err)
	}
	defer rc.Close()

	db, err := database.New(&database.Config{
		Driver:          cfg.DBDriver,
		Host:            cfg.DBHost,
		Port:            cfg.DBPort,
		User:            cfg.DBUser,
		Password:        cfg.DBPassword,
		DBName:          cfg.DBName,
		SSLMode:         cfg.DBSSLMode,
		FilePath:        cfg.DBFilePath,
		MaxIdleConns:    2,
		MaxOpenConns:    10,
		ConnMaxLifetime: time.Hour,
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err := database.AutoMigrate(db, mirror.Models()...); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	roomRepo := roomInmemory.NewRepo(randstr.New([]byte(roomCodeAlphabet)), logger)
	connectionRepo := connInmemory.NewRepo(logger)
	mirrorRepo := mirrorGorm.NewRepo(db)
	snapshotRepo := snapshotRedis.NewRepo(rc, cfg.SnapshotTTL)
	roomService := room.NewService(roomRepo, connectionRepo, mirrorRepo, snapshotRepo, logger)
	controller := controller.NewController(roomService, logger)
	server := &http.Server{Addr: fmt.Sprintf("%s:%d", cfg.Host, cfg.Port), Handler: controller.GetMux()}

	// graceful shutdown
	serverCtx, serverStopCtx := context.WithCancel(ctx)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-sig

		shutdownCtx, c := context.WithTimeout(serverCtx, 30*time.Second)
		defer c()

		go func() {
			<-shutdownCtx.Done()
			if shutdownCtx.Err() == context.DeadlineExceeded {
				log.Fatal("graceful shutdown timed out.. forcing exit.")
			}
		}()

		err := server.Shutdown(shutdownCtx)
		if err != nil {
			log.Fatal(err)
		}
		serverStopCtx()
	}()

	logger.InfoContext(serverCtx, "starting server", "address", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}

	<-serverCtx.Done()

	return nil
}
