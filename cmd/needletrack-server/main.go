package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"
	"time"

	"needletrack/internal/config"
	"needletrack/internal/database"
	httpapi "needletrack/internal/http"
	"needletrack/internal/logger"
	"needletrack/internal/repository"
	"needletrack/internal/service"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

func main() {
	cfg := config.Load()

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, "needletrack-server")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	publisher := service.NewRedisPublisher(redisClient, log)

	// DB 未就绪时退回内存 repo 支持联测（患者/设定页面不再因无 DB 失败）
	var db *sql.DB
	var patientsRepo repository.PatientsRepository
	var settingsRepo repository.SettingsRepository
	if cfg.DBEnabled {
		if d, err := database.NewPostgresDB(&cfg.Database); err == nil {
			db = d
			log.Info("DB enabled for needletrack-server")
		} else {
			log.Warn("DB enabled but connection failed, falling back to memory repos", zap.Error(err))
		}
	}
	if db != nil {
		patientsRepo = repository.NewPostgresPatientsRepository(db)
		settingsRepo = repository.NewPostgresSettingsRepository(db)
	} else {
		patientsRepo = repository.NewMemoryPatientsRepository()
		settingsRepo = repository.NewMemorySettingsRepository()
	}

	patientSvc := service.NewPatientService(patientsRepo, publisher, log)
	settingsSvc := service.NewSettingsService(settingsRepo, publisher, log)

	router := httpapi.NewRouter(log)
	router.RegisterPatientRoutes(httpapi.NewPatientsHandler(patientSvc, log))
	router.RegisterSettingsRoutes(httpapi.NewSettingsHandler(settingsSvc, log))
	router.RegisterExportRoutes(httpapi.NewExportHandler(patientSvc, log))

	srv := service.NewServer(cfg.HTTP.Addr, router, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigCh:
		cancel()
	case <-errCh:
		cancel()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutdownCancel()
	_ = srv.Stop(shutdownCtx)
	_ = redisClient.Close()
	if db != nil {
		_ = db.Close()
	}
}
