package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"mediscan/db"
	mhttp "mediscan/http"
	"mediscan/logging"
	"mediscan/ml"
	"mediscan/monitoring"
)

type Config struct {
	Models struct {
		Dir   string `yaml:"dir"`
		Watch bool   `yaml:"watch"`
	} `yaml:"models"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Http struct {
		Port           int      `yaml:"port"`
		TimeoutSeconds int      `yaml:"timeout_seconds"`
		CacheSize      int      `yaml:"cache_size"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"http"`
	Log logging.Config `yaml:"log"`
}

func main() {
	config, err := loadConfig("config.yaml")
	if err != nil {
		// Logger is not up yet.
		panic("failed to load config: " + err.Error())
	}

	logger := logging.New(config.Log)
	defer logger.Sync()

	if err := db.InitDB(config.Database.Path); err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()
	logger.Info("database initialized", zap.String("path", config.Database.Path))

	store := ml.NewStore()
	if err := store.LoadDir(config.Models.Dir); err != nil {
		logger.Fatal("failed to load model artifacts; run cmd/train_model first",
			zap.String("dir", config.Models.Dir), zap.Error(err))
	}
	logger.Info("model bundle loaded", zap.String("dir", config.Models.Dir))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if config.Models.Watch {
		go func() {
			if err := store.Watch(ctx, config.Models.Dir, logger); err != nil {
				logger.Warn("model watcher stopped", zap.Error(err))
			}
		}()
	}

	hub := monitoring.NewHub(logger)
	handlers := mhttp.NewHandlers(mhttp.HandlersConfig{
		Store:     store,
		Hub:       hub,
		Logger:    logger,
		CacheSize: config.Http.CacheSize,
		Persist:   db.SavePrediction,
		Recent:    db.RecentPredictions,
	})

	serverConfig := mhttp.DefaultServerConfig()
	if config.Http.Port > 0 {
		serverConfig.Port = config.Http.Port
	}
	if config.Http.TimeoutSeconds > 0 {
		serverConfig.Timeout = time.Duration(config.Http.TimeoutSeconds) * time.Second
	}
	if len(config.Http.AllowedOrigins) > 0 {
		serverConfig.AllowedOrigins = config.Http.AllowedOrigins
	}

	server := mhttp.NewServer(serverConfig, handlers, logger)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	cancel()
	if err := server.Stop(); err != nil {
		logger.Warn("server forced to shutdown", zap.Error(err))
	}
	logger.Info("exiting")
}

func loadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, err
	}
	return &config, nil
}
