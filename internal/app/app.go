package app

import (
	"fmt"
	"net/http"
	"os"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/apontei/apontei/internal/config"
	"github.com/apontei/apontei/internal/database"
)

type Application struct {
	cfg    config.Application
	server *http.Server
}

func NewApplication() (*Application, error) {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := database.Migrate(cfg.Database); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	deps, err := BuildDependencies(db, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to build dependencies: %w", err)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      newRouter(deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return &Application{cfg: cfg, server: server}, nil
}

func (a *Application) Run() error {
	log.Infof("Starting server on port %d", a.cfg.Server.Port)
	return a.server.ListenAndServe()
}
