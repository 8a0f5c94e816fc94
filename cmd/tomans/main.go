package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/hazadus/go-tomans/internal/config"
	"github.com/hazadus/go-tomans/internal/data"
	"github.com/hazadus/go-tomans/internal/logging"
	"github.com/hazadus/go-tomans/internal/store"
)

const defaultConfigPath = "~/.tomans"

// Application хранит общее состояние для всех команд
type Application struct {
	Config  *config.Config
	Catalog *data.Catalog
	Store   *store.Store
	Logger  zerolog.Logger
}

// newApplication загружает конфигурацию, кэш каталога и открывает базу
func newApplication(ctx context.Context, configPath string, logOut io.Writer) (*Application, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки конфигурации: %w", err)
	}

	logger, err := logging.New(logOut, cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	catalog := data.NewCatalog()
	if err := catalog.LoadData(cfg.CatalogCache); err != nil {
		// Поврежденный кэш не мешает работе, его перезапишет scan
		logger.Warn().Err(err).Msg("кэш каталога не прочитан")
	}

	db, err := store.Open(ctx, cfg.DatabasePath, logger)
	if err != nil {
		return nil, err
	}

	return &Application{
		Config:  cfg,
		Catalog: catalog,
		Store:   db,
		Logger:  logger,
	}, nil
}

// SaveData сохраняет каталог в файл кэша
func (app *Application) SaveData() error {
	return app.Catalog.SaveData(app.Config.CatalogCache)
}

// Close освобождает ресурсы приложения
func (app *Application) Close() error {
	return app.Store.Close()
}

func main() {
	// Отменяем контекст по Ctrl+C и SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(ctx, defaultConfigPath, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}

	err = app.createRootCommand(ctx).Execute()
	if closeErr := app.Close(); closeErr != nil {
		app.Logger.Error().Err(closeErr).Msg("ошибка закрытия базы")
	}
	if err != nil {
		os.Exit(1)
	}
}
