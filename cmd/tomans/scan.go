package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-tomans/internal/catalog"
)

// createScanCommand создает команду scan с привязкой к экземпляру приложения
func (app *Application) createScanCommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "scan",
		Short: "Scan library folders for audio files",
		Long:  `Walk the configured library folders, read tags and durations and cache the catalog.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return app.scanLibrary(ctx)
		},
	}
}

func (app *Application) scanLibrary(ctx context.Context) error {
	fmt.Printf("🔎 Сканируем: %s\n", strings.Join(app.Config.LibraryDirs, ", "))

	source := catalog.NewSource(app.Config.LibraryDirs, app.Logger)
	app.Catalog = source.Load(ctx)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("сканирование отменено: %w", err)
	}

	if err := app.SaveData(); err != nil {
		return fmt.Errorf("ошибка сохранения каталога: %w", err)
	}

	fmt.Printf("✅ Найдено треков: %d\n", len(app.Catalog.Tracks))
	return nil
}
