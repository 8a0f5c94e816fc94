package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-tomans/internal/audiofx"
	"github.com/hazadus/go-tomans/internal/favorites"
	"github.com/hazadus/go-tomans/internal/logging"
	"github.com/hazadus/go-tomans/internal/player"
	"github.com/hazadus/go-tomans/internal/playlist"
	"github.com/hazadus/go-tomans/internal/tui"
	tuiapp "github.com/hazadus/go-tomans/internal/tui/app"
	"github.com/hazadus/go-tomans/internal/waveform"
)

// createTUICommand создает команду tui с привязкой к экземпляру приложения
func (app *Application) createTUICommand(ctx context.Context) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Launch TUI (Terminal User Interface)",
		Long:  `Launch interactive terminal user interface for browsing, playing and organising tracks.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return app.launchTUI(ctx)
		},
	}
}

func (app *Application) launchTUI(ctx context.Context) error {
	// Вывод журнала в терминал ломает отрисовку, поэтому пишем в файл
	logPath := app.Config.LogFile
	if logPath == "" {
		logPath = filepath.Join(os.TempDir(), "tomans.log")
	}
	logger, closer, err := logging.NewFile(logPath, app.Config.LogLevel)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	favouritesService := favorites.NewService(app.Store, logger)
	favouritesService.Watch(ctx)
	favouritesService.Refresh(ctx)

	playlistService := playlist.NewService(app.Store, logger)
	playlistService.Watch(ctx)
	playlistService.Refresh(ctx)

	registry := audiofx.NewRegistry()
	controller := player.NewController(
		player.NewBeepEngineFactory(registry, logger),
		player.NewSpeakerFocus(logger),
		app.Config.PositionInterval,
		logger,
	)
	defer controller.Close()

	// Создаем экземпляр TUI приложения
	tuiApp := tui.NewApp(tuiapp.Deps{
		Ctx:       ctx,
		Catalog:   app.Catalog,
		Player:    controller,
		Sampler:   waveform.NewSampler(registry, logger),
		Favorites: favouritesService,
		Playlists: playlistService,
		Bars:      app.Config.WaveformBars,
		Logger:    logger,
	})

	return tuiApp.Run()
}
