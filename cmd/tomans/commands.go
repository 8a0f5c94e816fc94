package main

import (
	"context"

	"github.com/spf13/cobra"
)

// createRootCommand создает корневую команду с настроенными подкомандами
func (app *Application) createRootCommand(ctx context.Context) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tomans",
		Short: "A local music player with favourites and playlists",
		Long:  `A terminal music player for local mp3 and wav files with favourites, playlists and a live waveform.`,
	}

	// Добавляем команды, передавая в них экземпляр приложения и контекст
	rootCmd.AddCommand(app.createScanCommand(ctx))
	rootCmd.AddCommand(app.createListCommand(ctx))
	rootCmd.AddCommand(app.createPlayCommand(ctx))
	rootCmd.AddCommand(app.createFavouriteCommand(ctx))
	rootCmd.AddCommand(app.createPlaylistCommand(ctx))
	rootCmd.AddCommand(app.createBackupCommand(ctx))
	rootCmd.AddCommand(app.createTUICommand(ctx))

	return rootCmd
}
