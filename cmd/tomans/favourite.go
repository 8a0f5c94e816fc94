package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-tomans/internal/data"
	"github.com/hazadus/go-tomans/internal/favorites"
)

// createFavouriteCommand создает группу команд для работы с избранным
func (app *Application) createFavouriteCommand(ctx context.Context) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "favourite",
		Aliases: []string{"fav"},
		Short:   "Manage favourite tracks",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "add [trackid]",
		Short: "Mark a track as favourite",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			track, err := app.trackFromArg(args[0])
			if err != nil {
				return err
			}
			if err := favorites.NewService(app.Store, app.Logger).Add(ctx, track.Title); err != nil {
				return err
			}
			fmt.Printf("★ Добавлено в избранное: %s - %s\n", track.Artist, track.Title)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove [trackid]",
		Short: "Remove a track from favourites",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			track, err := app.trackFromArg(args[0])
			if err != nil {
				return err
			}
			if err := favorites.NewService(app.Store, app.Logger).Remove(ctx, track.Title); err != nil {
				return err
			}
			fmt.Printf("☆ Удалено из избранного: %s - %s\n", track.Artist, track.Title)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List favourite tracks",
		RunE: func(_ *cobra.Command, _ []string) error {
			return app.listTracks(ctx, true, "")
		},
	})

	return cmd
}

// trackFromArg находит трек каталога по ID из аргумента команды
func (app *Application) trackFromArg(arg string) (*data.Track, error) {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return nil, fmt.Errorf("неверный ID трека: %s", arg)
	}
	return app.Catalog.TrackByID(id)
}
