package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-tomans/internal/data"
	"github.com/hazadus/go-tomans/internal/observable"
	"github.com/hazadus/go-tomans/internal/playlist"
	"github.com/hazadus/go-tomans/internal/store"
)

// createPlaylistCommand создает группу команд для работы с плейлистами
func (app *Application) createPlaylistCommand(ctx context.Context) *cobra.Command {
	service := playlist.NewService(app.Store, app.Logger)

	cmd := &cobra.Command{
		Use:   "playlist",
		Short: "Manage playlists",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "create [name]",
		Short: "Create a playlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := service.Create(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("✅ Плейлист %q создан (ID %d)\n", args[0], id)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "rename [id] [name]",
		Short: "Rename a playlist",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := parsePlaylistID(args[0])
			if err != nil {
				return err
			}
			if err := service.Rename(ctx, id, args[1]); err != nil {
				return err
			}
			fmt.Printf("✅ Плейлист %d переименован в %q\n", id, args[1])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a playlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			id, err := parsePlaylistID(args[0])
			if err != nil {
				return err
			}
			if err := service.Delete(ctx, id); err != nil {
				return err
			}
			fmt.Printf("🗑️  Плейлист %d удален\n", id)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List playlists",
		RunE: func(_ *cobra.Command, _ []string) error {
			return app.listPlaylists(ctx, service)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "items [name]",
		Short: "List tracks of a playlist",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			synced, err := app.syncedTracks(ctx)
			if err != nil {
				return err
			}
			tracks, err := service.Tracks(ctx, args[0], &data.Catalog{Tracks: synced})
			if err != nil {
				return err
			}
			fmt.Printf("🎶 Плейлист %q: %d треков\n\n", args[0], len(tracks))
			printTracks(tracks)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add [name] [trackid]",
		Short: "Add a track to a playlist",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			track, err := app.trackFromArg(args[1])
			if err != nil {
				return err
			}
			if err := service.AddTrack(ctx, args[0], track.Title); err != nil {
				return err
			}
			fmt.Printf("➕ %s - %s добавлен в %q\n", track.Artist, track.Title, args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove [name] [trackid]",
		Short: "Remove a track from a playlist",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			track, err := app.trackFromArg(args[1])
			if err != nil {
				return err
			}
			if err := service.RemoveTrack(ctx, args[0], track.Title); err != nil {
				return err
			}
			fmt.Printf("➖ %s - %s удален из %q\n", track.Artist, track.Title, args[0])
			return nil
		},
	})

	return cmd
}

func (app *Application) listPlaylists(ctx context.Context, service *playlist.Service) error {
	state := service.Refresh(ctx)
	if failure, ok := state.(observable.Failure[[]store.Playlist]); ok {
		return fmt.Errorf("ошибка чтения плейлистов: %w", failure.Err)
	}

	playlists := observable.DataOr(state, nil)
	if len(playlists) == 0 {
		fmt.Println("📂 Плейлистов нет. Создайте первый: 'tomans playlist create [name]'")
		return nil
	}

	fmt.Printf("📂 Плейлистов: %d\n\n", len(playlists))
	for _, p := range playlists {
		items, err := app.Store.ListPlaylistItemsByID(ctx, p.ID)
		if err != nil {
			return err
		}
		fmt.Printf("%-4d %-30s %d треков\n", p.ID, p.Name, len(items))
	}
	return nil
}

func parsePlaylistID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("неверный ID плейлиста: %s", arg)
	}
	return id, nil
}
