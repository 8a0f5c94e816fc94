package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hazadus/go-tomans/internal/data"
	"github.com/hazadus/go-tomans/internal/favorites"
	"github.com/hazadus/go-tomans/internal/observable"
	"github.com/hazadus/go-tomans/internal/track"
	"github.com/hazadus/go-tomans/internal/utils"
)

// createListCommand создает команду list с привязкой к экземпляру приложения
func (app *Application) createListCommand(ctx context.Context) *cobra.Command {
	var (
		onlyFavourites bool
		query          string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tracks from the library",
		Long:  `Display tracks from the cached catalog with their favourite flag.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			return app.listTracks(ctx, onlyFavourites, query)
		},
	}

	cmd.Flags().BoolVarP(&onlyFavourites, "favourites", "f", false, "show only favourite tracks")
	cmd.Flags().StringVarP(&query, "search", "s", "", "filter by title, artist or album")
	return cmd
}

// syncedTracks возвращает копию каталога с актуальными флагами избранного
func (app *Application) syncedTracks(ctx context.Context) ([]data.Track, error) {
	service := favorites.NewService(app.Store, app.Logger)
	state := service.Refresh(ctx)
	if failure, ok := state.(observable.Failure[[]string]); ok {
		return nil, fmt.Errorf("ошибка чтения избранного: %w", failure.Err)
	}

	tracks := make([]data.Track, len(app.Catalog.Tracks))
	copy(tracks, app.Catalog.Tracks)
	track.NewManager(&data.Catalog{Tracks: tracks}).Apply(observable.DataOr(state, nil))
	return tracks, nil
}

func (app *Application) listTracks(ctx context.Context, onlyFavourites bool, query string) error {
	if len(app.Catalog.Tracks) == 0 {
		fmt.Println("📚 Библиотека пуста. Запустите 'tomans scan'.")
		return nil
	}

	synced, err := app.syncedTracks(ctx)
	if err != nil {
		return err
	}
	manager := track.NewManager(&data.Catalog{Tracks: synced})

	tracks := manager.Search(query)
	if onlyFavourites {
		tracks = favorites.Favourites(tracks)
	}

	fmt.Printf("📚 Найдено треков: %d (%s)\n\n", len(tracks), utils.FormatDuration(manager.TotalDuration(tracks)))
	printTracks(tracks)

	fmt.Println()
	fmt.Println("💡 Используйте 'tomans play [ID]' для воспроизведения трека")
	return nil
}

// printTracks выводит треки таблицей
func printTracks(tracks []data.Track) {
	// Выводим заголовок таблицы
	fmt.Printf("%-4s %-2s %-30s %-30s %-20s %-10s\n",
		"ID", "", "Исполнитель", "Название", "Альбом", "Длительность")
	fmt.Println(strings.Repeat("-", 100))

	for _, t := range tracks {
		star := ""
		if t.Favorite {
			star = "★"
		}

		duration := utils.FormatClock(t.Duration)
		if t.Duration == 0 {
			duration = "N/A"
		}

		// Обрезаем длинные строки для красивого отображения
		fmt.Printf("%-4d %-2s %-30s %-30s %-20s %-10s\n",
			t.ID,
			star,
			utils.TruncateString(t.Artist, 28),
			utils.TruncateString(t.Title, 28),
			utils.TruncateString(t.Album, 18),
			duration)
	}
}
