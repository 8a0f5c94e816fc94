// Package playlist управляет плейлистами и их составом
package playlist

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/hazadus/go-tomans/internal/data"
	"github.com/hazadus/go-tomans/internal/observable"
	"github.com/hazadus/go-tomans/internal/store"
)

// Repository хранилище плейлистов
type Repository interface {
	ListPlaylists(ctx context.Context) ([]store.Playlist, error)
	PlaylistByName(ctx context.Context, name string) (store.Playlist, error)
	CreatePlaylist(ctx context.Context, name string) (int64, error)
	RenamePlaylist(ctx context.Context, id int64, name string) error
	DeletePlaylist(ctx context.Context, id int64) error
	ListPlaylistItems(ctx context.Context, name string) ([]store.PlaylistItem, error)
	AddItem(ctx context.Context, playlistName, title string) error
	RemoveItem(ctx context.Context, playlistName, title string) error
	Changes() (<-chan uint64, func())
}

// Service публикует список плейлистов и изменяет их состав
type Service struct {
	repo   Repository
	logger zerolog.Logger
	state  *observable.Subject[observable.State[[]store.Playlist]]
}

// NewService создает сервис плейлистов в состоянии Loading
func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		state:  observable.NewSubject[observable.State[[]store.Playlist]](observable.Loading[[]store.Playlist]{}),
	}
}

// State подписываемое состояние списка плейлистов
func (s *Service) State() *observable.Subject[observable.State[[]store.Playlist]] {
	return s.state
}

// Watch перечитывает плейлисты при каждом изменении базы, пока не отменен ctx
func (s *Service) Watch(ctx context.Context) {
	changes, cancel := s.repo.Changes()

	go func() {
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-changes:
				if !ok {
					return
				}
				s.Refresh(ctx)
			}
		}
	}()
}

// Refresh однократно перечитывает плейлисты и публикует результат
func (s *Service) Refresh(ctx context.Context) observable.State[[]store.Playlist] {
	playlists, err := s.repo.ListPlaylists(ctx)
	var state observable.State[[]store.Playlist]
	if err != nil {
		s.logger.Error().Err(err).Msg("не удалось прочитать плейлисты")
		state = observable.Failure[[]store.Playlist]{Err: err}
	} else {
		state = observable.Success[[]store.Playlist]{Data: playlists}
	}
	s.state.Publish(state)
	return state
}

// Create создает плейлист с указанным именем
func (s *Service) Create(ctx context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, fmt.Errorf("имя плейлиста не может быть пустым")
	}
	id, err := s.repo.CreatePlaylist(ctx, name)
	if err != nil {
		s.fail(err)
		return 0, err
	}
	s.logger.Info().Int64("id", id).Str("name", name).Msg("плейлист создан")
	return id, nil
}

// Rename переименовывает плейлист
func (s *Service) Rename(ctx context.Context, id int64, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("имя плейлиста не может быть пустым")
	}
	if err := s.repo.RenamePlaylist(ctx, id, name); err != nil {
		s.fail(err)
		return err
	}
	return nil
}

// Delete удаляет плейлист
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.DeletePlaylist(ctx, id); err != nil {
		s.fail(err)
		return err
	}
	s.logger.Info().Int64("id", id).Msg("плейлист удален")
	return nil
}

// Items возвращает названия треков плейлиста в порядке добавления
func (s *Service) Items(ctx context.Context, name string) ([]string, error) {
	items, err := s.repo.ListPlaylistItems(ctx, name)
	if err != nil {
		return nil, err
	}
	titles := make([]string, 0, len(items))
	for _, item := range items {
		titles = append(titles, item.AudioTitle)
	}
	return titles, nil
}

// AddTrack добавляет трек в плейлист
func (s *Service) AddTrack(ctx context.Context, name, title string) error {
	if err := s.repo.AddItem(ctx, name, title); err != nil {
		return fmt.Errorf("ошибка добавления %q в плейлист %q: %w", title, name, err)
	}
	s.logger.Debug().Str("playlist", name).Str("title", title).Msg("трек добавлен в плейлист")
	return nil
}

// RemoveTrack удаляет трек из плейлиста
func (s *Service) RemoveTrack(ctx context.Context, name, title string) error {
	if err := s.repo.RemoveItem(ctx, name, title); err != nil {
		return fmt.Errorf("ошибка удаления %q из плейлиста %q: %w", title, name, err)
	}
	return nil
}

// Tracks сопоставляет элементы плейлиста с треками каталога. Элементы,
// названия которых в каталоге нет, пропускаются.
func (s *Service) Tracks(ctx context.Context, name string, catalog *data.Catalog) ([]data.Track, error) {
	titles, err := s.Items(ctx, name)
	if err != nil {
		return nil, err
	}
	tracks := make([]data.Track, 0, len(titles))
	for _, title := range titles {
		if track, ok := catalog.TrackByTitle(title); ok {
			tracks = append(tracks, *track)
		}
	}
	return tracks, nil
}

func (s *Service) fail(err error) {
	s.logger.Error().Err(err).Msg("ошибка хранилища плейлистов")
	s.state.Publish(observable.Failure[[]store.Playlist]{Err: err})
}
