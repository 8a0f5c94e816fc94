// Package favorites синхронизирует флаг избранного треков каталога с базой
package favorites

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/hazadus/go-tomans/internal/data"
	"github.com/hazadus/go-tomans/internal/observable"
)

// Repository хранилище избранного
type Repository interface {
	ListFavorites(ctx context.Context) ([]string, error)
	AddFavorite(ctx context.Context, title string) error
	RemoveFavorite(ctx context.Context, title string) error
	Changes() (<-chan uint64, func())
}

// Synchronize выставляет Favorite = true ровно тем трекам, чье название есть
// в titles. Срез изменяется на месте и возвращается для удобства.
func Synchronize(tracks []data.Track, titles []string) []data.Track {
	set := make(map[string]struct{}, len(titles))
	for _, title := range titles {
		set[title] = struct{}{}
	}
	for i := range tracks {
		_, ok := set[tracks[i].Title]
		tracks[i].Favorite = ok
	}
	return tracks
}

// Favourites возвращает только избранные треки
func Favourites(tracks []data.Track) []data.Track {
	result := make([]data.Track, 0)
	for _, track := range tracks {
		if track.Favorite {
			result = append(result, track)
		}
	}
	return result
}

// Service публикует актуальный набор избранного и изменяет его
type Service struct {
	repo   Repository
	logger zerolog.Logger
	state  *observable.Subject[observable.State[[]string]]
}

// NewService создает сервис избранного в состоянии Loading
func NewService(repo Repository, logger zerolog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
		state:  observable.NewSubject[observable.State[[]string]](observable.Loading[[]string]{}),
	}
}

// State подписываемое состояние набора избранного
func (s *Service) State() *observable.Subject[observable.State[[]string]] {
	return s.state
}

// Watch перечитывает избранное при каждом изменении базы, пока не отменен ctx
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

// Refresh однократно перечитывает избранное и публикует результат
func (s *Service) Refresh(ctx context.Context) observable.State[[]string] {
	titles, err := s.repo.ListFavorites(ctx)
	var state observable.State[[]string]
	if err != nil {
		s.logger.Error().Err(err).Msg("не удалось прочитать избранное")
		state = observable.Failure[[]string]{Err: err}
	} else {
		state = observable.Success[[]string]{Data: titles}
	}
	s.state.Publish(state)
	return state
}

// Add добавляет трек в избранное
func (s *Service) Add(ctx context.Context, title string) error {
	if err := s.repo.AddFavorite(ctx, title); err != nil {
		s.fail(err)
		return fmt.Errorf("ошибка добавления %q в избранное: %w", title, err)
	}
	s.logger.Debug().Str("title", title).Msg("добавлено в избранное")
	return nil
}

// Remove удаляет трек из избранного
func (s *Service) Remove(ctx context.Context, title string) error {
	if err := s.repo.RemoveFavorite(ctx, title); err != nil {
		s.fail(err)
		return fmt.Errorf("ошибка удаления %q из избранного: %w", title, err)
	}
	s.logger.Debug().Str("title", title).Msg("удалено из избранного")
	return nil
}

// Toggle переключает флаг избранного трека и возвращает новое значение
func (s *Service) Toggle(ctx context.Context, track data.Track) (bool, error) {
	if track.Favorite {
		return false, s.Remove(ctx, track.Title)
	}
	return true, s.Add(ctx, track.Title)
}

// Bind публикует копии треков каталога с актуальным флагом избранного
// после каждого успешного чтения набора. Канал закрывается при отмене ctx.
func (s *Service) Bind(ctx context.Context, catalog *data.Catalog) <-chan []data.Track {
	base := make([]data.Track, len(catalog.Tracks))
	copy(base, catalog.Tracks)

	out := observable.NewSubject[[]data.Track](nil)
	tracks, _ := out.Subscribe()
	// Пропускаем начальное пустое значение
	<-tracks

	states, cancelStates := s.state.Subscribe()
	go func() {
		defer cancelStates()
		defer out.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case state, ok := <-states:
				if !ok {
					return
				}
				titles, ok := state.(observable.Success[[]string])
				if !ok {
					continue
				}
				snapshot := make([]data.Track, len(base))
				copy(snapshot, base)
				out.Publish(Synchronize(snapshot, titles.Data))
			}
		}
	}()

	return tracks
}

func (s *Service) fail(err error) {
	s.logger.Error().Err(err).Msg("ошибка хранилища избранного")
	s.state.Publish(observable.Failure[[]string]{Err: err})
}
