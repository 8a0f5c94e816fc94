package favorites

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/hazadus/go-tomans/internal/data"
	"github.com/hazadus/go-tomans/internal/observable"
)

// mockRepository хранит избранное в памяти
type mockRepository struct {
	mu      sync.Mutex
	titles  map[string]bool
	err     error
	changes *observable.Subject[uint64]
	version uint64
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		titles:  make(map[string]bool),
		changes: observable.NewSubject[uint64](0),
	}
}

func (m *mockRepository) ListFavorites(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	titles := make([]string, 0, len(m.titles))
	for title := range m.titles {
		titles = append(titles, title)
	}
	sort.Strings(titles)
	return titles, nil
}

func (m *mockRepository) AddFavorite(ctx context.Context, title string) error {
	m.mu.Lock()
	if m.err != nil {
		m.mu.Unlock()
		return m.err
	}
	m.titles[title] = true
	m.version++
	v := m.version
	m.mu.Unlock()
	m.changes.Publish(v)
	return nil
}

func (m *mockRepository) RemoveFavorite(ctx context.Context, title string) error {
	m.mu.Lock()
	if m.err != nil {
		m.mu.Unlock()
		return m.err
	}
	delete(m.titles, title)
	m.version++
	v := m.version
	m.mu.Unlock()
	m.changes.Publish(v)
	return nil
}

func (m *mockRepository) Changes() (<-chan uint64, func()) {
	return m.changes.Subscribe()
}

func TestSynchronize(t *testing.T) {
	tracks := []data.Track{
		{ID: 1, Title: "Song1", Artist: "A", Favorite: false},
		{ID: 2, Title: "Song2", Artist: "B", Favorite: true},
		{ID: 3, Title: "Song3", Artist: "C", Favorite: false},
	}

	result := Synchronize(tracks, []string{"Song1", "Song3", "Other"})

	want := map[string]bool{"Song1": true, "Song2": false, "Song3": true}
	for _, track := range result {
		if track.Favorite != want[track.Title] {
			t.Errorf("Трек %s: ожидался Favorite=%v, получено %v", track.Title, want[track.Title], track.Favorite)
		}
	}
	if result[1].Artist != "B" || result[1].ID != 2 {
		t.Errorf("Остальные поля трека не должны меняться: %+v", result[1])
	}
}

func TestSynchronizeEmpty(t *testing.T) {
	if got := Synchronize(nil, nil); len(got) != 0 {
		t.Errorf("Ожидался пустой каталог, получено %v", got)
	}

	tracks := []data.Track{{Title: "Song1"}, {Title: "Song2", Favorite: true}}
	for _, track := range Synchronize(tracks, nil) {
		if track.Favorite {
			t.Errorf("Без избранного все флаги должны быть false: %+v", track)
		}
	}
}

func TestFavouritesView(t *testing.T) {
	tracks := []data.Track{{ID: 1, Favorite: true}, {ID: 2}, {ID: 3, Favorite: true}}
	got := Favourites(tracks)
	if len(got) != 2 || got[0].ID != 1 || got[1].ID != 3 {
		t.Errorf("Ожидались треки 1 и 3, получено %v", got)
	}
}

func TestServiceRefresh(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo, zerolog.Nop())

	if _, ok := service.State().Value().(observable.Loading[[]string]); !ok {
		t.Fatal("Начальное состояние должно быть Loading")
	}

	ctx := context.Background()
	service.Add(ctx, "Song1")
	service.Add(ctx, "Song1")

	state := service.Refresh(ctx)
	titles := observable.DataOr(state, nil)
	if len(titles) != 1 || titles[0] != "Song1" {
		t.Errorf("Ожидалось [Song1], получено %v", titles)
	}
}

func TestServiceFailureState(t *testing.T) {
	repo := newMockRepository()
	repo.err = errors.New("база недоступна")
	service := NewService(repo, zerolog.Nop())

	if err := service.Add(context.Background(), "Song1"); err == nil {
		t.Fatal("Ожидалась ошибка добавления")
	}

	failure, ok := service.State().Value().(observable.Failure[[]string])
	if !ok {
		t.Fatalf("Ожидалось состояние Failure, получено %T", service.State().Value())
	}
	if !errors.Is(failure.Err, repo.err) {
		t.Errorf("Состояние должно содержать исходную ошибку, получено %v", failure.Err)
	}
}

func TestToggle(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo, zerolog.Nop())
	ctx := context.Background()

	fav, err := service.Toggle(ctx, data.Track{Title: "Song1"})
	if err != nil || !fav {
		t.Fatalf("Ожидалось добавление в избранное, получено %v (%v)", fav, err)
	}
	fav, err = service.Toggle(ctx, data.Track{Title: "Song1", Favorite: true})
	if err != nil || fav {
		t.Fatalf("Ожидалось удаление из избранного, получено %v (%v)", fav, err)
	}

	titles, _ := repo.ListFavorites(ctx)
	if len(titles) != 0 {
		t.Errorf("Ожидался пустой набор, получено %v", titles)
	}
}

func TestBindFollowsChanges(t *testing.T) {
	repo := newMockRepository()
	service := NewService(repo, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	catalog := &data.Catalog{Tracks: []data.Track{{ID: 1, Title: "Song1"}, {ID: 2, Title: "Song2"}}}
	updates := service.Bind(ctx, catalog)
	service.Watch(ctx)

	service.Add(ctx, "Song2")

	deadline := time.After(2 * time.Second)
	for {
		select {
		case tracks := <-updates:
			if len(tracks) == 2 && tracks[1].Favorite && !tracks[0].Favorite {
				// Исходный каталог не меняется
				if catalog.Tracks[1].Favorite {
					t.Error("Bind не должен изменять исходный каталог")
				}
				return
			}
		case <-deadline:
			t.Fatal("Не получен каталог с актуальным избранным")
		}
	}
}
