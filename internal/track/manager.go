// Package track содержит логику выборки треков каталога
package track

import (
	"strings"
	"time"

	"github.com/hazadus/go-tomans/internal/data"
	"github.com/hazadus/go-tomans/internal/favorites"
)

// Manager управляет треками в приложении
type Manager struct {
	catalog *data.Catalog
}

// NewManager создает новый экземпляр Manager
func NewManager(catalog *data.Catalog) *Manager {
	return &Manager{
		catalog: catalog,
	}
}

// ListTracks возвращает список всех треков
func (m *Manager) ListTracks() []data.Track {
	return m.catalog.Tracks
}

// Search возвращает треки, у которых название, исполнитель или альбом
// содержат запрос без учета регистра. Пустой запрос возвращает все треки.
func (m *Manager) Search(query string) []data.Track {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return m.catalog.Tracks
	}

	result := make([]data.Track, 0)
	for _, track := range m.catalog.Tracks {
		if strings.Contains(strings.ToLower(track.Title), query) ||
			strings.Contains(strings.ToLower(track.Artist), query) ||
			strings.Contains(strings.ToLower(track.Album), query) {
			result = append(result, track)
		}
	}
	return result
}

// Favourites возвращает только избранные треки
func (m *Manager) Favourites() []data.Track {
	return favorites.Favourites(m.catalog.Tracks)
}

// Apply синхронизирует флаги избранного каталога с набором названий
func (m *Manager) Apply(titles []string) {
	favorites.Synchronize(m.catalog.Tracks, titles)
}

// TotalDuration возвращает суммарную длительность треков
func (m *Manager) TotalDuration(tracks []data.Track) time.Duration {
	var total time.Duration
	for _, track := range tracks {
		total += track.Duration
	}
	return total
}
