// Package store хранит избранное и плейлисты во встроенной базе SQLite
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/hazadus/go-tomans/internal/observable"
)

// ErrPlaylistNotFound возвращается, когда плейлист с указанным именем или ID отсутствует
var ErrPlaylistNotFound = errors.New("плейлист не найден")

const schema = `
CREATE TABLE IF NOT EXISTS favourite_audio (
	name TEXT PRIMARY KEY
);
CREATE TABLE IF NOT EXISTS playlist (
	playlistId INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT
);
CREATE TABLE IF NOT EXISTS playlist_item (
	itemId INTEGER PRIMARY KEY AUTOINCREMENT,
	playlistId INTEGER,
	audioTitle TEXT
);`

// Подзапрос, по которому имя плейлиста превращается в его идентификатор.
// При совпадающих именах берется самый ранний плейлист.
const playlistIDByName = `(SELECT playlistId FROM playlist WHERE name = ? ORDER BY playlistId LIMIT 1)`

// Playlist строка таблицы playlist
type Playlist struct {
	ID   int64
	Name string
}

// PlaylistItem строка таблицы playlist_item
type PlaylistItem struct {
	ID         int64
	PlaylistID int64
	AudioTitle string
}

// Store доступ к базе избранного и плейлистов
type Store struct {
	db      *sql.DB
	logger  zerolog.Logger
	version atomic.Uint64
	changes *observable.Subject[uint64]
}

// Open открывает (или создает) базу по указанному пути и применяет схему
func Open(ctx context.Context, path string, logger zerolog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия базы данных: %w", err)
	}
	// Одно соединение снимает конкуренцию за блокировку файла
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ошибка создания схемы: %w", err)
	}

	logger.Debug().Str("path", path).Msg("база данных открыта")

	return &Store{
		db:      db,
		logger:  logger,
		changes: observable.NewSubject[uint64](0),
	}, nil
}

// Close закрывает базу и все подписки на изменения
func (s *Store) Close() error {
	s.changes.Close()
	return s.db.Close()
}

// Changes подписка на изменения данных. Каждое значение является номером
// версии базы; получив его, подписчик перечитывает нужные таблицы.
func (s *Store) Changes() (<-chan uint64, func()) {
	return s.changes.Subscribe()
}

// notify сообщает подписчикам об изменении данных
func (s *Store) notify() {
	s.changes.Publish(s.version.Add(1))
}

// ListFavorites возвращает названия всех избранных треков
func (s *Store) ListFavorites(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name FROM favourite_audio ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения избранного: %w", err)
	}
	defer rows.Close()

	names := make([]string, 0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("ошибка чтения избранного: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// AddFavorite добавляет трек в избранное; повторное добавление ничего не меняет
func (s *Store) AddFavorite(ctx context.Context, title string) error {
	res, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO favourite_audio (name) VALUES (?)`, title)
	if err != nil {
		return fmt.Errorf("ошибка добавления в избранное: %w", err)
	}
	s.notifyIfChanged(res)
	return nil
}

// RemoveFavorite удаляет трек из избранного; отсутствие записи не ошибка
func (s *Store) RemoveFavorite(ctx context.Context, title string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM favourite_audio WHERE name = ?`, title)
	if err != nil {
		return fmt.Errorf("ошибка удаления из избранного: %w", err)
	}
	s.notifyIfChanged(res)
	return nil
}

// ListPlaylists возвращает все плейлисты в порядке создания
func (s *Store) ListPlaylists(ctx context.Context) ([]Playlist, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT playlistId, COALESCE(name, '') FROM playlist ORDER BY playlistId`)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения плейлистов: %w", err)
	}
	defer rows.Close()

	playlists := make([]Playlist, 0)
	for rows.Next() {
		var p Playlist
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, fmt.Errorf("ошибка чтения плейлистов: %w", err)
		}
		playlists = append(playlists, p)
	}
	return playlists, rows.Err()
}

// PlaylistByName возвращает плейлист по имени
func (s *Store) PlaylistByName(ctx context.Context, name string) (Playlist, error) {
	var p Playlist
	err := s.db.QueryRowContext(ctx,
		`SELECT playlistId, name FROM playlist WHERE name = ? ORDER BY playlistId LIMIT 1`, name,
	).Scan(&p.ID, &p.Name)
	if errors.Is(err, sql.ErrNoRows) {
		return Playlist{}, fmt.Errorf("%w: %s", ErrPlaylistNotFound, name)
	}
	if err != nil {
		return Playlist{}, fmt.Errorf("ошибка чтения плейлиста: %w", err)
	}
	return p, nil
}

// CreatePlaylist создает плейлист и возвращает его идентификатор
func (s *Store) CreatePlaylist(ctx context.Context, name string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `INSERT OR IGNORE INTO playlist (name) VALUES (?)`, name)
	if err != nil {
		return 0, fmt.Errorf("ошибка создания плейлиста: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("ошибка получения ID плейлиста: %w", err)
	}
	s.notifyIfChanged(res)
	return id, nil
}

// RenamePlaylist переименовывает плейлист. Элементы, добавленные по старому
// имени, остаются привязаны к идентификатору.
func (s *Store) RenamePlaylist(ctx context.Context, id int64, name string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE playlist SET name = ? WHERE playlistId = ?`, name, id)
	if err != nil {
		return fmt.Errorf("ошибка переименования плейлиста: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: id %d", ErrPlaylistNotFound, id)
	}
	s.notify()
	return nil
}

// DeletePlaylist удаляет плейлист. Строки playlist_item не удаляются.
func (s *Store) DeletePlaylist(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM playlist WHERE playlistId = ?`, id)
	if err != nil {
		return fmt.Errorf("ошибка удаления плейлиста: %w", err)
	}
	s.notifyIfChanged(res)
	return nil
}

// ListPlaylistItems возвращает элементы плейлиста с указанным именем
func (s *Store) ListPlaylistItems(ctx context.Context, name string) ([]PlaylistItem, error) {
	return s.queryItems(ctx,
		`SELECT itemId, playlistId, audioTitle FROM playlist_item
		 WHERE playlistId = `+playlistIDByName+` ORDER BY itemId`, name)
}

// ListPlaylistItemsByID возвращает элементы плейлиста по его идентификатору
func (s *Store) ListPlaylistItemsByID(ctx context.Context, id int64) ([]PlaylistItem, error) {
	return s.queryItems(ctx,
		`SELECT itemId, playlistId, audioTitle FROM playlist_item
		 WHERE playlistId = ? ORDER BY itemId`, id)
}

// ListAllPlaylistItems возвращает все строки playlist_item, включая осиротевшие
func (s *Store) ListAllPlaylistItems(ctx context.Context) ([]PlaylistItem, error) {
	return s.queryItems(ctx,
		`SELECT itemId, COALESCE(playlistId, 0), audioTitle FROM playlist_item ORDER BY itemId`)
}

func (s *Store) queryItems(ctx context.Context, query string, args ...any) ([]PlaylistItem, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения элементов плейлиста: %w", err)
	}
	defer rows.Close()

	items := make([]PlaylistItem, 0)
	for rows.Next() {
		var item PlaylistItem
		if err := rows.Scan(&item.ID, &item.PlaylistID, &item.AudioTitle); err != nil {
			return nil, fmt.Errorf("ошибка чтения элементов плейлиста: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// AddItem добавляет трек в плейлист с указанным именем. Повторное
// добавление того же трека создает еще одну строку.
func (s *Store) AddItem(ctx context.Context, playlistName, title string) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO playlist_item (playlistId, audioTitle)
		 SELECT playlistId, ? FROM playlist WHERE name = ? ORDER BY playlistId LIMIT 1`,
		title, playlistName)
	if err != nil {
		return fmt.Errorf("ошибка добавления трека в плейлист: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrPlaylistNotFound, playlistName)
	}
	s.notify()
	return nil
}

// RemoveItem удаляет трек из плейлиста с указанным именем
func (s *Store) RemoveItem(ctx context.Context, playlistName, title string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM playlist_item WHERE audioTitle = ? AND playlistId = `+playlistIDByName,
		title, playlistName)
	if err != nil {
		return fmt.Errorf("ошибка удаления трека из плейлиста: %w", err)
	}
	s.notifyIfChanged(res)
	return nil
}

// Snapshot записывает согласованную копию базы в новый файл
func (s *Store) Snapshot(ctx context.Context, path string) error {
	if _, err := s.db.ExecContext(ctx, `VACUUM INTO ?`, path); err != nil {
		return fmt.Errorf("ошибка создания снимка базы: %w", err)
	}
	return nil
}

func (s *Store) notifyIfChanged(res sql.Result) {
	n, err := res.RowsAffected()
	if err != nil || n > 0 {
		s.notify()
	}
}
