package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"), zerolog.Nop())
	if err != nil {
		t.Fatalf("Ошибка открытия базы: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestFavoritesIdempotent(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	if err := s.AddFavorite(ctx, "Song1"); err != nil {
		t.Fatalf("Ошибка добавления в избранное: %v", err)
	}
	if err := s.AddFavorite(ctx, "Song1"); err != nil {
		t.Fatalf("Повторное добавление не должно быть ошибкой: %v", err)
	}

	names, err := s.ListFavorites(ctx)
	if err != nil {
		t.Fatalf("Ошибка чтения избранного: %v", err)
	}
	if len(names) != 1 || names[0] != "Song1" {
		t.Errorf("Ожидалось [Song1], получено %v", names)
	}

	if err := s.RemoveFavorite(ctx, "Missing"); err != nil {
		t.Fatalf("Удаление отсутствующего трека не должно быть ошибкой: %v", err)
	}
	names, _ = s.ListFavorites(ctx)
	if len(names) != 1 {
		t.Errorf("Набор избранного не должен измениться, получено %v", names)
	}

	if err := s.RemoveFavorite(ctx, "Song1"); err != nil {
		t.Fatalf("Ошибка удаления из избранного: %v", err)
	}
	names, _ = s.ListFavorites(ctx)
	if len(names) != 0 {
		t.Errorf("Ожидался пустой список, получено %v", names)
	}
}

func TestPlaylistItemsScenario(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	if _, err := s.CreatePlaylist(ctx, "Gym"); err != nil {
		t.Fatalf("Ошибка создания плейлиста: %v", err)
	}
	if err := s.AddItem(ctx, "Gym", "Song1"); err != nil {
		t.Fatalf("Ошибка добавления трека: %v", err)
	}

	items, err := s.ListPlaylistItems(ctx, "Gym")
	if err != nil {
		t.Fatalf("Ошибка чтения элементов: %v", err)
	}
	if len(items) != 1 || items[0].AudioTitle != "Song1" {
		t.Fatalf("Ожидалось [Song1], получено %v", items)
	}

	if err := s.RemoveItem(ctx, "Gym", "Song1"); err != nil {
		t.Fatalf("Ошибка удаления трека: %v", err)
	}
	items, _ = s.ListPlaylistItems(ctx, "Gym")
	if len(items) != 0 {
		t.Errorf("Ожидался пустой плейлист, получено %v", items)
	}
}

func TestPlaylistDuplicateItemsAllowed(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	s.CreatePlaylist(ctx, "Gym")
	s.AddItem(ctx, "Gym", "Song1")
	s.AddItem(ctx, "Gym", "Song1")

	items, _ := s.ListPlaylistItems(ctx, "Gym")
	if len(items) != 2 {
		t.Errorf("Ожидалось 2 строки для повторного трека, получено %d", len(items))
	}
}

func TestAddItemUnknownPlaylist(t *testing.T) {
	s := openTestStore(t)

	err := s.AddItem(context.Background(), "Missing", "Song1")
	if !errors.Is(err, ErrPlaylistNotFound) {
		t.Errorf("Ожидалась ErrPlaylistNotFound, получено %v", err)
	}
}

func TestRenameKeepsMembership(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	id, _ := s.CreatePlaylist(ctx, "Gym")
	s.AddItem(ctx, "Gym", "Song1")

	if err := s.RenamePlaylist(ctx, id, "Run"); err != nil {
		t.Fatalf("Ошибка переименования: %v", err)
	}

	items, _ := s.ListPlaylistItems(ctx, "Run")
	if len(items) != 1 {
		t.Errorf("Элементы должны быть доступны по новому имени, получено %v", items)
	}
	items, _ = s.ListPlaylistItems(ctx, "Gym")
	if len(items) != 0 {
		t.Errorf("По старому имени элементов быть не должно, получено %v", items)
	}

	p, err := s.PlaylistByName(ctx, "Run")
	if err != nil || p.ID != id {
		t.Errorf("Ожидался плейлист с ID %d, получено %v (%v)", id, p, err)
	}

	if err := s.RenamePlaylist(ctx, 999, "X"); !errors.Is(err, ErrPlaylistNotFound) {
		t.Errorf("Ожидалась ErrPlaylistNotFound, получено %v", err)
	}
}

func TestDeletePlaylistOrphansItems(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	id, _ := s.CreatePlaylist(ctx, "Gym")
	s.AddItem(ctx, "Gym", "Song1")

	if err := s.DeletePlaylist(ctx, id); err != nil {
		t.Fatalf("Ошибка удаления плейлиста: %v", err)
	}

	playlists, _ := s.ListPlaylists(ctx)
	if len(playlists) != 0 {
		t.Errorf("Ожидался пустой список плейлистов, получено %v", playlists)
	}

	all, _ := s.ListAllPlaylistItems(ctx)
	if len(all) != 1 {
		t.Errorf("Элементы удаленного плейлиста должны остаться, получено %v", all)
	}
	byID, _ := s.ListPlaylistItemsByID(ctx, id)
	if len(byID) != 1 {
		t.Errorf("Ожидался осиротевший элемент по ID, получено %v", byID)
	}
}

func TestChangesNotified(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	changes, cancel := s.Changes()
	defer cancel()

	// Первое значение является текущей версией
	<-changes

	s.AddFavorite(ctx, "Song1")

	select {
	case v := <-changes:
		if v == 0 {
			t.Error("Версия должна увеличиться после изменения")
		}
	case <-time.After(time.Second):
		t.Fatal("Не получено уведомление об изменении")
	}
}

func TestSnapshot(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	s.AddFavorite(ctx, "Song1")

	path := filepath.Join(t.TempDir(), "snapshot.db")
	if err := s.Snapshot(ctx, path); err != nil {
		t.Fatalf("Ошибка создания снимка: %v", err)
	}

	copyStore, err := Open(ctx, path, zerolog.Nop())
	if err != nil {
		t.Fatalf("Ошибка открытия снимка: %v", err)
	}
	defer copyStore.Close()

	names, _ := copyStore.ListFavorites(ctx)
	if len(names) != 1 || names[0] != "Song1" {
		t.Errorf("Снимок должен содержать избранное, получено %v", names)
	}
}
