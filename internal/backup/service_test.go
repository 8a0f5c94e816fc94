package backup

import (
	"context"
	"errors"
	"io"
	"os"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

// mockStorage хранит выгруженные файлы в памяти
type mockStorage struct {
	files     map[string]string
	uploadErr error
}

func newMockStorage() *mockStorage {
	return &mockStorage{files: make(map[string]string)}
}

func (m *mockStorage) UploadFile(ctx context.Context, reader io.Reader, key string) (string, error) {
	if m.uploadErr != nil {
		return "", m.uploadErr
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	m.files[key] = string(body)
	return "https://s3.example.com/test-bucket/" + key, nil
}

func (m *mockStorage) DeleteFile(ctx context.Context, key string) error {
	delete(m.files, key)
	return nil
}

func (m *mockStorage) ListFiles(ctx context.Context, prefix string) ([]string, error) {
	keys := make([]string, 0)
	for key := range m.files {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

// mockDatabase пишет фиксированное содержимое вместо снимка
type mockDatabase struct {
	content string
	err     error
}

func (m *mockDatabase) Snapshot(ctx context.Context, path string) error {
	if m.err != nil {
		return m.err
	}
	return os.WriteFile(path, []byte(m.content), 0644)
}

func TestBackup(t *testing.T) {
	storage := newMockStorage()
	service := NewService(storage, &mockDatabase{content: "sqlite snapshot"}, zerolog.Nop())
	service.now = func() time.Time { return time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC) }

	var progress int64
	result, err := service.Backup(context.Background(), func(n int64) { progress = n })
	if err != nil {
		t.Fatalf("Неожиданная ошибка резервного копирования: %v", err)
	}

	expectedKey := "backups/20250314-150926-tomans.db"
	if result.Key != expectedKey {
		t.Errorf("Ожидался ключ: %s, получено: %s", expectedKey, result.Key)
	}
	if result.Size != int64(len("sqlite snapshot")) {
		t.Errorf("Ожидался размер %d, получено %d", len("sqlite snapshot"), result.Size)
	}
	if storage.files[expectedKey] != "sqlite snapshot" {
		t.Errorf("Неожиданное содержимое копии: %q", storage.files[expectedKey])
	}
	if progress != result.Size {
		t.Errorf("Ожидался прогресс %d, получено %d", result.Size, progress)
	}
}

func TestBackupErrors(t *testing.T) {
	snapshotErr := errors.New("база заблокирована")
	service := NewService(newMockStorage(), &mockDatabase{err: snapshotErr}, zerolog.Nop())
	if _, err := service.Backup(context.Background(), nil); !errors.Is(err, snapshotErr) {
		t.Errorf("Ожидалась ошибка снимка, получено %v", err)
	}

	storage := newMockStorage()
	storage.uploadErr = errors.New("network timeout")
	service = NewService(storage, &mockDatabase{content: "x"}, zerolog.Nop())
	if _, err := service.Backup(context.Background(), nil); err == nil {
		t.Error("Ожидалась ошибка загрузки")
	}
}

func TestPrune(t *testing.T) {
	storage := newMockStorage()
	storage.files["backups/20250101-000000-tomans.db"] = "1"
	storage.files["backups/20250102-000000-tomans.db"] = "2"
	storage.files["backups/20250103-000000-tomans.db"] = "3"
	service := NewService(storage, &mockDatabase{}, zerolog.Nop())

	removed, err := service.Prune(context.Background(), 1)
	if err != nil {
		t.Fatalf("Неожиданная ошибка: %v", err)
	}
	if len(removed) != 2 {
		t.Fatalf("Ожидалось удаление 2 копий, получено %v", removed)
	}

	keys, _ := service.List(context.Background())
	if len(keys) != 1 || keys[0] != "backups/20250103-000000-tomans.db" {
		t.Errorf("Должна остаться самая новая копия, получено %v", keys)
	}

	removed, _ = service.Prune(context.Background(), 5)
	if len(removed) != 0 {
		t.Errorf("Удалять нечего, получено %v", removed)
	}
}

func TestProgressReader(t *testing.T) {
	testData := "test content for progress tracking"
	var progressBytes int64

	progressReader := &ProgressReader{
		Reader:     strings.NewReader(testData),
		Size:       int64(len(testData)),
		OnProgress: func(n int64) { progressBytes = n },
	}

	buffer := make([]byte, 1024)
	n, err := progressReader.Read(buffer)
	if err != nil {
		t.Errorf("Неожиданная ошибка при чтении: %v", err)
	}
	if n != len(testData) {
		t.Errorf("Ожидалось прочитано байт: %d, получено: %d", len(testData), n)
	}
	if progressBytes != int64(len(testData)) {
		t.Errorf("Ожидалось байт в callback: %d, получено: %d", len(testData), progressBytes)
	}
}
