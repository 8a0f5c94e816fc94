package backup

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
)

// KeyPrefix каталог резервных копий в бакете
const KeyPrefix = "backups/"

// Storage хранилище резервных копий
type Storage interface {
	UploadFile(ctx context.Context, reader io.Reader, key string) (string, error)
	DeleteFile(ctx context.Context, key string) error
	ListFiles(ctx context.Context, prefix string) ([]string, error)
}

// Snapshotter умеет сохранять согласованную копию базы в файл
type Snapshotter interface {
	Snapshot(ctx context.Context, path string) error
}

// Result содержит результат резервного копирования
type Result struct {
	Key  string
	URL  string
	Size int64
}

// Service делает резервные копии базы
type Service struct {
	storage  Storage
	database Snapshotter
	logger   zerolog.Logger
	now      func() time.Time
}

// NewService создает сервис резервного копирования
func NewService(storage Storage, database Snapshotter, logger zerolog.Logger) *Service {
	return &Service{
		storage:  storage,
		database: database,
		logger:   logger,
		now:      time.Now,
	}
}

// Backup снимает копию базы и выгружает ее. progressCallback, если задан,
// получает число отправленных байт.
func (s *Service) Backup(ctx context.Context, progressCallback func(int64)) (*Result, error) {
	tempDir, err := os.MkdirTemp("", "tomans-backup-")
	if err != nil {
		return nil, fmt.Errorf("ошибка создания временного каталога: %w", err)
	}
	defer os.RemoveAll(tempDir)

	snapshotPath := filepath.Join(tempDir, "tomans.db")
	if err := s.database.Snapshot(ctx, snapshotPath); err != nil {
		return nil, err
	}

	file, err := os.Open(snapshotPath)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия снимка: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("ошибка получения информации о снимке: %w", err)
	}

	// Создаем reader с отслеживанием прогресса
	var reader io.Reader = file
	if progressCallback != nil {
		reader = &ProgressReader{
			Reader:     file,
			Size:       info.Size(),
			OnProgress: progressCallback,
		}
	}

	key := s.keyFor(s.now())
	url, err := s.storage.UploadFile(ctx, reader, key)
	if err != nil {
		return nil, fmt.Errorf("ошибка загрузки в S3: %w", err)
	}

	s.logger.Info().Str("key", key).Int64("size", info.Size()).Msg("резервная копия выгружена")
	return &Result{Key: key, URL: url, Size: info.Size()}, nil
}

// List возвращает ключи резервных копий от старых к новым
func (s *Service) List(ctx context.Context) ([]string, error) {
	return s.storage.ListFiles(ctx, KeyPrefix)
}

// Prune оставляет keep последних копий и удаляет остальные
func (s *Service) Prune(ctx context.Context, keep int) ([]string, error) {
	keys, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	if keep < 0 {
		keep = 0
	}
	if len(keys) <= keep {
		return nil, nil
	}

	stale := keys[:len(keys)-keep]
	for _, key := range stale {
		if err := s.storage.DeleteFile(ctx, key); err != nil {
			return nil, err
		}
		s.logger.Info().Str("key", key).Msg("старая резервная копия удалена")
	}
	return stale, nil
}

func (s *Service) keyFor(t time.Time) string {
	return KeyPrefix + t.UTC().Format("20060102-150405") + "-tomans.db"
}

// ProgressReader структура для отслеживания прогресса чтения
type ProgressReader struct {
	io.Reader
	Size       int64
	OnProgress func(int64)
	bytesRead  int64
}

func (pr *ProgressReader) Read(p []byte) (n int, err error) {
	n, err = pr.Reader.Read(p)
	pr.bytesRead += int64(n)
	if pr.OnProgress != nil {
		pr.OnProgress(pr.bytesRead)
	}
	return n, err
}
