// Package catalog строит каталог треков из файлов в локальных каталогах библиотеки
package catalog

import (
	"context"
	"io/fs"
	"path/filepath"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/hazadus/go-tomans/internal/data"
	"github.com/hazadus/go-tomans/internal/metadata"
)

// maxParallelRoots ограничивает число одновременно сканируемых корней
const maxParallelRoots = 4

// Source выполняет разовый запрос к файловой системе и возвращает каталог.
// Ошибки чтения не пробрасываются: в худшем случае каталог будет пустым.
type Source struct {
	roots     []string
	extractor *metadata.Extractor
	logger    zerolog.Logger
}

// NewSource создает источник каталога для указанных корневых каталогов
func NewSource(roots []string, logger zerolog.Logger) *Source {
	return &Source{
		roots:     roots,
		extractor: metadata.NewExtractor(),
		logger:    logger.With().Str("component", "catalog").Logger(),
	}
}

// Load сканирует все корни и возвращает каталог с идентификаторами 1..N,
// упорядоченный по пути к файлу
func (s *Source) Load(ctx context.Context) *data.Catalog {
	var (
		mu    sync.Mutex
		paths []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelRoots)

	for _, root := range s.roots {
		g.Go(func() error {
			found := s.walk(gctx, root)
			mu.Lock()
			paths = append(paths, found...)
			mu.Unlock()
			return nil
		})
	}
	// walk никогда не возвращает ошибку, ошибки только журналируются
	_ = g.Wait()

	sort.Strings(paths)

	catalog := data.NewCatalog()
	for _, path := range paths {
		if ctx.Err() != nil {
			s.logger.Warn().Err(ctx.Err()).Msg("сканирование прервано")
			return data.NewCatalog()
		}
		catalog.Tracks = append(catalog.Tracks, s.describe(len(catalog.Tracks)+1, path))
	}

	s.logger.Info().Int("tracks", len(catalog.Tracks)).Msg("каталог загружен")
	return catalog
}

// walk собирает пути поддерживаемых файлов внутри корня
func (s *Source) walk(ctx context.Context, root string) []string {
	var found []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Нет прав или каталог исчез: пропускаем, но продолжаем обход
			s.logger.Warn().Err(err).Str("path", path).Msg("не удалось прочитать")
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !d.IsDir() && metadata.IsSupported(path) {
			found = append(found, path)
		}
		return nil
	})
	if err != nil {
		s.logger.Warn().Err(err).Str("root", root).Msg("обход каталога завершился с ошибкой")
	}

	return found
}

// describe формирует описание трека по файлу
func (s *Source) describe(id int, path string) data.Track {
	meta := s.extractor.ExtractFromFile(path)

	duration, err := s.extractor.GetDuration(path)
	if err != nil {
		s.logger.Debug().Err(err).Str("path", path).Msg("длительность неизвестна")
	}

	return data.Track{
		ID:       id,
		Title:    meta.Title,
		Artist:   meta.Artist,
		Album:    meta.Album,
		Path:     path,
		Duration: duration,
	}
}
