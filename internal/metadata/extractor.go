// Package metadata предоставляет функционал для извлечения метаданных из аудио файлов
package metadata

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dhowden/tag"
	"github.com/gopxl/beep"
	"github.com/gopxl/beep/mp3"
	"github.com/gopxl/beep/wav"
)

// UnknownArtist подставляется, когда исполнителя не удалось определить
const UnknownArtist = "Unknown Artist"

// TrackMetadata хранит метаданные трека
type TrackMetadata struct {
	Artist string
	Title  string
	Album  string
}

// Extractor извлекает метаданные из аудио файлов
type Extractor struct{}

// NewExtractor создает новый экстрактор метаданных
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractFromReader извлекает метаданные из io.ReadSeeker.
// Пустые теги дополняются значениями, разобранными из имени файла.
func (e *Extractor) ExtractFromReader(reader io.ReadSeeker, source string) TrackMetadata {
	fallback := e.getDefaultMetadata(source)

	// Сбрасываем reader в начало
	if _, err := reader.Seek(0, io.SeekStart); err != nil {
		return fallback
	}

	metadata, err := tag.ReadFrom(reader)
	if err != nil {
		return fallback
	}

	result := TrackMetadata{
		Artist: metadata.Artist(),
		Title:  metadata.Title(),
		Album:  metadata.Album(),
	}
	if result.Title == "" {
		result.Title = fallback.Title
	}
	if result.Artist == "" {
		result.Artist = fallback.Artist
	}
	return result
}

// ExtractFromFile извлекает метаданные из файла
func (e *Extractor) ExtractFromFile(filePath string) TrackMetadata {
	file, err := os.Open(filePath)
	if err != nil {
		return e.getDefaultMetadata(filePath)
	}
	defer file.Close()

	return e.ExtractFromReader(file, filePath)
}

// GetDuration получает длительность MP3 или WAV файла
func (e *Extractor) GetDuration(filePath string) (time.Duration, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return 0, fmt.Errorf("ошибка открытия файла: %w", err)
	}

	streamer, format, err := Decode(file, filePath)
	if err != nil {
		file.Close()
		return 0, err
	}
	// Закрытие декодера закрывает и файл
	defer streamer.Close()

	return format.SampleRate.D(streamer.Len()), nil
}

// Decode выбирает декодер по расширению файла
func Decode(rc io.ReadCloser, filePath string) (beep.StreamSeekCloser, beep.Format, error) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".mp3":
		streamer, format, err := mp3.Decode(rc)
		if err != nil {
			return nil, beep.Format{}, fmt.Errorf("ошибка декодирования MP3: %w", err)
		}
		return streamer, format, nil
	case ".wav":
		streamer, format, err := wav.Decode(rc)
		if err != nil {
			return nil, beep.Format{}, fmt.Errorf("ошибка декодирования WAV: %w", err)
		}
		return streamer, format, nil
	default:
		return nil, beep.Format{}, fmt.Errorf("неподдерживаемый формат: %s", filepath.Ext(filePath))
	}
}

// IsSupported сообщает, умеет ли плеер воспроизводить файл
func IsSupported(filePath string) bool {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".mp3", ".wav":
		return true
	}
	return false
}

// getDefaultMetadata возвращает метаданные по умолчанию на основе имени файла
func (e *Extractor) getDefaultMetadata(source string) TrackMetadata {
	fileName := filepath.Base(source)
	nameWithoutExt := strings.TrimSuffix(fileName, filepath.Ext(fileName))

	// Пытаемся разобрать имя файла в формате "Artist - Title"
	parts := strings.Split(nameWithoutExt, " - ")
	if len(parts) >= 2 {
		return TrackMetadata{
			Artist: strings.TrimSpace(parts[0]),
			Title:  strings.TrimSpace(strings.Join(parts[1:], " - ")),
			Album:  "",
		}
	}

	// Если не удалось разобрать, используем имя файла как название
	return TrackMetadata{
		Artist: UnknownArtist,
		Title:  nameWithoutExt,
		Album:  "",
	}
}
