// Package data содержит модель трека и каталога библиотеки
package data

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Track описывает аудиофайл из локального хранилища
type Track struct {
	ID       int           `yaml:"id"`
	Title    string        `yaml:"title"`
	Artist   string        `yaml:"artist"`
	Album    string        `yaml:"album"`
	Path     string        `yaml:"path"`     // Путь к файлу на диске
	Duration time.Duration `yaml:"duration"` // Длительность трека
	Favorite bool          `yaml:"-"`        // Вычисляется из таблицы избранного, не сохраняется
}

// Catalog хранит список треков, полученный при последнем сканировании
type Catalog struct {
	Tracks []Track `yaml:"tracks"`
}

// NewCatalog создает пустой каталог
func NewCatalog() *Catalog {
	return &Catalog{
		Tracks: make([]Track, 0),
	}
}

// LoadData загружает кэш каталога из файла
func (c *Catalog) LoadData(filePath string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	path := strings.Replace(filePath, "~", home, 1)

	data, err := os.ReadFile(path)
	if err != nil {
		// Если файл не найден, инициализируем пустыми данными
		if os.IsNotExist(err) {
			*c = *NewCatalog()
			return nil
		}
		return fmt.Errorf("ошибка чтения кэша каталога: %w", err)
	}
	if len(data) == 0 {
		*c = *NewCatalog()
		return nil
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("ошибка разбора кэша каталога: %w", err)
	}
	if c.Tracks == nil {
		c.Tracks = make([]Track, 0)
	}
	return nil
}

// SaveData сохраняет каталог в файл кэша
func (c *Catalog) SaveData(filePath string) error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}
	path := strings.Replace(filePath, "~", home, 1)

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("ошибка сериализации каталога: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("ошибка записи кэша каталога: %w", err)
	}
	return nil
}

// TrackByID возвращает трек по ID
func (c *Catalog) TrackByID(id int) (*Track, error) {
	for i := range c.Tracks {
		if c.Tracks[i].ID == id {
			return &c.Tracks[i], nil
		}
	}
	return nil, fmt.Errorf("трека с ID %d не найдено", id)
}

// TrackByTitle возвращает первый трек с указанным названием
func (c *Catalog) TrackByTitle(title string) (*Track, bool) {
	for i := range c.Tracks {
		if c.Tracks[i].Title == title {
			return &c.Tracks[i], true
		}
	}
	return nil, false
}

// IndexOf возвращает позицию трека с указанным ID или -1
func IndexOf(tracks []Track, id int) int {
	for i := range tracks {
		if tracks[i].ID == id {
			return i
		}
	}
	return -1
}

// Next возвращает трек, следующий за треком с указанным ID
func (c *Catalog) Next(afterID int) (*Track, bool) {
	idx := IndexOf(c.Tracks, afterID)
	if idx < 0 || idx+1 >= len(c.Tracks) {
		return nil, false
	}
	return &c.Tracks[idx+1], true
}
