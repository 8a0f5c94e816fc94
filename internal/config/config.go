// Package config содержит функции для загрузки конфигурации приложения
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Значения по умолчанию
const (
	DefaultDatabasePath     = "~/.tomans.db"
	DefaultCatalogCache     = "~/.tomans-library.yaml"
	DefaultLibraryDir       = "~/Music"
	DefaultPositionInterval = 500 * time.Millisecond
	DefaultWaveformBars     = 48
	DefaultLogLevel         = "info"
)

// Config структура для хранения конфигурации приложения
type Config struct {
	LibraryDirs      []string      `yaml:"library_dirs"`
	DatabasePath     string        `yaml:"database_path"`
	CatalogCache     string        `yaml:"catalog_cache"`
	PositionInterval time.Duration `yaml:"position_interval"`
	WaveformBars     int           `yaml:"waveform_bars"`
	LogLevel         string        `yaml:"log_level"`
	LogFile          string        `yaml:"log_file"`

	// Настройки резервного копирования базы в S3-совместимое хранилище
	AwsBucketName string `yaml:"aws_bucket_name"`
	AwsAccessKey  string `yaml:"aws_access_key"`
	AwsSecretKey  string `yaml:"aws_secret_key"`
	AwsRegion     string `yaml:"aws_region"`
	AwsEndpoint   string `yaml:"aws_endpoint"`
}

// LoadConfig загружает конфигурацию приложения из указанного файла.
// Если файла нет, возвращается конфигурация по умолчанию.
func LoadConfig(filePath string) (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	path := strings.Replace(filePath, "~", home, 1)

	config := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// Плеер должен работать и без файла конфигурации
	case err != nil:
		return nil, fmt.Errorf("ошибка чтения конфигурации: %w", err)
	default:
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("ошибка разбора конфигурации: %w", err)
		}
	}

	config.applyDefaults()

	// Раскрываем тильду во всех путях
	for i, dir := range config.LibraryDirs {
		config.LibraryDirs[i] = strings.Replace(dir, "~", home, 1)
	}
	config.DatabasePath = strings.Replace(config.DatabasePath, "~", home, 1)
	config.CatalogCache = strings.Replace(config.CatalogCache, "~", home, 1)
	config.LogFile = strings.Replace(config.LogFile, "~", home, 1)

	return config, nil
}

// applyDefaults устанавливает значения по умолчанию, если они не заданы
func (c *Config) applyDefaults() {
	if len(c.LibraryDirs) == 0 {
		c.LibraryDirs = []string{DefaultLibraryDir}
	}
	if c.DatabasePath == "" {
		c.DatabasePath = DefaultDatabasePath
	}
	if c.CatalogCache == "" {
		c.CatalogCache = DefaultCatalogCache
	}
	if c.PositionInterval <= 0 {
		c.PositionInterval = DefaultPositionInterval
	}
	if c.WaveformBars <= 0 {
		c.WaveformBars = DefaultWaveformBars
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
}

// BackupEnabled сообщает, настроено ли резервное копирование
func (c *Config) BackupEnabled() bool {
	return c.AwsBucketName != "" && c.AwsAccessKey != "" && c.AwsSecretKey != ""
}
