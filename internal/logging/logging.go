// Package logging настраивает структурированный логгер приложения
package logging

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// New создает логгер с указанным уровнем, пишущий в w в консольном формате
func New(w io.Writer, level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("неверный уровень логирования %q: %w", level, err)
	}

	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly, NoColor: w != os.Stderr}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}

// NewFile создает логгер, пишущий JSON-записи в файл.
// Используется в TUI, где вывод в терминал ломает отрисовку.
func NewFile(path, level string) (zerolog.Logger, io.Closer, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("неверный уровень логирования %q: %w", level, err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("ошибка открытия файла журнала: %w", err)
	}

	return zerolog.New(f).Level(lvl).With().Timestamp().Logger(), f, nil
}
