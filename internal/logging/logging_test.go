package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewLevelFiltering(t *testing.T) {
	var buf bytes.Buffer

	logger, err := New(&buf, "warn")
	if err != nil {
		t.Fatalf("Ошибка создания логгера: %v", err)
	}

	logger.Info().Msg("скрытое сообщение")
	logger.Warn().Msg("видимое сообщение")

	output := buf.String()
	if strings.Contains(output, "скрытое сообщение") {
		t.Error("Сообщение уровня info не должно попадать в журнал уровня warn")
	}
	if !strings.Contains(output, "видимое сообщение") {
		t.Errorf("Ожидалось сообщение уровня warn в журнале, получено: %q", output)
	}
}

func TestNewInvalidLevel(t *testing.T) {
	if _, err := New(&bytes.Buffer{}, "loud"); err == nil {
		t.Error("Ожидалась ошибка для неизвестного уровня логирования")
	}
}

func TestNewFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tomans.log")

	logger, closer, err := NewFile(path, "debug")
	if err != nil {
		t.Fatalf("Ошибка создания файлового логгера: %v", err)
	}

	logger.Debug().Str("track", "Song1").Msg("воспроизведение")
	if err := closer.Close(); err != nil {
		t.Fatalf("Ошибка закрытия файла журнала: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Ошибка чтения файла журнала: %v", err)
	}
	if !strings.Contains(string(data), `"track":"Song1"`) {
		t.Errorf("Ожидалось структурированное поле в журнале, получено: %s", data)
	}
}
