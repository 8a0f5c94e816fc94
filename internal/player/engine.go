// Package player содержит компоненты для управления воспроизведением аудио
package player

import (
	"time"

	"github.com/hazadus/go-tomans/internal/audiofx"
)

// EventType тип события движка воспроизведения
type EventType int

const (
	// EventReady движок подготовил трек и готов играть
	EventReady EventType = iota
	// EventEnded трек доигран до конца
	EventEnded
	// EventError ошибка воспроизведения
	EventError
)

func (t EventType) String() string {
	switch t {
	case EventReady:
		return "ready"
	case EventEnded:
		return "ended"
	case EventError:
		return "error"
	}
	return "unknown"
}

// EngineEvent событие движка воспроизведения
type EngineEvent struct {
	Type EventType
	Err  error // Заполняется для EventError
}

// Engine движок, воспроизводящий один трек
type Engine interface {
	// Prepare начинает подготовку трека; о готовности движок сообщает EventReady
	Prepare(ref string) error
	Play()
	Pause()
	// Stop ставит воспроизведение на паузу и перематывает в начало
	Stop()
	Seek(position time.Duration) error
	SetSpeed(factor float64)
	Position() time.Duration
	Duration() time.Duration
	// Session идентификатор сеанса для подключения визуализатора
	Session() audiofx.SessionID
	// Events канал событий; закрывается после Release
	Events() <-chan EngineEvent
	// Release освобождает устройство вывода и все ресурсы движка
	Release()
}

// EngineFactory создает новый движок для каждого выбранного трека
type EngineFactory func() (Engine, error)
