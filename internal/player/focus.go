package player

import (
	"sync"

	"github.com/rs/zerolog"
)

// AudioFocus право на единственное устройство вывода звука
type AudioFocus interface {
	Request()
	Abandon()
}

// SpeakerFocus учитывает, кто сейчас владеет динамиками
type SpeakerFocus struct {
	mu     sync.Mutex
	held   bool
	logger zerolog.Logger
}

// NewSpeakerFocus создает свободный фокус
func NewSpeakerFocus(logger zerolog.Logger) *SpeakerFocus {
	return &SpeakerFocus{logger: logger}
}

// Request захватывает фокус; повторный запрос ничего не меняет
func (f *SpeakerFocus) Request() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.held {
		f.held = true
		f.logger.Debug().Msg("фокус динамиков получен")
	}
}

// Abandon освобождает фокус
func (f *SpeakerFocus) Abandon() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.held {
		f.held = false
		f.logger.Debug().Msg("фокус динамиков освобожден")
	}
}

// Held сообщает, захвачен ли фокус
func (f *SpeakerFocus) Held() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.held
}
