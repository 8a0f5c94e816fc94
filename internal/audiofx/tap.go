// Package audiofx снимает форму сигнала с воспроизводимого звука.
// Плеер регистрирует для каждого сеанса воспроизведения Tap, а визуализатор
// подключается к нему по идентификатору сеанса.
package audiofx

import (
	"sync"

	"github.com/google/uuid"
	"github.com/gopxl/beep"
)

// SessionID идентификатор сеанса воспроизведения
type SessionID uuid.UUID

// NewSessionID создает новый уникальный идентификатор сеанса
func NewSessionID() SessionID {
	return SessionID(uuid.New())
}

// String возвращает строковое представление идентификатора
func (s SessionID) String() string {
	return uuid.UUID(s).String()
}

// Tap пропускает звук без изменений и хранит последние сэмплы
// в кольцевом буфере
type Tap struct {
	s    beep.Streamer
	mu   sync.Mutex
	buf  []float64
	pos  int
	size int
}

// NewTap оборачивает streamer кольцевым буфером размера bufSize
func NewTap(s beep.Streamer, bufSize int) *Tap {
	if bufSize <= 0 {
		bufSize = maxCaptureSize
	}
	return &Tap{
		s:    s,
		buf:  make([]float64, bufSize),
		size: bufSize,
	}
}

// Stream передает звук дальше, сохраняя моно-микс в буфер
func (t *Tap) Stream(samples [][2]float64) (int, bool) {
	n, ok := t.s.Stream(samples)
	t.mu.Lock()
	for i := 0; i < n; i++ {
		t.buf[t.pos] = (samples[i][0] + samples[i][1]) / 2
		t.pos = (t.pos + 1) % t.size
	}
	t.mu.Unlock()
	return n, ok
}

// Err возвращает ошибку исходного streamer
func (t *Tap) Err() error {
	return t.s.Err()
}

// Samples возвращает последние n сэмплов в хронологическом порядке
func (t *Tap) Samples(n int) []float64 {
	if n > t.size {
		n = t.size
	}
	out := make([]float64, n)
	t.mu.Lock()
	start := (t.pos - n + t.size) % t.size
	for i := 0; i < n; i++ {
		out[i] = t.buf[(start+i)%t.size]
	}
	t.mu.Unlock()
	return out
}
