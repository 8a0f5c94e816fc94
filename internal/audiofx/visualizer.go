package audiofx

import (
	"errors"
	"fmt"
	"sync"
)

const (
	minCaptureSize = 128
	maxCaptureSize = 1024
)

var (
	// ErrNoSession сеанс с указанным идентификатором не зарегистрирован
	ErrNoSession = errors.New("сеанс воспроизведения не найден")
	// ErrDisabled визуализатор выключен
	ErrDisabled = errors.New("визуализатор выключен")
	// ErrReleased визуализатор уже освобожден
	ErrReleased = errors.New("визуализатор освобожден")
)

// CaptureSizeRange возвращает допустимые размеры снимка формы сигнала
func CaptureSizeRange() (min, max int) {
	return minCaptureSize, maxCaptureSize
}

// Registry связывает идентификаторы сеансов с их Tap
type Registry struct {
	mu   sync.RWMutex
	taps map[SessionID]*Tap
}

// NewRegistry создает пустой реестр сеансов
func NewRegistry() *Registry {
	return &Registry{taps: make(map[SessionID]*Tap)}
}

// Register делает Tap сеанса доступным визуализаторам
func (r *Registry) Register(session SessionID, tap *Tap) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.taps[session] = tap
}

// Unregister удаляет сеанс из реестра
func (r *Registry) Unregister(session SessionID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.taps, session)
}

func (r *Registry) lookup(session SessionID) (*Tap, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tap, ok := r.taps[session]
	return tap, ok
}

// Visualizer читает форму сигнала сеанса воспроизведения
type Visualizer struct {
	registry    *Registry
	session     SessionID
	mu          sync.Mutex
	captureSize int
	enabled     bool
	released    bool
}

// NewVisualizer подключается к зарегистрированному сеансу
func (r *Registry) NewVisualizer(session SessionID) (*Visualizer, error) {
	if _, ok := r.lookup(session); !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSession, session)
	}
	return &Visualizer{
		registry:    r,
		session:     session,
		captureSize: maxCaptureSize,
	}, nil
}

// SetCaptureSize задает размер снимка; допустимы значения из CaptureSizeRange
func (v *Visualizer) SetCaptureSize(size int) error {
	if size < minCaptureSize || size > maxCaptureSize {
		return fmt.Errorf("размер снимка %d вне диапазона [%d, %d]", size, minCaptureSize, maxCaptureSize)
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.captureSize = size
	return nil
}

// CaptureSize возвращает текущий размер снимка
func (v *Visualizer) CaptureSize() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.captureSize
}

// SetEnabled включает или выключает снятие формы сигнала
func (v *Visualizer) SetEnabled(enabled bool) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.released {
		return ErrReleased
	}
	v.enabled = enabled
	return nil
}

// WaveForm возвращает снимок формы сигнала длиной CaptureSize.
// Сэмплы представлены беззнаковыми байтами, 128 соответствует тишине.
func (v *Visualizer) WaveForm() ([]byte, error) {
	v.mu.Lock()
	size, enabled, released := v.captureSize, v.enabled, v.released
	v.mu.Unlock()

	switch {
	case released:
		return nil, ErrReleased
	case !enabled:
		return nil, ErrDisabled
	}

	tap, ok := v.registry.lookup(v.session)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoSession, v.session)
	}

	samples := tap.Samples(size)
	out := make([]byte, len(samples))
	for i, s := range samples {
		out[i] = toUnsigned8(s)
	}
	return out, nil
}

// Release отключает визуализатор от сеанса
func (v *Visualizer) Release() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.released = true
	v.enabled = false
}

func toUnsigned8(sample float64) byte {
	value := 128 + sample*127
	switch {
	case value < 0:
		return 0
	case value > 255:
		return 255
	}
	return byte(value)
}
