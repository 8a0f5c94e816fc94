// Package waveform периодически снимает форму сигнала воспроизводимого трека
// и раздает ее подписчикам
package waveform

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/hazadus/go-tomans/internal/audiofx"
)

// DefaultInterval период снятия формы сигнала
const DefaultInterval = 16 * time.Millisecond

// Listener получает снимки формы сигнала
type Listener interface {
	OnWaveform(wave []byte)
}

// Sampler снимает форму сигнала одного сеанса воспроизведения
type Sampler struct {
	registry *audiofx.Registry
	interval time.Duration
	logger   zerolog.Logger

	// lifecycle упорядочивает Start и Stop целиком, включая ожидание цикла.
	// Цикл его не берет.
	lifecycle sync.Mutex
	capturing atomic.Bool

	mu         sync.Mutex
	listeners  []Listener
	visualizer *audiofx.Visualizer
	stop       chan struct{}
	done       chan struct{}
}

// NewSampler создает сэмплер поверх реестра сеансов
func NewSampler(registry *audiofx.Registry, logger zerolog.Logger) *Sampler {
	return &Sampler{
		registry: registry,
		interval: DefaultInterval,
		logger:   logger,
	}
}

// AddListener добавляет подписчика
func (s *Sampler) AddListener(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// RemoveListener удаляет подписчика, сравнивая по ссылке
func (s *Sampler) RemoveListener(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.listeners {
		if existing == l {
			s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
			return
		}
	}
}

// Capturing сообщает, идет ли снятие формы сигнала
func (s *Sampler) Capturing() bool {
	return s.capturing.Load()
}

// Start начинает снятие формы сигнала сеанса. Повторный вызов во время
// работы ничего не делает.
func (s *Sampler) Start(session audiofx.SessionID) error {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	if s.capturing.Load() {
		return nil
	}

	visualizer, err := s.registry.NewVisualizer(session)
	if err != nil {
		return fmt.Errorf("ошибка подключения визуализатора: %w", err)
	}
	_, max := audiofx.CaptureSizeRange()
	if err := visualizer.SetCaptureSize(max); err != nil {
		visualizer.Release()
		return err
	}
	if err := visualizer.SetEnabled(true); err != nil {
		visualizer.Release()
		return err
	}

	stop := make(chan struct{})
	done := make(chan struct{})

	s.mu.Lock()
	s.visualizer = visualizer
	s.stop = stop
	s.done = done
	s.mu.Unlock()
	s.capturing.Store(true)

	go s.loop(visualizer, stop, done)

	s.logger.Debug().Str("session", session.String()).Msg("снятие формы сигнала запущено")
	return nil
}

// Stop останавливает снятие и освобождает визуализатор.
// Нельзя вызывать из обработчика подписчика.
func (s *Sampler) Stop() {
	s.lifecycle.Lock()
	defer s.lifecycle.Unlock()

	s.mu.Lock()
	visualizer, stop, done := s.visualizer, s.stop, s.done
	s.visualizer, s.stop, s.done = nil, nil, nil
	s.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
	visualizer.Release()
	s.capturing.Store(false)
}

func (s *Sampler) loop(visualizer *audiofx.Visualizer, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			wave, err := visualizer.WaveForm()
			if err != nil {
				s.logger.Debug().Err(err).Msg("снимок формы сигнала недоступен")
				continue
			}
			s.publish(wave)
		}
	}
}

// publish рассылает снимок копии списка подписчиков, поэтому подписчик
// может отписаться прямо из обработчика
func (s *Sampler) publish(wave []byte) {
	s.mu.Lock()
	listeners := make([]Listener, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	for _, l := range listeners {
		l.OnWaveform(wave)
	}
}
