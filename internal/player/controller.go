package player

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hazadus/go-tomans/internal/audiofx"
	"github.com/hazadus/go-tomans/internal/data"
)

var (
	// ErrNoTrack команда требует загруженного трека
	ErrNoTrack = errors.New("трек не загружен")
	// ErrClosed контроллер уже закрыт
	ErrClosed = errors.New("контроллер закрыт")
)

// State состояние сеанса воспроизведения
type State int

const (
	Idle State = iota
	Loading
	Paused
	Playing
	Ended
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Paused:
		return "paused"
	case Playing:
		return "playing"
	case Ended:
		return "ended"
	}
	return "unknown"
}

// Status представляет текущий статус плеера
type Status struct {
	Track       *data.Track   // Текущий трек или nil
	State       State         // Состояние сеанса
	Current     time.Duration // Текущая позиция
	Total       time.Duration // Общая продолжительность
	Speed       float64       // Скорость воспроизведения
	Repeat      bool          // Повтор трека
	AutoAdvance bool          // Переход к следующему треку
	Session     audiofx.SessionID
}

// IsPlaying возвращает true, если трек воспроизводится
func (s Status) IsPlaying() bool {
	return s.State == Playing
}

// Controller управляет единственным сеансом воспроизведения
type Controller struct {
	factory  EngineFactory
	focus    AudioFocus
	logger   zerolog.Logger
	interval time.Duration

	// Каналы для обратной связи
	progressChan chan Status
	errorsChan   chan error

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mutex       sync.Mutex
	engine      Engine
	generation  uint64
	track       *data.Track
	state       State
	speed       float64
	repeat      bool
	autoAdvance bool
	queue       []data.Track
	focused     bool
	closed      bool
}

// DefaultPositionInterval период опроса позиции по умолчанию
const DefaultPositionInterval = 500 * time.Millisecond

// NewController создает контроллер; interval задает период опроса позиции
func NewController(factory EngineFactory, focus AudioFocus, interval time.Duration, logger zerolog.Logger) *Controller {
	if interval <= 0 {
		interval = DefaultPositionInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		factory:      factory,
		focus:        focus,
		logger:       logger,
		interval:     interval,
		progressChan: make(chan Status, 1),
		errorsChan:   make(chan error, 8),
		ctx:          ctx,
		cancel:       cancel,
		speed:        DefaultSpeed,
	}

	c.wg.Add(1)
	go c.monitorProgress()

	return c
}

// Progress возвращает канал обновлений статуса. Медленный читатель
// получает только последний статус.
func (c *Controller) Progress() <-chan Status {
	return c.progressChan
}

// Errors возвращает канал некритичных ошибок движка
func (c *Controller) Errors() <-chan error {
	return c.errorsChan
}

// Status возвращает текущий статус
func (c *Controller) Status() Status {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return c.statusLocked()
}

// SetQueue задает упорядоченный список треков для автоперехода
func (c *Controller) SetQueue(tracks []data.Track) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.queue = append([]data.Track(nil), tracks...)
}

// SetRepeat включает или выключает повтор трека
func (c *Controller) SetRepeat(repeat bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.repeat = repeat
	c.publishLocked()
}

// SetAutoAdvance включает или выключает переход к следующему треку
func (c *Controller) SetAutoAdvance(autoAdvance bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.autoAdvance = autoAdvance
	c.publishLocked()
}

// Select загружает трек. Повторный выбор загруженного трека
// переключает паузу.
func (c *Controller) Select(track data.Track) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.engine != nil && c.track != nil && c.track.ID == track.ID {
		return c.toggleLocked()
	}
	return c.selectLocked(track)
}

// Toggle переключает воспроизведение и паузу
func (c *Controller) Toggle() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.closed {
		return ErrClosed
	}
	return c.toggleLocked()
}

// Stop останавливает воспроизведение и перематывает трек в начало.
// Движок остается загруженным.
func (c *Controller) Stop() error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.engine == nil {
		return ErrNoTrack
	}
	c.engine.Stop()
	c.abandonFocusLocked()
	c.setStateLocked(Idle)
	return nil
}

// Seek перематывает трек; позиция ограничивается [0, длительность]
func (c *Controller) Seek(position time.Duration) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if c.engine == nil {
		return ErrNoTrack
	}
	if position < 0 {
		position = 0
	}
	if total := c.engine.Duration(); position > total {
		position = total
	}
	if err := c.engine.Seek(position); err != nil {
		return fmt.Errorf("ошибка перемотки: %w", err)
	}
	c.publishLocked()
	return nil
}

// SetSpeed задает скорость воспроизведения текущего сеанса и возвращает
// примененное значение
func (c *Controller) SetSpeed(factor float64) float64 {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.speed = ClampSpeed(factor)
	if c.engine != nil {
		c.engine.SetSpeed(c.speed)
	}
	c.publishLocked()
	return c.speed
}

// Close освобождает движок и останавливает фоновые горутины
func (c *Controller) Close() error {
	c.mutex.Lock()
	if c.closed {
		c.mutex.Unlock()
		return nil
	}
	c.closed = true
	c.releaseLocked()
	c.abandonFocusLocked()
	c.state = Idle
	c.mutex.Unlock()

	c.cancel()
	c.wg.Wait()
	return nil
}

// selectLocked заменяет сеанс новым (должен вызываться под мьютексом)
func (c *Controller) selectLocked(track data.Track) error {
	// Старый движок освобождается до создания нового
	c.releaseLocked()

	c.track = &track
	c.speed = DefaultSpeed

	engine, err := c.factory()
	if err != nil {
		c.failLocked()
		return fmt.Errorf("ошибка создания движка: %w", err)
	}

	c.engine = engine
	c.state = Loading
	gen := c.generation

	c.wg.Add(1)
	go c.forward(gen, engine.Events())

	if err := engine.Prepare(track.Path); err != nil {
		c.failLocked()
		return fmt.Errorf("ошибка подготовки трека %q: %w", track.Title, err)
	}

	c.logger.Info().Int("id", track.ID).Str("title", track.Title).Msg("трек загружается")
	c.publishLocked()
	return nil
}

// failLocked возвращает контроллер в Idle после неудачной загрузки
func (c *Controller) failLocked() {
	c.releaseLocked()
	c.track = nil
	c.abandonFocusLocked()
	c.setStateLocked(Idle)
}

func (c *Controller) toggleLocked() error {
	if c.engine == nil {
		return ErrNoTrack
	}

	switch c.state {
	case Playing:
		c.engine.Pause()
		c.abandonFocusLocked()
		c.setStateLocked(Paused)
	case Paused, Idle, Ended:
		c.requestFocusLocked()
		c.engine.Play()
		c.setStateLocked(Playing)
	case Loading:
		// Трек начнет играть сам, как только движок будет готов
	}
	return nil
}

// releaseLocked освобождает текущий движок ровно один раз
func (c *Controller) releaseLocked() {
	c.generation++
	if c.engine == nil {
		return
	}
	c.engine.Release()
	c.engine = nil
}

// forward передает события движка контроллеру, пока канал не закрыт
func (c *Controller) forward(gen uint64, events <-chan EngineEvent) {
	defer c.wg.Done()
	for event := range events {
		c.handle(gen, event)
	}
}

func (c *Controller) handle(gen uint64, event EngineEvent) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	// События освобожденного движка игнорируются
	if gen != c.generation || c.engine == nil {
		return
	}

	switch event.Type {
	case EventReady:
		if c.state != Loading {
			return
		}
		c.requestFocusLocked()
		c.engine.SetSpeed(c.speed)
		c.engine.Play()
		c.setStateLocked(Playing)

	case EventEnded:
		c.handleEndedLocked()

	case EventError:
		c.logger.Error().Err(event.Err).Msg("ошибка воспроизведения")
		select {
		case c.errorsChan <- event.Err:
		default:
		}
	}
}

func (c *Controller) handleEndedLocked() {
	if c.repeat {
		if err := c.engine.Seek(0); err != nil {
			c.logger.Error().Err(err).Msg("ошибка перемотки для повтора")
		}
		c.engine.Play()
		c.publishLocked()
		return
	}

	c.setStateLocked(Ended)

	if c.autoAdvance && c.track != nil {
		idx := data.IndexOf(c.queue, c.track.ID)
		if idx >= 0 && idx+1 < len(c.queue) {
			next := c.queue[idx+1]
			if err := c.selectLocked(next); err != nil {
				c.logger.Error().Err(err).Msg("не удалось перейти к следующему треку")
			}
			return
		}
	}

	c.abandonFocusLocked()
	c.setStateLocked(Idle)
}

func (c *Controller) requestFocusLocked() {
	if !c.focused {
		c.focus.Request()
		c.focused = true
	}
}

func (c *Controller) abandonFocusLocked() {
	if c.focused {
		c.focus.Abandon()
		c.focused = false
	}
}

func (c *Controller) setStateLocked(state State) {
	if c.state != state {
		c.logger.Debug().Stringer("from", c.state).Stringer("to", state).Msg("смена состояния")
	}
	c.state = state
	c.publishLocked()
}

func (c *Controller) statusLocked() Status {
	status := Status{
		State:       c.state,
		Speed:       c.speed,
		Repeat:      c.repeat,
		AutoAdvance: c.autoAdvance,
	}
	if c.track != nil {
		track := *c.track
		status.Track = &track
	}
	if c.engine != nil {
		status.Current = c.engine.Position()
		status.Total = c.engine.Duration()
		status.Session = c.engine.Session()
	}
	return status
}

// publishLocked отправляет статус, вытесняя непрочитанный
func (c *Controller) publishLocked() {
	status := c.statusLocked()
	for {
		select {
		case c.progressChan <- status:
			return
		default:
		}
		select {
		case <-c.progressChan:
		default:
		}
	}
}

// monitorProgress опрашивает позицию с фиксированным периодом
func (c *Controller) monitorProgress() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.ctx.Done():
			return
		case <-ticker.C:
			c.mutex.Lock()
			if c.engine != nil && !c.closed {
				c.publishLocked()
			}
			c.mutex.Unlock()
		}
	}
}
