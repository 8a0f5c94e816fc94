package player

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
	"github.com/rs/zerolog"

	"github.com/hazadus/go-tomans/internal/audiofx"
	"github.com/hazadus/go-tomans/internal/metadata"
)

// Частота, с которой работают динамики; треки пересэмплируются под нее
const speakerRate = beep.SampleRate(44100)

var (
	speakerOnce sync.Once
	speakerErr  error
)

// initSpeaker инициализирует динамики (только один раз за процесс)
func initSpeaker() error {
	speakerOnce.Do(func() {
		speakerErr = speaker.Init(speakerRate, speakerRate.N(time.Second/10))
	})
	if speakerErr != nil {
		return fmt.Errorf("ошибка инициализации динамиков: %w", speakerErr)
	}
	return nil
}

// gate отключает цепочку от динамиков после освобождения движка
type gate struct {
	s      beep.Streamer
	killed atomic.Bool
}

func (g *gate) Stream(samples [][2]float64) (int, bool) {
	if g.killed.Load() {
		return 0, false
	}
	return g.s.Stream(samples)
}

func (g *gate) Err() error {
	return g.s.Err()
}

// BeepEngine воспроизводит локальный файл через динамики beep.
// Цепочка: декодер → пауза → изменение скорости → Tap → уведомление о конце.
type BeepEngine struct {
	registry *audiofx.Registry
	logger   zerolog.Logger
	session  audiofx.SessionID

	mutex     sync.Mutex
	events    chan EngineEvent
	closed    bool
	streamer  beep.StreamSeekCloser
	format    beep.Format
	ctrl      *beep.Ctrl
	resampler *beep.Resampler
	tap       *audiofx.Tap
	gate      *gate
}

// NewBeepEngine создает движок с новым сеансом
func NewBeepEngine(registry *audiofx.Registry, logger zerolog.Logger) *BeepEngine {
	session := audiofx.NewSessionID()
	return &BeepEngine{
		registry: registry,
		logger:   logger.With().Str("session", session.String()).Logger(),
		session:  session,
		events:   make(chan EngineEvent, 8),
	}
}

// NewBeepEngineFactory возвращает фабрику движков для контроллера
func NewBeepEngineFactory(registry *audiofx.Registry, logger zerolog.Logger) EngineFactory {
	return func() (Engine, error) {
		return NewBeepEngine(registry, logger), nil
	}
}

// Prepare открывает и декодирует файл
func (e *BeepEngine) Prepare(ref string) error {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if e.closed {
		return fmt.Errorf("движок освобожден")
	}
	if e.streamer != nil {
		return fmt.Errorf("трек уже подготовлен")
	}

	file, err := os.Open(ref)
	if err != nil {
		return fmt.Errorf("ошибка открытия файла: %w", err)
	}

	streamer, format, err := metadata.Decode(file, ref)
	if err != nil {
		file.Close()
		return err
	}

	if err := initSpeaker(); err != nil {
		streamer.Close()
		return err
	}

	e.streamer = streamer
	e.format = format
	// Создаем контроллер паузы
	e.ctrl = &beep.Ctrl{Streamer: streamer, Paused: true}
	e.resampler = beep.ResampleRatio(4, e.baseRatio(), e.ctrl)
	_, captureSize := audiofx.CaptureSizeRange()
	e.tap = audiofx.NewTap(e.resampler, captureSize)
	e.registry.Register(e.session, e.tap)

	e.logger.Debug().Str("path", ref).Int("rate", int(format.SampleRate)).Msg("трек подготовлен")
	e.emitLocked(EngineEvent{Type: EventReady})
	return nil
}

// Play запускает или возобновляет воспроизведение
func (e *BeepEngine) Play() {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if e.closed || e.ctrl == nil {
		return
	}

	speaker.Lock()
	e.ctrl.Paused = false
	speaker.Unlock()

	if e.gate == nil {
		e.queueLocked()
	}
}

// queueLocked отправляет цепочку в динамики; доигранный трек начинается сначала
func (e *BeepEngine) queueLocked() {
	speaker.Lock()
	if e.streamer.Position() >= e.streamer.Len() {
		if err := e.streamer.Seek(0); err != nil {
			e.logger.Error().Err(err).Msg("ошибка перемотки в начало")
		}
	}
	speaker.Unlock()

	g := &gate{}
	g.s = beep.Seq(e.tap, beep.Callback(func() {
		// Колбэк выполняется под блокировкой динамиков
		go e.onEnded(g)
	}))
	e.gate = g
	speaker.Play(g)
}

func (e *BeepEngine) onEnded(g *gate) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if e.closed || e.gate != g {
		return
	}
	e.gate = nil

	if err := e.streamer.Err(); err != nil {
		e.emitLocked(EngineEvent{Type: EventError, Err: fmt.Errorf("ошибка декодирования: %w", err)})
	}
	e.emitLocked(EngineEvent{Type: EventEnded})
}

// Pause приостанавливает воспроизведение
func (e *BeepEngine) Pause() {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if e.closed || e.ctrl == nil {
		return
	}
	speaker.Lock()
	e.ctrl.Paused = true
	speaker.Unlock()
}

// Stop ставит на паузу и перематывает в начало
func (e *BeepEngine) Stop() {
	e.Pause()
	if err := e.Seek(0); err != nil {
		e.logger.Error().Err(err).Msg("ошибка перемотки при остановке")
	}
}

// Seek перематывает трек
func (e *BeepEngine) Seek(position time.Duration) error {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if e.closed || e.streamer == nil {
		return ErrNoTrack
	}

	speaker.Lock()
	defer speaker.Unlock()

	n := e.format.SampleRate.N(position)
	if n < 0 {
		n = 0
	}
	if n > e.streamer.Len() {
		n = e.streamer.Len()
	}
	if err := e.streamer.Seek(n); err != nil {
		return fmt.Errorf("ошибка перемотки: %w", err)
	}
	return nil
}

// SetSpeed меняет скорость через коэффициент пересэмплирования
func (e *BeepEngine) SetSpeed(factor float64) {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if e.closed || e.resampler == nil {
		return
	}
	speaker.Lock()
	e.resampler.SetRatio(e.baseRatio() * factor)
	speaker.Unlock()
}

// Position возвращает текущую позицию
func (e *BeepEngine) Position() time.Duration {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if e.closed || e.streamer == nil {
		return 0
	}
	speaker.Lock()
	defer speaker.Unlock()
	return e.format.SampleRate.D(e.streamer.Position())
}

// Duration возвращает длительность трека
func (e *BeepEngine) Duration() time.Duration {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if e.closed || e.streamer == nil {
		return 0
	}
	speaker.Lock()
	defer speaker.Unlock()
	return e.format.SampleRate.D(e.streamer.Len())
}

// Session возвращает идентификатор сеанса
func (e *BeepEngine) Session() audiofx.SessionID {
	return e.session
}

// Events возвращает канал событий движка
func (e *BeepEngine) Events() <-chan EngineEvent {
	return e.events
}

// Release отключает цепочку от динамиков и закрывает декодер
func (e *BeepEngine) Release() {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if e.closed {
		return
	}
	e.closed = true

	if e.gate != nil {
		e.gate.killed.Store(true)
		e.gate = nil
	}
	e.registry.Unregister(e.session)

	if e.streamer != nil {
		speaker.Lock()
		if err := e.streamer.Close(); err != nil {
			e.logger.Debug().Err(err).Msg("ошибка закрытия декодера")
		}
		speaker.Unlock()
		e.streamer = nil
	}

	close(e.events)
	e.logger.Debug().Msg("движок освобожден")
}

func (e *BeepEngine) baseRatio() float64 {
	return float64(e.format.SampleRate) / float64(speakerRate)
}

// emitLocked отправляет событие без блокировки (должен вызываться под мьютексом)
func (e *BeepEngine) emitLocked(event EngineEvent) {
	if e.closed {
		return
	}
	select {
	case e.events <- event:
	default:
		e.logger.Warn().Stringer("event", event.Type).Msg("событие движка пропущено")
	}
}
