// Package player содержит модель экрана воспроизведения для TUI
package player

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hazadus/go-tomans/internal/player"
	"github.com/hazadus/go-tomans/internal/utils"
	"github.com/hazadus/go-tomans/internal/waveform"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#0000ff")).
			MarginBottom(1)

	trackInfoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginBottom(1)

	statusStyle = lipgloss.NewStyle().
			Bold(true).
			MarginTop(1).
			MarginBottom(1)

	waveStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170"))

	controlsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff0000")).
			Bold(true)
)

// Шаг перемотки и изменения скорости
const (
	seekStep  = 10 * time.Second
	speedStep = 0.05
)

var barLevels = []rune(" ▁▂▃▄▅▆▇█")

// GoBackMsg отправляется для возврата к списку треков
type GoBackMsg struct{}

// ProgressMsg содержит обновления прогресса воспроизведения
type ProgressMsg struct {
	Status player.Status
}

// WaveformMsg содержит снимок формы сигнала
type WaveformMsg struct {
	Wave []byte
}

// PlaybackErrorMsg отправляется при ошибке воспроизведения
type PlaybackErrorMsg struct {
	Error error
}

// Controller команды плеера, доступные экрану
type Controller interface {
	Toggle() error
	Stop() error
	Seek(position time.Duration) error
	SetSpeed(factor float64) float64
	SetRepeat(repeat bool)
	SetAutoAdvance(autoAdvance bool)
	Status() player.Status
}

// Model представляет модель экрана воспроизведения
type Model struct {
	controller  Controller
	progressBar progress.Model
	status      player.Status
	bars        []float64
	barCount    int
	error       error
	width       int
	height      int
}

// NewModel создает новую модель плеера
func NewModel(controller Controller, barCount int) *Model {
	// Создаем прогресс-бар
	prog := progress.New(progress.WithDefaultGradient())
	prog.Width = 40

	return &Model{
		controller:  controller,
		progressBar: prog,
		status:      controller.Status(),
		barCount:    barCount,
	}
}

// Init инициализирует модель
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update обрабатывает сообщения и обновляет модель
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Обновляем ширину прогресс-бара
		m.progressBar.Width = min(60, msg.Width-10)
		return m, nil

	case tea.KeyMsg:
		return m, m.handleKey(msg.String())

	case ProgressMsg:
		// Обновляем статус и прогресс-бар
		m.status = msg.Status

		var percent float64
		if msg.Status.Total > 0 {
			percent = float64(msg.Status.Current) / float64(msg.Status.Total)
		}
		return m, m.progressBar.SetPercent(percent)

	case WaveformMsg:
		m.bars = waveform.Bars(msg.Wave, m.barCount)
		return m, nil

	case PlaybackErrorMsg:
		m.error = msg.Error
		return m, nil

	case progress.FrameMsg:
		// Обновляем прогресс-бар
		progressModel, cmd := m.progressBar.Update(msg)
		m.progressBar = progressModel.(progress.Model)
		return m, cmd
	}

	return m, nil
}

func (m *Model) handleKey(key string) tea.Cmd {
	var err error

	switch key {
	case "q", "esc":
		return func() tea.Msg {
			return GoBackMsg{}
		}
	case " ":
		err = m.controller.Toggle()
	case "s":
		err = m.controller.Stop()
	case "left":
		err = m.controller.Seek(m.status.Current - seekStep)
	case "right":
		err = m.controller.Seek(m.status.Current + seekStep)
	case "+", "=":
		m.controller.SetSpeed(m.status.Speed + speedStep)
	case "-":
		m.controller.SetSpeed(m.status.Speed - speedStep)
	case "0":
		m.controller.SetSpeed(player.DefaultSpeed)
	case "p":
		m.controller.SetSpeed(nextPreset(m.status.Speed))
	case "r":
		m.controller.SetRepeat(!m.status.Repeat)
	case "a":
		m.controller.SetAutoAdvance(!m.status.AutoAdvance)
	default:
		return nil
	}

	m.error = err
	m.status = m.controller.Status()
	return nil
}

// View отображает модель
func (m *Model) View() string {
	title := titleStyle.Render("🎵 Воспроизведение")

	if m.status.Track == nil {
		return fmt.Sprintf("%s\n\n%s\n\n%s",
			title,
			trackInfoStyle.Render("Трек не выбран"),
			controlsStyle.Render("q/esc: назад к списку"),
		)
	}

	// Информация о треке
	trackInfo := trackInfoStyle.Render(fmt.Sprintf(
		"🎤 %s\n🎵 %s\n💿 %s",
		m.status.Track.Artist,
		m.status.Track.Title,
		m.status.Track.Album,
	))

	statusText := statusStyle.Render(fmt.Sprintf("%s %s • скорость %.2fx%s",
		statusIcon(m.status.State),
		formatStatus(m.status.State),
		m.status.Speed,
		formatFlags(m.status.Repeat, m.status.AutoAdvance),
	))

	timeText := fmt.Sprintf(
		"%s / %s",
		utils.FormatClock(m.status.Current),
		utils.FormatClock(m.status.Total),
	)

	controls := controlsStyle.Render(
		"Пробел: пауза • s: стоп • ←/→: перемотка • +/-/0/p: скорость • r: повтор • a: автопереход • q/esc: назад",
	)

	view := fmt.Sprintf(
		"%s\n\n%s\n\n%s\n\n%s\n%s\n\n%s\n%s",
		title,
		trackInfo,
		statusText,
		m.progressBar.View(),
		timeText,
		waveStyle.Render(renderBars(m.bars)),
		controls,
	)

	if m.error != nil {
		view += "\n\n" + errorStyle.Render(m.error.Error())
	}
	return view
}

// Вспомогательные функции

// nextPreset возвращает следующую предустановленную скорость по кругу
func nextPreset(current float64) float64 {
	presets := player.SpeedPresets()
	for _, preset := range presets {
		if preset > current+1e-9 {
			return preset
		}
	}
	return presets[0]
}

func renderBars(bars []float64) string {
	var b strings.Builder
	top := len(barLevels) - 1
	for _, h := range bars {
		level := int(h*float64(top) + 0.5)
		level = max(0, min(level, top))
		b.WriteRune(barLevels[level])
	}
	return b.String()
}

func statusIcon(state player.State) string {
	switch state {
	case player.Playing:
		return "▶️"
	case player.Loading:
		return "⏳"
	case player.Paused:
		return "⏸️"
	default:
		return "⏹️"
	}
}

func formatStatus(state player.State) string {
	switch state {
	case player.Playing:
		return "Воспроизведение"
	case player.Loading:
		return "Загрузка"
	case player.Paused:
		return "Пауза"
	case player.Ended:
		return "Завершено"
	default:
		return "Остановлено"
	}
}

func formatFlags(repeat, autoAdvance bool) string {
	var flags []string
	if repeat {
		flags = append(flags, "повтор")
	}
	if autoAdvance {
		flags = append(flags, "автопереход")
	}
	if len(flags) == 0 {
		return ""
	}
	return " • " + strings.Join(flags, ", ")
}
