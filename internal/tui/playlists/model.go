// Package playlists содержит модель экрана управления плейлистами для TUI
package playlists

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hazadus/go-tomans/internal/data"
	"github.com/hazadus/go-tomans/internal/observable"
	"github.com/hazadus/go-tomans/internal/store"
)

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true).Margin(1, 0)
	itemStyle     = lipgloss.NewStyle().PaddingLeft(4)
	selectedStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("170"))
	focusedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Margin(1, 0)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Margin(1, 0)
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("46")).Margin(1, 0)
)

// GoBackMsg отправляется при возврате к списку треков
type GoBackMsg struct{}

// PlaylistOpenedMsg отправляется при выборе плейлиста для просмотра
type PlaylistOpenedMsg struct {
	Name string
}

// StateMsg доставляет новое состояние списка плейлистов
type StateMsg struct {
	State observable.State[[]store.Playlist]
}

// resultMsg итог операции над плейлистом
type resultMsg struct {
	info string
	err  error
}

// Service операции над плейлистами, доступные экрану
type Service interface {
	Create(ctx context.Context, name string) (int64, error)
	Rename(ctx context.Context, id int64, name string) error
	Delete(ctx context.Context, id int64) error
	AddTrack(ctx context.Context, name, title string) error
}

// inputMode определяет назначение строки ввода
type inputMode int

const (
	noInput inputMode = iota
	createInput
	renameInput
)

// Model представляет модель экрана плейлистов
type Model struct {
	ctx     context.Context
	service Service
	state   observable.State[[]store.Playlist]
	cursor  int
	pending *data.Track // Трек, ожидающий добавления в плейлист
	input   textinput.Model
	mode    inputMode
	err     string
	success string
}

// NewModel создает модель экрана плейлистов
func NewModel(ctx context.Context, service Service, state observable.State[[]store.Playlist]) *Model {
	input := textinput.New()
	input.Placeholder = "Название плейлиста"
	input.PromptStyle = focusedStyle
	input.TextStyle = focusedStyle

	return &Model{
		ctx:     ctx,
		service: service,
		state:   state,
		input:   input,
	}
}

// Init инициализирует модель
func (m *Model) Init() tea.Cmd {
	return nil
}

// SetPendingTrack задает трек, который будет добавлен в выбранный плейлист.
// nil переводит экран в режим просмотра.
func (m *Model) SetPendingTrack(track *data.Track) {
	m.pending = track
	m.err = ""
	m.success = ""
}

// Pending возвращает трек, ожидающий добавления
func (m *Model) Pending() *data.Track {
	return m.pending
}

func (m *Model) playlists() []store.Playlist {
	return observable.DataOr(m.state, nil)
}

func (m *Model) selected() (store.Playlist, bool) {
	playlists := m.playlists()
	if m.cursor < 0 || m.cursor >= len(playlists) {
		return store.Playlist{}, false
	}
	return playlists[m.cursor], true
}

// Update обрабатывает сообщения и обновляет модель
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case StateMsg:
		m.state = msg.State
		if n := len(m.playlists()); m.cursor >= n {
			m.cursor = max(0, n-1)
		}
		return m, nil

	case resultMsg:
		if msg.err != nil {
			m.err = msg.err.Error()
			m.success = ""
		} else {
			m.err = ""
			m.success = msg.info
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.input.Width = msg.Width - 20
		return m, nil

	case tea.KeyMsg:
		if m.mode != noInput {
			return m.updateInput(msg)
		}
		return m.updateBrowse(msg)
	}

	return m, nil
}

func (m *Model) updateBrowse(msg tea.KeyMsg) (*Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q":
		m.pending = nil
		return m, func() tea.Msg {
			return GoBackMsg{}
		}

	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}

	case "down", "j":
		if m.cursor < len(m.playlists())-1 {
			m.cursor++
		}

	case "n":
		m.mode = createInput
		m.input.SetValue("")
		return m, m.input.Focus()

	case "r":
		if p, ok := m.selected(); ok {
			m.mode = renameInput
			m.input.SetValue(p.Name)
			return m, m.input.Focus()
		}

	case "d":
		if p, ok := m.selected(); ok {
			return m, m.run(fmt.Sprintf("Плейлист %q удален", p.Name), func(ctx context.Context) error {
				return m.service.Delete(ctx, p.ID)
			})
		}

	case "enter":
		p, ok := m.selected()
		if !ok {
			return m, nil
		}
		if m.pending != nil {
			title := m.pending.Title
			m.pending = nil
			return m, m.run(fmt.Sprintf("%q добавлен в %q", title, p.Name), func(ctx context.Context) error {
				return m.service.AddTrack(ctx, p.Name, title)
			})
		}
		return m, func() tea.Msg {
			return PlaylistOpenedMsg{Name: p.Name}
		}
	}

	return m, nil
}

func (m *Model) updateInput(msg tea.KeyMsg) (*Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = noInput
		m.input.Blur()
		return m, nil

	case "enter":
		name := strings.TrimSpace(m.input.Value())
		if name == "" {
			m.err = "Название плейлиста не может быть пустым"
			m.success = ""
			return m, nil
		}

		mode := m.mode
		m.mode = noInput
		m.input.Blur()

		if mode == renameInput {
			p, ok := m.selected()
			if !ok {
				return m, nil
			}
			return m, m.run(fmt.Sprintf("Плейлист переименован в %q", name), func(ctx context.Context) error {
				return m.service.Rename(ctx, p.ID, name)
			})
		}
		return m, m.run(fmt.Sprintf("Плейлист %q создан", name), func(ctx context.Context) error {
			_, err := m.service.Create(ctx, name)
			return err
		})
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// run выполняет операцию вне цикла обновления
func (m *Model) run(info string, op func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return resultMsg{info: info, err: op(ctx)}
	}
}

// View отображает модель
func (m *Model) View() string {
	var b strings.Builder

	title := "Плейлисты"
	if m.pending != nil {
		title = fmt.Sprintf("Добавить %q в плейлист", m.pending.Title)
	}
	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")

	b.WriteString(observable.Match(m.state,
		func() string { return itemStyle.Render("Загрузка...") },
		func(err error) string {
			return errorStyle.Render(fmt.Sprintf("Ошибка чтения плейлистов: %v", err))
		},
		m.renderPlaylists,
	))
	b.WriteString("\n")

	if m.mode != noInput {
		b.WriteString("\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}

	if m.err != "" {
		b.WriteString(errorStyle.Render(m.err))
		b.WriteString("\n")
	}
	if m.success != "" {
		b.WriteString(successStyle.Render(m.success))
		b.WriteString("\n")
	}

	if m.mode != noInput {
		b.WriteString(helpStyle.Render("Enter: сохранить • Esc: отмена"))
	} else {
		b.WriteString(helpStyle.Render("Enter: выбрать • n: новый • r: переименовать • d: удалить • Esc: назад"))
	}
	return b.String()
}

func (m *Model) renderPlaylists(playlists []store.Playlist) string {
	if len(playlists) == 0 {
		return itemStyle.Render("Плейлистов пока нет")
	}

	lines := make([]string, len(playlists))
	for i, p := range playlists {
		if i == m.cursor {
			lines[i] = selectedStyle.Render("> " + p.Name)
		} else {
			lines[i] = itemStyle.Render(p.Name)
		}
	}
	return strings.Join(lines, "\n")
}
