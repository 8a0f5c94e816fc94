// Package tracklist содержит модель экрана списка треков для TUI
package tracklist

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/hazadus/go-tomans/internal/data"
	"github.com/hazadus/go-tomans/internal/track"
	"github.com/hazadus/go-tomans/internal/utils"
)

var (
	titleStyle        = lipgloss.NewStyle().MarginLeft(2)
	itemStyle         = lipgloss.NewStyle().PaddingLeft(4)
	selectedItemStyle = lipgloss.NewStyle().PaddingLeft(2).Foreground(lipgloss.Color("170"))
	favoriteStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	paginationStyle   = list.DefaultStyles().PaginationStyle.PaddingLeft(4)
	helpStyle         = list.DefaultStyles().HelpStyle.PaddingLeft(4).PaddingBottom(1)
	quitTextStyle     = lipgloss.NewStyle().Margin(1, 0, 2, 4)
)

// Mode определяет, какие треки показывает список
type Mode int

const (
	// AllTracks весь каталог
	AllTracks Mode = iota
	// FavouriteTracks только избранное
	FavouriteTracks
	// PlaylistTracks треки открытого плейлиста
	PlaylistTracks
)

// TrackSelectedMsg отправляется при выборе трека для воспроизведения.
// Queue содержит видимые треки в порядке списка для автоперехода.
type TrackSelectedMsg struct {
	Track data.Track
	Queue []data.Track
}

// ToggleFavoriteMsg отправляется при нажатии на звездочку
type ToggleFavoriteMsg struct {
	Track data.Track
}

// AddToPlaylistMsg отправляется при добавлении трека в плейлист
type AddToPlaylistMsg struct {
	Track data.Track
}

// OpenPlaylistsMsg отправляется для перехода к экрану плейлистов
type OpenPlaylistsMsg struct{}

// trackItem реализует интерфейс list.Item для трека
type trackItem struct {
	track data.Track
}

func (i trackItem) FilterValue() string {
	return fmt.Sprintf("%s %s %s", i.track.Artist, i.track.Title, i.track.Album)
}

// trackItemDelegate реализует отображение элементов списка
type trackItemDelegate struct{}

func (d trackItemDelegate) Height() int                             { return 1 }
func (d trackItemDelegate) Spacing() int                            { return 0 }
func (d trackItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d trackItemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(trackItem)
	if !ok {
		return
	}

	star := " "
	if i.track.Favorite {
		star = favoriteStyle.Render("★")
	}

	// Форматируем строку в виде таблицы: ID | Избранное | Исполнитель | Название | Продолжительность
	str := fmt.Sprintf("%-4d %s %-20s %-50s %s",
		i.track.ID,
		star,
		utils.TruncateString(i.track.Artist, 20),
		utils.TruncateString(i.track.Title, 50),
		utils.FormatClock(i.track.Duration))

	fn := itemStyle.Render
	if index == m.Index() {
		fn = func(s ...string) string {
			return selectedItemStyle.Render("> " + strings.Join(s, " "))
		}
	}

	fmt.Fprint(w, fn(str))
}

// Model представляет модель экрана списка треков
type Model struct {
	list         list.Model
	catalog      *data.Catalog
	trackManager *track.Manager
	mode         Mode
	playlistName string
	playlist     []data.Track
	nowPlaying   string
	quitting     bool
}

// NewModel создает новую модель списка треков
func NewModel(tracks []data.Track) *Model {
	catalog := &data.Catalog{Tracks: tracks}

	l := list.New(nil, trackItemDelegate{}, 0, 0)
	l.SetShowStatusBar(false)
	l.SetShowTitle(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle
	l.Styles.PaginationStyle = paginationStyle
	l.Styles.HelpStyle = helpStyle

	m := &Model{
		list:         l,
		catalog:      catalog,
		trackManager: track.NewManager(catalog),
	}
	m.refresh()
	return m
}

// Init инициализирует модель
func (m *Model) Init() tea.Cmd {
	return nil
}

// Mode возвращает текущий режим списка
func (m *Model) Mode() Mode {
	return m.mode
}

// SetTracks заменяет треки каталога, например после обновления избранного
func (m *Model) SetTracks(tracks []data.Track) {
	m.catalog.Tracks = tracks
	if m.mode == PlaylistTracks {
		// Обновляем флаги избранного у треков плейлиста
		for i := range m.playlist {
			if t, err := m.catalog.TrackByID(m.playlist[i].ID); err == nil {
				m.playlist[i] = *t
			}
		}
	}
	m.refresh()
}

// SetPlaylist показывает треки плейлиста
func (m *Model) SetPlaylist(name string, tracks []data.Track) {
	m.mode = PlaylistTracks
	m.playlistName = name
	m.playlist = tracks
	m.refresh()
}

// SetNowPlaying задает строку о текущем треке
func (m *Model) SetNowPlaying(text string) {
	m.nowPlaying = text
}

// Visible возвращает треки текущего режима
func (m *Model) Visible() []data.Track {
	switch m.mode {
	case FavouriteTracks:
		return m.trackManager.Favourites()
	case PlaylistTracks:
		return m.playlist
	default:
		return m.trackManager.ListTracks()
	}
}

// refresh обновляет элементы списка без пересоздания
func (m *Model) refresh() {
	tracks := m.Visible()

	items := make([]list.Item, len(tracks))
	for i, t := range tracks {
		items[i] = trackItem{track: t}
	}
	m.list.SetItems(items)

	total := utils.FormatDuration(m.trackManager.TotalDuration(tracks))
	switch m.mode {
	case FavouriteTracks:
		m.list.Title = fmt.Sprintf("Избранное (%d, %s)", len(tracks), total)
	case PlaylistTracks:
		m.list.Title = fmt.Sprintf("Плейлист %q (%d, %s)", m.playlistName, len(tracks), total)
	default:
		m.list.Title = fmt.Sprintf("Треки (%d, %s)", len(tracks), total)
	}
}

func (m *Model) selected() (data.Track, bool) {
	if item, ok := m.list.SelectedItem().(trackItem); ok {
		return item.track, true
	}
	return data.Track{}, false
}

// Update обрабатывает сообщения и обновляет модель
func (m *Model) Update(msg tea.Msg) (*Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		m.list.SetHeight(msg.Height - 4) // Оставляем место для заголовка и справки
		return m, nil

	case tea.KeyMsg:
		// Во время ввода фильтра клавиши уходят в строку поиска
		if m.list.FilterState() == list.Filtering {
			break
		}

		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit

		case "enter":
			if t, ok := m.selected(); ok {
				queue := m.Visible()
				return m, func() tea.Msg {
					return TrackSelectedMsg{Track: t, Queue: queue}
				}
			}

		case "f":
			if t, ok := m.selected(); ok {
				return m, func() tea.Msg {
					return ToggleFavoriteMsg{Track: t}
				}
			}

		case "p":
			if t, ok := m.selected(); ok {
				return m, func() tea.Msg {
					return AddToPlaylistMsg{Track: t}
				}
			}

		case "l":
			return m, func() tea.Msg {
				return OpenPlaylistsMsg{}
			}

		case "tab":
			if m.mode == AllTracks {
				m.mode = FavouriteTracks
			} else {
				m.mode = AllTracks
			}
			m.refresh()
			return m, nil
		}
	}

	// Обновляем список
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View отображает модель
func (m *Model) View() string {
	if m.quitting {
		return quitTextStyle.Render("До свидания!")
	}

	view := m.list.View()
	if m.nowPlaying != "" {
		view += "\n" + helpStyle.Render(m.nowPlaying)
	}
	// Добавляем дополнительную справку
	extraHelp := helpStyle.Render("Enter: играть/пауза • f: избранное • p: в плейлист • tab: все/избранное • l: плейлисты • q: выход")
	return view + "\n" + extraHelp
}
