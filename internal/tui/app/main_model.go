// Package app содержит основную логику TUI приложения
package app

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/rs/zerolog"

	"github.com/hazadus/go-tomans/internal/audiofx"
	"github.com/hazadus/go-tomans/internal/data"
	"github.com/hazadus/go-tomans/internal/observable"
	"github.com/hazadus/go-tomans/internal/player"
	"github.com/hazadus/go-tomans/internal/store"
	tuiPlayer "github.com/hazadus/go-tomans/internal/tui/player"
	"github.com/hazadus/go-tomans/internal/tui/playlists"
	"github.com/hazadus/go-tomans/internal/tui/tracklist"
	"github.com/hazadus/go-tomans/internal/waveform"
)

var noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))

// ScreenType определяет тип текущего экрана
type ScreenType int

// Константы для типов экранов
const (
	// TracklistScreen - экран списка треков
	TracklistScreen ScreenType = iota
	// PlayerScreen - экран плеера
	PlayerScreen
	// PlaylistsScreen - экран плейлистов
	PlaylistsScreen
)

// Player команды контроллера воспроизведения, нужные интерфейсу
type Player interface {
	tuiPlayer.Controller
	Select(track data.Track) error
	SetQueue(tracks []data.Track)
	Progress() <-chan player.Status
	Errors() <-chan error
}

// Sampler источник формы сигнала
type Sampler interface {
	AddListener(l waveform.Listener)
	RemoveListener(l waveform.Listener)
	Start(session audiofx.SessionID) error
	Stop()
}

// Favorites сервис избранного
type Favorites interface {
	Toggle(ctx context.Context, track data.Track) (bool, error)
	Bind(ctx context.Context, catalog *data.Catalog) <-chan []data.Track
}

// Playlists сервис плейлистов
type Playlists interface {
	playlists.Service
	State() *observable.Subject[observable.State[[]store.Playlist]]
	Tracks(ctx context.Context, name string, catalog *data.Catalog) ([]data.Track, error)
}

// Deps зависимости главной модели
type Deps struct {
	Ctx       context.Context
	Catalog   *data.Catalog
	Player    Player
	Sampler   Sampler
	Favorites Favorites
	Playlists Playlists
	Bars      int
	Logger    zerolog.Logger
}

// tracksMsg доставляет треки с актуальными флагами избранного
type tracksMsg struct {
	tracks []data.Track
}

// playlistTracksMsg доставляет треки открытого плейлиста
type playlistTracksMsg struct {
	name   string
	tracks []data.Track
	err    error
}

// noticeMsg сообщение для строки состояния
type noticeMsg struct {
	text string
}

// waveListener передает снимки формы сигнала в канал, вытесняя
// непрочитанный снимок
type waveListener struct {
	ch chan []byte
}

func (l *waveListener) OnWaveform(wave []byte) {
	select {
	case l.ch <- wave:
		return
	default:
	}
	select {
	case <-l.ch:
	default:
	}
	select {
	case l.ch <- wave:
	default:
	}
}

// MainModel представляет главную модель TUI
type MainModel struct {
	deps           Deps
	currentScreen  ScreenType
	tracklistModel *tracklist.Model
	playerModel    *tuiPlayer.Model
	playlistsModel *playlists.Model

	tracks  []data.Track // Треки с актуальным флагом избранного
	notice  string
	session audiofx.SessionID

	tracksChan      <-chan []data.Track
	playlistsChan   <-chan observable.State[[]store.Playlist]
	cancelPlaylists func()
	wave            *waveListener
}

// NewMainModel создает новую главную модель и подписывается на источники данных
func NewMainModel(deps Deps) *MainModel {
	if deps.Ctx == nil {
		deps.Ctx = context.Background()
	}

	tracks := append([]data.Track(nil), deps.Catalog.Tracks...)
	playlistsChan, cancelPlaylists := deps.Playlists.State().Subscribe()

	wave := &waveListener{ch: make(chan []byte, 1)}
	deps.Sampler.AddListener(wave)

	deps.Player.SetQueue(tracks)

	return &MainModel{
		deps:            deps,
		currentScreen:   TracklistScreen,
		tracklistModel:  tracklist.NewModel(tracks),
		playerModel:     tuiPlayer.NewModel(deps.Player, deps.Bars),
		playlistsModel:  playlists.NewModel(deps.Ctx, deps.Playlists, deps.Playlists.State().Value()),
		tracks:          tracks,
		tracksChan:      deps.Favorites.Bind(deps.Ctx, deps.Catalog),
		playlistsChan:   playlistsChan,
		cancelPlaylists: cancelPlaylists,
		wave:            wave,
	}
}

// Init инициализирует модель
func (m *MainModel) Init() tea.Cmd {
	return tea.Batch(
		m.tracklistModel.Init(),
		m.waitProgress(),
		m.waitError(),
		m.waitWaveform(),
		m.waitTracks(),
		m.waitPlaylists(),
	)
}

// Команды ожидания событий. Закрытый канал завершает ожидание.

func (m *MainModel) waitProgress() tea.Cmd {
	ch := m.deps.Player.Progress()
	return func() tea.Msg {
		status, ok := <-ch
		if !ok {
			return nil
		}
		return tuiPlayer.ProgressMsg{Status: status}
	}
}

func (m *MainModel) waitError() tea.Cmd {
	ch := m.deps.Player.Errors()
	return func() tea.Msg {
		err, ok := <-ch
		if !ok {
			return nil
		}
		return tuiPlayer.PlaybackErrorMsg{Error: err}
	}
}

func (m *MainModel) waitWaveform() tea.Cmd {
	ch := m.wave.ch
	return func() tea.Msg {
		return tuiPlayer.WaveformMsg{Wave: <-ch}
	}
}

func (m *MainModel) waitTracks() tea.Cmd {
	ch := m.tracksChan
	return func() tea.Msg {
		tracks, ok := <-ch
		if !ok {
			return nil
		}
		return tracksMsg{tracks: tracks}
	}
}

func (m *MainModel) waitPlaylists() tea.Cmd {
	ch := m.playlistsChan
	return func() tea.Msg {
		state, ok := <-ch
		if !ok {
			return nil
		}
		return playlists.StateMsg{State: state}
	}
}

// Update обрабатывает сообщения
func (m *MainModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Глобальные горячие клавиши
		if msg.String() == "ctrl+c" {
			// Останавливаем воспроизведение перед выходом
			if err := m.deps.Player.Stop(); err != nil {
				m.deps.Logger.Debug().Err(err).Msg("остановка при выходе")
			}
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		// Размеры нужны всем экранам, а не только активному
		var cmds []tea.Cmd
		var cmd tea.Cmd
		m.tracklistModel, cmd = m.tracklistModel.Update(msg)
		cmds = append(cmds, cmd)
		_, cmd = m.playerModel.Update(msg)
		cmds = append(cmds, cmd)
		m.playlistsModel, cmd = m.playlistsModel.Update(msg)
		cmds = append(cmds, cmd)
		return m, tea.Batch(cmds...)

	case tuiPlayer.ProgressMsg:
		m.syncSampler(msg.Status)
		m.tracklistModel.SetNowPlaying(nowPlaying(msg.Status))
		_, cmd := m.playerModel.Update(msg)
		return m, tea.Batch(cmd, m.waitProgress())

	case tuiPlayer.PlaybackErrorMsg:
		m.playerModel.Update(msg)
		return m, m.waitError()

	case tuiPlayer.WaveformMsg:
		m.playerModel.Update(msg)
		return m, m.waitWaveform()

	case tracksMsg:
		m.tracks = msg.tracks
		m.tracklistModel.SetTracks(msg.tracks)
		if m.tracklistModel.Mode() != tracklist.PlaylistTracks {
			m.deps.Player.SetQueue(m.tracklistModel.Visible())
		}
		return m, m.waitTracks()

	case playlists.StateMsg:
		m.playlistsModel, _ = m.playlistsModel.Update(msg)
		return m, m.waitPlaylists()

	case noticeMsg:
		m.notice = msg.text
		return m, nil

	case tracklist.TrackSelectedMsg:
		m.notice = ""
		m.deps.Player.SetQueue(msg.Queue)
		if err := m.deps.Player.Select(msg.Track); err != nil {
			m.notice = fmt.Sprintf("Ошибка воспроизведения: %v", err)
			return m, nil
		}
		m.currentScreen = PlayerScreen
		return m, nil

	case tracklist.ToggleFavoriteMsg:
		return m, m.toggleFavorite(msg.Track)

	case tracklist.AddToPlaylistMsg:
		track := msg.Track
		m.playlistsModel.SetPendingTrack(&track)
		m.currentScreen = PlaylistsScreen
		return m, nil

	case tracklist.OpenPlaylistsMsg:
		m.playlistsModel.SetPendingTrack(nil)
		m.currentScreen = PlaylistsScreen
		return m, nil

	case playlists.PlaylistOpenedMsg:
		return m, m.loadPlaylist(msg.Name)

	case playlistTracksMsg:
		if msg.err != nil {
			m.notice = fmt.Sprintf("Ошибка чтения плейлиста: %v", msg.err)
			return m, nil
		}
		m.tracklistModel.SetPlaylist(msg.name, msg.tracks)
		m.currentScreen = TracklistScreen
		return m, nil

	case tuiPlayer.GoBackMsg, playlists.GoBackMsg:
		// Воспроизведение продолжается в фоне
		m.currentScreen = TracklistScreen
		return m, nil
	}

	// Передаем сообщение активной модели
	var cmd tea.Cmd
	switch m.currentScreen {
	case TracklistScreen:
		m.tracklistModel, cmd = m.tracklistModel.Update(msg)
	case PlayerScreen:
		_, cmd = m.playerModel.Update(msg)
	case PlaylistsScreen:
		m.playlistsModel, cmd = m.playlistsModel.Update(msg)
	}
	return m, cmd
}

// syncSampler запускает снятие формы сигнала для играющего сеанса и
// останавливает его, когда воспроизведения нет
func (m *MainModel) syncSampler(status player.Status) {
	if !status.IsPlaying() {
		if m.session != (audiofx.SessionID{}) {
			m.deps.Sampler.Stop()
			m.session = audiofx.SessionID{}
		}
		return
	}
	if status.Session == m.session {
		return
	}

	m.deps.Sampler.Stop()
	if err := m.deps.Sampler.Start(status.Session); err != nil {
		m.deps.Logger.Warn().Err(err).Msg("форма сигнала недоступна")
		m.session = audiofx.SessionID{}
		return
	}
	m.session = status.Session
}

func (m *MainModel) toggleFavorite(track data.Track) tea.Cmd {
	ctx, favorites := m.deps.Ctx, m.deps.Favorites
	return func() tea.Msg {
		if _, err := favorites.Toggle(ctx, track); err != nil {
			return noticeMsg{text: fmt.Sprintf("Ошибка обновления избранного: %v", err)}
		}
		return nil
	}
}

func (m *MainModel) loadPlaylist(name string) tea.Cmd {
	ctx, service := m.deps.Ctx, m.deps.Playlists
	catalog := &data.Catalog{Tracks: m.tracks}
	return func() tea.Msg {
		tracks, err := service.Tracks(ctx, name, catalog)
		return playlistTracksMsg{name: name, tracks: tracks, err: err}
	}
}

// View отображает интерфейс
func (m *MainModel) View() string {
	var view string
	switch m.currentScreen {
	case TracklistScreen:
		view = m.tracklistModel.View()
	case PlayerScreen:
		view = m.playerModel.View()
	case PlaylistsScreen:
		view = m.playlistsModel.View()
	default:
		return "Неизвестный экран"
	}

	if m.notice != "" {
		view += "\n" + noticeStyle.Render(m.notice)
	}
	return view
}

// Close отписывается от источников данных
func (m *MainModel) Close() {
	m.deps.Sampler.RemoveListener(m.wave)
	m.deps.Sampler.Stop()
	m.cancelPlaylists()
}

func nowPlaying(status player.Status) string {
	if status.Track == nil {
		return ""
	}
	return fmt.Sprintf("%s: %s - %s", status.State, status.Track.Artist, status.Track.Title)
}
