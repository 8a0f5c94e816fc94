package app

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
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

type mockPlayer struct {
	status    player.Status
	progress  chan player.Status
	errors    chan error
	selected  []data.Track
	queue     []data.Track
	selectErr error
	stopped   int
}

func newMockPlayer() *mockPlayer {
	return &mockPlayer{
		progress: make(chan player.Status, 1),
		errors:   make(chan error, 1),
	}
}

func (m *mockPlayer) Toggle() error                   { return nil }
func (m *mockPlayer) Stop() error                     { m.stopped++; return nil }
func (m *mockPlayer) Seek(time.Duration) error        { return nil }
func (m *mockPlayer) SetSpeed(factor float64) float64 { return factor }
func (m *mockPlayer) SetRepeat(bool)                  {}
func (m *mockPlayer) SetAutoAdvance(bool)             {}
func (m *mockPlayer) Status() player.Status           { return m.status }
func (m *mockPlayer) SetQueue(tracks []data.Track)    { m.queue = tracks }
func (m *mockPlayer) Progress() <-chan player.Status  { return m.progress }
func (m *mockPlayer) Errors() <-chan error            { return m.errors }
func (m *mockPlayer) Select(track data.Track) error {
	if m.selectErr != nil {
		return m.selectErr
	}
	m.selected = append(m.selected, track)
	return nil
}

type mockSampler struct {
	listeners []waveform.Listener
	starts    []audiofx.SessionID
	stops     int
}

func (m *mockSampler) AddListener(l waveform.Listener)  { m.listeners = append(m.listeners, l) }
func (m *mockSampler) RemoveListener(waveform.Listener) { m.listeners = nil }
func (m *mockSampler) Start(session audiofx.SessionID) error {
	m.starts = append(m.starts, session)
	return nil
}
func (m *mockSampler) Stop() { m.stops++ }

type mockFavorites struct {
	tracks  chan []data.Track
	toggled []string
	err     error
}

func (m *mockFavorites) Toggle(_ context.Context, track data.Track) (bool, error) {
	m.toggled = append(m.toggled, track.Title)
	return true, m.err
}

func (m *mockFavorites) Bind(context.Context, *data.Catalog) <-chan []data.Track {
	return m.tracks
}

type mockPlaylists struct {
	state *observable.Subject[observable.State[[]store.Playlist]]
	items map[string][]string
}

func (m *mockPlaylists) Create(context.Context, string) (int64, error)  { return 1, nil }
func (m *mockPlaylists) Rename(context.Context, int64, string) error    { return nil }
func (m *mockPlaylists) Delete(context.Context, int64) error            { return nil }
func (m *mockPlaylists) AddTrack(context.Context, string, string) error { return nil }
func (m *mockPlaylists) State() *observable.Subject[observable.State[[]store.Playlist]] {
	return m.state
}

func (m *mockPlaylists) Tracks(_ context.Context, name string, catalog *data.Catalog) ([]data.Track, error) {
	titles, ok := m.items[name]
	if !ok {
		return nil, store.ErrPlaylistNotFound
	}
	var tracks []data.Track
	for _, title := range titles {
		if t, ok := catalog.TrackByTitle(title); ok {
			tracks = append(tracks, *t)
		}
	}
	return tracks, nil
}

type fixture struct {
	model     *MainModel
	player    *mockPlayer
	sampler   *mockSampler
	favorites *mockFavorites
}

func newFixture() *fixture {
	catalog := &data.Catalog{Tracks: []data.Track{
		{ID: 1, Title: "Test Track", Artist: "Test Artist", Album: "Test Album", Duration: time.Minute},
		{ID: 2, Title: "Other Track", Artist: "Test Artist", Duration: time.Minute},
	}}
	f := &fixture{
		player:    newMockPlayer(),
		sampler:   &mockSampler{},
		favorites: &mockFavorites{tracks: make(chan []data.Track, 1)},
	}
	f.model = NewMainModel(Deps{
		Ctx:       context.Background(),
		Catalog:   catalog,
		Player:    f.player,
		Sampler:   f.sampler,
		Favorites: f.favorites,
		Playlists: &mockPlaylists{
			state: observable.NewSubject[observable.State[[]store.Playlist]](
				observable.Success[[]store.Playlist]{Data: []store.Playlist{{ID: 1, Name: "Gym"}}},
			),
			items: map[string][]string{"Gym": {"Other Track"}},
		},
		Bars:   16,
		Logger: zerolog.Nop(),
	})
	return f
}

func (f *fixture) send(msg tea.Msg) tea.Cmd {
	_, cmd := f.model.Update(msg)
	return cmd
}

func TestMainModelRouting(t *testing.T) {
	f := newFixture()

	// Проверяем начальное состояние
	if f.model.currentScreen != TracklistScreen {
		t.Errorf("Expected initial screen to be TracklistScreen, got %v", f.model.currentScreen)
	}
	if len(f.sampler.listeners) != 1 {
		t.Error("Expected waveform listener to be registered")
	}
	if len(f.player.queue) != 2 {
		t.Errorf("Expected initial queue of 2 tracks, got %d", len(f.player.queue))
	}

	// Тестируем переключение на экран плеера
	track := f.model.tracks[0]
	f.send(tracklist.TrackSelectedMsg{Track: track, Queue: f.model.tracks})

	if f.model.currentScreen != PlayerScreen {
		t.Errorf("Expected screen to be PlayerScreen after TrackSelectedMsg, got %v", f.model.currentScreen)
	}
	if len(f.player.selected) != 1 || f.player.selected[0].ID != 1 {
		t.Errorf("Expected track 1 to be selected, got %v", f.player.selected)
	}

	// Тестируем возврат к списку треков
	f.send(tuiPlayer.GoBackMsg{})
	if f.model.currentScreen != TracklistScreen {
		t.Errorf("Expected screen to be TracklistScreen after GoBackMsg, got %v", f.model.currentScreen)
	}

	// Тестируем глобальные горячие клавиши
	if cmd := f.send(tea.KeyMsg{Type: tea.KeyCtrlC}); cmd == nil {
		t.Error("Expected tea.Quit command after Ctrl+C")
	}
	if f.player.stopped != 1 {
		t.Error("Expected playback to be stopped on quit")
	}
}

func TestSelectFailureStaysOnList(t *testing.T) {
	f := newFixture()
	f.player.selectErr = errors.New("decoder failure")

	f.send(tracklist.TrackSelectedMsg{Track: f.model.tracks[0]})

	if f.model.currentScreen != TracklistScreen {
		t.Errorf("Expected to stay on TracklistScreen, got %v", f.model.currentScreen)
	}
	if f.model.notice == "" {
		t.Error("Expected error notice")
	}
}

func TestSamplerFollowsPlayback(t *testing.T) {
	f := newFixture()
	session := audiofx.NewSessionID()
	track := f.model.tracks[0]

	f.send(tuiPlayer.ProgressMsg{Status: player.Status{Track: &track, State: player.Playing, Session: session}})
	if len(f.sampler.starts) != 1 || f.sampler.starts[0] != session {
		t.Fatalf("Expected sampler started for session, got %v", f.sampler.starts)
	}

	// Повторный статус того же сеанса не перезапускает сэмплер
	f.send(tuiPlayer.ProgressMsg{Status: player.Status{Track: &track, State: player.Playing, Session: session}})
	if len(f.sampler.starts) != 1 {
		t.Errorf("Expected single start, got %d", len(f.sampler.starts))
	}

	stops := f.sampler.stops
	f.send(tuiPlayer.ProgressMsg{Status: player.Status{Track: &track, State: player.Paused, Session: session}})
	if f.sampler.stops != stops+1 {
		t.Error("Expected sampler to stop on pause")
	}
}

func TestFavoritesUpdate(t *testing.T) {
	f := newFixture()

	cmd := f.send(tracklist.ToggleFavoriteMsg{Track: f.model.tracks[1]})
	if cmd == nil {
		t.Fatal("Expected toggle command")
	}
	cmd()
	if len(f.favorites.toggled) != 1 || f.favorites.toggled[0] != "Other Track" {
		t.Errorf("Expected 'Other Track' to be toggled, got %v", f.favorites.toggled)
	}

	updated := append([]data.Track(nil), f.model.tracks...)
	updated[1].Favorite = true
	f.send(tracksMsg{tracks: updated})

	if !f.model.tracks[1].Favorite {
		t.Error("Expected favourite flag to be applied")
	}
	if len(f.player.queue) != 2 {
		t.Errorf("Expected queue to be refreshed, got %d tracks", len(f.player.queue))
	}
}

func TestPlaylistFlow(t *testing.T) {
	f := newFixture()

	f.send(tracklist.AddToPlaylistMsg{Track: f.model.tracks[0]})
	if f.model.currentScreen != PlaylistsScreen {
		t.Fatalf("Expected PlaylistsScreen, got %v", f.model.currentScreen)
	}
	if f.model.playlistsModel.Pending() == nil {
		t.Error("Expected pending track on playlists screen")
	}

	f.send(tracklist.OpenPlaylistsMsg{})
	if f.model.playlistsModel.Pending() != nil {
		t.Error("Expected no pending track when browsing playlists")
	}

	cmd := f.send(playlists.PlaylistOpenedMsg{Name: "Gym"})
	f.send(cmd())

	if f.model.currentScreen != TracklistScreen {
		t.Errorf("Expected TracklistScreen after opening playlist, got %v", f.model.currentScreen)
	}
	if f.model.tracklistModel.Mode() != tracklist.PlaylistTracks {
		t.Error("Expected tracklist in playlist mode")
	}
	visible := f.model.tracklistModel.Visible()
	if len(visible) != 1 || visible[0].Title != "Other Track" {
		t.Errorf("Expected playlist with 'Other Track', got %v", visible)
	}

	cmd = f.send(playlists.PlaylistOpenedMsg{Name: "Missing"})
	f.send(cmd())
	if f.model.notice == "" {
		t.Error("Expected notice for unknown playlist")
	}
}

func TestMainModelView(t *testing.T) {
	f := newFixture()

	if view := f.model.View(); view == "" {
		t.Error("Expected non-empty view for tracklist screen")
	}

	f.send(tracklist.TrackSelectedMsg{Track: f.model.tracks[0]})
	if view := f.model.View(); view == "" {
		t.Error("Expected non-empty view for player screen")
	}

	// Тестируем состояние с несуществующим экраном
	f.model.currentScreen = ScreenType(999)
	if view := f.model.View(); view != "Неизвестный экран" {
		t.Errorf("Expected 'Неизвестный экран' for unknown screen, got '%s'", view)
	}
}

func TestWaveListenerKeepsLatest(t *testing.T) {
	l := &waveListener{ch: make(chan []byte, 1)}
	l.OnWaveform([]byte{1})
	l.OnWaveform([]byte{2})

	if got := <-l.ch; got[0] != 2 {
		t.Errorf("Expected latest snapshot, got %v", got)
	}
}
