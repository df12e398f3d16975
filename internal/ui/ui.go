package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rlacey/statify/internal/models"
	"github.com/rlacey/statify/internal/tasks"
)

// Tab identifies one dashboard pane.
type Tab int

const (
	ArtistsTab Tab = iota
	TracksTab
	GenresTab
	RecentTab
	FeaturesTab
)

var tabNames = []string{"Artists", "Tracks", "Genres", "Recent", "Features"}

func (t Tab) String() string {
	if int(t) < len(tabNames) {
		return tabNames[t]
	}
	return ""
}

// keyMap defines the [key.Binding] mapping for the TUI.
type keyMap struct {
	nextTab key.Binding
	prevTab key.Binding
	cycle   key.Binding
	reload  key.Binding
	up      key.Binding
	down    key.Binding
	quit    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		nextTab: key.NewBinding(key.WithKeys("tab", "l", "right"), key.WithHelp("tab/l", "next tab")),
		prevTab: key.NewBinding(key.WithKeys("shift+tab", "h", "left"), key.WithHelp("h", "prev tab")),
		cycle:   key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "time range")),
		reload:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.nextTab, k.cycle, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.nextTab, k.prevTab},
		{k.cycle, k.reload},
		{k.up, k.down, k.quit},
	}
}

type dashboardLoadedMsg struct {
	dashboard *tasks.Dashboard
	err       error
}

type progressUpdateMsg tasks.ProgressUpdate

// Model represents the TUI application state.
type Model struct {
	ctx       context.Context
	engine    *tasks.DashboardEngine
	width     int
	height    int
	tab       Tab
	timeRange models.TimeRange

	loading      bool
	spinner      spinner.Model
	progressChan chan tasks.ProgressUpdate
	progress     tasks.ProgressUpdate
	pending      *tasks.Dashboard
	pendingErr   error

	dashboard  *tasks.Dashboard
	artistList list.Model
	trackList  list.Model
	recentList list.Model

	err  error
	help help.Model
	keys keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, engine *tasks.DashboardEngine, tr models.TimeRange) *Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.ok

	return &Model{
		ctx:       ctx,
		engine:    engine,
		timeRange: tr,
		spinner:   sp,
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Init kicks off the first dashboard load.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.startLoad())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeLists()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeys(msg)

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case progressUpdateMsg:
		m.progress = tasks.ProgressUpdate(msg)
		return m, m.waitForProgress()

	case dashboardLoadedMsg:
		m.loading = false
		if msg.err != nil {
			// Keep the previous snapshot on screen.
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.dashboard = msg.dashboard
		m.rebuildLists()
		return m, nil
	}

	return m.updateLists(msg)
}

// View renders the UI based on the current tab.
func (m *Model) View() string {
	header := m.renderHeader()
	footer := m.help.ShortHelpView(m.keys.ShortHelp())

	var body string
	switch {
	case m.loading && m.dashboard == nil:
		body = fmt.Sprintf("%s Loading dashboard... %s", m.spinner.View(), m.progress.Message)
	case m.err != nil && m.dashboard == nil:
		body = styles.err.Render(fmt.Sprintf("Error: %v\n\nPress r to retry, q to quit", m.err))
	case m.dashboard == nil:
		body = "No data."
	default:
		body = m.renderTab()
		if m.loading {
			body = fmt.Sprintf("%s Reloading (%s)...\n\n%s", m.spinner.View(), m.timeRange.Label(), body)
		} else if m.err != nil {
			body = fmt.Sprintf("%s\n\n%s", styles.warn.Render(fmt.Sprintf("Reload failed: %v (showing previous data)", m.err)), body)
		}
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s", header, body, footer)
}

func (m *Model) handleKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.nextTab):
		m.tab = Tab((int(m.tab) + 1) % len(tabNames))
		return m, nil
	case key.Matches(msg, m.keys.prevTab):
		m.tab = Tab((int(m.tab) + len(tabNames) - 1) % len(tabNames))
		return m, nil
	case key.Matches(msg, m.keys.cycle):
		// Changing the range invalidates every derived view.
		switch m.timeRange {
		case models.ShortTerm:
			m.timeRange = models.MediumTerm
		case models.MediumTerm:
			m.timeRange = models.LongTerm
		default:
			m.timeRange = models.ShortTerm
		}
		return m, tea.Batch(m.spinner.Tick, m.startLoad())
	case key.Matches(msg, m.keys.reload):
		if m.loading {
			return m, nil
		}
		return m, tea.Batch(m.spinner.Tick, m.startLoad())
	}

	return m.updateLists(msg)
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.dashboard == nil {
		return m, nil
	}
	var cmd tea.Cmd
	switch m.tab {
	case ArtistsTab:
		m.artistList, cmd = m.artistList.Update(msg)
	case TracksTab:
		m.trackList, cmd = m.trackList.Update(msg)
	case RecentTab:
		m.recentList, cmd = m.recentList.Update(msg)
	}
	return m, cmd
}

func (m *Model) startLoad() tea.Cmd {
	if m.loading {
		return nil
	}
	m.loading = true
	m.progress = tasks.ProgressUpdate{}
	m.progressChan = make(chan tasks.ProgressUpdate, 50)

	ch := m.progressChan
	tr := m.timeRange
	go func() {
		dashboard, err := m.engine.Load(m.ctx, ch, tr)
		m.pending = dashboard
		m.pendingErr = err
		close(ch)
	}()

	return m.waitForProgress()
}

func (m *Model) waitForProgress() tea.Cmd {
	return func() tea.Msg {
		if m.progressChan == nil {
			return dashboardLoadedMsg{dashboard: m.pending, err: m.pendingErr}
		}

		update, ok := <-m.progressChan
		if !ok {
			m.progressChan = nil
			return dashboardLoadedMsg{dashboard: m.pending, err: m.pendingErr}
		}
		return progressUpdateMsg(update)
	}
}

func (m *Model) rebuildLists() {
	d := m.dashboard

	artistItems := make([]list.Item, len(d.TopArtists))
	for i, artist := range d.TopArtists {
		artistItems[i] = artistItem{rank: i + 1, artist: artist}
	}
	m.artistList = list.New(artistItems, list.NewDefaultDelegate(), 0, 0)
	m.artistList.Title = fmt.Sprintf("Top Artists (%s)", d.Range.Label())
	m.artistList.SetShowHelp(false)

	trackItems := make([]list.Item, len(d.TopTracks))
	for i, track := range d.TopTracks {
		trackItems[i] = trackItem{rank: i + 1, track: track}
	}
	m.trackList = list.New(trackItems, list.NewDefaultDelegate(), 0, 0)
	m.trackList.Title = fmt.Sprintf("Top Tracks (%s)", d.Range.Label())
	m.trackList.SetShowHelp(false)

	recentItems := make([]list.Item, len(d.Recent))
	for i, item := range d.Recent {
		recentItems[i] = recentItem{item: item}
	}
	m.recentList = list.New(recentItems, list.NewDefaultDelegate(), 0, 0)
	m.recentList.Title = "Recently Played"
	m.recentList.SetShowHelp(false)

	m.resizeLists()
}

func (m *Model) resizeLists() {
	if m.width == 0 {
		return
	}
	w, h := m.width-4, m.height-8
	m.artistList.SetSize(w, h)
	m.trackList.SetSize(w, h)
	m.recentList.SetSize(w, h)
}

func (m *Model) renderHeader() string {
	tabs := ""
	for i, name := range tabNames {
		if Tab(i) == m.tab {
			tabs += styles.active.Render(name)
		} else {
			tabs += styles.tab.Render(name)
		}
	}

	who := ""
	if m.dashboard != nil && m.dashboard.Profile != nil {
		name := m.dashboard.Profile.DisplayName
		if name == "" {
			name = m.dashboard.Profile.ID
		}
		who = styles.help.Render(fmt.Sprintf("  %s • %s", name, m.timeRange.Label()))
	} else {
		who = styles.help.Render(fmt.Sprintf("  %s", m.timeRange.Label()))
	}

	return tabs + who
}

func (m *Model) renderTab() string {
	switch m.tab {
	case ArtistsTab:
		return m.artistList.View()
	case TracksTab:
		return m.trackList.View()
	case RecentTab:
		return m.recentList.View()
	case GenresTab:
		return m.renderGenres()
	case FeaturesTab:
		return m.renderFeatures()
	default:
		return ""
	}
}

func (m *Model) renderGenres() string {
	genres := m.dashboard.Derived.Genres
	if len(genres) == 0 {
		return "No genre data available."
	}

	out := styles.title.Render(fmt.Sprintf("Top Genres (%s)", m.dashboard.Range.Label())) + "\n"
	for i, genre := range genres {
		out += fmt.Sprintf("%2d. %s %s\n", i+1, genre.Genre, styles.help.Render(fmt.Sprintf("(%d)", genre.Count)))
	}
	return out
}

func (m *Model) renderFeatures() string {
	avg := m.dashboard.Derived.Features
	if avg.Count == 0 {
		return "No audio feature data available."
	}

	listening := m.dashboard.Derived.Listening
	out := styles.title.Render(fmt.Sprintf("Audio Features (%d tracks)", avg.Count)) + "\n"
	out += fmt.Sprintf("Danceability:     %.2f\n", avg.Danceability)
	out += fmt.Sprintf("Energy:           %.2f\n", avg.Energy)
	out += fmt.Sprintf("Valence:          %.2f\n", avg.Valence)
	out += fmt.Sprintf("Acousticness:     %.2f\n", avg.Acousticness)
	out += fmt.Sprintf("Instrumentalness: %.2f\n", avg.Instrumentalness)
	out += fmt.Sprintf("Tempo:            %.0f BPM\n", avg.Tempo)
	out += "\n" + styles.title.Render("Listening") + "\n"
	out += fmt.Sprintf("Plays: %d   Unique tracks: %d   Unique artists: %d\n",
		listening.TrackPlays, listening.UniqueTracks, listening.UniqueArtists)
	return out
}
