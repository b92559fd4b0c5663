// Package tui renders the coordinator's state snapshots and translates
// key presses into coordinator commands. It holds no domain state of its
// own: every frame is drawn from the latest snapshot.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mjpeters/reel/internal/coordinator"
	"github.com/mjpeters/reel/internal/domain"
	"github.com/mjpeters/reel/internal/state"
	"github.com/mjpeters/reel/internal/tui/styles"
)

const sidebarWidth = 30

// Pane identifies which column has focus
type Pane int

const (
	PaneLibraries Pane = iota
	PaneItems
)

// Model is the main Bubble Tea model
type Model struct {
	coord *coordinator.Coordinator
	keys  KeyMap

	appCtx      context.Context
	loadCancel  context.CancelFunc
	updates     <-chan state.AppState
	unsubscribe func()

	snap state.AppState

	focus      Pane
	libCursor  int
	itemCursor int

	searching   bool
	searchInput textinput.Model

	spinner spinner.Model

	width  int
	height int
}

// NewModel creates the TUI model and subscribes to the state stream
func NewModel(ctx context.Context, coord *coordinator.Coordinator) Model {
	updates, unsubscribe := coord.Subscribe()

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(styles.Amber)

	input := textinput.New()
	input.Placeholder = "search"
	input.CharLimit = 120

	return Model{
		coord:       coord,
		keys:        DefaultKeyMap(),
		appCtx:      ctx,
		updates:     updates,
		unsubscribe: unsubscribe,
		snap:        coord.Snapshot(),
		searchInput: input,
		spinner:     sp,
	}
}

// Init kicks off the initial load and starts listening for snapshots
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.waitForState(),
		m.runOp(func(ctx context.Context) {
			m.coord.LoadInitialData(ctx, false)
		}),
	)
}

// waitForState blocks on the subscription channel for the next snapshot
func (m Model) waitForState() tea.Cmd {
	updates := m.updates
	return func() tea.Msg {
		snap, ok := <-updates
		if !ok {
			return nil
		}
		return stateMsg{Snapshot: snap}
	}
}

// runOp executes a coordinator command off the UI loop
func (m Model) runOp(fn func(ctx context.Context)) tea.Cmd {
	ctx := m.appCtx
	return func() tea.Msg {
		fn(ctx)
		return opDoneMsg{}
	}
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case stateMsg:
		m.snap = msg.Snapshot
		m.clampCursors()
		return m, m.waitForState()

	case opDoneMsg:
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.searching {
			return m.updateSearch(msg)
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	keys := m.keys
	switch {
	case key.Matches(msg, keys.Quit):
		m.unsubscribe()
		return m, tea.Quit

	case key.Matches(msg, keys.Up):
		m.moveCursor(-1)

	case key.Matches(msg, keys.Down):
		cmd := m.moveCursor(1)
		return m, cmd

	case key.Matches(msg, keys.Left):
		m.focus = PaneLibraries

	case key.Matches(msg, keys.Right):
		m.focus = PaneItems

	case key.Matches(msg, keys.Enter):
		if m.focus == PaneLibraries {
			return m, m.openSelectedLibrary(false)
		}

	case key.Matches(msg, keys.LoadMore):
		if lib, ok := m.selectedLibrary(); ok {
			return m, m.runOp(func(ctx context.Context) {
				m.coord.LoadMoreItems(ctx, lib.ID)
			})
		}

	case key.Matches(msg, keys.Refresh):
		if m.focus == PaneLibraries {
			return m, m.openSelectedLibrary(true)
		}
		return m, m.runOp(func(ctx context.Context) {
			m.coord.LoadInitialData(ctx, true)
		})

	case key.Matches(msg, keys.Search):
		m.searching = true
		m.searchInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, keys.Favorite):
		if item, ok := m.selectedItem(); ok {
			return m, m.runOp(func(ctx context.Context) {
				m.coord.ToggleFavorite(ctx, item)
			})
		}

	case key.Matches(msg, keys.MarkWatched):
		if item, ok := m.selectedItem(); ok {
			return m, m.runOp(func(ctx context.Context) {
				m.coord.MarkWatched(ctx, item)
			})
		}

	case key.Matches(msg, keys.MarkUnwatched):
		if item, ok := m.selectedItem(); ok {
			return m, m.runOp(func(ctx context.Context) {
				m.coord.MarkUnwatched(ctx, item)
			})
		}

	case key.Matches(msg, keys.Delete):
		if item, ok := m.selectedItem(); ok {
			return m, m.runOp(func(ctx context.Context) {
				m.coord.DeleteItem(ctx, item)
			})
		}

	case key.Matches(msg, keys.ClearError):
		m.coord.ClearError()

	case key.Matches(msg, keys.Logout):
		m.coord.ClearState()

	case key.Matches(msg, keys.Escape):
		if m.loadCancel != nil {
			m.loadCancel()
			m.loadCancel = nil
		}
	}
	return m, nil
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Escape):
		m.searching = false
		m.searchInput.Reset()
		m.coord.ClearSearch()
		return m, nil

	case msg.Type == tea.KeyEnter:
		query := m.searchInput.Value()
		return m, m.runOp(func(ctx context.Context) {
			m.coord.Search(ctx, query)
		})
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	return m, cmd
}

// openSelectedLibrary starts a load for the highlighted library. A load
// already in flight for a previously selected library is cancelled:
// navigating away must not leave stale fetches running.
func (m *Model) openSelectedLibrary(force bool) tea.Cmd {
	lib, ok := m.selectedLibrary()
	if !ok {
		return nil
	}
	if m.loadCancel != nil {
		m.loadCancel()
	}
	ctx, cancel := context.WithCancel(m.appCtx)
	m.loadCancel = cancel
	m.focus = PaneItems
	m.itemCursor = 0

	coord := m.coord
	kind := lib.Kind
	return func() tea.Msg {
		if kind == domain.CollectionUnknown || kind == domain.CollectionOther {
			coord.LoadMoreItems(ctx, lib.ID)
		} else {
			coord.LoadLibraryKindData(ctx, kind, force)
		}
		return opDoneMsg{}
	}
}

// moveCursor shifts the focused cursor and triggers pagination when the
// item cursor runs past the loaded tail.
func (m *Model) moveCursor(delta int) tea.Cmd {
	if m.focus == PaneLibraries {
		m.libCursor = clamp(m.libCursor+delta, 0, len(m.snap.Libraries)-1)
		return nil
	}

	items := m.visibleItems()
	m.itemCursor = clamp(m.itemCursor+delta, 0, len(items)-1)

	lib, ok := m.selectedLibrary()
	if !ok || m.searching {
		return nil
	}
	page := m.snap.Page(lib.ID)
	if delta > 0 && m.itemCursor >= len(items)-1 && page.HasMore && !page.IsLoadingMore {
		return m.runOp(func(ctx context.Context) {
			m.coord.LoadMoreItems(ctx, lib.ID)
		})
	}
	return nil
}

func (m *Model) clampCursors() {
	m.libCursor = clamp(m.libCursor, 0, len(m.snap.Libraries)-1)
	m.itemCursor = clamp(m.itemCursor, 0, len(m.visibleItems())-1)
}

func (m Model) selectedLibrary() (domain.Library, bool) {
	if m.libCursor < 0 || m.libCursor >= len(m.snap.Libraries) {
		return domain.Library{}, false
	}
	return m.snap.Libraries[m.libCursor], true
}

func (m Model) selectedItem() (domain.MediaItem, bool) {
	items := m.visibleItems()
	if m.itemCursor < 0 || m.itemCursor >= len(items) {
		return domain.MediaItem{}, false
	}
	return items[m.itemCursor], true
}

// visibleItems returns what the item pane currently shows: search results
// while a query is active, the selected library's accumulated collection
// otherwise.
func (m Model) visibleItems() []domain.MediaItem {
	if m.snap.Search.Query != "" {
		return m.snap.Search.Results
	}
	lib, ok := m.selectedLibrary()
	if !ok {
		return nil
	}
	return m.snap.Items(lib.ID)
}

// View renders the current snapshot
func (m Model) View() string {
	if m.width == 0 {
		return "loading..."
	}

	contentHeight := m.height - 2
	sidebar := m.renderSidebar(contentHeight)
	items := m.renderItems(contentHeight)

	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, items)
	return lipgloss.JoinVertical(lipgloss.Left, body, m.renderStatusBar())
}

func (m Model) renderSidebar(height int) string {
	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render("Libraries"))
	b.WriteString("\n\n")

	if len(m.snap.Libraries) == 0 {
		if m.snap.IsLoading {
			b.WriteString(m.spinner.View() + " loading...")
		} else {
			b.WriteString(styles.DimStyle.Render("no libraries"))
		}
	}
	for i, lib := range m.snap.Libraries {
		line := fmt.Sprintf("%s %s", lib.Name, styles.DimStyle.Render(string(lib.Kind)))
		if m.snap.LoadingKinds[lib.Kind] {
			line = m.spinner.View() + " " + line
		}
		if i == m.libCursor && m.focus == PaneLibraries {
			line = styles.SelectedStyle.Render(lib.Name)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	border := styles.InactiveBorder
	if m.focus == PaneLibraries {
		border = styles.ActiveBorder
	}
	return border.Width(sidebarWidth).Height(height).Render(b.String())
}

func (m Model) renderItems(height int) string {
	var b strings.Builder

	if m.searching || m.snap.Search.Query != "" {
		b.WriteString(styles.AccentStyle.Render("/") + m.searchInput.View())
		if m.snap.Search.InProgress {
			b.WriteString("  " + m.spinner.View())
		}
		b.WriteString("\n\n")
	}

	items := m.visibleItems()
	if len(items) == 0 {
		b.WriteString(styles.DimStyle.Render("nothing here yet"))
	}

	visible := height - 4
	start := 0
	if m.itemCursor >= visible {
		start = m.itemCursor - visible + 1
	}
	for i := start; i < len(items) && i < start+visible; i++ {
		b.WriteString(m.renderItemLine(items[i], i == m.itemCursor && m.focus == PaneItems))
		b.WriteString("\n")
	}

	if lib, ok := m.selectedLibrary(); ok && m.snap.Search.Query == "" {
		page := m.snap.Page(lib.ID)
		switch {
		case page.IsLoadingMore:
			b.WriteString(m.spinner.View() + styles.DimStyle.Render(" loading more..."))
		case page.HasMore:
			b.WriteString(styles.DimStyle.Render(fmt.Sprintf("%d loaded · m for more", page.LoadedCount)))
		default:
			b.WriteString(styles.DimStyle.Render(fmt.Sprintf("%d items", page.LoadedCount)))
		}
	}

	border := styles.InactiveBorder
	if m.focus == PaneItems {
		border = styles.ActiveBorder
	}
	return border.Width(m.width - sidebarWidth - 4).Height(height).Render(b.String())
}

func (m Model) renderItemLine(item domain.MediaItem, selected bool) string {
	marker := " "
	if item.IsPlayed {
		marker = styles.WatchedStyle.Render("✓")
	}
	if item.IsFavorite {
		marker += styles.AccentStyle.Render("♥")
	}

	title := item.Title
	if item.Kind == domain.MediaKindEpisode {
		title = fmt.Sprintf("%s %s", item.EpisodeCode(), title)
	}
	if item.Year > 0 {
		title = fmt.Sprintf("%s (%d)", title, item.Year)
	}
	if selected {
		return styles.SelectedStyle.Render(title)
	}
	return marker + " " + title
}

func (m Model) renderStatusBar() string {
	if m.snap.Err != "" {
		return styles.ErrorStyle.Render("✗ " + m.snap.Err + "  (c to dismiss)")
	}
	if m.snap.IsLoading {
		return m.spinner.View() + styles.DimStyle.Render(" loading libraries...")
	}
	return styles.DimStyle.Render("j/k move · enter open · m more · / search · f fav · w watched · q quit")
}

func clamp(v, lo, hi int) int {
	if hi < lo {
		return lo
	}
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
