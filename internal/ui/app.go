package ui

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/wordcloud/internal/config"
	"github.com/five82/wordcloud/internal/export"
	"github.com/five82/wordcloud/internal/prefs"
	"github.com/five82/wordcloud/internal/state"
	"github.com/five82/wordcloud/internal/tracker"
	"github.com/five82/wordcloud/internal/wordcount"
)

// View represents the current active view.
type View int

const (
	ViewMain View = iota
	ViewLogs
)

// Tracker is the lifecycle controller driven by the UI. It is implemented by
// *tracker.Controller.
type Tracker interface {
	Submit(ctx context.Context, path string) (string, error)
	Track(identifier string) error
	Fetch(ctx context.Context) (wordcount.Result, error)
	Snapshot() state.Snapshot
	Notices() <-chan tracker.Notice
	Done() <-chan struct{}
}

var _ Tracker = (*tracker.Controller)(nil)

// Options configures the UI.
type Options struct {
	Context      context.Context
	Tracker      Tracker
	Exporter     *export.Exporter
	Config       *config.Config
	RefreshEvery time.Duration
	ThemeName    string
	PrefsPath    string
	Prefs        prefs.Prefs
	ExportDir    string // empty uses the working directory
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx          context.Context
	tracker      Tracker
	exporter     *export.Exporter
	config       *config.Config
	prefsPath    string
	refreshEvery time.Duration
	exportDir    string
	startDir     string
	resume       string

	// UI state
	keys        keyMap
	theme       Theme
	currentView View
	width       int
	height      int
	ready       bool
	showHelp    bool
	modal       Modal

	// Job state
	snapshot        state.Snapshot
	selectedFile    string
	identifier      textinput.Model
	editing         bool
	spinner         spinner.Model
	toasts          []toast
	resultViewport  viewport.Model
	renderedVersion uint64

	// Log state
	logViewport viewport.Model
	logState    logState
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	refresh := opts.RefreshEvery
	if refresh <= 0 {
		refresh = DefaultUIInterval
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = opts.Prefs.Theme
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	exporter := opts.Exporter
	if exporter == nil {
		exporter = export.NewExporter()
	}

	startDir := opts.Prefs.LastDirectory
	if info, err := os.Stat(startDir); startDir == "" || err != nil || !info.IsDir() {
		startDir, _ = os.Getwd()
	}

	ti := textinput.New()
	ti.Placeholder = "job identifier"
	ti.Prompt = ""
	ti.CharLimit = 256
	ti.SetValue(opts.Prefs.LastIdentifier)

	spin := spinner.New()
	spin.Spinner = spinner.MiniDot

	theme := GetTheme(themeName)
	spin.Style = theme.Styles().AccentText

	return Model{
		ctx:          ctx,
		tracker:      opts.Tracker,
		exporter:     exporter,
		config:       opts.Config,
		prefsPath:    prefsPath,
		refreshEvery: refresh,
		exportDir:    opts.ExportDir,
		startDir:     startDir,
		resume:       strings.TrimSpace(opts.Prefs.LastIdentifier),
		keys:         DefaultKeyMap(),
		theme:        theme,
		currentView:  ViewMain,
		identifier:   ti,
		spinner:      spin,
		logState:     newLogState(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.EnterAltScreen,
		tickCmd(m.refreshEvery),
		m.spinner.Tick,
	}
	if m.tracker != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.tracker), waitForNotice(m.tracker))
		if m.resume != "" && m.tracker.Snapshot().Identifier == "" {
			cmds = append(cmds, trackCmd(m.tracker, m.resume))
		}
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		return m, nil

	case tickMsg:
		return m.handleTick(time.Time(msg))

	case snapshotMsg:
		m.applySnapshot(state.Snapshot(msg))
		return m, nil

	case noticeMsg:
		m.handleNotice(tracker.Notice(msg))
		return m, tea.Batch(waitForNotice(m.tracker), fetchSnapshotCmd(m.tracker))

	case actionDoneMsg:
		return m, fetchSnapshotCmd(m.tracker)

	case toastMsg:
		m.addToast(msg.severity, msg.text)
		return m, nil

	case fileSelectedMsg:
		m.selectedFile = string(msg)
		m.startDir = filepath.Dir(m.selectedFile)
		m.savePrefs(func(p *prefs.Prefs) { p.LastDirectory = m.startDir })
		return m, nil

	case logLinesMsg:
		m.handleLogLines(msg)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	// The file picker reads directories asynchronously.
	if m.modal != nil {
		var cmd tea.Cmd
		var closed bool
		m.modal, cmd, closed = m.modal.Update(msg, m.keys)
		if closed {
			m.modal = nil
		}
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	if m.modal != nil {
		return m.modal.View(m.theme, m.width, m.height)
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	if m.modal != nil {
		var cmd tea.Cmd
		var closed bool
		m.modal, cmd, closed = m.modal.Update(msg, m.keys)
		if closed {
			m.modal = nil
		}
		return m, cmd
	}

	if m.editing {
		return m.handleIdentifierKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.spinner.Style = m.theme.Styles().AccentText
		m.renderedVersion = 0
		m.updateResultViewport()
		m.logState.dirty = true
		m.updateLogViewport()
		name := m.theme.Name
		m.savePrefs(func(p *prefs.Prefs) { p.Theme = name })
		return m, nil

	case key.Matches(msg, m.keys.ViewLogs):
		m.currentView = ViewLogs
		return m, m.refreshLogs()

	case key.Matches(msg, m.keys.ViewMain), key.Matches(msg, m.keys.Escape):
		m.currentView = ViewMain
		return m, nil
	}

	switch m.currentView {
	case ViewLogs:
		return m.handleLogsKey(msg)
	default:
		return m.handleMainKey(msg)
	}
}

// handleMainKey processes job actions and result scrolling.
func (m Model) handleMainKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.PickFile):
		modal, cmd := newFilePicker(m.startDir, m.pickerHeight())
		m.modal = modal
		return m, cmd

	case key.Matches(msg, m.keys.Upload):
		return m, submitCmd(m.ctx, m.tracker, m.selectedFile)

	case key.Matches(msg, m.keys.EditIdentifier):
		m.editing = true
		cmd := m.identifier.Focus()
		return m, cmd

	case key.Matches(msg, m.keys.Fetch):
		return m, fetchCmd(m.ctx, m.tracker)

	case key.Matches(msg, m.keys.Copy):
		return m, copyCmd(m.exporter, m.snapshot.Result)

	case key.Matches(msg, m.keys.Save):
		return m, saveCmd(m.exporter, m.exportPath(), m.snapshot.Result)
	}

	scrollViewport(&m.resultViewport, msg, m.keys)
	return m, nil
}

// handleIdentifierKey routes keys to the identifier input while editing.
func (m Model) handleIdentifierKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.editing = false
		m.identifier.Blur()
		m.identifier.SetValue(m.snapshot.Identifier)
		return m, nil
	case "enter":
		m.editing = false
		m.identifier.Blur()
		id := strings.TrimSpace(m.identifier.Value())
		m.identifier.SetValue(id)
		if id != "" {
			m.savePrefs(func(p *prefs.Prefs) { p.LastIdentifier = id })
		}
		return m, trackCmd(m.tracker, id)
	}

	var cmd tea.Cmd
	m.identifier, cmd = m.identifier.Update(msg)
	return m, cmd
}

// handleTick refreshes the snapshot, expires toasts and follows the log.
func (m Model) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	m.pruneToasts(now)

	cmds := []tea.Cmd{tickCmd(m.refreshEvery)}
	if m.tracker != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.tracker))
	}
	if m.currentView == ViewLogs && m.logState.follow {
		if cmd := m.refreshLogs(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	return m, tea.Batch(cmds...)
}

// applySnapshot stores the latest lifecycle state and refreshes derived UI.
func (m *Model) applySnapshot(snap state.Snapshot) {
	m.snapshot = snap
	hasData := snap.HasData()
	m.keys.Copy.SetEnabled(hasData)
	m.keys.Save.SetEnabled(hasData)
	m.keys.Fetch.SetEnabled(!snap.Uploading)
	if !m.editing && snap.Identifier != "" && m.identifier.Value() != snap.Identifier {
		m.identifier.SetValue(snap.Identifier)
	}
	m.updateResultViewport()
}

// handleNotice turns controller notices into toasts.
func (m *Model) handleNotice(n tracker.Notice) {
	if n.Kind == tracker.KindIdentifierPublished {
		m.selectedFile = ""
		if !m.editing {
			m.identifier.SetValue(n.Identifier)
		}
		id := n.Identifier
		m.savePrefs(func(p *prefs.Prefs) { p.LastIdentifier = id })
		m.addToast(n.Severity, n.Summary+" as "+n.Identifier)
		return
	}
	m.addToast(n.Severity, n.Message())
}

func (m *Model) savePrefs(fn func(*prefs.Prefs)) {
	if m.prefsPath == "" {
		return
	}
	_ = prefs.Update(m.prefsPath, fn)
}

// exportPath names the JSON file written by the save action.
func (m Model) exportPath() string {
	dir := m.exportDir
	if dir == "" {
		dir, _ = os.Getwd()
	}
	name := sanitizeFilename(m.snapshot.Identifier)
	if name == "" {
		name = "wordcloud"
	}
	return filepath.Join(dir, name+".json")
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	progOpts := []tea.ProgramOption{tea.WithAltScreen()}
	if opts.Context != nil {
		progOpts = append(progOpts, tea.WithContext(opts.Context))
	}
	p := tea.NewProgram(m, progOpts...)
	_, err := p.Run()
	if err != nil && opts.Context != nil && opts.Context.Err() != nil {
		return nil
	}
	return err
}
