package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/wordcloud/internal/logtail"
)

// logLevels is the cycle order for the minimum level filter. Empty shows all.
var logLevels = []string{"", "INFO", "WARN", "ERROR"}

// logState holds all log-related state.
type logState struct {
	entries  []logtail.Entry
	follow   bool
	minLevel string
	err      error

	// dirty marks the viewport content as stale.
	dirty bool
}

func newLogState() logState {
	return logState{follow: true, dirty: true}
}

// refreshLogs reads the tail of the log file, or returns nil when file
// logging is disabled.
func (m Model) refreshLogs() tea.Cmd {
	if m.config == nil {
		return nil
	}
	path := m.config.LogPath()
	if path == "" {
		return nil
	}
	return readLogsCmd(path, LogTailLines)
}

func (m *Model) handleLogLines(msg logLinesMsg) {
	m.logState.err = msg.err
	if msg.err == nil {
		m.logState.entries = msg.entries
	}
	m.logState.dirty = true
	m.updateLogViewport()
}

// handleLogsKey processes keys for the log view.
func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ToggleFollow):
		m.logState.follow = !m.logState.follow
		if m.logState.follow {
			m.logViewport.GotoBottom()
			return m, m.refreshLogs()
		}
		return m, nil

	case key.Matches(msg, m.keys.CycleLevel):
		m.logState.minLevel = nextLevel(m.logState.minLevel)
		m.logState.dirty = true
		m.updateLogViewport()
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		m.logState.follow = true
		m.logViewport.GotoBottom()
		return m, nil
	}

	if scrollViewport(&m.logViewport, msg, m.keys) {
		m.logState.follow = false
	}
	return m, nil
}

func nextLevel(current string) string {
	for i, l := range logLevels {
		if l == current {
			return logLevels[(i+1)%len(logLevels)]
		}
	}
	return logLevels[0]
}

// updateLogViewport resizes the log viewport and re-renders it when stale.
func (m *Model) updateLogViewport() {
	if m.logViewport.Width == 0 {
		m.logViewport = viewport.New(1, 1)
	}
	// Box height = m.height - 3 (header, cmdbar, status line)
	// Box inner = box height - 3 (borders and title)
	m.logViewport.Width = max(1, m.width-4)
	m.logViewport.Height = max(1, m.height-6)

	if m.logState.dirty {
		m.logViewport.SetContent(m.renderLogContent())
		m.logState.dirty = false
	}
	if m.logState.follow {
		m.logViewport.GotoBottom()
	}
}

// renderLogs renders the log view.
func (m Model) renderLogs(toastLines int) string {
	styles := m.theme.Styles()
	bg := NewBgStyle(m.theme.Background)
	height := max(4, m.height-3-toastLines)

	vp := m.logViewport
	vp.Height = max(1, height-3)

	title := "Log"
	if m.logState.minLevel != "" {
		title = "Log (" + m.logState.minLevel + "+)"
	}
	box := m.box(title, vp.View(), m.width, height, true)
	return box + "\n" + bg.FillLine(m.renderLogStatus(styles, bg), m.width)
}

func (m Model) renderLogStatus(styles Styles, bg BgStyle) string {
	if m.config == nil || m.config.LogPath() == "" {
		return bg.Render("File logging is disabled", styles.MutedText)
	}
	if m.logState.err != nil {
		return bg.Render("Unable to read log: "+m.logState.err.Error(), styles.DangerText)
	}

	autoTail := "off"
	if m.logState.follow {
		autoTail = "on"
	}
	shown := len(logtail.AtLeast(m.logState.entries, m.logState.minLevel))
	parts := []string{
		bg.Render(fmt.Sprintf("%d of %d lines auto-tail %s", shown, len(m.logState.entries), autoTail), styles.FaintText),
		bg.Render(truncateMiddle(m.config.LogPath(), max(16, m.width/2)), styles.AccentText),
	}
	sep := bg.Space() + bg.Render("•", styles.FaintText) + bg.Space()
	return strings.Join(parts, sep)
}

// renderLogContent renders the colorized log entries.
func (m Model) renderLogContent() string {
	styles := m.theme.Styles()
	entries := logtail.AtLeast(m.logState.entries, m.logState.minLevel)
	if len(entries) == 0 {
		return styles.MutedText.Render("No log entries")
	}

	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, m.colorizeEntry(e, styles))
	}
	return strings.Join(lines, "\n")
}

func (m Model) colorizeEntry(e logtail.Entry, styles Styles) string {
	if e.Level == "" && e.Time.IsZero() {
		return styles.Text.Render(e.Raw)
	}

	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(styles.FaintText.Render(e.Time.Local().Format("15:04:05")))
		b.WriteString(" ")
	}
	b.WriteString(levelStyle(e.Level, styles).Bold(true).Render(fmt.Sprintf("%-5s", e.Level)))
	b.WriteString(" ")
	b.WriteString(styles.Text.Render(e.Message))
	for _, a := range e.Attrs {
		b.WriteString(" ")
		b.WriteString(styles.MutedText.Render(a.Key + "="))
		b.WriteString(attrStyle(a.Key, styles).Render(a.Value))
	}
	return b.String()
}

func levelStyle(level string, styles Styles) lipgloss.Style {
	switch level {
	case "INFO":
		return styles.SuccessText
	case "WARN":
		return styles.WarningText
	case "ERROR":
		return styles.DangerText
	case "DEBUG":
		return styles.InfoText
	default:
		return styles.Text
	}
}

func attrStyle(key string, styles Styles) lipgloss.Style {
	switch key {
	case "identifier", "id":
		return styles.AccentText
	case "error":
		return styles.DangerText
	default:
		return styles.Text
	}
}
