package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/five82/wordcloud/internal/cloud"
	"github.com/five82/wordcloud/internal/export"
	"github.com/five82/wordcloud/internal/state"
)

// bodyLayout holds the pane sizes for the current terminal.
type bodyLayout struct {
	compact     bool
	panelWidth  int
	panelHeight int
	rightWidth  int
	cloudHeight int
	jsonHeight  int
}

const compactPanelHeight = 11

func (m Model) layout(toastLines int) bodyLayout {
	bodyHeight := max(6, m.height-2-toastLines)
	if m.width < LayoutCompactWidth {
		panel := min(compactPanelHeight, bodyHeight-3)
		return bodyLayout{
			compact:     true,
			panelWidth:  m.width,
			panelHeight: panel,
			rightWidth:  m.width,
			jsonHeight:  bodyHeight - panel,
		}
	}

	panel := max(LayoutPanelMinWidth, min(m.width/3, LayoutPanelMaxWidth))
	cloudHeight := bodyHeight / 2
	return bodyLayout{
		panelWidth:  panel,
		panelHeight: bodyHeight,
		rightWidth:  m.width - panel,
		cloudHeight: cloudHeight,
		jsonHeight:  bodyHeight - cloudHeight,
	}
}

// resize applies the terminal size to the viewports.
func (m *Model) resize() {
	l := m.layout(0)
	m.resultViewport.Width = max(1, l.rightWidth-4)
	m.resultViewport.Height = max(1, l.jsonHeight-3)
	m.identifier.Width = max(8, l.panelWidth-17)
	m.updateResultViewport()
	m.updateLogViewport()
}

// updateResultViewport re-renders the JSON pane when the snapshot changed.
func (m *Model) updateResultViewport() {
	if m.resultViewport.Width == 0 {
		m.resultViewport = viewport.New(1, 1)
	}
	// renderedVersion is Version+1 so that zero forces a render.
	if m.renderedVersion == m.snapshot.Version+1 {
		return
	}
	m.renderedVersion = m.snapshot.Version + 1
	m.resultViewport.SetContent(m.resultContent())
}

func (m Model) resultContent() string {
	styles := m.theme.Styles()
	snap := m.snapshot
	if !snap.HasData() {
		return styles.MutedText.Render(placeholder(snap))
	}
	data, err := export.Marshal(snap.Result)
	if err != nil {
		return styles.DangerText.Render(err.Error())
	}
	return string(data)
}

func placeholder(snap state.Snapshot) string {
	switch {
	case snap.Phase == state.PhaseIdle:
		return "Press u to choose a .txt file, enter to upload it, or i to enter an identifier."
	case snap.Fetching:
		return "The job is still processing. Waiting for the result..."
	case snap.Phase == state.PhaseFailed:
		return "No word counts available."
	default:
		return "Press f to fetch the word counts."
	}
}

// renderMain renders the full UI.
func (m Model) renderMain() string {
	toasts := m.renderToasts()

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	for _, line := range toasts {
		b.WriteString(line)
		b.WriteString("\n")
	}

	l := m.layout(len(toasts))
	if m.currentView == ViewLogs {
		b.WriteString(m.renderLogs(len(toasts)))
		return b.String()
	}

	panel := m.renderPanel(l.panelWidth, l.panelHeight)
	result := m.renderResult(l.rightWidth, l.jsonHeight)
	if l.compact {
		b.WriteString(lipgloss.JoinVertical(lipgloss.Left, panel, result))
		return b.String()
	}
	right := lipgloss.JoinVertical(lipgloss.Left, m.renderCloud(l.rightWidth, l.cloudHeight), result)
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, panel, right))
	return b.String()
}

// box draws a titled, bordered pane of exactly width x height cells.
func (m Model) box(title, content string, width, height int, focused bool) string {
	styles := m.theme.Styles()
	border := m.theme.Border
	if focused {
		border = m.theme.BorderFocus
	}
	innerWidth := max(1, width-4)
	innerHeight := max(1, height-2)

	body := styles.AccentText.Bold(true).Render(title) + "\n" + content
	lines := strings.Split(body, "\n")
	if len(lines) > innerHeight {
		lines = lines[:innerHeight]
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(border)).
		Padding(0, 1).
		Width(innerWidth + 2).
		Height(innerHeight).
		Render(strings.Join(lines, "\n"))
}

// renderPanel shows the selected file, identifier and job state.
func (m Model) renderPanel(width, height int) string {
	styles := m.theme.Styles()
	snap := m.snapshot
	valueWidth := max(8, width-17)

	row := func(label, value string) string {
		return styles.MutedText.Render(padRight(label, 11)) + value
	}

	file := styles.FaintText.Render("none")
	if m.selectedFile != "" {
		file = styles.Text.Render(truncateMiddle(m.selectedFile, valueWidth))
	}

	identifier := m.identifier.View()
	if !m.editing {
		identifier = styles.Text.Render(truncateMiddle(m.identifier.Value(), valueWidth))
		if m.identifier.Value() == "" {
			identifier = styles.FaintText.Render("none")
		}
	}

	label := statusLabel(snap)
	lines := []string{
		row("File", file),
		row("Identifier", identifier),
		row("Status", styles.StatusStyle(label).Render(strings.ToUpper(label))),
		row("Phase", styles.Text.Render(snap.Phase.String())),
	}
	if snap.HasData() {
		lines = append(lines,
			row("Words", styles.Text.Render(humanize.Comma(int64(len(snap.Result.WordCounts))))),
			row("Total", styles.Text.Render(humanize.Comma(int64(snap.Result.TotalCount())))),
		)
	}
	if !snap.LastUpdated.IsZero() {
		lines = append(lines, row("Updated", styles.FaintText.Render(humanize.Time(snap.LastUpdated))))
	}
	if reason := failure(snap); reason != "" {
		lines = append(lines, row("Error", styles.DangerText.Render(truncate(reason, valueWidth))))
	}
	if m.config != nil {
		lines = append(lines, row("API", styles.FaintText.Render(truncateMiddle(m.config.APIURL, valueWidth))))
	}

	return m.box("Job", strings.Join(lines, "\n"), width, height, m.editing)
}

func failure(snap state.Snapshot) string {
	if snap.LastError != nil {
		return snap.LastError.Error()
	}
	return snap.FailureReason
}

// renderCloud lays the top words out in weighted tiers.
func (m Model) renderCloud(width, height int) string {
	styles := m.theme.Styles()
	innerWidth := max(1, width-4)
	innerHeight := max(1, height-3)

	limit := cloud.Limit
	if m.config != nil && m.config.CloudLimit > 0 {
		limit = min(m.config.CloudLimit, cloud.Limit)
	}
	params := cloud.ParamsWithLimit(m.width, m.snapshot.Result.WordCounts, limit)
	params.Width = min(max(params.Width, innerWidth/2), innerWidth)

	controls := ""
	if params.ShowControls && m.snapshot.HasData() {
		controls = styles.FaintText.Render(fmt.Sprintf("top %d of %d · c copy · s save",
			len(params.WordCounts), len(m.snapshot.Result.WordCounts)))
		innerHeight--
	}
	params.Height = min(params.Height, max(1, innerHeight))

	var rows []string
	for _, line := range cloud.Layout(params) {
		words := make([]string, 0, len(line))
		for _, tok := range line {
			words = append(words, styles.TierStyle(tok.Weight).Render(tok.Word))
		}
		rows = append(rows, lipgloss.PlaceHorizontal(innerWidth, lipgloss.Center, strings.Join(words, " ")))
	}
	if len(rows) == 0 {
		rows = append(rows, styles.FaintText.Render("The word cloud appears once word counts are available."))
	}
	if controls != "" {
		rows = append(rows, lipgloss.PlaceHorizontal(innerWidth, lipgloss.Right, controls))
	}
	return m.box("Word cloud", strings.Join(rows, "\n"), width, height, false)
}

// renderResult shows the canonical JSON in a scrollable pane.
func (m Model) renderResult(width, height int) string {
	vp := m.resultViewport
	vp.Width = max(1, width-4)
	vp.Height = max(1, height-3)

	title := "Result"
	if m.snapshot.HasData() && vp.TotalLineCount() > vp.Height {
		title = fmt.Sprintf("Result %3.f%%", vp.ScrollPercent()*100)
	}
	return m.box(title, vp.View(), width, height, false)
}

// scrollViewport applies the navigation bindings to vp.
func scrollViewport(vp *viewport.Model, msg tea.KeyMsg, keys keyMap) bool {
	switch {
	case key.Matches(msg, keys.Up):
		vp.ScrollUp(1)
	case key.Matches(msg, keys.Down):
		vp.ScrollDown(1)
	case key.Matches(msg, keys.Top):
		vp.GotoTop()
	case key.Matches(msg, keys.Bottom):
		vp.GotoBottom()
	case key.Matches(msg, keys.PageUp):
		vp.PageUp()
	case key.Matches(msg, keys.PageDown):
		vp.PageDown()
	case key.Matches(msg, keys.HalfPageUp):
		vp.HalfPageUp()
	case key.Matches(msg, keys.HalfPageDown):
		vp.HalfPageDown()
	default:
		return false
	}
	return true
}
