package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/five82/wordcloud/internal/state"
)

// statusLabel is the lower-case key used for badges and theme colors.
func statusLabel(snap state.Snapshot) string {
	switch {
	case snap.Uploading:
		return "uploading"
	case snap.Status != "":
		return snap.Status.Label()
	case snap.Identifier != "":
		return "processing"
	default:
		return "idle"
	}
}

// activity describes what is running right now, empty when idle.
func activity(snap state.Snapshot) string {
	var parts []string
	if snap.Uploading {
		parts = append(parts, "Uploading "+snap.UploadName)
	}
	if snap.Polling {
		parts = append(parts, "Checking status")
	}
	if snap.Fetching {
		parts = append(parts, "Waiting for result")
	}
	return strings.Join(parts, " · ")
}

// renderHeader renders the status bar.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	bg := NewBgStyle(m.theme.Surface)
	snap := m.snapshot

	parts := []string{bg.Render("wordcloud", styles.Logo)}

	label := statusLabel(snap)
	parts = append(parts, styles.StatusStyle(label).Render(strings.ToUpper(label)))

	if snap.Identifier != "" {
		parts = append(parts,
			bg.Render("Job:", styles.MutedText)+bg.Space()+
				bg.Render(truncateMiddle(snap.Identifier, 32), styles.Text))
	}

	if snap.Busy() {
		parts = append(parts, m.spinner.View()+bg.Space()+bg.Render(activity(snap), styles.AccentText))
	}

	if m.width >= LayoutCompactWidth && !snap.LastUpdated.IsZero() {
		parts = append(parts, bg.Render("updated "+humanize.Time(snap.LastUpdated), styles.FaintText))
	}

	return lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.Surface)).
		Foreground(lipgloss.Color(m.theme.Text)).
		Width(m.width).
		Render(bg.Join(parts, "  "))
}

// renderCommandBar lists the keys available in the current view.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Background)
	bg := NewBgStyle(m.theme.Background)

	bindings := m.keys.ShortHelp()
	if m.currentView == ViewLogs {
		bindings = []key.Binding{m.keys.ToggleFollow, m.keys.CycleLevel, m.keys.ViewMain, m.keys.Help, m.keys.Quit}
	}

	var parts []string
	for _, b := range bindings {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		parts = append(parts, bg.Render(h.Key, styles.WarningText)+bg.Space()+bg.Render(h.Desc, styles.MutedText))
	}
	if m.editing {
		parts = []string{
			bg.Render("enter", styles.WarningText) + bg.Space() + bg.Render("Track identifier", styles.MutedText),
			bg.Render("esc", styles.WarningText) + bg.Space() + bg.Render("Cancel", styles.MutedText),
		}
	}
	return bg.FillLine(bg.Space()+bg.Join(parts, "  "), m.width)
}
