package ui

import (
	"time"

	"github.com/five82/wordcloud/internal/tracker"
)

type toast struct {
	severity tracker.Severity
	text     string
	expires  time.Time
}

// addToast pushes a message onto the stack, dropping the oldest beyond
// MaxToasts.
func (m *Model) addToast(severity tracker.Severity, text string) {
	if text == "" {
		return
	}
	m.toasts = append(m.toasts, toast{
		severity: severity,
		text:     text,
		expires:  time.Now().Add(ToastLifetime),
	})
	if extra := len(m.toasts) - MaxToasts; extra > 0 {
		m.toasts = m.toasts[extra:]
	}
}

func (m *Model) pruneToasts(now time.Time) {
	kept := m.toasts[:0]
	for _, t := range m.toasts {
		if now.Before(t.expires) {
			kept = append(kept, t)
		}
	}
	m.toasts = kept
}

// renderToasts returns one line per live toast, newest last.
func (m Model) renderToasts() []string {
	if len(m.toasts) == 0 {
		return nil
	}
	styles := m.theme.Styles().WithBackground(m.theme.Background)
	bg := NewBgStyle(m.theme.Background)

	lines := make([]string, 0, len(m.toasts))
	for _, t := range m.toasts {
		icon, style := "•", styles.InfoText
		switch t.severity {
		case tracker.SeveritySuccess:
			icon, style = "✓", styles.SuccessText
		case tracker.SeverityError:
			icon, style = "✗", styles.DangerText
		}
		text := truncate(t.text, max(10, m.width-4))
		lines = append(lines, bg.FillLine(bg.Space()+bg.Render(icon+" "+text, style), m.width))
	}
	return lines
}
