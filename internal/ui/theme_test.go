package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestThemeOrderMatchesThemes(t *testing.T) {
	if len(themeOrder) != len(themes) {
		t.Fatalf("themeOrder = %v, want every theme once", themeOrder)
	}
	for _, name := range themeOrder {
		if GetTheme(name).Name != name {
			t.Fatalf("theme %q missing from themes", name)
		}
	}
}

func TestNextTheme(t *testing.T) {
	tests := []struct{ current, want string }{
		{"Nightfox", "Kanagawa"},
		{"Kanagawa", "Slate"},
		{"Slate", "Nightfox"},
		{"Unknown", "Nightfox"},
	}
	for _, tt := range tests {
		if got := NextTheme(tt.current); got != tt.want {
			t.Errorf("NextTheme(%q) = %q, want %q", tt.current, got, tt.want)
		}
	}
}

func TestGetTheme_FallsBackToNightfox(t *testing.T) {
	if got := GetTheme("Slate").Name; got != "Slate" {
		t.Fatalf("GetTheme(Slate).Name = %q", got)
	}
	if got := GetTheme("Dracula").Name; got != "Nightfox" {
		t.Fatalf("GetTheme(Dracula).Name = %q, want Nightfox", got)
	}
}

func TestThemes_CoverLifecycleStatuses(t *testing.T) {
	for _, name := range themeOrder {
		th := GetTheme(name)
		for _, status := range []string{"idle", "uploading", "processing", "completed", "failed"} {
			if th.StatusColors[status] == "" {
				t.Errorf("theme %s has no color for %q", name, status)
			}
		}
	}
}

func TestStatusStyle_NormalizesAndFallsBack(t *testing.T) {
	th := GetTheme("Nightfox")
	styles := th.Styles()

	got := styles.StatusStyle(" COMPLETED ").GetBackground()
	if got != lipgloss.Color(th.StatusColors["completed"]) {
		t.Fatalf("StatusStyle(COMPLETED) background = %v, want %v", got, th.StatusColors["completed"])
	}
	if got := styles.StatusStyle("weird").GetBackground(); got != lipgloss.Color(th.Muted) {
		t.Fatalf("StatusStyle(weird) background = %v, want muted %v", got, th.Muted)
	}
	if got := styles.WithBackground(th.Surface).StatusStyle("weird").GetBackground(); got != lipgloss.Color(th.Muted) {
		t.Fatalf("WithBackground lost the muted fallback: %v", got)
	}
}

func TestTierStyle_ClampsWeight(t *testing.T) {
	th := GetTheme("Slate")
	styles := th.Styles()

	if got := styles.TierStyle(0).GetForeground(); got != lipgloss.Color(th.Faint) {
		t.Fatalf("TierStyle(0) = %v, want faint %v", got, th.Faint)
	}
	if got := styles.TierStyle(9).GetForeground(); got != lipgloss.Color(th.Warning) {
		t.Fatalf("TierStyle(9) = %v, want warning %v", got, th.Warning)
	}
	if !styles.TierStyle(5).GetBold() || styles.TierStyle(2).GetBold() {
		t.Fatalf("only heavy tiers should be bold")
	}
}
