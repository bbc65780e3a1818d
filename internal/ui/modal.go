package ui

import (
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Modal is the interface for modal dialogs.
// The Update method returns the updated modal, a command, and a bool indicating if the modal should close.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

// filePickerModal lets the user choose the .txt file to upload.
type filePickerModal struct {
	picker filepicker.Model
	notice string
}

func newFilePicker(dir string, height int) (Modal, tea.Cmd) {
	fp := filepicker.New()
	fp.AllowedTypes = []string{".txt"}
	if dir != "" {
		fp.CurrentDirectory = dir
	}
	fp.Height = height
	return filePickerModal{picker: fp}, fp.Init()
}

func (f filePickerModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	if km, ok := msg.(tea.KeyMsg); ok {
		if key.Matches(km, keys.Escape) || km.String() == "ctrl+c" {
			return f, nil, true
		}
	}

	var cmd tea.Cmd
	f.picker, cmd = f.picker.Update(msg)

	if ok, path := f.picker.DidSelectFile(msg); ok {
		return f, tea.Batch(cmd, func() tea.Msg { return fileSelectedMsg(path) }), true
	}
	if ok, path := f.picker.DidSelectDisabledFile(msg); ok {
		f.notice = filepath.Base(path) + " is not a .txt file"
	}
	return f, cmd, false
}

func (f filePickerModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()

	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render("Choose a text file"))
	b.WriteString("\n")
	b.WriteString(styles.MutedText.Render(truncateMiddle(f.picker.CurrentDirectory, 56)))
	b.WriteString("\n\n")
	b.WriteString(f.picker.View())
	if f.notice != "" {
		b.WriteString("\n")
		b.WriteString(styles.DangerText.Render(f.notice))
	}
	b.WriteString("\n\n")
	b.WriteString(styles.FaintText.Render("enter select · h/← up · esc cancel"))

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(theme.Accent)).
		Padding(1, 2).
		Width(min(64, max(20, width-4)))

	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		modal.Render(b.String()),
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Background)),
	)
}

// pickerHeight leaves room for the modal chrome.
func (m Model) pickerHeight() int {
	return max(5, m.height-14)
}
