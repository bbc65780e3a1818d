package ui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/wordcloud/internal/export"
	"github.com/five82/wordcloud/internal/logtail"
	"github.com/five82/wordcloud/internal/state"
	"github.com/five82/wordcloud/internal/tracker"
	"github.com/five82/wordcloud/internal/wordcount"
)

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type noticeMsg tracker.Notice

// actionDoneMsg reports that a blocking tracker call returned. Failures have
// already been announced through notices.
type actionDoneMsg struct {
	err error
}

type toastMsg struct {
	severity tracker.Severity
	text     string
}

type fileSelectedMsg string

type logLinesMsg struct {
	entries []logtail.Entry
	err     error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(t Tracker) tea.Cmd {
	if t == nil {
		return nil
	}
	return func() tea.Msg {
		return snapshotMsg(t.Snapshot())
	}
}

// waitForNotice blocks until the tracker emits a notice or shuts down.
func waitForNotice(t Tracker) tea.Cmd {
	if t == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case n := <-t.Notices():
			return noticeMsg(n)
		case <-t.Done():
			return nil
		}
	}
}

func submitCmd(ctx context.Context, t Tracker, path string) tea.Cmd {
	if t == nil {
		return nil
	}
	return func() tea.Msg {
		_, err := t.Submit(ctx, path)
		return actionDoneMsg{err: err}
	}
}

func trackCmd(t Tracker, identifier string) tea.Cmd {
	if t == nil {
		return nil
	}
	return func() tea.Msg {
		return actionDoneMsg{err: t.Track(identifier)}
	}
}

func fetchCmd(ctx context.Context, t Tracker) tea.Cmd {
	if t == nil {
		return nil
	}
	return func() tea.Msg {
		_, err := t.Fetch(ctx)
		return actionDoneMsg{err: err}
	}
}

func copyCmd(e *export.Exporter, result wordcount.Result) tea.Cmd {
	return func() tea.Msg {
		err := e.CopyResult(result)
		switch {
		case err == nil:
			return toastMsg{severity: tracker.SeveritySuccess, text: export.MsgCopied}
		case errors.Is(err, export.ErrNoData):
			return toastMsg{severity: tracker.SeverityInfo, text: "Nothing to copy yet."}
		default:
			return toastMsg{severity: tracker.SeverityError, text: export.MsgCopyFailed + " " + err.Error()}
		}
	}
}

func saveCmd(e *export.Exporter, path string, result wordcount.Result) tea.Cmd {
	return func() tea.Msg {
		if err := e.WriteFile(path, result); err != nil {
			return toastMsg{severity: tracker.SeverityError, text: "Unable to save result. " + err.Error()}
		}
		return toastMsg{severity: tracker.SeveritySuccess, text: "Saved " + path}
	}
}

func readLogsCmd(path string, limit int) tea.Cmd {
	return func() tea.Msg {
		lines, err := logtail.Read(path, limit)
		return logLinesMsg{entries: logtail.ParseAll(lines), err: err}
	}
}
