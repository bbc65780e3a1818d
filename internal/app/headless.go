package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/five82/wordcloud/internal/export"
	"github.com/five82/wordcloud/internal/state"
	"github.com/five82/wordcloud/internal/tracker"
	"github.com/five82/wordcloud/internal/wordcount"
)

// Command is a headless subcommand.
type Command string

const (
	CmdSubmit Command = "submit"
	CmdStatus Command = "status"
	CmdFetch  Command = "fetch"
)

// Process exit codes for headless commands.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitUsage   = 2
)

// Output controls where a headless command delivers its result.
type Output struct {
	Path     string // also write the JSON here
	Copy     bool   // also copy the JSON to the clipboard
	Stdout   io.Writer
	Stderr   io.Writer
	Exporter *export.Exporter // nil uses the system clipboard
}

func (o Output) withDefaults() Output {
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	if o.Exporter == nil {
		o.Exporter = export.NewExporter()
	}
	return o
}

// RunHeadless runs one command without the TUI and returns the process exit
// code. Only a COMPLETED job exits with ExitOK.
func RunHeadless(ctx context.Context, opts Options, cmd Command, arg string, out Output) int {
	out = out.withDefaults()

	cfg, err := loadConfig(opts)
	if err != nil {
		fmt.Fprintf(out.Stderr, "wordcloud: %v\n", err)
		return ExitFailure
	}

	level := slog.LevelWarn
	if opts.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(out.Stderr, &slog.HandlerOptions{Level: level}))

	controller, err := newController(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(out.Stderr, "wordcloud: %v\n", err)
		return ExitFailure
	}
	defer controller.Close()

	h := headless{c: controller, out: out}
	switch cmd {
	case CmdSubmit:
		return h.submit(ctx, arg)
	case CmdStatus:
		return h.status(ctx, arg)
	case CmdFetch:
		return h.fetch(ctx, arg)
	default:
		fmt.Fprintf(out.Stderr, "wordcloud: unknown command %q\n", cmd)
		return ExitUsage
	}
}

type headless struct {
	c   *tracker.Controller
	out Output
}

// submit uploads path, polls to a terminal status and prints the result.
func (h headless) submit(ctx context.Context, path string) int {
	if _, err := h.c.Submit(ctx, path); err != nil {
		h.drain()
		return ExitFailure
	}
	snap, ok := h.waitTerminal(ctx)
	if !ok || !snap.Status.Succeeded() {
		return ExitFailure
	}
	return h.deliver(ctx)
}

// status tracks identifier until the job leaves PROCESSING and prints the
// final status.
func (h headless) status(ctx context.Context, identifier string) int {
	if err := h.c.Track(identifier); err != nil {
		h.drain()
		return ExitFailure
	}
	snap, ok := h.waitTerminal(ctx)
	if !ok || snap.Status == "" {
		return ExitFailure
	}
	fmt.Fprintln(h.out.Stdout, snap.Status)
	if !snap.Status.Succeeded() {
		return ExitFailure
	}
	return ExitOK
}

// fetch retrieves the result for identifier without waiting for the poller.
func (h headless) fetch(ctx context.Context, identifier string) int {
	if err := h.c.Track(identifier); err != nil {
		h.drain()
		return ExitFailure
	}
	return h.deliver(ctx)
}

// deliver fetches the current result and writes it to every requested sink.
func (h headless) deliver(ctx context.Context) int {
	result, err := h.c.Fetch(ctx)
	h.drain()
	if err != nil {
		return ExitFailure
	}
	if result.UploadStatus != wordcount.StatusCompleted {
		fmt.Fprintf(h.out.Stderr, "wordcloud: job %s is %s\n", result.Identifier, result.UploadStatus.Label())
		return ExitFailure
	}

	data, err := export.Marshal(result)
	if err != nil {
		fmt.Fprintf(h.out.Stderr, "wordcloud: %v\n", err)
		return ExitFailure
	}
	fmt.Fprintln(h.out.Stdout, string(data))

	code := ExitOK
	if h.out.Path != "" {
		if err := h.out.Exporter.WriteFile(h.out.Path, result); err != nil {
			fmt.Fprintf(h.out.Stderr, "wordcloud: %v\n", err)
			code = ExitFailure
		}
	}
	if h.out.Copy {
		if err := h.out.Exporter.CopyResult(result); err != nil {
			fmt.Fprintf(h.out.Stderr, "%s %v\n", export.MsgCopyFailed, err)
		} else {
			fmt.Fprintln(h.out.Stderr, export.MsgCopied)
		}
	}
	return code
}

// waitTerminal prints notices until the poll loop reports its outcome. The
// loop emits exactly one notice when it stops on its own.
func (h headless) waitTerminal(ctx context.Context) (state.Snapshot, bool) {
	for {
		select {
		case <-ctx.Done():
			return h.c.Snapshot(), false
		case n := <-h.c.Notices():
			h.print(n)
			if n.Kind == tracker.KindNotice {
				return h.c.Snapshot(), true
			}
		}
	}
}

// drain prints the notices already queued.
func (h headless) drain() {
	for {
		select {
		case n := <-h.c.Notices():
			h.print(n)
		default:
			return
		}
	}
}

func (h headless) print(n tracker.Notice) {
	fmt.Fprintln(h.out.Stderr, formatNotice(n))
}

func formatNotice(n tracker.Notice) string {
	if n.Kind == tracker.KindIdentifierPublished {
		return fmt.Sprintf("%s as %s", n.Summary, n.Identifier)
	}
	prefix := "info:"
	switch n.Severity {
	case tracker.SeveritySuccess:
		prefix = "ok:"
	case tracker.SeverityError:
		prefix = "error:"
	}
	return prefix + " " + n.Message()
}

