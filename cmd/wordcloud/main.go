package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/five82/wordcloud/internal/app"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	flags := flag.NewFlagSet("wordcloud", flag.ContinueOnError)
	flags.SetOutput(stderr)
	configPath := flags.String("config", "", "override config path (optional)")
	apiURL := flags.String("api", "", "word-count service URL (optional, overrides api_url)")
	pollSeconds := flags.Int("poll", 0, "status poll interval in seconds (optional, defaults to 1s)")
	debug := flags.Bool("debug", false, "log debug records")
	flags.Usage = func() { usage(flags) }
	if err := flags.Parse(args); err != nil {
		return app.ExitUsage
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := app.Options{
		ConfigPath: *configPath,
		APIURL:     *apiURL,
		Debug:      *debug,
	}
	if poll := *pollSeconds; poll > 0 {
		opts.PollEvery = poll
	}

	rest := flags.Args()
	if len(rest) == 0 {
		if err := app.Run(ctx, opts); err != nil {
			fmt.Fprintf(stderr, "wordcloud: %v\n", err)
			return app.ExitFailure
		}
		return app.ExitOK
	}

	cmd := app.Command(rest[0])
	switch cmd {
	case app.CmdSubmit, app.CmdStatus, app.CmdFetch:
	default:
		fmt.Fprintf(stderr, "wordcloud: unknown command %q\n", rest[0])
		usage(flags)
		return app.ExitUsage
	}

	arg, out, err := parseCommand(cmd, rest[1:], stderr)
	if err != nil {
		return app.ExitUsage
	}
	out.Stdout = stdout
	out.Stderr = stderr
	return app.RunHeadless(ctx, opts, cmd, arg, out)
}

// parseCommand reads the single positional argument of cmd and its flags,
// which may appear before or after it.
func parseCommand(cmd app.Command, args []string, stderr io.Writer) (string, app.Output, error) {
	fs := flag.NewFlagSet(string(cmd), flag.ContinueOnError)
	fs.SetOutput(stderr)

	var out app.Output
	if cmd != app.CmdStatus {
		fs.StringVar(&out.Path, "out", "", "also write the result JSON to this file")
		fs.BoolVar(&out.Copy, "copy", false, "also copy the result JSON to the clipboard")
	}

	if err := fs.Parse(args); err != nil {
		return "", out, err
	}
	positional := fs.Args()
	if len(positional) == 0 {
		err := fmt.Errorf("%s requires an argument", cmd)
		fmt.Fprintf(stderr, "wordcloud: %v\n", err)
		return "", out, err
	}
	arg := positional[0]
	if err := fs.Parse(positional[1:]); err != nil {
		return "", out, err
	}
	if fs.NArg() > 0 {
		err := fmt.Errorf("%s takes one argument, got extra %q", cmd, fs.Arg(0))
		fmt.Fprintf(stderr, "wordcloud: %v\n", err)
		return "", out, err
	}
	return arg, out, nil
}

func usage(flags *flag.FlagSet) {
	w := flags.Output()
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  wordcloud [flags]                              start the TUI")
	fmt.Fprintln(w, "  wordcloud [flags] submit FILE [-out F] [-copy]  upload, wait and print the result")
	fmt.Fprintln(w, "  wordcloud [flags] status ID                     wait for a terminal status")
	fmt.Fprintln(w, "  wordcloud [flags] fetch ID [-out F] [-copy]     fetch the result")
	fmt.Fprintln(w, "\nFlags:")
	flags.PrintDefaults()
}
