package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fatih/color"

	"doc-summarizer/internal/apiclient"
	"doc-summarizer/internal/app"
	"doc-summarizer/internal/chat"
	"doc-summarizer/internal/export"
	"doc-summarizer/internal/workflow"
)

const usage = `usage: summarize [flags] text|pdf|document <path|->

Summarizes the input with the summarization service, prints the summary,
optionally exports it and answers questions about it read from stdin.

flags:
`

var errUsage = errors.New("invalid usage")

func main() {
	deps, err := app.BuildClient(os.Stderr)
	if err != nil {
		slog.Default().Error("failed to build dependencies", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, deps, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	stop()
	deps.Close()

	switch {
	case err == nil:
	case errors.Is(err, flag.ErrHelp):
		os.Exit(0)
	case errors.Is(err, errUsage):
		os.Exit(2)
	default:
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type options struct {
	method    string
	length    string
	useOpenAI bool
	exports   string
	outDir    string
	name      string
	chat      bool
	noColor   bool
}

func parseArgs(deps app.ClientDeps, args []string, stderr io.Writer) (options, workflow.Surface, string, error) {
	opts := options{}
	fs := flag.NewFlagSet("summarize", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}
	fs.StringVar(&opts.method, "method", deps.Config.SummaryMethod, "summarization method: extractive or abstractive")
	fs.StringVar(&opts.length, "length", deps.Config.SummaryLength, "summary length: short, medium or detailed")
	fs.BoolVar(&opts.useOpenAI, "openai", deps.Config.UseOpenAI, "ask the service to use its hosted model")
	fs.StringVar(&opts.exports, "export", "", "comma-separated export formats (txt, pdf, docx) or \"all\"")
	fs.StringVar(&opts.outDir, "out", deps.Config.OutputDir, "directory for exported files")
	fs.StringVar(&opts.name, "name", "", "file name sent to the service (defaults to the input's base name)")
	fs.BoolVar(&opts.chat, "chat", false, "after summarizing, answer questions read from stdin, one per line")
	fs.BoolVar(&opts.noColor, "no-color", false, "disable colored output")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return opts, "", "", err
		}
		return opts, "", "", errUsage
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return opts, "", "", errUsage
	}
	surface, ok := workflow.ParseSurface(fs.Arg(0))
	if !ok {
		fmt.Fprintf(stderr, "unknown input kind %q (valid: text, pdf, document)\n", fs.Arg(0))
		return opts, "", "", errUsage
	}
	path := fs.Arg(1)
	if opts.chat && path == "-" {
		fmt.Fprintln(stderr, "-chat reads questions from stdin, so the input must be a file")
		return opts, "", "", errUsage
	}
	return opts, surface, path, nil
}

func run(ctx context.Context, deps app.ClientDeps, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	opts, surface, path, err := parseArgs(deps, args, stderr)
	if err != nil {
		return err
	}
	if opts.noColor {
		color.NoColor = true
	}
	formats, err := parseFormats(opts.exports)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return errUsage
	}

	data, err := readInput(path, stdin)
	if err != nil {
		return err
	}
	in := workflow.Input{
		Method:    apiclient.Method(opts.method),
		Length:    apiclient.Length(opts.length),
		UseOpenAI: opts.useOpenAI,
	}
	if surface == workflow.SurfaceText {
		in.Text = string(data)
	} else {
		in.File = data
		in.Filename = uploadName(opts.name, path, surface)
	}

	ctrl := workflow.New(surface, deps.API, deps.Events, deps.Log)
	defer ctrl.Close()

	if err := ctrl.Submit(ctx, in); err != nil {
		if notice := ctrl.Snapshot().Notice; notice != "" {
			return errors.New(notice)
		}
		return err
	}
	summary := ctrl.Snapshot().Summary
	fmt.Fprintln(stdout, summary)

	deliverer := export.DirDeliverer{Dir: opts.outDir}
	for _, f := range formats {
		a, err := ctrl.Export(ctx, f, deliverer)
		if err != nil {
			return err
		}
		fmt.Fprintf(stderr, "saved %s\n", deliverer.Path(a.Filename))
	}

	if !opts.chat {
		return nil
	}
	session, ok := ctrl.Chat()
	if !ok {
		return errors.New("chat is not available for this summary")
	}
	return chatLoop(ctx, session, stdin, stdout)
}

func chatLoop(ctx context.Context, session *chat.Session, stdin io.Reader, stdout io.Writer) error {
	bot := color.New(color.FgCyan)
	failed := color.New(color.FgRed)

	bot.Fprintln(stdout, session.Last().Text)
	scanner := bufio.NewScanner(stdin)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := session.Ask(ctx, scanner.Text())
		if errors.Is(err, chat.ErrEmptyQuestion) {
			continue
		}
		if err != nil {
			return err
		}
		reply := session.Last()
		if reply.Status == chat.StatusError {
			failed.Fprintln(stdout, reply.Text)
			continue
		}
		bot.Fprintln(stdout, reply.Text)
	}
	return scanner.Err()
}

func parseFormats(s string) ([]export.Format, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if strings.EqualFold(s, "all") {
		return export.Formats(), nil
	}
	var out []export.Format
	seen := map[export.Format]bool{}
	for _, part := range strings.Split(s, ",") {
		f, err := export.ParseFormat(part)
		if err != nil {
			return nil, err
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	return out, nil
}

func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return data, nil
}

func uploadName(override, path string, surface workflow.Surface) string {
	if override != "" {
		return override
	}
	if path != "-" {
		return filepath.Base(path)
	}
	if surface == workflow.SurfacePDF {
		return "document.pdf"
	}
	return "document.txt"
}
