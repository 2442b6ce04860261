// Package main is the entry point for the vellum document preview tool.
//
// It drives the full pipeline against the in-memory engine: configuration,
// session synchronization, attribute application, styled-span resolution
// and layout reconstruction, rendered either as text dumps or as a live
// tcell preview.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/vellumtext/vellum/internal/attr"
	"github.com/vellumtext/vellum/internal/config"
	"github.com/vellumtext/vellum/internal/diff"
	"github.com/vellumtext/vellum/internal/engine/enginetest"
	"github.com/vellumtext/vellum/internal/logging"
	"github.com/vellumtext/vellum/internal/session"
	"github.com/vellumtext/vellum/internal/span"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const demoText = `Vellum
======

The quick brown fox jumps over the lazy dog.
Tri-state attributes ride a compact wire format.

Resize the terminal to watch lines rewrap.`

type options struct {
	ConfigPath string
	FilePath   string
	Width      float64
	LogLevel   string
	DumpSpans  bool
	Preview    bool
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	level := cfg.Logging.Level
	if opts.LogLevel != "" {
		level = opts.LogLevel
	}
	log := logging.New(logging.Config{
		Level:  logging.ParseLevel(level),
		Output: os.Stderr,
		Prefix: "vellum",
	})

	text := demoText
	seedStyles := true
	if opts.FilePath != "" {
		data, err := os.ReadFile(opts.FilePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: reading %s: %v\n", opts.FilePath, err)
			return 1
		}
		text = string(data)
		seedStyles = false
	}

	eng := enginetest.New(text)
	eng.SetLineHeight(cfg.Layout.LineHeight)

	base := span.DefaultStyle()
	base.FontSize = cfg.Layout.DefaultFontSize
	sess := session.New(eng, session.Options{
		Logger:    log,
		Diff:      diff.Options{DetectReplacements: cfg.Sync.DetectReplacements},
		BaseStyle: base,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := sess.Load(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if seedStyles {
		if err := seedDemoStyles(ctx, sess, text); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	width := cfg.Layout.Width
	if opts.Width > 0 {
		width = opts.Width
	}

	switch {
	case opts.Preview:
		return runPreview(ctx, sess, eng, opts, log)
	case opts.DumpSpans:
		return dumpSpans(ctx, sess)
	default:
		return dumpLayout(ctx, sess, width)
	}
}

// seedDemoStyles formats the built-in document: a bold heading, an italic
// colored phrase and an underlined phrase.
func seedDemoStyles(ctx context.Context, sess *session.Session, text string) error {
	apply := func(phrase string, a attr.TextAttributes) error {
		start := strings.Index(text, phrase)
		if start < 0 {
			return nil
		}
		return sess.ApplyAttributes(ctx, start, start+len(phrase), a)
	}

	if err := apply("Vellum", attr.TextAttributes{Bold: attr.Bool(true), FontSize: attr.Int(20)}); err != nil {
		return err
	}
	if err := apply("quick brown fox", attr.TextAttributes{
		Italic:     attr.Bool(true),
		Foreground: attr.String("#CC3300"),
	}); err != nil {
		return err
	}
	return apply("compact wire format", attr.TextAttributes{Underline: attr.Bool(true)})
}

func parseFlags() options {
	var opts options
	var showVersion bool
	var showHelp bool

	flag.StringVar(&opts.ConfigPath, "config", "vellum.toml", "Path to configuration file")
	flag.StringVar(&opts.ConfigPath, "c", "vellum.toml", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.FilePath, "file", "", "Document to load instead of the built-in demo")
	flag.StringVar(&opts.FilePath, "f", "", "Document to load (shorthand)")
	flag.Float64Var(&opts.Width, "width", 0, "Layout width in pixels (overrides config)")
	flag.StringVar(&opts.LogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	flag.BoolVar(&opts.DumpSpans, "spans", false, "Dump resolved styled spans instead of the layout")
	flag.BoolVar(&opts.Preview, "preview", false, "Render a live terminal preview")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Vellum - rich text synchronization and layout preview\n\n")
		fmt.Fprintf(os.Stderr, "Usage: vellum [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  vellum                      Dump the demo document layout\n")
		fmt.Fprintf(os.Stderr, "  vellum -spans               Dump resolved styled spans\n")
		fmt.Fprintf(os.Stderr, "  vellum -preview             Live terminal preview\n")
		fmt.Fprintf(os.Stderr, "  vellum -f notes.txt -width 480\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("Vellum %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	if opts.LogLevel != "" {
		switch opts.LogLevel {
		case "debug", "info", "warn", "error":
		default:
			fmt.Fprintf(os.Stderr, "Error: invalid log level %q (must be debug, info, warn, or error)\n", opts.LogLevel)
			os.Exit(1)
		}
	}

	return opts
}
