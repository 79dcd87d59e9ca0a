// wikiconv converts markdown exports into DokuWiki and Confluence markup and
// publishes mapped pages.
//
//	wikiconv --src src.md --save output
//	wikiconv --notion
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	flags "github.com/jessevdk/go-flags"

	"github.com/olgasafonova/dokuwiki-tools/convert"
	"github.com/olgasafonova/dokuwiki-tools/doku"
	apierrors "github.com/olgasafonova/dokuwiki-tools/internal/errors"
	"github.com/olgasafonova/dokuwiki-tools/internal/kvconfig"
	"github.com/olgasafonova/dokuwiki-tools/tracing"
)

// Opts with all cli flags
type Opts struct {
	Src       string `long:"src" description:"convert a single markdown file"`
	Save      string `long:"save" default:"output" description:"output base name for --src"`
	MDFilter  bool   `long:"mdfilter" description:"only accept .md sources inside archives"`
	Notion    bool   `long:"notion" description:"extract and convert every zip archive in --root"`
	Root      string `long:"root" default:"notion" description:"folder holding exported zip archives"`
	Map       string `long:"map" default:"dokuwiki_map.txt" description:"page mapping file (post <pageId> <fileSuffix>)"`
	Config    string `long:"config" default:"doku_config.txt" description:"config file with d_* and c_converter keys"`
	Converter string `long:"converter" description:"converter executable, overrides c_converter"`
	ConvArgs  string `long:"converter_args" description:"arguments placed before the converter flags, overrides c_converter_args"`
	Debug     bool   `long:"debug" description:"debug logging"`
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var opts Opts
	p := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	p.Name = "wikiconv"

	rest, err := p.ParseArgs(args)
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			p.WriteHelp(stdout)
			return 0
		}
		return usage(p, stderr, err)
	}
	if len(rest) > 0 {
		return usage(p, stderr, fmt.Errorf("unexpected arguments: %s", strings.Join(rest, " ")))
	}
	if opts.Src == "" && !opts.Notion {
		return usage(p, stderr, apierrors.NewUsageError("--src or --notion is required"))
	}

	logger := setupLog(stderr, opts.Debug)

	shutdown, err := tracing.Setup(ctx, tracing.DefaultConfig())
	if err != nil {
		logger.Warn("Tracing disabled", "error", err)
	} else {
		defer flushTraces(shutdown, logger)
	}

	values, err := kvconfig.Load(opts.Config)
	if err != nil {
		if !apierrors.IsConfigMissing(err) {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
		logger.Debug("Config file not found, using defaults", "path", opts.Config)
	}

	cfg := convert.DefaultConfig().FromValues(values)
	cfg.MapFile = opts.Map
	cfg.Root = opts.Root
	if opts.Converter != "" {
		cfg.Converter = opts.Converter
	}
	if opts.ConvArgs != "" {
		cfg.ConverterArgs = strings.Fields(opts.ConvArgs)
	}
	if opts.MDFilter {
		cfg.Extensions = []string{".md"}
	}

	mapping, err := convert.LoadMapping(cfg.MapFile)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	var uploader convert.Uploader
	if len(mapping) > 0 {
		uploader = doku.NewClient(doku.DefaultConfig().FromValues(values), logger)
	}

	converter := &convert.Converter{
		Path:   cfg.Converter,
		Args:   cfg.ConverterArgs,
		Stdout: stdout,
		Stderr: stderr,
		Logger: logger,
	}
	o := convert.New(converter, mapping, uploader, cfg.Extensions, logger)

	var report convert.Report
	if opts.Notion {
		report, err = o.ConvertArchives(ctx, cfg.Root)
	} else {
		report, err = o.ConvertFile(ctx, opts.Src, opts.Save)
	}

	fmt.Fprintf(stdout, "converted=%d uploaded=%d\n", report.Converted, report.Uploaded)
	if err != nil {
		logger.Debug("Conversion failed", "error_code", apierrors.Code(err))
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func usage(p *flags.Parser, stderr io.Writer, err error) int {
	fmt.Fprintf(stderr, "error: %v\n\n", err)
	p.WriteHelp(stderr)
	fmt.Fprintln(stderr, "\nex. --src src.md")
	fmt.Fprintln(stderr, "ex. --notion")
	return 1
}

func setupLog(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func flushTraces(shutdown func(context.Context) error, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		logger.Warn("Tracing shutdown failed", "error", err)
	}
}
