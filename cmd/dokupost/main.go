// dokupost reads and writes DokuWiki pages and media files over XML-RPC.
//
//	dokupost --download --page test:start --save page.txt
//	dokupost --upload --page test:start --file page.txt
//	dokupost --get_image --page test:data.jpeg
//	dokupost --put_image --page test --file data.jpeg
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	flags "github.com/jessevdk/go-flags"

	"github.com/olgasafonova/dokuwiki-tools/doku"
	apierrors "github.com/olgasafonova/dokuwiki-tools/internal/errors"
	"github.com/olgasafonova/dokuwiki-tools/tracing"
)

// Opts with all cli flags
type Opts struct {
	Config      string `long:"config" default:"doku_config.txt" description:"config file with d_server, d_user and d_pass"`
	Page        string `long:"page" description:"page id, media id or namespace"`
	File        string `long:"file" description:"local file to upload"`
	Save        string `long:"save" description:"output file (directory for --get_image_all)"`
	Server      string `long:"server" description:"wiki root URL, overrides d_server"`
	Debug       bool   `long:"debug" description:"log requests and responses"`
	StrictLogin bool   `long:"strict_login" description:"fail when the wiki rejects the login"`

	Actions struct {
		Login       bool `long:"login" description:"log in and report the result"`
		Download    bool `long:"download" description:"download a page (--page PAGE [--save FILE])"`
		Upload      bool `long:"upload" description:"upload a page (--page PAGE --file FILE)"`
		ImageList   bool `long:"image_list" description:"list media files (--page NAMESPACE)"`
		GetImage    bool `long:"get_image" description:"download a media file (--page IMAGEID [--save FILE])"`
		PutImage    bool `long:"put_image" description:"upload a media file (--page NAMESPACE --file FILE)"`
		GetImageAll bool `long:"get_image_all" description:"download every media file (--page NAMESPACE [--save DIR])"`
	} `group:"actions (exactly one)"`
}

type action int

const (
	actionLogin action = iota
	actionDownload
	actionUpload
	actionImageList
	actionGetImage
	actionPutImage
	actionGetImageAll
)

type handler func(a *app, ctx context.Context) error

var handlers = map[action]handler{
	actionLogin:       (*app).login,
	actionDownload:    (*app).download,
	actionUpload:      (*app).upload,
	actionImageList:   (*app).imageList,
	actionGetImage:    (*app).getImage,
	actionPutImage:    (*app).putImage,
	actionGetImageAll: (*app).getImageAll,
}

// selected returns the action flags that were set.
func (o *Opts) selected() []action {
	var acts []action
	for _, f := range []struct {
		set bool
		act action
	}{
		{o.Actions.Login, actionLogin},
		{o.Actions.Download, actionDownload},
		{o.Actions.Upload, actionUpload},
		{o.Actions.ImageList, actionImageList},
		{o.Actions.GetImage, actionGetImage},
		{o.Actions.PutImage, actionPutImage},
		{o.Actions.GetImageAll, actionGetImageAll},
	} {
		if f.set {
			acts = append(acts, f.act)
		}
	}
	return acts
}

type app struct {
	opts   Opts
	client *doku.Client
	stdout io.Writer
	logger *slog.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	var opts Opts
	p := flags.NewParser(&opts, flags.HelpFlag|flags.PassDoubleDash)
	p.Name = "dokupost"

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

	acts := opts.selected()
	if len(acts) != 1 {
		return usage(p, stderr, apierrors.NewUsageError("exactly one action flag is required, got %d", len(acts)))
	}

	logger := setupLog(stderr, opts.Debug)

	shutdown, err := tracing.Setup(ctx, tracing.DefaultConfig())
	if err != nil {
		logger.Warn("Tracing disabled", "error", err)
	} else {
		defer flushTraces(shutdown, logger)
	}

	cfg, err := doku.LoadConfig(opts.Config)
	if err != nil {
		if !apierrors.IsConfigMissing(err) {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
		logger.Debug("Config file not found, using defaults", "path", opts.Config)
	}
	if opts.Server != "" {
		cfg.ServerRoot = opts.Server
	}
	if opts.StrictLogin {
		cfg.StrictLogin = true
	}

	a := &app{
		opts:   opts,
		client: doku.NewClient(cfg, logger),
		stdout: stdout,
		logger: logger,
	}

	if err := handlers[acts[0]](a, ctx); err != nil {
		if apierrors.IsUsage(err) {
			return usage(p, stderr, err)
		}
		logger.Debug("Action failed", "error_code", apierrors.Code(err))
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func usage(p *flags.Parser, stderr io.Writer, err error) int {
	fmt.Fprintf(stderr, "error: %v\n\n", err)
	p.WriteHelp(stderr)
	fmt.Fprintln(stderr, "\nex. --download --page test:start --save page.txt")
	fmt.Fprintln(stderr, "ex. --upload --page test:start --file page.txt")
	fmt.Fprintln(stderr, "ex. --get_image --page test:data.jpeg")
	fmt.Fprintln(stderr, "ex. --put_image --page test --file data.jpeg")
	return 1
}

func flushTraces(shutdown func(context.Context) error, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		logger.Warn("Tracing shutdown failed", "error", err)
	}
}

func setupLog(w io.Writer, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func (a *app) require(page, file bool) error {
	if page && a.opts.Page == "" {
		return apierrors.NewUsageError("--page is required for this action")
	}
	if file && a.opts.File == "" {
		return apierrors.NewUsageError("--file is required for this action")
	}
	return nil
}

func (a *app) login(ctx context.Context) error {
	cfg := a.client.Config()
	if !cfg.HasCredentials() {
		return apierrors.NewUsageError("d_user and d_pass must be set in %s", a.opts.Config)
	}
	ok, err := a.client.Login(ctx, cfg.User, cfg.Password)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.stdout, "Login= %v\n", ok)
	return nil
}

func (a *app) download(ctx context.Context) error {
	if err := a.require(true, false); err != nil {
		return err
	}
	if err := a.client.EnsureLoggedIn(ctx); err != nil {
		return err
	}

	page, err := a.client.GetPage(ctx, a.opts.Page)
	if err != nil {
		return err
	}
	if a.opts.Save == "" {
		_, err = fmt.Fprintln(a.stdout, page)
		return err
	}
	if err := os.WriteFile(a.opts.Save, []byte(page), 0o644); err != nil {
		return fmt.Errorf("failed to save page: %w", err)
	}
	fmt.Fprintln(a.stdout, "save:", a.opts.Save)
	return nil
}

func (a *app) upload(ctx context.Context) error {
	if err := a.require(true, true); err != nil {
		return err
	}
	data, err := os.ReadFile(a.opts.File)
	if err != nil {
		return fmt.Errorf("failed to read page file: %w", err)
	}
	if err := a.client.EnsureLoggedIn(ctx); err != nil {
		return err
	}

	result, err := a.client.PutPage(ctx, a.opts.Page, string(data))
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, "PutPage Result:", result)
	return nil
}

func (a *app) listAttachments(ctx context.Context) ([]doku.Attachment, error) {
	if err := a.client.EnsureLoggedIn(ctx); err != nil {
		return nil, err
	}
	list, err := a.client.ListAttachments(ctx, a.opts.Page)
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (a *app) printAttachment(att doku.Attachment) {
	size := att.Fields["size"]
	if size == "" {
		size = fmt.Sprint(att.Size)
	}
	fmt.Fprintf(a.stdout, "%-30s file=%-30s  (%s byte)\n", att.ID, att.File, size)
}

func (a *app) imageList(ctx context.Context) error {
	list, err := a.listAttachments(ctx)
	if err != nil {
		return err
	}
	for _, att := range list {
		a.printAttachment(att)
	}
	return nil
}

func (a *app) fetchImage(ctx context.Context, id, path string) error {
	a.logger.Debug("GetImage", "id", id)
	data, err := a.client.GetAttachment(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, "save:", path)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to save media file: %w", err)
	}
	return nil
}

func (a *app) getImage(ctx context.Context) error {
	if err := a.require(true, false); err != nil {
		return err
	}
	if err := a.client.EnsureLoggedIn(ctx); err != nil {
		return err
	}

	path := a.opts.Save
	if path == "" {
		path = lastSegment(a.opts.Page)
	}
	return a.fetchImage(ctx, a.opts.Page, path)
}

func (a *app) putImage(ctx context.Context) error {
	if err := a.require(true, true); err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, "load:", a.opts.File)
	data, err := os.ReadFile(a.opts.File)
	if err != nil {
		return fmt.Errorf("failed to read media file: %w", err)
	}
	if err := a.client.EnsureLoggedIn(ctx); err != nil {
		return err
	}

	id := a.opts.Page + ":" + filepath.Base(a.opts.File)
	result, err := a.client.PutAttachment(ctx, id, data)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.stdout, "PutImage Result:", result)
	return nil
}

func (a *app) getImageAll(ctx context.Context) error {
	list, err := a.listAttachments(ctx)
	if err != nil {
		return err
	}
	for _, att := range list {
		a.printAttachment(att)
		name := att.File
		if name == "" {
			name = lastSegment(att.ID)
		}
		// file names come from the server; keep them inside the target directory
		path := filepath.Join(a.opts.Save, filepath.Base(name))
		if err := a.fetchImage(ctx, att.ID, path); err != nil {
			return err
		}
	}
	return nil
}

// lastSegment returns the part of a colon-separated id after the last colon.
func lastSegment(id string) string {
	if i := strings.LastIndex(id, ":"); i >= 0 {
		return id[i+1:]
	}
	return id
}
