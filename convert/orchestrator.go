// Package convert turns exported markdown documents into wiki markup with an
// external converter and publishes mapped results to DokuWiki.
package convert

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"
	"go.opentelemetry.io/otel/attribute"

	"github.com/olgasafonova/dokuwiki-tools/metrics"
	"github.com/olgasafonova/dokuwiki-tools/tracing"
)

// Uploader publishes converted pages. *doku.Client satisfies it.
type Uploader interface {
	EnsureLoggedIn(ctx context.Context) error
	PutPage(ctx context.Context, pageID, content string) (string, error)
}

// Report summarizes a conversion run.
type Report struct {
	Archives  int // archives considered
	Extracted int // archives extracted during this run
	Converted int // documents converted
	Uploaded  int // pages published
}

// Orchestrator runs conversions and publishes mapped outputs.
type Orchestrator struct {
	converter  *Converter
	mapping    Mapping
	uploader   Uploader
	extensions []string
	logger     *slog.Logger

	loggedIn bool
}

// New creates an Orchestrator. uploader may be nil when mapping is empty.
func New(converter *Converter, mapping Mapping, uploader Uploader, extensions []string, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	if len(extensions) == 0 {
		extensions = DefaultExtensions
	}
	return &Orchestrator{
		converter:  converter,
		mapping:    mapping,
		uploader:   uploader,
		extensions: extensions,
		logger:     logger,
	}
}

// ConvertFile converts src to <save>.doku.txt and <save>.conf.txt and
// publishes any mapped output.
func (o *Orchestrator) ConvertFile(ctx context.Context, src, save string) (Report, error) {
	var report Report
	out, err := o.converter.Run(ctx, src, save)
	if err != nil {
		return report, err
	}
	report.Converted++

	n, err := o.publish(ctx, out)
	report.Uploaded += n
	return report, err
}

// ConvertArchives processes every .zip in root in name order: extract once,
// locate the source document, convert it next to the archive and publish
// mapped outputs. A failing archive does not stop the others; all failures
// are returned together.
func (o *Orchestrator) ConvertArchives(ctx context.Context, root string) (report Report, err error) {
	ctx, span := tracing.StartSpan(ctx, "convert.archives")
	defer span.End()
	span.SetAttributes(attribute.String("convert.root", root))
	defer func() {
		span.SetAttributes(
			attribute.Int("convert.archives", report.Archives),
			attribute.Int("convert.converted", report.Converted),
			attribute.Int("convert.uploaded", report.Uploaded),
		)
		tracing.RecordError(span, err)
	}()

	entries, err := os.ReadDir(root)
	if err != nil {
		return report, fmt.Errorf("failed to read %s: %w", root, err)
	}

	var result *multierror.Error
	for _, e := range entries {
		if e.IsDir() || strings.ToLower(filepath.Ext(e.Name())) != ".zip" {
			continue
		}
		if err := ctx.Err(); err != nil {
			result = multierror.Append(result, err)
			break
		}

		report.Archives++
		if err := o.convertArchive(ctx, root, e.Name(), &report); err != nil {
			o.logger.Error("Archive failed", "archive", e.Name(), "error", err)
			result = multierror.Append(result, fmt.Errorf("%s: %w", e.Name(), err))
		}
	}

	o.logger.Info("Conversion finished",
		"archives", report.Archives,
		"extracted", report.Extracted,
		"converted", report.Converted,
		"uploaded", report.Uploaded)
	return report, result.ErrorOrNil()
}

func (o *Orchestrator) convertArchive(ctx context.Context, root, name string, report *Report) (err error) {
	ctx, span := tracing.StartSpan(ctx, "convert.archive")
	defer span.End()
	defer func() { tracing.RecordError(span, err) }()
	tracing.AddArchiveAttributes(span, name, "")

	zipPath := filepath.Join(root, name)
	dest := filepath.Join(root, strings.TrimSuffix(name, filepath.Ext(name)))

	extracted, err := ExtractArchive(zipPath, dest)
	if err != nil {
		return err
	}
	if extracted {
		report.Extracted++
		metrics.ArchivesExtracted.Inc()
		o.logger.Info("Extracted archive", "archive", zipPath, "dest", dest)
	}

	doc, ok, err := FindDocument(dest, o.extensions)
	if err != nil {
		return err
	}
	if !ok {
		o.logger.Warn("No source document in archive", "dir", dest, "extensions", o.extensions)
		return nil
	}
	o.logger.Info("Found document", "path", doc)
	tracing.AddArchiveAttributes(span, name, doc)

	base := filepath.Base(doc)
	outBase := filepath.Join(root, strings.TrimSuffix(base, filepath.Ext(base)))
	out, err := o.converter.Run(ctx, doc, outBase)
	if err != nil {
		return err
	}
	report.Converted++

	n, err := o.publish(ctx, out)
	report.Uploaded += n
	return err
}

// publish uploads each output file once per matching mapping entry.
func (o *Orchestrator) publish(ctx context.Context, out Outputs) (int, error) {
	uploaded := 0
	for _, path := range []string{out.Doku, out.Conf} {
		entries := o.mapping.Match(path)
		if len(entries) == 0 {
			continue
		}
		if o.uploader == nil {
			return uploaded, fmt.Errorf("%s is mapped but no wiki client is configured", path)
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return uploaded, fmt.Errorf("failed to read converted file: %w", err)
		}

		if !o.loggedIn {
			if err := o.uploader.EnsureLoggedIn(ctx); err != nil {
				return uploaded, err
			}
			o.loggedIn = true
		}

		for _, entry := range entries {
			if _, err := o.uploader.PutPage(ctx, entry.PageID, string(content)); err != nil {
				metrics.RecordUpload(false)
				return uploaded, fmt.Errorf("failed to publish %s (mapping line %d): %w", path, entry.Line, err)
			}
			metrics.RecordUpload(true)
			uploaded++
			o.logger.Info("Published page", "page", entry.PageID, "file", path, "bytes", len(content))
		}
	}
	return uploaded, nil
}
