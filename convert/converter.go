package convert

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os/exec"

	"go.opentelemetry.io/otel/attribute"

	apierrors "github.com/olgasafonova/dokuwiki-tools/internal/errors"
	"github.com/olgasafonova/dokuwiki-tools/metrics"
	"github.com/olgasafonova/dokuwiki-tools/tracing"
)

// Outputs are the files a conversion writes.
type Outputs struct {
	Doku string // DokuWiki markup
	Conf string // Confluence markup
}

// OutputsFor derives the output paths for base name base.
func OutputsFor(base string) Outputs {
	return Outputs{
		Doku: base + ".doku.txt",
		Conf: base + ".conf.txt",
	}
}

// Converter runs the external markdown converter.
type Converter struct {
	Path   string
	Args   []string // inserted before the input and output flags
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
}

// Command returns the argument list for converting input to outBase.
func (c *Converter) Command(input, outBase string) []string {
	out := OutputsFor(outBase)
	args := append([]string(nil), c.Args...)
	return append(args,
		"-lmd", input,
		"-sdoku", "-o"+out.Doku,
		"-sconf", "-o"+out.Conf,
	)
}

// Run converts input synchronously. A converter that cannot be started or
// exits non-zero yields an ExternalProcessError.
func (c *Converter) Run(ctx context.Context, input, outBase string) (Outputs, error) {
	ctx, span := tracing.StartSpan(ctx, "convert.run")
	defer span.End()
	tracing.AddConversionAttributes(span, input, outBase)

	args := c.Command(input, outBase)
	if c.Logger != nil {
		c.Logger.Info("Converting", "input", input, "output", outBase, "converter", c.Path)
		c.Logger.Debug("Converter command", "path", c.Path, "args", args)
	}

	cmd := exec.CommandContext(ctx, c.Path, args...)
	cmd.Stdout = c.Stdout
	cmd.Stderr = c.Stderr

	if err := cmd.Run(); err != nil {
		metrics.RecordConversion(false)
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		span.SetAttributes(attribute.Int("process.exit_code", code))
		perr := &apierrors.ExternalProcessError{Command: c.Path, ExitCode: code, Err: err}
		tracing.RecordError(span, perr)
		return Outputs{}, perr
	}
	span.SetAttributes(attribute.Int("process.exit_code", 0))

	metrics.RecordConversion(true)
	return OutputsFor(outBase), nil
}
