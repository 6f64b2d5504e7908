package cli

import (
	"context"
	stdErrors "errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/alecthomas/kong"

	"github.com/haskoe/beancount-dansk/ledger"
	"github.com/haskoe/beancount-dansk/loader"
	"github.com/haskoe/beancount-dansk/plugins"
	"github.com/haskoe/beancount-dansk/telemetry"
)

type CheckCmd struct {
	File FileOrStdin `help:"Ledger input filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
}

func (cmd *CheckCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := cmd.File.EnsureContents(); err != nil {
		return err
	}

	runCtx := context.Background()

	var collector telemetry.Collector
	var checkTimer telemetry.Timer
	var once sync.Once

	reportTelemetry := func() {
		once.Do(func() {
			if collector != nil {
				checkTimer.End()
				_, _ = fmt.Fprintln(ctx.Stderr)
				collector.Report(ctx.Stderr)
			}
		})
	}

	if globals.Telemetry {
		collector = telemetry.NewTimingCollector()
		runCtx = telemetry.WithCollector(runCtx, collector)

		checkTimer = collector.Start(fmt.Sprintf("check %s", filepath.Base(cmd.File.Filename)))
		runCtx = telemetry.WithRootTimer(runCtx, checkTimer)

		defer reportTelemetry()
	}

	cfg, err := loadRewriteConfig(globals)
	if err != nil {
		return err
	}

	sourceContent, err := cmd.File.GetSourceContent()
	if err != nil {
		return fmt.Errorf("failed to read file for error context: %w", err)
	}
	renderer := NewErrorRenderer(sourceContent)

	ldr := loader.New(loader.WithFollowIncludes())
	tree, err := cmd.File.LoadAST(runCtx, ldr)
	if err != nil {
		_, _ = fmt.Fprintln(ctx.Stderr, renderer.Render(err))
		_, _ = fmt.Fprintln(ctx.Stderr)
		printError(ctx.Stderr, "parse error")

		reportTelemetry()
		return NewCommandError(1)
	}

	// Rewrite without a document renderer: check never touches the
	// filesystem beyond reading.
	pass := plugins.New(cfg)
	rewriteErrs := pass.ApplyAST(runCtx, tree)

	fatal, advisory := splitAdvisory(rewriteErrs)
	if len(rewriteErrs) > 0 {
		_, _ = fmt.Fprintln(ctx.Stderr, renderer.RenderAll(rewriteErrs))
		_, _ = fmt.Fprintln(ctx.Stderr)
	}
	l := ledger.New()
	if err := l.Process(runCtx, tree); err != nil {
		var validationErrors *ledger.ValidationErrors
		if stdErrors.As(err, &validationErrors) {
			_, _ = fmt.Fprintln(ctx.Stderr, renderer.RenderAll(validationErrors.Errors))
			_, _ = fmt.Fprintln(ctx.Stderr)
			printError(ctx.Stderr, fmt.Sprintf("%d validation error(s) found", len(validationErrors.Errors)))

			reportTelemetry()
			return NewCommandError(1)
		}
		return err
	}

	if len(fatal) > 0 {
		printError(ctx.Stderr, fmt.Sprintf("%d rewrite error(s) found", len(fatal)))
		reportTelemetry()
		return NewCommandError(1)
	}

	if len(advisory) > 0 {
		printWarning(ctx.Stderr, fmt.Sprintf("%d advisory warning(s)", len(advisory)))
	}
	printSuccess(ctx.Stdout, "Check passed")

	return nil
}

// splitAdvisory partitions rewrite errors into fatal and advisory.
func splitAdvisory(errs []error) (fatal, advisory []error) {
	for _, err := range errs {
		if plugins.IsAdvisory(err) {
			advisory = append(advisory, err)
		} else {
			fatal = append(fatal, err)
		}
	}
	return fatal, advisory
}

// loadRewriteConfig loads the YAML rewrite configuration named by the
// --config flag, or the built-in defaults when the flag is absent.
func loadRewriteConfig(globals *Globals) (*plugins.Config, error) {
	if globals.Config == "" {
		return plugins.DefaultConfig(), nil
	}

	cfg, err := plugins.LoadConfig(globals.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", globals.Config, err)
	}
	return cfg, nil
}
