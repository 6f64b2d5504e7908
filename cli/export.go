package cli

import (
	"context"
	stdErrors "errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"github.com/haskoe/beancount-dansk/formatter"
	"github.com/haskoe/beancount-dansk/ledger"
	"github.com/haskoe/beancount-dansk/loader"
	"github.com/haskoe/beancount-dansk/plugins"
	"github.com/haskoe/beancount-dansk/render"
	"github.com/haskoe/beancount-dansk/telemetry"
)

// ExportCmd rewrites a ledger, validates the result, renders any invoice
// documents, and writes the expanded ledger as formatted text.
type ExportCmd struct {
	File   FileOrStdin `help:"Ledger input filename (use '-' for stdin, or omit for stdin)." arg:"" optional:""`
	Output string      `help:"Output filename (stdout when omitted)." short:"o" optional:""`
	Force  bool        `help:"Overwrite the output file without confirmation." short:"f"`
}

func (cmd *ExportCmd) Run(ctx *kong.Context, globals *Globals) error {
	if err := cmd.File.EnsureContents(); err != nil {
		return err
	}

	runCtx := context.Background()

	if globals.Telemetry {
		collector := telemetry.NewTimingCollector()
		runCtx = telemetry.WithCollector(runCtx, collector)

		exportTimer := collector.Start(fmt.Sprintf("export %s", filepath.Base(cmd.File.Filename)))
		runCtx = telemetry.WithRootTimer(runCtx, exportTimer)

		defer func() {
			exportTimer.End()
			_, _ = fmt.Fprintln(ctx.Stderr)
			collector.Report(ctx.Stderr)
		}()
	}

	cfg, err := loadRewriteConfig(globals)
	if err != nil {
		return err
	}

	sourceContent, err := cmd.File.GetSourceContent()
	if err != nil {
		return fmt.Errorf("failed to read file for error context: %w", err)
	}
	errRenderer := NewErrorRenderer(sourceContent)

	ldr := loader.New(loader.WithFollowIncludes())
	tree, err := cmd.File.LoadAST(runCtx, ldr)
	if err != nil {
		_, _ = fmt.Fprintln(ctx.Stderr, errRenderer.Render(err))
		_, _ = fmt.Fprintln(ctx.Stderr)
		printError(ctx.Stderr, "parse error")
		return NewCommandError(1)
	}

	docRenderer := render.New(cfg.Invoice.TemplateDir, cfg.Invoice.OutputDir)
	pass := plugins.New(cfg, plugins.WithRenderer(docRenderer))
	rewriteErrs := pass.ApplyAST(runCtx, tree)

	fatal, advisory := splitAdvisory(rewriteErrs)
	if len(rewriteErrs) > 0 {
		_, _ = fmt.Fprintln(ctx.Stderr, errRenderer.RenderAll(rewriteErrs))
		_, _ = fmt.Fprintln(ctx.Stderr)
	}
	if len(fatal) > 0 {
		printError(ctx.Stderr, fmt.Sprintf("%d rewrite error(s) found", len(fatal)))
		return NewCommandError(1)
	}

	l := ledger.New()
	if err := l.Process(runCtx, tree); err != nil {
		var validationErrors *ledger.ValidationErrors
		if stdErrors.As(err, &validationErrors) {
			_, _ = fmt.Fprintln(ctx.Stderr, errRenderer.RenderAll(validationErrors.Errors))
			_, _ = fmt.Fprintln(ctx.Stderr)
			printError(ctx.Stderr, fmt.Sprintf("%d validation error(s) found", len(validationErrors.Errors)))
			return NewCommandError(1)
		}
		return err
	}

	formatted := formatter.New().FormatString(tree)

	if cmd.Output == "" {
		_, _ = fmt.Fprint(ctx.Stdout, formatted)
		return nil
	}

	if !cmd.Force {
		if _, err := os.Stat(cmd.Output); err == nil {
			overwrite, err := promptYesNo(fmt.Sprintf("Overwrite %s?", cmd.Output))
			if err != nil {
				return err
			}
			if !overwrite {
				printInfof(ctx.Stderr, "Export aborted, %s left untouched", cmd.Output)
				return nil
			}
		}
	}

	if err := os.WriteFile(cmd.Output, []byte(formatted), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", cmd.Output, err)
	}

	if len(advisory) > 0 {
		printWarning(ctx.Stderr, fmt.Sprintf("%d advisory warning(s)", len(advisory)))
	}
	printSuccess(ctx.Stdout, fmt.Sprintf("Exported to %s", pathStyle.Render(cmd.Output)))

	return nil
}
