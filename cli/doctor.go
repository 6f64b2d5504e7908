package cli

import (
	"fmt"
	"time"

	"github.com/alecthomas/kong"

	"github.com/haskoe/beancount-dansk/render"
)

// DoctorCmd verifies the environment a rewrite run depends on: the
// configuration parses, a mileage rate exists for the current year, and the
// invoice template renders.
type DoctorCmd struct{}

func (cmd *DoctorCmd) Run(ctx *kong.Context, globals *Globals) error {
	failures := 0

	cfg, err := loadRewriteConfig(globals)
	if err != nil {
		printError(ctx.Stdout, fmt.Sprintf("configuration: %v", err))
		printError(ctx.Stderr, "environment not usable")
		return NewCommandError(1)
	}
	if globals.Config != "" {
		printSuccess(ctx.Stdout, fmt.Sprintf("configuration loaded from %s", pathStyle.Render(globals.Config)))
	} else {
		printSuccess(ctx.Stdout, "built-in configuration")
	}

	year := time.Now().Year()
	if rate, ok := cfg.RateFor(year); ok {
		printSuccess(ctx.Stdout, fmt.Sprintf("mileage rate for %d: %s %s/km", year, rate, cfg.Currency))
	} else {
		printError(ctx.Stdout, fmt.Sprintf("no mileage rate configured for %d", year))
		failures++
	}

	if len(cfg.Classification) > 0 {
		printSuccess(ctx.Stdout, fmt.Sprintf("%d filename classification rule(s)", len(cfg.Classification)))
	} else {
		printError(ctx.Stdout, "no filename classification rules; unclassified expenses default to zero-rated")
		failures++
	}

	docRenderer := render.New(cfg.Invoice.TemplateDir, cfg.Invoice.OutputDir)
	if err := docRenderer.Probe(); err != nil {
		printError(ctx.Stdout, err.Error())
		failures++
	} else {
		printSuccess(ctx.Stdout, "invoice template renders")
	}

	if path, err := docRenderer.DocumentPath("example"); err == nil {
		printInfof(ctx.Stdout, "invoice documents go to %s", pathStyle.Render(path))
	}

	if failures > 0 {
		_, _ = fmt.Fprintln(ctx.Stderr)
		printError(ctx.Stderr, fmt.Sprintf("%d problem(s) found", failures))
		return NewCommandError(1)
	}

	printSuccess(ctx.Stdout, "environment ready")
	return nil
}
