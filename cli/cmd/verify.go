package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/poliverai/poliver/analysis"
	"github.com/poliverai/poliver/cli/render"
	"github.com/poliverai/poliver/cli/tui"
	"github.com/poliverai/poliver/transcript"
	"github.com/poliverai/poliver/types"
)

// Exit codes for verify.
const (
	exitSuccess      = 0
	exitFailure      = 1
	exitNoSettlement = 2
)

// VerifyCommand returns the verify command.
func VerifyCommand() *cli.Command {
	return &cli.Command{
		Name:  "verify",
		Usage: "Stream a document through compliance analysis",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Usage:    "Path to the document to analyze",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "mode",
				Usage: "Analysis mode: fast, balanced, detailed",
			},
			&cli.BoolFlag{
				Name:  "tui",
				Usage: "Show live progress in an interactive view",
			},
			&cli.StringFlag{
				Name:  "transcript",
				Usage: "Journal decoded stream events to this path",
			},
			FormatFlag,
		},
		Action: verifyAction,
	}
}

func verifyAction(c *cli.Context) error {
	e, err := newEnv(c)
	if err != nil {
		return err
	}
	defer e.detach()

	renderer, err := render.NewRenderer(c)
	if err != nil {
		return err
	}

	mode := analysis.Mode(c.String("mode"))
	if mode == "" {
		mode = analysis.Mode(e.cfg.Verify.Mode)
	}

	path := c.String("file")
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open document: %w", err)
	}
	defer func() { _ = f.Close() }()

	var recorder analysis.Recorder
	if journalPath := c.String("transcript"); journalPath != "" {
		w, err := transcript.Create(journalPath)
		if err != nil {
			return err
		}
		defer func() { _ = w.Close() }()
		recorder = w
	}

	client := analysis.NewClient(analysis.Config{
		API:      e.api,
		Bus:      e.bus,
		Logger:   e.logger,
		Metrics:  e.collector,
		Recorder: recorder,
	})

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		<-sigCh
		cancel()
	}()

	doc := analysis.Document{Name: filepath.Base(path), Content: f}

	var (
		result *types.AnalysisResult
		runErr error
	)
	if c.Bool("tui") {
		result, runErr = runVerifyTUI(ctx, cancel, client, doc, mode)
	} else {
		result, runErr = runVerifyPlain(ctx, c, client, doc, mode)
	}

	if runErr != nil {
		if errors.Is(runErr, analysis.ErrNoSettlement) {
			return cli.Exit("stream ended without a settled result", exitNoSettlement)
		}
		return cli.Exit(fmt.Sprintf("verification failed: %v", runErr), exitFailure)
	}

	if err := renderer.Render(result); err != nil {
		return err
	}
	return cli.Exit("", exitSuccess)
}

func runVerifyPlain(ctx context.Context, c *cli.Context, client *analysis.Client, doc analysis.Document, mode analysis.Mode) (*types.AnalysisResult, error) {
	quiet := c.Bool("quiet")
	onUpdate := func(u types.ProgressUpdate) {
		if quiet {
			return
		}
		fmt.Fprintf(os.Stderr, "[%3d%%] %s: %s\n", u.Progress, u.Status, u.Message)
	}
	return client.StreamVerify(ctx, doc, mode, onUpdate)
}

func runVerifyTUI(ctx context.Context, cancel context.CancelFunc, client *analysis.Client, doc analysis.Document, mode analysis.Mode) (*types.AnalysisResult, error) {
	updates := make(chan types.ProgressUpdate, 64)
	outcomeCh := make(chan tui.Outcome, 1)

	go func() {
		result, err := client.StreamVerify(ctx, doc, mode, func(u types.ProgressUpdate) {
			updates <- u
		})
		close(updates)
		outcomeCh <- tui.Outcome{Result: result, Err: err}
	}()

	outcome, err := tui.RunVerify(doc.Name, updates, outcomeCh, cancel)
	if err != nil {
		return nil, err
	}
	return outcome.Result, outcome.Err
}
