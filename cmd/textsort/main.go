// Command textsort classifies images by OCR text density and moves matches
// from an input directory to an output directory.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/cobra"

	"github.com/wudi/textsort/observability"
	"github.com/wudi/textsort/observability/zaplog"
	"github.com/wudi/textsort/ocr"
	"github.com/wudi/textsort/ocr/tesseract"
	"github.com/wudi/textsort/sorter"
)

// env carries TEXTSORT_* environment defaults; flags override them.
type env struct {
	InputDir    string        `envconfig:"INPUT_DIR"`
	OutputDir   string        `envconfig:"OUTPUT_DIR"`
	Threshold   float64       `envconfig:"THRESHOLD" default:"0.02"`
	Tessdata    string        `envconfig:"TESSDATA"`
	Languages   []string      `envconfig:"LANGUAGES" default:"deu,eng"`
	Preview     bool          `envconfig:"PREVIEW"`
	LogFile     string        `envconfig:"LOG_FILE"`
	Parallel    bool          `envconfig:"PARALLEL"`
	Workers     int           `envconfig:"WORKERS"`
	OnCollision string        `envconfig:"ON_COLLISION" default:"overwrite"`
	OCRTimeout  time.Duration `envconfig:"OCR_TIMEOUT"`
}

func main() {
	var defaults env
	if err := envconfig.Process("textsort", &defaults); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}

	var exitCode int
	cmd := newRootCommand(defaults, &exitCode)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
	os.Exit(exitCode)
}

func newRootCommand(defaults env, exitCode *int) *cobra.Command {
	cfg := sorter.Config{
		InputDir:  defaults.InputDir,
		OutputDir: defaults.OutputDir,
		Threshold: defaults.Threshold,
		Workers:   defaults.Workers,
		Parallel:  defaults.Parallel,
		Preview:   defaults.Preview,
		Languages: defaults.Languages,
		Collision: sorter.CollisionPolicy(defaults.OnCollision),
		Timeout:   defaults.OCRTimeout,
	}
	tessdata := defaults.Tessdata
	logFile := defaults.LogFile
	collision := string(cfg.Collision)

	cmd := &cobra.Command{
		Use:          "textsort --input DIR --output DIR [flags]",
		Short:        "textsort moves images containing text out of a directory, judged by OCR text density.",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg.Collision = sorter.CollisionPolicy(collision)
			outcome, err := run(cmd.Context(), cfg, tessdata, logFile)
			if err != nil {
				return err
			}
			if outcome.Status == sorter.StatusCancelled {
				*exitCode = 2
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.InputDir, "input", cfg.InputDir, "directory scanned for images (non-recursive)")
	flags.StringVar(&cfg.OutputDir, "output", cfg.OutputDir, "directory receiving images classified as containing text")
	flags.Float64Var(&cfg.Threshold, "threshold", cfg.Threshold, "text density threshold: non-whitespace characters per pixel, in (0,1)")
	flags.StringVar(&tessdata, "tessdata", tessdata, "override for the Tesseract trained-data directory")
	flags.StringSliceVar(&cfg.Languages, "languages", cfg.Languages, "OCR language hints")
	flags.BoolVar(&cfg.Preview, "preview", cfg.Preview, "announce each image before classifying it")
	flags.StringVar(&logFile, "log-file", logFile, "append run log to this file (empty disables logging)")
	flags.BoolVar(&cfg.Parallel, "parallel", cfg.Parallel, "classify with a pool of workers instead of one")
	flags.IntVar(&cfg.Workers, "workers", cfg.Workers, "worker pool size (0 = based on CPU count)")
	flags.StringVar(&collision, "on-collision", collision, "destination name collision behavior: overwrite or error")
	flags.DurationVar(&cfg.Timeout, "ocr-timeout", cfg.Timeout, "per-image OCR deadline (0 disables)")

	return cmd
}

func run(ctx context.Context, cfg sorter.Config, tessdata, logFile string) (sorter.Outcome, error) {
	engine := ocr.DefaultEngine()
	if tessdata != "" {
		e, err := tesseract.NewEngineWithTessdata(tessdata)
		if err != nil {
			return sorter.Outcome{Status: sorter.StatusFailed}, err
		}
		engine = e
	}

	var log observability.Logger = observability.NopLogger{}
	if logFile != "" {
		fileLog, sync, err := zaplog.NewFile(logFile)
		if err != nil {
			return sorter.Outcome{Status: sorter.StatusFailed}, err
		}
		defer sync()
		log = fileLog
	}

	r := sorter.New(cfg, engine,
		sorter.WithSink(consoleSink{}),
		sorter.WithLogger(log))

	// First interrupt stops cooperatively: in-flight OCR finishes, queued
	// items are abandoned. A second interrupt kills the process as usual.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigs)
	go func() {
		<-sigs
		fmt.Fprintln(os.Stderr, "stopping after in-flight images...")
		signal.Stop(sigs)
		r.Stop()
	}()

	return r.Run(ctx)
}

// consoleSink prints events as plain lines. Runs line-buffered and never
// blocks on the pool.
type consoleSink struct{}

func (consoleSink) ProgressPercent(pct int)       {}
func (consoleSink) ProgressCount(done, total int) { fmt.Printf("[%d/%d]\n", done, total) }
func (consoleSink) StatusText(msg string)         { fmt.Println(msg) }
func (consoleSink) Preview(path string)           { fmt.Println("preview:", path) }
