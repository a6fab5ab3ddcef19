package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"

	"github.com/imishinist/congstat/internal/analysis"
	"github.com/imishinist/congstat/internal/config"
	"github.com/imishinist/congstat/internal/extract"
)

// batch is a completed analysis with the settings it ran with.
type batch struct {
	cfg    *config.Config
	paths  *config.Paths
	result *analysis.Result
}

func runAnalysis(ctx context.Context) (*batch, error) {
	cfg := config.New()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	paths, err := cfg.Paths()
	if err != nil {
		return nil, err
	}

	tok, err := cfg.Tokenizer()
	if err != nil {
		return nil, err
	}
	reg, err := cfg.Registry(tok)
	if err != nil {
		return nil, err
	}
	jobs, err := analysis.Plan(cfg, reg)
	if err != nil {
		return nil, err
	}
	opts, err := analysis.OptionsFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	session, err := analysis.NewSession(opts, extract.NewExtractor(tok))
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"flavors":  cfg.Flavors,
		"runs":     cfg.Runs,
		"circuits": cfg.Circuits,
		"relays":   cfg.Relays,
		"jobs":     cfg.Jobs,
	}).Info("starting analysis")

	result, err := session.Run(ctx, jobs)
	if err != nil {
		return nil, err
	}
	return &batch{cfg: cfg, paths: paths, result: result}, nil
}

func createOutput(path string) (*os.File, error) {
	if err := ensureDir(path); err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", path, err)
	}
	return f, nil
}

// writeCSV creates path, fills it with write and reports the close error.
func writeCSV(path string, write func(f *os.File) error) error {
	f, err := createOutput(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}

func printSkipped(b *batch) {
	if len(b.result.Skipped) == 0 {
		return
	}
	fmt.Fprintf(os.Stderr, "Skipped %d item(s):\n", len(b.result.Skipped))
	for _, s := range b.result.Skipped {
		fmt.Fprintf(os.Stderr, "  %s: %v\n", s.Tags, s.Reason)
	}
}

func ensureDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}
	return nil
}
