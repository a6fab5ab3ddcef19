// Package analysis drives a batch: it reads each planned log file, extracts
// one group per layout, relay role and circuit, and summarizes the resulting
// table.
package analysis

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/imishinist/congstat/internal/aggregate"
	"github.com/imishinist/congstat/internal/config"
	"github.com/imishinist/congstat/internal/extract"
	"github.com/imishinist/congstat/internal/logfile"
	"github.com/imishinist/congstat/internal/models"
)

type Options struct {
	Circuits     int
	Relays       []string
	EntityFormat string
	Policy       aggregate.Policy
	Jobs         int
}

// OptionsFromConfig copies the session settings out of cfg.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	policy, err := aggregate.ParsePolicy(cfg.OnError)
	if err != nil {
		return Options{}, err
	}
	return Options{
		Circuits:     cfg.Circuits,
		Relays:       cfg.RelayRoles(),
		EntityFormat: cfg.EntityFormat,
		Policy:       policy,
		Jobs:         cfg.Jobs,
	}, nil
}

// Result is the outcome of a batch.
type Result struct {
	Table     *aggregate.Table
	Summaries []models.SeriesSummary
	Skipped   []models.Skipped
}

type Session struct {
	opts      Options
	extractor *extract.Extractor
}

func NewSession(opts Options, extractor *extract.Extractor) (*Session, error) {
	if opts.Circuits <= 0 {
		return nil, fmt.Errorf("circuits must be positive, got %d", opts.Circuits)
	}
	if opts.Jobs <= 0 {
		opts.Jobs = 1
	}
	if len(opts.Relays) == 0 {
		opts.Relays = []string{""}
	}
	if opts.Policy == "" {
		opts.Policy = aggregate.PolicyFail
	}
	if extractor == nil {
		extractor = extract.NewExtractor(nil)
	}
	return &Session{opts: opts, extractor: extractor}, nil
}

type jobResult struct {
	table   *aggregate.Table
	skipped []models.Skipped
}

// Run processes jobs, up to Options.Jobs at a time. Each job fills its own
// table; the tables are merged in job order so the result does not depend
// on scheduling.
func (s *Session) Run(ctx context.Context, jobs []Job) (*Result, error) {
	results := make([]jobResult, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Jobs)
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			res, err := s.runJob(ctx, job)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	table := aggregate.NewTable()
	var skipped []models.Skipped
	for _, res := range results {
		if err := table.Merge(res.table); err != nil {
			return nil, err
		}
		skipped = append(skipped, res.skipped...)
	}

	summaries, groupSkipped, err := table.Summaries(s.opts.Policy)
	if err != nil {
		return nil, err
	}
	for _, sk := range groupSkipped {
		logSkipped(sk)
	}
	skipped = append(skipped, groupSkipped...)

	log.WithFields(log.Fields{
		"jobs":      len(jobs),
		"groups":    len(table.Groups()),
		"records":   table.Len(),
		"summaries": len(summaries),
		"skipped":   len(skipped),
	}).Info("analysis finished")

	return &Result{Table: table, Summaries: summaries, Skipped: skipped}, nil
}

func (s *Session) runJob(ctx context.Context, job Job) (jobResult, error) {
	res := jobResult{table: aggregate.NewTable()}
	entry := log.WithFields(log.Fields{"flavor": job.Flavor, "run": job.Run, "path": job.Path})

	lines, err := logfile.Load(job.Path)
	if err != nil {
		if errors.Is(err, extract.ErrMissingFile) {
			err = &extract.MissingFileError{Path: job.Path, Flavor: job.Flavor, Run: job.Run}
		}
		if s.opts.Policy != aggregate.PolicySkip {
			return res, err
		}
		sk := models.Skipped{Tags: models.Tags{Flavor: job.Flavor, Run: job.Run}, Path: job.Path, Reason: err}
		logSkipped(sk)
		res.skipped = append(res.skipped, sk)
		return res, nil
	}
	entry.WithField("lines", len(lines)).Debug("log file loaded")

	for _, l := range job.Layouts {
		for _, relay := range s.opts.Relays {
			for c := 1; c <= s.opts.Circuits; c++ {
				if err := ctx.Err(); err != nil {
					return res, err
				}

				key := models.Tags{Flavor: job.Flavor, Run: job.Run, Circuit: c, Relay: relay, Layout: l.Name}
				preds := extract.Predicates(s.opts.EntityFormat, c, relay, l)
				records, err := s.extractor.ExtractGroup(job.Path, lines, preds, l, key)
				if err != nil {
					if s.opts.Policy != aggregate.PolicySkip {
						return res, fmt.Errorf("%s: %w", key, err)
					}
					sk := models.Skipped{Tags: key, Path: job.Path, Reason: err}
					logSkipped(sk)
					res.skipped = append(res.skipped, sk)
					continue
				}

				if err := res.table.Append(key, l, records...); err != nil {
					return res, err
				}
				entry.WithFields(log.Fields{
					"circuit": c,
					"relay":   relay,
					"layout":  l.Name,
					"records": len(records),
				}).Debug("group extracted")
			}
		}
	}
	return res, nil
}

func logSkipped(sk models.Skipped) {
	log.WithFields(log.Fields{
		"flavor":  sk.Tags.Flavor,
		"run":     sk.Tags.Run,
		"circuit": sk.Tags.Circuit,
		"relay":   sk.Tags.Relay,
		"layout":  sk.Tags.Layout,
		"path":    sk.Path,
	}).Warnf("skipped: %v", sk.Reason)
}
