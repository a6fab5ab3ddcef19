package analysis

import (
	"github.com/imishinist/congstat/internal/config"
	"github.com/imishinist/congstat/internal/layout"
	"github.com/imishinist/congstat/internal/models"
)

// Job is one log file: a flavor and run with the layouts to read it with.
// Layouts[0] is the flavor's own layout.
type Job struct {
	Flavor  string
	Run     int
	Path    string
	Layouts []*models.Layout
}

// Plan lists a job for every configured flavor and every run 1..Runs, in
// that order. Extra layouts are read from every file after the flavor's.
func Plan(cfg *config.Config, reg *layout.Registry) ([]Job, error) {
	paths, err := cfg.Paths()
	if err != nil {
		return nil, err
	}

	jobs := make([]Job, 0, len(cfg.Flavors)*cfg.Runs)
	for _, flavor := range cfg.Flavors {
		l, err := reg.ForFlavor(flavor)
		if err != nil {
			return nil, err
		}
		layouts := []*models.Layout{l}
		for _, name := range cfg.ExtraLayouts {
			if name == l.Name {
				continue
			}
			extra, err := reg.Get(name)
			if err != nil {
				return nil, err
			}
			layouts = append(layouts, extra)
		}
		for run := 1; run <= cfg.Runs; run++ {
			path, err := paths.Input(flavor, run)
			if err != nil {
				return nil, err
			}
			jobs = append(jobs, Job{Flavor: flavor, Run: run, Path: path, Layouts: layouts})
		}
	}
	return jobs, nil
}
