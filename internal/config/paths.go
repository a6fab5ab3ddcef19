package config

import (
	"bytes"
	"fmt"
	"path/filepath"
	"text/template"

	"github.com/imishinist/congstat/internal/layout"
	timeutils "github.com/imishinist/congstat/internal/time"
)

// PathVars is the data the file name templates are rendered with.
type PathVars struct {
	SimDuration string
	Flavor      string
	BDP         string
	Rate        int
	Burst       int
	Circuits    int
	OldCong     int
	Run         int
	RTT         int
	Kind        string
}

// Paths renders input and output file names.
type Paths struct {
	input     *template.Template
	legacy    *template.Template
	output    *template.Template
	inputDir  string
	outputDir string
	base      PathVars
}

// Paths compiles the configured templates.
func (c *Config) Paths() (*Paths, error) {
	d, err := c.Duration()
	if err != nil {
		return nil, err
	}

	p := &Paths{
		inputDir:  c.InputDir,
		outputDir: c.OutputDir,
		base: PathVars{
			SimDuration: timeutils.FormatSimDuration(d),
			BDP:         c.BDP,
			Rate:        c.Rate,
			Burst:       c.Burst,
			Circuits:    c.Circuits,
			RTT:         c.RTT,
		},
	}
	if p.input, err = parseTemplate("input_template", c.InputTemplate); err != nil {
		return nil, err
	}
	if p.legacy, err = parseTemplate("legacy_input_template", c.LegacyInputTemplate); err != nil {
		return nil, err
	}
	if p.output, err = parseTemplate("output_template", c.OutputTemplate); err != nil {
		return nil, err
	}
	return p, nil
}

func parseTemplate(name, text string) (*template.Template, error) {
	if text == "" {
		return nil, fmt.Errorf("%s is empty", name)
	}
	t, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", name, err)
	}
	// catch references to unknown fields now rather than per file
	if err := t.Execute(&bytes.Buffer{}, PathVars{}); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", name, err)
	}
	return t, nil
}

// Input returns the log file path of a flavor and run.
func (p *Paths) Input(flavor string, run int) (string, error) {
	vars := p.base
	vars.Flavor = flavor
	vars.Run = run

	t := p.input
	if flavor == layout.LegacyFlavor {
		t = p.legacy
		vars.OldCong = 1
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("render %s: %w", t.Name(), err)
	}
	return filepath.Join(p.inputDir, buf.String()), nil
}

// Output returns the path of an output file of the given kind, e.g.
// "summary", with ext appended.
func (p *Paths) Output(kind, ext string) (string, error) {
	vars := p.base
	vars.Kind = kind

	var buf bytes.Buffer
	if err := p.output.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("render %s: %w", p.output.Name(), err)
	}
	return filepath.Join(p.outputDir, buf.String()+ext), nil
}
