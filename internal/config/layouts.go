package config

import (
	"fmt"

	"github.com/imishinist/congstat/internal/extract"
	"github.com/imishinist/congstat/internal/layout"
	"github.com/imishinist/congstat/internal/parser"
)

// Registry builds the layout registry: built-ins, then the layouts file,
// then the flavor_layouts bindings. Every flavor and extra layout must
// resolve.
func (c *Config) Registry(tok *extract.Tokenizer) (*layout.Registry, error) {
	reg, err := layout.NewRegistry(tok)
	if err != nil {
		return nil, err
	}

	if c.LayoutsFile != "" {
		f, err := parser.ParseLayoutsFile(c.LayoutsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load layouts file: %w", err)
		}
		if err := reg.Merge(f); err != nil {
			return nil, fmt.Errorf("layouts file %s: %w", c.LayoutsFile, err)
		}
	}

	for flavor, name := range c.FlavorLayouts {
		if err := reg.SetFlavor(flavor, name); err != nil {
			return nil, err
		}
	}

	for _, flavor := range c.Flavors {
		if _, err := reg.ForFlavor(flavor); err != nil {
			return nil, fmt.Errorf("flavor %s: %w", flavor, err)
		}
	}
	for _, name := range c.ExtraLayouts {
		if _, err := reg.Get(name); err != nil {
			return nil, fmt.Errorf("extra layouts: %w", err)
		}
	}
	return reg, nil
}
