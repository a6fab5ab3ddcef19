// Package layout holds the per-log-format field tables and checks them when
// the configuration is loaded, so a layout that no longer fits its log fails
// before any file is read.
package layout

import (
	"fmt"
	"sort"

	"github.com/imishinist/congstat/internal/extract"
	"github.com/imishinist/congstat/internal/models"
)

// Layout names shipped with the tool.
const (
	Legacy     = "legacy"
	CwndUpdate = "cwnd-update"
	Inflight   = "inflight"
	SentBDP    = "sent-bdp"

	// window series for comparing relay roles, not summarizable
	PackageWindow = "package-window"
	DeliverWindow = "deliver-window"
)

// LegacyFlavor is the congestion-control flavor that logs with the package
// window scheme instead of a congestion window.
const LegacyFlavor = "legacy"

func builtinLayouts() []models.Layout {
	return []models.Layout{
		{
			Name:  Legacy,
			Event: "SENT",
			Fields: []models.Field{
				{Name: models.FieldTime, Index: 0},
				{Name: models.FieldPackageWindow, Index: 3},
				{Name: models.FieldPacketCount, Index: 4},
			},
			Sample: "+1500000000.0ns[exit1: Circuit 1] SENT cell. Package window now 499 packet_counter: 1",
		},
		{
			Name: CwndUpdate,
			Fields: []models.Field{
				{Name: models.FieldTime, Index: 0},
				{Name: models.FieldCwnd, Index: 3},
				{Name: models.FieldCwndUpdate, Index: 5},
				{Name: models.FieldPacketCount, Index: 6},
			},
			Sample: "+1500000000.0ns[exit1: Circuit 1] Package window: cwnd 500 update 2 cwnd 502 packet_counter: 50",
		},
		{
			Name: Inflight,
			Fields: []models.Field{
				{Name: models.FieldTime, Index: 0},
				{Name: models.FieldCwnd, Index: 3},
				{Name: models.FieldInflight, Index: 4},
				{Name: models.FieldPacketCount, Index: 8},
			},
			Sample: "+1500000000.0ns[exit1: Circuit 1] NOLA: Current Cwnd: 500 inflight: 12 dif: 488 used bdp: 312 new cwnd: 324 packet_counter: 50",
		},
		{
			Name:  SentBDP,
			Event: "SENT",
			Fields: []models.Field{
				{Name: models.FieldTime, Index: 0},
				{Name: models.FieldCwnd, Index: 3},
				{Name: models.FieldInflight, Index: 4},
				{Name: models.FieldBDP, Index: 6},
				{Name: models.FieldPacketCount, Index: 7},
			},
			Sample: "+1500000000.0ns[exit1: Circuit 1] SENT cell. cwnd: 500 inflight: 12 dif: 488 bdp: 312 packet_counter: 50",
		},
		{
			Name:  PackageWindow,
			Event: "Package window",
			Fields: []models.Field{
				{Name: models.FieldTime, Index: 0},
				{Name: models.FieldPackageWindow, Index: 3},
			},
			Sample: "+1500000000.0ns[exit1: Circuit 1] Received SENDME cell. Package window now 900",
		},
		{
			Name:  DeliverWindow,
			Event: "Deliver window",
			Fields: []models.Field{
				{Name: models.FieldTime, Index: 0},
				{Name: models.FieldDeliverWindow, Index: 3},
			},
			Sample: "+1500000000.0ns[proxy1: Circuit 1] Send SENDME cell Increased Deliver window now: 100",
		},
	}
}

// Validate checks a layout against the tokenizer that will read its lines.
func Validate(l *models.Layout, tok *extract.Tokenizer) error {
	if l.Name == "" {
		return fmt.Errorf("layout name is required")
	}
	if len(l.Fields) == 0 {
		return fmt.Errorf("layout %s: at least one field is required", l.Name)
	}

	seen := make(map[string]bool, len(l.Fields))
	for _, f := range l.Fields {
		if f.Name == "" {
			return fmt.Errorf("layout %s: field name is required", l.Name)
		}
		if seen[f.Name] {
			return fmt.Errorf("layout %s: duplicate field %s", l.Name, f.Name)
		}
		if f.Index < 0 {
			return fmt.Errorf("layout %s: field %s has negative index %d", l.Name, f.Name, f.Index)
		}
		seen[f.Name] = true
	}
	if !seen[models.FieldTime] {
		return fmt.Errorf("layout %s: missing required field %s", l.Name, models.FieldTime)
	}
	if len(l.Fields) < 2 {
		return fmt.Errorf("layout %s: needs a field besides %s", l.Name, models.FieldTime)
	}

	if l.MinTokens < 0 {
		return fmt.Errorf("layout %s: min_tokens must not be negative", l.Name)
	}
	if l.MinTokens != 0 && l.MinTokens < l.MaxIndex()+1 {
		return fmt.Errorf("layout %s: min_tokens %d is below highest field index %d",
			l.Name, l.MinTokens, l.MaxIndex())
	}

	if l.Sample != "" {
		if n := tok.Count(l.Sample); n < l.NeededTokens() {
			return fmt.Errorf("layout %s: sample line has %d numeric tokens, layout needs %d",
				l.Name, n, l.NeededTokens())
		}
	}
	return nil
}

// Registry maps layout names to layouts and flavors to layout names.
type Registry struct {
	tok     *extract.Tokenizer
	layouts map[string]*models.Layout
	flavors map[string]string
}

// NewRegistry returns a registry holding the built-in layouts. Flavor
// legacy maps to the legacy layout, every other flavor to sent-bdp.
func NewRegistry(tok *extract.Tokenizer) (*Registry, error) {
	r := &Registry{
		tok:     tok,
		layouts: make(map[string]*models.Layout),
		flavors: map[string]string{LegacyFlavor: Legacy},
	}
	for _, l := range builtinLayouts() {
		if err := r.Add(l); err != nil {
			return nil, fmt.Errorf("built-in layouts: %w", err)
		}
	}
	return r, nil
}

// Add validates and registers a layout, replacing one with the same name.
func (r *Registry) Add(l models.Layout) error {
	if err := Validate(&l, r.tok); err != nil {
		return err
	}
	r.layouts[l.Name] = &l
	return nil
}

// Get returns a layout by name.
func (r *Registry) Get(name string) (*models.Layout, error) {
	l, ok := r.layouts[name]
	if !ok {
		return nil, fmt.Errorf("unknown layout: %s (known: %v)", name, r.Names())
	}
	return l, nil
}

// Names returns the registered layout names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.layouts))
	for name := range r.layouts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetFlavor binds a congestion-control flavor to a registered layout.
func (r *Registry) SetFlavor(flavor, name string) error {
	if _, err := r.Get(name); err != nil {
		return fmt.Errorf("flavor %s: %w", flavor, err)
	}
	r.flavors[flavor] = name
	return nil
}

// ForFlavor returns the layout used to read logs of a flavor.
func (r *Registry) ForFlavor(flavor string) (*models.Layout, error) {
	name, ok := r.flavors[flavor]
	if !ok {
		name = SentBDP
	}
	return r.Get(name)
}

// Merge adds the layouts and flavor bindings of a layouts file.
func (r *Registry) Merge(f *models.LayoutsFile) error {
	for _, l := range f.Layouts {
		if err := r.Add(l); err != nil {
			return err
		}
	}
	for flavor, name := range f.Flavors {
		if err := r.SetFlavor(flavor, name); err != nil {
			return err
		}
	}
	return nil
}
