// Package aggregate collects extracted records into per-series groups and
// derives summaries and distributions from them.
package aggregate

import (
	"fmt"

	"github.com/imishinist/congstat/internal/models"
)

// Group is the ordered record sequence of one (flavor, run, circuit).
type Group struct {
	Key     models.Tags
	Layout  *models.Layout
	Records []models.Record
}

// Column returns the values of a named field in record order.
func (g *Group) Column(name string) ([]float64, bool) {
	pos, ok := g.Layout.Position(name)
	if !ok {
		return nil, false
	}
	col := make([]float64, len(g.Records))
	for i, r := range g.Records {
		col[i] = r.Values[pos]
	}
	return col, true
}

// Table holds groups in first-appearance order. It is append-only.
type Table struct {
	groups []*Group
	index  map[models.Tags]int
}

func NewTable() *Table {
	return &Table{index: make(map[models.Tags]int)}
}

// Append adds records to the group identified by key, after any records
// appended earlier. Appending no records still registers the group so an
// empty selection is reported when summaries are computed.
func (t *Table) Append(key models.Tags, layout *models.Layout, records ...models.Record) error {
	i, ok := t.index[key]
	if !ok {
		t.groups = append(t.groups, &Group{Key: key, Layout: layout})
		i = len(t.groups) - 1
		t.index[key] = i
	}
	g := t.groups[i]
	if g.Layout.Name != layout.Name {
		return fmt.Errorf("group %s: layout %s does not match earlier layout %s", key, layout.Name, g.Layout.Name)
	}
	g.Records = append(g.Records, records...)
	return nil
}

// Merge appends every group of other, in order.
func (t *Table) Merge(other *Table) error {
	for _, g := range other.groups {
		if err := t.Append(g.Key, g.Layout, g.Records...); err != nil {
			return err
		}
	}
	return nil
}

// Groups returns the groups in first-appearance order.
func (t *Table) Groups() []*Group {
	return t.groups
}

// Group looks up a group by key.
func (t *Table) Group(key models.Tags) (*Group, bool) {
	i, ok := t.index[key]
	if !ok {
		return nil, false
	}
	return t.groups[i], true
}

// Len returns the total number of records.
func (t *Table) Len() int {
	n := 0
	for _, g := range t.groups {
		n += len(g.Records)
	}
	return n
}

// Columns returns the union of field names over all groups, in the order
// they are first seen.
func (t *Table) Columns() []string {
	var cols []string
	seen := make(map[string]bool)
	for _, g := range t.groups {
		for _, name := range g.Layout.FieldNames() {
			if !seen[name] {
				seen[name] = true
				cols = append(cols, name)
			}
		}
	}
	return cols
}

// Flavors returns the flavors present in the table, in first-seen order.
func (t *Table) Flavors() []string {
	var flavors []string
	seen := make(map[string]bool)
	for _, g := range t.groups {
		if !seen[g.Key.Flavor] {
			seen[g.Key.Flavor] = true
			flavors = append(flavors, g.Key.Flavor)
		}
	}
	return flavors
}

// Values returns every value of a field across the groups of a flavor.
func (t *Table) Values(flavor, field string) []float64 {
	var values []float64
	for _, g := range t.groups {
		if g.Key.Flavor != flavor {
			continue
		}
		if col, ok := g.Column(field); ok {
			values = append(values, col...)
		}
	}
	return values
}
