package layout

import (
	"strings"
	"testing"

	"github.com/imishinist/congstat/internal/extract"
	"github.com/imishinist/congstat/internal/models"
)

func newRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry(extract.NewTokenizer())
	if err != nil {
		t.Fatalf("NewRegistry error: %v", err)
	}
	return r
}

func TestBuiltinLayoutsExtractTheirSample(t *testing.T) {
	r := newRegistry(t)
	ex := extract.NewExtractor(nil)

	tests := []struct {
		layout      string
		packetCount float64
	}{
		{Legacy, 1},
		{CwndUpdate, 50},
		{Inflight, 50},
		{SentBDP, 50},
	}

	for _, tt := range tests {
		l, err := r.Get(tt.layout)
		if err != nil {
			t.Fatalf("Get(%s) error: %v", tt.layout, err)
		}
		rec, err := ex.BuildRecord("sample", extract.Line{Number: 1, Text: l.Sample}, l, models.Tags{})
		if err != nil {
			t.Fatalf("%s: sample does not extract: %v", tt.layout, err)
		}
		tpos, _ := l.Position(models.FieldTime)
		cpos, _ := l.Position(models.FieldPacketCount)
		if rec.Values[tpos] != 1.5e9 {
			t.Errorf("%s: time = %v, want 1.5e9", tt.layout, rec.Values[tpos])
		}
		if rec.Values[cpos] != tt.packetCount {
			t.Errorf("%s: packet_count = %v, want %v", tt.layout, rec.Values[cpos], tt.packetCount)
		}
	}
}

func TestValidate(t *testing.T) {
	tok := extract.NewTokenizer()
	base := func() models.Layout {
		return models.Layout{
			Name: "custom",
			Fields: []models.Field{
				{Name: models.FieldTime, Index: 0},
				{Name: models.FieldPacketCount, Index: 4},
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(l *models.Layout)
		wantErr string
	}{
		{"valid", func(l *models.Layout) {}, ""},
		{"no name", func(l *models.Layout) { l.Name = "" }, "name is required"},
		{"no fields", func(l *models.Layout) { l.Fields = nil }, "at least one field"},
		{"duplicate", func(l *models.Layout) {
			l.Fields = append(l.Fields, models.Field{Name: models.FieldTime, Index: 2})
		}, "duplicate field"},
		{"negative index", func(l *models.Layout) { l.Fields[1].Index = -1 }, "negative index"},
		{"only time", func(l *models.Layout) { l.Fields = l.Fields[:1] }, "needs a field besides time"},
		{"missing time", func(l *models.Layout) { l.Fields = l.Fields[1:] }, "missing required field time"},
		{"min tokens too small", func(l *models.Layout) { l.MinTokens = 3 }, "below highest field index"},
		{"short sample", func(l *models.Layout) { l.Sample = "+10ns[exit1: Circuit 1]" }, "sample line has 3"},
		{"long enough sample", func(l *models.Layout) { l.Sample = "+10ns[exit1: Circuit 1] a 2 b 3" }, ""},
	}

	for _, tt := range tests {
		l := base()
		tt.mutate(&l)
		err := Validate(&l, tok)
		if tt.wantErr == "" {
			if err != nil {
				t.Errorf("%s: unexpected error: %v", tt.name, err)
			}
			continue
		}
		if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
			t.Errorf("%s: error = %v, want containing %q", tt.name, err, tt.wantErr)
		}
	}
}

func TestWindowLayouts(t *testing.T) {
	r := newRegistry(t)
	ex := extract.NewExtractor(nil)

	tests := []struct {
		layout string
		field  string
		value  float64
	}{
		{PackageWindow, models.FieldPackageWindow, 900},
		{DeliverWindow, models.FieldDeliverWindow, 100},
	}
	for _, tt := range tests {
		l, err := r.Get(tt.layout)
		if err != nil {
			t.Fatalf("Get(%s) error: %v", tt.layout, err)
		}
		if l.Summarizable() {
			t.Errorf("%s: window layout should not be summarizable", tt.layout)
		}
		rec, err := ex.BuildRecord("sample", extract.Line{Number: 1, Text: l.Sample}, l, models.Tags{})
		if err != nil {
			t.Fatalf("%s: sample does not extract: %v", tt.layout, err)
		}
		pos, _ := l.Position(tt.field)
		if rec.Values[pos] != tt.value {
			t.Errorf("%s: %s = %v, want %v", tt.layout, tt.field, rec.Values[pos], tt.value)
		}
	}

	sent, _ := r.Get(SentBDP)
	if !sent.Summarizable() {
		t.Error("sent-bdp should be summarizable")
	}
}

func TestForFlavor(t *testing.T) {
	r := newRegistry(t)

	l, err := r.ForFlavor(LegacyFlavor)
	if err != nil || l.Name != Legacy {
		t.Errorf("ForFlavor(legacy) = %v, %v", l, err)
	}
	l, err = r.ForFlavor("vegas")
	if err != nil || l.Name != SentBDP {
		t.Errorf("ForFlavor(vegas) = %v, %v", l, err)
	}

	if err := r.SetFlavor("nola", Inflight); err != nil {
		t.Fatalf("SetFlavor error: %v", err)
	}
	l, _ = r.ForFlavor("nola")
	if l.Name != Inflight {
		t.Errorf("ForFlavor(nola) after SetFlavor = %s", l.Name)
	}

	if err := r.SetFlavor("vegas", "nope"); err == nil {
		t.Error("expected error binding unknown layout")
	}
}

func TestMerge(t *testing.T) {
	r := newRegistry(t)
	f := &models.LayoutsFile{
		Layouts: []models.Layout{{
			Name:  "sent-v2",
			Event: "SENT",
			Fields: []models.Field{
				{Name: models.FieldTime, Index: 0},
				{Name: models.FieldPacketCount, Index: 9},
			},
		}},
		Flavors: map[string]string{"westwoodmin": "sent-v2"},
	}
	if err := r.Merge(f); err != nil {
		t.Fatalf("Merge error: %v", err)
	}
	l, _ := r.ForFlavor("westwoodmin")
	if l.Name != "sent-v2" || l.NeededTokens() != 10 {
		t.Errorf("merged layout = %+v", l)
	}
	if got := r.Names(); len(got) != 7 || got[0] != CwndUpdate {
		t.Errorf("Names = %v", got)
	}

	bad := &models.LayoutsFile{Layouts: []models.Layout{{Name: "broken", Fields: []models.Field{{Name: "time", Index: 0}}}}}
	if err := r.Merge(bad); err == nil {
		t.Error("expected error merging a layout with only a time field")
	}
}
