// Package extract turns raw simulator log lines into numeric records.
//
// Fields are picked by position from the flat list of every numeric literal
// on a line, so a layout only holds for the log-producer version it was
// written against. A line with too few numbers is an error, never a default.
package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/imishinist/congstat/internal/models"
)

// NumericPattern matches an optionally signed integer or decimal literal.
const NumericPattern = `[-+]?\d*\.?\d+|[-+]?\d+`

// Line is one line of a log file. Number is 1-based.
type Line struct {
	Number int
	Text   string
}

// Tokenizer finds numeric literals in a line.
type Tokenizer struct {
	rx *regexp.Regexp
}

// NewTokenizer compiles the default numeric pattern.
func NewTokenizer() *Tokenizer {
	return &Tokenizer{rx: regexp.MustCompile(NumericPattern)}
}

// NewTokenizerPattern compiles a custom numeric pattern.
func NewTokenizerPattern(pattern string) (*Tokenizer, error) {
	rx, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid numeric pattern %q: %w", pattern, err)
	}
	return &Tokenizer{rx: rx}, nil
}

// Tokens returns every numeric literal in text, left to right.
func (t *Tokenizer) Tokens(text string) ([]float64, error) {
	matches := t.rx.FindAllString(text, -1)
	values := make([]float64, 0, len(matches))
	for _, m := range matches {
		v, err := strconv.ParseFloat(m, 64)
		if err != nil {
			return nil, fmt.Errorf("parse numeric token %q: %w", m, err)
		}
		values = append(values, v)
	}
	return values, nil
}

// Count returns the number of numeric literals in text.
func (t *Tokenizer) Count(text string) int {
	return len(t.rx.FindAllStringIndex(text, -1))
}

// SelectLines keeps the lines that contain every predicate, in order.
func SelectLines(lines []Line, predicates []string) []Line {
	selected := make([]Line, 0)
	for _, l := range lines {
		if containsAll(l.Text, predicates) {
			selected = append(selected, l)
		}
	}
	return selected
}

func containsAll(text string, predicates []string) bool {
	for _, p := range predicates {
		if p == "" {
			continue
		}
		if !strings.Contains(text, p) {
			return false
		}
	}
	return true
}

// Extractor builds records for one layout at a time.
type Extractor struct {
	tok *Tokenizer
}

func NewExtractor(tok *Tokenizer) *Extractor {
	if tok == nil {
		tok = NewTokenizer()
	}
	return &Extractor{tok: tok}
}

// BuildRecord extracts the layout's fields from one line. file is only used
// for error context.
func (e *Extractor) BuildRecord(file string, line Line, layout *models.Layout, tags models.Tags) (models.Record, error) {
	tokens, err := e.tok.Tokens(line.Text)
	if err != nil {
		return models.Record{}, fmt.Errorf("%s:%d: %w", file, line.Number, err)
	}

	need := layout.NeededTokens()
	if len(tokens) < need {
		return models.Record{}, &MalformedLineError{
			File:   file,
			Line:   line.Number,
			Text:   line.Text,
			Layout: layout.Name,
			Have:   len(tokens),
			Need:   need,
		}
	}

	values := make([]float64, len(layout.Fields))
	for i, f := range layout.Fields {
		values[i] = tokens[f.Index]
	}
	return models.Record{Tags: tags, Line: line.Number, Values: values}, nil
}

// ExtractGroup selects the lines matching predicates and builds a record
// for each. The first malformed line aborts the group.
func (e *Extractor) ExtractGroup(file string, lines []Line, predicates []string, layout *models.Layout, tags models.Tags) ([]models.Record, error) {
	selected := SelectLines(lines, predicates)
	records := make([]models.Record, 0, len(selected))
	for _, l := range selected {
		rec, err := e.BuildRecord(file, l, layout, tags)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, nil
}

// Predicates returns the required substrings for one circuit of a layout.
// entityFormat is a fmt format with a single %d verb, e.g. "Circuit %d]".
func Predicates(entityFormat string, circuit int, relay string, layout *models.Layout) []string {
	preds := []string{fmt.Sprintf(entityFormat, circuit)}
	if relay != "" {
		preds = append(preds, relay)
	}
	if layout.Event != "" {
		preds = append(preds, layout.Event)
	}
	return preds
}
