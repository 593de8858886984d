package pgroup

import (
	"math"
	"sort"
	"strings"

	"github.com/atanasg/ProteoVisualizer/errors"
	"github.com/atanasg/ProteoVisualizer/network"
	"github.com/atanasg/ProteoVisualizer/vocabulary"
)

// Synthesizer writes a group node's attributes from its members.
type Synthesizer struct {
	policies        *vocabulary.Registry
	separator       string
	queryTermColumn string
}

// SynthesizerOption configures a Synthesizer.
type SynthesizerOption func(*Synthesizer)

// WithSeparator sets the concatenation separator.
func WithSeparator(sep string) SynthesizerOption {
	return func(s *Synthesizer) { s.separator = sep }
}

// WithQueryTermColumn sets the column receiving the group identifier.
func WithQueryTermColumn(column string) SynthesizerOption {
	return func(s *Synthesizer) { s.queryTermColumn = column }
}

// NewSynthesizer creates a Synthesizer. A nil registry means vocabulary.DefaultRegistry.
func NewSynthesizer(policies *vocabulary.Registry, opts ...SynthesizerOption) *Synthesizer {
	if policies == nil {
		policies = vocabulary.DefaultRegistry()
	}
	s := &Synthesizer{
		policies:        policies,
		separator:       vocabulary.ConcatSeparator,
		queryTermColumn: vocabulary.QueryTerm,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Synthesize writes the group node's row in table. Columns missing from the table are
// skipped and reported.
func (s *Synthesizer) Synthesize(table network.Table, groupID string, groupNode, representative network.SUID, members []network.SUID) ([]Warning, error) {
	var warns []Warning
	set := func(column string, v any) error {
		if err := table.Set(groupNode, column, v); err != nil {
			return errors.Wrap(err, "Synthesizer", "Synthesize", "group attribute write")
		}
		return nil
	}
	// usable reports whether column exists and, when want is given, has that type.
	usable := func(column string, want ...network.ColumnType) bool {
		col, ok := table.Column(column)
		if !ok {
			warns = append(warns, Warning{Kind: WarnMissingColumn, Subject: column})
			return false
		}
		if len(want) > 0 && col.Type != want[0] {
			warns = append(warns, Warning{Kind: WarnMissingColumn, Subject: column, Detail: "column is " + col.Type.String()})
			return false
		}
		return true
	}

	if err := network.CreateColumnIfNeeded(table, s.queryTermColumn, network.StringColumn, nil); err != nil {
		return nil, errors.Wrap(err, "Synthesizer", "Synthesize", "query term column setup")
	}
	if err := network.CreateColumnIfNeeded(table, vocabulary.UseForAnalysis, network.BoolColumn, false); err != nil {
		return nil, errors.Wrap(err, "Synthesizer", "Synthesize", "analysis column setup")
	}
	if err := set(s.queryTermColumn, groupID); err != nil {
		return nil, err
	}
	if err := set(vocabulary.UseForAnalysis, true); err != nil {
		return nil, err
	}

	for _, column := range s.policies.Columns(vocabulary.PolicyCopy) {
		if !usable(column) {
			continue
		}
		v, ok := table.Get(representative, column)
		if !ok {
			continue
		}
		if err := set(column, v); err != nil {
			return nil, err
		}
	}

	for _, column := range s.policies.Columns(vocabulary.PolicyConcat) {
		if !usable(column, network.StringColumn) {
			continue
		}
		if err := set(column, s.concat(table, column, members)); err != nil {
			return nil, err
		}
	}

	for _, column := range s.policies.Columns(vocabulary.PolicyUnion) {
		if !usable(column, network.StringListColumn) {
			continue
		}
		if err := set(column, union(table, column, members)); err != nil {
			return nil, err
		}
	}

	for _, column := range s.averageColumns(table, &warns) {
		mean, ok := average(table, column, members)
		if !ok {
			warns = append(warns, Warning{Kind: WarnNoContributors, Subject: column, Detail: groupID})
		}
		if err := set(column, mean); err != nil {
			return nil, err
		}
	}

	return warns, nil
}

// averageColumns lists explicitly registered number columns followed by the number
// columns of registered namespaces.
func (s *Synthesizer) averageColumns(table network.Table, warns *[]Warning) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, column := range s.policies.Columns(vocabulary.PolicyAverage) {
		col, ok := table.Column(column)
		if !ok || col.Type != network.NumberColumn {
			*warns = append(*warns, Warning{Kind: WarnMissingColumn, Subject: column})
			continue
		}
		seen[column] = struct{}{}
		out = append(out, column)
	}
	for _, ns := range s.policies.Namespaces(vocabulary.PolicyAverage) {
		for _, col := range table.ColumnsInNamespace(ns) {
			if col.Type != network.NumberColumn {
				continue
			}
			if p, ok := s.policies.Lookup(col.Name); ok && p.Policy != vocabulary.PolicyAverage {
				continue
			}
			if _, dup := seen[col.Name]; dup {
				continue
			}
			seen[col.Name] = struct{}{}
			out = append(out, col.Name)
		}
	}
	return out
}

func (s *Synthesizer) concat(table network.Table, column string, members []network.SUID) string {
	var parts []string
	for _, m := range members {
		if v, ok := network.GetString(table, m, column); ok {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, s.separator)
}

func union(table network.Table, column string, members []network.SUID) []string {
	set := make(map[string]struct{})
	for _, m := range members {
		values, _ := network.GetStringList(table, m, column)
		for _, v := range values {
			set[v] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// average returns the mean over members holding a value, or NaN and false when none do.
func average(table network.Table, column string, members []network.SUID) (float64, bool) {
	var sum float64
	count := 0
	for _, m := range members {
		if v, ok := network.GetNumber(table, m, column); ok {
			sum += v
			count++
		}
	}
	if count == 0 {
		return math.NaN(), false
	}
	return sum / float64(count), true
}
