package query

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/atanasg/ProteoVisualizer/errors"
	"github.com/atanasg/ProteoVisualizer/pgroup"
)

// DefaultDelimiter separates the proteins of one group.
const DefaultDelimiter = ";"

// Query is a parsed protein-group query.
type Query struct {
	Mapping *pgroup.Mapping
}

// Proteins lists every protein once, in order of first appearance.
func (q *Query) Proteins() []string { return q.Mapping.Proteins() }

// Terms returns the newline-joined protein list understood by the retrieval service.
func (q *Query) Terms() string {
	return strings.Join(q.Mapping.Proteins(), "\n")
}

// Parse reads one group per line, splitting proteins on delimiter. An empty delimiter
// means DefaultDelimiter. Blank lines are skipped; a query without any protein is
// rejected with errors.ErrEmptyQuery.
func Parse(text, delimiter string) (*Query, error) {
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}

	q := &Query{Mapping: pgroup.NewMapping()}

	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		group := strings.TrimSpace(scanner.Text())
		if group == "" {
			continue
		}

		var proteins []string
		for _, p := range strings.Split(group, delimiter) {
			if p = strings.TrimSpace(p); p != "" {
				proteins = append(proteins, p)
			}
		}
		if len(proteins) == 0 {
			return nil, errors.WrapInvalid(fmt.Errorf("%w: line %d has no protein", errors.ErrParsingFailed, line),
				"Query", "Parse", "line split")
		}

		q.Mapping.Add(group, proteins...)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.WrapInvalid(err, "Query", "Parse", "query scan")
	}
	if len(q.Mapping.Proteins()) == 0 {
		return nil, errors.WrapInvalid(errors.ErrEmptyQuery, "Query", "Parse", "protein count check")
	}
	return q, nil
}
