package query

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atanasg/ProteoVisualizer/errors"
)

func TestParse(t *testing.T) {
	text := "P04637;P02340\n\n  P38398  \nQ00987; P04637 ;Q00987\r\n"

	q, err := Parse(text, "")
	require.NoError(t, err)

	assert.Equal(t, []string{"P04637;P02340", "P38398", "Q00987; P04637 ;Q00987"}, q.Mapping.Groups())
	assert.Equal(t, []string{"Q00987", "P04637"}, q.Mapping.ProteinsOf("Q00987; P04637 ;Q00987"))
	assert.Equal(t, []string{"P04637;P02340", "Q00987; P04637 ;Q00987"}, q.Mapping.GroupsOf("P04637"))
	assert.Equal(t, []string{"P04637", "P02340", "P38398", "Q00987"}, q.Proteins())
	assert.Equal(t, "P04637\nP02340\nP38398\nQ00987", q.Terms())
}

func TestParse_Delimiter(t *testing.T) {
	q, err := Parse("A,B\nC", ",")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, q.Mapping.ProteinsOf("A,B"))
	assert.Equal(t, 1, q.Mapping.Memberships("C"))
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		target error
	}{
		{name: "empty", text: "", target: errors.ErrEmptyQuery},
		{name: "blank lines", text: "\n  \n\t\n", target: errors.ErrEmptyQuery},
		{name: "delimiters only", text: "A\n;;\n", target: errors.ErrParsingFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text, "")
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
			assert.True(t, errors.IsInvalid(err))
		})
	}
}

func TestParse_LongLine(t *testing.T) {
	proteins := make([]string, 20000)
	for i := range proteins {
		proteins[i] = "P" + strings.Repeat("0", 5)
	}
	q, err := Parse(strings.Join(proteins, ";"), "")
	require.NoError(t, err)
	assert.Len(t, q.Proteins(), 1)
}
