package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderTable_PadsShortRows(t *testing.T) {
	out := renderTable(
		[]string{"NAME", "PRIORITY", "LAST SCAN"},
		[][]string{{"Dflix", "10", "never"}, {"Roarzone"}},
		[]columnAlignment{alignLeft, alignRight},
	)

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 6)
	assert.Contains(t, lines[1], "NAME")
	assert.Contains(t, lines[1], "LAST SCAN")
	assert.Contains(t, lines[3], "Dflix")
	assert.Contains(t, lines[3], "never")
	assert.Contains(t, lines[4], "Roarzone")
	assert.True(t, strings.HasPrefix(lines[0], "╭"))
}

func TestRenderTable_RightAlignsNumbers(t *testing.T) {
	out := renderTable(
		[]string{"NAME", "PRIORITY"},
		[][]string{{"a", "5"}, {"b", "100"}},
		[]columnAlignment{alignLeft, alignRight},
	)

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 6)
	assert.Contains(t, lines[3], "        5 │")
	assert.Contains(t, lines[4], "      100 │")
}

func TestRenderTable_NoHeaders(t *testing.T) {
	assert.Empty(t, renderTable(nil, [][]string{{"x"}}, nil))
}
