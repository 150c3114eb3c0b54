package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderTable_AlignsWideRunes(t *testing.T) {
	out := renderTable([]string{"city", "n"}, [][]string{{"東京", "3"}, {"Oslo", "12"}})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	assert.Equal(t, []string{
		"city  n",
		"東京  3",
		"Oslo  12",
	}, lines)
}

func TestRenderTable_TruncatesLongCells(t *testing.T) {
	long := strings.Repeat("x", 50)
	out := renderTable([]string{"v"}, [][]string{{long}})
	assert.Contains(t, out, strings.Repeat("x", maxCellWidth-1)+"…")
	assert.NotContains(t, out, long)
}
