package ui

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// KeyValueBlock
// ---------------------------------------------------------------------------

func TestKeyValueBlock(t *testing.T) {
	out := KeyValueBlock("Early/late bird", [][2]string{
		{"Locked", "1,000 MDT"},
		{"Period", "6 months"},
		{"Unlocks", "August 5, 2018"},
	})
	for _, s := range []string{"Early/late bird", "Locked", "1,000 MDT", "6 months", "August 5, 2018"} {
		assert.Contains(t, out, s)
	}
	assert.Less(t, strings.Index(out, "Locked"), strings.Index(out, "Period"))
	assert.Less(t, strings.Index(out, "Period"), strings.Index(out, "Unlocks"))

	// Rounded border corners.
	assert.Contains(t, out, "╭")
	assert.Contains(t, out, "╰")
}

func TestKeyValueBlockEdgeCases(t *testing.T) {
	untitled := KeyValueBlock("", [][2]string{{"Secrets", "not set"}})
	assert.Contains(t, untitled, "Secrets")
	assert.Contains(t, untitled, "not set")

	empty := KeyValueBlock("Nothing locked", nil)
	assert.Contains(t, empty, "Nothing locked")
}

// ---------------------------------------------------------------------------
// Table
// ---------------------------------------------------------------------------

func lockupTable() *Table {
	tbl := NewTable([]Column{
		{Title: "Period", Width: 10},
		{Title: "Bonus", Width: 6, Right: true},
		{Title: "You receive", Width: 14, Right: true},
	})
	tbl.AddRow(Row{"3 months", "10%", "1,100 MDT"})
	tbl.AddRow(Row{"6 months", "30%", "1,300 MDT"})
	tbl.AddRow(Row{"1 year", "66%", "1,660 MDT"})
	return tbl
}

func TestNewTable(t *testing.T) {
	tbl := NewTable([]Column{{Title: "Name", Width: 10}, {Title: "Address", Width: 42}})
	assert.Len(t, tbl.Columns, 2)
	assert.Empty(t, tbl.Rows)
	assert.Equal(t, -1, tbl.SelIdx)
}

func TestTableRender(t *testing.T) {
	tbl := lockupTable()
	require.Len(t, tbl.Rows, 3)

	out := tbl.Render()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 5, "header, divider and three rows")

	assert.Contains(t, lines[0], "Period")
	assert.Contains(t, lines[0], "You receive")
	assert.Contains(t, lines[1], "----------")
	assert.Contains(t, lines[2], "1,100 MDT")
	assert.Contains(t, lines[3], "1,300 MDT")
	assert.Contains(t, lines[4], "1,660 MDT")
}

func TestTableRenderSelectedRow(t *testing.T) {
	tbl := lockupTable()
	tbl.SelIdx = 1
	out := tbl.Render()
	assert.Contains(t, out, "3 months")
	assert.Contains(t, out, "6 months")
}

func TestTableRenderShortRow(t *testing.T) {
	tbl := NewTable([]Column{
		{Title: "Endpoint", Width: 20},
		{Title: "Latency", Width: 8},
		{Title: "Status", Width: 6},
	})
	tbl.AddRow(Row{"http://localhost:8545"})
	// Missing cells render as padding.
	assert.Contains(t, tbl.Render(), "http://localhost:854")
}

// ---------------------------------------------------------------------------
// pad
// ---------------------------------------------------------------------------

func TestPad(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		right bool
		want  string
	}{
		{"left", "hi", 5, false, "hi   "},
		{"right", "625", 6, true, "   625"},
		{"exact", "hello", 5, false, "hello"},
		{"truncates", "toolongstring", 4, false, "tool"},
		{"counts runes", "0x12…ab", 8, false, "0x12…ab "},
		{"empty", "", 3, true, "   "},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, pad(tc.in, tc.width, tc.right))
		})
	}
}
