package formatter

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/alexanderramin/azdo/internal/domain"
	"github.com/mattn/go-runewidth"
)

// Column widths of the fixed row prefix: id, type, state.
const (
	idColumn    = 10
	typeColumn  = 13
	stateColumn = 8

	indentUnit = "  "
	ellipsis   = "..."
)

// DefaultWidth is used when the terminal width cannot be determined.
const DefaultWidth = 120

// Widths are measured in terminal columns with East Asian ambiguous runes
// counted as narrow, independent of the caller's locale.
var cells = func() *runewidth.Condition {
	c := runewidth.NewCondition()
	c.EastAsianWidth = false
	return c
}()

// FormatRow renders a flattened row as one plain-text line of at most width
// columns: id, type, and state in fixed columns, two spaces of indent per
// level below the first, then the title. The title absorbs any shortfall,
// ending in "..." when cut, and disappears entirely when there is no room.
// The id column is never cut, so the id survives even at widths narrower
// than the id itself.
func FormatRow(row domain.FlatRow, width int) string {
	id := strconv.Itoa(row.ID)
	head := cells.FillRight(id, idColumn) + " " +
		cells.FillRight(singleLine(row.Type), typeColumn) + " " +
		cells.FillRight(singleLine(row.State), stateColumn)
	if row.Depth > 1 {
		head += strings.Repeat(indentUnit, row.Depth-1)
	}

	line := head + fitTitle(singleLine(row.Title), width-cells.StringWidth(head))

	limit := width
	if w := cells.StringWidth(id); limit < w {
		limit = w
	}
	if cells.StringWidth(line) > limit {
		line = cells.Truncate(line, limit, "")
	}
	return line
}

// FormatRows formats every row at the same width.
func FormatRows(rows []domain.FlatRow, width int) []string {
	lines := make([]string, len(rows))
	for i, r := range rows {
		lines[i] = FormatRow(r, width)
	}
	return lines
}

func fitTitle(title string, budget int) string {
	if cells.StringWidth(title) <= budget {
		return title
	}
	if budget <= len(ellipsis) {
		return ""
	}
	return cells.Truncate(title, budget, ellipsis)
}

// singleLine replaces control characters so one row stays one line.
func singleLine(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
}

// RowID extracts the work-item id from a formatted row.
func RowID(line string) (int, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return 0, false
	}
	id, err := strconv.Atoi(fields[0])
	if err != nil {
		return 0, false
	}
	return id, true
}
