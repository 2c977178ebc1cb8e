package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Table formats rows into aligned columns with a dashed header rule.
type Table struct {
	headers   []string
	rows      [][]string
	padding   int
	maxWidths map[int]int  // Maximum width per column index (0 = no limit)
	right     map[int]bool // Right-aligned columns
}

// NewTable creates a new table with the given headers.
func NewTable(headers ...string) *Table {
	return &Table{
		headers:   headers,
		padding:   2,
		maxWidths: make(map[int]int),
		right:     make(map[int]bool),
	}
}

// SetColumnMaxWidth wraps a column's text at word boundaries.
func (t *Table) SetColumnMaxWidth(col, width int) {
	t.maxWidths[col] = width
}

// AlignRight right-aligns the given columns, for numbers.
func (t *Table) AlignRight(cols ...int) {
	for _, c := range cols {
		t.right[c] = true
	}
}

// AddRow adds a row, padded or truncated to the header count.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.headers))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

// Render formats and returns the table as a string.
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}

	wrapped := make([][][]string, len(t.rows))
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = lipgloss.Width(h)
	}
	for r, row := range t.rows {
		wrapped[r] = make([][]string, len(row))
		for c, cell := range row {
			lines := wrapText(cell, t.maxWidths[c])
			wrapped[r][c] = lines
			for _, line := range lines {
				widths[c] = max(widths[c], lipgloss.Width(line))
			}
		}
	}

	var b strings.Builder
	gap := strings.Repeat(" ", t.padding)
	writeLine := func(cells []string) {
		parts := make([]string, len(cells))
		for i, cell := range cells {
			parts[i] = t.pad(cell, widths[i], i)
		}
		b.WriteString(strings.TrimRight(strings.Join(parts, gap), " "))
		b.WriteString("\n")
	}

	writeLine(t.headers)
	rule := make([]string, len(widths))
	for i, w := range widths {
		rule[i] = strings.Repeat("-", w)
	}
	writeLine(rule)

	for _, row := range wrapped {
		height := 1
		for _, cell := range row {
			height = max(height, len(cell))
		}
		for line := range height {
			cells := make([]string, len(row))
			for c, cell := range row {
				if line < len(cell) {
					cells[c] = cell[line]
				}
			}
			writeLine(cells)
		}
	}
	return b.String()
}

func (t *Table) pad(s string, width, col int) string {
	n := width - lipgloss.Width(s)
	if n <= 0 {
		return s
	}
	if t.right[col] {
		return strings.Repeat(" ", n) + s
	}
	return s + strings.Repeat(" ", n)
}

// wrapText wraps text to width at word boundaries, splitting words that
// are longer than width. A width of 0 disables wrapping.
func wrapText(text string, width int) []string {
	if width <= 0 || len(text) <= width {
		return []string{text}
	}

	var lines []string
	current := ""
	for _, word := range strings.Fields(text) {
		for len(word) > width {
			if current != "" {
				lines = append(lines, current)
				current = ""
			}
			lines = append(lines, word[:width])
			word = word[width:]
		}
		switch {
		case current == "":
			current = word
		case len(current)+1+len(word) <= width:
			current += " " + word
		default:
			lines = append(lines, current)
			current = word
		}
	}
	if current != "" {
		lines = append(lines, current)
	}
	if len(lines) == 0 {
		return []string{text}
	}
	return lines
}
