// Package list provides a navigable two-line list for the TUI.
package list

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/tabula/internal/adapters/driving/tui/styles"
)

// Item is one list row: a title line and a muted detail line.
type Item struct {
	Title  string
	Detail string
	Badge  string
}

// List renders items with a movable selection.
type List struct {
	heading  string
	items    []Item
	selected int
	styles   *styles.Styles
	width    int
	height   int
}

// New creates an empty list.
func New(s *styles.Styles, heading string) *List {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &List{heading: heading, styles: s, width: 80, height: 20}
}

// SetItems replaces the items and resets the selection.
func (l *List) SetItems(items []Item) {
	l.items = items
	l.selected = 0
}

// Items returns the current items.
func (l *List) Items() []Item {
	return l.items
}

// Selected returns the selected index, or -1 when empty.
func (l *List) Selected() int {
	if len(l.items) == 0 {
		return -1
	}
	return l.selected
}

// MoveUp moves the selection up.
func (l *List) MoveUp() {
	if l.selected > 0 {
		l.selected--
	}
}

// MoveDown moves the selection down.
func (l *List) MoveDown() {
	if l.selected < len(l.items)-1 {
		l.selected++
	}
}

// SetDimensions sets the component dimensions.
func (l *List) SetDimensions(width, height int) {
	l.width = width
	l.height = height
}

// View renders the visible window of items.
func (l *List) View() string {
	if len(l.items) == 0 {
		return l.styles.Muted.Render("Nothing to show")
	}

	lines := []string{
		l.styles.Heading.Render(fmt.Sprintf("%s (%d)", l.heading, len(l.items))),
		"",
	}

	// Two lines per item.
	visible := max((l.height-2)/2, 1)
	start := 0
	if l.selected >= visible {
		start = l.selected - visible + 1
	}
	end := min(start+visible, len(l.items))

	for i := start; i < end; i++ {
		lines = append(lines, l.renderItem(i))
	}
	return strings.Join(lines, "\n")
}

func (l *List) renderItem(i int) string {
	item := l.items[i]
	title := truncate(item.Title, max(l.width-16, 10))

	var head string
	if i == l.selected {
		head = l.styles.Selected.Render("> " + title)
	} else {
		head = l.styles.Normal.Render("  " + title)
	}
	if item.Badge != "" {
		head += "  " + l.styles.Muted.Render(item.Badge)
	}
	return head + "\n" + l.styles.Muted.Render("    "+truncate(item.Detail, max(l.width-6, 20)))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
