// Package progress renders a terminal progress bar for long-running
// operations, with a muted variant for log-only environments.
package progress

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
)

const defaultWidth = 80

// Bar is a single-line terminal progress bar with a descriptive label.
// The label occupies a quarter of the line and is truncated by the middle
// when it does not fit.
type Bar struct {
	mu      sync.Mutex
	out     io.Writer
	total   int
	current int
	label   string
	width   int
}

// New creates a bar over total steps writing to out.
func New(out io.Writer, total int, label string) *Bar {
	if total < 1 {
		total = 1
	}
	return &Bar{
		out:   out,
		total: total,
		label: label,
		width: defaultWidth,
	}
}

// Null creates a muted bar that renders nothing; the label is logged once
// instead, so log files are not polluted with control characters.
func Null(logger *slog.Logger, total int, label string) *Bar {
	if logger != nil && label != "" {
		logger.Info(label)
	}
	bar := New(io.Discard, total, label)
	return bar
}

// Add advances the bar by n steps and redraws it.
func (b *Bar) Add(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.current += n
	if b.current > b.total {
		b.current = b.total
	}
	b.render()
}

// Set moves the bar to an absolute position and redraws it.
func (b *Bar) Set(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.current = n
	if b.current > b.total {
		b.current = b.total
	}
	b.render()
}

// Finish completes the bar and terminates the line.
func (b *Bar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.current = b.total
	b.render()
	fmt.Fprintln(b.out)
}

// render redraws the bar in place. Must be called with the lock held.
func (b *Bar) render() {
	labelWidth := b.width / 4
	label := shrinkLabel(b.label, labelWidth)

	barWidth := b.width - labelWidth - 12
	if barWidth < 10 {
		barWidth = 10
	}
	filled := b.current * barWidth / b.total

	fmt.Fprintf(b.out, "\r%-*s [%s%s] %d/%d",
		labelWidth, label,
		strings.Repeat("#", filled),
		strings.Repeat(" ", barWidth-filled),
		b.current, b.total,
	)
}

// shrinkLabel truncates a label by the middle so it fits in width runes.
func shrinkLabel(label string, width int) string {
	if len(label) <= width || width < 5 {
		return label
	}
	half := width / 2
	return strings.TrimSpace(label[:half-2]) + "..." + strings.TrimSpace(label[len(label)-half+1:])
}
