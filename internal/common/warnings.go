package common

import "fmt"

// Warnings accumulates advisory and recoverable conditions raised during a
// run so they can be surfaced together at the end instead of being lost in
// the log stream.
type Warnings struct {
	items []string
}

// Addf records a formatted warning.
func (w *Warnings) Addf(format string, args ...any) {
	w.items = append(w.items, fmt.Sprintf(format, args...))
}

// Add records a warning.
func (w *Warnings) Add(msg string) {
	w.items = append(w.items, msg)
}

// Items returns the recorded warnings in order.
func (w *Warnings) Items() []string {
	return w.items
}

// Len returns the number of recorded warnings.
func (w *Warnings) Len() int {
	return len(w.items)
}
