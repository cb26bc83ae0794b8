// Package aggregate turns cost reports into ranked summaries and trend grids.
package aggregate

import "sync"

// PaletteSize is the number of distinct service colours.
const PaletteSize = 12

// ColorAssignment maps service names to palette slots in first-seen order.
// Slots wrap around after PaletteSize services. It is safe for concurrent use.
type ColorAssignment struct {
	mu    sync.Mutex
	slots map[string]int
	next  int
}

// NewColorAssignment returns an empty assignment.
func NewColorAssignment() *ColorAssignment {
	return &ColorAssignment{slots: make(map[string]int)}
}

// Index returns the slot for name, assigning the next free one on first use.
func (c *ColorAssignment) Index(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	if idx, ok := c.slots[name]; ok {
		return idx
	}
	idx := c.next % PaletteSize
	c.slots[name] = idx
	c.next++
	return idx
}

// Len returns the number of services seen.
func (c *ColorAssignment) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.slots)
}
