package app

// TabCount is the number of tabs in the application.
const TabCount = 3

// Navigation is the cursor state of the UI. Transitions return new values.
type Navigation struct {
	ActiveTab    TabID
	SelectedRow  int
	ScrollOffset int
}

// NextTab moves to the next tab, wrapping after the last one.
func (n Navigation) NextTab() Navigation {
	return Navigation{ActiveTab: TabID((int(n.ActiveTab) + 1) % TabCount)}
}

// PrevTab moves to the previous tab, wrapping before the first one.
func (n Navigation) PrevTab() Navigation {
	return Navigation{ActiveTab: TabID((int(n.ActiveTab) - 1 + TabCount) % TabCount)}
}

// SwitchTo selects tab directly. Selecting the active tab keeps the cursor.
func (n Navigation) SwitchTo(tab TabID) Navigation {
	if tab < 0 || int(tab) >= TabCount || tab == n.ActiveTab {
		return n
	}
	return Navigation{ActiveTab: tab}
}

// MoveDown selects the next row.
func (n Navigation) MoveDown(rows, visible int) Navigation {
	n.SelectedRow++
	return n.Clamp(rows, visible)
}

// MoveUp selects the previous row.
func (n Navigation) MoveUp(rows, visible int) Navigation {
	n.SelectedRow--
	return n.Clamp(rows, visible)
}

// GoTop selects the first row.
func (n Navigation) GoTop(rows, visible int) Navigation {
	n.SelectedRow = 0
	return n.Clamp(rows, visible)
}

// GoBottom selects the last row.
func (n Navigation) GoBottom(rows, visible int) Navigation {
	n.SelectedRow = rows - 1
	return n.Clamp(rows, visible)
}

// Clamp keeps the selected row inside [0, rows) and scrolls as little as
// possible to keep it inside [ScrollOffset, ScrollOffset+visible).
func (n Navigation) Clamp(rows, visible int) Navigation {
	if rows <= 0 {
		n.SelectedRow = 0
		n.ScrollOffset = 0
		return n
	}
	visible = max(visible, 1)

	n.SelectedRow = min(max(n.SelectedRow, 0), rows-1)

	if n.SelectedRow < n.ScrollOffset {
		n.ScrollOffset = n.SelectedRow
	}
	if n.SelectedRow >= n.ScrollOffset+visible {
		n.ScrollOffset = n.SelectedRow - visible + 1
	}
	n.ScrollOffset = min(max(n.ScrollOffset, 0), max(rows-visible, 0))
	return n
}
