package scenario

// Anchor returns the offset of the named click target.
func (l Layout) Anchor(name string) (Point, bool) {
	p, ok := l.Anchors[name]
	return p, ok
}

// HasColumn reports whether the header row defines name.
func (c Columns) HasColumn(name string) bool {
	for _, col := range c.Widths {
		if col.Name == name {
			return true
		}
	}
	return false
}

// HeaderCenter returns the offset of the centre of a column header:
// origin.x plus the widths of the preceding columns plus half this
// column's width (integer division), at origin.y.
func (c Columns) HeaderCenter(name string) (Point, bool) {
	x := c.Origin.X
	for _, col := range c.Widths {
		if col.Name == name {
			return Point{X: x + col.Width/2, Y: c.Origin.Y}, true
		}
		x += col.Width
	}
	return Point{}, false
}

// Offset returns p translated by the window origin (wx, wy).
func (p Point) Offset(wx, wy int) (int, int) {
	return wx + p.X, wy + p.Y
}
