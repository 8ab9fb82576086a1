package canopy

import "math"

// gridSpan returns the first track and the number of tracks c occupies
// along a.
func (l *LayoutEngine) gridSpan(c Entity, a axis) (index, span int) {
	if a == horizontal {
		index, span = l.style.ColIndex.Get(c), l.style.ColSpan.Get(c)
	} else {
		index, span = l.style.RowIndex.Get(c), l.style.RowSpan.Get(c)
	}
	return max(index, 0), max(span, 1)
}

func (l *LayoutEngine) gridTemplate(e Entity, a axis) []Units {
	if a == horizontal {
		return l.style.GridCols.Get(e)
	}
	return l.style.GridRows.Get(e)
}

// trackCount is the template length extended by the implicit tracks that
// children reference beyond it.
func (l *LayoutEngine) trackCount(e Entity, a axis, children []Entity) int {
	n := len(l.gridTemplate(e, a))
	for _, c := range children {
		i, s := l.gridSpan(c, a)
		n = max(n, i+s)
	}
	return n
}

// trackNatural is the largest natural outer length of the single-span
// items placed in track j.
func (l *LayoutEngine) trackNatural(j int, a axis, children []Entity) float64 {
	v := 0.0
	for _, c := range children {
		if i, s := l.gridSpan(c, a); i != j || s != 1 {
			continue
		}
		before, _, after, _, _ := l.axisUnits(c, a)
		v = math.Max(v, pixelsOnly(before, -1)+l.natural(c, a)+pixelsOnly(after, -1))
	}
	return v
}

// gridTracks resolves the track positions and lengths of e along a.
func (l *LayoutEngine) gridTracks(e Entity, a axis, content Bounds, children []Entity) (starts, sizes []float64) {
	template := l.gridTemplate(e, a)
	n := l.trackCount(e, a, children)
	gap := spaceUnits(l.gap(e, a))
	segs := make([]segment, 0, 2*n)
	for j := range n {
		if j > 0 {
			segs = append(segs, spaceSegment(gap))
		}
		u := Auto
		if j < len(template) {
			u = template[j]
		}
		s := spaceSegment(u)
		if u.IsAuto() {
			s.natural = l.trackNatural(j, a, children)
		}
		segs = append(segs, s)
	}
	distribute(segs, content.length(a))

	starts, sizes = make([]float64, n), make([]float64, n)
	cursor := content.start(a)
	for j := range n {
		if j > 0 {
			cursor += segs[2*j-1].size
		}
		starts[j], sizes[j] = cursor, segs[2*j].size
		cursor += sizes[j]
	}
	return starts, sizes
}

// arrangeGrid places each child in the cell spanned by its track indices.
// Items fill their cell unless sized in pixels or percent of the cell.
func (l *LayoutEngine) arrangeGrid(e Entity, content Bounds, children []Entity) {
	if len(children) == 0 {
		return
	}
	colStarts, colSizes := l.gridTracks(e, horizontal, content, children)
	rowStarts, rowSizes := l.gridTracks(e, vertical, content, children)
	for _, c := range children {
		var cell Bounds
		ci, cs := l.gridSpan(c, horizontal)
		cell.setAxis(horizontal, colStarts[ci], colStarts[ci+cs-1]+colSizes[ci+cs-1]-colStarts[ci])
		ri, rs := l.gridSpan(c, vertical)
		cell.setAxis(vertical, rowStarts[ri], rowStarts[ri+rs-1]+rowSizes[ri+rs-1]-rowStarts[ri])

		var cb Bounds
		for _, a := range [...]axis{horizontal, vertical} {
			pos, length := l.place(c, a, cell, true)
			cb.setAxis(a, pos, length)
		}
		l.setBounds(c, cb)
	}
}

// gridNatural is the sum of the fixed and content-sized tracks of e along
// a plus the gaps between them.
func (l *LayoutEngine) gridNatural(e Entity, a axis, children []Entity) float64 {
	template := l.gridTemplate(e, a)
	n := l.trackCount(e, a, children)
	total := 0.0
	for j := range n {
		if j > 0 {
			total += pixelsOnly(l.gap(e, a), -1)
		}
		if j < len(template) && template[j].Kind == UnitsPixels {
			total += template[j].Value
			continue
		}
		total += l.trackNatural(j, a, children)
	}
	return total
}
