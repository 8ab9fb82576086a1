package canopy

import "math"

// segment is one length along an axis: a space, a size or a gap.
type segment struct {
	units    Units
	min, max float64
	natural  float64
	size     float64
}

// spaceSegment returns a segment without size limits, used for spaces,
// gaps and grid tracks.
func spaceSegment(u Units) segment {
	return segment{units: u, min: math.Inf(-1), max: math.Inf(1)}
}

// clamp applies the size limits.
func (s *segment) clamp(v float64) float64 {
	return clampSize(v, s.min, s.max)
}

// distribute resolves every segment against length. Fixed, percentage and
// Auto segments take their own length; Stretch segments share what is
// left in proportion to their factors. A stretch segment whose share
// violates its limits is frozen at the limit and the rest is shared again.
// It reports whether any stretch segment took part.
func distribute(segs []segment, length float64) bool {
	free := length
	factors := 0.0
	stretch := false
	for i := range segs {
		s := &segs[i]
		switch s.units.Kind {
		case UnitsStretch:
			stretch = true
			factors += s.units.Value
			s.size = 0
			continue
		case UnitsAuto:
			s.size = s.natural
		default:
			s.size = s.units.Resolve(length, 0)
		}
		s.size = s.clamp(s.size)
		free -= s.size
	}
	if !stretch {
		return false
	}
	frozen := make([]bool, len(segs))
	for factors > 0 {
		per := math.Max(free, 0) / factors
		violated := false
		for i := range segs {
			s := &segs[i]
			if s.units.Kind != UnitsStretch || frozen[i] {
				continue
			}
			v := per * s.units.Value
			if c := s.clamp(v); c != v {
				s.size = c
				frozen[i] = true
				free -= c
				factors -= s.units.Value
				violated = true
			}
		}
		if violated {
			continue
		}
		for i := range segs {
			if segs[i].units.Kind == UnitsStretch && !frozen[i] {
				segs[i].size = per * segs[i].units.Value
			}
		}
		break
	}
	return true
}

// computeSpacing returns the space between children and the offset of the
// first child for the main-axis alignment of n children sharing free.
func computeSpacing(align Alignment, free float64, n int) (spacing, offset float64) {
	switch align {
	case AlignEnd:
		offset = free
	case AlignCenter:
		offset = free * 0.5
	case AlignSpaceBetween:
		if n > 1 {
			spacing = free / float64(n-1)
		}
	case AlignSpaceAround:
		if n > 0 {
			spacing = free / float64(n)
			offset = spacing * 0.5
		}
	case AlignSpaceEvenly:
		if n > 0 {
			spacing = free / float64(n+1)
			offset = spacing
		}
	}
	return
}

// arrangeFlex lays children out in a single run along main. Each child
// contributes a space before, a size and a space after; gaps separate
// neighbours.
func (l *LayoutEngine) arrangeFlex(e Entity, content Bounds, children []Entity, main axis) {
	if len(children) == 0 {
		return
	}
	length := content.length(main)
	gap := spaceUnits(l.gap(e, main))
	segs := make([]segment, 0, len(children)*4)
	for i, c := range children {
		if i > 0 {
			segs = append(segs, spaceSegment(gap))
		}
		before, size, after, lo, hi := l.axisUnits(c, main)
		segs = append(segs,
			spaceSegment(spaceUnits(before)),
			l.sizeSegment(c, main, size, lo, hi, length),
			spaceSegment(spaceUnits(after)),
		)
	}

	spacing, offset := 0.0, 0.0
	if !distribute(segs, length) {
		used := 0.0
		for _, s := range segs {
			used += s.size
		}
		spacing, offset = computeSpacing(l.style.MainAlignment.Get(e), math.Max(0, length-used), len(children))
	}

	cross := main.other()
	align := l.style.CrossAlignment.Get(e)
	cursor := content.start(main) + offset
	k := 0
	for i, c := range children {
		if i > 0 {
			cursor += segs[k].size + spacing
			k++
		}
		cursor += segs[k].size
		pos, size := cursor, segs[k+1].size
		cursor += size + segs[k+2].size
		k += 3

		var cb Bounds
		cb.setAxis(main, pos, size)
		cpos, csize := l.crossPlacement(c, cross, content, align)
		cb.setAxis(cross, cpos, csize)
		l.setBounds(c, cb)
	}
}

// crossPlacement positions c across the run. Stretch lengths fill the
// content cross length; otherwise the parent's cross alignment applies.
func (l *LayoutEngine) crossPlacement(c Entity, cross axis, content Bounds, align Alignment) (pos, length float64) {
	before, size, after, lo, hi := l.axisUnits(c, cross)
	if align == AlignStretch && size.IsAuto() {
		size = Stretch(1)
	}
	total := content.length(cross)
	segs := []segment{
		spaceSegment(spaceUnits(before)),
		l.sizeSegment(c, cross, size, lo, hi, total),
		spaceSegment(spaceUnits(after)),
	}
	if distribute(segs, total) {
		return content.start(cross) + segs[0].size, segs[1].size
	}
	pos = content.start(cross) + segs[0].size
	free := total - segs[0].size - segs[1].size - segs[2].size
	switch align {
	case AlignEnd:
		pos += free
	case AlignCenter:
		pos += free * 0.5
	}
	return pos, segs[1].size
}
