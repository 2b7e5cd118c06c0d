package tabcanvas

// NoteTotalSteps returns the effective total length, in steps, of the note
// headed at (mi, s, step): the head itself, its hold run, and every
// same-fret tie continuation at step 0 of subsequent measures together with
// their own hold runs. Returns 0 when the cell is not a head.
func (d *Document) NoteTotalSteps(mi, s, step int) int {
	if len(d.Measures) == 0 {
		return 0
	}
	mi, s, step = d.clampIndex(mi, s, step)
	head := d.Measures[mi].Grid[s][step]
	if !head.IsHead() {
		return 0
	}
	fret := head.Fret

	steps := 1
	m := &d.Measures[mi]
	for t := step + 1; t < m.StepsPerBar && m.Grid[s][t].Kind == Hold; t++ {
		steps++
	}

	for next := mi + 1; next < len(d.Measures); next++ {
		nm := &d.Measures[next]
		h := nm.Grid[s][0]
		if h.Kind != Tie || h.Fret != fret {
			break
		}
		steps++
		for t := 1; t < nm.StepsPerBar && nm.Grid[s][t].Kind == Hold; t++ {
			steps++
		}
	}
	return steps
}

// NoteEndPos returns the position immediately after the last step consumed
// by the note headed at (mi, s, step), following hold runs and same-fret tie
// chains. ok is false when the cell is not a head or the note runs off the
// end of the document.
func (d *Document) NoteEndPos(mi, s, step int) (Pos, bool) {
	if len(d.Measures) == 0 {
		return Pos{}, false
	}
	mi, s, step = d.clampIndex(mi, s, step)
	head := d.Measures[mi].Grid[s][step]
	if !head.IsHead() {
		return Pos{}, false
	}
	fret := head.Fret

	// last step of the head's own hold run
	last := Pos{mi, step}
	for next, ok := d.Next(last); ok; next, ok = d.Next(last) {
		if next.Measure != last.Measure {
			break
		}
		if d.Measures[next.Measure].Grid[s][next.Step].Kind != Hold {
			break
		}
		last = next
	}

	end, ok := d.Next(last)
	if !ok {
		return Pos{}, false
	}

	// follow the tie chain while the end lands exactly on a same-fret tie
	// head at step 0
	for end.Step == 0 && end.Measure < len(d.Measures) {
		h := d.Measures[end.Measure].Grid[s][0]
		if h.Kind != Tie || h.Fret != fret {
			break
		}
		last = Pos{end.Measure, 0}
		for next, ok := d.Next(last); ok; next, ok = d.Next(last) {
			if next.Measure != last.Measure {
				break
			}
			if d.Measures[next.Measure].Grid[s][next.Step].Kind != Hold {
				break
			}
			last = next
		}
		end, ok = d.Next(last)
		if !ok {
			return Pos{}, false
		}
	}
	return end, true
}
