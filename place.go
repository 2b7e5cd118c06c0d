package tabcanvas

// PlaceNote writes a Note head at (mi, s, step) and consumes durSteps-1
// further steps as Hold cells, crossing measure boundaries with Tie heads of
// the same fret. When the run walks off the last measure, new measures are
// appended automatically at the resolution of the measure being crossed.
// Anything already occupying the written cells is removed first: a Hold run
// is shortened, a head is chain-deleted together with its forward tie
// continuations.
func (d *Document) PlaceNote(mi, s, step, fret, durSteps int) {
	if len(d.Measures) == 0 {
		d.EnsureMeasure()
	}
	mi, s, step = d.clampIndex(mi, s, step)
	if fret < 0 {
		fret = 0
	}
	if durSteps < 1 {
		durSteps = 1
	}

	m := &d.Measures[mi]
	if m.Grid[s][step].Kind == Hold {
		d.shortenFromHold(mi, s, step)
	}
	if m.Grid[s][step].IsHead() {
		d.deleteHeadChain(mi, s, step)
	}
	m.Grid[s][step] = NoteCell(fret)

	remaining := durSteps - 1
	cur := mi
	t := step
	for remaining > 0 {
		cm := &d.Measures[cur]
		t++

		if t >= cm.StepsPerBar {
			cur++
			t = 0
			if cur >= len(d.Measures) {
				d.Measures = append(d.Measures, NewMeasure(cm.StepsPerBar))
			}
			nm := &d.Measures[cur]
			if nm.Grid[s][0].IsHead() {
				d.deleteHeadChain(cur, s, 0)
			}
			nm.Grid[s][0] = TieCell(fret)
			remaining--
			continue
		}

		cm.Grid[s][t] = Cell{Kind: Hold}
		remaining--
	}
}

// DeleteAt erases the note material at (mi, s, step). On a Hold cell the run
// is shortened forward from that cell, leaving the head intact. On a head
// the head and its forward hold run are erased, and same-fret tie heads at
// step 0 of subsequent measures are chain-deleted along with their own hold
// runs.
func (d *Document) DeleteAt(mi, s, step int) {
	if len(d.Measures) == 0 {
		return
	}
	mi, s, step = d.clampIndex(mi, s, step)
	c := d.Measures[mi].Grid[s][step]

	switch {
	case c.Kind == Hold:
		d.shortenFromHold(mi, s, step)
	case c.IsHead():
		d.deleteHeadChain(mi, s, step)
	}
}

// TieBack converts the Note at (mi, s, step) into a Tie continuing the
// nearest prior head of the same fret, but only when that head ends exactly
// at the current position: no gap, no overlap. A cell that is already a Tie
// is toggled back to a Note. Returns whether the grid changed.
func (d *Document) TieBack(mi, s, step int) bool {
	if len(d.Measures) == 0 {
		return false
	}
	mi, s, step = d.clampIndex(mi, s, step)
	cur := d.Measures[mi].Grid[s][step]
	if !cur.IsHead() {
		return false
	}

	if cur.Kind == Tie {
		d.Measures[mi].Grid[s][step] = NoteCell(cur.Fret)
		return true
	}

	fret := cur.Fret
	var prevHead Pos
	found := false
	for p, ok := d.Prev(Pos{mi, step}); ok; p, ok = d.Prev(p) {
		c := d.Measures[p.Measure].Grid[s][p.Step]
		if c.IsHead() && c.Fret == fret {
			prevHead = p
			found = true
			break
		}
	}
	if !found {
		return false
	}

	end, ok := d.NoteEndPos(prevHead.Measure, s, prevHead.Step)
	if !ok || end != (Pos{mi, step}) {
		return false
	}

	d.Measures[mi].Grid[s][step] = TieCell(fret)
	return true
}

// deleteHeadChain erases the head at (mi, s, step), its forward hold run,
// and every same-fret tie continuation in subsequent measures.
func (d *Document) deleteHeadChain(mi, s, step int) {
	fret := d.Measures[mi].Grid[s][step].Fret
	hadFret := d.Measures[mi].Grid[s][step].IsHead()
	d.deleteHeadAndHolds(mi, s, step)
	if hadFret {
		d.deleteTieChainForward(mi+1, s, fret)
	}
}

// deleteHeadAndHolds erases a single head and the contiguous hold run
// following it within the same measure.
func (d *Document) deleteHeadAndHolds(mi, s, step int) {
	m := &d.Measures[mi]
	m.Grid[s][step] = Cell{}
	for t := step + 1; t < m.StepsPerBar && m.Grid[s][t].Kind == Hold; t++ {
		m.Grid[s][t] = Cell{}
	}
}

// shortenFromHold erases forward from a hold cell to the end of its run,
// never disturbing the head behind it.
func (d *Document) shortenFromHold(mi, s, step int) {
	m := &d.Measures[mi]
	for t := step; t < m.StepsPerBar && m.Grid[s][t].Kind == Hold; t++ {
		m.Grid[s][t] = Cell{}
	}
}

// deleteTieChainForward erases same-fret tie heads (and their hold runs) at
// step 0 of consecutive measures starting at startMi, stopping at the first
// measure that does not continue the chain.
func (d *Document) deleteTieChainForward(startMi, s, fret int) {
	for mi := startMi; mi < len(d.Measures); mi++ {
		head := d.Measures[mi].Grid[s][0]
		if head.Kind != Tie || head.Fret != fret {
			break
		}
		d.deleteHeadAndHolds(mi, s, 0)
	}
}
