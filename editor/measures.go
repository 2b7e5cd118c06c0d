package editor

import "github.com/ktakenos/tabcanvas"

// Selection returns the selected measure range in ascending order, clamped
// to the document.
func (m *Model) Selection() (a, b int, ok bool) {
	if m.d.SelStart < 0 || m.d.SelEnd < 0 {
		return 0, 0, false
	}
	a, b = m.d.SelStart, m.d.SelEnd
	if a > b {
		a, b = b, a
	}
	if a < 0 {
		a = 0
	}
	if last := len(m.d.Doc.Measures) - 1; b > last {
		b = last
	}
	if a > b {
		return 0, 0, false
	}
	return a, b, true
}

// MarkSelectionStart anchors the selection at the cursor measure.
func (m *Model) MarkSelectionStart() {
	m.commitDigits()
	m.d.SelStart = m.d.Cursor.Measure
	if m.d.SelEnd < 0 {
		m.d.SelEnd = m.d.Cursor.Measure
	}
}

// MarkSelectionEnd extends the selection to the cursor measure.
func (m *Model) MarkSelectionEnd() {
	m.commitDigits()
	m.d.SelEnd = m.d.Cursor.Measure
	if m.d.SelStart < 0 {
		m.d.SelStart = m.d.Cursor.Measure
	}
}

func (m *Model) ClearSelection() {
	m.commitDigits()
	m.d.SelStart, m.d.SelEnd = -1, -1
}

// DeleteSelectedRange removes the selected measures. Without a selection it
// does nothing.
func (m *Model) DeleteSelectedRange() {
	m.commitDigits()
	a, b, ok := m.Selection()
	if !ok {
		return
	}
	m.PushUndo("range", false)
	m.d.Doc.DeleteRange(a, b)
	m.d.Cursor.Measure = a
	m.d.SelStart, m.d.SelEnd = -1, -1
	m.clampCursor()
	m.changed = true
}

// InsertBlankMeasure inserts a blank measure at the cursor, shifting any
// selection that sits at or after it.
func (m *Model) InsertBlankMeasure() {
	m.commitDigits()
	m.PushUndo("range", false)
	idx := m.d.Cursor.Measure
	m.d.Doc.InsertBlank(idx)
	m.d.Cursor.Measure = idx
	if m.d.SelStart >= idx {
		m.d.SelStart++
	}
	if m.d.SelEnd >= idx {
		m.d.SelEnd++
	}
	m.clampCursor()
	m.changed = true
}

// AppendBlankMeasure adds a blank measure at the document tail.
func (m *Model) AppendBlankMeasure() {
	m.commitDigits()
	m.PushUndo("range", false)
	m.d.Doc.Append()
	m.changed = true
}

// DeleteCurrentMeasure removes the cursor measure. A selection endpoint on
// the deleted measure voids the whole selection.
func (m *Model) DeleteCurrentMeasure() {
	m.commitDigits()
	m.PushUndo("range", false)
	idx := m.d.Cursor.Measure
	m.d.Doc.Delete(idx)

	if m.d.SelStart >= 0 {
		switch {
		case m.d.SelStart == idx:
			m.d.SelStart = -1
		case m.d.SelStart > idx:
			m.d.SelStart--
		}
	}
	if m.d.SelEnd >= 0 {
		switch {
		case m.d.SelEnd == idx:
			m.d.SelEnd = -1
		case m.d.SelEnd > idx:
			m.d.SelEnd--
		}
	}
	if m.d.SelStart < 0 || m.d.SelEnd < 0 {
		m.d.SelStart, m.d.SelEnd = -1, -1
	}
	m.clampCursor()
	m.changed = true
}

// blockRange is the source for duplicate and repeat: the selection when one
// exists, the cursor measure otherwise.
func (m *Model) blockRange() (int, int) {
	if a, b, ok := m.Selection(); ok {
		return a, b
	}
	return m.d.Cursor.Measure, m.d.Cursor.Measure
}

func (m *Model) copyBlock(a, b int) []tabcanvas.Measure {
	block := make([]tabcanvas.Measure, 0, b-a+1)
	for i := a; i <= b; i++ {
		block = append(block, m.d.Doc.Measures[i].Copy())
	}
	return block
}

// DuplicateHere inserts a copy of the source block at the cursor and selects
// the inserted copy.
func (m *Model) DuplicateHere() {
	m.commitDigits()
	a, b := m.blockRange()
	block := m.copyBlock(a, b)

	m.PushUndo("range", false)
	idx := m.d.Cursor.Measure
	for k, mm := range block {
		m.d.Doc.Insert(idx+k, mm)
	}
	m.d.Cursor.Measure = idx
	m.d.SelStart = idx
	m.d.SelEnd = idx + len(block) - 1
	m.clampCursor()
	m.changed = true
}

// RepeatHere inserts the source block times over at the cursor.
func (m *Model) RepeatHere(times int) {
	m.commitDigits()
	if times < 1 {
		return
	}
	a, b := m.blockRange()
	block := m.copyBlock(a, b)

	m.PushUndo("range", false)
	idx := m.d.Cursor.Measure
	for rep := 0; rep < times; rep++ {
		for k := range block {
			m.d.Doc.Insert(idx+rep*len(block)+k, block[k].Copy())
		}
	}
	m.d.Cursor.Measure = idx
	m.d.SelStart = idx
	m.d.SelEnd = idx + times*len(block) - 1
	m.clampCursor()
	m.changed = true
}
