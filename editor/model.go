// Package editor implements the editing model behind a tablature editor
// frontend: a cursor over the document grid, measure selection, snapshot
// undo with burst coalescing, clipboard payloads and file persistence. The
// model is UI-agnostic; a frontend maps key events to method calls and
// redraws from the exposed state.
package editor

import (
	"time"

	"github.com/ktakenos/tabcanvas"
)

const (
	maxUndo = 300
	// Rapid same-tag edits within this window collapse into one undo entry,
	// so mashing a key undoes as a single step.
	undoBurstWindow = 750 * time.Millisecond
)

// Cursor addresses one grid cell.
type Cursor struct {
	Measure int
	String  int
	Step    int
}

// modelData is the whole undoable state. Snapshots copy it wholesale, the
// document included, trading memory for simplicity.
type modelData struct {
	Doc      tabcanvas.Document
	Cursor   Cursor
	SelStart int // selected measure range, -1 when unset
	SelEnd   int
	Dur16    int // note duration in 16ths of a measure
	Dotted   bool
	FilePath string
}

// Model is the editing model. Zero value is not usable; call NewModel.
type Model struct {
	d         modelData
	undoStack []modelData
	undoTag   string
	undoTime  time.Time
	digitBuf  string
	changed   bool

	now func() time.Time // injectable for tests
}

func NewModel() *Model {
	return &Model{
		d: modelData{
			Doc:      *tabcanvas.NewDocument(),
			SelStart: -1,
			SelEnd:   -1,
			Dur16:    1,
		},
		now: time.Now,
	}
}

// Doc exposes the live document. Mutating it directly bypasses undo.
func (m *Model) Doc() *tabcanvas.Document { return &m.d.Doc }

func (m *Model) Cursor() Cursor { return m.d.Cursor }

func (m *Model) FilePath() string { return m.d.FilePath }

func (m *Model) ChangedSinceSave() bool { return m.changed }

func (m *Model) Dur16() int { return m.d.Dur16 }

func (m *Model) Dotted() bool { return m.d.Dotted }

func (m *Model) snapshot() modelData {
	snap := m.d
	snap.Doc = m.d.Doc.Copy()
	return snap
}

// PushUndo records the current state before a mutation. Burst pushes with
// the same tag inside the burst window are skipped, and each skip refreshes
// the window, so an uninterrupted typing run stays one entry however long
// it gets.
func (m *Model) PushUndo(tag string, burst bool) {
	now := m.now()
	if burst && len(m.undoStack) > 0 && m.undoTag == tag && now.Sub(m.undoTime) <= undoBurstWindow {
		m.undoTime = now
		return
	}
	m.undoStack = append(m.undoStack, m.snapshot())
	if len(m.undoStack) > maxUndo {
		m.undoStack = m.undoStack[len(m.undoStack)-maxUndo:]
	}
	m.undoTag = tag
	m.undoTime = now
}

// Undo pops the latest snapshot. The restored cursor and selection are
// clamped against the restored document.
func (m *Model) Undo() bool {
	m.dropDigits()
	if len(m.undoStack) == 0 {
		return false
	}
	m.d = m.undoStack[len(m.undoStack)-1]
	m.undoStack = m.undoStack[:len(m.undoStack)-1]
	m.d.Doc.EnsureMeasure()
	m.clampCursor()
	m.changed = true
	return true
}

func (m *Model) UndoDepth() int { return len(m.undoStack) }

// dropUndo discards the most recent entry. Used when a mutation pushed a
// snapshot and then turned out to be a no-op.
func (m *Model) dropUndo() {
	if len(m.undoStack) > 0 {
		m.undoStack = m.undoStack[:len(m.undoStack)-1]
	}
}

func (m *Model) clampCursor() {
	c := &m.d.Cursor
	if c.Measure < 0 {
		c.Measure = 0
	}
	if c.Measure > len(m.d.Doc.Measures)-1 {
		c.Measure = len(m.d.Doc.Measures) - 1
	}
	if c.String < 0 {
		c.String = 0
	}
	if c.String > tabcanvas.NumStrings-1 {
		c.String = tabcanvas.NumStrings - 1
	}
	if c.Step < 0 {
		c.Step = 0
	}
	if max := m.d.Doc.Measures[c.Measure].StepsPerBar - 1; c.Step > max {
		c.Step = max
	}
}

// NewScore replaces the document with a fresh single-measure one.
func (m *Model) NewScore() {
	m.commitDigits()
	m.PushUndo("range", false)
	m.d.Doc = *tabcanvas.NewDocument()
	m.d.Cursor = Cursor{}
	m.d.SelStart, m.d.SelEnd = -1, -1
	m.d.FilePath = ""
	m.changed = true
}

// MoveString moves the cursor across strings, clamped to the neck.
func (m *Model) MoveString(delta int) {
	m.commitDigits()
	m.d.Cursor.String += delta
	m.clampCursor()
}

// MoveMeasure moves whole measures. Moving forward past the last measure
// appends a blank one at the tail resolution.
func (m *Model) MoveMeasure(delta int) {
	m.commitDigits()
	if delta > 0 && m.d.Cursor.Measure == len(m.d.Doc.Measures)-1 {
		m.PushUndo("range", false)
		m.d.Doc.Append()
		m.d.Cursor.Measure++
		m.changed = true
	} else {
		m.d.Cursor.Measure += delta
	}
	m.clampCursor()
}

// MoveStep moves the cursor by steps, crossing measure boundaries in either
// direction. Stepping past the document end keeps appending blank measures
// until the target step exists.
func (m *Model) MoveStep(delta int) {
	m.commitDigits()
	mi := m.d.Cursor.Measure
	step := m.d.Cursor.Step + delta

	if delta > 0 {
		for {
			spb := m.d.Doc.Measures[mi].StepsPerBar
			if step < spb {
				break
			}
			if mi >= len(m.d.Doc.Measures)-1 {
				m.PushUndo("range", false)
				m.d.Doc.Append()
				m.changed = true
			}
			step -= spb
			mi++
		}
	} else {
		for step < 0 {
			if mi == 0 {
				step = 0
				break
			}
			mi--
			step += m.d.Doc.Measures[mi].StepsPerBar
		}
	}

	m.d.Cursor.Measure = mi
	m.d.Cursor.Step = step
	m.clampCursor()
}

// JumpToStep moves within the current measure.
func (m *Model) JumpToStep(step int) {
	m.commitDigits()
	m.d.Cursor.Step = step
	m.clampCursor()
}
