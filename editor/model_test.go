package editor

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/ktakenos/tabcanvas"
)

// fakeClock drives the burst window deterministically.
type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestModel() (*Model, *fakeClock) {
	m := NewModel()
	clock := &fakeClock{t: time.Unix(0, 0)}
	m.now = clock.now
	return m, clock
}

func TestUndoBurstCoalescing(t *testing.T) {
	m, clock := newTestModel()

	for i := 0; i < 3; i++ {
		m.PushUndo("edit", true)
		clock.advance(100 * time.Millisecond)
	}
	m.PushUndo("range", false)

	if got := m.UndoDepth(); got != 2 {
		t.Fatalf("3 burst edits + 1 range op left %d undo entries, expected 2", got)
	}
}

func TestUndoBurstWindowExpires(t *testing.T) {
	m, clock := newTestModel()

	m.PushUndo("edit", true)
	clock.advance(800 * time.Millisecond)
	m.PushUndo("edit", true)

	if got := m.UndoDepth(); got != 2 {
		t.Fatalf("expired burst window coalesced anyway: %d entries", got)
	}
}

func TestUndoBurstWindowRefreshesOnSkip(t *testing.T) {
	m, clock := newTestModel()

	// every push lands inside the window of the previous one, so the whole
	// run stays a single entry no matter how long it takes
	for i := 0; i < 10; i++ {
		m.PushUndo("edit", true)
		clock.advance(500 * time.Millisecond)
	}
	if got := m.UndoDepth(); got != 1 {
		t.Fatalf("uninterrupted burst split into %d entries", got)
	}
}

func TestUndoRestoresDocument(t *testing.T) {
	m, _ := newTestModel()

	m.PressDigit('3')
	m.CommitDigits()
	if c := m.Doc().Cell(0, 0, 0); c.Kind != tabcanvas.Note || c.Fret != 3 {
		t.Fatalf("place failed: %v fret %d", c.Kind, c.Fret)
	}

	if !m.Undo() {
		t.Fatal("undo had nothing to pop")
	}
	if c := m.Doc().Cell(0, 0, 0); c.Kind != tabcanvas.Empty {
		t.Fatalf("undo left %v in the grid", c.Kind)
	}
}

func TestPressDigitTwoDigitFret(t *testing.T) {
	m, _ := newTestModel()

	m.PressDigit('1')
	if m.DigitBuffer() != "1" {
		t.Fatalf("first digit not buffered: %q", m.DigitBuffer())
	}
	m.PressDigit('2')

	if c := m.Doc().Cell(0, 0, 0); c.Kind != tabcanvas.Note || c.Fret != 12 {
		t.Fatalf("two-digit fret: %v fret %d", c.Kind, c.Fret)
	}
	if m.DigitBuffer() != "" {
		t.Fatalf("buffer not cleared after commit: %q", m.DigitBuffer())
	}
}

func TestDeleteCancelsPendingDigit(t *testing.T) {
	m, _ := newTestModel()

	m.PressDigit('5')
	m.DeleteAtCursor()

	if m.DigitBuffer() != "" {
		t.Fatalf("pending digit survived: %q", m.DigitBuffer())
	}
	if got := m.UndoDepth(); got != 0 {
		t.Fatalf("cancelling a digit pushed %d undo entries", got)
	}
	if c := m.Doc().Cell(0, 0, 0); c.Kind != tabcanvas.Empty {
		t.Fatalf("cancelled digit still placed a %v", c.Kind)
	}
}

func TestMoveStepAutoAppends(t *testing.T) {
	m, _ := newTestModel()

	m.MoveStep(17)

	if got := len(m.Doc().Measures); got != 2 {
		t.Fatalf("expected auto-appended measure, have %d", got)
	}
	if c := m.Cursor(); c.Measure != 1 || c.Step != 1 {
		t.Fatalf("cursor at measure %d step %d, expected 1/1", c.Measure, c.Step)
	}
}

func TestMoveStepBackStopsAtStart(t *testing.T) {
	m, _ := newTestModel()

	m.MoveStep(3)
	m.MoveStep(-10)

	if c := m.Cursor(); c.Measure != 0 || c.Step != 0 {
		t.Fatalf("cursor at measure %d step %d, expected origin", c.Measure, c.Step)
	}
}

func TestEffectiveStepsScalesWithResolution(t *testing.T) {
	m, _ := newTestModel()

	m.SetDur16(4) // quarter of a measure
	if steps, warn := m.EffectiveSteps(); steps != 4 || warn != "" {
		t.Fatalf("at 16 steps: got %d steps, warn %q", steps, warn)
	}

	m.SetResolution(48)
	if steps, warn := m.EffectiveSteps(); steps != 12 || warn != "" {
		t.Fatalf("at 48 steps: got %d steps, warn %q", steps, warn)
	}
}

func TestEffectiveStepsDotted(t *testing.T) {
	m, _ := newTestModel()

	m.SetDur16(2)
	m.ToggleDotted()
	if steps, warn := m.EffectiveSteps(); steps != 3 || warn != "" {
		t.Fatalf("dotted eighth at 16 steps: got %d steps, warn %q", steps, warn)
	}

	m.SetDur16(1) // 1.5 steps rounds and warns
	steps, warn := m.EffectiveSteps()
	if steps != 2 || warn == "" {
		t.Fatalf("dotted 16th at 16 steps: got %d steps, warn %q", steps, warn)
	}
}

func TestTieBackNoopLeavesUndoAlone(t *testing.T) {
	m, _ := newTestModel()

	if m.TieBack() {
		t.Fatal("tie back succeeded on an empty cell")
	}
	if got := m.UndoDepth(); got != 0 {
		t.Fatalf("failed tie back left %d undo entries", got)
	}
}

func TestDeleteSelectedRange(t *testing.T) {
	m, _ := newTestModel()
	m.AppendBlankMeasure()
	m.AppendBlankMeasure()

	m.MarkSelectionStart()
	m.MoveMeasure(1)
	m.MarkSelectionEnd()
	m.DeleteSelectedRange()

	if got := len(m.Doc().Measures); got != 1 {
		t.Fatalf("expected 1 measure after range delete, have %d", got)
	}
	if _, _, ok := m.Selection(); ok {
		t.Fatal("selection survived its own deletion")
	}
}

func TestDuplicateHereSelectsClone(t *testing.T) {
	m, _ := newTestModel()
	m.PressDigit('3')
	m.CommitDigits()

	m.DuplicateHere()

	if got := len(m.Doc().Measures); got != 2 {
		t.Fatalf("expected 2 measures, have %d", got)
	}
	for mi := 0; mi < 2; mi++ {
		if c := m.Doc().Cell(mi, 0, 0); c.Kind != tabcanvas.Note || c.Fret != 3 {
			t.Fatalf("measure %d lost the note: %v fret %d", mi, c.Kind, c.Fret)
		}
	}
	if a, b, ok := m.Selection(); !ok || a != 0 || b != 0 {
		t.Fatalf("selection %d..%d ok=%v, expected the inserted copy", a, b, ok)
	}
}

func TestRepeatHere(t *testing.T) {
	m, _ := newTestModel()
	m.PressDigit('7')
	m.CommitDigits()

	m.RepeatHere(2)

	if got := len(m.Doc().Measures); got != 3 {
		t.Fatalf("expected 3 measures, have %d", got)
	}
	if a, b, ok := m.Selection(); !ok || a != 0 || b != 1 {
		t.Fatalf("selection %d..%d ok=%v, expected the 2 inserted copies", a, b, ok)
	}
}

func TestMeasureClipboardRoundTrip(t *testing.T) {
	m, _ := newTestModel()
	m.PressDigit('5')
	m.CommitDigits()

	clip, err := m.CopyMeasures()
	if err != nil {
		t.Fatalf("copy: %v", err)
	}
	if err := m.PasteMeasuresInsert(clip); err != nil {
		t.Fatalf("paste insert: %v", err)
	}

	if got := len(m.Doc().Measures); got != 2 {
		t.Fatalf("expected 2 measures after insert, have %d", got)
	}
	if c := m.Doc().Cell(0, 0, 0); c.Kind != tabcanvas.Note || c.Fret != 5 {
		t.Fatalf("inserted measure content: %v fret %d", c.Kind, c.Fret)
	}
}

func TestPasteMeasuresOverwriteAppendsPastEnd(t *testing.T) {
	m, _ := newTestModel()
	m.PressDigit('5')
	m.CommitDigits()
	clip, err := m.CopyMeasures()
	if err != nil {
		t.Fatalf("copy: %v", err)
	}
	// moving past the end appends a blank measure; pasting over it keeps
	// the measure count
	m.MoveMeasure(1)
	if err := m.PasteMeasuresOverwrite(clip); err != nil {
		t.Fatalf("paste overwrite: %v", err)
	}
	if got := len(m.Doc().Measures); got != 2 {
		t.Fatalf("overwrite on existing measure changed the count to %d", got)
	}
	if c := m.Doc().Cell(1, 0, 0); c.Kind != tabcanvas.Note || c.Fret != 5 {
		t.Fatalf("overwritten measure content: %v fret %d", c.Kind, c.Fret)
	}
}

func TestBeatPasteRebasesTies(t *testing.T) {
	m, _ := newTestModel()
	// tie continuation at step 0 of measure 2
	m.Doc().PlaceNote(0, 0, 12, 3, 8)

	m.MoveMeasure(1)
	clip, err := m.CopyBeat()
	if err != nil {
		t.Fatalf("copy beat: %v", err)
	}

	m.MoveMeasure(-1)
	m.JumpToStep(4)
	if err := m.PasteBeatOverwrite(clip); err != nil {
		t.Fatalf("paste beat: %v", err)
	}

	// the tie cannot continue anything mid-measure, so it lands as a note
	if c := m.Doc().Cell(0, 0, 4); c.Kind != tabcanvas.Note || c.Fret != 3 {
		t.Fatalf("tie not rebased: %v fret %d", c.Kind, c.Fret)
	}
}

func TestBeatPasteDropsOrphanHolds(t *testing.T) {
	m, _ := newTestModel()
	// holds spill into the second beat with their head in the first
	m.Doc().PlaceNote(0, 0, 2, 3, 4)

	m.JumpToStep(4)
	clip, err := m.CopyBeat()
	if err != nil {
		t.Fatalf("copy beat: %v", err)
	}

	m.AppendBlankMeasure()
	m.MoveMeasure(1)
	m.JumpToStep(0)
	if err := m.PasteBeatOverwrite(clip); err != nil {
		t.Fatalf("paste beat: %v", err)
	}

	for st := 0; st < 4; st++ {
		if c := m.Doc().Cell(1, 0, st); c.Kind != tabcanvas.Empty {
			t.Fatalf("orphan %v at step %d", c.Kind, st)
		}
	}
}

func TestSetBPMClamps(t *testing.T) {
	m, _ := newTestModel()
	m.SetBPM(999)
	if got := m.Doc().Meta.BPM; got != tabcanvas.MaxBPM {
		t.Fatalf("bpm %d, expected clamp to %d", got, tabcanvas.MaxBPM)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"song.json", "song.yaml"} {
		m, _ := newTestModel()
		m.PressDigit('3')
		m.CommitDigits()
		m.SetBPM(90)

		path := filepath.Join(dir, name)
		if err := m.SaveAs(path); err != nil {
			t.Fatalf("save %s: %v", name, err)
		}
		if m.ChangedSinceSave() {
			t.Errorf("%s: still marked changed after save", name)
		}

		back, _ := newTestModel()
		if err := back.Open(path); err != nil {
			t.Fatalf("open %s: %v", name, err)
		}
		if c := back.Doc().Cell(0, 0, 0); c.Kind != tabcanvas.Note || c.Fret != 3 {
			t.Fatalf("%s: note lost in round trip: %v fret %d", name, c.Kind, c.Fret)
		}
		if got := back.Doc().Meta.BPM; got != 90 {
			t.Fatalf("%s: bpm %d, expected 90", name, got)
		}
	}
}
