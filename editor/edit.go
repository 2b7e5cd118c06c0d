package editor

import (
	"fmt"
	"math"
	"strconv"
)

// SetDur16 sets the note entry duration in 16ths of a measure.
func (m *Model) SetDur16(n int) {
	m.commitDigits()
	if n < 1 {
		n = 1
	}
	m.d.Dur16 = n
}

func (m *Model) ToggleDotted() {
	m.commitDigits()
	m.d.Dotted = !m.d.Dotted
}

// EffectiveSteps converts the entry duration into steps of the current
// measure. The base is 16ths of a measure, scaled by the measure resolution
// and by 1.5 when dotted. A non-empty warning is returned when the result
// had to be rounded, which happens for dotted durations at 16 steps per bar.
func (m *Model) EffectiveSteps() (int, string) {
	spb := m.d.Doc.Measures[m.d.Cursor.Measure].StepsPerBar
	steps := float64(m.d.Dur16) * float64(spb) / 16
	if m.d.Dotted {
		steps *= 1.5
	}
	rounded := int(math.Round(steps))
	warn := ""
	if math.Abs(float64(rounded)-steps) > 1e-6 {
		warn = fmt.Sprintf("duration rounded %.2f -> %d at %d steps per bar", steps, rounded, spb)
	}
	if rounded < 1 {
		rounded = 1
	}
	return rounded, warn
}

// PressDigit feeds one fret digit. The first digit is buffered so a second
// one can turn it into a two-digit fret; the second digit commits
// immediately. The frontend owns the single-digit timeout and calls
// CommitDigits when it expires.
func (m *Model) PressDigit(d byte) {
	if d < '0' || d > '9' {
		return
	}
	if m.digitBuf == "" {
		m.digitBuf = string(d)
		return
	}
	m.digitBuf += string(d)
	m.commitDigits()
}

// DigitBuffer returns the pending digit, if any.
func (m *Model) DigitBuffer() string { return m.digitBuf }

// CommitDigits places the buffered fret at the cursor.
func (m *Model) CommitDigits() { m.commitDigits() }

func (m *Model) dropDigits() { m.digitBuf = "" }

func (m *Model) commitDigits() {
	if m.digitBuf == "" {
		return
	}
	fret, err := strconv.Atoi(m.digitBuf)
	m.digitBuf = ""
	if err != nil {
		return
	}
	dur, _ := m.EffectiveSteps()
	m.PushUndo("edit", true)
	c := m.d.Cursor
	m.d.Doc.PlaceNote(c.Measure, c.String, c.Step, fret, dur)
	m.changed = true
}

// DeleteAtCursor erases the cell under the cursor: a hold shortens its note,
// a head disappears with its whole tie chain. With a pending digit the
// delete only cancels the buffer, matching the feel of backing out of a
// half-typed fret.
func (m *Model) DeleteAtCursor() {
	if m.digitBuf != "" {
		m.dropDigits()
		return
	}
	m.PushUndo("edit", true)
	c := m.d.Cursor
	m.d.Doc.DeleteAt(c.Measure, c.String, c.Step)
	m.changed = true
}

// TieBack converts the note under the cursor into a tie continuation of the
// preceding same-fret note, or toggles an existing tie back into a note.
// Nothing happens when the notes are not exactly adjacent.
func (m *Model) TieBack() bool {
	m.commitDigits()
	m.PushUndo("edit", false)
	c := m.d.Cursor
	if !m.d.Doc.TieBack(c.Measure, c.String, c.Step) {
		m.dropUndo()
		return false
	}
	m.changed = true
	return true
}

// SetResolution resizes the current measure, rescaling its note heads.
func (m *Model) SetResolution(stepsPerBar int) {
	m.commitDigits()
	m.PushUndo("range", false)
	m.d.Doc.Measures[m.d.Cursor.Measure].Resize(stepsPerBar)
	m.clampCursor()
	m.changed = true
}

// SetBPM stores the clamped tempo.
func (m *Model) SetBPM(bpm int) {
	m.PushUndo("meta", true)
	m.d.Doc.Meta.BPM = bpm
	m.d.Doc.Meta.BPM = m.d.Doc.Meta.ClampBPM()
	m.changed = true
}

// SetProgram stores the clamped General MIDI program number.
func (m *Model) SetProgram(prog int) {
	m.PushUndo("meta", true)
	m.d.Doc.Meta.Program = prog
	m.d.Doc.Meta.Program = m.d.Doc.Meta.ClampProgram()
	m.changed = true
}

// SetTranspose stores the semitone offset applied at MIDI export.
func (m *Model) SetTranspose(semitones int) {
	m.PushUndo("meta", true)
	m.d.Doc.Meta.Transpose = semitones
	m.changed = true
}
