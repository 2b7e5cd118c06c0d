package editor

import (
	"encoding/json"
	"fmt"

	"github.com/ktakenos/tabcanvas"
)

// Clipboard payloads are JSON so they survive a trip through the system
// clipboard and can be pasted between editor instances. A measure payload
// is a version plus a measure list; a single bare measure object is also
// accepted on paste.
type measurePayload struct {
	Version  int                 `json:"version"`
	Measures []tabcanvas.Measure `json:"measures"`
}

// beatPayload carries one beat worth of grid columns. Type tags the payload
// so a measure paste cannot be confused with a beat paste.
type beatPayload struct {
	Type      string             `json:"type"`
	Version   int                `json:"version"`
	SPB       int                `json:"spb"`
	BeatSteps int                `json:"beat_steps"`
	Grid      [][]tabcanvas.Cell `json:"grid"`
}

// CopyMeasures serializes the selected measures, or the cursor measure when
// nothing is selected.
func (m *Model) CopyMeasures() (string, error) {
	m.commitDigits()
	a, b := m.blockRange()
	payload := measurePayload{Version: tabcanvas.Version1, Measures: m.copyBlock(a, b)}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshaling measures: %w", err)
	}
	return string(data), nil
}

func parseMeasurePayload(clip string) ([]tabcanvas.Measure, error) {
	var payload measurePayload
	if err := json.Unmarshal([]byte(clip), &payload); err == nil && len(payload.Measures) > 0 {
		return payload.Measures, nil
	}
	var single tabcanvas.Measure
	if err := json.Unmarshal([]byte(clip), &single); err == nil && single.StepsPerBar > 0 {
		return []tabcanvas.Measure{single}, nil
	}
	return nil, fmt.Errorf("clipboard has no measures")
}

// PasteMeasuresOverwrite replaces measures starting at the cursor with the
// payload, appending when it runs past the document end.
func (m *Model) PasteMeasuresOverwrite(clip string) error {
	m.commitDigits()
	measures, err := parseMeasurePayload(clip)
	if err != nil {
		return err
	}
	m.PushUndo("range", false)

	idx := m.d.Cursor.Measure
	for k := range measures {
		if pos := idx + k; pos < len(m.d.Doc.Measures) {
			m.d.Doc.Measures[pos] = measures[k]
		} else {
			m.d.Doc.Measures = append(m.d.Doc.Measures, measures[k])
		}
	}
	m.d.Doc.EnsureMeasure()
	m.d.Cursor.Measure = idx
	m.clampCursor()
	m.changed = true
	return nil
}

// PasteMeasuresInsert inserts the payload before the cursor measure. The
// selection is left alone.
func (m *Model) PasteMeasuresInsert(clip string) error {
	m.commitDigits()
	measures, err := parseMeasurePayload(clip)
	if err != nil {
		return err
	}
	m.PushUndo("range", false)

	idx := m.d.Cursor.Measure
	for k := range measures {
		m.d.Doc.Insert(idx+k, measures[k])
	}
	m.d.Doc.EnsureMeasure()
	m.d.Cursor.Measure = idx
	m.clampCursor()
	m.changed = true
	return nil
}

// beatSteps is the number of steps in one beat at the given resolution:
// a quarter of the measure.
func beatSteps(spb int) int {
	bs := spb / 4
	if bs < 1 {
		bs = 1
	}
	return bs
}

// beatBounds returns the step range [start, end) of the beat containing
// step in the cursor measure.
func (m *Model) beatBounds() (int, int) {
	meas := &m.d.Doc.Measures[m.d.Cursor.Measure]
	spb := meas.StepsPerBar
	bs := beatSteps(spb)
	bi := m.d.Cursor.Step / bs
	if max := (spb - 1) / bs; bi > max {
		bi = max
	}
	start := bi * bs
	end := start + bs
	if end > spb {
		end = spb
	}
	return start, end
}

// CopyBeat serializes the beat under the cursor across all strings.
func (m *Model) CopyBeat() (string, error) {
	m.commitDigits()
	meas := &m.d.Doc.Measures[m.d.Cursor.Measure]
	start, end := m.beatBounds()

	grid := make([][]tabcanvas.Cell, tabcanvas.NumStrings)
	for s := 0; s < tabcanvas.NumStrings; s++ {
		grid[s] = append([]tabcanvas.Cell(nil), meas.Grid[s][start:end]...)
	}
	payload := beatPayload{
		Type:      "beat",
		Version:   tabcanvas.Version1,
		SPB:       meas.StepsPerBar,
		BeatSteps: end - start,
		Grid:      grid,
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshaling beat: %w", err)
	}
	return string(data), nil
}

// PasteBeatOverwrite replaces the beat under the cursor with the payload.
// The destination beat is cleared first. Pasted content is repaired to stay
// well-formed where it lands: a tie continuation anywhere but step 0 becomes
// a note, and holds with nothing sounding before them become empty.
func (m *Model) PasteBeatOverwrite(clip string) error {
	m.commitDigits()
	var payload beatPayload
	if err := json.Unmarshal([]byte(clip), &payload); err != nil || payload.Type != "beat" || len(payload.Grid) != tabcanvas.NumStrings {
		return fmt.Errorf("clipboard has no beat")
	}

	m.PushUndo("edit", false)

	meas := &m.d.Doc.Measures[m.d.Cursor.Measure]
	start, end := m.beatBounds()
	n := end - start
	if payload.BeatSteps < n {
		n = payload.BeatSteps
	}

	for s := 0; s < tabcanvas.NumStrings; s++ {
		for t := start; t < end; t++ {
			meas.Grid[s][t] = tabcanvas.Cell{}
		}

		// a hold at the start of the pasted beat needs something sounding
		// right before it
		prevOK := false
		if start > 0 {
			prevOK = meas.Grid[s][start-1].Kind != tabcanvas.Empty
		}

		row := payload.Grid[s]
		for i := 0; i < n && i < len(row); i++ {
			c := row[i]
			if c.Kind == tabcanvas.Tie && start+i != 0 {
				c.Kind = tabcanvas.Note
			}
			if c.Kind == tabcanvas.Hold && !prevOK {
				c = tabcanvas.Cell{}
			}
			meas.Grid[s][start+i] = c
		}
	}
	m.changed = true
	return nil
}
