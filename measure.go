package tabcanvas

import "math"

// Measure is a fixed 6 x StepsPerBar grid of cells. StepsPerBar is
// measure-local; resizing one measure never affects its neighbors.
type Measure struct {
	StepsPerBar int                `json:"steps_per_bar" yaml:"steps_per_bar"`
	Grid        [NumStrings][]Cell `json:"grid" yaml:"grid,flow"`
}

// NewMeasure returns an all-Empty measure with the given resolution.
func NewMeasure(stepsPerBar int) Measure {
	if stepsPerBar < 1 {
		stepsPerBar = DefaultStepsPerBar
	}
	var m Measure
	m.StepsPerBar = stepsPerBar
	for s := range m.Grid {
		m.Grid[s] = make([]Cell, stepsPerBar)
	}
	return m
}

// Copy makes a deep copy of a Measure.
func (m *Measure) Copy() Measure {
	ret := Measure{StepsPerBar: m.StepsPerBar}
	for s, row := range m.Grid {
		newRow := make([]Cell, len(row))
		copy(newRow, row)
		ret.Grid[s] = newRow
	}
	return ret
}

// Resize rebuilds the grid at a new resolution. Only Note/Tie heads survive:
// each head is re-placed at round(step * new/old), clamped to the new grid.
// Hold runs are derived data and are not reconstructed; when two heads land
// on the same destination step the later one wins. Callers that need exact
// duration preservation must re-derive hold runs afterwards.
func (m *Measure) Resize(newSteps int) {
	oldSteps := m.StepsPerBar
	if newSteps < 1 || newSteps == oldSteps {
		return
	}

	type head struct {
		string_ int
		step    int
		cell    Cell
	}
	var heads []head
	for s := range m.Grid {
		for t, c := range m.Grid[s] {
			if c.IsHead() {
				heads = append(heads, head{s, t, c})
			}
		}
	}

	m.StepsPerBar = newSteps
	for s := range m.Grid {
		m.Grid[s] = make([]Cell, newSteps)
	}

	for _, h := range heads {
		nt := int(math.Round(float64(h.step) * float64(newSteps) / float64(oldSteps)))
		nt = clamp(nt, 0, newSteps-1)
		m.Grid[h.string_][nt] = h.cell
	}
}

// normalize repairs rows that came from a persisted file: every row is
// brought to exactly StepsPerBar cells.
func (m *Measure) normalize() {
	if m.StepsPerBar < 1 {
		m.StepsPerBar = DefaultStepsPerBar
	}
	for s := range m.Grid {
		row := m.Grid[s]
		if len(row) > m.StepsPerBar {
			row = row[:m.StepsPerBar]
		}
		for len(row) < m.StepsPerBar {
			row = append(row, Cell{})
		}
		m.Grid[s] = row
	}
}
