package tabcanvas

type (
	// Document is a non-empty ordered sequence of measures plus the tuning
	// table and export metadata. It is the unit of persistence: marshaling a
	// Document as JSON produces the same file format the original canvas
	// editor reads and writes.
	Document struct {
		Version  int              `json:"version" yaml:"version"`
		Tuning   [NumStrings]int  `json:"tuning_midi" yaml:"tuning_midi,flow"`
		Measures []Measure        `json:"measures" yaml:"measures"`
		Meta     Meta             `json:"meta" yaml:"meta"`
	}

	// Meta carries the playback/export settings that travel with the
	// document but do not affect the grid itself.
	Meta struct {
		BPM       int    `json:"bpm" yaml:"bpm"`
		Program   int    `json:"midi_prog" yaml:"midi_prog"`
		Transpose int    `json:"transpose" yaml:"transpose"`
		Preset    string `json:"midi_preset,omitempty" yaml:"midi_preset,omitempty"`
	}

	// Pos addresses one step in the document: measure index plus step index
	// within that measure. The string index is passed separately, as nearly
	// every operation works on a single string at a time.
	Pos struct {
		Measure int
		Step    int
	}
)

// Format versions; currently there is only one.
const Version1 = 1

const (
	DefaultBPM     = 120
	MinBPM         = 30
	MaxBPM         = 300
	DefaultProgram = 25 // GM acoustic guitar (steel)
)

// NewDocument returns a document with a single empty 16-step measure,
// standard tuning and default metadata.
func NewDocument() *Document {
	return &Document{
		Version:  Version1,
		Tuning:   StandardTuning,
		Measures: []Measure{NewMeasure(DefaultStepsPerBar)},
		Meta:     Meta{BPM: DefaultBPM, Program: DefaultProgram},
	}
}

// Copy makes a deep copy of a Document.
func (d *Document) Copy() Document {
	measures := make([]Measure, len(d.Measures))
	for i := range d.Measures {
		measures[i] = d.Measures[i].Copy()
	}
	return Document{Version: d.Version, Tuning: d.Tuning, Measures: measures, Meta: d.Meta}
}

// EnsureMeasure repairs the document so it always contains at least one
// measure, and normalizes rows loaded from a persisted file.
func (d *Document) EnsureMeasure() {
	if len(d.Measures) == 0 {
		d.Measures = append(d.Measures, NewMeasure(DefaultStepsPerBar))
	}
	for i := range d.Measures {
		d.Measures[i].normalize()
	}
	if d.Version == 0 {
		d.Version = Version1
	}
	var zero [NumStrings]int
	if d.Tuning == zero {
		d.Tuning = StandardTuning
	}
}

// ClampBPM returns the BPM clamped to the supported range, defaulting when
// unset.
func (m Meta) ClampBPM() int {
	if m.BPM == 0 {
		return DefaultBPM
	}
	return clamp(m.BPM, MinBPM, MaxBPM)
}

// ClampProgram returns the GM program number clamped to 0..127.
func (m Meta) ClampProgram() int { return clamp(m.Program, 0, 127) }

// Append adds an empty measure at the end, inheriting the resolution of the
// current last measure.
func (d *Document) Append() {
	spb := DefaultStepsPerBar
	if len(d.Measures) > 0 {
		spb = d.Measures[len(d.Measures)-1].StepsPerBar
	}
	d.Measures = append(d.Measures, NewMeasure(spb))
}

// InsertBlank inserts an empty measure before index i, inheriting the
// resolution of the measure currently at that index.
func (d *Document) InsertBlank(i int) {
	i = clamp(i, 0, len(d.Measures))
	spb := DefaultStepsPerBar
	if len(d.Measures) > 0 {
		spb = d.Measures[clamp(i, 0, len(d.Measures)-1)].StepsPerBar
	}
	d.Measures = append(d.Measures, Measure{})
	copy(d.Measures[i+1:], d.Measures[i:])
	d.Measures[i] = NewMeasure(spb)
}

// Insert inserts a measure value before index i.
func (d *Document) Insert(i int, m Measure) {
	i = clamp(i, 0, len(d.Measures))
	d.Measures = append(d.Measures, Measure{})
	copy(d.Measures[i+1:], d.Measures[i:])
	d.Measures[i] = m
}

// Delete removes the measure at index i. Deleting the last remaining measure
// replaces it with an empty one of the same resolution.
func (d *Document) Delete(i int) {
	if i < 0 || i >= len(d.Measures) {
		return
	}
	if len(d.Measures) == 1 {
		d.Measures[0] = NewMeasure(d.Measures[0].StepsPerBar)
		return
	}
	d.Measures = append(d.Measures[:i], d.Measures[i+1:]...)
}

// DeleteRange removes measures a..b inclusive, then repairs the document if
// it became empty.
func (d *Document) DeleteRange(a, b int) {
	if len(d.Measures) == 0 {
		d.EnsureMeasure()
		return
	}
	a = clamp(a, 0, len(d.Measures)-1)
	b = clamp(b, 0, len(d.Measures)-1)
	if a > b {
		a, b = b, a
	}
	d.Measures = append(d.Measures[:a], d.Measures[b+1:]...)
	d.EnsureMeasure()
}

// Next returns the position one step forward of p, crossing into the next
// measure when p is the last step of its measure. ok is false past the end
// of the document.
func (d *Document) Next(p Pos) (Pos, bool) {
	if p.Measure < 0 || p.Measure >= len(d.Measures) {
		return Pos{}, false
	}
	if p.Step+1 < d.Measures[p.Measure].StepsPerBar {
		return Pos{p.Measure, p.Step + 1}, true
	}
	if p.Measure+1 >= len(d.Measures) {
		return Pos{}, false
	}
	return Pos{p.Measure + 1, 0}, true
}

// Prev returns the position one step backward of p, crossing into the
// previous measure when p is at step 0. ok is false before the start of the
// document.
func (d *Document) Prev(p Pos) (Pos, bool) {
	if p.Measure < 0 || p.Measure >= len(d.Measures) {
		return Pos{}, false
	}
	if p.Step > 0 {
		return Pos{p.Measure, p.Step - 1}, true
	}
	if p.Measure == 0 {
		return Pos{}, false
	}
	return Pos{p.Measure - 1, d.Measures[p.Measure-1].StepsPerBar - 1}, true
}

// clampIndex clamps a (measure, string, step) triple into the grid. The core
// favors silent clamping over failure for out-of-range indices.
func (d *Document) clampIndex(mi, s, step int) (int, int, int) {
	mi = clamp(mi, 0, len(d.Measures)-1)
	s = clamp(s, 0, NumStrings-1)
	step = clamp(step, 0, d.Measures[mi].StepsPerBar-1)
	return mi, s, step
}

// Cell returns the cell at the given (clamped) coordinates.
func (d *Document) Cell(mi, s, step int) Cell {
	mi, s, step = d.clampIndex(mi, s, step)
	return d.Measures[mi].Grid[s][step]
}
