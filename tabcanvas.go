// Package tabcanvas implements the timeline engine of a guitar/bass
// tablature editor: a grid-based note model with note/hold/tie state, the
// operations that place, delete and resolve notes across measure boundaries,
// and deep-copyable value types suitable for whole-document snapshotting.
//
// The package contains no I/O and no UI coupling; encoders for MIDI and
// MusicXML live in the midi and musicxml subpackages, and the mutable editing
// session (cursor, selection, undo) lives in the editor subpackage.
package tabcanvas

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// NumStrings is the number of strings on the instrument. The grid always has
// exactly this many rows; there are no partial-string measures.
const NumStrings = 6

// DefaultStepsPerBar is the resolution of a freshly created measure. The
// editor works in 16ths by default; 48 steps per bar is used when triplet
// resolution is needed.
const DefaultStepsPerBar = 16

// StandardTuning is the open-string MIDI note for each string, index 0 being
// the 1st (thinnest) string: E4 B3 G3 D3 A2 E2.
var StandardTuning = [NumStrings]int{64, 59, 55, 50, 45, 40}

// StringNames are the conventional names of the strings, 1st to 6th.
var StringNames = [NumStrings]string{"e", "B", "G", "D", "A", "E"}

type (
	// CellKind enumerates the four states a grid cell can be in. Only Note
	// and Tie carry a fret; use the constructors below to keep the pairing
	// honest.
	CellKind int

	// Cell is one slot on one string at one time-step. A Note sounds a new
	// pitch. A Tie continues a note of the same fret across a measure
	// boundary; it renders as a head but is not a new attack. A Hold
	// continues the head immediately behind it and carries no pitch of its
	// own.
	Cell struct {
		Kind CellKind
		Fret int
	}
)

const (
	Empty CellKind = iota
	Hold
	Note
	Tie
)

// NoteCell returns a Note cell sounding the given fret.
func NoteCell(fret int) Cell { return Cell{Kind: Note, Fret: fret} }

// TieCell returns a Tie head continuing a prior note of the given fret.
func TieCell(fret int) Cell { return Cell{Kind: Tie, Fret: fret} }

// IsHead reports whether the cell anchors a sounding event, i.e. is a Note
// or Tie.
func (c Cell) IsHead() bool { return c.Kind == Note || c.Kind == Tie }

// HasFret reports whether the cell's Fret field is meaningful. Empty and
// Hold cells carry no fret.
func (c Cell) HasFret() bool { return c.IsHead() }

func (k CellKind) String() string {
	switch k {
	case Hold:
		return "hold"
	case Note:
		return "note"
	case Tie:
		return "tie"
	}
	return "empty"
}

func parseCellKind(s string) (CellKind, error) {
	switch s {
	case "empty", "":
		return Empty, nil
	case "hold":
		return Hold, nil
	case "note":
		return Note, nil
	case "tie":
		return Tie, nil
	}
	return Empty, fmt.Errorf("unknown cell kind %q", s)
}

// cellFile is the persisted form of a Cell; kind is a lower-case string and
// fret is null for kinds that carry no fret, so the files stay byte
// compatible with the original editor's JSON documents.
type cellFile struct {
	Kind string `json:"kind" yaml:"kind"`
	Fret *int   `json:"fret" yaml:"fret"`
}

func (c Cell) file() cellFile {
	f := cellFile{Kind: c.Kind.String()}
	if c.IsHead() {
		fret := c.Fret
		f.Fret = &fret
	}
	return f
}

func (c *Cell) fromFile(f cellFile) error {
	kind, err := parseCellKind(f.Kind)
	if err != nil {
		return err
	}
	c.Kind = kind
	c.Fret = 0
	if c.IsHead() && f.Fret != nil {
		c.Fret = *f.Fret
	}
	return nil
}

func (c Cell) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.file())
}

func (c *Cell) UnmarshalJSON(data []byte) error {
	var f cellFile
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	return c.fromFile(f)
}

func (c Cell) MarshalYAML() (interface{}, error) {
	return c.file(), nil
}

func (c *Cell) UnmarshalYAML(value *yaml.Node) error {
	var f cellFile
	if err := value.Decode(&f); err != nil {
		return err
	}
	return c.fromFile(f)
}

func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
