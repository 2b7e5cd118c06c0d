package midi

import (
	"math"

	"github.com/ktakenos/tabcanvas"
)

const noteVelocity = 100

// Encode projects the document grid into an event stream: a tempo meta
// event and a program change at tick 0, then a note-on/note-off pair for
// every Note head. Tie heads are continuations, not attacks, and contribute
// no events of their own; their duration is folded into the note-off tick of
// the chain's first Note. Step ticks are computed per measure, as the
// resolution may vary from measure to measure.
func Encode(doc *tabcanvas.Document) []Event {
	mpqn := 60_000_000 / doc.Meta.ClampBPM()
	events := []Event{
		{Tick: 0, Data: []byte{0xFF, 0x51, 0x03, byte(mpqn >> 16), byte(mpqn >> 8), byte(mpqn)}},
		{Tick: 0, Data: []byte{0xC0, byte(doc.Meta.ClampProgram())}},
	}

	for mi := range doc.Measures {
		m := &doc.Measures[mi]
		stepTick := float64(TicksPerMeasure) / float64(m.StepsPerBar)
		for s := 0; s < tabcanvas.NumStrings; s++ {
			for st, c := range m.Grid[s] {
				if c.Kind != tabcanvas.Note {
					continue
				}
				pitch := clampPitch(doc.Tuning[s] + c.Fret + doc.Meta.Transpose)
				start := int(math.Round(float64(mi)*TicksPerMeasure + float64(st)*stepTick))
				end := endTick(doc, mi, s, st)
				events = append(events,
					Event{Tick: start, Data: []byte{0x90, byte(pitch), noteVelocity}},
					Event{Tick: end, Data: []byte{0x80, byte(pitch), 0}})
			}
		}
	}
	return events
}

// endTick resolves where the note's off event lands, walking holds and tie
// chains through the duration resolver. A note that runs off the final
// measure closes at the document's last tick.
func endTick(doc *tabcanvas.Document, mi, s, st int) int {
	end, ok := doc.NoteEndPos(mi, s, st)
	if !ok {
		return len(doc.Measures) * TicksPerMeasure
	}
	stepTick := float64(TicksPerMeasure) / float64(doc.Measures[end.Measure].StepsPerBar)
	return int(math.Round(float64(end.Measure)*TicksPerMeasure + float64(end.Step)*stepTick))
}

func clampPitch(p int) int {
	if p < 0 {
		return 0
	}
	if p > 127 {
		return 127
	}
	return p
}
