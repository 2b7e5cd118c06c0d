package musicxml

// Sharp-only spelling: every black key is the sharpened step below it.
var (
	stepNames = [12]string{"C", "C", "D", "D", "E", "F", "F", "G", "G", "A", "A", "B"}
	alters    = [12]int{0, 1, 0, 1, 0, 0, 1, 0, 1, 0, 1, 0}
)

// midiToPitch maps a MIDI note number to MusicXML pitch elements. alter is 0
// for naturals and is then omitted from the output. Octave follows the
// convention where middle C (60) is octave 4.
func midiToPitch(note int) (step string, alter, octave int) {
	pc := ((note % 12) + 12) % 12
	return stepNames[pc], alters[pc], note/12 - 1
}
