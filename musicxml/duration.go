package musicxml

// Divisions is the notation-time quantum: 12 divisions per quarter note, so
// a 4/4 measure spans 48 divisions. It is independent of a measure's
// StepsPerBar.
const Divisions = 12

// measureDivLen is the length of one 4/4 measure in divisions.
const measureDivLen = Divisions * 4

// fragment is one emitted duration chunk. typ is the MusicXML note type
// name, or empty for a remainder too small to match any candidate (1 or 2
// divisions); such fragments carry a duration but no type element.
type fragment struct {
	div  int
	typ  string
	dots int
}

// durationTable lists the canonical durations the splitter may emit,
// largest first. Values MuseScore renders without complaint.
var durationTable = []fragment{
	{48, "whole", 0},
	{36, "half", 1},
	{24, "half", 0},
	{18, "quarter", 1},
	{12, "quarter", 0},
	{9, "eighth", 1},
	{6, "eighth", 0},
	{3, "16th", 0},
}

// splitDuration decomposes div greedily into table candidates. Whatever
// remains unmatchable is emitted as a single untyped fragment. The caller
// ties consecutive fragments together so the split stays one audible note.
func splitDuration(div int) []fragment {
	var out []fragment
	remain := div
	for remain > 0 {
		found := false
		for _, c := range durationTable {
			if c.div <= remain {
				out = append(out, c)
				remain -= c.div
				found = true
				break
			}
		}
		if !found {
			out = append(out, fragment{div: remain})
			break
		}
	}
	return out
}

// stepBoundaries maps step indices 0..spb to division offsets within the
// measure. Ends are pinned so the boundaries always sum to a full measure
// regardless of rounding. Rounding is half-up; at 16 and 48 steps per bar
// every boundary is an exact integer, so the mode only matters for other
// resolutions.
func stepBoundaries(spb int) []int {
	pos := make([]int, spb+1)
	for i := range pos {
		pos[i] = int(float64(i)*float64(measureDivLen)/float64(spb) + 0.5)
	}
	pos[0] = 0
	pos[spb] = measureDivLen
	return pos
}
