package musicxml

import (
	"encoding/xml"
	"fmt"
	"io"
	"log"
	"math"
	"strconv"

	"github.com/ktakenos/tabcanvas"
)

// xmlScore is the decoded score-partwise document. Measure children are kept
// in document order through the ",any" rule, since note, backup and forward
// elements advance a shared time cursor and may not be reordered.
type (
	xmlScore struct {
		Parts []xmlPart `xml:"part"`
	}

	xmlPart struct {
		ID       string       `xml:"id,attr"`
		Measures []xmlMeasure `xml:"measure"`
	}

	xmlMeasure struct {
		Items []xmlItem `xml:",any"`
	}

	xmlItem struct {
		XMLName   xml.Name
		Divisions int            `xml:"divisions"`
		Time      *xmlTime       `xml:"time"`
		Duration  int            `xml:"duration"`
		Chord     *struct{}      `xml:"chord"`
		Ties      []xmlTie       `xml:"tie"`
		Notations []xmlNotations `xml:"notations"`
	}

	xmlTime struct {
		Beats    int `xml:"beats"`
		BeatType int `xml:"beat-type"`
	}

	xmlTie struct {
		Type string `xml:"type,attr"`
	}

	xmlNotations struct {
		Tied      []xmlTie      `xml:"tied"`
		Technical *xmlTechnical `xml:"technical"`
	}

	xmlTechnical struct {
		String string `xml:"string"`
		Fret   string `xml:"fret"`
	}
)

// tabNote extracts the technical string and fret numbers, when both are
// present. Fret 0 is a valid open-string note, so presence is judged on the
// text being non-empty rather than on the value.
func (it *xmlItem) tabNote() (stringNo, fret int, ok bool) {
	if it.XMLName.Local != "note" {
		return 0, 0, false
	}
	for _, n := range it.Notations {
		if n.Technical == nil || n.Technical.String == "" || n.Technical.Fret == "" {
			continue
		}
		s, err1 := strconv.Atoi(n.Technical.String)
		f, err2 := strconv.Atoi(n.Technical.Fret)
		if err1 != nil || err2 != nil {
			continue
		}
		return s, f, true
	}
	return 0, 0, false
}

// tieStop reports whether the note is a tie continuation, judged from either
// the sounding tie elements or the notated tied elements. Writers disagree
// on which they emit.
func (it *xmlItem) tieStop() bool {
	for _, t := range it.Ties {
		if t.Type == "stop" {
			return true
		}
	}
	for _, n := range it.Notations {
		for _, t := range n.Tied {
			if t.Type == "stop" {
				return true
			}
		}
	}
	return false
}

// PartInfo summarizes one part for selection. TabNotes counts the notes
// carrying both a technical string and fret.
type PartInfo struct {
	Index    int
	ID       string
	Measures int
	TabNotes int
}

// ImportOptions select the source part. Part is 1-based; zero picks the part
// with the most TAB notes. Verbose logs per-measure placement decisions.
type ImportOptions struct {
	Part    int
	Verbose bool
}

func countTabNotes(p *xmlPart) int {
	n := 0
	for mi := range p.Measures {
		for i := range p.Measures[mi].Items {
			if _, _, ok := p.Measures[mi].Items[i].tabNote(); ok {
				n++
			}
		}
	}
	return n
}

func partInfos(score *xmlScore) []PartInfo {
	infos := make([]PartInfo, len(score.Parts))
	for i := range score.Parts {
		p := &score.Parts[i]
		infos[i] = PartInfo{Index: i + 1, ID: p.ID, Measures: len(p.Measures), TabNotes: countTabNotes(p)}
	}
	return infos
}

// ListParts parses the score and returns the part summaries without
// importing anything.
func ListParts(r io.Reader) ([]PartInfo, error) {
	var score xmlScore
	if err := xml.NewDecoder(r).Decode(&score); err != nil {
		return nil, fmt.Errorf("parsing musicxml: %w", err)
	}
	return partInfos(&score), nil
}

// Import reads a MusicXML score and reconstructs a tablature document from
// the part's technical string/fret markings. Each measure is quantized to 16
// steps, or 48 when any onset or duration falls off the 3-division grid.
// Tie-stop notes come back as tie continuations, and holds are painted only
// over cells no other note has claimed.
func Import(r io.Reader, opts ImportOptions) (*tabcanvas.Document, error) {
	var score xmlScore
	if err := xml.NewDecoder(r).Decode(&score); err != nil {
		return nil, fmt.Errorf("parsing musicxml: %w", err)
	}
	if len(score.Parts) == 0 {
		return nil, fmt.Errorf("no part elements in score")
	}

	chosen := 0
	if opts.Part > 0 {
		if opts.Part > len(score.Parts) {
			return nil, fmt.Errorf("part %d out of range 1..%d", opts.Part, len(score.Parts))
		}
		chosen = opts.Part - 1
	} else {
		best := -1
		for i, info := range partInfos(&score) {
			if info.TabNotes > best {
				best = info.TabNotes
				chosen = i
			}
		}
	}
	part := &score.Parts[chosen]
	if opts.Verbose {
		log.Printf("importing part %d id=%q, %d measures, %d tab notes",
			chosen+1, part.ID, len(part.Measures), countTabNotes(part))
	}

	doc := tabcanvas.NewDocument()
	doc.Measures = doc.Measures[:0]

	// Attributes persist until the next attributes element changes them.
	divisions, beats, beatType := Divisions, 4, 4

	for mi := range part.Measures {
		meas := &part.Measures[mi]
		for i := range meas.Items {
			it := &meas.Items[i]
			if it.XMLName.Local != "attributes" {
				continue
			}
			if it.Divisions > 0 {
				divisions = it.Divisions
			}
			if it.Time != nil && it.Time.Beats > 0 && it.Time.BeatType > 0 {
				beats, beatType = it.Time.Beats, it.Time.BeatType
			}
		}
		measureLen := int(math.Round(float64(divisions) * float64(beats) * 4 / float64(beatType)))
		if measureLen <= 0 {
			measureLen = divisions * 4
		}

		m := importMeasure(meas, measureLen, opts.Verbose, mi+1)
		doc.Measures = append(doc.Measures, m)
	}

	doc.EnsureMeasure()
	return doc, nil
}

func importMeasure(meas *xmlMeasure, measureLen int, verbose bool, number int) tabcanvas.Measure {
	// First pass decides the resolution: 48 steps when any tab note's onset
	// or duration breaks the 3-division quantum, 16 otherwise. Chord notes
	// sound at the onset of the preceding note, which has already advanced
	// the cursor, so that onset is carried separately.
	cursor, prevStart := 0, 0
	need48 := false
	for i := range meas.Items {
		it := &meas.Items[i]
		switch it.XMLName.Local {
		case "backup":
			cursor -= it.Duration
			continue
		case "forward":
			cursor += it.Duration
			continue
		case "note":
		default:
			continue
		}
		start := cursor
		if it.Chord != nil {
			start = prevStart
		}
		if _, _, ok := it.tabNote(); ok {
			if start%3 != 0 || it.Duration%3 != 0 {
				need48 = true
			}
		}
		if it.Chord == nil {
			prevStart = cursor
			cursor += it.Duration
		}
	}
	spb := tabcanvas.DefaultStepsPerBar
	if need48 {
		spb = 48
	}
	stepDiv := float64(measureLen) / float64(spb)
	if verbose {
		log.Printf("measure %d: %d divisions, %d steps per bar", number, measureLen, spb)
	}

	m := tabcanvas.NewMeasure(spb)
	cursor, prevStart = 0, 0
	for i := range meas.Items {
		it := &meas.Items[i]
		switch it.XMLName.Local {
		case "backup":
			cursor -= it.Duration
			continue
		case "forward":
			cursor += it.Duration
			continue
		case "note":
		default:
			continue
		}
		start := cursor
		if it.Chord != nil {
			start = prevStart
		}
		if stringNo, fret, ok := it.tabNote(); ok {
			placeImported(&m, stringNo, fret, start, it.Duration, stepDiv, it.tieStop())
		}
		if it.Chord == nil {
			prevStart = cursor
			cursor += it.Duration
		}
	}
	return m
}

func placeImported(m *tabcanvas.Measure, stringNo, fret, startDiv, durDiv int, stepDiv float64, tie bool) {
	s := stringNo - 1
	if s < 0 || s >= tabcanvas.NumStrings || durDiv <= 0 {
		return
	}
	start := int(math.Round(float64(startDiv) / stepDiv))
	if start < 0 || start >= m.StepsPerBar {
		return
	}
	durSteps := int(math.Round(float64(durDiv) / stepDiv))
	if durSteps < 1 {
		durSteps = 1
	}

	if tie {
		m.Grid[s][start] = tabcanvas.TieCell(fret)
	} else {
		m.Grid[s][start] = tabcanvas.NoteCell(fret)
	}
	for k := 1; k < durSteps; k++ {
		t := start + k
		if t >= m.StepsPerBar {
			break
		}
		if m.Grid[s][t].Kind == tabcanvas.Empty {
			m.Grid[s][t] = tabcanvas.Cell{Kind: tabcanvas.Hold}
		}
	}
}
