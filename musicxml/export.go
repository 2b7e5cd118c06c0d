// Package musicxml renders a tablature document as a two-part MusicXML 3.1
// score and reads scores with TAB technical markings back into documents.
// Part P1 carries conventional notation on a guitar-transposed G clef, part
// P2 carries the tablature staff. Grid time is converted to notation time at
// a fixed 12 divisions per quarter note.
package musicxml

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/ktakenos/tabcanvas"
)

// ExportOptions control the score header and optional lyric attachment.
// Lyrics holds one syllable per attack in reading order; a count mismatch
// against the document's attacks is logged as a warning, or returned as an
// error under Strict.
type ExportOptions struct {
	Title  string
	Lyrics []string
	Strict bool
}

var xmlEscaper = strings.NewReplacer(
	"&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "'", "&apos;",
)

// xmlWriter collects formatted lines and remembers the first write error so
// the emitters can stay unconditional.
type xmlWriter struct {
	w   *bufio.Writer
	err error
}

func (x *xmlWriter) line(format string, args ...any) {
	if x.err != nil {
		return
	}
	if len(args) > 0 {
		format = fmt.Sprintf(format, args...)
	}
	if _, err := x.w.WriteString(format); err != nil {
		x.err = err
		return
	}
	x.err = x.w.WriteByte('\n')
}

// Export writes the document as a score-partwise MusicXML file.
func Export(w io.Writer, doc *tabcanvas.Document, opts ExportOptions) error {
	title := opts.Title
	if title == "" {
		title = "TAB Export"
	}
	lyrics := opts.Lyrics
	if lyrics != nil {
		if _, err := ApplyLyrics(doc, lyrics, opts.Strict); err != nil {
			return err
		}
	}

	x := &xmlWriter{w: bufio.NewWriter(w)}
	x.line(`<?xml version="1.0" encoding="UTF-8" standalone="no"?>`)
	x.line(`<!DOCTYPE score-partwise PUBLIC "-//Recordare//DTD MusicXML 3.1 Partwise//EN" "http://www.musicxml.org/dtds/partwise.dtd">`)
	x.line(`<score-partwise version="3.1">`)
	x.line(`  <work><work-title>%s</work-title></work>`, xmlEscaper.Replace(title))
	x.line(`  <part-list>`)
	x.line(`    <score-part id="P1"><part-name>Guitar</part-name></score-part>`)
	x.line(`    <score-part id="P2"><part-name>Guitar TAB</part-name></score-part>`)
	x.line(`  </part-list>`)

	emitPart(x, doc, "P1", false, lyrics)
	emitPart(x, doc, "P2", true, nil)

	x.line(`</score-partwise>`)
	if x.err != nil {
		return fmt.Errorf("writing musicxml: %w", x.err)
	}
	return x.w.Flush()
}

// ExportFile writes the document to path.
func ExportFile(path string, doc *tabcanvas.Document, opts ExportOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := Export(f, doc, opts); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}

// noteEmit is one onset note heading into the emitter. The lyric, when
// non-empty, attaches to the first fragment only.
type noteEmit struct {
	pitch    int
	durDiv   int
	tieStop  bool
	tieStart bool
	tab      bool
	stringNo int
	fret     int
	chord    bool
	lyric    string
}

// emitNote splits the duration and writes one note element per fragment,
// tying consecutive fragments internally so they read as a single held note.
func emitNote(x *xmlWriter, n noteEmit) {
	frags := splitDuration(n.durDiv)
	for i, f := range frags {
		stop := n.tieStop || i > 0
		start := n.tieStart || i < len(frags)-1
		step, alter, octave := midiToPitch(n.pitch)

		x.line(`    <note>`)
		if n.chord {
			x.line(`      <chord/>`)
		}
		x.line(`      <pitch>`)
		x.line(`        <step>%s</step>`, step)
		if alter != 0 {
			x.line(`        <alter>%d</alter>`, alter)
		}
		x.line(`        <octave>%d</octave>`, octave)
		x.line(`      </pitch>`)
		x.line(`      <duration>%d</duration>`, f.div)
		x.line(`      <voice>1</voice>`)
		x.line(`      <staff>1</staff>`)
		if f.typ != "" {
			x.line(`      <type>%s</type>`, f.typ)
			for d := 0; d < f.dots; d++ {
				x.line(`      <dot/>`)
			}
		}
		if stop {
			x.line(`      <tie type="stop"/>`)
		}
		if start {
			x.line(`      <tie type="start"/>`)
		}
		if stop || start || n.tab {
			x.line(`      <notations>`)
			if start {
				x.line(`        <tied type="start"/>`)
			}
			if stop {
				x.line(`        <tied type="stop"/>`)
			}
			if n.tab {
				x.line(`        <technical>`)
				x.line(`          <string>%d</string>`, n.stringNo)
				x.line(`          <fret>%d</fret>`, n.fret)
				x.line(`        </technical>`)
			}
			x.line(`      </notations>`)
		}
		if i == 0 && !stop && n.lyric != "" {
			x.line(`      <lyric><syllabic>single</syllabic><text>%s</text></lyric>`, xmlEscaper.Replace(n.lyric))
		}
		x.line(`    </note>`)
	}
}

func emitForward(x *xmlWriter, durDiv int) {
	if durDiv <= 0 {
		return
	}
	x.line(`    <forward>`)
	x.line(`      <duration>%d</duration>`, durDiv)
	x.line(`    </forward>`)
}

// measureOnsets lists the steps where any string carries a head.
func measureOnsets(m *tabcanvas.Measure) []int {
	var onsets []int
	for st := 0; st < m.StepsPerBar; st++ {
		for s := 0; s < tabcanvas.NumStrings; s++ {
			if m.Grid[s][st].IsHead() {
				onsets = append(onsets, st)
				break
			}
		}
	}
	return onsets
}

// emitPart writes one single-voice part. Gaps between onsets advance through
// forward elements rather than rests, and simultaneous heads share an onset
// as a chord. Every note at an onset sounds until the next onset, so the
// visual rhythm stays single-voice even when hold runs differ per string.
func emitPart(x *xmlWriter, doc *tabcanvas.Document, partID string, tab bool, lyrics []string) {
	x.line(`  <part id="%s">`, partID)
	lyricIdx := 0

	for mi := range doc.Measures {
		m := &doc.Measures[mi]
		spb := m.StepsPerBar
		if spb <= 0 {
			spb = tabcanvas.DefaultStepsPerBar
		}
		x.line(`  <measure number="%d">`, mi+1)

		if mi == 0 {
			x.line(`    <attributes>`)
			x.line(`      <divisions>%d</divisions>`, Divisions)
			x.line(`      <key><fifths>0</fifths></key>`)
			x.line(`      <time><beats>4</beats><beat-type>4</beat-type></time>`)
			if tab {
				x.line(`      <clef><sign>TAB</sign><line>5</line></clef>`)
			} else {
				x.line(`      <clef><sign>G</sign><line>2</line><clef-octave-change>-1</clef-octave-change></clef>`)
			}
			x.line(`    </attributes>`)
		}

		stepPos := stepBoundaries(spb)
		onsets := measureOnsets(m)
		if len(onsets) == 0 {
			emitForward(x, measureDivLen)
			x.line(`  </measure>`)
			continue
		}

		cursor := 0
		for idx, t0 := range onsets {
			if t0 > cursor {
				emitForward(x, stepPos[t0]-stepPos[cursor])
			}
			t1 := spb
			if idx+1 < len(onsets) {
				t1 = onsets[idx+1]
			}
			durDiv := stepPos[t1] - stepPos[t0]
			if durDiv <= 0 {
				if t1 > cursor {
					cursor = t1
				}
				continue
			}

			first := true
			for s := 0; s < tabcanvas.NumStrings; s++ {
				c := m.Grid[s][t0]
				if !c.IsHead() {
					continue
				}

				var lyric string
				if first && c.Kind == tabcanvas.Note && lyricIdx < len(lyrics) {
					lyric = lyrics[lyricIdx]
					lyricIdx++
				}
				emitNote(x, noteEmit{
					pitch:    doc.Tuning[s] + c.Fret,
					durDiv:   durDiv,
					tieStop:  c.Kind == tabcanvas.Tie,
					tieStart: c.Kind == tabcanvas.Note && startsTie(doc, mi, s, t0),
					tab:      tab,
					stringNo: s + 1,
					fret:     c.Fret,
					chord:    !first,
					lyric:    lyric,
				})
				first = false
			}
			if t1 > cursor {
				cursor = t1
			}
		}
		if cursor < spb {
			emitForward(x, stepPos[spb]-stepPos[cursor])
		}
		x.line(`  </measure>`)
	}
	x.line(`  </part>`)
}

// startsTie reports whether the head's hold run lands on a same-fret tie
// continuation, in this measure or at step 0 of the next.
func startsTie(doc *tabcanvas.Document, mi, s, t0 int) bool {
	m := &doc.Measures[mi]
	fret := m.Grid[s][t0].Fret
	end := t0 + 1
	for end < m.StepsPerBar && m.Grid[s][end].Kind == tabcanvas.Hold {
		end++
	}
	if end < m.StepsPerBar {
		nxt := m.Grid[s][end]
		return nxt.Kind == tabcanvas.Tie && nxt.Fret == fret
	}
	if mi+1 < len(doc.Measures) {
		head := doc.Measures[mi+1].Grid[s][0]
		return head.Kind == tabcanvas.Tie && head.Fret == fret
	}
	return false
}

// ApplyLyrics validates a syllable list against the document and returns the
// number of attacks syllables can land on. A count mismatch is an error only
// under strict; otherwise it is logged and export proceeds, attaching
// syllables as far as they go.
func ApplyLyrics(doc *tabcanvas.Document, syllables []string, strict bool) (int, error) {
	slots := countLyricSlots(doc)
	if slots != len(syllables) {
		if strict {
			return slots, fmt.Errorf("lyric count mismatch: %d syllables for %d notes", len(syllables), slots)
		}
		log.Printf("warning: lyric count mismatch: %d syllables for %d notes", len(syllables), slots)
	}
	return slots, nil
}

// countLyricSlots counts the attacks a lyric syllable can land on: one per
// onset whose leading head is an attack rather than a tie continuation.
func countLyricSlots(doc *tabcanvas.Document) int {
	n := 0
	for mi := range doc.Measures {
		m := &doc.Measures[mi]
		for _, t0 := range measureOnsets(m) {
			for s := 0; s < tabcanvas.NumStrings; s++ {
				if c := m.Grid[s][t0]; c.IsHead() {
					if c.Kind == tabcanvas.Note {
						n++
					}
					break
				}
			}
		}
	}
	return n
}
