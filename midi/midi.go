// Package midi projects a tablature document into a sorted, delta-encoded
// MIDI event stream and serializes it as a minimal format-0 standard MIDI
// file: one header chunk, one track chunk.
package midi

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"sort"
)

// PPQ is the fixed resolution of the output file, in ticks per quarter note.
const PPQ = 480

// TicksPerMeasure is the length of one 4/4 measure at PPQ resolution.
const TicksPerMeasure = PPQ * 4

// Event is one MIDI event at an absolute tick. Data holds the complete
// message bytes, status byte included; the delta time is computed at
// serialization.
type Event struct {
	Tick int
	Data []byte
}

// AppendVarLen appends n to buf as a MIDI variable-length quantity:
// big-endian-first base-128 groups, continuation bit set on all but the
// last byte.
func AppendVarLen(buf []byte, n uint32) []byte {
	var b [5]byte
	b[0] = byte(n & 0x7f)
	i := 1
	for n >>= 7; n > 0; n >>= 7 {
		b[i] = byte(n&0x7f) | 0x80
		i++
	}
	for i--; i >= 0; i-- {
		buf = append(buf, b[i])
	}
	return buf
}

// WriteSMF sorts the events by tick (stably, so same-tick events keep their
// collection order), delta-encodes them, appends the end-of-track meta event
// and writes the complete format-0 file.
func WriteSMF(w io.Writer, events []Event) error {
	sorted := make([]Event, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Tick < sorted[j].Tick })

	var track []byte
	last := 0
	for _, e := range sorted {
		delta := e.Tick - last
		if delta < 0 {
			delta = 0
		}
		last = e.Tick
		track = AppendVarLen(track, uint32(delta))
		track = append(track, e.Data...)
	}
	track = AppendVarLen(track, 0)
	track = append(track, 0xFF, 0x2F, 0x00) // end of track

	var buf bytes.Buffer
	buf.WriteString("MThd")
	binary.Write(&buf, binary.BigEndian, uint32(6))
	binary.Write(&buf, binary.BigEndian, uint16(0)) // format 0
	binary.Write(&buf, binary.BigEndian, uint16(1)) // single track
	binary.Write(&buf, binary.BigEndian, uint16(PPQ))
	buf.WriteString("MTrk")
	binary.Write(&buf, binary.BigEndian, uint32(len(track)))
	buf.Write(track)

	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("writing midi data: %w", err)
	}
	return nil
}

// ExportFile encodes the document and writes it to path.
func ExportFile(path string, events []Event) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := WriteSMF(f, events); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}
	return nil
}
