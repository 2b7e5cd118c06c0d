package tabcanvas_test

import (
	"encoding/json"
	"testing"

	"github.com/ktakenos/tabcanvas"
	"gopkg.in/yaml.v3"
)

func TestCopyIsDeep(t *testing.T) {
	d := tabcanvas.NewDocument()
	d.PlaceNote(0, 0, 0, 3, 4)

	cp := d.Copy()
	cp.Measures[0].Grid[0][0] = tabcanvas.NoteCell(12)
	cp.Measures[0].Resize(48)

	if c := d.Measures[0].Grid[0][0]; c.Fret != 3 {
		t.Fatalf("mutating the copy leaked into the original: fret %d", c.Fret)
	}
	if d.Measures[0].StepsPerBar != 16 {
		t.Fatalf("resizing the copy leaked into the original")
	}
}

func TestDeleteRangeKeepsDocumentNonEmpty(t *testing.T) {
	d := tabcanvas.NewDocument()
	d.Append()
	d.Append()
	d.DeleteRange(0, 2)

	if len(d.Measures) != 1 {
		t.Fatalf("expected auto-repaired single measure, got %d", len(d.Measures))
	}
	if d.Measures[0].StepsPerBar != 16 {
		t.Fatalf("repair measure has %d steps", d.Measures[0].StepsPerBar)
	}
}

func TestDeleteLastMeasureResetsIt(t *testing.T) {
	d := tabcanvas.NewDocument()
	d.Measures[0].Resize(48)
	d.PlaceNote(0, 0, 0, 3, 1)
	d.Delete(0)

	if len(d.Measures) != 1 {
		t.Fatalf("got %d measures", len(d.Measures))
	}
	if d.Measures[0].StepsPerBar != 48 {
		t.Fatalf("reset measure should keep its resolution, got %d", d.Measures[0].StepsPerBar)
	}
	if d.Measures[0].Grid[0][0].Kind != tabcanvas.Empty {
		t.Fatal("reset measure should be empty")
	}
}

func TestInsertBlankInheritsResolution(t *testing.T) {
	d := tabcanvas.NewDocument()
	d.Measures[0].Resize(48)
	d.InsertBlank(0)

	if len(d.Measures) != 2 {
		t.Fatalf("got %d measures", len(d.Measures))
	}
	if d.Measures[0].StepsPerBar != 48 {
		t.Fatalf("inserted measure has %d steps, expected 48", d.Measures[0].StepsPerBar)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	d := tabcanvas.NewDocument()
	d.PlaceNote(0, 0, 2, 3, 2)
	d.PlaceNote(0, 5, 0, 0, 18)
	d.Meta.BPM = 90
	d.Meta.Program = 33
	d.Meta.Transpose = -12

	data, err := json.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var back tabcanvas.Document
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	back.EnsureMeasure()

	if len(back.Measures) != len(d.Measures) {
		t.Fatalf("measure count %d != %d", len(back.Measures), len(d.Measures))
	}
	if c := back.Measures[1].Grid[5][0]; c.Kind != tabcanvas.Tie || c.Fret != 0 {
		t.Fatalf("tie head lost in round trip: %v fret %d", c.Kind, c.Fret)
	}
	if back.Meta != d.Meta {
		t.Fatalf("meta %+v != %+v", back.Meta, d.Meta)
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	d := tabcanvas.NewDocument()
	d.PlaceNote(0, 1, 4, 7, 4)

	data, err := yaml.Marshal(d)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var back tabcanvas.Document
	if err := yaml.Unmarshal(data, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	back.EnsureMeasure()

	if c := back.Measures[0].Grid[1][4]; c.Kind != tabcanvas.Note || c.Fret != 7 {
		t.Fatalf("head lost in yaml round trip: %v fret %d", c.Kind, c.Fret)
	}
	if c := back.Measures[0].Grid[1][5]; c.Kind != tabcanvas.Hold {
		t.Fatalf("hold lost in yaml round trip: %v", c.Kind)
	}
}

func TestCellJSONFormat(t *testing.T) {
	data, err := json.Marshal(tabcanvas.NoteCell(3))
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"kind":"note","fret":3}` {
		t.Fatalf("note cell marshaled as %s", data)
	}
	data, err = json.Marshal(tabcanvas.Cell{Kind: tabcanvas.Hold})
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"kind":"hold","fret":null}` {
		t.Fatalf("hold cell marshaled as %s", data)
	}
}
