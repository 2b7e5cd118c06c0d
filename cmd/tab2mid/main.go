package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ktakenos/tabcanvas/editor"
	"github.com/ktakenos/tabcanvas/midi"
	"github.com/ktakenos/tabcanvas/version"
)

func main() {
	outPath := flag.String("o", "", "Output filename. Defaults to the input with a .mid extension.")
	bpm := flag.Int("bpm", 0, "Override the tempo stored in the document.")
	prog := flag.Int("prog", -1, "Override the General MIDI program number (0-127).")
	transpose := flag.Int("transpose", 0, "Extra semitone offset on top of the document's transpose.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(1)
	}

	inPath := flag.Arg(0)
	doc, err := editor.LoadDocument(inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if *bpm != 0 {
		doc.Meta.BPM = *bpm
		doc.Meta.BPM = doc.Meta.ClampBPM()
	}
	if *prog >= 0 {
		doc.Meta.Program = *prog
		doc.Meta.Program = doc.Meta.ClampProgram()
	}
	doc.Meta.Transpose += *transpose

	out := *outPath
	if out == "" {
		out = strings.TrimSuffix(inPath, filepath.Ext(inPath)) + ".mid"
	}
	if err := midi.ExportFile(out, midi.Encode(doc)); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(out)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Tablature to MIDI converter. Input a .json or .yml document, outputs a format-0 .mid file at %d PPQ.\nUsage: %s [flags] path\n", midi.PPQ, os.Args[0])
	flag.PrintDefaults()
}
