package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ktakenos/tabcanvas/editor"
	"github.com/ktakenos/tabcanvas/musicxml"
	"github.com/ktakenos/tabcanvas/version"
)

func main() {
	outPath := flag.String("o", "", "Output filename. Defaults to the input with a .json extension.")
	part := flag.Int("part", 0, "1-based part to import. Default picks the part with the most TAB notes.")
	listParts := flag.Bool("list-parts", false, "List the parts in the score and exit.")
	verbose := flag.Bool("verbose", false, "Log per-measure import decisions.")
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
	f, err := os.Open(inPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	if *listParts {
		infos, err := musicxml.ListParts(f)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, "index, id, measures, TAB-notes")
		for _, info := range infos {
			fmt.Fprintf(os.Stderr, "%d: %s, measures=%d, TAB-notes=%d\n", info.Index, info.ID, info.Measures, info.TabNotes)
		}
		return
	}

	doc, err := musicxml.Import(f, musicxml.ImportOptions{Part: *part, Verbose: *verbose})
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	out := *outPath
	if out == "" {
		out = strings.TrimSuffix(inPath, filepath.Ext(inPath)) + ".json"
	}
	if err := editor.SaveDocument(doc, out); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(out)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "MusicXML to tablature converter. Reads the TAB string/fret markings of a score into a grid document.\nUsage: %s [flags] path\n", os.Args[0])
	flag.PrintDefaults()
}
