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
	outPath := flag.String("o", "", "Output filename. Defaults to the input with a .musicxml extension.")
	title := flag.String("title", "", "Work title for the score header.")
	lyricsPath := flag.String("lyrics", "", "Text file of space-separated syllables to attach to the pitched part, one per attack.")
	strict := flag.Bool("strict", false, "Fail when the syllable count does not match the attack count, instead of warning.")
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

	opts := musicxml.ExportOptions{Title: *title, Strict: *strict}
	if *lyricsPath != "" {
		data, err := os.ReadFile(*lyricsPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: reading lyrics: %v\n", err)
			os.Exit(1)
		}
		opts.Lyrics = strings.Fields(string(data))
	}

	out := *outPath
	if out == "" {
		out = strings.TrimSuffix(inPath, filepath.Ext(inPath)) + ".musicxml"
	}
	if err := musicxml.ExportFile(out, doc, opts); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(out)
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Tablature to MusicXML converter. Input a .json or .yml document, outputs a two-part score (notation + TAB).\nUsage: %s [flags] path\n", os.Args[0])
	flag.PrintDefaults()
}
