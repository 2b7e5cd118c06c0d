package editor

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ktakenos/tabcanvas"
	"gopkg.in/yaml.v3"
)

// ReadDocument parses a document from JSON, falling back to YAML, so files
// load regardless of which format they were saved in.
func ReadDocument(data []byte) (*tabcanvas.Document, error) {
	var doc tabcanvas.Document
	var errJSON, errYaml error
	if errJSON = json.Unmarshal(data, &doc); errJSON != nil {
		if errYaml = yaml.Unmarshal(data, &doc); errYaml != nil {
			return nil, fmt.Errorf("parsing document failed as json (%v) and as yaml (%v)", errJSON, errYaml)
		}
	}
	doc.EnsureMeasure()
	return &doc, nil
}

// WriteDocument serializes the document, YAML for .yml/.yaml paths and
// indented JSON otherwise.
func WriteDocument(doc *tabcanvas.Document, path string) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return yaml.Marshal(doc)
	default:
		return json.MarshalIndent(doc, "", "  ")
	}
}

// LoadDocument reads and parses the file at path.
func LoadDocument(path string) (*tabcanvas.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	doc, err := ReadDocument(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// SaveDocument writes the document to path in the format its extension
// implies.
func SaveDocument(doc *tabcanvas.Document, path string) error {
	data, err := WriteDocument(doc, path)
	if err != nil {
		return fmt.Errorf("serializing document: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Open loads a file into the model. The previous state stays on the undo
// stack.
func (m *Model) Open(path string) error {
	m.commitDigits()
	doc, err := LoadDocument(path)
	if err != nil {
		return err
	}
	m.PushUndo("range", false)
	m.d.Doc = *doc
	m.d.Cursor = Cursor{}
	m.d.SelStart, m.d.SelEnd = -1, -1
	m.d.FilePath = path
	m.changed = false
	return nil
}

// Save writes back to the file the model was loaded from or last saved to.
func (m *Model) Save() error {
	if m.d.FilePath == "" {
		return errors.New("no file path; use SaveAs")
	}
	return m.SaveAs(m.d.FilePath)
}

// SaveAs writes to path and makes it the model's file.
func (m *Model) SaveAs(path string) error {
	m.commitDigits()
	if err := SaveDocument(&m.d.Doc, path); err != nil {
		return err
	}
	m.d.FilePath = path
	m.changed = false
	return nil
}
