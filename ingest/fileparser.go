package ingest

import (
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// FileParser extracts readable text from an attached file reference.
// Implementations must never fail: unsupported or corrupt input returns
// ok=false and ingestion continues without the attachment.
type FileParser interface {
	// ExtractText returns the text content of the referenced file.
	// ok is false when the file is unsupported, missing, or unreadable.
	ExtractText(ref string) (text string, ok bool)
}

// NoopFileParser ignores every attachment.
type NoopFileParser struct{}

// ExtractText always reports unsupported.
func (NoopFileParser) ExtractText(string) (string, bool) {
	return "", false
}

// TextFileParser reads plain-text attachments stored under the export
// root. Anything that is not valid UTF-8 text, or carries an unknown
// extension, is skipped.
type TextFileParser struct {
	root string
}

// NewTextFileParser creates a parser resolving refs relative to root.
func NewTextFileParser(root string) *TextFileParser {
	return &TextFileParser{root: root}
}

var textExtensions = map[string]bool{
	".txt":  true,
	".md":   true,
	".csv":  true,
	".log":  true,
	".json": true,
}

// ExtractText reads the referenced file if it looks like text.
func (p *TextFileParser) ExtractText(ref string) (string, bool) {
	if !textExtensions[strings.ToLower(filepath.Ext(ref))] {
		return "", false
	}

	path := filepath.Join(p.root, filepath.Clean(ref))
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	if !utf8.Valid(data) {
		return "", false
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", false
	}
	return text, true
}
