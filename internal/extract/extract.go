// Package extract turns stored resume files into plain text.
package extract

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

var (
	// ErrFileNotFound means the resume file is missing at the resolved
	// storage path. Fatal for this analysis attempt; the resume record
	// itself is unaffected.
	ErrFileNotFound = errors.New("resume file not found")

	// ErrExtraction means the file exists but could not be parsed.
	ErrExtraction = errors.New("text extraction failed")
)

// Stored references accumulate redundant prefixes over re-uploads
// ("uploads/resumes/...", doubled slashes). Strip them before resolving.
var (
	leadingUploadsRe = regexp.MustCompile(`^/?uploads/`)
	leadingResumesRe = regexp.MustCompile(`^/?resumes/`)
	multiSlashRe     = regexp.MustCompile(`/+`)
)

// Extractor reads resume files from a storage root.
type Extractor struct {
	root string
}

// New creates an Extractor rooted at the given storage directory.
func New(root string) *Extractor {
	return &Extractor{root: root}
}

// CleanRef normalizes a stored file reference: drops redundant
// uploads/ and resumes/ prefixes and collapses duplicate slashes.
func CleanRef(ref string) string {
	ref = leadingUploadsRe.ReplaceAllString(ref, "")
	ref = leadingResumesRe.ReplaceAllString(ref, "")
	ref = multiSlashRe.ReplaceAllString(ref, "/")
	return strings.TrimPrefix(ref, "/")
}

// ResolvePath maps a stored reference to an absolute path under the
// storage root.
func (e *Extractor) ResolvePath(ref string) string {
	return filepath.Join(e.root, filepath.FromSlash(CleanRef(ref)))
}

// Text extracts plain text from the referenced resume file. PDFs go
// through the PDF parser; .txt files pass through verbatim. No side
// effects beyond reading the file.
func (e *Extractor) Text(ref string) (string, error) {
	path := e.ResolvePath(ref)

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return "", fmt.Errorf("%w: stat %s: %w", ErrExtraction, path, err)
	}

	if strings.EqualFold(filepath.Ext(path), ".txt") {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("%w: read %s: %w", ErrExtraction, path, err)
		}
		return string(data), nil
	}

	return pdfText(path, info.Size())
}

// pdfText extracts the concatenated page text of a PDF.
func pdfText(path string, size int64) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: open %s: %w", ErrExtraction, path, err)
	}
	defer f.Close()

	reader, err := pdf.NewReader(f, size)
	if err != nil {
		return "", fmt.Errorf("%w: parse %s: %w", ErrExtraction, path, err)
	}

	var b strings.Builder
	pages := reader.NumPage()
	if pages == 0 {
		return "", fmt.Errorf("%w: %s has no pages", ErrExtraction, path)
	}

	for i := 1; i <= pages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue // skip unreadable pages, keep what we can
		}
		b.WriteString(text)
		b.WriteString("\n")
	}

	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", fmt.Errorf("%w: no extractable text in %s", ErrExtraction, path)
	}
	return out, nil
}
