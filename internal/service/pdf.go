package service

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// ErrNotFound marks client-facing "file does not exist" failures.
var ErrNotFound = errors.New("not found")

// ExtractPages returns the plain text of each readable page, 0-based.
func ExtractPages(path string) ([]PageText, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	var pages []PageText
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			log.Printf("[pdf] Skipping unreadable page %d of %s: %v", i, filepath.Base(path), err)
			continue
		}
		pages = append(pages, PageText{Page: i - 1, Text: text})
	}
	return pages, nil
}

// ExtractText returns the whole document's text, pages joined by blank lines.
func ExtractText(path string) (string, error) {
	pages, err := ExtractPages(path)
	if err != nil {
		return "", err
	}
	texts := make([]string, 0, len(pages))
	for _, p := range pages {
		texts = append(texts, p.Text)
	}
	return strings.Join(texts, "\n\n"), nil
}

// MergePDFs concatenates the named PDFs in order into outputName inside
// uploadDir and returns the output path. Any missing input fails with
// ErrNotFound before anything is written.
func MergePDFs(uploadDir string, filenames []string, outputName string) (string, error) {
	if !strings.HasSuffix(outputName, ".pdf") {
		outputName += ".pdf"
	}

	paths := make([]string, 0, len(filenames))
	for _, name := range filenames {
		p := filepath.Join(uploadDir, name)
		if _, err := os.Stat(p); err != nil {
			return "", fmt.Errorf("file %s: %w", name, ErrNotFound)
		}
		paths = append(paths, p)
	}

	outputPath := filepath.Join(uploadDir, outputName)
	if err := api.MergeCreateFile(paths, outputPath, false, nil); err != nil {
		return "", fmt.Errorf("merge pdfs: %w", err)
	}

	log.Printf("[pdf] Merged %d PDFs into %s", len(filenames), outputName)
	return outputPath, nil
}
