// Package docproc is the document collaborator: it extracts text from
// uploaded files, splits it into content fragments, and hands them to the
// semantic index. The decision pipeline itself never parses binary formats.
package docproc

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	"github.com/lu4p/cat/docxtxt"
	"github.com/lu4p/cat/odtxt"
	"github.com/lu4p/cat/rtftxt"
	"github.com/xuri/excelize/v2"
)

// ExtractFile reads the file at path and returns its plain-text content.
func ExtractFile(path string) (string, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read file: %w", err)
	}
	return ExtractBytes(content, strings.ToLower(filepath.Ext(path)))
}

// ExtractBytes extracts text from content based on the file extension
// (leading dot included). Unknown extensions are treated as plain text.
func ExtractBytes(content []byte, ext string) (string, error) {
	switch ext {
	case ".pdf":
		return extractPDF(content)
	case ".docx":
		return extractDOCX(content)
	case ".odt":
		return extractODT(content)
	case ".rtf":
		return extractRTF(content)
	case ".xlsx":
		return extractExcel(content)
	default:
		return extractPlain(content)
	}
}

// extractPlain validates UTF-8, replacing invalid sequences.
func extractPlain(content []byte) (string, error) {
	if !utf8.Valid(content) {
		return strings.ToValidUTF8(string(content), "�"), nil
	}
	return string(content), nil
}

// extractPDF concatenates the plain text of every page.
func extractPDF(content []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open PDF: %w", err)
	}
	var buf bytes.Buffer
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", fmt.Errorf("extract page %d: %w", i, err)
		}
		buf.WriteString(text)
		buf.WriteByte('\n')
	}
	return strings.TrimSpace(buf.String()), nil
}

// extractDOCX pulls text from the OOXML container.
func extractDOCX(content []byte) (string, error) {
	text, err := docxtxt.BytesToStr(content)
	if err != nil {
		return "", fmt.Errorf("extract DOCX: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// extractODT pulls text from the OpenDocument container.
func extractODT(content []byte) (string, error) {
	text, err := odtxt.BytesToStr(content)
	if err != nil {
		return "", fmt.Errorf("extract ODT: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// extractRTF converts RTF markup to plain text.
func extractRTF(content []byte) (string, error) {
	text, err := rtftxt.BytesToStr(content)
	if err != nil {
		return "", fmt.Errorf("extract RTF: %w", err)
	}
	return strings.TrimSpace(text), nil
}

// extractExcel flattens every sheet row by row, cells tab-separated.
func extractExcel(content []byte) (string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("open spreadsheet: %w", err)
	}
	defer f.Close()

	var buf strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("get rows for sheet %q: %w", sheet, err)
		}
		for _, row := range rows {
			buf.WriteString(strings.Join(row, "\t"))
			buf.WriteByte('\n')
		}
	}
	return strings.TrimSpace(buf.String()), nil
}
