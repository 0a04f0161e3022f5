// Package extract pulls plain text out of uploaded files.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/fumiama/go-docx"
	"github.com/ledongthuc/pdf"
)

// ErrUnsupportedType is returned for documents that are neither .txt nor .docx.
var ErrUnsupportedType = errors.New("unsupported document type")

// IsPDF reports whether data looks like a PDF the reader can open.
func IsPDF(data []byte) bool {
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		return false
	}
	_, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	return err == nil
}

// PDFText concatenates the plain text of every page, one page per line.
// Pages that fail to extract are skipped.
func PDFText(content []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	var sb strings.Builder
	for n := 1; n <= reader.NumPage(); n++ {
		page := reader.Page(n)
		if page.V.IsNull() || page.V.Key("Contents").Kind() == pdf.Null {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

// DocumentText extracts text from a .txt or .docx upload, chosen by the
// file extension.
func DocumentText(filename string, data []byte) (string, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".txt":
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%s: not valid UTF-8", filename)
		}
		return string(data), nil
	case ".docx":
		return DocxText(data)
	default:
		return "", ErrUnsupportedType
	}
}

// DocxText reads the body of a .docx package. Paragraphs, including those
// inside table cells, end with a newline.
func DocxText(data []byte) (string, error) {
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open docx: %w", err)
	}
	if doc.Document.XMLName.Local == "" {
		return "", errors.New("docx: word/document.xml not found")
	}

	var sb strings.Builder
	writeItems(&sb, doc.Document.Body.Items)
	return sb.String(), nil
}

func writeItems(sb *strings.Builder, items []interface{}) {
	for _, it := range items {
		switch o := it.(type) {
		case *docx.Paragraph:
			sb.WriteString(o.String())
			sb.WriteByte('\n')
		case *docx.Table:
			for _, row := range o.TableRows {
				for _, cell := range row.TableCells {
					for _, p := range cell.Paragraphs {
						writeItems(sb, []interface{}{p})
					}
					for _, t := range cell.Tables {
						writeItems(sb, []interface{}{t})
					}
				}
			}
		}
	}
}
