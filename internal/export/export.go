// Package export turns summary text into downloadable artifacts. Encoders
// are pure functions; delivering the bytes somewhere is the job of a
// Deliverer.
package export

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Format is an export target.
type Format string

const (
	FormatTxt  Format = "txt"
	FormatPDF  Format = "pdf"
	FormatDocx Format = "docx"
)

// MIME types of the produced artifacts.
const (
	MIMETxt  = "text/plain; charset=utf-8"
	MIMEPDF  = "application/pdf"
	MIMEDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// Formats lists every supported format in a stable order.
func Formats() []Format {
	return []Format{FormatTxt, FormatPDF, FormatDocx}
}

// ParseFormat accepts "txt", "pdf" or "docx" (case-insensitive, optional dot).
func ParseFormat(s string) (Format, error) {
	f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "."))
	switch f {
	case FormatTxt, FormatPDF, FormatDocx:
		return f, nil
	}
	return "", fmt.Errorf("unsupported export format %q (valid: txt, pdf, docx)", s)
}

// Artifact is an encoded file ready for delivery.
type Artifact struct {
	Filename string
	MIMEType string
	Data     []byte
}

// Encode dispatches to the encoder for format.
func Encode(format Format, text string) (Artifact, error) {
	switch format {
	case FormatTxt:
		return EncodeTxt(text), nil
	case FormatPDF:
		return EncodePDF(text)
	case FormatDocx:
		return EncodeDocx(text)
	}
	return Artifact{}, fmt.Errorf("unsupported export format %q", format)
}

// EncodeTxt returns the text unchanged.
func EncodeTxt(text string) Artifact {
	return Artifact{
		Filename: "summary.txt",
		MIMEType: MIMETxt,
		Data:     []byte(text),
	}
}

// EncodeAll encodes text into every format concurrently. The result order
// matches Formats().
func EncodeAll(ctx context.Context, text string) ([]Artifact, error) {
	formats := Formats()
	out := make([]Artifact, len(formats))
	g, ctx := errgroup.WithContext(ctx)
	for i, f := range formats {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			a, err := Encode(f, text)
			if err != nil {
				return fmt.Errorf("encode %s: %w", f, err)
			}
			out[i] = a
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
