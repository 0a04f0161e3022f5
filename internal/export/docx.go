package export

import (
	"bytes"
	"fmt"

	"github.com/fumiama/go-docx"
)

// EncodeDocx writes an A4 word-processing document. Each line of text
// becomes its own paragraph so line breaks survive the round trip.
func EncodeDocx(text string) (Artifact, error) {
	doc := docx.New().WithDefaultTheme()
	for _, line := range splitLines(text) {
		p := doc.AddParagraph()
		if line == "" {
			continue
		}
		run := p.AddText(line)
		for _, c := range run.Children {
			if t, ok := c.(*docx.Text); ok {
				t.XMLSpace = "preserve"
			}
		}
	}
	doc.WithA4Page()

	var buf bytes.Buffer
	if _, err := doc.WriteTo(&buf); err != nil {
		return Artifact{}, fmt.Errorf("write docx: %w", err)
	}
	return Artifact{
		Filename: "summary.docx",
		MIMEType: MIMEDocx,
		Data:     buf.Bytes(),
	}, nil
}
