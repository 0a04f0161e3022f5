package export

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/font"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/color"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/draw"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"golang.org/x/text/encoding/charmap"
)

// Page geometry in millimetres.
const (
	pageWidthMM  = 210.0
	pageHeightMM = 297.0
	marginLeftMM = 15.0
	marginTopMM  = 15.0
	wrapWidthMM  = 180.0

	ptPerMM = 72.0 / 25.4
)

const (
	fontName = "Helvetica"
	fontSize = 16
)

var lineHeightPt = font.LineHeight(fontName, fontSize)

var disableConfigDir sync.Once

// pdfConfig returns a pdfcpu configuration that never touches the user's
// config dir and writes a classic xref table.
func pdfConfig() *model.Configuration {
	disableConfigDir.Do(api.DisableConfigDir)
	conf := model.NewDefaultConfiguration()
	conf.WriteObjectStream = false
	conf.WriteXRefStream = false
	return conf
}

// EncodePDF lays text out on a single A4-wide page. Lines are wrapped at
// the usable width; when the text runs past the bottom margin the page
// grows taller instead of spilling onto a second page.
func EncodePDF(text string) (Artifact, error) {
	var lines []string
	for _, para := range splitLines(text) {
		lines = append(lines, wrap(pdfSafe(para), wrapWidthMM*ptPerMM)...)
	}

	pageW := pageWidthMM * ptPerMM
	pageH := max(pageHeightMM*ptPerMM, 2*marginTopMM*ptPerMM+float64(len(lines))*lineHeightPt)

	data, err := renderPDF(lines, pageW, pageH)
	if err != nil {
		return Artifact{}, fmt.Errorf("render pdf: %w", err)
	}
	return Artifact{
		Filename: "summary.pdf",
		MIMEType: MIMEPDF,
		Data:     data,
	}, nil
}

func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n")
}

// pdfSafe maps text onto what the standard fonts can draw. Tabs become
// spaces; control characters and runes outside Windows-1252 become '?'.
func pdfSafe(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\t' {
			return ' '
		}
		if unicode.IsControl(r) {
			return '?'
		}
		if _, ok := charmap.Windows1252.EncodeRune(r); !ok {
			return '?'
		}
		return r
	}, s)
}

// widthPt measures s as pdfcpu will draw it, in points.
func widthPt(s string) float64 {
	return font.TextWidth(model.DecodeUTF8ToByte(s), fontName, fontSize)
}

// wrap breaks one paragraph into lines no wider than maxPt. Only single
// spaces separate words, so runs of spaces and indentation are kept.
// Spaces at a break are dropped. A word wider than a full line is split
// by rune. An empty paragraph still yields one (empty) line.
func wrap(para string, maxPt float64) []string {
	var (
		lines []string
		cur   string
		open  bool
	)
	for _, word := range strings.Split(para, " ") {
		if open {
			candidate := cur + " " + word
			if widthPt(candidate) <= maxPt {
				cur = candidate
				continue
			}
			open = false
			if strings.TrimLeft(cur, " ") == "" {
				// leading indentation stays with the word it precedes
				word = candidate
			} else {
				lines = append(lines, strings.TrimRight(cur, " "))
				if word == "" {
					continue
				}
			}
		}
		for widthPt(word) > maxPt {
			cut := breakPoint(word, maxPt)
			lines = append(lines, word[:cut])
			word = word[cut:]
		}
		cur, open = word, true
	}
	if open {
		lines = append(lines, cur)
	}
	return lines
}

// breakPoint returns the byte length of the longest prefix of word that
// fits in maxPt, never less than one rune.
func breakPoint(word string, maxPt float64) int {
	var (
		cut int
		w   float64
	)
	for i, r := range word {
		w += widthPt(string(r))
		if cut > 0 && w > maxPt {
			break
		}
		cut = i + len(string(r))
	}
	return cut
}

// lineSegments splits a line where pdfcpu would read a literal `\n` as a
// line break; the backslash is drawn as a segment of its own.
func lineSegments(line string) []string {
	parts := strings.Split(line, `\n`)
	segs := make([]string, 0, 2*len(parts))
	for i, part := range parts {
		if i > 0 {
			segs = append(segs, `\`)
			part = "n" + part
		}
		if part != "" {
			segs = append(segs, part)
		}
	}
	return segs
}

func renderPDF(lines []string, pageW, pageH float64) ([]byte, error) {
	xRefTable, err := pdfcpu.CreateXRefTableWithRootDict()
	if err != nil {
		return nil, err
	}
	rootDict, err := xRefTable.Catalog()
	if err != nil {
		return nil, err
	}

	mediaBox := types.RectForDim(pageW, pageH)
	p := model.NewPage(mediaBox, mediaBox)
	td := model.TextDescriptor{
		FontName:  fontName,
		FontKey:   p.Fm.EnsureKey(fontName),
		FontSize:  fontSize,
		Scale:     1,
		ScaleAbs:  true,
		HAlign:    types.AlignLeft,
		VAlign:    types.AlignBaseline,
		RMode:     draw.RMFill,
		StrokeCol: color.Black,
		FillCol:   color.Black,
	}

	baseline := pageH - marginTopMM*ptPerMM
	for i, line := range lines {
		td.Y = baseline - float64(i)*lineHeightPt
		x := marginLeftMM * ptPerMM
		for _, seg := range lineSegments(line) {
			td.X, td.Text = x, seg
			model.WriteMultiLine(xRefTable, p.Buf, mediaBox, nil, td)
			x += widthPt(seg)
		}
	}

	if err := pdfcpu.AddPageTreeWithSamplePage(xRefTable, rootDict, p); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := api.WriteContext(pdfcpu.CreateContext(xRefTable, pdfConfig()), &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
