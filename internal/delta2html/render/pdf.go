package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"codeberg.org/go-pdf/fpdf"
	"github.com/aisa-it/delta2html/internal/delta2html/delta"
	"github.com/aisa-it/delta2html/internal/delta2html/grouper"
)

const (
	pdfFont     = "Helvetica"
	pdfCodeFont = "Courier"

	pdfTextSize = 11.0
	pdfCodeSize = 10.0

	pdfListStep = 6.0
)

var pdfHeaderSizes = [...]float64{22, 18, 16, 14, 12.5, 11.5}

// PDFRenderer выводит документ в PDF формата A4 базовыми шрифтами.
type PDFRenderer struct {
	opts     Options
	custom   CustomRenderer
	Compress bool
}

func NewPDFRenderer(opts Options, custom CustomRenderer) *PDFRenderer {
	return &PDFRenderer{opts: opts, custom: custom, Compress: true}
}

func (r *PDFRenderer) Convert(raw []delta.RawOp, out io.Writer) error {
	groups, err := grouper.GroupRaw(raw, r.opts.Merge)
	if err != nil {
		return err
	}
	return r.Render(groups, out)
}

func (r *PDFRenderer) Render(groups []grouper.Group, out io.Writer) error {
	pdf := fpdf.New("P", "mm", "A4", "") // 210*297 mm
	pdf.SetCompression(r.Compress)

	w := pdfWriter{
		pdf:    pdf,
		tr:     pdf.UnicodeTranslatorFromDescriptor(""),
		custom: r.custom,
	}
	w.defaultMargins.GetMargins(pdf)

	pdf.AddPage()
	for _, g := range groups {
		w.writeGroup(g)
		w.resetMargins()
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	return pdf.Output(out)
}

type pdfWriter struct {
	pdf    *fpdf.Fpdf
	tr     func(string) string
	custom CustomRenderer

	defaultMargins Margins
}

type Margins struct {
	Left   float64
	Top    float64
	Right  float64
	Bottom float64
}

func (m *Margins) GetMargins(pdf fpdf.Pdf) {
	m.Left, m.Top, m.Right, m.Bottom = pdf.GetMargins()
}

func (w *pdfWriter) writeGroup(g grouper.Group) {
	switch gg := g.(type) {
	case *grouper.InlineRun:
		for _, line := range splitLines(gg.Ops) {
			w.writeLine(line, nil)
		}
	case *grouper.Block:
		w.writeBlock(gg.BlockOp, gg.Ops)
	case *grouper.MergedBlock:
		w.writeBlock(gg.BlockOp(), gg.Ops())
	case *grouper.VideoItem:
		w.setFont("U", pdfTextSize)
		w.pdf.SetTextColor(0, 0, 238)
		w.write(gg.Op.Insert.Value, gg.Op.Insert.Value)
		w.pdf.SetTextColor(0, 0, 0)
		w.pdf.Ln(-1)
	case *grouper.ListGroup:
		w.writeList(gg, 0)
	}
}

func (w *pdfWriter) writeBlock(bop delta.Op, ops []delta.Op) {
	if bop.IsCustom() {
		if w.custom != nil {
			w.setFont("", pdfTextSize)
			w.write(w.custom.RenderCustom(bop, nil))
			w.pdf.Ln(-1)
		}
		return
	}

	switch {
	case bop.IsCodeBlock():
		var sb strings.Builder
		for _, op := range ops {
			if op.IsCustom() {
				if w.custom != nil {
					sb.WriteString(w.custom.RenderCustom(op, &bop))
				}
				continue
			}
			sb.WriteString(op.Insert.Value)
		}

		w.pdf.Ln(2)
		w.pdf.SetFont(pdfCodeFont, "", pdfCodeSize)
		w.pdf.SetFillColor(242, 242, 242)
		w.pdf.MultiCell(0, pdfCodeSize*0.45, w.tr(cleanUnsupportedSymbols(sb.String())), "", "L", true)
		w.pdf.Ln(2)
	case bop.IsBlockquote():
		w.pdf.Ln(2)
		y1 := w.pdf.GetY()
		w.pdf.SetLeftMargin(w.defaultMargins.Left + 3)
		w.pdf.SetX(w.defaultMargins.Left + 3)
		for _, line := range splitLines(ops) {
			w.writeLine(line, &bop)
		}
		w.pdf.SetLeftMargin(w.defaultMargins.Left)

		w.pdf.SetLineWidth(0.5)
		w.pdf.SetDrawColor(74, 71, 82)
		w.pdf.Line(w.defaultMargins.Left+1, y1, w.defaultMargins.Left+1, w.pdf.GetY())
		w.pdf.Ln(2)
	case bop.IsHeader():
		size := pdfHeaderSizes[bop.Attributes.Header-1]
		w.pdf.Ln(2)
		for _, line := range splitLines(ops) {
			for _, op := range line {
				w.writeOp(op, &bop, size, "B")
			}
			w.pdf.Ln(-1)
		}
		w.pdf.Ln(1)
	default:
		if bop.Attributes.Indent > 0 {
			indent := w.defaultMargins.Left + float64(bop.Attributes.Indent)*pdfListStep
			w.pdf.SetLeftMargin(indent)
			w.pdf.SetX(indent)
		}
		for _, line := range splitLines(ops) {
			w.writeLine(line, &bop)
		}
	}
}

func (w *pdfWriter) writeList(list *grouper.ListGroup, depth int) {
	left := w.defaultMargins.Left + 3 + float64(depth)*pdfListStep
	for i, li := range list.Items {
		bop := li.Item.BlockOp

		w.pdf.SetLeftMargin(left)
		w.pdf.SetX(left)
		w.setFont("", pdfTextSize)
		switch {
		case bop.IsOrderedList():
			w.write(strconv.Itoa(i+1) + ".")
		case bop.IsCheckedList():
			w.write("[x]")
		case bop.IsUncheckedList():
			w.write("[ ]")
		default:
			w.write("•")
		}

		w.pdf.SetLeftMargin(left + pdfListStep)
		w.pdf.SetX(left + pdfListStep)
		lines := splitLines(li.Item.Ops)
		for _, line := range lines {
			w.writeLine(line, &bop)
		}
		if li.InnerList != nil {
			w.writeList(li.InnerList, depth+1)
		}
	}
	w.pdf.SetLeftMargin(w.defaultMargins.Left)
}

func (w *pdfWriter) writeLine(ops []delta.Op, contextOp *delta.Op) {
	for _, op := range ops {
		w.writeOp(op, contextOp, pdfTextSize, "")
	}
	w.pdf.Ln(-1)
}

func (w *pdfWriter) writeOp(op delta.Op, contextOp *delta.Op, size float64, baseStyle string) {
	attrs := op.Attributes

	switch op.Insert.Kind {
	case delta.KindCustom:
		if w.custom != nil {
			w.setFont(baseStyle, size)
			w.write(w.custom.RenderCustom(op, contextOp))
		}
		return
	case delta.KindImage:
		link := attrs.Link
		if link == "" {
			link = op.Insert.Value
		}
		w.writeLink("[image]", link, size)
		return
	case delta.KindVideo:
		w.writeLink(op.Insert.Value, op.Insert.Value, size)
		return
	case delta.KindMention:
		record := op.Insert.MentionRecord()
		w.writeLink(mentionLabel(record), mentionHref(record), size)
		return
	}

	text := op.Insert.Value
	if text == delta.NewLine {
		return
	}

	style := baseStyle
	if attrs.Bold && !strings.Contains(style, "B") {
		style += "B"
	}
	if attrs.Italic {
		style += "I"
	}
	if attrs.Strike {
		style += "S"
	}
	if attrs.Underline || attrs.Link != "" {
		style += "U"
	}

	if attrs.Code || op.IsFormula() {
		w.pdf.SetFont(pdfCodeFont, style, size)
	} else {
		w.setFont(style, size)
	}

	if attrs.Color != "" {
		w.SetHexTextColor(attrs.Color)
	} else if attrs.Link != "" {
		w.pdf.SetTextColor(0, 0, 238)
	}

	link := attrs.Link
	if link == "" && attrs.Mentions {
		link = mentionHref(attrs.Mention)
	}

	switch attrs.Script {
	case "super":
		w.pdf.SubWrite(size*0.45, w.tr(cleanUnsupportedSymbols(text)), size*0.7, 3, 0, link)
	case "sub":
		w.pdf.SubWrite(size*0.45, w.tr(cleanUnsupportedSymbols(text)), size*0.7, -1, 0, link)
	default:
		w.write(text, link)
	}
	w.pdf.SetTextColor(0, 0, 0)
}

func (w *pdfWriter) writeLink(text, link string, size float64) {
	w.setFont("U", size)
	w.pdf.SetTextColor(0, 0, 238)
	w.write(text, link)
	w.pdf.SetTextColor(0, 0, 0)
}

func (w *pdfWriter) setFont(style string, size float64) {
	w.pdf.SetFont(pdfFont, style, size)
}

func (w *pdfWriter) write(text string, link ...string) float64 {
	text = w.tr(cleanUnsupportedSymbols(text))
	_, s := w.pdf.GetFontSize()
	s += 0.1
	if len(link) > 0 && link[0] != "" {
		w.pdf.WriteLinkString(s, text, link[0])
		return 0
	}
	w.pdf.WriteLinkString(s, text, "")
	return w.pdf.GetStringWidth(text)
}

func (w *pdfWriter) SetHexTextColor(hex string) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	values, err := strconv.ParseUint(hex, 16, 32)
	if err != nil || len(hex) != 6 {
		return
	}
	w.pdf.SetTextColor(
		int(uint8(values>>16)),
		int(uint8((values>>8)&0xFF)),
		int(uint8(values&0xFF)),
	)
}

func (w *pdfWriter) resetMargins() {
	w.pdf.SetMargins(w.defaultMargins.Left, w.defaultMargins.Top, w.defaultMargins.Right)
	w.pdf.SetX(w.defaultMargins.Left)
}

func cleanUnsupportedSymbols(text string) string {
	var sb strings.Builder
	for _, s := range text {
		if s < 65536 {
			sb.WriteRune(s)
		}
	}
	return sb.String()
}
