package report

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"codeberg.org/go-fonts/liberation/liberationsansbold"
	"codeberg.org/go-fonts/liberation/liberationsansregular"
	"github.com/go-pdf/fpdf"

	"github.com/idelchi/folderreport/internal/dirstat"
)

// Page geometry in millimetres.
const (
	inch       = 25.4
	pt         = inch / 72
	margin     = 1 * inch
	imageWidth = 6 * inch
	rowHeight  = 0.3 * inch
)

type rgb struct{ r, g, b int }

//nolint:gochecknoglobals // Report palette
var (
	titleColor      = rgb{44, 62, 80}
	headingColor    = rgb{52, 73, 94}
	typeHeaderColor = rgb{52, 152, 219}
	sizeHeaderColor = rgb{231, 76, 60}
	white           = rgb{255, 255, 255}
	lightGrey       = rgb{211, 211, 211}
	black           = rgb{0, 0, 0}
	gridGrey        = rgb{128, 128, 128}

	// columnWidths holds label, count, percentage and size column widths.
	columnWidths = []float64{2 * inch, 1.2 * inch, 1.2 * inch, 1.5 * inch}
)

// fontFamily is the embedded UTF-8 font used for all text.
const fontFamily = "LiberationSans"

// document wraps the PDF under construction.
type document struct {
	pdf *fpdf.Fpdf
}

func newDocument() *document {
	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.AddUTF8FontFromBytes(fontFamily, "", liberationsansregular.TTF)
	pdf.AddUTF8FontFromBytes(fontFamily, "B", liberationsansbold.TTF)
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.SetCreator("folderreport", true)
	pdf.SetTitle("Folder Analysis Report", true)
	pdf.AddPage()

	return &document{pdf: pdf}
}

func (d *document) textColor(c rgb) {
	d.pdf.SetTextColor(c.r, c.g, c.b)
}

func (d *document) fillColor(c rgb) {
	d.pdf.SetFillColor(c.r, c.g, c.b)
}

// header writes the title and the metadata block.
func (d *document) header(snap *dirstat.Snapshot, generated time.Time) {
	stamp := generated.Format(headerLayout)

	d.pdf.SetFont(fontFamily, "B", 24)
	d.textColor(titleColor)
	d.pdf.MultiCell(0, 28*pt, "Folder Analysis Report - "+stamp, "", "C", false)
	d.pdf.Ln(30 * pt)

	d.textColor(black)

	for _, field := range [][2]string{
		{"Target Folder:", snap.Root},
		{"Report Generated:", stamp},
		{"Total Files Found:", strconv.FormatInt(snap.FileCount, 10)},
		{"Total File Size:", dirstat.FormatSize(snap.TotalBytes)},
	} {
		d.pdf.SetFont(fontFamily, "B", 10)
		d.pdf.Write(14*pt, field[0]+" ")
		d.pdf.SetFont(fontFamily, "", 10)
		d.pdf.Write(14*pt, field[1])
		d.pdf.Ln(14 * pt)
	}

	d.pdf.Ln(0.3 * inch)
}

// heading writes a section heading.
func (d *document) heading(text string) {
	d.pdf.Ln(20 * pt)
	d.pdf.SetFont(fontFamily, "B", 16)
	d.textColor(headingColor)
	d.pdf.CellFormat(0, 18*pt, text, "", 1, "L", false, 0, "")
	d.pdf.Ln(12 * pt)
	d.textColor(black)
}

// image places a PNG centred on the page at the standard width.
func (d *document) image(name string, png io.Reader, aspect float64) {
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	d.pdf.RegisterImageOptionsReader(name, opts, png)

	pageWidth, _ := d.pdf.GetPageSize()
	x := (pageWidth - imageWidth) / 2

	d.pdf.ImageOptions(name, x, -1, imageWidth, imageWidth*aspect, true, opts, 0, "")
	d.pdf.Ln(0.3 * inch)
}

// table writes a distribution table with a coloured header row and
// alternating row backgrounds.
func (d *document) table(labelHeader string, rows []dirstat.Stat, total int64, header rgb) {
	pageWidth, _ := d.pdf.GetPageSize()

	var tableWidth float64
	for _, w := range columnWidths {
		tableWidth += w
	}

	left := (pageWidth - tableWidth) / 2

	d.pdf.SetDrawColor(gridGrey.r, gridGrey.g, gridGrey.b)
	d.pdf.SetLineWidth(1 * pt)

	d.pdf.SetFont(fontFamily, "B", 12)
	d.textColor(white)
	d.fillColor(header)
	d.row(left, []string{labelHeader, "Count", "Percentage", "Total File Size"}, true)

	d.pdf.SetFont(fontFamily, "", 10)
	d.textColor(black)

	for i, stat := range rows {
		if i%2 == 0 {
			d.fillColor(white)
		} else {
			d.fillColor(lightGrey)
		}

		d.row(left, []string{
			stat.Label,
			strconv.FormatInt(stat.Count, 10),
			fmt.Sprintf("%.1f%%", dirstat.Percentage(stat.Count, total)),
			dirstat.FormatSize(stat.Size),
		}, true)
	}
}

// row writes one table row starting at x = left.
func (d *document) row(left float64, cells []string, fill bool) {
	d.pdf.SetX(left)

	for i, cell := range cells {
		align := "C"
		if i == 0 {
			align = "L"
		}

		ln := 0
		if i == len(cells)-1 {
			ln = 1
		}

		d.pdf.CellFormat(columnWidths[i], rowHeight, cell, "1", ln, align, fill, 0, "")
	}
}
