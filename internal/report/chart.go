package report

import (
	"fmt"
	"image/color"
	"io"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/idelchi/folderreport/internal/dirstat"
)

const (
	chartWidth     = 10 * vg.Inch
	chartMinHeight = 6 * vg.Inch
	chartRowHeight = 0.4 * vg.Inch
	barWidth       = 16 // points
)

//nolint:gochecknoglobals // Chart palette
var (
	barColor  = color.RGBA{R: 70, G: 130, B: 180, A: 255} // steelblue
	gridColor = color.Gray{Y: 210}
)

// chart is a horizontal ranked bar chart ready to be encoded.
type chart struct {
	plot   *plot.Plot
	width  vg.Length
	height vg.Length
}

// chartHeight grows with the number of rows and never drops below the floor.
func chartHeight(rows int) vg.Length {
	return max(chartMinHeight, vg.Length(rows)*chartRowHeight)
}

// newBarChart builds a horizontal bar chart with rows ranked from top to bottom.
// Every bar carries its value as a label.
func newBarChart(title, xLabel string, rows []dirstat.Stat) (*chart, error) {
	if len(rows) == 0 {
		return nil, nil //nolint:nilnil // No rows, no chart
	}

	p := plot.New()
	p.Title.Text = title
	p.Title.TextStyle.Font.Size = vg.Points(14)
	p.X.Label.Text = xLabel
	p.X.Min = 0

	// Bars are drawn bottom-up, so feed them in reverse to put rank 1 on top.
	n := len(rows)
	values := make(plotter.Values, n)
	names := make([]string, n)
	labels := plotter.XYLabels{
		XYs:    make(plotter.XYs, n),
		Labels: make([]string, n),
	}

	var peak float64

	for i, row := range rows {
		pos := n - 1 - i
		value := float64(row.Count)

		values[pos] = value
		names[pos] = row.Label
		labels.XYs[pos] = plotter.XY{X: value, Y: float64(pos)}
		labels.Labels[pos] = " " + strconv.FormatInt(row.Count, 10)
		peak = max(peak, value)
	}

	grid := plotter.NewGrid()
	grid.Horizontal.Color = nil
	grid.Vertical.Color = gridColor
	p.Add(grid)

	bars, err := plotter.NewBarChart(values, vg.Points(barWidth))
	if err != nil {
		return nil, fmt.Errorf("creating bar chart %q: %w", title, err)
	}

	bars.Horizontal = true
	bars.Color = barColor
	bars.LineStyle.Width = 0
	p.Add(bars)

	valueLabels, err := plotter.NewLabels(labels)
	if err != nil {
		return nil, fmt.Errorf("creating value labels for %q: %w", title, err)
	}

	valueLabels.Offset = vg.Point{X: vg.Points(4), Y: -vg.Points(4)}
	p.Add(valueLabels)

	p.NominalY(names...)

	// Leave room to the right of the longest bar for its label.
	p.X.Max = max(1, peak*1.15)

	return &chart{plot: p, width: chartWidth, height: chartHeight(n)}, nil
}

// writePNG encodes the chart as PNG into w.
func (c *chart) writePNG(w io.Writer) error {
	writer, err := c.plot.WriterTo(c.width, c.height, "png")
	if err != nil {
		return fmt.Errorf("preparing chart canvas: %w", err)
	}

	if _, err := writer.WriteTo(w); err != nil {
		return fmt.Errorf("encoding chart: %w", err)
	}

	return nil
}

// aspect returns the chart's height relative to its width.
func (c *chart) aspect() float64 {
	return float64(c.height / c.width)
}
