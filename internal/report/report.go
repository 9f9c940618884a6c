package report

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/idelchi/folderreport/internal/dirstat"
)

const (
	// TopTypes is the number of extensions shown in the type distribution.
	TopTypes = 10

	// fileNameLayout is the timestamp layout used in report file names.
	fileNameLayout = "2006-01-02 15.04.05"
	// headerLayout is the timestamp layout printed inside the report.
	headerLayout = "2006-01-02 15:04:05"
)

// ErrNoOutput is returned when the document could not be written.
var ErrNoOutput = errors.New("report not written")

// FileName returns the report file name for the given generation time.
func FileName(now time.Time) string {
	return "folder_analysis_report - " + now.Format(fileNameLayout) + ".pdf"
}

// Options configures a Renderer.
type Options struct {
	// TempDir is the directory under which transient chart images are created.
	// Defaults to os.TempDir().
	TempDir string
	// Now returns the generation time. Defaults to time.Now.
	Now func() time.Time
}

// Renderer turns a Snapshot into a PDF report.
type Renderer struct {
	fs   afero.Fs
	log  *zap.Logger
	opts Options
}

// NewRenderer creates a Renderer writing through fsys.
func NewRenderer(fsys afero.Fs, log *zap.Logger, opts Options) *Renderer {
	if log == nil {
		log = zap.NewNop()
	}

	if opts.TempDir == "" {
		opts.TempDir = os.TempDir()
	}

	if opts.Now == nil {
		opts.Now = time.Now
	}

	return &Renderer{fs: fsys, log: log, opts: opts}
}

// Render writes the report for snap to outputPath.
//
// Chart images are written to a fresh directory below Options.TempDir and
// removed before Render returns, whether or not the document was written.
// A failure to remove them is logged and otherwise ignored.
func (r *Renderer) Render(snap *dirstat.Snapshot, outputPath string) error {
	r.log.Info("generating PDF report", zap.String("path", outputPath))

	chartDir, err := afero.TempDir(r.fs, r.opts.TempDir, "folderreport-charts-")
	if err != nil {
		return fmt.Errorf("creating chart directory: %w", err)
	}

	defer r.cleanup(chartDir)

	generated := r.opts.Now()
	doc := newDocument()

	doc.header(snap, generated)

	if err := r.typeSection(doc, snap, chartDir); err != nil {
		return err
	}

	if err := r.sizeSection(doc, snap, chartDir); err != nil {
		return err
	}

	if err := doc.pdf.Error(); err != nil {
		return fmt.Errorf("assembling report: %w", err)
	}

	if err := r.write(doc, outputPath); err != nil {
		return fmt.Errorf("%w: %w", ErrNoOutput, err)
	}

	r.log.Info("PDF report generated", zap.String("path", outputPath))

	return nil
}

// typeSection renders the extension chart and table.
// Only the heading is written when no file was counted.
func (r *Renderer) typeSection(doc *document, snap *dirstat.Snapshot, chartDir string) error {
	doc.heading("1. File Type Distribution")

	rows := snap.TopTypes(TopTypes)
	if len(rows) == 0 {
		return nil
	}

	c, err := newBarChart(fmt.Sprintf("File Types by Frequency (Top %d)", TopTypes), "Count", rows)
	if err != nil {
		return err
	}

	if err := r.embed(doc, c, chartDir, "file_types_chart.png"); err != nil {
		return err
	}

	doc.table("File Type", rows, snap.FileCount, typeHeaderColor)

	return nil
}

// sizeSection renders the size bucket chart and table on a new page.
// All three buckets are shown, even when every count is zero.
func (r *Renderer) sizeSection(doc *document, snap *dirstat.Snapshot, chartDir string) error {
	doc.pdf.AddPage()
	doc.heading("2. File Size Distribution")

	c, err := newBarChart("Files by Size Category", "Count", snap.RankedSizeStats())
	if err != nil {
		return err
	}

	if err := r.embed(doc, c, chartDir, "file_sizes_chart.png"); err != nil {
		return err
	}

	doc.table("Size Category", snap.SizeStats(), snap.FileCount, sizeHeaderColor)

	return nil
}

// embed writes the chart to chartDir and places it in the document.
func (r *Renderer) embed(doc *document, c *chart, chartDir, name string) error {
	if c == nil {
		return nil
	}

	path := filepath.Join(chartDir, name)

	f, err := r.fs.Create(path)
	if err != nil {
		return fmt.Errorf("creating chart file: %w", err)
	}

	if err := c.writePNG(f); err != nil {
		f.Close()

		return err
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("closing chart file: %w", err)
	}

	data, err := afero.ReadFile(r.fs, path)
	if err != nil {
		return fmt.Errorf("reading chart file: %w", err)
	}

	r.log.Debug("chart rendered", zap.String("path", path), zap.Int("bytes", len(data)))

	doc.image(name, bytes.NewReader(data), c.aspect())

	return nil
}

// write encodes the document into outputPath.
func (r *Renderer) write(doc *document, outputPath string) error {
	f, err := r.fs.Create(outputPath)
	if err != nil {
		return err
	}

	if err := doc.pdf.Output(f); err != nil {
		f.Close()

		return err
	}

	return f.Close()
}

// cleanup removes the chart directory, logging instead of failing.
func (r *Renderer) cleanup(chartDir string) {
	if err := r.fs.RemoveAll(chartDir); err != nil {
		r.log.Warn("could not clean up temporary chart files", zap.String("dir", chartDir), zap.Error(err))

		return
	}

	r.log.Debug("removed temporary chart files", zap.String("dir", chartDir))
}
