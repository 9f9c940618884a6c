// Package report renders directory statistics into a paginated PDF.
//
// Charts are drawn with gonum/plot, encoded as PNG into a per-render
// temporary directory, embedded with fpdf and removed once the document
// has been assembled.
package report
