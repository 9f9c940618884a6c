package dirstat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0.00 B"},
		{1023, "1023.00 B"},
		{1024, "1.00 KB"},
		{1536, "1.50 KB"},
		{1 << 20, "1.00 MB"},
		{1 << 30, "1.00 GB"},
		{1 << 40, "1.00 TB"},
		{1 << 50, "1.00 PB"},
		{3 << 50, "3.00 PB"},
		{1 << 60, "1024.00 PB"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatSize(tt.bytes), "bytes %d", tt.bytes)
	}
}

func TestPercentage(t *testing.T) {
	assert.InDelta(t, 0.0, Percentage(0, 0), 1e-9)
	assert.InDelta(t, 0.0, Percentage(3, 0), 1e-9)
	assert.InDelta(t, 75.0, Percentage(3, 4), 1e-9)
	assert.InDelta(t, 100.0, Percentage(4, 4), 1e-9)
}

func TestExtension(t *testing.T) {
	tests := map[string]string{
		"report.PDF":     ".pdf",
		"archive.tar.gz": ".gz",
		"Makefile":       NoExtension,
		".bashrc":        NoExtension,
		"trailing.":      NoExtension,
		"..hidden":       ".hidden",
		"a.Txt":          ".txt",
	}

	for name, want := range tests {
		assert.Equal(t, want, Extension(name), name)
	}
}
