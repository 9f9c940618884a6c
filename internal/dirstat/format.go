package dirstat

import (
	"fmt"
	"path/filepath"
	"strings"
)

//nolint:gochecknoglobals // Unit table
var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FormatSize renders a byte count with base-1024 units and two decimals,
// e.g. 1536 -> "1.50 KB". Values beyond the TB range are reported in PB.
func FormatSize(bytes int64) string {
	size := float64(bytes)

	for _, unit := range sizeUnits {
		if size < 1024 {
			return fmt.Sprintf("%.2f %s", size, unit)
		}

		size /= 1024
	}

	return fmt.Sprintf("%.2f PB", size)
}

// Percentage returns count as a percentage of total, or 0 when total is 0.
func Percentage(count, total int64) float64 {
	if total <= 0 {
		return 0
	}

	return float64(count) / float64(total) * 100
}

// Extension returns the lower-cased suffix of name including the dot.
// Names without a suffix, dotfiles such as ".bashrc" and names ending in a
// dot all map to NoExtension.
func Extension(name string) string {
	ext := filepath.Ext(name)
	if ext == "" || ext == "." || ext == name {
		return NoExtension
	}

	return strings.ToLower(ext)
}
