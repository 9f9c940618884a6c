// Command folderreport scans a folder, renders a PDF statistics report and
// emails it.
package main

import (
	"os"

	"github.com/idelchi/folderreport/internal/cli"
)

// version is set at build time.
//
//nolint:gochecknoglobals // Build-time variable
var version = "unknown - unofficial & generated by unknown"

func main() {
	if err := cli.New(version).Execute(); err != nil {
		os.Exit(1)
	}
}
