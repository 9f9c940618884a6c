package report

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/idelchi/folderreport/internal/dirstat"
)

//nolint:gochecknoglobals // Fixed test clock
var fixedNow = time.Date(2026, 2, 13, 20, 36, 36, 0, time.UTC)

// createFailFs refuses to create files below dir.
type createFailFs struct {
	afero.Fs
	dir string
}

func (f *createFailFs) Create(name string) (afero.File, error) {
	if strings.HasPrefix(name, f.dir) {
		return nil, &os.PathError{Op: "create", Path: name, Err: os.ErrPermission}
	}

	return f.Fs.Create(name)
}

// removeFailFs refuses to remove anything.
type removeFailFs struct {
	afero.Fs
}

func (f *removeFailFs) RemoveAll(path string) error {
	return &os.PathError{Op: "remove", Path: path, Err: os.ErrPermission}
}

func scanFixture(t *testing.T, files map[string]int) *dirstat.Snapshot {
	t.Helper()

	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/data", 0o755))

	for path, size := range files {
		require.NoError(t, fsys.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, afero.WriteFile(fsys, path, make([]byte, size), 0o644))
	}

	snap, err := dirstat.NewScanner(fsys, nil, dirstat.Options{}).Scan(context.Background(), "/data")
	require.NoError(t, err)

	return snap
}

func sampleSnapshot(t *testing.T) *dirstat.Snapshot {
	t.Helper()

	files := map[string]int{
		"/data/a.txt":       10,
		"/data/b.txt":       20,
		"/data/c.txt":       30,
		"/data/README":      5,
		"/data/img/x.png":   2048,
		"/data/video/y.mp4": 2 << 20,
	}

	// More than TopTypes distinct extensions.
	for i := range 12 {
		files["/data/misc/f."+strings.Repeat("e", i+1)] = i
	}

	return scanFixture(t, files)
}

func assertDirEmpty(t *testing.T, fsys afero.Fs, dir string) {
	t.Helper()

	entries, err := afero.ReadDir(fsys, dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "transient chart files left in %s", dir)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "folder_analysis_report - 2026-02-13 20.36.36.pdf", FileName(fixedNow))
}

func TestRenderWritesPDF(t *testing.T) {
	outDir := t.TempDir()
	tmpDir := t.TempDir()
	output := filepath.Join(outDir, FileName(fixedNow))

	fsys := afero.NewOsFs()
	renderer := NewRenderer(fsys, zap.NewNop(), Options{TempDir: tmpDir, Now: func() time.Time { return fixedNow }})

	require.NoError(t, renderer.Render(sampleSnapshot(t), output))

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
	assert.Contains(t, string(data), "/Subtype /Image")

	assertDirEmpty(t, fsys, tmpDir)
}

func TestRenderInMemory(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/out", 0o755))
	require.NoError(t, fsys.MkdirAll("/tmp", 0o755))

	renderer := NewRenderer(fsys, nil, Options{TempDir: "/tmp", Now: func() time.Time { return fixedNow }})
	require.NoError(t, renderer.Render(sampleSnapshot(t), "/out/report.pdf"))

	data, err := afero.ReadFile(fsys, "/out/report.pdf")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	assertDirEmpty(t, fsys, "/tmp")
}

func TestRenderNoFiles(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/out", 0o755))
	require.NoError(t, fsys.MkdirAll("/tmp", 0o755))

	snap := scanFixture(t, nil)
	require.Zero(t, snap.FileCount)

	renderer := NewRenderer(fsys, nil, Options{TempDir: "/tmp"})
	require.NoError(t, renderer.Render(snap, "/out/empty.pdf"))

	data, err := afero.ReadFile(fsys, "/out/empty.pdf")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))

	// Both sections keep their page; only the size chart is drawn.
	assert.Contains(t, string(data), "/Count 2")
	assert.Equal(t, 1, strings.Count(string(data), "/Subtype /Image"))

	assertDirEmpty(t, fsys, "/tmp")
}

func TestSizeTableWithoutFiles(t *testing.T) {
	snap := scanFixture(t, nil)

	rows := snap.SizeStats()
	require.Len(t, rows, 3)

	for _, row := range rows {
		assert.Zero(t, row.Count)
		assert.InDelta(t, 0.0, dirstat.Percentage(row.Count, snap.FileCount), 0)
		assert.Equal(t, "0.00 B", dirstat.FormatSize(row.Size))
	}

	c, err := newBarChart("Files by Size Category", "Count", snap.RankedSizeStats())
	require.NoError(t, err)
	require.NotNil(t, c)

	var buf bytes.Buffer
	require.NoError(t, c.writePNG(&buf))
}

func TestRenderNonLatinNames(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll("/out", 0o755))
	require.NoError(t, fsys.MkdirAll("/tmp", 0o755))

	snap := scanFixture(t, map[string]int{
		"/data/отчёт.документ":  10,
		"/data/αναφορά.κείμενο": 20,
	})

	renderer := NewRenderer(fsys, nil, Options{TempDir: "/tmp"})
	require.NoError(t, renderer.Render(snap, "/out/unicode.pdf"))

	data, err := afero.ReadFile(fsys, "/out/unicode.pdf")
	require.NoError(t, err)
	assert.Contains(t, string(data), "/FontFile2")
	assert.NotContains(t, string(data), "/Helvetica")
}

func TestRenderFailureCleansUpCharts(t *testing.T) {
	mem := afero.NewMemMapFs()
	require.NoError(t, mem.MkdirAll("/locked", 0o555))
	require.NoError(t, mem.MkdirAll("/tmp", 0o755))

	fsys := &createFailFs{Fs: mem, dir: "/locked"}
	renderer := NewRenderer(fsys, nil, Options{TempDir: "/tmp"})

	err := renderer.Render(sampleSnapshot(t), "/locked/report.pdf")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoOutput))
	assert.ErrorIs(t, err, os.ErrPermission)

	exists, err := afero.Exists(mem, "/locked/report.pdf")
	require.NoError(t, err)
	assert.False(t, exists)

	assertDirEmpty(t, mem, "/tmp")
}

func TestRenderUnwritableOutputDirOnDisk(t *testing.T) {
	tmpDir := t.TempDir()
	output := filepath.Join(t.TempDir(), "missing", "report.pdf")

	fsys := afero.NewOsFs()
	renderer := NewRenderer(fsys, nil, Options{TempDir: tmpDir})

	err := renderer.Render(sampleSnapshot(t), output)
	require.ErrorIs(t, err, ErrNoOutput)

	assertDirEmpty(t, fsys, tmpDir)
}

func TestRenderCleanupFailureIsLogged(t *testing.T) {
	mem := afero.NewMemMapFs()
	require.NoError(t, mem.MkdirAll("/out", 0o755))
	require.NoError(t, mem.MkdirAll("/tmp", 0o755))

	core, logs := observer.New(zapcore.WarnLevel)
	renderer := NewRenderer(&removeFailFs{Fs: mem}, zap.New(core), Options{TempDir: "/tmp"})

	require.NoError(t, renderer.Render(sampleSnapshot(t), "/out/report.pdf"))
	assert.Equal(t, 1, logs.FilterMessage("could not clean up temporary chart files").Len())
}
