package dirstat

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/charlievieth/fastwalk"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// DefaultProgressInterval is the default interval for progress updates.
const DefaultProgressInterval = 500 * time.Millisecond

var (
	// ErrNotFound is returned when the scan root does not exist.
	ErrNotFound = errors.New("directory not found")
	// ErrNotDirectory is returned when the scan root is not a directory.
	ErrNotDirectory = errors.New("not a directory")

	// errNotRegular marks entries that are silently left out of the aggregates.
	errNotRegular = errors.New("not a regular file")
)

// Options configures a Scanner.
type Options struct {
	// ProgressInterval controls progress callback cadence.
	ProgressInterval time.Duration
	// Progress receives the running file count and byte total. Optional.
	Progress func(files, bytes int64)
}

// Scanner walks a directory tree and aggregates file statistics.
type Scanner struct {
	fs   afero.Fs
	log  *zap.Logger
	opts Options
}

// NewScanner creates a Scanner reading from fsys.
// An *afero.OsFs is walked with fastwalk, any other filesystem with afero.Walk.
func NewScanner(fsys afero.Fs, log *zap.Logger, opts Options) *Scanner {
	if log == nil {
		log = zap.NewNop()
	}

	return &Scanner{fs: fsys, log: log, opts: opts}
}

// walkFunc is invoked for every entry below the root.
type walkFunc func(path string, d fs.DirEntry, err error) error

// startProgressReporter invokes hook(files, bytes) on each tick until ctx is
// done or the returned stop function is called. stop waits for a tick in
// flight, so no hook call happens after it returns.
//
//nolint:varnamelen // c is idiomatic for collector
func startProgressReporter(
	ctx context.Context,
	c *collector,
	hook func(int64, int64),
	interval time.Duration,
) (stop func()) {
	if hook == nil {
		return func() {}
	}

	if interval <= 0 {
		interval = DefaultProgressInterval
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	ticker := time.NewTicker(interval)

	go func() {
		defer close(done)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				hook(c.totals())
			case <-ctx.Done():
				return
			}
		}
	}()

	return func() {
		cancel()
		<-done
	}
}

// Scan walks root recursively and returns the aggregated statistics.
//
// A missing root yields an error wrapping ErrNotFound and a root that is not a
// directory one wrapping ErrNotDirectory. Files whose metadata cannot be read
// are logged, recorded in Snapshot.Skipped and left out of every aggregate.
// Symbolic links are never descended: a link to a regular file counts with
// the target's size, a broken link is skipped and a link to a directory is
// ignored.
func (s *Scanner) Scan(ctx context.Context, root string) (*Snapshot, error) {
	if root == "" {
		root = "."
	}

	root = filepath.Clean(root)

	info, err := s.fs.Stat(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("scanning %q: %w", root, ErrNotFound)
		}

		return nil, fmt.Errorf("accessing path %q: %w", root, err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("scanning %q: %w", root, ErrNotDirectory)
	}

	s.log.Info("scanning folder", zap.String("path", root))

	collector := newCollector()

	stopProgress := startProgressReporter(ctx, collector, s.opts.Progress, s.opts.ProgressInterval)
	defer stopProgress()

	start := time.Now()

	//nolint:varnamelen // d is standard for DirEntry
	visit := func(path string, d fs.DirEntry, err error) error {
		// Check cancellation periodically
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err != nil {
			if path == root {
				return err
			}

			s.warnSkipped(collector, path, err)

			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}

			return nil
		}

		if d.IsDir() {
			return nil
		}

		rec, err := s.classify(path, d)

		switch {
		case errors.Is(err, errNotRegular):
			s.log.Debug("ignoring entry", zap.String("path", path), zap.Stringer("type", d.Type()))
		case err != nil:
			s.warnSkipped(collector, path, err)
		default:
			collector.add(rec)
		}

		return nil
	}

	if err := s.walk(root, visit); err != nil {
		return nil, fmt.Errorf("walking %q: %w", root, err)
	}

	snapshot := collector.finalize(root)
	snapshot.Elapsed = time.Since(start)

	s.log.Info("scan complete",
		zap.Int64("files", snapshot.FileCount),
		zap.Int64("bytes", snapshot.TotalBytes),
		zap.Int("skipped", len(snapshot.Skipped)),
	)

	return snapshot, nil
}

// warnSkipped logs and records a per-file failure.
func (s *Scanner) warnSkipped(c *collector, path string, err error) {
	s.log.Warn("could not access file", zap.String("path", path), zap.Error(err))
	c.skip(path, err)
}

// classify turns a walk entry into a FileRecord.
// It returns errNotRegular for entries that are not counted at all, and any
// other error when the entry's metadata cannot be read.
func (s *Scanner) classify(path string, d fs.DirEntry) (FileRecord, error) {
	var (
		info fs.FileInfo
		err  error
	)

	if d.Type()&fs.ModeSymlink != 0 {
		// Resolve the target without descending into it.
		info, err = s.fs.Stat(path)
	} else {
		info, err = d.Info()
	}

	if err != nil {
		return FileRecord{}, err
	}

	if !info.Mode().IsRegular() {
		return FileRecord{}, errNotRegular
	}

	name := d.Name()

	return FileRecord{
		Path: path,
		Name: name,
		Ext:  Extension(name),
		Size: info.Size(),
	}, nil
}

// walk traverses root with the walker that matches the filesystem.
func (s *Scanner) walk(root string, fn walkFunc) error {
	if _, ok := s.fs.(*afero.OsFs); ok {
		conf := &fastwalk.Config{
			Follow:     false, // Don't follow symlinks
			NumWorkers: 1,
		}

		return fastwalk.Walk(conf, root, fs.WalkDirFunc(fn))
	}

	return afero.Walk(s.fs, root, func(path string, info os.FileInfo, err error) error {
		var d fs.DirEntry
		if info != nil {
			d = fs.FileInfoToDirEntry(info)
		}

		return fn(path, d, err)
	})
}
