package dirstat

import (
	"encoding/json"
	"sort"
	"sync"
	"time"
)

// NoExtension labels files whose name carries no suffix.
const NoExtension = "(no extension)"

// Size bucket labels, in their fixed logical order.
const (
	BucketSmall  = "<1MB"
	BucketMedium = "1MB-1GB"
	BucketLarge  = ">1GB"
)

const (
	mebibyte = 1 << 20
	gibibyte = 1 << 30
)

// Buckets lists the size buckets in display order.
//
//nolint:gochecknoglobals // Fixed bucket order
var Buckets = []string{BucketSmall, BucketMedium, BucketLarge}

// Bucket returns the size bucket a file of the given size falls into.
func Bucket(size int64) string {
	switch {
	case size < mebibyte:
		return BucketSmall
	case size < gibibyte:
		return BucketMedium
	default:
		return BucketLarge
	}
}

// FileRecord describes a single scanned file before it is folded into a Snapshot.
type FileRecord struct {
	// Path is the file path as reported by the walk.
	Path string
	// Name is the base name of the file.
	Name string
	// Ext is the normalized extension or NoExtension.
	Ext string
	// Size is the size in bytes.
	Size int64
}

// Stat is one ranked row of a distribution.
type Stat struct {
	// Label is the extension or size bucket.
	Label string `json:"label"`
	// Count is the number of files.
	Count int64 `json:"count"`
	// Size is the cumulative size in bytes.
	Size int64 `json:"size"`
}

// SkippedFile records a file that could not be read during the walk.
type SkippedFile struct {
	Path string
	Err  error
}

// Snapshot holds the aggregate statistics of one completed scan.
// It is not modified after Scan returns.
type Snapshot struct {
	// Root is the scanned directory.
	Root string
	// FileCount is the number of files folded into the aggregates.
	FileCount int64
	// TotalBytes is the cumulative size of all counted files.
	TotalBytes int64
	// Skipped lists files excluded because their metadata could not be read.
	Skipped []SkippedFile
	// Elapsed is the time taken by the walk.
	Elapsed time.Duration

	types     map[string]Stat
	typeOrder []string
	buckets   map[string]Stat
}

// TypeStats returns every extension ranked by descending count.
// Extensions with equal counts keep the order in which they were first seen.
func (s *Snapshot) TypeStats() []Stat {
	stats := make([]Stat, 0, len(s.typeOrder))
	for _, ext := range s.typeOrder {
		stats = append(stats, s.types[ext])
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Count > stats[j].Count
	})

	return stats
}

// TopTypes returns at most n entries of TypeStats.
func (s *Snapshot) TopTypes(n int) []Stat {
	stats := s.TypeStats()
	if n >= 0 && len(stats) > n {
		stats = stats[:n]
	}

	return stats
}

// Type returns the statistics of a single extension.
func (s *Snapshot) Type(ext string) Stat {
	stat, ok := s.types[ext]
	if !ok {
		return Stat{Label: ext}
	}

	return stat
}

// SizeStats returns the three size buckets in their fixed order, including empty ones.
func (s *Snapshot) SizeStats() []Stat {
	stats := make([]Stat, 0, len(Buckets))
	for _, bucket := range Buckets {
		stat := s.buckets[bucket]
		stat.Label = bucket
		stats = append(stats, stat)
	}

	return stats
}

// RankedSizeStats returns SizeStats ordered by descending count.
// Buckets with equal counts keep their fixed order.
func (s *Snapshot) RankedSizeStats() []Stat {
	stats := s.SizeStats()

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Count > stats[j].Count
	})

	return stats
}

// MarshalJSON encodes the snapshot with its ranked distributions.
func (s *Snapshot) MarshalJSON() ([]byte, error) {
	skipped := make([]string, 0, len(s.Skipped))
	for _, f := range s.Skipped {
		skipped = append(skipped, f.Path)
	}

	return json.Marshal(struct {
		Root       string        `json:"root"`
		FileCount  int64         `json:"file_count"`
		TotalBytes int64         `json:"total_bytes"`
		Types      []Stat        `json:"types"`
		Sizes      []Stat        `json:"sizes"`
		Skipped    []string      `json:"skipped"`
		Elapsed    time.Duration `json:"elapsed"`
	}{
		Root:       s.Root,
		FileCount:  s.FileCount,
		TotalBytes: s.TotalBytes,
		Types:      s.TypeStats(),
		Sizes:      s.SizeStats(),
		Skipped:    skipped,
		Elapsed:    s.Elapsed,
	})
}

// collector accumulates file records during a walk.
// The walk runs with a single worker, but the progress reporter reads the
// running totals from its own goroutine, so the totals are guarded by mu.
type collector struct {
	mu         sync.Mutex
	types      map[string]Stat
	typeOrder  []string
	buckets    map[string]Stat
	skipped    []SkippedFile
	fileCount  int64
	totalBytes int64
}

// newCollector creates an empty collector.
func newCollector() *collector {
	return &collector{
		types:   make(map[string]Stat),
		buckets: make(map[string]Stat, len(Buckets)),
	}
}

// add folds a file record into the aggregates.
func (c *collector) add(rec FileRecord) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.fileCount++
	c.totalBytes += rec.Size

	stat, seen := c.types[rec.Ext]
	if !seen {
		stat.Label = rec.Ext
		c.typeOrder = append(c.typeOrder, rec.Ext)
	}

	stat.Count++
	stat.Size += rec.Size
	c.types[rec.Ext] = stat

	bucket := Bucket(rec.Size)
	bstat := c.buckets[bucket]
	bstat.Label = bucket
	bstat.Count++
	bstat.Size += rec.Size
	c.buckets[bucket] = bstat
}

// skip records a file that could not be classified.
func (c *collector) skip(path string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.skipped = append(c.skipped, SkippedFile{Path: path, Err: err})
}

// totals returns the running file count and byte total.
func (c *collector) totals() (int64, int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.fileCount, c.totalBytes
}

// finalize produces the Snapshot from the collected data.
func (c *collector) finalize(root string) *Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return &Snapshot{
		Root:       root,
		FileCount:  c.fileCount,
		TotalBytes: c.totalBytes,
		Skipped:    c.skipped,
		types:      c.types,
		typeOrder:  c.typeOrder,
		buckets:    c.buckets,
	}
}
