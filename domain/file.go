package domain

import (
	"fmt"
	"path/filepath"
	"time"
)

const KB = 1024
const MB = KB * KB

// PartSuffix is inserted between the original file name and the part index.
const PartSuffix = ".part"

// WatchedFile is the polling state of a file the producer may still be writing.
type WatchedFile struct {
	Path     string
	Size     int64
	LastSeen time.Time
	// Stable counts consecutive samples with an unchanged size.
	Stable int
}

// Observe records a new size sample and returns the updated stability counter.
func (f *WatchedFile) Observe(size int64, at time.Time) int {
	if size == f.Size {
		f.Stable++
	} else {
		f.Stable = 0
	}
	f.Size = size
	f.LastSeen = at
	return f.Stable
}

// FilePart is one ordered fragment of a split file.
type FilePart struct {
	Parent string
	Index  int
	Length int64
	Path   string
}

// PartPath returns the on-disk location of the index-th part (1-based) of path.
func PartPath(path string, index int) string {
	return fmt.Sprintf("%s%s%d", path, PartSuffix, index)
}

// PartPrefix is the file name prefix shared by every part of path.
func PartPrefix(path string) string {
	return filepath.Base(path) + PartSuffix
}

func SizeInMB(size int64) float64 {
	return float64(size) / MB
}
