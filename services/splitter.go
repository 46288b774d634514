package services

import (
	"backup-courier/domain"
	"backup-courier/errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"
)

// FileSplitter cuts a file into sibling <name>.partN files of at most chunkSize bytes.
type FileSplitter struct {
	log *slog.Logger
}

func NewFileSplitter(log *slog.Logger) *FileSplitter {
	return &FileSplitter{log: log}
}

// Parts yields the parts of path in order, each one fully written to disk before it is yielded.
// The first error ends the sequence. Parts already written are left on disk.
func (s *FileSplitter) Parts(path string, chunkSize int64) iter.Seq2[domain.FilePart, error] {
	return func(yield func(domain.FilePart, error) bool) {
		if chunkSize <= 0 {
			yield(domain.FilePart{}, errors.ErrInvalidChunkSize)
			return
		}

		src, err := os.Open(path)
		if err != nil {
			yield(domain.FilePart{}, fmt.Errorf("open %s: %w", path, err))
			return
		}
		defer src.Close()

		buf := make([]byte, chunkSize)
		for index := 1; ; index++ {
			part, err := writePart(src, buf, path, index)
			if err == io.EOF {
				return
			}
			if err != nil {
				yield(domain.FilePart{}, err)
				return
			}
			if !yield(part, nil) {
				return
			}
		}
	}
}

// Split materializes every part of path and returns them in sequence order.
func (s *FileSplitter) Split(path string, chunkSize int64) ([]domain.FilePart, error) {
	var parts []domain.FilePart
	for part, err := range s.Parts(path, chunkSize) {
		if err != nil {
			s.log.Error("Split aborted", "path", path, "parts_written", len(parts), "error", err)
			return nil, fmt.Errorf("%w: %w", errors.ErrSplitFailure, err)
		}
		s.log.Debug("Part written", "path", part.Path, "index", part.Index, "bytes", part.Length)
		parts = append(parts, part)
	}
	return parts, nil
}

// writePart copies the next chunk of src into its part file.
// io.EOF is returned when src has no byte left, in which case no file is created.
func writePart(src io.Reader, buf []byte, path string, index int) (domain.FilePart, error) {
	n, err := io.ReadFull(src, buf)
	if err == io.EOF {
		return domain.FilePart{}, io.EOF
	}
	if err != nil && err != io.ErrUnexpectedEOF {
		return domain.FilePart{}, fmt.Errorf("read %s: %w", path, err)
	}

	partPath := domain.PartPath(path, index)
	if err := os.WriteFile(partPath, buf[:n], 0o644); err != nil {
		return domain.FilePart{}, fmt.Errorf("write %s: %w", partPath, err)
	}
	return domain.FilePart{
		Parent: path,
		Index:  index,
		Length: int64(n),
		Path:   partPath,
	}, nil
}
