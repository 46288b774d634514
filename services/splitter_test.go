package services

import (
	"backup-courier/domain"
	"backup-courier/errors"
	"bytes"
	"crypto/rand"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func writeRandomFile(t *testing.T, dir, name string, size int) (string, []byte) {
	t.Helper()
	content := make([]byte, size)
	_, err := rand.Read(content)
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, content, 0o644))
	return path, content
}

func TestFileSplitter_Split(t *testing.T) {
	splitter := NewFileSplitter(logs.GetLoggerFromLevel(slog.LevelDebug))

	tests := []struct {
		description string
		size        int
		chunk       int64
		wantParts   int
		wantLast    int64
	}{
		{"Should produce ceil(S/C) parts with a short tail", 120, 49, 3, 22},
		{"Should produce full last part when size is a multiple", 98, 49, 2, 49},
		{"Should produce a single part when file fits", 10, 49, 1, 10},
		{"Should produce one byte parts", 4, 1, 4, 1},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			req := require.New(t)
			path, content := writeRandomFile(t, t.TempDir(), "backup.zip", tt.size)

			parts, err := splitter.Split(path, tt.chunk)
			req.NoError(err)
			req.Len(parts, tt.wantParts)

			var rebuilt bytes.Buffer
			for i, part := range parts {
				req.Equal(i+1, part.Index)
				req.Equal(path, part.Parent)
				req.Equal(domain.PartPath(path, i+1), part.Path)
				req.LessOrEqual(part.Length, tt.chunk)

				data, err := os.ReadFile(part.Path)
				req.NoError(err)
				req.Len(data, int(part.Length))
				rebuilt.Write(data)
			}
			req.Equal(tt.wantLast, parts[len(parts)-1].Length)
			req.Equal(content, rebuilt.Bytes(), "concatenated parts must reproduce the source")
		})
	}
}

func TestFileSplitter_PartNaming(t *testing.T) {
	req := require.New(t)
	splitter := NewFileSplitter(logs.GetLoggerFromLevel(slog.LevelDebug))
	dir := t.TempDir()
	path, _ := writeRandomFile(t, dir, "db-2026.zip", 30)

	_, err := splitter.Split(path, 10)
	req.NoError(err)

	for _, name := range []string{"db-2026.zip.part1", "db-2026.zip.part2", "db-2026.zip.part3"} {
		_, err := os.Stat(filepath.Join(dir, name))
		req.NoError(err, name)
	}
}

func TestFileSplitter_EmptyFile(t *testing.T) {
	req := require.New(t)
	splitter := NewFileSplitter(logs.GetLoggerFromLevel(slog.LevelDebug))
	path, _ := writeRandomFile(t, t.TempDir(), "empty.zip", 0)

	parts, err := splitter.Split(path, 10)
	req.NoError(err)
	req.Empty(parts)
}

func TestFileSplitter_Errors(t *testing.T) {
	splitter := NewFileSplitter(logs.GetLoggerFromLevel(slog.LevelDebug))

	t.Run("Should reject a non positive chunk size", func(t *testing.T) {
		req := require.New(t)
		path, _ := writeRandomFile(t, t.TempDir(), "backup.zip", 10)
		_, err := splitter.Split(path, 0)
		req.ErrorIs(err, errors.ErrSplitFailure)
		req.ErrorIs(err, errors.ErrInvalidChunkSize)
	})

	t.Run("Should fail when the source is missing", func(t *testing.T) {
		req := require.New(t)
		_, err := splitter.Split(filepath.Join(t.TempDir(), "missing.zip"), 10)
		req.ErrorIs(err, errors.ErrSplitFailure)
		req.ErrorIs(err, os.ErrNotExist)
	})
}

func TestFileSplitter_PartsIsLazy(t *testing.T) {
	req := require.New(t)
	splitter := NewFileSplitter(logs.GetLoggerFromLevel(slog.LevelDebug))
	path, _ := writeRandomFile(t, t.TempDir(), "backup.zip", 30)

	for part, err := range splitter.Parts(path, 10) {
		req.NoError(err)
		req.Equal(1, part.Index)
		break
	}

	_, err := os.Stat(domain.PartPath(path, 1))
	req.NoError(err)
	_, err = os.Stat(domain.PartPath(path, 2))
	req.ErrorIs(err, os.ErrNotExist, "stopping the iteration must not materialize later parts")
}
