package metrics

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/zstd"
)

const HistoryFile = "history.parquet"

// Writer keeps the run history and rewrites it to disk after every iteration.
type Writer struct {
	path    string
	records []Record
}

func NewWriter(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}
	return &Writer{path: filepath.Join(dir, HistoryFile)}, nil
}

func (w *Writer) Path() string {
	return w.path
}

// Add buffers a record without touching the disk.
func (w *Writer) Add(record Record) {
	w.records = append(w.records, record)
}

// Append adds a record and persists the full history.
func (w *Writer) Append(record Record) error {
	w.Add(record)
	return w.Flush()
}

// Flush rewrites the history file with every buffered record. A failed write
// leaves the previous file in place.
func (w *Writer) Flush() error {
	// Write to a temp file and rename atomically.
	tmpPath := w.path + ".tmp"
	_ = os.Remove(tmpPath)

	if err := parquet.WriteFile(tmpPath, w.records,
		parquet.Compression(&zstd.Codec{Level: zstd.SpeedBetterCompression}),
		parquet.KeyValueMetadata("schema", "iteration_history_v1"),
	); err != nil {
		return fmt.Errorf("write history: %w", err)
	}
	if err := os.Rename(tmpPath, w.path); err != nil {
		return fmt.Errorf("rename history: %w", err)
	}
	return nil
}

// ReadHistory loads every record from a history file.
func ReadHistory(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	pf, err := parquet.OpenFile(f, stat.Size())
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}

	reader := parquet.NewGenericReader[Record](pf)
	defer reader.Close()

	records := make([]Record, reader.NumRows())
	n, err := reader.Read(records)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return records[:n], nil
}
