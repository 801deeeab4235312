package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"swapQuoter/internal/model"
)

// JsonlQuoteSink appends quote records to a JSONL file.
type JsonlQuoteSink struct {
	path string
	mu   sync.Mutex
}

func NewJsonlQuoteSink(path string) *JsonlQuoteSink {
	return &JsonlQuoteSink{path: path}
}

// PutQuotes appends a batch of quote records as JSON lines.
func (s *JsonlQuoteSink) PutQuotes(quotes []model.QuoteRecord) error {
	if len(quotes) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	writer, file, err := openAppend(s.path)
	if err != nil {
		return err
	}
	defer file.Close()

	for _, record := range quotes {
		line, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshal quote record: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write quote record: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	return nil
}

// JsonlSnapshotSink appends pool snapshots to a JSONL file.
type JsonlSnapshotSink struct {
	path string
	mu   sync.Mutex
}

func NewJsonlSnapshotSink(path string) *JsonlSnapshotSink {
	return &JsonlSnapshotSink{path: path}
}

// PutSnapshot appends one snapshot as a JSON line.
func (s *JsonlSnapshotSink) PutSnapshot(snap *model.PoolSnapshot) error {
	if snap == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	writer, file, err := openAppend(s.path)
	if err != nil {
		return err
	}
	defer file.Close()

	line, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if _, err := writer.Write(line); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := writer.WriteByte('\n'); err != nil {
		return fmt.Errorf("write newline: %w", err)
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	return nil
}

// ReadSnapshot loads a single snapshot from a JSON or JSONL file. When the
// file holds multiple lines the last one wins, so re-captured snapshots
// shadow older ones.
func ReadSnapshot(path string) (*model.PoolSnapshot, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open snapshot file: %w", err)
	}
	defer file.Close()

	var snap *model.PoolSnapshot
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		parsed := &model.PoolSnapshot{}
		if err := json.Unmarshal(line, parsed); err != nil {
			return nil, fmt.Errorf("parse snapshot: %w", err)
		}
		snap = parsed
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read snapshot file: %w", err)
	}
	if snap == nil {
		return nil, fmt.Errorf("snapshot file %s is empty", path)
	}
	return snap, nil
}

func openAppend(path string) (*bufio.Writer, *os.File, error) {
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create output dir: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open output file: %w", err)
	}
	return bufio.NewWriter(file), file, nil
}
