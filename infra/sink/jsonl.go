package sink

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"

	"github.com/voltlab/battsim/core/model"
)

// JSONLSink appends records as one JSON object per line.
type JSONLSink struct {
	file *os.File
	buf  *bufio.Writer
	enc  *json.Encoder
}

// NewJSONLSink opens (or creates) the file in append mode.
func NewJSONLSink(path string) (*JSONLSink, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open jsonl sink: %w", err)
	}
	buf := bufio.NewWriter(f)
	return &JSONLSink{file: f, buf: buf, enc: json.NewEncoder(buf)}, nil
}

// Write implements RecordSink.
func (s *JSONLSink) Write(rec model.StateRecord) error {
	return s.enc.Encode(rec)
}

// Flush pushes buffered lines to the file.
func (s *JSONLSink) Flush() error {
	return s.buf.Flush()
}

// Close flushes and closes the file.
func (s *JSONLSink) Close() error {
	if err := s.Flush(); err != nil {
		s.file.Close()
		return err
	}
	return s.file.Close()
}
