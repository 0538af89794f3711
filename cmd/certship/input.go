package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/bft-labs/certship/internal/cliconfig"
	"github.com/bft-labs/certship/pkg/certship"
)

// maxLineSize bounds a single input record.
const maxLineSize = 1 << 20

var errTrailingData = errors.New("trailing data after record")

// recordReader decodes newline-delimited JSON objects into entries.
// Blank lines, null and {} become empty records, which the forwarder skips.
// Lines that are not JSON objects are logged and dropped.
type recordReader struct {
	scanner *bufio.Scanner
	log     zerolog.Logger
	now     func() time.Time
	line    int
}

func newRecordReader(r io.Reader, log zerolog.Logger) *recordReader {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 64<<10), maxLineSize)
	return &recordReader{scanner: s, log: log, now: time.Now}
}

// Next returns the next entry, or io.EOF once the input is exhausted.
func (r *recordReader) Next() (certship.Entry, error) {
	for r.scanner.Scan() {
		r.line++
		rec, err := decodeRecord(r.scanner.Bytes())
		if err != nil {
			r.log.Warn().Int("line", r.line).Err(err).Msg("dropping malformed record")
			continue
		}
		return certship.Entry{Time: r.now(), Record: rec}, nil
	}
	if err := r.scanner.Err(); err != nil {
		return certship.Entry{}, fmt.Errorf("read line %d: %w", r.line+1, err)
	}
	return certship.Entry{}, io.EOF
}

func decodeRecord(line []byte) (certship.Record, error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(line))
	dec.UseNumber()

	var rec certship.Record
	if err := dec.Decode(&rec); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errTrailingData
	}
	return rec, nil
}

// openInput opens path for reading, with "-" meaning stdin.
func openInput(path string) (io.Reader, func() error, error) {
	if path == cliconfig.StdinInput {
		return os.Stdin, func() error { return nil }, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}
