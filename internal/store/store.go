// Package store handles persistent CSV storage of metal detections.
// The log is a single append-only file with the format:
//
//	Timestamp,Sensor Value
package store

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"
)

const timeLayout = "2006-01-02 15:04:05"

// DefaultLogFile is the log path used when the config names none.
const DefaultLogFile = "detections_log.csv"

var header = []string{"Timestamp", "Sensor Value"}

// Record is one persisted detection: the moment it was captured and the
// sensor value that crossed the threshold.
type Record struct {
	Time  time.Time
	Value int
}

// CSVStore appends detection records to a single CSV file. The file is
// created (with a header row) on the first append; existing records are
// never rewritten or reordered.
type CSVStore struct {
	path    string
	current *os.File
	writer  *csv.Writer
}

// New creates a store bound to path. The file itself is not touched
// until the first Append.
func New(path string) *CSVStore {
	return &CSVStore{path: path}
}

// Path returns the log file path.
func (s *CSVStore) Path() string {
	return s.path
}

// Append durably appends one record, writing the header row first if
// the file is new or empty. A storage failure is returned as-is; the
// write is not retried.
func (s *CSVStore) Append(rec Record) error {
	if s.current == nil {
		f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return fmt.Errorf("open log: %w", err)
		}
		s.current = f
		s.writer = csv.NewWriter(f)

		info, err := f.Stat()
		if err != nil {
			return fmt.Errorf("stat log: %w", err)
		}
		if info.Size() == 0 {
			s.writer.Write(header)
		}
	}

	s.writer.Write([]string{
		rec.Time.Format(timeLayout),
		strconv.Itoa(rec.Value),
	})
	s.writer.Flush()
	return s.writer.Error()
}

// Close flushes and closes the log file.
func (s *CSVStore) Close() {
	if s.writer != nil {
		s.writer.Flush()
	}
	if s.current != nil {
		s.current.Close()
		s.current = nil
		s.writer = nil
	}
}

// Recent returns up to limit of the most recently appended records, in
// original (oldest-first) order. A missing log file means no detections
// have been recorded yet and yields an empty result, not an error.
func (s *CSVStore) Recent(limit int) ([]Record, error) {
	if limit <= 0 {
		return nil, nil
	}

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	var records []Record
	for i, row := range rows {
		if i == 0 && len(row) > 0 && row[0] == header[0] {
			continue
		}
		if len(row) < 2 {
			continue
		}

		ts, err := time.ParseInLocation(timeLayout, row[0], time.Local)
		if err != nil {
			continue
		}
		value, err := strconv.Atoi(row[1])
		if err != nil {
			continue
		}

		records = append(records, Record{Time: ts, Value: value})
	}

	if len(records) > limit {
		records = records[len(records)-limit:]
	}
	return records, nil
}
