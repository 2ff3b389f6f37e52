// Copyright 2026 by the vaultci authors
//
// Licensed under the Apache License, Version 2.0 (the "License"); you may not
// use this file except in compliance with the License. You may obtain a copy
// of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS, WITHOUT
// WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied. See the
// License for the specific language governing permissions and limitations
// under the License.


package monitor

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	log "github.com/sirupsen/logrus"
)

// ErrNoLog signals that a resource usage log file does not exist.
var ErrNoLog = errors.New("log file not found")

// ErrNoSamples signals that a resource usage log contains no samples.
var ErrNoSamples = errors.New("no samples to summarize")

// LogWriter appends samples to a resource usage log file. Each sample is
// flushed to the file immediately, so readers never see partial rows except
// for the one currently being written.
type LogWriter struct {
	f *os.File
	w *csv.Writer
}

// CreateLog creates a new resource usage log file, or truncates an existing
// one, and writes the header row.
func CreateLog(path string) (*LogWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("cannot create resource usage log, reason: %w", err)
	}
	lw := &LogWriter{f: f, w: csv.NewWriter(f)}
	if err := lw.write(Header()); err != nil {
		f.Close()
		return nil, fmt.Errorf("cannot write resource usage log header, reason: %w", err)
	}
	return lw, nil
}

// Append writes the specified sample as a new row.
func (lw *LogWriter) Append(s Sample) error {
	if err := lw.write(s.Record()); err != nil {
		return fmt.Errorf("cannot append to resource usage log, reason: %w", err)
	}
	return nil
}

func (lw *LogWriter) write(record []string) error {
	if err := lw.w.Write(record); err != nil {
		return err
	}
	lw.w.Flush()
	return lw.w.Error()
}

// Close the log file.
func (lw *LogWriter) Close() error {
	return lw.f.Close()
}

// ReadLog reads all samples from the resource usage log file at path. If the
// file does not exist, ReadLog returns an error wrapping ErrNoLog.
func ReadLog(path string) ([]Sample, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNoLog, path)
		}
		return nil, fmt.Errorf("cannot open resource usage log, reason: %w", err)
	}
	defer f.Close()
	samples, err := readSamples(f)
	if err != nil {
		return nil, fmt.Errorf("malformed resource usage log %s, reason: %w", path, err)
	}
	return samples, nil
}

func readSamples(r io.Reader) ([]Sample, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // a monitor killed mid-write leaves a short last row
	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	idx, err := newColumnIndex(header)
	if err != nil {
		return nil, err
	}
	samples := []Sample{}
	short := 0 // line of a short row, tolerated only as the last row
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if short != 0 {
			return nil, fmt.Errorf("line %d: incomplete row", short)
		}
		if len(record) < len(header) {
			short = line
			continue
		}
		s, err := idx.parseRecord(record)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		samples = append(samples, s)
	}
	if short != 0 {
		log.Warn(fmt.Sprintf("⚠️  skipping incomplete last row in line %d", short))
	}
	return samples, nil
}
