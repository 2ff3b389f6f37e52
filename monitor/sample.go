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
	"fmt"
	"strconv"
	"time"

	"golang.org/x/exp/slices"
)

// TimestampLayout is the layout of the timestamp column in resource usage
// logs, in local time.
const TimestampLayout = "2006-01-02 15:04:05"

// Sample is a single snapshot of host resource usage, corresponding with a
// single row in a resource usage log.
type Sample struct {
	Timestamp     time.Time
	CPUPercent    float64
	MemoryUsedMB  float64
	MemoryPercent float64
	DiskUsedGB    float64
	DiskPercent   float64
	Load1         float64
	Load5         float64
	Load15        float64
	Processes     int
	Threads       int
	SwapUsedMB    float64
	SwapPercent   float64
	Top           TopConsumer
}

// TopConsumer identifies the process using the most CPU at the time a Sample
// was taken.
type TopConsumer struct {
	Name          string
	PID           int32
	CPUPercent    float64
	MemoryPercent float64
}

// Metric describes a numeric column of the resource usage log.
type Metric struct {
	Column   string // CSV column name
	Title    string // human-readable title used in summaries
	Unit     string // suffix for values in summaries, such as "%" or " MB"
	Decimals int    // decimals used in logs and summaries

	get func(*Sample) float64
	set func(*Sample, float64)
}

// Value returns the metric's value in the specified sample.
func (m Metric) Value(s *Sample) float64 { return m.get(s) }

// Format renders the value with the metric's number of decimals, but without
// unit.
func (m Metric) Format(v float64) string {
	return strconv.FormatFloat(v, 'f', m.Decimals, 64)
}

func floatMetric(column, title, unit string, field func(*Sample) *float64) Metric {
	return Metric{
		Column:   column,
		Title:    title,
		Unit:     unit,
		Decimals: 2,
		get:      func(s *Sample) float64 { return *field(s) },
		set:      func(s *Sample, v float64) { *field(s) = v },
	}
}

func countMetric(column, title string, field func(*Sample) *int) Metric {
	return Metric{
		Column: column,
		Title:  title,
		get:    func(s *Sample) float64 { return float64(*field(s)) },
		set:    func(s *Sample, v float64) { *field(s) = int(v) },
	}
}

// Metrics lists the numeric resource usage metrics in log column order.
var Metrics = []Metric{
	floatMetric("cpu_percent", "CPU Usage (%)", "%", func(s *Sample) *float64 { return &s.CPUPercent }),
	floatMetric("memory_used_mb", "Memory Usage (MB)", " MB", func(s *Sample) *float64 { return &s.MemoryUsedMB }),
	floatMetric("memory_percent", "Memory Usage (%)", "%", func(s *Sample) *float64 { return &s.MemoryPercent }),
	floatMetric("disk_used_gb", "Disk Usage (GB)", " GB", func(s *Sample) *float64 { return &s.DiskUsedGB }),
	floatMetric("disk_percent", "Disk Usage (%)", "%", func(s *Sample) *float64 { return &s.DiskPercent }),
	floatMetric("load_avg_1m", "Load Average (1m)", "", func(s *Sample) *float64 { return &s.Load1 }),
	floatMetric("load_avg_5m", "Load Average (5m)", "", func(s *Sample) *float64 { return &s.Load5 }),
	floatMetric("load_avg_15m", "Load Average (15m)", "", func(s *Sample) *float64 { return &s.Load15 }),
	countMetric("processes", "Process Count", func(s *Sample) *int { return &s.Processes }),
	countMetric("threads", "Thread Count", func(s *Sample) *int { return &s.Threads }),
	floatMetric("swap_used_mb", "Swap Usage (MB)", " MB", func(s *Sample) *float64 { return &s.SwapUsedMB }),
	floatMetric("swap_percent", "Swap Usage (%)", "%", func(s *Sample) *float64 { return &s.SwapPercent }),
}

const (
	timestampColumn    = "timestamp"
	topProcessColumn   = "top_process"
	topPIDColumn       = "top_pid"
	topCPUColumn       = "top_cpu_percent"
	topMemoryColumn    = "top_mem_percent"
	topPercentDecimals = 2
)

// Header returns the column names of resource usage logs.
func Header() []string {
	header := make([]string, 0, len(Metrics)+5)
	header = append(header, timestampColumn)
	for _, m := range Metrics {
		header = append(header, m.Column)
	}
	return append(header, topProcessColumn, topPIDColumn, topCPUColumn, topMemoryColumn)
}

// Record returns the CSV record for this sample, with the fields in Header
// order.
func (s Sample) Record() []string {
	record := make([]string, 0, len(Metrics)+5)
	record = append(record, s.Timestamp.Format(TimestampLayout))
	for _, m := range Metrics {
		record = append(record, m.Format(m.Value(&s)))
	}
	return append(record,
		s.Top.Name,
		strconv.FormatInt(int64(s.Top.PID), 10),
		strconv.FormatFloat(s.Top.CPUPercent, 'f', topPercentDecimals, 64),
		strconv.FormatFloat(s.Top.MemoryPercent, 'f', topPercentDecimals, 64))
}

// columnIndex maps the columns found in a log header to their field indices.
type columnIndex map[string]int

func newColumnIndex(header []string) (columnIndex, error) {
	if !slices.Contains(header, timestampColumn) {
		return nil, fmt.Errorf("log header lacks %q column", timestampColumn)
	}
	idx := columnIndex{}
	for i, column := range header {
		idx[column] = i
	}
	return idx, nil
}

// parseRecord returns the Sample for a log record, given the column index of
// the log's header. Columns missing from the header are left zero, as are
// empty fields.
func (idx columnIndex) parseRecord(record []string) (Sample, error) {
	field := func(column string) string {
		i, ok := idx[column]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}
	number := func(column string) (float64, error) {
		text := field(column)
		if text == "" {
			return 0, nil
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s value %q", column, text)
		}
		return v, nil
	}

	var s Sample
	ts, err := time.ParseInLocation(TimestampLayout, field(timestampColumn), time.Local)
	if err != nil {
		return Sample{}, fmt.Errorf("invalid timestamp %q", field(timestampColumn))
	}
	s.Timestamp = ts
	for _, m := range Metrics {
		v, err := number(m.Column)
		if err != nil {
			return Sample{}, err
		}
		m.set(&s, v)
	}
	s.Top.Name = field(topProcessColumn)
	pid, err := number(topPIDColumn)
	if err != nil {
		return Sample{}, err
	}
	s.Top.PID = int32(pid)
	if s.Top.CPUPercent, err = number(topCPUColumn); err != nil {
		return Sample{}, err
	}
	if s.Top.MemoryPercent, err = number(topMemoryColumn); err != nil {
		return Sample{}, err
	}
	return s, nil
}
