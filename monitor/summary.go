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
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/samber/lo"
)

// Stat holds the minimum, average, and maximum of a metric.
type Stat struct {
	Min float64 `json:"min"`
	Avg float64 `json:"avg"`
	Max float64 `json:"max"`
}

// Peak is the sample with the highest value of some metric.
type Peak struct {
	Timestamp time.Time
	Value     float64
	Top       TopConsumer
}

// Summary of a resource usage log.
type Summary struct {
	Start   time.Time
	End     time.Time
	Samples int
	Stats   map[string]Stat // indexed by metric column name
	PeakCPU Peak
	PeakMem Peak
}

// Summarize reduces the specified samples into a Summary. It returns an error
// wrapping ErrNoSamples when there are no samples.
func Summarize(samples []Sample) (*Summary, error) {
	if len(samples) == 0 {
		return nil, ErrNoSamples
	}
	sum := &Summary{
		Start:   samples[0].Timestamp,
		End:     samples[len(samples)-1].Timestamp,
		Samples: len(samples),
		Stats:   make(map[string]Stat, len(Metrics)),
	}
	for _, m := range Metrics {
		values := lo.Map(samples, func(s Sample, _ int) float64 { return m.Value(&s) })
		sum.Stats[m.Column] = Stat{
			Min: lo.Min(values),
			Avg: lo.Sum(values) / float64(len(values)),
			Max: lo.Max(values),
		}
	}
	cpuPeak := lo.MaxBy(samples, func(a, b Sample) bool { return a.CPUPercent > b.CPUPercent })
	sum.PeakCPU = Peak{Timestamp: cpuPeak.Timestamp, Value: cpuPeak.CPUPercent, Top: cpuPeak.Top}
	memPeak := lo.MaxBy(samples, func(a, b Sample) bool { return a.MemoryPercent > b.MemoryPercent })
	sum.PeakMem = Peak{Timestamp: memPeak.Timestamp, Value: memPeak.MemoryPercent, Top: memPeak.Top}
	return sum, nil
}

const rule = "============================================================"

// WriteText writes the summary in its human-readable plain text form.
func (sum *Summary) WriteText(w io.Writer) error {
	var b strings.Builder
	b.WriteString("Resource Usage Summary\n" + rule + "\n\n")
	b.WriteString("Monitoring Period:\n")
	fmt.Fprintf(&b, "  Start: %s\n", sum.Start.Format(TimestampLayout))
	fmt.Fprintf(&b, "  End:   %s\n", sum.End.Format(TimestampLayout))
	fmt.Fprintf(&b, "  Samples: %d\n", sum.Samples)
	for _, m := range Metrics {
		stat := sum.Stats[m.Column]
		fmt.Fprintf(&b, "\n%s:\n", m.Title)
		fmt.Fprintf(&b, "  Average: %s%s\n", m.Format(stat.Avg), m.Unit)
		fmt.Fprintf(&b, "  Maximum: %s%s\n", m.Format(stat.Max), m.Unit)
		fmt.Fprintf(&b, "  Minimum: %s%s\n", m.Format(stat.Min), m.Unit)
	}
	b.WriteString("\nTop Consumers:\n")
	writePeak(&b, "Peak CPU:   ", sum.PeakCPU)
	writePeak(&b, "Peak Memory:", sum.PeakMem)
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("cannot write summary, reason: %w", err)
	}
	return nil
}

func writePeak(b *strings.Builder, label string, peak Peak) {
	fmt.Fprintf(b, "  %s %.2f%% at %s", label, peak.Value, peak.Timestamp.Format(TimestampLayout))
	if peak.Top.Name == "" {
		b.WriteString("\n")
		return
	}
	fmt.Fprintf(b, " by %s (PID %d, CPU %.2f%%, memory %.2f%%)\n",
		peak.Top.Name, peak.Top.PID, peak.Top.CPUPercent, peak.Top.MemoryPercent)
}

type jsonPeriod struct {
	Start   string `json:"start"`
	End     string `json:"end"`
	Samples int    `json:"samples"`
}

type jsonPeak struct {
	Timestamp string         `json:"timestamp"`
	Value     float64        `json:"value"`
	Top       map[string]any `json:"top_consumer"`
}

func newJSONPeak(peak Peak) jsonPeak {
	return jsonPeak{
		Timestamp: peak.Timestamp.Format(TimestampLayout),
		Value:     peak.Value,
		Top: map[string]any{
			"name":           peak.Top.Name,
			"pid":            peak.Top.PID,
			"cpu_percent":    peak.Top.CPUPercent,
			"memory_percent": peak.Top.MemoryPercent,
		},
	}
}

// jsonRow returns the sample keyed by log column names, with the timestamp in
// log format.
func jsonRow(s Sample) map[string]any {
	row := make(map[string]any, len(Metrics)+5)
	row[timestampColumn] = s.Timestamp.Format(TimestampLayout)
	for _, m := range Metrics {
		row[m.Column] = m.Value(&s)
	}
	row[topProcessColumn] = s.Top.Name
	row[topPIDColumn] = s.Top.PID
	row[topCPUColumn] = s.Top.CPUPercent
	row[topMemoryColumn] = s.Top.MemoryPercent
	return row
}

// WriteJSON writes the summary in JSON format, optionally including all
// samples. The monitoring period and the samples use the log's timestamp
// layout.
func (sum *Summary) WriteJSON(w io.Writer, samples []Sample) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	err := enc.Encode(struct {
		Stats   map[string]Stat  `json:"summary"`
		Period  jsonPeriod       `json:"monitoring_period"`
		PeakCPU jsonPeak         `json:"peak_cpu"`
		PeakMem jsonPeak         `json:"peak_memory"`
		Data    []map[string]any `json:"data,omitempty"`
	}{
		Stats: sum.Stats,
		Period: jsonPeriod{
			Start:   sum.Start.Format(TimestampLayout),
			End:     sum.End.Format(TimestampLayout),
			Samples: sum.Samples,
		},
		PeakCPU: newJSONPeak(sum.PeakCPU),
		PeakMem: newJSONPeak(sum.PeakMem),
		Data:    lo.Map(samples, func(s Sample, _ int) map[string]any { return jsonRow(s) }),
	})
	if err != nil {
		return fmt.Errorf("cannot write JSON summary, reason: %w", err)
	}
	return nil
}

// SummarizeFile summarizes the resource usage log at logPath, writing the text
// summary to summaryPath and, unless jsonPath is empty, the JSON summary
// including all samples to jsonPath.
func SummarizeFile(logPath, summaryPath, jsonPath string) (*Summary, error) {
	samples, err := ReadLog(logPath)
	if err != nil {
		return nil, err
	}
	sum, err := Summarize(samples)
	if err != nil {
		return nil, err
	}
	if err := writeFile(summaryPath, sum.WriteText); err != nil {
		return nil, err
	}
	if jsonPath == "" {
		return sum, nil
	}
	err = writeFile(jsonPath, func(w io.Writer) error { return sum.WriteJSON(w, samples) })
	if err != nil {
		return nil, err
	}
	return sum, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("cannot create %s, reason: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("cannot write %s, reason: %w", path, err)
	}
	return nil
}
