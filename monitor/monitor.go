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
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

// DefaultInterval is the default waiting time between two samples.
const DefaultInterval = 5 * time.Second

// Monitor periodically samples resource usage into a log.
type Monitor struct {
	Sampler  Sampler
	Interval time.Duration // defaults to DefaultInterval
}

// Run samples resource usage and appends the samples to the specified log
// until the passed context gets cancelled. Run then returns the number of
// samples written and a nil error; it returns early with a non-nil error only
// when it cannot write to the log. Failing to take an individual sample is
// logged, but doesn't end the monitoring.
func (m *Monitor) Run(ctx context.Context, lw *LogWriter) (int, error) {
	interval := m.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	log.Info(fmt.Sprintf("📈  starting resource monitoring (interval: %s)", interval))
	started := time.Now()
	samples := 0
	defer func() {
		log.Info(fmt.Sprintf("🏁  monitoring stopped after %.1fs, collected %d samples",
			time.Since(started).Seconds(), samples))
	}()

	timer := time.NewTimer(0)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return samples, nil
		case <-timer.C:
		}
		if ctx.Err() != nil {
			return samples, nil
		}
		s, err := m.Sampler.Sample(ctx)
		switch {
		case err != nil && ctx.Err() != nil:
			return samples, nil
		case err != nil:
			log.Warn(fmt.Sprintf("⚠️  skipping sample, reason: %s", err))
		default:
			if err := lw.Append(s); err != nil {
				return samples, err
			}
			samples++
			log.Debug(fmt.Sprintf("   📊  CPU %.2f%%, memory %.2f%%, top %q",
				s.CPUPercent, s.MemoryPercent, s.Top.Name))
		}
		timer.Reset(interval)
	}
}
