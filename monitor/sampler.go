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
	"math"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
)

// Sampler takes snapshots of resource usage.
type Sampler interface {
	Sample(ctx context.Context) (Sample, error)
}

const (
	mib = 1024 * 1024
	gib = 1024 * 1024 * 1024
)

// DefaultCPUWindow is the time window over which the overall CPU usage gets
// measured.
const DefaultCPUWindow = time.Second

// HostSampler samples the resource usage of the host it is running on.
type HostSampler struct {
	DiskPath  string        // filesystem to report the disk usage of; defaults to "/"
	CPUWindow time.Duration // defaults to DefaultCPUWindow
}

var _ Sampler = (*HostSampler)(nil)

// Sample returns a new snapshot of the host's resource usage. Sample blocks
// for the CPU window duration.
func (h *HostSampler) Sample(ctx context.Context) (Sample, error) {
	window := h.CPUWindow
	if window <= 0 {
		window = DefaultCPUWindow
	}
	diskPath := h.DiskPath
	if diskPath == "" {
		diskPath = "/"
	}

	cpuPercents, err := cpu.PercentWithContext(ctx, window, false)
	if err != nil {
		return Sample{}, fmt.Errorf("cannot determine CPU usage, reason: %w", err)
	}
	if len(cpuPercents) == 0 {
		return Sample{}, fmt.Errorf("cannot determine CPU usage, reason: no CPU data")
	}
	vmem, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return Sample{}, fmt.Errorf("cannot determine memory usage, reason: %w", err)
	}
	swap, err := mem.SwapMemoryWithContext(ctx)
	if err != nil {
		return Sample{}, fmt.Errorf("cannot determine swap usage, reason: %w", err)
	}
	du, err := disk.UsageWithContext(ctx, diskPath)
	if err != nil {
		return Sample{}, fmt.Errorf("cannot determine disk usage of %s, reason: %w", diskPath, err)
	}
	loadavg, err := load.AvgWithContext(ctx)
	if err != nil {
		return Sample{}, fmt.Errorf("cannot determine load averages, reason: %w", err)
	}
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return Sample{}, fmt.Errorf("cannot list processes, reason: %w", err)
	}
	threads, top := processStats(ctx, procs)

	return Sample{
		Timestamp:     time.Now(),
		CPUPercent:    round2(cpuPercents[0]),
		MemoryUsedMB:  round2(float64(vmem.Used) / mib),
		MemoryPercent: round2(vmem.UsedPercent),
		DiskUsedGB:    round2(float64(du.Used) / gib),
		DiskPercent:   round2(du.UsedPercent),
		Load1:         round2(loadavg.Load1),
		Load5:         round2(loadavg.Load5),
		Load15:        round2(loadavg.Load15),
		Processes:     len(procs),
		Threads:       threads,
		SwapUsedMB:    round2(float64(swap.Used) / mib),
		SwapPercent:   round2(swap.UsedPercent),
		Top:           top,
	}, nil
}

// processStats returns the total number of threads of the specified processes
// as well as the top CPU consumer. Processes might vanish while we're
// looking, so any per-process errors are silently skipped.
func processStats(ctx context.Context, procs []*process.Process) (threads int, top TopConsumer) {
	topCPU := -1.0
	for _, proc := range procs {
		if n, err := proc.NumThreadsWithContext(ctx); err == nil {
			threads += int(n)
		}
		cpuPercent, err := proc.CPUPercentWithContext(ctx)
		if err != nil || cpuPercent <= topCPU {
			continue
		}
		name, err := proc.NameWithContext(ctx)
		if err != nil {
			continue
		}
		memPercent, _ := proc.MemoryPercentWithContext(ctx)
		topCPU = cpuPercent
		top = TopConsumer{
			Name:          name,
			PID:           proc.Pid,
			CPUPercent:    round2(cpuPercent),
			MemoryPercent: round2(float64(memPercent)),
		}
	}
	return
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
