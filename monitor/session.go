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
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/process"
	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/slices"
	"golang.org/x/sys/unix"
)

// DefaultPIDFile is the default location of the pid file of a background
// monitor.
const DefaultPIDFile = "resource_monitor.pid"

// ErrAlreadyRunning signals that a background monitor is still alive.
var ErrAlreadyRunning = errors.New("resource monitor already running")

// Session tracks a background monitor process by means of its pid file.
type Session struct {
	PIDFile string
}

// pollInterval is how often Stop checks whether a signalled monitor process
// has terminated.
const pollInterval = 50 * time.Millisecond

// Running returns the PID of the background monitor and true, if the pid file
// names a process that is still alive. Otherwise, it returns false.
func (s Session) Running() (int, bool, error) {
	pid, err := s.readPID()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return pid, alive(pid), nil
}

// Start starts the specified (monitor) command in the background and writes
// its PID to the pid file. Start refuses to start another monitor while the
// pid file names a live process; a stale pid file gets replaced.
func (s Session) Start(cmd *exec.Cmd) error {
	pid, running, err := s.Running()
	if err != nil {
		log.Warn(fmt.Sprintf("⚠️  replacing unusable pid file %s, reason: %s", s.PIDFile, err))
	}
	if running {
		return fmt.Errorf("%w with PID %d", ErrAlreadyRunning, pid)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("cannot start resource monitor, reason: %w", err)
	}
	pid = cmd.Process.Pid
	if err := os.WriteFile(s.PIDFile, []byte(strconv.Itoa(pid)+"\n"), 0644); err != nil {
		_ = cmd.Process.Kill()
		return fmt.Errorf("cannot write pid file, reason: %w", err)
	}
	log.Info(fmt.Sprintf("🚀  resource monitor started with PID %d", pid))
	return nil
}

// Stop terminates the background monitor named in the pid file, if it is
// still alive, and then removes the pid file. Stop signals SIGTERM and waits
// for the monitor to terminate until the context is done, then kills it.
// Stop returns false if there was no live monitor to stop.
func (s Session) Stop(ctx context.Context) (bool, error) {
	pid, err := s.readPID()
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Info("💤  no resource monitor running")
			return false, nil
		}
		_ = os.Remove(s.PIDFile)
		return false, err
	}
	defer func() {
		if err := os.Remove(s.PIDFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			log.Warn(fmt.Sprintf("⚠️  cannot remove pid file %s, reason: %s", s.PIDFile, err))
		}
	}()
	if !alive(pid) {
		log.Info(fmt.Sprintf("💤  resource monitor with PID %d already gone", pid))
		return false, nil
	}
	log.Info(fmt.Sprintf("🛑  stopping resource monitor with PID %d", pid))
	if err := unix.Kill(pid, unix.SIGTERM); err != nil {
		if errors.Is(err, unix.ESRCH) {
			return false, nil
		}
		return false, fmt.Errorf("cannot signal resource monitor with PID %d, reason: %w", pid, err)
	}
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for alive(pid) {
		select {
		case <-ctx.Done():
			log.Warn(fmt.Sprintf("⚠️  resource monitor with PID %d didn't terminate, killing it", pid))
			_ = unix.Kill(pid, unix.SIGKILL)
			return true, nil
		case <-ticker.C:
		}
	}
	return true, nil
}

func (s Session) readPID() (int, error) {
	b, err := os.ReadFile(s.PIDFile)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(b)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("malformed pid file %s", s.PIDFile)
	}
	return pid, nil
}

// alive returns true if the process with the specified PID exists and hasn't
// terminated yet; zombies are thus not alive.
func alive(pid int) bool {
	if err := unix.Kill(pid, 0); err != nil && !errors.Is(err, unix.EPERM) {
		return false
	}
	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		return false
	}
	status, err := proc.Status()
	if err != nil {
		return true
	}
	return !slices.Contains(status, process.Zombie)
}
