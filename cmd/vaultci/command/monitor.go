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

package command

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/iriswallet/vaultci/config"
	"github.com/iriswallet/vaultci/monitor"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"
)

const (
	intervalFlag   = "interval"
	outputFlag     = "output"
	summaryFlag    = "summary"
	jsonFlag       = "json"
	pidfileFlag    = "pidfile"
	diskPathFlag   = "disk-path"
	foregroundFlag = "foreground"
	stopWaitFlag   = "wait"
)

const (
	defaultLogFile     = "resource_usage.log"
	defaultSummaryFile = "resource_summary.txt"
	defaultStopWait    = 10 * time.Second
)

// monitorSettings are read from $MONITOR_INTERVAL, $MONITOR_OUTPUT, ... with
// the flags of the same names taking precedence.
type monitorSettings struct {
	Interval int    `mapstructure:"interval" validate:"gt=0"` // seconds
	Output   string `mapstructure:"output" validate:"required"`
	Summary  string `mapstructure:"summary" validate:"required"`
	JSON     string `mapstructure:"json"`
	PIDFile  string `mapstructure:"pidfile" validate:"required"`
	DiskPath string `mapstructure:"disk_path" validate:"required"`
}

func monitorDefaults() map[string]any {
	return map[string]any{
		"interval":  int(monitor.DefaultInterval / time.Second),
		"output":    defaultLogFile,
		"summary":   defaultSummaryFile,
		"json":      "",
		"pidfile":   monitor.DefaultPIDFile,
		"disk_path": "/",
	}
}

func loadMonitorSettings(cmd *cobra.Command) (monitorSettings, error) {
	v := config.New("MONITOR", monitorDefaults())
	err := config.BindFlags(v, cmd.Flags(),
		intervalFlag, outputFlag, summaryFlag, jsonFlag, pidfileFlag, diskPathFlag)
	if err != nil {
		return monitorSettings{}, err
	}
	var settings monitorSettings
	if err := config.Load(v, &settings); err != nil {
		return monitorSettings{}, err
	}
	return settings, nil
}

// newSampler returns the sampler used by the monitoring loop; tests replace
// it.
var newSampler = func(settings monitorSettings) monitor.Sampler {
	return &monitor.HostSampler{DiskPath: settings.DiskPath}
}

// newMonitorProcess returns the command to run as the background monitor; it
// reruns this very binary with the hidden “monitor run” command, passing the
// settings via the environment.
var newMonitorProcess = func(settings monitorSettings) (*exec.Cmd, error) {
	self, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("cannot determine executable, reason: %w", err)
	}
	cmd := exec.Command(self, "monitor", "run")
	cmd.Env = append(os.Environ(),
		"MONITOR_INTERVAL="+strconv.Itoa(settings.Interval),
		"MONITOR_OUTPUT="+settings.Output,
		"MONITOR_PIDFILE="+settings.PIDFile,
		"MONITOR_DISK_PATH="+settings.DiskPath)
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	return cmd, nil
}

func newMonitorCmd() *cobra.Command {
	monitorCmd := &cobra.Command{
		Use:   "monitor",
		Short: "monitor CI resource usage",
		Long: `Monitors the resource usage of the CI runner in the background, writing
samples to a CSV log, and summarizes the log when done.

Settings are taken from the environment variables MONITOR_INTERVAL,
MONITOR_OUTPUT, MONITOR_SUMMARY, MONITOR_JSON, MONITOR_PIDFILE and
MONITOR_DISK_PATH, unless overridden by flags.`,
		RunE: expectSubcommand,
	}
	flags := monitorCmd.PersistentFlags()
	flags.IntP(intervalFlag, "i", int(monitor.DefaultInterval/time.Second), "sampling interval in seconds")
	flags.StringP(outputFlag, "o", defaultLogFile, "resource usage log file")
	flags.StringP(summaryFlag, "s", defaultSummaryFile, "summary file")
	flags.StringP(jsonFlag, "j", "", "optional JSON summary file")
	flags.String(pidfileFlag, monitor.DefaultPIDFile, "pid file of the background monitor")
	flags.String(diskPathFlag, "/", "filesystem to report the disk usage of")

	startCmd := &cobra.Command{
		Use:   "start",
		Short: "start monitoring in the background",
		Args:  cobra.NoArgs,
		RunE:  startMonitor,
	}
	startCmd.Flags().Bool(foregroundFlag, false, "monitor in the foreground until interrupted")

	runCmd := &cobra.Command{
		Use:    "run",
		Short:  "run the monitoring loop",
		Hidden: true,
		Args:   cobra.NoArgs,
		RunE:   runMonitor,
	}

	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "stop the background monitor",
		Args:  cobra.NoArgs,
		RunE:  stopMonitor,
	}
	stopCmd.Flags().Duration(stopWaitFlag, defaultStopWait, "time to wait for the monitor to terminate")

	summaryCmd := &cobra.Command{
		Use:   "summary",
		Short: "summarize the resource usage log",
		Args:  cobra.NoArgs,
		RunE:  summarizeMonitorLog,
	}

	monitorCmd.AddCommand(startCmd, runCmd, stopCmd, summaryCmd)
	return monitorCmd
}

func startMonitor(cmd *cobra.Command, _ []string) error {
	settings, err := loadMonitorSettings(cmd)
	if err != nil {
		return err
	}
	cmd.SilenceUsage = true
	if successfully(cmd.Flags().GetBool(foregroundFlag)) {
		return monitorLoop(cmd.Context(), settings)
	}
	proc, err := newMonitorProcess(settings)
	if err != nil {
		return err
	}
	sess := monitor.Session{PIDFile: settings.PIDFile}
	if err := sess.Start(proc); err != nil {
		return err
	}
	log.Info(fmt.Sprintf("   📝  logging to %q every %ds", settings.Output, settings.Interval))
	return nil
}

func runMonitor(cmd *cobra.Command, _ []string) error {
	settings, err := loadMonitorSettings(cmd)
	if err != nil {
		return err
	}
	cmd.SilenceUsage = true
	return monitorLoop(cmd.Context(), settings)
}

// monitorLoop samples into a fresh log until SIGINT or SIGTERM.
func monitorLoop(ctx context.Context, settings monitorSettings) error {
	ctx, cancel := signal.NotifyContext(ctx, unix.SIGINT, unix.SIGTERM)
	defer cancel()
	lw, err := monitor.CreateLog(settings.Output)
	if err != nil {
		return err
	}
	defer lw.Close()
	m := &monitor.Monitor{
		Sampler:  newSampler(settings),
		Interval: time.Duration(settings.Interval) * time.Second,
	}
	_, err = m.Run(ctx, lw)
	return err
}

func stopMonitor(cmd *cobra.Command, _ []string) error {
	settings, err := loadMonitorSettings(cmd)
	if err != nil {
		return err
	}
	cmd.SilenceUsage = true
	ctx, cancel := context.WithTimeout(cmd.Context(), successfully(cmd.Flags().GetDuration(stopWaitFlag)))
	defer cancel()
	sess := monitor.Session{PIDFile: settings.PIDFile}
	_, err = sess.Stop(ctx)
	return err
}

func summarizeMonitorLog(cmd *cobra.Command, _ []string) error {
	settings, err := loadMonitorSettings(cmd)
	if err != nil {
		return err
	}
	cmd.SilenceUsage = true
	sum, err := monitor.SummarizeFile(settings.Output, settings.Summary, settings.JSON)
	if errors.Is(err, monitor.ErrNoLog) {
		cmd.SilenceErrors = true
		cmd.PrintErrf("Error: Log file not found: %s\n", settings.Output)
		return err
	}
	if err != nil {
		return err
	}
	log.Info(fmt.Sprintf("📊  summary written to %q", settings.Summary))
	if settings.JSON != "" {
		log.Info(fmt.Sprintf("📊  JSON summary written to %q", settings.JSON))
	}
	return sum.WriteText(cmd.OutOrStdout())
}
