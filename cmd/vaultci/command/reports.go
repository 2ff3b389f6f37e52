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
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/iriswallet/vaultci/reports"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sys/unix"
)

const (
	reportsOutputFlag = "output"
	manifestFlag      = "manifest"
	titleFlag         = "title"
	addrFlag          = "addr"
)

func newReportsCmd() *cobra.Command {
	reportsCmd := &cobra.Command{
		Use:   "reports",
		Short: "assemble test and coverage reports for GitHub Pages",
		RunE:  expectSubcommand,
	}
	reportsCmd.PersistentFlags().StringP(reportsOutputFlag, "o", reports.DefaultOutputDir,
		"directory to assemble the reports in")

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "assemble the reports, using placeholders for missing ones",
		Args:  cobra.NoArgs,
		RunE:  generateReports,
	}
	generateCmd.Flags().String(manifestFlag, "", "YAML manifest listing the report sections")
	generateCmd.Flags().String(titleFlag, reports.DefaultTitle, "title of the landing page")

	previewCmd := &cobra.Command{
		Use:   "preview",
		Short: "serve the assembled reports for local inspection",
		Args:  cobra.NoArgs,
		RunE:  previewReports,
	}
	previewCmd.Flags().String(addrFlag, reports.DefaultPreviewAddr, "address to serve the reports on")

	reportsCmd.AddCommand(generateCmd, previewCmd)
	return reportsCmd
}

func generateReports(cmd *cobra.Command, _ []string) error {
	cfg := reports.Config{
		OutputDir: successfully(cmd.Flags().GetString(reportsOutputFlag)),
		Title:     successfully(cmd.Flags().GetString(titleFlag)),
	}
	if manifest := successfully(cmd.Flags().GetString(manifestFlag)); manifest != "" {
		sections, err := reports.LoadManifest(manifest)
		if err != nil {
			return err
		}
		cfg.Sections = sections
	}
	cmd.SilenceUsage = true
	_, err := reports.Generate(cfg)
	return err
}

func previewReports(cmd *cobra.Command, _ []string) error {
	dir := successfully(cmd.Flags().GetString(reportsOutputFlag))
	if err := checkDir(dir); err != nil {
		return err
	}
	cmd.SilenceUsage = true
	ctx, cancel := signal.NotifyContext(cmd.Context(), unix.SIGINT, unix.SIGTERM)
	defer cancel()

	srv := reports.NewPreviewServer(successfully(cmd.Flags().GetString(addrFlag)), dir)
	done := make(chan error, 1)
	go func() {
		log.Info(fmt.Sprintf("🌐  serving %q on http://%s", dir, srv.Addr))
		done <- srv.ListenAndServe()
	}()
	select {
	case err := <-done:
		return fmt.Errorf("cannot serve reports, reason: %w", err)
	case <-ctx.Done():
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("cannot shut down report server, reason: %w", err)
	}
	if err := <-done; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("cannot serve reports, reason: %w", err)
	}
	log.Info("🏁  report server stopped")
	return nil
}

func checkDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("no reports in %q, run “vaultci reports generate” first", dir)
	}
	return nil
}
