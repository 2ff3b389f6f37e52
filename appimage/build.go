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

package appimage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/docker/go-units"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
)

// ErrNoAppImage signals that the builder didn't produce any AppImage.
var ErrNoAppImage = errors.New("builder produced no AppImage")

// Build renders the builder recipe, runs the AppImage builder and copies the
// AppImage it produced into the configured output directory, named according
// to the artifact name template. Build returns the path of the final
// AppImage.
//
// Build fails early, before building anything, if the output directory does
// not exist, as then the finished artifact would get lost together with the
// build container.
func Build(ctx context.Context, cfg Config) (string, error) {
	if err := GuardOutputDir(cfg.OutputDir); err != nil {
		return "", err
	}
	artifact, err := cfg.ArtifactName()
	if err != nil {
		return "", err
	}
	log.Info(fmt.Sprintf("🏗  building %q for network %q", artifact, cfg.Network))

	recipe, err := RenderRecipe(cfg.RecipePath(), cfg.Vars())
	if err != nil {
		return "", err
	}

	started := time.Now()
	if err := runBuilder(ctx, cfg, recipe); err != nil {
		return "", err
	}
	built, err := findAppImage(cfg.WorkDir, started)
	if err != nil {
		return "", err
	}
	log.Info(fmt.Sprintf("📦  builder produced %q", built))

	dst := filepath.Join(cfg.OutputDir, artifact)
	digests := Digests{}
	if sameFile(built, dst) {
		log.Info(fmt.Sprintf("   📌  AppImage already in place at %q", dst))
		if err := digests.DigestFile(dst); err != nil {
			return "", err
		}
	} else if err := digests.CopyFile(built, dst); err != nil {
		return "", err
	}
	if _, err := digests.WriteChecksumFile(cfg.OutputDir, artifact); err != nil {
		return "", err
	}
	if info, err := os.Stat(dst); err == nil {
		log.Info(fmt.Sprintf("✅  AppImage %q ready, %s", dst, units.HumanSize(float64(info.Size()))))
	}
	return dst, nil
}

// sameFile returns true if both paths refer to the same existing file.
func sameFile(a, b string) bool {
	ainfo, err := os.Stat(a)
	if err != nil {
		return false
	}
	binfo, err := os.Stat(b)
	if err != nil {
		return false
	}
	return os.SameFile(ainfo, binfo)
}

// GuardOutputDir returns an error if the specified output directory doesn't
// exist or isn't a directory.
func GuardOutputDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("output directory %q does not exist, mount it into the build container", dir)
	}
	return nil
}

// runBuilder runs the AppImage builder on the rendered recipe inside the work
// directory, streaming the builder's output into our log.
func runBuilder(ctx context.Context, cfg Config, recipe string) error {
	absRecipe, err := filepath.Abs(recipe)
	if err != nil {
		return fmt.Errorf("cannot determine rendered recipe path, reason: %w", err)
	}
	log.Info(fmt.Sprintf("🔨  running %s", cfg.Builder))
	cmd := exec.CommandContext(ctx, cfg.Builder, "--recipe", absRecipe, "--skip-test")
	cmd.Dir = cfg.WorkDir
	cmd.Env = append(os.Environ(),
		"NETWORK="+cfg.Network,
		"APP_SUFFIX="+cfg.AppSuffix)
	out := log.StandardLogger().WriterLevel(log.InfoLevel)
	defer out.Close()
	cmd.Stdout = out
	cmd.Stderr = out
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("cannot build AppImage, reason: %s failed: %w", cfg.Builder, err)
	}
	return nil
}

// findAppImage returns the path of the newest AppImage in the specified
// directory that was modified since the build started.
func findAppImage(dir string, started time.Time) (string, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.AppImage"))
	if err != nil {
		return "", fmt.Errorf("cannot look for AppImages, reason: %w", err)
	}
	type candidate struct {
		path  string
		mtime time.Time
	}
	cutoff := started.Truncate(time.Second)
	candidates := lo.FilterMap(paths, func(path string, _ int) (candidate, bool) {
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() || info.ModTime().Before(cutoff) {
			return candidate{}, false
		}
		return candidate{path: path, mtime: info.ModTime()}, true
	})
	if len(candidates) == 0 {
		return "", fmt.Errorf("%w in %q", ErrNoAppImage, dir)
	}
	newest := lo.MaxBy(candidates, func(a, b candidate) bool { return a.mtime.After(b.mtime) })
	return newest.path, nil
}
