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
	"fmt"
	"path/filepath"

	"github.com/iriswallet/vaultci/interpolate"
)

// DefaultArtifactTemplate names the final AppImage after the network and the
// optional application suffix.
const DefaultArtifactTemplate = "iris-wallet-vault${APP_SUFFIX:+-${APP_SUFFIX}}-${NETWORK}.AppImage"

// Default settings of an AppImage build.
const (
	DefaultOutputDir = "/appimage"
	DefaultRecipe    = "AppImageBuilder.yml"
	DefaultBuilder   = "appimage-builder"
	DefaultWorkDir   = "."
)

// Config describes an AppImage build. It is usually read from the
// environment variables of the same (upper case) names.
type Config struct {
	Network          string `mapstructure:"network" validate:"required"`
	AppSuffix        string `mapstructure:"app_suffix"`
	OutputDir        string `mapstructure:"output_dir" validate:"required"`
	Recipe           string `mapstructure:"recipe" validate:"required"`
	Builder          string `mapstructure:"builder" validate:"required"`
	WorkDir          string `mapstructure:"work_dir" validate:"required"`
	ArtifactTemplate string `mapstructure:"artifact_template" validate:"required"`
}

// Defaults returns the configuration keys together with their default values.
func Defaults() map[string]any {
	return map[string]any{
		"network":           "",
		"app_suffix":        "",
		"output_dir":        DefaultOutputDir,
		"recipe":            DefaultRecipe,
		"builder":           DefaultBuilder,
		"work_dir":          DefaultWorkDir,
		"artifact_template": DefaultArtifactTemplate,
	}
}

// Vars returns the process environment together with the build's network and
// application suffix, for use in interpolating templates.
func (c Config) Vars() interpolate.Vars {
	return interpolate.Environ().With(interpolate.Vars{
		"NETWORK":    c.Network,
		"APP_SUFFIX": c.AppSuffix,
	})
}

// ArtifactName returns the file name of the final AppImage, as specified by
// the artifact template.
func (c Config) ArtifactName() (string, error) {
	name, err := interpolate.String(c.ArtifactTemplate, c.Vars())
	if err != nil {
		return "", fmt.Errorf("invalid artifact name template, reason: %w", err)
	}
	if name == "" || name != filepath.Base(name) || name == "." || name == ".." {
		return "", fmt.Errorf("invalid artifact name %q", name)
	}
	return name, nil
}

// RecipePath returns the path of the builder recipe, relative to the work
// directory unless absolute.
func (c Config) RecipePath() string {
	if filepath.IsAbs(c.Recipe) {
		return c.Recipe
	}
	return filepath.Join(c.WorkDir, c.Recipe)
}
