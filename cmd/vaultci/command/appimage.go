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
	"fmt"

	"github.com/docker/docker/client"
	"github.com/iriswallet/vaultci/appimage"
	"github.com/iriswallet/vaultci/config"
	"github.com/spf13/cobra"
)

const (
	networkFlag          = "network"
	appSuffixFlag        = "app-suffix"
	outputDirFlag        = "output-dir"
	recipeFlag           = "recipe"
	builderFlag          = "builder"
	workDirFlag          = "work-dir"
	artifactTemplateFlag = "artifact-template"
	inContainerFlag      = "in-container"
	dockerHostFlag       = "host"
)

// newDockerClient returns a Docker engine API client; tests replace it.
var newDockerClient = func(host string) (appimage.DockerClient, error) {
	opts := []client.Opt{client.FromEnv, client.WithAPIVersionNegotiation()}
	if host != "" {
		opts = append(opts, client.WithHost(host))
	}
	cli, err := client.NewClientWithOpts(opts...)
	if err != nil {
		return nil, fmt.Errorf("cannot create Docker client, reason: %w", err)
	}
	return cli, nil
}

func newAppImageCmd() *cobra.Command {
	appimageCmd := &cobra.Command{
		Use:   "appimage",
		Short: "build the Iris Wallet Vault AppImage",
		RunE:  expectSubcommand,
	}

	buildCmd := &cobra.Command{
		Use:   "build",
		Short: "build the AppImage and copy it into the output directory",
		Long: `Builds the AppImage and copies it into the output directory, which must
exist. When run inside the build container, the output directory needs to be
a mounted host directory.

Settings are taken from the environment variables NETWORK, APP_SUFFIX,
OUTPUT_DIR, RECIPE, BUILDER, WORK_DIR and ARTIFACT_TEMPLATE, unless
overridden by flags.`,
		Args: cobra.NoArgs,
		RunE: buildAppImage,
	}
	flags := buildCmd.Flags()
	flags.String(networkFlag, "", "Bitcoin network to build for, such as regtest, testnet or mainnet")
	flags.String(appSuffixFlag, "", "optional application name suffix")
	flags.String(outputDirFlag, appimage.DefaultOutputDir, "directory to copy the final AppImage into")
	flags.String(recipeFlag, appimage.DefaultRecipe, "AppImage builder recipe")
	flags.String(builderFlag, appimage.DefaultBuilder, "AppImage builder command")
	flags.String(workDirFlag, appimage.DefaultWorkDir, "directory with the sources to build from")
	flags.String(artifactTemplateFlag, appimage.DefaultArtifactTemplate, "name template of the final AppImage")
	flags.String(inContainerFlag, "", "build inside a container of the specified builder image")
	flags.StringP(dockerHostFlag, "H", "", "Docker daemon socket to connect to")

	appimageCmd.AddCommand(buildCmd)
	return appimageCmd
}

func buildAppImage(cmd *cobra.Command, _ []string) error {
	v := config.New("", appimage.Defaults())
	err := config.BindFlags(v, cmd.Flags(),
		networkFlag, appSuffixFlag, outputDirFlag, recipeFlag, builderFlag, workDirFlag, artifactTemplateFlag)
	if err != nil {
		return err
	}
	var cfg appimage.Config
	if err := config.Load(v, &cfg); err != nil {
		return err
	}
	cmd.SilenceUsage = true

	image := successfully(cmd.Flags().GetString(inContainerFlag))
	if image == "" {
		_, err := appimage.Build(cmd.Context(), cfg)
		return err
	}
	cli, err := newDockerClient(successfully(cmd.Flags().GetString(dockerHostFlag)))
	if err != nil {
		return err
	}
	if closer, ok := cli.(interface{ Close() error }); ok {
		defer closer.Close()
	}
	_, err = appimage.RunInContainer(cmd.Context(), cli, cfg, appimage.ContainerBuild{
		Image:  image,
		Source: cfg.WorkDir,
	})
	return err
}
