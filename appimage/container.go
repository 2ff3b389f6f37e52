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
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/distribution/reference"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/api/types/network"
	"github.com/docker/docker/pkg/jsonmessage"
	"github.com/docker/docker/pkg/stdcopy"
	"github.com/google/go-containerregistry/pkg/name"
	gonanoid "github.com/matoous/go-nanoid/v2"
	ocispec "github.com/opencontainers/image-spec/specs-go/v1"
	log "github.com/sirupsen/logrus"
)

// Paths of the source tree and the output directory inside the build
// container.
const (
	ContainerWorkDir   = "/src"
	ContainerOutputDir = DefaultOutputDir
)

// DockerClient is the subset of the Docker engine API client needed to run a
// build inside a container.
type DockerClient interface {
	ImagePull(ctx context.Context, ref string, options image.PullOptions) (io.ReadCloser, error)
	ContainerCreate(ctx context.Context,
		config *container.Config,
		hostConfig *container.HostConfig,
		networkingConfig *network.NetworkingConfig,
		platform *ocispec.Platform,
		containerName string) (container.CreateResponse, error)
	ContainerStart(ctx context.Context, containerID string, options container.StartOptions) error
	ContainerLogs(ctx context.Context, containerID string, options container.LogsOptions) (io.ReadCloser, error)
	ContainerWait(ctx context.Context, containerID string, condition container.WaitCondition) (<-chan container.WaitResponse, <-chan error)
	ContainerRemove(ctx context.Context, containerID string, options container.RemoveOptions) error
}

// ContainerBuild describes running a build inside a builder container.
type ContainerBuild struct {
	Image  string // fully qualified builder image reference; “latest” is rejected
	Source string // host directory with the source tree
}

// ParseBuilderImage parses the specified image reference, which must name the
// registry and either a tag other than “latest” or a digest.
func ParseBuilderImage(ref string) (name.Reference, error) {
	named, err := reference.ParseNamed(ref)
	if err != nil {
		return nil, fmt.Errorf("invalid builder image reference %q: %w", ref, err)
	}
	if tagged, ok := named.(reference.Tagged); ok && tagged.Tag() == "latest" {
		return nil, fmt.Errorf("builder image reference %q must not use the “latest” tag", ref)
	}
	imgRef, err := name.ParseReference(ref, name.StrictValidation)
	if err != nil {
		return nil, fmt.Errorf("invalid builder image reference %q: %w", ref, err)
	}
	return imgRef, nil
}

// RunInContainer runs the AppImage build inside a container of the specified
// builder image. The source tree becomes the container's work directory and
// the configured output directory on the host gets mounted as the container's
// output directory. RunInContainer returns the host path of the final
// AppImage.
func RunInContainer(ctx context.Context, cli DockerClient, cfg Config, cb ContainerBuild) (string, error) {
	imgRef, err := ParseBuilderImage(cb.Image)
	if err != nil {
		return "", err
	}
	if err := GuardOutputDir(cfg.OutputDir); err != nil {
		return "", err
	}
	artifact, err := cfg.ArtifactName()
	if err != nil {
		return "", err
	}
	source, err := filepath.Abs(cb.Source)
	if err != nil {
		return "", fmt.Errorf("cannot determine source directory, reason: %w", err)
	}
	output, err := filepath.Abs(cfg.OutputDir)
	if err != nil {
		return "", fmt.Errorf("cannot determine output directory, reason: %w", err)
	}

	if err := pullImage(ctx, cli, imgRef); err != nil {
		return "", err
	}

	containerName := "vaultci-appimage-" + gonanoid.MustGenerate("abcdefghijklmnopqrstuvwxyz0123456789", 10)
	recipe := cfg.Recipe
	if filepath.IsAbs(recipe) {
		recipe = filepath.Base(recipe)
	}
	resp, err := cli.ContainerCreate(ctx,
		&container.Config{
			Image:      imgRef.Name(),
			Cmd:        []string{"vaultci", "appimage", "build"},
			WorkingDir: ContainerWorkDir,
			Env: []string{
				"NETWORK=" + cfg.Network,
				"APP_SUFFIX=" + cfg.AppSuffix,
				"OUTPUT_DIR=" + ContainerOutputDir,
				"RECIPE=" + recipe,
				"BUILDER=" + cfg.Builder,
				"WORK_DIR=" + ContainerWorkDir,
				"ARTIFACT_TEMPLATE=" + cfg.ArtifactTemplate,
			},
		},
		&container.HostConfig{
			Mounts: []mount.Mount{
				{Type: mount.TypeBind, Source: source, Target: ContainerWorkDir},
				{Type: mount.TypeBind, Source: output, Target: ContainerOutputDir},
			},
		},
		nil, nil, containerName)
	if err != nil {
		return "", fmt.Errorf("cannot create build container, reason: %w", err)
	}
	log.Info(fmt.Sprintf("📦  created build container %q (%s)", containerName, shortID(resp.ID)))
	defer func() {
		err := cli.ContainerRemove(context.WithoutCancel(ctx), resp.ID, container.RemoveOptions{Force: true})
		if err != nil {
			log.Warn(fmt.Sprintf("⚠️  cannot remove build container %q, reason: %s", containerName, err))
		}
	}()

	if err := cli.ContainerStart(ctx, resp.ID, container.StartOptions{}); err != nil {
		return "", fmt.Errorf("cannot start build container, reason: %w", err)
	}
	if err := streamLogs(ctx, cli, resp.ID); err != nil {
		return "", err
	}
	statusCh, errCh := cli.ContainerWait(ctx, resp.ID, container.WaitConditionNotRunning)
	select {
	case err := <-errCh:
		return "", fmt.Errorf("cannot wait for build container, reason: %w", err)
	case status := <-statusCh:
		if status.Error != nil {
			return "", fmt.Errorf("build container failed, reason: %s", status.Error.Message)
		}
		if status.StatusCode != 0 {
			return "", fmt.Errorf("build container failed with exit code %d", status.StatusCode)
		}
	case <-ctx.Done():
		return "", ctx.Err()
	}
	dst := filepath.Join(cfg.OutputDir, artifact)
	log.Info(fmt.Sprintf("✅  AppImage available at %q", dst))
	return dst, nil
}

// pullImage pulls the referenced image, logging the pull progress at debug
// level.
func pullImage(ctx context.Context, cli DockerClient, imgRef name.Reference) error {
	log.Info(fmt.Sprintf("🖼  pulling builder image %s", imgRef.Name()))
	r, err := cli.ImagePull(ctx, imgRef.Name(), image.PullOptions{})
	if err != nil {
		return fmt.Errorf("cannot pull image %s, reason: %w", imgRef.Name(), err)
	}
	defer r.Close()
	dec := json.NewDecoder(r)
	for {
		var msg jsonmessage.JSONMessage
		if err := dec.Decode(&msg); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("cannot pull image %s, reason: %w", imgRef.Name(), err)
		}
		if msg.Error != nil {
			return fmt.Errorf("cannot pull image %s, reason: %s", imgRef.Name(), msg.Error.Message)
		}
		log.Debug(fmt.Sprintf("   🖭  %s %s", msg.ID, msg.Status))
	}
}

// streamLogs follows the container's stdout and stderr into our log until the
// container terminates.
func streamLogs(ctx context.Context, cli DockerClient, containerID string) error {
	r, err := cli.ContainerLogs(ctx, containerID, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     true,
	})
	if err != nil {
		return fmt.Errorf("cannot retrieve build container logs, reason: %w", err)
	}
	defer r.Close()
	stdout := log.StandardLogger().WriterLevel(log.InfoLevel)
	defer stdout.Close()
	stderr := log.StandardLogger().WriterLevel(log.WarnLevel)
	defer stderr.Close()
	if _, err := stdcopy.StdCopy(stdout, stderr, r); err != nil {
		return fmt.Errorf("cannot stream build container logs, reason: %w", err)
	}
	return nil
}

func shortID(id string) string {
	if len(id) > 12 {
		return id[:12]
	}
	return id
}
