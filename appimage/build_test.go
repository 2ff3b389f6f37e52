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
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/thediveo/success"
)

const recipe = `version: 1
AppDir:
  path: ./AppDir
  app_info:
    id: org.iriswallet.vault
    name: iris-wallet-vault
    version: ${NETWORK}
  runtime:
    env:
      VAULT_NETWORK: ${NETWORK:?network required}
      VAULT_SUFFIX: ${APP_SUFFIX:-none}
script:
  - echo $$HOME
`

// builderScript pretends to be the AppImage builder: it checks its arguments
// and the rendered recipe, and then leaves an AppImage in its working
// directory.
const builderScript = `#!/bin/sh
set -e
[ "$1" = "--recipe" ] || exit 2
[ "$3" = "--skip-test" ] || exit 2
grep -q "version: ${NETWORK}" "$2" || { echo "recipe not rendered" >&2; exit 3; }
echo "building for ${NETWORK}"
printf 'AppImage for %s\n' "${NETWORK}" > Iris_Wallet_Vault-x86_64.AppImage
chmod 755 Iris_Wallet_Vault-x86_64.AppImage
`

var _ = Describe("building AppImages", func() {

	var cfg Config

	writeScript := func(dir, name, script string) string {
		path := filepath.Join(dir, name)
		Expect(os.WriteFile(path, []byte(script), 0755)).To(Succeed())
		return path
	}

	BeforeEach(func() {
		GrabLog(logrus.InfoLevel)
		root := tempDir()
		src := filepath.Join(root, "src")
		out := filepath.Join(root, "out")
		Expect(os.Mkdir(src, 0755)).To(Succeed())
		Expect(os.Mkdir(out, 0755)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(src, DefaultRecipe), []byte(recipe), 0644)).To(Succeed())
		cfg = Config{
			Network:          "regtest",
			OutputDir:        out,
			Recipe:           DefaultRecipe,
			Builder:          writeScript(root, "appimage-builder", builderScript),
			WorkDir:          src,
			ArtifactTemplate: DefaultArtifactTemplate,
		}
	})

	It("refuses to build without an output directory", func(ctx context.Context) {
		cfg.OutputDir = filepath.Join(cfg.OutputDir, "nada")
		Expect(Build(ctx, cfg)).Error().To(MatchError(
			`output directory "` + cfg.OutputDir + `" does not exist, mount it into the build container`))
		Expect(RenderedRecipePath(cfg.RecipePath())).NotTo(BeAnExistingFile())
	})

	It("refuses a file as the output directory", func() {
		path := filepath.Join(cfg.OutputDir, "file")
		Expect(os.WriteFile(path, nil, 0644)).To(Succeed())
		Expect(GuardOutputDir(path)).To(MatchError(ContainSubstring("does not exist")))
	})

	It("builds and copies the AppImage", func(ctx context.Context) {
		artifact := Successful(Build(ctx, cfg))
		Expect(artifact).To(Equal(filepath.Join(cfg.OutputDir, "iris-wallet-vault-regtest.AppImage")))

		contents := Successful(os.ReadFile(artifact))
		Expect(string(contents)).To(Equal("AppImage for regtest\n"))
		Expect(Successful(os.Stat(artifact)).Mode().Perm()).To(Equal(os.FileMode(0755)))

		digest := sha256.Sum256(contents)
		Expect(os.ReadFile(artifact + ".sha256")).To(Equal(
			[]byte(hex.EncodeToString(digest[:]) + "  iris-wallet-vault-regtest.AppImage\n")))

		rendered := string(Successful(os.ReadFile(RenderedRecipePath(cfg.RecipePath()))))
		Expect(rendered).To(ContainSubstring("VAULT_NETWORK: regtest"))
		Expect(rendered).To(ContainSubstring("VAULT_SUFFIX: none"))
		Expect(rendered).To(ContainSubstring("echo $HOME"))
	})

	It("leaves an AppImage already in place intact", func(ctx context.Context) {
		cfg.OutputDir = cfg.WorkDir
		cfg.Builder = writeScript(filepath.Dir(cfg.WorkDir), "inplace-builder",
			"#!/bin/sh\nprintf 'APPIMAGE-BYTES' > iris-wallet-vault-regtest.AppImage\n")
		artifact := Successful(Build(ctx, cfg))
		Expect(artifact).To(Equal(filepath.Join(cfg.WorkDir, "iris-wallet-vault-regtest.AppImage")))
		Expect(os.ReadFile(artifact)).To(Equal([]byte("APPIMAGE-BYTES")))

		digest := sha256.Sum256([]byte("APPIMAGE-BYTES"))
		Expect(os.ReadFile(artifact + ".sha256")).To(Equal(
			[]byte(hex.EncodeToString(digest[:]) + "  iris-wallet-vault-regtest.AppImage\n")))
	})

	It("names the AppImage after the suffix", func(ctx context.Context) {
		cfg.Network = "testnet"
		cfg.AppSuffix = "nightly"
		Expect(Build(ctx, cfg)).To(HaveSuffix("/iris-wallet-vault-nightly-testnet.AppImage"))
		Expect(os.ReadFile(RenderedRecipePath(cfg.RecipePath()))).To(ContainSubstring("VAULT_SUFFIX: nightly"))
	})

	It("reports a failing builder", func(ctx context.Context) {
		cfg.Builder = writeScript(filepath.Dir(cfg.WorkDir), "failing-builder", "#!/bin/sh\necho kaputt >&2\nexit 1\n")
		Expect(Build(ctx, cfg)).Error().To(MatchError(ContainSubstring("cannot build AppImage")))
		Expect(Successful(os.ReadDir(cfg.OutputDir))).To(BeEmpty())
	})

	It("reports a builder not producing anything", func(ctx context.Context) {
		cfg.Builder = writeScript(filepath.Dir(cfg.WorkDir), "lazy-builder", "#!/bin/sh\nexit 0\n")
		Expect(Build(ctx, cfg)).Error().To(MatchError(ErrNoAppImage))
	})

	It("ignores stale AppImages", func(ctx context.Context) {
		stale := filepath.Join(cfg.WorkDir, "Old-x86_64.AppImage")
		Expect(os.WriteFile(stale, []byte("old"), 0755)).To(Succeed())
		past := time.Now().Add(-time.Hour)
		Expect(os.Chtimes(stale, past, past)).To(Succeed())
		cfg.Builder = writeScript(filepath.Dir(cfg.WorkDir), "lazy-builder", "#!/bin/sh\nexit 0\n")
		Expect(Build(ctx, cfg)).Error().To(MatchError(ErrNoAppImage))
	})

	It("reports unrenderable recipes", func(ctx context.Context) {
		Expect(os.WriteFile(cfg.RecipePath(), []byte(`AppDir:
  app_info:
    version: ${VAULTCI_TEST_NADA:?is missing}
`), 0644)).To(Succeed())
		Expect(Build(ctx, cfg)).Error().To(SatisfyAll(
			MatchError(ContainSubstring("AppDir.app_info.version")),
			MatchError(ContainSubstring("is missing"))))
	})

	It("reports missing and malformed recipes", func() {
		Expect(RenderRecipe(filepath.Join(cfg.WorkDir, "nada.yml"), nil)).Error().To(
			MatchError(ContainSubstring("cannot read builder recipe")))
		Expect(os.WriteFile(cfg.RecipePath(), []byte("foo: [bar"), 0644)).To(Succeed())
		Expect(RenderRecipe(cfg.RecipePath(), nil)).Error().To(
			MatchError(ContainSubstring("malformed builder recipe")))
		Expect(os.WriteFile(cfg.RecipePath(), nil, 0644)).To(Succeed())
		Expect(RenderRecipe(cfg.RecipePath(), nil)).Error().To(
			MatchError(ContainSubstring("empty builder recipe")))
	})

	It("names rendered recipes", func() {
		Expect(RenderedRecipePath("/src/AppImageBuilder.yml")).To(Equal("/src/AppImageBuilder.rendered.yml"))
		Expect(RenderedRecipePath("recipe")).To(Equal("recipe.rendered.yml"))
	})

})
