/*
Package appimage builds the Iris Wallet Vault AppImage from its builder recipe
and copies the finished artifact into an output directory, which usually is a
host directory mounted into the build container.

A [Build] renders the builder recipe from the environment, runs the AppImage
builder, picks up the AppImage it produced, and copies it into the output
directory under a name derived from the network and the optional application
suffix:

	iris-wallet-vault-regtest.AppImage
	iris-wallet-vault-nightly-testnet.AppImage

Alongside the artifact, a “.sha256” file with the artifact's SHA256 digest in
sha256sum format gets written.

[RunInContainer] instead runs the same build inside a Docker builder image,
bind-mounting the source tree and the host's output directory into the build
container.
*/
package appimage
