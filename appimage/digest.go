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
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/otiai10/copy"
	log "github.com/sirupsen/logrus"
)

// Digests maps artifact file names to their hex-encoded SHA256 digests.
type Digests map[string]string

// CopyFile copies the file at src to dst, preserving its file mode, and
// determines the SHA256 digest of the copied contents along the way. The
// digest is remembered by the destination's file name.
func (d Digests) CopyFile(src, dst string) error {
	digester := sha256.New()
	err := copy.Copy(src, dst, copy.Options{
		WrapReader: func(r io.Reader) io.Reader { return io.TeeReader(r, digester) },
		Sync:       true,
	})
	if err != nil {
		return fmt.Errorf("cannot copy %q to %q, reason: %w", src, dst, err)
	}
	name := filepath.Base(dst)
	d[name] = hex.EncodeToString(digester.Sum(nil))
	log.Info(fmt.Sprintf("      🧮  digest(ed) %q: %s", name, d[name]))
	return nil
}

// DigestFile determines the SHA256 digest of the file at path in place and
// remembers it by the file's name.
func (d Digests) DigestFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("cannot digest %q, reason: %w", path, err)
	}
	defer f.Close()
	digester := sha256.New()
	if _, err := io.Copy(digester, f); err != nil {
		return fmt.Errorf("cannot digest %q, reason: %w", path, err)
	}
	name := filepath.Base(path)
	d[name] = hex.EncodeToString(digester.Sum(nil))
	log.Info(fmt.Sprintf("      🧮  digest(ed) %q: %s", name, d[name]))
	return nil
}

// WriteChecksumFile writes the digest of the named artifact in sha256sum
// format into “<name>.sha256” inside the specified directory, returning the
// checksum file's path.
func (d Digests) WriteChecksumFile(dir, name string) (string, error) {
	digest, ok := d[name]
	if !ok {
		return "", fmt.Errorf("no digest for %q", name)
	}
	path := filepath.Join(dir, name+".sha256")
	if err := os.WriteFile(path, []byte(digest+"  "+name+"\n"), 0644); err != nil {
		return "", fmt.Errorf("cannot write checksum file, reason: %w", err)
	}
	return path, nil
}
