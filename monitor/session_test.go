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
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/thediveo/once"
)

var _ = Describe("background monitor sessions", func() {

	var sess Session

	BeforeEach(func() {
		GrabLog(logrus.InfoLevel)
		sess = Session{PIDFile: filepath.Join(tempDir(), DefaultPIDFile)}
	})

	// startSleeper starts a long-running placeholder for a background monitor
	// and ensures that it gets reaped at the end of the spec.
	startSleeper := func() *exec.Cmd {
		cmd := exec.Command("sleep", "60")
		Expect(sess.Start(cmd)).To(Succeed())
		waitOnce := Once(func() { _ = cmd.Wait() }).Do
		DeferCleanup(func() {
			_ = cmd.Process.Kill()
			waitOnce()
		})
		return cmd
	}

	It("leaves no pid file after starting and immediately stopping", func(ctx context.Context) {
		cmd := startSleeper()
		Expect(os.ReadFile(sess.PIDFile)).To(Equal([]byte(strconv.Itoa(cmd.Process.Pid) + "\n")))
		pid, running, err := sess.Running()
		Expect(err).NotTo(HaveOccurred())
		Expect(running).To(BeTrue())
		Expect(pid).To(Equal(cmd.Process.Pid))

		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		Expect(sess.Stop(ctx)).To(BeTrue())
		Expect(sess.PIDFile).NotTo(BeAnExistingFile())
		Expect(cmd.Wait()).To(MatchError(ContainSubstring("terminated")))
	})

	It("refuses to start a second monitor", func() {
		startSleeper()
		Expect(sess.Start(exec.Command("sleep", "60"))).To(MatchError(ErrAlreadyRunning))
	})

	It("replaces a stale pid file", func() {
		cmd := exec.Command("true")
		Expect(cmd.Run()).To(Succeed())
		Expect(os.WriteFile(sess.PIDFile, []byte(strconv.Itoa(cmd.Process.Pid)), 0644)).To(Succeed())
		_, running, err := sess.Running()
		Expect(err).NotTo(HaveOccurred())
		Expect(running).To(BeFalse())
		cmd = startSleeper()
		Expect(os.ReadFile(sess.PIDFile)).To(ContainSubstring(strconv.Itoa(cmd.Process.Pid)))
	})

	It("replaces a malformed pid file", func() {
		Expect(os.WriteFile(sess.PIDFile, []byte("foobar"), 0644)).To(Succeed())
		Expect(sess.Running()).Error().To(MatchError(ContainSubstring("malformed pid file")))
		startSleeper()
	})

	It("succeeds stopping when there is no monitor", func(ctx context.Context) {
		Expect(sess.Stop(ctx)).To(BeFalse())
	})

	It("removes a stale pid file when stopping", func(ctx context.Context) {
		cmd := exec.Command("true")
		Expect(cmd.Run()).To(Succeed())
		Expect(os.WriteFile(sess.PIDFile, []byte(strconv.Itoa(cmd.Process.Pid)), 0644)).To(Succeed())
		Expect(sess.Stop(ctx)).To(BeFalse())
		Expect(sess.PIDFile).NotTo(BeAnExistingFile())
	})

	It("removes a malformed pid file when stopping", func(ctx context.Context) {
		Expect(os.WriteFile(sess.PIDFile, []byte("-42"), 0644)).To(Succeed())
		Expect(sess.Stop(ctx)).Error().To(MatchError(ContainSubstring("malformed pid file")))
		Expect(sess.PIDFile).NotTo(BeAnExistingFile())
	})

	It("kills a monitor that doesn't terminate in time", func(ctx context.Context) {
		cmd := exec.Command("sh", "-c", "trap '' TERM; exec sleep 60")
		Expect(sess.Start(cmd)).To(Succeed())
		DeferCleanup(func() { _ = cmd.Process.Kill() })
		// give the shell a chance to install its trap.
		time.Sleep(200 * time.Millisecond)
		ctx, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
		defer cancel()
		Expect(sess.Stop(ctx)).To(BeTrue())
		Expect(cmd.Wait()).To(MatchError(ContainSubstring("killed")))
		Expect(sess.PIDFile).NotTo(BeAnExistingFile())
	})

	It("reports when the command cannot be started", func() {
		Expect(sess.Start(exec.Command("/nada-nothing-nil"))).To(
			MatchError(ContainSubstring("cannot start resource monitor")))
	})

	It("reports when the pid file cannot be written", func() {
		sess.PIDFile = "/nada-nothing-nil/monitor.pid"
		cmd := exec.Command("sleep", "60")
		Expect(sess.Start(cmd)).To(MatchError(ContainSubstring("cannot write pid file")))
		Expect(cmd.Wait()).To(HaveOccurred())
	})

})
