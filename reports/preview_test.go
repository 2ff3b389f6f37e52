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

package reports

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"

	"github.com/sirupsen/logrus"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	. "github.com/thediveo/success"
)

var _ = Describe("previewing reports", func() {

	It("serves the assembled reports", func() {
		GrabLog(logrus.DebugLevel)
		out := filepath.Join(tempDir(), DefaultOutputDir)
		Expect(Generate(Config{OutputDir: out, Sections: []Section{
			{Name: "coverage", Title: "Coverage Report", Source: filepath.Join(out, "..", "nada")},
		}})).Error().NotTo(HaveOccurred())

		srv := httptest.NewServer(NewPreviewRouter(out))
		DeferCleanup(srv.Close)

		resp := Successful(http.Get(srv.URL + "/coverage/"))
		DeferCleanup(resp.Body.Close)
		Expect(resp.StatusCode).To(Equal(http.StatusOK))
		Expect(resp.Header.Get("Content-Type")).To(HavePrefix("text/html"))

		resp = Successful(http.Get(srv.URL + "/nada.html"))
		DeferCleanup(resp.Body.Close)
		Expect(resp.StatusCode).To(Equal(http.StatusNotFound))
	})

	It("configures the preview server", func() {
		srv := NewPreviewServer(DefaultPreviewAddr, tempDir())
		Expect(srv.Addr).To(Equal(DefaultPreviewAddr))
		Expect(srv.Handler).NotTo(BeNil())
	})

})
