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
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// DefaultPreviewAddr is the address the preview server listens on.
const DefaultPreviewAddr = "localhost:8080"

// NewPreviewRouter returns a router serving the assembled reports in the
// specified directory, logging each request at debug level.
func NewPreviewRouter(dir string) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())
	router.StaticFS("/", gin.Dir(dir, false))
	return router
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug(fmt.Sprintf("   🌐  %s %s %d (%s)",
			c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start)))
	}
}

// NewPreviewServer returns an HTTP server serving the assembled reports in
// the specified directory on the specified address.
func NewPreviewServer(addr, dir string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           NewPreviewRouter(dir),
		ReadHeaderTimeout: 10 * time.Second,
	}
}
