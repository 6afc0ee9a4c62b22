// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package negotiategin adapts content negotiation to the Gin web framework.
//
// [Request] reads the Accept* headers of a *gin.Context, and [Middleware]
// runs the net/http negotiation middleware inside a Gin handler chain:
//
//	r := gin.New()
//	r.Use(negotiategin.Middleware(
//	    negotiation.WithMediaTypes("json", "xml"),
//	    negotiation.WithStrict(true),
//	))
//	r.GET("/users", func(c *gin.Context) {
//	    res, _ := negotiategin.Negotiated(c)
//	    if res.MediaType == "xml" {
//	        c.XML(http.StatusOK, users)
//	        return
//	    }
//	    c.JSON(http.StatusOK, users)
//	})
package negotiategin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"rivaas.dev/negotiate"
	"rivaas.dev/negotiate/middleware/negotiation"
)

// ContextKey is the gin.Context key under which the middleware stores the
// [negotiation.Result].
const ContextKey = "rivaas.dev/negotiate"

// Request returns the negotiation view of the Gin request.
func Request(c *gin.Context) *negotiate.Request {
	return negotiate.FromRequest(c.Request)
}

// Middleware returns a Gin middleware negotiating the configured domains.
// In strict mode a request without acceptable offer is answered with 406
// and the chain is aborted.
func Middleware(opts ...negotiation.Option) gin.HandlerFunc {
	mw := negotiation.New(opts...)

	return func(c *gin.Context) {
		called := false
		mw(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			called = true
			c.Request = r
			if res, ok := negotiation.FromContext(r.Context()); ok {
				c.Set(ContextKey, res)
			}
			c.Next()
		})).ServeHTTP(c.Writer, c.Request)

		if !called {
			c.Abort()
		}
	}
}

// Negotiated returns the result stored by [Middleware].
func Negotiated(c *gin.Context) (negotiation.Result, bool) {
	v, ok := c.Get(ContextKey)
	if !ok {
		return negotiation.Result{}, false
	}
	res, ok := v.(negotiation.Result)
	return res, ok
}
