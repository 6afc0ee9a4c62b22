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

// Package negotiateecho adapts content negotiation to the Echo web framework.
//
//	e := echo.New()
//	e.Use(negotiateecho.Middleware(negotiation.WithLanguages("en", "de")))
//	e.GET("/greeting", func(c echo.Context) error {
//	    res, _ := negotiateecho.Negotiated(c)
//	    return c.String(http.StatusOK, greetings[res.Language])
//	})
package negotiateecho

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"rivaas.dev/negotiate"
	"rivaas.dev/negotiate/middleware/negotiation"
)

// ContextKey is the echo.Context key under which the middleware stores the
// [negotiation.Result].
const ContextKey = "rivaas.dev/negotiate"

// Request returns the negotiation view of the Echo request.
func Request(c echo.Context) *negotiate.Request {
	return negotiate.FromRequest(c.Request())
}

// Middleware returns an Echo middleware negotiating the configured domains.
// In strict mode the 406 response is written directly and the next handler
// does not run.
func Middleware(opts ...negotiation.Option) echo.MiddlewareFunc {
	mw := negotiation.New(opts...)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			var err error
			mw(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				c.SetRequest(r)
				if res, ok := negotiation.FromContext(r.Context()); ok {
					c.Set(ContextKey, res)
				}
				err = next(c)
			})).ServeHTTP(c.Response(), c.Request())

			return err
		}
	}
}

// Negotiated returns the result stored by [Middleware].
func Negotiated(c echo.Context) (negotiation.Result, bool) {
	res, ok := c.Get(ContextKey).(negotiation.Result)
	return res, ok
}
