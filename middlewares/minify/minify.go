// Copyright 2017 Felipe A. Cavani. All rights reserved.
// Use of this source code is governed by the Apache License 2.0
// license that can be found in the LICENSE file.

// Package minify rewrites html responses in a compact form readable only
// by the computer.
package minify

import (
	"bytes"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/fcavani/e"
	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
	"github.com/tdewolff/minify/v2/js"

	"github.com/fcavani/htmlmin/errhandler"
	"github.com/fcavani/htmlmin/responsewriter"
)

// Policy describes what the minifier removes from the document. It is set
// once, before the server starts, and shared read-only by all requests.
type Policy struct {
	// RemoveComments strips html comment nodes.
	RemoveComments bool
	// MinifyCSS minifies the contents of style elements.
	MinifyCSS bool
	// MinifyJS minifies the contents of script elements.
	MinifyJS bool
	// CollapseWhitespace removes insignificant whitespace around tags.
	// When off, whitespace between inline elements survives, though runs
	// still collapse to a single space; whitespace around block elements
	// is insignificant and goes away either way.
	CollapseWhitespace bool
}

// DefaultPolicy removes everything that doesn't change the rendered page.
var DefaultPolicy = &Policy{
	RemoveComments:     true,
	MinifyCSS:          true,
	MinifyJS:           true,
	CollapseWhitespace: true,
}

var scriptMime = regexp.MustCompile("^(application|text)/(x-)?(java|ecma)script$")

// New creates the minifier for the given policy. Document and end tags are
// never removed, only content that doesn't render.
func New(p *Policy) *minify.M {
	m := minify.New()
	m.Add("text/html", &html.Minifier{
		KeepComments:     !p.RemoveComments,
		KeepWhitespace:   !p.CollapseWhitespace,
		KeepDocumentTags: true,
		KeepEndTags:      true,
	})
	if p.MinifyCSS {
		m.AddFunc("text/css", css.Minify)
	}
	if p.MinifyJS {
		m.AddFuncRegexp(scriptMime, js.Minify)
	}
	return m
}

// Minify buffers the response produced by f and, when the Content-Type
// says the body is html, replaces it with the minified form and fixes
// Content-Length. Any other content type goes out untouched. If the
// minifier chokes on the document the original body is sent instead, the
// client never pays for a failed minification.
func Minify(m *minify.M, enable bool, f http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !enable {
			f(w, r)
			return
		}

		resp := responsewriter.NewResponseWriter()
		f(resp, r)

		// The client is gone, don't burn cpu on an abandoned response
		// and there is no one left to report a copy failure to.
		if r.Context().Err() != nil {
			_ = resp.Copy(w)
			return
		}

		if !isHTML(resp.Header()) {
			err := resp.Copy(w)
			if err != nil {
				errhandler.ErrHandler(w, http.StatusInternalServerError, e.Forward(err))
			}
			return
		}

		var out bytes.Buffer
		err := m.Minify("text/html", &out, bytes.NewReader(resp.Bytes()))
		if err == nil {
			resp.SetBody(out.Bytes())
			resp.Header().Set("Content-Length", strconv.Itoa(out.Len()))
		}
		err = resp.Copy(w)
		if err != nil {
			errhandler.ErrHandler(w, http.StatusInternalServerError, e.Forward(err))
		}
	}
}

func isHTML(h http.Header) bool {
	return strings.Contains(h.Get("Content-Type"), "text/html")
}
