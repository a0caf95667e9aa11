// Copyright 2017 Felipe A. Cavani. All rights reserved.
// Use of this source code is governed by the Apache License 2.0
// license that can be found in the LICENSE file.

package http

import (
	"io"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/fcavani/htmlmin/middlewares/minify"
)

func TestHTTP(t *testing.T) {
	m := minify.New(minify.DefaultPolicy)
	mux := http.NewServeMux()
	mux.HandleFunc("/", minify.Minify(m, true, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("<html><body><!-- comment -->  <h1>Hi</h1>  </body></html>"))
	}))
	mux.HandleFunc("/data", minify.Minify(m, true, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"a":1}`))
	}))

	hs := &HTTPServer{
		HTTPAddr: "localhost:0",
		Handler:  mux,
	}
	err := hs.Init()
	if err != nil {
		t.Fatal(err)
	}
	defer hs.Stop()

	resp, err := http.Get("http://" + hs.GetHTTPAddr() + "/")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatal("wrong status code,", resp.StatusCode)
	}
	buf, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(string(buf), "<!--") {
		t.Fatal("response wasn't minified", string(buf))
	}
	if cl := resp.Header.Get("Content-Length"); cl != strconv.Itoa(len(buf)) {
		t.Fatal("content-length doesn't match the body", cl, len(buf))
	}

	resp, err = http.Get("http://" + hs.GetHTTPAddr() + "/data")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	buf, err = io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if string(buf) != `{"a":1}` {
		t.Fatal("non html response changed", string(buf))
	}
}

func TestHTTPNoHandler(t *testing.T) {
	hs := &HTTPServer{HTTPAddr: "localhost:0"}
	err := hs.Init()
	if err == nil {
		t.Fatal("server started without a handler")
	}
}
