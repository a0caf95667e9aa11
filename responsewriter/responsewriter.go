// Copyright 2017 Felipe A. Cavani. All rights reserved.
// Use of this source code is governed by the Apache License 2.0
// license that can be found in the LICENSE file.

// Package responsewriter provides a http.ResponseWriter that holds the
// entire response in memory until it is copied to the real writer.
package responsewriter

import (
	"bytes"
	"net/http"

	"github.com/fcavani/e"
)

// ResponseWriter buffers the status code, the header and the body produced
// by a handler. The zero value is not usable, use NewResponseWriter.
type ResponseWriter struct {
	header      http.Header
	body        bytes.Buffer
	code        int
	wroteHeader bool
}

// NewResponseWriter creates a new buffered response writer.
func NewResponseWriter() *ResponseWriter {
	return &ResponseWriter{
		header: make(http.Header),
		code:   http.StatusOK,
	}
}

// Header returns the buffered header map.
func (rw *ResponseWriter) Header() http.Header {
	return rw.header
}

// WriteHeader stores the response code. Like in net/http only the first
// call counts.
func (rw *ResponseWriter) WriteHeader(code int) {
	if rw.wroteHeader {
		return
	}
	rw.code = code
	rw.wroteHeader = true
}

// Write appends p to the body buffer.
func (rw *ResponseWriter) Write(p []byte) (int, error) {
	if !rw.wroteHeader {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.body.Write(p)
}

// Read reads from the body buffer, consuming it.
func (rw *ResponseWriter) Read(p []byte) (int, error) {
	return rw.body.Read(p)
}

// Bytes returns the bytes buffered so far.
func (rw *ResponseWriter) Bytes() []byte {
	return rw.body.Bytes()
}

// SetBody discards the buffered body and replaces it with buf.
func (rw *ResponseWriter) SetBody(buf []byte) {
	rw.body.Reset()
	rw.body.Write(buf)
}

// ResponseCode returns the buffered status code.
func (rw *ResponseWriter) ResponseCode() int {
	return rw.code
}

// Copy replays the header, the status code and the body to w.
func (rw *ResponseWriter) Copy(w http.ResponseWriter) error {
	dst := w.Header()
	for name, values := range rw.header {
		for _, value := range values {
			dst.Add(name, value)
		}
	}
	w.WriteHeader(rw.code)
	_, err := w.Write(rw.body.Bytes())
	if err != nil {
		return e.Forward(err)
	}
	return nil
}
