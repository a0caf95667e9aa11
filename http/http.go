// Copyright 2017 Felipe A. Cavani. All rights reserved.
// Use of this source code is governed by the Apache License 2.0
// license that can be found in the LICENSE file.

// Package http hosts the handler chain on plain http and, when the
// certificates are configured, on https too.
package http

import (
	"crypto/tls"
	"crypto/x509"
	"net"
	"net/http"
	"os"

	"github.com/fcavani/e"
	log "github.com/fcavani/slog"
)

// HTTPServer is a http and https server.
type HTTPServer struct {
	HTTPAddr           string
	HTTPSAddr          string
	Certificate        string
	PrivateKey         string
	CA                 string
	InsecureSkipVerify bool

	Handler http.Handler

	lnHTTP  net.Listener
	lnHTTPS net.Listener
}

// Init opens the listeners and starts serving.
func (h *HTTPServer) Init() error {
	if h.Handler == nil {
		return e.New("no handler to serve")
	}
	log.Tag("server").Println("Setup http server...")
	var err error
	h.lnHTTP, err = net.Listen("tcp", h.HTTPAddr)
	if err != nil {
		return e.Forward(err)
	}
	go func() {
		err := http.Serve(h.lnHTTP, h.Handler)
		if err != nil {
			log.Tag("server").Errorln("http server stopped:", err)
		}
	}()
	if h.Certificate == "" || h.PrivateKey == "" {
		return nil
	}
	log.Tag("server").Println("Setup https server...")
	cert, err := tls.LoadX509KeyPair(h.Certificate, h.PrivateKey)
	if err != nil {
		return e.Push(err, "LoadX509KeyPair failed")
	}
	var caPool *x509.CertPool
	if h.CA != "" {
		caPool = x509.NewCertPool()
		serverCA, err := os.ReadFile(h.CA)
		if err != nil {
			return e.Push(err, "could not load server CA")
		}
		caPool.AppendCertsFromPEM(serverCA)
	}
	httpsServer := &http.Server{
		Addr: h.HTTPSAddr,
		TLSConfig: &tls.Config{
			InsecureSkipVerify: h.InsecureSkipVerify,
			RootCAs:            caPool,
			Certificates:       []tls.Certificate{cert},
		},
		Handler: h.Handler,
	}
	conn, err := net.Listen("tcp", h.HTTPSAddr)
	if err != nil {
		return e.New(err)
	}
	h.lnHTTPS = tls.NewListener(conn, httpsServer.TLSConfig)
	go func() {
		err := httpsServer.Serve(h.lnHTTPS)
		if err != nil {
			log.Tag("server").Errorln("https server stopped:", err)
		}
	}()
	return nil
}

// Stop closes the listeners.
func (h *HTTPServer) Stop() error {
	if h.lnHTTP != nil {
		err := h.lnHTTP.Close()
		if err != nil {
			return e.Forward(err)
		}
	}
	if h.lnHTTPS != nil {
		err := h.lnHTTPS.Close()
		if err != nil {
			return e.Forward(err)
		}
	}
	return nil
}

// GetHTTPAddr get the bind address of the http server.
func (h *HTTPServer) GetHTTPAddr() string {
	return h.lnHTTP.Addr().String()
}

// GetHTTPSAddr get the bind address of the https server.
func (h *HTTPServer) GetHTTPSAddr() string {
	if h.lnHTTPS == nil {
		return ""
	}
	return h.lnHTTPS.Addr().String()
}
