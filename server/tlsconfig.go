// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
//
// This file contains source code from bridge
// (https://github.com/robustirc/bridge); which is governed by the following
// license notice:
//
// Copyright © 2014-2015 The RobustIRC Authors. All rights reserved.
//
// Redistribution and use in source and binary forms, with or without
// modification, are permitted provided that the following conditions are met:
//
//     * Redistributions of source code must retain the above copyright
//       notice, this list of conditions and the following disclaimer.
//
//     * Redistributions in binary form must reproduce the above copyright
//       notice, this list of conditions and the following disclaimer in the
//       documentation and/or other materials provided with the distribution.
//
//     * Neither the name of RobustIRC nor the names of contributors may be used
//       to endorse or promote products derived from this software without
//       specific prior written permission.
//
// THIS SOFTWARE IS PROVIDED BY THE COPYRIGHT HOLDERS AND CONTRIBUTORS "AS IS" AND
// ANY EXPRESS OR IMPLIED WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE IMPLIED
// WARRANTIES OF MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
// DISCLAIMED. IN NO EVENT SHALL THE COPYRIGHT HOLDERS OR CONTRIBUTORS BE LIABLE
// FOR ANY DIRECT, INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR CONSEQUENTIAL
// DAMAGES (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
// SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS INTERRUPTION) HOWEVER
// CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN CONTRACT, STRICT LIABILITY,
// OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE) ARISING IN ANY WAY OUT OF THE USE
// OF THIS SOFTWARE, EVEN IF ADVISED OF THE POSSIBILITY OF SUCH DAMAGE.

package server

import (
	"crypto/tls"
	"crypto/x509"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/molecula/qsarview/errors"
	"github.com/molecula/qsarview/logger"
)

// keypairReloader serves the current certificate to TLS handshakes and
// swaps in a freshly loaded one on SIGHUP.
type keypairReloader struct {
	certMu   sync.RWMutex
	cert     *tls.Certificate
	certPath string
	keyPath  string
	logger   logger.Logger
}

func newKeypairReloader(certPath, keyPath string, logger logger.Logger, done <-chan struct{}) (*keypairReloader, error) {
	kpr := &keypairReloader{
		certPath: certPath,
		keyPath:  keyPath,
		logger:   logger,
	}
	cert, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		return nil, err
	}
	kpr.cert = &cert

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGHUP)
	go func() {
		defer signal.Stop(c)
		for {
			select {
			case <-c:
				kpr.logger.Infof("received SIGHUP, reloading TLS certificate and key from %q and %q", certPath, keyPath)
				if err := kpr.maybeReload(); err != nil {
					kpr.logger.Errorf("keeping old TLS certificate because the new one could not be loaded: %v", err)
				}
			case <-done:
				return
			}
		}
	}()
	return kpr, nil
}

func (kpr *keypairReloader) maybeReload() error {
	newCert, err := tls.LoadX509KeyPair(kpr.certPath, kpr.keyPath)
	if err != nil {
		return err
	}
	kpr.certMu.Lock()
	defer kpr.certMu.Unlock()
	kpr.cert = &newCert
	return nil
}

func (kpr *keypairReloader) getCertificate(*tls.ClientHelloInfo) (*tls.Certificate, error) {
	kpr.certMu.RLock()
	defer kpr.certMu.RUnlock()
	return kpr.cert, nil
}

// GetTLSConfig builds the server side tls.Config for c. It returns nil when
// no certificate is configured. The certificate is reloaded on SIGHUP until
// done is closed.
func GetTLSConfig(c TLSConfig, logger logger.Logger, done <-chan struct{}) (*tls.Config, error) {
	if !c.Enabled() {
		if c.CACertPath != "" || c.EnableClientVerification {
			return nil, errors.New(errors.ErrUncoded, "TLS options given without a certificate and key")
		}
		return nil, nil
	}
	if c.SkipVerify {
		return nil, errors.New(errors.ErrUncoded, "cannot specify TLS certificate and disable server certificate verification")
	}

	kpr, err := newKeypairReloader(c.CertificatePath, c.CertificateKeyPath, logger, done)
	if err != nil {
		return nil, errors.Wrap(err, "loading keypair")
	}
	conf := &tls.Config{
		MinVersion:     tls.VersionTLS12,
		GetCertificate: kpr.getCertificate,
	}
	if c.CACertPath != "" {
		pool, err := loadCertPool(c.CACertPath)
		if err != nil {
			return nil, err
		}
		conf.ClientCAs = pool
	}
	if c.EnableClientVerification {
		conf.ClientAuth = tls.RequireAndVerifyClientCert
	}
	return conf, nil
}

// GetClientTLSConfig builds the tls.Config a client uses to reach a server
// configured with c.
func GetClientTLSConfig(c TLSConfig) (*tls.Config, error) {
	if c.CACertPath != "" && c.SkipVerify {
		return nil, errors.New(errors.ErrUncoded, "cannot specify root certificate and disable server certificate verification")
	}
	conf := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: c.SkipVerify, //nolint:gosec
	}
	if c.CACertPath != "" {
		pool, err := loadCertPool(c.CACertPath)
		if err != nil {
			return nil, err
		}
		conf.RootCAs = pool
	}
	if c.Enabled() {
		cert, err := tls.LoadX509KeyPair(c.CertificatePath, c.CertificateKeyPath)
		if err != nil {
			return nil, errors.Wrap(err, "loading keypair")
		}
		conf.Certificates = []tls.Certificate{cert}
	}
	return conf, nil
}

func loadCertPool(path string) (*x509.CertPool, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "loading tls ca key")
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(b) {
		return nil, errors.New(errors.ErrUncoded, "error parsing CA certificate")
	}
	return pool, nil
}
