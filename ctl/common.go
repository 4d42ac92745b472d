// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package ctl

import (
	"context"
	"crypto/tls"
	"net"
	gohttp "net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/spf13/pflag"

	"github.com/molecula/qsarview"
	"github.com/molecula/qsarview/errors"
	"github.com/molecula/qsarview/http"
	"github.com/molecula/qsarview/logger"
	"github.com/molecula/qsarview/server"
)

// CommandWithTLSSupport is the interface for commands which has TLS settings
type CommandWithTLSSupport interface {
	TLSHost() string
	TLSConfiguration() server.TLSConfig
}

// SetTLSConfig creates common TLS flags
func SetTLSConfig(flags *pflag.FlagSet, prefix string, certificatePath *string, certificateKeyPath *string, caCertPath *string, skipVerify *bool, enableClientVerification *bool) {
	flags.StringVarP(certificatePath, prefix+"tls.certificate", "", *certificatePath, "TLS certificate path (usually has the .crt or .pem extension)")
	flags.StringVarP(certificateKeyPath, prefix+"tls.key", "", *certificateKeyPath, "TLS certificate key path (usually has the .key extension)")
	flags.StringVarP(caCertPath, prefix+"tls.ca-certificate", "", *caCertPath, "TLS CA certificate path (usually has the .pem extension)")
	flags.BoolVarP(skipVerify, prefix+"tls.skip-verify", "", *skipVerify, "Skip TLS certificate verification (not secure)")
	flags.BoolVarP(enableClientVerification, prefix+"tls.enable-client-verification", "", *enableClientVerification, "Enable TLS certificate verification for incoming connections")
}

// CommandClient returns a qsarview client for the command. Requests are
// retried by retryPolicy; retries are logged to logger.
func CommandClient(cmd CommandWithTLSSupport, logger logger.Logger) (*http.Client, error) {
	var tlsConfig *tls.Config
	host := cmd.TLSHost()
	if conf := cmd.TLSConfiguration(); strings.HasPrefix(host, "https://") || conf.Enabled() || conf.CACertPath != "" {
		var err error
		if tlsConfig, err = server.GetClientTLSConfig(conf); err != nil {
			return nil, errors.Wrap(err, "getting tls config")
		}
	}
	rc := retryablehttp.NewClient()
	rc.HTTPClient = http.GetHTTPClient(tlsConfig)
	rc.RetryMax = 3
	rc.RetryWaitMin = 100 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.CheckRetry = retryPolicy
	rc.Logger = retryLogger{logger}
	return http.NewClient(host, rc.StandardClient())
}

// retryPolicy retries when the server could not be reached at all, and
// retries reads when a proxy in front of the server reports it unavailable.
// A request that may have reached the server, such as POST /open, is never
// sent twice.
func retryPolicy(ctx context.Context, resp *gohttp.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		var opErr *net.OpError
		return errors.As(err, &opErr) && opErr.Op == "dial", nil
	}
	switch resp.StatusCode {
	case gohttp.StatusBadGateway, gohttp.StatusServiceUnavailable, gohttp.StatusGatewayTimeout:
		method := resp.Request.Method
		return method == "GET" || method == "HEAD", nil
	}
	return false, nil
}

// retryLogger sends retryablehttp's messages to the debug log.
type retryLogger struct {
	logger logger.Logger
}

func (l retryLogger) Printf(format string, v ...interface{}) {
	l.logger.Debugf(format, v...)
}

// selection is the receptor/dataset pair shared by the commands that look
// at one catalog.
type selection struct {
	Receptor string
	Dataset  string
}

func (s selection) parse() (qsarview.ReceptorVariant, qsarview.DatasetKind, error) {
	v, err := qsarview.ParseReceptorVariant(s.Receptor)
	if err != nil {
		return "", "", err
	}
	d, err := qsarview.ParseDatasetKind(s.Dataset)
	if err != nil {
		return "", "", err
	}
	return v, d, nil
}

// source is where a command reads structures from: a running server when
// a host is given, or the data directory itself.
type source interface {
	Catalog(ctx context.Context, v qsarview.ReceptorVariant, d qsarview.DatasetKind) (*qsarview.CatalogView, error)
	Structure(ctx context.Context, v qsarview.ReceptorVariant, d qsarview.DatasetKind, ligand string) (*qsarview.StructureView, error)
	Open(ctx context.Context, v qsarview.ReceptorVariant, d qsarview.DatasetKind, ligand string) (string, error)
}

var (
	_ source = &http.Client{}
	_ source = apiSource{}
)

// apiSource reads the data directory through an in-process API.
type apiSource struct {
	api *qsarview.API
}

func (s apiSource) Catalog(_ context.Context, v qsarview.ReceptorVariant, d qsarview.DatasetKind) (*qsarview.CatalogView, error) {
	return s.api.Catalog(v, d)
}

func (s apiSource) Structure(_ context.Context, v qsarview.ReceptorVariant, d qsarview.DatasetKind, ligand string) (*qsarview.StructureView, error) {
	return s.api.Structure(v, d, ligand)
}

func (s apiSource) Open(ctx context.Context, v qsarview.ReceptorVariant, d qsarview.DatasetKind, ligand string) (string, error) {
	return s.api.Open(ctx, v, d, ligand)
}

// newSource returns a client of cmd's host, or an API over dataDir when
// no host is set.
func newSource(cmd CommandWithTLSSupport, dataDir string, opener qsarview.Opener, logger logger.Logger) (source, error) {
	if cmd.TLSHost() != "" {
		client, err := CommandClient(cmd, logger)
		if err != nil {
			return nil, errors.Wrap(err, "getting client")
		}
		return client, nil
	}
	dir, err := server.ExpandDirName(dataDir)
	if err != nil {
		return nil, errors.Wrap(err, "expanding data directory")
	}
	api, err := qsarview.NewAPI(
		qsarview.OptAPICatalog(qsarview.NewCatalog(dir)),
		qsarview.OptAPIOpener(opener),
		qsarview.OptAPILogger(logger),
	)
	if err != nil {
		return nil, errors.Wrap(err, "new api")
	}
	return apiSource{api: api}, nil
}
