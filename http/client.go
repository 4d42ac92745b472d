// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package http

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"io"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/molecula/qsarview"
	"github.com/molecula/qsarview/errors"
)

// Client talks to a running qsarview server.
type Client struct {
	base *url.URL

	// The client to use for HTTP communication.
	httpClient *http.Client
}

// NewClient returns a new instance of Client to connect to host. A host
// without a scheme is assumed to be http.
func NewClient(host string, remoteClient *http.Client) (*Client, error) {
	if host == "" {
		return nil, errors.New(errors.ErrUncoded, "host required")
	}
	if !strings.Contains(host, "://") {
		host = "http://" + host
	}
	u, err := url.Parse(host)
	if err != nil {
		return nil, errors.Wrap(err, "parsing host")
	}
	if remoteClient == nil {
		remoteClient = GetHTTPClient(nil)
	}
	return &Client{base: u, httpClient: remoteClient}, nil
}

// path builds the URL of the route made of segments, each escaped.
func (c *Client) path(segments ...string) string {
	u := *c.base
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	prefix := strings.TrimSuffix(u.Path, "/")
	u.RawPath = prefix + "/" + strings.Join(escaped, "/")
	u.Path = prefix + "/" + strings.Join(segments, "/")
	return u.String()
}

// Catalog returns the ligands for v and d.
func (c *Client) Catalog(ctx context.Context, v qsarview.ReceptorVariant, d qsarview.DatasetKind) (*qsarview.CatalogView, error) {
	var view qsarview.CatalogView
	if err := c.getJSON(ctx, c.path("api", "catalog", string(v), string(d)), &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// Structure returns the structure view of ligand for v and d.
func (c *Client) Structure(ctx context.Context, v qsarview.ReceptorVariant, d qsarview.DatasetKind, ligand string) (*qsarview.StructureView, error) {
	var view qsarview.StructureView
	if err := c.getJSON(ctx, c.path("api", "structure", string(v), string(d), ligand), &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// Download copies the raw structure file to w and returns the filename the
// server suggested for it.
func (c *Client) Download(ctx context.Context, v qsarview.ReceptorVariant, d qsarview.DatasetKind, ligand string, w io.Writer) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", c.path("download", string(v), string(d), ligand), nil)
	if err != nil {
		return "", errors.Wrap(err, "creating request")
	}
	req.Header.Set("User-Agent", "qsarview/"+qsarview.Version)

	resp, err := c.executeRequest(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if _, err := io.Copy(w, resp.Body); err != nil {
		return "", errors.Wrap(err, "copying body")
	}
	_, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition"))
	if err != nil {
		return "", errors.Wrap(err, "parsing Content-Disposition")
	}
	return params["filename"], nil
}

// Open asks the server to open ligand's file with the default application
// of the server's host. It returns the path that was opened.
func (c *Client) Open(ctx context.Context, v qsarview.ReceptorVariant, d qsarview.DatasetKind, ligand string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "POST", c.path("open", string(v), string(d), ligand), nil)
	if err != nil {
		return "", errors.Wrap(err, "creating request")
	}
	req.Header.Set("User-Agent", "qsarview/"+qsarview.Version)
	req.Header.Set("Accept", "application/json")

	resp, err := c.executeRequest(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var rsp openResponse
	if err := json.NewDecoder(resp.Body).Decode(&rsp); err != nil {
		return "", errors.Wrap(err, "decoding response")
	}
	return rsp.Path, nil
}

// Version returns the version of the server.
func (c *Client) Version(ctx context.Context) (string, error) {
	var rsp struct {
		Version string `json:"version"`
	}
	if err := c.getJSON(ctx, c.path("version"), &rsp); err != nil {
		return "", err
	}
	return rsp.Version, nil
}

// Info returns the server's version, configuration and host details.
func (c *Client) Info(ctx context.Context) (*qsarview.ServerInfo, error) {
	var info qsarview.ServerInfo
	if err := c.getJSON(ctx, c.path("info"), &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) getJSON(ctx context.Context, u string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", u, nil)
	if err != nil {
		return errors.Wrap(err, "creating request")
	}
	req.Header.Set("User-Agent", "qsarview/"+qsarview.Version)
	req.Header.Set("Accept", "application/json")

	resp, err := c.executeRequest(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return errors.Wrap(err, "json decode")
	}
	return nil
}

// executeRequest executes the given request and checks the Response. For
// responses with non-2XX status, the body is read and closed, and the coded
// error it carries is returned. If the error is nil, the caller must ensure
// that the response body is closed.
func (c *Client) executeRequest(req *http.Request) (*http.Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
		}
		return nil, errors.Wrap(err, "getting response")
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		return nil, errors.UnmarshalJSON(resp.Body)
	}
	return resp, nil
}

func GetHTTPClient(t *tls.Config) *http.Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	if t != nil {
		transport.TLSClientConfig = t
	}
	return &http.Client{Transport: transport}
}
