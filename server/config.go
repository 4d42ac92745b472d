// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package server

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/molecula/qsarview"
	"github.com/molecula/qsarview/errors"
	"github.com/molecula/qsarview/toml"
)

const defaultBind = ":8050"

// TLSConfig contains TLS configuration.
type TLSConfig struct {
	// CertificatePath contains the path to the certificate (.crt or .pem file)
	CertificatePath string `toml:"certificate"`
	// CertificateKeyPath contains the path to the certificate key (.key file)
	CertificateKeyPath string `toml:"key"`
	// CACertPath is the path to a CA certificate (.crt or .pem file)
	CACertPath string `toml:"ca-certificate"`
	// SkipVerify disables verification of server certificates by clients.
	SkipVerify bool `toml:"skip-verify"`
	// EnableClientVerification enables verification of client TLS certificates (Mutual TLS)
	EnableClientVerification bool `toml:"enable-client-verification"`
}

// Enabled reports whether a certificate and key are configured.
func (c TLSConfig) Enabled() bool {
	return c.CertificatePath != "" && c.CertificateKeyPath != ""
}

// Config represents the configuration for the command.
type Config struct {
	// Bind is the host:port on which qsarview will listen.
	Bind string `toml:"bind"`

	// DataDir is the root holding the four receptor/dataset directories.
	DataDir string `toml:"data-dir"`

	// LogPath configures where qsarview will write logs.
	LogPath string `toml:"log-path"`

	// Verbose toggles verbose logging which can be useful for debugging.
	Verbose bool `toml:"verbose"`

	// HTTP Handler options
	Handler struct {
		// CORS Allowed Origins
		AllowedOrigins []string `toml:"allowed-origins"`

		// AccessLog writes an Apache combined log line per request.
		AccessLog bool `toml:"access-log"`

		// Profile mounts /debug/pprof/ and /debug/fgprof.
		Profile bool `toml:"profile"`
	} `toml:"handler"`

	Open struct {
		// Enabled allows the "open with default application" action. It
		// launches a program on the server's host, so it is off unless the
		// server runs on the user's own machine.
		Enabled bool `toml:"enabled"`

		// RateLimit is the number of opens allowed per second. Zero means
		// no limit.
		RateLimit float64 `toml:"rate-limit"`
	} `toml:"open"`

	HTTP struct {
		ReadTimeout  toml.Duration `toml:"read-timeout"`
		WriteTimeout toml.Duration `toml:"write-timeout"`
		CloseTimeout toml.Duration `toml:"close-timeout"`
	} `toml:"http"`

	// TLS
	TLS TLSConfig `toml:"tls"`

	Monitor struct {
		// DSN of the Sentry project errors are reported to. Empty disables
		// reporting.
		DSN string `toml:"dsn"`
	} `toml:"monitor"`
}

// NewConfig returns an instance of Config with default options.
func NewConfig() *Config {
	c := &Config{
		Bind:    defaultBind,
		DataDir: qsarview.DefaultDataDir,
		// LogPath: "",
		// Verbose: false,
	}
	c.Handler.AllowedOrigins = []string{}
	c.Open.RateLimit = 2
	c.HTTP.ReadTimeout = toml.Duration(30 * time.Second)
	c.HTTP.WriteTimeout = toml.Duration(time.Minute)
	c.HTTP.CloseTimeout = toml.Duration(30 * time.Second)
	return c
}

// Validate checks the configuration for values the server cannot start
// with.
func (c *Config) Validate() error {
	if c.Bind == "" {
		return errors.New(errors.ErrUncoded, "bind address required")
	}
	if c.DataDir == "" {
		return errors.New(errors.ErrUncoded, "data directory required")
	}
	for name, d := range map[string]toml.Duration{
		"http.read-timeout":  c.HTTP.ReadTimeout,
		"http.write-timeout": c.HTTP.WriteTimeout,
		"http.close-timeout": c.HTTP.CloseTimeout,
	} {
		if d < 0 {
			return errors.Errorf("%s must not be negative: %s", name, d)
		}
	}
	if c.Open.RateLimit < 0 {
		return errors.Errorf("open.rate-limit must not be negative: %v", c.Open.RateLimit)
	}
	if (c.TLS.CertificatePath == "") != (c.TLS.CertificateKeyPath == "") {
		return errors.New(errors.ErrUncoded, "tls.certificate and tls.key must be set together")
	}
	return nil
}

// MustValidate panics if the configuration is invalid.
func (c *Config) MustValidate() {
	if err := c.Validate(); err != nil {
		panic(err)
	}
}

// ExpandDirName expands a leading "~/" to the user's home directory.
func ExpandDirName(path string) (string, error) {
	prefix := "~" + string(filepath.Separator)
	if path == "~" || strings.HasPrefix(path, prefix) {
		homeDir := os.Getenv("HOME")
		if homeDir == "" {
			return "", errors.New(errors.ErrUncoded, "data directory not specified and no home dir available")
		}
		return filepath.Join(homeDir, strings.TrimPrefix(strings.TrimPrefix(path, "~"), string(filepath.Separator))), nil
	}
	return path, nil
}
