// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package server_test

import (
	"testing"
	"time"

	gotoml "github.com/pelletier/go-toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/molecula/qsarview"
	"github.com/molecula/qsarview/server"
	"github.com/molecula/qsarview/toml"
)

func TestNewConfig(t *testing.T) {
	c := server.NewConfig()
	assert.Equal(t, ":8050", c.Bind)
	assert.Equal(t, qsarview.DefaultDataDir, c.DataDir)
	assert.False(t, c.Open.Enabled)
	assert.False(t, c.TLS.Enabled())
	assert.Equal(t, toml.Duration(30*time.Second), c.HTTP.CloseTimeout)
	require.NoError(t, c.Validate())
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *server.Config)
		expErr string
	}{
		{
			name:   "NoBind",
			mutate: func(c *server.Config) { c.Bind = "" },
			expErr: "bind address required",
		},
		{
			name:   "NoDataDir",
			mutate: func(c *server.Config) { c.DataDir = "" },
			expErr: "data directory required",
		},
		{
			name:   "NegativeTimeout",
			mutate: func(c *server.Config) { c.HTTP.WriteTimeout = toml.Duration(-time.Second) },
			expErr: "http.write-timeout must not be negative",
		},
		{
			name:   "NegativeRateLimit",
			mutate: func(c *server.Config) { c.Open.RateLimit = -1 },
			expErr: "open.rate-limit must not be negative",
		},
		{
			name:   "CertWithoutKey",
			mutate: func(c *server.Config) { c.TLS.CertificatePath = "server.crt" },
			expErr: "must be set together",
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := server.NewConfig()
			test.mutate(c)
			err := c.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), test.expErr)
			assert.Panics(t, c.MustValidate)
		})
	}
}

func TestConfigTOML(t *testing.T) {
	buf, err := gotoml.Marshal(*server.NewConfig())
	require.NoError(t, err)
	out := string(buf)
	for _, exp := range []string{
		`bind = ":8050"`,
		`data-dir = "PDB OF CE"`,
		`[handler]`,
		`[open]`,
		`read-timeout = "30s"`,
		`close-timeout = "30s"`,
		`[tls]`,
		`[monitor]`,
	} {
		assert.Contains(t, out, exp)
	}
}

func TestDuration(t *testing.T) {
	d := toml.Duration(time.Second * 182)
	assert.Equal(t, "3m2s", d.String())

	var parsed toml.Duration
	require.NoError(t, parsed.UnmarshalText([]byte("3m2s")))
	assert.Equal(t, d, parsed)

	text, err := d.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "3m2s", string(text))

	assert.Error(t, parsed.UnmarshalText([]byte("soon")))
}
