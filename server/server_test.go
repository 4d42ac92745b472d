// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package server_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/molecula/qsarview"
	"github.com/molecula/qsarview/errors"
	"github.com/molecula/qsarview/http"
	"github.com/molecula/qsarview/server"
)

const testPDB = "HEADER    GENX COMPLEX\nHETATM    1  C1  UNL B   1\nEND\n"

func mustWriteData(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range []string{
		"Alpha CE Combined/combined_GenX_out.pdb",
		"Alpha T50 Combined/PFOA_top_complex.pdb",
	} {
		path := filepath.Join(root, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(testPDB), 0o644))
	}
	return root
}

type testOpener struct {
	mu    sync.Mutex
	paths []string
}

func (o *testOpener) Open(ctx context.Context, path string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.paths = append(o.paths, path)
	return nil
}

// mustStartCommand starts a server on a random local port over dataDir.
func mustStartCommand(t *testing.T, config *server.Config, opts ...server.CommandOption) (*server.Command, *bytes.Buffer) {
	t.Helper()
	config.Bind = "localhost:0"
	stderr := &bytes.Buffer{}
	m := server.NewCommand(nil, &bytes.Buffer{}, stderr, append(opts, server.OptCommandConfig(config))...)
	require.NoError(t, m.Start())
	t.Cleanup(func() { _ = m.Close() })
	return m, stderr
}

func mustNewClient(t *testing.T, m *server.Command) *http.Client {
	t.Helper()
	client, err := http.NewClient(m.Addr().String(), nil)
	require.NoError(t, err)
	return client
}

func TestCommand(t *testing.T) {
	ctx := context.Background()

	t.Run("Serve", func(t *testing.T) {
		config := server.NewConfig()
		config.DataDir = mustWriteData(t)
		m, stderr := mustStartCommand(t, config)
		client := mustNewClient(t, m)

		view, err := client.Catalog(ctx, qsarview.Alpha, qsarview.Top50)
		require.NoError(t, err)
		assert.Equal(t, []string{"PFOA"}, view.Ligands)

		_, err = client.Catalog(ctx, qsarview.Beta, qsarview.Top50)
		require.NoError(t, err)

		version, err := client.Version(ctx)
		require.NoError(t, err)
		assert.Equal(t, qsarview.Version, version)

		// Open is disabled by default.
		_, err = client.Open(ctx, qsarview.Alpha, qsarview.CommonlyExposed, "GenX")
		assert.True(t, errors.Is(err, qsarview.ErrBadRequest), "got %v", err)

		require.NoError(t, m.Close())
		require.NoError(t, m.Close())
		assert.Contains(t, stderr.String(), "listening as http://")
	})

	t.Run("MissingDataDir", func(t *testing.T) {
		config := server.NewConfig()
		config.DataDir = filepath.Join(t.TempDir(), "nowhere")
		m, stderr := mustStartCommand(t, config)
		assert.Contains(t, stderr.String(), "is not a readable directory")

		view, err := mustNewClient(t, m).Catalog(ctx, qsarview.Alpha, qsarview.CommonlyExposed)
		require.NoError(t, err)
		assert.True(t, view.Empty)
	})

	t.Run("OpenEnabled", func(t *testing.T) {
		config := server.NewConfig()
		config.DataDir = mustWriteData(t)
		config.Open.Enabled = true
		opener := &testOpener{}
		m, _ := mustStartCommand(t, config, server.OptCommandOpener(opener))

		path, err := mustNewClient(t, m).Open(ctx, qsarview.Alpha, qsarview.CommonlyExposed, "GenX")
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(config.DataDir, "Alpha CE Combined", "combined_GenX_out.pdb"), path)
		assert.Equal(t, []string{path}, opener.paths)
	})

	t.Run("LogPath", func(t *testing.T) {
		config := server.NewConfig()
		config.DataDir = mustWriteData(t)
		config.LogPath = filepath.Join(t.TempDir(), "qsarview.log")
		config.Verbose = true
		m, stderr := mustStartCommand(t, config)
		require.NoError(t, m.Close())

		buf, err := os.ReadFile(config.LogPath)
		require.NoError(t, err)
		assert.Contains(t, string(buf), "listening as")
		assert.Contains(t, string(buf), "config:")
		assert.Empty(t, stderr.String())
	})

	t.Run("InvalidConfig", func(t *testing.T) {
		config := server.NewConfig()
		config.TLS.CertificateKeyPath = "server.key"
		m := server.NewCommand(nil, &bytes.Buffer{}, &bytes.Buffer{}, server.OptCommandConfig(config))
		err := m.Start()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "validating config")
		assert.Nil(t, m.Addr())
	})

	t.Run("MissingCertificate", func(t *testing.T) {
		config := server.NewConfig()
		config.Bind = "localhost:0"
		config.TLS.CertificatePath = filepath.Join(t.TempDir(), "server.crt")
		config.TLS.CertificateKeyPath = filepath.Join(t.TempDir(), "server.key")
		m := server.NewCommand(nil, &bytes.Buffer{}, &bytes.Buffer{}, server.OptCommandConfig(config))
		err := m.Start()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "loading keypair")
	})
}

type testSystemInfo struct {
	qsarview.NopSystemInfo
}

func (testSystemInfo) Platform() (string, error) { return "testos", nil }
func (testSystemInfo) MemTotal() (uint64, error) { return 2 << 30, nil }

func TestCommandHostInfo(t *testing.T) {
	config := server.NewConfig()
	config.DataDir = mustWriteData(t)
	m, stderr := mustStartCommand(t, config, server.OptCommandSystemInfo(testSystemInfo{}))
	assert.Contains(t, stderr.String(), "host: testos")
	assert.Contains(t, stderr.String(), "2048 MB memory")

	info, err := mustNewClient(t, m).Info(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "testos", info.Host.Platform)
	assert.Equal(t, config.DataDir, info.DataDir)
	assert.False(t, info.OpenEnabled)
}

func TestCommandMonitor(t *testing.T) {
	config := server.NewConfig()
	config.DataDir = mustWriteData(t)
	config.Monitor.DSN = "not a dsn"
	m := server.NewCommand(nil, &bytes.Buffer{}, &bytes.Buffer{}, server.OptCommandConfig(config))
	err := m.Start()
	assert.ErrorContains(t, err, "initializing error monitor")
}

func TestExpandDirName(t *testing.T) {
	t.Setenv("HOME", "/home/chem")

	for in, exp := range map[string]string{
		"~":               "/home/chem",
		"~/PDB OF CE":     "/home/chem/PDB OF CE",
		"/data/PDB OF CE": "/data/PDB OF CE",
		"PDB OF CE":       "PDB OF CE",
		"~other/data":     "~other/data",
	} {
		got, err := server.ExpandDirName(in)
		require.NoError(t, err)
		assert.Equal(t, exp, got, in)
	}

	t.Setenv("HOME", "")
	_, err := server.ExpandDirName("~/data")
	assert.Error(t, err)
}
