// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package ctl

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/molecula/qsarview/server"
)

const testPDB = "HEADER    PFOA COMPLEX\nATOM      1  N   MET A   1\nHETATM    2  C1  UNL B   1\nEND\n"

// mustWriteData lays out a data directory with Alpha ligands only.
func mustWriteData(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	for _, f := range []string{
		"Alpha CE Combined/combined_GenX_out.pdb",
		"Alpha T50 Combined/PFOA_top_complex.pdb",
		"Alpha T50 Combined/PFOS_top_complex.pdb",
	} {
		path := filepath.Join(root, f)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(testPDB), 0o644))
	}
	return root
}

// mustStartServer runs a server over dataDir and returns its host.
func mustStartServer(t *testing.T, dataDir string, opts ...server.CommandOption) string {
	t.Helper()
	config := server.NewConfig()
	config.Bind = "localhost:0"
	config.DataDir = dataDir
	config.Open.Enabled = true
	m := server.NewCommand(nil, &bytes.Buffer{}, &bytes.Buffer{}, append(opts, server.OptCommandConfig(config))...)
	require.NoError(t, m.Start())
	t.Cleanup(func() { _ = m.Close() })
	return m.Addr().String()
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

func (o *testOpener) Paths() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]string(nil), o.paths...)
}
