// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package cmd_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLigandsCommand(t *testing.T) {
	dataDir := t.TempDir()
	dir := filepath.Join(dataDir, "Beta T50 Combined")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	for _, name := range []string{"PFOS_out_complex.pdb", "PFOA_out_complex.pdb", "PFOA_top_complex.pdb"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("END\n"), 0o644))
	}

	t.Run("Flags", func(t *testing.T) {
		out, err := ExecNewRootCommand(t, "ligands", "-d", dataDir, "-r", "beta", "-s", "t50")
		require.NoError(t, err)
		assert.Contains(t, out, "PFOA_out_complex.pdb")
		assert.Contains(t, out, "PFOS_out_complex.pdb")
		assert.NotContains(t, out, "PFOA_top_complex.pdb")
	})

	t.Run("Env", func(t *testing.T) {
		t.Setenv("QSARVIEW_DATA_DIR", dataDir)
		t.Setenv("QSARVIEW_RECEPTOR", "beta")
		out, err := ExecNewRootCommand(t, "ligands", "--dataset", "t50")
		require.NoError(t, err)
		assert.Contains(t, out, "PFOS_out_complex.pdb")
	})

	t.Run("YAML", func(t *testing.T) {
		out, err := ExecNewRootCommand(t, "ligands", "-d", dataDir, "-r", "beta", "-s", "t50", "-f", "yaml")
		require.NoError(t, err)
		assert.Contains(t, out, "- ligand: PFOA\n  filename: PFOA_out_complex.pdb\n")
	})

	t.Run("Empty", func(t *testing.T) {
		out, err := ExecNewRootCommand(t, "ligands", "-d", dataDir, "-r", "alpha", "-s", "ce")
		require.NoError(t, err)
		assert.Contains(t, out, "No combined PDB files found in 'Alpha CE Combined' folder.")
	})

	t.Run("BadDataset", func(t *testing.T) {
		out, err := ExecNewRootCommand(t, "ligands", "-d", dataDir, "-s", "t100")
		require.Error(t, err)
		assert.Contains(t, out, "Usage:")
	})
}
