// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package qsarview_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/molecula/qsarview"
	"github.com/molecula/qsarview/errors"
	"github.com/molecula/qsarview/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingOpener struct {
	paths []string
	err   error
}

func (o *recordingOpener) Open(ctx context.Context, path string) error {
	o.paths = append(o.paths, path)
	return o.err
}

// newTestAPI returns an API over root. A nil opener leaves opening disabled.
func newTestAPI(t *testing.T, root string, opener qsarview.Opener) (*qsarview.API, *logger.BufferLogger) {
	t.Helper()
	buf := logger.NewBufferLogger()
	api, err := qsarview.NewAPI(
		qsarview.OptAPICatalog(qsarview.NewCatalog(root)),
		qsarview.OptAPILogger(buf),
		qsarview.OptAPIOpener(opener),
	)
	require.NoError(t, err)
	return api, buf
}

func TestNewAPIRequiresCatalog(t *testing.T) {
	_, err := qsarview.NewAPI()
	assert.Error(t, err)
}

func TestAPICatalog(t *testing.T) {
	root := t.TempDir()
	mustWriteFiles(t, root,
		"Alpha T50 Combined/PFOS_top_complex.pdb",
		"Alpha T50 Combined/PFOA_top_complex.pdb",
	)
	api, buf := newTestAPI(t, root, nil)

	view, err := api.Catalog(qsarview.Alpha, qsarview.Top50)
	require.NoError(t, err)
	assert.Equal(t, []string{"PFOA", "PFOS"}, view.Ligands)
	assert.Equal(t, "Alpha T50 Combined", view.Directory)
	assert.Equal(t, "*_top_complex.pdb", view.Pattern)
	assert.False(t, view.Empty)
	assert.Empty(t, view.Message)

	view, err = api.Catalog(qsarview.Beta, qsarview.Top50)
	require.NoError(t, err)
	assert.True(t, view.Empty)
	assert.Equal(t, "No combined PDB files found in 'Beta T50 Combined' folder.", view.Message)
	assert.Contains(t, buf.String(), "Beta T50 Combined")

	_, err = api.Catalog("gamma", qsarview.Top50)
	assert.True(t, errors.Is(err, qsarview.ErrBadRequest))
}

func TestAPIStructure(t *testing.T) {
	root := t.TempDir()
	mustWriteFiles(t, root, "Beta CE Combined/combined_GenX_out.pdb")
	api, _ := newTestAPI(t, root, nil)

	s, err := api.Structure(qsarview.Beta, qsarview.CommonlyExposed, "GenX")
	require.NoError(t, err)
	assert.Equal(t, "combined_GenX_out.pdb", s.Filename)
	assert.Equal(t, "ERβ + GenX", s.Title)
	assert.Equal(t, s.File.Size(), s.Size)
	assert.Equal(t, s.File.Base64(), s.Content)
	assert.True(t, strings.HasPrefix(s.Preview, "REMARK Beta CE Combined/combined_GenX_out.pdb"))

	_, err = api.Structure(qsarview.Beta, qsarview.CommonlyExposed, "PFOA")
	assert.True(t, errors.Is(err, qsarview.ErrNotFound), "got %v", err)
	assert.False(t, errors.Is(err, qsarview.ErrFileIntegrityMismatch))
	assert.Contains(t, err.Error(), "ligand 'PFOA' is not in 'Beta CE Combined'")
}

// TestAPIStructureIntegrityMismatch lists a ligand whose file cannot be read
// back: a dangling symlink is listed by name but fails on open.
func TestAPIStructureIntegrityMismatch(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "Alpha T50 Combined")
	require.NoError(t, os.MkdirAll(dir, 0750))
	path := filepath.Join(dir, "PFOA_top_complex.pdb")
	require.NoError(t, os.Symlink(filepath.Join(root, "gone.pdb"), path))

	o := &recordingOpener{}
	api, buf := newTestAPI(t, root, o)

	view, err := api.Catalog(qsarview.Alpha, qsarview.Top50)
	require.NoError(t, err)
	require.Equal(t, []string{"PFOA"}, view.Ligands)

	_, err = api.Structure(qsarview.Alpha, qsarview.Top50, "PFOA")
	assert.True(t, errors.Is(err, qsarview.ErrFileIntegrityMismatch), "got %v", err)
	assert.Contains(t, err.Error(), path)
	assert.Contains(t, buf.String(), path)

	_, err = api.Open(context.Background(), qsarview.Alpha, qsarview.Top50, "PFOA")
	assert.True(t, errors.Is(err, qsarview.ErrFileIntegrityMismatch), "got %v", err)
	assert.Empty(t, o.paths)

	_, err = api.Structure(qsarview.Alpha, qsarview.Top50, "NEVERLISTED")
	assert.True(t, errors.Is(err, qsarview.ErrNotFound), "got %v", err)
}

func TestAPIReceptorPage(t *testing.T) {
	root := t.TempDir()
	mustWriteFiles(t, root,
		"Alpha CE Combined/combined_PFOS_out.pdb",
		"Alpha CE Combined/combined_GenX_out.pdb",
	)
	api, _ := newTestAPI(t, root, nil)

	t.Run("Defaults", func(t *testing.T) {
		page, err := api.ReceptorPage(qsarview.Alpha, "", "")
		require.NoError(t, err)
		require.NoError(t, page.Err)
		assert.Equal(t, qsarview.CommonlyExposed, page.Dataset)
		assert.Equal(t, "GenX", page.Ligand)
		require.NotNil(t, page.Structure)
		assert.Equal(t, "combined_GenX_out.pdb", page.Structure.Filename)
	})

	t.Run("Selected", func(t *testing.T) {
		page, err := api.ReceptorPage(qsarview.Alpha, qsarview.CommonlyExposed, "PFOS")
		require.NoError(t, err)
		require.NoError(t, page.Err)
		assert.Equal(t, "ERα + PFOS", page.Structure.Title)
	})

	t.Run("EmptyCatalog", func(t *testing.T) {
		page, err := api.ReceptorPage(qsarview.Beta, qsarview.Top50, "")
		require.NoError(t, err)
		assert.True(t, errors.Is(page.Err, qsarview.ErrCatalogEmpty))
		assert.True(t, page.Catalog.Empty)
		assert.Nil(t, page.Structure)
	})

	t.Run("NotListed", func(t *testing.T) {
		page, err := api.ReceptorPage(qsarview.Alpha, qsarview.CommonlyExposed, "PFOA")
		require.NoError(t, err)
		assert.True(t, errors.Is(page.Err, qsarview.ErrNotFound))
		assert.Equal(t, []string{"GenX", "PFOS"}, page.Catalog.Ligands)
	})

	t.Run("InvalidDataset", func(t *testing.T) {
		_, err := api.ReceptorPage(qsarview.Alpha, "t100", "")
		assert.True(t, errors.Is(err, qsarview.ErrBadRequest))
	})
}

func TestAPIHome(t *testing.T) {
	root := t.TempDir()
	mustWriteFiles(t, root,
		"Alpha CE Combined/combined_PFOS_out.pdb",
		"Alpha CE Combined/combined_GenX_out.pdb",
		"Beta T50 Combined/PFOA_out_complex.pdb",
	)
	api, _ := newTestAPI(t, root, nil)

	home := api.Home()
	require.Len(t, home, 2)
	counts := map[string]int{}
	for _, r := range home {
		for _, c := range r.Counts {
			counts[fmt.Sprintf("%s/%s", r.Receptor, c.Dataset)] = c.Ligands
		}
	}
	assert.Equal(t, map[string]int{"alpha/ce": 2, "alpha/t50": 0, "beta/ce": 0, "beta/t50": 1}, counts)
	assert.Equal(t, "ERα", home[0].Name)
}

func TestAPIOpen(t *testing.T) {
	root := t.TempDir()
	mustWriteFiles(t, root, "Alpha T50 Combined/PFOA_top_complex.pdb")
	exp := filepath.Join(root, "Alpha T50 Combined", "PFOA_top_complex.pdb")

	t.Run("Disabled", func(t *testing.T) {
		api, _ := newTestAPI(t, root, nil)
		_, err := api.Open(context.Background(), qsarview.Alpha, qsarview.Top50, "PFOA")
		assert.True(t, errors.Is(err, qsarview.ErrBadRequest))
	})

	t.Run("Opened", func(t *testing.T) {
		o := &recordingOpener{}
		api, _ := newTestAPI(t, root, o)
		path, err := api.Open(context.Background(), qsarview.Alpha, qsarview.Top50, "PFOA")
		require.NoError(t, err)
		assert.Equal(t, exp, path)
		assert.Equal(t, []string{exp}, o.paths)
	})

	t.Run("LauncherFails", func(t *testing.T) {
		o := &recordingOpener{err: qsarview.NewErrExternalOpenFailure(exp, fmt.Errorf("no display"))}
		api, buf := newTestAPI(t, root, o)
		_, err := api.Open(context.Background(), qsarview.Alpha, qsarview.Top50, "PFOA")
		assert.True(t, errors.Is(err, qsarview.ErrExternalOpenFailure))
		assert.Contains(t, buf.String(), "no display")
	})

	t.Run("Missing", func(t *testing.T) {
		require.NoError(t, os.MkdirAll(filepath.Join(root, "Beta CE Combined"), 0750))
		o := &recordingOpener{}
		api, _ := newTestAPI(t, root, o)
		_, err := api.Open(context.Background(), qsarview.Beta, qsarview.CommonlyExposed, "PFOA")
		assert.True(t, errors.Is(err, qsarview.ErrNotFound), "got %v", err)
		assert.False(t, errors.Is(err, qsarview.ErrFileIntegrityMismatch))
		assert.Empty(t, o.paths)
	})
}

type fakeSystemInfo struct {
	qsarview.NopSystemInfo
	memErr error
}

func (f *fakeSystemInfo) Platform() (string, error) { return "ubuntu", nil }
func (f *fakeSystemInfo) MemTotal() (uint64, error) { return 1 << 30, f.memErr }

func TestAPIInfo(t *testing.T) {
	root := t.TempDir()
	si := &fakeSystemInfo{}
	api, err := qsarview.NewAPI(
		qsarview.OptAPICatalog(qsarview.NewCatalog(root)),
		qsarview.OptAPISystemInfo(si),
	)
	require.NoError(t, err)

	info, err := api.Info()
	require.NoError(t, err)
	assert.Equal(t, qsarview.Version, info.Version)
	assert.Equal(t, root, info.DataDir)
	assert.False(t, info.OpenEnabled)
	assert.Equal(t, "ubuntu", info.Host.Platform)
	assert.Equal(t, uint64(1<<30), info.Host.MemTotal)
	assert.NotZero(t, info.Host.NumCPU)
	assert.NotZero(t, info.DataDirSize)
	assert.LessOrEqual(t, info.DataDirFree, info.DataDirSize)

	si.memErr = fmt.Errorf("no /proc")
	_, err = api.Info()
	assert.ErrorContains(t, err, "memory total")
}
