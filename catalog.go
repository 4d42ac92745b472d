// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package qsarview

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/molecula/qsarview/errors"
	"golang.org/x/exp/slices"
)

// DefaultDataDir is the directory, relative to the working directory, which
// holds the four dataset directories.
const DefaultDataDir = "PDB OF CE"

// ReceptorVariant is one of the two estrogen receptor subtypes.
type ReceptorVariant string

const (
	Alpha ReceptorVariant = "alpha"
	Beta  ReceptorVariant = "beta"
)

// ReceptorVariants lists the variants in display order.
var ReceptorVariants = []ReceptorVariant{Alpha, Beta}

// ParseReceptorVariant accepts "alpha", "beta", "era" and "erb" in any case.
func ParseReceptorVariant(s string) (ReceptorVariant, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "alpha", "era":
		return Alpha, nil
	case "beta", "erb":
		return Beta, nil
	}
	return "", NewErrBadRequest("unknown receptor '%s'; use alpha or beta", s)
}

// Name is the short display name, e.g. "ERα".
func (v ReceptorVariant) Name() string {
	switch v {
	case Alpha:
		return "ERα"
	case Beta:
		return "ERβ"
	}
	return string(v)
}

func (v ReceptorVariant) Description() string {
	switch v {
	case Alpha:
		return "Estrogen Receptor Alpha - Primary target for estrogen signaling"
	case Beta:
		return "Estrogen Receptor Beta - Secondary estrogen receptor subtype"
	}
	return ""
}

// DatasetKind is one of the two ligand corpora.
type DatasetKind string

const (
	CommonlyExposed DatasetKind = "ce"
	Top50           DatasetKind = "t50"
)

// DatasetKinds lists the datasets in display order; the first is the
// default selection.
var DatasetKinds = []DatasetKind{CommonlyExposed, Top50}

// ParseDatasetKind accepts "ce", "t50", "commonly-exposed" and "top50" in
// any case.
func ParseDatasetKind(s string) (DatasetKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ce", "commonly-exposed", "commonlyexposed":
		return CommonlyExposed, nil
	case "t50", "top50", "top-50":
		return Top50, nil
	}
	return "", NewErrBadRequest("unknown dataset '%s'; use ce or t50", s)
}

func (d DatasetKind) Name() string {
	switch d {
	case CommonlyExposed:
		return "Commonly Exposed Set"
	case Top50:
		return "Top 50 Set"
	}
	return string(d)
}

// CatalogEntry describes one dataset directory and the naming convention
// of the files in it: every file is Prefix + ligand + Suffix.
type CatalogEntry struct {
	Dir    string
	Prefix string
	Suffix string
}

// Pattern is the glob matching the files of this entry.
func (e CatalogEntry) Pattern() string {
	return e.Prefix + "*" + e.Suffix
}

// Extract returns the ligand identifier encoded in name, or false if name
// does not follow this entry's convention.
func (e CatalogEntry) Extract(name string) (string, bool) {
	if len(name) <= len(e.Prefix)+len(e.Suffix) {
		return "", false
	}
	if !strings.HasPrefix(name, e.Prefix) || !strings.HasSuffix(name, e.Suffix) {
		return "", false
	}
	return name[len(e.Prefix) : len(name)-len(e.Suffix)], true
}

// Filename is the inverse of Extract.
func (e CatalogEntry) Filename(ligand string) string {
	return e.Prefix + ligand + e.Suffix
}

type catalogKey struct {
	variant ReceptorVariant
	dataset DatasetKind
}

// catalogTable holds the naming conventions of the upstream pipeline. The
// two Top50 suffixes differ between Alpha and Beta; that is how the files
// are shipped.
var catalogTable = map[catalogKey]CatalogEntry{
	{Alpha, CommonlyExposed}: {Dir: "Alpha CE Combined", Prefix: "combined_", Suffix: "_out.pdb"},
	{Alpha, Top50}:           {Dir: "Alpha T50 Combined", Prefix: "", Suffix: "_top_complex.pdb"},
	{Beta, CommonlyExposed}:  {Dir: "Beta CE Combined", Prefix: "combined_", Suffix: "_out.pdb"},
	{Beta, Top50}:            {Dir: "Beta T50 Combined", Prefix: "", Suffix: "_out_complex.pdb"},
}

// LookupEntry returns the catalog entry for a (variant, dataset) pair.
func LookupEntry(v ReceptorVariant, d DatasetKind) (CatalogEntry, error) {
	e, ok := catalogTable[catalogKey{v, d}]
	if !ok {
		return CatalogEntry{}, NewErrBadRequest("no catalog for receptor '%s' and dataset '%s'", v, d)
	}
	return e, nil
}

// CatalogEntries returns every entry, receptor-major.
func CatalogEntries() []CatalogEntry {
	out := make([]CatalogEntry, 0, len(catalogTable))
	for _, v := range ReceptorVariants {
		for _, d := range DatasetKinds {
			out = append(out, catalogTable[catalogKey{v, d}])
		}
	}
	return out
}

// Catalog resolves ligands and structure files below a data directory. It
// holds no mutable state; every call goes to disk.
type Catalog struct {
	root string
}

// NewCatalog returns a Catalog rooted at dir.
func NewCatalog(dir string) *Catalog {
	return &Catalog{root: dir}
}

// Root returns the data directory.
func (c *Catalog) Root() string {
	return c.root
}

// ResolveDirectory returns the directory holding the files for v and d.
func (c *Catalog) ResolveDirectory(v ReceptorVariant, d DatasetKind) (string, error) {
	e, err := LookupEntry(v, d)
	if err != nil {
		return "", err
	}
	return filepath.Join(c.root, e.Dir), nil
}

// ListLigands returns the sorted, duplicate-free ligand identifiers
// available for v and d. A missing directory yields an empty list and no
// error.
func (c *Catalog) ListLigands(v ReceptorVariant, d DatasetKind) ([]string, error) {
	e, err := LookupEntry(v, d)
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(c.root, e.Dir)

	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return []string{}, nil
	} else if err != nil {
		return nil, errors.Wrapf(err, "reading %s", dir)
	}

	ligands := make([]string, 0, len(entries))
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		id, ok := e.Extract(ent.Name())
		if !ok {
			continue
		}
		// Only list identifiers ResolveFilename accepts back.
		if validateLigand(id) != nil {
			continue
		}
		ligands = append(ligands, id)
	}
	slices.Sort(ligands)
	return slices.Compact(ligands), nil
}

// ResolveFilename returns the file name, relative to the dataset directory,
// of ligand for v and d.
func (c *Catalog) ResolveFilename(v ReceptorVariant, d DatasetKind, ligand string) (string, error) {
	e, err := LookupEntry(v, d)
	if err != nil {
		return "", err
	}
	if err := validateLigand(ligand); err != nil {
		return "", err
	}
	return e.Filename(ligand), nil
}

// ResolvePath joins ResolveDirectory and ResolveFilename.
func (c *Catalog) ResolvePath(v ReceptorVariant, d DatasetKind, ligand string) (string, error) {
	dir, err := c.ResolveDirectory(v, d)
	if err != nil {
		return "", err
	}
	name, err := c.ResolveFilename(v, d, ligand)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

// OpenStructure reopens the file of a listed ligand. A missing file is an
// integrity failure: the ligand came from a listing of the same directory.
func (c *Catalog) OpenStructure(v ReceptorVariant, d DatasetKind, ligand string) (*StructureFile, error) {
	path, err := c.ResolvePath(v, d, ligand)
	if err != nil {
		return nil, err
	}
	s, err := LoadStructure(path)
	if errors.Is(err, ErrNotFound) {
		return nil, NewErrFileIntegrityMismatch(path)
	}
	return s, err
}

// validateLigand keeps a ligand identifier from naming anything outside its
// dataset directory.
func validateLigand(ligand string) error {
	switch {
	case ligand == "":
		return NewErrBadRequest("ligand is required")
	case ligand == "." || ligand == "..":
		return NewErrBadRequest("invalid ligand '%s'", ligand)
	case strings.ContainsAny(ligand, "/\\\x00"):
		return NewErrBadRequest("invalid ligand '%s'", ligand)
	}
	return nil
}
