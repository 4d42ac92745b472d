// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0

// Package qsarview serves pre-computed receptor–ligand complexes (ERα and
// ERβ combined with PFAS ligands) from a fixed on-disk layout, for viewing
// in the browser and for download.
//
// The layout under the data directory is:
//
//	Alpha CE Combined/   combined_{id}_out.pdb
//	Alpha T50 Combined/  {id}_top_complex.pdb
//	Beta CE Combined/    combined_{id}_out.pdb
//	Beta T50 Combined/   {id}_out_complex.pdb
//
// Structure files are never parsed; they are handed verbatim to the viewer
// and to the download.
package qsarview

import (
	"fmt"

	"github.com/molecula/qsarview/errors"
)

const (
	// ErrCatalogEmpty means a dataset directory is missing or holds no
	// matching files. It is reported to the user, never fatal.
	ErrCatalogEmpty errors.Code = "CatalogEmpty"

	// ErrFileIntegrityMismatch means a ligand was listed but the file
	// reconstructed from its identifier does not exist.
	ErrFileIntegrityMismatch errors.Code = "FileIntegrityMismatch"

	// ErrExternalOpenFailure means the host's default application could
	// not be launched for a structure file.
	ErrExternalOpenFailure errors.Code = "ExternalOpenFailure"

	ErrNotFound        errors.Code = "NotFound"
	ErrBadRequest      errors.Code = "BadRequest"
	ErrTooManyRequests errors.Code = "TooManyRequests"
)

func NewErrCatalogEmpty(dir string) error {
	return errors.New(
		ErrCatalogEmpty,
		fmt.Sprintf("No combined PDB files found in '%s' folder.", dir),
	)
}

func NewErrFileIntegrityMismatch(path string) error {
	return errors.New(
		ErrFileIntegrityMismatch,
		fmt.Sprintf("Combined PDB file not found: %s", path),
	)
}

func NewErrExternalOpenFailure(path string, cause error) error {
	return errors.New(
		ErrExternalOpenFailure,
		fmt.Sprintf("Could not open the PDB file %s. Error: %v", path, cause),
	)
}

func NewErrStructureNotFound(path string) error {
	return errors.New(
		ErrNotFound,
		fmt.Sprintf("structure file '%s' does not exist", path),
	)
}

func NewErrLigandNotListed(ligand string, dir string) error {
	return errors.New(
		ErrNotFound,
		fmt.Sprintf("ligand '%s' is not in '%s'", ligand, dir),
	)
}

func NewErrTooManyRequests(action string) error {
	return errors.New(
		ErrTooManyRequests,
		fmt.Sprintf("too many %s requests, try again shortly", action),
	)
}

func NewErrBadRequest(format string, args ...interface{}) error {
	return errors.Newf(ErrBadRequest, format, args...)
}
