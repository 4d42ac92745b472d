// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package qsarview

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/molecula/qsarview/errors"
	"github.com/zeebo/blake3"
)

// PDBContentType is the media type of PDB structure files.
const PDBContentType = "chemical/x-pdb"

// StructureFile is the content of one PDB file, read in full.
type StructureFile struct {
	Name    string
	Path    string
	ModTime time.Time
	Content []byte
}

// LoadStructure reads the file at path. A missing file yields an ErrNotFound
// coded error.
func LoadStructure(path string) (*StructureFile, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil, NewErrStructureNotFound(path)
	} else if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, errors.Wrapf(err, "stat %s", path)
	}
	if fi.IsDir() {
		return nil, NewErrStructureNotFound(path)
	}

	content, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.Wrapf(err, "reading %s", path)
	}

	return &StructureFile{
		Name:    filepath.Base(path),
		Path:    path,
		ModTime: fi.ModTime(),
		Content: content,
	}, nil
}

// Size returns the length of the content in bytes.
func (s *StructureFile) Size() int64 {
	return int64(len(s.Content))
}

// SizeKB formats the size the way the page shows it, e.g. "12.3 KB".
func (s *StructureFile) SizeKB() string {
	return fmt.Sprintf("%.1f KB", float64(len(s.Content))/1024)
}

// Base64 is the content as handed to the viewer.
func (s *StructureFile) Base64() string {
	return base64.StdEncoding.EncodeToString(s.Content)
}

// Digest is a short blake3 hex digest of the content, used as an ETag.
func (s *StructureFile) Digest() string {
	hasher := blake3.New()
	_, _ = hasher.Write(s.Content)
	var buf [16]byte
	_, _ = hasher.Digest().Read(buf[:])
	return fmt.Sprintf("%x", buf)
}

// Preview returns the first n lines of the content.
func (s *StructureFile) Preview(n int) string {
	text := string(s.Content)
	lines := strings.SplitN(text, "\n", n+1)
	if len(lines) > n {
		lines = lines[:n]
	}
	return strings.Join(lines, "\n")
}
