// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package ctl

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/molecula/qsarview"
	"github.com/molecula/qsarview/errors"
	"github.com/molecula/qsarview/http"
	"github.com/molecula/qsarview/server"
)

// DownloadCommand saves one ligand's structure file under its original
// filename.
type DownloadCommand struct {
	Host    string
	DataDir string

	Receptor string
	Dataset  string
	Ligand   string

	// OutputDir receives the file.
	OutputDir string

	TLS server.TLSConfig

	*qsarview.CmdIO
}

// NewDownloadCommand returns a new instance of DownloadCommand.
func NewDownloadCommand(stdin io.Reader, stdout, stderr io.Writer) *DownloadCommand {
	return &DownloadCommand{
		DataDir:   qsarview.DefaultDataDir,
		Receptor:  string(qsarview.Alpha),
		Dataset:   string(qsarview.CommonlyExposed),
		OutputDir: ".",
		CmdIO:     qsarview.NewCmdIO(stdin, stdout, stderr),
	}
}

// Run writes the file and prints where it went.
func (cmd *DownloadCommand) Run(ctx context.Context) error {
	v, d, err := selection{Receptor: cmd.Receptor, Dataset: cmd.Dataset}.parse()
	if err != nil {
		return err
	}
	if cmd.Ligand == "" {
		return qsarview.NewErrBadRequest("ligand required")
	}
	src, err := newSource(cmd, cmd.DataDir, nil, cmd.Logger())
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	var filename string
	if client, ok := src.(*http.Client); ok {
		if filename, err = client.Download(ctx, v, d, cmd.Ligand, &buf); err != nil {
			return errors.Wrap(err, "downloading")
		}
	} else {
		sv, err := src.Structure(ctx, v, d, cmd.Ligand)
		if err != nil {
			return err
		}
		content, err := base64.StdEncoding.DecodeString(sv.Content)
		if err != nil {
			return errors.Wrap(err, "decoding content")
		}
		filename = sv.Filename
		buf.Write(content)
	}

	path := filepath.Join(cmd.OutputDir, filepath.Base(filename))
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return errors.Wrap(err, "writing file")
	}
	fmt.Fprintf(cmd.Stdout, "wrote %s (%d bytes)\n", path, buf.Len())
	return nil
}

func (cmd *DownloadCommand) TLSHost() string { return cmd.Host }

func (cmd *DownloadCommand) TLSConfiguration() server.TLSConfig { return cmd.TLS }
