// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package ctl

import (
	"context"
	"fmt"
	"io"

	"github.com/molecula/qsarview"
	"github.com/molecula/qsarview/server"
)

// OpenCommand opens one ligand's structure file with the default
// application. With a Host, the server opens it on its own machine.
type OpenCommand struct {
	Host    string
	DataDir string

	Receptor string
	Dataset  string
	Ligand   string

	// Opener launches the application when running without a Host.
	Opener qsarview.Opener

	TLS server.TLSConfig

	*qsarview.CmdIO
}

// NewOpenCommand returns a new instance of OpenCommand.
func NewOpenCommand(stdin io.Reader, stdout, stderr io.Writer) *OpenCommand {
	return &OpenCommand{
		DataDir:  qsarview.DefaultDataDir,
		Receptor: string(qsarview.Alpha),
		Dataset:  string(qsarview.CommonlyExposed),
		Opener:   qsarview.NewSystemOpener(),
		CmdIO:    qsarview.NewCmdIO(stdin, stdout, stderr),
	}
}

// Run opens the file and prints its path.
func (cmd *OpenCommand) Run(ctx context.Context) error {
	v, d, err := selection{Receptor: cmd.Receptor, Dataset: cmd.Dataset}.parse()
	if err != nil {
		return err
	}
	if cmd.Ligand == "" {
		return qsarview.NewErrBadRequest("ligand required")
	}
	src, err := newSource(cmd, cmd.DataDir, cmd.Opener, cmd.Logger())
	if err != nil {
		return err
	}
	path, err := src.Open(ctx, v, d, cmd.Ligand)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.Stdout, "opened %s\n", path)
	return nil
}

func (cmd *OpenCommand) TLSHost() string { return cmd.Host }

func (cmd *OpenCommand) TLSConfiguration() server.TLSConfig { return cmd.TLS }
