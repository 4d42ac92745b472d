// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/molecula/qsarview"
	"github.com/molecula/qsarview/ctl"
	"github.com/molecula/qsarview/errors"
	"github.com/molecula/qsarview/server"
)

// Server is global so that tests can control and verify it.
var Server *server.Command

// newServeCmd runs the viewer's HTTP server.
func newServeCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	Server = server.NewCommand(stdin, stdout, stderr)
	serveCmd := &cobra.Command{
		Use:   "server",
		Short: "Run the qsarview web viewer.",
		Long: `qsarview server runs the web viewer.

It lists the combined PDB files found under the configured data
directory and serves the viewer pages, the JSON catalog and the raw
structure files on the configured address.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(Server.Stderr, qsarview.VersionInfo())

			if err := Server.Start(); err != nil {
				return considerUsageError(cmd, errors.Wrap(err, "running server"))
			}
			return errors.Wrap(Server.Wait(), "waiting on server")
		},
	}

	// Attach flags to the command.
	ctl.BuildServerFlags(serveCmd, Server)
	return serveCmd
}
