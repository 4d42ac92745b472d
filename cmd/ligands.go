// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"context"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/molecula/qsarview/ctl"
	"github.com/molecula/qsarview/server"
)

func newLigandsCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	cmdLigands := ctl.NewLigandsCommand(stdin, stdout, stderr)
	ligandsCmd := &cobra.Command{
		Use:   "ligands",
		Short: "List the ligands of a receptor and dataset.",
		Long: `ligands lists the ligands found for one receptor variant and dataset,
with the structure file each one resolves to and its size.

Without --host the data directory is read directly.
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return considerUsageError(cmd, cmdLigands.Run(context.Background()))
		},
	}
	flags := ligandsCmd.Flags()
	flags.StringVarP(&cmdLigands.Receptor, "receptor", "r", cmdLigands.Receptor, "Receptor variant: alpha or beta.")
	flags.StringVarP(&cmdLigands.Dataset, "dataset", "s", cmdLigands.Dataset, "Dataset: ce (commonly exposed) or t50 (top 50).")
	flags.StringVarP(&cmdLigands.Format, "format", "f", cmdLigands.Format, "Output format: table, json or yaml.")
	sourceFlags(flags, &cmdLigands.Host, &cmdLigands.DataDir, &cmdLigands.TLS)
	return ligandsCmd
}

// sourceFlags adds the flags choosing between a running server and the
// local data directory.
func sourceFlags(flags *pflag.FlagSet, host, dataDir *string, tls *server.TLSConfig) {
	flags.StringVar(host, "host", *host, "host:port of a running qsarview server. Empty reads --data-dir directly.")
	flags.StringVarP(dataDir, "data-dir", "d", *dataDir, "Directory holding the receptor/dataset folders of combined PDB files.")
	ctl.SetTLSConfig(flags, "", &tls.CertificatePath, &tls.CertificateKeyPath, &tls.CACertPath, &tls.SkipVerify, &tls.EnableClientVerification)
}
