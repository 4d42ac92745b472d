// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/molecula/qsarview/ctl"
)

func newDownloadCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	cmdDownload := ctl.NewDownloadCommand(stdin, stdout, stderr)
	downloadCmd := &cobra.Command{
		Use:   "download",
		Short: "Save a structure file under its original name.",
		Long: `download writes one ligand's combined PDB file into --output, keeping
the filename it has in the data directory.
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return considerUsageError(cmd, cmdDownload.Run(context.Background()))
		},
	}
	flags := downloadCmd.Flags()
	flags.StringVarP(&cmdDownload.Receptor, "receptor", "r", cmdDownload.Receptor, "Receptor variant: alpha or beta.")
	flags.StringVarP(&cmdDownload.Dataset, "dataset", "s", cmdDownload.Dataset, "Dataset: ce (commonly exposed) or t50 (top 50).")
	flags.StringVarP(&cmdDownload.Ligand, "ligand", "l", cmdDownload.Ligand, "Ligand identifier, as listed by the ligands command.")
	flags.StringVarP(&cmdDownload.OutputDir, "output", "o", cmdDownload.OutputDir, "Directory to write the file to.")
	sourceFlags(flags, &cmdDownload.Host, &cmdDownload.DataDir, &cmdDownload.TLS)
	return downloadCmd
}
