// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package cmd

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/molecula/qsarview/ctl"
)

// OpenCmd is global so that tests can swap its opener.
var OpenCmd *ctl.OpenCommand

func newOpenCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	OpenCmd = ctl.NewOpenCommand(stdin, stdout, stderr)
	openCmd := &cobra.Command{
		Use:   "open",
		Short: "Open a structure file with the default application.",
		Long: `open opens one ligand's combined PDB file with the default application
of this machine (xdg-open, open or rundll32). With --host the server
opens it on its own machine, which requires open.enabled there.
`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return considerUsageError(cmd, OpenCmd.Run(context.Background()))
		},
	}
	flags := openCmd.Flags()
	flags.StringVarP(&OpenCmd.Receptor, "receptor", "r", OpenCmd.Receptor, "Receptor variant: alpha or beta.")
	flags.StringVarP(&OpenCmd.Dataset, "dataset", "s", OpenCmd.Dataset, "Dataset: ce (commonly exposed) or t50 (top 50).")
	flags.StringVarP(&OpenCmd.Ligand, "ligand", "l", OpenCmd.Ligand, "Ligand identifier, as listed by the ligands command.")
	sourceFlags(flags, &OpenCmd.Host, &OpenCmd.DataDir, &OpenCmd.TLS)
	return openCmd
}
