// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package ctl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/table"
	"github.com/jedib0t/go-pretty/text"
	"gopkg.in/yaml.v2"

	"github.com/molecula/qsarview"
	"github.com/molecula/qsarview/errors"
	"github.com/molecula/qsarview/server"
)

// LigandsCommand lists the ligands of one receptor/dataset pair with the
// file each one resolves to.
type LigandsCommand struct {
	// Host of a running server. Empty reads DataDir directly.
	Host    string
	DataDir string

	Receptor string
	Dataset  string

	// Format is one of "table", "json" or "yaml".
	Format string

	TLS server.TLSConfig

	*qsarview.CmdIO
}

// NewLigandsCommand returns a new instance of LigandsCommand.
func NewLigandsCommand(stdin io.Reader, stdout, stderr io.Writer) *LigandsCommand {
	return &LigandsCommand{
		DataDir:  qsarview.DefaultDataDir,
		Receptor: string(qsarview.Alpha),
		Dataset:  string(qsarview.CommonlyExposed),
		Format:   "table",
		CmdIO:    qsarview.NewCmdIO(stdin, stdout, stderr),
	}
}

// ligandRow is one ligand of the listing.
type ligandRow struct {
	Ligand   string `json:"ligand" yaml:"ligand"`
	Filename string `json:"filename,omitempty" yaml:"filename,omitempty"`
	Size     int64  `json:"size" yaml:"size"`
	SizeKB   string `json:"-" yaml:"-"`
	Digest   string `json:"digest,omitempty" yaml:"digest,omitempty"`
	Missing  bool   `json:"missing,omitempty" yaml:"missing,omitempty"`
}

// Run prints the ligand listing. An empty catalog prints its message and is
// not an error.
func (cmd *LigandsCommand) Run(ctx context.Context) error {
	switch cmd.Format {
	case "table", "json", "yaml":
	default:
		return qsarview.NewErrBadRequest("unknown format %q, want table, json or yaml", cmd.Format)
	}
	v, d, err := selection{Receptor: cmd.Receptor, Dataset: cmd.Dataset}.parse()
	if err != nil {
		return err
	}
	src, err := newSource(cmd, cmd.DataDir, nil, cmd.Logger())
	if err != nil {
		return err
	}

	view, err := src.Catalog(ctx, v, d)
	if err != nil {
		return errors.Wrap(err, "listing ligands")
	}
	if view.Empty {
		if cmd.Format == "table" {
			fmt.Fprintln(cmd.Stdout, view.Message)
			return nil
		}
		fmt.Fprintln(cmd.Stderr, view.Message)
	}

	rows := make([]ligandRow, 0, len(view.Ligands))
	for _, ligand := range view.Ligands {
		sv, err := src.Structure(ctx, v, d, ligand)
		if err != nil {
			// Listed but unreadable; show it rather than hide the ligand.
			cmd.Logger().Errorf("reading %s: %v", ligand, err)
			rows = append(rows, ligandRow{Ligand: ligand, Missing: true})
			continue
		}
		rows = append(rows, ligandRow{Ligand: ligand, Filename: sv.Filename, Size: sv.Size, SizeKB: sv.SizeKB, Digest: sv.Digest})
	}

	switch cmd.Format {
	case "json":
		enc := json.NewEncoder(cmd.Stdout)
		enc.SetIndent("", "  ")
		return errors.Wrap(enc.Encode(rows), "encoding json")
	case "yaml":
		buf, err := yaml.Marshal(rows)
		if err != nil {
			return errors.Wrap(err, "encoding yaml")
		}
		_, err = cmd.Stdout.Write(buf)
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(cmd.Stdout)

	// Don't uppercase the header values.
	t.Style().Format.Header = text.FormatDefault

	t.SetTitle(fmt.Sprintf("%s + %s", v.Name(), view.Directory))
	t.AppendHeader(table.Row{"Ligand", "Filename", "Size"})
	for _, r := range rows {
		if r.Missing {
			t.AppendRow(table.Row{r.Ligand, "", "missing"})
			continue
		}
		t.AppendRow(table.Row{r.Ligand, r.Filename, r.SizeKB})
	}
	t.AppendFooter(table.Row{"", "Total", len(rows)})
	t.Render()
	return nil
}

func (cmd *LigandsCommand) TLSHost() string { return cmd.Host }

func (cmd *LigandsCommand) TLSConfiguration() server.TLSConfig { return cmd.TLS }
