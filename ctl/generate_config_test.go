// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package ctl

import (
	"bytes"
	"context"
	"os"
	"strings"
	"testing"
)

func TestGenerateConfigCommand_Run(t *testing.T) {
	buf := &bytes.Buffer{}
	cm := NewGenerateConfigCommand(os.Stdin, buf, os.Stderr)
	err := cm.Run(context.Background())
	if err != nil {
		t.Fatalf("Config Run doesn't work: %s", err)
	}
	if !strings.Contains(buf.String(), ":8050") {
		t.Fatalf("Unexpected config: %s", buf.String())
	}
	if !strings.Contains(buf.String(), "PDB OF CE") {
		t.Fatalf("Unexpected config: %s", buf.String())
	}
}
