// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package qsarview

import (
	"context"
	"os/exec"
	"runtime"
)

// Opener hands a file to a desktop application on the host.
type Opener interface {
	Open(ctx context.Context, path string) error
}

// Ensure type implements interface.
var _ Opener = &SystemOpener{}

// SystemOpener opens files with the operating system's default
// application.
type SystemOpener struct {
	// GOOS selects the launcher; it defaults to runtime.GOOS.
	GOOS string

	// Run executes the launcher. It defaults to exec.CommandContext(...).Run.
	Run func(ctx context.Context, name string, args ...string) error
}

// NewSystemOpener returns a SystemOpener for the running platform.
func NewSystemOpener() *SystemOpener {
	return &SystemOpener{
		GOOS: runtime.GOOS,
		Run: func(ctx context.Context, name string, args ...string) error {
			return exec.CommandContext(ctx, name, args...).Run()
		},
	}
}

// Command returns the launcher and its arguments for path.
func (o *SystemOpener) Command(path string) (string, []string) {
	switch o.GOOS {
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", path}
	case "darwin":
		return "open", []string{path}
	default:
		return "xdg-open", []string{path}
	}
}

// Open launches the default application for path. Any failure is reported
// as ErrExternalOpenFailure.
func (o *SystemOpener) Open(ctx context.Context, path string) error {
	name, args := o.Command(path)
	if err := o.Run(ctx, name, args...); err != nil {
		return NewErrExternalOpenFailure(path, err)
	}
	return nil
}

// nopOpener refuses every request; it is used when opening files on the
// server host is disabled.
type nopOpener struct{}

func (nopOpener) Open(ctx context.Context, path string) error {
	return NewErrBadRequest("opening files on the server host is disabled")
}
