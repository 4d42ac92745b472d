// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0

// Package toml holds value types which need a textual form in the TOML
// configuration file.
package toml

import "time"

// Duration is a time.Duration written as "30s" or "1m30s" in config files.
// It also satisfies pflag.Value, so the same field backs the command-line
// flag.
type Duration time.Duration

// Value returns d as a time.Duration.
func (d Duration) Value() time.Duration { return time.Duration(d) }

func (d Duration) String() string { return time.Duration(d).String() }

// Set parses a duration such as "1m30s".
func (d *Duration) Set(s string) error {
	v, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Type names the flag value type in usage output.
func (d *Duration) Type() string { return "duration" }

func (d *Duration) UnmarshalText(text []byte) error {
	return d.Set(string(text))
}

// MarshalText writes the duration in the form accepted by UnmarshalText.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}
