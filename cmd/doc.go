// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0

/*
Package cmd contains all the qsarview subcommand definitions (1 per file).

Each command file has a new*Command function which returns a cobra.Command
object wrapping the matching ctl or server command. NewRootCommand adds them
all and layers configuration from flags, the environment and a TOML file
over their defaults.

The server instance is global and exported so that it can be tested.
*/
package cmd
