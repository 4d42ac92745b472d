// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package ctl

import (
	"github.com/spf13/cobra"

	"github.com/molecula/qsarview/server"
)

// BuildServerFlags attaches a set of flags to the command for a server instance.
func BuildServerFlags(cmd *cobra.Command, srv *server.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&srv.Config.Bind, "bind", "b", srv.Config.Bind, "host:port on which qsarview should listen.")
	flags.StringVarP(&srv.Config.DataDir, "data-dir", "d", srv.Config.DataDir, "Directory holding the receptor/dataset folders of combined PDB files.")
	flags.StringVar(&srv.Config.LogPath, "log-path", srv.Config.LogPath, "Log path")
	flags.BoolVar(&srv.Config.Verbose, "verbose", srv.Config.Verbose, "Enable verbose logging")

	// Handler
	flags.StringSliceVar(&srv.Config.Handler.AllowedOrigins, "handler.allowed-origins", []string{}, "Comma separated list of allowed origin URIs (for CORS).")
	flags.BoolVar(&srv.Config.Handler.AccessLog, "handler.access-log", srv.Config.Handler.AccessLog, "Write an access log line per request.")
	flags.BoolVar(&srv.Config.Handler.Profile, "handler.profile", srv.Config.Handler.Profile, "Serve runtime profiles under /debug/pprof/ and /debug/fgprof.")

	// Open
	flags.BoolVar(&srv.Config.Open.Enabled, "open.enabled", srv.Config.Open.Enabled, "Allow opening structure files with the default application of this host.")
	flags.Float64Var(&srv.Config.Open.RateLimit, "open.rate-limit", srv.Config.Open.RateLimit, "Opens allowed per second. Zero for no limit.")

	// HTTP
	flags.Var(&srv.Config.HTTP.ReadTimeout, "http.read-timeout", "Maximum duration for reading an entire request. Zero to disable.")
	flags.Var(&srv.Config.HTTP.WriteTimeout, "http.write-timeout", "Maximum duration before timing out writes of a response. Zero to disable.")
	flags.Var(&srv.Config.HTTP.CloseTimeout, "http.close-timeout", "Time to wait for in-flight requests on shutdown.")

	// Monitor
	flags.StringVar(&srv.Config.Monitor.DSN, "monitor.dsn", srv.Config.Monitor.DSN, "Sentry DSN to report errors to. Empty disables reporting.")

	// TLS
	SetTLSConfig(flags, "", &srv.Config.TLS.CertificatePath, &srv.Config.TLS.CertificateKeyPath, &srv.Config.TLS.CACertPath, &srv.Config.TLS.SkipVerify, &srv.Config.TLS.EnableClientVerification)
}
