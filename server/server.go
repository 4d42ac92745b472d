// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0

// Package server contains the `qsarview server` subcommand which runs the
// viewer. The purpose of this package is to define an easily tested Command
// object which handles interpreting configuration and setting up all the
// objects that the viewer needs.
package server

import (
	"crypto/tls"
	"encoding/json"
	"io"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/molecula/qsarview"
	"github.com/molecula/qsarview/errors"
	"github.com/molecula/qsarview/gopsutil"
	"github.com/molecula/qsarview/http"
	"github.com/molecula/qsarview/logger"
	"github.com/molecula/qsarview/monitor"
)

// Command represents the state of the qsarview server command.
type Command struct {
	// Configuration.
	Config *Config

	// Standard input/output
	*qsarview.CmdIO

	API     *qsarview.API
	Handler *http.Handler

	opener     qsarview.Opener
	systemInfo qsarview.SystemInfo
	ln        net.Listener
	tlsConfig *tls.Config

	// serve runs Handler.Serve; Close waits on it.
	serve errgroup.Group

	// Started will be closed once Command.Start() has succeeded.
	Started chan struct{}

	// done will be closed when Command.Close() is called
	done chan struct{}

	logger    logger.Logger
	logOutput io.Writer
	logFile   *logger.FileWriter
}

type CommandOption func(c *Command) error

// OptCommandConfig replaces the default configuration.
func OptCommandConfig(config *Config) CommandOption {
	return func(c *Command) error {
		if config == nil {
			return errors.New(errors.ErrUncoded, "nil config")
		}
		c.Config = config
		return nil
	}
}

// OptCommandOpener sets the Opener used when open.enabled is true. The
// default launches the host's default application.
func OptCommandOpener(o qsarview.Opener) CommandOption {
	return func(c *Command) error {
		c.opener = o
		return nil
	}
}

// OptCommandSystemInfo replaces the gopsutil host information.
func OptCommandSystemInfo(si qsarview.SystemInfo) CommandOption {
	return func(c *Command) error {
		c.systemInfo = si
		return nil
	}
}

// NewCommand returns a new instance of Command.
func NewCommand(stdin io.Reader, stdout, stderr io.Writer, opts ...CommandOption) *Command {
	c := &Command{
		Config: NewConfig(),

		CmdIO: qsarview.NewCmdIO(stdin, stdout, stderr),

		systemInfo: gopsutil.NewSystemInfo(),

		Started: make(chan struct{}),
		done:    make(chan struct{}),
	}

	for _, opt := range opts {
		err := opt(c)
		if err != nil {
			panic(err)
		}
	}

	return c
}

// Start sets up the server and starts serving HTTP in the background.
func (m *Command) Start() error {
	if err := m.setupServer(); err != nil {
		return errors.Wrap(err, "setting up server")
	}
	m.logHostInfo()

	m.serve.Go(m.Handler.Serve)

	scheme := "http"
	if m.tlsConfig != nil {
		scheme = "https"
	}
	m.logger.Printf("qsarview %s listening as %s://%s, data in %q", qsarview.Version, scheme, m.ln.Addr(), m.API.DataDir())
	close(m.Started)
	return nil
}

// Addr returns the address the server listens on, or nil before Start.
func (m *Command) Addr() net.Addr {
	if m.ln == nil {
		return nil
	}
	return m.ln.Addr()
}

// Logger returns the logger set up by Start.
func (m *Command) Logger() logger.Logger {
	if m.logger == nil {
		return m.CmdIO.Logger()
	}
	return m.logger
}

// Wait waits for the server to be closed or interrupted.
func (m *Command) Wait() error {
	// First SIGTERM causes server to shut down gracefully.
	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	select {
	case sig := <-c:
		m.logger.Infof("received signal '%s', gracefully shutting down...", sig.String())

		// Second signal causes a hard shutdown.
		go func() { <-c; os.Exit(1) }()
		return errors.Wrap(m.Close(), "closing command")
	case <-m.done:
		m.logger.Infof("server closed externally")
		return nil
	}
}

// Close shuts down the server.
func (m *Command) Close() error {
	select {
	case <-m.done:
		return nil
	default:
	}

	var err error
	if m.Handler != nil {
		err = m.Handler.Close()
		if serveErr := m.serve.Wait(); err == nil {
			err = serveErr
		}
	} else if m.ln != nil {
		err = m.ln.Close()
	}
	close(m.done)
	monitor.Flush(2 * time.Second)

	if m.logFile != nil {
		if logErr := m.logFile.Close(); logErr != nil && err == nil {
			err = logErr
		}
	}
	return errors.Wrap(err, "closing everything")
}

// setupServer uses the configuration to set up this server.
func (m *Command) setupServer() (err error) {
	if err := m.Config.Validate(); err != nil {
		return errors.Wrap(err, "validating config")
	}

	if err := m.setupLogger(); err != nil {
		return errors.Wrap(err, "setting up logger")
	}
	conf, err := json.MarshalIndent(m.Config, "", "\t")
	if err != nil {
		return errors.Wrap(err, "marshalling config")
	}
	m.logger.Debugf("config: %s", conf)

	if err := monitor.InitErrorMonitor(m.Config.Monitor.DSN, qsarview.Version); err != nil {
		return errors.Wrap(err, "initializing error monitor")
	}

	dataDir, err := ExpandDirName(m.Config.DataDir)
	if err != nil {
		return errors.Wrap(err, "expanding data directory")
	}
	if fi, err := os.Stat(dataDir); err != nil || !fi.IsDir() {
		m.logger.Warnf("data directory %q is not a readable directory, every ligand list will be empty", dataDir)
	}

	var opener qsarview.Opener
	if m.Config.Open.Enabled {
		opener = m.opener
		if opener == nil {
			opener = qsarview.NewSystemOpener()
		}
	}
	m.API, err = qsarview.NewAPI(
		qsarview.OptAPICatalog(qsarview.NewCatalog(dataDir)),
		qsarview.OptAPILogger(m.logger),
		qsarview.OptAPIOpener(opener),
		qsarview.OptAPISystemInfo(m.systemInfo),
	)
	if err != nil {
		return errors.Wrap(err, "new api")
	}

	m.tlsConfig, err = GetTLSConfig(m.Config.TLS, m.logger, m.done)
	if err != nil {
		return errors.Wrap(err, "getting tls config")
	}
	m.ln, err = getListener(m.Config.Bind, m.tlsConfig)
	if err != nil {
		return errors.Wrap(err, "getting listener")
	}
	defer func() {
		if err != nil {
			m.ln.Close()
		}
	}()

	var accessLog io.Writer
	if m.Config.Handler.AccessLog {
		accessLog = m.logOutput
	}
	m.Handler, err = http.NewHandler(
		http.OptHandlerAPI(m.API),
		http.OptHandlerLogger(m.logger),
		http.OptHandlerListener(m.ln),
		http.OptHandlerAllowedOrigins(m.Config.Handler.AllowedOrigins),
		http.OptHandlerAccessLog(accessLog),
		http.OptHandlerProfiling(m.Config.Handler.Profile),
		http.OptHandlerOpenRateLimit(m.Config.Open.RateLimit),
		http.OptHandlerCloseTimeout(m.Config.HTTP.CloseTimeout.Value()),
		http.OptHandlerTimeouts(m.Config.HTTP.ReadTimeout.Value(), m.Config.HTTP.WriteTimeout.Value()),
	)
	if err != nil {
		return errors.Wrap(err, "new handler")
	}
	return nil
}

// logHostInfo logs the host details once at startup. Failures only cost the
// log line.
func (m *Command) logHostInfo() {
	info, err := qsarview.CollectHostInfo(m.systemInfo)
	if err != nil {
		m.logger.Warnf("collecting host info: %v", err)
		return
	}
	m.logger.Infof("host: %s %s %s (kernel %s), %d cpus, %d MB memory, %s",
		info.Platform, info.Family, info.OSVersion, info.KernelVersion,
		info.NumCPU, info.MemTotal/(1<<20), info.GoVersion)
}

// setupLogger sets up the logger based on the configuration.
func (m *Command) setupLogger() error {
	if m.Config.LogPath == "" {
		m.logOutput = m.Stderr
	} else {
		f, err := logger.NewFileWriter(m.Config.LogPath)
		if err != nil {
			return errors.Wrap(err, "opening file")
		}
		m.logFile = f
		m.logOutput = f
	}
	if m.Config.Verbose {
		m.logger = logger.NewVerboseLogger(m.logOutput)
	} else {
		m.logger = logger.NewStandardLogger(m.logOutput)
	}

	if m.logFile != nil {
		sighup := make(chan os.Signal, 1)
		signal.Notify(sighup, syscall.SIGHUP)
		go func() {
			defer signal.Stop(sighup)
			for {
				// reopen log file on SIGHUP
				select {
				case <-sighup:
					if err := m.logFile.Reopen(); err != nil {
						m.logger.Infof("reopen: %s", err.Error())
					}
				case <-m.done:
					return
				}
			}
		}()
	}
	return nil
}

// getListener gets a net.Listener for bind, with TLS when tlsconf is set.
func getListener(bind string, tlsconf *tls.Config) (ln net.Listener, err error) {
	if tlsconf != nil {
		ln, err = tls.Listen("tcp", bind, tlsconf)
		if err != nil {
			return nil, errors.Wrap(err, "tls.Listener")
		}
		return ln, nil
	}
	ln, err = net.Listen("tcp", bind)
	if err != nil {
		return nil, errors.Wrap(err, "net.Listen")
	}
	return ln, nil
}
