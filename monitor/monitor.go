// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0

// Package monitor reports errors to Sentry. Nothing is sent unless
// InitErrorMonitor was called with a DSN.
package monitor

import (
	"fmt"
	"sync"
	"time"

	sentry "github.com/getsentry/sentry-go"

	"github.com/molecula/qsarview/errors"
)

const (
	LevelPanic = iota
	LevelError
	LevelWarn
	LevelInfo
	LevelDebug
)

var (
	mu   sync.RWMutex
	isOn bool

	// transport replaces sentry's HTTP transport in tests.
	transport sentry.Transport
)

// InitErrorMonitor initializes Sentry to report to dsn. An empty dsn leaves
// the monitor off.
func InitErrorMonitor(dsn, version string) error {
	if dsn == "" {
		return nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		AttachStacktrace: true,
		Release:          version,
		Transport:        transport,
	})
	if err != nil {
		return errors.Wrap(err, "sentry.Init")
	}
	mu.Lock()
	isOn = true
	mu.Unlock()

	CaptureMessage("Session:Started")
	return nil
}

// CaptureMessage sends a message to Sentry.
func CaptureMessage(message string) {
	if !IsOn() {
		return
	}
	sentry.CaptureMessage(message)
}

// CaptureException sends an error to Sentry. Levels below LevelWarn are
// dropped.
func CaptureException(level int, format string, v ...interface{}) {
	if !IsOn() || level > LevelWarn {
		return
	}
	sentry.CaptureException(fmt.Errorf(format, v...))
}

// Flush waits up to timeout for buffered events to be sent, then turns the
// monitor off.
func Flush(timeout time.Duration) {
	if !IsOn() {
		return
	}
	sentry.Flush(timeout)
	mu.Lock()
	isOn = false
	mu.Unlock()
}

// IsOn returns true if the monitor is enabled.
func IsOn() bool {
	mu.RLock()
	defer mu.RUnlock()
	return isOn
}
