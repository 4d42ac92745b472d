// Copyright 2022 Molecula Corp. (DBA FeatureBase).
// SPDX-License-Identifier: Apache-2.0
package monitor

import (
	"sync"
	"testing"
	"time"

	sentry "github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingTransport keeps every event instead of sending it.
type recordingTransport struct {
	mu     sync.Mutex
	events []*sentry.Event
}

func (t *recordingTransport) Configure(sentry.ClientOptions) {}
func (t *recordingTransport) Flush(time.Duration) bool { return true }
func (t *recordingTransport) SendEvent(e *sentry.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.events = append(t.events, e)
}

func (t *recordingTransport) Events() []*sentry.Event {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]*sentry.Event(nil), t.events...)
}

func TestMonitor(t *testing.T) {
	t.Run("Off", func(t *testing.T) {
		require.NoError(t, InitErrorMonitor("", "v0"))
		assert.False(t, IsOn())
		// no client is bound, so these must not panic
		CaptureMessage("ignored")
		CaptureException(LevelPanic, "ignored")
		Flush(time.Millisecond)
	})

	t.Run("On", func(t *testing.T) {
		rec := &recordingTransport{}
		transport = rec
		defer func() { transport = nil }()

		require.NoError(t, InitErrorMonitor("https://public@sentry.example.com/1", "v1.2.3"))
		require.True(t, IsOn())

		CaptureException(LevelError, "opening %s: %s", "a.pdb", "boom")
		CaptureException(LevelInfo, "dropped")
		Flush(time.Second)
		assert.False(t, IsOn())

		events := rec.Events()
		require.Len(t, events, 2)
		assert.Equal(t, "Session:Started", events[0].Message)
		assert.Equal(t, "v1.2.3", events[0].Release)
		require.NotEmpty(t, events[1].Exception)
		assert.Equal(t, "opening a.pdb: boom", events[1].Exception[0].Value)
	})

	t.Run("BadDSN", func(t *testing.T) {
		assert.Error(t, InitErrorMonitor("not a dsn", "v0"))
		assert.False(t, IsOn())
	})
}
