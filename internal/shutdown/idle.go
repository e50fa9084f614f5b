// Package shutdown signals graceful exit for scale-to-zero deployments.
package shutdown

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// BusyFunc reports whether background work is still in flight. The server
// uses it to stay up while dispatched executions are awaiting callbacks.
type BusyFunc func() bool

// IdleMonitor closes Done once the server has seen no traffic and no
// background work for the configured timeout. A zero timeout disables it.
type IdleMonitor struct {
	timeout   time.Duration
	skip      []string
	busy      BusyFunc
	logger    *slog.Logger
	inFlight  atomic.Int64
	lastSeen  atomic.Int64 // unix nanos of last activity
	done      chan struct{}
	stop      chan struct{}
	closeOnce sync.Once
}

// NewIdleMonitor creates an idle monitor. Paths in skip (prefix match) do
// not count as activity, so health probes never keep the server alive.
func NewIdleMonitor(timeout time.Duration, skip []string, busy BusyFunc, logger *slog.Logger) *IdleMonitor {
	m := &IdleMonitor{
		timeout: timeout,
		skip:    skip,
		busy:    busy,
		logger:  logger,
		done:    make(chan struct{}),
		stop:    make(chan struct{}),
	}
	m.lastSeen.Store(time.Now().UnixNano())
	return m
}

// Done is closed when the idle timeout elapses.
func (m *IdleMonitor) Done() <-chan struct{} { return m.done }

// Start launches the watch loop. No-op when the timeout is zero.
func (m *IdleMonitor) Start() {
	if m.timeout <= 0 {
		return
	}
	m.logger.Info("idle monitoring started", "timeout", m.timeout)
	go m.watch()
}

// Stop halts the watch loop without signaling shutdown.
func (m *IdleMonitor) Stop() {
	if m.timeout <= 0 {
		return
	}
	m.closeOnce.Do(func() { close(m.stop) })
}

// Middleware counts in-flight requests and stamps activity.
func (m *IdleMonitor) Middleware(next http.Handler) http.Handler {
	if m.timeout <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.skipped(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}
		m.inFlight.Add(1)
		m.lastSeen.Store(time.Now().UnixNano())
		defer func() {
			m.inFlight.Add(-1)
			m.lastSeen.Store(time.Now().UnixNano())
		}()
		next.ServeHTTP(w, r)
	})
}

func (m *IdleMonitor) skipped(path string) bool {
	for _, p := range m.skip {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

func (m *IdleMonitor) watch() {
	interval := m.timeout / 4
	if interval < 5*time.Second {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			if m.inFlight.Load() > 0 || (m.busy != nil && m.busy()) {
				// Busy resets the clock so work gets a full grace period.
				m.lastSeen.Store(time.Now().UnixNano())
				continue
			}
			idle := time.Since(time.Unix(0, m.lastSeen.Load()))
			if idle >= m.timeout {
				m.logger.Info("idle timeout reached, signaling shutdown", "idle", idle)
				close(m.done)
				return
			}
		}
	}
}
