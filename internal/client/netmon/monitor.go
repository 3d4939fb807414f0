// Package netmon tracks backend reachability and fires sync triggers
// when the server comes back within reach.
package netmon

import (
	"context"
	"net"
	"net/url"
	"sync"
	"time"

	"rosterkeeper/internal/logging"
)

// Prober checks whether the backend answers its health endpoint.
// The remote client satisfies this with its Ping method.
type Prober interface {
	Ping(ctx context.Context) error
}

// Trigger runs when the server transitions from unreachable to reachable.
type Trigger func(ctx context.Context)

// Monitor combines an externally fed network flag with a periodic server
// probe. The network flag defaults to true so a client without an OS-level
// link signal still probes.
type Monitor struct {
	prober   Prober
	logger   logging.Logger
	interval time.Duration
	loopback bool

	mu            sync.Mutex
	networkOnline bool
	serverOnline  bool
	triggers      []Trigger
}

const probeTimeout = 3 * time.Second

// NewMonitor returns a Monitor probing via prober every interval.
// serverURL is only inspected for a loopback host, which keeps probing
// active even when the network flag reports offline.
func NewMonitor(prober Prober, serverURL string, interval time.Duration, logger logging.Logger) *Monitor {
	return &Monitor{
		prober:        prober,
		logger:        logger,
		interval:      interval,
		loopback:      isLoopbackURL(serverURL),
		networkOnline: true,
	}
}

// OnServerOnline registers a trigger for the unreachable-to-reachable
// transition. Triggers run synchronously on the probing goroutine.
func (m *Monitor) OnServerOnline(t Trigger) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.triggers = append(m.triggers, t)
}

// SetNetworkOnline feeds the OS/link connectivity flag. Going offline
// marks the server unreachable immediately but never cancels work already
// in flight.
func (m *Monitor) SetNetworkOnline(online bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.networkOnline = online
	if !online && !m.loopback {
		m.serverOnline = false
	}
}

// Online reports the current combined view: the server answered the last
// probe and the network flag is up.
func (m *Monitor) Online() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.serverOnline && (m.networkOnline || m.loopback)
}

// Check probes once and updates state, firing triggers on the
// unreachable-to-reachable transition.
func (m *Monitor) Check(ctx context.Context) bool {
	m.mu.Lock()
	skip := !m.networkOnline && !m.loopback
	m.mu.Unlock()
	if skip {
		return false
	}

	probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()
	reachable := m.prober.Ping(probeCtx) == nil

	m.mu.Lock()
	wasOnline := m.serverOnline
	m.serverOnline = reachable
	var fire []Trigger
	if reachable && !wasOnline {
		fire = append(fire, m.triggers...)
	}
	m.mu.Unlock()

	if reachable && !wasOnline {
		m.logger.Info(ctx, "server reachable again, running sync triggers")
	}
	for _, t := range fire {
		t(ctx)
	}
	return reachable
}

// Run probes on a fixed interval until ctx is cancelled. The first probe
// happens immediately so startup does not wait a full interval.
func (m *Monitor) Run(ctx context.Context) {
	m.Check(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}

func isLoopbackURL(serverURL string) bool {
	u, err := url.Parse(serverURL)
	if err != nil {
		return false
	}
	host := u.Hostname()
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
