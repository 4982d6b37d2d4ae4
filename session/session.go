// Package session owns the exporter's handle to the array's management
// endpoint. The handle is established lazily on the first scrape, probed for
// liveness on reuse, and replaced wholesale after a failure; there is no
// background retry loop, so each scrape gets exactly one attempt.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/storagetools/threepar_exporter/wbem"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	namespace = "hpe"
	subsystem = "session"

	establishmentsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "establishments_total",
		Help:      "The number of times a connection to the array has been established.",
	})
	expiriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "expiries_total",
		Help: "The number of sessions that stopped working and were " +
			"discarded. The next scrape re-establishes.",
	})

	// probeTimeout bounds the liveness probe of an existing session, so a
	// dead array does not consume the whole scrape deadline before we even
	// report the failure.
	probeTimeout = time.Second * 5

	// probeClass is the class enumerated as the auth handshake and liveness
	// probe. The storage system class always has exactly one instance.
	probeClass = "TPD_StorageSystem"
)

// State describes the manager's view of its connection.
type State int

const (
	Disconnected State = iota
	Connected
	Failed
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connected:
		return "connected"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ConnectionError indicates the array's management endpoint could not be
// reached or refused us. It is fatal to the whole scrape: no inventory is
// attempted.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connecting to array: %v", e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// Session is a validated handle to the array. It satisfies the collectors'
// querier contract, and is safe for concurrent use: CIM-XML is stateless
// request/response, so concurrent queries multiplex over the underlying HTTP
// client.
type Session struct {
	client *wbem.Client
}

// EnumerateInstances queries one class on the array.
func (s *Session) EnumerateInstances(ctx context.Context, className string, properties []string) ([]wbem.Instance, error) {
	return s.client.EnumerateInstances(ctx, className, properties)
}

// Manager hands out the current session, creating or replacing it as needed.
// Credentials are immutable after construction and never logged.
type Manager struct {
	config wbem.Config
	logger *slog.Logger

	mu      sync.Mutex
	state   State
	session *Session
}

// NewManager creates a manager for the configured array. No connection is
// attempted until Ensure is called.
func NewManager(config wbem.Config, logger *slog.Logger) *Manager {
	return &Manager{
		config: config,
		logger: logger,
	}
}

// State reports the connection state as of the last Ensure call.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Ensure returns a working session, establishing one if this is the first
// use or the previous one failed. An existing session is probed first; if
// the probe fails the handle is discarded and one reconnection is attempted
// within the same call. Safe to call repeatedly and concurrently.
func (m *Manager) Ensure(ctx context.Context) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session != nil {
		probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
		_, err := m.session.client.EnumerateInstanceNames(probeCtx, probeClass)
		cancel()
		if err == nil {
			return m.session, nil
		}
		expiriesTotal.Inc()
		m.logger.Warn("session stopped working, reconnecting", "err", err)
		m.discard()
	}

	return m.connect(ctx)
}

// Invalidate discards the current session, if any. The next Ensure call
// reconnects. Collectors call this via the orchestrator when a query fails
// in a way that implicates the transport rather than the class.
func (m *Manager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session != nil {
		expiriesTotal.Inc()
		m.discard()
	}
}

// Close releases the current session's resources. Used at shutdown.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.discard()
}

// discard must be called with mu held.
func (m *Manager) discard() {
	if m.session != nil {
		m.session.client.Close()
		m.session = nil
	}
	m.state = Disconnected
}

// connect must be called with mu held.
func (m *Manager) connect(ctx context.Context) (*Session, error) {
	establishmentsTotal.Inc()
	client := wbem.Dial(m.config)
	if _, err := client.EnumerateInstanceNames(ctx, probeClass); err != nil {
		client.Close()
		m.state = Failed
		return nil, &ConnectionError{Err: err}
	}
	m.session = &Session{client: client}
	m.state = Connected
	m.logger.Info("connected to array",
		"host", m.config.Host, "port", m.config.Port)
	return m.session, nil
}
