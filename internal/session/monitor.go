package session

import (
	"context"
	"sync"
	"time"

	"github.com/ljosc/discuss/internal/credstore"
	"github.com/ljosc/discuss/internal/domain"
	"github.com/ljosc/discuss/internal/logger"
	"github.com/ljosc/discuss/internal/metrics"
)

const DefaultPollInterval = 500 * time.Millisecond

type Options struct {
	PollInterval time.Duration
	// AdoptExternalLogin lets the poll move LoggedOut -> LoggedIn when a
	// refresh token appears without going through Login.
	AdoptExternalLogin bool
}

// Monitor polls the credential store and owns the Session it derives.
type Monitor struct {
	store   credstore.Store
	session *Session
	opts    Options

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	// checkMu makes reading the store and transitioning one step, so a
	// tick that saw no token cannot land after a Login that saved one.
	checkMu sync.Mutex
}

func NewMonitor(store credstore.Store, opts Options) *Monitor {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	return &Monitor{
		store:   store,
		session: newSession(),
		opts:    opts,
	}
}

func (m *Monitor) Session() *Session {
	return m.session
}

// Start performs the initial check and begins polling until ctx is done
// or Stop is called. Calling Start on a running monitor is a no-op.
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cancel != nil {
		return
	}

	m.checkMu.Lock()
	if m.present() {
		m.transition(LoggedIn, nil)
	}
	m.checkMu.Unlock()

	ctx, m.cancel = context.WithCancel(ctx)
	m.done = make(chan struct{})
	ticker := time.NewTicker(m.opts.PollInterval)

	logger.Log.Info("started session monitor",
		"component", "session",
		"interval", m.opts.PollInterval,
		"state", m.session.State())

	go func(done chan struct{}) {
		defer close(done)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.Check()
			case <-ctx.Done():
				logger.Log.Info("session monitor stopped", "component", "session")
				return
			}
		}
	}(m.done)
}

// Stop cancels the poll and waits for the goroutine to exit.
func (m *Monitor) Stop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Check runs one poll tick. Besides the ticker, logout calls it directly
// right after clearing storage.
func (m *Monitor) Check() {
	m.checkMu.Lock()
	defer m.checkMu.Unlock()

	present := m.present()
	switch m.session.State() {
	case LoggedIn:
		if !present {
			m.transition(LoggedOut, nil)
		}
	case LoggedOut:
		if present && m.opts.AdoptExternalLogin {
			m.transition(LoggedIn, nil)
		}
	}
}

// Login persists the tokens of a successful login and enters LoggedIn.
// It is the only regular path into LoggedIn.
func (m *Monitor) Login(creds domain.Credentials, profile *domain.Profile) error {
	m.checkMu.Lock()
	defer m.checkMu.Unlock()

	if err := credstore.Save(m.store, creds); err != nil {
		return err
	}
	if !m.present() {
		return nil
	}
	m.transition(LoggedIn, profile)
	return nil
}

func (m *Monitor) present() bool {
	ok, err := credstore.HasRefreshToken(m.store)
	if err != nil {
		// unreadable storage counts as absent
		logger.Log.Error("reading credential store", "component", "session", "error", err)
		return false
	}
	return ok
}

func (m *Monitor) transition(to State, profile *domain.Profile) {
	if m.session.set(to, profile) {
		metrics.SessionTransition(to.String())
		logger.Log.Info("session transition", "component", "session", "to", to.String())
	}
}
