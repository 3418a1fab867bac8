package session

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ljosc/discuss/internal/credstore"
	"github.com/ljosc/discuss/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testInterval = 5 * time.Millisecond

func startMonitor(t *testing.T, store credstore.Store, opts Options) *Monitor {
	t.Helper()
	if opts.PollInterval == 0 {
		opts.PollInterval = testInterval
	}
	m := NewMonitor(store, opts)
	m.Start(context.Background())
	t.Cleanup(m.Stop)
	return m
}

func TestInitialState(t *testing.T) {
	t.Run("no refresh token", func(t *testing.T) {
		m := startMonitor(t, credstore.NewMemory(), Options{})
		assert.False(t, m.Session().IsLoggedIn())
	})

	t.Run("refresh token present", func(t *testing.T) {
		store := credstore.NewMemory()
		require.NoError(t, store.Set(domain.RefreshToken, "r"))
		m := startMonitor(t, store, Options{})
		assert.True(t, m.Session().IsLoggedIn())
	})

	t.Run("access token alone is not a session", func(t *testing.T) {
		store := credstore.NewMemory()
		require.NoError(t, store.Set(domain.AccessToken, "a"))
		m := startMonitor(t, store, Options{})
		assert.False(t, m.Session().IsLoggedIn())
	})
}

func TestLoginThenPollKeepsLoggedIn(t *testing.T) {
	store := credstore.NewMemory()
	m := startMonitor(t, store, Options{})

	profile := &domain.Profile{Id: "u1", Username: "ann"}
	require.NoError(t, m.Login(domain.Credentials{AccessToken: "a", RefreshToken: "r"}, profile))

	v, ok, _ := store.Get(domain.AccessToken)
	assert.True(t, ok)
	assert.Equal(t, "a", v)

	time.Sleep(4 * testInterval)
	assert.True(t, m.Session().IsLoggedIn())
	assert.Equal(t, "ann", m.Session().Profile().Username)
}

func TestPollDetectsClearedStorage(t *testing.T) {
	store := credstore.NewMemory()
	m := startMonitor(t, store, Options{})
	require.NoError(t, m.Login(domain.Credentials{AccessToken: "a", RefreshToken: "r"}, &domain.Profile{Username: "ann"}))

	require.NoError(t, store.ClearAll())

	require.Eventually(t, func() bool { return !m.Session().IsLoggedIn() }, time.Second, testInterval)
	assert.Nil(t, m.Session().Profile(), "profile is dropped with the session")
}

func TestPollDoesNotAdoptExternalToken(t *testing.T) {
	store := credstore.NewMemory()
	m := startMonitor(t, store, Options{})

	require.NoError(t, store.Set(domain.RefreshToken, "r"))
	time.Sleep(5 * testInterval)

	assert.False(t, m.Session().IsLoggedIn())
}

func TestPollAdoptsExternalTokenWhenEnabled(t *testing.T) {
	store := credstore.NewMemory()
	m := startMonitor(t, store, Options{AdoptExternalLogin: true})

	require.NoError(t, store.Set(domain.RefreshToken, "r"))

	require.Eventually(t, m.Session().IsLoggedIn, time.Second, testInterval)
}

func TestCheckIsSynchronous(t *testing.T) {
	store := credstore.NewMemory()
	// long interval so only the explicit Check can observe the change
	m := startMonitor(t, store, Options{PollInterval: time.Hour})
	require.NoError(t, m.Login(domain.Credentials{AccessToken: "a", RefreshToken: "r"}, nil))

	require.NoError(t, store.ClearAll())
	m.Check()

	assert.False(t, m.Session().IsLoggedIn())
}

func TestSessionDerivation(t *testing.T) {
	// isLoggedIn tracks the refresh token at the most recent check, for
	// every sequence of storage states reachable through login and clear.
	store := credstore.NewMemory()
	m := NewMonitor(store, Options{PollInterval: time.Hour})
	m.Start(context.Background())
	defer m.Stop()

	steps := []struct {
		login bool
		clear bool
	}{
		{login: true}, {}, {clear: true}, {}, {login: true}, {clear: true}, {login: true}, {login: true},
	}
	for i, step := range steps {
		if step.login {
			require.NoError(t, m.Login(domain.Credentials{AccessToken: "a", RefreshToken: "r"}, nil))
		}
		if step.clear {
			require.NoError(t, store.ClearAll())
		}
		m.Check()
		present, err := credstore.HasRefreshToken(store)
		require.NoError(t, err)
		assert.Equal(t, present, m.Session().IsLoggedIn(), "step %d", i)
	}
}

func TestSubscribeReceivesTransitions(t *testing.T) {
	store := credstore.NewMemory()
	m := NewMonitor(store, Options{PollInterval: time.Hour})
	ch, unsubscribe := m.Session().Subscribe()
	defer unsubscribe()

	require.NoError(t, m.Login(domain.Credentials{AccessToken: "a", RefreshToken: "r"}, nil))
	assert.Equal(t, LoggedIn, <-ch)

	require.NoError(t, store.ClearAll())
	m.Check()
	assert.Equal(t, LoggedOut, <-ch)

	m.Check()
	select {
	case s := <-ch:
		t.Fatalf("unexpected notification %v without a transition", s)
	default:
	}
}

func TestStopEndsPolling(t *testing.T) {
	store := credstore.NewMemory()
	m := NewMonitor(store, Options{PollInterval: testInterval})
	m.Start(context.Background())
	require.NoError(t, m.Login(domain.Credentials{AccessToken: "a", RefreshToken: "r"}, nil))

	m.Stop()
	m.Stop() // idempotent

	require.NoError(t, store.ClearAll())
	time.Sleep(5 * testInterval)
	assert.True(t, m.Session().IsLoggedIn(), "no polling after Stop")
}

// pausingStore holds the next refresh token read after it has been served
// until release is closed.
type pausingStore struct {
	*credstore.Memory
	armed   atomic.Bool
	paused  chan struct{}
	release chan struct{}
}

func (s *pausingStore) Get(kind domain.CredentialKind) (string, bool, error) {
	value, ok, err := s.Memory.Get(kind)
	if kind == domain.RefreshToken && s.armed.CompareAndSwap(true, false) {
		close(s.paused)
		<-s.release
	}
	return value, ok, err
}

func TestLoginWaitsForRunningCheck(t *testing.T) {
	store := &pausingStore{
		Memory:  credstore.NewMemory(),
		paused:  make(chan struct{}),
		release: make(chan struct{}),
	}
	m := NewMonitor(store, Options{PollInterval: time.Hour})
	require.NoError(t, m.Login(domain.Credentials{AccessToken: "a", RefreshToken: "r"}, nil))
	require.NoError(t, store.ClearAll())

	// a tick reads "absent" and stalls before transitioning
	store.armed.Store(true)
	checkDone := make(chan struct{})
	go func() {
		defer close(checkDone)
		m.Check()
	}()
	<-store.paused

	loginDone := make(chan error, 1)
	go func() {
		loginDone <- m.Login(domain.Credentials{AccessToken: "a2", RefreshToken: "r2"}, &domain.Profile{Username: "ann"})
	}()
	select {
	case <-loginDone:
		t.Fatal("login completed while a check was in progress")
	case <-time.After(20 * time.Millisecond):
	}

	close(store.release)
	<-checkDone
	require.NoError(t, <-loginDone)
	m.Check()

	present, err := credstore.HasRefreshToken(store)
	require.NoError(t, err)
	assert.True(t, present)
	assert.True(t, m.Session().IsLoggedIn())
	assert.Equal(t, "ann", m.Session().Profile().Username)
}
