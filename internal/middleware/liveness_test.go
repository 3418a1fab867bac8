package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

type countingPinger struct {
	calls int
	err   error
}

func (p *countingPinger) Ping(context.Context) error {
	p.calls++
	return p.err
}

func TestLivenessPingsOncePerMount(t *testing.T) {
	pinger := &countingPinger{}
	logouts := 0
	l := NewLiveness(pinger, func(context.Context) error { logouts++; return nil })
	h := l.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	for range 3 {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
	}
	assert.Equal(t, 1, pinger.calls)

	// posts never count as a mount
	l.Reset()
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/compose", nil))
	assert.Equal(t, 1, pinger.calls)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, 2, pinger.calls)
	assert.Zero(t, logouts)
}

func TestLivenessFailureLogsOut(t *testing.T) {
	pinger := &countingPinger{err: errors.New("unreachable")}
	logouts := 0
	l := NewLiveness(pinger, func(context.Context) error { logouts++; return nil })
	served := false
	h := l.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { served = true }))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusSeeOther, rr.Code)
	assert.Equal(t, "/login", rr.Header().Get("Location"))
	assert.Equal(t, 1, logouts)
	assert.False(t, served)
}
