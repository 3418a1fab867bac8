package handler

import (
	"context"
	"html/template"
	"sync"
	"time"

	"github.com/ljosc/discuss/internal/domain"
	"github.com/ljosc/discuss/internal/logger"
	"github.com/ljosc/discuss/internal/markdown"
	"github.com/ljosc/discuss/internal/session"
	"github.com/ljosc/discuss/internal/workflow"
)

type Options struct {
	SecureCookies bool
	MessageTTL    time.Duration
	// Clock drives status message expiry; nil means real time.
	Clock workflow.Clock
}

// Handler serves the pages of one browser profile. At most one view is
// mounted at a time; navigating to another view drops the current one.
type Handler struct {
	Templates     map[string]*template.Template
	TextProcessor *markdown.TextProcessor
	Remote        workflow.Remote
	Auth          *workflow.Auth
	Session       *session.Session
	opts          Options

	mu     sync.Mutex
	home   *workflow.HomeScreen
	thread *workflow.ThreadScreen
}

func New(templates map[string]*template.Template, textProcessor *markdown.TextProcessor, remote workflow.Remote, auth *workflow.Auth, sess *session.Session, opts Options) *Handler {
	return &Handler{
		Templates:     templates,
		TextProcessor: textProcessor,
		Remote:        remote,
		Auth:          auth,
		Session:       sess,
		opts:          opts,
	}
}

// Watch unmounts every view when the session ends, then runs onLoggedOut.
// The subscription is in place when Watch returns and lasts until ctx is done.
func (h *Handler) Watch(ctx context.Context, onLoggedOut ...func()) {
	states, cancel := h.Session.Subscribe()
	go func() {
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case state := <-states:
				if state != session.LoggedOut {
					continue
				}
				logger.Log.Debug("session ended, unmounting views", "component", "handler")
				h.unmount()
				for _, fn := range onLoggedOut {
					fn()
				}
			}
		}
	}()
}

// homeScreen returns the mounted home screen, creating it if another view
// was mounted. fresh is true when the caller must load it.
func (h *Handler) homeScreen() (screen *workflow.HomeScreen, fresh bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.home != nil {
		return h.home, false
	}
	h.unmountLocked()
	h.home = workflow.NewHomeScreen(h.Remote, h.opts.MessageTTL, h.opts.Clock)
	return h.home, true
}

func (h *Handler) threadScreen(id domain.ThreadId) (screen *workflow.ThreadScreen, fresh bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.thread != nil && h.thread.View.Id() == id {
		return h.thread, false
	}
	h.unmountLocked()
	h.thread = workflow.NewThreadScreen(h.Remote, id, h.opts.MessageTTL, h.opts.Clock)
	return h.thread, true
}

func (h *Handler) unmount() {
	h.mu.Lock()
	h.unmountLocked()
	h.mu.Unlock()
}

func (h *Handler) unmountLocked() {
	if h.home != nil {
		h.home.Close()
		h.home = nil
	}
	if h.thread != nil {
		h.thread.Close()
		h.thread = nil
	}
}

func currentStatus(s *workflow.Status) *workflow.Message {
	if m, ok := s.Current(); ok {
		return &m
	}
	return nil
}
