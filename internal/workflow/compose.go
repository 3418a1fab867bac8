package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	internal_errors "github.com/ljosc/discuss/internal/errors"
	"github.com/ljosc/discuss/internal/logger"
	"github.com/ljosc/discuss/internal/metrics"
)

// ThreadListReloader reloads the list with its current filter.
type ThreadListReloader interface {
	Reload(ctx context.Context) error
}

// Compose is the new-thread panel of the home view.
type Compose struct {
	remote Remote
	list   ThreadListReloader
	status *Status

	mu    sync.Mutex
	panel panel
}

func NewCompose(remote Remote, list ThreadListReloader, status *Status) *Compose {
	return &Compose{remote: remote, list: list, status: status}
}

func (c *Compose) Open()  { c.SetVisible(true) }
func (c *Compose) Close() { c.SetVisible(false) }

func (c *Compose) Toggle() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.panel.setVisible(!c.panel.visible)
}

func (c *Compose) SetVisible(visible bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.panel.setVisible(visible)
}

// Update replaces the draft while the panel is open.
func (c *Compose) Update(d Draft) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.panel.visible {
		c.panel.draft = d
	}
}

func (c *Compose) State() PanelState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return PanelState{
		Visible:   c.panel.visible,
		Draft:     c.panel.draft,
		InFlight:  c.panel.inFlight,
		CanSubmit: c.canSubmitLocked(),
	}
}

func (c *Compose) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.canSubmitLocked()
}

func (c *Compose) canSubmitLocked() bool {
	d := c.panel.draft
	return c.panel.visible && !blank(d.Title) && !blank(d.Content)
}

// Submit sends the draft. On success the list is reloaded and the panel
// closed; on failure the panel stays open with the draft intact.
func (c *Compose) Submit(ctx context.Context) error {
	c.mu.Lock()
	if !c.canSubmitLocked() {
		c.mu.Unlock()
		return internal_errors.Validation("create thread", "title and content are required")
	}
	draft := c.panel.draft
	c.panel.inFlight = true
	c.mu.Unlock()

	err := c.remote.CreateThread(ctx, draft.Title, draft.Content)
	metrics.WorkflowResult("create_thread", err)

	c.mu.Lock()
	c.panel.inFlight = false
	c.mu.Unlock()

	if err != nil {
		logger.Log.Error("create thread failed", "component", "workflow", "error", err)
		c.status.Show(Failure, failureText("Thread creation failed", err))
		return fmt.Errorf("create thread: %w", err)
	}

	metrics.Reconciliation("create_thread")
	_ = c.list.Reload(ctx)
	c.Close()
	c.status.Show(Success, "Thread created")
	return nil
}

// failureText names the reason a mutation failed for the user.
func failureText(prefix string, err error) string {
	switch internal_errors.KindOf(err) {
	case internal_errors.NetworkFailure:
		return prefix + ": service unavailable"
	case internal_errors.AuthFailure:
		return prefix + ": please log in again"
	default:
		var e *internal_errors.Error
		if errors.As(err, &e) && e.Message != "" {
			return prefix + ": " + e.Message
		}
		return prefix
	}
}
