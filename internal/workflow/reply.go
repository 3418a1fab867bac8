package workflow

import (
	"context"
	"fmt"
	"sync"

	"github.com/ljosc/discuss/internal/domain"
	internal_errors "github.com/ljosc/discuss/internal/errors"
	"github.com/ljosc/discuss/internal/logger"
	"github.com/ljosc/discuss/internal/metrics"
)

// ThreadLoader reloads the thread detail from the service.
type ThreadLoader interface {
	Id() domain.ThreadId
	Load(ctx context.Context) error
}

// ReplyBox is the reply panel of a thread view.
type ReplyBox struct {
	remote Remote
	thread ThreadLoader
	status *Status

	mu    sync.Mutex
	panel panel
}

func NewReplyBox(remote Remote, thread ThreadLoader, status *Status) *ReplyBox {
	return &ReplyBox{remote: remote, thread: thread, status: status}
}

func (b *ReplyBox) Toggle() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.panel.setVisible(!b.panel.visible)
}

func (b *ReplyBox) SetVisible(visible bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.panel.setVisible(visible)
}

func (b *ReplyBox) Update(content string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.panel.visible {
		b.panel.draft = Draft{Content: content}
	}
}

func (b *ReplyBox) State() PanelState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return PanelState{
		Visible:   b.panel.visible,
		Draft:     b.panel.draft,
		InFlight:  b.panel.inFlight,
		CanSubmit: b.canSubmitLocked(),
	}
}

func (b *ReplyBox) CanSubmit() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.canSubmitLocked()
}

func (b *ReplyBox) canSubmitLocked() bool {
	return b.panel.visible && !blank(b.panel.draft.Content)
}

// Submit posts the reply, then reloads the whole thread. The server
// decides ordering and attribution; nothing is appended locally.
func (b *ReplyBox) Submit(ctx context.Context) error {
	b.mu.Lock()
	if !b.canSubmitLocked() {
		b.mu.Unlock()
		return internal_errors.Validation("reply", "content is required")
	}
	content := b.panel.draft.Content
	b.panel.inFlight = true
	b.mu.Unlock()

	err := b.remote.Reply(ctx, b.thread.Id(), content)
	metrics.WorkflowResult("reply", err)

	b.mu.Lock()
	b.panel.inFlight = false
	b.mu.Unlock()

	if err != nil {
		logger.Log.Error("reply failed", "component", "workflow", "thread", b.thread.Id(), "error", err)
		b.status.Show(Failure, failureText("Reply failed", err))
		return fmt.Errorf("reply: %w", err)
	}

	b.status.Show(Success, "success")
	metrics.Reconciliation("reply")
	_ = b.thread.Load(ctx)

	b.mu.Lock()
	b.panel.draft = Draft{}
	b.mu.Unlock()
	return nil
}
