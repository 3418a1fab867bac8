package workflow

import (
	"context"
	"fmt"

	"github.com/ljosc/discuss/internal/discussion"
	internal_errors "github.com/ljosc/discuss/internal/errors"
	"github.com/ljosc/discuss/internal/logger"
	"github.com/ljosc/discuss/internal/metrics"
)

// LikeToggle flips the viewer's like on the thread of one view.
type LikeToggle struct {
	remote Remote
	view   *discussion.ThreadView
	status *Status
}

func NewLikeToggle(remote Remote, view *discussion.ThreadView, status *Status) *LikeToggle {
	return &LikeToggle{remote: remote, view: view, status: status}
}

// Toggle sends the inverse of the current liked flag, then reloads the
// thread for the authoritative count. Nothing changes locally on failure.
func (l *LikeToggle) Toggle(ctx context.Context) error {
	thread, ok := l.view.Thread()
	if !ok {
		return internal_errors.Validation("like thread", "thread not loaded")
	}

	err := l.remote.Like(ctx, thread.Id, !thread.Liked)
	metrics.WorkflowResult("like", err)
	if err != nil {
		logger.Log.Error("like-dislike thread failed", "component", "workflow", "thread", thread.Id, "error", err)
		l.status.Show(Failure, failureText("Like failed", err))
		return fmt.Errorf("like thread: %w", err)
	}

	metrics.Reconciliation("like")
	_ = l.view.Load(ctx)
	return nil
}
