package workflow

import (
	"context"
	"time"

	"github.com/ljosc/discuss/internal/discussion"
	"github.com/ljosc/discuss/internal/domain"
)

// HomeScreen bundles what one mount of the home view owns.
type HomeScreen struct {
	View    *discussion.HomeView
	Compose *Compose
	Status  *Status
}

func NewHomeScreen(remote Remote, ttl time.Duration, clock Clock) *HomeScreen {
	view := discussion.NewHomeView(remote)
	status := NewStatus(ttl, clock)
	return &HomeScreen{
		View:    view,
		Compose: NewCompose(remote, view, status),
		Status:  status,
	}
}

func (s *HomeScreen) Mount(ctx context.Context, filter domain.Filter) {
	s.View.Mount(ctx, filter)
}

// Close cancels the screen's timers.
func (s *HomeScreen) Close() {
	s.Status.Close()
}

// ThreadScreen bundles what one mount of a thread view owns.
type ThreadScreen struct {
	View   *discussion.ThreadView
	Reply  *ReplyBox
	Like   *LikeToggle
	Status *Status
}

func NewThreadScreen(remote Remote, id domain.ThreadId, ttl time.Duration, clock Clock) *ThreadScreen {
	view := discussion.NewThreadView(remote, id)
	status := NewStatus(ttl, clock)
	return &ThreadScreen{
		View:   view,
		Reply:  NewReplyBox(remote, view, status),
		Like:   NewLikeToggle(remote, view, status),
		Status: status,
	}
}

func (s *ThreadScreen) Mount(ctx context.Context) {
	_ = s.View.Load(ctx)
}

func (s *ThreadScreen) Close() {
	s.Status.Close()
}
