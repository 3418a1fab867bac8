package discussion

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/ljosc/discuss/internal/domain"
	"github.com/ljosc/discuss/internal/logger"
)

// ThreadView is one mount of a thread detail page. It owns its own copy
// of the thread, independent of any list entry.
type ThreadView struct {
	remote Remote
	id     domain.ThreadId

	mu     sync.RWMutex
	thread *domain.Thread
	seq    sequence
}

func NewThreadView(remote Remote, id domain.ThreadId) *ThreadView {
	return &ThreadView{remote: remote, id: id}
}

func (v *ThreadView) Id() domain.ThreadId { return v.id }

// Load replaces the local thread with the server's copy.
func (v *ThreadView) Load(ctx context.Context) error {
	v.mu.Lock()
	n := v.seq.next()
	v.mu.Unlock()

	thread, err := v.remote.GetThread(ctx, v.id)
	if err != nil {
		logger.Log.Error("GET thread failed", "component", "discussion", "thread", v.id, "error", err)
		return fmt.Errorf("load thread %s: %w", v.id, err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.seq.accept(n) {
		v.thread = &thread
	}
	return nil
}

// Thread returns a copy of the loaded thread; ok is false before the
// first successful load.
func (v *ThreadView) Thread() (domain.Thread, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.thread == nil {
		return domain.Thread{}, false
	}
	t := *v.thread
	t.Replies = slices.Clone(v.thread.Replies)
	return t, true
}
