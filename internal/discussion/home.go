package discussion

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/ljosc/discuss/internal/domain"
	"github.com/ljosc/discuss/internal/logger"
)

// HomeView is one mount of the thread list page.
type HomeView struct {
	remote Remote

	mu           sync.RWMutex
	filter       domain.Filter
	threads      []domain.ThreadSummary
	contributors []domain.Contributor
	threadsSeq   sequence
	contribSeq   sequence
}

type HomeSnapshot struct {
	Filter domain.Filter
	// Threads is nil until the first successful load.
	Threads      []domain.ThreadSummary
	Contributors []domain.Contributor
}

func NewHomeView(remote Remote) *HomeView {
	return &HomeView{remote: remote, filter: domain.FilterAll}
}

// Mount loads the list for filter and the top contributors.
func (v *HomeView) Mount(ctx context.Context, filter domain.Filter) {
	_ = v.LoadThreads(ctx, filter)
	_ = v.LoadTopContributors(ctx)
}

// SetFilter selects a new filter and reloads the list. Contributors are
// not reloaded.
func (v *HomeView) SetFilter(ctx context.Context, filter domain.Filter) error {
	return v.LoadThreads(ctx, filter)
}

// Reload fetches the list again with the current filter.
func (v *HomeView) Reload(ctx context.Context) error {
	return v.LoadThreads(ctx, v.Filter())
}

func (v *HomeView) LoadThreads(ctx context.Context, filter domain.Filter) error {
	v.mu.Lock()
	v.filter = filter
	n := v.threadsSeq.next()
	v.mu.Unlock()

	threads, err := v.remote.ListThreads(ctx, filter)
	if err != nil {
		logger.Log.Error("threads fetching failed", "component", "discussion", "filter", filter, "error", err)
		return fmt.Errorf("load threads: %w", err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.threadsSeq.accept(n) {
		logger.Log.Debug("dropping stale thread list", "component", "discussion", "filter", filter)
		return nil
	}
	if threads == nil {
		threads = []domain.ThreadSummary{}
	}
	v.threads = threads
	return nil
}

func (v *HomeView) LoadTopContributors(ctx context.Context) error {
	v.mu.Lock()
	n := v.contribSeq.next()
	v.mu.Unlock()

	contributors, err := v.remote.TopContributors(ctx)
	if err != nil {
		logger.Log.Error("top contributors fetching failed", "component", "discussion", "error", err)
		return fmt.Errorf("load top contributors: %w", err)
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	if v.contribSeq.accept(n) {
		v.contributors = contributors
	}
	return nil
}

func (v *HomeView) Filter() domain.Filter {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.filter
}

func (v *HomeView) Snapshot() HomeSnapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return HomeSnapshot{
		Filter:       v.filter,
		Threads:      slices.Clone(v.threads),
		Contributors: slices.Clone(v.contributors),
	}
}
