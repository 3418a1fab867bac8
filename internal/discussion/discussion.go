// Package discussion holds the locally rendered forum state of the views
// that are currently mounted. Every load replaces its part of the state
// wholesale; a failed load is logged and leaves the previous state as is.
package discussion

import (
	"context"

	"github.com/ljosc/discuss/internal/domain"
)

// Remote is the read side of the forum service.
type Remote interface {
	ListThreads(ctx context.Context, filter domain.Filter) ([]domain.ThreadSummary, error)
	GetThread(ctx context.Context, id domain.ThreadId) (domain.Thread, error)
	TopContributors(ctx context.Context) ([]domain.Contributor, error)
}

// sequence orders overlapping loads of one kind so that a response
// never overwrites state produced by a later request.
type sequence struct {
	issued  uint64
	applied uint64
}

func (s *sequence) next() uint64 {
	s.issued++
	return s.issued
}

// accept must be called under the owner's lock.
func (s *sequence) accept(n uint64) bool {
	if n < s.applied {
		return false
	}
	s.applied = n
	return true
}
