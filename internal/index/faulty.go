package index

import (
	"context"
	"errors"
	"sync"

	"github.com/RoaringBitmap/roaring/v2"
)

// ErrInjected is the default error returned by Faulty.
var ErrInjected = errors.New("injected storage fault")

// Faulty is a Reader wrapper that can inject errors.
type Faulty struct {
	Reader Reader

	mu         sync.Mutex
	failAfter  int // Match calls allowed before failing; -1 disables
	calls      int
	err        error
	failShards map[string]struct{}
}

// NewFaulty wraps r without any fault configured.
func NewFaulty(r Reader) *Faulty {
	return &Faulty{
		Reader:     r,
		failAfter:  -1,
		err:        ErrInjected,
		failShards: make(map[string]struct{}),
	}
}

// FailAfter makes every Match call after the first n fail.
func (f *Faulty) FailAfter(n int) *Faulty {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failAfter = n
	return f
}

// FailShard makes every call touching shard fail.
func (f *Faulty) FailShard(shard string) *Faulty {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failShards[shard] = struct{}{}
	return f
}

// WithError sets the injected error.
func (f *Faulty) WithError(err error) *Faulty {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
	return f
}

// Calls returns the number of Match calls observed.
func (f *Faulty) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// Segments implements Reader.
func (f *Faulty) Segments(ctx context.Context, shard string) ([]SegmentInfo, error) {
	f.mu.Lock()
	_, bad := f.failShards[shard]
	err := f.err
	f.mu.Unlock()
	if bad {
		return nil, err
	}
	return f.Reader.Segments(ctx, shard)
}

// Match implements Reader.
func (f *Faulty) Match(ctx context.Context, shard string, segment uint32, query string) (*roaring.Bitmap, error) {
	f.mu.Lock()
	f.calls++
	_, bad := f.failShards[shard]
	if f.failAfter >= 0 && f.calls > f.failAfter {
		bad = true
	}
	err := f.err
	f.mu.Unlock()

	if bad {
		return nil, err
	}
	return f.Reader.Match(ctx, shard, segment, query)
}
