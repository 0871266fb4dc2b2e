package operator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/google/uuid"

	"github.com/hupe1980/slicescan/internal/index"
	"github.com/hupe1980/slicescan/internal/resource"
	"github.com/hupe1980/slicescan/model"
	"github.com/hupe1980/slicescan/settings"
	"github.com/hupe1980/slicescan/status"
)

// SourceOperator scans its slices in order and emits pages of matching rows.
type SourceOperator struct {
	id       string
	slices   []model.Slice
	reader   index.Reader
	queries  []string
	pageSize int
	gate     settings.Gate
	logger   *slog.Logger
	rc       *resource.Controller
	metrics  MetricsObserver

	// Owned by the driving goroutine.
	pos       int // index into slices of the active slice
	cursor    int
	pages     int
	processed int
	seenQuery map[string]struct{}
	seenShard map[string]struct{}
	segments  []index.SegmentInfo
	matched   *segmentMatch

	state     atomic.Int32
	cancelled atomic.Bool
	published atomic.Pointer[status.Status]
}

// segmentMatch caches the evaluated filter of the segment under the cursor.
type segmentMatch struct {
	ordinal uint32
	docs    *roaring.Bitmap
}

// New creates an operator over the assigned slices, which are processed in order.
func New(assigned []model.Slice, reader index.Reader, opts ...Option) (*SourceOperator, error) {
	if reader == nil {
		return nil, ErrNilReader
	}

	o := &SourceOperator{
		id:        uuid.NewString(),
		slices:    make([]model.Slice, 0, len(assigned)),
		reader:    reader,
		pageSize:  DefaultPageSize,
		gate:      settings.Default,
		logger:    slog.New(slog.DiscardHandler),
		metrics:   NoopMetricsObserver{},
		seenQuery: make(map[string]struct{}),
		seenShard: make(map[string]struct{}),
	}

	for _, opt := range opts {
		opt(o)
	}

	if o.pageSize <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPageSize, o.pageSize)
	}

	for _, s := range assigned {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		o.slices = append(o.slices, s)
	}

	o.queries = normalizeQueries(o.queries)

	if len(o.slices) > 0 {
		o.cursor = o.slices[0].Min
	}

	o.logger = o.logger.With("operator", o.id)

	return o, nil
}

func normalizeQueries(in []string) []string {
	out := make([]string, 0, len(in))
	for _, q := range in {
		if q = strings.TrimSpace(q); q != "" {
			out = append(out, q)
		}
	}
	slices.Sort(out)
	out = slices.Compact(out)
	if len(out) == 0 {
		out = append(out, index.MatchAll)
	}
	return out
}

// ID returns the operator identifier.
func (o *SourceOperator) ID() string { return o.id }

// Slices returns the slices assigned to the operator.
func (o *SourceOperator) Slices() []model.Slice { return slices.Clone(o.slices) }

// State returns the current lifecycle state. Safe for concurrent use.
func (o *SourceOperator) State() State { return State(o.state.Load()) }

// Cancel requests cancellation. The next pull, or the one in flight, ends
// with ErrCancelled without changing any counter. Safe for concurrent use.
func (o *SourceOperator) Cancel() { o.cancelled.Store(true) }

// Published returns the last status handed over by the owning goroutine, or
// nil if none has been published. Safe for concurrent use.
func (o *SourceOperator) Published() *status.Status { return o.published.Load() }

// Status returns a snapshot of the live counters.
// It must be called from the goroutine driving the operator.
func (o *SourceOperator) Status() status.Status {
	var cur model.Slice
	if n := len(o.slices); n > 0 {
		cur = o.slices[min(o.pos, n-1)]
	}

	return status.New(
		o.processed,
		slices.Collect(maps.Keys(o.seenQuery)),
		slices.Collect(maps.Keys(o.seenShard)),
		cur.Index,
		cur.Total,
		o.pages,
		cur.Min,
		cur.Max,
		min(max(o.cursor, cur.Min), cur.Max),
	)
}

// Pull produces the next page. It returns (nil, nil) once every slice is
// exhausted. After a terminal state it returns ErrFinished.
func (o *SourceOperator) Pull(ctx context.Context) (*model.Page, error) {
	if st := o.State(); st.Terminal() {
		return nil, fmt.Errorf("%w: %s", ErrFinished, st)
	}

	if err := o.checkCancelled(ctx); err != nil {
		return nil, err
	}

	if o.State() == NotStarted {
		o.transition(Running)
		o.publish()
	}

	for {
		if o.pos >= len(o.slices) {
			o.transition(Exhausted)
			o.publish()
			o.logger.Debug("operator exhausted", "processed_slices", o.processed, "pages", o.pages)
			return nil, nil
		}

		sl := o.slices[o.pos]
		if o.cursor >= sl.Max {
			o.completeSlice(sl)
			continue
		}

		page, err := o.pull(ctx, sl)
		if err != nil {
			return nil, err
		}
		if page != nil {
			return page, nil
		}
	}
}

// pull performs one attempt to fill a page from sl. A nil page with a nil
// error means the remainder of the slice had no matches.
func (o *SourceOperator) pull(ctx context.Context, sl model.Slice) (*model.Page, error) {
	reserved := resource.PageBytes(o.pageSize)
	if err := o.rc.WaitMemory(ctx, reserved); err != nil {
		if cerr := o.checkCancelled(ctx); cerr != nil {
			return nil, cerr
		}
		return nil, o.fail(sl, err)
	}
	defer o.rc.ReleaseMemory(reserved)

	start := time.Now()
	fill, err := o.fill(ctx, sl)
	o.metrics.OnPull(time.Since(start), len(fill.rows), err)

	if cerr := o.checkCancelled(ctx); cerr != nil {
		return nil, cerr
	}
	if err != nil {
		return nil, o.fail(sl, err)
	}

	if len(fill.rows) > 0 {
		if err := o.rc.WaitRows(ctx, len(fill.rows)); err != nil {
			if cerr := o.checkCancelled(ctx); cerr != nil {
				return nil, cerr
			}
			return nil, o.fail(sl, err)
		}
	}

	// Commit.
	o.segments = fill.segments
	o.matched = fill.matched
	o.cursor = fill.next
	for _, q := range fill.queries {
		o.seenQuery[q] = struct{}{}
	}
	for _, k := range fill.shards {
		o.seenShard[k] = struct{}{}
	}

	if len(fill.rows) == 0 {
		return nil, nil
	}

	o.pages++
	o.publish()

	page := &model.Page{Slice: sl, Rows: fill.rows}
	if o.gate.TracingEnabled() {
		o.logger.Debug("page emitted",
			"slice", sl.String(),
			"rows", len(fill.rows),
			"cursor", o.cursor,
			"pages", o.pages,
		)
	}
	return page, nil
}

// staged holds the effects of a fill attempt until it is committed.
type staged struct {
	rows     []model.Row
	next     int
	queries  []string
	shards   []string
	segments []index.SegmentInfo
	matched  *segmentMatch
}

func (o *SourceOperator) fill(ctx context.Context, sl model.Slice) (staged, error) {
	st := staged{next: o.cursor, segments: o.segments, matched: o.matched}

	if st.segments == nil {
		segs, err := o.reader.Segments(ctx, sl.ShardID)
		if err != nil {
			return staged{}, err
		}
		st.segments = segs
	}

	for _, seg := range st.segments {
		if seg.End() <= st.next {
			continue
		}
		if seg.Base >= sl.Max {
			break
		}

		lo := max(st.next, seg.Base) - seg.Base
		hi := min(sl.Max, seg.End()) - seg.Base

		if st.matched == nil || st.matched.ordinal != seg.Ordinal {
			docs, err := o.match(ctx, sl.ShardID, seg.Ordinal)
			if err != nil {
				return staged{}, err
			}
			st.matched = &segmentMatch{ordinal: seg.Ordinal, docs: docs}
		}
		st.queries = o.queries
		st.shards = append(st.shards, model.SegmentKey(sl.ShardID, seg.Ordinal))

		it := st.matched.docs.Iterator()
		it.AdvanceIfNeeded(uint32(lo))
		for it.HasNext() {
			local := int(it.Next())
			if local >= hi {
				break
			}
			st.rows = append(st.rows, model.Row{Shard: sl.ShardID, Segment: seg.Ordinal, Doc: seg.Base + local})
			if len(st.rows) == o.pageSize {
				st.next = seg.Base + local + 1
				return st, nil
			}
		}
		st.next = seg.Base + hi
	}

	// Positions past the last segment hold no documents.
	st.next = sl.Max
	return st, nil
}

// match evaluates the conjunction of all queries on one segment.
func (o *SourceOperator) match(ctx context.Context, shard string, segment uint32) (*roaring.Bitmap, error) {
	var acc *roaring.Bitmap
	for _, q := range o.queries {
		bm, err := o.reader.Match(ctx, shard, segment, q)
		if err != nil {
			return nil, err
		}
		if acc == nil {
			acc = bm
		} else {
			acc.And(bm)
		}
		if acc.IsEmpty() {
			break
		}
	}
	return acc, nil
}

func (o *SourceOperator) completeSlice(sl model.Slice) {
	o.processed++
	o.metrics.OnSliceCompleted(sl.Index)
	o.logger.Debug("slice completed", "slice", sl.String(), "processed_slices", o.processed)

	o.segments = nil
	o.matched = nil
	if o.pos+1 < len(o.slices) {
		o.pos++
		o.cursor = o.slices[o.pos].Min
		o.publish()
		return
	}
	// Stay on the final slice so Status keeps reporting its range.
	o.pos = len(o.slices)
	o.cursor = sl.Max
}

// checkCancelled moves the operator to Cancelled if cancellation was requested.
func (o *SourceOperator) checkCancelled(ctx context.Context) error {
	if o.cancelled.Load() {
		o.transition(Cancelled)
		return ErrCancelled
	}
	if err := ctx.Err(); err != nil {
		o.cancelled.Store(true)
		o.transition(Cancelled)
		return fmt.Errorf("%w: %w", ErrCancelled, err)
	}
	return nil
}

func (o *SourceOperator) fail(sl model.Slice, err error) error {
	o.transition(Failed)
	o.logger.Warn("scan failed", "slice", sl.String(), "error", err)
	return &ScanError{
		OperatorID: o.id,
		Slice:      sl,
		Status:     o.Status(),
		Err:        err,
	}
}

func (o *SourceOperator) transition(to State) {
	from := State(o.state.Swap(int32(to)))
	if from != to {
		o.metrics.OnStateChange(from, to)
	}
}

// publish hands a snapshot to other goroutines when recording is enabled.
func (o *SourceOperator) publish() {
	if !o.gate.RecordingEnabled() {
		return
	}
	s := o.Status()
	o.published.Store(&s)
}

// IsCancelled reports whether err stems from operator cancellation.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled)
}
