package archive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"path"
	"slices"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/puzpuzpuz/xsync/v3"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/slicescan/blobstore"
	"github.com/hupe1980/slicescan/status"
)

const (
	rootPrefix   = "scans"
	aggregateDir = "aggregate"
	extension    = ".status"

	// DefaultConcurrency bounds parallel writes in Flush.
	DefaultConcurrency = 8

	pointerRetries = 3
)

// ErrInvalidID is returned for scan or operator ids that cannot form a blob name.
var ErrInvalidID = errors.New("archive: invalid id")

// Archive stores status snapshots in a blob store.
type Archive struct {
	store       blobstore.Store
	compression Compression
	concurrency int
	logger      *slog.Logger

	seqs *xsync.MapOf[string, *atomic.Uint64]
}

// Option configures an Archive.
type Option func(*Archive)

// WithCompression sets the compression applied to new blobs.
func WithCompression(c Compression) Option {
	return func(a *Archive) { a.compression = c }
}

// WithConcurrency bounds the number of parallel writes in Flush.
func WithConcurrency(n int) Option {
	return func(a *Archive) {
		if n > 0 {
			a.concurrency = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Archive) {
		if l != nil {
			a.logger = l
		}
	}
}

// New creates an Archive backed by store. LZ4 is used unless configured otherwise.
func New(store blobstore.Store, opts ...Option) *Archive {
	a := &Archive{
		store:       store,
		compression: CompressionLZ4,
		concurrency: DefaultConcurrency,
		logger:      slog.New(slog.DiscardHandler),
		seqs:        xsync.NewMapOf[string, *atomic.Uint64](),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Compression returns the compression used for new blobs.
func (a *Archive) Compression() Compression { return a.compression }

// Save writes a single operator snapshot and returns its key.
// The scan pointer is not moved; use Flush for that.
func (a *Archive) Save(ctx context.Context, scanID, operatorID string, s status.Status) (string, error) {
	if err := checkID(scanID); err != nil {
		return "", err
	}
	if err := checkID(operatorID); err != nil {
		return "", err
	}
	seq, err := a.nextSeq(ctx, scanID)
	if err != nil {
		return "", err
	}
	key := snapshotKey(scanID, operatorID, seq)
	if err := a.put(ctx, key, s); err != nil {
		return "", err
	}
	return key, nil
}

// Flush writes the snapshots of all operators of a scan in parallel, then an
// aggregate of them, and finally moves the scan's LATEST pointer to the aggregate.
// It returns the aggregate key.
func (a *Archive) Flush(ctx context.Context, scanID string, snapshots map[string]status.Status) (string, error) {
	if err := checkID(scanID); err != nil {
		return "", err
	}
	ids := slices.Sorted(maps.Keys(snapshots))
	for _, id := range ids {
		if err := checkID(id); err != nil {
			return "", err
		}
	}

	seq, err := a.nextSeq(ctx, scanID)
	if err != nil {
		return "", err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)

	for _, id := range ids {
		s := snapshots[id]
		g.Go(func() error {
			return a.put(gctx, snapshotKey(scanID, id, seq), s)
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	all := make([]status.Status, 0, len(ids))
	for _, id := range ids {
		all = append(all, snapshots[id])
	}
	aggKey := snapshotKey(scanID, aggregateDir, seq)
	if err := a.put(ctx, aggKey, status.Aggregate(all...)); err != nil {
		return "", err
	}

	if err := a.commitPointer(ctx, scanID, aggKey); err != nil {
		return "", err
	}

	a.logger.Debug("archive flushed", "scan", scanID, "operators", len(ids), "key", aggKey)
	return aggKey, nil
}

// Load reads and decodes the snapshot stored under key.
func (a *Archive) Load(ctx context.Context, key string) (status.Status, error) {
	blob, err := a.store.Get(ctx, key)
	if err != nil {
		return status.Status{}, err
	}
	s, err := DecodeBlob(blob)
	if err != nil {
		return status.Status{}, fmt.Errorf("%s: %w", key, err)
	}
	return s, nil
}

// DecodeBlob decodes an archived blob as read from the store.
func DecodeBlob(blob []byte) (status.Status, error) {
	data, _, err := decompress(blob)
	if err != nil {
		return status.Status{}, err
	}
	return status.Decode(data)
}

// Latest returns the aggregate snapshot the scan pointer refers to, along with its key.
func (a *Archive) Latest(ctx context.Context, scanID string) (status.Status, string, error) {
	if err := checkID(scanID); err != nil {
		return status.Status{}, "", err
	}
	target, err := a.store.Get(ctx, pointerKey(scanID))
	if err != nil {
		return status.Status{}, "", err
	}
	key := string(target)
	s, err := a.Load(ctx, key)
	if err != nil {
		return status.Status{}, "", err
	}
	return s, key, nil
}

// List returns the sorted snapshot keys of a scan, excluding the pointer.
func (a *Archive) List(ctx context.Context, scanID string) ([]string, error) {
	if err := checkID(scanID); err != nil {
		return nil, err
	}
	names, err := a.store.List(ctx, scanPrefix(scanID)+"/")
	if err != nil {
		return nil, err
	}
	out := names[:0]
	for _, n := range names {
		if blobstore.IsPointer(n) || !strings.HasSuffix(n, extension) {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (a *Archive) put(ctx context.Context, key string, s status.Status) error {
	data, err := status.Encode(s)
	if err != nil {
		return err
	}
	blob, err := compress(data, a.compression)
	if err != nil {
		return err
	}
	return a.store.Put(ctx, key, blob)
}

// commitPointer moves the scan pointer to target. A lost race is retried
// because a concurrent writer may have committed an older sequence.
func (a *Archive) commitPointer(ctx context.Context, scanID, target string) error {
	var err error
	for attempt := 0; attempt < pointerRetries; attempt++ {
		err = a.store.Put(ctx, pointerKey(scanID), []byte(target))
		if !errors.Is(err, blobstore.ErrConcurrentModification) {
			return err
		}
		a.logger.Warn("pointer commit conflict", "scan", scanID, "attempt", attempt+1)
	}
	return err
}

// nextSeq returns the next sequence number for a scan. The counter is seeded
// from the current pointer so a restarted process does not reuse numbers.
func (a *Archive) nextSeq(ctx context.Context, scanID string) (uint64, error) {
	var seedErr error
	ctr, _ := a.seqs.LoadOrCompute(scanID, func() *atomic.Uint64 {
		c := new(atomic.Uint64)
		target, err := a.store.Get(ctx, pointerKey(scanID))
		switch {
		case err == nil:
			if seq, ok := parseSeq(string(target)); ok {
				c.Store(seq)
			}
		case !errors.Is(err, blobstore.ErrNotFound):
			seedErr = err
		}
		return c
	})
	if seedErr != nil {
		a.seqs.Delete(scanID)
		return 0, seedErr
	}
	return ctr.Add(1), nil
}

func checkID(id string) error {
	if id == "" || id == aggregateDir || id == blobstore.PointerName || strings.ContainsAny(id, "/\\") || id == "." || id == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

func scanPrefix(scanID string) string {
	return path.Join(rootPrefix, scanID)
}

func pointerKey(scanID string) string {
	return path.Join(scanPrefix(scanID), blobstore.PointerName)
}

func snapshotKey(scanID, operatorID string, seq uint64) string {
	return path.Join(scanPrefix(scanID), operatorID, fmt.Sprintf("%020d%s", seq, extension))
}

func parseSeq(key string) (uint64, bool) {
	base := strings.TrimSuffix(path.Base(key), extension)
	seq, err := strconv.ParseUint(base, 10, 64)
	return seq, err == nil
}
