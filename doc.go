// Package slicescan runs parallel, slice-based scans over sharded indexes.
//
// A scan splits the document space of its shards into slices, hands each slice
// to its own source operator and pulls all operators to completion on a worker
// pool. Operators emit pages of matching rows and keep progress counters that
// can be observed while the scan is running.
//
// # Quick Start
//
//	idx := slicescan.NewMemoryIndex()
//	idx.AddShard(model.ShardDescriptor{ID: "a", Segments: []uint32{1000, 1000}})
//
//	s := slicescan.New(idx)
//	report, err := s.Scan(ctx, slicescan.Request{
//	    Shards:      idx.Descriptors(),
//	    Parallelism: 4,
//	    Queries:     []string{"title:go"},
//	}, slicescan.SinkFunc(func(ctx context.Context, op string, p *model.Page) error {
//	    fmt.Println(op, p.Positions())
//	    return nil
//	}))
//
// # Observing a Scan
//
// Every operator publishes an immutable status snapshot after each state change
// while the settings gate has recording enabled. Scanner.Statuses and
// Scanner.Summary read those snapshots from any goroutine, and the same data is
// exported as Prometheus metrics when a registry is configured:
//
//	s := slicescan.New(idx, slicescan.WithRegistry(prometheus.DefaultRegisterer))
//
// # Archiving
//
// With WithArchive, the final status of every operator and the aggregate of
// the scan are written to a blob store when the scan ends:
//
//	s := slicescan.New(idx, slicescan.WithArchive(blobstore.NewLocalStore("./scans"), slicescan.CompressionZstd))
//	sum, _ := s.Latest(ctx, report.ScanID)
package slicescan
