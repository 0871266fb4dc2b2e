package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/hupe1980/slicescan"
	"github.com/hupe1980/slicescan/internal/archive"
	"github.com/hupe1980/slicescan/internal/config"
	"github.com/hupe1980/slicescan/internal/index"
	"github.com/hupe1980/slicescan/model"
	"github.com/hupe1980/slicescan/settings"
	"github.com/hupe1980/slicescan/status"
)

type scanFlags struct {
	scanID      string
	parallelism int
	pageSize    int
	queries     []string
	backend     string
	showStatus  bool
	watch       time.Duration
}

func newScanCmd() *cobra.Command {
	var f scanFlags

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run a scan over the configured synthetic corpus",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fail(cmd, err)
			}
			f.apply(cmd, cfg)
			if err := cfg.Validate(); err != nil {
				return fail(cmd, err)
			}
			if err := runScan(cmd, cfg, f); err != nil {
				return fail(cmd, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&f.scanID, "scan-id", "", "scan identifier (default random)")
	cmd.Flags().IntVarP(&f.parallelism, "parallelism", "p", 0, "number of slices")
	cmd.Flags().IntVar(&f.pageSize, "page-size", 0, "maximum rows per page")
	cmd.Flags().StringArrayVarP(&f.queries, "query", "q", nil, "filter expression, repeatable")
	cmd.Flags().StringVar(&f.backend, "archive", "", "archive backend (none, memory, local, s3, minio)")
	cmd.Flags().BoolVar(&f.showStatus, "show-status", false, "print the status of every operator")
	cmd.Flags().DurationVar(&f.watch, "watch", 0, "print progress at this interval while scanning")

	return cmd
}

// apply overrides config values with explicitly set flags.
func (f scanFlags) apply(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("parallelism") {
		cfg.Scan.Parallelism = f.parallelism
	}
	if flags.Changed("page-size") {
		cfg.Scan.PageSize = f.pageSize
	}
	if flags.Changed("query") {
		cfg.Scan.Queries = f.queries
	}
	if flags.Changed("archive") {
		cfg.Archive.Backend = f.backend
	}
}

func runScan(cmd *cobra.Command, cfg *config.Config, f scanFlags) error {
	ctx := cmd.Context()
	logger := newLogger(cfg.Logging, cmd.ErrOrStderr())

	gate := settings.NewDynamic(logger.Logger)
	if err := gate.Apply(cfg.Settings); err != nil {
		return err
	}

	shards, idx := buildCorpus(cfg.Corpus)

	opts := []slicescan.Option{
		slicescan.WithLogger(logger),
		slicescan.WithGate(gate),
		slicescan.WithPageSize(cfg.Scan.PageSize),
		slicescan.WithWorkers(cfg.Scan.Workers),
		slicescan.WithResourceConfig(cfg.Resources),
	}

	store, err := openStore(ctx, cfg.Archive)
	if err != nil {
		return err
	}
	if store != nil {
		c, err := archive.ParseCompression(cfg.Archive.Compression)
		if err != nil {
			return err
		}
		opts = append(opts, slicescan.WithArchive(store, c))
	}

	scanner, err := slicescan.New(idx, opts...)
	if err != nil {
		return err
	}
	defer scanner.Close()

	var wg sync.WaitGroup
	watchCtx, stopWatch := context.WithCancel(ctx)
	if f.watch > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = scanner.Watch(watchCtx, f.watch, func(map[string]status.Status) {
				sum := scanner.Summary()
				fmt.Fprintf(cmd.ErrOrStderr(), "progress %5.1f%% pages=%d slices=%d\n",
					sum.Progress()*100, sum.PagesEmitted(), sum.ProcessedSlices())
			})
		}()
	}

	report, scanErr := scanner.Scan(ctx, slicescan.Request{
		ID:          f.scanID,
		Shards:      shards,
		Parallelism: cfg.Scan.Parallelism,
		Queries:     cfg.Scan.Queries,
	}, nil)

	stopWatch()
	wg.Wait()

	// Nothing ran when the request itself was rejected.
	if scanErr != nil && report.Operators == nil {
		return scanErr
	}
	if err := printReport(cmd.OutOrStdout(), report, f.showStatus); err != nil {
		return err
	}
	return scanErr
}

// buildCorpus creates the synthetic shards described by cfg.
func buildCorpus(cfg config.CorpusConfig) ([]model.ShardDescriptor, *index.Memory) {
	shards := make([]model.ShardDescriptor, cfg.Shards)
	for i := range shards {
		segs := make([]uint32, cfg.Segments)
		for j := range segs {
			segs[j] = uint32(cfg.DocsPerSegment)
		}
		shards[i] = model.ShardDescriptor{ID: fmt.Sprintf("shard-%03d", i), Segments: segs}
	}
	return shards, index.Synthesize(shards, cfg.Terms, cfg.Seed)
}
