package ingest

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"txdash/pkg/contracts/domain"
)

// Result is the pure outcome of one load cycle: the records that parsed and
// a parallel sequence of per-file failure notices. No side effects, no
// caching across invocations.
type Result struct {
	Records  []domain.TransactionRecord
	Failures []domain.FailureNotice
}

// Ingestor discovers and parses per-client transaction files.
type Ingestor struct {
	discovery   *Discovery
	logger      *slog.Logger
	concurrency int
}

// New creates an Ingestor for files named <prefix><client>.csv. Files are
// parsed with at most concurrency workers; each file stays independent and
// failure-isolated regardless of the worker count.
func New(prefix string, concurrency int, logger *slog.Logger) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	if concurrency <= 0 {
		concurrency = 1
	}
	return &Ingestor{
		discovery:   NewDiscovery(prefix),
		logger:      logger,
		concurrency: concurrency,
	}
}

// Load ingests every matching file under dir. A file that fails to parse
// contributes zero records and one FailureNotice; it never aborts the other
// files. Output order is deterministic: records follow file-name order,
// rows keep their in-file order.
func (in *Ingestor) Load(ctx context.Context, dir string) (Result, error) {
	files, err := in.discovery.FindClientFiles(dir)
	if err != nil {
		return Result{}, err
	}

	in.logger.InfoContext(ctx, "ingesting client files",
		slog.String("dir", dir),
		slog.Int("file_count", len(files)))

	// Per-index slots keep the fold deterministic under concurrency.
	fileRecords := make([][]domain.TransactionRecord, len(files))
	fileFailures := make([]*domain.FailureNotice, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(in.concurrency)

	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			records, err := ParseFile(file.Path, file.Client)
			if err != nil {
				in.logger.WarnContext(ctx, "rejected client file",
					slog.String("file", file.Name),
					slog.String("reason", err.Error()))
				fileFailures[i] = &domain.FailureNotice{File: file.Name, Reason: err.Error()}
				return nil
			}
			fileRecords[i] = records
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	var result Result
	for i := range files {
		if fileFailures[i] != nil {
			result.Failures = append(result.Failures, *fileFailures[i])
			continue
		}
		result.Records = append(result.Records, fileRecords[i]...)
	}

	in.logger.InfoContext(ctx, "ingestion complete",
		slog.Int("record_count", len(result.Records)),
		slog.Int("rejected_files", len(result.Failures)))

	return result, nil
}
