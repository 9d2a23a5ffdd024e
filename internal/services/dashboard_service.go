// Package services holds the stateful layer between transport and the pure
// ingest/aggregate packages. The dashboard service owns the cached dataset
// and is the only place a load cycle is triggered.
package services

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"txdash/internal/aggregate"
	"txdash/internal/ingest"
	"txdash/pkg/contracts/domain"
)

// ErrNoData signals that no usable records are loaded. Callers must treat it
// differently from an empty filter result: it means there is nothing to
// filter at all.
var ErrNoData = errors.New("no transaction data available")

// Loader abstracts the ingestion step for testing.
type Loader interface {
	Load(ctx context.Context, dir string) (ingest.Result, error)
}

// Broadcaster receives a notification after each successful reload.
type Broadcaster interface {
	BroadcastReload(recordCount, clientCount int)
}

// DashboardService caches one aggregated dataset and serves filtered views
// of it. Reload replaces the cache wholesale; reads never see a partially
// built dataset.
type DashboardService struct {
	loader      Loader
	dataDir     string
	logger      *slog.Logger
	metrics     *Metrics
	broadcaster Broadcaster

	mu       sync.RWMutex
	dataset  domain.Dataset
	failures []domain.FailureNotice
	loadedAt time.Time
}

// NewDashboardService creates the service. broadcaster may be nil when no
// push channel is wired.
func NewDashboardService(loader Loader, dataDir string, logger *slog.Logger, broadcaster Broadcaster) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{
		loader:      loader,
		dataDir:     dataDir,
		logger:      logger.With(slog.String("service", "dashboard")),
		metrics:     NewMetrics(),
		broadcaster: broadcaster,
	}
}

// Reload runs one full load cycle: discover and parse the client files,
// derive Total rows, and swap the cache. Rejected files become failure
// notices, not errors; Reload fails only when the directory itself cannot
// be read. A cycle that yields zero records still replaces the cache so
// stale data never outlives its source files.
func (s *DashboardService) Reload(ctx context.Context) error {
	loadID := uuid.New().String()
	start := time.Now()
	s.metrics.ReloadsTotal.Inc()

	s.logger.InfoContext(ctx, "reloading dataset",
		slog.String("load_id", loadID),
		slog.String("data_dir", s.dataDir))

	result, err := s.loader.Load(ctx, s.dataDir)
	if err != nil {
		s.metrics.ReloadErrors.Inc()
		s.logger.ErrorContext(ctx, "reload failed",
			slog.String("load_id", loadID),
			slog.String("error", err.Error()))
		return err
	}

	dataset := aggregate.Build(result.Records)

	s.mu.Lock()
	s.dataset = dataset
	s.failures = result.Failures
	s.loadedAt = time.Now()
	s.mu.Unlock()

	s.metrics.FilesRejected.Add(float64(len(result.Failures)))
	s.metrics.RecordsLoaded.Add(float64(len(result.Records)))
	s.metrics.LastReloadRecords.Set(float64(len(dataset.Records)))
	s.metrics.ReloadDuration.Observe(time.Since(start).Seconds())

	clients := dataset.Clients()
	s.logger.InfoContext(ctx, "dataset reloaded",
		slog.String("load_id", loadID),
		slog.Int("record_count", len(dataset.Records)),
		slog.Int("client_count", len(clients)),
		slog.Int("rejected_files", len(result.Failures)),
		slog.Duration("duration", time.Since(start)))

	if s.broadcaster != nil {
		s.broadcaster.BroadcastReload(len(dataset.Records), len(clients))
	}

	if len(result.Records) == 0 {
		return ErrNoData
	}
	return nil
}

// DashboardView is one filtered slice of the dataset plus its summary and
// the ingestion failures from the load that produced it.
type DashboardView struct {
	Dataset  domain.Dataset
	Summary  domain.Summary
	Failures []domain.FailureNotice
	LoadedAt time.Time
}

// Dashboard returns the records matching the client set and inclusive date
// range, with headline totals computed over the derived Total rows. Returns
// ErrNoData when nothing is loaded; an empty filter result over loaded data
// is not an error.
func (s *DashboardService) Dashboard(ctx context.Context, clients []string, from, to domain.Day) (DashboardView, error) {
	s.metrics.DashboardRequests.Inc()

	s.mu.RLock()
	dataset := s.dataset
	failures := s.failures
	loadedAt := s.loadedAt
	s.mu.RUnlock()

	if len(dataset.Records) == 0 {
		return DashboardView{}, ErrNoData
	}

	filtered := aggregate.Filter(dataset, clients, from, to)
	summary := aggregate.Summarize(filtered)

	s.logger.DebugContext(ctx, "dashboard view built",
		slog.Int("selected_clients", len(clients)),
		slog.Int("matched_records", len(filtered.Records)))

	return DashboardView{
		Dataset:  filtered,
		Summary:  summary,
		Failures: failures,
		LoadedAt: loadedAt,
	}, nil
}

// Clients returns the sorted distinct client names of the loaded dataset
// along with its overall date bounds, for populating filter controls.
func (s *DashboardService) Clients(ctx context.Context) ([]string, domain.Day, domain.Day, error) {
	s.mu.RLock()
	dataset := s.dataset
	s.mu.RUnlock()

	if len(dataset.Records) == 0 {
		return nil, domain.Day{}, domain.Day{}, ErrNoData
	}

	min, max := dataset.DateBounds()
	return dataset.Clients(), min, max, nil
}

// Failures returns the rejection notices from the last load cycle.
func (s *DashboardService) Failures(ctx context.Context) []domain.FailureNotice {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.failures
}
