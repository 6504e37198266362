package main

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/MABAIStrategies/kimi-automation-v1/journey/catalog"
	"github.com/MABAIStrategies/kimi-automation-v1/journey/logging"
	"github.com/MABAIStrategies/kimi-automation-v1/journey/metrics"
	"github.com/MABAIStrategies/kimi-automation-v1/journey/navigation"
	"github.com/MABAIStrategies/kimi-automation-v1/journey/storage/sqlite"
	"github.com/MABAIStrategies/kimi-automation-v1/journey/store"
	"github.com/MABAIStrategies/kimi-automation-v1/journey/types"
)

const pollInterval = 10 * time.Millisecond

type options struct {
	db          string
	profile     string
	catalogPath string
	metricsFile string
	strict      bool
	json        bool
	verbose     bool
	timings     types.Timings
}

// session is one command's view of the persisted journey.
type session struct {
	opts     *options
	logger   *zap.Logger
	catalog  types.Catalog
	db       *sqlite.Store
	registry *prometheus.Registry
	store    *store.Store
	nav      *store.Navigator
}

func openSession(ctx context.Context, opts *options) (*session, error) {
	level := "warn"
	if opts.verbose {
		level = "debug"
	}
	logger, err := logging.New(level)
	if err != nil {
		return nil, err
	}

	cat, err := catalog.Load(opts.catalogPath)
	if err != nil {
		return nil, err
	}

	db, err := sqlite.Open(opts.db)
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	m, err := metrics.New(registry)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	logger = logger.With(zap.String("profile", opts.profile))
	st := store.New(ctx, cat, db.Bucket(opts.profile),
		store.WithLogger(logger),
		store.WithRecorder(m),
		store.WithPolicy(navigation.PolicyFor(opts.strict)),
	)
	sched := navigation.NewScheduler(navigation.WithObserver(m))
	nav := store.NewNavigator(st, sched, opts.timings,
		store.WithCues(cueLogger{logger: logger}),
		store.WithPayments(m),
		store.WithNavigatorLogger(logger),
	)

	return &session{
		opts:     opts,
		logger:   logger,
		catalog:  cat,
		db:       db,
		registry: registry,
		store:    st,
		nav:      nav,
	}, nil
}

// wait blocks until no delayed transition is pending.
func (s *session) wait(ctx context.Context) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for s.nav.Pending() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

func (s *session) Close() error {
	s.nav.Close()
	defer func() { _ = s.logger.Sync() }()

	var metricsErr error
	if s.opts.metricsFile != "" {
		if err := prometheus.WriteToTextfile(s.opts.metricsFile, s.registry); err != nil {
			metricsErr = fmt.Errorf("write metrics: %w", err)
		}
	}
	if err := s.db.Close(); err != nil {
		return err
	}
	return metricsErr
}

// cueLogger stands in for a speaker.
type cueLogger struct {
	logger *zap.Logger
}

func (c cueLogger) PlayCue(_ context.Context, cue string) error {
	c.logger.Debug("cue", zap.String("cue", cue))
	return nil
}
