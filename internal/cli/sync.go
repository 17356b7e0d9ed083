package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"social-insights-service/internal/app/service"
	"social-insights-service/internal/infra/postgres"
	"social-insights-service/internal/infra/provider/registry"
	"social-insights-service/internal/job"
	"social-insights-service/pkg/locker"
)

var errSyncSkipped = errors.New("sync skipped: another run holds the lock")

// recordingSyncer keeps the results of the last round for printing.
type recordingSyncer struct {
	*service.SyncService
	results []service.SyncResult
}

func (r *recordingSyncer) SyncAll(ctx context.Context) []service.SyncResult {
	r.results = r.SyncService.SyncAll(ctx)
	return r.results
}

func newSyncCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Import posts from every configured video source once",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := load()
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}

			db, err := postgres.NewConnection(cfg.Database, false, log)
			if err != nil {
				return err
			}
			defer func() { _ = postgres.Close(db) }()

			sources, err := registry.NewSources(ctx, cfg.YouTube, log)
			if err != nil {
				return err
			}
			if len(sources) == 0 {
				return errors.New("no video sources enabled")
			}

			syncer := &recordingSyncer{
				SyncService: service.NewSyncService(postgres.NewPostRepository(db), sources, nil, nil, log),
			}
			scheduler := job.NewSyncScheduler(syncer, job.SyncConfig{Timeout: cfg.Sync.Timeout}, locker.NewLocalLocker(), log)

			if !scheduler.RunOnce(ctx) {
				return errSyncSkipped
			}

			return printSyncResults(cmd.OutOrStdout(), syncer.results)
		},
	}
}

func printSyncResults(w io.Writer, results []service.SyncResult) error {
	failed := 0
	for _, r := range results {
		if r.Error != nil {
			failed++
			fmt.Fprintf(w, "%-10s failed: %v\n", r.Source, r.Error)
			continue
		}
		fmt.Fprintf(w, "%-10s %d posts in %s\n", r.Source, r.Count, r.Duration.Round(time.Millisecond))
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d sources failed", failed, len(results))
	}

	return nil
}
