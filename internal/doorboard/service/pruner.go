package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/kwhalen/doorboard/internal/doorboard/store"
)

// PresencePruner periodically deletes presence rows for users not seen
// within the retention period. The core itself never deletes records, so
// retention defaults to 0 (keep forever) and the pruner only runs when an
// operator opts in.
type PresencePruner struct {
	store     store.PresenceStore
	retention time.Duration
	interval  time.Duration
	logger    zerolog.Logger
	cancel    context.CancelFunc
	done      chan struct{}
}

type PrunerConfig struct {
	// RetentionDays is how long an idle row survives. 0 disables pruning.
	RetentionDays int

	// IntervalHours is how often the pruner runs. Defaults to 6.
	IntervalHours int
}

// NewPresencePruner creates a pruner but does not start it.
func NewPresencePruner(s store.PresenceStore, cfg PrunerConfig, logger zerolog.Logger) *PresencePruner {
	interval := time.Duration(cfg.IntervalHours) * time.Hour
	if interval <= 0 {
		interval = 6 * time.Hour
	}

	return &PresencePruner{
		store:     s,
		retention: time.Duration(cfg.RetentionDays) * 24 * time.Hour,
		interval:  interval,
		logger:    logger,
		done:      make(chan struct{}),
	}
}

// Start begins the background loop: one immediate prune, then one per
// interval, until ctx is cancelled or Stop is called.
func (p *PresencePruner) Start(ctx context.Context) {
	if p.retention <= 0 {
		p.logger.Info().Msg("presence pruner disabled (retention=0)")
		close(p.done)
		return
	}

	ctx, p.cancel = context.WithCancel(ctx)

	go p.loop(ctx)

	p.logger.Info().
		Int("retention_days", int(p.retention.Hours()/24)).
		Int("interval_hours", int(p.interval.Hours())).
		Msg("presence pruner started")
}

// Stop signals the pruner to exit and waits for it to finish.
func (p *PresencePruner) Stop() {
	if p.cancel != nil {
		p.cancel()
	}
	<-p.done
}

func (p *PresencePruner) loop(ctx context.Context) {
	defer close(p.done)

	p.prune(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.prune(ctx)
		}
	}
}

func (p *PresencePruner) prune(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-p.retention).Unix()
	deleted, err := p.store.PruneIdleBefore(ctx, cutoff)
	if err != nil {
		p.logger.Warn().Err(err).Msg("presence prune failed")
		return
	}
	if deleted > 0 {
		p.logger.Info().Int64("deleted", deleted).Int64("cutoff", cutoff).Msg("presence prune")
	}
}
