package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/B1acB1rd/SolSwap/internal/repository"
	"github.com/B1acB1rd/SolSwap/internal/service"
)

// CleanupJob periodically reaps idle sessions past the retention window and
// sweeps expired idempotency entries.
type CleanupJob struct {
	sessionRepo   repository.SessionRepository
	conversations *service.ConversationService
	retention     time.Duration
	interval      time.Duration
	done          chan struct{}
}

func NewCleanupJob(
	sessionRepo repository.SessionRepository,
	conversations *service.ConversationService,
	retention time.Duration,
	interval time.Duration,
) *CleanupJob {
	return &CleanupJob{
		sessionRepo:   sessionRepo,
		conversations: conversations,
		retention:     retention,
		interval:      interval,
		done:          make(chan struct{}),
	}
}

func (j *CleanupJob) Start() {
	go j.run()
	log.Info().Dur("interval", j.interval).Dur("retention", j.retention).Msg("cleanup job started")
}

func (j *CleanupJob) Stop() {
	close(j.done)
	log.Info().Msg("cleanup job stopped")
}

func (j *CleanupJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.cleanup()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.cleanup()
		}
	}
}

func (j *CleanupJob) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().Add(-j.retention)
	count, err := j.sessionRepo.DeleteIdleBefore(ctx, cutoff)
	if err != nil {
		log.Error().Err(err).Msg("failed to cleanup idle sessions")
	} else if count > 0 {
		log.Info().Int64("count", count).Msg("cleaned up idle sessions")
	}

	if swept := j.conversations.SweepIdempotency(); swept > 0 {
		log.Info().Int("count", swept).Msg("swept expired idempotency entries")
	}
}
