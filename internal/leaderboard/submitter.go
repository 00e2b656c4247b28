package leaderboard

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

const (
	backoffInitial = 1 * time.Second
	backoffCap     = 30 * time.Second
	backoffJitter  = 0.2 // ±20%

	// Scores older than this are dropped instead of retried.
	submissionTTL = 24 * time.Hour
)

// submitJob is one queued score with its retry state.
type submitJob struct {
	score    Score
	enqueued time.Time
	attempts int
}

// Submitter is the fire-and-forget submission queue. Enqueue never blocks
// the game loop; a single worker drains the queue with exponential backoff
// and gives up on scores older than 24 hours.
type Submitter struct {
	client *Client
	log    zerolog.Logger
	rng    *rand.Rand

	mu    sync.Mutex
	queue []submitJob
	wake  chan struct{}
	done  chan struct{}
	once  sync.Once

	now   func() time.Time
	sleep func(context.Context, time.Duration) bool
}

// NewSubmitter creates a submitter around a client. Call Start to launch
// the worker and Stop on shutdown.
func NewSubmitter(client *Client, log zerolog.Logger, seed int64) *Submitter {
	return &Submitter{
		client: client,
		log:    log,
		rng:    rand.New(rand.NewSource(seed)), // #nosec G404 -- backoff jitter
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		now:    time.Now,
		sleep:  sleepCtx,
	}
}

// Enqueue queues a score for submission and returns immediately. Scores
// that fail local validation are dropped with a warning.
func (s *Submitter) Enqueue(score Score) {
	if err := ValidateScore(score); err != nil {
		s.log.Warn().Err(err).Msg("score dropped before queueing")
		return
	}
	s.mu.Lock()
	s.queue = append(s.queue, submitJob{score: score, enqueued: s.now()})
	s.mu.Unlock()
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// Pending returns the number of queued scores.
func (s *Submitter) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Start launches the worker goroutine. ctx cancellation stops it.
func (s *Submitter) Start(ctx context.Context) {
	go s.run(ctx)
}

// Stop blocks until the worker has exited after its context is cancelled.
func (s *Submitter) Stop() {
	<-s.done
}

func (s *Submitter) run(ctx context.Context) {
	defer s.once.Do(func() { close(s.done) })
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.wake:
		}
		s.drain(ctx)
	}
}

// drain works the queue front to back until it is empty or the context
// ends. Each failure re-queues the job and backs off.
func (s *Submitter) drain(ctx context.Context) {
	for {
		s.mu.Lock()
		if len(s.queue) == 0 {
			s.mu.Unlock()
			return
		}
		job := s.queue[0]
		s.queue = s.queue[1:]
		s.mu.Unlock()

		if s.now().Sub(job.enqueued) > submissionTTL {
			s.log.Warn().
				Int("attempts", job.attempts).
				Msg("score discarded: older than submission TTL")
			continue
		}

		_, err := s.client.SubmitScore(ctx, job.score)
		if err == nil {
			s.log.Info().
				Int("rounds", job.score.RoundsSurvived).
				Msg("score submitted")
			continue
		}

		job.attempts++
		s.log.Warn().Err(err).
			Int("attempt", job.attempts).
			Msg("score submission failed, will retry")

		s.mu.Lock()
		s.queue = append([]submitJob{job}, s.queue...)
		s.mu.Unlock()

		if !s.sleep(ctx, s.backoff(job.attempts)) {
			return
		}
	}
}

// backoff returns the delay before attempt n (1-based): 1s doubling to a
// 30s cap, with ±20% jitter.
func (s *Submitter) backoff(attempts int) time.Duration {
	d := backoffInitial
	for i := 1; i < attempts && d < backoffCap; i++ {
		d *= 2
	}
	if d > backoffCap {
		d = backoffCap
	}
	jitter := 1 + (s.rng.Float64()*2-1)*backoffJitter
	return time.Duration(float64(d) * jitter)
}

// sleepCtx waits for d or context cancellation; false means cancelled.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
