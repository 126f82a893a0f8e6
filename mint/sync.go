package mint

import (
	"context"
	"time"

	"deplebs-mint-tui/errs"

	"github.com/charmbracelet/log"
)

type pollResult struct {
	snap Snapshot
	err  error
}

type refreshRequest struct {
	reply chan pollResult
}

// syncer is the single writer of the snapshot. Timer ticks and refresh
// requests both funnel into one loop, queued requests are coalesced and
// at most one poll is in flight.
type syncer struct {
	poll     func(context.Context) (Snapshot, error)
	apply    func(Snapshot)
	interval time.Duration
	logger   *log.Logger

	requests chan refreshRequest
	cancel   context.CancelFunc
	done     chan struct{}
}

func startSyncer(interval time.Duration, poll func(context.Context) (Snapshot, error), apply func(Snapshot), logger *log.Logger) *syncer {
	ctx, cancel := context.WithCancel(context.Background())
	s := &syncer{
		poll:     poll,
		apply:    apply,
		interval: interval,
		logger:   logger,
		requests: make(chan refreshRequest),
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go s.run(ctx)
	return s
}

func (s *syncer) run(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		var waiters []chan pollResult
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		case req := <-s.requests:
			waiters = append(waiters, req.reply)
		}
		waiters = s.drain(waiters)

		snap, err := s.poll(ctx)
		switch {
		case err == nil:
			s.apply(snap)
		case ctx.Err() != nil:
			// torn down mid-poll
		case len(waiters) == 0:
			s.logger.Warn("periodic sync failed, keeping previous snapshot", "err", err)
		default:
			s.logger.Warn("refresh failed", "err", err)
		}
		for _, w := range waiters {
			w <- pollResult{snap: snap, err: err}
		}
	}
}

func (s *syncer) drain(waiters []chan pollResult) []chan pollResult {
	for {
		select {
		case req := <-s.requests:
			waiters = append(waiters, req.reply)
		default:
			return waiters
		}
	}
}

// refresh asks the loop for a poll and waits for its result.
func (s *syncer) refresh(ctx context.Context) (Snapshot, error) {
	reply := make(chan pollResult, 1)
	select {
	case s.requests <- refreshRequest{reply: reply}:
	case <-s.done:
		return Snapshot{}, errs.ErrNotConnected
	case <-ctx.Done():
		return Snapshot{}, errs.Wrap(errs.ErrRPCFailure, "refresh", ctx.Err())
	}

	select {
	case r := <-reply:
		return r.snap, r.err
	case <-ctx.Done():
		return Snapshot{}, errs.Wrap(errs.ErrRPCFailure, "refresh", ctx.Err())
	}
}

// stop cancels the loop and waits for it to exit.
func (s *syncer) stop() {
	s.cancel()
	<-s.done
}
