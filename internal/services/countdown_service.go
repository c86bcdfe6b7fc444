package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"mazadly/internal/models"
	"mazadly/internal/repositories"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
)

const (
	millisPerDay    = 86400000
	millisPerHour   = 3600000
	millisPerMinute = 60000
	millisPerSecond = 1000
)

// ComputeCountdown decomposes the remaining time into zero-padded day/hour/
// minute/second strings. Pure integer division on the millisecond delta, no
// calendar-aware rounding. A deadline at or before now yields all zeros with
// HasEnded set.
func ComputeCountdown(endingAt, now time.Time) models.CountdownState {
	delta := endingAt.Sub(now).Milliseconds()
	if delta <= 0 {
		return models.CountdownState{
			Days: "00", Hours: "00", Minutes: "00", Seconds: "00",
			HasEnded: true,
		}
	}

	return models.CountdownState{
		Days:    fmt.Sprintf("%02d", delta/millisPerDay),
		Hours:   fmt.Sprintf("%02d", delta%millisPerDay/millisPerHour),
		Minutes: fmt.Sprintf("%02d", delta%millisPerHour/millisPerMinute),
		Seconds: fmt.Sprintf("%02d", delta%millisPerMinute/millisPerSecond),
	}
}

// CountdownEngine maintains a per-listing countdown snapshot, recomputed by a
// one-second background job. The snapshot map is replaced wholesale on every
// tick, never mutated in place, so readers only need the lock for the swap.
// Stop must be called when the engine's owner shuts down; the recurring jobs
// are torn down with it.
type CountdownEngine struct {
	listingRepo repositories.ListingRepository
	scheduler   gocron.Scheduler
	now         func() time.Time

	mu        sync.RWMutex
	deadlines map[uuid.UUID]time.Time
	snapshot  map[uuid.UUID]models.CountdownState
}

func NewCountdownEngine(listingRepo repositories.ListingRepository) (*CountdownEngine, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &CountdownEngine{
		listingRepo: listingRepo,
		scheduler:   scheduler,
		now:         time.Now,
		deadlines:   make(map[uuid.UUID]time.Time),
		snapshot:    make(map[uuid.UUID]models.CountdownState),
	}, nil
}

// Start registers the tick and refresh jobs and begins ticking. The tracked
// set is loaded once synchronously so the first snapshot is ready immediately.
func (e *CountdownEngine) Start(ctx context.Context) error {
	if err := e.refreshTracked(ctx); err != nil {
		log.Printf("countdown: initial listing load failed: %v", err)
	}
	e.tick()

	_, err := e.scheduler.NewJob(
		gocron.DurationJob(time.Second),
		gocron.NewTask(e.tick),
		gocron.WithName("countdown-tick"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create tick job: %w", err)
	}

	_, err = e.scheduler.NewJob(
		gocron.DurationJob(time.Minute),
		gocron.NewTask(func() {
			if err := e.refreshTracked(context.Background()); err != nil {
				log.Printf("countdown: listing refresh failed: %v", err)
			}
		}),
		gocron.WithName("countdown-refresh"),
	)
	if err != nil {
		return fmt.Errorf("failed to create refresh job: %w", err)
	}

	e.scheduler.Start()
	return nil
}

// Stop shuts the scheduler down and clears the recurring jobs.
func (e *CountdownEngine) Stop() error {
	return e.scheduler.Shutdown()
}

// Track adds or updates one listing's deadline without waiting for the next
// repository refresh.
func (e *CountdownEngine) Track(listingID uuid.UUID, endingAt time.Time) {
	e.mu.Lock()
	e.deadlines[listingID] = endingAt
	e.mu.Unlock()
}

// Untrack drops a listing from the tracked set.
func (e *CountdownEngine) Untrack(listingID uuid.UUID) {
	e.mu.Lock()
	delete(e.deadlines, listingID)
	e.mu.Unlock()
}

// Snapshot returns the current countdown map. The returned map is the
// snapshot itself, which is never mutated after the swap, so callers may read
// it freely.
func (e *CountdownEngine) Snapshot() map[uuid.UUID]models.CountdownState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshot
}

// StateFor returns the countdown for one listing, if tracked.
func (e *CountdownEngine) StateFor(listingID uuid.UUID) (models.CountdownState, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	state, ok := e.snapshot[listingID]
	return state, ok
}

// tick recomputes every tracked countdown against one shared "now" and swaps
// the snapshot in.
func (e *CountdownEngine) tick() {
	now := e.now()

	e.mu.RLock()
	deadlines := make(map[uuid.UUID]time.Time, len(e.deadlines))
	for id, endingAt := range e.deadlines {
		deadlines[id] = endingAt
	}
	e.mu.RUnlock()

	next := make(map[uuid.UUID]models.CountdownState, len(deadlines))
	for id, endingAt := range deadlines {
		next[id] = ComputeCountdown(endingAt, now)
	}

	e.mu.Lock()
	e.snapshot = next
	e.mu.Unlock()
}

func (e *CountdownEngine) refreshTracked(ctx context.Context) error {
	listings, err := e.listingRepo.ListActive(ctx, e.now())
	if err != nil {
		return err
	}

	next := make(map[uuid.UUID]time.Time, len(listings))
	for _, listing := range listings {
		next[listing.ID] = listing.EndingAt
	}

	e.mu.Lock()
	e.deadlines = next
	e.mu.Unlock()
	return nil
}
