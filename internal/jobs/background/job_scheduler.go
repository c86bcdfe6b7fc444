package background

import (
	"context"
	"log"
	"sync"
	"time"

	"mazadly/internal/services"
	"mazadly/internal/upstream"

	"github.com/go-co-op/gocron/v2"
)

// JobScheduler manages the recurring maintenance jobs: mirroring the legacy
// API, refreshing the category snapshot, and pruning expired tokens. The
// per-second countdown tick runs on its own engine, not here.
type JobScheduler struct {
	scheduler  gocron.Scheduler
	syncer     *upstream.Syncer
	catalogSvc services.CatalogService
	authSvc    services.AuthService
	jobs       map[string]gocron.Job
	mu         sync.RWMutex
}

func NewJobScheduler(syncer *upstream.Syncer, catalogSvc services.CatalogService, authSvc services.AuthService) (*JobScheduler, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, err
	}

	js := &JobScheduler{
		scheduler:  scheduler,
		syncer:     syncer,
		catalogSvc: catalogSvc,
		authSvc:    authSvc,
		jobs:       make(map[string]gocron.Job),
	}

	js.registerJobs()
	return js, nil
}

// Start starts the job scheduler
func (js *JobScheduler) Start() {
	log.Printf("Starting background job scheduler")
	js.scheduler.Start()
}

// Stop stops the job scheduler
func (js *JobScheduler) Stop() error {
	log.Printf("Stopping background job scheduler")
	return js.scheduler.Shutdown()
}

func (js *JobScheduler) registerJobs() {
	js.mu.Lock()
	defer js.mu.Unlock()

	// Legacy API mirror - every 5 minutes
	if js.syncer != nil {
		syncJob, err := js.scheduler.NewJob(
			gocron.DurationJob(5*time.Minute),
			gocron.NewTask(js.runSync),
			gocron.WithName("upstream-sync"),
			gocron.WithSingletonMode(gocron.LimitModeReschedule),
		)
		if err != nil {
			log.Printf("Failed to create sync job: %v", err)
		} else {
			js.jobs["upstream-sync"] = syncJob
		}
	}

	// Category tree snapshot refresh - every 10 minutes
	treeJob, err := js.scheduler.NewJob(
		gocron.DurationJob(10*time.Minute),
		gocron.NewTask(js.refreshCategoryTree),
		gocron.WithName("category-tree-refresh"),
	)
	if err != nil {
		log.Printf("Failed to create tree refresh job: %v", err)
	} else {
		js.jobs["category-tree-refresh"] = treeJob
	}

	// Expired refresh token cleanup - every hour
	tokenJob, err := js.scheduler.NewJob(
		gocron.DurationJob(1*time.Hour),
		gocron.NewTask(js.cleanupTokens),
		gocron.WithName("token-cleanup"),
	)
	if err != nil {
		log.Printf("Failed to create token cleanup job: %v", err)
	} else {
		js.jobs["token-cleanup"] = tokenJob
	}

	log.Printf("Registered %d background jobs", len(js.jobs))
}

func (js *JobScheduler) runSync() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := js.syncer.SyncCategories(ctx); err != nil {
		log.Printf("Category sync failed: %v", err)
	}
	if err := js.syncer.SyncListings(ctx); err != nil {
		log.Printf("Listing sync failed: %v", err)
	}
}

func (js *JobScheduler) refreshCategoryTree() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if _, err := js.catalogSvc.RefreshTree(ctx); err != nil {
		log.Printf("Category tree refresh failed: %v", err)
	}
}

func (js *JobScheduler) cleanupTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := js.authSvc.CleanupExpiredTokens(ctx); err != nil {
		log.Printf("Token cleanup failed: %v", err)
	}
}
